// Package table defines the tabular records produced by report parsers.
package table

import (
	"fmt"
	"strconv"
	"strings"
)

// Value is a single table cell: int64, float64, or string.
type Value any

// Key is a composite row index, e.g. {sample} or {sample, gene}.
type Key []string

// String joins the key parts with "/".
func (k Key) String() string {
	return strings.Join(k, "/")
}

// Equal reports whether two keys have the same parts.
func (k Key) Equal(other Key) bool {
	if len(k) != len(other) {
		return false
	}
	for i := range k {
		if k[i] != other[i] {
			return false
		}
	}
	return true
}

// Record is a single tabular row: an ordered column to value mapping
// tagged with a row key. Records are immutable once built.
type Record struct {
	key     Key
	keyCols []string
	cols    []string
	vals    map[string]Value
}

// Key returns the row key.
func (r *Record) Key() Key { return r.key }

// KeyColumns returns the names of the key parts (defaults to {"sample"}).
func (r *Record) KeyColumns() []string { return r.keyCols }

// Columns returns the column names in insertion order.
func (r *Record) Columns() []string { return r.cols }

// Value returns the value stored under col.
func (r *Record) Value(col string) (Value, bool) {
	v, ok := r.vals[col]
	return v, ok
}

// Len returns the number of columns.
func (r *Record) Len() int { return len(r.cols) }

// Builder accumulates key/value pairs in insertion order and finalizes
// them into a single-row Record. The zero Builder is not valid; use
// NewBuilder.
type Builder struct {
	cols []string
	vals map[string]Value
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{vals: make(map[string]Value)}
}

// Put appends col with the given value. A duplicate column overwrites
// the stored value but keeps its original insertion position.
func (b *Builder) Put(col string, v Value) {
	if _, seen := b.vals[col]; !seen {
		b.cols = append(b.cols, col)
	}
	b.vals[col] = v
}

// Get returns the value stored under col, if any.
func (b *Builder) Get(col string) (Value, bool) {
	v, ok := b.vals[col]
	return v, ok
}

// Empty reports whether nothing has been accumulated.
func (b *Builder) Empty() bool { return len(b.cols) == 0 }

// Len returns the number of accumulated columns.
func (b *Builder) Len() int { return len(b.cols) }

// Record finalizes the builder into a Record indexed by key.
// The key column names default to {"sample"} for a single-part key.
func (b *Builder) Record(key Key, keyCols ...string) *Record {
	if len(keyCols) == 0 {
		keyCols = defaultKeyColumns(key)
	}
	cols := make([]string, len(b.cols))
	copy(cols, b.cols)
	vals := make(map[string]Value, len(b.vals))
	for k, v := range b.vals {
		vals[k] = v
	}
	return &Record{key: key, keyCols: keyCols, cols: cols, vals: vals}
}

func defaultKeyColumns(key Key) []string {
	if len(key) == 1 {
		return []string{"sample"}
	}
	cols := make([]string, len(key))
	for i := range cols {
		cols[i] = fmt.Sprintf("key%d", i)
	}
	return cols
}

// Row is one keyed row of a Table.
type Row struct {
	Key    Key
	Values []Value
}

// Table is an ordered sequence of rows sharing a column schema.
type Table struct {
	keyCols []string
	cols    []string
	rows    []Row
}

// NewTable creates an empty table with the given key column names and
// value column names.
func NewTable(keyCols, cols []string) *Table {
	return &Table{keyCols: keyCols, cols: cols}
}

// KeyColumns returns the names of the key parts.
func (t *Table) KeyColumns() []string { return t.keyCols }

// Columns returns the value column names.
func (t *Table) Columns() []string { return t.cols }

// Rows returns the rows in order.
func (t *Table) Rows() []Row { return t.rows }

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Append adds a row. The key must have as many parts as there are key
// columns, and values must match the column schema.
func (t *Table) Append(key Key, values ...Value) error {
	if len(key) != len(t.keyCols) {
		return fmt.Errorf("table: key %v does not match key columns %v", key, t.keyCols)
	}
	if len(values) != len(t.cols) {
		return fmt.Errorf("table: row for %v has %d values, schema has %d columns", key, len(values), len(t.cols))
	}
	t.rows = append(t.rows, Row{Key: key, Values: values})
	return nil
}

// AppendTable concatenates other onto t. Schemas must match exactly.
func (t *Table) AppendTable(other *Table) error {
	if !sameColumns(t.cols, other.cols) {
		return fmt.Errorf("table: cannot concatenate, columns %v != %v", other.cols, t.cols)
	}
	if !sameColumns(t.keyCols, other.keyCols) {
		return fmt.Errorf("table: cannot concatenate, key columns %v != %v", other.keyCols, t.keyCols)
	}
	t.rows = append(t.rows, other.rows...)
	return nil
}

func sameColumns(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// FormatValue renders a cell the way it is written to TSV output.
// Floats use the shortest representation that round-trips.
func FormatValue(v Value) string {
	switch x := v.(type) {
	case nil:
		return ""
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}
