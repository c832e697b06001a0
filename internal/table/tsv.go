package table

import (
	"encoding/csv"
	"fmt"
	"io"
)

// Dataset is any tabular parser output that can be written as TSV.
// Both Record and Table implement it.
type Dataset interface {
	// Header returns the key column names followed by the value column names.
	Header() []string
	// RowStrings returns every row rendered as strings, key parts first.
	RowStrings() [][]string
}

// Header implements Dataset.
func (r *Record) Header() []string {
	return append(append([]string{}, r.keyCols...), r.cols...)
}

// RowStrings implements Dataset.
func (r *Record) RowStrings() [][]string {
	row := make([]string, 0, len(r.key)+len(r.cols))
	row = append(row, r.key...)
	for _, col := range r.cols {
		row = append(row, FormatValue(r.vals[col]))
	}
	return [][]string{row}
}

// Header implements Dataset.
func (t *Table) Header() []string {
	return append(append([]string{}, t.keyCols...), t.cols...)
}

// RowStrings implements Dataset.
func (t *Table) RowStrings() [][]string {
	out := make([][]string, 0, len(t.rows))
	for _, row := range t.rows {
		cells := make([]string, 0, len(row.Key)+len(row.Values))
		cells = append(cells, row.Key...)
		for _, v := range row.Values {
			cells = append(cells, FormatValue(v))
		}
		out = append(out, cells)
	}
	return out
}

// WriteTSV writes a dataset as tab-separated values with a header line.
func WriteTSV(w io.Writer, d Dataset) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	if err := cw.Write(d.Header()); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, row := range d.RowStrings() {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadTSV reads tab-delimited rows from r. Lines starting with comment
// are skipped when comment is non-zero. Rows may have varying widths;
// callers enforce their own arity rules.
func ReadTSV(r io.Reader, comment rune) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.Comment = comment
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading tab-delimited input: %w", err)
	}
	return rows, nil
}

// Combine merges single-row records sharing a parser schema into one
// table. Columns are the union across records in first-seen order;
// a record missing a column contributes an empty cell.
func Combine(records []*Record) *Table {
	if len(records) == 0 {
		return NewTable([]string{"sample"}, nil)
	}
	var cols []string
	seen := make(map[string]bool)
	for _, rec := range records {
		for _, c := range rec.cols {
			if !seen[c] {
				seen[c] = true
				cols = append(cols, c)
			}
		}
	}
	t := NewTable(records[0].keyCols, cols)
	for _, rec := range records {
		values := make([]Value, len(cols))
		for i, c := range cols {
			if v, ok := rec.vals[c]; ok {
				values[i] = v
			}
		}
		t.rows = append(t.rows, Row{Key: rec.key, Values: values})
	}
	return t
}
