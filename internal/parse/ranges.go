package parse

import (
	"strconv"
	"strings"

	"github.com/seqpipe/qcparse/internal/table"
)

// expandPosition expands a FastQC position cell: "10-19" yields
// 10..19, a plain integer yields itself. ok is false when the cell is
// not numeric at all.
func expandPosition(s string) (positions []int64, ok bool) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return []int64{n}, true
	}
	first, second, found := strings.Cut(s, "-")
	if !found {
		return nil, false
	}
	start, err := strconv.ParseInt(first, 10, 64)
	if err != nil {
		return nil, false
	}
	end, err := strconv.ParseInt(second, 10, 64)
	if err != nil {
		return nil, false
	}
	for n := start; n <= end; n++ {
		positions = append(positions, n)
	}
	return positions, true
}

// ExpandRanges splits rows whose last key part is a collapsed numeric
// range ("10-19") into one row per position, each holding the source
// row's values. Plain integer positions are normalized, non-numeric
// positions pass through unchanged.
func ExpandRanges(t *table.Table) *table.Table {
	out := table.NewTable(t.KeyColumns(), t.Columns())
	for _, row := range t.Rows() {
		last := len(row.Key) - 1
		positions, ok := expandPosition(row.Key[last])
		if !ok {
			// Output schema matches the input schema by construction, so
			// Append cannot fail here.
			_ = out.Append(row.Key, row.Values...)
			continue
		}
		for _, pos := range positions {
			key := make(table.Key, len(row.Key))
			copy(key, row.Key)
			key[last] = strconv.FormatInt(pos, 10)
			_ = out.Append(key, row.Values...)
		}
	}
	return out
}
