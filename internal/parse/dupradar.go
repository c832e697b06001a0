package parse

import (
	"github.com/seqpipe/qcparse/internal/scan"
	"github.com/seqpipe/qcparse/internal/table"
)

// dupradarColumns is the canonical positional schema of a dupRadar
// table. The file's own header row is discarded; data rows carry one
// extra leading row-name field, which is also discarded.
var dupradarColumns = []string{
	"FBgn", "geneLength", "allCountsMulti", "filteredCountsMulti", "dupRateMulti",
	"dupsPerIdMulti", "RPKMulti", "RPKMMulti", "allCounts", "filteredCounts",
	"dupRate", "dupsPerId", "RPK", "RPKM", "mhRate",
}

// Dupradar parses a dupRadar gene duplication-rate table. Columns are
// renamed positionally to the canonical list and rows are re-keyed by
// (sample, gene id); a row whose field count does not match the
// canonical schema is a fatal format mismatch.
func Dupradar(sample, path string) (*table.Table, error) {
	f, err := scan.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := table.ReadTSV(f, 0)
	if err != nil {
		return nil, formatErrorf(path, "%v", err)
	}
	if len(rows) == 0 {
		return nil, formatErrorf(path, "missing header row")
	}

	// FBgn moves into the row key; the remaining canonical names are
	// the value columns.
	t := table.NewTable([]string{"sample", "FBgn"}, dupradarColumns[1:])
	for _, row := range rows[1:] {
		// R writes an extra leading row-name field; tolerate its absence.
		switch len(row) {
		case len(dupradarColumns) + 1:
			row = row[1:]
		case len(dupradarColumns):
		default:
			return nil, formatErrorf(path, "row has %d fields, expected %d", len(row), len(dupradarColumns)+1)
		}
		values := make([]table.Value, 0, len(dupradarColumns)-1)
		for _, cell := range row[1:] {
			values = append(values, inferValue(cell))
		}
		if err := t.Append(table.Key{sample, row[0]}, values...); err != nil {
			return nil, formatErrorf(path, "%v", err)
		}
	}
	return t, nil
}
