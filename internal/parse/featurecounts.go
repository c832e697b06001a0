package parse

import (
	"regexp"

	"github.com/seqpipe/qcparse/internal/scan"
	"github.com/seqpipe/qcparse/internal/table"
)

// featureCountsColumns is the canonical positional schema of a
// featureCounts output table; the file's own header row is discarded.
var featureCountsColumns = []string{"FBgn", "chr", "start", "end", "strand", "length", "count"}

// FeatureCountsCounts parses a featureCounts count table. Comment lines
// (leading '#') and the header row are skipped; each data row must have
// the canonical seven fields. Only the count column is kept, keyed by
// (sample, feature id).
func FeatureCountsCounts(sample, path string) (*table.Table, error) {
	f, err := scan.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := table.ReadTSV(f, '#')
	if err != nil {
		return nil, formatErrorf(path, "%v", err)
	}
	if len(rows) == 0 {
		return nil, formatErrorf(path, "missing header row")
	}

	t := table.NewTable([]string{"sample", "FBgn"}, []string{"count"})
	for _, row := range rows[1:] {
		if len(row) != len(featureCountsColumns) {
			return nil, formatErrorf(path, "row has %d fields, expected %d", len(row), len(featureCountsColumns))
		}
		count, err := parseInt(path, row[6])
		if err != nil {
			return nil, err
		}
		if err := t.Append(table.Key{sample, row[0]}, count); err != nil {
			return nil, formatErrorf(path, "%v", err)
		}
	}
	return t, nil
}

var featureCountsSummaryLine = regexp.MustCompile(`^(.+?)\s+(\d+)$`)

// FeatureCountsSummary parses a featureCounts assignment summary:
// "label<ws>integer" lines accumulated into one record. Returns
// ErrNoData when no line matches.
func FeatureCountsSummary(sample, path string) (*table.Record, error) {
	s, err := scan.Open(path)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	b := table.NewBuilder()
	for {
		line, ok := s.Next()
		if !ok {
			break
		}
		m := featureCountsSummaryLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		v, err := parseInt(path, m[2])
		if err != nil {
			return nil, err
		}
		b.Put(m[1], v)
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	if b.Empty() {
		return nil, ErrNoData
	}
	return b.Record(table.Key{sample}), nil
}
