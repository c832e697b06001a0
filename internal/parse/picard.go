package parse

import (
	"strings"

	"github.com/seqpipe/qcparse/internal/scan"
	"github.com/seqpipe/qcparse/internal/table"
)

// PicardRnaSeqSummary parses the metrics row of a picard
// CollectRnaSeqMetrics report: comment lines are skipped until the line
// starting with PF_BASES, which together with the following line forms
// a two-line tab-delimited table read as a single record. Returns
// ErrNoData when the PF_BASES header never appears, and a FormatError
// when the header is not followed by a matching data line.
func PicardRnaSeqSummary(sample, path string) (*table.Record, error) {
	s, err := scan.Open(path)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	for {
		line, ok := s.Next()
		if !ok {
			return nil, ErrNoData
		}
		if strings.HasPrefix(line, "#") {
			continue
		}
		if !strings.HasPrefix(line, "PF_BASES") {
			continue
		}

		header := strings.Split(line, "\t")
		dataLine, ok := s.Next()
		if !ok {
			return nil, formatErrorf(path, "PF_BASES header without a data line")
		}
		fields := strings.Split(dataLine, "\t")
		if len(fields) != len(header) {
			return nil, formatErrorf(path, "metrics line has %d fields, header has %d", len(fields), len(header))
		}

		b := table.NewBuilder()
		for i, col := range header {
			b.Put(col, inferValue(fields[i]))
		}
		return b.Record(table.Key{sample}), nil
	}
}

// PicardRnaSeqHist parses the coverage histogram of a picard
// CollectRnaSeqMetrics report: comment lines are skipped until the line
// starting with "normalized", then everything to end of file is read as
// a two-column tab-delimited table and transposed so the histogram bins
// become the record's columns. Returns ErrNoData when the starting
// token never appears.
func PicardRnaSeqHist(sample, path string) (*table.Record, error) {
	s, err := scan.Open(path)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	for {
		line, ok := s.Next()
		if !ok {
			return nil, ErrNoData
		}
		if strings.HasPrefix(line, "#") {
			continue
		}
		if !strings.HasPrefix(line, "normalized") {
			continue
		}

		b := table.NewBuilder()
		for {
			row, ok := s.Next()
			if !ok {
				break
			}
			if row == "" {
				continue
			}
			fields := strings.Split(row, "\t")
			if len(fields) != 2 {
				return nil, formatErrorf(path, "histogram line has %d fields, expected 2", len(fields))
			}
			v, err := parseFloat(path, fields[1])
			if err != nil {
				return nil, err
			}
			b.Put(fields[0], v)
		}
		if err := s.Err(); err != nil {
			return nil, err
		}
		if b.Empty() {
			return nil, ErrNoData
		}
		return b.Record(table.Key{sample}), nil
	}
}

// PicardMarkDuplicates parses a picard MarkDuplicates metrics file as a
// whole-file tab-delimited table with comment lines skipped. The
// report's own header row is trusted; every data row is re-keyed by the
// sample id.
func PicardMarkDuplicates(sample, path string) (*table.Table, error) {
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

	header := rows[0]
	t := table.NewTable([]string{"sample"}, header)
	for _, row := range rows[1:] {
		if len(row) == 1 && row[0] == "" {
			continue
		}
		if len(row) != len(header) {
			return nil, formatErrorf(path, "metrics row has %d fields, header has %d", len(row), len(header))
		}
		values := make([]table.Value, len(row))
		for i, cell := range row {
			values[i] = inferValue(cell)
		}
		if err := t.Append(table.Key{sample}, values...); err != nil {
			return nil, formatErrorf(path, "%v", err)
		}
	}
	return t, nil
}
