package parse

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/seqpipe/qcparse/internal/scan"
	"github.com/seqpipe/qcparse/internal/table"
)

var (
	inferExperimentLine = regexp.MustCompile(`^(.+?):\s+([\d.]+)$`)
	bamStatLine         = regexp.MustCompile(`^(.+?):\s*(\d+)$`)
)

// RseqcInferExperiment parses an infer_experiment report: "label: float"
// lines accumulated into one record. Returns ErrNoData when no line
// matches.
func RseqcInferExperiment(sample, path string) (*table.Record, error) {
	return scanLabelled(sample, path, inferExperimentLine, func(p, s string) (table.Value, error) {
		return parseFloat(p, s)
	})
}

// RseqcBamStat parses a bam_stat report: "label: integer" lines, with
// optional whitespace before the value, accumulated into one record.
// Returns ErrNoData when no line matches.
func RseqcBamStat(sample, path string) (*table.Record, error) {
	return scanLabelled(sample, path, bamStatLine, func(p, s string) (table.Value, error) {
		return parseInt(p, s)
	})
}

func scanLabelled(sample, path string, re *regexp.Regexp, value func(path, s string) (table.Value, error)) (*table.Record, error) {
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
		m := re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		v, err := value(path, m[2])
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

// RseqcGeneBodyCoverage parses a geneBody_coverage report: a two-line
// tab-delimited format whose first line is a header of gene-body
// positions and whose second line holds the coverage values. The first
// cell of each line is a label and is dropped. Positions must be
// integers; they become the record's column names. Returns ErrNoData
// when the file has fewer than two lines or the zipped mapping is
// empty.
func RseqcGeneBodyCoverage(sample, path string) (*table.Record, error) {
	return parseTwoLine(sample, path, func(p, pos string) (string, error) {
		n, err := strconv.Atoi(pos)
		if err != nil {
			return "", formatErrorf(p, "gene body position %q is not an integer", pos)
		}
		return strconv.Itoa(n), nil
	})
}

// RseqcTIN parses a transcript-integrity summary: the same two-line
// header/values format as gene body coverage, but the labels are
// transcript ids and are kept verbatim. Returns ErrNoData when the
// mapping is empty.
func RseqcTIN(sample, path string) (*table.Record, error) {
	return parseTwoLine(sample, path, func(string, string) (string, error) {
		return "", nil
	})
}

// parseTwoLine zips a tab-delimited header line against the following
// values line, dropping the first cell of each. column canonicalizes a
// header cell, or returns "" to keep it verbatim. Extra cells on the
// longer line are ignored.
func parseTwoLine(sample, path string, column func(path, cell string) (string, error)) (*table.Record, error) {
	s, err := scan.Open(path)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	headerLine, ok := s.Next()
	if !ok {
		return nil, ErrNoData
	}
	valuesLine, ok := s.Next()
	if !ok {
		return nil, ErrNoData
	}
	if err := s.Err(); err != nil {
		return nil, err
	}

	header := strings.Split(strings.TrimRight(headerLine, " \t"), "\t")
	values := strings.Split(strings.TrimRight(valuesLine, " \t"), "\t")
	if len(header) < 2 || len(values) < 2 {
		return nil, ErrNoData
	}
	header = header[1:]
	values = values[1:]
	if len(values) < len(header) {
		header = header[:len(values)]
	}

	b := table.NewBuilder()
	for i, cell := range header {
		col, err := column(path, cell)
		if err != nil {
			return nil, err
		}
		if col == "" {
			col = cell
		}
		v, err := parseFloat(path, values[i])
		if err != nil {
			return nil, err
		}
		b.Put(col, v)
	}
	if b.Empty() {
		return nil, ErrNoData
	}
	return b.Record(table.Key{sample}), nil
}
