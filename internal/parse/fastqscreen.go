package parse

import (
	"regexp"
	"strings"

	"github.com/seqpipe/qcparse/internal/scan"
	"github.com/seqpipe/qcparse/internal/table"
)

// One organism per line: name, processed-read count, then five
// (count, percent) pairs for the screening hit categories.
var fqscreenLine = regexp.MustCompile(`^(\S+)\s+(\d+)\s+(\d+)\s+([\d.]+)\s+(\d+)\s+([\d.]+)\s+(\d+)\s+([\d.]+)\s+(\d+)\s+([\d.]+)\s+(\d+)\s+([\d.]+)$`)

var fqscreenCategories = []string{
	"unmapped",
	"one_hit_one_library",
	"multiple_hits_one_library",
	"one_hit_multiple_libraries",
	"multiple_hits_multiple_libraries",
}

// FastqScreen parses a fastq_screen summary table into one wide record
// with composite column names "<organism>.<category>.<count|percent>",
// eleven columns per organism. Returns ErrNoData when no organism line
// matches.
func FastqScreen(sample, path string) (*table.Record, error) {
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
		m := fqscreenLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		org := m[1]
		count, err := parseInt(path, m[2])
		if err != nil {
			return nil, err
		}
		b.Put(screenColumn(org, "reads_processed", "count"), count)
		for i, cat := range fqscreenCategories {
			count, err := parseInt(path, m[3+2*i])
			if err != nil {
				return nil, err
			}
			pct, err := parseFloat(path, m[4+2*i])
			if err != nil {
				return nil, err
			}
			b.Put(screenColumn(org, cat, "count"), count)
			b.Put(screenColumn(org, cat, "percent"), pct)
		}
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	if b.Empty() {
		return nil, ErrNoData
	}
	return b.Record(table.Key{sample}), nil
}

// screenColumn flattens the (organism, category, measure) column tuple.
func screenColumn(parts ...string) string {
	return strings.Join(parts, ".")
}
