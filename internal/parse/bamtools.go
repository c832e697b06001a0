package parse

import (
	"regexp"

	"github.com/seqpipe/qcparse/internal/scan"
	"github.com/seqpipe/qcparse/internal/table"
)

var bamtoolsLine = regexp.MustCompile(`^(.+?):\s+(\d+).*$`)

// bamtoolsDerived lists the percentage columns computed from the
// accumulated counts. Every source column, and the "Total reads"
// denominator, must be present in the report; a missing one fails the
// parse with MissingColumnError.
var bamtoolsDerived = []struct {
	col string
	src string
}{
	{"Percent Mapped", "Mapped reads"},
	{"Percent Forward", "Forward strand"},
	{"Percent Reverse", "Reverse strand"},
	{"Percent Failed QC", "Failed QC"},
	{"Percent Duplicates", "Duplicates"},
	{"Percent Paired-end", "Paired-end reads"},
}

// BamtoolsStats parses a bamtools stats report: "label: integer" lines
// accumulated into one record, non-matching lines (headers, separators)
// ignored, plus derived percent columns relative to "Total reads".
// Returns ErrNoData when no line matches.
func BamtoolsStats(sample, path string) (*table.Record, error) {
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
		m := bamtoolsLine.FindStringSubmatch(line)
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

	for _, d := range bamtoolsDerived {
		pct, err := ratio(b, d.src, "Total reads")
		if err != nil {
			return nil, err
		}
		b.Put(d.col, pct)
	}
	return b.Record(table.Key{sample}), nil
}
