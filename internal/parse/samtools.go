package parse

import (
	"regexp"

	"github.com/seqpipe/qcparse/internal/scan"
	"github.com/seqpipe/qcparse/internal/table"
)

var samtoolsSN = regexp.MustCompile(`^SN\s+(.+?):\s+([\d.]+)(?:\s.*)?$`)

// SamtoolsStats parses the summary-number section of a samtools stats
// report. Only lines tagged SN are read; trailing descriptive text
// after the number is discarded. A value containing a decimal point is
// stored as a float, otherwise as an integer. Returns ErrNoData when no
// SN line matches.
func SamtoolsStats(sample, path string) (*table.Record, error) {
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
		m := samtoolsSN.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		v, err := parseScalar(path, m[2])
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
