package parse

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/seqpipe/qcparse/internal/scan"
	"github.com/seqpipe/qcparse/internal/table"
)

// LibraryLayout is the sequencing layout detected from an adapter
// trimming report.
type LibraryLayout int

const (
	LayoutSingleEnd LibraryLayout = iota
	LayoutPairedEnd
)

var (
	atroposSection = regexp.MustCompile(`^=== (.+) ===$`)
	atroposTopKey  = regexp.MustCompile(`^(\w[\w\s()-]+?):\s+([\d.]+)(?:\s.*)?$`)
	atroposSubKey  = regexp.MustCompile(`^\s+([\w\s-]+?):\s+([\d.]+)(?:\s.*)?$`)
	atroposTrimmed = regexp.MustCompile(`Trimmed:\s+(\d+)(?:\s.*)?$`)
)

// atroposState tracks which part of the trimming report the scan is in.
type atroposState int

const (
	atroposPreamble atroposState = iota
	atroposSummary
	atroposAdapter // any named section after the summary
)

// Atropos parses an adapter trimming report: a summary section of
// colon-delimited counts (indented lines are sub-keys of the preceding
// key, joined with an underscore) followed by per-adapter sections with
// optional length histograms. Commas are stripped from every line
// before matching. The returned record carries derived
// pct_read1_adapters / pct_read2_adapters columns, computed according
// to the detected library layout; the returned table concatenates the
// per-adapter length histograms and is nil when the report has none.
// Returns ErrNoData when the summary section yields no keys.
func Atropos(sample, path string) (*table.Record, *table.Table, error) {
	s, err := scan.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer s.Close()

	b := table.NewBuilder()
	state := atroposPreamble
	section := ""
	parentKey := ""
	var hist *table.Table

	for {
		line, ok := s.Next()
		if !ok {
			break
		}
		line = strings.ReplaceAll(line, ",", "")

		if m := atroposSection.FindStringSubmatch(line); m != nil {
			section = m[1]
			if section == "Summary" {
				state = atroposSummary
			} else {
				state = atroposAdapter
			}
			continue
		}

		switch state {
		case atroposPreamble:
			// Free text before the first section delimiter.
		case atroposSummary:
			if m := atroposTopKey.FindStringSubmatch(line); m != nil {
				parentKey = m[1]
				v, err := parseInt(path, m[2])
				if err != nil {
					return nil, nil, err
				}
				b.Put(parentKey, v)
			} else if m := atroposSubKey.FindStringSubmatch(line); m != nil {
				v, err := parseInt(path, m[2])
				if err != nil {
					return nil, nil, err
				}
				b.Put(parentKey+"_"+m[1], v)
			}
		case atroposAdapter:
			if m := atroposTrimmed.FindStringSubmatch(line); m != nil {
				v, err := parseInt(path, m[1])
				if err != nil {
					return nil, nil, err
				}
				b.Put("Number "+section+" trimmed", v)
			} else if strings.HasPrefix(line, "length") {
				block, err := atroposHistogram(sample, path, section, line, s)
				if err != nil {
					return nil, nil, err
				}
				if hist == nil {
					hist = block
				} else if err := hist.AppendTable(block); err != nil {
					return nil, nil, formatErrorf(path, "length table for adapter %q: %v", section, err)
				}
			}
		}
	}
	if err := s.Err(); err != nil {
		return nil, nil, err
	}

	if b.Empty() {
		return nil, nil, ErrNoData
	}

	if err := atroposDerived(b); err != nil {
		return nil, nil, err
	}
	return b.Record(table.Key{sample}), hist, nil
}

// atroposHistogram collects one length histogram: the header line plus
// every following line up to a blank line or end of input.
func atroposHistogram(sample, path, adapter, header string, s *scan.Scanner) (*table.Table, error) {
	cols := strings.Split(header, "\t")
	t := table.NewTable([]string{"sample", "adapter", "length"}, cols[1:])
	for _, line := range s.TakeWhile(func(l string) bool { return l != "" }) {
		fields := strings.Split(line, "\t")
		if len(fields) != len(cols) {
			return nil, formatErrorf(path, "length table for adapter %q: row has %d fields, header has %d", adapter, len(fields), len(cols))
		}
		length, err := parseInt(path, fields[0])
		if err != nil {
			return nil, err
		}
		values := make([]table.Value, len(fields)-1)
		for i, f := range fields[1:] {
			values[i] = inferValue(f)
		}
		if err := t.Append(table.Key{sample, adapter, strconv.FormatInt(length, 10)}, values...); err != nil {
			return nil, formatErrorf(path, "length table for adapter %q: %v", adapter, err)
		}
	}
	return t, nil
}

// detectLayout decides the library layout once, after the summary scan:
// the report is paired-end iff any summary key mentions "Read 1".
func detectLayout(rec []string) LibraryLayout {
	for _, col := range rec {
		if strings.Contains(col, "Read 1") {
			return LayoutPairedEnd
		}
	}
	return LayoutSingleEnd
}

func atroposDerived(b *table.Builder) error {
	switch detectLayout(columnsOf(b)) {
	case LayoutPairedEnd:
		pct1, err := ratio(b, "Total read pairs processed_Read 1 with adapter", "Total read pairs processed")
		if err != nil {
			return err
		}
		pct2, err := ratio(b, "Total read pairs processed_Read 2 with adapter", "Total read pairs processed")
		if err != nil {
			return err
		}
		b.Put("pct_read1_adapters", pct1)
		b.Put("pct_read2_adapters", pct2)
	default:
		pct, err := ratio(b, "Reads with adapters", "Total reads processed")
		if err != nil {
			return err
		}
		b.Put("pct_read1_adapters", pct)
	}
	return nil
}

func columnsOf(b *table.Builder) []string {
	rec := b.Record(nil)
	return rec.Columns()
}
