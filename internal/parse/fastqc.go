package parse

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/klauspost/compress/flate"

	"github.com/seqpipe/qcparse/internal/scan"
	"github.com/seqpipe/qcparse/internal/table"
)

// fastFlate swaps in the faster flate implementation for zip extraction.
// The stdlib forbids overriding Deflate in the global registry, so it is
// applied per reader.
func fastFlate(archive *zip.ReadCloser) {
	archive.RegisterDecompressor(zip.Deflate, func(r io.Reader) io.ReadCloser {
		return flate.NewReader(r)
	})
}

// FastQCReport is one parsed FastQC data file: the tool version plus
// the report's named sections.
type FastQCReport struct {
	Sample  string
	Version string

	path   string
	names  []string
	blocks map[string]*FastQCBlock
}

// FastQCBlock is one named report section: a pass/warn/fail status and
// an embedded sub-table keyed by the section's first column.
type FastQCBlock struct {
	Name      string
	Status    string
	IndexName string
	Data      *table.Table

	// TotalDeduplicatedPct is only set on the Sequence Duplication
	// Levels section, which carries it on an extra line above its table.
	TotalDeduplicatedPct *float64
}

const fastqcDataName = "fastqc_data.txt"

// ParseFastQC parses a FastQC report. path may be the _fastqc.zip
// archive the tool writes (the fastqc_data.txt entry is extracted to a
// private scratch directory, removed again on every exit path) or a
// bare fastqc_data.txt, plain or gzipped.
func ParseFastQC(sample, path string) (*FastQCReport, error) {
	if strings.HasSuffix(strings.ToLower(path), ".zip") {
		return parseFastQCZip(sample, path)
	}
	s, err := scan.Open(path)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return parseFastQCLines(sample, path, s)
}

func parseFastQCZip(sample, path string) (*FastQCReport, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open archive: %w", err)
	}
	defer archive.Close()
	fastFlate(archive)

	var entry *zip.File
	for _, f := range archive.File {
		if strings.Contains(f.Name, fastqcDataName) {
			entry = f
			break
		}
	}
	if entry == nil {
		return nil, fmt.Errorf("%s: archive has no %s entry", path, fastqcDataName)
	}

	// A fresh uniquely named scratch directory per invocation, so
	// concurrent batch workers never collide.
	scratch := filepath.Join(os.TempDir(), "qcparse-"+uuid.NewString())
	if err := os.MkdirAll(scratch, 0o700); err != nil {
		return nil, fmt.Errorf("cannot create scratch directory: %w", err)
	}
	defer os.RemoveAll(scratch)

	extracted := filepath.Join(scratch, fastqcDataName)
	if err := extractZipEntry(entry, extracted); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	s, err := scan.Open(extracted)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return parseFastQCLines(sample, path, s)
}

func extractZipEntry(entry *zip.File, dest string) error {
	rc, err := entry.Open()
	if err != nil {
		return fmt.Errorf("cannot open archive entry %s: %w", entry.Name, err)
	}
	defer rc.Close()

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("cannot extract archive entry: %w", err)
	}
	if _, err := io.Copy(out, rc); err != nil {
		_ = out.Close()
		return fmt.Errorf("cannot extract archive entry %s: %w", entry.Name, err)
	}
	return out.Close()
}

func parseFastQCLines(sample, path string, s *scan.Scanner) (*FastQCReport, error) {
	r := &FastQCReport{Sample: sample, path: path, blocks: make(map[string]*FastQCBlock)}
	var current []string

	for {
		line, ok := s.Next()
		if !ok {
			break
		}
		line = strings.TrimRight(line, " \t")
		switch {
		case strings.HasPrefix(line, "##FastQC"):
			if fields := strings.Fields(line); len(fields) > 1 {
				r.Version = fields[1]
			}
		case line == ">>END_MODULE":
			if len(current) > 1 {
				blk, err := parseFastQCBlock(path, current)
				if err != nil {
					return nil, err
				}
				if _, dup := r.blocks[blk.Name]; !dup {
					r.names = append(r.names, blk.Name)
				}
				r.blocks[blk.Name] = blk
			}
			current = nil
		case strings.HasPrefix(line, ">>"):
			current = []string{strings.TrimPrefix(line, ">>")}
		case current != nil:
			current = append(current, line)
		}
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	if len(r.blocks) == 0 {
		return nil, ErrNoData
	}
	return r, nil
}

func parseFastQCBlock(path string, lines []string) (*FastQCBlock, error) {
	head := strings.Split(lines[0], "\t")
	if len(head) < 2 {
		return nil, formatErrorf(path, "section header %q has no status field", lines[0])
	}
	blk := &FastQCBlock{Name: head[0], Status: head[1]}

	headerIdx := 1
	if blk.Name == "Sequence Duplication Levels" {
		// An extra "#Total Deduplicated Percentage" line sits above the
		// table of this section.
		if len(lines) < 3 {
			return nil, formatErrorf(path, "section %q is truncated", blk.Name)
		}
		fields := strings.Split(strings.TrimPrefix(lines[1], "#"), "\t")
		if len(fields) == 2 {
			pct, err := parseFloat(path, fields[1])
			if err != nil {
				return nil, err
			}
			blk.TotalDeduplicatedPct = &pct
		}
		headerIdx = 2
	}

	header := strings.Split(strings.TrimPrefix(lines[headerIdx], "#"), "\t")
	blk.IndexName = header[0]
	blk.Data = table.NewTable([]string{header[0]}, header[1:])
	for _, line := range lines[headerIdx+1:] {
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != len(header) {
			return nil, formatErrorf(path, "section %q: row has %d fields, header has %d", blk.Name, len(fields), len(header))
		}
		values := make([]table.Value, 0, len(fields)-1)
		for _, cell := range fields[1:] {
			values = append(values, inferValue(cell))
		}
		if err := blk.Data.Append(table.Key{fields[0]}, values...); err != nil {
			return nil, formatErrorf(path, "section %q: %v", blk.Name, err)
		}
	}
	return blk, nil
}

// Block returns the named section.
func (r *FastQCReport) Block(name string) (*FastQCBlock, error) {
	blk, ok := r.blocks[name]
	if !ok {
		return nil, formatErrorf(r.path, "report has no %q section", name)
	}
	return blk, nil
}

// Blocks returns all sections in report order.
func (r *FastQCReport) Blocks() []*FastQCBlock {
	out := make([]*FastQCBlock, 0, len(r.names))
	for _, name := range r.names {
		out = append(out, r.blocks[name])
	}
	return out
}

// Summary returns one record mapping every section name to its
// pass/warn/fail status.
func (r *FastQCReport) Summary() *table.Record {
	b := table.NewBuilder()
	for _, blk := range r.Blocks() {
		b.Put(blk.Name, blk.Status)
	}
	return b.Record(table.Key{r.Sample})
}

// blockTable re-keys a section's sub-table by (sample, keyName),
// optionally expanding collapsed position ranges, and optionally
// restricting it to a subset of columns.
func (r *FastQCReport) blockTable(name, keyName string, expand bool, cols ...string) (*table.Table, error) {
	blk, err := r.Block(name)
	if err != nil {
		return nil, err
	}
	data := blk.Data
	if len(cols) > 0 {
		if data, err = selectColumns(r.path, name, data, cols); err != nil {
			return nil, err
		}
	}
	if expand {
		data = ExpandRanges(data)
	}
	if keyName == "" {
		keyName = blk.IndexName
	}

	out := table.NewTable([]string{"sample", keyName}, data.Columns())
	for _, row := range data.Rows() {
		if err := out.Append(append(table.Key{r.Sample}, row.Key...), row.Values...); err != nil {
			return nil, formatErrorf(r.path, "section %q: %v", name, err)
		}
	}
	return out, nil
}

func selectColumns(path, section string, t *table.Table, cols []string) (*table.Table, error) {
	indices := make([]int, len(cols))
	for i, want := range cols {
		indices[i] = -1
		for j, have := range t.Columns() {
			if have == want {
				indices[i] = j
				break
			}
		}
		if indices[i] < 0 {
			return nil, formatErrorf(path, "section %q has no %q column", section, want)
		}
	}
	out := table.NewTable(t.KeyColumns(), cols)
	for _, row := range t.Rows() {
		values := make([]table.Value, len(indices))
		for i, j := range indices {
			values[i] = row.Values[j]
		}
		if err := out.Append(row.Key, values...); err != nil {
			return nil, formatErrorf(path, "section %q: %v", section, err)
		}
	}
	return out, nil
}

// transposedRecord turns a two-column section into a single record:
// the index cells become column names, the first value column the
// values.
func (r *FastQCReport) transposedRecord(name string) (*table.Record, error) {
	blk, err := r.Block(name)
	if err != nil {
		return nil, err
	}
	if len(blk.Data.Columns()) == 0 {
		return nil, formatErrorf(r.path, "section %q has no value column", name)
	}
	b := table.NewBuilder()
	for _, row := range blk.Data.Rows() {
		b.Put(row.Key[0], row.Values[0])
	}
	if b.Empty() {
		return nil, ErrNoData
	}
	return b.Record(table.Key{r.Sample}), nil
}

// PerBaseQuality returns the mean per-base quality keyed by
// (sample, base), with collapsed base ranges expanded.
func (r *FastQCReport) PerBaseQuality() (*table.Table, error) {
	return r.blockTable("Per base sequence quality", "base", true, "Mean")
}

// PerSequenceQuality returns the per-sequence quality score histogram
// as one record: quality scores become columns, counts the values.
func (r *FastQCReport) PerSequenceQuality() (*table.Record, error) {
	return r.transposedRecord("Per sequence quality scores")
}

// BasicStats returns the Basic Statistics section as one record.
func (r *FastQCReport) BasicStats() (*table.Record, error) {
	return r.transposedRecord("Basic Statistics")
}

// AdapterContent returns per-base adapter content keyed by
// (sample, base), with collapsed base ranges expanded.
func (r *FastQCReport) AdapterContent() (*table.Table, error) {
	return r.blockTable("Adapter Content", "base", true)
}

// PerBaseSeqContent returns per-base nucleotide content keyed by
// (sample, base), with collapsed base ranges expanded.
func (r *FastQCReport) PerBaseSeqContent() (*table.Table, error) {
	return r.blockTable("Per base sequence content", "base", true)
}

// PerBaseNContent returns per-base N content keyed by (sample, base),
// with collapsed base ranges expanded.
func (r *FastQCReport) PerBaseNContent() (*table.Table, error) {
	return r.blockTable("Per base N content", "base", true)
}

// SequenceLengthDistribution returns the read-length histogram keyed by
// (sample, length). Length bins are kept as reported, ranges included.
func (r *FastQCReport) SequenceLengthDistribution() (*table.Table, error) {
	return r.blockTable("Sequence Length Distribution", "", false)
}

// OverrepresentedSequences returns the overrepresented-sequence table
// keyed by (sample, sequence).
func (r *FastQCReport) OverrepresentedSequences() (*table.Table, error) {
	return r.blockTable("Overrepresented sequences", "", false)
}

// PerSequenceGC returns the per-sequence GC content histogram keyed by
// (sample, GC content).
func (r *FastQCReport) PerSequenceGC() (*table.Table, error) {
	return r.blockTable("Per sequence GC content", "", false)
}

// SequenceDuplicationLevels returns the duplication-level table keyed
// by (sample, duplication level).
func (r *FastQCReport) SequenceDuplicationLevels() (*table.Table, error) {
	return r.blockTable("Sequence Duplication Levels", "", false)
}

// KmerContent returns the kmer table keyed by (sample, sequence),
// with collapsed "Max Obs/Exp Position" ranges expanded and rows sorted
// by (sequence, position).
func (r *FastQCReport) KmerContent() (*table.Table, error) {
	const posCol = "Max Obs/Exp Position"
	blk, err := r.Block("Kmer Content")
	if err != nil {
		return nil, err
	}

	posIdx := -1
	var cols []string
	for i, col := range blk.Data.Columns() {
		if col == posCol {
			posIdx = i
		} else {
			cols = append(cols, col)
		}
	}
	if posIdx < 0 {
		return nil, formatErrorf(r.path, "section %q has no %q column", blk.Name, posCol)
	}

	type kmerRow struct {
		seq    string
		pos    int64
		values []table.Value
	}
	var rows []kmerRow
	for _, row := range blk.Data.Rows() {
		rest := make([]table.Value, 0, len(row.Values)-1)
		for i, v := range row.Values {
			if i != posIdx {
				rest = append(rest, v)
			}
		}
		positions, ok := expandPosition(table.FormatValue(row.Values[posIdx]))
		if !ok {
			return nil, formatErrorf(r.path, "section %q: position %q is not numeric", blk.Name, table.FormatValue(row.Values[posIdx]))
		}
		for _, pos := range positions {
			rows = append(rows, kmerRow{seq: row.Key[0], pos: pos, values: rest})
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].seq != rows[j].seq {
			return rows[i].seq < rows[j].seq
		}
		return rows[i].pos < rows[j].pos
	})

	out := table.NewTable([]string{"sample", "Sequence"}, append([]string{posCol}, cols...))
	for _, row := range rows {
		values := append([]table.Value{row.pos}, row.values...)
		if err := out.Append(table.Key{r.Sample, row.seq}, values...); err != nil {
			return nil, formatErrorf(r.path, "section %q: %v", blk.Name, err)
		}
	}
	return out, nil
}
