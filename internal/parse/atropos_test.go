package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seqpipe/qcparse/internal/table"
)

const atroposSE = `This is Atropos 1.1.21 with Python 3.6.4
Trimming 1 adapter with at most 10.0% errors in single-end mode ...

=== Summary ===

Total reads processed: 1,000
Reads with adapters: 250 (25.0%)
Reads written (passing filters): 1,000 (100.0%)

=== Adapter 1 ===

Sequence: AGATCGGAAGAGC; Type: regular 3'; Length: 13; Trimmed: 250 times.

length	count	expect	max.err	error counts
3	140	15.6	0	140
4	60	3.9	0	60
10	50	0.9	1	50

=== Adapter 2 ===

Sequence: CTGTCTCTTATA; Type: regular 3'; Length: 12; Trimmed: 30 times.

length	count	expect	max.err	error counts
5	30	1.2	0	30
`

const atroposPE = `=== Summary ===

Total read pairs processed: 1,000
  Read 1 with adapter: 763 (76.3%)
  Read 2 with adapter: 500 (50.0%)
Pairs written (passing filters): 1,000 (100.0%)
`

func TestAtroposSingleEnd(t *testing.T) {
	rec, hist, err := Atropos("s1", writeReport(t, "trim.txt", atroposSE))
	require.NoError(t, err)

	assert.Equal(t, table.Key{"s1"}, rec.Key())
	assert.Equal(t, int64(1000), mustValue(t, rec, "Total reads processed"))
	assert.Equal(t, int64(250), mustValue(t, rec, "Reads with adapters"))
	assert.Equal(t, int64(250), mustValue(t, rec, "Number Adapter 1 trimmed"))
	assert.Equal(t, int64(30), mustValue(t, rec, "Number Adapter 2 trimmed"))
	assert.InDelta(t, 25.0, mustValue(t, rec, "pct_read1_adapters"), 1e-9)
	_, hasRead2 := rec.Value("pct_read2_adapters")
	assert.False(t, hasRead2, "single-end report must not derive a read 2 percentage")

	require.NotNil(t, hist)
	assert.Equal(t, []string{"sample", "adapter", "length"}, hist.KeyColumns())
	assert.Equal(t, []string{"count", "expect", "max.err", "error counts"}, hist.Columns())
	require.Equal(t, 4, hist.Len())

	rows := hist.Rows()
	assert.Equal(t, table.Key{"s1", "Adapter 1", "3"}, rows[0].Key)
	assert.Equal(t, []table.Value{int64(140), 15.6, int64(0), int64(140)}, rows[0].Values)
	assert.Equal(t, table.Key{"s1", "Adapter 2", "5"}, rows[3].Key)
}

func TestAtroposPairedEnd(t *testing.T) {
	rec, hist, err := Atropos("s1", writeReport(t, "trim.txt", atroposPE))
	require.NoError(t, err)
	assert.Nil(t, hist)

	assert.Equal(t, int64(1000), mustValue(t, rec, "Total read pairs processed"))
	assert.Equal(t, int64(763), mustValue(t, rec, "Total read pairs processed_Read 1 with adapter"))
	assert.Equal(t, int64(500), mustValue(t, rec, "Total read pairs processed_Read 2 with adapter"))
	assert.InDelta(t, 76.3, mustValue(t, rec, "pct_read1_adapters"), 1e-9)
	assert.InDelta(t, 50.0, mustValue(t, rec, "pct_read2_adapters"), 1e-9)
}

func TestAtroposMissingDenominator(t *testing.T) {
	report := `=== Summary ===

Reads with adapters: 250 (25.0%)
`
	_, _, err := Atropos("s1", writeReport(t, "trim.txt", report))
	var mce *MissingColumnError
	require.ErrorAs(t, err, &mce)
	assert.Equal(t, "Total reads processed", mce.Column)
}

func TestAtroposEmptySummary(t *testing.T) {
	report := `This report has a preamble but no summary section.

=== Adapter 1 ===

Nothing was trimmed here.
`
	_, _, err := Atropos("s1", writeReport(t, "trim.txt", report))
	assert.ErrorIs(t, err, ErrNoData)
}

func TestAtroposHistogramAtEndOfFile(t *testing.T) {
	// The final length table has no closing blank line.
	report := `=== Summary ===

Total reads processed: 100
Reads with adapters: 10 (10.0%)

=== Adapter 1 ===

length	count	expect	max.err	error counts
3	10	1.5	0	10`
	_, hist, err := Atropos("s1", writeReport(t, "trim.txt", report))
	require.NoError(t, err)
	require.NotNil(t, hist)
	assert.Equal(t, 1, hist.Len())
}

func TestAtroposDeterministic(t *testing.T) {
	path := writeReport(t, "trim.txt", atroposSE)
	first, _, err := Atropos("s1", path)
	require.NoError(t, err)
	second, _, err := Atropos("s1", path)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
