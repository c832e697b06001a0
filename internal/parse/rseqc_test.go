package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const inferExperiment = `

This is PairEnd Data
Fraction of reads failed to determine: 0.0172
Fraction of reads explained by "1++,1--,2+-,2-+": 0.4903
Fraction of reads explained by "1+-,1-+,2++,2--": 0.4925
`

const bamStat = `#==================================================
#All numbers are READ count
#==================================================

Total records:                          41465027
QC failed:                              0
Optical/PCR duplicate:                  0
Non primary hits 8720455
mapq < mapq_cut (non-unique):           3127757
`

func TestRseqcInferExperiment(t *testing.T) {
	rec, err := RseqcInferExperiment("s1", writeReport(t, "infer.txt", inferExperiment))
	require.NoError(t, err)

	assert.Equal(t, 0.0172, mustValue(t, rec, "Fraction of reads failed to determine"))
	assert.Equal(t, 0.4903, mustValue(t, rec, `Fraction of reads explained by "1++,1--,2+-,2-+"`))
	assert.Equal(t, 3, rec.Len())
}

func TestRseqcInferExperimentNoData(t *testing.T) {
	_, err := RseqcInferExperiment("s1", writeReport(t, "infer.txt", "This is PairEnd Data\n"))
	assert.ErrorIs(t, err, ErrNoData)
}

func TestRseqcBamStat(t *testing.T) {
	rec, err := RseqcBamStat("s1", writeReport(t, "bamstat.txt", bamStat))
	require.NoError(t, err)

	assert.Equal(t, int64(41465027), mustValue(t, rec, "Total records"))
	assert.Equal(t, int64(3127757), mustValue(t, rec, "mapq < mapq_cut (non-unique)"))

	// Lines without a colon before the value are noise.
	_, ok := rec.Value("Non primary hits")
	assert.False(t, ok)
}

func TestRseqcGeneBodyCoverage(t *testing.T) {
	report := "Percentile\t1\t2\t3\t4\t5\ns1.sorted\t0.01\t0.02\t0.5\t0.9\t1.0\n"
	rec, err := RseqcGeneBodyCoverage("s1", writeReport(t, "genebody.txt", report))
	require.NoError(t, err)

	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, rec.Columns())
	assert.Equal(t, 0.01, mustValue(t, rec, "1"))
	assert.Equal(t, 1.0, mustValue(t, rec, "5"))
}

func TestRseqcGeneBodyCoverageRejectsNonIntegerPosition(t *testing.T) {
	report := "Percentile\tone\ttwo\ns1.sorted\t0.01\t0.02\n"
	_, err := RseqcGeneBodyCoverage("s1", writeReport(t, "genebody.txt", report))
	var fe *FormatError
	assert.ErrorAs(t, err, &fe)
}

func TestRseqcGeneBodyCoverageTooShort(t *testing.T) {
	_, err := RseqcGeneBodyCoverage("s1", writeReport(t, "genebody.txt", "Percentile\t1\t2\n"))
	assert.ErrorIs(t, err, ErrNoData)
}

func TestRseqcTIN(t *testing.T) {
	report := "geneID\tFBtr0070000\tFBtr0070001\ns1.bam\t85.25\t90.1\n"
	rec, err := RseqcTIN("s1", writeReport(t, "tin.txt", report))
	require.NoError(t, err)

	assert.Equal(t, []string{"FBtr0070000", "FBtr0070001"}, rec.Columns())
	assert.Equal(t, 85.25, mustValue(t, rec, "FBtr0070000"))
	assert.Equal(t, 90.1, mustValue(t, rec, "FBtr0070001"))
}

func TestRseqcTINEmpty(t *testing.T) {
	_, err := RseqcTIN("s1", writeReport(t, "tin.txt", ""))
	assert.ErrorIs(t, err, ErrNoData)
}
