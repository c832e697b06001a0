package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seqpipe/qcparse/internal/table"
)

const featureCounts = `# Program:featureCounts v1.5.3; Command:"featureCounts" "-a" "dmel.gtf"
Geneid	Chr	Start	End	Strand	Length	s1.bam
FBgn0000003	3R	2648220	2648518	+	299	0
FBgn0000008	2R	18024494	18060346	+	4404	117
FBgn0000014	3R	12632936	12655767	-	6118	1
`

const featureCountsSummary = `Status	s1.bam
Assigned	100
Unassigned_Ambiguity	7
Unassigned_MultiMapping	3
Unassigned_NoFeatures	41
`

func TestFeatureCountsCounts(t *testing.T) {
	tbl, err := FeatureCountsCounts("s1", writeReport(t, "counts.txt", featureCounts))
	require.NoError(t, err)

	assert.Equal(t, []string{"sample", "FBgn"}, tbl.KeyColumns())
	assert.Equal(t, []string{"count"}, tbl.Columns())
	require.Equal(t, 3, tbl.Len())

	rows := tbl.Rows()
	assert.Equal(t, table.Key{"s1", "FBgn0000003"}, rows[0].Key)
	assert.Equal(t, []table.Value{int64(0)}, rows[0].Values)
	assert.Equal(t, table.Key{"s1", "FBgn0000008"}, rows[1].Key)
	assert.Equal(t, []table.Value{int64(117)}, rows[1].Values)
}

func TestFeatureCountsCountsBadArity(t *testing.T) {
	report := "Geneid\tChr\tStart\nFBgn0000003\t3R\t100\n"
	_, err := FeatureCountsCounts("s1", writeReport(t, "counts.txt", report))
	var fe *FormatError
	assert.ErrorAs(t, err, &fe)
}

func TestFeatureCountsSummary(t *testing.T) {
	rec, err := FeatureCountsSummary("s1", writeReport(t, "summary.txt", featureCountsSummary))
	require.NoError(t, err)

	assert.Equal(t, []string{"Assigned", "Unassigned_Ambiguity", "Unassigned_MultiMapping", "Unassigned_NoFeatures"}, rec.Columns())
	assert.Equal(t, int64(100), mustValue(t, rec, "Assigned"))
	assert.Equal(t, int64(41), mustValue(t, rec, "Unassigned_NoFeatures"))
}

func TestFeatureCountsSummaryNoData(t *testing.T) {
	_, err := FeatureCountsSummary("s1", writeReport(t, "summary.txt", "Status\ts1.bam\n"))
	assert.ErrorIs(t, err, ErrNoData)
}
