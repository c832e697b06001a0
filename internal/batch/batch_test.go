package batch

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seqpipe/qcparse/internal/parse"
	"github.com/seqpipe/qcparse/internal/table"
)

func fakeParser(sample, path string) (*table.Record, error) {
	switch path {
	case "nodata":
		return nil, parse.ErrNoData
	case "bad":
		return nil, errors.New("mangled report")
	}
	b := table.NewBuilder()
	b.Put("Total reads", int64(100))
	return b.Record(table.Key{sample}), nil
}

func TestRunKeepsJobOrder(t *testing.T) {
	jobs := []Job{
		{Sample: "s1", Path: "ok"},
		{Sample: "s2", Path: "nodata"},
		{Sample: "s3", Path: "ok"},
	}

	results, err := Run(context.Background(), jobs, fakeParser, 2)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "s1", results[0].Job.Sample)
	assert.NotNil(t, results[0].Record)
	assert.False(t, results[0].Skipped)

	assert.True(t, results[1].Skipped)
	assert.Nil(t, results[1].Record)

	assert.Equal(t, "s3", results[2].Job.Sample)
	assert.NotNil(t, results[2].Record)
}

func TestRunFatalErrorNamesSample(t *testing.T) {
	jobs := []Job{
		{Sample: "s1", Path: "ok"},
		{Sample: "s2", Path: "bad"},
	}

	_, err := Run(context.Background(), jobs, fakeParser, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sample s2")
	assert.Contains(t, err.Error(), "mangled report")
}

func TestRunCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, []Job{{Sample: "s1", Path: "ok"}}, fakeParser, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunDefaultWorkers(t *testing.T) {
	results, err := Run(context.Background(), []Job{{Sample: "s1", Path: "ok"}}, fakeParser, 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.NotNil(t, results[0].Record)
}

func TestAggregate(t *testing.T) {
	mk := func(sample string, cols ...string) *table.Record {
		b := table.NewBuilder()
		for i, col := range cols {
			b.Put(col, int64(i+1))
		}
		return b.Record(table.Key{sample})
	}
	results := []Result{
		{Job: Job{Sample: "s1"}, Record: mk("s1", "a", "b")},
		{Job: Job{Sample: "s2"}, Skipped: true},
		{Job: Job{Sample: "s3"}, Record: mk("s3", "b", "c")},
	}

	tbl := Aggregate(results)
	assert.Equal(t, []string{"a", "b", "c"}, tbl.Columns())
	require.Equal(t, 2, tbl.Len())

	rows := tbl.Rows()
	assert.Equal(t, table.Key{"s1"}, rows[0].Key)
	assert.Equal(t, []table.Value{int64(1), int64(2), nil}, rows[0].Values)
	assert.Equal(t, table.Key{"s3"}, rows[1].Key)
	assert.Equal(t, []table.Value{nil, int64(1), int64(2)}, rows[1].Values)
}
