// Package batch runs report parsers across many samples in parallel
// and aggregates their records.
package batch

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/seqpipe/qcparse/internal/parse"
	"github.com/seqpipe/qcparse/internal/table"
)

// Job names one report file for one sample.
type Job struct {
	Sample string `yaml:"sample"`
	Path   string `yaml:"path"`
}

// RecordFunc is any parser producing a single record per report.
type RecordFunc func(sample, path string) (*table.Record, error)

// Result pairs a job with its outcome. Skipped is set for reports that
// parsed cleanly but contained no data.
type Result struct {
	Job     Job
	Record  *table.Record
	Skipped bool
}

// Run parses every job with fn, using up to workers goroutines
// (default NumCPU). Results keep the job order regardless of worker
// scheduling. Samples whose report has no data are marked Skipped; the
// first fatal parse error cancels the remaining work and is returned
// tagged with its sample.
func Run(ctx context.Context, jobs []Job, fn RecordFunc, workers int) ([]Result, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([]Result, len(jobs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rec, err := fn(job.Sample, job.Path)
			if err != nil {
				if errors.Is(err, parse.ErrNoData) {
					results[i] = Result{Job: job, Skipped: true}
					return nil
				}
				return fmt.Errorf("sample %s: %w", job.Sample, err)
			}
			results[i] = Result{Job: job, Record: rec}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Aggregate combines the non-skipped records of a batch into one table,
// one row per sample, preserving job order.
func Aggregate(results []Result) *table.Table {
	var records []*table.Record
	for _, res := range results {
		if res.Record != nil {
			records = append(records, res.Record)
		}
	}
	return table.Combine(records)
}
