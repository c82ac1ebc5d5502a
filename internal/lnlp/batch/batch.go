// Package batch runs the resolver pipeline and snapshot construction over
// many documents concurrently, with a bounded worker pool and an optional
// rate limit for callers that feed this from a shared upstream quota.
package batch

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/phosphorco/legalnlp/internal/lnlp/document"
	"github.com/phosphorco/legalnlp/internal/lnlp/snapshot"
)

// Job is one document to analyze, identified by Name for error reporting.
type Job struct {
	Name string
	Text string
}

// Result is one job's outcome: exactly one of Snapshot or Err is set.
type Result struct {
	Name     string
	Snapshot *snapshot.Snapshot
	Err      error
}

// Options configures a Run call.
type Options struct {
	// Concurrency bounds how many jobs run at once. Zero means 4.
	Concurrency int
	// Limiter, if set, is waited on before starting each job — for
	// coordinating with an external per-second budget shared across batches.
	Limiter *rate.Limiter
}

// Analyzer builds a pipeline.Run result for one document's tokenized lines,
// then projects it through Component H. internal/legal/pipeline.NewStandard
// plus pipeline.SnapshotRegistry satisfies this; it's passed in rather than
// imported directly so this package doesn't need to depend on every
// resolver package.
type Analyzer func(doc *document.Document) (*snapshot.Snapshot, error)

// Run analyzes every job concurrently (bounded by Options.Concurrency),
// returning one Result per job in the input order. A job's parse or
// analysis failure does not cancel the others; it surfaces in that job's
// Result.Err.
func Run(ctx context.Context, jobs []Job, analyze Analyzer, opts Options) ([]Result, error) {
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}

	results := make([]Result, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			if opts.Limiter != nil {
				if err := opts.Limiter.Wait(gctx); err != nil {
					results[i] = Result{Name: job.Name, Err: fmt.Errorf("batch: rate limiter: %w", err)}
					return nil
				}
			}
			doc, err := document.FromText(job.Text)
			if err != nil {
				results[i] = Result{Name: job.Name, Err: fmt.Errorf("batch: tokenizing %s: %w", job.Name, err)}
				return nil
			}
			snap, err := analyze(doc)
			if err != nil {
				results[i] = Result{Name: job.Name, Err: fmt.Errorf("batch: analyzing %s: %w", job.Name, err)}
				return nil
			}
			results[i] = Result{Name: job.Name, Snapshot: snap}
			return nil
		})
	}

	// Every job returns nil and records its own failure (including a
	// rate-limiter wait ended by a canceled context) in results, so g.Wait
	// returns nil here and one bad document never aborts the rest of the batch.
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
