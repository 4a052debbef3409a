package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/huangsam/bootup/internal/contract"
	"github.com/huangsam/bootup/schema"
	"github.com/schollz/progressbar/v3"
)

// auditJob pairs a bundle path with its position in the input.
type auditJob struct {
	index int
	path  string
}

// auditResult is what a worker produces for one job.
type auditResult struct {
	index   int
	outcome *schema.AggregateOutcome
	err     error
}

// auditBundles audits every bundle in cfg.Bundles using a pool of cfg.Workers
// goroutines. Outcomes keep the input order; failed bundles are left out and
// their errors joined.
func auditBundles(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, reporter contract.FaultReporter) ([]*schema.AggregateOutcome, error) {
	paths := cfg.Bundles
	if len(paths) == 1 {
		outcome, err := AuditBundle(ctx, cfg, paths[0], mgr, reporter)
		if err != nil {
			return nil, err
		}
		return []*schema.AggregateOutcome{outcome}, nil
	}

	// Per-bundle headers are suppressed in batch mode
	if !shouldSuppressHeader(ctx) {
		logBatchHeader(cfg, len(paths))
	}
	ctx = WithSuppressHeader(ctx)

	// Initialize channels based on the number of bundles to be processed.
	jobCh := make(chan auditJob, len(paths))
	resultCh := make(chan auditResult, len(paths))
	bar := newAuditProgressBar(len(paths))
	var wg sync.WaitGroup

	// Start worker pool
	for range max(cfg.Workers, 1) {
		wg.Go(func() {
			for job := range jobCh {
				outcome, err := AuditBundle(ctx, cfg, job.path, mgr, reporter)
				resultCh <- auditResult{index: job.index, outcome: outcome, err: err}
				_ = bar.Add(1)
			}
		})
	}

	// Send bundles to worker channel
	for i, p := range paths {
		jobCh <- auditJob{index: i, path: p}
	}
	close(jobCh)

	// Wait for all workers to finish processing
	wg.Wait()
	close(resultCh)
	_ = bar.Finish()

	ordered := make([]*schema.AggregateOutcome, len(paths))
	errs := make([]error, len(paths))
	for r := range resultCh {
		ordered[r.index] = r.outcome
		errs[r.index] = r.err
	}

	outcomes := make([]*schema.AggregateOutcome, 0, len(paths))
	for _, o := range ordered {
		if o != nil {
			outcomes = append(outcomes, o)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return outcomes, fmt.Errorf("%d of %d bundles failed: %w", len(paths)-len(outcomes), len(paths), err)
	}
	return outcomes, nil
}

// newAuditProgressBar creates the batch progress bar. It writes to stderr.
func newAuditProgressBar(total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription("Auditing bundles"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}
