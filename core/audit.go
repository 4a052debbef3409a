package core

import (
	"context"
	"fmt"
	"time"

	"github.com/huangsam/bootup/core/agg"
	"github.com/huangsam/bootup/core/algo"
	"github.com/huangsam/bootup/internal/bundle"
	"github.com/huangsam/bootup/internal/contract"
	"github.com/huangsam/bootup/schema"
)

// AuditBundle loads the bundle at path and audits it.
func AuditBundle(ctx context.Context, cfg *contract.Config, path string, mgr contract.CacheManager, reporter contract.FaultReporter) (*schema.AggregateOutcome, error) {
	src, err := bundle.Load(path)
	if err != nil {
		return nil, err
	}
	return RunAudit(ctx, cfg, src, mgr, reporter)
}

// RunAudit computes the bootup-time outcome of one artifact source.
//
// The per-URL timings and the blocking-time impact are requested concurrently.
// A failure of the timings is returned; a failure of the impact is reported to
// reporter and treated as an impact of 0.
func RunAudit(ctx context.Context, cfg *contract.Config, src contract.ArtifactSource, mgr contract.CacheManager, reporter contract.FaultReporter) (*schema.AggregateOutcome, error) {
	startTime := time.Now()
	settings := cfg.ResolveSettings(src.Settings())

	if !shouldSuppressHeader(ctx) {
		logAuditHeader(cfg, src, settings)
	}

	// Capacity 1 lets the sender finish even when the timings fail first
	tbtCh := make(chan float64, 1)
	metric := newMetricContext(cfg, src, settings)
	go func() {
		tbtCh <- getTBTImpact(ctx, src, metric, reporter)
	}()

	timings, err := agg.CachedExecutionTimings(ctx, cfg, src, mgr)
	if err != nil {
		return nil, fmt.Errorf("audit %s: %w", src.ID(), err)
	}

	multiplier := settings.Multiplier()
	computation, err := algo.ComputeBootup(timings, multiplier, cfg.Options)
	if err != nil {
		return nil, fmt.Errorf("audit %s: %w", src.ID(), err)
	}

	var tbtImpact float64
	select {
	case tbtImpact = <-tbtCh:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	outcome := &schema.AggregateOutcome{
		Source:                        src.ID(),
		PageURL:                       src.PageURL(),
		AnalysisTime:                  startTime,
		Options:                       cfg.Options,
		Multiplier:                    multiplier,
		RankedResults:                 computation.RankedResults,
		TotalBootupTimeMs:             computation.TotalBootupTimeMs,
		HadExcessiveExtensionOverhead: computation.HadExcessiveExtensionOverhead,
		TBTImpactMs:                   tbtImpact,
		Score:                         computation.Score,
		NotApplicable:                 computation.NotApplicable,
		DisplayValue:                  schema.FormatDisplayValue(computation.TotalBootupTimeMs),
	}
	if outcome.HadExcessiveExtensionOverhead {
		outcome.Warnings = append(outcome.Warnings, schema.ExcessiveExtensionWarning)
	}

	recordRun(cfg, mgr, outcome, settings, startTime)
	return outcome, nil
}

// recordRun stores the outcome in the history store, if one is configured.
// Failures are logged and never affect the audit.
func recordRun(cfg *contract.Config, mgr contract.CacheManager, outcome *schema.AggregateOutcome, settings schema.Settings, startTime time.Time) {
	if mgr == nil {
		return
	}
	history := mgr.GetHistoryStore()
	if history == nil {
		return
	}

	configParams := map[string]any{
		"pass":              cfg.Pass,
		"self_eval_url":     cfg.SelfEvalURL,
		"p10":               cfg.Options.P10,
		"median":            cfg.Options.Median,
		"threshold_ms":      cfg.Options.ThresholdMs,
		"throttling_method": string(settings.ThrottlingMethod),
		"cpu_slowdown":      settings.CPUSlowdownMultiplier,
	}
	runID, err := history.BeginRun(outcome.Source, outcome.PageURL, startTime, configParams)
	if err != nil {
		contract.LogWarn("History tracking initialization failed", err)
		return
	}

	for i, r := range outcome.RankedResults {
		if err := history.RecordURLResult(runID, i+1, outcome.AnalysisTime, r); err != nil {
			logTrackingError("RecordURLResult", r.URL, err)
		}
	}

	if err := history.EndRun(runID, time.Now(), outcome); err != nil {
		contract.LogWarn("Failed to finalize history tracking", err)
	}
}

// logTrackingError logs database tracking errors to stderr without disrupting the audit.
func logTrackingError(operation, url string, err error) {
	contract.LogWarn(fmt.Sprintf("History tracking failed for %s on %s", operation, url), err)
}
