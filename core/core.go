// Package core has the orchestration of the bootup-time audit: concurrent
// artifact requests, blocking-impact attribution and the batch executors.
package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/huangsam/bootup/internal/contract"
	"github.com/huangsam/bootup/internal/outwriter"
	"github.com/huangsam/bootup/schema"
)

// ExecutorFunc defines the function signature shared by the audit executors.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, reporter contract.FaultReporter) error

// Compile-time checks that the executors share one signature.
var (
	_ ExecutorFunc = ExecuteAudit
	_ ExecutorFunc = ExecuteCompare
	_ ExecutorFunc = ExecuteCheck
)

// ExecuteAudit audits every bundle of cfg and prints the outcomes.
// Successful outcomes are printed even when some bundles fail.
func ExecuteAudit(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, reporter contract.FaultReporter) error {
	start := time.Now()
	if cfg.Output != schema.TextOut {
		ctx = WithSuppressHeader(ctx)
	}

	outcomes, auditErr := auditBundles(ctx, cfg, mgr, reporter)
	if len(outcomes) == 0 {
		return auditErr
	}

	if err := outwriter.WriteAuditResults(outcomes, cfg, time.Since(start)); err != nil {
		return errors.Join(auditErr, err)
	}
	return auditErr
}

// ExecuteCompare audits two bundles and prints how bootup time moved between them.
// cfg.Bundles holds the base bundle followed by the target bundle.
func ExecuteCompare(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, reporter contract.FaultReporter) error {
	if len(cfg.Bundles) != 2 {
		return fmt.Errorf("compare needs exactly 2 bundles, got %d", len(cfg.Bundles))
	}
	start := time.Now()
	basePath, targetPath := cfg.Bundles[0], cfg.Bundles[1]

	if cfg.Output == schema.TextOut {
		logCompareHeader(cfg, basePath, targetPath)
	}
	ctx = WithSuppressHeader(ctx)

	result, err := CompareBundles(ctx, cfg, basePath, targetPath, mgr, reporter)
	if err != nil {
		return err
	}
	return outwriter.WriteComparison(result, cfg, time.Since(start))
}

// CompareBundles audits the base and target bundles and computes their deltas.
func CompareBundles(ctx context.Context, cfg *contract.Config, basePath, targetPath string, mgr contract.CacheManager, reporter contract.FaultReporter) (schema.ComparisonResult, error) {
	base, err := AuditBundle(ctx, cfg, basePath, mgr, reporter)
	if err != nil {
		return schema.ComparisonResult{}, fmt.Errorf("base bundle: %w", err)
	}
	target, err := AuditBundle(ctx, cfg, targetPath, mgr, reporter)
	if err != nil {
		return schema.ComparisonResult{}, fmt.Errorf("target bundle: %w", err)
	}
	return compareOutcomes(base, target, cfg.ResultLimit), nil
}
