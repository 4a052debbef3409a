package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/bootup/internal/contract"
	"github.com/huangsam/bootup/schema"
)

// ErrCheckFailed is returned when at least one bundle breaks a budget.
var ErrCheckFailed = errors.New("bootup budget check failed")

// maxFailuresToShow limits the violations printed per run.
const maxFailuresToShow = 10

// ExecuteCheck audits every bundle and gates them against the configured
// score and bootup-time budgets. It is meant for CI pipelines.
func ExecuteCheck(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, reporter contract.FaultReporter) error {
	start := time.Now()

	outcomes, err := auditBundles(WithSuppressHeader(ctx), cfg, mgr, reporter)
	if err != nil {
		return err
	}

	result := buildCheckResult(cfg, outcomes)
	printCheckResult(os.Stdout, result, time.Since(start))

	if !result.Passed {
		return fmt.Errorf("%w: %d violation(s) found", ErrCheckFailed, len(result.Failed))
	}
	return nil
}

// buildCheckResult compares each outcome against the budgets. A zero budget is disabled.
func buildCheckResult(cfg *contract.Config, outcomes []*schema.AggregateOutcome) *schema.CheckResult {
	result := &schema.CheckResult{
		MinScore:    cfg.MinScore,
		MaxBootupMs: cfg.MaxBootupMs,
		Checked:     make([]schema.CheckedBundle, 0, len(outcomes)),
	}

	for _, o := range outcomes {
		result.Checked = append(result.Checked, schema.CheckedBundle{
			Source:        o.Source,
			Score:         o.Score,
			BootupMs:      o.TotalBootupTimeMs,
			NotApplicable: o.NotApplicable,
		})

		if cfg.MinScore > 0 && o.Score < cfg.MinScore {
			result.Failed = append(result.Failed, schema.CheckFailure{
				Source:    o.Source,
				Reason:    "score",
				Value:     o.Score,
				Threshold: cfg.MinScore,
			})
		}
		if cfg.MaxBootupMs > 0 && o.TotalBootupTimeMs > cfg.MaxBootupMs {
			result.Failed = append(result.Failed, schema.CheckFailure{
				Source:    o.Source,
				Reason:    "bootup",
				Value:     o.TotalBootupTimeMs,
				Threshold: cfg.MaxBootupMs,
			})
		}
	}

	result.Passed = len(result.Failed) == 0
	return result
}

// printCheckResult prints the check result in a concise format suitable for CI/CD.
func printCheckResult(w io.Writer, result *schema.CheckResult, duration time.Duration) {
	printCheckHeader(w, result, duration)

	if result.Passed {
		printCheckSuccess(w, result)
	} else {
		printCheckFailure(w, result)
	}
}

// printCheckHeader prints the common header information for check results.
func printCheckHeader(w io.Writer, result *schema.CheckResult, duration time.Duration) {
	_, _ = fmt.Fprintln(w, "Bootup Budget Results:")

	labels := []string{"Min score:", "Max bootup:"}
	values := []string{formatBudget(result.MinScore, "%.2f"), formatBudget(result.MaxBootupMs, "%.0f ms")}

	maxLabelLen := 0
	for _, label := range labels {
		maxLabelLen = max(maxLabelLen, len(label))
	}
	for i, label := range labels {
		_, _ = fmt.Fprintf(w, "  %-*s %s\n", maxLabelLen+1, label, values[i])
	}
	_, _ = fmt.Fprintln(w)

	_, _ = fmt.Fprintf(w, "Checked %d bundles in %v\n\n", len(result.Checked), duration)
}

// formatBudget renders a budget value, or "disabled" when it is zero.
func formatBudget(v float64, format string) string {
	if v <= 0 {
		return "disabled"
	}
	return fmt.Sprintf(format, v)
}

// printCheckSuccess prints the success case output.
func printCheckSuccess(w io.Writer, result *schema.CheckResult) {
	_, _ = fmt.Fprintf(w, "✅ All bundles are within budget\n\n")
	_, _ = fmt.Fprintln(w, "Observed:")
	for _, c := range result.Checked {
		suffix := ""
		if c.NotApplicable {
			suffix = " (not applicable)"
		}
		_, _ = fmt.Fprintf(w, "  %s: score=%.2f, bootup=%s%s\n", c.Source, c.Score, schema.FormatDisplayValue(c.BootupMs), suffix)
	}
}

// printCheckFailure prints the failure case output.
func printCheckFailure(w io.Writer, result *schema.CheckResult) {
	_, _ = fmt.Fprintf(w, "❌ Budget check failed: %d violation(s) found across %d bundles\n\n", len(result.Failed), len(result.Checked))

	for i, f := range result.Failed {
		if i >= maxFailuresToShow {
			_, _ = fmt.Fprintf(w, "  ... and %d more\n", len(result.Failed)-i)
			break
		}
		switch f.Reason {
		case "score":
			_, _ = fmt.Fprintf(w, "  - %s (score: %.2f < min: %.2f)\n", f.Source, f.Value, f.Threshold)
		default:
			_, _ = fmt.Fprintf(w, "  - %s (bootup: %.0f ms > max: %.0f ms)\n", f.Source, f.Value, f.Threshold)
		}
	}
	_, _ = fmt.Fprintln(w)
}
