// Package outwriter renders audit, comparison and metrics results.
package outwriter

import (
	"io"
	"os"
	"time"

	"github.com/huangsam/bootup/internal/contract"
	"github.com/huangsam/bootup/schema"
	"golang.org/x/term"
)

// WriteAuditResults outputs audit outcomes using the configured output format.
func WriteAuditResults(outcomes []*schema.AggregateOutcome, cfg *contract.Config, duration time.Duration) error {
	return toDestination(cfg.OutputFile, cfg.Output, func(w io.Writer) error {
		return writeAuditResults(w, outcomes, cfg, duration)
	})
}

// WriteComparison outputs a comparison using the configured output format.
func WriteComparison(result schema.ComparisonResult, cfg *contract.Config, duration time.Duration) error {
	return toDestination(cfg.OutputFile, cfg.Output, func(w io.Writer) error {
		return writeComparisonResults(w, result, cfg, duration)
	})
}

// WriteMetrics outputs the scoring curve definition using the configured output format.
func WriteMetrics(model schema.MetricsRenderModel, cfg *contract.Config) error {
	return toDestination(cfg.OutputFile, cfg.Output, func(w io.Writer) error {
		return writeMetrics(w, model, cfg)
	})
}

// successMessage is the confirmation printed after writing to a file.
func successMessage(mode schema.OutputMode) string {
	switch mode {
	case schema.JSONOut:
		return "Wrote JSON"
	case schema.CSVOut:
		return "Wrote CSV"
	case schema.YAMLOut:
		return "Wrote YAML"
	case schema.PromOut:
		return "Wrote Prometheus metrics"
	case schema.ParquetOut:
		return "Wrote Parquet"
	default:
		return "Wrote table"
	}
}

// GetMaxTableURLWidth calculates the maximum width for URLs in table output
// based on terminal width and table configuration.
func GetMaxTableURLWidth(cfg *contract.Config) int {
	termWidth := cfg.Width
	if termWidth <= 0 {
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Rank + Total + Scripting + Parse/Compile with borders/padding
	baseWidth := 45
	if cfg.Detail {
		baseWidth += 12 * (schema.TaskGroupCount - 2) // Non-script group columns
	}
	baseWidth += 10 // Table borders and separators

	available := termWidth - baseWidth
	if available < 20 {
		return 20
	}
	if available > 90 {
		return 90
	}
	return available
}

// ratingLabel returns the rating of score, colored when colors are enabled.
func ratingLabel(score float64, cfg *contract.Config) string {
	if cfg.UseColors {
		return contract.GetColorLabel(score)
	}
	return string(schema.GetRating(score))
}

// detailGroups returns the non-script groups shown as extra columns in detail mode.
func detailGroups() []schema.TaskGroup {
	var groups []schema.TaskGroup
	for _, g := range schema.AllTaskGroups() {
		if !g.IsScript() {
			groups = append(groups, g)
		}
	}
	return groups
}
