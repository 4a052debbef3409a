package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/huangsam/bootup/internal/contract"
	"github.com/huangsam/bootup/schema"
)

// writeMetrics dispatches the scoring curve definition based on the output format configured.
func writeMetrics(w io.Writer, model schema.MetricsRenderModel, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeJSON(w, newMetricsView(model))
	case schema.YAMLOut:
		return writeYAML(w, newMetricsView(model))
	case schema.CSVOut:
		return writeMetricsCSV(w, model)
	case schema.PromOut:
		return writePromFamilies(w, curveFamilies(model))
	case schema.ParquetOut:
		return errAuditOnlyFormat
	default:
		return writeMetricsText(w, model, cfg)
	}
}

// writeMetricsText displays the curve in human-readable text format.
func writeMetricsText(w io.Writer, model schema.MetricsRenderModel, cfg *contract.Config) error {
	title := model.Title
	if cfg.UseEmojis {
		title = "⏱️  " + title
	}
	lines := []string{
		title,
		strings.Repeat("=", len(model.Title)+4),
		"",
		model.Description,
		"",
		"Formula:",
		"  " + model.Formula,
		"",
		fmt.Sprintf("Control points: p10=%.0f ms, median=%.0f ms, threshold=%.0f ms",
			model.Options.P10, model.Options.Median, model.Options.ThresholdMs),
		"Scored groups: " + strings.Join(model.ScoredGroups, ", "),
		"",
		"Sample scores:",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	for _, s := range model.Samples {
		if _, err := fmt.Fprintf(w, "  %8.0f ms  ->  %.2f  %s\n", s.ValueMs, s.Score, ratingLabel(s.Score, cfg)); err != nil {
			return err
		}
	}
	return nil
}

// writeMetricsCSV writes the sampled scores.
func writeMetricsCSV(w io.Writer, model schema.MetricsRenderModel) error {
	return writeCSV(w, []string{"value_ms", "score", "rating"}, func(cw *csv.Writer) error {
		for _, s := range model.Samples {
			if err := cw.Write([]string{fmt.Sprintf("%.0f", s.ValueMs), fmt.Sprintf("%.4f", s.Score), string(s.Rating)}); err != nil {
				return err
			}
		}
		return nil
	})
}
