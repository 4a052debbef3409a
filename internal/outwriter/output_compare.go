package outwriter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/huangsam/bootup/internal/contract"
	"github.com/huangsam/bootup/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// errAuditOnlyFormat is returned for formats that only make sense for audit rows.
var errAuditOnlyFormat = errors.New("parquet output is only supported by the audit command")

// writeComparisonResults dispatches a comparison based on the output format configured.
func writeComparisonResults(w io.Writer, result schema.ComparisonResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat := floatFormatter(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeJSON(w, newComparisonView(result)); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.YAMLOut:
		if err := writeYAML(w, newComparisonView(result)); err != nil {
			return fmt.Errorf("error writing YAML output: %w", err)
		}
	case schema.CSVOut:
		if err := writeComparisonCSV(w, result, fmtFloat); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.PromOut:
		if err := writePromFamilies(w, comparisonFamilies(result)); err != nil {
			return fmt.Errorf("error writing Prometheus output: %w", err)
		}
	case schema.ParquetOut:
		return errAuditOnlyFormat
	default:
		return writeComparisonTable(w, result, cfg, fmtFloat, duration)
	}
	return nil
}

// deltaFormatter renders a signed delta with an arrow. Increases are bad for bootup time.
func deltaFormatter(cfg *contract.Config) func(float64) string {
	red, green, yellow := fmt.Sprint, fmt.Sprint, fmt.Sprint
	if cfg.UseColors {
		red = color.New(color.FgRed).SprintFunc()
		green = color.New(color.FgGreen).SprintFunc()
		yellow = color.New(color.FgYellow).SprintFunc()
	}
	return func(delta float64) string {
		switch {
		case delta > 0:
			return red(fmt.Sprintf("+%.*f ▲", cfg.Precision, delta))
		case delta < 0:
			return green(fmt.Sprintf("%.*f ▼", cfg.Precision, delta))
		default:
			return yellow(fmt.Sprintf("%.*f", cfg.Precision, 0.0))
		}
	}
}

// writeComparisonTable writes the per-url deltas and the audit-level summary.
func writeComparisonTable(w io.Writer, result schema.ComparisonResult, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	table := tablewriter.NewWriter(w)
	defer func() { _ = table.Close() }()

	headers := []string{"Rank", "URL", "Before", "After", "Delta", "Status"}
	if cfg.Detail {
		headers = append(headers, "Δ Scripting")
	}
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	formatDelta := deltaFormatter(cfg)
	urlWidth := GetMaxTableURLWidth(cfg)
	var data [][]string
	for i, d := range result.Details {
		row := []string{
			strconv.Itoa(i + 1),
			contract.TruncateURL(d.URL, urlWidth),
			fmtFloat(d.BeforeTotal),
			fmtFloat(d.AfterTotal),
			formatDelta(d.DeltaTotal),
			string(d.Status),
		}
		if cfg.Detail {
			row = append(row, formatDelta(d.DeltaScripting))
		}
		data = append(data, row)
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	s := result.Summary
	lines := []string{
		fmt.Sprintf("Bootup time: %s → %s (%s ms)", schema.FormatDisplayValue(s.BaseBootupMs), schema.FormatDisplayValue(s.TargetBootupMs), formatDelta(s.DeltaBootupMs)),
		fmt.Sprintf("Score: %.2f → %.2f (%+.2f)", s.BaseScore, s.TargetScore, s.DeltaScore),
		fmt.Sprintf("TBT impact delta: %s ms", formatDelta(s.DeltaTBTImpact)),
		fmt.Sprintf("New urls: %d, inactive urls: %d", s.NewURLCount, s.InactiveURLCount),
		fmt.Sprintf("Comparison completed in %v with %d workers. Cache backend: %s", duration, cfg.Workers, cfg.CacheBackend),
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// writeComparisonCSV writes one row per changed url.
func writeComparisonCSV(w io.Writer, result schema.ComparisonResult, fmtFloat func(float64) string) error {
	header := []string{
		"url",
		"status",
		"before_total_ms",
		"after_total_ms",
		"delta_total_ms",
		"before_scripting_ms",
		"after_scripting_ms",
		"delta_scripting_ms",
	}
	return writeCSV(w, header, func(cw *csv.Writer) error {
		for _, d := range result.Details {
			rec := []string{
				d.URL,
				string(d.Status),
				fmtFloat(d.BeforeTotal),
				fmtFloat(d.AfterTotal),
				fmtFloat(d.DeltaTotal),
				fmtFloat(d.BeforeScripting),
				fmtFloat(d.AfterScripting),
				fmtFloat(d.DeltaScripting),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}
