package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/bootup/core/algo"
	"github.com/huangsam/bootup/internal/contract"
	"github.com/huangsam/bootup/internal/parquet"
	"github.com/huangsam/bootup/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// writeAuditResults dispatches audit outcomes based on the output format configured.
func writeAuditResults(w io.Writer, outcomes []*schema.AggregateOutcome, cfg *contract.Config, duration time.Duration) error {
	fmtFloat := floatFormatter(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeJSON(w, auditViews(outcomes, cfg.ResultLimit)); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.YAMLOut:
		if err := writeYAML(w, auditViews(outcomes, cfg.ResultLimit)); err != nil {
			return fmt.Errorf("error writing YAML output: %w", err)
		}
	case schema.CSVOut:
		if err := writeAuditCSV(w, outcomes, cfg, fmtFloat); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.PromOut:
		if err := writePromFamilies(w, auditFamilies(outcomes, cfg.ResultLimit)); err != nil {
			return fmt.Errorf("error writing Prometheus output: %w", err)
		}
	case schema.ParquetOut:
		if err := parquet.WriteAuditRows(w, parquet.ConvertOutcomes(limitOutcomes(outcomes, cfg.ResultLimit))); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		return writeAuditTables(w, outcomes, cfg, fmtFloat, duration)
	}
	return nil
}

func auditViews(outcomes []*schema.AggregateOutcome, limit int) []auditView {
	views := make([]auditView, len(outcomes))
	for i, o := range outcomes {
		views[i] = newAuditView(o, limit)
	}
	return views
}

// limitOutcomes returns shallow copies of outcomes with their ranked rows capped.
func limitOutcomes(outcomes []*schema.AggregateOutcome, limit int) []*schema.AggregateOutcome {
	limited := make([]*schema.AggregateOutcome, len(outcomes))
	for i, o := range outcomes {
		c := *o
		c.RankedResults = algo.TopResults(o.RankedResults, limit)
		limited[i] = &c
	}
	return limited
}

// writeAuditTables writes one human-readable table per outcome and a run summary.
func writeAuditTables(w io.Writer, outcomes []*schema.AggregateOutcome, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	for _, o := range outcomes {
		if len(outcomes) > 1 {
			if _, err := fmt.Fprintf(w, "\n%s (%s)\n", o.Source, o.PageURL); err != nil {
				return err
			}
		}
		if err := writeAuditTable(w, o, cfg, fmtFloat); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "Audit completed in %v with %d workers. Cache backend: %s\n", duration, cfg.Workers, cfg.CacheBackend)
	return err
}

// writeAuditTable writes the ranked rows and the summary line of one outcome.
func writeAuditTable(w io.Writer, o *schema.AggregateOutcome, cfg *contract.Config, fmtFloat func(float64) string) error {
	results := algo.TopResults(o.RankedResults, cfg.ResultLimit)

	if o.NotApplicable {
		if _, err := fmt.Fprintf(w, "No script reached the %s ms threshold.\n", fmtFloat(o.Options.ThresholdMs)); err != nil {
			return err
		}
	} else {
		table := tablewriter.NewWriter(w)
		defer func() { _ = table.Close() }()

		headers := []string{"Rank", "URL", "Total", "Script Evaluation", "Script Parse"}
		groups := detailGroups()
		if cfg.Detail {
			for _, g := range groups {
				headers = append(headers, g.Label())
			}
		}
		table.Header(headers)
		table.Configure(func(cfg *tablewriter.Config) {
			cfg.Row.Alignment.Global = tw.AlignRight
		})

		urlWidth := GetMaxTableURLWidth(cfg)
		var data [][]string
		for i, r := range results {
			row := []string{
				strconv.Itoa(i + 1),
				contract.TruncateURL(r.URL, urlWidth),
				fmtFloat(r.Total),
				fmtFloat(r.Scripting),
				fmtFloat(r.ScriptParseCompile),
			}
			if cfg.Detail {
				for _, g := range groups {
					row = append(row, fmtFloat(r.Groups.Get(g)))
				}
			}
			data = append(data, row)
		}

		if err := table.Bulk(data); err != nil {
			return err
		}
		if err := table.Render(); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, "Bootup time: %s (score: %.2f, %s). TBT impact: %s ms. CPU multiplier: x%.1f\n",
		o.DisplayValue, o.Score, ratingLabel(o.Score, cfg), fmtFloat(o.TBTImpactMs), o.Multiplier); err != nil {
		return err
	}
	if len(results) < len(o.RankedResults) {
		if _, err := fmt.Fprintf(w, "Showing top %d of %d urls\n", len(results), len(o.RankedResults)); err != nil {
			return err
		}
	}
	for _, warning := range o.Warnings {
		if _, err := fmt.Fprintf(w, "Warning: %s\n", warning); err != nil {
			return err
		}
	}
	return nil
}

// writeAuditCSV writes one row per ranked url. Outcomes without rows get a single summary row.
func writeAuditCSV(w io.Writer, outcomes []*schema.AggregateOutcome, cfg *contract.Config, fmtFloat func(float64) string) error {
	header := []string{
		"source",
		"page_url",
		"rank",
		"url",
		"total_ms",
		"scripting_ms",
		"script_parse_compile_ms",
		"bootup_ms",
		"score",
		"rating",
		"tbt_impact_ms",
	}
	groups := detailGroups()
	if cfg.Detail {
		for _, g := range groups {
			header = append(header, g.String()+"_ms")
		}
	}

	return writeCSV(w, header, func(cw *csv.Writer) error {
		for _, o := range outcomes {
			summary := []string{
				fmtFloat(o.TotalBootupTimeMs),
				fmtFloat(o.Score),
				string(schema.GetRating(o.Score)),
				fmtFloat(o.TBTImpactMs),
			}

			results := algo.TopResults(o.RankedResults, cfg.ResultLimit)
			if len(results) == 0 {
				rec := append([]string{o.Source, o.PageURL, "", "", "", "", ""}, summary...)
				if cfg.Detail {
					rec = append(rec, make([]string, len(groups))...)
				}
				if err := cw.Write(rec); err != nil {
					return err
				}
				continue
			}

			for i, r := range results {
				rec := []string{
					o.Source,
					o.PageURL,
					strconv.Itoa(i + 1),
					r.URL,
					fmtFloat(r.Total),
					fmtFloat(r.Scripting),
					fmtFloat(r.ScriptParseCompile),
				}
				rec = append(rec, summary...)
				if cfg.Detail {
					for _, g := range groups {
						rec = append(rec, fmtFloat(r.Groups.Get(g)))
					}
				}
				if err := cw.Write(rec); err != nil {
					return err
				}
			}
		}
		return nil
	})
}
