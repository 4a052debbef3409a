// Package parquet exports bootup audit data to Parquet files using
// github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/bootup/schema"
	"github.com/parquet-go/parquet-go"
)

// AuditRun is one recorded audit run.
// This struct maps to the bootup_audit_runs database table.
type AuditRun struct {
	RunID   int64  `parquet:"run_id,snappy"`
	Source  string `parquet:"source,snappy"`
	PageURL string `parquet:"page_url,snappy"`

	// StartTime is stored as TIMESTAMP with nanosecond precision
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is nil for runs that never finished
	EndTime       *time.Time `parquet:"end_time,optional,snappy"`
	RunDurationMs *int32     `parquet:"run_duration_ms,optional,snappy"`

	Multiplier        float64 `parquet:"multiplier,snappy"`
	TotalBootupTimeMs float64 `parquet:"total_bootup_ms,snappy"`
	TBTImpactMs       float64 `parquet:"tbt_impact_ms,snappy"`
	Score             float64 `parquet:"score,snappy"`
	NotApplicable     bool    `parquet:"not_applicable,snappy"`
	ExtensionOverhead bool    `parquet:"extension_overhead,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// AuditRow is one ranked row of a live audit, flattened for columnar output.
type AuditRow struct {
	Source             string  `parquet:"source,snappy"`
	PageURL            string  `parquet:"page_url,snappy"`
	Rank               int32   `parquet:"rank"`
	URL                string  `parquet:"url,snappy"`
	Total              float64 `parquet:"total_ms"`
	Scripting          float64 `parquet:"scripting_ms"`
	ScriptParseCompile float64 `parquet:"script_parse_compile_ms"`
	Score              float64 `parquet:"score"`
}

// ConvertAuditRunRecords converts store records into Parquet rows.
func ConvertAuditRunRecords(records []schema.AuditRunRecord) []AuditRun {
	result := make([]AuditRun, len(records))
	for i, r := range records {
		result[i] = AuditRun{
			RunID:             r.RunID,
			Source:            r.Source,
			PageURL:           r.PageURL,
			StartTime:         r.StartTime,
			EndTime:           r.EndTime,
			RunDurationMs:     r.RunDurationMs,
			Multiplier:        r.Multiplier,
			TotalBootupTimeMs: r.TotalBootupTimeMs,
			TBTImpactMs:       r.TBTImpactMs,
			Score:             r.Score,
			NotApplicable:     r.NotApplicable,
			ExtensionOverhead: r.ExtensionOverhead,
			ConfigParams:      r.ConfigParams,
		}
	}
	return result
}

// ConvertOutcomes flattens audit outcomes into one row per ranked URL.
// Outcomes without ranked rows contribute nothing.
func ConvertOutcomes(outcomes []*schema.AggregateOutcome) []AuditRow {
	var rows []AuditRow
	for _, o := range outcomes {
		for i, r := range o.RankedResults {
			rows = append(rows, AuditRow{
				Source:             o.Source,
				PageURL:            o.PageURL,
				Rank:               int32(i + 1),
				URL:                r.URL,
				Total:              r.Total,
				Scripting:          r.Scripting,
				ScriptParseCompile: r.ScriptParseCompile,
				Score:              o.Score,
			})
		}
	}
	return rows
}

// WriteAuditRunsParquet writes audit runs to a Parquet file.
func WriteAuditRunsParquet(data []AuditRun, outputPath string) error {
	return writeFile(data, outputPath)
}

// WriteURLResultsParquet writes recorded ranked rows to a Parquet file.
func WriteURLResultsParquet(data []schema.URLResultRecord, outputPath string) error {
	return writeFile(data, outputPath)
}

// WriteAuditRows streams audit rows as Parquet to w.
func WriteAuditRows(w io.Writer, rows []AuditRow) error {
	return writeRows(w, rows)
}

func writeFile[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := writeRows(file, data); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// writeRows infers the schema from the struct tags of T.
func writeRows[T any](w io.Writer, data []T) error {
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}
