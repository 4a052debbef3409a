package iocache

import (
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/bootup/internal/contract"
	"github.com/huangsam/bootup/internal/parquet"
)

// ExportHistory writes the audit history of store to two Parquet files
// named after outputFile.
func ExportHistory(w io.Writer, store contract.HistoryStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("history tracking is disabled")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get history status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no audit history found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total audit runs: %d\n", status.TotalRuns)
	_, _ = fmt.Fprintf(w, "Total url results: %d\n", status.TotalURLResults)

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve audit runs: %w", err)
	}
	results, err := store.GetAllURLResults()
	if err != nil {
		return fmt.Errorf("failed to retrieve url results: %w", err)
	}

	runsFile := outputFile + ".audit_runs.parquet"
	if err := parquet.WriteAuditRunsParquet(parquet.ConvertAuditRunRecords(runs), runsFile); err != nil {
		return fmt.Errorf("failed to write audit runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d audit runs to: %s\n", len(runs), runsFile)

	resultsFile := outputFile + ".url_results.parquet"
	if err := parquet.WriteURLResultsParquet(results, resultsFile); err != nil {
		return fmt.Errorf("failed to write url results: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d url results to: %s\n", len(results), resultsFile)

	_, _ = fmt.Fprintln(w, "\nExport complete! The Parquet files can be read by DuckDB, Pandas (via pyarrow) or Spark.")
	return nil
}
