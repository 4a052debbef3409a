package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/huangsam/bootup/internal/contract"
	"github.com/huangsam/bootup/internal/iocache"
	"github.com/huangsam/bootup/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// historyTarget is the history database the history subcommands act on.
var historyTarget storeTarget

// historyResolve resolves the history backend without opening it, so that
// clear and migrate work on databases the store cannot open yet.
func historyResolve(_ *cobra.Command, _ []string) error {
	t, err := resolveStoreTarget("history", schema.NoneBackend)
	if err != nil {
		return err
	}
	historyTarget = t
	return nil
}

// historyOpen resolves the history backend and opens the history store.
func historyOpen(cmd *cobra.Command, args []string) error {
	if err := historyResolve(cmd, args); err != nil {
		return err
	}
	if historyTarget.backend == schema.NoneBackend {
		return errors.New("history tracking is disabled. Set --history-backend or BOOTUP_HISTORY_BACKEND")
	}
	if err := iocache.InitStores(schema.NoneBackend, "", historyTarget.backend, historyTarget.connStr); err != nil {
		return fmt.Errorf("failed to initialize history: %w", err)
	}
	return nil
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage audit history tracking and exports",
	Long: `Manage the history of audit runs used for trend tracking and reporting.

When a history backend is configured, every audit stores:
- Run metadata (bundle, page, timestamps, configuration)
- The bootup time, score and TBT impact of the run
- Every ranked url with its scripting and parse/compile time
- Faults raised while the TBT impact was computed

Supported backends: SQLite, MySQL, PostgreSQL, or None (disabled, the default)

Subcommands:
  status  - Show history tracking statistics
  export  - Export data to Parquet for analytics
  clear   - Remove all tracking data
  migrate - Run database schema migrations

Examples:
  # Track history in SQLite while auditing
  bootup audit traces/home.json --history-backend sqlite

  # Export for analysis in pandas/DuckDB
  bootup history export --history-backend sqlite --output-file bootup-history`,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all audit history",
	Long: `Delete all stored audit runs, ranked urls and faults.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  # Export before clearing
  bootup history export --output-file backup
  bootup history clear`,
	PreRunE: historyResolve,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ClearHistory(historyTarget.backend, historyTarget.sqliteFile(contract.GetHistoryDBFilePath()), historyTarget.connStr); err != nil {
			contract.LogFatal("Failed to clear history", err)
		}
		fmt.Println("History cleared successfully.")
	},
}

var historyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display history tracking statistics and connection details",
	Long: `Show detailed information about audit history tracking.

Displays:
- Backend type and connection status
- Total number of audit runs, ranked urls and faults stored
- Last and oldest audit run timestamps
- Table sizes

Examples:
  # Check history tracking status
  bootup history status --history-backend sqlite`,
	PreRunE: historyOpen,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := iocache.Manager.GetHistoryStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get history status", err)
		}
		iocache.PrintHistoryStatus(os.Stdout, status)
	},
}

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export audit history to Parquet for BI tools and analytics",
	Long: `Export all stored audit history to Parquet format for use with analytics tools.

Exports two datasets named after --output-file:
- <output-file>.audit_runs.parquet  - one row per audit run
- <output-file>.url_results.parquet - one row per ranked url

Requires: --output-file parameter

Examples:
  # Export all data
  bootup history export --output-file bootup-history

  # Query the runs with DuckDB
  duckdb -c "SELECT source, total_bootup_ms, score FROM read_parquet('bootup-history.audit_runs.parquet')"`,
	PreRunE: historyOpen,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExportHistory(os.Stdout, iocache.Manager.GetHistoryStore(), viper.GetString("output-file")); err != nil {
			contract.LogFatal("Failed to export history", err)
		}
	},
}

var historyMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the history store.

By default, migrates to the latest version. Use --target-version for specific versions.
Opening the history store during an audit also migrates it to the latest version.

Examples:
  # Migrate to latest version (default)
  bootup history migrate --history-backend sqlite

  # Migrate to specific version
  bootup history migrate --target-version 2

  # Rollback to initial state
  bootup history migrate --target-version 0`,
	PreRunE: historyResolve,
	Run: func(_ *cobra.Command, _ []string) {
		// An empty SQLite connection string falls back to the default history file
		if err := iocache.MigrateHistory(historyTarget.backend, historyTarget.connStr, viper.GetInt("target-version")); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
