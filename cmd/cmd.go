// Package cmd defines the command-line interface for bootup.
package cmd

import (
	"github.com/huangsam/bootup/internal/contract"
	"github.com/huangsam/bootup/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(mcpCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	// Add the history subcommands to the parent history command
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyStatusCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().Float64("p10", schema.DefaultP10, "Bootup time in ms that scores 0.9 on the log-normal curve")
	rootCmd.PersistentFlags().Float64("median", schema.DefaultMedian, "Bootup time in ms that scores 0.5 on the log-normal curve")
	rootCmd.PersistentFlags().Float64("threshold-ms", schema.DefaultThresholdMs, "Minimum main-thread time for a url to be counted")
	rootCmd.PersistentFlags().String("throttling-method", "", "Override the recorded throttling method: simulate or devtools or provided")
	rootCmd.PersistentFlags().Float64("cpu-slowdown", 0, "Override the recorded CPU slowdown multiplier (0 = use bundle settings)")
	rootCmd.PersistentFlags().String("self-eval-url", schema.DefaultSelfEvalURL, "Pseudo-url of the collector's own injected script, excluded from results")
	rootCmd.PersistentFlags().String("pass", schema.DefaultPass, "Pass of the bundle whose artifacts are audited")
	rootCmd.PersistentFlags().Bool("detail", false, "Print the time of every task group per url")
	rootCmd.PersistentFlags().IntP("limit", "l", contract.DefaultResultLimit, "Number of results to display")
	rootCmd.PersistentFlags().StringP("output", "o", string(schema.TextOut), "Output format: text or csv or json or yaml or prom or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent workers")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.SQLiteBackend), "Cache backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("history-backend", "", "History tracking backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("history-db-connect", "", "Database connection string for history tracking (must differ from cache-db-connect)")
	rootCmd.PersistentFlags().String("fault-log", "", "Append recoverable audit failures to this JSON-lines file")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("emoji", "no", "Enable emojis in headers (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of auditCmd to Viper
	auditCmd.Flags().BoolP("watch", "w", false, "Re-run the audit whenever a bundle file changes")
	if err := viper.BindPFlags(auditCmd.Flags()); err != nil {
		contract.LogFatal("Error binding audit flags", err)
	}

	// Bind all flags of checkCmd to Viper
	checkCmd.Flags().Float64("min-score", 0, "Fail when a bundle scores below this value (0 = disabled)")
	checkCmd.Flags().Float64("max-bootup-ms", 0, "Fail when a bundle's bootup time exceeds this many ms (0 = disabled)")
	if err := viper.BindPFlags(checkCmd.Flags()); err != nil {
		contract.LogFatal("Error binding check flags", err)
	}

	// Bind all flags of historyMigrateCmd to Viper
	historyMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(historyMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding history migrate flags", err)
	}
}
