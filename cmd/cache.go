package cmd

import (
	"fmt"
	"os"

	"github.com/huangsam/bootup/internal/contract"
	"github.com/huangsam/bootup/internal/iocache"
	"github.com/huangsam/bootup/schema"
	"github.com/spf13/cobra"
)

// cacheTarget is the timings cache the cache subcommands act on.
var cacheTarget storeTarget

// cacheSetup opens only the timings cache; no bundle, scoring or history setup.
func cacheSetup(_ *cobra.Command, _ []string) error {
	t, err := resolveStoreTarget("cache", schema.SQLiteBackend)
	if err != nil {
		return err
	}
	if err := iocache.InitStores(t.backend, t.connStr, "", ""); err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}
	cacheTarget = t
	return nil
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or reset the per-url timings cache",
	Long: `Inspect or reset the cache of aggregated per-url timings.

Attributing main-thread tasks to script URLs is the slow part of an audit. Its
result is stored under the bundle digest and the aggregation options, so a
re-audit with another threshold or scoring curve reads it back instead.

Backends: sqlite (default), mysql, postgresql, none.

Examples:
  bootup cache status
  bootup cache clear
  BOOTUP_CACHE_BACKEND=postgresql BOOTUP_CACHE_DB_CONNECT="host=db user=bootup dbname=bootup" bootup cache status`,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop every cached timing",
	Long: `Drop every cached timing from the configured backend.

SQLite removes the database file. MySQL and PostgreSQL drop the timings table,
which the next audit recreates.`,
	PreRunE: cacheSetup,
	Run: func(_ *cobra.Command, _ []string) {
		// The SQLite file must be released before it can be removed
		iocache.CloseStores()
		dbFile := cacheTarget.sqliteFile(contract.GetCacheDBFilePath())
		if err := iocache.ClearCache(cacheTarget.backend, dbFile, cacheTarget.connStr); err != nil {
			contract.LogFatal("Failed to clear cache", err)
		}
		fmt.Println("Cache cleared successfully.")
	},
}

var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show cache backend, entry count and size",
	Long: `Show the cache backend, whether it is reachable, how many bundles have cached
timings, when the newest and oldest entries were written and the table size.`,
	PreRunE: cacheSetup,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := iocache.Manager.GetActivityStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get cache status", err)
		}
		iocache.PrintCacheStatus(os.Stdout, status)
	},
}
