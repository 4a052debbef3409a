package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/huangsam/bootup/core"
	"github.com/huangsam/bootup/internal/contract"
	"github.com/huangsam/bootup/internal/watch"
	"github.com/spf13/cobra"
)

// auditCmd ranks the scripts of one or more bundles by bootup cost.
var auditCmd = &cobra.Command{
	Use:   "audit <bundle|glob>...",
	Short: "Rank the scripts that cost the most main-thread time during page bootup",
	Long: `Audit recorded page-load trace bundles and attribute main-thread CPU time to scripts.

For every url whose main-thread time reaches the threshold, the audit reports its total
time, scripting time and parse/compile time. The scripting and parse/compile time of those
urls is summed into the bootup time, which is scored on a log-normal curve.

Under simulated throttling every time is scaled by the recorded CPU slowdown multiplier.

Bundles may be plain or compressed JSON (.gz, .zst, .xz). Globs such as traces/**/*.json.gz
are expanded, and several bundles are audited concurrently.

Examples:
  # Audit a single bundle
  bootup audit traces/home.json

  # Audit every bundle of a run and export to CSV
  bootup audit 'traces/**/*.json.gz' --output csv --output-file bootup.csv

  # Re-audit whenever the collector rewrites a bundle
  bootup audit traces/home.json --watch`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if cfg.Watch {
			if err := watchAudit(); err != nil {
				contract.LogFatal("Cannot watch bundles", err)
			}
			return
		}
		if err := core.ExecuteAudit(rootCtx, cfg, cacheManager, faultReporter); err != nil {
			contract.LogFatal("Cannot run audit", err)
		}
	},
}

// watchAudit audits every bundle once, then re-audits the bundles that change
// until the process is interrupted.
func watchAudit() error {
	ctx, stop := signal.NotifyContext(rootCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := core.ExecuteAudit(ctx, cfg, cacheManager, faultReporter); err != nil {
		contract.LogWarn("Initial audit failed", err)
	}
	_, _ = fmt.Fprintf(os.Stderr, "Watching %d bundle(s) for changes. Press Ctrl+C to stop.\n", len(cfg.Bundles))

	return watch.Watch(ctx, cfg.Bundles, func(ctx context.Context, changed []string) error {
		_, _ = fmt.Fprintf(os.Stderr, "Changed: %s\n", strings.Join(changed, ", "))
		rerun := cfg.Clone()
		rerun.Bundles = changed
		return core.ExecuteAudit(ctx, rerun, cacheManager, faultReporter)
	})
}
