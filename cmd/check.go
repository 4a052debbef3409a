package cmd

import (
	"github.com/huangsam/bootup/core"
	"github.com/huangsam/bootup/internal/contract"
	"github.com/spf13/cobra"
)

// checkCmd focused on CI/CD policy enforcement.
var checkCmd = &cobra.Command{
	Use:   "check <bundle|glob>...",
	Short: "Enforce bootup budgets for CI/CD pipelines (fails build on violations)",
	Long: `Audit bundles and fail with a non-zero exit code when any of them breaks a budget.

Budgets:
  --min-score      fail when the log-normal score is below this value (0-1)
  --max-bootup-ms  fail when the bootup time exceeds this many milliseconds

A budget of 0 is disabled. Violations are listed before the command exits.

Examples:
  # Require a good score on every page
  bootup check 'traces/**/*.json' --min-score 0.9

  # Cap bootup time at two seconds
  bootup check traces/home.json --max-bootup-ms 2000`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteCheck(rootCtx, cfg, cacheManager, faultReporter); err != nil {
			contract.LogFatal("Budget check failed", err)
		}
	},
}
