package cmd

import (
	"github.com/huangsam/bootup/core"
	"github.com/huangsam/bootup/internal/contract"
	"github.com/spf13/cobra"
)

// metricsCmd displays the scoring curve of the bootup time.
var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Display the scoring formula and sample scores of the bootup time",
	Long: `Show how the bootup time is computed and scored.

Includes:
- The task groups that count towards the bootup time
- The log-normal control points (p10 and median)
- The noise threshold
- Scores of sample bootup times

No bundle is audited - this is purely informational.

Examples:
  # Show the default curve
  bootup metrics

  # Preview a stricter curve
  bootup metrics --p10 1000 --median 2500`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteMetrics(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot display metrics", err)
		}
	},
}
