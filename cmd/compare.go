package cmd

import (
	"fmt"

	"github.com/huangsam/bootup/core"
	"github.com/huangsam/bootup/internal/bundle"
	"github.com/huangsam/bootup/internal/contract"
	"github.com/spf13/cobra"
)

// compareSetup runs the shared setup and resolves the base and target bundles
// in the order given, since Expand sorts its result.
func compareSetup(cmd *cobra.Command, args []string) error {
	if err := sharedSetup(rootCtx, cmd, nil); err != nil {
		return err
	}
	cfg.Bundles = cfg.Bundles[:0]
	for _, arg := range args {
		paths, err := bundle.Expand([]string{arg})
		if err != nil {
			return err
		}
		if len(paths) != 1 {
			return fmt.Errorf("%s matches %d bundles, compare needs exactly one", arg, len(paths))
		}
		cfg.Bundles = append(cfg.Bundles, paths[0])
	}
	return nil
}

// compareCmd shows how bootup time moved between two bundles.
var compareCmd = &cobra.Command{
	Use:   "compare <base-bundle> <target-bundle>",
	Short: "Compare the bootup time of two bundles of the same page",
	Long: `Audit a base and a target bundle and show how each url's main-thread time moved.

Ideal for:
- Release comparisons - see which scripts got heavier between versions
- Pull request reviews - check that a change does not slow down bootup
- Regression detection - catch new or growing scripts

Urls only present in the target are reported as new, urls only present in the base as
inactive. The summary shows the change of the bootup time, the score and the TBT impact.

Examples:
  # Compare before and after a deploy
  bootup compare traces/before.json traces/after.json

  # Export the comparison as JSON
  bootup compare base.json.gz target.json.gz --output json --output-file delta.json`,
	Args:    cobra.ExactArgs(2),
	PreRunE: compareSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteCompare(rootCtx, cfg, cacheManager, faultReporter); err != nil {
			contract.LogFatal("Cannot run comparison", err)
		}
	},
}
