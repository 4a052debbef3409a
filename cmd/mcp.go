package cmd

import (
	"github.com/huangsam/bootup/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the bootup MCP server",
	Long: `Launch an MCP server over stdio that lets AI agents audit and compare trace bundles.

Tools:
  get_bootup_time     - audit one bundle
  compare_bootup_time - compare a base and a target bundle

Headers are never printed in this mode since stdout carries the protocol.`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, cacheManager, faultReporter)
	},
}
