// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/bootup/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Tool names exposed by the server.
const (
	getBootupTimeTool     = "get_bootup_time"
	compareBootupTimeTool = "compare_bootup_time"
)

// NewMCPServer initializes and configures the bootup MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager, reporter contract.FaultReporter) *server.MCPServer {
	s := server.NewMCPServer(
		"Bootup Time Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg:  baseCfg,
		mgr:      mgr,
		reporter: reporter,
	}

	s.AddTool(mcp.NewTool(getBootupTimeTool,
		mcp.WithDescription("Audit a recorded page-load trace bundle and rank the scripts that cost the most main-thread time during bootup."),
		mcp.WithString("bundle_path", mcp.Description("Path to the trace bundle (.json, .json.gz, .json.zst or .json.xz)."), mcp.Required()),
		mcp.WithNumber("limit", mcp.Description("Limit the number of ranked urls returned.")),
		mcp.WithNumber("threshold_ms", mcp.Description("Minimum main-thread time for a url to be counted. Defaults to 50.")),
		mcp.WithString("throttling_method", mcp.Description("Override the recorded throttling method."), mcp.Enum("simulate", "devtools", "provided")),
		mcp.WithNumber("cpu_slowdown", mcp.Description("Override the recorded CPU slowdown multiplier.")),
	), h.handleGetBootupTime)

	s.AddTool(mcp.NewTool(compareBootupTimeTool,
		mcp.WithDescription("Compare the bootup time of two trace bundles of the same page, e.g. before and after a change."),
		mcp.WithString("base_path", mcp.Description("Path to the base (before) trace bundle."), mcp.Required()),
		mcp.WithString("target_path", mcp.Description("Path to the target (after) trace bundle."), mcp.Required()),
		mcp.WithNumber("limit", mcp.Description("Limit the number of url deltas returned.")),
		mcp.WithNumber("threshold_ms", mcp.Description("Minimum main-thread time for a url to be counted.")),
	), h.handleCompareBootupTime)

	return s
}

// StartMCPServer serves the bootup tools over stdio until the client disconnects.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager, reporter contract.FaultReporter) error {
	s := NewMCPServer(baseCfg, mgr, reporter)
	return server.ServeStdio(s)
}
