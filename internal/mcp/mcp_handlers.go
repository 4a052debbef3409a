package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/huangsam/bootup/core"
	"github.com/huangsam/bootup/internal/contract"
	"github.com/huangsam/bootup/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg  *contract.Config
	mgr      contract.CacheManager
	reporter contract.FaultReporter
}

// bootupResponse is the tool payload of one audit. Ranked rows carry their rank.
type bootupResponse struct {
	*schema.AggregateOutcome
	Rating        schema.Rating              `json:"rating"`
	RankedResults []schema.EnrichedURLResult `json:"ranked_results"`
}

// applyOverrides copies the optional tool arguments shared by both tools onto cfg.
func applyOverrides(cfg *contract.Config, request mcp.CallToolRequest) error {
	if l := request.GetInt("limit", 0); l > 0 {
		if l > contract.MaxResultLimit {
			return fmt.Errorf("limit cannot exceed %d", contract.MaxResultLimit)
		}
		cfg.ResultLimit = l
	}
	if th := request.GetFloat("threshold_ms", -1); th >= 0 {
		cfg.Options.ThresholdMs = th
	}
	if m := strings.ToLower(request.GetString("throttling_method", "")); m != "" {
		method := schema.ThrottlingMethod(m)
		if _, ok := schema.ValidThrottlingMethods[method]; !ok {
			return fmt.Errorf("invalid throttling method %q", m)
		}
		cfg.ThrottlingMethod = method
	}
	if c := request.GetFloat("cpu_slowdown", 0); c != 0 {
		if c < 0 {
			return fmt.Errorf("cpu_slowdown cannot be negative")
		}
		cfg.CPUSlowdown = c
	}
	return nil
}

func (h *toolHandler) handleGetBootupTime(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	path := request.GetString("bundle_path", "")
	if path == "" {
		return mcp.NewToolResultError("bundle_path is required"), nil
	}
	if err := applyOverrides(cfg, request); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid audit parameters: %v", err)), nil
	}

	outcome, err := core.AuditBundle(core.WithSuppressHeader(ctx), cfg, path, h.mgr, h.reporter)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("audit failed: %v", err)), nil
	}

	results := outcome.RankedResults
	if len(results) > cfg.ResultLimit && cfg.ResultLimit > 0 {
		results = results[:cfg.ResultLimit]
	}
	resp := bootupResponse{
		AggregateOutcome: outcome,
		Rating:           schema.GetRating(outcome.Score),
		RankedResults:    schema.EnrichResults(results),
	}
	jsonData, _ := json.MarshalIndent(resp, "", "  ")

	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleCompareBootupTime(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	basePath := request.GetString("base_path", "")
	targetPath := request.GetString("target_path", "")
	if basePath == "" || targetPath == "" {
		return mcp.NewToolResultError("base_path and target_path are required"), nil
	}
	if err := applyOverrides(cfg, request); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid comparison parameters: %v", err)), nil
	}

	result, err := core.CompareBundles(core.WithSuppressHeader(ctx), cfg, basePath, targetPath, h.mgr, h.reporter)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("comparison failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(result, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
