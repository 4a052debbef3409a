package algo

import (
	"strings"

	"github.com/huangsam/bootup/schema"
)

// meetsThreshold decides both which URLs count towards the bootup total and
// which are kept in the ranked results.
func meetsThreshold(total, thresholdMs float64) bool {
	return total >= thresholdMs
}

// ComputeBootup folds raw per-URL timings into the scaled, filtered and ranked
// bootup result. It is pure: the accumulators live only for this call.
func ComputeBootup(timings []schema.URLTimings, multiplier float64, opts schema.BootupOptions) (schema.BootupComputation, error) {
	var out schema.BootupComputation
	candidates := make([]schema.URLResult, 0, len(timings))

	for _, t := range timings {
		result := scaleURLTimings(t, multiplier)

		if meetsThreshold(result.Total, opts.ThresholdMs) {
			out.TotalBootupTimeMs += result.Scripting + result.ScriptParseCompile
		}
		if isExtensionOverhead(result) {
			out.HadExcessiveExtensionOverhead = true
		}
		candidates = append(candidates, result)
	}

	ranked := make([]schema.URLResult, 0, len(candidates))
	for _, c := range candidates {
		if meetsThreshold(c.Total, opts.ThresholdMs) {
			ranked = append(ranked, c)
		}
	}
	SortByTotal(ranked)

	score, err := LogNormalScore(opts.P10, opts.Median, out.TotalBootupTimeMs)
	if err != nil {
		return schema.BootupComputation{}, err
	}

	out.RankedResults = ranked
	out.Score = score
	out.NotApplicable = len(ranked) == 0
	return out, nil
}

// scaleURLTimings applies the multiplier to every group and totals them in one pass.
func scaleURLTimings(t schema.URLTimings, multiplier float64) schema.URLResult {
	groups := t.Groups.Scaled(multiplier)
	return schema.URLResult{
		URL:                t.URL,
		Total:              groups.Total(),
		Scripting:          groups[schema.ScriptEvaluation],
		ScriptParseCompile: groups[schema.ScriptParseCompile],
		Groups:             groups,
	}
}

// isExtensionOverhead flags browser extensions doing noticeable script work.
func isExtensionOverhead(r schema.URLResult) bool {
	return strings.HasPrefix(r.URL, schema.ExtensionScheme) && r.Scripting > schema.ExtensionScriptingThresholdMs
}
