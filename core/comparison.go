package core

import (
	"cmp"
	"math"
	"slices"

	"github.com/huangsam/bootup/core/algo"
	"github.com/huangsam/bootup/schema"
)

// minSignificantDeltaMs hides URLs whose total barely moved between two audits.
const minSignificantDeltaMs = 0.01

// compareOutcomes matches the ranked rows of the base audit against the target
// audit and computes per-URL and audit-level deltas.
func compareOutcomes(base, target *schema.AggregateOutcome, limit int) schema.ComparisonResult {
	baseMap := make(map[string]schema.URLResult, len(base.RankedResults))
	targetMap := make(map[string]schema.URLResult, len(target.RankedResults))
	urls := make([]string, 0, len(base.RankedResults)+len(target.RankedResults))

	// 1. Populate maps and collect URLs in first-seen order
	for _, r := range base.RankedResults {
		baseMap[r.URL] = r
		urls = append(urls, r.URL)
	}
	for _, r := range target.RankedResults {
		targetMap[r.URL] = r
		if _, ok := baseMap[r.URL]; !ok {
			urls = append(urls, r.URL)
		}
	}

	summary := schema.ComparisonSummary{
		BaseSource:     base.Source,
		TargetSource:   target.Source,
		BaseBootupMs:   base.TotalBootupTimeMs,
		TargetBootupMs: target.TotalBootupTimeMs,
		DeltaBootupMs:  target.TotalBootupTimeMs - base.TotalBootupTimeMs,
		BaseScore:      base.Score,
		TargetScore:    target.Score,
		DeltaScore:     target.Score - base.Score,
		DeltaTBTImpact: target.TBTImpactMs - base.TBTImpactMs,
	}

	// 2. Compare every URL; a missing side counts as zero
	details := make([]schema.ComparisonDetail, 0, len(urls))
	for _, url := range urls {
		baseR, baseExists := baseMap[url]
		targetR, targetExists := targetMap[url]

		status := determineStatus(baseExists, targetExists)
		switch status {
		case schema.NewStatus:
			summary.NewURLCount++
		case schema.InactiveStatus:
			summary.InactiveURLCount++
		}

		d := schema.ComparisonDetail{
			URL:             url,
			BeforeTotal:     baseR.Total,
			AfterTotal:      targetR.Total,
			DeltaTotal:      targetR.Total - baseR.Total,
			BeforeScripting: baseR.Scripting,
			AfterScripting:  targetR.Scripting,
			DeltaScripting:  targetR.Scripting - baseR.Scripting,
			Status:          status,
		}
		if status == schema.ActiveStatus && math.Abs(d.DeltaTotal) <= minSignificantDeltaMs {
			continue
		}
		details = append(details, d)
	}

	// 3. Sort and limit
	sortComparisonDetails(details)
	details = algo.TopResults(details, limit)

	return schema.ComparisonResult{Details: details, Summary: summary}
}

// determineStatus returns the status based on existence in base and target.
func determineStatus(baseExists, targetExists bool) schema.Status {
	switch {
	case !baseExists && targetExists:
		return schema.NewStatus
	case baseExists && !targetExists:
		return schema.InactiveStatus
	default:
		return schema.ActiveStatus
	}
}

// sortComparisonDetails sorts by absolute delta, then regressions first, then URL.
func sortComparisonDetails(details []schema.ComparisonDetail) {
	slices.SortFunc(details, func(a, b schema.ComparisonDetail) int {
		if c := cmp.Compare(math.Abs(b.DeltaTotal), math.Abs(a.DeltaTotal)); c != 0 {
			return c
		}
		if c := cmp.Compare(b.DeltaTotal, a.DeltaTotal); c != 0 {
			return c
		}
		return cmp.Compare(a.URL, b.URL)
	})
}
