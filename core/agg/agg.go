// Package agg has aggregation logic for main-thread execution timings.
package agg

import (
	"github.com/huangsam/bootup/schema"
)

// aboutBlank is never a meaningful attribution target.
const aboutBlank = "about:blank"

// GetExecutionTimingsByURL attributes every task to a URL and sums its self time
// into the bucket of its group. URLs are returned in first-occurrence order with
// raw (unscaled) durations. Tasks attributed to selfEvalURL are dropped.
func GetExecutionTimingsByURL(tasks []schema.MainThreadTask, records []schema.NetworkRecord, selfEvalURL string) []schema.URLTimings {
	jsURLs := buildJSURLSet(records)

	index := make(map[string]int)
	var timings []schema.URLTimings

	for _, task := range tasks {
		url := attributableURL(task, jsURLs)
		if url == selfEvalURL {
			continue
		}
		if !task.Group.Valid() {
			continue // unreachable for decoded bundles
		}

		i, ok := index[url]
		if !ok {
			i = len(timings)
			index[url] = i
			timings = append(timings, schema.URLTimings{URL: url})
		}
		timings[i].Groups[task.Group] += task.SelfTime
	}

	return timings
}

// buildJSURLSet creates a lookup set of the URLs of script resources.
func buildJSURLSet(records []schema.NetworkRecord) map[string]struct{} {
	jsURLs := make(map[string]struct{})
	for _, r := range records {
		if r.ResourceType == schema.ScriptResourceType {
			jsURLs[r.URL] = struct{}{}
		}
	}
	return jsURLs
}

// attributableURL prefers the first attributable URL that is a known script,
// then the first attributable URL, then the Unattributable pseudo-URL.
func attributableURL(task schema.MainThreadTask, jsURLs map[string]struct{}) string {
	for _, url := range task.AttributableURLs {
		if _, ok := jsURLs[url]; ok {
			return url
		}
	}
	if len(task.AttributableURLs) == 0 {
		return schema.UnattributableURL
	}
	fallback := task.AttributableURLs[0]
	if fallback == "" || fallback == aboutBlank {
		return schema.UnattributableURL
	}
	return fallback
}
