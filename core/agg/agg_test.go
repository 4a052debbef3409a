package agg

import (
	"testing"

	"github.com/huangsam/bootup/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func task(group schema.TaskGroup, selfTime float64, urls ...string) schema.MainThreadTask {
	return schema.MainThreadTask{AttributableURLs: urls, Group: group, SelfTime: selfTime}
}

func script(url string) schema.NetworkRecord {
	return schema.NetworkRecord{URL: url, ResourceType: schema.ScriptResourceType}
}

func TestGetExecutionTimingsByURL(t *testing.T) {
	records := []schema.NetworkRecord{
		script("https://a.test/app.js"),
		script("https://a.test/lib.js"),
		{URL: "https://a.test/", ResourceType: "Document"},
	}
	tasks := []schema.MainThreadTask{
		task(schema.ScriptEvaluation, 10, "https://a.test/app.js"),
		task(schema.ParseHTML, 4, "https://a.test/"),
		task(schema.ScriptParseCompile, 3, "https://a.test/app.js"),
		task(schema.ScriptEvaluation, 7, "https://a.test/lib.js"),
		task(schema.ScriptEvaluation, 2, "https://a.test/app.js"),
	}

	timings := GetExecutionTimingsByURL(tasks, records, schema.DefaultSelfEvalURL)
	require.Len(t, timings, 3)

	assert.Equal(t, "https://a.test/app.js", timings[0].URL)
	assert.Equal(t, 12.0, timings[0].Groups[schema.ScriptEvaluation])
	assert.Equal(t, 3.0, timings[0].Groups[schema.ScriptParseCompile])

	assert.Equal(t, "https://a.test/", timings[1].URL, "non-script URLs are kept as fallback attribution")
	assert.Equal(t, 4.0, timings[1].Groups[schema.ParseHTML])

	assert.Equal(t, "https://a.test/lib.js", timings[2].URL)
	assert.Equal(t, 7.0, timings[2].Groups.Total())
}

func TestAttributionPrefersScriptURL(t *testing.T) {
	records := []schema.NetworkRecord{script("https://a.test/app.js")}
	tasks := []schema.MainThreadTask{
		task(schema.ScriptEvaluation, 5, "https://a.test/", "https://a.test/app.js"),
	}

	timings := GetExecutionTimingsByURL(tasks, records, schema.DefaultSelfEvalURL)
	require.Len(t, timings, 1)
	assert.Equal(t, "https://a.test/app.js", timings[0].URL)
}

func TestAttributionUnattributable(t *testing.T) {
	tasks := []schema.MainThreadTask{
		task(schema.OtherGroup, 1),
		task(schema.OtherGroup, 2, "about:blank"),
		task(schema.GarbageCollection, 3, ""),
	}

	timings := GetExecutionTimingsByURL(tasks, nil, schema.DefaultSelfEvalURL)
	require.Len(t, timings, 1)
	assert.Equal(t, schema.UnattributableURL, timings[0].URL)
	assert.Equal(t, 3.0, timings[0].Groups[schema.OtherGroup])
	assert.Equal(t, 3.0, timings[0].Groups[schema.GarbageCollection])
}

func TestSelfEvalURLExcluded(t *testing.T) {
	tasks := []schema.MainThreadTask{
		task(schema.ScriptEvaluation, 5000, schema.DefaultSelfEvalURL),
		task(schema.ScriptEvaluation, 10, "https://a.test/app.js"),
		task(schema.ScriptEvaluation, 40, "custom-eval.js"),
	}

	timings := GetExecutionTimingsByURL(tasks, nil, schema.DefaultSelfEvalURL)
	for _, tm := range timings {
		assert.NotEqual(t, schema.DefaultSelfEvalURL, tm.URL)
	}
	assert.Len(t, timings, 2)

	timings = GetExecutionTimingsByURL(tasks, nil, "custom-eval.js")
	require.Len(t, timings, 2)
	assert.Equal(t, schema.DefaultSelfEvalURL, timings[0].URL, "only the configured URL is excluded")
	assert.Equal(t, "https://a.test/app.js", timings[1].URL)
}

func TestEmptyInputs(t *testing.T) {
	assert.Empty(t, GetExecutionTimingsByURL(nil, nil, schema.DefaultSelfEvalURL))
	assert.Empty(t, GetExecutionTimingsByURL([]schema.MainThreadTask{}, []schema.NetworkRecord{}, schema.DefaultSelfEvalURL))
}

func TestAggregationConservesTime(t *testing.T) {
	tasks := []schema.MainThreadTask{
		task(schema.ScriptEvaluation, 1.5, "a.js"),
		task(schema.StyleLayout, 2.25, "b.js"),
		task(schema.PaintCompositeRender, 3, "a.js"),
		task(schema.OtherGroup, 4),
		task(schema.ScriptEvaluation, 100, schema.DefaultSelfEvalURL),
	}

	timings := GetExecutionTimingsByURL(tasks, nil, schema.DefaultSelfEvalURL)
	var sum float64
	for _, tm := range timings {
		sum += tm.Groups.Total()
	}
	assert.InDelta(t, 10.75, sum, 1e-9)
}
