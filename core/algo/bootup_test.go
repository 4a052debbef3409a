package algo

import (
	"fmt"
	"testing"

	"github.com/huangsam/bootup/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func urlTimings(url string, values map[schema.TaskGroup]float64) schema.URLTimings {
	var groups schema.GroupTimings
	for g, v := range values {
		groups[g] = v
	}
	return schema.URLTimings{URL: url, Groups: groups}
}

func TestComputeBootup_ThresholdExample(t *testing.T) {
	timings := []schema.URLTimings{
		urlTimings("A", map[schema.TaskGroup]float64{schema.ScriptEvaluation: 80, schema.ScriptParseCompile: 20}),
		urlTimings("B", map[schema.TaskGroup]float64{schema.ScriptEvaluation: 10, schema.ScriptParseCompile: 5}),
	}

	out, err := ComputeBootup(timings, 1, schema.DefaultBootupOptions())
	require.NoError(t, err)

	require.Len(t, out.RankedResults, 1)
	assert.Equal(t, "A", out.RankedResults[0].URL)
	assert.Equal(t, 100.0, out.RankedResults[0].Total)
	assert.Equal(t, 80.0, out.RankedResults[0].Scripting)
	assert.Equal(t, 20.0, out.RankedResults[0].ScriptParseCompile)
	assert.Equal(t, 100.0, out.TotalBootupTimeMs)
	assert.False(t, out.NotApplicable)
	assert.False(t, out.HadExcessiveExtensionOverhead)
}

func TestComputeBootup_TotalIncludesAllGroups(t *testing.T) {
	timings := []schema.URLTimings{
		urlTimings("app.js", map[schema.TaskGroup]float64{
			schema.ScriptEvaluation:  20,
			schema.StyleLayout:       25,
			schema.GarbageCollection: 10,
		}),
	}

	out, err := ComputeBootup(timings, 1, schema.DefaultBootupOptions())
	require.NoError(t, err)
	require.Len(t, out.RankedResults, 1)
	assert.Equal(t, 55.0, out.RankedResults[0].Total)
	assert.Equal(t, 0.0, out.RankedResults[0].ScriptParseCompile, "absent group defaults to zero")
	assert.Equal(t, 20.0, out.TotalBootupTimeMs, "only script groups count towards bootup")
}

func TestComputeBootup_Multiplier(t *testing.T) {
	timings := []schema.URLTimings{
		urlTimings("a.js", map[schema.TaskGroup]float64{schema.ScriptEvaluation: 40, schema.ParseHTML: 30}),
		urlTimings("b.js", map[schema.TaskGroup]float64{schema.ScriptParseCompile: 60}),
	}
	opts := schema.BootupOptions{P10: 1282, Median: 3500, ThresholdMs: 0}

	base, err := ComputeBootup(timings, 1, opts)
	require.NoError(t, err)
	scaled, err := ComputeBootup(timings, 4, opts)
	require.NoError(t, err)

	require.Len(t, scaled.RankedResults, len(base.RankedResults))
	for i := range base.RankedResults {
		b, s := base.RankedResults[i], scaled.RankedResults[i]
		assert.Equal(t, b.URL, s.URL)
		assert.InDelta(t, 4*b.Total, s.Total, 1e-9)
		assert.InDelta(t, 4*b.Scripting, s.Scripting, 1e-9)
		for g := range b.Groups {
			assert.InDelta(t, 4*b.Groups[g], s.Groups[g], 1e-9)
		}
	}
	assert.InDelta(t, 4*base.TotalBootupTimeMs, scaled.TotalBootupTimeMs, 1e-9)
	assert.Equal(t, 40.0, timings[0].Groups[schema.ScriptEvaluation], "input is not mutated")
}

func TestComputeBootup_MultiplierMovesURLsAcrossThreshold(t *testing.T) {
	timings := []schema.URLTimings{
		urlTimings("a.js", map[schema.TaskGroup]float64{schema.ScriptEvaluation: 20}),
	}

	out, err := ComputeBootup(timings, 1, schema.DefaultBootupOptions())
	require.NoError(t, err)
	assert.True(t, out.NotApplicable)
	assert.Equal(t, 0.0, out.TotalBootupTimeMs)
	assert.Equal(t, 1.0, out.Score, "score still computed when not applicable")

	out, err = ComputeBootup(timings, 4, schema.DefaultBootupOptions())
	require.NoError(t, err)
	assert.False(t, out.NotApplicable)
	assert.Equal(t, 80.0, out.TotalBootupTimeMs)
}

func TestComputeBootup_SortedDescendingStable(t *testing.T) {
	timings := []schema.URLTimings{
		urlTimings("first-tie.js", map[schema.TaskGroup]float64{schema.ScriptEvaluation: 60}),
		urlTimings("big.js", map[schema.TaskGroup]float64{schema.ScriptEvaluation: 300}),
		urlTimings("second-tie.js", map[schema.TaskGroup]float64{schema.OtherGroup: 60}),
		urlTimings("mid.js", map[schema.TaskGroup]float64{schema.ScriptEvaluation: 120}),
	}

	out, err := ComputeBootup(timings, 1, schema.DefaultBootupOptions())
	require.NoError(t, err)

	urls := make([]string, len(out.RankedResults))
	for i, r := range out.RankedResults {
		urls[i] = r.URL
	}
	assert.Equal(t, []string{"big.js", "mid.js", "first-tie.js", "second-tie.js"}, urls)
}

func TestComputeBootup_ExtensionOverhead(t *testing.T) {
	tests := []struct {
		name     string
		timings  []schema.URLTimings
		opts     schema.BootupOptions
		expected bool
	}{
		{
			name:     "no extension",
			timings:  []schema.URLTimings{urlTimings("https://a.test/app.js", map[schema.TaskGroup]float64{schema.ScriptEvaluation: 500})},
			opts:     schema.DefaultBootupOptions(),
			expected: false,
		},
		{
			name:     "extension below limit",
			timings:  []schema.URLTimings{urlTimings("chrome-extension://xyz/foo.js", map[schema.TaskGroup]float64{schema.ScriptEvaluation: 100})},
			opts:     schema.DefaultBootupOptions(),
			expected: false,
		},
		{
			name: "extension above limit but filtered",
			timings: []schema.URLTimings{
				urlTimings("chrome-extension://xyz/foo.js", map[schema.TaskGroup]float64{schema.ScriptEvaluation: 150}),
			},
			opts:     schema.BootupOptions{P10: 1282, Median: 3500, ThresholdMs: 200},
			expected: true,
		},
		{
			name: "sticky once set",
			timings: []schema.URLTimings{
				urlTimings("chrome-extension://xyz/foo.js", map[schema.TaskGroup]float64{schema.ScriptEvaluation: 150}),
				urlTimings("chrome-extension://abc/bar.js", map[schema.TaskGroup]float64{schema.ScriptEvaluation: 1}),
				urlTimings("https://a.test/app.js", map[schema.TaskGroup]float64{schema.ScriptEvaluation: 10}),
			},
			opts:     schema.DefaultBootupOptions(),
			expected: true,
		},
		{
			name: "parse time alone does not count",
			timings: []schema.URLTimings{
				urlTimings("chrome-extension://xyz/foo.js", map[schema.TaskGroup]float64{schema.ScriptParseCompile: 500}),
			},
			opts:     schema.DefaultBootupOptions(),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := ComputeBootup(tt.timings, 1, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out.HadExcessiveExtensionOverhead)
		})
	}

	t.Run("post-multiplier", func(t *testing.T) {
		timings := []schema.URLTimings{
			urlTimings("chrome-extension://xyz/foo.js", map[schema.TaskGroup]float64{schema.ScriptEvaluation: 30}),
		}
		out, err := ComputeBootup(timings, 4, schema.DefaultBootupOptions())
		require.NoError(t, err)
		assert.True(t, out.HadExcessiveExtensionOverhead)
	})
}

func TestComputeBootup_Empty(t *testing.T) {
	out, err := ComputeBootup(nil, 1, schema.DefaultBootupOptions())
	require.NoError(t, err)
	assert.True(t, out.NotApplicable)
	assert.Empty(t, out.RankedResults)
	assert.Equal(t, 1.0, out.Score)
}

func TestComputeBootup_InvalidCurve(t *testing.T) {
	_, err := ComputeBootup(nil, 1, schema.BootupOptions{P10: 10, Median: 5})
	assert.ErrorIs(t, err, schema.ErrInvalidCurve)
}

func TestComputeBootup_BootupMatchesRankedRows(t *testing.T) {
	var timings []schema.URLTimings
	for i := range 40 {
		timings = append(timings, urlTimings(fmt.Sprintf("u%d.js", i), map[schema.TaskGroup]float64{
			schema.ScriptEvaluation:   float64(i * 3 % 47),
			schema.ScriptParseCompile: float64(i * 7 % 13),
			schema.StyleLayout:        float64(i % 11),
		}))
	}

	out, err := ComputeBootup(timings, 1.5, schema.DefaultBootupOptions())
	require.NoError(t, err)

	var sum float64
	for _, r := range out.RankedResults {
		assert.GreaterOrEqual(t, r.Total, 50.0)
		sum += r.Scripting + r.ScriptParseCompile
	}
	assert.InDelta(t, sum, out.TotalBootupTimeMs, 1e-9)
}
