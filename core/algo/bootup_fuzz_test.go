package algo

import (
	"math"
	"testing"

	"github.com/huangsam/bootup/schema"
)

// FuzzComputeBootup checks the ranking invariants over random timings.
func FuzzComputeBootup(f *testing.F) {
	f.Add(80.0, 20.0, 10.0, 5.0, 1.0, 50.0, "chrome-extension://xyz/foo.js")
	f.Add(0.0, 0.0, 0.0, 0.0, 4.0, 0.0, "https://a.test/app.js")
	f.Add(1e6, 3.5, 1e-3, 200.0, 2.5, 1000.0, "Unattributable")

	f.Fuzz(func(t *testing.T, eval1, parse1, eval2, other2, multiplier, threshold float64, url string) {
		for _, v := range []float64{eval1, parse1, eval2, other2, multiplier, threshold} {
			if v < 0 || v > 1e9 || math.IsNaN(v) {
				t.Skip()
			}
		}

		var g1, g2 schema.GroupTimings
		g1[schema.ScriptEvaluation] = eval1
		g1[schema.ScriptParseCompile] = parse1
		g2[schema.ScriptEvaluation] = eval2
		g2[schema.OtherGroup] = other2
		timings := []schema.URLTimings{{URL: url, Groups: g1}, {URL: "second.js", Groups: g2}}

		opts := schema.BootupOptions{P10: schema.DefaultP10, Median: schema.DefaultMedian, ThresholdMs: threshold}
		out, err := ComputeBootup(timings, multiplier, opts)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var sum float64
		for i, r := range out.RankedResults {
			if r.Total < threshold {
				t.Fatalf("result %s total %v below threshold %v", r.URL, r.Total, threshold)
			}
			if i > 0 && out.RankedResults[i-1].Total < r.Total {
				t.Fatalf("results not sorted descending at %d", i)
			}
			sum += r.Scripting + r.ScriptParseCompile
		}
		if math.Abs(sum-out.TotalBootupTimeMs) > 1e-6*math.Max(1, sum) {
			t.Fatalf("bootup %v does not match ranked rows %v", out.TotalBootupTimeMs, sum)
		}
		if out.NotApplicable != (len(out.RankedResults) == 0) {
			t.Fatalf("not applicable %v with %d results", out.NotApplicable, len(out.RankedResults))
		}
		if out.Score < 0 || out.Score > 1 {
			t.Fatalf("score %v out of range", out.Score)
		}
	})
}
