package core

import (
	"context"
	"fmt"

	"github.com/huangsam/bootup/core/algo"
	"github.com/huangsam/bootup/internal/contract"
	"github.com/huangsam/bootup/internal/outwriter"
	"github.com/huangsam/bootup/schema"
)

// ExecuteMetrics prints the scoring curve and its value at a few sample bootup times.
func ExecuteMetrics(_ context.Context, cfg *contract.Config) error {
	model, err := buildMetricsModel(cfg.Options)
	if err != nil {
		return err
	}
	return outwriter.WriteMetrics(model, cfg)
}

// buildMetricsModel describes the scoring curve of opts.
func buildMetricsModel(opts schema.BootupOptions) (schema.MetricsRenderModel, error) {
	model := schema.MetricsRenderModel{
		Title: "Bootup Time",
		Description: "Total scripting and script parse/compile time of every URL whose " +
			"main-thread time reaches the threshold, scaled by the CPU slowdown under simulated throttling.",
		Formula: fmt.Sprintf("score = logNormal(p10=%.0f, median=%.0f, bootup); bootup = Σ(scriptEvaluation + scriptParseCompile) for urls with total >= %.0f ms",
			opts.P10, opts.Median, opts.ThresholdMs),
		Options: opts,
	}
	for _, g := range schema.AllTaskGroups() {
		if g.IsScript() {
			model.ScoredGroups = append(model.ScoredGroups, g.Label())
		}
	}

	for _, v := range curveSampleValues(opts) {
		score, err := algo.LogNormalScore(opts.P10, opts.Median, v)
		if err != nil {
			return schema.MetricsRenderModel{}, err
		}
		model.Samples = append(model.Samples, schema.CurveSample{
			ValueMs: v,
			Score:   score,
			Rating:  schema.GetRating(score),
		})
	}
	return model, nil
}

// curveSampleValues returns the bootup times shown alongside the curve.
func curveSampleValues(opts schema.BootupOptions) []float64 {
	return []float64{
		0,
		opts.P10 / 2,
		opts.P10,
		(opts.P10 + opts.Median) / 2,
		opts.Median,
		opts.Median * 2,
		opts.Median * 4,
	}
}
