package outwriter

import (
	"time"

	"github.com/huangsam/bootup/core/algo"
	"github.com/huangsam/bootup/schema"
)

// The view types below fix the field names of the structured formats so JSON
// and YAML output stay aligned.

type optionsView struct {
	P10         float64 `json:"p10" yaml:"p10"`
	Median      float64 `json:"median" yaml:"median"`
	ThresholdMs float64 `json:"threshold_ms" yaml:"threshold_ms"`
}

type urlResultView struct {
	Rank               int                `json:"rank" yaml:"rank"`
	URL                string             `json:"url" yaml:"url"`
	Total              float64            `json:"total_ms" yaml:"total_ms"`
	Scripting          float64            `json:"scripting_ms" yaml:"scripting_ms"`
	ScriptParseCompile float64            `json:"script_parse_compile_ms" yaml:"script_parse_compile_ms"`
	Groups             map[string]float64 `json:"groups,omitempty" yaml:"groups,omitempty"`
}

type auditView struct {
	Source            string             `json:"source" yaml:"source"`
	PageURL           string             `json:"page_url" yaml:"page_url"`
	AnalysisTime      time.Time          `json:"analysis_time" yaml:"analysis_time"`
	Options           optionsView        `json:"options" yaml:"options"`
	Multiplier        float64            `json:"multiplier" yaml:"multiplier"`
	TotalBootupTimeMs float64            `json:"total_bootup_time_ms" yaml:"total_bootup_time_ms"`
	DisplayValue      string             `json:"display_value" yaml:"display_value"`
	Score             float64            `json:"score" yaml:"score"`
	Rating            schema.Rating      `json:"rating" yaml:"rating"`
	NotApplicable     bool               `json:"not_applicable" yaml:"not_applicable"`
	TBTImpactMs       float64            `json:"tbt_impact_ms" yaml:"tbt_impact_ms"`
	WastedMs          float64            `json:"wasted_ms" yaml:"wasted_ms"`
	MetricSavings     map[string]float64 `json:"metric_savings" yaml:"metric_savings"`
	ExtensionOverhead bool               `json:"had_excessive_extension_overhead" yaml:"had_excessive_extension_overhead"`
	Warnings          []string           `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	RankedResults     []urlResultView    `json:"ranked_results" yaml:"ranked_results"`
}

type comparisonDetailView struct {
	URL             string        `json:"url" yaml:"url"`
	Status          schema.Status `json:"status" yaml:"status"`
	BeforeTotal     float64       `json:"before_total_ms" yaml:"before_total_ms"`
	AfterTotal      float64       `json:"after_total_ms" yaml:"after_total_ms"`
	DeltaTotal      float64       `json:"delta_total_ms" yaml:"delta_total_ms"`
	BeforeScripting float64       `json:"before_scripting_ms" yaml:"before_scripting_ms"`
	AfterScripting  float64       `json:"after_scripting_ms" yaml:"after_scripting_ms"`
	DeltaScripting  float64       `json:"delta_scripting_ms" yaml:"delta_scripting_ms"`
}

type comparisonSummaryView struct {
	BaseSource       string  `json:"base_source" yaml:"base_source"`
	TargetSource     string  `json:"target_source" yaml:"target_source"`
	BaseBootupMs     float64 `json:"base_bootup_ms" yaml:"base_bootup_ms"`
	TargetBootupMs   float64 `json:"target_bootup_ms" yaml:"target_bootup_ms"`
	DeltaBootupMs    float64 `json:"delta_bootup_ms" yaml:"delta_bootup_ms"`
	BaseScore        float64 `json:"base_score" yaml:"base_score"`
	TargetScore      float64 `json:"target_score" yaml:"target_score"`
	DeltaScore       float64 `json:"delta_score" yaml:"delta_score"`
	DeltaTBTImpactMs float64 `json:"delta_tbt_impact_ms" yaml:"delta_tbt_impact_ms"`
	NewURLCount      int     `json:"new_url_count" yaml:"new_url_count"`
	InactiveURLCount int     `json:"inactive_url_count" yaml:"inactive_url_count"`
}

type comparisonView struct {
	Summary comparisonSummaryView  `json:"summary" yaml:"summary"`
	Details []comparisonDetailView `json:"details" yaml:"details"`
}

type curveSampleView struct {
	ValueMs float64       `json:"value_ms" yaml:"value_ms"`
	Score   float64       `json:"score" yaml:"score"`
	Rating  schema.Rating `json:"rating" yaml:"rating"`
}

type metricsView struct {
	Title        string            `json:"title" yaml:"title"`
	Description  string            `json:"description" yaml:"description"`
	Formula      string            `json:"formula" yaml:"formula"`
	Options      optionsView       `json:"options" yaml:"options"`
	ScoredGroups []string          `json:"scored_groups" yaml:"scored_groups"`
	Samples      []curveSampleView `json:"samples" yaml:"samples"`
}

func newOptionsView(opts schema.BootupOptions) optionsView {
	return optionsView{P10: opts.P10, Median: opts.Median, ThresholdMs: opts.ThresholdMs}
}

// newAuditView converts an outcome, keeping at most limit ranked rows.
func newAuditView(o *schema.AggregateOutcome, limit int) auditView {
	results := algo.TopResults(o.RankedResults, limit)
	view := auditView{
		Source:            o.Source,
		PageURL:           o.PageURL,
		AnalysisTime:      o.AnalysisTime,
		Options:           newOptionsView(o.Options),
		Multiplier:        o.Multiplier,
		TotalBootupTimeMs: o.TotalBootupTimeMs,
		DisplayValue:      o.DisplayValue,
		Score:             o.Score,
		Rating:            schema.GetRating(o.Score),
		NotApplicable:     o.NotApplicable,
		TBTImpactMs:       o.TBTImpactMs,
		WastedMs:          o.WastedMs(),
		MetricSavings:     o.MetricSavings(),
		ExtensionOverhead: o.HadExcessiveExtensionOverhead,
		Warnings:          o.Warnings,
		RankedResults:     make([]urlResultView, len(results)),
	}
	for i, r := range schema.EnrichResults(results) {
		groups := make(map[string]float64, schema.TaskGroupCount)
		for _, g := range schema.AllTaskGroups() {
			if v := r.Groups.Get(g); v > 0 {
				groups[g.String()] = v
			}
		}
		view.RankedResults[i] = urlResultView{
			Rank:               r.Rank,
			URL:                r.URL,
			Total:              r.Total,
			Scripting:          r.Scripting,
			ScriptParseCompile: r.ScriptParseCompile,
			Groups:             groups,
		}
	}
	return view
}

func newComparisonView(result schema.ComparisonResult) comparisonView {
	s := result.Summary
	view := comparisonView{
		Summary: comparisonSummaryView{
			BaseSource:       s.BaseSource,
			TargetSource:     s.TargetSource,
			BaseBootupMs:     s.BaseBootupMs,
			TargetBootupMs:   s.TargetBootupMs,
			DeltaBootupMs:    s.DeltaBootupMs,
			BaseScore:        s.BaseScore,
			TargetScore:      s.TargetScore,
			DeltaScore:       s.DeltaScore,
			DeltaTBTImpactMs: s.DeltaTBTImpact,
			NewURLCount:      s.NewURLCount,
			InactiveURLCount: s.InactiveURLCount,
		},
		Details: make([]comparisonDetailView, len(result.Details)),
	}
	for i, d := range result.Details {
		view.Details[i] = comparisonDetailView{
			URL:             d.URL,
			Status:          d.Status,
			BeforeTotal:     d.BeforeTotal,
			AfterTotal:      d.AfterTotal,
			DeltaTotal:      d.DeltaTotal,
			BeforeScripting: d.BeforeScripting,
			AfterScripting:  d.AfterScripting,
			DeltaScripting:  d.DeltaScripting,
		}
	}
	return view
}

func newMetricsView(model schema.MetricsRenderModel) metricsView {
	view := metricsView{
		Title:        model.Title,
		Description:  model.Description,
		Formula:      model.Formula,
		Options:      newOptionsView(model.Options),
		ScoredGroups: model.ScoredGroups,
		Samples:      make([]curveSampleView, len(model.Samples)),
	}
	for i, s := range model.Samples {
		view.Samples[i] = curveSampleView{ValueMs: s.ValueMs, Score: s.Score, Rating: s.Rating}
	}
	return view
}
