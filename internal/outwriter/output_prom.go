package outwriter

import (
	"fmt"
	"io"

	"github.com/huangsam/bootup/core/algo"
	"github.com/huangsam/bootup/schema"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/protobuf/proto"
)

// Metric names of the Prometheus text exposition.
const (
	promBootupMetric      = "bootup_time_ms"
	promScoreMetric       = "bootup_score"
	promTBTImpactMetric   = "bootup_tbt_impact_ms"
	promExtensionMetric   = "bootup_extension_overhead"
	promURLMetric         = "bootup_url_time_ms"
	promCompareMetric     = "bootup_compare_delta_ms"
	promCompareSummary    = "bootup_compare_summary_delta"
	promCurveMetric       = "bootup_curve_score"
	promCurveControlPoint = "bootup_curve_control_point_ms"
)

// gaugeFamily collects gauge samples of one metric name.
type gaugeFamily struct {
	mf *dto.MetricFamily
}

func newGaugeFamily(name, help string) *gaugeFamily {
	return &gaugeFamily{mf: &dto.MetricFamily{
		Name: proto.String(name),
		Help: proto.String(help),
		Type: dto.MetricType_GAUGE.Enum(),
	}}
}

// add appends a sample. labels alternate name and value.
func (g *gaugeFamily) add(value float64, labels ...string) {
	m := &dto.Metric{Gauge: &dto.Gauge{Value: proto.Float64(value)}}
	for i := 0; i+1 < len(labels); i += 2 {
		m.Label = append(m.Label, &dto.LabelPair{Name: proto.String(labels[i]), Value: proto.String(labels[i+1])})
	}
	g.mf.Metric = append(g.mf.Metric, m)
}

// writePromFamilies writes non-empty families in the text exposition format.
func writePromFamilies(w io.Writer, families []*gaugeFamily) error {
	for _, f := range families {
		if len(f.mf.Metric) == 0 {
			continue
		}
		if _, err := expfmt.MetricFamilyToText(w, f.mf); err != nil {
			return fmt.Errorf("failed to write metric %s: %w", f.mf.GetName(), err)
		}
	}
	return nil
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// auditFamilies exposes audit outcomes as gauges labeled by source.
func auditFamilies(outcomes []*schema.AggregateOutcome, limit int) []*gaugeFamily {
	bootup := newGaugeFamily(promBootupMetric, "Total bootup time of scripts above the threshold.")
	score := newGaugeFamily(promScoreMetric, "Log-normal score of the bootup time.")
	tbt := newGaugeFamily(promTBTImpactMetric, "Total blocking time attributable to script work.")
	extension := newGaugeFamily(promExtensionMetric, "Whether browser extensions added excessive scripting.")
	perURL := newGaugeFamily(promURLMetric, "Main-thread time of one ranked url.")

	for _, o := range outcomes {
		bootup.add(o.TotalBootupTimeMs, "source", o.Source, "page_url", o.PageURL)
		score.add(o.Score, "source", o.Source, "page_url", o.PageURL)
		tbt.add(o.TBTImpactMs, "source", o.Source, "page_url", o.PageURL)
		extension.add(boolValue(o.HadExcessiveExtensionOverhead), "source", o.Source, "page_url", o.PageURL)
		for _, r := range algo.TopResults(o.RankedResults, limit) {
			perURL.add(r.Total, "source", o.Source, "url", r.URL, "kind", "total")
			perURL.add(r.Scripting, "source", o.Source, "url", r.URL, "kind", "scripting")
			perURL.add(r.ScriptParseCompile, "source", o.Source, "url", r.URL, "kind", "parse_compile")
		}
	}
	return []*gaugeFamily{bootup, score, tbt, extension, perURL}
}

// comparisonFamilies exposes per-url and summary deltas.
func comparisonFamilies(result schema.ComparisonResult) []*gaugeFamily {
	perURL := newGaugeFamily(promCompareMetric, "Change of one url's main-thread time between two audits.")
	for _, d := range result.Details {
		perURL.add(d.DeltaTotal, "url", d.URL, "status", string(d.Status), "kind", "total")
		perURL.add(d.DeltaScripting, "url", d.URL, "status", string(d.Status), "kind", "scripting")
	}

	s := result.Summary
	summary := newGaugeFamily(promCompareSummary, "Audit-level change between two audits.")
	summary.add(s.DeltaBootupMs, "kind", "bootup_ms")
	summary.add(s.DeltaScore, "kind", "score")
	summary.add(s.DeltaTBTImpact, "kind", "tbt_impact_ms")
	summary.add(float64(s.NewURLCount), "kind", "new_urls")
	summary.add(float64(s.InactiveURLCount), "kind", "inactive_urls")
	return []*gaugeFamily{perURL, summary}
}

// curveFamilies exposes the control points and sampled scores of the curve.
func curveFamilies(model schema.MetricsRenderModel) []*gaugeFamily {
	control := newGaugeFamily(promCurveControlPoint, "Control points of the log-normal scoring curve.")
	control.add(model.Options.P10, "point", "p10")
	control.add(model.Options.Median, "point", "median")
	control.add(model.Options.ThresholdMs, "point", "threshold")

	samples := newGaugeFamily(promCurveMetric, "Score of a sample bootup time.")
	for _, s := range model.Samples {
		samples.add(s.Score, "value_ms", fmt.Sprintf("%.0f", s.ValueMs))
	}
	return []*gaugeFamily{control, samples}
}
