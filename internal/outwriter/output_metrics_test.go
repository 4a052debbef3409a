package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"

	"github.com/huangsam/bootup/schema"
	"github.com/prometheus/common/expfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleModel() schema.MetricsRenderModel {
	return schema.MetricsRenderModel{
		Title:        "Bootup Time",
		Description:  "Scripting time of heavy urls.",
		Formula:      "score = logNormal(p10=1282, median=3500, bootup)",
		Options:      schema.DefaultBootupOptions(),
		ScoredGroups: []string{"Script Parsing & Compilation", "Script Evaluation"},
		Samples: []schema.CurveSample{
			{ValueMs: 0, Score: 1, Rating: schema.GoodRating},
			{ValueMs: 3500, Score: 0.5, Rating: schema.NeedsImprovementRating},
		},
	}
}

func TestWriteMetricsText(t *testing.T) {
	cfg := testConfig(schema.TextOut)
	cfg.UseEmojis = true

	var buf bytes.Buffer
	require.NoError(t, writeMetrics(&buf, sampleModel(), cfg))

	out := buf.String()
	assert.Contains(t, out, "⏱️  Bootup Time")
	assert.Contains(t, out, "p10=1282 ms, median=3500 ms, threshold=50 ms")
	assert.Contains(t, out, "Scored groups: Script Parsing & Compilation, Script Evaluation")
	assert.Contains(t, out, "3500 ms  ->  0.50  Needs Improvement")
}

func TestWriteMetricsStructured(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeMetrics(&buf, sampleModel(), testConfig(schema.JSONOut)))
	var fromJSON metricsView
	require.NoError(t, json.Unmarshal(buf.Bytes(), &fromJSON))

	buf.Reset()
	require.NoError(t, writeMetrics(&buf, sampleModel(), testConfig(schema.YAMLOut)))
	var fromYAML metricsView
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &fromYAML))

	assert.Equal(t, fromJSON, fromYAML)
	assert.InDelta(t, 50.0, fromJSON.Options.ThresholdMs, 1e-9)
	assert.Len(t, fromJSON.Samples, 2)
}

func TestWriteMetricsCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeMetrics(&buf, sampleModel(), testConfig(schema.CSVOut)))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"value_ms", "score", "rating"},
		{"0", "1.0000", "Good"},
		{"3500", "0.5000", "Needs Improvement"},
	}, records)
}

func TestWriteMetricsProm(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeMetrics(&buf, sampleModel(), testConfig(schema.PromOut)))

	var parser expfmt.TextParser
	families, err := parser.TextToMetricFamilies(&buf)
	require.NoError(t, err)
	assert.Len(t, families[promCurveControlPoint].GetMetric(), 3)
	assert.Len(t, families[promCurveMetric].GetMetric(), 2)
}

func TestWriteMetricsParquetUnsupported(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, writeMetrics(&buf, sampleModel(), testConfig(schema.ParquetOut)), errAuditOnlyFormat)
}
