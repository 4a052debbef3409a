package parquet

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/bootup/schema"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll[T any](t *testing.T, r io.ReaderAt) []T {
	t.Helper()
	reader := parquet.NewGenericReader[T](r)
	defer func() { _ = reader.Close() }()

	rows := make([]T, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	return rows[:n]
}

func sampleRuns() []schema.AuditRunRecord {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(1500 * time.Millisecond)
	duration := int32(1500)
	params := `{"pass":"defaultPass"}`
	return []schema.AuditRunRecord{
		{
			RunID: 1, Source: "a.json", PageURL: "https://example.com/", StartTime: start,
			EndTime: &end, RunDurationMs: &duration, Multiplier: 4, TotalBootupTimeMs: 760,
			TBTImpactMs: 35, Score: 0.97, ConfigParams: &params,
		},
		{RunID: 2, Source: "b.json", PageURL: "https://example.org/", StartTime: start.Add(time.Hour)},
	}
}

func TestAuditRunStructTags(t *testing.T) {
	s := parquet.SchemaOf(new(AuditRun))
	for _, col := range []string{"run_id", "source", "page_url", "start_time", "end_time", "run_duration_ms",
		"multiplier", "total_bootup_ms", "tbt_impact_ms", "score", "not_applicable", "extension_overhead", "config_params"} {
		_, ok := s.Lookup(col)
		assert.True(t, ok, "column %s should exist", col)
	}
}

func TestWriteAuditRunsParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "runs.parquet")
	data := ConvertAuditRunRecords(sampleRuns())
	require.NoError(t, WriteAuditRunsParquet(data, outputPath))

	raw, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	got := readAll[AuditRun](t, bytes.NewReader(raw))
	require.Len(t, got, 2)

	assert.Equal(t, int64(1), got[0].RunID)
	assert.Equal(t, "a.json", got[0].Source)
	assert.InDelta(t, 760.0, got[0].TotalBootupTimeMs, 1e-9)
	require.NotNil(t, got[0].EndTime)
	assert.WithinDuration(t, *data[0].EndTime, *got[0].EndTime, time.Nanosecond)
	require.NotNil(t, got[0].RunDurationMs)
	assert.Equal(t, int32(1500), *got[0].RunDurationMs)

	assert.Nil(t, got[1].EndTime)
	assert.Nil(t, got[1].RunDurationMs)
	assert.Nil(t, got[1].ConfigParams)
}

func TestWriteURLResultsParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "results.parquet")
	now := time.Now().UTC().Truncate(time.Millisecond)
	data := []schema.URLResultRecord{
		{RunID: 1, Rank: 1, URL: "https://example.com/app.js", AnalysisTime: now, Total: 540, Scripting: 440, ScriptParseCompile: 80},
		{RunID: 1, Rank: 2, URL: "https://cdn.example.com/vendor.js", AnalysisTime: now, Total: 120, Scripting: 100, ScriptParseCompile: 20},
	}
	require.NoError(t, WriteURLResultsParquet(data, outputPath))

	raw, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	got := readAll[schema.URLResultRecord](t, bytes.NewReader(raw))
	require.Len(t, got, 2)
	assert.Equal(t, data[0].URL, got[0].URL)
	assert.Equal(t, int32(2), got[1].Rank)
	assert.InDelta(t, 100.0, got[1].Scripting, 1e-9)
}

func TestWriteAuditRows(t *testing.T) {
	outcomes := []*schema.AggregateOutcome{
		{
			Source: "a.json", PageURL: "https://example.com/", Score: 0.9,
			RankedResults: []schema.URLResult{
				{URL: "https://example.com/app.js", Total: 540, Scripting: 440, ScriptParseCompile: 80},
				{URL: "Unattributable", Total: 60, Scripting: 10},
			},
		},
		{Source: "quiet.json", NotApplicable: true, Score: 1},
	}
	rows := ConvertOutcomes(outcomes)
	require.Len(t, rows, 2)
	assert.Equal(t, int32(2), rows[1].Rank)

	var buf bytes.Buffer
	require.NoError(t, WriteAuditRows(&buf, rows))
	got := readAll[AuditRow](t, bytes.NewReader(buf.Bytes()))
	require.Len(t, got, 2)
	assert.Equal(t, "https://example.com/app.js", got[0].URL)
	assert.InDelta(t, 0.9, got[1].Score, 1e-9)
}

func TestWriteAuditRunsParquet_EmptyData(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "empty.parquet")
	require.NoError(t, WriteAuditRunsParquet([]AuditRun{}, outputPath))

	info, err := os.Stat(outputPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestWriteAuditRunsParquet_InvalidPath(t *testing.T) {
	err := WriteAuditRunsParquet(nil, filepath.Join(t.TempDir(), "missing", "runs.parquet"))
	assert.Error(t, err)
}
