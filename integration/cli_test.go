//go:build basic

package integration

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	basicBundle = "testdata/bundles/basic.json"
	quietBundle = "testdata/bundles/quiet.json"
	tbtBundle   = "testdata/bundles/tbt_error.json"
)

func TestAuditJSON(t *testing.T) {
	res := runBootup(t, t.TempDir(), nil, "audit", basicBundle, "--output", "json")
	require.NoError(t, res.Err)

	var outcomes []map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.Stdout), &outcomes))
	require.Len(t, outcomes, 1)
	assert.InDelta(t, 760.0, outcomes[0]["total_bootup_time_ms"], 1e-9)
	assert.Equal(t, "0.8 s", outcomes[0]["display_value"])
	assert.Equal(t, "Good", outcomes[0]["rating"])
}

func TestAuditTable(t *testing.T) {
	res := runBootup(t, t.TempDir(), nil, "audit", basicBundle, "--color", "no", "--width", "160")
	require.NoError(t, res.Err)

	assert.Contains(t, res.Stdout, "Bundle: "+basicBundle)
	assert.Contains(t, res.Stdout, "https://example.com/app.js")
	assert.Contains(t, res.Stdout, "Bootup time: 0.8 s")
	assert.Contains(t, res.Stdout, "Warning: Browser extensions")
}

func TestAuditGlobCSV(t *testing.T) {
	out := filepath.Join(t.TempDir(), "bootup.csv")
	res := runBootup(t, t.TempDir(), nil, "audit", "testdata/bundles/{basic,quiet}.json", "--output", "csv", "--output-file", out)
	require.NoError(t, res.Err)
	assert.Contains(t, res.Stderr, "Wrote CSV")

	f, err := os.Open(out)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	// Header, four ranked urls of basic.json and one summary row of quiet.json
	require.Len(t, records, 6)
	assert.Equal(t, basicBundle, records[1][0])
	assert.Equal(t, quietBundle, records[5][0])
}

func TestAuditTBTFailureWritesFaultLog(t *testing.T) {
	faultLog := filepath.Join(t.TempDir(), "faults.jsonl")
	res := runBootup(t, t.TempDir(), nil, "audit", tbtBundle, "--output", "json", "--fault-log", faultLog)
	require.NoError(t, res.Err, "a TBT failure must not fail the audit")

	data, err := os.ReadFile(faultLog)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var fault map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &fault))
	assert.Equal(t, tbtBundle, fault["source"])
}

func TestAuditMissingTasksFails(t *testing.T) {
	res := runBootup(t, t.TempDir(), nil, "audit", "testdata/bundles/missing_tasks.json")
	require.Error(t, res.Err)
	assert.Contains(t, res.Stderr, "no main-thread tasks")
}

func TestAuditInvalidFlags(t *testing.T) {
	home := t.TempDir()

	res := runBootup(t, home, nil, "audit", basicBundle, "--p10", "4000")
	require.Error(t, res.Err)
	assert.Contains(t, res.Stderr, "must be less than median")

	res = runBootup(t, home, nil, "audit", basicBundle, "--output", "parquet")
	require.Error(t, res.Err)
	assert.Contains(t, res.Stderr, "parquet output requires --output-file")
}

func TestAuditEnvOverride(t *testing.T) {
	res := runBootup(t, t.TempDir(), []string{"BOOTUP_THROTTLING_METHOD=devtools"}, "audit", basicBundle, "--output", "json")
	require.NoError(t, res.Err)

	var outcomes []map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.Stdout), &outcomes))
	assert.InDelta(t, 1.0, outcomes[0]["multiplier"], 1e-9)
	assert.InDelta(t, 130.0, outcomes[0]["total_bootup_time_ms"], 1e-9)
}

func TestCompare(t *testing.T) {
	res := runBootup(t, t.TempDir(), nil, "compare", basicBundle, quietBundle, "--output", "json")
	require.NoError(t, res.Err)

	var result map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.Stdout), &result))
	summary, ok := result["summary"].(map[string]any)
	require.True(t, ok)
	assert.InDelta(t, -760.0, summary["delta_bootup_ms"], 1e-9)
	assert.InDelta(t, 4.0, summary["inactive_url_count"], 1e-9)
}

func TestCheck(t *testing.T) {
	home := t.TempDir()

	res := runBootup(t, home, nil, "check", basicBundle, quietBundle, "--min-score", "0.9")
	require.NoError(t, res.Err)

	res = runBootup(t, home, nil, "check", basicBundle, "--max-bootup-ms", "500")
	require.Error(t, res.Err)
	assert.Contains(t, res.Stderr, "bootup budget check failed")
}

func TestMetrics(t *testing.T) {
	res := runBootup(t, t.TempDir(), nil, "metrics", "--output", "csv")
	require.NoError(t, res.Err)
	assert.True(t, strings.HasPrefix(res.Stdout, "value_ms,score,rating"))
}

func TestHistoryLifecycle(t *testing.T) {
	home := t.TempDir()
	env := []string{"BOOTUP_HISTORY_BACKEND=sqlite"}

	res := runBootup(t, home, env, "history", "migrate")
	require.NoError(t, res.Err)

	res = runBootup(t, home, env, "audit", basicBundle, "--output", "json")
	require.NoError(t, res.Err)

	res = runBootup(t, home, env, "history", "status")
	require.NoError(t, res.Err)
	assert.Contains(t, res.Stdout, "sqlite")

	export := filepath.Join(t.TempDir(), "history")
	res = runBootup(t, home, env, "history", "export", "--output-file", export)
	require.NoError(t, res.Err)
	assert.FileExists(t, export+".audit_runs.parquet")
	assert.FileExists(t, export+".url_results.parquet")

	res = runBootup(t, home, env, "history", "clear")
	require.NoError(t, res.Err)
	assert.NoFileExists(t, filepath.Join(home, ".bootup_history.db"))
}

func TestCacheLifecycle(t *testing.T) {
	home := t.TempDir()

	res := runBootup(t, home, nil, "audit", basicBundle, "--output", "json")
	require.NoError(t, res.Err)
	assert.FileExists(t, filepath.Join(home, ".bootup_cache.db"))

	res = runBootup(t, home, nil, "cache", "status")
	require.NoError(t, res.Err)

	res = runBootup(t, home, nil, "cache", "clear")
	require.NoError(t, res.Err)
	assert.NoFileExists(t, filepath.Join(home, ".bootup_cache.db"))
}

func TestVersion(t *testing.T) {
	res := runBootup(t, t.TempDir(), nil, "version")
	require.NoError(t, res.Err)
	assert.Contains(t, res.Stdout, "bootup CLI")
}
