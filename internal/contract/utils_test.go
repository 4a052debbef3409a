package contract

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/huangsam/bootup/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetColorLabel(t *testing.T) {
	tests := []struct {
		name  string
		score float64
		label schema.Rating
	}{
		{"poor", 0.2, schema.PoorRating},
		{"needs improvement", 0.6, schema.NeedsImprovementRating},
		{"good", 0.95, schema.GoodRating},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := GetColorLabel(tt.score)
			// Should contain the plain label
			assert.Contains(t, result, string(tt.label))
		})
	}
}

func TestSelectOutputFile(t *testing.T) {
	t.Run("empty path returns stdout", func(t *testing.T) {
		file, err := SelectOutputFile("")
		require.NoError(t, err)
		assert.Equal(t, os.Stdout, file)
	})

	t.Run("valid path creates file", func(t *testing.T) {
		tempFile := filepath.Join(t.TempDir(), "test_output.txt")

		file, err := SelectOutputFile(tempFile)
		require.NoError(t, err)
		assert.NotNil(t, file)
		_ = file.Close()

		_, err = os.Stat(tempFile)
		assert.NoError(t, err)
	})
}

func TestGetDBFilePaths(t *testing.T) {
	homeDir, err := os.UserHomeDir()
	require.NoError(t, err)

	cachePath := GetCacheDBFilePath()
	assert.Contains(t, cachePath, ".bootup_cache.db")
	assert.True(t, strings.HasPrefix(cachePath, homeDir), "path %s should start with home dir %s", cachePath, homeDir)

	historyPath := GetHistoryDBFilePath()
	assert.Contains(t, historyPath, ".bootup_history.db")
	assert.NotEqual(t, cachePath, historyPath)
}

func TestTruncateURL(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		width    int
		expected string
	}{
		{"short url untouched", "https://a.test/app.js", 40, "https://a.test/app.js"},
		{"exact width untouched", "https://a.test/x.js", 19, "https://a.test/x.js"},
		{"long url truncated", "https://cdn.example.com/static/js/main.chunk.js", 20, "https://cdn.examp..."},
		{"tiny width untouched", "https://a.test/app.js", 3, "https://a.test/app.js"},
		{"multibyte runes", "https://例え.jp/スクリプト.js", 12, "https://例..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TruncateURL(tt.url, tt.width))
		})
	}
}

func TestParseBoolString(t *testing.T) {
	for _, s := range []string{"yes", "TRUE", "1"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.True(t, v, s)
	}
	for _, s := range []string{"no", "False", "0"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.False(t, v, s)
	}
	_, err := ParseBoolString("maybe")
	assert.Error(t, err)
}

func TestLogLevels(t *testing.T) {
	var buf bytes.Buffer
	old := logOutput
	logOutput = &buf
	t.Cleanup(func() { logOutput = old })

	tests := []struct {
		name string
		log  func(string, error)
		want string
	}{
		{"error", LogError, "Error TBT impact unavailable for a.json: tbt unavailable\n"},
		{"warn", LogWarn, "Warn TBT impact unavailable for a.json: tbt unavailable\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.log("TBT impact unavailable for a.json", errors.New("tbt unavailable"))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}
