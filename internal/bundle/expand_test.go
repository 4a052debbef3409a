package bundle

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))
}

func TestExpand(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.json")
	b := filepath.Join(dir, "nested", "deep", "b.json.gz")
	c := filepath.Join(dir, "nested", "c.txt")
	touch(t, a)
	touch(t, b)
	touch(t, c)

	t.Run("plain paths", func(t *testing.T) {
		paths, err := Expand([]string{a})
		require.NoError(t, err)
		assert.Equal(t, []string{a}, paths)
	})

	t.Run("recursive glob", func(t *testing.T) {
		paths, err := Expand([]string{filepath.Join(dir, "**", "*.json*")})
		require.NoError(t, err)
		assert.Equal(t, []string{a, b}, paths)
	})

	t.Run("deduplicates overlapping args", func(t *testing.T) {
		paths, err := Expand([]string{a, filepath.Join(dir, "*.json")})
		require.NoError(t, err)
		assert.Equal(t, []string{a}, paths)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Expand([]string{filepath.Join(dir, "missing.json")})
		assert.Error(t, err)
	})

	t.Run("directory rejected", func(t *testing.T) {
		_, err := Expand([]string{dir})
		assert.ErrorContains(t, err, "is a directory")
	})

	t.Run("glob with no matches", func(t *testing.T) {
		_, err := Expand([]string{filepath.Join(dir, "*.xz")})
		assert.ErrorContains(t, err, "no bundles matched")
	})
}
