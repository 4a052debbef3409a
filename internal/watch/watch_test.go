package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const waitFor = 5 * time.Second

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// startWatcher runs a watcher over paths and forwards every change batch to the returned channel.
func startWatcher(t *testing.T, paths []string, onErr error) <-chan []string {
	t.Helper()
	w, err := New(paths)
	require.NoError(t, err)
	w.Debounce = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	changes := make(chan []string, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx, func(_ context.Context, changed []string) error {
			changes <- changed
			return onErr
		})
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		_ = w.Close()
	})
	return changes
}

func nextChange(t *testing.T, changes <-chan []string) []string {
	t.Helper()
	select {
	case changed := <-changes:
		return changed
	case <-time.After(waitFor):
		t.Fatal("timed out waiting for a change")
		return nil
	}
}

func TestWatcher_Write(t *testing.T) {
	dir := t.TempDir()
	bundle := filepath.Join(dir, "page.json")
	writeFile(t, bundle, "{}")

	changes := startWatcher(t, []string{bundle}, nil)
	writeFile(t, bundle, `{"url": "https://example.com/"}`)

	assert.Equal(t, []string{bundle}, nextChange(t, changes))
}

func TestWatcher_AtomicSave(t *testing.T) {
	dir := t.TempDir()
	bundle := filepath.Join(dir, "page.json")
	writeFile(t, bundle, "{}")

	changes := startWatcher(t, []string{bundle}, nil)

	tmp := filepath.Join(dir, "page.json.tmp")
	writeFile(t, tmp, `{"url": "https://example.com/"}`)
	require.NoError(t, os.Rename(tmp, bundle))
	assert.Equal(t, []string{bundle}, nextChange(t, changes))

	// The replaced file is still watched
	writeFile(t, bundle, `{"url": "https://example.com/again"}`)
	assert.Equal(t, []string{bundle}, nextChange(t, changes))
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	bundle := filepath.Join(dir, "page.json")
	other := filepath.Join(dir, "notes.txt")
	writeFile(t, bundle, "{}")

	changes := startWatcher(t, []string{bundle}, nil)
	writeFile(t, other, "hello")

	select {
	case changed := <-changes:
		t.Fatalf("unexpected change %v", changed)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_ContinuesAfterFailure(t *testing.T) {
	dir := t.TempDir()
	bundle := filepath.Join(dir, "page.json")
	writeFile(t, bundle, "{}")

	changes := startWatcher(t, []string{bundle}, errors.New("audit failed"))

	writeFile(t, bundle, "1")
	nextChange(t, changes)
	writeFile(t, bundle, "2")
	assert.Equal(t, []string{bundle}, nextChange(t, changes))
}

func TestWatch_StopsOnCancel(t *testing.T) {
	dir := t.TempDir()
	bundle := filepath.Join(dir, "page.json")
	writeFile(t, bundle, "{}")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, []string{bundle}, func(context.Context, []string) error { return nil })
	}()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(waitFor):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestNew_MissingDirectory(t *testing.T) {
	_, err := New([]string{filepath.Join(t.TempDir(), "missing", "page.json")})
	assert.Error(t, err)
}
