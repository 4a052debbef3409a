// Package watch re-runs work when trace bundles change on disk.
package watch

import (
	"context"
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/huangsam/bootup/internal/contract"
)

// DefaultDebounce groups the bursts of writes a collector makes while saving one bundle.
const DefaultDebounce = 250 * time.Millisecond

// ChangeFunc receives the sorted bundle paths that changed within one debounce window.
type ChangeFunc func(ctx context.Context, changed []string) error

// Watcher watches a fixed set of bundle files.
//
// The parent directories are watched rather than the files themselves, so a
// bundle replaced by an atomic save (write to temp file, then rename) is still
// seen as a Create of the watched name.
type Watcher struct {
	fsw      *fsnotify.Watcher
	targets  map[string]string // absolute path -> path as given
	Debounce time.Duration
}

// New starts watching the directories of paths. Events are buffered until Run.
func New(paths []string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	w := &Watcher{fsw: fsw, targets: make(map[string]string, len(paths)), Debounce: DefaultDebounce}
	dirs := make(map[string]struct{})
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("failed to resolve %s: %w", p, err)
		}
		w.targets[abs] = p
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}
	return w, nil
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// Run calls onChange after each debounced burst of writes to a watched bundle.
// A failing onChange is logged and watching continues. Run returns when ctx is
// canceled or the watcher is closed.
func (w *Watcher) Run(ctx context.Context, onChange ChangeFunc) error {
	pending := make(map[string]struct{})
	timer := time.NewTimer(w.Debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			original, watched := w.targets[filepath.Clean(event.Name)]
			if !watched {
				continue
			}
			pending[original] = struct{}{}
			timer.Reset(w.Debounce)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			changed := slices.Sorted(maps.Keys(pending))
			clear(pending)
			if err := onChange(ctx, changed); err != nil {
				contract.LogWarn("Re-run after bundle change failed", err)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			contract.LogWarn("Bundle watcher error", err)
		}
	}
}

// Watch watches paths until ctx is canceled, calling onChange on every change.
func Watch(ctx context.Context, paths []string, onChange ChangeFunc) error {
	w, err := New(paths)
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()
	return w.Run(ctx, onChange)
}
