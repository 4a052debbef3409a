// Package fault provides FaultReporter sinks for recoverable audit failures.
package fault

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/bootup/internal/contract"
	"github.com/huangsam/bootup/schema"
)

// Nop discards every fault.
type Nop struct{}

var _ contract.FaultReporter = Nop{} // Compile-time check

// Report implements the FaultReporter interface.
func (Nop) Report(context.Context, schema.Fault) {}

// JSONLines writes one JSON object per fault.
type JSONLines struct {
	mu     sync.Mutex
	w      io.Writer
	closer io.Closer
}

var _ contract.FaultReporter = &JSONLines{} // Compile-time check

// NewJSONLines wraps w. The caller keeps ownership of w.
func NewJSONLines(w io.Writer) *JSONLines {
	return &JSONLines{w: w}
}

// OpenFile appends faults to the file at path, creating it when needed.
func OpenFile(path string) (*JSONLines, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open fault log %s: %w", path, err)
	}
	return &JSONLines{w: f, closer: f}, nil
}

// Report implements the FaultReporter interface. Write failures go to stderr.
func (j *JSONLines) Report(_ context.Context, f schema.Fault) {
	data, err := json.Marshal(stamp(f))
	if err != nil {
		contract.LogWarn("fault encoding failed", err)
		return
	}
	data = append(data, '\n')

	j.mu.Lock()
	defer j.mu.Unlock()
	if _, err := j.w.Write(data); err != nil {
		contract.LogWarn("fault log write failed", err)
	}
}

// Close closes the underlying file when OpenFile created it.
func (j *JSONLines) Close() error {
	if j.closer == nil {
		return nil
	}
	return j.closer.Close()
}

// History stores faults in the audit history.
type History struct {
	store contract.HistoryStore
}

var _ contract.FaultReporter = &History{} // Compile-time check

// NewHistory wraps store.
func NewHistory(store contract.HistoryStore) *History {
	return &History{store: store}
}

// Report implements the FaultReporter interface.
func (h *History) Report(_ context.Context, f schema.Fault) {
	if err := h.store.RecordFault(stamp(f)); err != nil {
		contract.LogWarn("fault tracking failed", err)
	}
}

// Multi fans a fault out to several reporters in order.
type Multi []contract.FaultReporter

var _ contract.FaultReporter = Multi{} // Compile-time check

// Report implements the FaultReporter interface.
func (m Multi) Report(ctx context.Context, f schema.Fault) {
	f = stamp(f)
	for _, r := range m {
		r.Report(ctx, f)
	}
}

// NewReporter builds the reporter for the configured sinks. A nil history
// store and an empty path are skipped. The returned close function is never nil.
func NewReporter(faultLogPath string, history contract.HistoryStore) (contract.FaultReporter, func() error, error) {
	var reporters Multi
	closeFn := func() error { return nil }

	if faultLogPath != "" {
		file, err := OpenFile(faultLogPath)
		if err != nil {
			return nil, nil, err
		}
		reporters = append(reporters, file)
		closeFn = file.Close
	}
	if history != nil {
		reporters = append(reporters, NewHistory(history))
	}

	switch len(reporters) {
	case 0:
		return Nop{}, closeFn, nil
	case 1:
		return reporters[0], closeFn, nil
	default:
		return reporters, closeFn, nil
	}
}

// stamp fills in the ID and time of a fault that lacks them.
func stamp(f schema.Fault) schema.Fault {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if f.Occurred.IsZero() {
		f.Occurred = time.Now()
	}
	return f
}
