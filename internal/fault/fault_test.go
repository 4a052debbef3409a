package fault

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/bootup/internal/contract"
	"github.com/huangsam/bootup/internal/iocache"
	"github.com/huangsam/bootup/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func sampleFault() schema.Fault {
	return schema.Fault{
		Audit:   schema.BootupAuditID,
		Level:   "error",
		Source:  "tbt_error.json",
		Message: "tbt impact unavailable",
	}
}

func TestJSONLinesReport(t *testing.T) {
	var buf bytes.Buffer
	r := NewJSONLines(&buf)

	r.Report(context.Background(), sampleFault())
	r.Report(context.Background(), sampleFault())

	scanner := bufio.NewScanner(&buf)
	var ids []string
	for scanner.Scan() {
		var got schema.Fault
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &got))
		assert.Equal(t, "tbt_error.json", got.Source)
		assert.False(t, got.Occurred.IsZero())
		_, err := uuid.Parse(got.ID)
		assert.NoError(t, err)
		ids = append(ids, got.ID)
	}
	require.Len(t, ids, 2)
	assert.NotEqual(t, ids[0], ids[1])
	assert.NoError(t, r.Close())
}

func TestJSONLinesConcurrent(t *testing.T) {
	var buf bytes.Buffer
	r := NewJSONLines(&buf)

	var wg sync.WaitGroup
	for range 50 {
		wg.Go(func() { r.Report(context.Background(), sampleFault()) })
	}
	wg.Wait()

	assert.Equal(t, 50, bytes.Count(buf.Bytes(), []byte("\n")))
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "faults.jsonl")

	for range 2 {
		r, err := OpenFile(path)
		require.NoError(t, err)
		r.Report(context.Background(), sampleFault())
		require.NoError(t, r.Close())
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, bytes.Count(data, []byte("\n")), "reopening appends")

	_, err = OpenFile(filepath.Join(t.TempDir(), "missing", "faults.jsonl"))
	assert.Error(t, err)
}

func TestHistoryReport(t *testing.T) {
	store := &iocache.MockHistoryStore{}
	store.On("RecordFault", mock.MatchedBy(func(f schema.Fault) bool {
		return f.ID != "" && f.Source == "tbt_error.json" && !f.Occurred.IsZero()
	})).Return(nil).Once()

	NewHistory(store).Report(context.Background(), sampleFault())
	store.AssertExpectations(t)
}

func TestHistoryReportFailureIsSwallowed(t *testing.T) {
	store := &iocache.MockHistoryStore{}
	store.On("RecordFault", mock.Anything).Return(assert.AnError)

	assert.NotPanics(t, func() {
		NewHistory(store).Report(context.Background(), sampleFault())
	})
}

func TestMultiSharesStamp(t *testing.T) {
	first := &contract.MockFaultReporter{}
	second := &contract.MockFaultReporter{}
	var seen []schema.Fault
	capture := func(args mock.Arguments) { seen = append(seen, args.Get(1).(schema.Fault)) }
	first.On("Report", mock.Anything, mock.Anything).Run(capture).Return()
	second.On("Report", mock.Anything, mock.Anything).Run(capture).Return()

	Multi{first, second}.Report(context.Background(), sampleFault())

	require.Len(t, seen, 2)
	assert.Equal(t, seen[0].ID, seen[1].ID)
	assert.Equal(t, seen[0].Occurred, seen[1].Occurred)
}

func TestNewReporter(t *testing.T) {
	r, closeFn, err := NewReporter("", nil)
	require.NoError(t, err)
	assert.IsType(t, Nop{}, r)
	assert.NoError(t, closeFn())

	store := &iocache.MockHistoryStore{}
	r, _, err = NewReporter("", store)
	require.NoError(t, err)
	assert.IsType(t, &History{}, r)

	path := filepath.Join(t.TempDir(), "faults.jsonl")
	r, closeFn, err = NewReporter(path, store)
	require.NoError(t, err)
	assert.IsType(t, Multi{}, r)
	assert.NoError(t, closeFn())
}

func TestStampKeepsExisting(t *testing.T) {
	when := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	f := stamp(schema.Fault{ID: "keep", Occurred: when})
	assert.Equal(t, "keep", f.ID)
	assert.Equal(t, when, f.Occurred)
}
