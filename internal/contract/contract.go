// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/bootup/schema"
)

// ArtifactSource provides the decomposed artifacts of one recorded page load.
// This allows the audit logic to be tested without reading real trace bundles.
type ArtifactSource interface {
	// ID returns a human-readable identifier, usually the bundle path.
	ID() string

	// Digest returns a content hash that changes whenever the artifacts change.
	Digest() string

	// Settings returns the run settings the trace was recorded with.
	Settings() schema.Settings

	// PageURL returns the URL of the audited page.
	PageURL() string

	// NetworkRecords returns the network log of the given pass.
	NetworkRecords(ctx context.Context, pass string) ([]schema.NetworkRecord, error)

	// MainThreadTasks returns the classified main-thread tasks of the given pass.
	MainThreadTasks(ctx context.Context, pass string) ([]schema.MainThreadTask, error)

	// TBTImpactTasks returns the tasks annotated with their blocking-time impact.
	TBTImpactTasks(ctx context.Context, metric schema.MetricContext) ([]schema.TBTImpactTask, error)
}

// FaultReporter receives recoverable failures. Reporting never fails the caller.
type FaultReporter interface {
	Report(ctx context.Context, fault schema.Fault)
}

// CacheManager defines the interface for managing cache stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetActivityStore() CacheStore
	GetHistoryStore() HistoryStore
}

// CacheStore defines the interface for cache data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// HistoryStore defines the interface for tracking audit runs and their results.
type HistoryStore interface {
	// BeginRun creates a new audit run and returns its unique ID
	BeginRun(source, pageURL string, startTime time.Time, configParams map[string]any) (int64, error)

	// EndRun updates the audit run with the outcome
	EndRun(runID int64, endTime time.Time, outcome *schema.AggregateOutcome) error

	// RecordURLResult stores one ranked row of an audit run
	RecordURLResult(runID int64, rank int, analysisTime time.Time, result schema.URLResult) error

	// RecordFault stores a fault raised during an audit
	RecordFault(fault schema.Fault) error

	// GetStatus returns status information about the history store
	GetStatus() (schema.HistoryStatus, error)

	// GetAllRuns retrieves every recorded audit run
	GetAllRuns() ([]schema.AuditRunRecord, error)

	// GetAllURLResults retrieves every recorded ranked row
	GetAllURLResults() ([]schema.URLResultRecord, error)

	// Close closes the underlying connection
	Close() error
}
