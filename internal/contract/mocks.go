package contract

import (
	"context"

	"github.com/huangsam/bootup/schema"
	"github.com/stretchr/testify/mock"
)

// MockArtifactSource is a mock implementation of ArtifactSource for testing.
type MockArtifactSource struct {
	mock.Mock
}

var _ ArtifactSource = &MockArtifactSource{} // Compile-time check

// ID implements the ArtifactSource interface.
func (m *MockArtifactSource) ID() string {
	return m.Called().String(0)
}

// Digest implements the ArtifactSource interface.
func (m *MockArtifactSource) Digest() string {
	return m.Called().String(0)
}

// Settings implements the ArtifactSource interface.
func (m *MockArtifactSource) Settings() schema.Settings {
	return m.Called().Get(0).(schema.Settings)
}

// PageURL implements the ArtifactSource interface.
func (m *MockArtifactSource) PageURL() string {
	return m.Called().String(0)
}

// NetworkRecords implements the ArtifactSource interface.
func (m *MockArtifactSource) NetworkRecords(ctx context.Context, pass string) ([]schema.NetworkRecord, error) {
	args := m.Called(ctx, pass)
	records, _ := args.Get(0).([]schema.NetworkRecord)
	return records, args.Error(1)
}

// MainThreadTasks implements the ArtifactSource interface.
func (m *MockArtifactSource) MainThreadTasks(ctx context.Context, pass string) ([]schema.MainThreadTask, error) {
	args := m.Called(ctx, pass)
	tasks, _ := args.Get(0).([]schema.MainThreadTask)
	return tasks, args.Error(1)
}

// TBTImpactTasks implements the ArtifactSource interface.
func (m *MockArtifactSource) TBTImpactTasks(ctx context.Context, metric schema.MetricContext) ([]schema.TBTImpactTask, error) {
	args := m.Called(ctx, metric)
	tasks, _ := args.Get(0).([]schema.TBTImpactTask)
	return tasks, args.Error(1)
}

// MockFaultReporter is a mock implementation of FaultReporter for testing.
type MockFaultReporter struct {
	mock.Mock
}

var _ FaultReporter = &MockFaultReporter{} // Compile-time check

// Report implements the FaultReporter interface.
func (m *MockFaultReporter) Report(ctx context.Context, fault schema.Fault) {
	m.Called(ctx, fault)
}
