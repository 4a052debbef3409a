package agg

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/huangsam/bootup/internal/contract"
	"github.com/huangsam/bootup/internal/iocache"
	"github.com/huangsam/bootup/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockCacheStore for testing (alias for MockCacheStore)
type MockCacheStore = iocache.MockCacheStore

func testConfig() *contract.Config {
	return &contract.Config{Pass: schema.DefaultPass, SelfEvalURL: schema.DefaultSelfEvalURL}
}

func mockSource() *contract.MockArtifactSource {
	src := &contract.MockArtifactSource{}
	src.On("Digest").Return("digest-1").Maybe()
	src.On("NetworkRecords", mock.Anything, schema.DefaultPass).
		Return([]schema.NetworkRecord{script("https://a.test/app.js")}, nil).Maybe()
	src.On("MainThreadTasks", mock.Anything, schema.DefaultPass).
		Return([]schema.MainThreadTask{task(schema.ScriptEvaluation, 80, "https://a.test/app.js")}, nil).Maybe()
	return src
}

func TestCheckCacheHit_CacheHit(t *testing.T) {
	mockStore := &MockCacheStore{}
	var groups schema.GroupTimings
	groups[schema.ScriptEvaluation] = 5
	data, _ := json.Marshal([]schema.URLTimings{{URL: "app.js", Groups: groups}})

	// Valid cache entry: current version, recent timestamp
	mockStore.On("Get", "test-key").Return(data, currentCacheVersion, time.Now().Unix(), nil)

	actual := checkCacheHit(mockStore, "test-key")
	require.Len(t, actual, 1)
	assert.Equal(t, 5.0, actual[0].Groups[schema.ScriptEvaluation])
	mockStore.AssertExpectations(t)
}

func TestCheckCacheHit_CacheMiss(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		version int
		ts      int64
		err     error
	}{
		{"version mismatch", []byte("[]"), currentCacheVersion - 1, time.Now().Unix(), nil},
		{"stale", []byte("[]"), currentCacheVersion, time.Now().Add(-8 * 24 * time.Hour).Unix(), nil},
		{"store error", []byte{}, 0, 0, assert.AnError},
		{"unmarshal error", []byte("invalid json"), currentCacheVersion, time.Now().Unix(), nil},
		{"unknown group", []byte(`[{"url":"a.js","groups":{"layout":1}}]`), currentCacheVersion, time.Now().Unix(), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockStore := &MockCacheStore{}
			mockStore.On("Get", "test-key").Return(tt.data, tt.version, tt.ts, tt.err)

			assert.Nil(t, checkCacheHit(mockStore, "test-key"))
			mockStore.AssertExpectations(t)
		})
	}
}

func TestGenerateCacheKey(t *testing.T) {
	cfg := testConfig()
	src := mockSource()

	key1 := generateCacheKey(cfg, src)
	assert.Len(t, key1, 64) // SHA256 hash length

	cfg2 := cfg.Clone()
	cfg2.SelfEvalURL = "other-eval.js"
	assert.NotEqual(t, key1, generateCacheKey(cfg2, src))

	cfg3 := cfg.Clone()
	cfg3.CPUSlowdown = 8
	assert.Equal(t, key1, generateCacheKey(cfg3, src), "scaling does not affect raw timings")
}

func TestCachedExecutionTimings_MissThenStore(t *testing.T) {
	cfg := testConfig()
	src := mockSource()
	key := generateCacheKey(cfg, src)

	mockStore := &MockCacheStore{}
	mockStore.On("Get", key).Return([]byte{}, 0, int64(0), assert.AnError)
	mockStore.On("Set", key, mock.Anything, currentCacheVersion, mock.AnythingOfType("int64")).Return(nil)

	mgr := &iocache.MockCacheManager{}
	mgr.On("GetActivityStore").Return(mockStore)

	timings, err := CachedExecutionTimings(context.Background(), cfg, src, mgr)
	require.NoError(t, err)
	require.Len(t, timings, 1)
	assert.Equal(t, 80.0, timings[0].Groups[schema.ScriptEvaluation])
	mockStore.AssertExpectations(t)
}

func TestCachedExecutionTimings_Hit(t *testing.T) {
	cfg := testConfig()
	src := &contract.MockArtifactSource{}
	src.On("Digest").Return("digest-1")
	key := generateCacheKey(cfg, src)

	data := []byte(`[{"url":"cached.js","groups":{"scriptEvaluation":42}}]`)
	mockStore := &MockCacheStore{}
	mockStore.On("Get", key).Return(data, currentCacheVersion, time.Now().Unix(), nil)

	mgr := &iocache.MockCacheManager{}
	mgr.On("GetActivityStore").Return(mockStore)

	timings, err := CachedExecutionTimings(context.Background(), cfg, src, mgr)
	require.NoError(t, err)
	require.Len(t, timings, 1)
	assert.Equal(t, "cached.js", timings[0].URL)
	src.AssertNotCalled(t, "MainThreadTasks", mock.Anything, mock.Anything)
}

func TestCachedExecutionTimings_NoStore(t *testing.T) {
	timings, err := CachedExecutionTimings(context.Background(), testConfig(), mockSource(), nil)
	require.NoError(t, err)
	assert.Len(t, timings, 1)
}

func TestAggregateExecution_PrimaryFailurePropagates(t *testing.T) {
	src := &contract.MockArtifactSource{}
	src.On("NetworkRecords", mock.Anything, schema.DefaultPass).Return(nil, schema.ErrPassNotFound)
	src.On("MainThreadTasks", mock.Anything, schema.DefaultPass).Return([]schema.MainThreadTask{}, nil).Maybe()

	timings, err := AggregateExecution(context.Background(), testConfig(), src)
	assert.ErrorIs(t, err, schema.ErrPassNotFound)
	assert.Nil(t, timings)

	src = &contract.MockArtifactSource{}
	src.On("NetworkRecords", mock.Anything, schema.DefaultPass).Return([]schema.NetworkRecord{}, nil).Maybe()
	src.On("MainThreadTasks", mock.Anything, schema.DefaultPass).Return(nil, schema.ErrNoTasks)

	_, err = AggregateExecution(context.Background(), testConfig(), src)
	assert.ErrorIs(t, err, schema.ErrNoTasks)
}
