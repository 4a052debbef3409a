package agg

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/bootup/internal/contract"
	"github.com/huangsam/bootup/schema"
	"golang.org/x/sync/errgroup"
)

// currentCacheVersion defines the version of the cache schema
const currentCacheVersion = 1

// cacheTTL is how long a cached aggregation stays valid.
const cacheTTL = 7 * 24 * time.Hour

// CachedExecutionTimings returns the per-URL timings of a source, served from the
// activity store when a fresh entry exists for the same bundle content.
func CachedExecutionTimings(ctx context.Context, cfg *contract.Config, src contract.ArtifactSource, mgr contract.CacheManager) ([]schema.URLTimings, error) {
	var activity contract.CacheStore
	if mgr != nil {
		activity = mgr.GetActivityStore()
	}
	if activity == nil {
		// Fallback to direct computation
		return AggregateExecution(ctx, cfg, src)
	}

	key := generateCacheKey(cfg, src)

	// Check for cache hit
	if result := checkCacheHit(activity, key); result != nil {
		return result, nil
	}

	// Cache miss: compute and store
	return computeAndStore(ctx, cfg, src, activity, key)
}

// AggregateExecution requests network records and main-thread tasks concurrently
// and aggregates them. A failure of either request aborts the aggregation.
func AggregateExecution(ctx context.Context, cfg *contract.Config, src contract.ArtifactSource) ([]schema.URLTimings, error) {
	var (
		records []schema.NetworkRecord
		tasks   []schema.MainThreadTask
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = src.NetworkRecords(gctx, cfg.Pass)
		if err != nil {
			return fmt.Errorf("network records: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		tasks, err = src.MainThreadTasks(gctx, cfg.Pass)
		if err != nil {
			return fmt.Errorf("main-thread tasks: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return GetExecutionTimingsByURL(tasks, records, cfg.SelfEvalURL), nil
}

// checkCacheHit attempts to retrieve and validate a cached result
func checkCacheHit(activity contract.CacheStore, key string) []schema.URLTimings {
	data, version, ts, err := activity.Get(key)
	if err != nil {
		return nil // Cache miss
	}

	// Validate version and staleness
	if version != currentCacheVersion || time.Since(time.Unix(ts, 0)) > cacheTTL {
		return nil
	}

	var result []schema.URLTimings
	if err := json.Unmarshal(data, &result); err != nil {
		return nil
	}
	return result // Cache hit
}

// computeAndStore computes the result and stores it in cache
func computeAndStore(ctx context.Context, cfg *contract.Config, src contract.ArtifactSource, activity contract.CacheStore, key string) ([]schema.URLTimings, error) {
	result, err := AggregateExecution(ctx, cfg, src)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(result); err == nil {
		if err := activity.Set(key, data, currentCacheVersion, time.Now().Unix()); err != nil {
			contract.LogWarn("Cannot cache execution timings", err)
		}
	}

	return result, nil
}

// generateCacheKey creates a unique key from the bundle content and the
// parameters that change attribution. Scaling happens later, so throttling
// settings are not part of the key.
func generateCacheKey(cfg *contract.Config, src contract.ArtifactSource) string {
	key := fmt.Sprintf("%s:%s:%s", src.Digest(), cfg.Pass, cfg.SelfEvalURL)
	return fmt.Sprintf("%x", sha256.Sum256([]byte(key)))
}
