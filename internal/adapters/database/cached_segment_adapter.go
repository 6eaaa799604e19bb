package database

import (
	"context"
	"encoding/json"
	"log"

	"github.com/cohortiq/customer-segmentation/internal/domain/entities"
	"github.com/cohortiq/customer-segmentation/internal/domain/providers"
	"github.com/cohortiq/customer-segmentation/internal/domain/repositories"
)

// CachedSegmentAdapter wraps a SegmentRepository with a read-through cache for
// the dashboard's snapshot reads. Publishing a new run drops both cached
// snapshots before they expire naturally.
type CachedSegmentAdapter struct {
	adapter repositories.SegmentRepository
	cache   providers.CacheProvider
	ttl     int
}

// NewCachedSegmentAdapter creates a new cached segment adapter. ttlSeconds
// bounds how stale a dashboard read can be if invalidation is missed.
func NewCachedSegmentAdapter(adapter repositories.SegmentRepository, cache providers.CacheProvider, ttlSeconds int) repositories.SegmentRepository {
	return &CachedSegmentAdapter{
		adapter: adapter,
		cache:   cache,
		ttl:     ttlSeconds,
	}
}

const (
	segmentsCacheKey  = "segments:customers"
	summariesCacheKey = "segments:summaries"
)

// Publish writes through to the underlying repository and invalidates both
// cached snapshots on success.
func (a *CachedSegmentAdapter) Publish(ctx context.Context, rows []*entities.CustomerSegmentRow, summaries []*entities.SegmentSummary) error {
	if err := a.adapter.Publish(ctx, rows, summaries); err != nil {
		return err
	}

	for _, key := range []string{segmentsCacheKey, summariesCacheKey} {
		if err := a.cache.Delete(ctx, key); err != nil {
			// Stale reads self-heal at TTL expiry
			log.Printf("Failed to invalidate %s: %v", key, err)
		}
	}
	return nil
}

// ListSegments retrieves the per-customer output table with caching
func (a *CachedSegmentAdapter) ListSegments(ctx context.Context) ([]*entities.CustomerSegmentRow, error) {
	if cached, err := a.cache.Get(ctx, segmentsCacheKey); err == nil {
		var rows []*entities.CustomerSegmentRow
		if err := json.Unmarshal(cached, &rows); err == nil {
			return rows, nil
		}
		log.Printf("Failed to unmarshal cached segments: %v", err)
	}

	rows, err := a.adapter.ListSegments(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(rows); err == nil {
		if err := a.cache.Set(ctx, segmentsCacheKey, data, a.ttl); err != nil {
			log.Printf("Failed to cache segments: %v", err)
		}
	}

	return rows, nil
}

// ListSummaries retrieves the per-cluster output table with caching
func (a *CachedSegmentAdapter) ListSummaries(ctx context.Context) ([]*entities.SegmentSummary, error) {
	if cached, err := a.cache.Get(ctx, summariesCacheKey); err == nil {
		var summaries []*entities.SegmentSummary
		if err := json.Unmarshal(cached, &summaries); err == nil {
			return summaries, nil
		}
		log.Printf("Failed to unmarshal cached summaries: %v", err)
	}

	summaries, err := a.adapter.ListSummaries(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(summaries); err == nil {
		if err := a.cache.Set(ctx, summariesCacheKey, data, a.ttl); err != nil {
			log.Printf("Failed to cache summaries: %v", err)
		}
	}

	return summaries, nil
}
