// Package catalog layers caching and ranking over a remote movie catalog.
package catalog

import (
	"context"
	"log/slog"
	"time"

	"github.com/mmcdole/cinelist/internal/domain"
)

// CachedResolver serves movie details from a DetailCache while they are
// younger than the TTL and falls through to the catalog otherwise.
// A zero TTL disables the cache.
type CachedResolver struct {
	next   domain.MetadataRepository
	cache  domain.DetailCache
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger
}

// NewCachedResolver wraps a metadata repository with a detail cache
func NewCachedResolver(next domain.MetadataRepository, cache domain.DetailCache, ttl time.Duration, logger *slog.Logger) *CachedResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedResolver{
		next:   next,
		cache:  cache,
		ttl:    ttl,
		now:    time.Now,
		logger: logger,
	}
}

// GetMovieDetails implements domain.MetadataRepository
func (r *CachedResolver) GetMovieDetails(ctx context.Context, id int) (*domain.MovieDetail, error) {
	if r.enabled() {
		if detail, fetchedAt, ok := r.cache.GetDetail(id); ok && r.now().Sub(fetchedAt) < r.ttl {
			r.logger.Debug("detail cache hit", "movieID", id)
			return detail, nil
		}
	}

	detail, err := r.next.GetMovieDetails(ctx, id)
	if err != nil {
		return nil, err
	}

	if r.enabled() && detail != nil {
		if err := r.cache.SaveDetail(detail, r.now()); err != nil {
			r.logger.Warn("failed to cache movie detail", "movieID", id, "error", err)
		}
	}
	return detail, nil
}

// Invalidate drops every cached detail so the next lookups hit the catalog
func (r *CachedResolver) Invalidate() {
	if r.cache != nil {
		r.cache.InvalidateDetails()
		r.logger.Info("invalidated detail cache")
	}
}

func (r *CachedResolver) enabled() bool {
	return r.cache != nil && r.ttl > 0
}
