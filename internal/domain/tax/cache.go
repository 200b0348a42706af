package tax

import (
	"context"
	"time"
)

// RateScheduleCache caches rate schedules by jurisdiction. Schedules are
// read-mostly reference data, so a short TTL plus explicit invalidation on
// save keeps calculations off the database.
type RateScheduleCache interface {
	// Get returns the cached schedule for a jurisdiction, or (nil, nil) on
	// a cache miss. Cache errors must not fail the lookup path; callers
	// fall through to the repository.
	Get(ctx context.Context, jurisdiction Jurisdiction) (*RateSchedule, error)

	// Set stores a schedule. A zero TTL uses the implementation's default.
	Set(ctx context.Context, schedule *RateSchedule, ttl time.Duration) error

	// Delete invalidates the cached schedule for a jurisdiction
	Delete(ctx context.Context, jurisdiction Jurisdiction) error
}

// CacheConfig holds rate schedule cache settings
type CacheConfig struct {
	ScheduleTTL time.Duration
}

// DefaultCacheConfig returns the default cache settings
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		ScheduleTTL: 15 * time.Minute,
	}
}
