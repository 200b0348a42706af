package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bizsuite/backend/internal/domain/tax"
	"go.uber.org/zap"
)

// Constants for in-memory cache configuration
const (
	defaultCleanupInterval = 30 * time.Second
)

// InMemoryRateScheduleCache implements tax.RateScheduleCache using in-memory
// storage. Suitable for single-instance deployments; schedules are small
// reference data so memory pressure is not a concern.
type InMemoryRateScheduleCache struct {
	schedules sync.Map // map[string]*scheduleEntry
	config    tax.CacheConfig
	logger    *zap.Logger
	stopCh    chan struct{}
	stopped   int32

	// Stats for monitoring
	hits   int64
	misses int64
}

// scheduleEntry wraps a cached schedule with its expiration time
type scheduleEntry struct {
	schedule  *tax.RateSchedule
	expiresAt time.Time
}

// isExpired checks if the cache entry has expired
func (e *scheduleEntry) isExpired() bool {
	return time.Now().After(e.expiresAt)
}

// InMemoryRateScheduleCacheOption is a functional option for configuring the cache
type InMemoryRateScheduleCacheOption func(*InMemoryRateScheduleCache)

// WithInMemoryConfig sets the cache configuration
func WithInMemoryConfig(config tax.CacheConfig) InMemoryRateScheduleCacheOption {
	return func(c *InMemoryRateScheduleCache) {
		c.config = config
	}
}

// WithInMemoryLogger sets the logger for the cache
func WithInMemoryLogger(logger *zap.Logger) InMemoryRateScheduleCacheOption {
	return func(c *InMemoryRateScheduleCache) {
		c.logger = logger
	}
}

// NewInMemoryRateScheduleCache creates a new in-memory rate schedule cache
func NewInMemoryRateScheduleCache(opts ...InMemoryRateScheduleCacheOption) *InMemoryRateScheduleCache {
	cache := &InMemoryRateScheduleCache{
		config: tax.DefaultCacheConfig(),
		logger: zap.NewNop(),
		stopCh: make(chan struct{}),
	}

	for _, opt := range opts {
		opt(cache)
	}

	// Start background cleanup goroutine
	go cache.cleanupExpired()

	return cache
}

// scheduleCacheKey generates the cache key for a jurisdiction's schedule
func (c *InMemoryRateScheduleCache) scheduleCacheKey(jurisdiction tax.Jurisdiction) string {
	return "rate_schedule:" + string(jurisdiction)
}

// Get retrieves a rate schedule from cache. A miss returns (nil, nil).
func (c *InMemoryRateScheduleCache) Get(ctx context.Context, jurisdiction tax.Jurisdiction) (*tax.RateSchedule, error) {
	cacheKey := c.scheduleCacheKey(jurisdiction)

	if value, ok := c.schedules.Load(cacheKey); ok {
		entry := value.(*scheduleEntry)
		if !entry.isExpired() {
			atomic.AddInt64(&c.hits, 1)
			c.logger.Debug("cache hit for rate schedule", zap.String("jurisdiction", string(jurisdiction)))
			return entry.schedule, nil
		}
		// Expired, remove from cache
		c.schedules.Delete(cacheKey)
	}

	atomic.AddInt64(&c.misses, 1)
	c.logger.Debug("cache miss for rate schedule", zap.String("jurisdiction", string(jurisdiction)))
	return nil, nil
}

// Set stores a rate schedule in cache
func (c *InMemoryRateScheduleCache) Set(ctx context.Context, schedule *tax.RateSchedule, ttl time.Duration) error {
	if schedule == nil {
		return nil
	}

	if ttl == 0 {
		ttl = c.config.ScheduleTTL
	}

	cacheKey := c.scheduleCacheKey(schedule.Jurisdiction)
	entry := &scheduleEntry{
		schedule:  schedule,
		expiresAt: time.Now().Add(ttl),
	}

	c.schedules.Store(cacheKey, entry)
	c.logger.Debug("cached rate schedule",
		zap.String("jurisdiction", string(schedule.Jurisdiction)),
		zap.Duration("ttl", ttl))
	return nil
}

// Delete removes a jurisdiction's schedule from cache
func (c *InMemoryRateScheduleCache) Delete(ctx context.Context, jurisdiction tax.Jurisdiction) error {
	cacheKey := c.scheduleCacheKey(jurisdiction)
	c.schedules.Delete(cacheKey)
	c.logger.Debug("deleted rate schedule from cache", zap.String("jurisdiction", string(jurisdiction)))
	return nil
}

// Close stops the background cleanup goroutine
func (c *InMemoryRateScheduleCache) Close() error {
	if atomic.CompareAndSwapInt32(&c.stopped, 0, 1) {
		close(c.stopCh)
	}
	return nil
}

// GetStats returns cache statistics
func (c *InMemoryRateScheduleCache) GetStats() (hits, misses int64) {
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses)
}

// Count returns the number of entries in the cache
func (c *InMemoryRateScheduleCache) Count() int {
	count := 0
	c.schedules.Range(func(_, _ any) bool {
		count++
		return true
	})
	return count
}

// cleanupExpired periodically removes expired entries from the cache
func (c *InMemoryRateScheduleCache) cleanupExpired() {
	ticker := time.NewTicker(defaultCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.doCleanup()
		}
	}
}

// doCleanup removes expired entries
func (c *InMemoryRateScheduleCache) doCleanup() {
	removed := 0
	c.schedules.Range(func(key, value any) bool {
		entry := value.(*scheduleEntry)
		if entry.isExpired() {
			c.schedules.Delete(key)
			removed++
		}
		return true
	})

	if removed > 0 {
		c.logger.Debug("cleaned up expired rate schedule entries", zap.Int("removed", removed))
	}
}

// Ensure InMemoryRateScheduleCache implements the interface
var _ tax.RateScheduleCache = (*InMemoryRateScheduleCache)(nil)
