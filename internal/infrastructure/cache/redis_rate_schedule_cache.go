package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bizsuite/backend/internal/domain/shared/valueobject"
	"github.com/bizsuite/backend/internal/domain/tax"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RedisConfig holds the Redis connection settings the cache package needs
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// cachedSchedule is the wire form of a rate schedule in Redis. Rates are
// serialized as decimal strings so the stored form never picks up float
// representation drift.
type cachedSchedule struct {
	Jurisdiction string            `json:"jurisdiction"`
	Currency     string            `json:"currency"`
	Rates        map[string]string `json:"rates"`
}

// fromDomain converts a domain schedule to its cached wire form
func fromDomain(s *tax.RateSchedule) cachedSchedule {
	rates := make(map[string]string, len(s.Rates))
	for class, rate := range s.Rates {
		rates[string(class)] = rate.String()
	}
	return cachedSchedule{
		Jurisdiction: string(s.Jurisdiction),
		Currency:     string(s.Currency),
		Rates:        rates,
	}
}

// toDomain rebuilds the domain schedule, re-running its validation
func (c cachedSchedule) toDomain() (*tax.RateSchedule, error) {
	rates := make(map[tax.RateClass]decimal.Decimal, len(c.Rates))
	for class, raw := range c.Rates {
		rate, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid cached rate %q for class %s: %w", raw, class, err)
		}
		rates[tax.RateClass(class)] = rate
	}
	return tax.NewRateSchedule(tax.Jurisdiction(c.Jurisdiction), valueobject.Currency(c.Currency), rates)
}

// RedisRateScheduleCache implements tax.RateScheduleCache using Redis
type RedisRateScheduleCache struct {
	client     *redis.Client
	ownsClient bool // true if we created the client and should close it
	config     tax.CacheConfig
	logger     *zap.Logger
}

// RedisRateScheduleCacheOption is a functional option for configuring the cache
type RedisRateScheduleCacheOption func(*RedisRateScheduleCache)

// WithCacheConfig sets the cache configuration
func WithCacheConfig(config tax.CacheConfig) RedisRateScheduleCacheOption {
	return func(c *RedisRateScheduleCache) {
		c.config = config
	}
}

// WithCacheLogger sets the logger for the cache
func WithCacheLogger(logger *zap.Logger) RedisRateScheduleCacheOption {
	return func(c *RedisRateScheduleCache) {
		c.logger = logger
	}
}

// NewRedisRateScheduleCache creates a new Redis-based rate schedule cache
func NewRedisRateScheduleCache(cfg RedisConfig, opts ...RedisRateScheduleCacheOption) (*RedisRateScheduleCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	cache := &RedisRateScheduleCache{
		client:     client,
		ownsClient: true,
		config:     tax.DefaultCacheConfig(),
		logger:     zap.NewNop(),
	}

	for _, opt := range opts {
		opt(cache)
	}

	return cache, nil
}

// NewRedisRateScheduleCacheWithClient creates a cache with an existing Redis
// client. The caller retains ownership of the client and must close it.
func NewRedisRateScheduleCacheWithClient(client *redis.Client, opts ...RedisRateScheduleCacheOption) *RedisRateScheduleCache {
	cache := &RedisRateScheduleCache{
		client:     client,
		ownsClient: false,
		config:     tax.DefaultCacheConfig(),
		logger:     zap.NewNop(),
	}

	for _, opt := range opts {
		opt(cache)
	}

	return cache
}

// scheduleCacheKey generates the cache key for a jurisdiction's schedule
func (c *RedisRateScheduleCache) scheduleCacheKey(jurisdiction tax.Jurisdiction) string {
	return fmt.Sprintf("rate_schedule:%s", jurisdiction)
}

// Get retrieves a rate schedule from cache. A miss returns (nil, nil).
func (c *RedisRateScheduleCache) Get(ctx context.Context, jurisdiction tax.Jurisdiction) (*tax.RateSchedule, error) {
	cacheKey := c.scheduleCacheKey(jurisdiction)

	data, err := c.client.Get(ctx, cacheKey).Bytes()
	if err == redis.Nil {
		c.logger.Debug("cache miss for rate schedule", zap.String("jurisdiction", string(jurisdiction)))
		return nil, nil
	}
	if err != nil {
		c.logger.Error("failed to get rate schedule from cache",
			zap.String("jurisdiction", string(jurisdiction)),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get schedule from cache: %w", err)
	}

	var cached cachedSchedule
	if err := json.Unmarshal(data, &cached); err != nil {
		c.logger.Error("failed to unmarshal rate schedule",
			zap.String("jurisdiction", string(jurisdiction)),
			zap.Error(err))
		// Delete corrupted cache entry
		_ = c.client.Del(ctx, cacheKey)
		return nil, fmt.Errorf("failed to unmarshal schedule: %w", err)
	}

	schedule, err := cached.toDomain()
	if err != nil {
		// A stale entry from an older format is treated like corruption.
		_ = c.client.Del(ctx, cacheKey)
		return nil, err
	}

	c.logger.Debug("cache hit for rate schedule", zap.String("jurisdiction", string(jurisdiction)))
	return schedule, nil
}

// Set stores a rate schedule in cache
func (c *RedisRateScheduleCache) Set(ctx context.Context, schedule *tax.RateSchedule, ttl time.Duration) error {
	if schedule == nil {
		return nil
	}

	if ttl == 0 {
		ttl = c.config.ScheduleTTL
	}

	cacheKey := c.scheduleCacheKey(schedule.Jurisdiction)

	data, err := json.Marshal(fromDomain(schedule))
	if err != nil {
		c.logger.Error("failed to marshal rate schedule",
			zap.String("jurisdiction", string(schedule.Jurisdiction)),
			zap.Error(err))
		return fmt.Errorf("failed to marshal schedule: %w", err)
	}

	if err := c.client.Set(ctx, cacheKey, data, ttl).Err(); err != nil {
		c.logger.Error("failed to set rate schedule in cache",
			zap.String("jurisdiction", string(schedule.Jurisdiction)),
			zap.Error(err))
		return fmt.Errorf("failed to set schedule in cache: %w", err)
	}

	c.logger.Debug("cached rate schedule",
		zap.String("jurisdiction", string(schedule.Jurisdiction)),
		zap.Duration("ttl", ttl))
	return nil
}

// Delete removes a jurisdiction's schedule from cache
func (c *RedisRateScheduleCache) Delete(ctx context.Context, jurisdiction tax.Jurisdiction) error {
	cacheKey := c.scheduleCacheKey(jurisdiction)

	if err := c.client.Del(ctx, cacheKey).Err(); err != nil {
		c.logger.Error("failed to delete rate schedule from cache",
			zap.String("jurisdiction", string(jurisdiction)),
			zap.Error(err))
		return fmt.Errorf("failed to delete schedule from cache: %w", err)
	}

	c.logger.Debug("deleted rate schedule from cache", zap.String("jurisdiction", string(jurisdiction)))
	return nil
}

// Close closes the Redis client if this cache owns it
func (c *RedisRateScheduleCache) Close() error {
	if c.ownsClient {
		return c.client.Close()
	}
	return nil
}

// Ensure RedisRateScheduleCache implements the interface
var _ tax.RateScheduleCache = (*RedisRateScheduleCache)(nil)
