package cache

import (
	"fmt"

	"github.com/bizsuite/backend/internal/domain/tax"
	"github.com/bizsuite/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// ScheduleCacheFactory creates rate schedule caches based on configuration
type ScheduleCacheFactory struct {
	redisConfig           config.RedisConfig
	cacheConfig           tax.CacheConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// ScheduleCacheFactoryOption is a functional option for configuring the factory
type ScheduleCacheFactoryOption func(*ScheduleCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) ScheduleCacheFactoryOption {
	return func(f *ScheduleCacheFactory) {
		f.logger = logger
	}
}

// WithScheduleTTL sets the schedule TTL used by created caches
func WithScheduleTTL(cacheConfig tax.CacheConfig) ScheduleCacheFactoryOption {
	return func(f *ScheduleCacheFactory) {
		f.cacheConfig = cacheConfig
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory cache
// when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) ScheduleCacheFactoryOption {
	return func(f *ScheduleCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewScheduleCacheFactory creates a new factory
func NewScheduleCacheFactory(cfg config.RedisConfig, opts ...ScheduleCacheFactoryOption) *ScheduleCacheFactory {
	f := &ScheduleCacheFactory{
		redisConfig:           cfg,
		cacheConfig:           tax.DefaultCacheConfig(),
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateRedisCache creates a Redis-backed rate schedule cache
func (f *ScheduleCacheFactory) CreateRedisCache() (tax.RateScheduleCache, error) {
	redisCfg := RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	}

	cache, err := NewRedisRateScheduleCache(redisCfg,
		WithCacheConfig(f.cacheConfig),
		WithCacheLogger(f.logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis rate schedule cache: %w", err)
	}

	return cache, nil
}

// CreateInMemoryCache creates an in-memory rate schedule cache.
// In-memory caches do not share invalidations across process instances, so
// a rate change can take up to one TTL to converge in multi-node setups.
func (f *ScheduleCacheFactory) CreateInMemoryCache() tax.RateScheduleCache {
	return NewInMemoryRateScheduleCache(
		WithInMemoryConfig(f.cacheConfig),
		WithInMemoryLogger(f.logger))
}

// CreateCache creates a cache for the configured backend. The "redis"
// backend falls back to in-memory when Redis is unreachable and fallback is
// allowed.
func (f *ScheduleCacheFactory) CreateCache(backend string) (tax.RateScheduleCache, error) {
	switch backend {
	case "memory", "":
		f.logger.Info("using in-memory rate schedule cache")
		return f.CreateInMemoryCache(), nil
	case "redis":
		cache, err := f.CreateRedisCache()
		if err == nil {
			f.logger.Info("using Redis rate schedule cache")
			return cache, nil
		}
		if !f.allowInMemoryFallback {
			return nil, fmt.Errorf("Redis required for rate schedule cache but unavailable: %w", err)
		}
		f.logger.Warn("Redis unavailable, falling back to in-memory rate schedule cache. "+
			"Rate changes may take up to one TTL to converge across instances.",
			zap.Error(err),
		)
		return f.CreateInMemoryCache(), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", backend)
	}
}
