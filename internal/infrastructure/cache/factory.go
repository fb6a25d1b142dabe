package cache

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/fulfilhub/backend/internal/infrastructure/config"
)

// TokenCacheFactory creates token caches based on configuration
type TokenCacheFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// TokenCacheFactoryOption is a functional option for configuring the factory
type TokenCacheFactoryOption func(*TokenCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) TokenCacheFactoryOption {
	return func(f *TokenCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to an in-memory cache
// when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) TokenCacheFactoryOption {
	return func(f *TokenCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewTokenCacheFactory creates a new factory
func NewTokenCacheFactory(cfg config.RedisConfig, opts ...TokenCacheFactoryOption) *TokenCacheFactory {
	f := &TokenCacheFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateCache creates a token cache, preferring Redis and falling back to
// the in-memory implementation when Redis is unavailable and fallback is
// allowed.
func (f *TokenCacheFactory) CreateCache() (TokenCache, error) {
	cache, err := NewRedisTokenCache(RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	})
	if err == nil {
		f.logger.Info("using Redis token cache")
		return cache, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for token cache but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory token cache. "+
		"Each instance will authenticate against the marketplace independently.",
		zap.Error(err),
	)
	return NewInMemoryTokenCache(), nil
}
