package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisTokenCache implements TokenCache using Redis. Suitable for
// distributed deployments where instances should share marketplace tokens
// instead of each requesting their own.
type RedisTokenCache struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisTokenCache creates a new Redis-based token cache
func NewRedisTokenCache(cfg RedisConfig) (*RedisTokenCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisTokenCache{
		client:    client,
		keyPrefix: "bol:token:",
	}, nil
}

// NewRedisTokenCacheWithClient creates a cache with an existing Redis client
func NewRedisTokenCacheWithClient(client *redis.Client, keyPrefix string) *RedisTokenCache {
	if keyPrefix == "" {
		keyPrefix = "bol:token:"
	}
	return &RedisTokenCache{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Get implements TokenCache
func (c *RedisTokenCache) Get(ctx context.Context, fingerprint string) (string, bool, error) {
	token, err := c.client.Get(ctx, c.keyPrefix+fingerprint).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read cached token: %w", err)
	}
	return token, true, nil
}

// Set implements TokenCache
func (c *RedisTokenCache) Set(ctx context.Context, fingerprint, token string, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.keyPrefix+fingerprint, token, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache token: %w", err)
	}
	return nil
}

// Invalidate implements TokenCache
func (c *RedisTokenCache) Invalidate(ctx context.Context, fingerprint string) error {
	if err := c.client.Del(ctx, c.keyPrefix+fingerprint).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cached token: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (c *RedisTokenCache) Close() error {
	return c.client.Close()
}

// Ensure RedisTokenCache implements TokenCache
var _ TokenCache = (*RedisTokenCache)(nil)
