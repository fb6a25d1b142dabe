package cache

import (
	"context"
	"sync"
	"time"
)

// InMemoryTokenCache implements TokenCache with a process-local map.
// Suitable for single-instance deployments and testing. Instances do not
// share state, so each process authenticates independently; the
// marketplace tolerates multiple concurrent tokens per credential set.
type InMemoryTokenCache struct {
	mu      sync.RWMutex
	entries map[string]tokenEntry
	now     func() time.Time
}

type tokenEntry struct {
	token     string
	expiresAt time.Time
}

// NewInMemoryTokenCache creates a new in-memory token cache
func NewInMemoryTokenCache() *InMemoryTokenCache {
	return &InMemoryTokenCache{
		entries: make(map[string]tokenEntry),
		now:     time.Now,
	}
}

// Get implements TokenCache
func (c *InMemoryTokenCache) Get(ctx context.Context, fingerprint string) (string, bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[fingerprint]
	c.mu.RUnlock()

	if !ok || c.now().After(entry.expiresAt) {
		return "", false, nil
	}
	return entry.token, true, nil
}

// Set implements TokenCache
func (c *InMemoryTokenCache) Set(ctx context.Context, fingerprint, token string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[fingerprint] = tokenEntry{
		token:     token,
		expiresAt: c.now().Add(ttl),
	}
	return nil
}

// Invalidate implements TokenCache
func (c *InMemoryTokenCache) Invalidate(ctx context.Context, fingerprint string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, fingerprint)
	return nil
}

// Ensure InMemoryTokenCache implements TokenCache
var _ TokenCache = (*InMemoryTokenCache)(nil)
