package cache

import (
	"context"
	"time"
)

// TokenCache stores short-lived marketplace access tokens keyed by a
// credential fingerprint. Keying by fingerprint rather than installation
// guarantees a token is never reused for a different credential set.
type TokenCache interface {
	// Get returns the cached token for the fingerprint, with false when
	// no unexpired token is cached
	Get(ctx context.Context, fingerprint string) (string, bool, error)

	// Set caches a token under the fingerprint for the given TTL
	Set(ctx context.Context, fingerprint, token string, ttl time.Duration) error

	// Invalidate drops the cached token for the fingerprint
	Invalidate(ctx context.Context, fingerprint string) error
}
