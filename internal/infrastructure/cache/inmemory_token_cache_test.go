package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryTokenCache(t *testing.T) {
	ctx := context.Background()

	t.Run("miss on empty cache", func(t *testing.T) {
		c := NewInMemoryTokenCache()

		_, ok, err := c.Get(ctx, "fp-1")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("set then get", func(t *testing.T) {
		c := NewInMemoryTokenCache()
		require.NoError(t, c.Set(ctx, "fp-1", "token-1", time.Minute))

		token, ok, err := c.Get(ctx, "fp-1")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "token-1", token)
	})

	t.Run("tokens are isolated per fingerprint", func(t *testing.T) {
		c := NewInMemoryTokenCache()
		require.NoError(t, c.Set(ctx, "fp-1", "token-1", time.Minute))
		require.NoError(t, c.Set(ctx, "fp-2", "token-2", time.Minute))

		token, ok, err := c.Get(ctx, "fp-2")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "token-2", token)
	})

	t.Run("expired token is a miss", func(t *testing.T) {
		c := NewInMemoryTokenCache()
		base := time.Now()
		c.now = func() time.Time { return base }

		require.NoError(t, c.Set(ctx, "fp-1", "token-1", time.Minute))

		c.now = func() time.Time { return base.Add(2 * time.Minute) }
		_, ok, err := c.Get(ctx, "fp-1")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("invalidate drops the token", func(t *testing.T) {
		c := NewInMemoryTokenCache()
		require.NoError(t, c.Set(ctx, "fp-1", "token-1", time.Minute))
		require.NoError(t, c.Invalidate(ctx, "fp-1"))

		_, ok, err := c.Get(ctx, "fp-1")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
