package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/woodcraft/backend/internal/infrastructure/config"
)

func TestInMemoryTokenStore(t *testing.T) {
	store := NewInMemoryTokenStore()
	ctx := context.Background()

	t.Run("miss on unknown key", func(t *testing.T) {
		_, ok, err := store.Get(ctx, "unknown")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("stores and deletes", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "conn-1", "tok", time.Hour))
		token, ok, err := store.Get(ctx, "conn-1")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "tok", token)

		require.NoError(t, store.Delete(ctx, "conn-1"))
		_, ok, _ = store.Get(ctx, "conn-1")
		assert.False(t, ok)
	})

	t.Run("expires after ttl", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "conn-2", "tok", 10*time.Millisecond))
		time.Sleep(30 * time.Millisecond)
		_, ok, err := store.Get(ctx, "conn-2")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestTokenStoreFactory(t *testing.T) {
	unreachable := config.RedisConfig{Host: "127.0.0.1", Port: 1}

	t.Run("memory backend", func(t *testing.T) {
		store, err := NewTokenStoreFactory(unreachable).CreateStore("memory")
		require.NoError(t, err)
		assert.IsType(t, &InMemoryTokenStore{}, store)
	})

	t.Run("redis unavailable falls back", func(t *testing.T) {
		store, err := NewTokenStoreFactory(unreachable).CreateStore("redis")
		require.NoError(t, err)
		assert.IsType(t, &InMemoryTokenStore{}, store)
	})

	t.Run("redis unavailable without fallback", func(t *testing.T) {
		_, err := NewTokenStoreFactory(unreachable, WithInMemoryFallback(false)).CreateStore("redis")
		assert.Error(t, err)
	})
}
