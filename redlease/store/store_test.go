package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) *Redis {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		require.NoError(t, client.Close())
	})
	return NewRedis(client)
}

func TestRedisStoreContract(t *testing.T) {
	runStoreContractTest(t, newRedisStore(t))
}

func TestMemoryStoreContract(t *testing.T) {
	runStoreContractTest(t, NewMemory())
}

func runStoreContractTest(t *testing.T, s Store) {
	ctx := context.Background()
	key := "contract-key"
	ttl := time.Minute

	ok, err := s.TrySet(ctx, key, "token-1", ttl)
	require.NoError(t, err)
	require.True(t, ok)

	// Held keys cannot be set again.
	ok, err = s.TrySet(ctx, key, "token-2", ttl)
	require.NoError(t, err)
	require.False(t, ok)

	value, exists, err := s.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, exists)
	require.Equal(t, "token-1", value)

	ok, err = s.CompareExpire(ctx, key, "token-2", ttl)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = s.CompareExpire(ctx, key, "token-1", 2*time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = s.CompareDelete(ctx, key, "token-2")
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = s.CompareDelete(ctx, key, "token-1")
	require.NoError(t, err)
	require.True(t, ok)

	_, exists, err = s.Get(ctx, key)
	require.NoError(t, err)
	require.False(t, exists)

	ok, err = s.CompareDelete(ctx, key, "token-1")
	require.NoError(t, err)
	require.False(t, ok)

	// The key is free again after a delete.
	ok, err = s.TrySet(ctx, key, "token-3", ttl)
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = s.CompareDelete(ctx, key, "token-3")
	require.NoError(t, err)
	require.True(t, ok)
}
