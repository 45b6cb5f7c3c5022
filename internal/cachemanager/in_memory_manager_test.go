package cachemanager

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cloudwalk/lending-registry/internal/identity"
)

func TestNewInMemoryCacheManager(t *testing.T) {
	require.NotPanics(t, func() {
		NewInMemoryCacheManager[string, string]("test", DefaultExpiration, DefaultCleanupInterval)
	})
}

type registrationStub struct {
	Resource string
	Creator  string
}

func TestInMemoryCacheManager_GetExistingValue_StructType(t *testing.T) {
	cache := NewInMemoryCacheManager[identity.Address, registrationStub]("registrations", DefaultExpiration, DefaultCleanupInterval)
	reg := registrationStub{Resource: "cl-1", Creator: "alice"}
	cache.Set(context.Background(), "cl-1", reg, DefaultExpiration)

	got, ok := cache.Get(context.Background(), "cl-1")
	require.True(t, ok)
	require.Equal(t, reg, got)
}

func TestInMemoryCacheManager_GetWithNoExistingValue(t *testing.T) {
	cache := NewInMemoryCacheManager[string, string]("registrations", DefaultExpiration, DefaultCleanupInterval)

	got, ok := cache.Get(context.Background(), "missing")
	require.False(t, ok)
	require.Empty(t, got)
}

func TestInMemoryCacheManager_GetWithExistingInvalidValueType(t *testing.T) {
	cache := NewInMemoryCacheManager[string, string]("registrations", DefaultExpiration, DefaultCleanupInterval)

	cache.cache.Set("key", 123, DefaultExpiration)

	got, ok := cache.Get(context.Background(), "key")
	require.False(t, ok)
	require.Empty(t, got)
}

func TestInMemoryCacheManager_GetMultiple(t *testing.T) {
	ctx := context.Background()
	cache := NewInMemoryCacheManager[string, string]("registrations", DefaultExpiration, DefaultCleanupInterval)
	cache.Set(ctx, "a", "1", DefaultExpiration)
	cache.Set(ctx, "b", "2", DefaultExpiration)

	t.Run("all hits", func(t *testing.T) {
		values, ok := cache.GetMultiple(ctx, []string{"a", "b"})
		require.True(t, ok)
		require.Equal(t, map[string]string{"a": "1", "b": "2"}, values)
	})

	t.Run("partial hit", func(t *testing.T) {
		values, ok := cache.GetMultiple(ctx, []string{"a", "missing"})
		require.True(t, ok)
		require.Equal(t, map[string]string{"a": "1"}, values)
	})

	t.Run("all misses", func(t *testing.T) {
		_, ok := cache.GetMultiple(ctx, []string{"x", "y"})
		require.False(t, ok)
	})

	t.Run("no keys", func(t *testing.T) {
		_, ok := cache.GetMultiple(ctx, nil)
		require.False(t, ok)
	})
}

func TestInMemoryCacheManager_GetWithRefresh(t *testing.T) {
	ctx := context.Background()
	cache := NewInMemoryCacheManager[string, string]("registrations", DefaultExpiration, DefaultCleanupInterval)
	cache.Set(ctx, "key", "value", 30*time.Millisecond)

	got, ok := cache.GetWithRefresh(ctx, "key", 10*time.Minute)
	require.True(t, ok)
	require.Equal(t, "value", got)

	// the refresh replaces the short ttl
	time.Sleep(50 * time.Millisecond)
	_, ok = cache.Get(ctx, "key")
	require.True(t, ok)
}

func TestInMemoryCacheManager_DeleteAndFlush(t *testing.T) {
	ctx := context.Background()
	cache := NewInMemoryCacheManager[string, string]("registrations", DefaultExpiration, DefaultCleanupInterval)
	cache.Set(ctx, "a", "1", DefaultExpiration)
	cache.Set(ctx, "b", "2", DefaultExpiration)

	require.NoError(t, cache.Delete(ctx, "a"))
	_, ok := cache.Get(ctx, "a")
	require.False(t, ok)

	require.NoError(t, cache.Flush(ctx))
	_, ok = cache.Get(ctx, "b")
	require.False(t, ok)
}
