package cachemanager

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newListingCache(t *testing.T, load func(context.Context, string) ([]string, error), bypass bool) *ReadThroughCache[string, []string, string] {
	t.Helper()
	return NewReadThroughCache[string, []string, string](
		NewInMemoryCacheManager[string, []string]("resources", DefaultExpiration, DefaultCleanupInterval),
		load, time.Minute, bypass)
}

func TestReadThroughCache_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("miss runs the loader and caches the listing", func(t *testing.T) {
		calls := 0
		load := func(_ context.Context, creator string) ([]string, error) {
			calls++
			return []string{creator + "-cl-1"}, nil
		}
		cache := newListingCache(t, load, false)

		got, err := cache.Get(ctx, "credit_lines:alice", "alice")
		require.NoError(t, err)
		require.Equal(t, []string{"alice-cl-1"}, got)
		require.Equal(t, 1, calls)

		// second read is served from the cache
		got, err = cache.Get(ctx, "credit_lines:alice", "alice")
		require.NoError(t, err)
		require.Equal(t, []string{"alice-cl-1"}, got)
		require.Equal(t, 1, calls)
	})

	t.Run("loader errors are not cached", func(t *testing.T) {
		calls := 0
		load := func(context.Context, string) ([]string, error) {
			calls++
			return nil, errors.New("db down")
		}
		cache := newListingCache(t, load, false)

		_, err := cache.Get(ctx, "credit_lines:alice", "alice")
		require.Error(t, err)
		_, err = cache.Get(ctx, "credit_lines:alice", "alice")
		require.Error(t, err)
		require.Equal(t, 2, calls)
	})

	t.Run("bypass always runs the loader", func(t *testing.T) {
		calls := 0
		load := func(context.Context, string) ([]string, error) {
			calls++
			return []string{"fresh"}, nil
		}
		cache := newListingCache(t, load, true)

		_, err := cache.Get(ctx, "credit_lines:alice", "alice")
		require.NoError(t, err)
		_, err = cache.Get(ctx, "credit_lines:alice", "alice")
		require.NoError(t, err)
		require.Equal(t, 2, calls)
	})
}

func TestReadThroughCache_GetWithRefresh(t *testing.T) {
	ctx := context.Background()
	calls := 0
	load := func(context.Context, string) ([]string, error) {
		calls++
		return []string{"pool-1"}, nil
	}
	cache := newListingCache(t, load, false)

	_, err := cache.GetWithRefresh(ctx, "liquidity_pools:", "")
	require.NoError(t, err)
	_, err = cache.GetWithRefresh(ctx, "liquidity_pools:", "")
	require.NoError(t, err)
	require.Equal(t, 1, calls)
}
