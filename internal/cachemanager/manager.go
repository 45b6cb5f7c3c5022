// Package cachemanager provides a generic TTL cache and a read-through
// wrapper, used to keep repeated registry lookups off the database.
package cachemanager

import (
	"context"
	"time"
)

// CacheManager is the TTL cache behind the registry's read-side queries.
// Implementations must be safe for concurrent use.
type CacheManager[K comparable, V any] interface {
	// Get returns the value cached under key, when present and unexpired.
	Get(ctx context.Context, key K) (V, bool)

	// GetMultiple looks up several keys at once; ok is false unless every
	// key was a hit, so a partial miss re-runs the whole query.
	GetMultiple(ctx context.Context, keys []K) (map[K]V, bool)

	// GetWithRefresh is Get with a sliding expiration: a hit re-arms the
	// entry's TTL.
	GetWithRefresh(ctx context.Context, key K, ttl time.Duration) (V, bool)

	// Set caches value under key for ttl.
	Set(ctx context.Context, key K, value V, ttl time.Duration)

	// Delete drops the given keys; missing keys are not an error.
	Delete(ctx context.Context, keys ...K) error

	// Flush empties the cache, used when a mutation invalidates listings.
	Flush(ctx context.Context) error
}
