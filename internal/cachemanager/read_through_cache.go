package cachemanager

import (
	"context"
	"time"
)

// ReadThroughCache fronts a registry read query (a ledger listing, a
// journal window) with a TTL cache. A hit serves the cached result; a
// miss runs the loader against the database and caches what it returns.
// Loader failures are returned as-is and never cached, so a transient
// database error does not poison subsequent reads.
//
// K is the cache key, V the cached result, and Q the query the loader
// needs to run (typically a creator filter).
type ReadThroughCache[K comparable, V any, Q any] struct {
	cache  CacheManager[K, V]
	load   func(ctx context.Context, query Q) (V, error)
	ttl    time.Duration
	bypass bool
}

// NewReadThroughCache wraps load with cache. Entries live for ttl; with
// bypass set every read goes straight to the loader, which is how the
// resource-cache feature flag turns caching off without changing call
// sites.
func NewReadThroughCache[K comparable, V any, Q any](
	cache CacheManager[K, V],
	load func(ctx context.Context, query Q) (V, error),
	ttl time.Duration,
	bypass bool,
) *ReadThroughCache[K, V, Q] {
	return &ReadThroughCache[K, V, Q]{
		cache:  cache,
		load:   load,
		ttl:    ttl,
		bypass: bypass,
	}
}

// Get returns the cached value for key, loading and caching it on a miss.
func (r *ReadThroughCache[K, V, Q]) Get(ctx context.Context, key K, query Q) (V, error) {
	if r.bypass {
		return r.load(ctx, query)
	}

	if value, ok := r.cache.Get(ctx, key); ok {
		return value, nil
	}
	return r.loadAndCache(ctx, key, query)
}

// GetWithRefresh is Get with a sliding expiration: a hit re-arms the
// entry's TTL, keeping hot listings cached across a follow loop.
func (r *ReadThroughCache[K, V, Q]) GetWithRefresh(ctx context.Context, key K, query Q) (V, error) {
	if r.bypass {
		return r.load(ctx, query)
	}

	if value, ok := r.cache.GetWithRefresh(ctx, key, r.ttl); ok {
		return value, nil
	}
	return r.loadAndCache(ctx, key, query)
}

func (r *ReadThroughCache[K, V, Q]) loadAndCache(ctx context.Context, key K, query Q) (V, error) {
	value, err := r.load(ctx, query)
	if err != nil {
		return value, err
	}
	r.cache.Set(ctx, key, value, r.ttl)
	return value, nil
}
