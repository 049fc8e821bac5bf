package cachemanager

import (
	"context"
	"time"
)

// Loader fetches the value for a key on a cache miss.
type Loader[K comparable, V any] func(ctx context.Context, key K) (V, error)

// ReadThrough serves from cache and falls back to a Loader, caching what it
// loads. Errors are never cached.
type ReadThrough[K comparable, V any] struct {
	cache  CacheManager[K, V]
	load   Loader[K, V]
	ttl    time.Duration
	bypass bool
}

// NewReadThrough wraps cache with load. When bypass is set every Get goes
// straight to the loader.
func NewReadThrough[K comparable, V any](cache CacheManager[K, V], load Loader[K, V], ttl time.Duration, bypass bool) *ReadThrough[K, V] {
	return &ReadThrough[K, V]{
		cache:  cache,
		load:   load,
		ttl:    ttl,
		bypass: bypass,
	}
}

func (r *ReadThrough[K, V]) Get(ctx context.Context, key K) (V, error) {
	if r.bypass {
		return r.load(ctx, key)
	}

	if value, ok := r.cache.Get(ctx, key); ok {
		return value, nil
	}

	value, err := r.load(ctx, key)
	if err != nil {
		return value, err
	}

	r.cache.Set(ctx, key, value, r.ttl)
	return value, nil
}

// Invalidate drops keys, or everything when none are given.
func (r *ReadThrough[K, V]) Invalidate(ctx context.Context, keys ...K) {
	if r.bypass {
		return
	}
	if len(keys) == 0 {
		r.cache.Flush(ctx)
		return
	}
	r.cache.Delete(ctx, keys...)
}
