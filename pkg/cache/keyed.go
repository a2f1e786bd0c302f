package cache

import (
	"context"
	"sync"
	"time"
)

// Keyed memoizes a fetch function by caller-built string keys. Error
// outcomes are never cached, and concurrent callers of the same key share a
// single upstream fetch.
type Keyed[V any] struct {
	cache Cache
	ttl   time.Duration // 0 = no expiry

	mu       sync.Mutex
	inflight map[string]*call[V]
}

type call[V any] struct {
	done  chan struct{}
	value V
	err   error
}

// NewKeyed creates a keyed memoizer over cache. A zero ttl caches
// indefinitely.
func NewKeyed[V any](cache Cache, ttl time.Duration) *Keyed[V] {
	return &Keyed[V]{
		cache:    cache,
		ttl:      ttl,
		inflight: make(map[string]*call[V]),
	}
}

// Do returns the cached value for key, or invokes fetch and caches its
// result. While a fetch for key is in flight, other callers wait for it
// instead of issuing duplicate upstream calls.
func (k *Keyed[V]) Do(ctx context.Context, key string, fetch func(context.Context) (V, error)) (V, error) {
	if cached, ok := k.cache.Get(key); ok {
		if value, ok := cached.(V); ok {
			return value, nil
		}
	}

	k.mu.Lock()
	if c, ok := k.inflight[key]; ok {
		k.mu.Unlock()
		select {
		case <-c.done:
			return c.value, c.err
		case <-ctx.Done():
			var zero V
			return zero, ctx.Err()
		}
	}

	c := &call[V]{done: make(chan struct{})}
	k.inflight[key] = c
	k.mu.Unlock()

	c.value, c.err = fetch(ctx)
	if c.err == nil {
		k.cache.Set(key, c.value, k.ttl)
	}

	k.mu.Lock()
	delete(k.inflight, key)
	k.mu.Unlock()
	close(c.done)

	return c.value, c.err
}

// Invalidate drops the cached value for key.
func (k *Keyed[V]) Invalidate(key string) {
	k.cache.Delete(key)
}
