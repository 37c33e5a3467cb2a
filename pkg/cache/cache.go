// Package cache provides an in-process TTL cache with request collapsing.
// Concurrent loads of the same key share one loader invocation, so an
// expensive composition runs at most once per expiry window.
package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// ErrCacheMiss is returned by Get when the key is absent or expired.
var ErrCacheMiss = errMiss{}

type errMiss struct{}

func (errMiss) Error() string { return "cache miss" }

// Loader produces a fresh value for a key.
type Loader[V any] func(ctx context.Context) (V, error)

// ExpiryFunc observes lazy evictions.
type ExpiryFunc func(key string)

// Option configures a Cache.
type Option func(*options)

type options struct {
	refreshOnAccess bool
	onExpiry        ExpiryFunc
}

// WithRefreshOnAccess extends an entry's deadline by the full TTL on every
// hit. Off by default so entries age out even under constant traffic.
func WithRefreshOnAccess() Option {
	return func(o *options) { o.refreshOnAccess = true }
}

// WithExpiryFunc registers a callback invoked when an expired entry is
// evicted. Eviction is lazy; the callback fires on the access that
// discovers the expiry, not at the deadline itself.
func WithExpiryFunc(fn ExpiryFunc) Option {
	return func(o *options) { o.onExpiry = fn }
}

type item[V any] struct {
	value     V
	expiresAt time.Time
}

// Cache is a TTL-bounded in-memory cache. The zero value is not usable;
// construct with New.
type Cache[V any] struct {
	mu    sync.RWMutex
	items map[string]item[V]
	ttl   time.Duration
	opts  options
	group singleflight.Group
	now   func() time.Time
}

// New creates a cache whose entries live for ttl after insertion. The
// window is half-open: a read at exactly the deadline misses.
func New[V any](ttl time.Duration, opts ...Option) *Cache[V] {
	if ttl <= 0 {
		ttl = time.Second
	}
	c := &Cache[V]{
		items: make(map[string]item[V]),
		ttl:   ttl,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(&c.opts)
	}
	return c
}

// Get loads a key, evicting it first if expired.
func (c *Cache[V]) Get(key string) (V, error) {
	c.mu.RLock()
	it, ok := c.items[key]
	c.mu.RUnlock()

	var zero V
	if !ok {
		return zero, ErrCacheMiss
	}
	if !c.now().Before(it.expiresAt) {
		c.evict(key, it.expiresAt)
		return zero, ErrCacheMiss
	}
	if c.opts.refreshOnAccess {
		c.mu.Lock()
		if cur, still := c.items[key]; still && cur.expiresAt.Equal(it.expiresAt) {
			cur.expiresAt = c.now().Add(c.ttl)
			c.items[key] = cur
		}
		c.mu.Unlock()
	}
	return it.value, nil
}

// Set stores a key with the cache's TTL, replacing any existing entry.
func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	c.items[key] = item[V]{value: value, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
}

// Delete removes a key without invoking the expiry callback.
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

// Len counts live entries, excluding ones at or past their deadline.
func (c *Cache[V]) Len() int {
	now := c.now()
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, it := range c.items {
		if now.Before(it.expiresAt) {
			n++
		}
	}
	return n
}

// GetOrLoad returns the cached value for key, invoking loader on a miss.
// Concurrent callers missing on the same key share a single loader call
// and all receive its result. A loader error is returned to every waiter
// and nothing is cached.
func (c *Cache[V]) GetOrLoad(ctx context.Context, key string, loader Loader[V]) (V, error) {
	if v, err := c.Get(key); err == nil {
		return v, nil
	}

	res, err, _ := c.group.Do(key, func() (any, error) {
		// Re-check under the flight: a racing caller may have populated
		// the entry between the miss and the flight start.
		if v, err := c.Get(key); err == nil {
			return v, nil
		}
		v, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		c.Set(key, v)
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return res.(V), nil
}

// evict removes key if it still holds the entry observed at expiresAt.
func (c *Cache[V]) evict(key string, expiresAt time.Time) {
	c.mu.Lock()
	it, ok := c.items[key]
	if ok && it.expiresAt.Equal(expiresAt) {
		delete(c.items, key)
	} else {
		ok = false
	}
	c.mu.Unlock()
	if ok && c.opts.onExpiry != nil {
		c.opts.onExpiry(key)
	}
}
