package cache

import (
	"context"
	"sync"
	"time"
)

// entry holds a cached value and its expiry instant.
type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// TTLCache is an in-memory Cache implementation. Expired entries are
// dropped lazily on read and whenever the map grows past maxEntries, so
// cardinality stays bounded by the live token universe.
type TTLCache[V any] struct {
	mu         sync.RWMutex
	entries    map[string]entry[V]
	ttl        time.Duration
	maxEntries int
	now        func() time.Time // overridable in tests
}

// DefaultMaxEntries bounds a TTLCache before a sweep is forced.
const DefaultMaxEntries = 100_000

// NewTTLCache creates an in-memory cache whose entries live for ttl.
func NewTTLCache[V any](ttl time.Duration) *TTLCache[V] {
	return &TTLCache[V]{
		entries:    make(map[string]entry[V]),
		ttl:        ttl,
		maxEntries: DefaultMaxEntries,
		now:        time.Now,
	}
}

var _ Cache[string] = (*TTLCache[string])(nil)

// Get returns the cached value and true when the entry exists and has
// not expired. Expired entries are removed.
func (c *TTLCache[V]) Get(_ context.Context, key string) (V, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		var zero V
		return zero, false
	}
	if c.now().After(e.expiresAt) {
		c.mu.Lock()
		// Re-check under the write lock; a concurrent Set may have
		// refreshed the entry.
		if cur, ok := c.entries[key]; ok && c.now().After(cur.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value under key, resetting its TTL window.
func (c *TTLCache[V]) Set(_ context.Context, key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= c.maxEntries {
		c.sweepLocked()
	}
	c.entries[key] = entry[V]{value: value, expiresAt: c.now().Add(c.ttl)}
}

// Delete removes key if present.
func (c *TTLCache[V]) Delete(_ context.Context, key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Len returns the number of stored entries, expired ones included.
func (c *TTLCache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// sweepLocked drops all expired entries. Caller holds the write lock.
func (c *TTLCache[V]) sweepLocked() {
	now := c.now()
	for k, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, k)
		}
	}
}
