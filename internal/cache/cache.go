// Package cache provides TTL-keyed caches. One instance is constructed
// per data category (price, token metadata, transaction history), each
// with its own TTL.
package cache

import (
	"context"
	"time"
)

// Default TTLs per data category.
const (
	DefaultPriceTTL       = 300 * time.Second
	DefaultMetadataTTL    = 3600 * time.Second
	DefaultTransactionTTL = 600 * time.Second
)

// Cache is a TTL-keyed cache. A read after the entry's TTL window is a
// miss; a write resets the window. Implementations are safe for
// concurrent use; racing writers may overwrite each other (last writer
// wins).
type Cache[V any] interface {
	// Get returns the cached value and true on a fresh hit.
	Get(ctx context.Context, key string) (V, bool)

	// Set stores value under key for the cache's TTL.
	Set(ctx context.Context, key string, value V)

	// Delete removes key if present.
	Delete(ctx context.Context, key string)
}
