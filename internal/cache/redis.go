package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisCache is a Cache implementation backed by Redis, for deployments
// that share price data across processes. Values are stored as JSON
// under "prefix:key" with the TTL applied by Redis itself. Redis errors
// degrade to cache misses; the cache never fails a caller.
type RedisCache[V any] struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisCache creates a Redis-backed cache. prefix namespaces the
// keys of one data category.
func NewRedisCache[V any](rdb *redis.Client, prefix string, ttl time.Duration, logger *zap.Logger) *RedisCache[V] {
	return &RedisCache[V]{rdb: rdb, prefix: prefix, ttl: ttl, logger: logger}
}

var _ Cache[float64] = (*RedisCache[float64])(nil)

func (c *RedisCache[V]) key(k string) string {
	return c.prefix + ":" + k
}

// Get returns the cached value and true on a hit. Connection and decode
// errors are logged and reported as misses.
func (c *RedisCache[V]) Get(ctx context.Context, key string) (V, bool) {
	var zero V

	data, err := c.rdb.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("redis cache get failed",
				zap.String("key", c.key(key)), zap.Error(err))
		}
		return zero, false
	}

	var v V
	if err := json.Unmarshal(data, &v); err != nil {
		c.logger.Warn("redis cache decode failed",
			zap.String("key", c.key(key)), zap.Error(err))
		return zero, false
	}
	return v, true
}

// Set stores value under key with the cache TTL.
func (c *RedisCache[V]) Set(ctx context.Context, key string, value V) {
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("redis cache encode failed",
			zap.String("key", c.key(key)), zap.Error(err))
		return
	}
	if err := c.rdb.Set(ctx, c.key(key), data, c.ttl).Err(); err != nil {
		c.logger.Warn("redis cache set failed",
			zap.String("key", c.key(key)), zap.Error(err))
	}
}

// Delete removes key if present.
func (c *RedisCache[V]) Delete(ctx context.Context, key string) {
	if err := c.rdb.Del(ctx, c.key(key)).Err(); err != nil {
		c.logger.Warn("redis cache delete failed",
			zap.String("key", c.key(key)), zap.Error(err))
	}
}
