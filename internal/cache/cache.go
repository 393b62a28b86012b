// Package cache puts a Redis read-through cache in front of a gateway
// backend. Every write bumps a per-collection generation number that is
// part of each cache key, so stale entries are never read again and simply
// expire.
package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"

	"github.com/existflow/dayboard/internal/gateway"
	"github.com/existflow/dayboard/internal/logger"
)

const prefix = "dayboard:"

// ViewScope is the generation shared by all cached derived views. It is
// bumped on every write and at the start of each day.
const ViewScope = "views"

// Cache wraps a Backend with Redis-backed caching for reads
type Cache struct {
	base  gateway.Backend
	redis *redis.Client
	ttl   time.Duration
}

// New creates a caching wrapper. A nil client disables caching.
func New(base gateway.Backend, client *redis.Client, ttl time.Duration) *Cache {
	if base == nil {
		panic("cache.New: base backend is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	return &Cache{base: base, redis: client, ttl: ttl}
}

// Select serves a query from the cache, falling back to the backend
func (c *Cache) Select(ctx context.Context, collection string, q gateway.Query) ([]gateway.Row, error) {
	key := c.rowsKey(ctx, collection, q)
	if key != "" {
		var rows []gateway.Row
		if c.load(ctx, key, &rows) {
			return rows, nil
		}
	}

	rows, err := c.base.Select(ctx, collection, q)
	if err != nil {
		return nil, err
	}
	if key != "" {
		c.store(ctx, key, rows)
	}
	return rows, nil
}

// Insert writes through and invalidates the collection
func (c *Cache) Insert(ctx context.Context, collection string, payload gateway.Row) (gateway.Row, error) {
	row, err := c.base.Insert(ctx, collection, payload)
	if err != nil {
		return nil, err
	}
	c.Bump(ctx, collection, ViewScope)
	return row, nil
}

// Update writes through and invalidates the collection
func (c *Cache) Update(ctx context.Context, collection, id string, patch gateway.Row) (gateway.Row, error) {
	row, err := c.base.Update(ctx, collection, id, patch)
	if err != nil {
		return nil, err
	}
	c.Bump(ctx, collection, ViewScope)
	return row, nil
}

// Delete writes through and invalidates the collection
func (c *Cache) Delete(ctx context.Context, collection, id string) error {
	if err := c.base.Delete(ctx, collection, id); err != nil {
		return err
	}
	c.Bump(ctx, collection, ViewScope)
	return nil
}

// View returns the cached value of a derived view or computes it with fn.
// The entry is keyed by the view generation, so it is dropped by any write
// and by the daily rollover.
func View[T any](ctx context.Context, c *Cache, name string, fn func(context.Context) (T, error)) (T, error) {
	var key string
	if c != nil && c.redis != nil && c.ttl > 0 {
		if gen, ok := c.generation(ctx, ViewScope); ok {
			key = prefix + "view:" + gen + ":" + name
			var cached T
			if c.load(ctx, key, &cached) {
				return cached, nil
			}
		}
	}

	v, err := fn(ctx)
	if err != nil {
		return v, err
	}
	if key != "" {
		c.store(ctx, key, v)
	}
	return v, nil
}

// Bump invalidates every cached entry of the given scopes
func (c *Cache) Bump(ctx context.Context, scopes ...string) {
	if c.redis == nil {
		return
	}
	for _, scope := range scopes {
		if err := c.redis.Incr(ctx, genKey(scope)).Err(); err != nil {
			logger.Warn("Failed to bump cache generation", logger.F("scope", scope), logger.F("error", err))
		}
	}
}

// Ping checks the Redis connection
func (c *Cache) Ping(ctx context.Context) error {
	if c.redis == nil {
		return nil
	}
	return c.redis.Ping(ctx).Err()
}

func (c *Cache) rowsKey(ctx context.Context, collection string, q gateway.Query) string {
	if c.redis == nil || c.ttl == 0 {
		return ""
	}
	gen, ok := c.generation(ctx, collection)
	if !ok {
		return ""
	}
	return prefix + collection + ":" + gen + ":" + q.Key()
}

func (c *Cache) generation(ctx context.Context, scope string) (string, bool) {
	n, err := c.redis.Get(ctx, genKey(scope)).Int64()
	if err == redis.Nil {
		return "0", true
	}
	if err != nil {
		// On redis errors fall back to the backing storage without failing.
		return "", false
	}
	return strconv.FormatInt(n, 10), true
}

func (c *Cache) load(ctx context.Context, key string, out any) bool {
	data, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			_ = c.redis.Del(ctx, key).Err()
		}
		return false
	}
	if err := sonic.Unmarshal(data, out); err != nil {
		_ = c.redis.Del(ctx, key).Err()
		return false
	}
	return true
}

func (c *Cache) store(ctx context.Context, key string, v any) {
	data, err := sonic.Marshal(v)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, key, data, c.ttl).Err()
}

func genKey(scope string) string {
	return prefix + "gen:" + scope
}
