// Package rdx is a small JSON cache on top of Redis. A Cache built without a
// client is valid and always misses, so callers never branch on Redis being configured.
package rdx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned by Get when the key is absent or caching is disabled.
var ErrMiss = errors.New("cache miss")

type Cache struct {
	conn *redis.Client
	ttl  time.Duration
}

func New(conn *redis.Client, ttl time.Duration) *Cache {
	return &Cache{conn: conn, ttl: ttl}
}

func (c *Cache) enabled() bool {
	return c != nil && c.conn != nil
}

func (c *Cache) RdxGet(ctx context.Context, key string) (string, error) {
	if !c.enabled() {
		return "", ErrMiss
	}
	val, err := c.conn.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrMiss
	}
	if err != nil {
		return "", fmt.Errorf("redis get %s: %w", key, err)
	}
	return val, nil
}

func (c *Cache) RdxSet(ctx context.Context, key, value string) error {
	if !c.enabled() {
		return nil
	}
	if err := c.conn.Set(ctx, key, value, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (c *Cache) RdxDel(ctx context.Context, keys ...string) error {
	if !c.enabled() || len(keys) == 0 {
		return nil
	}
	if err := c.conn.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// GetJSON decodes the cached value under key into dst.
func (c *Cache) GetJSON(ctx context.Context, key string, dst any) error {
	val, err := c.RdxGet(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(val), dst); err != nil {
		return fmt.Errorf("decode cached %s: %w", key, err)
	}
	return nil
}

func (c *Cache) SetJSON(ctx context.Context, key string, v any) error {
	if !c.enabled() {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return c.RdxSet(ctx, key, string(data))
}

// Generation reads the counter under key, 0 when unset or caching is disabled.
// Readers embed it in their cache key so a Bump retires every entry built before it.
func (c *Cache) Generation(ctx context.Context, key string) (int64, error) {
	if !c.enabled() {
		return 0, nil
	}
	n, err := c.conn.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get %s: %w", key, err)
	}
	return n, nil
}

// Bump increments the counter under key and returns the new generation.
func (c *Cache) Bump(ctx context.Context, key string) (int64, error) {
	if !c.enabled() {
		return 0, nil
	}
	n, err := c.conn.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis incr %s: %w", key, err)
	}
	return n, nil
}

// VersionedKey is key suffixed with its generation.
func VersionedKey(key string, gen int64) string {
	return fmt.Sprintf("%s:%d", key, gen)
}
