// Package dedup is an optional Redis-backed cache of posting links already
// processed in earlier scrape cycles. It only saves detail-page refetches;
// the store's unique-link constraint remains the source of truth for
// duplicates.
package dedup

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SeenCache reports and records which posting links have been processed.
type SeenCache interface {
	Seen(ctx context.Context, link string) (bool, error)
	MarkSeen(ctx context.Context, link string) error
}

// RedisCache tracks seen links in Redis with a TTL.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCache creates a Redis-based seen cache.
func NewRedisCache(client *redis.Client, prefix string, ttl time.Duration) *RedisCache {
	if prefix == "" {
		prefix = "seen"
	}
	if ttl == 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &RedisCache{client: client, prefix: prefix, ttl: ttl}
}

// Seen reports whether the link was marked in a previous cycle.
func (c *RedisCache) Seen(ctx context.Context, link string) (bool, error) {
	n, err := c.client.Exists(ctx, c.makeKey(link)).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists: %w", err)
	}
	return n > 0, nil
}

// MarkSeen records the link with the cache TTL.
func (c *RedisCache) MarkSeen(ctx context.Context, link string) error {
	if err := c.client.Set(ctx, c.makeKey(link), "1", c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (c *RedisCache) makeKey(link string) string {
	hash := sha256.Sum256([]byte(link))
	return fmt.Sprintf("%s:%s", c.prefix, hex.EncodeToString(hash[:]))
}

// NopCache is used when no Redis address is configured; nothing is ever
// seen, so every platform link gets its detail page fetched.
type NopCache struct{}

func (NopCache) Seen(ctx context.Context, link string) (bool, error) { return false, nil }
func (NopCache) MarkSeen(ctx context.Context, link string) error     { return nil }
