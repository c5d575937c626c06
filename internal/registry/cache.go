package registry

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/antigravity-dev/fundscout/internal/model"
)

// Cache is an optional read-through layer in front of isBlacklisted and
// shouldProcess reads, grounded on the davidleathers113-dependable-call-
// exchange-backend example's go-redis + miniredis pairing. It is never
// authoritative (spec.md §9 open question): every mutating registry call
// invalidates the affected key, and a cache miss or Redis outage simply
// falls through to the SQLite read.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache wraps an existing *redis.Client (a real client or a
// miniredis-backed one in tests). ttl caps staleness at spec.md §9's "≤
// 1h" bound; zero defaults to 10 minutes.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Cache{client: client, ttl: ttl}
}

func blacklistKey(host string) string { return "fundscout:domain:blacklisted:" + host }
func checkKey(host string) string     { return "fundscout:domain:check:" + host }

// GetBlacklisted returns (value, true) on a cache hit, (false, false) on
// a miss or any Redis error — callers always have a correct fallback.
func (c *Cache) GetBlacklisted(ctx context.Context, host string) (bool, bool) {
	val, err := c.client.Get(ctx, blacklistKey(host)).Result()
	if err != nil {
		return false, false
	}
	return val == "1", true
}

func (c *Cache) SetBlacklisted(ctx context.Context, host string, blacklisted bool) {
	val := "0"
	if blacklisted {
		val = "1"
	}
	_ = c.client.Set(ctx, blacklistKey(host), val, c.ttl).Err()
}

func (c *Cache) GetCheckResult(ctx context.Context, host string) (model.CheckResult, bool) {
	val, err := c.client.Get(ctx, checkKey(host)).Result()
	if err != nil {
		return "", false
	}
	return model.CheckResult(val), true
}

func (c *Cache) SetCheckResult(ctx context.Context, host string, result model.CheckResult) {
	_ = c.client.Set(ctx, checkKey(host), string(result), c.ttl).Err()
}

// Invalidate clears every cached key for host. Called on every blacklist,
// markNoFunds, or recordProcessing mutation.
func (c *Cache) Invalidate(ctx context.Context, host string) {
	_ = c.client.Del(ctx, blacklistKey(host), checkKey(host)).Err()
}

