package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	coreport "github.com/creatorhub/token-ledger/internal/domain/port/core"
)

const (
	keyPrefix        = "unlock:"
	operationTimeout = 150 * time.Millisecond
)

// RedisUnlockCache caches committed unlock receipts so repeat purchase
// attempts can be rejected without touching the database. Redis is a hint,
// not a source of truth: every error degrades to a cache miss and the
// purchase path falls through to storage.
type RedisUnlockCache struct {
	client *redis.Client
	ttl    time.Duration
	logger coreport.Logger
}

// NewRedisUnlockCache creates an unlock cache over the given Redis client
func NewRedisUnlockCache(client *redis.Client, ttl time.Duration, logger coreport.Logger) *RedisUnlockCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisUnlockCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// Seen reports whether a committed receipt for (buyer, item) was cached
func (c *RedisUnlockCache) Seen(ctx context.Context, buyerAccountID, itemID string) bool {
	ctx, cancel := context.WithTimeout(ctx, operationTimeout)
	defer cancel()

	n, err := c.client.Exists(ctx, cacheKey(buyerAccountID, itemID)).Result()
	if err != nil {
		c.logger.Warn("Unlock cache lookup failed, falling through to storage", map[string]any{
			"buyer_account_id": buyerAccountID,
			"item_id":          itemID,
			"error":            err.Error(),
		})
		return false
	}
	return n > 0
}

// Mark records a committed receipt. Called only after the purchase
// transaction commits, so a cached key is always backed by a stored unlock.
func (c *RedisUnlockCache) Mark(ctx context.Context, buyerAccountID, itemID string) {
	ctx, cancel := context.WithTimeout(ctx, operationTimeout)
	defer cancel()

	if err := c.client.Set(ctx, cacheKey(buyerAccountID, itemID), "1", c.ttl).Err(); err != nil {
		c.logger.Warn("Unlock cache write failed", map[string]any{
			"buyer_account_id": buyerAccountID,
			"item_id":          itemID,
			"error":            err.Error(),
		})
	}
}

func cacheKey(buyerAccountID, itemID string) string {
	return keyPrefix + buyerAccountID + ":" + itemID
}
