package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// DepositCache implements ports.DepositCache. It short-circuits replayed
// deposit notifications before they reach the database; the DB unique
// constraint remains the authoritative guard.
type DepositCache struct {
	client *goredis.Client
	prefix string
}

// NewDepositCache creates a new Redis-backed deposit replay cache.
func NewDepositCache(client *goredis.Client) *DepositCache {
	return &DepositCache{
		client: client,
		prefix: "deposit:",
	}
}

// Seen reports whether the correlation key was processed recently.
func (c *DepositCache) Seen(ctx context.Context, correlationKey string) (bool, error) {
	n, err := c.client.Exists(ctx, c.prefix+correlationKey).Result()
	if err != nil {
		return false, fmt.Errorf("redis deposit exists: %w", err)
	}
	return n > 0, nil
}

// MarkSeen records the correlation key with TTL.
func (c *DepositCache) MarkSeen(ctx context.Context, correlationKey string, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.prefix+correlationKey, "1", ttl).Err(); err != nil {
		return fmt.Errorf("redis deposit set: %w", err)
	}
	return nil
}
