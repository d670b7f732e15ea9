package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// RateCache implements ports.RateCache: a short-TTL cache in front of the
// live exchange-rate source.
type RateCache struct {
	client *goredis.Client
	prefix string
}

// NewRateCache creates a new Redis-backed rate cache.
func NewRateCache(client *goredis.Client) *RateCache {
	return &RateCache{
		client: client,
		prefix: "rate:",
	}
}

// Get retrieves a cached rate for a pair like "BTC/USD".
// The second return is false when the pair is not cached.
func (c *RateCache) Get(ctx context.Context, pair string) (decimal.Decimal, bool, error) {
	val, err := c.client.Get(ctx, c.prefix+pair).Result()
	if err != nil {
		if err == goredis.Nil {
			return decimal.Zero, false, nil
		}
		return decimal.Zero, false, fmt.Errorf("redis rate get: %w", err)
	}
	rate, err := decimal.NewFromString(val)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("redis rate parse: %w", err)
	}
	return rate, true, nil
}

// Set stores a rate with TTL.
func (c *RateCache) Set(ctx context.Context, pair string, rate decimal.Decimal, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.prefix+pair, rate.String(), ttl).Err(); err != nil {
		return fmt.Errorf("redis rate set: %w", err)
	}
	return nil
}
