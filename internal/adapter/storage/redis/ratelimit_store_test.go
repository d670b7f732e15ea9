package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimitStore_AllowsUpToLimit(t *testing.T) {
	_, client := newTestClient(t)
	store := NewRateLimitStore(client)
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		res, err := store.Allow(ctx, "acct-1:transfers", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, res.Allowed, "request %d should be allowed", i)
		assert.Equal(t, int64(3), res.Limit)
		assert.Equal(t, 3-i, res.Remaining)
	}

	res, err := store.Allow(ctx, "acct-1:transfers", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, int64(0), res.Remaining)
}

func TestRateLimitStore_KeysAreIndependent(t *testing.T) {
	_, client := newTestClient(t)
	store := NewRateLimitStore(client)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := store.Allow(ctx, "acct-1:transfers", 3, time.Minute)
		require.NoError(t, err)
	}

	res, err := store.Allow(ctx, "acct-2:transfers", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestRateLimitStore_ErrorWhenRedisDown(t *testing.T) {
	mr, client := newTestClient(t)
	store := NewRateLimitStore(client)

	mr.Close()

	_, err := store.Allow(context.Background(), "acct-1:transfers", 3, time.Minute)
	assert.Error(t, err)
}
