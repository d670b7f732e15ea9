package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestDepositCache_SeenAfterMark(t *testing.T) {
	_, client := newTestClient(t)
	cache := NewDepositCache(client)
	ctx := context.Background()

	seen, err := cache.Seen(ctx, "prov-evt-001")
	require.NoError(t, err)
	assert.False(t, seen)

	err = cache.MarkSeen(ctx, "prov-evt-001", time.Hour)
	require.NoError(t, err)

	seen, err = cache.Seen(ctx, "prov-evt-001")
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestDepositCache_KeysAreIndependent(t *testing.T) {
	_, client := newTestClient(t)
	cache := NewDepositCache(client)
	ctx := context.Background()

	require.NoError(t, cache.MarkSeen(ctx, "prov-evt-001", time.Hour))

	seen, err := cache.Seen(ctx, "prov-evt-002")
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestDepositCache_Expires(t *testing.T) {
	mr, client := newTestClient(t)
	cache := NewDepositCache(client)
	ctx := context.Background()

	require.NoError(t, cache.MarkSeen(ctx, "prov-evt-001", time.Minute))

	mr.FastForward(2 * time.Minute)

	seen, err := cache.Seen(ctx, "prov-evt-001")
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestDepositCache_ErrorWhenRedisDown(t *testing.T) {
	mr, client := newTestClient(t)
	cache := NewDepositCache(client)

	mr.Close()

	_, err := cache.Seen(context.Background(), "prov-evt-001")
	assert.Error(t, err)
}
