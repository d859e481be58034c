package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"delivery-lifecycle/internal/logx"
)

func newTestLimiter(t *testing.T, limit int64, window time.Duration) (*RedisWindowLimiter, *miniredis.Miniredis, *time.Time) {
	t.Helper()

	mr := miniredis.RunT(t)
	c := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = c.Close() })

	now := time.Unix(1_700_000_000, 0)
	l := NewRedisWindowLimiter(c, limit, window, logx.Nop())
	l.now = func() time.Time { return now }
	return l, mr, &now
}

func TestRedisWindowLimiter_LimitPerWindow(t *testing.T) {
	t.Parallel()

	l, _, now := newTestLimiter(t, 2, time.Minute)
	ctx := context.Background()

	require.True(t, l.Allow(ctx, "actor:a"))
	require.True(t, l.Allow(ctx, "actor:a"))
	require.False(t, l.Allow(ctx, "actor:a"))

	require.True(t, l.Allow(ctx, "actor:b"), "keys are independent")

	*now = now.Add(time.Minute)
	require.True(t, l.Allow(ctx, "actor:a"), "next window starts fresh")
}

func TestRedisWindowLimiter_SetsTTL(t *testing.T) {
	t.Parallel()

	l, mr, _ := newTestLimiter(t, 5, 30*time.Second)
	require.True(t, l.Allow(context.Background(), "ip:1.2.3.4"))

	keys := mr.Keys()
	require.Len(t, keys, 1)
	require.Equal(t, 30*time.Second, mr.TTL(keys[0]))

	mr.FastForward(31 * time.Second)
	require.Empty(t, mr.Keys())
}

func TestRedisWindowLimiter_FailsOpen(t *testing.T) {
	t.Parallel()

	l, mr, _ := newTestLimiter(t, 1, time.Minute)
	mr.Close()

	require.True(t, l.Allow(context.Background(), "actor:a"))
	require.True(t, l.Allow(context.Background(), "actor:a"))
}
