package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryLimiter(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	lim := NewInMemory(time.Minute)
	lim.now = func() time.Time { return now }

	for i := 1; i <= 3; i++ {
		d := lim.Allow(ctx, "login:1.2.3.4", 3)
		assert.True(t, d.Allowed, "attempt %d", i)
		assert.Equal(t, 3-i, d.Remaining)
	}
	d := lim.Allow(ctx, "login:1.2.3.4", 3)
	assert.False(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)
	assert.Equal(t, time.Minute, d.RetryAfter(now))

	// other keys are independent
	assert.True(t, lim.Allow(ctx, "login:5.6.7.8", 3).Allowed)

	// the window resets
	now = now.Add(time.Minute)
	assert.True(t, lim.Allow(ctx, "login:1.2.3.4", 3).Allowed)

	lim.Reset()
	assert.Equal(t, 1, lim.Allow(ctx, "login:1.2.3.4", 3).Count)
}

func TestRedisLimiter(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	lim := NewRedis(client, time.Minute)
	assert.True(t, lim.Allow(ctx, "k", 2).Allowed)
	assert.True(t, lim.Allow(ctx, "k", 2).Allowed)
	d := lim.Allow(ctx, "k", 2)
	assert.False(t, d.Allowed)
	assert.Equal(t, 3, d.Count)

	ttl := mr.TTL("tc:rl:k")
	assert.True(t, ttl > 0 && ttl <= time.Minute, "ttl = %v", ttl)

	mr.FastForward(time.Minute + time.Second)
	assert.True(t, lim.Allow(ctx, "k", 2).Allowed)
}

func TestRedisLimiter_fallback(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	lim := NewRedis(client, time.Minute)
	require.NotNil(t, lim.Fallback)
	assert.True(t, lim.Allow(ctx, "k", 1).Allowed)
	assert.False(t, lim.Allow(ctx, "k", 1).Allowed)

	assert.IsType(t, &InMemoryLimiter{}, New("", time.Minute))
	assert.IsType(t, &RedisLimiter{}, New(addr, time.Minute))
}
