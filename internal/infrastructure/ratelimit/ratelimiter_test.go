package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMiniRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

// fixedStart sits at the start of a 60s bucket so a test never straddles two.
var fixedStart = time.Unix(1_760_000_040, 0)

func TestLimiter_SixtyFirstRequestDenied(t *testing.T) {
	_, client := setupMiniRedis(t)
	limiter := NewLimiter(NewRedisCounterStore(client), 60, time.Minute).
		WithClock(func() time.Time { return fixedStart })
	ctx := context.Background()

	for i := 1; i <= 60; i++ {
		require.NoError(t, limiter.Check(ctx, "store-a"), "request %d should be allowed", i)
	}

	err := limiter.Check(ctx, "store-a")
	require.ErrorIs(t, err, ErrRateLimited)

	var exceeded *ExceededError
	require.ErrorAs(t, err, &exceeded)
	assert.Equal(t, time.Minute, exceeded.RetryAfter)
}

func TestLimiter_StoresAreIsolated(t *testing.T) {
	_, client := setupMiniRedis(t)
	limiter := NewLimiter(NewRedisCounterStore(client), 3, time.Minute).
		WithClock(func() time.Time { return fixedStart })
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_ = limiter.Check(ctx, "noisy")
	}
	assert.ErrorIs(t, limiter.Check(ctx, "noisy"), ErrRateLimited)
	assert.NoError(t, limiter.Check(ctx, "quiet"))
}

func TestLimiter_CounterExpires(t *testing.T) {
	mr, client := setupMiniRedis(t)
	limiter := NewLimiter(NewRedisCounterStore(client), 2, time.Minute).
		WithClock(func() time.Time { return fixedStart })
	ctx := context.Background()

	require.NoError(t, limiter.Check(ctx, "s"))
	require.NoError(t, limiter.Check(ctx, "s"))
	require.ErrorIs(t, limiter.Check(ctx, "s"), ErrRateLimited)

	mr.FastForward(61 * time.Second)
	assert.NoError(t, limiter.Check(ctx, "s"), "counter key expires with the window")
}

// The window is fixed, not sliding: a client may spend a full budget at the
// end of one window and again at the start of the next. This is accepted.
func TestLimiter_BoundaryBurstIsAccepted(t *testing.T) {
	now := fixedStart.Add(59 * time.Second)
	limiter := NewLimiter(NewMemoryCounterStore(), 5, time.Minute).
		WithClock(func() time.Time { return now })
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, limiter.Check(ctx, "s"))
	}
	now = now.Add(2 * time.Second)
	for i := 0; i < 5; i++ {
		require.NoError(t, limiter.Check(ctx, "s"))
	}
	assert.ErrorIs(t, limiter.Check(ctx, "s"), ErrRateLimited)
}

func TestLimiter_ConcurrentIncrementsAreNotLost(t *testing.T) {
	_, client := setupMiniRedis(t)
	limiter := NewLimiter(NewRedisCounterStore(client), 60, time.Minute).
		WithClock(func() time.Time { return fixedStart })
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if limiter.Check(ctx, "bulk") == nil {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 60, allowed)
}

func TestLimiter_Defaults(t *testing.T) {
	limiter := NewLimiter(NewMemoryCounterStore(), 0, 0)
	assert.Equal(t, DefaultRequestsPerWindow, limiter.Limit())
	assert.Equal(t, DefaultWindow, limiter.Window())
}

func TestMemoryCounterStore_Sweep(t *testing.T) {
	now := fixedStart
	store := NewMemoryCounterStore()
	store.now = func() time.Time { return now }
	ctx := context.Background()

	n, err := store.Increment(ctx, "a", time.Second)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	n, _ = store.Increment(ctx, "a", time.Second)
	assert.Equal(t, int64(2), n)

	now = now.Add(2 * time.Second)
	assert.Equal(t, 1, store.Sweep())
	n, _ = store.Increment(ctx, "a", time.Second)
	assert.Equal(t, int64(1), n)
}
