package ecommerce

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_SpacesCalls(t *testing.T) {
	const calls = 10
	limiter := NewRateLimiter(RateLimitConfig{CallsPerSecond: 20, Burst: 1, MaxConcurrent: 5})

	var mu sync.Mutex
	starts := make([]time.Time, 0, calls)

	var wg sync.WaitGroup
	for i := 0; i < calls; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := limiter.Execute(context.Background(), func(context.Context) error {
				mu.Lock()
				starts = append(starts, time.Now())
				mu.Unlock()
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	require.Len(t, starts, calls)
	first, last := starts[0], starts[0]
	for _, s := range starts {
		if s.Before(first) {
			first = s
		}
		if s.After(last) {
			last = s
		}
	}
	// 20/s with burst 1 means tokens every 50ms: 9 gaps.
	assert.GreaterOrEqual(t, last.Sub(first), 400*time.Millisecond)
	assert.Equal(t, int64(calls), limiter.Stats().TotalCalls)
}

func TestRateLimiter_ConcurrencyCeiling(t *testing.T) {
	limiter := NewRateLimiter(RateLimitConfig{CallsPerSecond: 1000, Burst: 100, MaxConcurrent: 2})

	var inFlight, maxSeen atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = limiter.Execute(context.Background(), func(context.Context) error {
				n := inFlight.Add(1)
				for {
					m := maxSeen.Load()
					if n <= m || maxSeen.CompareAndSwap(m, n) {
						break
					}
				}
				time.Sleep(20 * time.Millisecond)
				inFlight.Add(-1)
				return nil
			})
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, maxSeen.Load(), int64(2))
	assert.Equal(t, int64(0), limiter.Stats().InFlight)
}

func TestRateLimiter_ReleasesSlotOnError(t *testing.T) {
	limiter := NewRateLimiter(RateLimitConfig{CallsPerSecond: 1000, Burst: 10, MaxConcurrent: 1})
	boom := errors.New("boom")

	err := limiter.Execute(context.Background(), func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	called := false
	err = limiter.Execute(ctx, func(context.Context) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, called)

	stats := limiter.Stats()
	assert.Equal(t, int64(2), stats.TotalCalls)
	assert.Equal(t, int64(1), stats.FailedCalls)
}

func TestRateLimiter_ContextCancelled(t *testing.T) {
	limiter := NewRateLimiter(RateLimitConfig{CallsPerSecond: 1, Burst: 1, MaxConcurrent: 1})
	require.NoError(t, limiter.Execute(context.Background(), func(context.Context) error { return nil }))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := limiter.Execute(ctx, func(context.Context) error {
		t.Fatal("must not run")
		return nil
	})
	assert.Error(t, err)
}

func TestRateLimitConfig_Normalized(t *testing.T) {
	limiter := NewRateLimiter(RateLimitConfig{})
	cfg := limiter.Config()
	assert.Equal(t, float64(1), cfg.CallsPerSecond)
	assert.Equal(t, 1, cfg.Burst)
	assert.Equal(t, int64(1), cfg.MaxConcurrent)
}

func TestLimiterRegistry(t *testing.T) {
	registry := NewLimiterRegistry(DefaultRateLimitConfig())
	connA, connB := uuid.New(), uuid.New()

	a1 := registry.ForConnection(connA)
	a2 := registry.ForConnection(connA)
	b := registry.ForConnection(connB)

	assert.Same(t, a1, a2)
	assert.NotSame(t, a1, b)
	assert.Equal(t, 2, registry.Len())

	registry.Remove(connA)
	assert.Equal(t, 1, registry.Len())
	assert.NotSame(t, a1, registry.ForConnection(connA))
}
