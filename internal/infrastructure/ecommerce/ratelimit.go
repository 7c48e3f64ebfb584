package ecommerce

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// RateLimitConfig holds the per-connection call budget
type RateLimitConfig struct {
	// CallsPerSecond is the sustained call rate ceiling
	CallsPerSecond float64
	// Burst is how many calls may start back to back. One spaces every call.
	Burst int
	// MaxConcurrent is the number of calls allowed in flight at once
	MaxConcurrent int64
}

// DefaultRateLimitConfig returns a conservative budget for a shared shop API
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{CallsPerSecond: 3, Burst: 1, MaxConcurrent: 2}
}

func (c RateLimitConfig) normalized() RateLimitConfig {
	if c.CallsPerSecond <= 0 {
		c.CallsPerSecond = 1
	}
	if c.Burst <= 0 {
		c.Burst = 1
	}
	if c.MaxConcurrent <= 0 {
		c.MaxConcurrent = 1
	}
	return c
}

// RateLimiterStats contains statistics about rate limiter usage
type RateLimiterStats struct {
	// TotalCalls is the number of calls executed
	TotalCalls int64
	// FailedCalls is the number of calls whose function returned an error
	FailedCalls int64
	// InFlight is the number of calls currently running
	InFlight int64
	// AvgWaitTime is the average time spent waiting for a slot
	AvgWaitTime time.Duration
}

// RateLimiter paces calls of one connection below a calls-per-second ceiling
// and a concurrency ceiling. It never retries and always releases its slot.
//
// Thread Safety: Safe for concurrent use.
type RateLimiter struct {
	limiter *rate.Limiter
	slots   *semaphore.Weighted
	config  RateLimitConfig

	totalCalls    atomic.Int64
	failedCalls   atomic.Int64
	inFlight      atomic.Int64
	totalWaitTime atomic.Int64 // in nanoseconds
}

// NewRateLimiter creates a limiter with the given budget
func NewRateLimiter(config RateLimitConfig) *RateLimiter {
	config = config.normalized()
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(config.CallsPerSecond), config.Burst),
		slots:   semaphore.NewWeighted(config.MaxConcurrent),
		config:  config,
	}
}

// Execute waits for a concurrency slot and a rate token, then runs fn.
// The error of fn is returned unchanged.
func (l *RateLimiter) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	start := time.Now()
	if err := l.slots.Acquire(ctx, 1); err != nil {
		return err
	}
	defer l.slots.Release(1)

	if err := l.limiter.Wait(ctx); err != nil {
		return err
	}
	l.totalWaitTime.Add(int64(time.Since(start)))
	l.totalCalls.Add(1)

	l.inFlight.Add(1)
	defer l.inFlight.Add(-1)

	err := fn(ctx)
	if err != nil {
		l.failedCalls.Add(1)
	}
	return err
}

// Config returns the effective budget
func (l *RateLimiter) Config() RateLimitConfig {
	return l.config
}

// Stats returns current statistics about the rate limiter
func (l *RateLimiter) Stats() RateLimiterStats {
	calls := l.totalCalls.Load()
	var avgWait time.Duration
	if calls > 0 {
		avgWait = time.Duration(l.totalWaitTime.Load() / calls)
	}
	return RateLimiterStats{
		TotalCalls:  calls,
		FailedCalls: l.failedCalls.Load(),
		InFlight:    l.inFlight.Load(),
		AvgWaitTime: avgWait,
	}
}

// ---------------------------------------------------------------------------
// LimiterRegistry
// ---------------------------------------------------------------------------

// LimiterRegistry owns one long-lived limiter per connection. Connections
// never share a budget, and repeated lookups return the same limiter.
type LimiterRegistry struct {
	config   RateLimitConfig
	limiters map[uuid.UUID]*RateLimiter
	mu       sync.Mutex
}

// NewLimiterRegistry creates a registry handing out limiters with config
func NewLimiterRegistry(config RateLimitConfig) *LimiterRegistry {
	return &LimiterRegistry{
		config:   config.normalized(),
		limiters: make(map[uuid.UUID]*RateLimiter),
	}
}

// ForConnection returns the limiter of a connection, creating it on first use
func (r *LimiterRegistry) ForConnection(connectionID uuid.UUID) *RateLimiter {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.limiters[connectionID]; ok {
		return l
	}
	l := NewRateLimiter(r.config)
	r.limiters[connectionID] = l
	return l
}

// Remove drops the limiter of a deleted or reconfigured connection
func (r *LimiterRegistry) Remove(connectionID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.limiters, connectionID)
}

// Len returns the number of tracked connections
func (r *LimiterRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.limiters)
}
