package yahoo

import (
	"context"
	"sync"
	"time"
)

// RateLimiter is a token bucket pacing requests to the chart API. The
// bucket starts full and gains one token per refill interval, up to max.
type RateLimiter struct {
	mu     sync.Mutex
	tokens int
	max    int
	refill time.Duration
	last   time.Time
}

// NewRateLimiter creates a bucket of max tokens refilling one token every
// interval (500ms means a sustained 2 requests/second).
func NewRateLimiter(max int, interval time.Duration) *RateLimiter {
	return &RateLimiter{
		tokens: max,
		max:    max,
		refill: interval,
		last:   time.Now(),
	}
}

// Wait blocks until a token can be taken or the context ends.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	for {
		if rl.take() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func (rl *RateLimiter) take() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	if earned := int(now.Sub(rl.last) / rl.refill); earned > 0 {
		rl.tokens += earned
		if rl.tokens > rl.max {
			rl.tokens = rl.max
		}
		rl.last = now
	}

	if rl.tokens == 0 {
		return false
	}
	rl.tokens--
	return true
}
