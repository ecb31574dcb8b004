package provider

import (
	"context"
	"fmt"
	"sync"
	"time"

	"market-oracle/internal/domain"
)

// maxUpstreamPause caps how long a Retry-After hint can silence a provider.
const maxUpstreamPause = 2 * time.Minute

// RateLimiter is a token bucket sized to an upstream's request budget. After
// the upstream answers 429 it can be paused; while paused, Wait fails fast
// with domain.ErrRateLimited instead of queueing callers.
type RateLimiter struct {
	mu          sync.Mutex
	tokens      int
	burst       int
	every       time.Duration
	lastRefill  time.Time
	pausedUntil time.Time
	now         func() time.Time
}

// NewRateLimiter allows bursts of up to burst calls and regains one token
// every interval.
func NewRateLimiter(burst int, every time.Duration) *RateLimiter {
	return &RateLimiter{
		tokens:     burst,
		burst:      burst,
		every:      every,
		lastRefill: time.Now(),
		now:        time.Now,
	}
}

// Wait takes a token, blocking until one is available or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	for {
		r.mu.Lock()
		now := r.now()
		if now.Before(r.pausedUntil) {
			until := r.pausedUntil
			r.mu.Unlock()
			return fmt.Errorf("paused until %s: %w", until.Format(time.RFC3339), domain.ErrRateLimited)
		}
		r.refill(now)
		if r.tokens > 0 {
			r.tokens--
			r.mu.Unlock()
			return nil
		}
		delay := r.every - now.Sub(r.lastRefill)
		r.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}

// Pause rejects calls for d, capped at maxUpstreamPause. A shorter pause
// never shortens one already in effect.
func (r *RateLimiter) Pause(d time.Duration) {
	if d <= 0 {
		return
	}
	d = min(d, maxUpstreamPause)

	r.mu.Lock()
	defer r.mu.Unlock()
	if until := r.now().Add(d); until.After(r.pausedUntil) {
		r.pausedUntil = until
	}
}

func (r *RateLimiter) refill(now time.Time) {
	gained := int(now.Sub(r.lastRefill) / r.every)
	if gained <= 0 {
		return
	}
	r.tokens = min(r.tokens+gained, r.burst)
	r.lastRefill = r.lastRefill.Add(time.Duration(gained) * r.every)
}
