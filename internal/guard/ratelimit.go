package guard

import (
	"context"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// maxTrackedKeys bounds memory when keys are client controlled (IPs).
const maxTrackedKeys = 10000

// RateLimiter implements a sliding window rate limiter.
type RateLimiter struct {
	mu      sync.Mutex
	windows *lru.Cache[string, []time.Time]
	limit   int
	window  time.Duration
	now     func() time.Time
}

// NewRateLimiter creates a rate limiter with the given limit per window.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	windows, _ := lru.New[string, []time.Time](maxTrackedKeys)
	return &RateLimiter{
		windows: windows,
		limit:   limit,
		window:  window,
		now:     time.Now,
	}
}

// WithClock replaces the limiter's time source.
func (rl *RateLimiter) WithClock(now func() time.Time) *RateLimiter {
	rl.now = clockOrDefault(now)
	return rl
}

// Check records an attempt for key and reports whether it is within limits.
// A non-positive limit disables the check.
func (rl *RateLimiter) Check(_ context.Context, key string) Result {
	if rl.limit <= 0 {
		return allow()
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	cutoff := now.Add(-rl.window)

	entries, _ := rl.windows.Get(key)
	valid := make([]time.Time, 0, len(entries)+1)
	for _, t := range entries {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}

	if len(valid) >= rl.limit {
		rl.windows.Add(key, valid)
		return Result{
			Allowed: false,
			Reason:  fmt.Sprintf("rate limit exceeded: %d/%s", rl.limit, rl.window),
			Guard:   "rate_limiter",
		}
	}

	rl.windows.Add(key, append(valid, now))
	return allow()
}
