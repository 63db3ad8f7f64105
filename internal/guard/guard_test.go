package guard

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func TestRateLimiter_AllowsUnderLimit(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		result := rl.Check(ctx, "test-key")
		assert.True(t, result.Allowed, "request %d should be allowed", i+1)
	}
}

func TestRateLimiter_BlocksOverLimit(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	ctx := context.Background()

	rl.Check(ctx, "test-key")
	rl.Check(ctx, "test-key")
	result := rl.Check(ctx, "test-key")

	assert.False(t, result.Allowed)
	assert.Equal(t, "rate_limiter", result.Guard)
}

func TestRateLimiter_SeparateKeys(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	ctx := context.Background()

	r1 := rl.Check(ctx, "key-a")
	r2 := rl.Check(ctx, "key-b")

	assert.True(t, r1.Allowed)
	assert.True(t, r2.Allowed)
}

func TestRateLimiter_WindowSlides(t *testing.T) {
	clock := newClock()
	rl := NewRateLimiter(1, time.Minute).WithClock(clock.now)
	ctx := context.Background()

	require.True(t, rl.Check(ctx, "k").Allowed)
	assert.False(t, rl.Check(ctx, "k").Allowed)

	clock.advance(61 * time.Second)
	assert.True(t, rl.Check(ctx, "k").Allowed)
}

func TestRateLimiter_ZeroLimitDisabled(t *testing.T) {
	rl := NewRateLimiter(0, time.Minute)
	for i := 0; i < 5; i++ {
		assert.True(t, rl.Check(context.Background(), "k").Allowed)
	}
}

func TestRateLimiter_BoundedKeys(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	ctx := context.Background()
	for i := 0; i < maxTrackedKeys+10; i++ {
		rl.Check(ctx, fmt.Sprintf("ip-%d", i))
	}
	assert.Equal(t, maxTrackedKeys, rl.windows.Len())
}

func TestCircuitBreaker_ClosedByDefault(t *testing.T) {
	cb := NewCircuitBreaker(3, 5*time.Second)
	ctx := context.Background()

	result := cb.Check(ctx, "resend")
	assert.True(t, result.Allowed)
	assert.Equal(t, CircuitClosed, cb.State("resend"))
}

func TestCircuitBreaker_OpensOnThreshold(t *testing.T) {
	cb := NewCircuitBreaker(2, 5*time.Second)
	ctx := context.Background()

	cb.Check(ctx, "resend")
	cb.RecordFailure("resend")
	cb.RecordFailure("resend")

	result := cb.Check(ctx, "resend")
	assert.False(t, result.Allowed)
	assert.Equal(t, "circuit_breaker", result.Guard)
	assert.Equal(t, CircuitOpen, cb.State("resend"))
}

func TestCircuitBreaker_SuccessResets(t *testing.T) {
	cb := NewCircuitBreaker(2, 5*time.Second)
	ctx := context.Background()

	cb.Check(ctx, "resend")
	cb.RecordFailure("resend")
	cb.RecordSuccess("resend")
	cb.RecordFailure("resend")

	result := cb.Check(ctx, "resend")
	assert.True(t, result.Allowed)
}

func TestCircuitBreaker_HalfOpenProbe(t *testing.T) {
	clock := newClock()
	cb := NewCircuitBreaker(1, 5*time.Second).WithClock(clock.now)
	ctx := context.Background()

	cb.Check(ctx, "resend")
	cb.RecordFailure("resend")
	require.False(t, cb.Check(ctx, "resend").Allowed)

	clock.advance(6 * time.Second)
	require.True(t, cb.Check(ctx, "resend").Allowed)
	assert.Equal(t, CircuitHalfOpen, cb.State("resend"))

	// failed probe reopens
	cb.RecordFailure("resend")
	assert.False(t, cb.Check(ctx, "resend").Allowed)

	clock.advance(6 * time.Second)
	require.True(t, cb.Check(ctx, "resend").Allowed)
	cb.RecordSuccess("resend")
	assert.Equal(t, CircuitClosed, cb.State("resend"))
}

func TestIdempotencyGuard_AllowsFirst(t *testing.T) {
	ig := NewIdempotencyGuard(16)
	result := ig.Check(context.Background(), "evt-123")
	assert.True(t, result.Allowed)
}

func TestIdempotencyGuard_BlocksDuplicate(t *testing.T) {
	ig := NewIdempotencyGuard(16)
	ctx := context.Background()

	ig.Check(ctx, "evt-123")
	result := ig.Check(ctx, "evt-123")

	assert.False(t, result.Allowed)
	assert.Equal(t, "idempotency", result.Guard)
}

func TestIdempotencyGuard_EmptyKeyAllowed(t *testing.T) {
	ig := NewIdempotencyGuard(16)
	ctx := context.Background()

	assert.True(t, ig.Check(ctx, "").Allowed)
	assert.True(t, ig.Check(ctx, "").Allowed)
}

func TestIdempotencyGuard_RemoveAllowsRetry(t *testing.T) {
	ig := NewIdempotencyGuard(16)
	ctx := context.Background()

	ig.Check(ctx, "evt-456")
	ig.Remove("evt-456")

	require.True(t, ig.Check(ctx, "evt-456").Allowed)
}

func TestIdempotencyGuard_EvictsOldest(t *testing.T) {
	ig := NewIdempotencyGuard(2)
	ctx := context.Background()

	ig.Check(ctx, "a")
	ig.Check(ctx, "b")
	ig.Check(ctx, "c")

	assert.True(t, ig.Check(ctx, "a").Allowed)
}
