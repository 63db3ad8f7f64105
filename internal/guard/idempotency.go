package guard

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
)

// IdempotencyGuard suppresses keys it has already seen. It remembers the
// most recent size keys only.
type IdempotencyGuard struct {
	seen *lru.Cache[string, struct{}]
}

// NewIdempotencyGuard creates an in-memory guard remembering up to size keys.
func NewIdempotencyGuard(size int) *IdempotencyGuard {
	if size <= 0 {
		size = maxTrackedKeys
	}
	seen, _ := lru.New[string, struct{}](size)
	return &IdempotencyGuard{seen: seen}
}

// Check marks key as seen and reports whether it was new. Empty keys always pass.
func (ig *IdempotencyGuard) Check(_ context.Context, key string) Result {
	if key == "" {
		return allow()
	}
	if found, _ := ig.seen.ContainsOrAdd(key, struct{}{}); found {
		return Result{
			Allowed: false,
			Reason:  "duplicate: key already processed",
			Guard:   "idempotency",
		}
	}
	return allow()
}

// Remove forgets key so a failed attempt can be retried.
func (ig *IdempotencyGuard) Remove(key string) {
	ig.seen.Remove(key)
}
