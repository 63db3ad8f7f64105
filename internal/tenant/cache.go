package tenant

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rosterdesk/platform/internal/domain"
)

// CachedLookup memoizes memberships per user for a short TTL. Membership
// changes must call Invalidate so the next request sees them.
type CachedLookup struct {
	next  MembershipLookup
	cache *expirable.LRU[string, domain.Membership]
}

// NewCachedLookup wraps next with an LRU of size entries. A non-positive
// size disables caching.
func NewCachedLookup(next MembershipLookup, size int, ttl time.Duration) *CachedLookup {
	if size <= 0 {
		return &CachedLookup{next: next}
	}
	return &CachedLookup{
		next:  next,
		cache: expirable.NewLRU[string, domain.Membership](size, nil, ttl),
	}
}

// UserOrganization implements MembershipLookup. Failures and missing
// memberships are not cached.
func (c *CachedLookup) UserOrganization(ctx context.Context, userID string) (*domain.Membership, error) {
	if c.cache == nil {
		return c.next.UserOrganization(ctx, userID)
	}
	if m, ok := c.cache.Get(userID); ok {
		return &m, nil
	}
	m, err := c.next.UserOrganization(ctx, userID)
	if err != nil || m == nil {
		return m, err
	}
	c.cache.Add(userID, *m)
	return m, nil
}

// Invalidate drops the cached membership for userID.
func (c *CachedLookup) Invalidate(userID string) {
	if c.cache != nil {
		c.cache.Remove(userID)
	}
}

// Len returns the number of cached memberships.
func (c *CachedLookup) Len() int {
	if c.cache == nil {
		return 0
	}
	return c.cache.Len()
}
