package tenant

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rosterdesk/platform/internal/auth"
	"github.com/rosterdesk/platform/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLookup struct {
	mu      sync.Mutex
	members map[string]domain.Membership
	err     error
	calls   int
	gate    chan struct{} // when set, lookups for "slow" block until closed
}

func (f *fakeLookup) UserOrganization(_ context.Context, userID string) (*domain.Membership, error) {
	f.mu.Lock()
	f.calls++
	gate := f.gate
	f.mu.Unlock()
	if userID == "slow" && gate != nil {
		<-gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	m, ok := f.members[userID]
	if !ok {
		return nil, domain.ErrNotFound("membership", userID)
	}
	return &m, nil
}

type switchableSession struct {
	mu sync.Mutex
	id *auth.Identity
}

func (s *switchableSession) set(id *auth.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = id
}

func (s *switchableSession) CurrentUser(context.Context) (*auth.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.id == nil {
		return nil, nil
	}
	id := *s.id
	return &id, nil
}

func newLookup() *fakeLookup {
	return &fakeLookup{members: map[string]domain.Membership{
		"u1":   {OrgID: "o1", OrgName: "Apex", Role: domain.RoleAgent},
		"u2":   {OrgID: "o2", OrgName: "Summit", Role: domain.RoleOwner},
		"slow": {OrgID: "o9", OrgName: "Slow", Role: domain.RoleAgent},
	}}
}

func TestResolver_Lifecycle(t *testing.T) {
	session := &switchableSession{id: &auth.Identity{UserID: "u1", Email: "u1@apex.com"}}
	r := NewResolver(session, newLookup(), nil)
	assert.Equal(t, Uninitialized, r.State())
	assert.Nil(t, r.Current())

	scope, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Resolved, r.State())
	assert.Equal(t, Scope{UserID: "u1", Email: "u1@apex.com", OrgID: "o1", OrgName: "Apex", Role: domain.RoleAgent}, *scope)
	assert.Equal(t, scope, r.Current())
}

func TestResolver_NoUserFails(t *testing.T) {
	r := NewResolver(&switchableSession{}, newLookup(), nil)
	_, err := r.Resolve(context.Background())
	require.Error(t, err)
	assert.True(t, domain.HasCode(err, domain.CodeUnauthorized))
	assert.Equal(t, Failed, r.State())
	assert.Nil(t, r.Current())
}

func TestResolver_FailureClearsPreviousOrg(t *testing.T) {
	session := &switchableSession{id: &auth.Identity{UserID: "u1"}}
	r := NewResolver(session, newLookup(), nil)
	_, err := r.Resolve(context.Background())
	require.NoError(t, err)

	// re-login as a user with no membership
	session.set(&auth.Identity{UserID: "ghost"})
	_, err = r.OnAuthChange(context.Background())
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
	assert.Equal(t, Failed, r.State())
	assert.Nil(t, r.Current(), "stale org must not survive a failed resolution")
	assert.Equal(t, err, r.Err())
}

func TestResolver_RefreshIsIdempotent(t *testing.T) {
	session := &switchableSession{id: &auth.Identity{UserID: "u2"}}
	r := NewResolver(session, newLookup(), nil)

	a, err := r.OnAuthChange(context.Background())
	require.NoError(t, err)
	b, err := r.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, Resolved, r.State())
}

func TestResolver_StaleCompletionDiscarded(t *testing.T) {
	lookup := newLookup()
	lookup.gate = make(chan struct{})
	session := &switchableSession{id: &auth.Identity{UserID: "slow"}}
	r := NewResolver(session, lookup, nil)

	done := make(chan error, 1)
	go func() {
		_, err := r.Resolve(context.Background())
		done <- err
	}()

	// wait until the slow lookup has started
	require.Eventually(t, func() bool {
		lookup.mu.Lock()
		defer lookup.mu.Unlock()
		return lookup.calls == 1
	}, time.Second, time.Millisecond)

	session.set(&auth.Identity{UserID: "u2"})
	latest, err := r.OnAuthChange(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "o2", latest.OrgID)

	close(lookup.gate)
	assert.ErrorIs(t, <-done, ErrSuperseded)
	assert.Equal(t, "o2", r.Current().OrgID)
}

func TestCachedLookup(t *testing.T) {
	lookup := newLookup()
	c := NewCachedLookup(lookup, 10, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		m, err := c.UserOrganization(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, "o1", m.OrgID)
	}
	assert.Equal(t, 1, lookup.calls)
	assert.Equal(t, 1, c.Len())

	c.Invalidate("u1")
	_, err := c.UserOrganization(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, lookup.calls)

	// errors are not cached
	_, err = c.UserOrganization(ctx, "ghost")
	require.Error(t, err)
	_, err = c.UserOrganization(ctx, "ghost")
	require.Error(t, err)
	assert.Equal(t, 4, lookup.calls)
}

func TestCachedLookup_Disabled(t *testing.T) {
	lookup := newLookup()
	c := NewCachedLookup(lookup, 0, time.Minute)
	_, _ = c.UserOrganization(context.Background(), "u1")
	_, _ = c.UserOrganization(context.Background(), "u1")
	assert.Equal(t, 2, lookup.calls)
	assert.Equal(t, 0, c.Len())
	c.Invalidate("u1")
}

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	_, ok := FromContext(ctx)
	assert.False(t, ok)
	_, ok = RoleFromContext(ctx)
	assert.False(t, ok)

	ctx = WithScope(ctx, &Scope{OrgID: "o1", Role: domain.RoleDirector})
	role, ok := RoleFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, domain.RoleDirector, role)

	r := NewResolver(auth.StaticSession{}, newLookup(), nil)
	got, ok := ResolverFromContext(WithResolver(ctx, r))
	require.True(t, ok)
	assert.Same(t, r, got)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "loading", Loading.String())
	assert.Equal(t, "failed", Failed.String())
}
