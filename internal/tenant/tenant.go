// Package tenant resolves which organization, and with which role, the
// signed-in user is acting in.
package tenant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rosterdesk/platform/internal/auth"
	"github.com/rosterdesk/platform/internal/domain"
)

// State is the resolution lifecycle: Uninitialized -> Loading -> Resolved | Failed.
type State int

const (
	Uninitialized State = iota
	Loading
	Resolved
	Failed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Loading:
		return "loading"
	case Resolved:
		return "resolved"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Scope is the read-only organization context handed to every tenant-scoped operation.
type Scope struct {
	UserID  string      `json:"user_id"`
	Email   string      `json:"email"`
	OrgID   string      `json:"org_id"`
	OrgName string      `json:"org_name"`
	Role    domain.Role `json:"role"`
}

// MembershipLookup resolves a user's organization and role in one call.
// A nil membership with a nil error means the user belongs to no organization.
type MembershipLookup interface {
	UserOrganization(ctx context.Context, userID string) (*domain.Membership, error)
}

// ErrSuperseded is returned to a resolution that finished after a newer one started.
var ErrSuperseded = errors.New("tenant resolution superseded")

// Resolver holds one session's organization context. Resolve, Refresh and
// OnAuthChange share one code path; each run takes a generation number and
// only the newest run may write its outcome.
type Resolver struct {
	session auth.SessionProvider
	lookup  MembershipLookup
	logger  *slog.Logger

	mu    sync.Mutex
	gen   uint64
	state State
	scope *Scope
	err   error
}

// NewResolver creates a resolver in the Uninitialized state.
func NewResolver(session auth.SessionProvider, lookup MembershipLookup, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{session: session, lookup: lookup, logger: logger}
}

// Resolve fetches the current identity and its membership.
func (r *Resolver) Resolve(ctx context.Context) (*Scope, error) {
	r.mu.Lock()
	r.gen++
	gen := r.gen
	r.state = Loading
	r.mu.Unlock()

	scope, err := r.fetch(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	if gen != r.gen {
		r.logger.Debug("discarding stale tenant resolution", "generation", gen, "latest", r.gen)
		return nil, ErrSuperseded
	}
	if err != nil {
		r.state = Failed
		r.scope = nil
		r.err = err
		return nil, err
	}
	r.state = Resolved
	r.scope = scope
	r.err = nil
	copied := *scope
	return &copied, nil
}

// Refresh re-runs resolution on demand.
func (r *Resolver) Refresh(ctx context.Context) (*Scope, error) { return r.Resolve(ctx) }

// OnAuthChange re-runs resolution after a sign-in, sign-out or token refresh.
func (r *Resolver) OnAuthChange(ctx context.Context) (*Scope, error) { return r.Resolve(ctx) }

// State returns the current lifecycle state.
func (r *Resolver) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Current returns a copy of the resolved scope, or nil unless Resolved.
func (r *Resolver) Current() *Scope {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != Resolved || r.scope == nil {
		return nil
	}
	copied := *r.scope
	return &copied
}

// Err returns the error of the last failed resolution.
func (r *Resolver) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

func (r *Resolver) fetch(ctx context.Context) (*Scope, error) {
	id, err := r.session.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("current user: %w", err)
	}
	if id == nil {
		return nil, domain.ErrUnauthorized("not signed in")
	}

	m, err := r.lookup.UserOrganization(ctx, id.UserID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.ErrNotFound("organization membership for user", id.UserID)
	}
	return &Scope{
		UserID:  id.UserID,
		Email:   id.Email,
		OrgID:   m.OrgID,
		OrgName: m.OrgName,
		Role:    m.Role,
	}, nil
}
