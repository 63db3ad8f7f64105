package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/rosterdesk/platform/internal/datastore"
	"github.com/rosterdesk/platform/internal/domain"
)

type invitationRepo struct{ base }

func (r *invitationRepo) Create(ctx context.Context, inv *domain.Invitation) (*domain.Invitation, error) {
	created, err := insert[domain.Invitation](ctx, r.store, TableInvitations, datastore.Row{
		"org_id":     inv.OrgID,
		"email":      inv.Email,
		"role":       inv.Role,
		"token":      inv.Token,
		"invited_by": inv.InvitedBy,
		"expires_at": inv.ExpiresAt.UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("insert invitation: %w", err)
	}
	return created, nil
}

func (r *invitationRepo) FindActiveByToken(ctx context.Context, token string, now time.Time) (*domain.Invitation, error) {
	inv, err := selectOne[domain.Invitation](ctx, r.store, TableInvitations, datastore.Where(
		datastore.Eq("token", token),
		datastore.IsNull("accepted_at"),
		datastore.Gt("expires_at", now.UTC()),
	))
	if err != nil {
		return nil, fmt.Errorf("select invitation: %w", err)
	}
	if inv == nil {
		return nil, nil
	}
	org, err := selectOne[domain.Organization](ctx, r.store, TableOrganizations, datastore.Where(datastore.Eq("id", inv.OrgID)))
	if err != nil {
		return nil, fmt.Errorf("select invitation organization: %w", err)
	}
	inv.Organization = org
	return inv, nil
}

func (r *invitationRepo) ListPending(ctx context.Context, orgID string, now time.Time) ([]domain.Invitation, error) {
	invs, err := selectAll[domain.Invitation](ctx, r.store, TableInvitations, datastore.Where(
		datastore.Eq("org_id", orgID),
		datastore.IsNull("accepted_at"),
		datastore.Gt("expires_at", now.UTC()),
	).OrderBy(datastore.Desc("created_at")))
	if err != nil {
		return nil, fmt.Errorf("select pending invitations: %w", err)
	}
	return invs, nil
}

func (r *invitationRepo) Claim(ctx context.Context, id, token string, now time.Time) (bool, error) {
	n, err := r.store.Update(ctx, TableInvitations, []datastore.Predicate{
		datastore.Eq("id", id),
		datastore.Eq("token", token),
		datastore.IsNull("accepted_at"),
		datastore.Gt("expires_at", now.UTC()),
	}, datastore.Row{"accepted_at": now.UTC()}, nil)
	if err != nil {
		return false, fmt.Errorf("claim invitation: %w", err)
	}
	return n == 1, nil
}

func (r *invitationRepo) Release(ctx context.Context, id string) error {
	if _, err := r.store.Update(ctx, TableInvitations,
		[]datastore.Predicate{datastore.Eq("id", id)},
		datastore.Row{"accepted_at": nil}, nil); err != nil {
		return fmt.Errorf("release invitation: %w", err)
	}
	return nil
}

func (r *invitationRepo) Revoke(ctx context.Context, orgID, id string) (bool, error) {
	n, err := r.store.Delete(ctx, TableInvitations, append(scoped(orgID, id), datastore.IsNull("accepted_at")))
	if err != nil {
		return false, fmt.Errorf("revoke invitation: %w", err)
	}
	return n > 0, nil
}

func (r *invitationRepo) PurgeExpired(ctx context.Context, cutoff time.Time) (int, error) {
	n, err := r.store.Delete(ctx, TableInvitations, []datastore.Predicate{
		datastore.IsNull("accepted_at"),
		datastore.Lt("expires_at", cutoff.UTC()),
	})
	if err != nil {
		return 0, fmt.Errorf("purge expired invitations: %w", err)
	}
	return n, nil
}
