package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/rosterdesk/platform/internal/datastore"
	"github.com/rosterdesk/platform/internal/domain"
)

type memberRepo struct{ base }

func (r *memberRepo) Add(ctx context.Context, m *domain.OrganizationMember) (*domain.OrganizationMember, error) {
	row := datastore.Row{
		"org_id":  m.OrgID,
		"user_id": m.UserID,
		"role":    m.Role,
	}
	if m.InvitedBy != nil {
		row["invited_by"] = *m.InvitedBy
	}
	created, err := insert[domain.OrganizationMember](ctx, r.store, TableMembers, row)
	if err != nil {
		return nil, fmt.Errorf("insert member: %w", err)
	}
	return created, nil
}

func (r *memberRepo) List(ctx context.Context, orgID string) ([]domain.OrganizationMember, error) {
	members, err := selectAll[domain.OrganizationMember](ctx, r.store, TableMembers,
		datastore.Where(datastore.Eq("org_id", orgID)).OrderBy(datastore.Asc("created_at")))
	if err != nil {
		return nil, fmt.Errorf("select members: %w", err)
	}
	return members, nil
}

func (r *memberRepo) FindByID(ctx context.Context, orgID, id string) (*domain.OrganizationMember, error) {
	m, err := selectOne[domain.OrganizationMember](ctx, r.store, TableMembers, datastore.Where(scoped(orgID, id)...))
	if err != nil {
		return nil, fmt.Errorf("select member: %w", err)
	}
	return m, nil
}

func (r *memberRepo) UpdateRole(ctx context.Context, orgID, id string, role domain.Role) (*domain.OrganizationMember, error) {
	m, err := updateOne[domain.OrganizationMember](ctx, r.store, TableMembers, scoped(orgID, id), datastore.Row{"role": role})
	if err != nil {
		return nil, fmt.Errorf("update member role: %w", err)
	}
	return m, nil
}

func (r *memberRepo) Remove(ctx context.Context, orgID, id string) (bool, error) {
	ok, err := deleteScoped(ctx, r.store, TableMembers, orgID, id)
	if err != nil {
		return false, fmt.Errorf("delete member: %w", err)
	}
	return ok, nil
}

func (r *memberRepo) UserOrganization(ctx context.Context, userID string) (*domain.Membership, error) {
	var m domain.Membership
	err := r.store.Call(ctx, FuncUserOrganization, datastore.Row{"p_user_id": userID}, &m)
	if errors.Is(err, datastore.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", FuncUserOrganization, err)
	}
	return &m, nil
}

// RegisterMemoryFunctions installs the stored functions and unique
// constraints the schema migrations create, so an in-memory store behaves
// like the hosted database.
func RegisterMemoryFunctions(mem *datastore.Memory) {
	mem.Unique(TableMembers, "org_id", "user_id")
	mem.Unique(TableOrganizations, "slug")
	mem.Unique(TableInvitations, "token")
	mem.RegisterFunc(FuncUserOrganization, userOrganization)
}

// userOrganization returns the user's earliest membership joined with its
// organization name, or no rows.
func userOrganization(ctx context.Context, s datastore.Store, args datastore.Row) (any, error) {
	userID, _ := args["p_user_id"].(string)
	var members []domain.OrganizationMember
	if err := s.Select(ctx, TableMembers, datastore.Where(datastore.Eq("user_id", userID)), &members); err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return []domain.Membership{}, nil
	}
	sort.SliceStable(members, func(i, j int) bool { return members[i].CreatedAt.Before(members[j].CreatedAt) })

	first := members[0]
	var org domain.Organization
	err := s.Select(ctx, TableOrganizations, datastore.Where(datastore.Eq("id", first.OrgID)).First(), &org)
	if errors.Is(err, datastore.ErrNoRows) {
		return []domain.Membership{}, nil
	}
	if err != nil {
		return nil, err
	}
	return []domain.Membership{{OrgID: org.ID, OrgName: org.Name, Role: first.Role}}, nil
}
