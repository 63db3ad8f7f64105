package repository

import (
	"context"
	"fmt"
	"sort"

	"github.com/rosterdesk/platform/internal/datastore"
	"github.com/rosterdesk/platform/internal/domain"
)

type organizationRepo struct{ base }

func (r *organizationRepo) Create(ctx context.Context, org *domain.Organization, ownerID string) (*domain.Organization, error) {
	settings := org.Settings
	if settings == nil {
		settings = map[string]any{}
	}
	created, err := insert[domain.Organization](ctx, r.store, TableOrganizations, datastore.Row{
		"name":     org.Name,
		"slug":     org.Slug,
		"settings": settings,
	})
	if err != nil {
		return nil, fmt.Errorf("insert organization: %w", err)
	}

	if err := r.store.Insert(ctx, TableMembers, datastore.Row{
		"org_id":  created.ID,
		"user_id": ownerID,
		"role":    domain.RoleOwner,
	}, nil); err != nil {
		// Best effort: an organization without an owner is unreachable.
		_, _ = r.store.Delete(ctx, TableOrganizations, []datastore.Predicate{datastore.Eq("id", created.ID)})
		return nil, fmt.Errorf("insert owner membership: %w", err)
	}
	return created, nil
}

func (r *organizationRepo) FindByID(ctx context.Context, id string) (*domain.Organization, error) {
	org, err := selectOne[domain.Organization](ctx, r.store, TableOrganizations, datastore.Where(datastore.Eq("id", id)))
	if err != nil {
		return nil, fmt.Errorf("select organization: %w", err)
	}
	return org, nil
}

func (r *organizationRepo) Update(ctx context.Context, org *domain.Organization) (*domain.Organization, error) {
	settings := org.Settings
	if settings == nil {
		settings = map[string]any{}
	}
	updated, err := updateOne[domain.Organization](ctx, r.store, TableOrganizations,
		[]datastore.Predicate{datastore.Eq("id", org.ID)},
		datastore.Row{
			"name":       org.Name,
			"slug":       org.Slug,
			"settings":   settings,
			"updated_at": r.stamp(),
		})
	if err != nil {
		return nil, fmt.Errorf("update organization: %w", err)
	}
	return updated, nil
}

func (r *organizationRepo) ListForUser(ctx context.Context, userID string) ([]domain.Organization, error) {
	members, err := selectAll[domain.OrganizationMember](ctx, r.store, TableMembers,
		datastore.Where(datastore.Eq("user_id", userID)).OrderBy(datastore.Asc("created_at")))
	if err != nil {
		return nil, fmt.Errorf("select memberships: %w", err)
	}

	orgs := make([]domain.Organization, 0, len(members))
	for _, m := range members {
		org, err := r.FindByID(ctx, m.OrgID)
		if err != nil {
			return nil, err
		}
		if org != nil {
			orgs = append(orgs, *org)
		}
	}
	sort.SliceStable(orgs, func(i, j int) bool { return orgs[i].Name < orgs[j].Name })
	return orgs, nil
}
