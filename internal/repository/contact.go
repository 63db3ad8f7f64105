package repository

import (
	"context"
	"fmt"

	"github.com/rosterdesk/platform/internal/datastore"
	"github.com/rosterdesk/platform/internal/domain"
)

type contactRepo struct{ base }

func contactRow(c *domain.Contact) datastore.Row {
	return datastore.Row{
		"first_name":        c.FirstName,
		"last_name":         c.LastName,
		"email":             c.Email,
		"phone":             c.Phone,
		"company":           c.Company,
		"title":             c.Title,
		"contact_type":      c.ContactType,
		"notes":             c.Notes,
		"last_contacted_at": c.LastContactedAt,
	}
}

func (r *contactRepo) List(ctx context.Context, orgID string) ([]domain.Contact, error) {
	contacts, err := selectAll[domain.Contact](ctx, r.store, TableContacts,
		datastore.Where(datastore.Eq("org_id", orgID)).OrderBy(datastore.Asc("last_name"), datastore.Asc("first_name")))
	if err != nil {
		return nil, fmt.Errorf("select contacts: %w", err)
	}
	return contacts, nil
}

func (r *contactRepo) FindByID(ctx context.Context, orgID, id string) (*domain.Contact, error) {
	c, err := selectOne[domain.Contact](ctx, r.store, TableContacts, datastore.Where(scoped(orgID, id)...))
	if err != nil {
		return nil, fmt.Errorf("select contact: %w", err)
	}
	return c, nil
}

func (r *contactRepo) Create(ctx context.Context, c *domain.Contact) (*domain.Contact, error) {
	row := contactRow(c)
	row["org_id"] = c.OrgID
	created, err := insert[domain.Contact](ctx, r.store, TableContacts, row)
	if err != nil {
		return nil, fmt.Errorf("insert contact: %w", err)
	}
	return created, nil
}

func (r *contactRepo) Update(ctx context.Context, c *domain.Contact) (*domain.Contact, error) {
	row := contactRow(c)
	row["updated_at"] = r.stamp()
	updated, err := updateOne[domain.Contact](ctx, r.store, TableContacts, scoped(c.OrgID, c.ID), row)
	if err != nil {
		return nil, fmt.Errorf("update contact: %w", err)
	}
	return updated, nil
}

func (r *contactRepo) Delete(ctx context.Context, orgID, id string) (bool, error) {
	ok, err := deleteScoped(ctx, r.store, TableContacts, orgID, id)
	if err != nil {
		return false, fmt.Errorf("delete contact: %w", err)
	}
	return ok, nil
}
