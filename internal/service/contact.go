package service

import (
	"context"
	"log/slog"

	"github.com/rosterdesk/platform/internal/domain"
	"github.com/rosterdesk/platform/internal/filter"
	"github.com/rosterdesk/platform/internal/repository"
	"github.com/rosterdesk/platform/internal/tenant"
)

// ContactService manages the organization's contact network.
type ContactService struct {
	contacts repository.ContactRepository
	logger   *slog.Logger
}

// NewContactService creates a new ContactService.
func NewContactService(contacts repository.ContactRepository, logger *slog.Logger) *ContactService {
	return &ContactService{contacts: contacts, logger: logger}
}

// List returns contacts narrowed and ordered by f.
func (s *ContactService) List(ctx context.Context, scope *tenant.Scope, f filter.ContactFilter) ([]domain.Contact, error) {
	all, err := s.contacts.List(ctx, scope.OrgID)
	if err != nil {
		return nil, storeErr("list contacts", err)
	}
	return filter.Contacts(all, f), nil
}

// Get returns one contact.
func (s *ContactService) Get(ctx context.Context, scope *tenant.Scope, id string) (*domain.Contact, error) {
	c, err := s.contacts.FindByID(ctx, scope.OrgID, id)
	if err != nil {
		return nil, storeErr("find contact", err)
	}
	if c == nil {
		return nil, domain.ErrNotFound("contact", id)
	}
	return c, nil
}

// Create adds a contact.
func (s *ContactService) Create(ctx context.Context, scope *tenant.Scope, c *domain.Contact) (*domain.Contact, error) {
	c.OrgID = scope.OrgID
	if c.ContactType == "" {
		c.ContactType = domain.ContactOther
	}
	if err := c.Validate(); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	created, err := s.contacts.Create(ctx, c)
	if err != nil {
		return nil, storeErr("create contact", err)
	}
	return created, nil
}

// Update replaces a contact's editable fields.
func (s *ContactService) Update(ctx context.Context, scope *tenant.Scope, id string, c *domain.Contact) (*domain.Contact, error) {
	c.ID = id
	c.OrgID = scope.OrgID
	if err := c.Validate(); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	updated, err := s.contacts.Update(ctx, c)
	if err != nil {
		return nil, storeErr("update contact", err)
	}
	if updated == nil {
		return nil, domain.ErrNotFound("contact", id)
	}
	return updated, nil
}

// Delete removes a contact. Past events keep their attending-member snapshots.
func (s *ContactService) Delete(ctx context.Context, scope *tenant.Scope, id string) error {
	ok, err := s.contacts.Delete(ctx, scope.OrgID, id)
	if err != nil {
		return storeErr("delete contact", err)
	}
	if !ok {
		return domain.ErrNotFound("contact", id)
	}
	return nil
}
