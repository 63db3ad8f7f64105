package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rosterdesk/platform/internal/auth"
	"github.com/rosterdesk/platform/internal/datastore"
	"github.com/rosterdesk/platform/internal/domain"
	"github.com/rosterdesk/platform/internal/repository"
	"github.com/rosterdesk/platform/internal/tenant"
)

// OrganizationService manages organizations and their memberships.
type OrganizationService struct {
	orgs        repository.OrganizationRepository
	members     repository.MemberRepository
	events      EventPublisher
	memberships MembershipInvalidator
	logger      *slog.Logger
	now         func() time.Time
}

// NewOrganizationService creates a new OrganizationService.
func NewOrganizationService(
	orgs repository.OrganizationRepository,
	members repository.MemberRepository,
	events EventPublisher,
	memberships MembershipInvalidator,
	now func() time.Time,
	logger *slog.Logger,
) *OrganizationService {
	if events == nil {
		events = DiscardPublisher{}
	}
	if memberships == nil {
		memberships = nopInvalidator{}
	}
	return &OrganizationService{
		orgs:        orgs,
		members:     members,
		events:      events,
		memberships: memberships,
		logger:      logger,
		now:         nowFunc(now),
	}
}

// OrganizationInput holds the organization request fields.
type OrganizationInput struct {
	Name     string         `json:"name"`
	Settings map[string]any `json:"settings,omitempty"`
}

// Create makes a new organization owned by the caller.
func (s *OrganizationService) Create(ctx context.Context, ownerID string, input OrganizationInput) (*domain.Organization, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.ErrValidation("organization name is required")
	}
	slug := domain.Slugify(name)
	if slug == "" {
		slug = "org"
	}

	org := &domain.Organization{Name: name, Slug: slug, Settings: input.Settings}
	created, err := s.orgs.Create(ctx, org, ownerID)
	if datastore.IsConflict(err) {
		// Slug taken: retry once with a random suffix.
		org.Slug = slug + "-" + uuid.NewString()[:8]
		created, err = s.orgs.Create(ctx, org, ownerID)
	}
	if err != nil {
		return nil, storeErr("create organization", err)
	}

	s.memberships.Invalidate(ownerID)
	publish(ctx, s.events, s.logger, domain.NewOrganizationCreatedEvent(created, ownerID, s.now()))
	s.logger.Info("organization created", "org_id", created.ID, "owner_id", ownerID)
	return created, nil
}

// Get returns the caller's organization.
func (s *OrganizationService) Get(ctx context.Context, scope *tenant.Scope) (*domain.Organization, error) {
	org, err := s.orgs.FindByID(ctx, scope.OrgID)
	if err != nil {
		return nil, storeErr("find organization", err)
	}
	if org == nil {
		return nil, domain.ErrNotFound("organization", scope.OrgID)
	}
	return org, nil
}

// Update renames the organization or replaces its settings.
func (s *OrganizationService) Update(ctx context.Context, scope *tenant.Scope, input OrganizationInput) (*domain.Organization, error) {
	org, err := s.Get(ctx, scope)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(input.Name); name != "" {
		org.Name = name
	}
	if input.Settings != nil {
		org.Settings = input.Settings
	}
	updated, err := s.orgs.Update(ctx, org)
	if err != nil {
		return nil, storeErr("update organization", err)
	}
	if updated == nil {
		return nil, domain.ErrNotFound("organization", scope.OrgID)
	}
	return updated, nil
}

// Membership is the caller's view of their own membership.
type Membership struct {
	tenant.Scope
	Permissions []auth.Permission `json:"permissions"`
}

// Me describes the resolved scope with the permissions its role grants.
func (s *OrganizationService) Me(scope *tenant.Scope) Membership {
	return Membership{Scope: *scope, Permissions: auth.PermissionsFor(scope.Role)}
}

// ListForUser returns every organization userID belongs to.
func (s *OrganizationService) ListForUser(ctx context.Context, userID string) ([]domain.Organization, error) {
	orgs, err := s.orgs.ListForUser(ctx, userID)
	if err != nil {
		return nil, storeErr("list organizations", err)
	}
	return orgs, nil
}

// Members lists the organization's members.
func (s *OrganizationService) Members(ctx context.Context, scope *tenant.Scope) ([]domain.OrganizationMember, error) {
	members, err := s.members.List(ctx, scope.OrgID)
	if err != nil {
		return nil, storeErr("list members", err)
	}
	return members, nil
}

// ChangeMemberRole assigns a new canonical role. The owner's role is fixed.
func (s *OrganizationService) ChangeMemberRole(ctx context.Context, scope *tenant.Scope, memberID string, role domain.Role) (*domain.OrganizationMember, error) {
	if !role.Valid() || role == domain.RoleOwner {
		return nil, domain.ErrValidation("invalid role: " + string(role))
	}
	m, err := s.member(ctx, scope, memberID)
	if err != nil {
		return nil, err
	}
	if m.Role == domain.RoleOwner {
		return nil, domain.ErrForbidden("the owner's role cannot be changed")
	}
	updated, err := s.members.UpdateRole(ctx, scope.OrgID, memberID, role)
	if err != nil {
		return nil, storeErr("update member", err)
	}
	if updated == nil {
		return nil, domain.ErrNotFound("member", memberID)
	}
	s.memberships.Invalidate(m.UserID)
	return updated, nil
}

// RemoveMember removes a member. The owner cannot be removed.
func (s *OrganizationService) RemoveMember(ctx context.Context, scope *tenant.Scope, memberID string) error {
	m, err := s.member(ctx, scope, memberID)
	if err != nil {
		return err
	}
	if m.Role == domain.RoleOwner {
		return domain.ErrForbidden("the owner cannot be removed")
	}
	ok, err := s.members.Remove(ctx, scope.OrgID, memberID)
	if err != nil {
		return storeErr("remove member", err)
	}
	if !ok {
		return domain.ErrNotFound("member", memberID)
	}
	s.memberships.Invalidate(m.UserID)
	return nil
}

func (s *OrganizationService) member(ctx context.Context, scope *tenant.Scope, id string) (*domain.OrganizationMember, error) {
	m, err := s.members.FindByID(ctx, scope.OrgID, id)
	if err != nil {
		return nil, storeErr("find member", err)
	}
	if m == nil {
		return nil, domain.ErrNotFound("member", id)
	}
	return m, nil
}
