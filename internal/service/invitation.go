package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rosterdesk/platform/internal/domain"
	"github.com/rosterdesk/platform/internal/repository"
	"github.com/rosterdesk/platform/internal/tenant"
)

// InvitationConfig tunes the invitation lifecycle. Zero values take defaults.
type InvitationConfig struct {
	TTL      time.Duration
	Now      func() time.Time
	NewToken func() string
}

// InvitationService issues, looks up and consumes organization invitations.
type InvitationService struct {
	invitations repository.InvitationRepository
	members     repository.MemberRepository
	events      EventPublisher
	memberships MembershipInvalidator
	logger      *slog.Logger

	ttl      time.Duration
	now      func() time.Time
	newToken func() string
}

// NewInvitationService creates a new InvitationService.
func NewInvitationService(
	invitations repository.InvitationRepository,
	members repository.MemberRepository,
	events EventPublisher,
	memberships MembershipInvalidator,
	cfg InvitationConfig,
	logger *slog.Logger,
) *InvitationService {
	if events == nil {
		events = DiscardPublisher{}
	}
	if memberships == nil {
		memberships = nopInvalidator{}
	}
	if cfg.TTL <= 0 {
		cfg.TTL = domain.InvitationTTL
	}
	if cfg.NewToken == nil {
		cfg.NewToken = uuid.NewString
	}
	return &InvitationService{
		invitations: invitations,
		members:     members,
		events:      events,
		memberships: memberships,
		logger:      logger,
		ttl:         cfg.TTL,
		now:         nowFunc(cfg.Now),
		newToken:    cfg.NewToken,
	}
}

// InviteInput holds the invitation request fields.
type InviteInput struct {
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}

// Invite creates an invitation into the caller's organization.
func (s *InvitationService) Invite(ctx context.Context, scope *tenant.Scope, input InviteInput) (*domain.Invitation, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if err := domain.ValidateEmail(email); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	if !input.Role.Valid() {
		return nil, domain.ErrValidation("invalid role: " + string(input.Role))
	}
	if input.Role == domain.RoleOwner {
		return nil, domain.ErrValidation("the owner role cannot be granted by invitation")
	}
	if input.Role.Outranks(scope.Role) {
		return nil, domain.ErrForbidden("cannot invite with a role above your own")
	}

	now := s.now()
	inv, err := s.invitations.Create(ctx, &domain.Invitation{
		OrgID:     scope.OrgID,
		Email:     email,
		Role:      input.Role,
		Token:     s.newToken(),
		InvitedBy: scope.UserID,
		ExpiresAt: now.Add(s.ttl),
	})
	if err != nil {
		return nil, storeErr("create invitation", err)
	}

	publish(ctx, s.events, s.logger, domain.NewInvitationCreatedEvent(inv, scope.OrgName, now))
	s.logger.Info("invitation created", "invitation_id", inv.ID, "org_id", inv.OrgID, "role", inv.Role)
	return inv, nil
}

// Get returns the unaccepted, unexpired invitation for token with its
// organization attached.
func (s *InvitationService) Get(ctx context.Context, token string) (*domain.Invitation, error) {
	inv, err := s.invitations.FindActiveByToken(ctx, token, s.now())
	if err != nil {
		return nil, storeErr("find invitation", err)
	}
	if inv == nil {
		return nil, domain.ErrNotFound("invitation", "for token")
	}
	return inv, nil
}

// Accept consumes the invitation and makes userID a member with its role.
// The claim is a single conditional update, so of two concurrent accepts
// exactly one proceeds. If the membership insert fails the claim is
// released and the invitation stays acceptable.
func (s *InvitationService) Accept(ctx context.Context, token, userID string) (*domain.Invitation, error) {
	inv, err := s.Get(ctx, token)
	if err != nil {
		return nil, err
	}

	now := s.now()
	claimed, err := s.invitations.Claim(ctx, inv.ID, token, now)
	if err != nil {
		return nil, storeErr("claim invitation", err)
	}
	if !claimed {
		return nil, domain.ErrNotFound("invitation", "for token")
	}

	invitedBy := inv.InvitedBy
	if _, err := s.members.Add(ctx, &domain.OrganizationMember{
		OrgID:     inv.OrgID,
		UserID:    userID,
		Role:      inv.Role,
		InvitedBy: &invitedBy,
	}); err != nil {
		if relErr := s.invitations.Release(ctx, inv.ID); relErr != nil {
			s.logger.Error("release invitation claim", "error", relErr, "invitation_id", inv.ID)
		}
		return nil, storeErr("add member", err)
	}

	s.memberships.Invalidate(userID)
	publish(ctx, s.events, s.logger, domain.NewInvitationAcceptedEvent(inv, userID, now))
	s.logger.Info("invitation accepted", "invitation_id", inv.ID, "org_id", inv.OrgID, "user_id", userID)
	return inv, nil
}

// ListPending returns the organization's outstanding invitations.
func (s *InvitationService) ListPending(ctx context.Context, scope *tenant.Scope) ([]domain.Invitation, error) {
	invs, err := s.invitations.ListPending(ctx, scope.OrgID, s.now())
	if err != nil {
		return nil, storeErr("list invitations", err)
	}
	return invs, nil
}

// Revoke deletes an outstanding invitation.
func (s *InvitationService) Revoke(ctx context.Context, scope *tenant.Scope, id string) error {
	ok, err := s.invitations.Revoke(ctx, scope.OrgID, id)
	if err != nil {
		return storeErr("revoke invitation", err)
	}
	if !ok {
		return domain.ErrNotFound("invitation", id)
	}
	publish(ctx, s.events, s.logger, domain.NewInvitationRevokedEvent(scope.OrgID, id, s.now()))
	return nil
}

// PurgeExpired deletes invitations that expired without being accepted.
func (s *InvitationService) PurgeExpired(ctx context.Context) (int, error) {
	n, err := s.invitations.PurgeExpired(ctx, s.now())
	if err != nil {
		return 0, storeErr("purge invitations", err)
	}
	if n > 0 {
		s.logger.Info("purged expired invitations", "count", n)
	}
	return n, nil
}
