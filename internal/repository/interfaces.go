package repository

import (
	"context"
	"time"

	"github.com/rosterdesk/platform/internal/domain"
)

// Lookups return (nil, nil) when no row matches. Every tenant-owned read and
// write is filtered on org_id.

// OrganizationRepository provides access to organizations.
type OrganizationRepository interface {
	// Create inserts the organization and its owner membership.
	Create(ctx context.Context, org *domain.Organization, ownerID string) (*domain.Organization, error)

	FindByID(ctx context.Context, id string) (*domain.Organization, error)

	// Update writes name, slug and settings.
	Update(ctx context.Context, org *domain.Organization) (*domain.Organization, error)

	// ListForUser returns every organization the user is a member of.
	ListForUser(ctx context.Context, userID string) ([]domain.Organization, error)
}

// MemberRepository provides access to organization_members.
type MemberRepository interface {
	Add(ctx context.Context, m *domain.OrganizationMember) (*domain.OrganizationMember, error)
	List(ctx context.Context, orgID string) ([]domain.OrganizationMember, error)
	FindByID(ctx context.Context, orgID, id string) (*domain.OrganizationMember, error)
	UpdateRole(ctx context.Context, orgID, id string, role domain.Role) (*domain.OrganizationMember, error)
	Remove(ctx context.Context, orgID, id string) (bool, error)

	// UserOrganization resolves the user's active organization and role
	// through the user_organization stored function.
	UserOrganization(ctx context.Context, userID string) (*domain.Membership, error)
}

// AthleteRepository provides access to athletes.
type AthleteRepository interface {
	List(ctx context.Context, orgID string) ([]domain.Athlete, error)
	FindByID(ctx context.Context, orgID, id string) (*domain.Athlete, error)
	Create(ctx context.Context, a *domain.Athlete) (*domain.Athlete, error)
	Update(ctx context.Context, a *domain.Athlete) (*domain.Athlete, error)
	Delete(ctx context.Context, orgID, id string) (bool, error)
}

// ContactRepository provides access to contacts.
type ContactRepository interface {
	List(ctx context.Context, orgID string) ([]domain.Contact, error)
	FindByID(ctx context.Context, orgID, id string) (*domain.Contact, error)
	Create(ctx context.Context, c *domain.Contact) (*domain.Contact, error)
	Update(ctx context.Context, c *domain.Contact) (*domain.Contact, error)
	Delete(ctx context.Context, orgID, id string) (bool, error)
}

// ContractRepository provides access to contracts. Reads attach the athlete summary.
type ContractRepository interface {
	List(ctx context.Context, orgID string) ([]domain.Contract, error)
	ListByAthlete(ctx context.Context, orgID, athleteID string) ([]domain.Contract, error)
	FindByID(ctx context.Context, orgID, id string) (*domain.Contract, error)
	Create(ctx context.Context, c *domain.Contract) (*domain.Contract, error)
	Update(ctx context.Context, c *domain.Contract) (*domain.Contract, error)
	Delete(ctx context.Context, orgID, id string) (bool, error)
}

// CalendarRepository provides access to calendar_events and calendar_tasks.
// A nil bound in a window is open.
type CalendarRepository interface {
	ListEvents(ctx context.Context, orgID string, from, to *time.Time) ([]domain.CalendarEvent, error)
	FindEvent(ctx context.Context, orgID, id string) (*domain.CalendarEvent, error)
	CreateEvent(ctx context.Context, e *domain.CalendarEvent) (*domain.CalendarEvent, error)
	UpdateEvent(ctx context.Context, e *domain.CalendarEvent) (*domain.CalendarEvent, error)
	DeleteEvent(ctx context.Context, orgID, id string) (bool, error)

	ListTasks(ctx context.Context, orgID string, from, to *time.Time) ([]domain.CalendarTask, error)
	FindTask(ctx context.Context, orgID, id string) (*domain.CalendarTask, error)
	CreateTask(ctx context.Context, t *domain.CalendarTask) (*domain.CalendarTask, error)
	UpdateTask(ctx context.Context, t *domain.CalendarTask) (*domain.CalendarTask, error)
	DeleteTask(ctx context.Context, orgID, id string) (bool, error)
}

// InvitationRepository provides access to invitations.
type InvitationRepository interface {
	Create(ctx context.Context, inv *domain.Invitation) (*domain.Invitation, error)

	// FindActiveByToken returns the unaccepted, unexpired invitation for
	// token with its organization attached.
	FindActiveByToken(ctx context.Context, token string, now time.Time) (*domain.Invitation, error)

	ListPending(ctx context.Context, orgID string, now time.Time) ([]domain.Invitation, error)

	// Claim marks the invitation accepted in one conditional update. It
	// reports false when the invitation was already accepted or expired.
	Claim(ctx context.Context, id, token string, now time.Time) (bool, error)

	// Release clears accepted_at so a claimed invitation can be accepted again.
	Release(ctx context.Context, id string) error

	Revoke(ctx context.Context, orgID, id string) (bool, error)

	// PurgeExpired deletes unaccepted invitations that expired before cutoff.
	PurgeExpired(ctx context.Context, cutoff time.Time) (int, error)
}
