// Package repository maps domain entities onto data store tables.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/rosterdesk/platform/internal/datastore"
)

// Table names.
const (
	TableOrganizations = "organizations"
	TableMembers       = "organization_members"
	TableAthletes      = "athletes"
	TableContacts      = "contacts"
	TableContracts     = "contracts"
	TableEvents        = "calendar_events"
	TableTasks         = "calendar_tasks"
	TableInvitations   = "invitations"

	FuncUserOrganization = "user_organization"
)

// Repositories bundles every repository over one store.
type Repositories struct {
	Organizations OrganizationRepository
	Members       MemberRepository
	Athletes      AthleteRepository
	Contacts      ContactRepository
	Contracts     ContractRepository
	Calendar      CalendarRepository
	Invitations   InvitationRepository
}

// New builds all repositories over store. now stamps updated_at on writes.
func New(store datastore.Store, now func() time.Time) *Repositories {
	if now == nil {
		now = time.Now
	}
	b := base{store: store, now: now}
	return &Repositories{
		Organizations: &organizationRepo{b},
		Members:       &memberRepo{b},
		Athletes:      &athleteRepo{b},
		Contacts:      &contactRepo{b},
		Contracts:     &contractRepo{b},
		Calendar:      &calendarRepo{b},
		Invitations:   &invitationRepo{b},
	}
}

type base struct {
	store datastore.Store
	now   func() time.Time
}

func (b base) stamp() time.Time { return b.now().UTC() }

// selectOne returns the first matching row, or nil when none matched.
func selectOne[T any](ctx context.Context, s datastore.Store, table string, q datastore.Query) (*T, error) {
	var v T
	err := s.Select(ctx, table, q.First(), &v)
	// A malformed key matches nothing.
	if errors.Is(err, datastore.ErrNoRows) || datastore.IsInvalidInput(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func selectAll[T any](ctx context.Context, s datastore.Store, table string, q datastore.Query) ([]T, error) {
	out := []T{}
	if err := s.Select(ctx, table, q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func insert[T any](ctx context.Context, s datastore.Store, table string, row datastore.Row) (*T, error) {
	var v T
	if err := s.Insert(ctx, table, row, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// updateOne applies patch to the row matching where, returning nil when none matched.
func updateOne[T any](ctx context.Context, s datastore.Store, table string, where []datastore.Predicate, patch datastore.Row) (*T, error) {
	var v T
	n, err := s.Update(ctx, table, where, patch, &v)
	if datastore.IsInvalidInput(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	return &v, nil
}

func deleteScoped(ctx context.Context, s datastore.Store, table, orgID, id string) (bool, error) {
	n, err := s.Delete(ctx, table, scoped(orgID, id))
	if datastore.IsInvalidInput(err) {
		return false, nil
	}
	return n > 0, err
}

func scoped(orgID, id string) []datastore.Predicate {
	return []datastore.Predicate{datastore.Eq("org_id", orgID), datastore.Eq("id", id)}
}

// window filters col into [from, to).
func window(col string, from, to *time.Time) []datastore.Predicate {
	var preds []datastore.Predicate
	if from != nil {
		preds = append(preds, datastore.Gte(col, from.UTC()))
	}
	if to != nil {
		preds = append(preds, datastore.Lt(col, to.UTC()))
	}
	return preds
}

// nonNil keeps JSON array columns from being written as null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
