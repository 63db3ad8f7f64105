package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/rosterdesk/platform/internal/domain"
	"github.com/rosterdesk/platform/internal/filter"
	"github.com/rosterdesk/platform/internal/markdown"
	"github.com/rosterdesk/platform/internal/repository"
	"github.com/rosterdesk/platform/internal/tenant"
)

// AthleteService manages the organization's athlete roster.
type AthleteService struct {
	athletes repository.AthleteRepository
	logger   *slog.Logger
}

// NewAthleteService creates a new AthleteService.
func NewAthleteService(athletes repository.AthleteRepository, logger *slog.Logger) *AthleteService {
	return &AthleteService{athletes: athletes, logger: logger}
}

// List returns the roster narrowed and ordered by f.
func (s *AthleteService) List(ctx context.Context, scope *tenant.Scope, f filter.AthleteFilter) ([]domain.Athlete, error) {
	all, err := s.athletes.List(ctx, scope.OrgID)
	if err != nil {
		return nil, storeErr("list athletes", err)
	}
	return filter.Athletes(all, f), nil
}

// Get returns one athlete.
func (s *AthleteService) Get(ctx context.Context, scope *tenant.Scope, id string) (*domain.Athlete, error) {
	a, err := s.athletes.FindByID(ctx, scope.OrgID, id)
	if err != nil {
		return nil, storeErr("find athlete", err)
	}
	if a == nil {
		return nil, domain.ErrNotFound("athlete", id)
	}
	return a, nil
}

// Create adds an athlete to the roster.
func (s *AthleteService) Create(ctx context.Context, scope *tenant.Scope, a *domain.Athlete) (*domain.Athlete, error) {
	a.OrgID = scope.OrgID
	assignNestedIDs(a)
	if err := a.Validate(); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	created, err := s.athletes.Create(ctx, a)
	if err != nil {
		return nil, storeErr("create athlete", err)
	}
	s.logger.Info("athlete created", "athlete_id", created.ID, "org_id", scope.OrgID)
	return created, nil
}

// Update replaces an athlete's editable fields.
func (s *AthleteService) Update(ctx context.Context, scope *tenant.Scope, id string, a *domain.Athlete) (*domain.Athlete, error) {
	a.ID = id
	a.OrgID = scope.OrgID
	assignNestedIDs(a)
	if err := a.Validate(); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	updated, err := s.athletes.Update(ctx, a)
	if err != nil {
		return nil, storeErr("update athlete", err)
	}
	if updated == nil {
		return nil, domain.ErrNotFound("athlete", id)
	}
	return updated, nil
}

// Delete removes an athlete.
func (s *AthleteService) Delete(ctx context.Context, scope *tenant.Scope, id string) error {
	ok, err := s.athletes.Delete(ctx, scope.OrgID, id)
	if err != nil {
		return storeErr("delete athlete", err)
	}
	if !ok {
		return domain.ErrNotFound("athlete", id)
	}
	return nil
}

// ToggleEventFulfilled flips the fulfilled flag of the athlete event at index.
func (s *AthleteService) ToggleEventFulfilled(ctx context.Context, scope *tenant.Scope, id string, index int) (*domain.Athlete, error) {
	a, err := s.Get(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(a.Events) {
		return nil, domain.ErrNotFound("athlete event", fmt.Sprint(index))
	}
	a.Events[index].Fulfilled = !a.Events[index].Fulfilled
	updated, err := s.athletes.Update(ctx, a)
	if err != nil {
		return nil, storeErr("update athlete", err)
	}
	if updated == nil {
		return nil, domain.ErrNotFound("athlete", id)
	}
	return updated, nil
}

// RenderedReport is a scouting report with its evaluation rendered to HTML.
type RenderedReport struct {
	domain.ScoutingReport
	EvaluationHTML string `json:"evaluation_html"`
}

// ScoutingReports returns the athlete's reports, newest first, with HTML evaluations.
func (s *AthleteService) ScoutingReports(ctx context.Context, scope *tenant.Scope, id string) ([]RenderedReport, error) {
	a, err := s.Get(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	out := make([]RenderedReport, 0, len(a.ScoutingReports))
	for i := len(a.ScoutingReports) - 1; i >= 0; i-- {
		r := a.ScoutingReports[i]
		html, err := markdown.ToHTML(r.Evaluation)
		if err != nil {
			return nil, domain.ErrInternal("render scouting report", err)
		}
		out = append(out, RenderedReport{ScoutingReport: r, EvaluationHTML: html})
	}
	return out, nil
}

// assignNestedIDs gives new nested records an ID so they can be addressed later.
func assignNestedIDs(a *domain.Athlete) {
	for i := range a.ScoutingReports {
		if a.ScoutingReports[i].ID == "" {
			a.ScoutingReports[i].ID = uuid.NewString()
		}
	}
	for i := range a.Events {
		if a.Events[i].ID == "" {
			a.Events[i].ID = uuid.NewString()
		}
	}
	for i := range a.DevelopmentActivities {
		if a.DevelopmentActivities[i].ID == "" {
			a.DevelopmentActivities[i].ID = uuid.NewString()
		}
	}
	for i := range a.BrandPartnerships {
		if a.BrandPartnerships[i].ID == "" {
			a.BrandPartnerships[i].ID = uuid.NewString()
		}
	}
}
