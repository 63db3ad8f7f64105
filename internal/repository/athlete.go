package repository

import (
	"context"
	"fmt"

	"github.com/rosterdesk/platform/internal/datastore"
	"github.com/rosterdesk/platform/internal/domain"
)

type athleteRepo struct{ base }

func athleteRow(a *domain.Athlete) datastore.Row {
	return datastore.Row{
		"first_name":             a.FirstName,
		"last_name":              a.LastName,
		"email":                  a.Email,
		"phone":                  a.Phone,
		"position":               a.Position,
		"sport":                  a.Sport,
		"school":                 a.School,
		"class_year":             a.ClassYear,
		"hometown":               a.Hometown,
		"height_inches":          a.HeightInches,
		"weight_lbs":             a.WeightLbs,
		"nil_tier":               a.NILTier,
		"nil_value":              a.NILValue,
		"total_contract_value":   a.TotalContractValue,
		"current_grade":          a.CurrentGrade,
		"scouting_reports":       nonNil(a.ScoutingReports),
		"events":                 nonNil(a.Events),
		"development_activities": nonNil(a.DevelopmentActivities),
		"brand_partnerships":     nonNil(a.BrandPartnerships),
	}
}

func (r *athleteRepo) List(ctx context.Context, orgID string) ([]domain.Athlete, error) {
	athletes, err := selectAll[domain.Athlete](ctx, r.store, TableAthletes,
		datastore.Where(datastore.Eq("org_id", orgID)).OrderBy(datastore.Desc("created_at")))
	if err != nil {
		return nil, fmt.Errorf("select athletes: %w", err)
	}
	return athletes, nil
}

func (r *athleteRepo) FindByID(ctx context.Context, orgID, id string) (*domain.Athlete, error) {
	a, err := selectOne[domain.Athlete](ctx, r.store, TableAthletes, datastore.Where(scoped(orgID, id)...))
	if err != nil {
		return nil, fmt.Errorf("select athlete: %w", err)
	}
	return a, nil
}

func (r *athleteRepo) Create(ctx context.Context, a *domain.Athlete) (*domain.Athlete, error) {
	row := athleteRow(a)
	row["org_id"] = a.OrgID
	created, err := insert[domain.Athlete](ctx, r.store, TableAthletes, row)
	if err != nil {
		return nil, fmt.Errorf("insert athlete: %w", err)
	}
	return created, nil
}

func (r *athleteRepo) Update(ctx context.Context, a *domain.Athlete) (*domain.Athlete, error) {
	row := athleteRow(a)
	row["updated_at"] = r.stamp()
	updated, err := updateOne[domain.Athlete](ctx, r.store, TableAthletes, scoped(a.OrgID, a.ID), row)
	if err != nil {
		return nil, fmt.Errorf("update athlete: %w", err)
	}
	return updated, nil
}

func (r *athleteRepo) Delete(ctx context.Context, orgID, id string) (bool, error) {
	ok, err := deleteScoped(ctx, r.store, TableAthletes, orgID, id)
	if err != nil {
		return false, fmt.Errorf("delete athlete: %w", err)
	}
	return ok, nil
}
