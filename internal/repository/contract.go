package repository

import (
	"context"
	"fmt"

	"github.com/rosterdesk/platform/internal/datastore"
	"github.com/rosterdesk/platform/internal/domain"
)

type contractRepo struct{ base }

func contractRow(c *domain.Contract) datastore.Row {
	return datastore.Row{
		"athlete_id":       c.AthleteID,
		"title":            c.Title,
		"partner":          c.Partner,
		"type":             c.Type,
		"status":           c.Status,
		"value":            c.Value,
		"start_date":       c.StartDate.UTC(),
		"end_date":         c.EndDate,
		"terms":            c.Terms,
		"payment_schedule": nonNil(c.PaymentSchedule),
	}
}

func (r *contractRepo) List(ctx context.Context, orgID string) ([]domain.Contract, error) {
	return r.list(ctx, orgID, datastore.Eq("org_id", orgID))
}

func (r *contractRepo) ListByAthlete(ctx context.Context, orgID, athleteID string) ([]domain.Contract, error) {
	return r.list(ctx, orgID, datastore.Eq("org_id", orgID), datastore.Eq("athlete_id", athleteID))
}

func (r *contractRepo) list(ctx context.Context, orgID string, where ...datastore.Predicate) ([]domain.Contract, error) {
	contracts, err := selectAll[domain.Contract](ctx, r.store, TableContracts,
		datastore.Where(where...).OrderBy(datastore.Desc("created_at")))
	if err != nil {
		return nil, fmt.Errorf("select contracts: %w", err)
	}
	if len(contracts) == 0 {
		return contracts, nil
	}
	if err := r.attachAthletes(ctx, orgID, contracts); err != nil {
		return nil, err
	}
	return contracts, nil
}

// attachAthletes resolves athlete names for a batch with one query.
func (r *contractRepo) attachAthletes(ctx context.Context, orgID string, contracts []domain.Contract) error {
	athletes, err := selectAll[domain.AthleteSummary](ctx, r.store, TableAthletes,
		datastore.Where(datastore.Eq("org_id", orgID)))
	if err != nil {
		return fmt.Errorf("select contract athletes: %w", err)
	}
	byID := make(map[string]domain.AthleteSummary, len(athletes))
	for _, a := range athletes {
		byID[a.ID] = a
	}
	for i := range contracts {
		if a, ok := byID[contracts[i].AthleteID]; ok {
			summary := a
			contracts[i].Athlete = &summary
		}
	}
	return nil
}

func (r *contractRepo) FindByID(ctx context.Context, orgID, id string) (*domain.Contract, error) {
	c, err := selectOne[domain.Contract](ctx, r.store, TableContracts, datastore.Where(scoped(orgID, id)...))
	if err != nil {
		return nil, fmt.Errorf("select contract: %w", err)
	}
	if c == nil {
		return nil, nil
	}
	a, err := selectOne[domain.AthleteSummary](ctx, r.store, TableAthletes, datastore.Where(scoped(orgID, c.AthleteID)...))
	if err != nil {
		return nil, fmt.Errorf("select contract athlete: %w", err)
	}
	c.Athlete = a
	return c, nil
}

func (r *contractRepo) Create(ctx context.Context, c *domain.Contract) (*domain.Contract, error) {
	row := contractRow(c)
	row["org_id"] = c.OrgID
	created, err := insert[domain.Contract](ctx, r.store, TableContracts, row)
	if err != nil {
		return nil, fmt.Errorf("insert contract: %w", err)
	}
	return created, nil
}

func (r *contractRepo) Update(ctx context.Context, c *domain.Contract) (*domain.Contract, error) {
	row := contractRow(c)
	row["updated_at"] = r.stamp()
	updated, err := updateOne[domain.Contract](ctx, r.store, TableContracts, scoped(c.OrgID, c.ID), row)
	if err != nil {
		return nil, fmt.Errorf("update contract: %w", err)
	}
	return updated, nil
}

func (r *contractRepo) Delete(ctx context.Context, orgID, id string) (bool, error) {
	ok, err := deleteScoped(ctx, r.store, TableContracts, orgID, id)
	if err != nil {
		return false, fmt.Errorf("delete contract: %w", err)
	}
	return ok, nil
}
