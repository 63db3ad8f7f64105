package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/rosterdesk/platform/internal/datastore"
	"github.com/rosterdesk/platform/internal/domain"
)

type calendarRepo struct{ base }

func eventRow(e *domain.CalendarEvent) datastore.Row {
	return datastore.Row{
		"athlete_id":   e.AthleteID,
		"title":        e.Title,
		"type":         e.Type,
		"starts_at":    e.StartsAt.UTC(),
		"ends_at":      e.EndsAt,
		"fulfilled":    e.Fulfilled,
		"description":  e.Description,
		"metadata":     e.Metadata,
		"action_items": nonNil(e.ActionItems),
	}
}

func (r *calendarRepo) ListEvents(ctx context.Context, orgID string, from, to *time.Time) ([]domain.CalendarEvent, error) {
	where := append([]datastore.Predicate{datastore.Eq("org_id", orgID)}, window("starts_at", from, to)...)
	events, err := selectAll[domain.CalendarEvent](ctx, r.store, TableEvents,
		datastore.Where(where...).OrderBy(datastore.Asc("starts_at")))
	if err != nil {
		return nil, fmt.Errorf("select calendar events: %w", err)
	}
	return events, nil
}

func (r *calendarRepo) FindEvent(ctx context.Context, orgID, id string) (*domain.CalendarEvent, error) {
	e, err := selectOne[domain.CalendarEvent](ctx, r.store, TableEvents, datastore.Where(scoped(orgID, id)...))
	if err != nil {
		return nil, fmt.Errorf("select calendar event: %w", err)
	}
	return e, nil
}

func (r *calendarRepo) CreateEvent(ctx context.Context, e *domain.CalendarEvent) (*domain.CalendarEvent, error) {
	row := eventRow(e)
	row["org_id"] = e.OrgID
	created, err := insert[domain.CalendarEvent](ctx, r.store, TableEvents, row)
	if err != nil {
		return nil, fmt.Errorf("insert calendar event: %w", err)
	}
	return created, nil
}

func (r *calendarRepo) UpdateEvent(ctx context.Context, e *domain.CalendarEvent) (*domain.CalendarEvent, error) {
	row := eventRow(e)
	row["updated_at"] = r.stamp()
	updated, err := updateOne[domain.CalendarEvent](ctx, r.store, TableEvents, scoped(e.OrgID, e.ID), row)
	if err != nil {
		return nil, fmt.Errorf("update calendar event: %w", err)
	}
	return updated, nil
}

func (r *calendarRepo) DeleteEvent(ctx context.Context, orgID, id string) (bool, error) {
	ok, err := deleteScoped(ctx, r.store, TableEvents, orgID, id)
	if err != nil {
		return false, fmt.Errorf("delete calendar event: %w", err)
	}
	return ok, nil
}

func (r *calendarRepo) ListTasks(ctx context.Context, orgID string, from, to *time.Time) ([]domain.CalendarTask, error) {
	where := append([]datastore.Predicate{datastore.Eq("org_id", orgID)}, window("date", from, to)...)
	tasks, err := selectAll[domain.CalendarTask](ctx, r.store, TableTasks,
		datastore.Where(where...).OrderBy(datastore.Asc("date")))
	if err != nil {
		return nil, fmt.Errorf("select calendar tasks: %w", err)
	}
	return tasks, nil
}

func (r *calendarRepo) FindTask(ctx context.Context, orgID, id string) (*domain.CalendarTask, error) {
	t, err := selectOne[domain.CalendarTask](ctx, r.store, TableTasks, datastore.Where(scoped(orgID, id)...))
	if err != nil {
		return nil, fmt.Errorf("select calendar task: %w", err)
	}
	return t, nil
}

func (r *calendarRepo) CreateTask(ctx context.Context, t *domain.CalendarTask) (*domain.CalendarTask, error) {
	created, err := insert[domain.CalendarTask](ctx, r.store, TableTasks, datastore.Row{
		"org_id":    t.OrgID,
		"title":     t.Title,
		"date":      t.Date.UTC(),
		"completed": t.Completed,
	})
	if err != nil {
		return nil, fmt.Errorf("insert calendar task: %w", err)
	}
	return created, nil
}

func (r *calendarRepo) UpdateTask(ctx context.Context, t *domain.CalendarTask) (*domain.CalendarTask, error) {
	updated, err := updateOne[domain.CalendarTask](ctx, r.store, TableTasks, scoped(t.OrgID, t.ID), datastore.Row{
		"title":      t.Title,
		"date":       t.Date.UTC(),
		"completed":  t.Completed,
		"updated_at": r.stamp(),
	})
	if err != nil {
		return nil, fmt.Errorf("update calendar task: %w", err)
	}
	return updated, nil
}

func (r *calendarRepo) DeleteTask(ctx context.Context, orgID, id string) (bool, error) {
	ok, err := deleteScoped(ctx, r.store, TableTasks, orgID, id)
	if err != nil {
		return false, fmt.Errorf("delete calendar task: %w", err)
	}
	return ok, nil
}
