package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rosterdesk/platform/internal/calendar"
	"github.com/rosterdesk/platform/internal/domain"
	"github.com/rosterdesk/platform/internal/repository"
	"github.com/rosterdesk/platform/internal/tenant"
)

// CalendarService manages calendar events and tasks.
type CalendarService struct {
	calendar repository.CalendarRepository
	contacts repository.ContactRepository
	athletes repository.AthleteRepository
	logger   *slog.Logger
}

// NewCalendarService creates a new CalendarService.
func NewCalendarService(
	cal repository.CalendarRepository,
	contacts repository.ContactRepository,
	athletes repository.AthleteRepository,
	logger *slog.Logger,
) *CalendarService {
	return &CalendarService{calendar: cal, contacts: contacts, athletes: athletes, logger: logger}
}

// Month is the date-indexed view of a window of the calendar.
type Month struct {
	Days   []string                          `json:"days"`
	Events map[string][]domain.CalendarEvent `json:"events"`
	Tasks  map[string][]domain.CalendarTask  `json:"tasks"`
}

// Month indexes the events and tasks in [from, to) by calendar date.
func (s *CalendarService) Month(ctx context.Context, scope *tenant.Scope, from, to *time.Time) (*Month, error) {
	events, err := s.calendar.ListEvents(ctx, scope.OrgID, from, to)
	if err != nil {
		return nil, storeErr("list events", err)
	}
	tasks, err := s.calendar.ListTasks(ctx, scope.OrgID, from, to)
	if err != nil {
		return nil, storeErr("list tasks", err)
	}
	byDay := calendar.EventsByDate(events)
	taskDays := calendar.TasksByDate(tasks)
	return &Month{
		Days:   mergeKeys(calendar.SortedKeys(byDay), calendar.SortedKeys(taskDays)),
		Events: byDay,
		Tasks:  taskDays,
	}, nil
}

// EventView is an event with its action-item assignees resolved to names.
type EventView struct {
	domain.CalendarEvent
	AssigneeNames [][]string `json:"assignee_names"`
}

// Overview is the calendar page: indexed events with display names, tasks and rosters.
type Overview struct {
	Days     []string                         `json:"days"`
	Events   map[string][]EventView           `json:"events"`
	Tasks    map[string][]domain.CalendarTask `json:"tasks"`
	Contacts []domain.Contact                 `json:"contacts"`
	Athletes []domain.Athlete                 `json:"athletes"`
}

// Overview loads events, tasks, contacts and athletes concurrently and
// resolves action-item assignees against the rosters.
func (s *CalendarService) Overview(ctx context.Context, scope *tenant.Scope, from, to *time.Time) (*Overview, error) {
	var (
		events   []domain.CalendarEvent
		tasks    []domain.CalendarTask
		contacts []domain.Contact
		athletes []domain.Athlete
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		events, err = s.calendar.ListEvents(gctx, scope.OrgID, from, to)
		return err
	})
	g.Go(func() (err error) {
		tasks, err = s.calendar.ListTasks(gctx, scope.OrgID, from, to)
		return err
	})
	g.Go(func() (err error) {
		contacts, err = s.contacts.List(gctx, scope.OrgID)
		return err
	})
	g.Go(func() (err error) {
		athletes, err = s.athletes.List(gctx, scope.OrgID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, storeErr("load calendar", err)
	}

	views := make([]EventView, len(events))
	for i, e := range events {
		names := make([][]string, len(e.ActionItems))
		for j, item := range e.ActionItems {
			names[j] = calendar.AssigneeNames(item, contacts, athletes)
		}
		views[i] = EventView{CalendarEvent: e, AssigneeNames: names}
	}
	byDay := calendar.IndexByDate(views, func(v EventView) time.Time { return v.StartsAt })
	taskDays := calendar.TasksByDate(tasks)
	return &Overview{
		Days:     mergeKeys(calendar.SortedKeys(byDay), calendar.SortedKeys(taskDays)),
		Events:   byDay,
		Tasks:    taskDays,
		Contacts: contacts,
		Athletes: athletes,
	}, nil
}

// GetEvent returns one event.
func (s *CalendarService) GetEvent(ctx context.Context, scope *tenant.Scope, id string) (*domain.CalendarEvent, error) {
	e, err := s.calendar.FindEvent(ctx, scope.OrgID, id)
	if err != nil {
		return nil, storeErr("find event", err)
	}
	if e == nil {
		return nil, domain.ErrNotFound("event", id)
	}
	return e, nil
}

// CreateEvent normalizes and stores a draft.
func (s *CalendarService) CreateEvent(ctx context.Context, scope *tenant.Scope, d calendar.Draft) (*domain.CalendarEvent, error) {
	e, err := s.normalize(ctx, scope, d, nil)
	if err != nil {
		return nil, err
	}
	created, err := s.calendar.CreateEvent(ctx, &e)
	if err != nil {
		return nil, storeErr("create event", err)
	}
	return created, nil
}

// UpdateEvent replaces an event with the normalized draft.
func (s *CalendarService) UpdateEvent(ctx context.Context, scope *tenant.Scope, id string, d calendar.Draft) (*domain.CalendarEvent, error) {
	current, err := s.GetEvent(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	var stored []domain.AttendingMember
	if g, ok := current.Game(); ok {
		stored = g.AttendingMembers
	}
	e, err := s.normalize(ctx, scope, d, stored)
	if err != nil {
		return nil, err
	}
	e.ID = id
	return s.saveEvent(ctx, &e)
}

// DeleteEvent removes an event.
func (s *CalendarService) DeleteEvent(ctx context.Context, scope *tenant.Scope, id string) error {
	ok, err := s.calendar.DeleteEvent(ctx, scope.OrgID, id)
	if err != nil {
		return storeErr("delete event", err)
	}
	if !ok {
		return domain.ErrNotFound("event", id)
	}
	return nil
}

// ToggleEventFulfilled flips an event's fulfilled flag.
func (s *CalendarService) ToggleEventFulfilled(ctx context.Context, scope *tenant.Scope, id string) (*domain.CalendarEvent, error) {
	e, err := s.GetEvent(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	e.Fulfilled = !e.Fulfilled
	return s.saveEvent(ctx, e)
}

// AddAttendingMember snapshots a contact onto a game event.
func (s *CalendarService) AddAttendingMember(ctx context.Context, scope *tenant.Scope, eventID, contactID string) (*domain.CalendarEvent, error) {
	e, err := s.GetEvent(ctx, scope, eventID)
	if err != nil {
		return nil, err
	}
	g, ok := e.Game()
	if !ok {
		return nil, domain.ErrValidation("attending members can only be added to game events")
	}
	contacts, err := s.contacts.List(ctx, scope.OrgID)
	if err != nil {
		return nil, storeErr("list contacts", err)
	}
	members, err := calendar.AddAttendingMember(g.AttendingMembers, contactID, contacts)
	if err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	g.AttendingMembers = members
	e.Metadata = *g
	return s.saveEvent(ctx, e)
}

// RemoveAttendingMember drops a contact's snapshot from a game event.
func (s *CalendarService) RemoveAttendingMember(ctx context.Context, scope *tenant.Scope, eventID, contactID string) (*domain.CalendarEvent, error) {
	e, err := s.GetEvent(ctx, scope, eventID)
	if err != nil {
		return nil, err
	}
	g, ok := e.Game()
	if !ok {
		return nil, domain.ErrValidation("event has no attending members")
	}
	g.AttendingMembers = calendar.RemoveAttendingMember(g.AttendingMembers, contactID)
	e.Metadata = *g
	return s.saveEvent(ctx, e)
}

func (s *CalendarService) saveEvent(ctx context.Context, e *domain.CalendarEvent) (*domain.CalendarEvent, error) {
	updated, err := s.calendar.UpdateEvent(ctx, e)
	if err != nil {
		return nil, storeErr("update event", err)
	}
	if updated == nil {
		return nil, domain.ErrNotFound("event", e.ID)
	}
	return updated, nil
}

// normalize validates a draft against the organization's roster. stored holds
// the attendee snapshots already saved on the event being edited.
func (s *CalendarService) normalize(ctx context.Context, scope *tenant.Scope, d calendar.Draft, stored []domain.AttendingMember) (domain.CalendarEvent, error) {
	e, err := calendar.Normalize(d)
	if err != nil {
		return e, domain.ErrValidation(err.Error())
	}
	e.OrgID = scope.OrgID
	if g, ok := e.Game(); ok && len(g.AttendingMembers) > 0 {
		contacts, err := s.contacts.List(ctx, scope.OrgID)
		if err != nil {
			return e, storeErr("list contacts", err)
		}
		members, err := calendar.ResolveAttendingMembers(g.AttendingMembers, stored, contacts)
		if err != nil {
			return e, domain.ErrValidation(err.Error())
		}
		g.AttendingMembers = members
		e.Metadata = *g
	}
	if e.AthleteID != nil {
		a, err := s.athletes.FindByID(ctx, scope.OrgID, *e.AthleteID)
		if err != nil {
			return e, storeErr("find athlete", err)
		}
		if a == nil {
			return e, domain.ErrValidation("athlete does not belong to this organization")
		}
	}
	return e, nil
}

// TaskInput holds the task request fields.
type TaskInput struct {
	Title     string    `json:"title"`
	Date      time.Time `json:"date"`
	Completed bool      `json:"completed"`
}

func (in TaskInput) task(scope *tenant.Scope) (*domain.CalendarTask, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, domain.ErrValidation("task title is required")
	}
	if in.Date.IsZero() {
		return nil, domain.ErrValidation("task date is required")
	}
	return &domain.CalendarTask{OrgID: scope.OrgID, Title: title, Date: in.Date, Completed: in.Completed}, nil
}

// CreateTask adds a dated to-do.
func (s *CalendarService) CreateTask(ctx context.Context, scope *tenant.Scope, in TaskInput) (*domain.CalendarTask, error) {
	t, err := in.task(scope)
	if err != nil {
		return nil, err
	}
	created, err := s.calendar.CreateTask(ctx, t)
	if err != nil {
		return nil, storeErr("create task", err)
	}
	return created, nil
}

// UpdateTask replaces a task's fields.
func (s *CalendarService) UpdateTask(ctx context.Context, scope *tenant.Scope, id string, in TaskInput) (*domain.CalendarTask, error) {
	t, err := in.task(scope)
	if err != nil {
		return nil, err
	}
	t.ID = id
	return s.saveTask(ctx, t)
}

// DeleteTask removes a task.
func (s *CalendarService) DeleteTask(ctx context.Context, scope *tenant.Scope, id string) error {
	ok, err := s.calendar.DeleteTask(ctx, scope.OrgID, id)
	if err != nil {
		return storeErr("delete task", err)
	}
	if !ok {
		return domain.ErrNotFound("task", id)
	}
	return nil
}

// ToggleTaskCompleted flips a task's completed flag.
func (s *CalendarService) ToggleTaskCompleted(ctx context.Context, scope *tenant.Scope, id string) (*domain.CalendarTask, error) {
	t, err := s.calendar.FindTask(ctx, scope.OrgID, id)
	if err != nil {
		return nil, storeErr("find task", err)
	}
	if t == nil {
		return nil, domain.ErrNotFound("task", id)
	}
	t.Completed = !t.Completed
	return s.saveTask(ctx, t)
}

func (s *CalendarService) saveTask(ctx context.Context, t *domain.CalendarTask) (*domain.CalendarTask, error) {
	updated, err := s.calendar.UpdateTask(ctx, t)
	if err != nil {
		return nil, storeErr("update task", err)
	}
	if updated == nil {
		return nil, domain.ErrNotFound("task", t.ID)
	}
	return updated, nil
}

// mergeKeys merges two sorted key lists without duplicates.
func mergeKeys(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) || j < len(b) {
		switch {
		case j == len(b) || (i < len(a) && a[i] < b[j]):
			out = append(out, a[i])
			i++
		case i == len(a) || b[j] < a[i]:
			out = append(out, b[j])
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	return out
}
