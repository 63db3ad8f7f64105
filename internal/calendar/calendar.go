// Package calendar assembles calendar data: the per-day event index used for
// rendering, draft normalization before writes, attending-member snapshots
// and action-item assignee names.
package calendar

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rosterdesk/platform/internal/domain"
)

// DateKeyLayout is the YYYY-MM-DD layout of index keys.
const DateKeyLayout = "2006-01-02"

// UnknownAssignee is displayed for assignee IDs found in neither roster.
const UnknownAssignee = "Unknown"

// DateKey returns the index key for t in t's own location.
func DateKey(t time.Time) string {
	return t.Format(DateKeyLayout)
}

// IndexByDate groups items by the calendar date of at(item). Items sharing
// a date keep their input order.
func IndexByDate[T any](items []T, at func(T) time.Time) map[string][]T {
	index := make(map[string][]T)
	for _, it := range items {
		k := DateKey(at(it))
		index[k] = append(index[k], it)
	}
	return index
}

// SortedKeys returns the index keys in chronological order.
func SortedKeys[T any](index map[string][]T) []string {
	keys := make([]string, 0, len(index))
	for k := range index {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// EventsByDate indexes events by their start date.
func EventsByDate(events []domain.CalendarEvent) map[string][]domain.CalendarEvent {
	return IndexByDate(events, func(e domain.CalendarEvent) time.Time { return e.StartsAt })
}

// TasksByDate indexes tasks by their date.
func TasksByDate(tasks []domain.CalendarTask) map[string][]domain.CalendarTask {
	return IndexByDate(tasks, func(t domain.CalendarTask) time.Time { return t.Date })
}

// Draft is the editable form of an event. Game fields are ignored for
// every other event type.
type Draft struct {
	Title            string                   `json:"title"`
	Type             domain.EventType         `json:"type"`
	AthleteID        *string                  `json:"athlete_id,omitempty"`
	StartsAt         time.Time                `json:"starts_at"`
	EndsAt           *time.Time               `json:"ends_at,omitempty"`
	Description      string                   `json:"description,omitempty"`
	Fulfilled        bool                     `json:"fulfilled"`
	Opponent         string                   `json:"opponent,omitempty"`
	Location         string                   `json:"location,omitempty"`
	AttendingMembers []domain.AttendingMember `json:"attending_members,omitempty"`
	ActionItems      []domain.ActionItem      `json:"action_items,omitempty"`
}

// Normalize turns a draft into an event whose metadata variant matches its
// type: nil for non-game events, GameMetadata for games.
func Normalize(d Draft) (domain.CalendarEvent, error) {
	e := domain.CalendarEvent{
		Title:       strings.TrimSpace(d.Title),
		Type:        d.Type,
		AthleteID:   blankToNil(d.AthleteID),
		StartsAt:    d.StartsAt,
		EndsAt:      d.EndsAt,
		Description: strings.TrimSpace(d.Description),
		Fulfilled:   d.Fulfilled,
		ActionItems: normalizeActionItems(d.ActionItems),
	}
	if d.Type == domain.EventTypeGame {
		e.Metadata = domain.GameMetadata{
			Opponent:         strings.TrimSpace(d.Opponent),
			Location:         strings.TrimSpace(d.Location),
			AttendingMembers: dedupeMembers(d.AttendingMembers),
		}
	}
	if err := e.Validate(); err != nil {
		return domain.CalendarEvent{}, err
	}
	return e, nil
}

// DraftFrom converts a stored event back into its editable form.
func DraftFrom(e domain.CalendarEvent) Draft {
	d := Draft{
		Title:       e.Title,
		Type:        e.Type,
		AthleteID:   e.AthleteID,
		StartsAt:    e.StartsAt,
		EndsAt:      e.EndsAt,
		Description: e.Description,
		Fulfilled:   e.Fulfilled,
		ActionItems: append([]domain.ActionItem(nil), e.ActionItems...),
	}
	if g, ok := e.Game(); ok {
		d.Opponent = g.Opponent
		d.Location = g.Location
		d.AttendingMembers = append([]domain.AttendingMember(nil), g.AttendingMembers...)
	}
	return d
}

// Snapshot copies the display fields of a contact.
func Snapshot(c domain.Contact) domain.AttendingMember {
	return domain.AttendingMember{
		ID:    c.ID,
		Name:  c.FullName(),
		Type:  c.ContactType,
		Email: c.Email,
		Phone: c.Phone,
	}
}

// AddAttendingMember resolves contactID against roster and returns a new
// list containing its snapshot. Selecting a contact already present
// replaces that entry in place.
func AddAttendingMember(members []domain.AttendingMember, contactID string, roster []domain.Contact) ([]domain.AttendingMember, error) {
	var found *domain.Contact
	for i := range roster {
		if roster[i].ID == contactID {
			found = &roster[i]
			break
		}
	}
	if found == nil {
		return nil, fmt.Errorf("contact %s is not in the organization roster", contactID)
	}

	snap := Snapshot(*found)
	out := append([]domain.AttendingMember(nil), members...)
	for i := range out {
		if out[i].ID == contactID {
			out[i] = snap
			return out, nil
		}
	}
	return append(out, snap), nil
}

// ResolveAttendingMembers rebuilds a game's attendee list from the selected
// contact IDs. An ID already on the event keeps its stored snapshot; any
// other ID must be in roster and is snapshotted now. Client-supplied display
// fields are never kept.
func ResolveAttendingMembers(selected, stored []domain.AttendingMember, roster []domain.Contact) ([]domain.AttendingMember, error) {
	prev := make(map[string]domain.AttendingMember, len(stored))
	for _, m := range stored {
		prev[m.ID] = m
	}
	byID := make(map[string]domain.Contact, len(roster))
	for _, c := range roster {
		byID[c.ID] = c
	}

	out := make([]domain.AttendingMember, 0, len(selected))
	seen := make(map[string]bool, len(selected))
	for _, m := range selected {
		id := strings.TrimSpace(m.ID)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		if snap, ok := prev[id]; ok {
			out = append(out, snap)
			continue
		}
		c, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("contact %s is not in the organization roster", id)
		}
		out = append(out, Snapshot(c))
	}
	return out, nil
}

// RemoveAttendingMember returns members without contactID.
func RemoveAttendingMember(members []domain.AttendingMember, contactID string) []domain.AttendingMember {
	out := make([]domain.AttendingMember, 0, len(members))
	for _, m := range members {
		if m.ID != contactID {
			out = append(out, m)
		}
	}
	return out
}

// AssigneeName resolves an assignee ID, checking contacts first, then
// athletes, then falling back to UnknownAssignee.
func AssigneeName(id string, contacts []domain.Contact, athletes []domain.Athlete) string {
	for _, c := range contacts {
		if c.ID == id {
			return c.FullName()
		}
	}
	for _, a := range athletes {
		if a.ID == id {
			return a.FullName()
		}
	}
	return UnknownAssignee
}

// AssigneeNames resolves every assignee of item, preserving order.
func AssigneeNames(item domain.ActionItem, contacts []domain.Contact, athletes []domain.Athlete) []string {
	names := make([]string, len(item.Assignees))
	for i, id := range item.Assignees {
		names[i] = AssigneeName(id, contacts, athletes)
	}
	return names
}

func normalizeActionItems(items []domain.ActionItem) []domain.ActionItem {
	out := make([]domain.ActionItem, 0, len(items))
	for _, it := range items {
		it.Description = strings.TrimSpace(it.Description)
		it.Notes = strings.TrimSpace(it.Notes)
		seen := make(map[string]bool, len(it.Assignees))
		assignees := make([]string, 0, len(it.Assignees))
		for _, a := range it.Assignees {
			if a == "" || seen[a] {
				continue
			}
			seen[a] = true
			assignees = append(assignees, a)
		}
		it.Assignees = assignees
		out = append(out, it)
	}
	return out
}

// dedupeMembers keeps the last snapshot for each ID at the position of its first occurrence.
func dedupeMembers(members []domain.AttendingMember) []domain.AttendingMember {
	out := make([]domain.AttendingMember, 0, len(members))
	pos := make(map[string]int, len(members))
	for _, m := range members {
		if i, ok := pos[m.ID]; ok {
			out[i] = m
			continue
		}
		pos[m.ID] = len(out)
		out = append(out, m)
	}
	return out
}

func blankToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
