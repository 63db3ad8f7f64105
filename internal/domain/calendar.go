package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// EventType is the closed set of calendar event kinds.
type EventType string

const (
	EventTypeAthlete      EventType = "athlete"
	EventTypeMeeting      EventType = "meeting"
	EventTypeTravel       EventType = "travel"
	EventTypeGame         EventType = "game"
	EventTypeSigning      EventType = "signing"
	EventTypeAppearance   EventType = "appearance"
	EventTypeFootballCamp EventType = "football_camp"
	EventTypeOther        EventType = "other"
)

// Valid reports whether t is a known event type.
func (t EventType) Valid() bool {
	switch t {
	case EventTypeAthlete, EventTypeMeeting, EventTypeTravel, EventTypeGame,
		EventTypeSigning, EventTypeAppearance, EventTypeFootballCamp, EventTypeOther:
		return true
	}
	return false
}

// EventMetadata is the type-specific payload of a calendar event. Each
// variant belongs to exactly one EventType; types without a variant carry nil.
type EventMetadata interface {
	EventType() EventType
}

// GameMetadata is the metadata variant for game events.
type GameMetadata struct {
	Opponent         string            `json:"opponent"`
	Location         string            `json:"location"`
	AttendingMembers []AttendingMember `json:"attending_members"`
}

// EventType implements EventMetadata.
func (GameMetadata) EventType() EventType { return EventTypeGame }

// AttendingMember is a copy of a contact taken when the event was saved.
// It is not a reference: renaming the contact later leaves it unchanged.
type AttendingMember struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Type  ContactType `json:"type"`
	Email string      `json:"email,omitempty"`
	Phone string      `json:"phone,omitempty"`
}

// ActionItem is a sub-task attached to an event. Assignees are contact or athlete IDs.
type ActionItem struct {
	Description string   `json:"description"`
	Assignees   []string `json:"assignees"`
	Notes       string   `json:"notes,omitempty"`
}

// CalendarEvent is a scheduled item on the organization calendar.
type CalendarEvent struct {
	ID          string        `json:"id"`
	OrgID       string        `json:"org_id"`
	AthleteID   *string       `json:"athlete_id,omitempty"`
	Title       string        `json:"title"`
	Type        EventType     `json:"type"`
	StartsAt    time.Time     `json:"starts_at"`
	EndsAt      *time.Time    `json:"ends_at,omitempty"`
	Fulfilled   bool          `json:"fulfilled"`
	Description string        `json:"description,omitempty"`
	Metadata    EventMetadata `json:"metadata"`
	ActionItems []ActionItem  `json:"action_items"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// Game returns the game metadata, if the event carries it.
func (e *CalendarEvent) Game() (*GameMetadata, bool) {
	switch m := e.Metadata.(type) {
	case GameMetadata:
		return &m, true
	case *GameMetadata:
		return m, m != nil
	}
	return nil, false
}

// UnmarshalJSON decodes metadata into the variant selected by Type.
func (e *CalendarEvent) UnmarshalJSON(data []byte) error {
	type plain CalendarEvent
	var raw struct {
		plain
		Metadata json.RawMessage `json:"metadata"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*e = CalendarEvent(raw.plain)
	e.Metadata = nil

	meta := bytes.TrimSpace(raw.Metadata)
	if len(meta) == 0 || bytes.Equal(meta, []byte("null")) {
		return nil
	}
	switch e.Type {
	case EventTypeGame:
		var g GameMetadata
		if err := json.Unmarshal(meta, &g); err != nil {
			return fmt.Errorf("decode game metadata: %w", err)
		}
		e.Metadata = g
	default:
		// Older rows stored an empty bag for every type; anything but game drops it.
	}
	return nil
}

// Validate checks the event's invariants, including that the metadata
// variant matches the event type.
func (e *CalendarEvent) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return fmt.Errorf("event title is required")
	}
	if !e.Type.Valid() {
		return fmt.Errorf("invalid event type: %s", e.Type)
	}
	if e.StartsAt.IsZero() {
		return fmt.Errorf("event start is required")
	}
	if e.EndsAt != nil && e.EndsAt.Before(e.StartsAt) {
		return fmt.Errorf("event end cannot be before start")
	}
	if e.Metadata != nil && e.Metadata.EventType() != e.Type {
		return fmt.Errorf("%s metadata not allowed on %s event", e.Metadata.EventType(), e.Type)
	}
	if e.Type == EventTypeGame && e.Metadata == nil {
		return fmt.Errorf("game event requires game metadata")
	}
	for i, ai := range e.ActionItems {
		if strings.TrimSpace(ai.Description) == "" {
			return fmt.Errorf("action item %d: description is required", i+1)
		}
	}
	return nil
}

// CalendarTask is a per-day checklist item.
type CalendarTask struct {
	ID        string    `json:"id"`
	OrgID     string    `json:"org_id"`
	Title     string    `json:"title"`
	Date      time.Time `json:"date"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks the task's invariants.
func (t *CalendarTask) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("task title is required")
	}
	if t.Date.IsZero() {
		return fmt.Errorf("task date is required")
	}
	return nil
}
