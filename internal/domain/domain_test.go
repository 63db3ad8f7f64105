package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Validator Tests ---

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
		errMsg  string
	}{
		{"valid email", "user@example.com", false, ""},
		{"valid email with dots", "first.last@example.co.uk", false, ""},
		{"valid email with plus", "user+tag@example.com", false, ""},
		{"empty string", "", true, "email is required"},
		{"no at sign", "userexample.com", true, "invalid email format"},
		{"no domain", "user@", true, "invalid email format"},
		{"double at", "user@@example.com", true, "invalid email format"},
		{"no tld", "user@example", true, "invalid email format"},
		{"spaces", "user @example.com", true, "invalid email format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestValidatePositiveAmount(t *testing.T) {
	assert.NoError(t, ValidatePositiveAmount(1))
	assert.Error(t, ValidatePositiveAmount(0))
	assert.Error(t, ValidatePositiveAmount(-500))
}

// --- Error Tests ---

func TestAppError_Error(t *testing.T) {
	t.Run("without cause", func(t *testing.T) {
		err := ErrNotFound("athlete", "abc-123")
		assert.Equal(t, "NOT_FOUND: athlete abc-123 not found", err.Error())
	})

	t.Run("with cause", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := ErrStorage("select athletes", cause)
		assert.Contains(t, err.Error(), "STORAGE_ERROR")
		assert.Contains(t, err.Error(), "connection refused")
	})
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := ErrStorage("wrapped", cause)
	assert.Equal(t, cause, errors.Unwrap(err))
	assert.ErrorIs(t, err, cause)
}

func TestErrorFactories(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		code   string
		status int
	}{
		{"not found", ErrNotFound("contact", "1"), CodeNotFound, 404},
		{"conflict", ErrConflict("dup"), CodeConflict, 409},
		{"validation", ErrValidation("bad"), CodeValidation, 400},
		{"unauthorized", ErrUnauthorized("no session"), CodeUnauthorized, 401},
		{"forbidden", ErrForbidden("nope"), CodeForbidden, 403},
		{"storage", ErrStorage("down", nil), CodeStorage, 502},
		{"internal", ErrInternal("boom", nil), CodeInternal, 500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.status, tt.err.Status)
			assert.True(t, HasCode(tt.err, tt.code))
		})
	}
}

func TestIsNotFound_Wrapped(t *testing.T) {
	err := errors.Join(errors.New("context"), ErrNotFound("invitation", "tok"))
	assert.True(t, IsNotFound(err))
	assert.False(t, IsNotFound(errors.New("plain")))
}

// --- Role Tests ---

func TestParseRole(t *testing.T) {
	tests := []struct {
		in      string
		want    Role
		wantErr bool
	}{
		{"owner", RoleOwner, false},
		{"director_admin", RoleDirectorAdmin, false},
		{" agent ", RoleAgent, false},
		{"admin", RoleDirectorAdmin, false},
		{"staff", RoleSupportStaff, false},
		{"analyst", RoleSupportStaff, false},
		{"read_only", RoleSupportStaff, false},
		{"superuser", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRole(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidRole)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRole_Outranks(t *testing.T) {
	assert.True(t, RoleOwner.Outranks(RoleDirectorAdmin))
	assert.True(t, RoleDirectorAdmin.Outranks(RoleDirector))
	assert.False(t, RoleDirector.Outranks(RoleDirector))
	assert.False(t, RoleSupportStaff.Outranks(RoleAgent))
	assert.True(t, RoleSupportStaff.Outranks("bogus"))
	assert.False(t, Role("bogus").Outranks(RoleSupportStaff))
}

func TestRole_UnmarshalJSON(t *testing.T) {
	var m OrganizationMember
	require.NoError(t, json.Unmarshal([]byte(`{"id":"m1","role":"admin"}`), &m))
	assert.Equal(t, RoleDirectorAdmin, m.Role)

	require.NoError(t, json.Unmarshal([]byte(`{"id":"m2","role":"ghost"}`), &m))
	assert.Equal(t, Role("ghost"), m.Role)
	assert.False(t, m.Role.Valid())
}

func TestAllRoles_Canonical(t *testing.T) {
	for _, r := range AllRoles() {
		assert.True(t, r.Valid(), r)
	}
	assert.Len(t, AllRoles(), 5)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "apex-sports-group", Slugify("Apex Sports Group"))
	assert.Equal(t, "a-b", Slugify("  A & B!! "))
}

// --- Entity Tests ---

func TestAthlete_Validate(t *testing.T) {
	neg := int64(-1)
	tests := []struct {
		name    string
		athlete Athlete
		wantErr string
	}{
		{"valid", Athlete{FirstName: "Jay", LastName: "Cole", NILTier: NILTierRising}, ""},
		{"missing last name", Athlete{FirstName: "Jay"}, "first and last name"},
		{"bad tier", Athlete{FirstName: "Jay", LastName: "Cole", NILTier: "legendary"}, "invalid nil tier"},
		{"negative nil value", Athlete{FirstName: "Jay", LastName: "Cole", NILValue: &neg}, "nil value cannot be negative"},
		{"bad email", Athlete{FirstName: "Jay", LastName: "Cole", Email: "nope"}, "invalid email"},
		{"partnership status", Athlete{FirstName: "Jay", LastName: "Cole", BrandPartnerships: []BrandPartnership{{Company: "Nike", Status: "maybe"}}}, "brand partnership status"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.athlete.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestContact_Validate(t *testing.T) {
	c := Contact{FirstName: "Dana", ContactType: ContactCoach}
	require.NoError(t, c.Validate())

	c.ContactType = "plumber"
	assert.Error(t, c.Validate())
}

func TestContract_Totals(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := Contract{
		Title: "Shoe deal", AthleteID: "a1", Type: ContractEndorsement, Status: ContractActive,
		Value: 300000, StartDate: start,
		PaymentSchedule: []Payment{
			{Amount: 100000, DueDate: start, Paid: true},
			{Amount: 200000, DueDate: start.AddDate(0, 6, 0)},
		},
	}
	require.NoError(t, c.Validate())
	assert.Equal(t, int64(300000), c.ScheduledTotal())
	assert.Equal(t, int64(100000), c.PaidTotal())
	assert.True(t, c.ScheduleBalanced())

	end := start.AddDate(0, 0, -1)
	c.EndDate = &end
	assert.ErrorContains(t, c.Validate(), "end date")
}

func TestPayment_SetPaid(t *testing.T) {
	now := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	p := Payment{Amount: 100}
	p.SetPaid(true, now)
	require.NotNil(t, p.PaidDate)
	assert.True(t, p.Paid)
	assert.Equal(t, now, *p.PaidDate)

	p.SetPaid(false, now)
	assert.False(t, p.Paid)
	assert.Nil(t, p.PaidDate)
}

func TestCalendarEvent_UnmarshalMetadata(t *testing.T) {
	t.Run("game metadata decoded", func(t *testing.T) {
		raw := `{"id":"e1","title":"vs State","type":"game","starts_at":"2026-09-05T18:00:00Z",
			"metadata":{"opponent":"State","location":"Home","attending_members":[{"id":"c1","name":"Dana Reed","type":"coach"}]}}`
		var e CalendarEvent
		require.NoError(t, json.Unmarshal([]byte(raw), &e))
		g, ok := e.Game()
		require.True(t, ok)
		assert.Equal(t, "State", g.Opponent)
		require.Len(t, g.AttendingMembers, 1)
		assert.Equal(t, "Dana Reed", g.AttendingMembers[0].Name)
		assert.NoError(t, e.Validate())
	})

	t.Run("non-game metadata dropped", func(t *testing.T) {
		raw := `{"id":"e2","title":"Film","type":"meeting","starts_at":"2026-09-05T18:00:00Z","metadata":{"opponent":"x"}}`
		var e CalendarEvent
		require.NoError(t, json.Unmarshal([]byte(raw), &e))
		assert.Nil(t, e.Metadata)
		_, ok := e.Game()
		assert.False(t, ok)
	})

	t.Run("round trip keeps game variant", func(t *testing.T) {
		e := CalendarEvent{Title: "Bowl", Type: EventTypeGame, StartsAt: time.Now().UTC(), Metadata: GameMetadata{Opponent: "Tech"}}
		b, err := json.Marshal(e)
		require.NoError(t, err)
		var back CalendarEvent
		require.NoError(t, json.Unmarshal(b, &back))
		g, ok := back.Game()
		require.True(t, ok)
		assert.Equal(t, "Tech", g.Opponent)
	})
}

func TestCalendarEvent_Validate(t *testing.T) {
	start := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	assert.ErrorContains(t, (&CalendarEvent{Title: "g", Type: EventTypeGame, StartsAt: start}).Validate(), "requires game metadata")
	assert.ErrorContains(t, (&CalendarEvent{Title: "m", Type: EventTypeMeeting, StartsAt: start, Metadata: GameMetadata{}}).Validate(), "not allowed")
	assert.ErrorContains(t, (&CalendarEvent{Title: "m", Type: "party", StartsAt: start}).Validate(), "invalid event type")
	assert.NoError(t, (&CalendarEvent{Title: "m", Type: EventTypeMeeting, StartsAt: start}).Validate())
}

func TestInvitation_Consumable(t *testing.T) {
	now := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	inv := Invitation{ExpiresAt: now.Add(time.Hour)}
	assert.True(t, inv.Consumable(now))
	assert.False(t, inv.Consumable(now.Add(2*time.Hour)))

	accepted := now
	inv.AcceptedAt = &accepted
	assert.False(t, inv.Consumable(now))
}

// --- Event Tests ---

func TestNewInvitationCreatedEvent(t *testing.T) {
	at := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	inv := &Invitation{ID: "i1", OrgID: "o1", Email: "new@agency.com", Role: RoleAgent, Token: "tok", ExpiresAt: at.Add(InvitationTTL)}
	event := NewInvitationCreatedEvent(inv, "Apex", at)

	assert.Equal(t, EventInvitationCreated, event.EventName)
	assert.Equal(t, AggregateInvitation, event.AggregateType)
	assert.Equal(t, "i1", event.AggregateID)
	assert.Equal(t, "o1", event.PartitionKey)
	assert.Equal(t, at, event.OccurredAt)

	var p InvitationCreatedPayload
	require.NoError(t, json.Unmarshal(event.Payload, &p))
	assert.Equal(t, "Apex", p.OrgName)
	assert.Equal(t, "tok", p.Token)
	assert.Equal(t, RoleAgent, p.Role)
}

func TestNewContractCreatedEvent(t *testing.T) {
	event := NewContractCreatedEvent(&Contract{ID: "c1", OrgID: "o1", AthleteID: "a1", Value: 5000}, time.Now())
	assert.Equal(t, EventContractCreated, event.EventName)
	assert.Equal(t, AggregateContract, event.AggregateType)
	assert.Contains(t, string(event.Payload), `"value":5000`)
}
