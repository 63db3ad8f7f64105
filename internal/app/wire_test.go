package app

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rosterdesk/platform/internal/auth"
	"github.com/rosterdesk/platform/internal/datastore"
	"github.com/rosterdesk/platform/internal/domain"
	"github.com/rosterdesk/platform/internal/repository"
)

type testServer struct {
	t      *testing.T
	router *Router
	jwt    *auth.JWTManager
	now    time.Time
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	mem := datastore.NewMemory()
	repository.RegisterMemoryFunctions(mem)

	s := &testServer{
		t:   t,
		jwt: auth.NewJWTManager("test-secret-test-secret-test-secret", time.Hour),
		now: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
	}
	tokens := 0
	s.router = NewRouter(RouterDeps{
		Store:           mem,
		JWTMgr:          s.jwt,
		Logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		CORSOrigins:     []string{"*"},
		InviteTTL:       domain.InvitationTTL,
		InviteRateLimit: 20,
		Now:             func() time.Time { return s.now },
		NewToken: func() string {
			tokens++
			return "invite-token-" + string(rune('a'+tokens-1))
		},
	})
	return s
}

// do sends a request as user (empty for anonymous) and decodes the JSON body into out.
func (s *testServer) do(method, path, user string, body any, out any) *httptest.ResponseRecorder {
	s.t.Helper()
	var rdr io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(s.t, err)
		rdr = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, rdr)
	if user != "" {
		tok, err := s.jwt.GenerateToken(user, user+"@agency.com")
		require.NoError(s.t, err)
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	if out != nil && w.Body.Len() > 0 {
		require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
	}
	return w
}

// setupOrg creates an organization owned by "owner" and returns its ID.
func (s *testServer) setupOrg() string {
	var org domain.Organization
	w := s.do(http.MethodPost, "/api/organizations", "owner", map[string]any{"name": "Summit Sports"}, &org)
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	return org.ID
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/health", "", nil, nil).Code)

	w := s.do(http.MethodGet, "/metrics", "", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "rosterdesk_http_requests_total")
}

func TestAPI_RequiresAuthAndMembership(t *testing.T) {
	s := newTestServer(t)
	s.setupOrg()

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/me", "", nil, nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/api/me", "stranger", nil, nil).Code)

	var me struct {
		OrgID       string            `json:"org_id"`
		OrgName     string            `json:"org_name"`
		Role        domain.Role       `json:"role"`
		Permissions []auth.Permission `json:"permissions"`
	}
	w := s.do(http.MethodGet, "/api/me", "owner", nil, &me)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Summit Sports", me.OrgName)
	assert.Equal(t, domain.RoleOwner, me.Role)
	assert.ElementsMatch(t, auth.AllPermissions(), me.Permissions)
}

func TestInvitationFlow(t *testing.T) {
	s := newTestServer(t)
	orgID := s.setupOrg()

	var inv domain.Invitation
	w := s.do(http.MethodPost, "/api/invitations", "owner", map[string]any{"email": "New@Agency.com", "role": "agent"}, &inv)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "new@agency.com", inv.Email)
	assert.Equal(t, "invite-token-a", inv.Token)

	var preview map[string]any
	w = s.do(http.MethodGet, "/invitations/invite-token-a", "", nil, &preview)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Summit Sports", preview["org_name"])
	assert.NotContains(t, preview, "token")

	// accepting needs a signed-in user
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodPost, "/invitations/invite-token-a/accept", "", nil, nil).Code)

	var accepted map[string]any
	w = s.do(http.MethodPost, "/invitations/invite-token-a/accept", "agent-1", nil, &accepted)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, orgID, accepted["org_id"])

	// consumed exactly once
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPost, "/invitations/invite-token-a/accept", "agent-2", nil, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/invitations/invite-token-a", "", nil, nil).Code)

	var me struct {
		OrgID string      `json:"org_id"`
		Role  domain.Role `json:"role"`
	}
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/me", "agent-1", nil, &me).Code)
	assert.Equal(t, orgID, me.OrgID)
	assert.Equal(t, domain.RoleAgent, me.Role)

	// agents cannot invite
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPost, "/api/invitations", "agent-1", map[string]any{"email": "x@y.com", "role": "agent"}, nil).Code)
}

func TestInvitation_ExpiresAndRevokes(t *testing.T) {
	s := newTestServer(t)
	s.setupOrg()

	var inv domain.Invitation
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/invitations", "owner", map[string]any{"email": "a@b.com", "role": "director"}, &inv).Code)

	var pending struct {
		Data []domain.Invitation `json:"data"`
	}
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/invitations", "owner", nil, &pending).Code)
	require.Len(t, pending.Data, 1)

	require.Equal(t, http.StatusNoContent, s.do(http.MethodDelete, "/api/invitations/"+inv.ID, "owner", nil, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/invitations/"+inv.Token, "", nil, nil).Code)

	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/invitations", "owner", map[string]any{"email": "c@d.com", "role": "agent"}, &inv).Code)
	s.now = s.now.Add(domain.InvitationTTL + time.Minute)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPost, "/invitations/"+inv.Token+"/accept", "late", nil, nil).Code)
}

func TestInvitation_OwnerRoleRejected(t *testing.T) {
	s := newTestServer(t)
	s.setupOrg()
	w := s.do(http.MethodPost, "/api/invitations", "owner", map[string]any{"email": "a@b.com", "role": "owner"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAthletesAndContracts(t *testing.T) {
	s := newTestServer(t)
	s.setupOrg()

	var a domain.Athlete
	w := s.do(http.MethodPost, "/api/athletes", "owner", map[string]any{
		"first_name": "Jalen", "last_name": "Brooks", "sport": "Football", "nil_value": 250000,
		"scouting_reports": []map[string]any{{"evaluation": "Elite **burst**", "grade": "A", "date": "2026-02-01T00:00:00Z"}},
	}, &a)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/athletes", "owner", map[string]any{
		"first_name": "Avery", "last_name": "Cole", "sport": "Basketball",
	}, nil).Code)

	var list struct {
		Data       []domain.Athlete `json:"data"`
		Pagination struct {
			Total int `json:"total"`
		} `json:"pagination"`
	}
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/athletes?q=jal", "owner", nil, &list).Code)
	require.Len(t, list.Data, 1)
	assert.Equal(t, a.ID, list.Data[0].ID)
	assert.Equal(t, 1, list.Pagination.Total)

	var reports struct {
		Data []struct {
			EvaluationHTML string `json:"evaluation_html"`
		} `json:"data"`
	}
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/athletes/"+a.ID+"/scouting-reports", "owner", nil, &reports).Code)
	require.Len(t, reports.Data, 1)
	assert.Contains(t, reports.Data[0].EvaluationHTML, "<strong>burst</strong>")

	var c domain.Contract
	w = s.do(http.MethodPost, "/api/contracts", "owner", map[string]any{
		"athlete_id": a.ID, "title": "Shoe deal", "partner": "Stride", "type": "endorsement",
		"value": 1000000, "start_date": "2026-03-01T00:00:00Z",
		"payment_schedule": []map[string]any{
			{"amount": 400000, "due_date": "2026-04-01T00:00:00Z"},
			{"amount": 600000, "due_date": "2026-05-01T00:00:00Z"},
		},
	}, &c)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, domain.ContractDraft, c.Status)
	assert.Equal(t, "Jalen Brooks", c.AthleteName())

	w = s.do(http.MethodPatch, "/api/contracts/"+c.ID+"/payments/1/paid", "owner", nil, &c)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, c.PaymentSchedule[1].Paid)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPatch, "/api/contracts/"+c.ID+"/payments/x/paid", "owner", nil, nil).Code)

	w = s.do(http.MethodGet, "/api/contracts/"+c.ID+"/pdf", "owner", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")))

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/athletes/missing", "owner", nil, nil).Code)
	assert.Equal(t, http.StatusNoContent, s.do(http.MethodDelete, "/api/athletes/"+a.ID, "owner", nil, nil).Code)
}

func TestPermissions_AgentLimits(t *testing.T) {
	s := newTestServer(t)
	s.setupOrg()

	var inv domain.Invitation
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/invitations", "owner", map[string]any{"email": "agent@agency.com", "role": "agent"}, &inv).Code)
	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/invitations/"+inv.Token+"/accept", "agent-1", nil, nil).Code)

	var a domain.Athlete
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/athletes", "agent-1", map[string]any{"first_name": "A", "last_name": "B"}, &a).Code)

	assert.Equal(t, http.StatusForbidden, s.do(http.MethodDelete, "/api/athletes/"+a.ID, "agent-1", nil, nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPost, "/api/contracts", "agent-1", map[string]any{}, nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPatch, "/api/organization", "agent-1", map[string]any{"name": "X"}, nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/api/organization/members", "agent-1", nil, nil).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/organization", "agent-1", nil, nil).Code)
}

func TestOrganizationMembers(t *testing.T) {
	s := newTestServer(t)
	s.setupOrg()

	var inv domain.Invitation
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/invitations", "owner", map[string]any{"email": "s@agency.com", "role": "support_staff"}, &inv).Code)
	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/invitations/"+inv.Token+"/accept", "staff-1", nil, nil).Code)

	var members struct {
		Data []domain.OrganizationMember `json:"data"`
	}
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/organization/members", "owner", nil, &members).Code)
	require.Len(t, members.Data, 2)

	var staff, owner domain.OrganizationMember
	for _, m := range members.Data {
		if m.UserID == "staff-1" {
			staff = m
		} else {
			owner = m
		}
	}

	var updated domain.OrganizationMember
	w := s.do(http.MethodPatch, "/api/organization/members/"+staff.ID, "owner", map[string]any{"role": "director"}, &updated)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, domain.RoleDirector, updated.Role)

	var me struct {
		Role domain.Role `json:"role"`
	}
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/me", "staff-1", nil, &me).Code)
	assert.Equal(t, domain.RoleDirector, me.Role)

	assert.Equal(t, http.StatusForbidden, s.do(http.MethodDelete, "/api/organization/members/"+owner.ID, "owner", nil, nil).Code)
	assert.Equal(t, http.StatusNoContent, s.do(http.MethodDelete, "/api/organization/members/"+staff.ID, "owner", nil, nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/api/me", "staff-1", nil, nil).Code)
}

func TestCalendar(t *testing.T) {
	s := newTestServer(t)
	s.setupOrg()

	var contact domain.Contact
	w := s.do(http.MethodPost, "/api/contacts", "owner", map[string]any{"first_name": "Dana", "last_name": "Scout", "contact_type": "scout", "email": "dana@scouts.com"}, &contact)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var event domain.CalendarEvent
	w = s.do(http.MethodPost, "/api/calendar/events", "owner", map[string]any{
		"title": "Rivalry game", "type": "game", "starts_at": "2026-03-14T18:00:00Z", "opponent": "State",
	}, &event)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/api/calendar/events/"+event.ID+"/attending-members", "owner", map[string]any{"contact_id": contact.ID}, &event)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/calendar/tasks", "owner", map[string]any{
		"title": "Send film", "date": "2026-03-14T09:00:00Z",
	}, nil).Code)
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/calendar/tasks", "owner", map[string]any{
		"title": "Next month", "date": "2026-04-20T09:00:00Z",
	}, nil).Code)

	var month struct {
		Days   []string                         `json:"days"`
		Events map[string][]any                 `json:"events"`
		Tasks  map[string][]domain.CalendarTask `json:"tasks"`
	}
	w = s.do(http.MethodGet, "/api/calendar?from=2026-03-01&to=2026-04-01", "owner", nil, &month)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []string{"2026-03-14"}, month.Days)
	assert.Len(t, month.Events["2026-03-14"], 1)
	assert.Len(t, month.Tasks["2026-03-14"], 1)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/calendar?from=soon", "owner", nil, nil).Code)

	w = s.do(http.MethodPatch, "/api/calendar/events/"+event.ID+"/fulfilled", "owner", nil, &event)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, event.Fulfilled)

	w = s.do(http.MethodGet, "/api/calendar/overview", "owner", nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"name":"Dana Scout"`)
}
