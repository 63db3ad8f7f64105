package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rosterdesk/platform/internal/calendar"
	"github.com/rosterdesk/platform/internal/domain"
	"github.com/rosterdesk/platform/internal/service"
)

// CalendarHandler handles calendar event and task endpoints.
type CalendarHandler struct {
	calendar *service.CalendarService
}

// NewCalendarHandler creates a new CalendarHandler.
func NewCalendarHandler(cal *service.CalendarService) *CalendarHandler {
	return &CalendarHandler{calendar: cal}
}

// Month handles GET /api/calendar?from=&to=.
func (h *CalendarHandler) Month(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFrom(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	from, to, err := parseWindow(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	m, err := h.calendar.Month(r.Context(), scope, from, to)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, m)
}

// Overview handles GET /api/calendar/overview?from=&to=.
func (h *CalendarHandler) Overview(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFrom(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	from, to, err := parseWindow(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	o, err := h.calendar.Overview(r.Context(), scope, from, to)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, o)
}

// GetEvent handles GET /api/calendar/events/{id}.
func (h *CalendarHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFrom(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	e, err := h.calendar.GetEvent(r.Context(), scope, chi.URLParam(r, "id"))
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, e)
}

// CreateEvent handles POST /api/calendar/events.
func (h *CalendarHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFrom(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	var d calendar.Draft
	if err := DecodeJSON(r, &d); err != nil {
		RespondError(w, err)
		return
	}
	e, err := h.calendar.CreateEvent(r.Context(), scope, d)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, e)
}

// UpdateEvent handles PUT /api/calendar/events/{id}.
func (h *CalendarHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFrom(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	var d calendar.Draft
	if err := DecodeJSON(r, &d); err != nil {
		RespondError(w, err)
		return
	}
	e, err := h.calendar.UpdateEvent(r.Context(), scope, chi.URLParam(r, "id"), d)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, e)
}

// DeleteEvent handles DELETE /api/calendar/events/{id}.
func (h *CalendarHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFrom(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	if err := h.calendar.DeleteEvent(r.Context(), scope, chi.URLParam(r, "id")); err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusNoContent, nil)
}

// ToggleEventFulfilled handles PATCH /api/calendar/events/{id}/fulfilled.
func (h *CalendarHandler) ToggleEventFulfilled(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFrom(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	e, err := h.calendar.ToggleEventFulfilled(r.Context(), scope, chi.URLParam(r, "id"))
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, e)
}

type attendingMemberRequest struct {
	ContactID string `json:"contact_id"`
}

// AddAttendingMember handles POST /api/calendar/events/{id}/attending-members.
func (h *CalendarHandler) AddAttendingMember(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFrom(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	var req attendingMemberRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, err)
		return
	}
	if req.ContactID == "" {
		RespondError(w, domain.ErrValidation("contact_id is required"))
		return
	}
	e, err := h.calendar.AddAttendingMember(r.Context(), scope, chi.URLParam(r, "id"), req.ContactID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, e)
}

// RemoveAttendingMember handles DELETE /api/calendar/events/{id}/attending-members/{contactID}.
func (h *CalendarHandler) RemoveAttendingMember(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFrom(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	e, err := h.calendar.RemoveAttendingMember(r.Context(), scope, chi.URLParam(r, "id"), chi.URLParam(r, "contactID"))
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, e)
}

// CreateTask handles POST /api/calendar/tasks.
func (h *CalendarHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFrom(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	var in service.TaskInput
	if err := DecodeJSON(r, &in); err != nil {
		RespondError(w, err)
		return
	}
	t, err := h.calendar.CreateTask(r.Context(), scope, in)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, t)
}

// UpdateTask handles PUT /api/calendar/tasks/{id}.
func (h *CalendarHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFrom(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	var in service.TaskInput
	if err := DecodeJSON(r, &in); err != nil {
		RespondError(w, err)
		return
	}
	t, err := h.calendar.UpdateTask(r.Context(), scope, chi.URLParam(r, "id"), in)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, t)
}

// DeleteTask handles DELETE /api/calendar/tasks/{id}.
func (h *CalendarHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFrom(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	if err := h.calendar.DeleteTask(r.Context(), scope, chi.URLParam(r, "id")); err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusNoContent, nil)
}

// ToggleTaskCompleted handles PATCH /api/calendar/tasks/{id}/completed.
func (h *CalendarHandler) ToggleTaskCompleted(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFrom(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	t, err := h.calendar.ToggleTaskCompleted(r.Context(), scope, chi.URLParam(r, "id"))
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, t)
}

// parseWindow reads the optional from/to query parameters. Both accept a
// calendar date (2006-01-02) or an RFC 3339 timestamp.
func parseWindow(r *http.Request) (from, to *time.Time, err error) {
	q := r.URL.Query()
	if from, err = parseInstant(q.Get("from"), "from"); err != nil {
		return nil, nil, err
	}
	if to, err = parseInstant(q.Get("to"), "to"); err != nil {
		return nil, nil, err
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, nil, domain.ErrValidation("to must not be before from")
	}
	return from, to, nil
}

func parseInstant(s, name string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, domain.ErrValidation(name + " must be a date (YYYY-MM-DD) or RFC 3339 timestamp")
}
