package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rosterdesk/platform/internal/domain"
	"github.com/rosterdesk/platform/internal/filter"
	"github.com/rosterdesk/platform/internal/service"
)

// AthleteHandler handles roster endpoints.
type AthleteHandler struct {
	athletes *service.AthleteService
}

// NewAthleteHandler creates a new AthleteHandler.
func NewAthleteHandler(athletes *service.AthleteService) *AthleteHandler {
	return &AthleteHandler{athletes: athletes}
}

// List handles GET /api/athletes.
func (h *AthleteHandler) List(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFrom(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	items, err := h.athletes.List(r.Context(), scope, filter.ParseAthleteFilter(r.URL.Query()))
	if err != nil {
		RespondError(w, err)
		return
	}
	respondPage(w, r, items)
}

// Get handles GET /api/athletes/{id}.
func (h *AthleteHandler) Get(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFrom(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	a, err := h.athletes.Get(r.Context(), scope, chi.URLParam(r, "id"))
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, a)
}

// Create handles POST /api/athletes.
func (h *AthleteHandler) Create(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFrom(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	var in domain.Athlete
	if err := DecodeJSON(r, &in); err != nil {
		RespondError(w, err)
		return
	}
	a, err := h.athletes.Create(r.Context(), scope, &in)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, a)
}

// Update handles PUT /api/athletes/{id}.
func (h *AthleteHandler) Update(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFrom(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	var in domain.Athlete
	if err := DecodeJSON(r, &in); err != nil {
		RespondError(w, err)
		return
	}
	a, err := h.athletes.Update(r.Context(), scope, chi.URLParam(r, "id"), &in)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, a)
}

// Delete handles DELETE /api/athletes/{id}.
func (h *AthleteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFrom(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	if err := h.athletes.Delete(r.Context(), scope, chi.URLParam(r, "id")); err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusNoContent, nil)
}

// ToggleEventFulfilled handles PATCH /api/athletes/{id}/events/{index}/fulfilled.
func (h *AthleteHandler) ToggleEventFulfilled(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFrom(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	index, err := pathIndex(r, "index")
	if err != nil {
		RespondError(w, err)
		return
	}
	a, err := h.athletes.ToggleEventFulfilled(r.Context(), scope, chi.URLParam(r, "id"), index)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, a)
}

// ScoutingReports handles GET /api/athletes/{id}/scouting-reports.
func (h *AthleteHandler) ScoutingReports(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFrom(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	reports, err := h.athletes.ScoutingReports(r.Context(), scope, chi.URLParam(r, "id"))
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]any{"data": reports})
}
