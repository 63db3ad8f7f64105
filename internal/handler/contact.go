package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rosterdesk/platform/internal/domain"
	"github.com/rosterdesk/platform/internal/filter"
	"github.com/rosterdesk/platform/internal/service"
)

// ContactHandler handles contact book endpoints.
type ContactHandler struct {
	contacts *service.ContactService
}

// NewContactHandler creates a new ContactHandler.
func NewContactHandler(contacts *service.ContactService) *ContactHandler {
	return &ContactHandler{contacts: contacts}
}

// List handles GET /api/contacts.
func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFrom(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	items, err := h.contacts.List(r.Context(), scope, filter.ParseContactFilter(r.URL.Query()))
	if err != nil {
		RespondError(w, err)
		return
	}
	respondPage(w, r, items)
}

// Get handles GET /api/contacts/{id}.
func (h *ContactHandler) Get(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFrom(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	c, err := h.contacts.Get(r.Context(), scope, chi.URLParam(r, "id"))
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, c)
}

// Create handles POST /api/contacts.
func (h *ContactHandler) Create(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFrom(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	var in domain.Contact
	if err := DecodeJSON(r, &in); err != nil {
		RespondError(w, err)
		return
	}
	c, err := h.contacts.Create(r.Context(), scope, &in)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, c)
}

// Update handles PUT /api/contacts/{id}.
func (h *ContactHandler) Update(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFrom(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	var in domain.Contact
	if err := DecodeJSON(r, &in); err != nil {
		RespondError(w, err)
		return
	}
	c, err := h.contacts.Update(r.Context(), scope, chi.URLParam(r, "id"), &in)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, c)
}

// Delete handles DELETE /api/contacts/{id}.
func (h *ContactHandler) Delete(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFrom(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	if err := h.contacts.Delete(r.Context(), scope, chi.URLParam(r, "id")); err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusNoContent, nil)
}
