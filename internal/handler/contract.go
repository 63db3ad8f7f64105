package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rosterdesk/platform/internal/document"
	"github.com/rosterdesk/platform/internal/domain"
	"github.com/rosterdesk/platform/internal/filter"
	"github.com/rosterdesk/platform/internal/service"
)

// ContractHandler handles contract endpoints.
type ContractHandler struct {
	contracts *service.ContractService
	now       func() time.Time
}

// NewContractHandler creates a new ContractHandler.
func NewContractHandler(contracts *service.ContractService, now func() time.Time) *ContractHandler {
	if now == nil {
		now = time.Now
	}
	return &ContractHandler{contracts: contracts, now: now}
}

// List handles GET /api/contracts.
func (h *ContractHandler) List(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFrom(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	items, err := h.contracts.List(r.Context(), scope, filter.ParseContractFilter(r.URL.Query()))
	if err != nil {
		RespondError(w, err)
		return
	}
	respondPage(w, r, items)
}

// Get handles GET /api/contracts/{id}.
func (h *ContractHandler) Get(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFrom(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	c, err := h.contracts.Get(r.Context(), scope, chi.URLParam(r, "id"))
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, c)
}

// Create handles POST /api/contracts.
func (h *ContractHandler) Create(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFrom(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	var in domain.Contract
	if err := DecodeJSON(r, &in); err != nil {
		RespondError(w, err)
		return
	}
	c, err := h.contracts.Create(r.Context(), scope, &in)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, c)
}

// Update handles PUT /api/contracts/{id}.
func (h *ContractHandler) Update(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFrom(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	var in domain.Contract
	if err := DecodeJSON(r, &in); err != nil {
		RespondError(w, err)
		return
	}
	c, err := h.contracts.Update(r.Context(), scope, chi.URLParam(r, "id"), &in)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, c)
}

// Delete handles DELETE /api/contracts/{id}.
func (h *ContractHandler) Delete(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFrom(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	if err := h.contracts.Delete(r.Context(), scope, chi.URLParam(r, "id")); err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusNoContent, nil)
}

// TogglePaymentPaid handles PATCH /api/contracts/{id}/payments/{index}/paid.
func (h *ContractHandler) TogglePaymentPaid(w http.ResponseWriter, r *http.Request) {
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
	c, err := h.contracts.TogglePaymentPaid(r.Context(), scope, chi.URLParam(r, "id"), index)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, c)
}

// PDF handles GET /api/contracts/{id}/pdf. The document is rendered into
// memory first so a failure can still produce a JSON error.
func (h *ContractHandler) PDF(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFrom(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	c, err := h.contracts.Get(r.Context(), scope, chi.URLParam(r, "id"))
	if err != nil {
		RespondError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := document.ContractPDF(&buf, c, scope.OrgName, h.now()); err != nil {
		RespondError(w, domain.ErrInternal("render contract pdf", err))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="contract-%s.pdf"`, c.ID))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}
