package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rosterdesk/platform/internal/domain"
	"github.com/rosterdesk/platform/internal/service"
	"github.com/rosterdesk/platform/internal/tenant"
)

// OrganizationHandler handles organization, membership and "me" endpoints.
type OrganizationHandler struct {
	orgs        *service.OrganizationService
	memberships service.MembershipInvalidator
}

// NewOrganizationHandler creates a new OrganizationHandler. memberships is
// flushed for the caller before a refresh re-resolves their scope.
func NewOrganizationHandler(orgs *service.OrganizationService, memberships service.MembershipInvalidator) *OrganizationHandler {
	return &OrganizationHandler{orgs: orgs, memberships: memberships}
}

// Create handles POST /api/organizations. The caller becomes the owner.
func (h *OrganizationHandler) Create(w http.ResponseWriter, r *http.Request) {
	sub, err := subjectFrom(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	var in service.OrganizationInput
	if err := DecodeJSON(r, &in); err != nil {
		RespondError(w, err)
		return
	}
	org, err := h.orgs.Create(r.Context(), sub, in)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, org)
}

// ListMine handles GET /api/organizations.
func (h *OrganizationHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	sub, err := subjectFrom(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	orgs, err := h.orgs.ListForUser(r.Context(), sub)
	if err != nil {
		RespondError(w, err)
		return
	}
	if orgs == nil {
		orgs = []domain.Organization{}
	}
	RespondJSON(w, http.StatusOK, map[string]any{"data": orgs})
}

// Me handles GET /api/me.
func (h *OrganizationHandler) Me(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFrom(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, h.orgs.Me(scope))
}

// Refresh handles POST /api/me/refresh: it drops the cached membership and
// resolves the caller's organization again.
func (h *OrganizationHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	resolver, ok := tenant.ResolverFromContext(r.Context())
	if !ok {
		RespondError(w, domain.ErrUnauthorized("no organization context"))
		return
	}
	if sub, err := subjectFrom(r); err == nil {
		h.memberships.Invalidate(sub)
	}
	scope, err := resolver.Refresh(r.Context())
	if err != nil {
		RespondError(w, tenantError(err))
		return
	}
	RespondJSON(w, http.StatusOK, h.orgs.Me(scope))
}

// Get handles GET /api/organization.
func (h *OrganizationHandler) Get(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFrom(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	org, err := h.orgs.Get(r.Context(), scope)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, org)
}

// Update handles PATCH /api/organization.
func (h *OrganizationHandler) Update(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFrom(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	var in service.OrganizationInput
	if err := DecodeJSON(r, &in); err != nil {
		RespondError(w, err)
		return
	}
	org, err := h.orgs.Update(r.Context(), scope, in)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, org)
}

// Members handles GET /api/organization/members.
func (h *OrganizationHandler) Members(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFrom(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	members, err := h.orgs.Members(r.Context(), scope)
	if err != nil {
		RespondError(w, err)
		return
	}
	if members == nil {
		members = []domain.OrganizationMember{}
	}
	RespondJSON(w, http.StatusOK, map[string]any{"data": members})
}

type changeRoleRequest struct {
	Role domain.Role `json:"role"`
}

// ChangeMemberRole handles PATCH /api/organization/members/{id}.
func (h *OrganizationHandler) ChangeMemberRole(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFrom(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	var req changeRoleRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, err)
		return
	}
	m, err := h.orgs.ChangeMemberRole(r.Context(), scope, chi.URLParam(r, "id"), req.Role)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, m)
}

// RemoveMember handles DELETE /api/organization/members/{id}.
func (h *OrganizationHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFrom(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	if err := h.orgs.RemoveMember(r.Context(), scope, chi.URLParam(r, "id")); err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusNoContent, nil)
}
