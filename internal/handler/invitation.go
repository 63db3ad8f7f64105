package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rosterdesk/platform/internal/domain"
	"github.com/rosterdesk/platform/internal/guard"
	"github.com/rosterdesk/platform/internal/service"
)

// InvitationHandler handles invitation management and the public accept flow.
type InvitationHandler struct {
	invitations *service.InvitationService
	perOrg      *guard.RateLimiter
}

// NewInvitationHandler creates a new InvitationHandler. perOrg limits how
// many invitations one organization may send per window.
func NewInvitationHandler(invitations *service.InvitationService, perOrg *guard.RateLimiter) *InvitationHandler {
	return &InvitationHandler{invitations: invitations, perOrg: perOrg}
}

// Create handles POST /api/invitations.
func (h *InvitationHandler) Create(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFrom(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	var in service.InviteInput
	if err := DecodeJSON(r, &in); err != nil {
		RespondError(w, err)
		return
	}
	if res := h.perOrg.Check(r.Context(), "invite:"+scope.OrgID); !res.Allowed {
		rateLimitedCounter.WithLabelValues("invite").Inc()
		RespondJSON(w, http.StatusTooManyRequests, map[string]string{
			"code":    "RATE_LIMITED",
			"message": res.Reason,
		})
		return
	}
	inv, err := h.invitations.Invite(r.Context(), scope, in)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, inv)
}

// ListPending handles GET /api/invitations.
func (h *InvitationHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFrom(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	invs, err := h.invitations.ListPending(r.Context(), scope)
	if err != nil {
		RespondError(w, err)
		return
	}
	if invs == nil {
		invs = []domain.Invitation{}
	}
	RespondJSON(w, http.StatusOK, map[string]any{"data": invs})
}

// Revoke handles DELETE /api/invitations/{id}.
func (h *InvitationHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFrom(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	if err := h.invitations.Revoke(r.Context(), scope, chi.URLParam(r, "id")); err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusNoContent, nil)
}

// invitationPreview is what an unauthenticated holder of the token may see.
type invitationPreview struct {
	OrgName   string      `json:"org_name"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// Preview handles GET /invitations/{token}.
func (h *InvitationHandler) Preview(w http.ResponseWriter, r *http.Request) {
	inv, err := h.invitations.Get(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		RespondError(w, err)
		return
	}
	p := invitationPreview{Email: inv.Email, Role: inv.Role, ExpiresAt: inv.ExpiresAt}
	if inv.Organization != nil {
		p.OrgName = inv.Organization.Name
	}
	RespondJSON(w, http.StatusOK, p)
}

// Accept handles POST /invitations/{token}/accept for the signed-in caller.
func (h *InvitationHandler) Accept(w http.ResponseWriter, r *http.Request) {
	sub, err := subjectFrom(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	inv, err := h.invitations.Accept(r.Context(), chi.URLParam(r, "token"), sub)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]any{
		"org_id": inv.OrgID,
		"role":   inv.Role,
	})
}
