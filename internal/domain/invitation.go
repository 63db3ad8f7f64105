package domain

import "time"

// InvitationTTL is how long an invitation stays acceptable after creation.
const InvitationTTL = 7 * 24 * time.Hour

// Invitation grants Role in an organization to whoever accepts Token.
// AcceptedAt is nil until the invitation is consumed, which happens at most once.
type Invitation struct {
	ID           string        `json:"id"`
	OrgID        string        `json:"org_id"`
	Email        string        `json:"email"`
	Role         Role          `json:"role"`
	Token        string        `json:"token"`
	InvitedBy    string        `json:"invited_by"`
	ExpiresAt    time.Time     `json:"expires_at"`
	AcceptedAt   *time.Time    `json:"accepted_at,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	Organization *Organization `json:"organization,omitempty"`
}

// Consumable reports whether the invitation can still be accepted at now.
func (i *Invitation) Consumable(now time.Time) bool {
	return i.AcceptedAt == nil && i.ExpiresAt.After(now)
}
