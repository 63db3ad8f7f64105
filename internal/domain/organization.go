package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Organization is the tenant boundary. Every other entity carries its ID.
type Organization struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Slug      string         `json:"slug"`
	Settings  map[string]any `json:"settings"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Role is a named permission bundle held by a user within one organization.
type Role string

// Canonical roles. These are the only values written to storage.
const (
	RoleOwner         Role = "owner"
	RoleDirectorAdmin Role = "director_admin"
	RoleDirector      Role = "director"
	RoleAgent         Role = "agent"
	RoleSupportStaff  Role = "support_staff"
)

// AllRoles returns the canonical roles, most privileged first.
func AllRoles() []Role {
	return []Role{RoleOwner, RoleDirectorAdmin, RoleDirector, RoleAgent, RoleSupportStaff}
}

// Outranks reports whether r is strictly more privileged than other.
// Unknown roles rank below every canonical role.
func (r Role) Outranks(other Role) bool {
	return r.rank() < other.rank()
}

func (r Role) rank() int {
	for i, role := range AllRoles() {
		if role == r {
			return i
		}
	}
	return len(AllRoles())
}

// legacyRoles maps the older storage-schema role names onto the canonical set.
var legacyRoles = map[string]Role{
	"admin":     RoleDirectorAdmin,
	"staff":     RoleSupportStaff,
	"analyst":   RoleSupportStaff,
	"read_only": RoleSupportStaff,
}

// ErrInvalidRole is returned by ParseRole for unknown role names.
var ErrInvalidRole = errors.New("invalid role")

// ParseRole parses a canonical role name. Rows written under the legacy
// schema are migrated on read.
func ParseRole(s string) (Role, error) {
	r := Role(strings.TrimSpace(s))
	if r.Valid() {
		return r, nil
	}
	if mapped, ok := legacyRoles[string(r)]; ok {
		return mapped, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
}

// Valid reports whether r is one of the canonical roles.
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleDirectorAdmin, RoleDirector, RoleAgent, RoleSupportStaff:
		return true
	}
	return false
}

// OrganizationMember links a user to an organization with a role.
type OrganizationMember struct {
	ID        string    `json:"id"`
	OrgID     string    `json:"org_id"`
	UserID    string    `json:"user_id"`
	Role      Role      `json:"role"`
	InvitedBy *string   `json:"invited_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Membership is the resolved (organization, role) pair for a user.
type Membership struct {
	OrgID   string `json:"org_id"`
	OrgName string `json:"org_name"`
	Role    Role   `json:"role"`
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a URL slug from an organization name.
func Slugify(name string) string {
	s := slugStrip.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(s, "-")
}

// UnmarshalText maps legacy role names onto the canonical set. Unknown
// names are kept verbatim so they grant nothing.
func (r *Role) UnmarshalText(b []byte) error {
	parsed, err := ParseRole(string(b))
	if err != nil {
		*r = Role(b)
		return nil
	}
	*r = parsed
	return nil
}
