package auth

import "github.com/rosterdesk/platform/internal/domain"

// Permission names an action gated by organization role.
type Permission string

const (
	PermManageOrganization Permission = "manage_organization"
	PermManageMembers      Permission = "manage_members"
	PermInviteMembers      Permission = "invite_members"
	PermViewAthletes       Permission = "view_athletes"
	PermManageAthletes     Permission = "manage_athletes"
	PermDeleteAthletes     Permission = "delete_athletes"
	PermViewContacts       Permission = "view_contacts"
	PermManageContacts     Permission = "manage_contacts"
	PermViewContracts      Permission = "view_contracts"
	PermManageContracts    Permission = "manage_contracts"
	PermViewFinancials     Permission = "view_financials"
	PermViewCalendar       Permission = "view_calendar"
	PermManageCalendar     Permission = "manage_calendar"
)

// AllPermissions returns every permission.
func AllPermissions() []Permission {
	return []Permission{
		PermManageOrganization, PermManageMembers, PermInviteMembers,
		PermViewAthletes, PermManageAthletes, PermDeleteAthletes,
		PermViewContacts, PermManageContacts,
		PermViewContracts, PermManageContracts, PermViewFinancials,
		PermViewCalendar, PermManageCalendar,
	}
}

var rolePermissions = map[domain.Role][]Permission{
	domain.RoleOwner: AllPermissions(),
	domain.RoleDirectorAdmin: {
		PermManageMembers, PermInviteMembers,
		PermViewAthletes, PermManageAthletes, PermDeleteAthletes,
		PermViewContacts, PermManageContacts,
		PermViewContracts, PermManageContracts, PermViewFinancials,
		PermViewCalendar, PermManageCalendar,
	},
	domain.RoleDirector: {
		PermInviteMembers,
		PermViewAthletes, PermManageAthletes,
		PermViewContacts, PermManageContacts,
		PermViewContracts, PermManageContracts, PermViewFinancials,
		PermViewCalendar, PermManageCalendar,
	},
	domain.RoleAgent: {
		PermViewAthletes, PermManageAthletes,
		PermViewContacts, PermManageContacts,
		PermViewContracts,
		PermViewCalendar, PermManageCalendar,
	},
	domain.RoleSupportStaff: {
		PermViewAthletes,
		PermViewContacts,
		PermViewCalendar, PermManageCalendar,
	},
}

// HasPermission reports whether role grants perm. Unknown roles grant nothing.
func HasPermission(role domain.Role, perm Permission) bool {
	for _, p := range rolePermissions[role] {
		if p == perm {
			return true
		}
	}
	return false
}

// PermissionsFor returns a copy of the permissions granted to role.
func PermissionsFor(role domain.Role) []Permission {
	return append([]Permission(nil), rolePermissions[role]...)
}
