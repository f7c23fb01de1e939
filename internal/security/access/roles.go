// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package access

import "strings"

// =============================================================================
// ROLES
// =============================================================================

// Role is a principal's role tag as sent by the backend.
type Role string

const (
	// RoleSuperAdmin manages the whole installation.
	RoleSuperAdmin Role = "super_admin"
	// RoleAdminSite is an alias some backends send for RoleSuperAdmin.
	RoleAdminSite Role = "admin_site"

	// Parish staff.
	RoleParishAdmin     Role = "paroquia_admin"
	RoleParishCashier   Role = "paroquia_caixa"
	RoleParishReception Role = "paroquia_recepcao"
	RoleParishBingo     Role = "paroquia_bingo"
	// RoleParishAdminLegacy is the role name used by older backends.
	RoleParishAdminLegacy Role = "parish_admin"

	// RoleFaithful is an ordinary member.
	RoleFaithful Role = "fiel"
	// RoleFaithfulLegacy is the role name used by older backends.
	RoleFaithfulLegacy Role = "faithful"
)

// AllRoles lists every known role.
var AllRoles = []Role{
	RoleSuperAdmin, RoleAdminSite,
	RoleParishAdmin, RoleParishCashier, RoleParishReception, RoleParishBingo, RoleParishAdminLegacy,
	RoleFaithful, RoleFaithfulLegacy,
}

// ParishRoles is the parish staff family.
var ParishRoles = []Role{
	RoleParishAdmin, RoleParishCashier, RoleParishReception, RoleParishBingo, RoleParishAdminLegacy,
}

// TopAdminRoles is the top-level admin family.
var TopAdminRoles = []Role{RoleSuperAdmin, RoleAdminSite}

// MemberRoles is the ordinary member family.
var MemberRoles = []Role{RoleFaithful, RoleFaithfulLegacy}

// ParseRole normalises a raw role tag. Unknown tags are returned as-is so the
// guard can reject them.
func ParseRole(s string) Role {
	return Role(strings.ToLower(strings.TrimSpace(s)))
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return contains(AllRoles, r)
}

// IsTopAdmin reports whether r belongs to the top-level admin family.
func (r Role) IsTopAdmin() bool {
	return contains(TopAdminRoles, r)
}

// IsParish reports whether r belongs to the parish staff family.
func (r Role) IsParish() bool {
	return contains(ParishRoles, r)
}

// String returns the role tag.
func (r Role) String() string {
	return string(r)
}

// Label returns a short human-readable name for the role.
func (r Role) Label() string {
	switch {
	case r.IsTopAdmin():
		return "Super Admin"
	case r == RoleParishCashier:
		return "Caixa"
	case r == RoleParishReception:
		return "Recepção"
	case r == RoleParishBingo:
		return "Operador de Bingo"
	case r.IsParish():
		return "Admin Paroquial"
	case r == RoleFaithful || r == RoleFaithfulLegacy:
		return "Fiel"
	default:
		return "Desconhecido"
	}
}

func contains(set []Role, r Role) bool {
	for _, candidate := range set {
		if candidate == r {
			return true
		}
	}
	return false
}

// =============================================================================
// PATHS
// =============================================================================

// Path prefixes of the privileged areas.
const (
	AdminSitePrefix     = "/admin-site"
	AdminParoquiaPrefix = "/admin-paroquia"
)

// Entry points and landing pages.
const (
	LoginPath              = "/login"
	AdminSiteLoginPath     = AdminSitePrefix + "/login"
	AdminParoquiaLoginPath = AdminParoquiaPrefix + "/login"

	DashboardPath              = "/dashboard"
	AdminSiteDashboardPath     = AdminSitePrefix + "/dashboard"
	AdminParoquiaDashboardPath = AdminParoquiaPrefix + "/dashboard"
)

// InArea reports whether path lies under prefix ("/admin-site" matches
// "/admin-site" and "/admin-site/x" but not "/admin-sitemap").
func InArea(path, prefix string) bool {
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	rest := path[len(prefix):]
	return rest == "" || rest[0] == '/' || rest[0] == '?'
}

// EntryPointFor picks the login screen for a forced sign-out from path.
func EntryPointFor(path string) string {
	switch {
	case InArea(path, AdminSitePrefix):
		return AdminSiteLoginPath
	case InArea(path, AdminParoquiaPrefix):
		return AdminParoquiaLoginPath
	default:
		return LoginPath
	}
}

// LandingFor returns the dashboard a principal with role r belongs on.
func LandingFor(r Role) string {
	switch {
	case r.IsTopAdmin():
		return AdminSiteDashboardPath
	case r.IsParish():
		return AdminParoquiaDashboardPath
	default:
		return DashboardPath
	}
}
