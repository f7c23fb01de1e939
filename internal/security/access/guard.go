// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package access

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
)

// ErrEmptyRoleSet is returned when a guard is declared without allowed roles.
var ErrEmptyRoleSet = errors.New("access: guard needs at least one allowed role")

// CredentialReader exposes the persisted session to the guard.
type CredentialReader interface {
	// Token returns the stored bearer token.
	Token() (string, bool)
	// RawUser returns the stored user record as JSON.
	RawUser() (string, bool)
}

// Decision is the outcome of a guard check.
type Decision struct {
	Allow    bool
	Redirect string
	Reason   string
}

// Guard protects a screen with an allowed-role set. AnyRole admits every
// signed-in principal, including roles the client does not know.
type Guard struct {
	Name      string
	Allowed   []Role
	AnyRole   bool
	LoginPath string
}

// NewGuard validates and returns a guard.
func NewGuard(name string, allowed []Role, loginPath string) (Guard, error) {
	if len(allowed) == 0 {
		return Guard{}, fmt.Errorf("%w: %s", ErrEmptyRoleSet, name)
	}
	if loginPath == "" {
		loginPath = LoginPath
	}
	return Guard{Name: name, Allowed: allowed, LoginPath: loginPath}, nil
}

func mustGuard(name string, allowed []Role, loginPath string) Guard {
	g, err := NewGuard(name, allowed, loginPath)
	if err != nil {
		panic(err)
	}
	return g
}

// SuperAdmin guards the top-level admin area.
func SuperAdmin() Guard {
	return mustGuard("super-admin", TopAdminRoles, AdminSiteLoginPath)
}

// ParishAdmin guards the parish staff area.
func ParishAdmin() Guard {
	return mustGuard("parish-admin", ParishRoles, AdminParoquiaLoginPath)
}

// PublicUser guards member-only screens.
func PublicUser() Guard {
	return mustGuard("public-user", MemberRoles, LoginPath)
}

// Private guards screens open to any signed-in principal. It only checks
// that a session is present.
func Private() Guard {
	g := mustGuard("private", AllRoles, LoginPath)
	g.AnyRole = true
	return g
}

// Permits reports whether r is in the allowed set.
func (g Guard) Permits(r Role) bool {
	return g.AnyRole || contains(g.Allowed, r)
}

type storedUser struct {
	Role string `json:"role"`
	Tipo string `json:"tipo"`
}

// Check evaluates the persisted session against the guard. It is meant to
// run on every render.
func (g Guard) Check(creds CredentialReader) Decision {
	token, hasToken := creds.Token()
	raw, hasUser := creds.RawUser()
	if !hasToken || token == "" || !hasUser || raw == "" {
		return Decision{Redirect: g.LoginPath, Reason: "no session"}
	}

	var u storedUser
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		log.Printf("ACCESS_CHECK_FAILED | guard=%s error=%v", g.Name, err)
		return Decision{Redirect: g.LoginPath, Reason: "corrupt user record"}
	}

	tag := u.Tipo
	if tag == "" {
		tag = u.Role
	}
	role := ParseRole(tag)
	if !g.Permits(role) {
		log.Printf("ACCESS_DENIED | guard=%s role=%q allowed=%s", g.Name, role, joinRoles(g.Allowed))
		return Decision{Redirect: LandingFor(role), Reason: "role not allowed"}
	}

	return Decision{Allow: true}
}

func joinRoles(roles []Role) string {
	parts := make([]string, len(roles))
	for i, r := range roles {
		parts[i] = string(r)
	}
	return strings.Join(parts, ",")
}
