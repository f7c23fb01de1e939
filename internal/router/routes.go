// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package router

import (
	"github.com/bingocomunidade/bingo-tui/internal/security/access"
)

// Screen identifies the view a route renders.
type Screen string

const (
	ScreenHome                   Screen = "home"
	ScreenLogin                  Screen = "login"
	ScreenAdminSiteLogin         Screen = "admin_site_login"
	ScreenAdminParoquiaLogin     Screen = "admin_paroquia_login"
	ScreenFirstAccessSetup       Screen = "first_access_setup"
	ScreenDashboard              Screen = "dashboard"
	ScreenAdminSiteDashboard     Screen = "admin_site_dashboard"
	ScreenAdminSiteUsers         Screen = "admin_site_users"
	ScreenAdminParoquiaDashboard Screen = "admin_paroquia_dashboard"
	ScreenProfile                Screen = "profile"
	ScreenCart                   Screen = "cart"
	ScreenGame                   Screen = "game"
	ScreenHelp                   Screen = "help"
	ScreenNotFound               Screen = "not_found"
)

// HomePath is where unknown paths are sent.
const HomePath = "/"

// Route binds a path template to a screen. A nil Guard makes the route
// public. A route with RedirectTo set renders nothing and sends the user on.
type Route struct {
	Name       string
	Template   string
	Screen     Screen
	Guard      *access.Guard
	RedirectTo string
}

// Protected reports whether the route needs a session.
func (r Route) Protected() bool {
	return r.Guard != nil
}

func guarded(g access.Guard) *access.Guard {
	return &g
}

// DefaultRoutes returns the application's route table.
func DefaultRoutes() []Route {
	return []Route{
		{Name: "home", Template: "/", Screen: ScreenHome},
		{Name: "login", Template: access.LoginPath, Screen: ScreenLogin},
		{Name: "admin-site-login", Template: access.AdminSiteLoginPath, Screen: ScreenAdminSiteLogin},
		{Name: "admin-paroquia-login", Template: access.AdminParoquiaLoginPath, Screen: ScreenAdminParoquiaLogin},
		{Name: "first-access-setup", Template: "/first-access-setup", Screen: ScreenFirstAccessSetup},
		{Name: "help", Template: "/help", Screen: ScreenHelp},

		{Name: "admin-site-root", Template: access.AdminSitePrefix, RedirectTo: access.AdminSiteLoginPath},

		{Name: "dashboard", Template: access.DashboardPath, Screen: ScreenDashboard, Guard: guarded(access.Private())},
		{Name: "cart", Template: "/cart", Screen: ScreenCart, Guard: guarded(access.PublicUser())},
		{Name: "profile", Template: "/profile", Screen: ScreenProfile, Guard: guarded(access.Private())},
		{Name: "game", Template: "/games/{id:[0-9]+}", Screen: ScreenGame, Guard: guarded(access.Private())},

		{Name: "admin-site-dashboard", Template: access.AdminSiteDashboardPath, Screen: ScreenAdminSiteDashboard, Guard: guarded(access.SuperAdmin())},
		{Name: "admin-site-users", Template: access.AdminSitePrefix + "/usuarios", Screen: ScreenAdminSiteUsers, Guard: guarded(access.SuperAdmin())},
		{Name: "admin-paroquia-dashboard", Template: access.AdminParoquiaDashboardPath, Screen: ScreenAdminParoquiaDashboard, Guard: guarded(access.ParishAdmin())},
	}
}
