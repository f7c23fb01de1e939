// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package access provides the role model and the route guard.
//
// # Roles
//
// Roles form a closed set split in three families:
//
//   - Top-level admin: super_admin (admin_site is accepted as an alias)
//   - Parish staff: paroquia_admin, paroquia_caixa, paroquia_recepcao,
//     paroquia_bingo (parish_admin is a legacy alias)
//   - Members: fiel (faithful is a legacy alias)
//
// # Route Guard
//
// A Guard wraps a protected screen. It reads the persisted session on every
// render and decides whether the screen may be shown:
//
//	decision := access.SuperAdmin().Check(credentials)
//	if !decision.Allow {
//	    router.Navigate(decision.Redirect)
//	}
//
// "No session" sends the principal to the guard's login screen; "wrong role"
// sends them to the landing page of their own role.
package access
