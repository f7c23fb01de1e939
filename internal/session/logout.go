// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"fmt"
	"log"

	"github.com/bingocomunidade/bingo-tui/internal/security/access"
	"github.com/bingocomunidade/bingo-tui/internal/storage"
)

// =============================================================================
// LOGOUT
// =============================================================================

// Logout tears the session down in a fixed order and finishes with a full
// navigation to the entry point for the current area. It is idempotent and
// every step runs even when an earlier one fails.
func (m *Manager) Logout() {
	// 1. Memory first, so readers see "unauthenticated" immediately.
	m.mu.Lock()
	userID := ""
	if m.user != nil {
		userID = m.user.ID
	}
	m.token = ""
	m.user = nil
	m.mu.Unlock()

	// 2. Known keys, then everything that looks like session or cart state.
	if err := m.creds.Clear(); err != nil {
		log.Printf("LOGOUT_ERROR | step=credentials error=%v", err)
	}
	removed, err := storage.Sweep(m.creds.Store(), storage.IsSessionKey)
	if err != nil {
		log.Printf("LOGOUT_ERROR | step=sweep error=%v", err)
	}

	// 3-5. Volatile storage, bearer header and cookies.
	if err := m.volatile.Clear(); err != nil {
		log.Printf("LOGOUT_ERROR | step=volatile error=%v", err)
	}
	m.backend.ClearToken()
	if err := m.backend.ClearCookies(); err != nil {
		log.Printf("LOGOUT_ERROR | step=cookies error=%v", err)
	}

	// 6. Full navigation; nothing after this may assume a session.
	target := access.EntryPointFor(m.nav.CurrentPath())
	logSessionEvent("LOGOUT", fmt.Sprintf("user=%s swept=%d redirect=%s", userID, removed, target))
	m.nav.Redirect(target)
}
