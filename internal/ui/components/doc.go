// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides reusable UI components for the bingo TUI.

  - SessionTimeoutOverlay: the inactivity countdown shown before a forced
    logout
  - StatusBar: signed-in user, role badge, connectivity and current route
  - Toasts: auto-dismissing success and error notices
  - Form: a column of labelled text inputs with focus cycling, used by the
    login, first-access and profile screens
*/
package components
