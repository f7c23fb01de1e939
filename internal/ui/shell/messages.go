// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package shell

import (
	"github.com/bingocomunidade/bingo-tui/internal/router"
	"github.com/bingocomunidade/bingo-tui/internal/session"
)

// sessionMsg signals that the inactivity monitor changed state. The model
// reads the current state from the session rather than trusting the payload
// order, because these messages arrive asynchronously.
type sessionMsg struct{}

// routeMsg signals a route change made outside Update.
type routeMsg struct {
	change router.Change
}

// connectivityMsg signals an online/offline transition.
type connectivityMsg struct{}

// loginDoneMsg carries the result of a login attempt.
type loginDoneMsg struct {
	user session.User
	err  error
}

// setupDoneMsg carries the result of the first-access bootstrap.
type setupDoneMsg struct {
	user session.User
	err  error
}

// profileSavedMsg carries the result of a profile update.
type profileSavedMsg struct {
	user session.User
	err  error
}
