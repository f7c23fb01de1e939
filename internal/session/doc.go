// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session owns the signed-in principal.
//
// It holds the bearer token and user record, rehydrates them from persistent
// storage at startup, runs the inactivity monitor and performs the ordered
// logout teardown.
//
// # Key Types
//
//   - Manager: the session context; the only writer of session state
//   - CredentialStore: token and user record in persistent storage
//   - Monitor: inactivity timer with a warning countdown
//   - Navigator: the in-app and full navigation the session drives
//
// # Usage
//
//	mgr, err := session.NewManager(session.Options{
//	    Backend:    client,
//	    Persistent: store,
//	    Volatile:   storage.NewVolatile(),
//	    Navigator:  rt,
//	    Events:     bus,
//	    Config:     session.ConfigFromMinutes(15, 2),
//	})
//	mgr.Mount()
//	defer mgr.Unmount()
//
// # Timeout
//
// With the default configuration the warning appears after 13 minutes without
// activity and the session is logged out after 15.
package session
