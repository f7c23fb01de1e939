// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage holds the client's key/value state.
//
// Two stores implement Store:
//
//   - Persistent: a SQLite table that survives restarts (session token,
//     user record, cart).
//   - Volatile: an in-memory map that lives as long as the process.
//
// Keys owned by the client carry KeyPrefix. IsSessionKey recognizes keys
// that hold session or cart state, including those written by older
// releases, so that Sweep can remove them on logout.
//
// HardWipe clears both stores and the cookie jar. It is the teardown used
// when an administrative session loses connectivity.
package storage
