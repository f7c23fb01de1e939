// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package connectivity tracks whether the backend is reachable.
//
// # Key Types
//
//   - Probe: pings the backend and emits online/offline transitions
//   - Status: the last known reachability
//
// # Usage
//
//	probe := connectivity.NewProbe(client, bus, 10*time.Second)
//	go probe.Run(ctx)
//
//	bar.Badge = probe.StatusBadge() // "[OFFLINE]" or ""
//
// Only transitions are emitted: repeated failures produce a single offline
// event, and the first success after that produces a single online event.
package connectivity
