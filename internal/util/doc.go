// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared by the bingo packages.
//
//   - AtomicWriteFile: crash-safe file writing with fsync
//   - TruncateWidth, PadRight, StringWidth: terminal-width aware text
//     layout for the UI and CLI tables
package util
