// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"log"
	"strings"
	"time"
)

// logSessionEvent writes one session lifecycle line:
//
//	2025-01-02 15:04:05 | LOGIN_SUCCESS | portal=general user=U1 role=fiel
func logSessionEvent(eventType, details string) {
	log.Printf("%s | %s | %s", time.Now().Format("2006-01-02 15:04:05"), eventType, details)
}

// maskIdentifier keeps only the last three characters of a login identifier.
func maskIdentifier(id string) string {
	r := []rune(id)
	if len(r) <= 3 {
		return strings.Repeat("*", len(r))
	}
	return strings.Repeat("*", len(r)-3) + string(r[len(r)-3:])
}
