// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"errors"
	"fmt"
)

// CookieClearer expires every cookie the client can see.
type CookieClearer interface {
	ClearCookies() error
}

// HardWipe clears persistent storage, volatile storage and cookies together.
// Any of the three may be nil.
type HardWipe struct {
	Persistent Store
	Volatile   Store
	Cookies    CookieClearer
}

// Wipe runs every step even when an earlier one fails and returns the joined
// errors.
func (w HardWipe) Wipe() error {
	var errs []error
	if w.Persistent != nil {
		if err := w.Persistent.Clear(); err != nil {
			errs = append(errs, fmt.Errorf("persistent: %w", err))
		}
	}
	if w.Volatile != nil {
		if err := w.Volatile.Clear(); err != nil {
			errs = append(errs, fmt.Errorf("volatile: %w", err))
		}
	}
	if w.Cookies != nil {
		if err := w.Cookies.ClearCookies(); err != nil {
			errs = append(errs, fmt.Errorf("cookies: %w", err))
		}
	}
	return errors.Join(errs...)
}
