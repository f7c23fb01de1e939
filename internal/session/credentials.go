// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bingocomunidade/bingo-tui/internal/storage"
)

// ErrNoSession is returned by Load when no complete session is stored.
var ErrNoSession = errors.New("session: no stored session")

// ErrCorruptUser is returned by Load when the stored user record is not valid
// JSON.
var ErrCorruptUser = errors.New("session: stored user record is corrupt")

// CredentialStore keeps the token and user record in persistent storage.
// Both keys are written and removed together.
type CredentialStore struct {
	store storage.Store
}

// NewCredentialStore wraps s.
func NewCredentialStore(s storage.Store) *CredentialStore {
	return &CredentialStore{store: s}
}

// Save writes token and user. If the user write fails the token is removed
// again so no half session is left behind.
func (c *CredentialStore) Save(token string, u User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}
	if err := c.store.Set(storage.KeyToken, token); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	if err := c.store.Set(storage.KeyUser, string(data)); err != nil {
		_ = c.store.Remove(storage.KeyToken)
		return fmt.Errorf("failed to store user: %w", err)
	}
	return nil
}

// SaveUser rewrites only the user record, for profile updates.
func (c *CredentialStore) SaveUser(u User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}
	return c.store.Set(storage.KeyUser, string(data))
}

// Load returns the stored session. A token without a user, or the reverse,
// is reported as ErrNoSession.
func (c *CredentialStore) Load() (string, User, error) {
	token, hasToken := c.Token()
	raw, hasUser := c.RawUser()
	if !hasToken || !hasUser {
		return "", User{}, ErrNoSession
	}
	var u User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return "", User{}, fmt.Errorf("%w: %v", ErrCorruptUser, err)
	}
	return token, u, nil
}

// Token returns the stored bearer token.
func (c *CredentialStore) Token() (string, bool) {
	v, ok, err := c.store.Get(storage.KeyToken)
	if err != nil || !ok || v == "" {
		return "", false
	}
	return v, true
}

// RawUser returns the stored user JSON without decoding it.
func (c *CredentialStore) RawUser() (string, bool) {
	v, ok, err := c.store.Get(storage.KeyUser)
	if err != nil || !ok || v == "" {
		return "", false
	}
	return v, true
}

// Clear removes the token and user keys. Both removals are attempted.
func (c *CredentialStore) Clear() error {
	return errors.Join(
		c.store.Remove(storage.KeyToken),
		c.store.Remove(storage.KeyUser),
	)
}

// Store returns the underlying store.
func (c *CredentialStore) Store() storage.Store {
	return c.store
}
