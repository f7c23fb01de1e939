// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides the client-held key/value stores: a persistent
// store that survives restarts and a volatile store scoped to one process.
package storage

import (
	"errors"
	"sort"
	"strings"
	"sync"
)

// =============================================================================
// KEYS
// =============================================================================

// KeyPrefix namespaces every key this client writes.
const KeyPrefix = "@BingoComunidade:"

// Well-known keys.
const (
	KeyToken     = KeyPrefix + "token"
	KeyUser      = KeyPrefix + "user"
	KeyBootstrap = KeyPrefix + "bootstrap"
	KeyCart      = KeyPrefix + "carrinho"

	// Written by older releases of the client.
	LegacyKeyToken = "access_token"
	LegacyKeyUser  = "usuario"
)

// sessionKeyMarkers are substrings that mark a key as session or cart state.
var sessionKeyMarkers = []string{"token", "user", "usuario", "session", "sess", "carrinho", "cart"}

// IsSessionKey reports whether key holds session- or cart-related state and
// must be removed on logout.
func IsSessionKey(key string) bool {
	if strings.HasPrefix(key, KeyPrefix) {
		return true
	}
	lower := strings.ToLower(key)
	for _, marker := range sessionKeyMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// =============================================================================
// STORE INTERFACE
// =============================================================================

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("storage: store is closed")

// Store is a string key/value store.
type Store interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Remove(key string) error
	Keys() ([]string, error)
	Clear() error
}

// Sweep removes every key in s for which match returns true and returns the
// number of keys removed. It keeps going after a failed removal and returns
// the joined errors.
func Sweep(s Store, match func(key string) bool) (int, error) {
	keys, err := s.Keys()
	if err != nil {
		return 0, err
	}

	removed := 0
	var errs []error
	for _, k := range keys {
		if !match(k) {
			continue
		}
		if err := s.Remove(k); err != nil {
			errs = append(errs, err)
			continue
		}
		removed++
	}
	return removed, errors.Join(errs...)
}

// =============================================================================
// VOLATILE STORE
// =============================================================================

// Volatile is an in-memory Store. Its contents die with the process.
type Volatile struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewVolatile creates an empty volatile store.
func NewVolatile() *Volatile {
	return &Volatile{data: make(map[string]string)}
}

func (v *Volatile) Get(key string) (string, bool, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	val, ok := v.data[key]
	return val, ok, nil
}

func (v *Volatile) Set(key, value string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.data[key] = value
	return nil
}

func (v *Volatile) Remove(key string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.data, key)
	return nil
}

func (v *Volatile) Keys() ([]string, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	keys := make([]string, 0, len(v.data))
	for k := range v.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (v *Volatile) Clear() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.data = make(map[string]string)
	return nil
}

// Len returns the number of stored keys.
func (v *Volatile) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.data)
}
