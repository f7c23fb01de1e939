// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"
)

// RemoteTTL is how long backend settings are reused before a refetch.
const RemoteTTL = time.Minute

// Remote setting keys published by GET /configuracoes.
const (
	RemoteInactivityTimeout      = "inactivityTimeout"
	RemoteInactivityWarning      = "inactivityWarningMinutes"
	RemoteCartExpiration         = "cartExpirationMinutes"
	RemoteAutoCleanExpiredCarts  = "autoCleanExpiredCarts"
	RemoteAutoCleanFinishedCarts = "autoCleanFinishedGameCarts"
)

// ApplyRemote merges backend settings into c. Unknown keys and unparseable
// values are ignored. If the merged inactivity window is invalid the
// previous window is kept.
func (c *Config) ApplyRemote(values map[string]string) {
	prevT, prevW := c.Security.InactivityTimeoutMinutes, c.Security.InactivityWarningMinutes

	for key, raw := range values {
		raw = strings.TrimSpace(raw)
		switch key {
		case RemoteInactivityTimeout:
			if n, ok := parseMinutes(raw); ok {
				c.Security.InactivityTimeoutMinutes = n
			}
		case RemoteInactivityWarning:
			if n, ok := parseMinutes(raw); ok {
				c.Security.InactivityWarningMinutes = n
			}
		case RemoteCartExpiration:
			if n, ok := parseMinutes(raw); ok && n > 0 {
				c.Cart.ExpirationMinutes = n
			}
		case RemoteAutoCleanExpiredCarts:
			c.Cart.AutoCleanStartedGames = raw == "true"
		case RemoteAutoCleanFinishedCarts:
			c.Cart.AutoCleanFinishedGames = raw == "true"
		}
	}

	t, w := c.Security.InactivityTimeoutMinutes, c.Security.InactivityWarningMinutes
	if t <= 0 || w <= 0 || w >= t {
		log.Printf("CONFIG | remote inactivity window rejected timeout=%d warning=%d", t, w)
		c.Security.InactivityTimeoutMinutes, c.Security.InactivityWarningMinutes = prevT, prevW
	}
}

// parseMinutes accepts "15" and "15.0".
func parseMinutes(raw string) (int, bool) {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return int(f), true
}

// SettingsFetcher loads backend settings. *api.Client satisfies it.
type SettingsFetcher interface {
	Settings(ctx context.Context) (map[string]string, error)
}

// RemoteCache fetches backend settings at most once per TTL. A failed fetch
// yields the local configuration unchanged.
type RemoteCache struct {
	mu      sync.Mutex
	fetcher SettingsFetcher
	now     func() time.Time
	ttl     time.Duration

	values  map[string]string
	fetched time.Time
}

// NewRemoteCache creates a cache over fetcher. now may be nil.
func NewRemoteCache(fetcher SettingsFetcher, now func() time.Time) *RemoteCache {
	if now == nil {
		now = time.Now
	}
	return &RemoteCache{fetcher: fetcher, now: now, ttl: RemoteTTL}
}

// Values returns the cached settings, refetching when stale.
func (r *RemoteCache) Values(ctx context.Context) map[string]string {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if r.values != nil && now.Sub(r.fetched) < r.ttl {
		return r.values
	}

	values, err := r.fetcher.Settings(ctx)
	if err != nil {
		log.Printf("CONFIG | remote settings unavailable, using local values: %v", err)
		return nil
	}
	r.values = values
	r.fetched = now
	return values
}

// Invalidate forces a refetch on the next call.
func (r *RemoteCache) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values = nil
	r.fetched = time.Time{}
}

// Resolve returns a copy of base with the backend settings applied.
func (r *RemoteCache) Resolve(ctx context.Context, base *Config) *Config {
	cfg := base.Clone()
	if values := r.Values(ctx); values != nil {
		cfg.ApplyRemote(values)
	}
	return cfg
}
