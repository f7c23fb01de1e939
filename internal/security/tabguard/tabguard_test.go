// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tabguard

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bingocomunidade/bingo-tui/internal/clock"
	"github.com/bingocomunidade/bingo-tui/internal/events"
	"github.com/bingocomunidade/bingo-tui/internal/security/access"
	"github.com/bingocomunidade/bingo-tui/internal/storage"
)

type recordingNav struct {
	redirects []string
}

func (n *recordingNav) Redirect(path string) { n.redirects = append(n.redirects, path) }

type failingClearer struct{}

func (failingClearer) ClearCookies() error { return errors.New("jar unavailable") }

type harness struct {
	bus        *events.Bus
	clock      *clock.Fake
	persistent *storage.Volatile
	volatile   *storage.Volatile
	nav        *recordingNav
	guard      *Guard
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		bus:        events.NewBus(),
		clock:      clock.NewFake(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)),
		persistent: storage.NewVolatile(),
		volatile:   storage.NewVolatile(),
		nav:        &recordingNav{},
	}
	wipe := storage.HardWipe{Persistent: h.persistent, Volatile: h.volatile}
	h.guard = New(h.bus, h.clock, wipe, h.nav, 0)
	t.Cleanup(h.guard.Close)

	require.NoError(t, h.persistent.Set(storage.KeyToken, "admin-token"))
	require.NoError(t, h.persistent.Set(storage.KeyUser, `{"id":"A1","tipo":"super_admin"}`))
	require.NoError(t, h.volatile.Set("draft", "x"))
	return h
}

func subscriptions(bus *events.Bus) int {
	return bus.Count(events.BeforeUnload) + bus.Count(events.Unload) +
		bus.Count(events.Offline) + bus.Count(events.Online)
}

func TestSync_OnlyUnderAdminSite(t *testing.T) {
	tests := []struct {
		path   string
		active bool
	}{
		{"/admin-site", true},
		{"/admin-site/dashboard", true},
		{"/admin-sitemap", false},
		{"/admin-paroquia/dashboard", false},
		{"/dashboard", false},
		{"/login", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			h := newHarness(t)
			h.guard.Sync(tt.path)
			assert.Equal(t, tt.active, h.guard.Active())
			if tt.active {
				assert.Equal(t, 4, subscriptions(h.bus))
			} else {
				assert.Equal(t, 0, subscriptions(h.bus))
			}
		})
	}
}

func TestSync_LeavingAreaRemovesEverything(t *testing.T) {
	h := newHarness(t)
	h.guard.Sync("/admin-site/dashboard")
	h.guard.Sync("/admin-site/usuarios")
	assert.Equal(t, 4, subscriptions(h.bus), "re-sync must not stack listeners")

	h.bus.Emit(events.Offline)
	require.True(t, h.guard.GracePending())

	h.guard.Sync("/dashboard")
	assert.False(t, h.guard.Active())
	assert.Equal(t, 0, subscriptions(h.bus))
	assert.Equal(t, 0, h.clock.Pending())

	h.clock.Advance(time.Minute)
	assert.Equal(t, 2, h.persistent.Len())
	assert.Empty(t, h.nav.redirects)
}

func TestOffline_PastGraceWipesAndRedirects(t *testing.T) {
	h := newHarness(t)
	h.guard.Sync("/admin-site/dashboard")

	h.bus.Emit(events.Offline)
	h.clock.Advance(DefaultGrace - time.Millisecond)
	assert.Equal(t, 2, h.persistent.Len())
	assert.Empty(t, h.nav.redirects)

	h.clock.Advance(time.Millisecond)
	assert.Equal(t, 0, h.persistent.Len())
	assert.Equal(t, 0, h.volatile.Len())
	assert.Equal(t, []string{access.AdminSiteLoginPath}, h.nav.redirects)
	assert.False(t, h.guard.GracePending())
}

func TestOnline_BeforeGraceCancelsWipe(t *testing.T) {
	h := newHarness(t)
	h.guard.Sync("/admin-site/dashboard")

	h.bus.Emit(events.Offline)
	h.clock.Advance(3 * time.Second)
	h.bus.Emit(events.Online)
	h.clock.Advance(time.Minute)

	assert.Equal(t, 2, h.persistent.Len())
	assert.Equal(t, 1, h.volatile.Len())
	assert.Empty(t, h.nav.redirects)
	assert.Equal(t, 0, h.clock.Pending())
}

func TestOffline_RepeatedRestartsGrace(t *testing.T) {
	h := newHarness(t)
	h.guard.Sync("/admin-site")

	h.bus.Emit(events.Offline)
	h.clock.Advance(4 * time.Second)
	h.bus.Emit(events.Offline)
	assert.Equal(t, 1, h.clock.Pending())

	h.clock.Advance(4 * time.Second)
	assert.Equal(t, 2, h.persistent.Len())

	h.clock.Advance(time.Second)
	assert.Equal(t, 0, h.persistent.Len())
	assert.Len(t, h.nav.redirects, 1)
}

func TestUnload_WipesWithoutNavigation(t *testing.T) {
	for _, name := range []events.Name{events.BeforeUnload, events.Unload} {
		t.Run(string(name), func(t *testing.T) {
			h := newHarness(t)
			h.guard.Sync("/admin-site/dashboard")

			h.bus.Emit(name)
			assert.Equal(t, 0, h.persistent.Len())
			assert.Equal(t, 0, h.volatile.Len())
			assert.Empty(t, h.nav.redirects)
		})
	}
}

func TestInactiveGuardIgnoresEvents(t *testing.T) {
	h := newHarness(t)
	h.guard.Sync("/dashboard")

	h.bus.Emit(events.BeforeUnload)
	h.bus.Emit(events.Offline)
	h.clock.Advance(time.Minute)

	assert.Equal(t, 2, h.persistent.Len())
	assert.Empty(t, h.nav.redirects)
}

func TestWipeFailureStillRedirects(t *testing.T) {
	h := newHarness(t)
	h.guard = New(h.bus, h.clock, storage.HardWipe{
		Persistent: h.persistent,
		Volatile:   h.volatile,
		Cookies:    failingClearer{},
	}, h.nav, 2*time.Second)
	h.guard.Sync("/admin-site/dashboard")

	h.bus.Emit(events.Offline)
	h.clock.Advance(2 * time.Second)
	assert.Equal(t, 0, h.persistent.Len())
	assert.Equal(t, []string{access.AdminSiteLoginPath}, h.nav.redirects)
	h.guard.Close()
}
