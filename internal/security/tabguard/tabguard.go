// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tabguard wipes the administrator's credentials when the admin
// client is closed or loses the network for longer than a short grace period.
//
// The guard is only active while the current route is under /admin-site.
// Everywhere else it holds no subscriptions and no timers.
package tabguard

import (
	"log"
	"sync"
	"time"

	"github.com/bingocomunidade/bingo-tui/internal/clock"
	"github.com/bingocomunidade/bingo-tui/internal/events"
	"github.com/bingocomunidade/bingo-tui/internal/security/access"
)

// DefaultGrace is how long the network may be gone before the wipe.
const DefaultGrace = 5 * time.Second

// Wiper clears persistent storage, volatile storage and cookies.
type Wiper interface {
	Wipe() error
}

// Redirector performs a full navigation.
type Redirector interface {
	Redirect(path string)
}

// Guard is the admin tab-lifecycle guard.
type Guard struct {
	source events.Source
	clock  clock.Clock
	wiper  Wiper
	nav    Redirector
	grace  time.Duration

	mu     sync.Mutex
	active bool
	subs   []events.Subscription
	timer  clock.Timer
	gen    uint64
}

// New creates an inactive guard. A non-positive grace uses DefaultGrace.
func New(source events.Source, clk clock.Clock, wiper Wiper, nav Redirector, grace time.Duration) *Guard {
	if grace <= 0 {
		grace = DefaultGrace
	}
	if clk == nil {
		clk = clock.Real()
	}
	return &Guard{
		source: source,
		clock:  clk,
		wiper:  wiper,
		nav:    nav,
		grace:  grace,
	}
}

// Sync installs or removes the guard's listeners for the current path. It is
// meant to run on every route change.
func (g *Guard) Sync(path string) {
	if access.InArea(path, access.AdminSitePrefix) {
		g.install()
		return
	}
	g.Close()
}

// Active reports whether listeners are installed.
func (g *Guard) Active() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.active
}

// GracePending reports whether an offline grace timer is running.
func (g *Guard) GracePending() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.timer != nil
}

func (g *Guard) install() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.active {
		return
	}
	g.active = true
	g.subs = []events.Subscription{
		g.source.Subscribe(events.BeforeUnload, g.onUnload),
		g.source.Subscribe(events.Unload, g.onUnload),
		g.source.Subscribe(events.Offline, g.onOffline),
		g.source.Subscribe(events.Online, g.onOnline),
	}
	log.Printf("TABGUARD | state=armed grace=%s", g.grace)
}

// Close removes every listener and cancels a pending grace timer.
func (g *Guard) Close() {
	g.mu.Lock()
	if !g.active {
		g.mu.Unlock()
		return
	}
	g.active = false
	g.cancelLocked()
	subs := g.subs
	g.subs = nil
	g.mu.Unlock()

	for _, sub := range subs {
		g.source.Unsubscribe(sub)
	}
	log.Printf("TABGUARD | state=inactive")
}

func (g *Guard) onUnload(ev events.Event) {
	g.mu.Lock()
	g.cancelLocked()
	g.mu.Unlock()

	// The client is already going away; no navigation.
	g.wipe(string(ev.Name))
}

func (g *Guard) onOffline(events.Event) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.active {
		return
	}
	g.cancelLocked()
	g.gen++
	gen := g.gen
	g.timer = g.clock.AfterFunc(g.grace, func() { g.expire(gen) })
	log.Printf("TABGUARD | state=offline grace=%s", g.grace)
}

func (g *Guard) onOnline(events.Event) {
	g.mu.Lock()
	pending := g.timer != nil
	g.cancelLocked()
	g.mu.Unlock()

	if pending {
		log.Printf("TABGUARD | state=online wipe=cancelled")
	}
}

func (g *Guard) expire(gen uint64) {
	g.mu.Lock()
	if gen != g.gen || !g.active {
		g.mu.Unlock()
		return
	}
	g.timer = nil
	g.gen++
	g.mu.Unlock()

	g.wipe("offline")
	g.nav.Redirect(access.AdminSiteLoginPath)
}

func (g *Guard) cancelLocked() {
	g.gen++
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
}

func (g *Guard) wipe(reason string) {
	if err := g.wiper.Wipe(); err != nil {
		log.Printf("TABGUARD_ERROR | reason=%s error=%v", reason, err)
		return
	}
	log.Printf("TABGUARD | wipe=done reason=%s", reason)
}
