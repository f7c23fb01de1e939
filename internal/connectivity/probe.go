// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package connectivity

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/bingocomunidade/bingo-tui/internal/events"
)

// DefaultInterval is the time between probes.
const DefaultInterval = 10 * time.Second

// probeTimeout bounds a single ping.
const probeTimeout = 3 * time.Second

// =============================================================================
// STATUS
// =============================================================================

// Status is the backend's reachability.
type Status int

const (
	StatusUnknown Status = iota
	StatusOnline
	StatusOffline
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusOnline:
		return "online"
	case StatusOffline:
		return "offline"
	default:
		return "unknown"
	}
}

// =============================================================================
// PROBE
// =============================================================================

// Pinger is anything that can check the backend.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Emitter receives connectivity transitions.
type Emitter interface {
	Emit(name events.Name)
}

// Probe pings the backend on an interval.
type Probe struct {
	pinger   Pinger
	emitter  Emitter
	interval time.Duration

	mu       sync.RWMutex
	status   Status
	lastErr  error
	lastSeen time.Time
}

// NewProbe creates a probe. A non-positive interval uses DefaultInterval.
func NewProbe(pinger Pinger, emitter Emitter, interval time.Duration) *Probe {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Probe{
		pinger:   pinger,
		emitter:  emitter,
		interval: interval,
	}
}

// Run probes until ctx is cancelled.
func (p *Probe) Run(ctx context.Context) {
	p.Check(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Check(ctx)
		}
	}
}

// Check pings once and emits an event if reachability changed. The first
// check only emits when the backend is unreachable.
func (p *Probe) Check(ctx context.Context) Status {
	pingCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	err := p.pinger.Ping(pingCtx)
	cancel()

	// A cancelled run is not evidence of a network loss.
	if ctx.Err() != nil {
		return p.Status()
	}

	next := StatusOnline
	if err != nil {
		next = StatusOffline
	}

	p.mu.Lock()
	prev := p.status
	p.status = next
	p.lastErr = err
	if err == nil {
		p.lastSeen = time.Now()
	}
	p.mu.Unlock()

	if prev == next {
		return next
	}
	switch {
	case next == StatusOffline:
		log.Printf("CONNECTIVITY | status=offline error=%v", err)
		p.emit(events.Offline)
	case prev == StatusOffline:
		log.Printf("CONNECTIVITY | status=online")
		p.emit(events.Online)
	}
	return next
}

func (p *Probe) emit(name events.Name) {
	if p.emitter != nil {
		p.emitter.Emit(name)
	}
}

// Status returns the last known status.
func (p *Probe) Status() Status {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.status
}

// IsOffline reports whether the last probe failed.
func (p *Probe) IsOffline() bool {
	return p.Status() == StatusOffline
}

// LastError returns the error of the last failed probe.
func (p *Probe) LastError() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastErr
}

// LastSeen returns when the backend last answered.
func (p *Probe) LastSeen() time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastSeen
}

// StatusBadge returns "[OFFLINE]" while the backend is unreachable.
func (p *Probe) StatusBadge() string {
	if p.IsOffline() {
		return "[OFFLINE]"
	}
	return ""
}
