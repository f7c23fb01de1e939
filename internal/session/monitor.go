// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bingocomunidade/bingo-tui/internal/clock"
	"github.com/bingocomunidade/bingo-tui/internal/events"
)

// ErrInvalidWindow is returned when the warning window does not fit strictly
// inside the timeout.
var ErrInvalidWindow = errors.New("session: inactivity warning must be positive and shorter than the timeout")

// =============================================================================
// CONFIGURATION
// =============================================================================

// Config holds the inactivity parameters.
type Config struct {
	// Timeout is the quiet time before a forced logout (default: 15 minutes).
	Timeout time.Duration

	// Warning is how long before the timeout the countdown appears
	// (default: 2 minutes).
	Warning time.Duration
}

// DefaultConfig returns the default inactivity configuration.
func DefaultConfig() Config {
	return ConfigFromMinutes(15, 2)
}

// ConfigFromMinutes builds a Config from whole minutes.
func ConfigFromMinutes(timeout, warning int) Config {
	return Config{
		Timeout: time.Duration(timeout) * time.Minute,
		Warning: time.Duration(warning) * time.Minute,
	}
}

// Validate enforces 0 < Warning < Timeout.
func (c Config) Validate() error {
	if c.Timeout <= 0 || c.Warning <= 0 || c.Warning >= c.Timeout {
		return fmt.Errorf("%w (timeout=%s warning=%s)", ErrInvalidWindow, c.Timeout, c.Warning)
	}
	return nil
}

// =============================================================================
// STATE
// =============================================================================

// State is the monitor's position in its cycle.
type State int

const (
	StateIdle State = iota
	StateArmed
	StateWarning
	StateTimedOut
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateArmed:
		return "armed"
	case StateWarning:
		return "warning"
	case StateTimedOut:
		return "timed_out"
	default:
		return "unknown"
	}
}

// Callbacks are invoked outside the monitor's lock, on whichever goroutine
// fired the timer or emitted the event.
type Callbacks struct {
	// OnWarning is called when the warning window opens.
	OnWarning func(secondsRemaining int)

	// OnTick is called once per second while the warning is shown.
	OnTick func(secondsRemaining int)

	// OnReset is called when activity dismisses an open warning.
	OnReset func()
}

// =============================================================================
// MONITOR
// =============================================================================

// Monitor runs the inactivity cycle Idle, Armed, Warning, TimedOut.
//
// Every arm cycle gets a new generation number. A timer callback whose
// generation is no longer current is discarded, so activity always wins over
// a timer that was already in flight when it arrived.
type Monitor struct {
	cfg       Config
	clock     clock.Clock
	source    events.Source
	onTimeout func()
	callbacks Callbacks

	mu               sync.Mutex
	state            State
	gen              uint64
	running          bool
	secondsRemaining int
	warnTimer        clock.Timer
	timeoutTimer     clock.Timer
	tickTimer        clock.Timer
	subs             []events.Subscription
}

// NewMonitor creates a stopped monitor. onTimeout runs at most once per arm
// cycle.
func NewMonitor(cfg Config, clk clock.Clock, source events.Source, onTimeout func()) (*Monitor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if clk == nil {
		clk = clock.Real()
	}
	return &Monitor{
		cfg:       cfg,
		clock:     clk,
		source:    source,
		onTimeout: onTimeout,
	}, nil
}

// SetCallbacks replaces the UI callbacks.
func (m *Monitor) SetCallbacks(cb Callbacks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callbacks = cb
}

// Start subscribes to the activity events and arms the first cycle.
// Calling Start on a running monitor re-arms it.
func (m *Monitor) Start() {
	m.mu.Lock()
	if !m.running {
		m.running = true
		if m.source != nil {
			for _, name := range events.ActivityEvents {
				m.subs = append(m.subs, m.source.Subscribe(name, m.onActivity))
			}
		}
	}
	m.mu.Unlock()

	m.Reset()
}

// Stop unsubscribes every listener and cancels every timer. Callbacks from
// timers already in flight are discarded.
func (m *Monitor) Stop() {
	m.mu.Lock()
	m.running = false
	m.gen++
	m.stopTimersLocked()
	m.state = StateIdle
	m.secondsRemaining = 0
	subs := m.subs
	m.subs = nil
	m.mu.Unlock()

	if m.source != nil {
		for _, sub := range subs {
			m.source.Unsubscribe(sub)
		}
	}
}

// Reset cancels the current cycle and arms a new one from zero. It is a
// no-op on a stopped monitor.
func (m *Monitor) Reset() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	wasWarning := m.state == StateWarning

	m.gen++
	gen := m.gen
	m.stopTimersLocked()
	m.state = StateArmed
	m.secondsRemaining = 0
	m.warnTimer = m.clock.AfterFunc(m.cfg.Timeout-m.cfg.Warning, func() { m.enterWarning(gen) })
	m.timeoutTimer = m.clock.AfterFunc(m.cfg.Timeout, func() { m.fire(gen) })
	onReset := m.callbacks.OnReset
	m.mu.Unlock()

	if wasWarning && onReset != nil {
		onReset()
	}
}

func (m *Monitor) onActivity(events.Event) {
	m.Reset()
}

func (m *Monitor) enterWarning(gen uint64) {
	m.mu.Lock()
	if gen != m.gen {
		m.mu.Unlock()
		return
	}
	m.warnTimer = nil
	m.state = StateWarning
	m.secondsRemaining = int(m.cfg.Warning / time.Second)
	m.tickTimer = m.clock.AfterFunc(time.Second, func() { m.tick(gen) })
	secs := m.secondsRemaining
	onWarning := m.callbacks.OnWarning
	m.mu.Unlock()

	if onWarning != nil {
		onWarning(secs)
	}
}

func (m *Monitor) tick(gen uint64) {
	m.mu.Lock()
	if gen != m.gen || m.state != StateWarning {
		m.mu.Unlock()
		return
	}
	if m.secondsRemaining > 0 {
		m.secondsRemaining--
	}
	m.tickTimer = nil
	if m.secondsRemaining > 0 {
		m.tickTimer = m.clock.AfterFunc(time.Second, func() { m.tick(gen) })
	}
	secs := m.secondsRemaining
	onTick := m.callbacks.OnTick
	m.mu.Unlock()

	if onTick != nil {
		onTick(secs)
	}
}

func (m *Monitor) fire(gen uint64) {
	m.mu.Lock()
	if gen != m.gen {
		m.mu.Unlock()
		return
	}
	// Consume the cycle so nothing from it can run again.
	m.gen++
	m.timeoutTimer = nil
	m.stopTimersLocked()
	m.state = StateTimedOut
	m.secondsRemaining = 0
	onTimeout := m.onTimeout
	m.mu.Unlock()

	if onTimeout != nil {
		onTimeout()
	}

	m.mu.Lock()
	if m.state == StateTimedOut {
		m.state = StateIdle
	}
	m.mu.Unlock()
}

func (m *Monitor) stopTimersLocked() {
	for _, t := range []*clock.Timer{&m.warnTimer, &m.timeoutTimer, &m.tickTimer} {
		if *t != nil {
			(*t).Stop()
			*t = nil
		}
	}
}

// =============================================================================
// STATUS
// =============================================================================

// State returns the current state.
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// ShowWarning reports whether the warning countdown is active.
func (m *Monitor) ShowWarning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == StateWarning
}

// SecondsRemaining returns the countdown value. It is only meaningful while
// ShowWarning is true.
func (m *Monitor) SecondsRemaining() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.secondsRemaining
}

// Running reports whether the monitor is started.
func (m *Monitor) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// Config returns the monitor's parameters.
func (m *Monitor) Config() Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cfg
}

// Reconfigure replaces the window. A running monitor starts a fresh cycle
// with the new values; an invalid window leaves everything untouched.
func (m *Monitor) Reconfigure(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	m.cfg = cfg
	running := m.running
	m.mu.Unlock()

	if running {
		m.Reset()
	}
	return nil
}

// FormatCountdown renders seconds as m:ss.
func FormatCountdown(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
