// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bingocomunidade/bingo-tui/internal/clock"
	"github.com/bingocomunidade/bingo-tui/internal/events"
)

type monitorHarness struct {
	clock    *clock.Fake
	bus      *events.Bus
	monitor  *Monitor
	timeouts int
	warnings []int
	ticks    []int
	resets   int
}

func newMonitorHarness(t *testing.T, cfg Config) *monitorHarness {
	t.Helper()
	h := &monitorHarness{
		clock: clock.NewFake(time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)),
		bus:   events.NewBus(),
	}
	mon, err := NewMonitor(cfg, h.clock, h.bus, func() { h.timeouts++ })
	require.NoError(t, err)
	mon.SetCallbacks(Callbacks{
		OnWarning: func(s int) { h.warnings = append(h.warnings, s) },
		OnTick:    func(s int) { h.ticks = append(h.ticks, s) },
		OnReset:   func() { h.resets++ },
	})
	h.monitor = mon
	return h
}

// =============================================================================
// CONFIG TESTS
// =============================================================================

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 15*time.Minute, cfg.Timeout)
	assert.Equal(t, 2*time.Minute, cfg.Warning)
	assert.NoError(t, cfg.Validate())
}

func TestNewMonitor_RejectsInvalidWindow(t *testing.T) {
	tests := []struct {
		name             string
		timeout, warning int
	}{
		{"warning equals timeout", 5, 5},
		{"warning exceeds timeout", 5, 10},
		{"zero warning", 5, 0},
		{"zero timeout", 0, 0},
		{"negative timeout", -1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMonitor(ConfigFromMinutes(tt.timeout, tt.warning), clock.NewFake(time.Now()), nil, nil)
			assert.ErrorIs(t, err, ErrInvalidWindow)
		})
	}
}

// =============================================================================
// TIMING TESTS
// =============================================================================

func TestMonitor_WarningAndTimeoutAtExactBoundaries(t *testing.T) {
	h := newMonitorHarness(t, ConfigFromMinutes(15, 2))
	h.monitor.Start()
	assert.Equal(t, StateArmed, h.monitor.State())

	h.clock.Advance(13*time.Minute - time.Nanosecond)
	assert.False(t, h.monitor.ShowWarning())
	assert.Empty(t, h.warnings)

	h.clock.Advance(time.Nanosecond)
	assert.True(t, h.monitor.ShowWarning())
	assert.Equal(t, []int{120}, h.warnings)
	assert.Equal(t, 120, h.monitor.SecondsRemaining())

	h.clock.Advance(time.Second)
	assert.Equal(t, 119, h.monitor.SecondsRemaining())

	h.clock.Advance(2*time.Minute - time.Second - time.Nanosecond)
	assert.Equal(t, 0, h.timeouts)
	assert.Equal(t, 1, h.monitor.SecondsRemaining())

	h.clock.Advance(time.Nanosecond)
	assert.Equal(t, 1, h.timeouts)
	assert.Equal(t, StateIdle, h.monitor.State())
	assert.False(t, h.monitor.ShowWarning())
	assert.Equal(t, 0, h.clock.Pending(), "no timer may outlive the cycle")
}

func TestMonitor_TimeoutFiresOncePerCycle(t *testing.T) {
	h := newMonitorHarness(t, ConfigFromMinutes(3, 1))
	h.monitor.Start()

	h.clock.Advance(time.Hour)
	assert.Equal(t, 1, h.timeouts)

	// Activity starts the next cycle.
	h.bus.Emit(events.KeyPress)
	h.clock.Advance(3 * time.Minute)
	assert.Equal(t, 2, h.timeouts)
}

func TestMonitor_CountdownTicksEverySecond(t *testing.T) {
	h := newMonitorHarness(t, Config{Timeout: 10 * time.Second, Warning: 5 * time.Second})
	h.monitor.Start()

	h.clock.Advance(10 * time.Second)
	assert.Equal(t, []int{5}, h.warnings)
	assert.Equal(t, []int{4, 3, 2, 1}, h.ticks)
	assert.Equal(t, 1, h.timeouts)
}

func TestMonitor_ActivityRestartsBothTimers(t *testing.T) {
	for _, name := range events.ActivityEvents {
		t.Run(string(name), func(t *testing.T) {
			h := newMonitorHarness(t, ConfigFromMinutes(15, 2))
			h.monitor.Start()

			h.clock.Advance(14 * time.Minute)
			require.True(t, h.monitor.ShowWarning())

			h.bus.Emit(name)
			assert.False(t, h.monitor.ShowWarning())
			assert.Equal(t, StateArmed, h.monitor.State())
			assert.Equal(t, 1, h.resets)

			// The old deadline passes without effect.
			h.clock.Advance(time.Minute)
			assert.Equal(t, 0, h.timeouts)
			assert.False(t, h.monitor.ShowWarning())

			// The new cycle is measured from the activity.
			h.clock.Advance(12*time.Minute - time.Nanosecond)
			assert.False(t, h.monitor.ShowWarning())
			h.clock.Advance(time.Nanosecond)
			assert.True(t, h.monitor.ShowWarning())
			h.clock.Advance(2 * time.Minute)
			assert.Equal(t, 1, h.timeouts)
		})
	}
}

func TestMonitor_NonActivityEventsIgnored(t *testing.T) {
	h := newMonitorHarness(t, ConfigFromMinutes(15, 2))
	h.monitor.Start()

	h.clock.Advance(14 * time.Minute)
	h.bus.Emit(events.Offline)
	h.bus.Emit(events.BeforeUnload)
	assert.True(t, h.monitor.ShowWarning())

	h.clock.Advance(time.Minute)
	assert.Equal(t, 1, h.timeouts)
}

func TestMonitor_AtMostOneOfEachTimer(t *testing.T) {
	h := newMonitorHarness(t, ConfigFromMinutes(15, 2))
	h.monitor.Start()
	assert.Equal(t, 2, h.clock.Pending())

	for i := 0; i < 50; i++ {
		h.bus.Emit(events.PointerMove)
	}
	assert.Equal(t, 2, h.clock.Pending())

	h.clock.Advance(13 * time.Minute)
	// Timeout timer plus the countdown ticker.
	assert.Equal(t, 2, h.clock.Pending())
}

func TestMonitor_StopCancelsEverything(t *testing.T) {
	h := newMonitorHarness(t, ConfigFromMinutes(15, 2))
	h.monitor.Start()
	assert.Equal(t, 6, countActivitySubscriptions(h.bus))

	h.clock.Advance(14 * time.Minute)
	h.monitor.Stop()

	assert.Equal(t, 0, h.clock.Pending())
	assert.Equal(t, 0, countActivitySubscriptions(h.bus))
	assert.False(t, h.monitor.Running())

	h.clock.Advance(time.Hour)
	h.bus.Emit(events.Click)
	assert.Equal(t, 0, h.timeouts)
	assert.Equal(t, StateIdle, h.monitor.State())
}

func TestMonitor_RestartAfterStop(t *testing.T) {
	h := newMonitorHarness(t, ConfigFromMinutes(2, 1))
	h.monitor.Start()
	h.monitor.Stop()
	h.monitor.Start()
	assert.Equal(t, 6, countActivitySubscriptions(h.bus))

	h.clock.Advance(2 * time.Minute)
	assert.Equal(t, 1, h.timeouts)
}

func TestMonitor_Reconfigure(t *testing.T) {
	h := newMonitorHarness(t, DefaultConfig())
	h.monitor.Start()
	h.clock.Advance(10 * time.Minute)

	require.NoError(t, h.monitor.Reconfigure(ConfigFromMinutes(5, 1)))
	assert.Equal(t, 5*time.Minute, h.monitor.Config().Timeout)

	// The new cycle starts from the reconfigure, not the original start.
	h.clock.Advance(4*time.Minute - time.Second)
	assert.Empty(t, h.warnings)
	h.clock.Advance(time.Second)
	assert.Equal(t, []int{60}, h.warnings)
	h.clock.Advance(time.Minute)
	assert.Equal(t, 1, h.timeouts)

	err := h.monitor.Reconfigure(ConfigFromMinutes(1, 1))
	assert.ErrorIs(t, err, ErrInvalidWindow)
	assert.Equal(t, 5*time.Minute, h.monitor.Config().Timeout)
}

func TestFormatCountdown(t *testing.T) {
	assert.Equal(t, "2:00", FormatCountdown(120))
	assert.Equal(t, "0:09", FormatCountdown(9))
	assert.Equal(t, "0:00", FormatCountdown(-3))
}

func countActivitySubscriptions(bus *events.Bus) int {
	n := 0
	for _, name := range events.ActivityEvents {
		n += bus.Count(name)
	}
	return n
}
