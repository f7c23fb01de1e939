// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/bingocomunidade/bingo-tui/internal/session"
	"github.com/bingocomunidade/bingo-tui/internal/ui/styles"
)

// =============================================================================
// SESSION TIMEOUT OVERLAY
// =============================================================================

// SessionTimeoutOverlay displays the inactivity countdown. It only renders;
// the inactivity monitor owns the timing and any activity dismisses it.
type SessionTimeoutOverlay struct {
	visible bool
	seconds int

	width  int
	height int
}

// NewSessionTimeoutOverlay creates a hidden overlay.
func NewSessionTimeoutOverlay() SessionTimeoutOverlay {
	return SessionTimeoutOverlay{}
}

// SetSize sets the overlay dimensions.
func (o *SessionTimeoutOverlay) SetSize(width, height int) {
	o.width = width
	o.height = height
}

// Show displays the overlay with seconds left.
func (o *SessionTimeoutOverlay) Show(seconds int) {
	o.visible = true
	o.seconds = seconds
}

// Hide hides the overlay.
func (o *SessionTimeoutOverlay) Hide() {
	o.visible = false
	o.seconds = 0
}

// SetSeconds updates the countdown.
func (o *SessionTimeoutOverlay) SetSeconds(seconds int) {
	o.seconds = seconds
}

// IsVisible returns whether the overlay is showing.
func (o SessionTimeoutOverlay) IsVisible() bool {
	return o.visible
}

// Seconds returns the countdown value.
func (o SessionTimeoutOverlay) Seconds() int {
	return o.seconds
}

// View renders the overlay, or "" while hidden.
func (o SessionTimeoutOverlay) View() string {
	if !o.visible {
		return ""
	}

	width := o.width
	if width == 0 {
		width = 60
	}
	height := o.height
	if height == 0 {
		height = 24
	}
	maxWidth := width - 8
	if maxWidth < 40 {
		maxWidth = 40
	}
	if maxWidth > 60 {
		maxWidth = 60
	}

	titleStyle := lipgloss.NewStyle().Foreground(styles.Amber).Bold(true)
	timeStyle := lipgloss.NewStyle().Foreground(styles.Amber).Bold(true)
	msgStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimary).
		Width(maxWidth - 8).
		Align(lipgloss.Center)
	hintStyle := lipgloss.NewStyle().
		Foreground(styles.TextSecondary).
		Italic(true).
		Align(lipgloss.Center)

	content := lipgloss.JoinVertical(lipgloss.Center,
		titleStyle.Render(styles.StatusIndicators.Warning+" Sessão prestes a expirar"),
		"",
		msgStyle.Render("Sua sessão será encerrada por inatividade em "+timeStyle.Render(session.FormatCountdown(o.seconds))),
		"",
		hintStyle.Render("Pressione qualquer tecla ou mova o mouse para continuar"),
	)

	box := lipgloss.NewStyle().
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(styles.Amber).
		Padding(1, 3).
		Width(maxWidth).
		Align(lipgloss.Center).
		Render(content)

	return lipgloss.Place(
		width, height,
		lipgloss.Center, lipgloss.Center,
		box,
		lipgloss.WithWhitespaceBackground(styles.SurfaceDim),
	)
}
