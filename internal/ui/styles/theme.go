// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/bingocomunidade/bingo-tui/internal/security/access"
)

// Theme holds the styled building blocks of every screen.
type Theme struct {
	IsDark       bool
	ColorProfile termenv.Profile

	App      lipgloss.Style
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Box      lipgloss.Style

	Label        lipgloss.Style
	FocusedLabel lipgloss.Style
	Hint         lipgloss.Style
	Error        lipgloss.Style
	Success      lipgloss.Style

	Button       lipgloss.Style
	ButtonActive lipgloss.Style

	MenuItem       lipgloss.Style
	MenuItemActive lipgloss.Style

	StatusBar     lipgloss.Style
	StatusOffline lipgloss.Style
	StatusOnline  lipgloss.Style
	StatusPath    lipgloss.Style
}

// NewTheme detects the terminal and builds the styles. pref is "auto",
// "dark" or "light"; the last two override background detection.
func NewTheme(pref string) *Theme {
	profile := termenv.ColorProfile()
	isDark := termenv.HasDarkBackground()

	switch strings.ToLower(pref) {
	case "dark":
		isDark = true
	case "light":
		isDark = false
	}
	lipgloss.SetHasDarkBackground(isDark)

	t := &Theme{IsDark: isDark, ColorProfile: profile}
	t.initStyles()
	return t
}

func (t *Theme) initStyles() {
	t.App = lipgloss.NewStyle().Padding(1, 2)

	t.Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple)

	t.Subtitle = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)

	t.Box = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Purple).
		Padding(1, 3)

	t.Label = lipgloss.NewStyle().Foreground(TextSecondary)
	t.FocusedLabel = lipgloss.NewStyle().Foreground(Purple).Bold(true)
	t.Hint = lipgloss.NewStyle().Foreground(TextMuted)
	t.Error = lipgloss.NewStyle().Foreground(Rose).Bold(true)
	t.Success = lipgloss.NewStyle().Foreground(Emerald).Bold(true)

	t.Button = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Padding(0, 2).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(Overlay)
	t.ButtonActive = t.Button.
		Foreground(TextInverse).
		Background(Purple).
		BorderForeground(Purple).
		Bold(true)

	t.MenuItem = lipgloss.NewStyle().Foreground(TextPrimary).PaddingLeft(2)
	t.MenuItemActive = lipgloss.NewStyle().Foreground(Purple).Bold(true).PaddingLeft(0)

	t.StatusBar = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(SurfaceDim).
		Padding(0, 1)
	t.StatusOffline = lipgloss.NewStyle().Foreground(Rose).Background(SurfaceDim).Bold(true)
	t.StatusOnline = lipgloss.NewStyle().Foreground(Emerald).Background(SurfaceDim)
	t.StatusPath = lipgloss.NewStyle().Foreground(TextMuted).Background(SurfaceDim)
}

// RoleBadge renders the role label in its color.
func (t *Theme) RoleBadge(r access.Role) string {
	return lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(RoleColor(r)).
		Padding(0, 1).
		Render(r.Label())
}
