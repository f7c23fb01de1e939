// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/bingocomunidade/bingo-tui/internal/security/access"
	"github.com/bingocomunidade/bingo-tui/internal/ui/styles"
	"github.com/bingocomunidade/bingo-tui/internal/util"
)

// StatusBar is the bottom line of every screen.
type StatusBar struct {
	theme *styles.Theme

	UserName string
	Role     access.Role
	// Badge is the connectivity marker; empty means online.
	Badge    string
	Path     string
	Width    int
	CartSize int
}

// NewStatusBar creates a status bar drawn with theme.
func NewStatusBar(theme *styles.Theme) StatusBar {
	return StatusBar{theme: theme}
}

// View renders the bar padded to Width. The user name is truncated first
// when space runs out.
func (s StatusBar) View() string {
	t := s.theme

	var right []string
	if s.CartSize > 0 {
		right = append(right, t.StatusBar.Render("carrinho:"+strconv.Itoa(s.CartSize)))
	}
	if s.Badge != "" {
		right = append(right, t.StatusOffline.Render(" "+s.Badge+" "))
	} else {
		right = append(right, t.StatusOnline.Render(" online "))
	}
	right = append(right, t.StatusPath.Render(" "+s.Path+" "))
	rightStr := strings.Join(right, "")

	var left string
	if s.UserName != "" {
		left = t.RoleBadge(s.Role)
	}
	nameRoom := s.Width - lipgloss.Width(rightStr) - lipgloss.Width(left) - 3
	name := "visitante"
	if s.UserName != "" {
		name = s.UserName
	}
	if nameRoom < 0 {
		nameRoom = 0
	}
	left = t.StatusBar.Render(util.TruncateWidth(name, nameRoom)) + left

	gap := s.Width - lipgloss.Width(left) - lipgloss.Width(rightStr)
	if gap < 1 {
		gap = 1
	}
	fill := t.StatusBar.Padding(0)
	return left + fill.Render(strings.Repeat(" ", gap)) + rightStr
}
