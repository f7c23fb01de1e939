// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bingocomunidade/bingo-tui/internal/security/access"
	"github.com/bingocomunidade/bingo-tui/internal/ui/styles"
)

func TestSessionTimeoutOverlay(t *testing.T) {
	o := NewSessionTimeoutOverlay()
	assert.Empty(t, o.View())

	o.SetSize(80, 24)
	o.Show(120)
	require.True(t, o.IsVisible())
	assert.Contains(t, o.View(), "2:00")

	o.SetSeconds(61)
	assert.Contains(t, o.View(), "1:01")

	o.SetSeconds(-4)
	assert.Contains(t, o.View(), "0:00")

	o.Hide()
	assert.False(t, o.IsVisible())
	assert.Empty(t, o.View())
}

func TestStatusBar(t *testing.T) {
	bar := NewStatusBar(styles.NewTheme("dark"))
	bar.Width = 80
	bar.Path = "/dashboard"

	out := bar.View()
	assert.Contains(t, out, "visitante")
	assert.Contains(t, out, "/dashboard")
	assert.NotContains(t, out, "OFFLINE")

	bar.UserName = "Maria Aparecida"
	bar.Role = access.RoleFaithful
	bar.Badge = "[OFFLINE]"
	bar.CartSize = 2
	out = bar.View()
	assert.Contains(t, out, "Maria Aparecida")
	assert.Contains(t, out, "[OFFLINE]")
	assert.Contains(t, out, "carrinho:2")
	assert.Equal(t, 80, lipgloss.Width(out))
}

func TestToasts(t *testing.T) {
	ts := NewToasts()
	cmd := ts.Push(ToastError, "falhou")
	require.NotNil(t, cmd)
	ts.Push(ToastSuccess, "ok")
	ts.Push(ToastInfo, "a")
	ts.Push(ToastInfo, "b")

	items := ts.Items()
	require.Len(t, items, 3, "oldest dropped")
	assert.Equal(t, "ok", items[0].Message)

	ts.Dismiss(items[0].ID)
	assert.Len(t, ts.Items(), 2)
	assert.True(t, strings.Contains(ts.View(), "[i] a"))

	ts.Clear()
	assert.Empty(t, ts.View())
}

func TestForm(t *testing.T) {
	f := NewForm(
		Field{Key: "login", Label: "Login"},
		Field{Key: "senha", Label: "Senha", Secret: true},
	)
	assert.Equal(t, 0, f.Focused())

	f, _ = f.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("ana")})
	f, _ = f.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.True(t, f.OnLast())
	f, _ = f.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s3nha")})

	assert.Equal(t, map[string]string{"login": "ana", "senha": "s3nha"}, f.Values())
	assert.NotContains(t, f.View(styles.NewTheme("dark")), "s3nha")

	f, _ = f.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, 0, f.Focused(), "focus wraps")
	f, _ = f.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, 1, f.Focused())

	f.SetValue("login", "bia")
	assert.Equal(t, "bia", f.Value("login"))
	assert.Equal(t, "", f.Value("missing"))
}
