// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bingocomunidade/bingo-tui/internal/security/access"
)

func TestNewTheme_Preference(t *testing.T) {
	assert.True(t, NewTheme("dark").IsDark)
	assert.False(t, NewTheme("LIGHT").IsDark)
}

func TestRoleColor(t *testing.T) {
	assert.Equal(t, Rose, RoleColor(access.RoleSuperAdmin))
	assert.Equal(t, Amber, RoleColor(access.RoleParishCashier))
	assert.Equal(t, Emerald, RoleColor(access.RoleFaithful))
}

func TestRenderHelpersKeepIndicators(t *testing.T) {
	// Indicators survive even without color support.
	assert.True(t, strings.Contains(RenderError("falhou"), "[X] falhou"))
	assert.True(t, strings.Contains(RenderSuccess("ok"), "[OK] ok"))
	assert.True(t, strings.Contains(RenderWarning("cuidado"), "[!] cuidado"))
	assert.True(t, strings.Contains(RenderInfo("info"), "[i] info"))
}

func TestRoleBadgeShowsLabel(t *testing.T) {
	theme := NewTheme("dark")
	assert.Contains(t, theme.RoleBadge(access.RoleFaithful), access.RoleFaithful.Label())
}
