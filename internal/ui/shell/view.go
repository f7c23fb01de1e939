// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package shell

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/bingocomunidade/bingo-tui/internal/router"
	"github.com/bingocomunidade/bingo-tui/internal/util"
)

var screenTitles = map[router.Screen]string{
	router.ScreenHome:                   "Bingo da Comunidade",
	router.ScreenLogin:                  "Entrar",
	router.ScreenAdminSiteLogin:         "Administração do Site",
	router.ScreenAdminParoquiaLogin:     "Administração da Paróquia",
	router.ScreenFirstAccessSetup:       "Primeiro acesso",
	router.ScreenDashboard:              "Painel",
	router.ScreenAdminSiteDashboard:     "Painel do Site",
	router.ScreenAdminSiteUsers:         "Usuários",
	router.ScreenAdminParoquiaDashboard: "Painel da Paróquia",
	router.ScreenProfile:                "Meu perfil",
	router.ScreenCart:                   "Carrinho",
	router.ScreenGame:                   "Jogo",
	router.ScreenHelp:                   "Ajuda",
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.overlay.IsVisible() {
		return m.overlay.View()
	}

	sections := []string{m.header(), m.body()}
	if t := m.toasts.View(); t != "" {
		sections = append(sections, t)
	}
	sections = append(sections,
		m.theme.Hint.Render(m.help.ShortHelpView(m.keys.ShortHelp())),
		m.status.View(),
	)
	return m.theme.App.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m Model) header() string {
	title := screenTitles[m.match.Route.Screen]
	if title == "" {
		title = screenTitles[router.ScreenHome]
	}
	head := m.theme.Title.Render(title)
	if u, ok := m.app.Session.User(); ok {
		head = lipgloss.JoinHorizontal(lipgloss.Center, head, "  ", m.theme.RoleBadge(u.Role))
	}
	return head
}

func (m Model) body() string {
	var sb strings.Builder

	switch m.match.Route.Screen {
	case router.ScreenHelp:
		sb.WriteString(m.viewport.View())
	case router.ScreenCart:
		sb.WriteString(m.cartView())
	case router.ScreenAdminSiteUsers:
		sb.WriteString(m.theme.Subtitle.Render("Gestão de usuários do site"))
		sb.WriteString("\n\n")
		sb.WriteString(m.menuView())
	case router.ScreenGame:
		sb.WriteString(m.theme.Subtitle.Render("Reservar cartela no jogo #" + m.match.Vars["id"]))
		sb.WriteString("\n\n")
		sb.WriteString(m.form.View(m.theme))
	default:
		if u, ok := m.app.Session.User(); ok && len(m.menu) > 0 {
			sb.WriteString(m.theme.Subtitle.Render("Olá, " + u.Name))
			sb.WriteString("\n\n")
		}
		if m.hasForm {
			sb.WriteString(m.form.View(m.theme))
		} else {
			sb.WriteString(m.menuView())
		}
	}

	if m.busy {
		sb.WriteString("\n\n")
		sb.WriteString(m.spinner.View() + " Aguarde...")
	}
	if m.formErr != "" {
		sb.WriteString("\n\n")
		sb.WriteString(m.theme.Error.Render(m.formErr))
	}
	return m.theme.Box.Render(sb.String())
}

func (m Model) menuView() string {
	lines := make([]string, len(m.menu))
	for i, it := range m.menu {
		if i == m.cursor {
			lines[i] = m.theme.MenuItemActive.Render("> " + it.label)
		} else {
			lines[i] = m.theme.MenuItem.Render("  " + it.label)
		}
	}
	return strings.Join(lines, "\n")
}

func (m Model) cartView() string {
	if len(m.cartItems) == 0 {
		return m.theme.Hint.Render("Seu carrinho está vazio")
	}

	var sb strings.Builder
	total := 0.0
	for i, it := range m.cartItems {
		line := util.PadRight(util.TruncateWidth(it.GameName, 24), 24) +
			util.PadRight(fmt.Sprintf("cartela %d", it.CardNumber), 16) +
			formatBRL(it.Price)
		if i == m.cursor {
			sb.WriteString(m.theme.MenuItemActive.Render("> " + line))
		} else {
			sb.WriteString(m.theme.MenuItem.Render("  " + line))
		}
		sb.WriteString("\n")
		total += it.Price
	}
	sb.WriteString("\n")
	sb.WriteString(m.theme.Label.Render("Total: " + formatBRL(total)))
	sb.WriteString("\n")
	sb.WriteString(m.theme.Hint.Render("d remover · c esvaziar · p limpar expirados"))
	return sb.String()
}

// formatBRL renders a price as "R$ 10,50".
func formatBRL(v float64) string {
	return "R$ " + strings.Replace(fmt.Sprintf("%.2f", v), ".", ",", 1)
}
