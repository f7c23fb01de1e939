// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package shell

import (
	"context"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bingocomunidade/bingo-tui/internal/cart"
	"github.com/bingocomunidade/bingo-tui/internal/router"
	"github.com/bingocomunidade/bingo-tui/internal/session"
	"github.com/bingocomunidade/bingo-tui/internal/ui/components"
)

// enterScreen resets per-screen state for the newly matched route.
func (m *Model) enterScreen() {
	m.form = components.Form{}
	m.hasForm = false
	m.formErr = ""
	m.menu = nil
	m.cursor = 0

	switch m.match.Route.Screen {
	case router.ScreenLogin:
		m.setForm(
			components.Field{Key: "identifier", Label: "Email ou CPF", Placeholder: "seu@email.com", CharLimit: 120},
			components.Field{Key: "senha", Label: "Senha", Secret: true, CharLimit: 64},
		)
	case router.ScreenAdminSiteLogin:
		m.setForm(
			components.Field{Key: "identifier", Label: "Login", Placeholder: "admin", CharLimit: 120},
			components.Field{Key: "senha", Label: "Senha", Secret: true, CharLimit: 64},
		)
	case router.ScreenAdminParoquiaLogin:
		m.setForm(
			components.Field{Key: "identifier", Label: "Email", Placeholder: "admin@paroquia.com", CharLimit: 120},
			components.Field{Key: "senha", Label: "Senha", Secret: true, CharLimit: 64},
		)
	case router.ScreenFirstAccessSetup:
		m.setForm(
			components.Field{Key: "nome", Label: "Nome completo", CharLimit: 120},
			components.Field{Key: "cpf", Label: "CPF", Placeholder: "000.000.000-00", CharLimit: 14},
			components.Field{Key: "email", Label: "Email", CharLimit: 120},
			components.Field{Key: "whatsapp", Label: "WhatsApp", Placeholder: "+55 (11) 99999-9999", CharLimit: 20},
			components.Field{Key: "senha", Label: "Senha", Secret: true, CharLimit: session.MaxPasswordLength},
			components.Field{Key: "confirmacao", Label: "Confirmar senha", Secret: true, CharLimit: session.MaxPasswordLength},
		)
	case router.ScreenProfile:
		u, _ := m.app.Session.User()
		m.setForm(
			components.Field{Key: "nome", Label: "Nome", Value: u.Name, CharLimit: 120},
			components.Field{Key: "email", Label: "Email", Value: u.Email, CharLimit: 120},
			components.Field{Key: "whatsapp", Label: "WhatsApp", Value: u.Whatsapp, CharLimit: 20},
		)
	case router.ScreenGame:
		m.setForm(
			components.Field{Key: "cartela", Label: "Número da cartela", CharLimit: 6},
			components.Field{Key: "valor", Label: "Valor (R$)", Placeholder: "10,00", CharLimit: 10},
		)

	case router.ScreenHome:
		m.menu = []menuItem{
			{label: "Entrar", path: "/login"},
			{label: "Administração do site", path: "/admin-site/login"},
			{label: "Administração da paróquia", path: "/admin-paroquia/login"},
			{label: "Ajuda", path: "/help"},
		}
		if m.app.Session.NeedsSetup() {
			m.menu = append([]menuItem{{label: "Concluir primeiro acesso", path: session.FirstAccessSetupPath}}, m.menu...)
		}
	case router.ScreenDashboard:
		m.menu = []menuItem{
			{label: "Meu carrinho", path: "/cart"},
			{label: "Meu perfil", path: "/profile"},
			{label: "Sair", action: logoutAction},
		}
	case router.ScreenAdminSiteDashboard:
		m.menu = []menuItem{
			{label: "Usuários", path: "/admin-site/usuarios"},
			{label: "Meu perfil", path: "/profile"},
			{label: "Sair", action: logoutAction},
		}
	case router.ScreenAdminParoquiaDashboard:
		m.menu = []menuItem{
			{label: "Meu perfil", path: "/profile"},
			{label: "Sair", action: logoutAction},
		}
	case router.ScreenAdminSiteUsers:
		m.menu = []menuItem{
			{label: "Voltar ao painel", path: "/admin-site/dashboard"},
		}
	case router.ScreenCart:
		m.reloadCart()
	case router.ScreenHelp:
		m.viewport.GotoTop()
		m.viewport.SetContent(renderHelp(m.viewport.Width, m.theme.IsDark))
	}
}

func (m *Model) setForm(fields ...components.Field) {
	m.form = components.NewForm(fields...)
	m.hasForm = true
}

func logoutAction(m *Model) tea.Cmd {
	m.app.Session.Logout()
	return nil
}

// submit runs the action of the current form screen.
func (m *Model) submit() tea.Cmd {
	m.formErr = ""
	v := m.form.Values()
	sess := m.app.Session

	switch m.match.Route.Screen {
	case router.ScreenLogin, router.ScreenAdminSiteLogin, router.ScreenAdminParoquiaLogin:
		portal := portalFor(m.match.Route.Screen)
		identifier, password := v["identifier"], v["senha"]
		if strings.TrimSpace(identifier) == "" || password == "" {
			m.formErr = "Preencha todos os campos"
			return nil
		}
		return m.startBusy(func() tea.Msg {
			u, err := sess.LoginAs(context.Background(), portal, identifier, password)
			return loginDoneMsg{user: u, err: err}
		})

	case router.ScreenFirstAccessSetup:
		req, err := session.BootstrapForm{
			Nome:        v["nome"],
			CPF:         v["cpf"],
			Email:       v["email"],
			Whatsapp:    v["whatsapp"],
			Senha:       v["senha"],
			Confirmacao: v["confirmacao"],
		}.Request()
		if err != nil {
			m.formErr = errorText(err)
			return nil
		}
		return m.startBusy(func() tea.Msg {
			u, err := sess.Bootstrap(context.Background(), req)
			return setupDoneMsg{user: u, err: err}
		})

	case router.ScreenProfile:
		patch := profilePatch(v)
		if patch.Empty() {
			return nil
		}
		return m.startBusy(func() tea.Msg {
			u, err := sess.SaveProfile(context.Background(), patch)
			return profileSavedMsg{user: u, err: err}
		})

	case router.ScreenGame:
		return m.reserveCard(v)
	}
	return nil
}

func (m *Model) startBusy(run tea.Cmd) tea.Cmd {
	m.busy = true
	return tea.Batch(m.spinner.Tick, run)
}

func portalFor(s router.Screen) session.Portal {
	switch s {
	case router.ScreenAdminSiteLogin:
		return session.PortalAdminSite
	case router.ScreenAdminParoquiaLogin:
		return session.PortalAdminParoquia
	default:
		return session.PortalGeneral
	}
}

// profilePatch keeps only the fields that were filled in.
func profilePatch(v map[string]string) session.UserPatch {
	var p session.UserPatch
	set := func(dst **string, s string) {
		if s = strings.TrimSpace(s); s != "" {
			*dst = &s
		}
	}
	set(&p.Name, v["nome"])
	set(&p.Email, v["email"])
	set(&p.Whatsapp, v["whatsapp"])
	return p
}

// reserveCard adds the card typed on the game screen to the cart.
func (m *Model) reserveCard(v map[string]string) tea.Cmd {
	gameID, err := strconv.ParseInt(m.match.Vars["id"], 10, 64)
	if err != nil {
		m.formErr = "Jogo inválido"
		return nil
	}
	number, err := strconv.Atoi(strings.TrimSpace(v["cartela"]))
	if err != nil || number <= 0 {
		m.formErr = "Número da cartela inválido"
		return nil
	}
	price, err := parsePrice(v["valor"])
	if err != nil {
		m.formErr = "Valor inválido"
		return nil
	}

	_, err = m.app.Cart.Add(cart.Item{
		GameID:     gameID,
		GameName:   "Jogo #" + m.match.Vars["id"],
		GameStatus: cart.GameScheduled,
		CardNumber: number,
		Price:      price,
	})
	if err != nil {
		return m.toasts.Push(components.ToastError, "Erro ao adicionar cartela")
	}
	m.form.SetValue("cartela", "")
	count, _ := m.app.Cart.Count()
	m.cartCount = count
	return m.toasts.Push(components.ToastSuccess, "Cartela "+strconv.Itoa(number)+" adicionada ao carrinho")
}

// parsePrice accepts "10", "10.50" and "10,50".
func parsePrice(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return 0, strconv.ErrSyntax
	}
	p, err := strconv.ParseFloat(s, 64)
	if err != nil || p < 0 {
		return 0, strconv.ErrSyntax
	}
	return p, nil
}
