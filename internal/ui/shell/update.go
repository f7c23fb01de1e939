// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package shell

import (
	"errors"
	"log"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bingocomunidade/bingo-tui/internal/api"
	"github.com/bingocomunidade/bingo-tui/internal/events"
	"github.com/bingocomunidade/bingo-tui/internal/router"
	"github.com/bingocomunidade/bingo-tui/internal/security/access"
	"github.com/bingocomunidade/bingo-tui/internal/session"
	"github.com/bingocomunidade/bingo-tui/internal/ui/components"
)

// maxGuardHops bounds redirect chains between guarded routes.
const maxGuardHops = 4

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.overlay.SetSize(msg.Width, msg.Height)
		m.viewport.Width = msg.Width - 4
		m.viewport.Height = msg.Height - 8
		if m.match.Route.Screen == router.ScreenHelp {
			m.viewport.SetContent(renderHelp(m.viewport.Width, m.theme.IsDark))
		}

	case tea.KeyMsg:
		warning := m.overlay.IsVisible()
		m.app.Bus.Emit(events.KeyPress)
		if key.Matches(msg, m.keys.Quit) {
			return m.quit()
		}
		// The key that dismisses the countdown does nothing else.
		if !warning {
			cmds = append(cmds, m.handleKey(msg))
		}

	case tea.MouseMsg:
		m.app.Bus.Emit(mouseEvent(msg))

	case spinner.TickMsg:
		if m.busy {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case components.ToastDismissMsg:
		m.toasts.Dismiss(msg.ID)

	case loginDoneMsg:
		m.busy = false
		if msg.err != nil {
			if errors.Is(msg.err, session.ErrSetupRequired) {
				cmds = append(cmds, m.toasts.Push(components.ToastInfo, "Configure o primeiro acesso para continuar"))
				break
			}
			m.formErr = errorText(msg.err)
			cmds = append(cmds, m.toasts.Push(components.ToastError, m.formErr))
			break
		}
		cmds = append(cmds, m.toasts.Push(components.ToastSuccess, "Bem-vindo, "+msg.user.Name))

	case setupDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.formErr = errorText(msg.err)
			cmds = append(cmds, m.toasts.Push(components.ToastError, m.formErr))
			break
		}
		cmds = append(cmds, m.toasts.Push(components.ToastSuccess, "Administrador criado com sucesso"))

	case profileSavedMsg:
		m.busy = false
		if msg.err != nil {
			m.formErr = errorText(msg.err)
			cmds = append(cmds, m.toasts.Push(components.ToastError, m.formErr))
			break
		}
		m.formErr = ""
		cmds = append(cmds, m.toasts.Push(components.ToastSuccess, "Perfil atualizado"))

	case routeMsg:
		if msg.change.Full && m.wasAuthenticated && !m.app.Session.IsAuthenticated() {
			cmds = append(cmds, m.toasts.Push(components.ToastInfo, "Sua sessão foi encerrada"))
		}

	case sessionMsg, connectivityMsg:
		// State is read fresh below.
	}

	m.syncRoute()
	m.syncSession()
	return m, tea.Batch(cmds...)
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.app.Bus.Emit(events.BeforeUnload)
	return m, tea.Quit
}

// mouseEvent maps a mouse message onto an activity event.
func mouseEvent(msg tea.MouseMsg) events.Name {
	switch msg.Button {
	case tea.MouseButtonWheelUp, tea.MouseButtonWheelDown, tea.MouseButtonWheelLeft, tea.MouseButtonWheelRight:
		return events.Scroll
	}
	switch msg.Action {
	case tea.MouseActionPress:
		return events.PointerDown
	case tea.MouseActionRelease:
		return events.Click
	default:
		return events.PointerMove
	}
}

// =============================================================================
// ROUTE AND SESSION SYNC
// =============================================================================

// syncRoute evaluates the guard for the current path and follows its
// redirects, then rebuilds the screen if the path changed.
func (m *Model) syncRoute() {
	for i := 0; i < maxGuardHops; i++ {
		path := m.app.Router.CurrentPath()
		match, decision := m.app.Router.Evaluate(path, m.app.Session.Credentials())
		if !decision.Allow {
			log.Printf("NAVIGATION | guard path=%s redirect=%s reason=%s", path, decision.Redirect, decision.Reason)
			m.app.Router.Navigate(decision.Redirect)
			continue
		}
		if path != m.path {
			m.path = path
			m.match = match
			m.enterScreen()
		}
		return
	}
	log.Printf("NAVIGATION | guard redirect loop at %s", m.app.Router.CurrentPath())
}

// syncSession mirrors the monitor and connectivity state into the view.
func (m *Model) syncSession() {
	if m.app.Session.ShowWarning() {
		m.overlay.Show(m.app.Session.SecondsRemaining())
	} else {
		m.overlay.Hide()
	}

	m.wasAuthenticated = m.app.Session.IsAuthenticated()
	u, ok := m.app.Session.User()
	m.status.UserName, m.status.Role = "", ""
	if ok {
		m.status.UserName, m.status.Role = u.Name, u.Role
	}
	m.status.Badge = m.app.Probe.StatusBadge()
	m.status.Path = m.path
	m.status.Width = m.width
	m.status.CartSize = m.cartCount
}

// =============================================================================
// KEYS
// =============================================================================

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Logout):
		if m.app.Session.IsAuthenticated() {
			m.app.Session.Logout()
		}
		return nil
	case key.Matches(msg, m.keys.Help):
		m.app.Router.Navigate("/help")
		return nil
	case key.Matches(msg, m.keys.Back):
		m.back()
		return nil
	}

	if m.busy {
		return nil
	}
	if m.hasForm {
		return m.handleFormKey(msg)
	}

	switch m.match.Route.Screen {
	case router.ScreenHelp:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	case router.ScreenCart:
		return m.handleCartKey(msg)
	}
	return m.handleMenuKey(msg)
}

// back leaves the current screen: to the user's landing page when signed
// in, otherwise to the home screen.
func (m *Model) back() {
	target := "/"
	if u, ok := m.app.Session.User(); ok {
		target = access.LandingFor(u.Role)
	}
	if m.path == target {
		target = "/"
	}
	if m.path != target {
		m.app.Router.Navigate(target)
	}
}

func (m *Model) handleMenuKey(msg tea.KeyMsg) tea.Cmd {
	if len(m.menu) == 0 {
		return nil
	}
	switch {
	case key.Matches(msg, m.keys.Up):
		m.cursor = (m.cursor - 1 + len(m.menu)) % len(m.menu)
	case key.Matches(msg, m.keys.Down):
		m.cursor = (m.cursor + 1) % len(m.menu)
	case key.Matches(msg, m.keys.Select):
		item := m.menu[m.cursor]
		if item.action != nil {
			return item.action(m)
		}
		m.app.Router.Navigate(item.path)
	}
	return nil
}

func (m *Model) handleFormKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.Select) {
		if !m.form.OnLast() {
			m.form.Next()
			return nil
		}
		return m.submit()
	}
	var cmd tea.Cmd
	m.form, cmd = m.form.Update(msg)
	return cmd
}

func (m *Model) handleCartKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.cartItems)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Remove):
		if m.cursor < len(m.cartItems) {
			if err := m.app.Cart.Remove(m.cartItems[m.cursor].ID); err != nil {
				return m.toasts.Push(components.ToastError, "Erro ao remover cartela")
			}
			m.reloadCart()
			return m.toasts.Push(components.ToastSuccess, "Cartela removida")
		}
	case key.Matches(msg, m.keys.Clear):
		if err := m.app.Cart.Clear(); err != nil {
			return m.toasts.Push(components.ToastError, "Erro ao esvaziar carrinho")
		}
		m.reloadCart()
	case key.Matches(msg, m.keys.Purge):
		n := m.app.PurgeCart()
		m.reloadCart()
		if n > 0 {
			return m.toasts.Push(components.ToastInfo, "Cartelas expiradas removidas")
		}
	}
	return nil
}

func (m *Model) reloadCart() {
	items, err := m.app.Cart.Items()
	if err != nil {
		log.Printf("CART_ERROR | load failed: %v", err)
	}
	m.cartItems = items
	m.cartCount = len(items)
	if m.cursor >= len(items) {
		m.cursor = len(items) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// errorText extracts the message to show for err.
func errorText(err error) string {
	var le *session.LoginError
	if errors.As(err, &le) && le.Message != "" {
		return le.Message
	}
	var fe *session.FormError
	if errors.As(err, &fe) {
		return fe.Message
	}
	if errors.Is(err, session.ErrLoginInProgress) {
		return "Aguarde, login em andamento"
	}
	return api.Message(err, err.Error())
}
