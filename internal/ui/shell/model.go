// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package shell is the bingo terminal front end: one Bubble Tea model that
// renders the current route and feeds user activity back to the session.
//
// Every key and mouse message is emitted on the application's event bus as
// user activity, and the route guard is evaluated on every update, so a
// session that disappears underneath a screen is noticed on the next
// message.
package shell

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bingocomunidade/bingo-tui/internal/app"
	"github.com/bingocomunidade/bingo-tui/internal/cart"
	"github.com/bingocomunidade/bingo-tui/internal/events"
	"github.com/bingocomunidade/bingo-tui/internal/router"
	"github.com/bingocomunidade/bingo-tui/internal/session"
	"github.com/bingocomunidade/bingo-tui/internal/ui/components"
	"github.com/bingocomunidade/bingo-tui/internal/ui/styles"
)

// menuItem is one entry of a dashboard menu. Exactly one of path or action
// is set.
type menuItem struct {
	label  string
	path   string
	action func(*Model) tea.Cmd
}

// Model is the root Bubble Tea model.
type Model struct {
	app   *app.App
	theme *styles.Theme
	keys  KeyMap
	help  help.Model

	width  int
	height int

	path  string
	match router.Match

	form    components.Form
	hasForm bool
	formErr string

	menu   []menuItem
	cursor int

	overlay components.SessionTimeoutOverlay
	toasts  components.Toasts
	status  components.StatusBar
	spinner spinner.Model
	busy    bool

	viewport viewport.Model

	cartItems []cart.Item
	cartCount int

	wasAuthenticated bool
	quitting         bool
}

// New creates the model for a. The app must already be started.
func New(a *app.App) Model {
	theme := styles.NewTheme(a.Config.UI.Theme)
	m := Model{
		app:      a,
		theme:    theme,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		width:    80,
		height:   24,
		overlay:  components.NewSessionTimeoutOverlay(),
		toasts:   components.NewToasts(),
		status:   components.NewStatusBar(theme),
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		viewport: viewport.New(76, 16),
	}
	m.wasAuthenticated = a.Session.IsAuthenticated()
	m.syncRoute()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Attach routes asynchronous notifications into p: monitor callbacks, route
// changes made outside Update and connectivity transitions. Sends happen on
// their own goroutine because most of these fire while Update is running.
func Attach(p *tea.Program, a *app.App) {
	send := func(msg tea.Msg) { go p.Send(msg) }

	a.Session.Monitor().SetCallbacks(session.Callbacks{
		OnWarning: func(int) { send(sessionMsg{}) },
		OnTick:    func(int) { send(sessionMsg{}) },
		OnReset:   func() { send(sessionMsg{}) },
	})
	a.Router.OnChange(func(c router.Change) { send(routeMsg{change: c}) })
	a.Bus.Subscribe(events.Offline, func(events.Event) { send(connectivityMsg{}) })
	a.Bus.Subscribe(events.Online, func(events.Event) { send(connectivityMsg{}) })
}

// Run starts the application at startPath and blocks until the user quits.
func Run(ctx context.Context, a *app.App, startPath string) error {
	opts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}
	if a.Config.UI.Mouse {
		opts = append(opts, tea.WithMouseAllMotion())
	}

	a.Start(ctx, startPath)
	go a.RefreshSettings(ctx)

	p := tea.NewProgram(New(a), opts...)
	Attach(p, a)
	_, err := p.Run()
	return err
}
