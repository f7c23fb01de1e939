// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bingocomunidade/bingo-tui/internal/ui/styles"
)

// ToastKind represents the type of toast notification.
type ToastKind int

const (
	ToastInfo ToastKind = iota
	ToastSuccess
	ToastError
)

// Display durations. Errors stay longer so they can be read.
const (
	SuccessToastDuration = 2 * time.Second
	ErrorToastDuration   = 3 * time.Second
	InfoToastDuration    = 3 * time.Second
)

// Toast is one notice.
type Toast struct {
	ID      int
	Kind    ToastKind
	Message string
}

// ToastDismissMsg removes the toast with ID.
type ToastDismissMsg struct {
	ID int
}

// Toasts is a small stack of notices. Newest last.
type Toasts struct {
	items  []Toast
	nextID int
	max    int
}

// NewToasts creates a stack keeping at most three notices.
func NewToasts() Toasts {
	return Toasts{max: 3}
}

// Push adds a notice and returns the command that dismisses it later.
func (t *Toasts) Push(kind ToastKind, message string) tea.Cmd {
	t.nextID++
	id := t.nextID
	t.items = append(t.items, Toast{ID: id, Kind: kind, Message: message})
	if len(t.items) > t.max {
		t.items = t.items[len(t.items)-t.max:]
	}

	d := InfoToastDuration
	switch kind {
	case ToastSuccess:
		d = SuccessToastDuration
	case ToastError:
		d = ErrorToastDuration
	}
	return tea.Tick(d, func(time.Time) tea.Msg { return ToastDismissMsg{ID: id} })
}

// Dismiss removes the notice with id.
func (t *Toasts) Dismiss(id int) {
	for i, it := range t.items {
		if it.ID == id {
			t.items = append(t.items[:i], t.items[i+1:]...)
			return
		}
	}
}

// Clear removes every notice.
func (t *Toasts) Clear() {
	t.items = nil
}

// Items returns the visible notices.
func (t Toasts) Items() []Toast {
	return t.items
}

// View renders the notices one per line.
func (t Toasts) View() string {
	if len(t.items) == 0 {
		return ""
	}
	lines := make([]string, 0, len(t.items))
	for _, it := range t.items {
		switch it.Kind {
		case ToastSuccess:
			lines = append(lines, styles.RenderSuccess(it.Message))
		case ToastError:
			lines = append(lines, styles.RenderError(it.Message))
		default:
			lines = append(lines, styles.RenderInfo(it.Message))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
