// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bingocomunidade/bingo-tui/internal/ui/styles"
)

// Field describes one form input.
type Field struct {
	Key         string
	Label       string
	Placeholder string
	Secret      bool
	Value       string
	CharLimit   int
}

// Form is a column of labelled text inputs. Tab and the arrow keys move the
// focus; the caller decides what Enter does.
type Form struct {
	fields []Field
	inputs []textinput.Model
	focus  int
}

// NewForm builds a form with the first field focused.
func NewForm(fields ...Field) Form {
	f := Form{fields: fields, inputs: make([]textinput.Model, len(fields))}
	for i, fd := range fields {
		in := textinput.New()
		in.Placeholder = fd.Placeholder
		in.Prompt = ""
		if fd.CharLimit > 0 {
			in.CharLimit = fd.CharLimit
		}
		if fd.Secret {
			in.EchoMode = textinput.EchoPassword
			in.EchoCharacter = '•'
		}
		in.SetValue(fd.Value)
		f.inputs[i] = in
	}
	f.setFocus(0)
	return f
}

func (f *Form) setFocus(i int) {
	if len(f.inputs) == 0 {
		return
	}
	if i < 0 {
		i = len(f.inputs) - 1
	}
	if i >= len(f.inputs) {
		i = 0
	}
	f.inputs[f.focus].Blur()
	f.focus = i
	f.inputs[i].Focus()
}

// Focused returns the index of the focused field.
func (f Form) Focused() int {
	return f.focus
}

// OnLast reports whether the last field has focus.
func (f Form) OnLast() bool {
	return f.focus == len(f.inputs)-1
}

// Next moves the focus forward, wrapping around.
func (f *Form) Next() {
	f.setFocus(f.focus + 1)
}

// Value returns the value of the field with key.
func (f Form) Value(key string) string {
	for i, fd := range f.fields {
		if fd.Key == key {
			return f.inputs[i].Value()
		}
	}
	return ""
}

// SetValue replaces the value of the field with key.
func (f *Form) SetValue(key, value string) {
	for i, fd := range f.fields {
		if fd.Key == key {
			f.inputs[i].SetValue(value)
		}
	}
}

// Values returns every value by key.
func (f Form) Values() map[string]string {
	out := make(map[string]string, len(f.fields))
	for i, fd := range f.fields {
		out[fd.Key] = f.inputs[i].Value()
	}
	return out
}

// Update handles focus movement and forwards everything else to the
// focused input.
func (f Form) Update(msg tea.Msg) (Form, tea.Cmd) {
	if len(f.inputs) == 0 {
		return f, nil
	}
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "tab", "down":
			f.setFocus(f.focus + 1)
			return f, nil
		case "shift+tab", "up":
			f.setFocus(f.focus - 1)
			return f, nil
		}
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd
}

// View renders the labelled inputs.
func (f Form) View(theme *styles.Theme) string {
	var sb strings.Builder
	for i, fd := range f.fields {
		label := theme.Label
		if i == f.focus {
			label = theme.FocusedLabel
		}
		sb.WriteString(label.Render(fd.Label))
		sb.WriteString("\n")
		sb.WriteString(f.inputs[i].View())
		if i < len(f.fields)-1 {
			sb.WriteString("\n\n")
		}
	}
	return sb.String()
}
