// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package shell

import (
	_ "embed"
	"log"

	"github.com/charmbracelet/glamour"
)

//go:embed help.md
var helpMarkdown string

// renderHelp renders the help page for the given width. Rendering errors
// fall back to the raw markdown.
func renderHelp(width int, dark bool) string {
	if width < 20 {
		width = 20
	}
	style := "light"
	if dark {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		log.Printf("UI_WARNING | help renderer: %v", err)
		return helpMarkdown
	}
	out, err := r.Render(helpMarkdown)
	if err != nil {
		log.Printf("UI_WARNING | help render: %v", err)
		return helpMarkdown
	}
	return out
}
