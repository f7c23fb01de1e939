// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the bingo TUI.

# Color System (colors.go)

All colors are Lip Gloss AdaptiveColors, so they follow the terminal's light
or dark background:

  - Purple - brand accent, titles, focused inputs
  - Cyan - links and informational badges
  - Emerald - success and member role badge
  - Amber - warnings, the inactivity countdown, parish admin badge
  - Rose - errors, offline badge, top admin badge

Every status color is paired with an ASCII indicator (StatusIndicators) so
meaning never depends on color alone.

# Theme (theme.go)

NewTheme detects the terminal's color profile and background with termenv.
The "dark" and "light" preferences override detection.

	theme := styles.NewTheme("auto")
	fmt.Println(theme.Title.Render("Bingo da Comunidade"))
*/
package styles
