// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the colors and lipgloss styles shared by every
dsatutor screen.

# Colors (colors.go)

All colors are lipgloss.AdaptiveColor values so they follow the terminal's
light or dark background:

	Purple  - tutor messages, selections
	Cyan    - brand, prompts
	Emerald - success, feedback
	Amber   - questions, warnings
	Rose    - errors
	Sky     - exercise cards

# Theme (theme.go)

Theme bundles the styles used by the screens. NewTheme takes the configured
theme name ("auto", "dark" or "light"):

	theme := styles.NewTheme(cfg.UI.Theme)
	title := theme.Title.Render("Data Structures Tutor")

"auto" asks termenv for the background; the others force it, which also
pins glamour's markdown style through Theme.GlamourStyle.
*/
package styles
