// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme names accepted by NewTheme.
const (
	ThemeAuto  = "auto"
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// Theme holds the styled components for the application.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// ==========================================================================
	// LAYOUT
	// ==========================================================================

	App     lipgloss.Style
	Title   lipgloss.Style
	Subtle  lipgloss.Style
	Divider lipgloss.Style

	// ==========================================================================
	// FORMS
	// ==========================================================================

	Form          lipgloss.Style
	Label         lipgloss.Style
	FieldFocused  lipgloss.Style
	Option        lipgloss.Style
	OptionActive  lipgloss.Style
	Button        lipgloss.Style
	ButtonFocused lipgloss.Style

	// ==========================================================================
	// MESSAGES
	// ==========================================================================

	UserLabel      lipgloss.Style
	UserBody       lipgloss.Style
	AssistantLabel lipgloss.Style
	AssistantBody  lipgloss.Style
	Bold           lipgloss.Style
	Question       lipgloss.Style
	Feedback       lipgloss.Style
	Source         lipgloss.Style
	Link           lipgloss.Style

	// ==========================================================================
	// CODE AND EXERCISES
	// ==========================================================================

	CodeBlock     lipgloss.Style
	CodeLangBadge lipgloss.Style
	CodeLineNum   lipgloss.Style
	Exercise      lipgloss.Style
	ExerciseTitle lipgloss.Style
	ExerciseLabel lipgloss.Style

	// ==========================================================================
	// SIDEBAR AND LISTS
	// ==========================================================================

	Sidebar      lipgloss.Style
	SidebarTitle lipgloss.Style
	ListItem     lipgloss.Style
	ListSelected lipgloss.Style
	ListMeta     lipgloss.Style

	// ==========================================================================
	// STATUS
	// ==========================================================================

	StatusBar    lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style
	Spinner      lipgloss.Style
	ErrorText    lipgloss.Style
	SuccessText  lipgloss.Style
}

// NewTheme creates a theme. Unknown names behave like ThemeAuto.
func NewTheme(name string) *Theme {
	profile := termenv.ColorProfile()

	var dark bool
	switch name {
	case ThemeDark:
		dark = true
		lipgloss.SetHasDarkBackground(true)
	case ThemeLight:
		dark = false
		lipgloss.SetHasDarkBackground(false)
	default:
		dark = termenv.HasDarkBackground()
	}

	t := &Theme{
		IsDark:       dark,
		HasTrueColor: profile == termenv.TrueColor,
		ColorProfile: profile,
	}
	t.initStyles()
	return t
}

// GlamourStyle returns the glamour standard style matching the background.
func (t *Theme) GlamourStyle() string {
	if t.IsDark {
		return "dark"
	}
	return "light"
}

func (t *Theme) initStyles() {
	t.App = lipgloss.NewStyle().Padding(0, 1)

	t.Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple)

	t.Subtle = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.Divider = lipgloss.NewStyle().
		Foreground(Overlay)

	// Forms
	t.Form = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Purple).
		Padding(1, 3)

	t.Label = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Bold(true)

	t.FieldFocused = lipgloss.NewStyle().
		Foreground(Cyan)

	t.Option = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Padding(0, 1)

	t.OptionActive = lipgloss.NewStyle().
		Background(Purple).
		Foreground(TextInverse).
		Bold(true).
		Padding(0, 1)

	t.Button = lipgloss.NewStyle().
		Foreground(TextSecondary).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(OverlayDim).
		Padding(0, 2)

	t.ButtonFocused = t.Button.
		Foreground(Cyan).
		BorderForeground(Cyan).
		Bold(true)

	// Messages
	t.UserLabel = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.UserBody = lipgloss.NewStyle().
		Foreground(UserBubbleFg).
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(UserBubbleBorder).
		PaddingLeft(1)

	t.AssistantLabel = lipgloss.NewStyle().
		Foreground(Purple).
		Bold(true)

	t.AssistantBody = lipgloss.NewStyle().
		Foreground(AssistantBubbleFg).
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(AssistantBubbleBorder).
		PaddingLeft(1)

	t.Bold = lipgloss.NewStyle().Bold(true)

	t.Question = lipgloss.NewStyle().
		Foreground(Amber).
		Background(QuestionBg).
		Bold(true)

	t.Feedback = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(Emerald).
		PaddingLeft(1)

	t.Source = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)

	t.Link = lipgloss.NewStyle().
		Foreground(Sky).
		Underline(true)

	// Code and exercises
	t.CodeBlock = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.CodeLangBadge = lipgloss.NewStyle().
		Foreground(TextMuted).
		Background(OverlayDim).
		Padding(0, 1).
		Bold(true)

	t.CodeLineNum = lipgloss.NewStyle().
		Foreground(TextMuted).
		Width(4).
		Align(lipgloss.Right).
		MarginRight(1)

	t.Exercise = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Sky).
		Padding(0, 1)

	t.ExerciseTitle = lipgloss.NewStyle().
		Foreground(Sky).
		Bold(true)

	t.ExerciseLabel = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Bold(true)

	// Sidebar and lists
	t.Sidebar = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderRight(true).
		BorderForeground(Overlay).
		PaddingRight(1)

	t.SidebarTitle = lipgloss.NewStyle().
		Foreground(Purple).
		Bold(true).
		MarginBottom(1)

	t.ListItem = lipgloss.NewStyle().
		Foreground(TextPrimary).
		PaddingLeft(2)

	t.ListSelected = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true).
		SetString("> ")

	t.ListMeta = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Status
	t.StatusBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)

	t.ShortcutKey = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.Spinner = lipgloss.NewStyle().
		Foreground(Purple)

	t.ErrorText = lipgloss.NewStyle().
		Foreground(Rose)

	t.SuccessText = lipgloss.NewStyle().
		Foreground(Emerald)
}

// Shortcut renders a "key desc" pair for a status bar.
func (t *Theme) Shortcut(key, desc string) string {
	return t.ShortcutKey.Render(key) + " " + t.ShortcutDesc.Render(desc)
}
