// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/dsatutor/internal/content"
	"github.com/jeranaias/dsatutor/internal/ui/styles"
)

// ExerciseToggleKey expands or collapses the focused exercise.
var ExerciseToggleKey = key.NewBinding(
	key.WithKeys("enter", " "),
	key.WithHelp("enter/space", "toggle exercise"),
)

// =============================================================================
// EXERCISE CARD
// =============================================================================

// Exercise shows one practice exercise. The header is always visible; the
// question, code and hint only while expanded.
type Exercise struct {
	exercise  content.Exercise
	expanded  bool
	focused   bool
	codeStyle string
}

// NewExercise creates an expanded, unfocused card.
func NewExercise(ex content.Exercise) Exercise {
	return Exercise{exercise: ex, expanded: true, codeStyle: DefaultCodeStyle}
}

// Content returns the exercise being shown.
func (e Exercise) Content() content.Exercise { return e.exercise }

func (e Exercise) Expanded() bool { return e.expanded }
func (e Exercise) Focused() bool  { return e.focused }

// Focus lets the card receive the toggle key.
func (e *Exercise) Focus() { e.focused = true }

// Blur stops the card receiving the toggle key.
func (e *Exercise) Blur() { e.focused = false }

// Toggle flips between expanded and collapsed.
func (e *Exercise) Toggle() { e.expanded = !e.expanded }

// SetCodeStyle sets the chroma style used for the exercise code.
func (e *Exercise) SetCodeStyle(style string) { e.codeStyle = style }

// Update toggles on the toggle key while focused. Nothing else changes the
// expanded state.
func (e Exercise) Update(msg tea.Msg) (Exercise, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok && e.focused && key.Matches(km, ExerciseToggleKey) {
		e.Toggle()
	}
	return e, nil
}

// View renders the card at the given width.
func (e Exercise) View(theme *styles.Theme, width int) string {
	ex := e.exercise

	marker := "▾"
	if !e.expanded {
		marker = "▸"
	}
	header := theme.ExerciseTitle.Render(marker + " " + ex.Title)
	if e.focused {
		header += " " + theme.Subtle.Render("("+ExerciseToggleKey.Help().Key+")")
	}

	parts := []string{header}
	if e.expanded {
		inner := width - 4
		if inner < 20 {
			inner = 20
		}
		wrap := lipgloss.NewStyle().Width(inner)

		if q := questionProse(ex); q != "" {
			parts = append(parts,
				theme.ExerciseLabel.Render("Question"),
				wrap.Render(q))
		}
		if ex.HasCode() {
			cb := NewCodeBlock(ex.DisplayLanguage(), ex.Code)
			cb.MaxWidth = inner
			cb.Style = e.codeStyle
			parts = append(parts, cb.Render(theme))
		}
		if ex.Hint != "" {
			parts = append(parts,
				theme.ExerciseLabel.Render("Hint"),
				wrap.Render(ex.Hint))
		}
	}

	box := theme.Exercise
	if e.focused {
		box = box.BorderForeground(styles.Cyan)
	}
	return box.Render(strings.Join(parts, "\n"))
}

// questionProse drops the first fenced block from the question, since the
// code is shown highlighted below it.
func questionProse(ex content.Exercise) string {
	q := ex.Question
	if !ex.HasCode() {
		return q
	}
	open := strings.Index(q, "```")
	if open < 0 {
		return q
	}
	rest := q[open+3:]
	end := strings.Index(rest, "```")
	if end < 0 {
		return strings.TrimSpace(q[:open])
	}
	return strings.TrimSpace(q[:open] + rest[end+3:])
}
