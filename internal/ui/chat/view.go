// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/dsatutor/internal/conversation"
	"github.com/jeranaias/dsatutor/internal/ui/styles"
	"github.com/jeranaias/dsatutor/internal/util"
)

// =============================================================================
// VIEW
// =============================================================================

// View implements tea.Model.
func (m Model) View() string {
	if m.preview != nil {
		return m.preview.View(m.theme, max(m.width, 40), max(m.height, 10))
	}

	body := m.viewport.View()
	if m.sidebarVisible() {
		side := m.sidebar.View(m.theme, m.viewport.Height)
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, side)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		body,
		m.renderInput(),
		m.renderStatusBar(),
	)
}

func (m Model) renderHeader() string {
	title := m.theme.Title.Render("DSA Tutor")
	if p := m.ctrl.Session().Preference; p.Topic != "" {
		title += "  " + m.theme.Subtle.Render(p.Summary())
	}
	return title + "\n" + m.theme.Divider.Render(strings.Repeat("─", max(m.width, 1)))
}

func (m Model) renderInput() string {
	box := m.theme.Form.Width(max(m.width-4, 10)).Padding(0, 1).BorderForeground(styles.Overlay)
	if m.focus == focusInput {
		box = box.BorderForeground(styles.Cyan)
	}
	line := m.input.View()
	if m.ctrl.State().Request == conversation.Pending {
		line = m.theme.Subtle.Render("> waiting for the tutor...")
	}
	return box.Render(line)
}

func (m Model) renderStatusBar() string {
	if m.status != "" {
		style := m.theme.SuccessText
		if m.statusErr {
			style = m.theme.ErrorText
		}
		return m.theme.StatusBar.Render(style.Render(util.Truncate(m.status, max(m.width-2, 10))))
	}
	hints := make([]string, 0, len(m.keys.ShortHelp()))
	for _, b := range m.keys.ShortHelp() {
		hints = append(hints, m.theme.Shortcut(b.Help().Key, b.Help().Desc))
	}
	return m.theme.StatusBar.Render(strings.Join(hints, "  "))
}
