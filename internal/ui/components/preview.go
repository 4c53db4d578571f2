// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/dsatutor/internal/ui/styles"
	"github.com/jeranaias/dsatutor/internal/util"
)

// PreviewClosedMsg is sent when the preview is dismissed.
type PreviewClosedMsg struct{}

// PreviewOpenedMsg reports the result of opening the image externally.
type PreviewOpenedMsg struct {
	URL string
	Err error
}

var (
	previewOpenKey  = key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open in browser"))
	previewCloseKey = key.NewBinding(key.WithKeys("esc", "q"), key.WithHelp("esc", "back"))
)

// Preview shows a single gallery item full screen.
type Preview struct {
	Item GalleryItem
	// Opener is called by the open key; nil means util.OpenExternal.
	Opener func(url string) error
}

// NewPreview creates a preview for an item.
func NewPreview(item GalleryItem) Preview {
	return Preview{Item: item}
}

// Update handles the open and close keys.
func (p Preview) Update(msg tea.Msg) (Preview, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}
	switch {
	case key.Matches(km, previewCloseKey):
		return p, func() tea.Msg { return PreviewClosedMsg{} }
	case key.Matches(km, previewOpenKey):
		url, open := p.Item.URL, p.Opener
		if open == nil {
			open = util.OpenExternal
		}
		return p, func() tea.Msg { return PreviewOpenedMsg{URL: url, Err: open(url)} }
	}
	return p, nil
}

// View renders the preview centred in the given area.
func (p Preview) View(theme *styles.Theme, width, height int) string {
	inner := min(width-8, 90)
	if inner < 20 {
		inner = 20
	}
	wrap := lipgloss.NewStyle().Width(inner)

	parts := []string{theme.Title.Render(p.Item.Label)}
	if p.Item.URL != "" {
		parts = append(parts, theme.Link.Render(p.Item.URL))
	}
	if p.Item.Description != "" {
		parts = append(parts, "", wrap.Render(p.Item.Description))
	}
	parts = append(parts, "",
		theme.Shortcut(previewOpenKey.Help().Key, previewOpenKey.Help().Desc)+"  "+
			theme.Shortcut(previewCloseKey.Help().Key, previewCloseKey.Help().Desc))

	box := theme.Form.Render(strings.Join(parts, "\n"))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
