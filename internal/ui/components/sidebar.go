// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/dsatutor/internal/model"
	"github.com/jeranaias/dsatutor/internal/ui/styles"
	"github.com/jeranaias/dsatutor/internal/util"
)

// =============================================================================
// GALLERY ITEMS
// =============================================================================

// GalleryItem is one selectable image reference.
type GalleryItem struct {
	Label       string
	Description string
	URL         string
}

// GalleryItems lists the topic images in number order followed by every
// image URL attached to tutor replies, oldest first.
func GalleryItems(images []model.TopicImage, messages []model.Message) []GalleryItem {
	descs := model.Describe(images)
	byNumber := make(map[int][]model.TopicImage, len(images))
	for _, img := range images {
		byNumber[img.Number] = append(byNumber[img.Number], img)
	}

	items := make([]GalleryItem, 0, len(images))
	for _, d := range descs {
		img := byNumber[d.Number][0]
		byNumber[d.Number] = byNumber[d.Number][1:]
		items = append(items, GalleryItem{
			Label:       fmt.Sprintf("Image %d", img.Number),
			Description: img.Description,
			URL:         img.URL,
		})
	}

	n := 0
	for _, m := range messages {
		for _, url := range m.ImageURLs {
			n++
			items = append(items, GalleryItem{
				Label: fmt.Sprintf("Reply image %d", n),
				URL:   url,
			})
		}
	}
	return items
}

// =============================================================================
// SIDEBAR
// =============================================================================

// SelectImageMsg is sent when the user picks a gallery item.
type SelectImageMsg struct {
	Item GalleryItem
}

// SidebarKeys are the bindings the sidebar reacts to while focused.
type SidebarKeys struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
}

// DefaultSidebarKeys returns the standard bindings.
func DefaultSidebarKeys() SidebarKeys {
	return SidebarKeys{
		Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Select: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "preview")),
	}
}

// Sidebar shows the chat id, the preference and the image list.
type Sidebar struct {
	ChatID     string
	Preference model.LearningPreference
	Width      int

	items   []GalleryItem
	cursor  int
	focused bool
	keys    SidebarKeys
}

// NewSidebar creates an unfocused sidebar.
func NewSidebar(width int) Sidebar {
	return Sidebar{Width: width, keys: DefaultSidebarKeys()}
}

// SetItems replaces the image list, keeping the cursor in range.
func (s *Sidebar) SetItems(items []GalleryItem) {
	s.items = items
	if s.cursor >= len(items) {
		s.cursor = max(0, len(items)-1)
	}
}

func (s Sidebar) Items() []GalleryItem { return s.items }
func (s Sidebar) Cursor() int          { return s.cursor }
func (s Sidebar) Focused() bool        { return s.focused }
func (s *Sidebar) Focus()              { s.focused = true }
func (s *Sidebar) Blur()               { s.focused = false }

// Update moves the cursor and emits SelectImageMsg while focused.
func (s Sidebar) Update(msg tea.Msg) (Sidebar, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok || !s.focused || len(s.items) == 0 {
		return s, nil
	}
	switch {
	case key.Matches(km, s.keys.Up):
		if s.cursor > 0 {
			s.cursor--
		}
	case key.Matches(km, s.keys.Down):
		if s.cursor < len(s.items)-1 {
			s.cursor++
		}
	case key.Matches(km, s.keys.Select):
		item := s.items[s.cursor]
		return s, func() tea.Msg { return SelectImageMsg{Item: item} }
	}
	return s, nil
}

// View renders the sidebar.
func (s Sidebar) View(theme *styles.Theme, height int) string {
	w := s.Width - 2
	if w < 10 {
		w = 10
	}
	var b strings.Builder

	b.WriteString(theme.SidebarTitle.Render("Chat Id"))
	b.WriteString("\n")
	chatID := s.ChatID
	if chatID == "" {
		chatID = "-"
	}
	b.WriteString(theme.ListMeta.Render(util.Truncate(chatID, w)))
	b.WriteString("\n\n")

	if p := s.Preference; p.Topic != "" {
		b.WriteString(theme.SidebarTitle.Render("Preference"))
		b.WriteString("\n")
		for _, row := range [][2]string{
			{"Mode", p.Mode.Title()},
			{"Topic", p.Topic},
			{"Sub topic", p.SubTopic},
			{"Level", p.Level.Title()},
		} {
			b.WriteString(theme.Label.Render(row[0]+": ") + util.Truncate(row[1], w-len(row[0])-2))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(theme.SidebarTitle.Render("Relevant Images & Docs"))
	b.WriteString("\n")
	if len(s.items) == 0 {
		b.WriteString(theme.Subtle.Render("none"))
	}
	for i, item := range s.items {
		line := item.Label
		if item.Description != "" {
			line += " " + theme.ListMeta.Render(util.Truncate(item.Description, w-util.Width(item.Label)-3))
		}
		if s.focused && i == s.cursor {
			b.WriteString(theme.ListSelected.Render(line))
		} else {
			b.WriteString(theme.ListItem.Render(line))
		}
		b.WriteString("\n")
	}

	return theme.Sidebar.Width(s.Width).Height(height).Render(strings.TrimRight(b.String(), "\n"))
}
