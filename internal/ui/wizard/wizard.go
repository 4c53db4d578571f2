// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package wizard is the screen that creates a learning preference.
package wizard

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/jeranaias/dsatutor/internal/model"
	"github.com/jeranaias/dsatutor/internal/preference"
	"github.com/jeranaias/dsatutor/internal/ui/nav"
	"github.com/jeranaias/dsatutor/internal/ui/styles"
)

// Creator stores a new preference and returns its identifier.
type Creator interface {
	CreatePreference(ctx context.Context, pref model.LearningPreference) (string, error)
}

type field int

const (
	fieldMode field = iota
	fieldTopic
	fieldSubTopic
	fieldLevel
	fieldSubmit
	fieldCount
)

var fieldLabels = [...]string{"Learning mode", "Topic", "Sub topic", "Level"}

type createdMsg struct {
	id  string
	err error
}

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Left    key.Binding
	Right   key.Binding
	Submit  key.Binding
	History key.Binding
	Logout  key.Binding
	Quit    key.Binding
}

var keys = keyMap{
	Up:      key.NewBinding(key.WithKeys("up", "k", "shift+tab"), key.WithHelp("↑", "previous field")),
	Down:    key.NewBinding(key.WithKeys("down", "j", "tab"), key.WithHelp("↓", "next field")),
	Left:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←", "previous option")),
	Right:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→", "next option")),
	Submit:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "start")),
	History: key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "previous chats")),
	Logout:  key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "logout")),
	Quit:    key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("esc", "quit")),
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the preference wizard.
type Model struct {
	ctx     context.Context
	creator Creator
	userID  string
	theme   *styles.Theme
	logger  *zap.Logger

	// choice holds the selected option index per field; -1 is unset.
	choice  [4]int
	focus   field
	busy    bool
	spinner spinner.Model
	errText string
	width   int
	height  int
}

// New creates a wizard with nothing selected.
func New(ctx context.Context, creator Creator, userID string, theme *styles.Theme, logger *zap.Logger) Model {
	if logger == nil {
		logger = zap.NewNop()
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Spinner
	return Model{
		ctx:     ctx,
		creator: creator,
		userID:  userID,
		theme:   theme,
		logger:  logger.Named("wizard"),
		choice:  [4]int{-1, -1, -1, -1},
		spinner: sp,
	}
}

func (m Model) options(f field) []string {
	switch f {
	case fieldMode:
		out := make([]string, len(preference.Modes))
		for i, mode := range preference.Modes {
			out[i] = mode.Title()
		}
		return out
	case fieldTopic:
		return preference.TopicNames()
	case fieldSubTopic:
		if m.choice[fieldTopic] < 0 {
			return nil
		}
		return preference.Topics[m.choice[fieldTopic]].SubTopics
	case fieldLevel:
		out := make([]string, len(preference.Levels))
		for i, l := range preference.Levels {
			out[i] = l.Title()
		}
		return out
	}
	return nil
}

// Draft returns the preference built from the current selections.
func (m Model) Draft() model.LearningPreference {
	p := model.LearningPreference{UserID: m.userID}
	if i := m.choice[fieldMode]; i >= 0 {
		p.Mode = preference.Modes[i]
	}
	if i := m.choice[fieldTopic]; i >= 0 {
		p.Topic = preference.Topics[i].Name
		if j := m.choice[fieldSubTopic]; j >= 0 {
			p.SubTopic = preference.Topics[i].SubTopics[j]
		}
	}
	if i := m.choice[fieldLevel]; i >= 0 {
		p.Level = preference.Levels[i]
	}
	return p
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case createdMsg:
		m.busy = false
		if msg.err != nil {
			m.errText = "Could not save preference: " + msg.err.Error()
			return m, nil
		}
		return m, nav.Go(nav.RouteChat, msg.id)

	case spinner.TickMsg:
		if m.busy {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case m.busy:
		return m, nil
	case key.Matches(msg, keys.History):
		return m, nav.Go(nav.RouteHistory, "")
	case key.Matches(msg, keys.Logout):
		return m, nav.Logout()
	case key.Matches(msg, keys.Up):
		m.focus = (m.focus + fieldCount - 1) % fieldCount
	case key.Matches(msg, keys.Down):
		m.focus = (m.focus + 1) % fieldCount
	case key.Matches(msg, keys.Left):
		m.cycle(-1)
	case key.Matches(msg, keys.Right):
		m.cycle(1)
	case key.Matches(msg, keys.Submit):
		if m.focus != fieldSubmit {
			if m.choice[m.focus] < 0 {
				m.cycle(1)
			}
			m.focus++
			return m, nil
		}
		return m.submit()
	}
	return m, nil
}

// cycle moves the focused selector by delta, wrapping around.
func (m *Model) cycle(delta int) {
	if m.focus == fieldSubmit {
		return
	}
	opts := m.options(m.focus)
	if len(opts) == 0 {
		return
	}
	cur := m.choice[m.focus]
	if cur < 0 {
		cur = 0
		if delta < 0 {
			cur = len(opts) - 1
		}
	} else {
		cur = (cur + delta + len(opts)) % len(opts)
	}
	if m.focus == fieldTopic && cur != m.choice[fieldTopic] {
		m.choice[fieldSubTopic] = -1
	}
	m.choice[m.focus] = cur
	m.errText = ""
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	draft := m.Draft()
	if err := preference.Validate(draft); err != nil {
		m.errText = "Please select all fields"
		return m, nil
	}
	m.busy = true
	m.errText = ""
	ctx, creator, logger := m.ctx, m.creator, m.logger
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		id, err := creator.CreatePreference(ctx, draft)
		if err != nil {
			logger.Warn("create preference failed", zap.Error(err))
		} else {
			logger.Info("preference created", zap.String("id", id), zap.String("topic", draft.Topic))
		}
		return createdMsg{id: id, err: err}
	})
}

// View implements tea.Model.
func (m Model) View() string {
	t := m.theme
	lines := []string{t.Title.Render("Choose what to learn"), ""}

	for f := fieldMode; f < fieldSubmit; f++ {
		label := t.Label.Render(fieldLabels[f])
		if m.focus == f {
			label = t.FieldFocused.Render("› " + fieldLabels[f])
		}
		lines = append(lines, label, m.optionRow(f), "")
	}

	btn := t.Button
	if m.focus == fieldSubmit {
		btn = t.ButtonFocused
	}
	lines = append(lines, btn.Render("Start learning"))

	switch {
	case m.busy:
		lines = append(lines, m.spinner.View()+" "+t.Subtle.Render("Saving..."))
	case m.errText != "":
		lines = append(lines, styles.RenderError(m.errText))
	}

	lines = append(lines, "",
		strings.Join([]string{
			t.Shortcut("←/→", "choose"),
			t.Shortcut("↑/↓", "move"),
			t.Shortcut("ctrl+o", "previous chats"),
			t.Shortcut("ctrl+l", "logout"),
		}, "  "))

	form := t.Form.Render(strings.Join(lines, "\n"))
	if m.width == 0 {
		return form
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, form)
}

func (m Model) optionRow(f field) string {
	opts := m.options(f)
	if len(opts) == 0 {
		return m.theme.Subtle.Render("  select a topic first")
	}
	cells := make([]string, len(opts))
	for i, o := range opts {
		if i == m.choice[f] {
			cells[i] = m.theme.OptionActive.Render(o)
		} else {
			cells[i] = m.theme.Option.Render(o)
		}
	}
	return "  " + strings.Join(cells, " ")
}
