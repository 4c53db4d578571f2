// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history lists the user's previous tutoring sessions.
package history

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/dsatutor/internal/model"
	"github.com/jeranaias/dsatutor/internal/ui/nav"
	"github.com/jeranaias/dsatutor/internal/ui/styles"
	"github.com/jeranaias/dsatutor/internal/util"
)

// Backend reads and deletes saved preferences.
type Backend interface {
	PreviousPreferences(ctx context.Context, userID string) ([]model.LearningPreference, error)
	DeletePreference(ctx context.Context, id string) error
}

type loadedMsg struct {
	prefs []model.LearningPreference
	err   error
}

type deletedMsg struct {
	id  string
	err error
}

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Open   key.Binding
	Delete key.Binding
	New    key.Binding
	Reload key.Binding
	Logout key.Binding
	Quit   key.Binding
}

var keys = keyMap{
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑", "up")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓", "down")),
	Open:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
	Delete: key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
	New:    key.NewBinding(key.WithKeys("n", "ctrl+n"), key.WithHelp("n", "new chat")),
	Reload: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	Logout: key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "logout")),
	Quit:   key.NewBinding(key.WithKeys("ctrl+c", "esc", "q"), key.WithHelp("q", "quit")),
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the previous-chats screen.
type Model struct {
	ctx     context.Context
	backend Backend
	userID  string
	theme   *styles.Theme
	logger  *zap.Logger

	prefs   []model.LearningPreference
	cursor  int
	loading bool
	spinner spinner.Model
	status  string
	failed  bool
	width   int
	height  int
}

// New creates the screen. Init starts the first load.
func New(ctx context.Context, backend Backend, userID string, theme *styles.Theme, logger *zap.Logger) Model {
	if logger == nil {
		logger = zap.NewNop()
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Spinner
	return Model{
		ctx:     ctx,
		backend: backend,
		userID:  userID,
		theme:   theme,
		logger:  logger.Named("history"),
		loading: true,
		spinner: sp,
	}
}

// Preferences returns the loaded list.
func (m Model) Preferences() []model.LearningPreference { return m.prefs }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.load())
}

func (m Model) load() tea.Cmd {
	ctx, backend, userID := m.ctx, m.backend, m.userID
	return func() tea.Msg {
		prefs, err := backend.PreviousPreferences(ctx, userID)
		return loadedMsg{prefs: prefs, err: err}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case loadedMsg:
		m.loading = false
		if msg.err != nil {
			m.logger.Warn("load previous chats failed", zap.Error(msg.err))
			m.setStatus("Could not load previous chats: "+msg.err.Error(), true)
			return m, nil
		}
		m.prefs = msg.prefs
		if m.cursor >= len(m.prefs) {
			m.cursor = max(0, len(m.prefs)-1)
		}

	case deletedMsg:
		if msg.err != nil {
			m.logger.Warn("delete preference failed", zap.String("id", msg.id), zap.Error(msg.err))
			m.setStatus("Delete failed: "+msg.err.Error(), true)
			return m, nil
		}
		m.setStatus("Chat deleted", false)
		m.loading = true
		return m, m.load()

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) setStatus(s string, failed bool) {
	m.status, m.failed = s, failed
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.New):
		return m, nav.Go(nav.RouteWizard, "")
	case key.Matches(msg, keys.Logout):
		return m, nav.Logout()
	case key.Matches(msg, keys.Reload):
		m.loading = true
		return m, tea.Batch(m.spinner.Tick, m.load())
	}

	if len(m.prefs) == 0 {
		return m, nil
	}
	switch {
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.prefs)-1 {
			m.cursor++
		}
	case key.Matches(msg, keys.Open):
		return m, nav.Go(nav.RouteChat, m.prefs[m.cursor].ID)
	case key.Matches(msg, keys.Delete):
		id := m.prefs[m.cursor].ID
		ctx, backend := m.ctx, m.backend
		return m, func() tea.Msg {
			return deletedMsg{id: id, err: backend.DeletePreference(ctx, id)}
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	t := m.theme
	var b strings.Builder
	b.WriteString(t.Title.Render("Previous Chats"))
	b.WriteString("\n\n")

	switch {
	case m.loading:
		b.WriteString(m.spinner.View() + " " + t.Subtle.Render("Loading..."))
	case len(m.prefs) == 0:
		b.WriteString(t.Subtle.Render("No previous chats. Press n to start one."))
	default:
		width := m.width - 4
		if width < 40 {
			width = 40
		}
		for i, p := range m.prefs {
			line := util.PadRight(p.Topic+" / "+p.SubTopic, width/2) + " " + t.ListMeta.Render(describe(p))
			if i == m.cursor {
				b.WriteString(t.ListSelected.Render(line))
			} else {
				b.WriteString(t.ListItem.Render(line))
			}
			b.WriteString("\n")
		}
	}

	if m.status != "" {
		b.WriteString("\n")
		if m.failed {
			b.WriteString(styles.RenderError(m.status))
		} else {
			b.WriteString(styles.RenderSuccess(m.status))
		}
	}

	b.WriteString("\n\n")
	b.WriteString(strings.Join([]string{
		t.Shortcut("enter", "open"),
		t.Shortcut("d", "delete"),
		t.Shortcut("n", "new chat"),
		t.Shortcut("ctrl+l", "logout"),
		t.Shortcut("q", "quit"),
	}, "  "))

	return t.App.Render(b.String())
}

// describe is the "date · level" column of a row.
func describe(p model.LearningPreference) string {
	date := "-"
	if ts, ok := p.Created(); ok {
		date = ts.Format("2006-01-02")
	}
	return fmt.Sprintf("%s · %s · %s", date, p.Level.Title(), p.Mode.Title())
}
