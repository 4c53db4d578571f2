// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth is the login and registration screen.
package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/jeranaias/dsatutor/internal/api"
	"github.com/jeranaias/dsatutor/internal/ui/nav"
	"github.com/jeranaias/dsatutor/internal/ui/styles"
)

// Backend is the authentication part of the tutoring API.
type Backend interface {
	Login(ctx context.Context, creds api.Credentials) (string, error)
	Register(ctx context.Context, creds api.Credentials) error
}

// TokenSaver stores the token returned by a login.
type TokenSaver interface {
	Save(ctx context.Context, token string) error
}

// Mode selects which form is shown.
type Mode int

const (
	ModeLogin Mode = iota
	ModeRegister
)

func (m Mode) title() string {
	if m == ModeRegister {
		return "Register"
	}
	return "Login"
}

// =============================================================================
// MESSAGES
// =============================================================================

type loginDoneMsg struct{ err error }

type registerDoneMsg struct {
	username string
	err      error
}

// =============================================================================
// KEYS
// =============================================================================

type keyMap struct {
	Next   key.Binding
	Prev   key.Binding
	Submit key.Binding
	Switch key.Binding
	Quit   key.Binding
}

var keys = keyMap{
	Next:   key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
	Prev:   key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "previous")),
	Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
	Switch: key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "login/register")),
	Quit:   key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("esc", "quit")),
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the auth screen.
type Model struct {
	ctx     context.Context
	backend Backend
	tokens  TokenSaver
	theme   *styles.Theme
	logger  *zap.Logger

	mode     Mode
	inputs   [2]textinput.Model
	focus    int
	busy     bool
	spinner  spinner.Model
	errText  string
	infoText string
	width    int
	height   int
}

// New creates the auth screen in login mode.
func New(ctx context.Context, backend Backend, tokens TokenSaver, theme *styles.Theme, logger *zap.Logger) Model {
	if logger == nil {
		logger = zap.NewNop()
	}

	user := textinput.New()
	user.Placeholder = "username"
	user.Prompt = "Username: "
	user.CharLimit = 64
	user.Focus()

	pass := textinput.New()
	pass.Placeholder = "password"
	pass.Prompt = "Password: "
	pass.EchoMode = textinput.EchoPassword
	pass.EchoCharacter = '•'
	pass.CharLimit = 128

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Spinner

	return Model{
		ctx:     ctx,
		backend: backend,
		tokens:  tokens,
		theme:   theme,
		logger:  logger.Named("auth"),
		inputs:  [2]textinput.Model{user, pass},
		spinner: sp,
	}
}

// Mode returns the form currently shown.
func (m Model) Mode() Mode { return m.mode }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case loginDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.errText = loginError(msg.err)
			return m, nil
		}
		return m, nav.Go(nav.RouteWizard, "")

	case registerDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.errText = registerError(msg.err)
			return m, nil
		}
		m.setMode(ModeLogin)
		m.inputs[0].SetValue(msg.username)
		m.inputs[1].SetValue("")
		m.infoText = "Registration successful. Please log in."
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

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
	case key.Matches(msg, keys.Switch):
		if m.mode == ModeLogin {
			m.setMode(ModeRegister)
		} else {
			m.setMode(ModeLogin)
		}
		return m, nil
	case key.Matches(msg, keys.Next):
		m.setFocus((m.focus + 1) % len(m.inputs))
		return m, nil
	case key.Matches(msg, keys.Prev):
		m.setFocus((m.focus + len(m.inputs) - 1) % len(m.inputs))
		return m, nil
	case key.Matches(msg, keys.Submit):
		if m.focus == 0 {
			m.setFocus(1)
			return m, nil
		}
		return m.submit()
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *Model) setMode(mode Mode) {
	m.mode = mode
	m.errText, m.infoText = "", ""
	m.setFocus(0)
}

func (m *Model) setFocus(i int) {
	m.focus = i
	for j := range m.inputs {
		if j == i {
			m.inputs[j].Focus()
		} else {
			m.inputs[j].Blur()
		}
	}
}

func (m Model) credentials() api.Credentials {
	return api.Credentials{
		Username: strings.TrimSpace(m.inputs[0].Value()),
		Password: m.inputs[1].Value(),
	}
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	creds := m.credentials()
	if creds.Username == "" || creds.Password == "" {
		m.errText = "Username and password are required"
		return m, nil
	}
	m.busy = true
	m.errText, m.infoText = "", ""

	ctx, backend, tokens, logger := m.ctx, m.backend, m.tokens, m.logger
	var work tea.Cmd
	if m.mode == ModeRegister {
		work = func() tea.Msg {
			err := backend.Register(ctx, creds)
			return registerDoneMsg{username: creds.Username, err: err}
		}
	} else {
		work = func() tea.Msg {
			token, err := backend.Login(ctx, creds)
			if err != nil {
				return loginDoneMsg{err: err}
			}
			if err := tokens.Save(ctx, token); err != nil {
				logger.Error("failed to store credential", zap.Error(err))
				return loginDoneMsg{err: err}
			}
			logger.Info("logged in", zap.String("username", creds.Username))
			return loginDoneMsg{}
		}
	}
	return m, tea.Batch(m.spinner.Tick, work)
}

func loginError(err error) string {
	var ce *api.ClientError
	if errors.As(err, &ce) && ce.Type == api.ErrTypeUnauthorized {
		return "Invalid username or password"
	}
	return "Login failed: " + err.Error()
}

func registerError(err error) string {
	var ce *api.ClientError
	if errors.As(err, &ce) && ce.Message != "" {
		return "Registration failed: " + ce.Message
	}
	return "Registration failed: " + err.Error()
}

// View implements tea.Model.
func (m Model) View() string {
	t := m.theme
	lines := []string{
		t.Title.Render("Data Structures Tutor"),
		t.Subtle.Render(m.mode.title()),
		"",
		m.inputs[0].View(),
		m.inputs[1].View(),
		"",
	}

	switch {
	case m.busy:
		lines = append(lines, m.spinner.View()+" "+t.Subtle.Render("Please wait..."))
	case m.errText != "":
		lines = append(lines, styles.RenderError(m.errText))
	case m.infoText != "":
		lines = append(lines, styles.RenderSuccess(m.infoText))
	default:
		lines = append(lines, "")
	}

	other := "register"
	if m.mode == ModeRegister {
		other = "login"
	}
	lines = append(lines, "",
		t.Shortcut("enter", "submit")+"  "+t.Shortcut("ctrl+r", other)+"  "+t.Shortcut("esc", "quit"))

	form := t.Form.Render(strings.Join(lines, "\n"))
	if m.width == 0 {
		return form
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, form)
}
