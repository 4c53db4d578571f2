// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app is the top-level Bubble Tea model. It owns routing between
// the auth, wizard, history and chat screens and runs the session gate in
// front of every protected screen.
package app

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/jeranaias/dsatutor/internal/conversation"
	"github.com/jeranaias/dsatutor/internal/credential"
	"github.com/jeranaias/dsatutor/internal/preference"
	"github.com/jeranaias/dsatutor/internal/session"
	"github.com/jeranaias/dsatutor/internal/ui/auth"
	"github.com/jeranaias/dsatutor/internal/ui/chat"
	"github.com/jeranaias/dsatutor/internal/ui/history"
	"github.com/jeranaias/dsatutor/internal/ui/nav"
	"github.com/jeranaias/dsatutor/internal/ui/styles"
	"github.com/jeranaias/dsatutor/internal/ui/wizard"
)

// =============================================================================
// DEPENDENCIES
// =============================================================================

// Backend is every remote operation the screens use.
type Backend interface {
	session.Verifier
	auth.Backend
	wizard.Creator
	history.Backend
	preference.Backend
	conversation.Backend
}

// Tokens is the stored credential.
type Tokens interface {
	session.Credentials
	auth.TokenSaver
}

// Options configures the application model.
type Options struct {
	Backend Backend
	Tokens  Tokens
	Theme   *styles.Theme
	Logger  *zap.Logger

	// FallbackUserID is used when the token carries no subject.
	FallbackUserID string
	// Chat is passed to every chat screen.
	Chat chat.Config
	// RequestTimeout bounds one gate run plus the resolve that follows it.
	RequestTimeout time.Duration
	// CredentialChanges signals that the stored token changed outside the app.
	CredentialChanges <-chan struct{}

	// Start is the first screen; StartID its identifier.
	Start   nav.Route
	StartID string
}

// =============================================================================
// MESSAGES
// =============================================================================

// gatedMsg carries the result of a gate run for a navigation.
type gatedMsg struct {
	seq      uint64
	to       nav.Route
	id       string
	recheck  bool
	outcome  session.Outcome
	resolved preference.Resolved
	err      error
}

type credentialChangedMsg struct{}

// =============================================================================
// MODEL
// =============================================================================

// Model routes between screens.
type Model struct {
	ctx      context.Context
	opts     Options
	gate     *session.Gate
	resolver *preference.Resolver
	logger   *zap.Logger

	route   nav.Route
	routeID string
	screen  tea.Model
	seq     uint64
	loading bool
	spinner spinner.Model
	notice  string
	width   int
	height  int
}

// New creates the application model.
func New(ctx context.Context, opts Options) *Model {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	logger := opts.Logger.Named("app")

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = opts.Theme.Spinner

	return &Model{
		ctx:      ctx,
		opts:     opts,
		gate:     session.NewGate(opts.Backend, opts.Tokens, opts.Logger),
		resolver: preference.NewResolver(opts.Backend, opts.Logger),
		logger:   logger,
		route:    opts.Start,
		routeID:  opts.StartID,
		spinner:  sp,
	}
}

// Route returns the screen currently shown or being gated.
func (m *Model) Route() (nav.Route, string) { return m.route, m.routeID }

// Screen returns the active screen model, nil while the gate runs.
func (m *Model) Screen() tea.Model { return m.screen }

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.navigate(m.opts.Start, m.opts.StartID), m.watch())
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case nav.GoMsg:
		return m, m.navigate(msg.To, msg.ID)

	case nav.LogoutMsg:
		if err := m.opts.Tokens.Clear(m.ctx); err != nil {
			m.logger.Warn("clear credential on logout failed", zap.Error(err))
		}
		m.logger.Info("logged out")
		return m, m.navigate(nav.RouteAuth, "")

	case gatedMsg:
		return m.handleGated(msg)

	case credentialChangedMsg:
		var cmd tea.Cmd
		if m.route != nav.RouteAuth && !m.loading {
			m.logger.Debug("credential changed, re-checking session")
			cmd = m.runGate(m.route, m.routeID, true)
		}
		return m, tea.Batch(cmd, m.watch())

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}

	if m.screen == nil {
		return m, nil
	}
	if km, ok := msg.(tea.KeyMsg); ok && m.notice != "" && km.Type != tea.KeyCtrlC {
		m.notice = ""
	}
	var cmd tea.Cmd
	m.screen, cmd = m.screen.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m *Model) View() string {
	t := m.opts.Theme
	if m.loading || m.screen == nil {
		return t.App.Render(m.spinner.View() + " " + t.Subtle.Render("Checking your session..."))
	}
	view := m.screen.View()
	if m.notice != "" {
		view = lipgloss.JoinVertical(lipgloss.Left, styles.RenderWarning(m.notice), view)
	}
	return view
}

// =============================================================================
// NAVIGATION
// =============================================================================

// navigate switches screens. The auth screen is shown directly; every other
// route waits for a gate run.
func (m *Model) navigate(to nav.Route, id string) tea.Cmd {
	m.seq++
	m.route, m.routeID = to, id
	if to == nav.RouteAuth {
		m.loading = false
		return m.show(auth.New(m.ctx, m.opts.Backend, m.opts.Tokens, m.opts.Theme, m.opts.Logger))
	}
	m.loading = true
	m.screen = nil
	return tea.Batch(m.spinner.Tick, m.runGate(to, id, false))
}

// runGate verifies the credential for a route and, for chat, resolves the
// preference behind it.
func (m *Model) runGate(to nav.Route, id string, recheck bool) tea.Cmd {
	ctx, gate, resolver := m.ctx, m.gate, m.resolver
	seq, timeout, fallback := m.seq, m.opts.RequestTimeout, m.opts.FallbackUserID
	return func() tea.Msg {
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		msg := gatedMsg{seq: seq, to: to, id: id, recheck: recheck}
		if to == nav.RouteChat {
			msg.outcome = gate.Run(ctx, id)
		} else {
			msg.outcome = gate.RunTokenOnly(ctx)
		}
		if to == nav.RouteChat && msg.outcome.Passed() && !recheck {
			userID := credential.UserID(msg.outcome.Token, fallback)
			msg.resolved, msg.err = resolver.Resolve(ctx, id, userID)
		}
		return msg
	}
}

func (m *Model) handleGated(msg gatedMsg) (tea.Model, tea.Cmd) {
	if msg.seq != m.seq {
		return m, nil
	}
	out := msg.outcome

	if !out.Passed() {
		m.logger.Info("session gate redirected",
			zap.Stringer("route", msg.to),
			zap.String("redirect", string(out.Redirect)),
			zap.Bool("cleared", out.Cleared),
			zap.Error(out.Err))
		if out.Redirect == session.RouteHome {
			return m, m.navigate(nav.RouteWizard, "")
		}
		if out.Cleared {
			m.notice = "Your session has expired. Please log in again."
		}
		return m, m.navigate(nav.RouteAuth, "")
	}

	if msg.recheck {
		return m, nil
	}

	m.loading = false
	userID := credential.UserID(out.Token, m.opts.FallbackUserID)
	switch msg.to {
	case nav.RouteWizard:
		return m, m.show(wizard.New(m.ctx, m.opts.Backend, userID, m.opts.Theme, m.opts.Logger))

	case nav.RouteHistory:
		return m, m.show(history.New(m.ctx, m.opts.Backend, userID, m.opts.Theme, m.opts.Logger))

	case nav.RouteChat:
		if msg.err != nil {
			m.logger.Warn("resolve preference failed", zap.String("preference_id", msg.id), zap.Error(msg.err))
			m.notice = "Could not load that chat: " + msg.err.Error()
			return m, m.navigate(nav.RouteWizard, "")
		}
		res := msg.resolved
		ctrl := conversation.NewController(m.opts.Backend, res.Session(), m.opts.Logger)
		if res.HasConversation() {
			ctrl.Hydrate(res.Conversation)
		}
		return m, m.show(chat.New(m.ctx, ctrl, res.Images, m.opts.Theme, m.opts.Logger, m.opts.Chat))
	}
	return m, nil
}

// show installs a screen, sizes it and starts it.
func (m *Model) show(screen tea.Model) tea.Cmd {
	var sizeCmd tea.Cmd
	if m.width > 0 {
		screen, sizeCmd = screen.Update(tea.WindowSizeMsg{Width: m.width, Height: m.height})
	}
	m.screen = screen
	return tea.Batch(sizeCmd, screen.Init())
}

// watch waits for the next credential change.
func (m *Model) watch() tea.Cmd {
	ch := m.opts.CredentialChanges
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return credentialChangedMsg{}
	}
}
