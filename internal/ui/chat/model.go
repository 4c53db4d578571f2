// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"sort"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/dsatutor/internal/content"
	"github.com/jeranaias/dsatutor/internal/conversation"
	"github.com/jeranaias/dsatutor/internal/export"
	"github.com/jeranaias/dsatutor/internal/model"
	"github.com/jeranaias/dsatutor/internal/ui/components"
	"github.com/jeranaias/dsatutor/internal/ui/styles"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	headerHeight    = 2
	inputAreaHeight = 3
	statusBarHeight = 1

	sidebarWidth    = 34
	minWidthSidebar = 90
)

type focusArea int

const (
	focusInput focusArea = iota
	focusSidebar
	focusExercise
)

// =============================================================================
// MESSAGES
// =============================================================================

type turnDoneMsg struct {
	result conversation.Result
}

type clearedMsg struct {
	err error
}

type exportedMsg struct {
	path string
	err  error
}

// =============================================================================
// MODEL
// =============================================================================

// Config holds the screen settings that come from the user's config file.
type Config struct {
	// CodeStyle is the chroma style for code blocks.
	CodeStyle string
	// TurnTimeout bounds each advance call; 0 waits indefinitely.
	TurnTimeout time.Duration
	// ExportDir and ExportFormat control ctrl+e.
	ExportDir    string
	ExportFormat export.Format
	// Copy writes to the clipboard; nil means the system clipboard.
	Copy func(string) error
	// Open launches image URLs from the preview; nil means the default opener.
	Open func(string) error
}

// Model is the chat screen.
type Model struct {
	ctx    context.Context
	ctrl   *conversation.Controller
	images []model.TopicImage
	theme  *styles.Theme
	logger *zap.Logger
	cfg    Config
	keys   KeyMap

	renderer  *components.Renderer
	viewport  viewport.Model
	input     textinput.Model
	spinner   spinner.Model
	sidebar   components.Sidebar
	preview   *components.Preview
	exercises map[int]components.Exercise

	focus      focusArea
	exerciseAt int
	transcript string
	status     string
	statusErr  bool
	width      int
	height     int
}

// New creates the chat screen for a resolved session. The controller should
// already be hydrated with any existing conversation.
func New(ctx context.Context, ctrl *conversation.Controller, images []model.TopicImage, theme *styles.Theme, logger *zap.Logger, cfg Config) Model {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Copy == nil {
		cfg.Copy = clipboard.WriteAll
	}
	if cfg.ExportFormat == "" {
		cfg.ExportFormat = export.FormatMarkdown
	}

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask the tutor..."
	ti.CharLimit = 4096
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Spinner

	sess := ctrl.Session()
	sb := components.NewSidebar(sidebarWidth)
	sb.Preference = sess.Preference

	m := Model{
		ctx:       ctx,
		ctrl:      ctrl,
		images:    images,
		theme:     theme,
		logger:    logger.Named("chat"),
		cfg:       cfg,
		keys:      DefaultKeyMap(),
		renderer:  components.NewRenderer(theme, 80, cfg.CodeStyle),
		viewport:  viewport.New(80, 20),
		input:     ti,
		spinner:   sp,
		sidebar:   sb,
		exercises: make(map[int]components.Exercise),
	}
	m.refresh()
	return m
}

// Controller returns the conversation controller behind the screen.
func (m Model) Controller() *conversation.Controller { return m.ctrl }

// Status returns the current status line text.
func (m Model) Status() string { return m.status }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// =============================================================================
// DERIVED STATE
// =============================================================================

// refresh rebuilds everything derived from the controller state: exercise
// cards, the gallery and the rendered transcript.
func (m *Model) refresh() {
	st := m.ctrl.State()

	for i := range m.exercises {
		if i >= len(st.Messages) {
			delete(m.exercises, i)
		}
	}
	for i, msg := range st.Messages {
		if _, ok := m.exercises[i]; ok || msg.IsUser() || !msg.Content.IsText() {
			continue
		}
		nodes := content.Segment(msg.Content.Text)
		if len(nodes) == 1 {
			if ex, ok := nodes[0].(content.Exercise); ok {
				card := components.NewExercise(ex)
				card.SetCodeStyle(m.cfg.CodeStyle)
				m.exercises[i] = card
			}
		}
	}
	if _, ok := m.exercises[m.exerciseAt]; m.focus == focusExercise && !ok {
		m.setFocus(focusInput)
	}

	m.sidebar.ChatID = st.IDString()
	m.sidebar.SetItems(components.GalleryItems(m.images, st.Messages))
	m.renderTranscript()
}

// renderTranscript redraws the messages into the cached transcript and
// pushes it to the viewport.
func (m *Model) renderTranscript() {
	st := m.ctrl.State()
	var out string
	if len(st.Messages) == 0 {
		topic := m.ctrl.Session().Preference.Topic
		if topic == "" {
			topic = "data structures"
		}
		out = m.theme.Subtle.Render("Ask the tutor anything about " + topic + ".")
	}
	for i, msg := range st.Messages {
		var card *components.Exercise
		if c, ok := m.exercises[i]; ok {
			card = &c
		}
		if i > 0 {
			out += "\n\n"
		}
		out += m.renderer.Message(msg, card)
	}
	m.transcript = out
	m.syncViewport()
}

func (m *Model) syncViewport() {
	text := m.transcript
	if m.ctrl.State().Request == conversation.Pending {
		text += "\n\n" + m.spinner.View() + " " + m.theme.Subtle.Render("Tutor is thinking...")
	}
	atBottom := m.viewport.AtBottom()
	m.viewport.SetContent(text)
	if atBottom || m.focus == focusInput {
		m.viewport.GotoBottom()
	}
}

// exerciseOrder returns the message indexes that carry an exercise card,
// newest first.
func (m Model) exerciseOrder() []int {
	idx := make([]int, 0, len(m.exercises))
	for i := range m.exercises {
		idx = append(idx, i)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(idx)))
	return idx
}

func (m Model) sidebarVisible() bool {
	return m.width >= minWidthSidebar
}

// setFocus moves focus and blurs everything else.
func (m *Model) setFocus(f focusArea) {
	m.focus = f
	if f == focusInput {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
	if f == focusSidebar {
		m.sidebar.Focus()
	} else {
		m.sidebar.Blur()
	}
	for i, card := range m.exercises {
		if f == focusExercise && i == m.exerciseAt {
			card.Focus()
		} else {
			card.Blur()
		}
		m.exercises[i] = card
	}
}

// cycleFocus moves to the next stop in the tab order: input, sidebar,
// then every exercise card from newest to oldest.
func (m *Model) cycleFocus() {
	cards := m.exerciseOrder()
	switch m.focus {
	case focusInput:
		if m.sidebarVisible() && len(m.sidebar.Items()) > 0 {
			m.setFocus(focusSidebar)
			return
		}
		fallthrough
	case focusSidebar:
		if len(cards) > 0 {
			m.focusCard(cards[0])
			return
		}
	case focusExercise:
		for pos, i := range cards {
			if i == m.exerciseAt && pos+1 < len(cards) {
				m.focusCard(cards[pos+1])
				return
			}
		}
	}
	m.setFocus(focusInput)
}

func (m *Model) focusCard(i int) {
	m.exerciseAt = i
	m.setFocus(focusExercise)
}

// latestCode finds the most recent code sample in the tutor's replies.
func latestCode(messages []model.Message) (string, bool) {
	for i := len(messages) - 1; i >= 0; i-- {
		msg := messages[i]
		if msg.IsUser() || !msg.Content.IsText() {
			continue
		}
		nodes := content.Segment(msg.Content.Text)
		for j := len(nodes) - 1; j >= 0; j-- {
			switch n := nodes[j].(type) {
			case content.CodeBlock:
				return n.Code, true
			case content.Exercise:
				if n.HasCode() {
					return n.Code, true
				}
			}
		}
	}
	return "", false
}
