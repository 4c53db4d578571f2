// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/dsatutor/internal/conversation"
	"github.com/jeranaias/dsatutor/internal/export"
	"github.com/jeranaias/dsatutor/internal/ui/components"
	"github.com/jeranaias/dsatutor/internal/ui/nav"
)

// =============================================================================
// UPDATE
// =============================================================================

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg)

	case turnDoneMsg:
		m.ctrl.Complete(msg.result)
		if msg.result.Err != nil {
			m.setStatus("The tutor could not answer: "+msg.result.Err.Error(), true)
		}
		m.refresh()
		return m, nil

	case clearedMsg:
		if msg.err != nil {
			m.setStatus("Could not clear conversation: "+msg.err.Error(), true)
			return m, nil
		}
		m.setStatus("Conversation cleared", false)
		m.refresh()
		return m, nil

	case exportedMsg:
		if msg.err != nil {
			m.logger.Warn("export failed", zap.Error(msg.err))
			m.setStatus("Export failed: "+msg.err.Error(), true)
		} else {
			m.setStatus("Exported to "+msg.path, false)
		}
		return m, nil

	case components.SelectImageMsg:
		p := components.NewPreview(msg.Item)
		p.Opener = m.cfg.Open
		m.preview = &p
		return m, nil

	case components.PreviewClosedMsg:
		m.preview = nil
		return m, nil

	case components.PreviewOpenedMsg:
		if msg.Err != nil {
			m.setStatus("Could not open "+msg.URL+": "+msg.Err.Error(), true)
		} else {
			m.setStatus("Opened "+msg.URL, false)
		}
		return m, nil

	case spinner.TickMsg:
		if m.ctrl.State().Request != conversation.Pending {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.syncViewport()
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status, m.statusErr = s, isErr
}

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width, m.height = msg.Width, msg.Height

	vpWidth := m.width
	if m.sidebarVisible() {
		vpWidth -= sidebarWidth
	} else if m.focus == focusSidebar {
		m.setFocus(focusInput)
	}
	m.viewport.Width = max(vpWidth, 1)
	m.viewport.Height = max(m.height-headerHeight-inputAreaHeight-statusBarHeight, 1)

	const promptLen = 2
	m.input.Width = max(m.width-6-promptLen, 10)

	m.renderer.SetWidth(vpWidth - 2)
	m.renderTranscript()
	return m, nil
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	if m.preview != nil {
		p, cmd := m.preview.Update(msg)
		m.preview = &p
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.NewChat):
		return m, nav.Go(nav.RouteWizard, "")
	case key.Matches(msg, m.keys.History):
		return m, nav.Go(nav.RouteHistory, "")
	case key.Matches(msg, m.keys.Logout):
		return m, nav.Logout()
	case key.Matches(msg, m.keys.Clear):
		return m, m.clear()
	case key.Matches(msg, m.keys.CopyCode):
		m.copyLatestCode()
		return m, nil
	case key.Matches(msg, m.keys.Export):
		return m, m.export()
	case key.Matches(msg, m.keys.Focus):
		m.cycleFocus()
		m.renderTranscript()
		return m, nil
	case key.Matches(msg, m.keys.Back):
		if m.focus != focusInput {
			m.setFocus(focusInput)
			m.renderTranscript()
			return m, textinput.Blink
		}
		m.status = ""
		return m, nil
	case key.Matches(msg, m.keys.PageUp):
		m.viewport.HalfViewUp()
		return m, nil
	case key.Matches(msg, m.keys.PageDown):
		m.viewport.HalfViewDown()
		return m, nil
	}

	switch m.focus {
	case focusSidebar:
		var cmd tea.Cmd
		m.sidebar, cmd = m.sidebar.Update(msg)
		return m, cmd

	case focusExercise:
		if card, ok := m.exercises[m.exerciseAt]; ok {
			next, cmd := card.Update(msg)
			m.exercises[m.exerciseAt] = next
			m.renderTranscript()
			return m, cmd
		}
		return m, nil
	}

	if key.Matches(msg, m.keys.Submit) {
		return m.submit()
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit records the user's message and starts the advance call.
func (m Model) submit() (tea.Model, tea.Cmd) {
	turn, err := m.ctrl.Begin(m.input.Value())
	switch {
	case errors.Is(err, conversation.ErrBlankInput):
		return m, nil
	case errors.Is(err, conversation.ErrTurnInFlight):
		m.setStatus("Waiting for the tutor to reply", true)
		return m, nil
	case err != nil:
		m.setStatus(err.Error(), true)
		return m, nil
	}

	m.input.Reset()
	m.status = ""
	m.refresh()
	m.viewport.GotoBottom()

	ctx, ctrl, timeout := m.ctx, m.ctrl, m.cfg.TurnTimeout
	send := func() tea.Msg {
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		return turnDoneMsg{result: ctrl.Send(ctx, turn)}
	}
	return m, tea.Batch(send, m.spinner.Tick)
}

func (m Model) clear() tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		return clearedMsg{err: ctrl.ClearConversation(ctx)}
	}
}

func (m *Model) copyLatestCode() {
	code, ok := latestCode(m.ctrl.State().Messages)
	if !ok {
		m.setStatus("No code to copy", true)
		return
	}
	if err := m.cfg.Copy(code); err != nil {
		m.logger.Warn("clipboard write failed", zap.Error(err))
		m.setStatus("Failed to copy to clipboard: "+err.Error(), true)
		return
	}
	m.setStatus(fmt.Sprintf("Copied code to clipboard (%d chars)", len(code)), false)
}

func (m Model) export() tea.Cmd {
	st := m.ctrl.State()
	t := export.Transcript{
		Preference:     m.ctrl.Session().Preference,
		ConversationID: st.IDString(),
		Messages:       st.Messages,
	}
	opts := export.DefaultOptions()
	if m.cfg.ExportDir != "" {
		opts.OutputDir = m.cfg.ExportDir
	}
	format := m.cfg.ExportFormat
	return func() tea.Msg {
		path, err := export.ToFile(t, format, opts)
		return exportedMsg{path: path, err: err}
	}
}
