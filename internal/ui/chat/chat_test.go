// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/dsatutor/internal/api"
	"github.com/jeranaias/dsatutor/internal/conversation"
	"github.com/jeranaias/dsatutor/internal/export"
	"github.com/jeranaias/dsatutor/internal/model"
	"github.com/jeranaias/dsatutor/internal/ui/nav"
	"github.com/jeranaias/dsatutor/internal/ui/styles"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

type fakeBackend struct {
	mu         sync.Mutex
	reply      string
	advanceErr error
	deleteErr  error
	requests   []api.TurnRequest
	deleted    []string
}

func (f *fakeBackend) Advance(_ context.Context, req api.TurnRequest) (api.TurnResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.advanceErr != nil {
		return api.TurnResponse{}, f.advanceErr
	}
	return api.TurnResponse{
		ConversationID: "conv-1",
		Response:       model.TextContent(f.reply),
	}, nil
}

func (f *fakeBackend) DeleteConversation(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return f.deleteErr
}

func newTestModel(t *testing.T, be *fakeBackend, cfg Config) Model {
	t.Helper()
	sess := conversation.Session{
		Preference: model.LearningPreference{
			Topic: "Stack", SubTopic: "Implementation",
			Mode: model.ModePractical, Level: model.LevelBeginner,
		},
		PreferenceID: "pref-1",
		UserID:       "user-123",
	}
	ctrl := conversation.NewController(be, sess, nil)
	images := []model.TopicImage{{Number: 1, Description: "push diagram", URL: "https://img/1.png"}}
	m := New(context.Background(), ctrl, images, styles.NewTheme(styles.ThemeDark), nil, cfg)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 200})
	return next.(Model)
}

func step(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

// drain runs a command and returns the messages it produced, expanding
// batches.
func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, drain(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

func find[T any](msgs []tea.Msg) (T, bool) {
	for _, msg := range msgs {
		if v, ok := msg.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func send(t *testing.T, m Model, text string) (Model, []tea.Msg) {
	t.Helper()
	m.input.SetValue(text)
	m, cmd := step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	return m, drain(cmd)
}

func transcript(m Model) string {
	return ansi.Strip(m.transcript)
}

// =============================================================================
// TURN TESTS
// =============================================================================

func TestChat_TurnFlow(t *testing.T) {
	be := &fakeBackend{reply: "A stack is **LIFO**."}
	m := newTestModel(t, be, Config{})

	m, msgs := send(t, m, "What is a stack?")
	assert.Equal(t, conversation.Pending, m.ctrl.State().Request)
	assert.Empty(t, m.input.Value())
	assert.Contains(t, ansi.Strip(m.viewport.View()), "Tutor is thinking")

	done, ok := find[turnDoneMsg](msgs)
	require.True(t, ok, "expected a turnDoneMsg")
	m, _ = step(t, m, done)

	st := m.ctrl.State()
	require.Equal(t, 2, st.Len())
	assert.Equal(t, "conv-1", st.IDString())
	assert.Equal(t, conversation.Idle, st.Request)
	assert.Contains(t, transcript(m), "What is a stack?")
	assert.Contains(t, transcript(m), "A stack is LIFO.")

	require.Len(t, be.requests, 1)
	assert.Nil(t, be.requests[0].ConversationID)
	assert.Equal(t, "Stack", be.requests[0].Topic)
	assert.Equal(t, "pref-1", be.requests[0].PreferenceID)
}

func TestChat_BlankInputIgnored(t *testing.T) {
	be := &fakeBackend{}
	m := newTestModel(t, be, Config{})

	m, msgs := send(t, m, "   ")
	assert.Empty(t, msgs)
	assert.Zero(t, m.ctrl.State().Len())
	assert.Empty(t, be.requests)
}

func TestChat_SecondSubmitWhilePending(t *testing.T) {
	m := newTestModel(t, &fakeBackend{reply: "ok"}, Config{})

	m, _ = send(t, m, "first")
	m, msgs := send(t, m, "second")
	assert.Empty(t, msgs)
	assert.Equal(t, 1, m.ctrl.State().Len())
	assert.Contains(t, m.Status(), "Waiting")
	assert.Equal(t, "second", m.input.Value())
}

func TestChat_FailedTurnShowsFallback(t *testing.T) {
	m := newTestModel(t, &fakeBackend{advanceErr: errors.New("boom")}, Config{})

	m, msgs := send(t, m, "hello")
	done, _ := find[turnDoneMsg](msgs)
	m, _ = step(t, m, done)

	st := m.ctrl.State()
	require.Equal(t, 2, st.Len())
	assert.Equal(t, model.FallbackReply, st.Messages[1].Content.Text)
	assert.False(t, st.HasID())
	assert.True(t, m.statusErr)
}

// =============================================================================
// CLEAR TESTS
// =============================================================================

func TestChat_Clear(t *testing.T) {
	be := &fakeBackend{reply: "ok"}
	m := newTestModel(t, be, Config{})
	m, msgs := send(t, m, "hi")
	done, _ := find[turnDoneMsg](msgs)
	m, _ = step(t, m, done)

	m, cmd := step(t, m, tea.KeyMsg{Type: tea.KeyCtrlX})
	m, _ = step(t, m, cmd())

	assert.Equal(t, []string{"conv-1"}, be.deleted)
	assert.Zero(t, m.ctrl.State().Len())
	assert.False(t, m.ctrl.State().HasID())
	assert.Equal(t, "Conversation cleared", m.Status())
	assert.Contains(t, transcript(m), "Ask the tutor anything about Stack")
}

func TestChat_ClearFailureKeepsTranscript(t *testing.T) {
	be := &fakeBackend{reply: "ok", deleteErr: errors.New("503")}
	m := newTestModel(t, be, Config{})
	m, msgs := send(t, m, "hi")
	done, _ := find[turnDoneMsg](msgs)
	m, _ = step(t, m, done)

	m, cmd := step(t, m, tea.KeyMsg{Type: tea.KeyCtrlX})
	m, _ = step(t, m, cmd())

	assert.Equal(t, 2, m.ctrl.State().Len())
	assert.True(t, m.statusErr)
	assert.Contains(t, m.Status(), "Could not clear conversation")
}

// =============================================================================
// EXERCISE AND GALLERY TESTS
// =============================================================================

func TestChat_ExerciseFocusAndToggle(t *testing.T) {
	be := &fakeBackend{reply: "Exercise: Push\nQuestion: Push 3 items.\n```go\ns.Push(1)\n```\nHint: use a loop"}
	m := newTestModel(t, be, Config{})
	m, msgs := send(t, m, "give me practice")
	done, _ := find[turnDoneMsg](msgs)
	m, _ = step(t, m, done)

	require.Len(t, m.exercises, 1)
	assert.True(t, m.exercises[1].Expanded())
	assert.Contains(t, transcript(m), "use a loop")

	// input -> sidebar -> exercise
	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, focusSidebar, m.focus)
	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, focusExercise, m.focus)
	assert.True(t, m.exercises[1].Focused())

	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.exercises[1].Expanded())
	assert.NotContains(t, transcript(m), "use a loop")
	assert.Equal(t, 2, m.ctrl.State().Len(), "enter on a card must not submit")

	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, focusInput, m.focus)
	assert.False(t, m.exercises[1].Focused())
}

func TestChat_EveryExerciseTogglesIndependently(t *testing.T) {
	be := &fakeBackend{reply: "Exercise: Push\nQuestion: Push 3 items.\nHint: use a loop"}
	m := newTestModel(t, be, Config{})
	for _, text := range []string{"first", "second"} {
		var msgs []tea.Msg
		m, msgs = send(t, m, text)
		done, ok := find[turnDoneMsg](msgs)
		require.True(t, ok)
		m, _ = step(t, m, done)
	}
	require.Len(t, m.exercises, 2)

	// input -> sidebar -> newest card -> older card -> input
	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.True(t, m.exercises[3].Focused())
	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, focusExercise, m.focus)
	assert.True(t, m.exercises[1].Focused())
	assert.False(t, m.exercises[3].Focused())

	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.exercises[1].Expanded())
	assert.True(t, m.exercises[3].Expanded())

	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, focusInput, m.focus)
	assert.False(t, m.exercises[1].Focused())
}

func TestChat_SidebarPreview(t *testing.T) {
	var opened []string
	m := newTestModel(t, &fakeBackend{}, Config{Open: func(url string) error {
		opened = append(opened, url)
		return nil
	}})

	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m, cmd := step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = step(t, m, cmd())
	require.NotNil(t, m.preview)
	assert.Contains(t, ansi.Strip(m.View()), "push diagram")

	m, cmd = step(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("o")})
	m, _ = step(t, m, cmd())
	assert.Equal(t, []string{"https://img/1.png"}, opened)

	m, cmd = step(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	m, _ = step(t, m, cmd())
	assert.Nil(t, m.preview)
}

func TestChat_NarrowHidesSidebar(t *testing.T) {
	m := newTestModel(t, &fakeBackend{}, Config{})
	m, _ = step(t, m, tea.WindowSizeMsg{Width: 60, Height: 40})
	assert.NotContains(t, ansi.Strip(m.View()), "Relevant Images")

	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, focusInput, m.focus)
}

// =============================================================================
// CLIPBOARD AND EXPORT TESTS
// =============================================================================

func TestChat_CopyLatestCode(t *testing.T) {
	var copied string
	be := &fakeBackend{reply: "Try this:\n```go\nfmt.Println(1)\n```\nThen:\n```go\nfmt.Println(2)\n```"}
	m := newTestModel(t, be, Config{Copy: func(s string) error { copied = s; return nil }})

	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyCtrlY})
	assert.Equal(t, "No code to copy", m.Status())

	m, msgs := send(t, m, "show code")
	done, _ := find[turnDoneMsg](msgs)
	m, _ = step(t, m, done)

	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyCtrlY})
	assert.Equal(t, "fmt.Println(2)\n", copied)
	assert.False(t, m.statusErr)
}

func TestChat_Export(t *testing.T) {
	dir := t.TempDir()
	m := newTestModel(t, &fakeBackend{reply: "Queues are FIFO."}, Config{ExportDir: dir, ExportFormat: export.FormatMarkdown})
	m, msgs := send(t, m, "queues?")
	done, _ := find[turnDoneMsg](msgs)
	m, _ = step(t, m, done)

	m, cmd := step(t, m, tea.KeyMsg{Type: tea.KeyCtrlE})
	res, ok := cmd().(exportedMsg)
	require.True(t, ok)
	require.NoError(t, res.err)
	m, _ = step(t, m, res)

	assert.True(t, strings.HasPrefix(res.path, dir))
	data, err := os.ReadFile(res.path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Queues are FIFO.")
	assert.Contains(t, m.Status(), "Exported to")
}

func TestChat_ExportEmpty(t *testing.T) {
	m := newTestModel(t, &fakeBackend{}, Config{ExportDir: t.TempDir()})
	_, cmd := step(t, m, tea.KeyMsg{Type: tea.KeyCtrlE})
	res := cmd().(exportedMsg)
	assert.ErrorIs(t, res.err, export.ErrEmptyTranscript)
}

// =============================================================================
// NAVIGATION TESTS
// =============================================================================

func TestChat_NavigationKeys(t *testing.T) {
	tests := []struct {
		key  tea.KeyType
		want tea.Msg
	}{
		{tea.KeyCtrlN, nav.GoMsg{To: nav.RouteWizard}},
		{tea.KeyCtrlO, nav.GoMsg{To: nav.RouteHistory}},
		{tea.KeyCtrlL, nav.LogoutMsg{}},
	}
	for _, tc := range tests {
		m := newTestModel(t, &fakeBackend{}, Config{})
		_, cmd := step(t, m, tea.KeyMsg{Type: tc.key})
		require.NotNil(t, cmd)
		assert.Equal(t, tc.want, cmd())
	}
}

func TestChat_CtrlHEditsInput(t *testing.T) {
	m := newTestModel(t, &fakeBackend{}, Config{})
	m.input.SetValue("stack")
	m.input.CursorEnd()

	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyCtrlH})
	assert.Equal(t, "stac", m.input.Value())
	assert.Equal(t, focusInput, m.focus)
}

func TestLatestCode(t *testing.T) {
	msgs := []model.Message{
		{Role: model.RoleAssistant, Content: model.TextContent("Exercise: X\nQuestion: q\n```java\nint a;\n```")},
		model.NewUserMessage("```go\nuser code\n```"),
	}
	code, ok := latestCode(msgs)
	require.True(t, ok)
	assert.Equal(t, "int a;\n", code)

	_, ok = latestCode([]model.Message{model.NewFallbackMessage()})
	assert.False(t, ok)
}
