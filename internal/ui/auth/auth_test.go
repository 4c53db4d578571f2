// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/dsatutor/internal/api"
	"github.com/jeranaias/dsatutor/internal/ui/nav"
	"github.com/jeranaias/dsatutor/internal/ui/styles"
)

type fakeBackend struct {
	token       string
	loginErr    error
	registerErr error
	registered  []api.Credentials
}

func (f *fakeBackend) Login(_ context.Context, c api.Credentials) (string, error) {
	return f.token, f.loginErr
}

func (f *fakeBackend) Register(_ context.Context, c api.Credentials) error {
	f.registered = append(f.registered, c)
	return f.registerErr
}

type memTokens struct{ saved string }

func (m *memTokens) Save(_ context.Context, token string) error {
	m.saved = token
	return nil
}

// run executes a command and returns the first message that is not a
// spinner tick, descending into batches.
func run(cmd tea.Cmd) tea.Msg {
	if cmd == nil {
		return nil
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			if c == nil {
				continue
			}
			if out := run(c); out != nil {
				return out
			}
		}
		return nil
	default:
		if _, tick := msg.(spinner.TickMsg); tick {
			return nil
		}
		return msg
	}
}

func typeText(m Model, s string) Model {
	for _, r := range s {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = next.(Model)
	}
	return m
}

func press(m Model, k tea.KeyType) (Model, tea.Cmd) {
	next, cmd := m.Update(tea.KeyMsg{Type: k})
	return next.(Model), cmd
}

func newModel(be *fakeBackend, tokens *memTokens) Model {
	return New(context.Background(), be, tokens, styles.NewTheme(styles.ThemeDark), nil)
}

func fill(m Model, user, pass string) Model {
	m = typeText(m, user)
	m, _ = press(m, tea.KeyTab)
	return typeText(m, pass)
}

func TestLogin_SuccessStoresTokenAndNavigates(t *testing.T) {
	be := &fakeBackend{token: "jwt"}
	tokens := &memTokens{}
	m := fill(newModel(be, tokens), "ada", "secret")

	m, cmd := press(m, tea.KeyEnter)
	require.True(t, m.busy)

	msg := run(cmd)
	require.IsType(t, loginDoneMsg{}, msg)
	assert.Equal(t, "jwt", tokens.saved)

	next, cmd := m.Update(msg)
	assert.False(t, next.(Model).busy)
	assert.Equal(t, nav.GoMsg{To: nav.RouteWizard}, cmd())
}

func TestLogin_RejectedShowsMessage(t *testing.T) {
	be := &fakeBackend{loginErr: &api.ClientError{Type: api.ErrTypeUnauthorized, Status: 401}}
	tokens := &memTokens{}
	m := fill(newModel(be, tokens), "ada", "wrong")

	m, cmd := press(m, tea.KeyEnter)
	next, _ := m.Update(run(cmd))
	m = next.(Model)

	assert.Equal(t, "Invalid username or password", m.errText)
	assert.Empty(t, tokens.saved)
	assert.Contains(t, m.View(), "Invalid username or password")
}

func TestLogin_RequiresBothFields(t *testing.T) {
	m := newModel(&fakeBackend{}, &memTokens{})
	m, _ = press(m, tea.KeyTab)
	m, cmd := press(m, tea.KeyEnter)
	assert.Nil(t, cmd)
	assert.False(t, m.busy)
	assert.NotEmpty(t, m.errText)
}

func TestRegister_SwitchesBackToLogin(t *testing.T) {
	be := &fakeBackend{}
	m := newModel(be, &memTokens{})
	m, _ = press(m, tea.KeyCtrlR)
	require.Equal(t, ModeRegister, m.Mode())

	m = fill(m, "grace", "pw")
	m, cmd := press(m, tea.KeyEnter)
	next, _ := m.Update(run(cmd))
	m = next.(Model)

	require.Len(t, be.registered, 1)
	assert.Equal(t, "grace", be.registered[0].Username)
	assert.Equal(t, ModeLogin, m.Mode())
	assert.Equal(t, "grace", m.inputs[0].Value())
	assert.Empty(t, m.inputs[1].Value())
	assert.NotEmpty(t, m.infoText)
}

func TestRegister_ShowsBackendDetail(t *testing.T) {
	be := &fakeBackend{registerErr: &api.ClientError{Type: api.ErrTypeStatus, Status: 400, Message: "Username already registered"}}
	m := newModel(be, &memTokens{})
	m, _ = press(m, tea.KeyCtrlR)
	m = fill(m, "grace", "pw")

	m, cmd := press(m, tea.KeyEnter)
	next, _ := m.Update(run(cmd))
	assert.Contains(t, next.(Model).errText, "Username already registered")
}
