// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package history

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/dsatutor/internal/model"
	"github.com/jeranaias/dsatutor/internal/ui/nav"
	"github.com/jeranaias/dsatutor/internal/ui/styles"
)

type fakeBackend struct {
	prefs     []model.LearningPreference
	loadErr   error
	deleted   []string
	deleteErr error
	userIDs   []string
}

func (f *fakeBackend) PreviousPreferences(_ context.Context, userID string) ([]model.LearningPreference, error) {
	f.userIDs = append(f.userIDs, userID)
	return f.prefs, f.loadErr
}

func (f *fakeBackend) DeletePreference(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	if f.deleteErr == nil {
		var keep []model.LearningPreference
		for _, p := range f.prefs {
			if p.ID != id {
				keep = append(keep, p)
			}
		}
		f.prefs = keep
	}
	return f.deleteErr
}

func loaded(t *testing.T, be *fakeBackend) Model {
	t.Helper()
	m := New(context.Background(), be, "user-123", styles.NewTheme(styles.ThemeDark), nil)
	next, _ := m.Update(m.load()())
	return next.(Model)
}

func press(m Model, msg tea.KeyMsg) (Model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func samplePrefs() []model.LearningPreference {
	return []model.LearningPreference{
		{ID: "a", Topic: "Stack", SubTopic: "Implementation", Level: model.LevelBeginner, Mode: model.ModeTheory, CreatedAt: "2025-02-03T10:00:00Z"},
		{ID: "b", Topic: "Queue", SubTopic: "Circular Queue", Level: model.LevelAdvanced, Mode: model.ModePractical},
	}
}

func TestHistory_LoadAndOpen(t *testing.T) {
	be := &fakeBackend{prefs: samplePrefs()}
	m := loaded(t, be)

	assert.Equal(t, []string{"user-123"}, be.userIDs)
	require.Len(t, m.Preferences(), 2)
	view := m.View()
	assert.Contains(t, view, "Stack / Implementation")
	assert.Contains(t, view, "2025-02-03")

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyDown})
	_, cmd := press(m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, nav.GoMsg{To: nav.RouteChat, ID: "b"}, cmd())
}

func TestHistory_DeleteReloads(t *testing.T) {
	be := &fakeBackend{prefs: samplePrefs()}
	m := loaded(t, be)

	m, cmd := press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")})
	msg := cmd()
	assert.Equal(t, deletedMsg{id: "a"}, msg)

	m, cmd = update(m, msg)
	next, _ := m.Update(cmd())
	m = next.(Model)

	assert.Equal(t, []string{"a"}, be.deleted)
	require.Len(t, m.Preferences(), 1)
	assert.Equal(t, "b", m.Preferences()[0].ID)
	assert.Equal(t, 0, m.cursor)
}

func update(m Model, msg tea.Msg) (Model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func TestHistory_DeleteFailureKeepsList(t *testing.T) {
	be := &fakeBackend{prefs: samplePrefs(), deleteErr: errors.New("nope")}
	m := loaded(t, be)

	_, cmd := press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")})
	m, next := update(m, cmd())
	assert.Nil(t, next)
	assert.True(t, m.failed)
	assert.Len(t, m.Preferences(), 2)
}

func TestHistory_LoadFailure(t *testing.T) {
	m := loaded(t, &fakeBackend{loadErr: errors.New("down")})
	assert.True(t, m.failed)
	assert.Contains(t, m.View(), "Could not load previous chats")
}

func TestHistory_NewChat(t *testing.T) {
	m := loaded(t, &fakeBackend{})
	_, cmd := press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	assert.Equal(t, nav.GoMsg{To: nav.RouteWizard}, cmd())
}
