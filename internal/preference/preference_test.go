// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package preference

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/dsatutor/internal/model"
)

type fakeBackend struct {
	mu       sync.Mutex
	pref     model.LearningPreference
	prefErr  error
	conv     model.Conversation
	convErr  error
	images   []model.TopicImage
	imgErr   error
	convArgs [2]string
	topic    string
}

func (f *fakeBackend) GetPreference(_ context.Context, id string) (model.LearningPreference, error) {
	return f.pref, f.prefErr
}

func (f *fakeBackend) Conversation(_ context.Context, prefID, userID string) (model.Conversation, error) {
	f.mu.Lock()
	f.convArgs = [2]string{prefID, userID}
	f.mu.Unlock()
	return f.conv, f.convErr
}

func (f *fakeBackend) TopicImages(_ context.Context, topic string) ([]model.TopicImage, error) {
	f.mu.Lock()
	f.topic = topic
	f.mu.Unlock()
	return f.images, f.imgErr
}

func stackPref() model.LearningPreference {
	return model.LearningPreference{
		UserID:   "user-123",
		Mode:     model.ModePractical,
		Topic:    "Stack",
		SubTopic: "Applications",
		Level:    model.LevelAdvanced,
	}
}

// =============================================================================
// RESOLVER TESTS
// =============================================================================

func TestResolve_Success(t *testing.T) {
	be := &fakeBackend{
		pref: stackPref(),
		conv: model.Conversation{ID: "c1", Messages: []model.Message{model.NewUserMessage("hi")}},
		images: []model.TopicImage{
			{Number: 3, Description: "three", URL: "u3"},
			{Number: 1, Description: "one", URL: "u1"},
		},
	}
	res, err := NewResolver(be, nil).Resolve(context.Background(), "p1", "user-123")
	require.NoError(t, err)

	assert.Equal(t, "p1", res.PreferenceID)
	assert.True(t, res.HasConversation())
	assert.Equal(t, [2]string{"p1", "user-123"}, be.convArgs)
	assert.Equal(t, "Stack", be.topic)

	want := []model.ImageDescriptor{{Number: 1, Description: "one"}, {Number: 3, Description: "three"}}
	if diff := cmp.Diff(want, res.Descriptors); diff != "" {
		t.Errorf("Descriptors mismatch (-want +got):\n%s", diff)
	}

	sess := res.Session()
	assert.Equal(t, "user-123", sess.UserID)
	assert.Equal(t, "p1", sess.PreferenceID)
	assert.Equal(t, model.ModePractical, sess.Preference.Mode)
}

func TestResolve_PreferenceOwnerWins(t *testing.T) {
	be := &fakeBackend{pref: stackPref()}
	res, err := NewResolver(be, nil).Resolve(context.Background(), "p1", "alice")
	require.NoError(t, err)

	assert.Equal(t, [2]string{"p1", "user-123"}, be.convArgs)
	assert.Equal(t, "user-123", res.UserID)
	assert.Equal(t, "user-123", res.Session().UserID)
}

func TestResolve_FallsBackToIdentity(t *testing.T) {
	pref := stackPref()
	pref.UserID = ""
	be := &fakeBackend{pref: pref}
	res, err := NewResolver(be, nil).Resolve(context.Background(), "p1", "alice")
	require.NoError(t, err)

	assert.Equal(t, [2]string{"p1", "alice"}, be.convArgs)
	assert.Equal(t, "alice", res.UserID)
}

func TestResolve_DegradesOnSecondaryFailures(t *testing.T) {
	be := &fakeBackend{
		pref:    stackPref(),
		convErr: errors.New("no conversation"),
		imgErr:  errors.New("images down"),
	}
	res, err := NewResolver(be, nil).Resolve(context.Background(), "p1", "u")
	require.NoError(t, err)

	assert.False(t, res.HasConversation())
	assert.Empty(t, res.Conversation.Messages)
	assert.NotNil(t, res.Images)
	assert.NotNil(t, res.Descriptors)
	assert.Empty(t, res.Descriptors)
}

func TestResolve_PreferenceFailure(t *testing.T) {
	sentinel := errors.New("boom")
	be := &fakeBackend{prefErr: sentinel}
	_, err := NewResolver(be, nil).Resolve(context.Background(), "p1", "u")
	assert.ErrorIs(t, err, sentinel)
	assert.Empty(t, be.topic, "dependent fetches are skipped")
}

// =============================================================================
// CATALOGUE TESTS
// =============================================================================

func TestSubTopics(t *testing.T) {
	assert.Equal(t, []string{"Basic Operations", "Implementation", "Circular Queue"}, SubTopics("Queue"))
	assert.Equal(t, SubTopics("Linked List"), SubTopics("linked list"))
	assert.Nil(t, SubTopics("Heap"))
	assert.Equal(t, []string{"Stack", "Queue", "Linked List"}, TopicNames())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*model.LearningPreference)
		wantErr string
	}{
		{name: "valid", mutate: func(*model.LearningPreference) {}},
		{name: "missing fields", mutate: func(p *model.LearningPreference) { p.Mode, p.Level = "", "" }, wantErr: "missing mode, level"},
		{name: "unknown mode", mutate: func(p *model.LearningPreference) { p.Mode = "lecture" }, wantErr: "unknown mode"},
		{name: "unknown level", mutate: func(p *model.LearningPreference) { p.Level = "expert" }, wantErr: "unknown level"},
		{name: "unknown topic", mutate: func(p *model.LearningPreference) { p.Topic = "Heap" }, wantErr: "unknown topic"},
		{name: "sub topic of another topic", mutate: func(p *model.LearningPreference) { p.SubTopic = "Circular Queue" }, wantErr: "not a sub topic"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := stackPref()
			tc.mutate(&p)
			err := Validate(p)
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestValidate_IncompleteSentinel(t *testing.T) {
	assert.ErrorIs(t, Validate(model.LearningPreference{}), ErrIncomplete)
}
