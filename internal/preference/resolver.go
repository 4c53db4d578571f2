// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package preference loads the learning preference behind a chat screen and
// holds the wizard catalogue.
package preference

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jeranaias/dsatutor/internal/conversation"
	"github.com/jeranaias/dsatutor/internal/model"
)

// Backend is the part of the tutoring API the resolver reads from.
type Backend interface {
	GetPreference(ctx context.Context, id string) (model.LearningPreference, error)
	Conversation(ctx context.Context, preferenceID, userID string) (model.Conversation, error)
	TopicImages(ctx context.Context, topic string) ([]model.TopicImage, error)
}

// Resolved is everything a chat screen needs before the first turn.
type Resolved struct {
	PreferenceID string
	UserID       string
	Preference   model.LearningPreference
	// Conversation is the stored transcript, empty when none exists.
	Conversation model.Conversation
	Images       []model.TopicImage
	Descriptors  []model.ImageDescriptor
}

// HasConversation reports whether a stored transcript was found.
func (r Resolved) HasConversation() bool {
	return r.Conversation.ID != ""
}

// Session returns the turn context for a conversation controller.
func (r Resolved) Session() conversation.Session {
	return conversation.Session{
		Preference:   r.Preference,
		PreferenceID: r.PreferenceID,
		UserID:       r.UserID,
		Images:       r.Descriptors,
	}
}

// Resolver loads a preference and its dependent resources.
type Resolver struct {
	backend Backend
	logger  *zap.Logger
}

// NewResolver creates a resolver. A nil logger discards output.
func NewResolver(backend Backend, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{backend: backend, logger: logger.Named("preference")}
}

// Resolve fetches the preference, then the stored conversation and the
// topic images in parallel. Only a failed preference fetch is an error;
// the other two degrade to empty values.
//
// The preference's owner is the user id for the conversation lookup and
// for every turn. fallbackUserID is used only when the record has none.
func (r *Resolver) Resolve(ctx context.Context, preferenceID, fallbackUserID string) (Resolved, error) {
	pref, err := r.backend.GetPreference(ctx, preferenceID)
	if err != nil {
		return Resolved{}, fmt.Errorf("resolve preference %s: %w", preferenceID, err)
	}
	userID := pref.UserID
	if userID == "" {
		userID = fallbackUserID
	} else if fallbackUserID != "" && fallbackUserID != userID {
		r.logger.Debug("preference owner differs from session identity",
			zap.String("preference_id", preferenceID),
			zap.String("owner", userID),
			zap.String("identity", fallbackUserID))
	}

	out := Resolved{
		PreferenceID: preferenceID,
		UserID:       userID,
		Preference:   pref,
	}

	var g errgroup.Group
	g.Go(func() error {
		conv, err := r.backend.Conversation(ctx, preferenceID, userID)
		if err != nil {
			r.logger.Info("no stored conversation",
				zap.String("preference_id", preferenceID),
				zap.Error(err))
			return nil
		}
		out.Conversation = conv
		return nil
	})
	g.Go(func() error {
		images, err := r.backend.TopicImages(ctx, pref.Topic)
		if err != nil {
			r.logger.Warn("topic images unavailable",
				zap.String("topic", pref.Topic),
				zap.Error(err))
			return nil
		}
		out.Images = images
		return nil
	})
	_ = g.Wait()

	if out.Images == nil {
		out.Images = []model.TopicImage{}
	}
	out.Descriptors = model.Describe(out.Images)
	return out, nil
}
