// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"net/http"

	"github.com/jeranaias/dsatutor/internal/model"
)

// GetPreference fetches a learning preference by identifier.
func (c *Client) GetPreference(ctx context.Context, id string) (model.LearningPreference, error) {
	var pref model.LearningPreference
	err := c.do(ctx, call{
		method:  http.MethodGet,
		base:    c.config.BaseURL,
		route:   "pref",
		path:    pathf("/pref", id),
		timeout: c.config.Timeout,
	}, &pref)
	if err != nil {
		return model.LearningPreference{}, err
	}
	if pref.ID == "" {
		pref.ID = id
	}
	return pref, nil
}

// TopicImages lists the reference images for a topic.
func (c *Client) TopicImages(ctx context.Context, topic string) ([]model.TopicImage, error) {
	var out imagesResponse
	err := c.do(ctx, call{
		method:  http.MethodGet,
		base:    c.config.BaseURL,
		route:   "topic-images",
		path:    pathf("/topic-images", topic),
		timeout: c.config.Timeout,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out.Images, nil
}

// Conversation fetches the stored transcript for a preference and user.
// A response without a conversation returns an ErrTypeNotFound error.
func (c *Client) Conversation(ctx context.Context, preferenceID, userID string) (model.Conversation, error) {
	var out conversationResponse
	err := c.do(ctx, call{
		method:  http.MethodGet,
		base:    c.config.BaseURL,
		route:   "conversation",
		path:    pathf("/conversation", preferenceID, userID),
		timeout: c.config.Timeout,
	}, &out)
	if err != nil {
		return model.Conversation{}, err
	}
	if out.Conversation == nil || out.Conversation.ID == "" {
		return model.Conversation{}, &ClientError{Type: ErrTypeNotFound, Message: "conversation: no stored conversation"}
	}
	return *out.Conversation, nil
}

// Advance submits one user turn and returns the tutor's reply.
func (c *Client) Advance(ctx context.Context, req TurnRequest) (TurnResponse, error) {
	if req.RelevantImages == nil {
		req.RelevantImages = []model.ImageDescriptor{}
	}
	var out TurnResponse
	err := c.do(ctx, call{
		method:  http.MethodPost,
		base:    c.config.BaseURL,
		route:   "chat",
		path:    "/chat",
		body:    req,
		timeout: c.config.TurnTimeout,
	}, &out)
	if err != nil {
		return TurnResponse{}, err
	}
	return out, nil
}

// DeleteConversation removes a stored conversation.
func (c *Client) DeleteConversation(ctx context.Context, id string) error {
	return c.do(ctx, call{
		method:  http.MethodDelete,
		base:    c.config.BaseURL,
		route:   "deleteconv",
		path:    pathf("/deleteconv", id),
		timeout: c.config.Timeout,
	}, nil)
}
