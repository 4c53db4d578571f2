// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"net/http"

	"github.com/jeranaias/dsatutor/internal/model"
)

// CreatePreference stores a new learning preference with the preferences
// service and returns its identifier.
func (c *Client) CreatePreference(ctx context.Context, pref model.LearningPreference) (string, error) {
	pref.ID = ""
	pref.CreatedAt = ""

	var out createdResponse
	err := c.do(ctx, call{
		method:  http.MethodPost,
		base:    c.config.PreferencesURL,
		route:   "learning-preferences",
		path:    "/api/learning-preferences",
		body:    pref,
		timeout: c.config.Timeout,
	}, &out)
	if err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", &ClientError{Type: ErrTypeInvalidResponse, Message: "learning-preferences: response has no id"}
	}
	return string(out.ID), nil
}

// PreviousPreferences lists the preferences a user has created.
func (c *Client) PreviousPreferences(ctx context.Context, userID string) ([]model.LearningPreference, error) {
	var out []model.LearningPreference
	err := c.do(ctx, call{
		method:  http.MethodGet,
		base:    c.config.BaseURL,
		route:   "previous_prefs",
		path:    pathf("/previous_prefs", userID),
		timeout: c.config.Timeout,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeletePreference removes a preference and its chat.
func (c *Client) DeletePreference(ctx context.Context, id string) error {
	return c.do(ctx, call{
		method:  http.MethodDelete,
		base:    c.config.BaseURL,
		route:   "deletepref",
		path:    pathf("/deletepref", id),
		timeout: c.config.Timeout,
	}, nil)
}
