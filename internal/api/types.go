// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"

	"github.com/jeranaias/dsatutor/internal/model"
)

// =============================================================================
// AUTH TYPES
// =============================================================================

// Credentials is the login and registration body.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerRequest struct {
	Credentials
	Disabled bool `json:"disabled"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
}

// =============================================================================
// TURN TYPES
// =============================================================================

// TurnRequest is the body of an advance call.
type TurnRequest struct {
	// ConversationID is null until the backend assigns one.
	ConversationID *string                 `json:"conversation_id"`
	LearningMode   model.Mode              `json:"learning_mode"`
	Topic          string                  `json:"topic"`
	SubTopic       string                  `json:"sub_topic"`
	StudentLevel   model.Level             `json:"student_level"`
	UserInput      string                  `json:"user_input"`
	UserID         string                  `json:"user_id"`
	PreferenceID   string                  `json:"preference_id"`
	RelevantImages []model.ImageDescriptor `json:"relevant_images"`
}

// TurnResponse is the backend's reply to an advance call.
type TurnResponse struct {
	ConversationID string         `json:"conversation_id"`
	Response       model.Content  `json:"response"`
	Feedback       string         `json:"feedback"`
	Sources        []model.Source `json:"sources"`
	ImageURLs      []string       `json:"image_urls"`
	NextQuestion   string         `json:"next_question"`
}

// Message converts the reply into an assistant transcript entry.
func (r TurnResponse) Message() model.Message {
	return model.Message{
		Role:         model.RoleAssistant,
		Content:      r.Response,
		Feedback:     r.Feedback,
		Sources:      r.Sources,
		ImageURLs:    r.ImageURLs,
		NextQuestion: r.NextQuestion,
		Timestamp:    time.Now(),
	}
}

// =============================================================================
// RESOURCE ENVELOPES
// =============================================================================

type imagesResponse struct {
	Images []model.TopicImage `json:"images"`
}

type conversationResponse struct {
	Conversation *model.Conversation `json:"conversation"`
}

type createdResponse struct {
	ID flexibleID `json:"id"`
}

// flexibleID accepts an identifier encoded as a JSON string or number.
type flexibleID string

func (f *flexibleID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	if _, err := strconv.ParseFloat(n.String(), 64); err != nil {
		return err
	}
	*f = flexibleID(n.String())
	return nil
}
