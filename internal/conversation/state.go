// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

import (
	"errors"
	"strings"

	"github.com/jeranaias/dsatutor/internal/model"
)

var (
	// ErrBlankInput is returned for empty or whitespace-only input.
	ErrBlankInput = errors.New("conversation: input is blank")

	// ErrTurnInFlight is returned while a previous turn awaits its reply.
	ErrTurnInFlight = errors.New("conversation: a turn is already in flight")
)

// =============================================================================
// REQUEST STATE
// =============================================================================

// RequestState tracks whether a turn is awaiting the backend.
type RequestState int

const (
	Idle RequestState = iota
	Pending
)

func (r RequestState) String() string {
	if r == Pending {
		return "pending"
	}
	return "idle"
}

// =============================================================================
// STATE
// =============================================================================

// State is a snapshot of one conversation. Transitions return a new State
// and never modify the receiver's message slice.
type State struct {
	// ID is nil until the backend assigns an identifier.
	ID       *string
	Messages []model.Message
	Request  RequestState
}

// HasID reports whether the backend has assigned an identifier.
func (s State) HasID() bool {
	return s.ID != nil
}

// IDString returns the identifier, or "" when none is assigned.
func (s State) IDString() string {
	if s.ID == nil {
		return ""
	}
	return *s.ID
}

// Len returns the number of messages in the transcript.
func (s State) Len() int {
	return len(s.Messages)
}

func (s State) with(m model.Message) []model.Message {
	out := make([]model.Message, len(s.Messages), len(s.Messages)+1)
	copy(out, s.Messages)
	return append(out, m)
}

// Submit appends the user's message and marks the request pending.
func (s State) Submit(text string) (State, error) {
	if strings.TrimSpace(text) == "" {
		return s, ErrBlankInput
	}
	if s.Request == Pending {
		return s, ErrTurnInFlight
	}
	return State{
		ID:       s.ID,
		Messages: s.with(model.NewUserMessage(text)),
		Request:  Pending,
	}, nil
}

// Resolve appends the assistant reply. A null ID adopts conversationID;
// an assigned ID is never replaced.
func (s State) Resolve(conversationID string, reply model.Message) State {
	id := s.ID
	if id == nil && conversationID != "" {
		id = &conversationID
	}
	return State{ID: id, Messages: s.with(reply), Request: Idle}
}

// Fail appends the fallback reply and leaves the ID unchanged.
func (s State) Fail() State {
	return State{ID: s.ID, Messages: s.with(model.NewFallbackMessage()), Request: Idle}
}

// Cleared returns the empty conversation.
func (s State) Cleared() State {
	return State{}
}

// Hydrated replaces the transcript with a stored conversation and returns
// to Idle.
func (s State) Hydrated(conv model.Conversation) State {
	var id *string
	if conv.ID != "" {
		v := conv.ID
		id = &v
	}
	msgs := make([]model.Message, len(conv.Messages))
	copy(msgs, conv.Messages)
	return State{ID: id, Messages: msgs, Request: Idle}
}
