// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"github.com/jeranaias/dsatutor/internal/api"
	"github.com/jeranaias/dsatutor/internal/model"
)

// Backend is the part of the tutoring API a controller needs.
type Backend interface {
	Advance(ctx context.Context, req api.TurnRequest) (api.TurnResponse, error)
	DeleteConversation(ctx context.Context, id string) error
}

// Session is everything a turn carries besides the user's text.
type Session struct {
	Preference   model.LearningPreference
	PreferenceID string
	UserID       string
	Images       []model.ImageDescriptor
}

// =============================================================================
// TURNS
// =============================================================================

// Turn is a submitted request awaiting Send.
type Turn struct {
	Request api.TurnRequest
	epoch   uint64
}

// Result is the outcome of Send, applied with Complete.
type Result struct {
	Response api.TurnResponse
	Err      error
	epoch    uint64
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller serialises turns for one conversation.
type Controller struct {
	backend Backend
	logger  *zap.Logger

	mu      sync.Mutex
	session Session
	state   State
	// epoch changes on clear and hydrate so late replies are dropped.
	epoch uint64
}

// NewController creates a controller with an empty conversation.
func NewController(backend Backend, sess Session, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		backend: backend,
		session: sess,
		logger:  logger.Named("conversation"),
	}
}

// State returns a snapshot of the conversation.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Session returns the context turns are sent with.
func (c *Controller) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// Hydrate replaces the transcript with a stored conversation.
func (c *Controller) Hydrate(conv model.Conversation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = c.state.Hydrated(conv)
	c.epoch++
}

// Begin validates and records the user's message, returning the request to
// send. It fails with ErrBlankInput or ErrTurnInFlight without changing
// state.
func (c *Controller) Begin(text string) (Turn, error) {
	text = norm.NFC.String(text)

	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := c.state.Submit(text)
	if err != nil {
		return Turn{}, err
	}
	c.state = next

	images := c.session.Images
	if images == nil {
		images = []model.ImageDescriptor{}
	}
	pref := c.session.Preference
	return Turn{
		Request: api.TurnRequest{
			ConversationID: c.state.ID,
			LearningMode:   pref.Mode,
			Topic:          pref.Topic,
			SubTopic:       pref.SubTopic,
			StudentLevel:   pref.Level,
			UserInput:      text,
			UserID:         c.session.UserID,
			PreferenceID:   c.session.PreferenceID,
			RelevantImages: images,
		},
		epoch: c.epoch,
	}, nil
}

// Send performs the advance call for a turn. It does not touch state and
// may run on any goroutine.
func (c *Controller) Send(ctx context.Context, turn Turn) Result {
	resp, err := c.backend.Advance(ctx, turn.Request)
	return Result{Response: resp, Err: err, epoch: turn.epoch}
}

// Complete applies a result. A failed call appends the fallback reply.
// Results for a conversation that has since been cleared are dropped.
func (c *Controller) Complete(res Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if res.epoch != c.epoch {
		c.logger.Debug("dropping reply for a replaced conversation")
		return
	}
	if res.Err != nil {
		c.logger.Warn("turn failed", zap.Error(res.Err))
		c.state = c.state.Fail()
		return
	}
	c.state = c.state.Resolve(res.Response.ConversationID, res.Response.Message())
	c.logger.Debug("turn resolved",
		zap.String("conversation_id", c.state.IDString()),
		zap.Int("messages", c.state.Len()))
}

// SubmitTurn runs a whole turn and blocks until the reply is recorded.
// The returned error is only ErrBlankInput or ErrTurnInFlight; backend
// failures are reported through the fallback message.
func (c *Controller) SubmitTurn(ctx context.Context, text string) error {
	turn, err := c.Begin(text)
	if err != nil {
		return err
	}
	c.Complete(c.Send(ctx, turn))
	return nil
}

// ClearConversation deletes the conversation on the backend and empties the
// transcript. Without an ID it does nothing. On failure the state is left
// as it was and the error is returned.
func (c *Controller) ClearConversation(ctx context.Context) error {
	c.mu.Lock()
	id := c.state.IDString()
	c.mu.Unlock()

	if id == "" {
		return nil
	}
	if err := c.backend.DeleteConversation(ctx, id); err != nil {
		c.logger.Warn("delete conversation failed", zap.String("conversation_id", id), zap.Error(err))
		return fmt.Errorf("clear conversation %s: %w", id, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = c.state.Cleared()
	c.epoch++
	c.logger.Info("conversation cleared", zap.String("conversation_id", id))
	return nil
}
