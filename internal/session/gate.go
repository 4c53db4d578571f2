// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/jeranaias/dsatutor/internal/credential"
)

// =============================================================================
// COLLABORATORS
// =============================================================================

// Verifier checks a token and a route identifier with the backend.
type Verifier interface {
	VerifyToken(ctx context.Context, token string) error
	VerifyChat(ctx context.Context, id string) error
}

// Credentials is the gate's view of the stored token.
type Credentials interface {
	Token(ctx context.Context) (string, error)
	Clear(ctx context.Context) error
}

// =============================================================================
// OUTCOME
// =============================================================================

// Outcome is the result of one gate run.
type Outcome struct {
	// State is the state the run stopped in.
	State State
	// Path lists every state visited, starting with StateInit.
	Path []State
	// Redirect is where to navigate, or "" when the gate passed.
	Redirect Route
	// Cleared is true when the run removed the stored credential.
	Cleared bool
	// Token is the verified token when the gate passed.
	Token string
	// Err is the verification error that ended the run, if any.
	Err error
}

// Passed reports whether the protected screen may proceed.
func (o Outcome) Passed() bool {
	return o.Redirect == "" && (o.State == StateResourceValid || o.State == StateTokenValid)
}

// =============================================================================
// GATE
// =============================================================================

// Gate drives the transition table against real collaborators.
// A Gate holds no per-run state and may be reused for every run.
type Gate struct {
	verifier Verifier
	creds    Credentials
	logger   *zap.Logger
}

// NewGate returns a Gate. A nil logger discards output.
func NewGate(verifier Verifier, creds Credentials, logger *zap.Logger) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{verifier: verifier, creds: creds, logger: logger.Named("gate")}
}

// Run performs a full run for a chat screen: credential, token, then the
// route identifier. An empty or blank routeID ends in StateNoResource with a
// redirect home.
func (g *Gate) Run(ctx context.Context, routeID string) Outcome {
	return g.run(ctx, routeID, false)
}

// RunTokenOnly stops at StateTokenValid. Screens without a route identifier
// (the wizard, history) use it.
func (g *Gate) RunTokenOnly(ctx context.Context) Outcome {
	return g.run(ctx, "", true)
}

func (g *Gate) run(ctx context.Context, routeID string, tokenOnly bool) Outcome {
	out := Outcome{State: StateInit, Path: []State{StateInit}}
	routeID = strings.TrimSpace(routeID)

	var token string
	event := EventCredentialAbsent
	tok, err := g.creds.Token(ctx)
	switch {
	case err == nil:
		token = tok
		event = EventCredentialPresent
	case errors.Is(err, credential.ErrNoCredential):
	default:
		g.logger.Warn("credential unreadable, treating as absent", zap.Error(err))
	}

	for {
		state, effect := Next(out.State, event)
		if state != out.State {
			out.State = state
			out.Path = append(out.Path, state)
		}
		g.logger.Debug("gate transition",
			zap.Stringer("event", event),
			zap.Stringer("state", state))

		switch effect {
		case EffectVerifyToken:
			if out.Err = g.verifier.VerifyToken(ctx, token); out.Err != nil {
				event = EventTokenRejected
			} else {
				event = EventTokenAccepted
			}

		case EffectCheckRoute:
			if tokenOnly {
				out.Token = token
				return out
			}
			if routeID == "" {
				event = EventNoRouteID
			} else {
				event = EventRouteID
			}

		case EffectVerifyResource:
			if out.Err = g.verifier.VerifyChat(ctx, routeID); out.Err != nil {
				event = EventResourceRejected
			} else {
				event = EventResourceAccepted
			}

		case EffectPass:
			out.Token = token
			return out

		case EffectRedirectAuth:
			out.Redirect = RouteAuth
			return out

		case EffectClearAndRedirectAuth:
			g.logger.Info("verification failed, clearing credential",
				zap.Stringer("state", state),
				zap.Error(out.Err))
			if err := g.creds.Clear(ctx); err != nil {
				g.logger.Warn("failed to clear credential", zap.Error(err))
			} else {
				out.Cleared = true
			}
			out.Redirect = RouteAuth
			return out

		case EffectRedirectHome:
			out.Redirect = RouteHome
			return out

		default:
			// Unreachable with the table above; stop rather than loop.
			out.Redirect = RouteAuth
			return out
		}
	}
}
