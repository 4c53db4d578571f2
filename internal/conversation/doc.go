// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package conversation owns the transcript of one chat screen.
//
// State is an immutable value with pure transitions (Submit, Resolve, Fail,
// Cleared, Hydrated). Controller wraps a State behind a mutex and drives it
// against the tutoring backend, allowing at most one turn in flight.
//
// Line-mode callers use the blocking form:
//
//	ctrl := conversation.NewController(client, sess, logger)
//	if err := ctrl.SubmitTurn(ctx, "what is a stack?"); err != nil { ... }
//
// The TUI splits a turn so the user message shows before the reply:
//
//	turn, err := ctrl.Begin(text)   // in Update
//	res := ctrl.Send(ctx, turn)     // in a tea.Cmd
//	ctrl.Complete(res)              // back in Update
package conversation
