// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session gates entry to authenticated screens.
//
// A gate run reads the stored credential, verifies it with the backend,
// then verifies the route-scoped chat identifier. Any failure is terminal
// for that run and ends in a redirect; verification failures also clear the
// stored credential. There are no retries.
//
// # Key Types
//
//   - State, Event, Effect: the pure transition table, see Next
//   - Gate: drives Next against a Verifier and a Credentials accessor
//   - Outcome: the terminal state of one run and where to go next
//
// # Usage
//
//	gate := session.NewGate(client, accessor, logger)
//	out := gate.Run(ctx, chatID)
//	if !out.Passed() {
//	    navigate(out.Redirect)
//	}
package session
