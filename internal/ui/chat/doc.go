// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat is the tutoring conversation screen.
//
// The screen owns no conversation state of its own. Every turn goes through
// a conversation.Controller: Begin runs in Update, Send runs in a tea.Cmd and
// the reply is applied with Complete when it arrives. The transcript is
// rebuilt from the controller state after each step.
//
// Layout:
//
//	┌ header ───────────────────────────────┬ sidebar ─────┐
//	│ transcript viewport                   │ chat id      │
//	│                                       │ preference   │
//	│                                       │ images       │
//	├ input ────────────────────────────────┴──────────────┤
//	└ status bar ──────────────────────────────────────────┘
//
// Tab moves focus between the input, the sidebar and the latest exercise card.
package chat
