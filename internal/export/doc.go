// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes a tutoring transcript to a file.
//
// # Supported Formats
//
//   - Markdown: headings per turn with feedback, sources and images
//   - JSON: the transcript and its preference, machine-readable
//
// # Usage
//
//	t := export.Transcript{Preference: pref, ConversationID: id, Messages: msgs}
//	path, err := export.ToFile(t, export.FormatMarkdown, export.DefaultOptions())
package export
