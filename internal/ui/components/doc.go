// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides the reusable pieces of the dsatutor screens.

# Display Components

CodeBlock (codeblock.go) - Syntax-highlighted code using Chroma.
Exercise (exercise.go) - Collapsible exercise card; starts expanded.
Renderer (message.go) - Turns a transcript message into styled text by way
of content.Segment, with glamour for feedback.

# Navigation Components

Sidebar (sidebar.go) - Chat id, preference summary and the image list.
Preview (preview.go) - Full-screen view of one image reference.

Components are plain values with Update/View methods in the Bubble Tea
style; screens own them and forward key messages.
*/
package components
