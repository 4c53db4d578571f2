// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package content turns raw tutor replies into typed display nodes.
//
// Segment is pure and total: any input produces a node list, and text that
// matches none of the recognised patterns comes back as plain TextRun nodes.
//
// # Node Kinds
//
//   - TextRun: plain prose
//   - BoldSpan: text that was wrapped in **double asterisks**
//   - QuestionCallout: a sentence ending in a question mark
//   - CodeBlock: a fenced ``` region with its language tag
//   - Exercise: a practice exercise (title, question, hint, optional code)
//
// Inline nodes carry the index of the sentence they came from so a renderer
// can lay each sentence out on its own line. Whitespace that separated two
// sentences stays attached to the end of the earlier sentence, which keeps
// the concatenated node text equal to the input (bold markers excepted).
//
// # Usage
//
//	nodes := content.Segment(reply)
//	for _, n := range nodes {
//	    switch n := n.(type) {
//	    case content.CodeBlock:
//	        render(n.Language, n.Code)
//	    case content.Exercise:
//	        renderExercise(n)
//	    }
//	}
package content
