// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package content

import "strings"

// =============================================================================
// NODE TYPES
// =============================================================================

// Kind identifies the variant of a Node.
type Kind int

const (
	KindText Kind = iota
	KindBold
	KindQuestion
	KindCode
	KindExercise
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindBold:
		return "bold"
	case KindQuestion:
		return "question"
	case KindCode:
		return "code"
	case KindExercise:
		return "exercise"
	default:
		return "unknown"
	}
}

// Node is one segment of a tutor message.
// The concrete types are TextRun, BoldSpan, QuestionCallout, CodeBlock and
// Exercise.
type Node interface {
	Kind() Kind
	// PlainText is the visible text of the node with markup removed.
	PlainText() string
}

// TextRun is a run of plain prose.
type TextRun struct {
	Text string
	// Sentence is the index of the sentence this run belongs to.
	Sentence int
	// Ordinal is the list number parsed from a leading "N." marker, or 0.
	// It is kept for callers but the marker itself is not part of Text.
	Ordinal int
}

// BoldSpan is emphasised text with its ** markers stripped.
type BoldSpan struct {
	Text     string
	Sentence int
	Ordinal  int
}

// QuestionCallout is a whole sentence that ends in a question mark.
type QuestionCallout struct {
	// Text is the sentence with bold markers stripped.
	Text string
	// Spans holds the TextRun/BoldSpan breakdown of Text.
	Spans    []Node
	Sentence int
}

// CodeBlock is a fenced code region.
type CodeBlock struct {
	Language string
	Code     string
}

// Exercise is a practice exercise extracted from a message.
type Exercise struct {
	Title    string
	Question string
	Hint     string
	Code     string
	Language string
}

func (TextRun) Kind() Kind         { return KindText }
func (BoldSpan) Kind() Kind        { return KindBold }
func (QuestionCallout) Kind() Kind { return KindQuestion }
func (CodeBlock) Kind() Kind       { return KindCode }
func (Exercise) Kind() Kind        { return KindExercise }

func (n TextRun) PlainText() string         { return n.Text }
func (n BoldSpan) PlainText() string        { return n.Text }
func (n QuestionCallout) PlainText() string { return n.Text }
func (n CodeBlock) PlainText() string       { return n.Code }

func (n Exercise) PlainText() string {
	parts := []string{n.Title, n.Question}
	if n.Code != "" {
		parts = append(parts, n.Code)
	}
	parts = append(parts, n.Hint)
	return strings.Join(parts, "\n")
}

// HasCode reports whether the exercise carries a code sample.
func (n Exercise) HasCode() bool {
	return n.Code != ""
}

// DisplayLanguage is the language label shown for the exercise code.
// Exercises without a fence tag are assumed to be Java.
func (n Exercise) DisplayLanguage() string {
	if n.Language == "" {
		return DefaultExerciseLanguage
	}
	return n.Language
}

// =============================================================================
// NODE LIST HELPERS
// =============================================================================

// Nodes is an ordered list of segments.
type Nodes []Node

// Text concatenates the plain text of every node.
func (ns Nodes) Text() string {
	var b strings.Builder
	for _, n := range ns {
		b.WriteString(n.PlainText())
	}
	return b.String()
}

// Kinds returns the kind of every node, in order.
func (ns Nodes) Kinds() []Kind {
	kinds := make([]Kind, len(ns))
	for i, n := range ns {
		kinds[i] = n.Kind()
	}
	return kinds
}

// Sentences groups consecutive inline nodes by sentence index.
// Block nodes (CodeBlock, Exercise) form a group of their own.
func (ns Nodes) Sentences() []Nodes {
	var groups []Nodes
	last := -1
	for _, n := range ns {
		idx, inline := sentenceOf(n)
		if !inline || idx != last || len(groups) == 0 {
			groups = append(groups, Nodes{n})
			if inline {
				last = idx
			} else {
				last = -1
			}
			continue
		}
		groups[len(groups)-1] = append(groups[len(groups)-1], n)
	}
	return groups
}

func sentenceOf(n Node) (int, bool) {
	switch n := n.(type) {
	case TextRun:
		return n.Sentence, true
	case BoldSpan:
		return n.Sentence, true
	case QuestionCallout:
		return n.Sentence, true
	default:
		return 0, false
	}
}
