// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package content

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// ExerciseMarker switches a whole message into exercise mode.
	ExerciseMarker = "Exercise:"

	// DefaultExerciseTitle is used when the marker has no title after it.
	DefaultExerciseTitle = "Practice Exercise"

	// DefaultExerciseLanguage labels exercise code without a fence tag.
	DefaultExerciseLanguage = "java"

	fence      = "```"
	boldMarker = "**"
)

var (
	exerciseTitleRe = regexp.MustCompile(`Exercise: ([^\r\n]*)`)
	ordinalRe       = regexp.MustCompile(`^(\d+)\.`)
)

// Segment splits a raw tutor message into display nodes.
//
// Messages containing "Exercise:" become a single Exercise node. Otherwise
// fenced regions become CodeBlock nodes and the prose between them is split
// into sentences, questions and bold spans.
func Segment(raw string) Nodes {
	if raw == "" {
		return nil
	}
	if strings.Contains(raw, ExerciseMarker) {
		return Nodes{ParseExercise(raw)}
	}
	if strings.Contains(raw, fence) {
		return segmentFenced(raw)
	}
	var s sentenceCounter
	return formatText(raw, &s)
}

// =============================================================================
// EXERCISES
// =============================================================================

// ParseExercise extracts the exercise fields from a message.
// Missing fields come back empty; a missing title falls back to
// DefaultExerciseTitle.
func ParseExercise(raw string) Exercise {
	ex := Exercise{Title: DefaultExerciseTitle}

	if m := exerciseTitleRe.FindStringSubmatch(raw); m != nil && m[1] != "" {
		ex.Title = m[1]
	}

	if i := strings.Index(raw, "Question:"); i >= 0 {
		rest := raw[i+len("Question:"):]
		end := firstIndex(rest, "Hint:", "\n\n")
		ex.Question = strings.TrimSpace(rest[:end])
	}

	if i := strings.Index(raw, "Hint:"); i >= 0 {
		rest := raw[i+len("Hint:"):]
		end := firstIndex(rest, "\n\n")
		ex.Hint = strings.TrimSpace(rest[:end])
	}

	if i := strings.Index(raw, fence); i >= 0 {
		if nl := strings.IndexByte(raw[i+len(fence):], '\n'); nl >= 0 {
			ex.Language = strings.TrimSpace(raw[i+len(fence) : i+len(fence)+nl])
		}
	}
	if code, ok := firstFencedBody(raw); ok {
		ex.Code = code
	}

	return ex
}

// firstFencedBody returns the body of the first fence that has a tag line
// and a closing fence.
func firstFencedBody(raw string) (string, bool) {
	for start := 0; ; {
		i := strings.Index(raw[start:], fence)
		if i < 0 {
			return "", false
		}
		open := start + i
		nl := strings.IndexByte(raw[open+len(fence):], '\n')
		if nl < 0 {
			return "", false
		}
		bodyStart := open + len(fence) + nl + 1
		if end := strings.Index(raw[bodyStart:], fence); end >= 0 {
			return raw[bodyStart : bodyStart+end], true
		}
		start = open + 1
	}
}

// firstIndex returns the position of the earliest marker in s, or len(s).
func firstIndex(s string, markers ...string) int {
	end := len(s)
	for _, m := range markers {
		if i := strings.Index(s, m); i >= 0 && i < end {
			end = i
		}
	}
	return end
}

// =============================================================================
// FENCED CODE
// =============================================================================

// segmentFenced splits on complete ``` ... ``` regions, keeping them as
// CodeBlock nodes and formatting the text between them.
func segmentFenced(raw string) Nodes {
	var (
		nodes Nodes
		s     sentenceCounter
		pos   int
	)
	for pos < len(raw) {
		i := strings.Index(raw[pos:], fence)
		if i < 0 {
			break
		}
		open := pos + i
		j := strings.Index(raw[open+len(fence):], fence)
		if j < 0 {
			break
		}
		closeEnd := open + len(fence) + j + len(fence)

		nodes = append(nodes, formatText(raw[pos:open], &s)...)
		nodes = append(nodes, parseCodeBlock(raw[open:closeEnd]))
		pos = closeEnd
	}
	nodes = append(nodes, formatText(raw[pos:], &s)...)
	return nodes
}

// parseCodeBlock reads the language tag and body of one fenced region.
func parseCodeBlock(block string) CodeBlock {
	inner := strings.TrimSuffix(strings.TrimPrefix(block, fence), fence)
	nl := strings.IndexByte(inner, '\n')
	if nl < 0 {
		return CodeBlock{Code: inner}
	}
	return CodeBlock{
		Language: strings.TrimSpace(inner[:nl]),
		Code:     inner[nl+1:],
	}
}

// =============================================================================
// SENTENCE FORMATTING
// =============================================================================

// sentenceCounter numbers sentences across the text parts of one message.
type sentenceCounter struct {
	next int
}

func (s *sentenceCounter) take() int {
	n := s.next
	s.next++
	return n
}

// formatText splits prose into sentences and tags each one.
func formatText(text string, s *sentenceCounter) Nodes {
	var nodes Nodes
	for _, sentence := range splitSentences(text) {
		idx := s.take()
		body := strings.TrimLeftFunc(sentence, unicode.IsSpace)

		if m := ordinalRe.FindStringSubmatch(body); m != nil {
			ordinal, _ := strconv.Atoi(m[1])
			rest := strings.TrimLeftFunc(body[len(m[0]):], unicode.IsSpace)
			nodes = append(nodes, splitBold(rest, idx, ordinal)...)
			continue
		}

		if strings.HasSuffix(strings.TrimSpace(body), "?") {
			spans := splitBold(sentence, idx, 0)
			nodes = append(nodes, QuestionCallout{
				Text:     spans.Text(),
				Spans:    spans,
				Sentence: idx,
			})
			continue
		}

		nodes = append(nodes, splitBold(sentence, idx, 0)...)
	}
	return nodes
}

// splitSentences breaks text after '.', '?' or '!' when whitespace follows.
// The whitespace stays on the end of the earlier sentence. A leading list
// marker such as "2. " does not end a sentence.
func splitSentences(text string) []string {
	if text == "" {
		return nil
	}
	var sentences []string
	start := 0
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		i += size
		if r != '.' && r != '?' && r != '!' {
			continue
		}
		j := i
		for j < len(text) {
			ws, wsSize := utf8.DecodeRuneInString(text[j:])
			if !unicode.IsSpace(ws) {
				break
			}
			j += wsSize
		}
		if j == i || j == len(text) {
			continue
		}
		if r == '.' && isBareOrdinal(text[start:i]) {
			continue
		}
		sentences = append(sentences, text[start:j])
		start = j
		i = j
	}
	if start < len(text) {
		sentences = append(sentences, text[start:])
	}
	return sentences
}

// isBareOrdinal reports whether s is only a list marker like "12.".
func isBareOrdinal(s string) bool {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	if len(s) < 2 || s[len(s)-1] != '.' {
		return false
	}
	for _, c := range s[:len(s)-1] {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// splitBold separates **bold** spans from the surrounding text.
// A marker with no closing partner on the same line stays literal.
func splitBold(text string, sentence, ordinal int) Nodes {
	var nodes Nodes
	plain := func(s string) {
		if s != "" {
			nodes = append(nodes, TextRun{Text: s, Sentence: sentence, Ordinal: ordinal})
		}
	}

	pos := 0
	for search := 0; search < len(text); {
		i := strings.Index(text[search:], boldMarker)
		if i < 0 {
			break
		}
		open := search + i
		inner := open + len(boldMarker)
		j := strings.Index(text[inner:], boldMarker)
		if j < 0 || strings.ContainsAny(text[inner:inner+j], "\r\n") {
			search = open + 1
			continue
		}
		plain(text[pos:open])
		if span := text[inner : inner+j]; span != "" {
			nodes = append(nodes, BoldSpan{Text: span, Sentence: sentence, Ordinal: ordinal})
		}
		pos = inner + j + len(boldMarker)
		search = pos
	}
	plain(text[pos:])
	return nodes
}
