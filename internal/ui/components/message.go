// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/dsatutor/internal/content"
	"github.com/jeranaias/dsatutor/internal/model"
	"github.com/jeranaias/dsatutor/internal/ui/styles"
)

// =============================================================================
// MESSAGE RENDERER
// =============================================================================

// Renderer draws transcript messages. It is not safe for concurrent use.
type Renderer struct {
	theme     *styles.Theme
	width     int
	codeStyle string
	markdown  *glamour.TermRenderer
}

// NewRenderer creates a renderer for the given content width.
func NewRenderer(theme *styles.Theme, width int, codeStyle string) *Renderer {
	if codeStyle == "" {
		codeStyle = DefaultCodeStyle
	}
	r := &Renderer{theme: theme, codeStyle: codeStyle}
	r.SetWidth(width)
	return r
}

// SetWidth changes the wrap width. The markdown renderer is rebuilt only
// when the width actually changes.
func (r *Renderer) SetWidth(width int) {
	if width < 20 {
		width = 20
	}
	if width == r.width && r.markdown != nil {
		return
	}
	r.width = width
	md, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(r.theme.GlamourStyle()),
		glamour.WithWordWrap(width-4),
	)
	if err != nil {
		md = nil
	}
	r.markdown = md
}

// Width returns the current wrap width.
func (r *Renderer) Width() int { return r.width }

// Message renders one transcript entry. ex carries the expanded state of the
// message's exercise card, if it has one; nil renders a fresh card.
func (r *Renderer) Message(m model.Message, ex *Exercise) string {
	var label, body string
	if m.IsUser() {
		label = r.theme.UserLabel.Render(m.Role.DisplayName())
		body = r.theme.UserBody.Width(r.width - 2).Render(m.Content.Display())
	} else {
		label = r.theme.AssistantLabel.Render(m.Role.DisplayName())
		body = r.theme.AssistantBody.Render(r.Body(m, ex))
	}
	return label + "\n" + body
}

// Body renders the assistant content and its extras without the label.
func (r *Renderer) Body(m model.Message, ex *Exercise) string {
	var parts []string
	if m.Content.IsText() {
		parts = append(parts, r.Nodes(content.Segment(m.Content.Text), ex))
	} else {
		// Structured content is shown as-is.
		parts = append(parts, r.theme.Subtle.Render(m.Content.Display()))
	}

	if m.Feedback != "" {
		parts = append(parts, r.theme.Feedback.Render(r.Markdown(m.Feedback)))
	}
	if len(m.Sources) > 0 {
		lines := make([]string, len(m.Sources))
		for i, src := range m.Sources {
			lines[i] = r.theme.Source.Render(src.String())
		}
		parts = append(parts, r.theme.Label.Render("Sources")+"\n"+strings.Join(lines, "\n"))
	}
	if len(m.ImageURLs) > 0 {
		lines := make([]string, len(m.ImageURLs))
		for i, url := range m.ImageURLs {
			lines[i] = fmt.Sprintf("Image %d: %s", i+1, r.theme.Link.Render(url))
		}
		parts = append(parts, strings.Join(lines, "\n"))
	}
	if m.NextQuestion != "" {
		parts = append(parts, r.theme.Question.Render("Next: "+m.NextQuestion))
	}
	return strings.Join(parts, "\n\n")
}

// Nodes renders segmented content. Sentences are joined into paragraphs
// that wrap at the renderer width; code blocks and exercises stand alone.
func (r *Renderer) Nodes(nodes content.Nodes, ex *Exercise) string {
	wrap := lipgloss.NewStyle().Width(r.width - 2)

	var (
		blocks []string
		para   strings.Builder
	)
	flush := func() {
		if text := strings.TrimSpace(para.String()); text != "" {
			blocks = append(blocks, wrap.Render(text))
		}
		para.Reset()
	}

	for _, group := range nodes.Sentences() {
		switch n := group[0].(type) {
		case content.CodeBlock:
			flush()
			cb := NewCodeBlock(n.Language, n.Code)
			cb.MaxWidth = r.width
			cb.Style = r.codeStyle
			blocks = append(blocks, cb.Render(r.theme))
		case content.Exercise:
			flush()
			card := NewExercise(n)
			if ex != nil {
				card = *ex
			}
			card.SetCodeStyle(r.codeStyle)
			blocks = append(blocks, card.View(r.theme, r.width))
		default:
			para.WriteString(r.inline(group))
		}
	}
	flush()
	return strings.Join(blocks, "\n")
}

// inline renders one sentence worth of inline nodes.
func (r *Renderer) inline(group content.Nodes) string {
	var b strings.Builder
	for _, n := range group {
		switch n := n.(type) {
		case content.TextRun:
			b.WriteString(n.Text)
		case content.BoldSpan:
			b.WriteString(r.theme.Bold.Render(n.Text))
		case content.QuestionCallout:
			trail := n.Text[len(strings.TrimRight(n.Text, " \t\r\n")):]
			inner := r.inline(content.Nodes(n.Spans))
			b.WriteString(r.theme.Question.Render(strings.TrimRight(inner, " \t\r\n")) + trail)
		}
	}
	return b.String()
}

// Markdown renders markdown text, or returns it unchanged if glamour is
// unavailable.
func (r *Renderer) Markdown(text string) string {
	if r.markdown == nil {
		return text
	}
	out, err := r.markdown.Render(text)
	if err != nil {
		return text
	}
	return strings.Trim(out, "\n")
}
