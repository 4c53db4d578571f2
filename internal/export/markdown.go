// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/jeranaias/dsatutor/internal/model"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter exports transcripts to Markdown.
type MarkdownExporter struct {
	options *Options
}

// NewMarkdownExporter creates a new Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{options: opts}
}

// Export converts a transcript to Markdown.
func (e *MarkdownExporter) Export(t Transcript) ([]byte, error) {
	if len(t.Messages) == 0 {
		return nil, ErrEmptyTranscript
	}

	var sb strings.Builder
	now := e.options.now()
	pref := t.Preference

	if e.options.IncludeMetadata {
		sb.WriteString("---\n")
		fmt.Fprintf(&sb, "title: %s\n", escapeYAML(t.Title()))
		fmt.Fprintf(&sb, "mode: %s\n", escapeYAML(string(pref.Mode)))
		fmt.Fprintf(&sb, "level: %s\n", escapeYAML(string(pref.Level)))
		if t.ConversationID != "" {
			fmt.Fprintf(&sb, "conversation: %s\n", escapeYAML(t.ConversationID))
		}
		fmt.Fprintf(&sb, "messages: %d\n", len(t.Messages))
		fmt.Fprintf(&sb, "exported: %s\n", now.Format(time.RFC3339))
		sb.WriteString("generator: dsatutor\n")
		sb.WriteString("---\n\n")
	}

	fmt.Fprintf(&sb, "# %s\n\n", escapeMarkdown(t.Title()))

	if e.options.IncludeMetadata && pref.Topic != "" {
		sb.WriteString("## Session\n\n")
		fmt.Fprintf(&sb, "- **Topic**: %s\n", pref.Topic)
		fmt.Fprintf(&sb, "- **Sub topic**: %s\n", pref.SubTopic)
		fmt.Fprintf(&sb, "- **Mode**: %s\n", pref.Mode.Title())
		fmt.Fprintf(&sb, "- **Level**: %s\n", pref.Level.Title())
		sb.WriteString("\n---\n\n")
	}

	sb.WriteString("## Conversation\n\n")
	for i, msg := range t.Messages {
		fmt.Fprintf(&sb, "### %s\n\n", msg.Role.DisplayName())
		e.writeContent(&sb, msg.Content)
		e.writeExtras(&sb, msg)
		if i < len(t.Messages)-1 {
			sb.WriteString("---\n\n")
		}
	}

	sb.WriteString("\n---\n\n")
	fmt.Fprintf(&sb, "*Exported from dsatutor on %s*\n", now.Format("January 2, 2006 at 3:04 PM"))

	return []byte(sb.String()), nil
}

func (e *MarkdownExporter) FileExtension() string { return ".md" }
func (e *MarkdownExporter) MimeType() string      { return "text/markdown" }

// =============================================================================
// FORMATTING HELPERS
// =============================================================================

// writeContent writes text as-is; tutor replies are already markdown.
// Structured content goes in a json fence.
func (e *MarkdownExporter) writeContent(sb *strings.Builder, c model.Content) {
	if c.IsText() {
		sb.WriteString(strings.TrimSpace(c.Text))
	} else {
		sb.WriteString("```json\n")
		sb.WriteString(c.Display())
		sb.WriteString("\n```")
	}
	sb.WriteString("\n\n")
}

func (e *MarkdownExporter) writeExtras(sb *strings.Builder, msg model.Message) {
	if msg.Feedback != "" {
		sb.WriteString("**Feedback**\n\n")
		for _, line := range strings.Split(strings.TrimSpace(msg.Feedback), "\n") {
			sb.WriteString("> " + line + "\n")
		}
		sb.WriteString("\n")
	}
	if len(msg.Sources) > 0 {
		sb.WriteString("**Sources**\n\n")
		for _, src := range msg.Sources {
			sb.WriteString(src.String() + "\n")
		}
		sb.WriteString("\n")
	}
	for i, url := range msg.ImageURLs {
		fmt.Fprintf(sb, "![Image %d](%s)\n", i+1, url)
	}
	if len(msg.ImageURLs) > 0 {
		sb.WriteString("\n")
	}
	if msg.NextQuestion != "" {
		fmt.Fprintf(sb, "**Next question**: %s\n\n", msg.NextQuestion)
	}
}

// =============================================================================
// ESCAPING HELPERS
// =============================================================================

// escapeMarkdown escapes characters that would break a heading.
func escapeMarkdown(s string) string {
	r := strings.NewReplacer(
		"#", "\\#",
		"*", "\\*",
		"_", "\\_",
		"[", "\\[",
		"]", "\\]",
	)
	return r.Replace(s)
}

// escapeYAML quotes a front matter value when it needs it.
func escapeYAML(s string) string {
	if strings.ContainsAny(s, ":#|>@`\"'[]{}!%&*\n\r\\") || strings.HasPrefix(s, " ") || strings.HasSuffix(s, " ") {
		s = strings.ReplaceAll(s, "\\", "\\\\")
		s = strings.ReplaceAll(s, "\"", "\\\"")
		s = strings.ReplaceAll(s, "\n", "\\n")
		s = strings.ReplaceAll(s, "\r", "\\r")
		return "\"" + s + "\""
	}
	return s
}
