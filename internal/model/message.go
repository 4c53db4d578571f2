// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jeranaias/dsatutor/internal/util"
)

// FallbackReply is shown in place of an assistant turn that failed.
const FallbackReply = "Sorry, there was an error processing your request."

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Tutor"
	default:
		return string(r)
	}
}

// =============================================================================
// CONTENT
// =============================================================================

// Content is a message body. Text holds string content; Raw holds any other
// JSON value verbatim.
type Content struct {
	Text string
	Raw  json.RawMessage
}

// TextContent wraps a plain string.
func TextContent(s string) Content {
	return Content{Text: s}
}

// IsText reports whether the content is a plain string and can be segmented.
func (c Content) IsText() bool {
	return c.Raw == nil
}

// Display returns the text to show for the content.
func (c Content) Display() string {
	if c.IsText() {
		return c.Text
	}
	var out bytes.Buffer
	if err := json.Indent(&out, c.Raw, "", "  "); err != nil {
		return string(c.Raw)
	}
	return out.String()
}

// MarshalJSON writes string content as a JSON string and raw content as-is.
func (c Content) MarshalJSON() ([]byte, error) {
	if c.IsText() {
		return json.Marshal(c.Text)
	}
	return c.Raw, nil
}

// UnmarshalJSON accepts a string, null, or any other JSON value.
func (c *Content) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")):
		*c = Content{}
	case trimmed[0] == '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return fmt.Errorf("decode content: %w", err)
		}
		*c = Content{Text: s}
	default:
		if !json.Valid(trimmed) {
			return fmt.Errorf("decode content: invalid JSON")
		}
		*c = Content{Raw: append(json.RawMessage(nil), trimmed...)}
	}
	return nil
}

// =============================================================================
// SOURCE
// =============================================================================

// Source is a lecture reference attached to an assistant turn.
type Source struct {
	LectureTitle string `json:"lecture_title"`
	SectionType  string `json:"section_type"`
	Subsection   string `json:"subsection,omitempty"`
}

// String renders the source as "• title - section (subsection)".
func (s Source) String() string {
	out := "• " + s.LectureTitle + " - " + s.SectionType
	if s.Subsection != "" {
		out += " (" + s.Subsection + ")"
	}
	return out
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single turn in a conversation.
type Message struct {
	Role    Role    `json:"role"`
	Content Content `json:"content"`

	// Assistant extras
	Feedback     string   `json:"feedback,omitempty"`
	Sources      []Source `json:"sources,omitempty"`
	ImageURLs    []string `json:"image_urls,omitempty"`
	NextQuestion string   `json:"next_question,omitempty"`

	// Local receive time; zero for hydrated messages.
	Timestamp time.Time `json:"-"`
}

// NewUserMessage creates a user turn.
func NewUserMessage(text string) Message {
	return Message{Role: RoleUser, Content: TextContent(text), Timestamp: time.Now()}
}

// NewFallbackMessage creates the assistant turn shown after a failed call.
func NewFallbackMessage() Message {
	return Message{Role: RoleAssistant, Content: TextContent(FallbackReply), Timestamp: time.Now()}
}

// IsUser reports whether the message was written by the student.
func (m Message) IsUser() bool {
	return m.Role == RoleUser
}

// HasExtras reports whether the message carries feedback, sources or images.
func (m Message) HasExtras() bool {
	return m.Feedback != "" || len(m.Sources) > 0 || len(m.ImageURLs) > 0
}

// Preview returns the first line of the message trimmed to width columns.
func (m Message) Preview(width int) string {
	return util.Truncate(strings.TrimSpace(util.FirstLine(m.Content.Display())), width)
}

// =============================================================================
// CONVERSATION
// =============================================================================

// Conversation is a stored transcript as returned by the backend.
type Conversation struct {
	ID       string    `json:"_id"`
	Messages []Message `json:"messages"`
}
