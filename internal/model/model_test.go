// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// CONTENT TESTS
// =============================================================================

func TestContent_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantText bool
		display  string
	}{
		{"string", `"hello"`, true, "hello"},
		{"null", `null`, true, ""},
		{"object", `{"a":1}`, false, "{\n  \"a\": 1\n}"},
		{"array", `[1,2]`, false, "[\n  1,\n  2\n]"},
		{"number", `42`, false, "42"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var c Content
			require.NoError(t, json.Unmarshal([]byte(tc.input), &c))
			assert.Equal(t, tc.wantText, c.IsText())
			assert.Equal(t, tc.display, c.Display())
		})
	}
}

func TestContent_MarshalKeepsRaw(t *testing.T) {
	var c Content
	require.NoError(t, json.Unmarshal([]byte(`{"k":"v"}`), &c))

	out, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `{"k":"v"}`, string(out))

	out, err = json.Marshal(TextContent("hi"))
	require.NoError(t, err)
	assert.Equal(t, `"hi"`, string(out))
}

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestMessage_DecodeStored(t *testing.T) {
	raw := `{
		"_id": "c1",
		"messages": [
			{"role": "user", "content": "What is a stack?"},
			{"role": "assistant", "content": "A stack is LIFO.",
			 "feedback": "Good question", "image_urls": ["http://x/1.png"],
			 "sources": [{"lecture_title": "L1", "section_type": "intro"}]}
		]
	}`

	var conv Conversation
	require.NoError(t, json.Unmarshal([]byte(raw), &conv))
	require.Len(t, conv.Messages, 2)

	assert.Equal(t, "c1", conv.ID)
	assert.True(t, conv.Messages[0].IsUser())
	assert.False(t, conv.Messages[1].IsUser())
	assert.True(t, conv.Messages[1].HasExtras())
	assert.Equal(t, "• L1 - intro", conv.Messages[1].Sources[0].String())
}

func TestSource_String(t *testing.T) {
	s := Source{LectureTitle: "Stacks", SectionType: "theory", Subsection: "push"}
	if got, want := s.String(), "• Stacks - theory (push)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestMessage_Preview(t *testing.T) {
	m := NewUserMessage("first line that is long\nsecond")
	if got, want := m.Preview(10), "first l..."; got != want {
		t.Errorf("Preview() = %q, want %q", got, want)
	}
}

func TestRole_DisplayName(t *testing.T) {
	assert.Equal(t, "You", RoleUser.DisplayName())
	assert.Equal(t, "Tutor", RoleAssistant.DisplayName())
}

// =============================================================================
// PREFERENCE TESTS
// =============================================================================

func TestDescribe_SortsByNumber(t *testing.T) {
	images := []TopicImage{
		{Number: 3, Description: "c", URL: "u3"},
		{Number: 1, Description: "a", URL: "u1"},
		{Number: 2, Description: "b", URL: "u2"},
	}
	got := Describe(images)
	want := []ImageDescriptor{{1, "a"}, {2, "b"}, {3, "c"}}
	assert.Equal(t, want, got)
}

func TestDescribe_Empty(t *testing.T) {
	got := Describe(nil)
	require.NotNil(t, got)
	assert.Empty(t, got)

	out, err := json.Marshal(got)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(out))
}

func TestLearningPreference_Created(t *testing.T) {
	tests := []struct {
		in     string
		wantOK bool
	}{
		{"2024-05-01T10:00:00Z", true},
		{"2024-05-01T10:00:00.123456", true},
		{"2024-05-01", true},
		{"", false},
		{"yesterday", false},
	}
	for _, tc := range tests {
		_, ok := LearningPreference{CreatedAt: tc.in}.Created()
		if ok != tc.wantOK {
			t.Errorf("Created(%q) ok = %v, want %v", tc.in, ok, tc.wantOK)
		}
	}
}

func TestLearningPreference_JSON(t *testing.T) {
	p := LearningPreference{UserID: "u1", Mode: ModeTheory, Topic: "Stack", SubTopic: "Implementation", Level: LevelBeginner}
	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"userId":"u1","mode":"theory","topic":"Stack","subTopic":"Implementation","level":"beginner"}`, string(out))
	assert.Equal(t, "Stack / Implementation (beginner)", p.Summary())
}
