// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/dsatutor/internal/content"
	"github.com/jeranaias/dsatutor/internal/model"
	"github.com/jeranaias/dsatutor/internal/ui/styles"
)

var testTheme = styles.NewTheme(styles.ThemeDark)

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

// flat strips ANSI and collapses whitespace so wrapped output can be
// searched for phrases.
func flat(s string) string {
	return strings.Join(strings.Fields(ansi.Strip(s)), " ")
}

// =============================================================================
// CODE BLOCK TESTS
// =============================================================================

func TestCodeBlock_Render(t *testing.T) {
	cb := NewCodeBlock("java", "int x = 1;\nreturn x;\n")
	out := ansi.Strip(cb.Render(testTheme))

	assert.Contains(t, out, "java")
	assert.Contains(t, out, "int x = 1;")
	assert.Contains(t, out, "return x;")
	assert.Contains(t, out, "2")
}

func TestHighlightCode_UnknownStyleFallsBack(t *testing.T) {
	got := ansi.Strip(highlightCode("print(1)", "python", "no-such-style"))
	assert.Equal(t, "print(1)", strings.TrimSpace(got))
}

// =============================================================================
// EXERCISE TESTS
// =============================================================================

func sampleExercise() content.Exercise {
	return content.Exercise{
		Title:    "Reverse",
		Question: "Fix the bug.\n```python\ndef rev(s):\n    return s\n```",
		Hint:     "use a stack",
		Code:     "def rev(s):\n    return s\n",
		Language: "python",
	}
}

func TestExercise_StartsExpanded(t *testing.T) {
	ex := NewExercise(sampleExercise())
	require.True(t, ex.Expanded())

	out := flat(ex.View(testTheme, 60))
	assert.Contains(t, out, "Reverse")
	assert.Contains(t, out, "Fix the bug.")
	assert.Contains(t, out, "def rev(s):")
	assert.Contains(t, out, "use a stack")
	assert.NotContains(t, out, "```")
}

func TestExercise_ToggleOnlyWhenFocused(t *testing.T) {
	ex := NewExercise(sampleExercise())

	ex, _ = ex.Update(keyMsg("enter"))
	assert.True(t, ex.Expanded(), "unfocused card ignores keys")

	ex.Focus()
	ex, _ = ex.Update(keyMsg("enter"))
	assert.False(t, ex.Expanded())

	ex, _ = ex.Update(keyMsg("x"))
	assert.False(t, ex.Expanded(), "other keys do not toggle")

	ex, _ = ex.Update(keyMsg(" "))
	assert.True(t, ex.Expanded())
}

func TestExercise_CollapsedShowsHeaderOnly(t *testing.T) {
	ex := NewExercise(sampleExercise())
	ex.Toggle()

	out := flat(ex.View(testTheme, 60))
	assert.Contains(t, out, "Reverse")
	assert.NotContains(t, out, "Fix the bug.")
	assert.NotContains(t, out, "use a stack")
}

func TestExercise_DefaultLanguageBadge(t *testing.T) {
	ex := NewExercise(content.Exercise{Title: "T", Code: "int a;"})
	assert.Contains(t, flat(ex.View(testTheme, 60)), "java")
}

// =============================================================================
// MESSAGE RENDERER TESTS
// =============================================================================

func TestRenderer_AssistantText(t *testing.T) {
	r := NewRenderer(testTheme, 80, "")
	msg := model.Message{
		Role:    model.RoleAssistant,
		Content: model.TextContent("1. A **stack** is LIFO. Is a queue FIFO?"),
	}
	out := flat(r.Message(msg, nil))

	assert.Contains(t, out, "Tutor")
	assert.Contains(t, out, "A stack is LIFO.")
	assert.Contains(t, out, "Is a queue FIFO?")
	assert.NotContains(t, out, "**")
	assert.NotContains(t, out, "1.")
}

func TestRenderer_Extras(t *testing.T) {
	r := NewRenderer(testTheme, 80, "")
	msg := model.Message{
		Role:         model.RoleAssistant,
		Content:      model.TextContent("Done."),
		Feedback:     "Well explained",
		Sources:      []model.Source{{LectureTitle: "Stacks", SectionType: "intro"}},
		ImageURLs:    []string{"http://img/2.png"},
		NextQuestion: "What is peek?",
	}
	out := flat(r.Message(msg, nil))

	assert.Contains(t, out, "Well explained")
	assert.Contains(t, out, "• Stacks - intro")
	assert.Contains(t, out, "Image 1: http://img/2.png")
	assert.Contains(t, out, "Next: What is peek?")
}

func TestRenderer_StructuredContent(t *testing.T) {
	r := NewRenderer(testTheme, 80, "")
	msg := model.Message{
		Role:    model.RoleAssistant,
		Content: model.Content{Raw: json.RawMessage(`{"a":"**b**"}`)},
	}
	out := ansi.Strip(r.Message(msg, nil))
	assert.Contains(t, out, `"a": "**b**"`, "structured content is not segmented")
}

func TestRenderer_UserMessageVerbatim(t *testing.T) {
	r := NewRenderer(testTheme, 80, "")
	out := flat(r.Message(model.NewUserMessage("what is **this**?"), nil))
	assert.Contains(t, out, "You")
	assert.Contains(t, out, "what is **this**?")
}

func TestRenderer_ExerciseUsesCardState(t *testing.T) {
	r := NewRenderer(testTheme, 80, "")
	msg := model.Message{
		Role:    model.RoleAssistant,
		Content: model.TextContent("Exercise: Push\nQuestion: What is push?\nHint: add to top"),
	}

	assert.Contains(t, flat(r.Message(msg, nil)), "What is push?")

	card := NewExercise(content.ParseExercise(msg.Content.Text))
	card.Toggle()
	out := flat(r.Message(msg, &card))
	assert.Contains(t, out, "Push")
	assert.NotContains(t, out, "What is push?")
}

func TestRenderer_CodeBlock(t *testing.T) {
	r := NewRenderer(testTheme, 80, "")
	msg := model.Message{
		Role:    model.RoleAssistant,
		Content: model.TextContent("See:\n```go\nx := 1\n```\nThat is all."),
	}
	out := flat(r.Message(msg, nil))
	assert.Contains(t, out, "See:")
	assert.Contains(t, out, "x := 1")
	assert.Contains(t, out, "That is all.")
}

// =============================================================================
// SIDEBAR AND GALLERY TESTS
// =============================================================================

func TestGalleryItems(t *testing.T) {
	images := []model.TopicImage{
		{Number: 2, Description: "pop", URL: "u2"},
		{Number: 1, Description: "push", URL: "u1"},
	}
	msgs := []model.Message{
		{Role: model.RoleAssistant, ImageURLs: []string{"r1"}},
		model.NewUserMessage("x"),
		{Role: model.RoleAssistant, ImageURLs: []string{"r2", "r3"}},
	}

	items := GalleryItems(images, msgs)
	require.Len(t, items, 5)
	assert.Equal(t, GalleryItem{Label: "Image 1", Description: "push", URL: "u1"}, items[0])
	assert.Equal(t, "u2", items[1].URL)
	assert.Equal(t, GalleryItem{Label: "Reply image 3", URL: "r3"}, items[4])
}

func TestSidebar_Navigation(t *testing.T) {
	s := NewSidebar(30)
	s.SetItems([]GalleryItem{{Label: "Image 1", URL: "a"}, {Label: "Image 2", URL: "b"}})

	s, cmd := s.Update(keyMsg("down"))
	assert.Nil(t, cmd)
	assert.Equal(t, 0, s.Cursor(), "unfocused sidebar ignores keys")

	s.Focus()
	s, _ = s.Update(keyMsg("down"))
	s, _ = s.Update(keyMsg("down"))
	assert.Equal(t, 1, s.Cursor())

	_, cmd = s.Update(keyMsg("enter"))
	require.NotNil(t, cmd)
	assert.Equal(t, SelectImageMsg{Item: GalleryItem{Label: "Image 2", URL: "b"}}, cmd())
}

func TestSidebar_View(t *testing.T) {
	s := NewSidebar(40)
	s.ChatID = "pref-1"
	s.Preference = model.LearningPreference{
		Mode: model.ModeTheory, Topic: "Queue", SubTopic: "Circular Queue", Level: model.LevelAdvanced,
	}
	s.SetItems([]GalleryItem{{Label: "Image 1", Description: "enqueue"}})

	out := flat(s.View(testTheme, 20))
	for _, want := range []string{"Chat Id", "pref-1", "Theory", "Circular Queue", "Advanced", "Relevant Images & Docs", "Image 1", "enqueue"} {
		assert.Contains(t, out, want)
	}
}

func TestSidebar_SetItemsClampsCursor(t *testing.T) {
	s := NewSidebar(30)
	s.Focus()
	s.SetItems([]GalleryItem{{}, {}, {}})
	s, _ = s.Update(keyMsg("down"))
	s, _ = s.Update(keyMsg("down"))
	s.SetItems([]GalleryItem{{}})
	assert.Equal(t, 0, s.Cursor())
}

// =============================================================================
// PREVIEW TESTS
// =============================================================================

func TestPreview_Keys(t *testing.T) {
	var opened string
	p := NewPreview(GalleryItem{Label: "Image 1", URL: "http://img/1.png", Description: "push"})
	p.Opener = func(url string) error { opened = url; return errors.New("no browser") }

	_, cmd := p.Update(keyMsg("o"))
	require.NotNil(t, cmd)
	msg := cmd().(PreviewOpenedMsg)
	assert.Equal(t, "http://img/1.png", opened)
	assert.Error(t, msg.Err)

	_, cmd = p.Update(keyMsg("esc"))
	require.NotNil(t, cmd)
	assert.Equal(t, PreviewClosedMsg{}, cmd())
}

func TestPreview_View(t *testing.T) {
	p := NewPreview(GalleryItem{Label: "Image 4", URL: "http://img/4.png", Description: "a circular queue"})
	out := flat(p.View(testTheme, 100, 30))
	assert.Contains(t, out, "Image 4")
	assert.Contains(t, out, "http://img/4.png")
	assert.Contains(t, out, "a circular queue")
}
