// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package content

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// SENTENCE FORMATTING TESTS
// =============================================================================

func TestSegment_Empty(t *testing.T) {
	assert.Empty(t, Segment(""))
}

func TestSegment_BoldOnly(t *testing.T) {
	got := Segment("**x**")
	want := Nodes{BoldSpan{Text: "x"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Segment mismatch (-want +got):\n%s", diff)
	}
}

func TestSegment_Question(t *testing.T) {
	got := Segment("Is this a stack?")
	want := Nodes{QuestionCallout{
		Text:  "Is this a stack?",
		Spans: Nodes{TextRun{Text: "Is this a stack?"}},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Segment mismatch (-want +got):\n%s", diff)
	}
}

func TestSegment_Sentences(t *testing.T) {
	got := Segment("A stack is LIFO. Is a queue FIFO? Yes! **Push** adds.")
	want := Nodes{
		TextRun{Text: "A stack is LIFO. ", Sentence: 0},
		QuestionCallout{
			Text:     "Is a queue FIFO? ",
			Spans:    Nodes{TextRun{Text: "Is a queue FIFO? ", Sentence: 1}},
			Sentence: 1,
		},
		TextRun{Text: "Yes! ", Sentence: 2},
		BoldSpan{Text: "Push", Sentence: 3},
		TextRun{Text: " adds.", Sentence: 3},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Segment mismatch (-want +got):\n%s", diff)
	}
}

func TestSegment_QuestionWithBold(t *testing.T) {
	got := Segment("What does **pop** return?")
	require.Len(t, got, 1)

	q, ok := got[0].(QuestionCallout)
	require.True(t, ok, "expected QuestionCallout, got %T", got[0])
	assert.Equal(t, "What does pop return?", q.Text)
	assert.Equal(t, []Kind{KindText, KindBold, KindText}, Nodes(q.Spans).Kinds())
}

func TestSegment_OrdinalStripped(t *testing.T) {
	got := Segment("1. Push adds to the top. 2. Pop removes it.")
	want := Nodes{
		TextRun{Text: "Push adds to the top. ", Sentence: 0, Ordinal: 1},
		TextRun{Text: "Pop removes it.", Sentence: 1, Ordinal: 2},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Segment mismatch (-want +got):\n%s", diff)
	}
}

func TestSegment_UnterminatedBold(t *testing.T) {
	got := Segment("This is **not closed.")
	require.Len(t, got, 1)
	assert.Equal(t, TextRun{Text: "This is **not closed."}, got[0])
}

func TestSegment_BoldDoesNotCrossLines(t *testing.T) {
	got := Segment("a **b\nc** d")
	assert.Equal(t, "a **b\nc** d", got.Text())
	for _, n := range got {
		assert.NotEqual(t, KindBold, n.Kind())
	}
}

func TestSegment_TextPreserved(t *testing.T) {
	inputs := []string{
		"plain words",
		"Two sentences. Here they are.",
		"Mixed **bold** and plain? Sure!   Extra   spaces.",
		"  leading space. trailing space.  ",
		"Newline.\nNext line? ok",
		"***tricky** stars",
		"A. B. C.",
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			nodes := Segment(in)
			for _, n := range nodes {
				switch n.Kind() {
				case KindText, KindBold, KindQuestion:
				default:
					t.Fatalf("unexpected node kind %v", n.Kind())
				}
			}
			assert.Equal(t, strings.ReplaceAll(in, "**", ""), nodes.Text())
		})
	}
}

// =============================================================================
// FENCED CODE TESTS
// =============================================================================

func TestSegment_CodeBlocks(t *testing.T) {
	raw := "Here is a stack:\n```java\nStack<Integer> s = new Stack<>();\n```\nTry it."
	got := Segment(raw)
	want := Nodes{
		TextRun{Text: "Here is a stack:\n", Sentence: 0},
		CodeBlock{Language: "java", Code: "Stack<Integer> s = new Stack<>();\n"},
		TextRun{Text: "\nTry it.", Sentence: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Segment mismatch (-want +got):\n%s", diff)
	}
}

func TestSegment_CodeBlockWithoutLanguage(t *testing.T) {
	got := Segment("```\nx := 1\n```")
	want := Nodes{CodeBlock{Code: "x := 1\n"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Segment mismatch (-want +got):\n%s", diff)
	}
}

func TestSegment_MultipleCodeBlocks(t *testing.T) {
	got := Segment("```go\na()\n```\nthen\n```py\nb()\n```")
	assert.Equal(t, []Kind{KindCode, KindText, KindCode}, got.Kinds())
	assert.Equal(t, CodeBlock{Language: "py", Code: "b()\n"}, got[2])
}

func TestSegment_UnclosedFence(t *testing.T) {
	got := Segment("Look: ```go\nfmt.Println()")
	for _, n := range got {
		assert.NotEqual(t, KindCode, n.Kind())
	}
	assert.Equal(t, "Look: ```go\nfmt.Println()", got.Text())
}

// =============================================================================
// EXERCISE TESTS
// =============================================================================

func TestSegment_Exercise(t *testing.T) {
	got := Segment("Exercise: Push\nQuestion: What is push?\nHint: add to top")
	want := Nodes{Exercise{
		Title:    "Push",
		Question: "What is push?",
		Hint:     "add to top",
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Segment mismatch (-want +got):\n%s", diff)
	}
}

func TestSegment_ExerciseWithCode(t *testing.T) {
	raw := "Exercise: Reverse\nQuestion: Fix the bug.\n```python\ndef rev(s):\n    return s\n```\nHint: use a stack\n\nGood luck."
	got := Segment(raw)
	require.Len(t, got, 1)

	ex := got[0].(Exercise)
	assert.Equal(t, "Reverse", ex.Title)
	assert.Equal(t, "Fix the bug.\n```python\ndef rev(s):\n    return s\n```", ex.Question)
	assert.Equal(t, "use a stack", ex.Hint)
	assert.Equal(t, "def rev(s):\n    return s\n", ex.Code)
	assert.Equal(t, "python", ex.Language)
	assert.True(t, ex.HasCode())
}

func TestParseExercise_Defaults(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Exercise
	}{
		{
			name: "no title",
			raw:  "Exercise:\nQuestion: Why?",
			want: Exercise{Title: DefaultExerciseTitle, Question: "Why?"},
		},
		{
			name: "blank line ends question",
			raw:  "Exercise: Queue\nQuestion: Enqueue 3 items.\n\nThen dequeue.",
			want: Exercise{Title: "Queue", Question: "Enqueue 3 items."},
		},
		{
			name: "marker only",
			raw:  "Exercise:",
			want: Exercise{Title: DefaultExerciseTitle},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if diff := cmp.Diff(tc.want, ParseExercise(tc.raw)); diff != "" {
				t.Errorf("ParseExercise mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExercise_DisplayLanguage(t *testing.T) {
	assert.Equal(t, "java", Exercise{}.DisplayLanguage())
	assert.Equal(t, "go", Exercise{Language: "go"}.DisplayLanguage())
}

// =============================================================================
// NODE LIST TESTS
// =============================================================================

func TestNodes_Sentences(t *testing.T) {
	nodes := Segment("One **two** three. Four?\n```\ncode\n```\nFive.")
	groups := nodes.Sentences()
	require.Len(t, groups, 4)
	assert.Len(t, groups[0], 3)
	assert.Equal(t, KindQuestion, groups[1][0].Kind())
	assert.Equal(t, KindCode, groups[2][0].Kind())
	assert.Equal(t, "\nFive.", groups[3].Text())
}
