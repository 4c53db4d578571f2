// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"sort"
	"strings"
	"time"
)

// =============================================================================
// LEARNING PREFERENCE
// =============================================================================

// Mode selects how the tutor teaches.
type Mode string

const (
	ModeTheory    Mode = "theory"
	ModePractical Mode = "practical"
)

// Level is the student's self-assessed difficulty level.
type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

// Title returns the level with its first letter capitalised.
func (l Level) Title() string {
	return capitalize(string(l))
}

// Title returns the mode with its first letter capitalised.
func (m Mode) Title() string {
	return capitalize(string(m))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// LearningPreference is a saved tutoring setup.
type LearningPreference struct {
	ID        string `json:"id,omitempty"`
	UserID    string `json:"userId"`
	Mode      Mode   `json:"mode"`
	Topic     string `json:"topic"`
	SubTopic  string `json:"subTopic"`
	Level     Level  `json:"level"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// createdLayouts covers the timestamp shapes the backend has been seen to emit.
var createdLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999",
	"2006-01-02",
}

// Created parses CreatedAt. The second result is false when it is missing or
// in an unknown format.
func (p LearningPreference) Created() (time.Time, bool) {
	for _, layout := range createdLayouts {
		if t, err := time.Parse(layout, p.CreatedAt); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Summary is a one-line description such as "Stack / Implementation (beginner)".
func (p LearningPreference) Summary() string {
	return p.Topic + " / " + p.SubTopic + " (" + string(p.Level) + ")"
}

// =============================================================================
// IMAGES
// =============================================================================

// TopicImage is a reference image for a topic.
type TopicImage struct {
	Number      int    `json:"imageNo"`
	Description string `json:"imageDes"`
	URL         string `json:"imageUrl"`
}

// ImageDescriptor is the image summary sent with each advance call.
type ImageDescriptor struct {
	Number      int    `json:"imageNumber"`
	Description string `json:"imageDescription"`
}

// Describe projects images to descriptors sorted by image number.
// Equal numbers keep their input order.
func Describe(images []TopicImage) []ImageDescriptor {
	out := make([]ImageDescriptor, len(images))
	for i, img := range images {
		out[i] = ImageDescriptor{Number: img.Number, Description: img.Description}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Number < out[j].Number
	})
	return out
}
