// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package preference

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/jeranaias/dsatutor/internal/model"
)

// =============================================================================
// CATALOGUE
// =============================================================================

// Topic is a data structure with its sub topics.
type Topic struct {
	Name      string
	SubTopics []string
}

// Topics is the fixed set of topics offered by the wizard.
var Topics = []Topic{
	{Name: "Stack", SubTopics: []string{"Basic Operations", "Implementation", "Applications"}},
	{Name: "Queue", SubTopics: []string{"Basic Operations", "Implementation", "Circular Queue"}},
	{Name: "Linked List", SubTopics: []string{"Singly Linked List", "Doubly Linked List", "Circular Linked List"}},
}

// Modes lists the learning modes in display order.
var Modes = []model.Mode{model.ModeTheory, model.ModePractical}

// Levels lists the student levels in display order.
var Levels = []model.Level{model.LevelBeginner, model.LevelIntermediate, model.LevelAdvanced}

// TopicNames returns the topic names in display order.
func TopicNames() []string {
	names := make([]string, len(Topics))
	for i, t := range Topics {
		names[i] = t.Name
	}
	return names
}

// SubTopics returns the sub topics of a topic, or nil if it is unknown.
func SubTopics(topic string) []string {
	for _, t := range Topics {
		if strings.EqualFold(t.Name, topic) {
			return t.SubTopics
		}
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ErrIncomplete is returned when a draft is missing a field.
var ErrIncomplete = errors.New("preference: all fields are required")

// Validate checks a draft preference against the catalogue.
func Validate(p model.LearningPreference) error {
	var missing []string
	if p.Mode == "" {
		missing = append(missing, "mode")
	}
	if p.Topic == "" {
		missing = append(missing, "topic")
	}
	if p.SubTopic == "" {
		missing = append(missing, "sub topic")
	}
	if p.Level == "" {
		missing = append(missing, "level")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrIncomplete, strings.Join(missing, ", "))
	}

	if !slices.Contains(Modes, p.Mode) {
		return fmt.Errorf("preference: unknown mode %q", p.Mode)
	}
	if !slices.Contains(Levels, p.Level) {
		return fmt.Errorf("preference: unknown level %q", p.Level)
	}
	subs := SubTopics(p.Topic)
	if subs == nil {
		return fmt.Errorf("preference: unknown topic %q", p.Topic)
	}
	if !slices.Contains(subs, p.SubTopic) {
		return fmt.Errorf("preference: %q is not a sub topic of %s", p.SubTopic, p.Topic)
	}
	return nil
}
