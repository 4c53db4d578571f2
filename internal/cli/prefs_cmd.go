// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/dsatutor/internal/model"
	"github.com/jeranaias/dsatutor/internal/preference"
	"github.com/jeranaias/dsatutor/internal/util"
)

// =============================================================================
// NEW
// =============================================================================

func newNewCmd(envOf func() *Env) *cobra.Command {
	var mode, topic, subTopic, level string
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a learning preference and print its chat ID",
		Long: `Create a learning preference. Topics and sub topics:

` + catalogueHelp(),
		Example: `  dsatutor new --topic Stack --subtopic "Basic Operations"
  dsatutor new --mode practical --topic "Linked List" --subtopic "Doubly Linked List" --level advanced`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env := envOf()
			ctx := cmd.Context()

			userID, err := env.requireSession(ctx, "")
			if err != nil {
				return err
			}
			pref := model.LearningPreference{
				UserID:   userID,
				Mode:     model.Mode(strings.ToLower(mode)),
				Topic:    topic,
				SubTopic: subTopic,
				Level:    model.Level(strings.ToLower(level)),
			}
			if err := preference.Validate(pref); err != nil {
				return err
			}
			id, err := env.Client.CreatePreference(ctx, pref)
			if err != nil {
				return fmt.Errorf("failed to create preference: %w", err)
			}
			pref.ID = id

			if env.JSON {
				return NewJSONResponse("new", pref).Write(env.Out)
			}
			fmt.Fprintln(env.Out, SuccessStyle.Render("Created chat "+id))
			fmt.Fprintln(env.Out, DimStyle.Render("Start it with: dsatutor chat "+id))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&mode, "mode", string(model.ModeTheory), "Learning mode: theory or practical")
	f.StringVar(&topic, "topic", "", "Topic")
	f.StringVar(&subTopic, "subtopic", "", "Sub topic")
	f.StringVar(&level, "level", string(model.LevelBeginner), "Level: beginner, intermediate or advanced")
	return cmd
}

func catalogueHelp() string {
	var b strings.Builder
	for _, t := range preference.Topics {
		fmt.Fprintf(&b, "  %s: %s\n", t.Name, strings.Join(t.SubTopics, ", "))
	}
	return b.String()
}

// =============================================================================
// HISTORY
// =============================================================================

func newHistoryCmd(envOf func() *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "history",
		Aliases: []string{"ls"},
		Short:   "List previous chats",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env := envOf()
			ctx := cmd.Context()

			userID, err := env.requireSession(ctx, "")
			if err != nil {
				return err
			}
			prefs, err := env.Client.PreviousPreferences(ctx, userID)
			if err != nil {
				return fmt.Errorf("failed to load previous chats: %w", err)
			}

			if env.JSON {
				if prefs == nil {
					prefs = []model.LearningPreference{}
				}
				return NewJSONResponse("history", prefs).Write(env.Out)
			}
			printHistory(env, prefs)
			return nil
		},
	}
	cmd.AddCommand(newHistoryDeleteCmd(envOf))
	return cmd
}

func printHistory(env *Env, prefs []model.LearningPreference) {
	if len(prefs) == 0 {
		fmt.Fprintln(env.Out, DimStyle.Render("No previous chats."))
		return
	}
	fmt.Fprintln(env.Out, TitleStyle.Render("Previous chats"))
	for _, p := range prefs {
		created := "-"
		if ts, ok := p.Created(); ok {
			created = ts.Local().Format("2006-01-02")
		}
		fmt.Fprintf(env.Out, "%s  %s  %s\n",
			ValueStyle.Render(util.PadRight(p.ID, 26)),
			util.PadRight(p.Topic+" / "+p.SubTopic, 40),
			DimStyle.Render(created+" · "+p.Level.Title()+" · "+p.Mode.Title()))
	}
}

func newHistoryDeleteCmd(envOf func() *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a previous chat and its preference",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env := envOf()
			ctx := cmd.Context()

			if _, err := env.requireSession(ctx, ""); err != nil {
				return err
			}
			if err := env.Client.DeletePreference(ctx, args[0]); err != nil {
				return fmt.Errorf("failed to delete %s: %w", args[0], err)
			}
			if env.JSON {
				return NewJSONResponse("history delete", map[string]string{"id": args[0]}).Write(env.Out)
			}
			fmt.Fprintln(env.Out, "Deleted "+args[0])
			return nil
		},
	}
}
