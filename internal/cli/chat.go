// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/jeranaias/dsatutor/internal/config"
	"github.com/jeranaias/dsatutor/internal/conversation"
	"github.com/jeranaias/dsatutor/internal/export"
	"github.com/jeranaias/dsatutor/internal/model"
	"github.com/jeranaias/dsatutor/internal/preference"
	"github.com/jeranaias/dsatutor/internal/ui/components"
	"github.com/jeranaias/dsatutor/internal/ui/styles"
)

// =============================================================================
// LINE INPUT
// =============================================================================

// lineReader is one prompt-per-line input source.
type lineReader interface {
	ReadInput(prompt string) (string, error)
	Close()
}

// ChatCLI provides input history and line editing for interactive chat.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a ChatCLI with history loaded from the config directory.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	dir, err := config.Dir()
	if err != nil {
		dir = os.TempDir()
	}
	c := &ChatCLI{line: line, historyFile: filepath.Join(dir, "chat_history")}
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
	return c
}

// ReadInput reads a line of input with the given prompt.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// Close saves history and restores the terminal.
func (c *ChatCLI) Close() {
	if err := os.MkdirAll(filepath.Dir(c.historyFile), 0700); err == nil {
		if f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600); err == nil {
			c.line.WriteHistory(f)
			f.Close()
		}
	}
	c.line.Close()
}

// plainReader is used when stdin is not a terminal.
type plainReader struct{ env *Env }

func (p plainReader) ReadInput(prompt string) (string, error) { return p.env.prompt(prompt) }
func (p plainReader) Close()                                  {}

func (e *Env) lineReader() lineReader {
	if f, ok := e.In.(*os.File); ok && f == os.Stdin && IsTTY() {
		return NewChatCLI()
	}
	return plainReader{env: e}
}

// =============================================================================
// SHARED CHAT SETUP
// =============================================================================

// openChat gates the preference, resolves it and returns a controller
// hydrated with any stored transcript.
func (e *Env) openChat(ctx context.Context, preferenceID string) (*conversation.Controller, preference.Resolved, error) {
	userID, err := e.requireSession(ctx, preferenceID)
	if err != nil {
		return nil, preference.Resolved{}, err
	}
	res, err := preference.NewResolver(e.Client, e.Logger).Resolve(ctx, preferenceID, userID)
	if err != nil {
		return nil, preference.Resolved{}, err
	}
	ctrl := conversation.NewController(e.Client, res.Session(), e.Logger)
	if res.HasConversation() {
		ctrl.Hydrate(res.Conversation)
	}
	return ctrl, res, nil
}

func (e *Env) renderer() *components.Renderer {
	width := min(GetTerminalWidth(), e.Config.UI.WordWrap)
	return components.NewRenderer(styles.NewTheme(e.Config.UI.Theme), width, e.Config.UI.CodeStyle)
}

func printMessage(w io.Writer, r *components.Renderer, m model.Message) {
	fmt.Fprintln(w, r.Message(m, nil))
	fmt.Fprintln(w)
}

// =============================================================================
// CHAT COMMAND
// =============================================================================

const chatHelp = `Commands:
  /help            show this help
  /clear           delete the conversation and start over
  /export [json]   write the transcript to a file
  /images          list the topic images
  /quit            leave the chat`

func newChatCmd(envOf func() *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "chat ID",
		Short: "Chat with the tutor in line mode",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env := envOf()
			ctx := cmd.Context()

			ctrl, res, err := env.openChat(ctx, args[0])
			if err != nil {
				return err
			}
			r := env.renderer()

			fmt.Fprintln(env.Out, TitleStyle.Render("DSA Tutor · "+res.Preference.Summary()))
			for _, m := range ctrl.State().Messages {
				printMessage(env.Out, r, m)
			}
			fmt.Fprintln(env.Out, DimStyle.Render("Type /help for commands."))

			in := env.lineReader()
			defer in.Close()
			for {
				text, err := in.ReadInput("you> ")
				if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
					return nil
				}
				if err != nil {
					return err
				}
				text = strings.TrimSpace(text)
				if strings.HasPrefix(text, "/") {
					if quit := env.chatCommand(ctx, ctrl, res, text); quit {
						return nil
					}
					continue
				}

				before := ctrl.State().Len()
				if err := ctrl.SubmitTurn(ctx, text); err != nil {
					if errors.Is(err, conversation.ErrBlankInput) {
						continue
					}
					return err
				}
				msgs := ctrl.State().Messages
				for _, m := range msgs[before+1:] {
					printMessage(env.Out, r, m)
				}
			}
		},
	}
}

// chatCommand handles a slash command and reports whether to quit.
func (e *Env) chatCommand(ctx context.Context, ctrl *conversation.Controller, res preference.Resolved, line string) bool {
	fields := strings.Fields(line)
	switch fields[0] {
	case "/quit", "/exit", "/q":
		return true
	case "/help":
		fmt.Fprintln(e.Out, chatHelp)
	case "/clear":
		if err := ctrl.ClearConversation(ctx); err != nil {
			fmt.Fprintln(e.Out, ErrorStyle.Render("Could not clear conversation: "+err.Error()))
		} else {
			fmt.Fprintln(e.Out, SuccessStyle.Render("Conversation cleared"))
		}
	case "/export":
		format := e.Config.UI.ExportFormat
		if len(fields) > 1 {
			format = fields[1]
		}
		path, err := exportState(ctrl.State(), res.Preference, format, e.Config.UI.ExportDir, false)
		if err != nil {
			fmt.Fprintln(e.Out, ErrorStyle.Render("Export failed: "+err.Error()))
		} else {
			fmt.Fprintln(e.Out, SuccessStyle.Render("Exported to "+path))
		}
	case "/images":
		items := components.GalleryItems(res.Images, ctrl.State().Messages)
		if len(items) == 0 {
			fmt.Fprintln(e.Out, DimStyle.Render("No images for this topic."))
		}
		for _, it := range items {
			fmt.Fprintf(e.Out, "%s  %s\n  %s\n", it.Label, DimStyle.Render(it.Description), it.URL)
		}
	default:
		fmt.Fprintln(e.Out, WarningStyle.Render("Unknown command "+fields[0]+". Type /help."))
	}
	return false
}

// =============================================================================
// ASK COMMAND
// =============================================================================

// AskResult is the --json output of ask.
type AskResult struct {
	ConversationID string        `json:"conversation_id"`
	Reply          model.Message `json:"reply"`
}

func newAskCmd(envOf func() *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "ask ID QUESTION...",
		Short: "Send one message and print the tutor's reply",
		Example: `  dsatutor ask 42 "What does pop return on an empty stack?"
  echo "Explain enqueue" | dsatutor ask 42 -`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			env := envOf()
			ctx := cmd.Context()

			text := strings.Join(args[1:], " ")
			if text == "-" {
				b, err := io.ReadAll(env.In)
				if err != nil {
					return err
				}
				text = string(b)
			}
			if strings.TrimSpace(text) == "" {
				return conversation.ErrBlankInput
			}

			ctrl, _, err := env.openChat(ctx, args[0])
			if err != nil {
				return err
			}
			if err := ctrl.SubmitTurn(ctx, text); err != nil {
				return err
			}
			st := ctrl.State()
			reply := st.Messages[len(st.Messages)-1]

			if env.JSON {
				return NewJSONResponse("ask", AskResult{ConversationID: st.IDString(), Reply: reply}).Write(env.Out)
			}
			printMessage(env.Out, env.renderer(), reply)
			if reply.Content.Text == model.FallbackReply {
				return errors.New("the tutor could not answer")
			}
			return nil
		},
	}
}

// =============================================================================
// EXPORT
// =============================================================================

func exportState(st conversation.State, pref model.LearningPreference, format, dir string, open bool) (string, error) {
	f, err := export.ParseFormat(format)
	if err != nil {
		return "", err
	}
	opts := export.DefaultOptions()
	if dir != "" {
		opts.OutputDir = dir
	}
	opts.OpenAfterExport = open
	return export.ToFile(export.Transcript{
		Preference:     pref,
		ConversationID: st.IDString(),
		Messages:       st.Messages,
	}, f, opts)
}

func newExportCmd(envOf func() *Env) *cobra.Command {
	var format, dir string
	var open bool
	cmd := &cobra.Command{
		Use:   "export ID",
		Short: "Write a chat transcript to a Markdown or JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env := envOf()
			ctrl, res, err := env.openChat(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if format == "" {
				format = env.Config.UI.ExportFormat
			}
			if dir == "" {
				dir = env.Config.UI.ExportDir
			}
			path, err := exportState(ctrl.State(), res.Preference, format, dir, open)
			if err != nil {
				return err
			}
			if env.JSON {
				return NewJSONResponse("export", map[string]string{"path": path}).Write(env.Out)
			}
			fmt.Fprintln(env.Out, SuccessStyle.Render("Exported to "+path))
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "markdown or json (default from config)")
	cmd.Flags().StringVarP(&dir, "out", "o", "", "Output directory")
	cmd.Flags().BoolVar(&open, "open", false, "Open the file after writing it")
	return cmd
}
