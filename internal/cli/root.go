// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jeranaias/dsatutor/internal/api"
	"github.com/jeranaias/dsatutor/internal/ui/nav"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Options configures the root command.
type Options struct {
	// Env replaces OpenEnv when set. The caller keeps ownership of it.
	Env *Env
}

// NewRootCommand builds the command tree.
func NewRootCommand(opts Options) *cobra.Command {
	var (
		configPath string
		verbose    bool
		jsonOut    bool
		noColor    bool
		chatID     string
		showHist   bool
		env        *Env
		ownsEnv    bool
	)

	root := &cobra.Command{
		Use:   "dsatutor",
		Short: "Terminal client for the DSA tutoring service",
		Long: `dsatutor is a terminal client for an AI data structures tutor.

Run it with no arguments to open the full-screen interface, or use the
subcommands for scripted and line-mode use.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", Version, GitCommit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			configureColor(noColor || jsonOut)
			if opts.Env != nil {
				env = opts.Env
			} else {
				var err error
				if env, err = OpenEnv(configPath, verbose); err != nil {
					return err
				}
				ownsEnv = true
			}
			env.JSON = jsonOut
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if ownsEnv && env != nil {
				return env.Close()
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			start, id := nav.RouteWizard, ""
			switch {
			case chatID != "":
				start, id = nav.RouteChat, chatID
			case showHist:
				start = nav.RouteHistory
			}
			return runTUI(cmd.Context(), env, start, id)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "Config file (default: ~/.dsatutor/config.toml)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	pf.BoolVar(&jsonOut, "json", false, "Write command output as JSON")
	pf.BoolVar(&noColor, "no-color", false, "Disable colored output")

	root.Flags().StringVar(&chatID, "chat", "", "Open the chat for this preference ID")
	root.Flags().BoolVar(&showHist, "history", false, "Start on the previous chats screen")

	envOf := func() *Env { return env }
	root.AddCommand(
		newLoginCmd(envOf),
		newRegisterCmd(envOf),
		newLogoutCmd(envOf),
		newStatusCmd(envOf),
		newNewCmd(envOf),
		newHistoryCmd(envOf),
		newChatCmd(envOf),
		newAskCmd(envOf),
		newExportCmd(envOf),
	)
	return root
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := NewRootCommand(Options{})
	cmd, err := root.ExecuteContextC(ctx)
	if err == nil {
		return 0
	}

	if jsonFlag, _ := cmd.Flags().GetBool("json"); jsonFlag {
		_ = NewJSONErrorResponse(cmd.Name(), err).Write(os.Stdout)
	} else {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error:"), userMessage(err))
	}
	if errors.Is(err, ErrNotLoggedIn) {
		return 2
	}
	return 1
}

// userMessage maps client errors to the wording the UI uses.
func userMessage(err error) string {
	var ce *api.ClientError
	if errors.As(err, &ce) && ce.Type == api.ErrTypeConnection {
		return "cannot reach the tutoring service: " + err.Error()
	}
	return err.Error()
}
