// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/dsatutor/internal/credential"
	"github.com/jeranaias/dsatutor/internal/export"
	"github.com/jeranaias/dsatutor/internal/ui/app"
	"github.com/jeranaias/dsatutor/internal/ui/chat"
	"github.com/jeranaias/dsatutor/internal/ui/nav"
	"github.com/jeranaias/dsatutor/internal/ui/styles"
)

// credentialDebounce collapses the bursts of writes SQLite makes per save.
const credentialDebounce = 250 * time.Millisecond

// runTUI starts the full-screen interface on the given route.
func runTUI(ctx context.Context, env *Env, start nav.Route, id string) error {
	if err := RequiresTTY("the interactive interface"); err != nil {
		return err
	}

	format, err := export.ParseFormat(env.Config.UI.ExportFormat)
	if err != nil {
		return err
	}

	opts := app.Options{
		Backend:        env.Client,
		Tokens:         env.Tokens,
		Theme:          styles.NewTheme(env.Config.UI.Theme),
		Logger:         env.Logger,
		FallbackUserID: env.Config.Profile.UserID,
		RequestTimeout: env.Config.RequestTimeout(),
		Chat: chat.Config{
			CodeStyle:    env.Config.UI.CodeStyle,
			TurnTimeout:  env.Config.TurnTimeout(),
			ExportDir:    env.Config.UI.ExportDir,
			ExportFormat: format,
		},
		Start:   start,
		StartID: id,
	}

	if env.StorePath != "" {
		w, err := credential.NewWatcher(env.StorePath, credentialDebounce)
		if err != nil {
			env.Logger.Warn("credential watcher unavailable", zap.Error(err))
		} else {
			defer w.Close()
			opts.CredentialChanges = w.Changes()
		}
	}

	p := tea.NewProgram(app.New(ctx, opts),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running dsatutor: %w", err)
	}
	return nil
}

// RequiresTTY fails when stdin is not a terminal.
func RequiresTTY(operation string) error {
	if !IsTTY() {
		return fmt.Errorf("%s requires an interactive terminal; use the subcommands for scripted use", operation)
	}
	return nil
}
