// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/jeranaias/dsatutor/internal/api"
	"github.com/jeranaias/dsatutor/internal/config"
	"github.com/jeranaias/dsatutor/internal/credential"
	"github.com/jeranaias/dsatutor/internal/logging"
	"github.com/jeranaias/dsatutor/internal/session"
)

// =============================================================================
// ENVIRONMENT
// =============================================================================

// Env is everything a command needs, built once per invocation.
type Env struct {
	Config *config.Config
	Logger *zap.Logger
	Client *api.Client
	Store  credential.Store
	Tokens *credential.Accessor

	// StorePath is the credential database, empty for in-memory stores.
	StorePath string

	In  io.Reader
	Out io.Writer
	Err io.Writer

	JSON bool

	reader *bufio.Reader
}

// OpenEnv loads configuration and opens the credential store.
// configPath may be empty to use the default location.
func OpenEnv(configPath string, verbose bool) (*Env, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFromPath(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	config.SetGlobal(cfg)

	logOpts, err := logging.FromConfig(cfg, verbose)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(logOpts)
	if err != nil {
		return nil, err
	}

	dbPath, err := cfg.CredentialDBPath()
	if err != nil {
		return nil, err
	}
	store, err := credential.OpenSQLiteStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open credential store: %w", err)
	}

	var sealer *credential.Sealer
	if cfg.Storage.EncryptCredential {
		sealer, err = credential.NewSealer(cfg.Storage.Passphrase)
		if err != nil {
			store.Close()
			return nil, err
		}
	}

	client := api.NewClientWithConfig(&api.ClientConfig{
		BaseURL:        cfg.Backend.BaseURL,
		PreferencesURL: cfg.Backend.PreferencesURL,
		Timeout:        cfg.RequestTimeout(),
		TurnTimeout:    cfg.TurnTimeout(),
		RatePerSec:     cfg.Backend.RatePerSec,
		Burst:          cfg.Backend.Burst,
		Logger:         logger,
	})

	return &Env{
		Config:    cfg,
		Logger:    logger,
		Client:    client,
		Store:     store,
		Tokens:    credential.NewAccessor(store, sealer),
		StorePath: dbPath,
		In:        os.Stdin,
		Out:       os.Stdout,
		Err:       os.Stderr,
	}, nil
}

// Close releases the store and flushes the logger.
func (e *Env) Close() error {
	_ = e.Logger.Sync()
	return e.Store.Close()
}

// ErrNotLoggedIn is returned by commands that need a valid session.
var ErrNotLoggedIn = errors.New("not logged in; run 'dsatutor login' first")

// requireSession runs the token-only gate, or the full gate when
// preferenceID is set, and returns the user ID for the session.
func (e *Env) requireSession(ctx context.Context, preferenceID string) (string, error) {
	gate := session.NewGate(e.Client, e.Tokens, e.Logger)

	var out session.Outcome
	if preferenceID == "" {
		out = gate.RunTokenOnly(ctx)
	} else {
		out = gate.Run(ctx, preferenceID)
	}
	if out.Passed() {
		return credential.UserID(out.Token, e.Config.Profile.UserID), nil
	}

	switch {
	case out.Redirect == session.RouteHome:
		return "", errors.New("a chat ID is required")
	case out.Cleared && preferenceID != "":
		return "", fmt.Errorf("chat %s is not available and the stored session was cleared: %w", preferenceID, ErrNotLoggedIn)
	case out.Cleared:
		return "", fmt.Errorf("session expired: %w", ErrNotLoggedIn)
	default:
		return "", ErrNotLoggedIn
	}
}
