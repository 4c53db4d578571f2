// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for dsatutor.
//
// Supports both TOML and JSON configuration formats, with defaults, .env
// files, environment variable overrides, and validation.
//
// # Key Types
//
//   - Config: Main configuration structure
//   - BackendConfig: tutoring and preferences service endpoints, timeouts, rate limits
//   - StorageConfig: where the local credential store lives
//   - LogConfig: zap level, encoding and log file
//   - UIConfig: theme and rendering options
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Command line flags (applied by the cli package)
//   - Environment variables (DSATUTOR_*), including values from a .env file
//   - ~/.dsatutor/config.toml
//   - ~/.dsatutor/config.json
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	client := api.NewClientWithConfig(&api.ClientConfig{
//	    BaseURL:        cfg.Backend.BaseURL,
//	    PreferencesURL: cfg.Backend.PreferencesURL,
//	})
package config
