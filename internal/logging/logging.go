// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging builds the zap logger used across dsatutor.
//
// The terminal UI owns stdout and stderr, so logs normally go to a file under
// the data directory. Line-mode commands may log to stderr instead.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jeranaias/dsatutor/internal/config"
	"github.com/jeranaias/dsatutor/internal/util"
)

// Options selects where and how much to log.
type Options struct {
	Level  string // debug, info, warn, error
	Format string // text or json
	// Path is the log file. Empty means stderr.
	Path string
	// Verbose forces debug level.
	Verbose bool
}

// FromConfig derives Options from the loaded configuration.
func FromConfig(cfg *config.Config, verbose bool) (Options, error) {
	path, err := cfg.LogFilePath()
	if err != nil {
		return Options{}, err
	}
	return Options{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Path:    path,
		Verbose: verbose,
	}, nil
}

// New builds a logger for opts.
func New(opts Options) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()

	level := zapcore.InfoLevel
	if opts.Level != "" {
		parsed, err := zapcore.ParseLevel(strings.ToLower(opts.Level))
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		level = parsed
	}
	if opts.Verbose {
		level = zapcore.DebugLevel
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	if strings.EqualFold(opts.Format, "text") {
		zcfg.Encoding = "console"
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zcfg.Sampling = nil

	sink := "stderr"
	if opts.Path != "" {
		if err := os.MkdirAll(filepath.Dir(opts.Path), util.DirPerm); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		sink = opts.Path
	}
	zcfg.OutputPaths = []string{sink}
	zcfg.ErrorOutputPaths = []string{sink}

	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger.Named("dsatutor"), nil
}
