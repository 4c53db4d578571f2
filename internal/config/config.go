// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/jeranaias/dsatutor/internal/util"
)

const (
	// DirName is the configuration directory under the user's home.
	DirName = ".dsatutor"

	// EnvConfigDir overrides the configuration directory. Used by tests and
	// portable installs.
	EnvConfigDir = "DSATUTOR_CONFIG_DIR"

	// DefaultUserID is sent when the credential carries no subject claim.
	DefaultUserID = "user-123"
)

// =============================================================================
// CONFIG TYPES
// =============================================================================

// Config is the main configuration structure for dsatutor.
type Config struct {
	Version string `toml:"version" json:"version"`

	Backend BackendConfig `toml:"backend" json:"backend"`
	Storage StorageConfig `toml:"storage" json:"storage"`
	Log     LogConfig     `toml:"log" json:"log"`
	UI      UIConfig      `toml:"ui" json:"ui"`
	Profile ProfileConfig `toml:"profile" json:"profile"`
}

// BackendConfig locates the tutoring services.
type BackendConfig struct {
	// BaseURL is the tutoring backend (auth, chat, conversations, images).
	BaseURL string `toml:"base_url" json:"base_url"`

	// PreferencesURL is the service that creates learning preferences.
	PreferencesURL string `toml:"preferences_url" json:"preferences_url"`

	// RequestTimeoutSecs bounds verification and fetch calls.
	RequestTimeoutSecs int `toml:"request_timeout_secs" json:"request_timeout_secs"`

	// TurnTimeoutSecs bounds an advance call. 0 means no timeout.
	TurnTimeoutSecs int `toml:"turn_timeout_secs" json:"turn_timeout_secs"`

	// RatePerSec and Burst configure the client-side request limiter.
	RatePerSec float64 `toml:"rate_per_sec" json:"rate_per_sec"`
	Burst      int     `toml:"burst" json:"burst"`
}

// StorageConfig controls local state.
type StorageConfig struct {
	// DataDir holds the credential database and log file. Empty means the
	// config directory.
	DataDir string `toml:"data_dir" json:"data_dir"`

	// EncryptCredential seals the stored token with a passphrase-derived key.
	EncryptCredential bool `toml:"encrypt_credential" json:"encrypt_credential"`

	// Passphrase is only ever read from DSATUTOR_CREDENTIAL_PASSPHRASE.
	Passphrase string `toml:"-" json:"-"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level  string `toml:"level" json:"level"`   // debug, info, warn, error
	Format string `toml:"format" json:"format"` // text or json
	File   string `toml:"file" json:"file"`     // relative paths resolve under DataDir
}

// UIConfig contains terminal rendering settings.
type UIConfig struct {
	Theme     string `toml:"theme" json:"theme"`           // auto, dark, light
	CodeStyle string `toml:"code_style" json:"code_style"` // chroma style name
	WordWrap  int    `toml:"word_wrap" json:"word_wrap"`

	// ExportDir receives transcripts exported from the chat screen.
	ExportDir    string `toml:"export_dir" json:"export_dir"`
	ExportFormat string `toml:"export_format" json:"export_format"` // markdown or json
}

// ProfileConfig identifies the student when the token does not.
type ProfileConfig struct {
	UserID string `toml:"user_id" json:"user_id"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Version: "1",
		Backend: BackendConfig{
			BaseURL:            "http://127.0.0.1:8000",
			PreferencesURL:     "http://localhost:5000",
			RequestTimeoutSecs: 15,
			TurnTimeoutSecs:    0,
			RatePerSec:         5,
			Burst:              10,
		},
		Storage: StorageConfig{
			EncryptCredential: false,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
			File:   "dsatutor.log",
		},
		UI: UIConfig{
			Theme:        "auto",
			CodeStyle:    "monokai",
			WordWrap:     80,
			ExportFormat: "markdown",
		},
		Profile: ProfileConfig{
			UserID: DefaultUserID,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// Dir returns the dsatutor configuration directory path.
func Dir() (string, error) {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, DirName), nil
}

// PathTOML returns the path to the TOML config file.
func PathTOML() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// PathJSON returns the path to the JSON config file.
func PathJSON() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// DataDir returns the resolved data directory.
func (c *Config) DataDir() (string, error) {
	if c.Storage.DataDir != "" {
		return expandHome(c.Storage.DataDir)
	}
	return Dir()
}

// CredentialDBPath returns the path of the local credential database.
func (c *Config) CredentialDBPath() (string, error) {
	dir, err := c.DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "credential.db"), nil
}

// LogFilePath returns the log file path, or "" when file logging is off.
func (c *Config) LogFilePath() (string, error) {
	if c.Log.File == "" {
		return "", nil
	}
	file, err := expandHome(c.Log.File)
	if err != nil {
		return "", err
	}
	if filepath.IsAbs(file) {
		return file, nil
	}
	dir, err := c.DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, file), nil
}

// RequestTimeout is the timeout for verification and fetch calls.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Backend.RequestTimeoutSecs) * time.Second
}

// TurnTimeout is the timeout for advance calls. Zero means none.
func (c *Config) TurnTimeout() time.Duration {
	return time.Duration(c.Backend.TurnTimeoutSecs) * time.Second
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// ensureSecurePermissions tightens a config file to 0600.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config directory.
// Tries TOML first, then JSON, and falls back to defaults. A .env file in the
// working directory or the config directory is read before environment
// overrides are applied.
func Load() (*Config, error) {
	LoadDotEnv()

	cfg := Default()

	tomlPath, err := PathTOML()
	if err != nil {
		return nil, err
	}
	jsonPath, err := PathJSON()
	if err != nil {
		return nil, err
	}

	switch {
	case fileExists(tomlPath):
		if err := LoadTOML(cfg, tomlPath); err != nil {
			return nil, fmt.Errorf("failed to load TOML config: %w", err)
		}
	case fileExists(jsonPath):
		if err := LoadJSON(cfg, jsonPath); err != nil {
			return nil, fmt.Errorf("failed to load JSON config: %w", err)
		}
	}

	return finish(cfg)
}

// LoadFromPath loads configuration from a specific file.
// Files ending in .json are decoded as JSON, anything else as TOML.
func LoadFromPath(path string) (*Config, error) {
	LoadDotEnv()

	cfg := Default()
	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}
	return finish(cfg)
}

func finish(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	fillDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes a TOML file over cfg.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON decodes a JSON file over cfg.
func LoadJSON(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// LoadDotEnv reads .env from the working directory and then the config
// directory. Variables already set in the environment win. Missing files are
// ignored.
func LoadDotEnv() {
	candidates := []string{".env"}
	if dir, err := Dir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, ".env"))
	}
	for _, path := range candidates {
		if fileExists(path) {
			_ = godotenv.Load(path)
		}
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// fillDefaults fills in any zero values the file left empty.
func fillDefaults(cfg *Config) {
	defaults := Default()

	if cfg.Version == "" {
		cfg.Version = defaults.Version
	}

	// Backend
	if cfg.Backend.BaseURL == "" {
		cfg.Backend.BaseURL = defaults.Backend.BaseURL
	}
	if cfg.Backend.PreferencesURL == "" {
		cfg.Backend.PreferencesURL = defaults.Backend.PreferencesURL
	}
	if cfg.Backend.RequestTimeoutSecs == 0 {
		cfg.Backend.RequestTimeoutSecs = defaults.Backend.RequestTimeoutSecs
	}
	if cfg.Backend.RatePerSec == 0 {
		cfg.Backend.RatePerSec = defaults.Backend.RatePerSec
	}
	if cfg.Backend.Burst == 0 {
		cfg.Backend.Burst = defaults.Backend.Burst
	}
	cfg.Backend.BaseURL = strings.TrimRight(cfg.Backend.BaseURL, "/")
	cfg.Backend.PreferencesURL = strings.TrimRight(cfg.Backend.PreferencesURL, "/")

	// Log
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaults.Log.Level
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = defaults.Log.Format
	}

	// UI
	if cfg.UI.Theme == "" {
		cfg.UI.Theme = defaults.UI.Theme
	}
	if cfg.UI.CodeStyle == "" {
		cfg.UI.CodeStyle = defaults.UI.CodeStyle
	}
	if cfg.UI.WordWrap == 0 {
		cfg.UI.WordWrap = defaults.UI.WordWrap
	}
	if cfg.UI.ExportFormat == "" {
		cfg.UI.ExportFormat = defaults.UI.ExportFormat
	}

	if cfg.Profile.UserID == "" {
		cfg.Profile.UserID = defaults.Profile.UserID
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save writes the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := PathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes the configuration as TOML with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# dsatutor configuration file\n")
	buf.WriteString("# Environment variables DSATUTOR_* override these values.\n\n")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validate checks the configuration and returns ValidateErrors on failure.
func (c *Config) Validate() error {
	var errs ValidateErrors

	for field, raw := range map[string]string{
		"backend.base_url":        c.Backend.BaseURL,
		"backend.preferences_url": c.Backend.PreferencesURL,
	} {
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("invalid URL %q, must be an absolute http(s) URL", raw),
			})
		}
	}

	if c.Backend.RequestTimeoutSecs < 0 {
		errs = append(errs, ValidationError{Field: "backend.request_timeout_secs", Message: "cannot be negative"})
	}
	if c.Backend.TurnTimeoutSecs < 0 {
		errs = append(errs, ValidationError{Field: "backend.turn_timeout_secs", Message: "cannot be negative"})
	}
	if c.Backend.RatePerSec < 0 {
		errs = append(errs, ValidationError{Field: "backend.rate_per_sec", Message: "cannot be negative"})
	}
	if c.Backend.Burst < 1 {
		errs = append(errs, ValidationError{Field: "backend.burst", Message: "must be at least 1"})
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error", c.Log.Level),
		})
	}
	if f := strings.ToLower(c.Log.Format); f != "text" && f != "json" {
		errs = append(errs, ValidationError{
			Field:   "log.format",
			Message: fmt.Sprintf("invalid format '%s', must be one of: text, json", c.Log.Format),
		})
	}

	validThemes := map[string]bool{"auto": true, "dark": true, "light": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: auto, dark, light", c.UI.Theme),
		})
	}
	if c.UI.WordWrap < 20 {
		errs = append(errs, ValidationError{Field: "ui.word_wrap", Message: "must be at least 20"})
	}
	if f := strings.ToLower(c.UI.ExportFormat); f != "markdown" && f != "md" && f != "json" {
		errs = append(errs, ValidationError{
			Field:   "ui.export_format",
			Message: fmt.Sprintf("invalid format '%s', must be one of: markdown, json", c.UI.ExportFormat),
		})
	}

	if c.Storage.EncryptCredential && c.Storage.Passphrase == "" {
		errs = append(errs, ValidationError{
			Field:   "storage.encrypt_credential",
			Message: "requires DSATUTOR_CREDENTIAL_PASSPHRASE to be set",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - DSATUTOR_BACKEND_URL: overrides backend.base_url
//   - DSATUTOR_PREFERENCES_URL: overrides backend.preferences_url
//   - DSATUTOR_LOG_LEVEL: overrides log.level
//   - DSATUTOR_DATA_DIR: overrides storage.data_dir
//   - DSATUTOR_USER_ID: overrides profile.user_id
//   - DSATUTOR_ENCRYPT_CREDENTIAL: "1" or "true" enables storage.encrypt_credential
//   - DSATUTOR_CREDENTIAL_PASSPHRASE: the credential passphrase (never saved)
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("DSATUTOR_BACKEND_URL"); v != "" {
		c.Backend.BaseURL = v
	}
	if v := os.Getenv("DSATUTOR_PREFERENCES_URL"); v != "" {
		c.Backend.PreferencesURL = v
	}
	if v := os.Getenv("DSATUTOR_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("DSATUTOR_DATA_DIR"); v != "" {
		c.Storage.DataDir = v
	}
	if v := os.Getenv("DSATUTOR_USER_ID"); v != "" {
		c.Profile.UserID = v
	}
	if v := os.Getenv("DSATUTOR_ENCRYPT_CREDENTIAL"); v != "" {
		enabled, err := strconv.ParseBool(v)
		c.Storage.EncryptCredential = err == nil && enabled
	}
	if v := os.Getenv("DSATUTOR_CREDENTIAL_PASSPHRASE"); v != "" {
		c.Storage.Passphrase = v
	}
}

// =============================================================================
// UTILITY METHODS
// =============================================================================

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String returns the config as indented JSON. The passphrase is never
// included because it carries no json tag.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the process-wide configuration, loading it on first use.
// Load errors fall back to defaults with a warning on stderr.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
			cfg = Default()
		}
		globalConfigMu.Lock()
		if globalConfig == nil {
			globalConfig = cfg
		}
		globalConfigMu.Unlock()
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// SetGlobal replaces the process-wide configuration. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	globalConfig = cfg
	globalConfigMu.Unlock()
	globalConfigOnce.Do(func() {})
}

// ResetGlobalForTesting resets the global config state for testing.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
