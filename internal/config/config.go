// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for veta.
//
// Configuration sources, in order of precedence:
//   - VETA_* environment variables
//   - ~/.veta/config.toml
//   - Built-in defaults
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete veta configuration.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Chat    ChatConfig    `toml:"chat"`
	KB      KBConfig      `toml:"kb"`
	Session SessionConfig `toml:"session"`
	UI      UIConfig      `toml:"ui"`
}

// ServerConfig describes the backend endpoint.
type ServerConfig struct {
	// BaseURL is the backend root, e.g. "http://localhost:8000"
	BaseURL string `toml:"base_url"`
	// TimeoutSecs is the per-request timeout in seconds
	TimeoutSecs int `toml:"timeout_secs"`
	// RatePerSec caps outgoing requests per second (poll loops included)
	RatePerSec float64 `toml:"rate_per_sec"`
}

// ChatConfig contains chat behavior settings.
type ChatConfig struct {
	// DefaultAgent is the persona preselected on startup
	DefaultAgent string `toml:"default_agent"`
	// HistoryWindow is how many recent exchanges the history drawer shows
	HistoryWindow int `toml:"history_window"`
}

// KBConfig contains knowledge-base settings.
type KBConfig struct {
	// PollIntervalSecs is the ingestion-task polling interval
	PollIntervalSecs int `toml:"poll_interval_secs"`
	// TaskTimeoutMins bounds how long a single ingestion task is polled
	TaskTimeoutMins int `toml:"task_timeout_mins"`
	// WatchDir, when set, is auto-uploaded by `veta docs watch`
	WatchDir string `toml:"watch_dir"`
	// MaxUploadMB is the client-side upload size cap
	MaxUploadMB int `toml:"max_upload_mb"`
}

// SessionConfig contains local session settings.
type SessionConfig struct {
	// LockEnabled requires a TOTP code to unlock the stored session
	LockEnabled bool `toml:"lock_enabled"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto"
	Theme string `toml:"theme"`
	// Typewriter enables the incremental reveal of assistant replies
	Typewriter bool `toml:"typewriter"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			BaseURL:     "http://localhost:8000",
			TimeoutSecs: 60,
			RatePerSec:  5,
		},
		Chat: ChatConfig{
			DefaultAgent:  "default",
			HistoryWindow: 10,
		},
		KB: KBConfig{
			PollIntervalSecs: 5,
			TaskTimeoutMins:  10,
			MaxUploadMB:      10,
		},
		Session: SessionConfig{
			LockEnabled: false,
		},
		UI: UIConfig{
			Theme:      "dark",
			Typewriter: true,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// Dir returns the veta configuration directory path.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".veta"), nil
}

// Path returns the path to the TOML config file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureDir ensures the config directory exists.
func EnsureDir() error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// ensureSecurePermissions fixes permissions on the config file.
// SECURITY: Config files should be 0600 (owner read/write only).
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.Mode().Perm() != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", info.Mode().Perm(), err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from ~/.veta/config.toml, falling back to
// defaults when the file does not exist. Environment overrides are applied
// last, then the result is validated.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from a specific TOML file with full
// validation. A missing file is not an error; defaults are used.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if _, statErr := os.Stat(path); statErr == nil {
		// SECURITY: Check and fix file permissions if needed
		if err := ensureSecurePermissions(path); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
		}
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config file: %w", err)
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ApplyEnvOverrides applies VETA_* environment variables over the loaded
// values. Malformed numeric values are ignored rather than fatal so a bad
// shell export cannot brick the client.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("VETA_BASE_URL"); v != "" {
		c.Server.BaseURL = v
	}
	if v := os.Getenv("VETA_TIMEOUT_SECS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Server.TimeoutSecs = n
		}
	}
	if v := os.Getenv("VETA_DEFAULT_AGENT"); v != "" {
		c.Chat.DefaultAgent = v
	}
	if v := os.Getenv("VETA_WATCH_DIR"); v != "" {
		c.KB.WatchDir = v
	}
	if v := os.Getenv("VETA_THEME"); v != "" {
		c.UI.Theme = v
	}
	if v := os.Getenv("VETA_TYPEWRITER"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.UI.Typewriter = b
		}
	}
	if v := os.Getenv("VETA_SESSION_LOCK"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Session.LockEnabled = b
		}
	}
}

// fillDefaults fills in any missing values with defaults.
func (c *Config) fillDefaults() {
	defaults := Default()

	if c.Server.BaseURL == "" {
		c.Server.BaseURL = defaults.Server.BaseURL
	}
	if c.Server.TimeoutSecs <= 0 {
		c.Server.TimeoutSecs = defaults.Server.TimeoutSecs
	}
	if c.Server.RatePerSec <= 0 {
		c.Server.RatePerSec = defaults.Server.RatePerSec
	}
	if c.Chat.DefaultAgent == "" {
		c.Chat.DefaultAgent = defaults.Chat.DefaultAgent
	}
	if c.Chat.HistoryWindow <= 0 {
		c.Chat.HistoryWindow = defaults.Chat.HistoryWindow
	}
	if c.KB.PollIntervalSecs <= 0 {
		c.KB.PollIntervalSecs = defaults.KB.PollIntervalSecs
	}
	if c.KB.TaskTimeoutMins <= 0 {
		c.KB.TaskTimeoutMins = defaults.KB.TaskTimeoutMins
	}
	if c.KB.MaxUploadMB <= 0 {
		c.KB.MaxUploadMB = defaults.KB.MaxUploadMB
	}
	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
// SECURITY: Creates the file with 0600 permissions (owner read/write only).
func Save(cfg *Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	return SaveToPath(cfg, path)
}

// SaveToPath saves the configuration to a specific TOML file.
func SaveToPath(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	// SECURITY: Ensure permissions are correct even if the file already existed
	if err := os.Chmod(path, 0600); err != nil {
		return fmt.Errorf("failed to set config file permissions: %w", err)
	}

	fmt.Fprintln(file, "# veta configuration file")
	fmt.Fprintln(file, "# Generated by veta - edit with care")
	fmt.Fprintln(file, "")

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
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

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Server.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ValidationError{Field: "server.base_url", Message: "must be a valid http(s) URL"}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ValidationError{Field: "server.base_url", Message: "scheme must be http or https"}
	}
	if c.Server.TimeoutSecs > 600 {
		return ValidationError{Field: "server.timeout_secs", Message: "must be at most 600"}
	}
	switch strings.ToLower(c.UI.Theme) {
	case "dark", "light", "auto":
	default:
		return ValidationError{Field: "ui.theme", Message: "must be dark, light, or auto"}
	}
	if c.KB.WatchDir != "" {
		if !filepath.IsAbs(c.KB.WatchDir) {
			return ValidationError{Field: "kb.watch_dir", Message: "must be an absolute path"}
		}
	}
	return nil
}
