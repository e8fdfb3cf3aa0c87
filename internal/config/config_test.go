// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.Server.BaseURL != "http://localhost:8000" {
		t.Errorf("base_url = %q", cfg.Server.BaseURL)
	}
	if cfg.KB.PollIntervalSecs != 5 {
		t.Errorf("poll_interval_secs = %d, want 5", cfg.KB.PollIntervalSecs)
	}
	if cfg.KB.MaxUploadMB != 10 {
		t.Errorf("max_upload_mb = %d, want 10", cfg.KB.MaxUploadMB)
	}
	if cfg.Chat.HistoryWindow != 10 {
		t.Errorf("history_window = %d, want 10", cfg.Chat.HistoryWindow)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadFromPathMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.Server.BaseURL != Default().Server.BaseURL {
		t.Errorf("expected default base_url, got %q", cfg.Server.BaseURL)
	}
}

func TestLoadFromPathPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[server]
base_url = "https://assistant.example.edu"

[chat]
default_agent = "strict"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.Server.BaseURL != "https://assistant.example.edu" {
		t.Errorf("base_url = %q", cfg.Server.BaseURL)
	}
	if cfg.Chat.DefaultAgent != "strict" {
		t.Errorf("default_agent = %q", cfg.Chat.DefaultAgent)
	}
	// Unspecified values fall back to defaults.
	if cfg.KB.PollIntervalSecs != 5 {
		t.Errorf("poll_interval_secs = %d, want default 5", cfg.KB.PollIntervalSecs)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("VETA_BASE_URL", "http://10.0.0.5:9000")
	t.Setenv("VETA_DEFAULT_AGENT", "friendly")
	t.Setenv("VETA_TIMEOUT_SECS", "30")
	t.Setenv("VETA_TYPEWRITER", "false")

	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "none.toml"))
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.Server.BaseURL != "http://10.0.0.5:9000" {
		t.Errorf("base_url = %q", cfg.Server.BaseURL)
	}
	if cfg.Chat.DefaultAgent != "friendly" {
		t.Errorf("default_agent = %q", cfg.Chat.DefaultAgent)
	}
	if cfg.Server.TimeoutSecs != 30 {
		t.Errorf("timeout_secs = %d", cfg.Server.TimeoutSecs)
	}
	if cfg.UI.Typewriter {
		t.Error("typewriter should be disabled by env")
	}
}

func TestEnvOverrideMalformedNumberIgnored(t *testing.T) {
	t.Setenv("VETA_TIMEOUT_SECS", "not-a-number")

	cfg := Default()
	cfg.ApplyEnvOverrides()
	if cfg.Server.TimeoutSecs != 60 {
		t.Errorf("timeout_secs = %d, want default 60", cfg.Server.TimeoutSecs)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty base url", func(c *Config) { c.Server.BaseURL = "" }},
		{"non-http scheme", func(c *Config) { c.Server.BaseURL = "ftp://x.example" }},
		{"garbage url", func(c *Config) { c.Server.BaseURL = "://bad" }},
		{"huge timeout", func(c *Config) { c.Server.TimeoutSecs = 9999 }},
		{"unknown theme", func(c *Config) { c.UI.Theme = "solarized" }},
		{"relative watch dir", func(c *Config) { c.KB.WatchDir = "relative/path" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.Server.BaseURL = "https://ta.example.edu"
	cfg.KB.MaxUploadMB = 20
	if err := SaveToPath(cfg, path); err != nil {
		t.Fatalf("SaveToPath: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("perm = %v, want 0600", info.Mode().Perm())
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if loaded.Server.BaseURL != "https://ta.example.edu" {
		t.Errorf("base_url = %q", loaded.Server.BaseURL)
	}
	if loaded.KB.MaxUploadMB != 20 {
		t.Errorf("max_upload_mb = %d", loaded.KB.MaxUploadMB)
	}
}
