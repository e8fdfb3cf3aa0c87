// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config_cmd.go - Configuration command handlers for the veta CLI.
//
// Command: config
// Short:   Show or edit the configuration file
//
// Examples:
//   veta config                        Show the effective configuration
//   veta config path                   Print the config file path
//   veta config set server.base_url http://localhost:8000
//   veta config set ui.typewriter false
package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"

	"github.com/askveta/veta-tui/internal/config"
)

// HandleConfig routes config subcommands.
func HandleConfig(args Args) {
	switch args.Subcommand {
	case "", "show":
		configShow()
	case "path":
		configPath()
	case "set":
		configSet(args)
	default:
		printError("unknown config subcommand %q", args.Subcommand)
		os.Exit(1)
	}
}

func configShow() {
	cfg, err := config.Load()
	if err != nil {
		printError("could not load config: %v", err)
		os.Exit(1)
	}
	if err := toml.NewEncoder(os.Stdout).Encode(cfg); err != nil {
		printError("could not render config: %v", err)
		os.Exit(1)
	}
}

func configPath() {
	path, err := config.Path()
	if err != nil {
		printError("%v", err)
		os.Exit(1)
	}
	fmt.Println(path)
}

func configSet(args Args) {
	if args.ConfigKey == "" || args.ConfigVal == "" {
		printError("usage: veta config set KEY VALUE")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		printError("could not load config: %v", err)
		os.Exit(1)
	}

	if err := applyConfigKey(cfg, args.ConfigKey, args.ConfigVal); err != nil {
		printError("%v", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		printError("invalid value: %v", err)
		os.Exit(1)
	}
	if err := config.Save(cfg); err != nil {
		printError("could not save config: %v", err)
		os.Exit(1)
	}
	printSuccess("%s = %s", args.ConfigKey, args.ConfigVal)
}

// applyConfigKey sets one dotted key. The key names mirror the TOML layout.
func applyConfigKey(cfg *config.Config, key, val string) error {
	switch key {
	case "server.base_url":
		cfg.Server.BaseURL = val
	case "server.timeout_secs":
		return setInt(&cfg.Server.TimeoutSecs, key, val)
	case "server.rate_per_sec":
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return fmt.Errorf("%s expects a number, got %q", key, val)
		}
		cfg.Server.RatePerSec = f
	case "chat.default_agent":
		cfg.Chat.DefaultAgent = val
	case "chat.history_window":
		return setInt(&cfg.Chat.HistoryWindow, key, val)
	case "kb.poll_interval_secs":
		return setInt(&cfg.KB.PollIntervalSecs, key, val)
	case "kb.task_timeout_mins":
		return setInt(&cfg.KB.TaskTimeoutMins, key, val)
	case "kb.watch_dir":
		cfg.KB.WatchDir = val
	case "kb.max_upload_mb":
		return setInt(&cfg.KB.MaxUploadMB, key, val)
	case "session.lock_enabled":
		return setBool(&cfg.Session.LockEnabled, key, val)
	case "ui.theme":
		cfg.UI.Theme = val
	case "ui.typewriter":
		return setBool(&cfg.UI.Typewriter, key, val)
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return nil
}

func setInt(dst *int, key, val string) error {
	n, err := strconv.Atoi(val)
	if err != nil {
		return fmt.Errorf("%s expects an integer, got %q", key, val)
	}
	*dst = n
	return nil
}

func setBool(dst *bool, key, val string) error {
	b, err := strconv.ParseBool(val)
	if err != nil {
		return fmt.Errorf("%s expects true or false, got %q", key, val)
	}
	*dst = b
	return nil
}
