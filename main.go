// veta - a terminal client for your virtual teaching assistant.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/askveta/veta-tui/internal/api"
	chatmgr "github.com/askveta/veta-tui/internal/chat"
	"github.com/askveta/veta-tui/internal/cli"
	"github.com/askveta/veta-tui/internal/config"
	"github.com/askveta/veta-tui/internal/docs"
	"github.com/askveta/veta-tui/internal/session"
	"github.com/askveta/veta-tui/internal/storage"
	"github.com/askveta/veta-tui/internal/ui"
	"github.com/askveta/veta-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdTUI:
		runTUI()
	case cli.CmdLogin:
		cli.HandleLogin(args)
	case cli.CmdLogout:
		cli.HandleLogout(args)
	case cli.CmdRegister:
		cli.HandleRegister(args)
	case cli.CmdResetPassword:
		cli.HandleResetPassword(args)
	case cli.CmdLock:
		cli.HandleLock(args)
	case cli.CmdWhoami:
		cli.HandleWhoami(args)
	case cli.CmdAsk:
		cli.HandleAsk(args)
	case cli.CmdChat:
		cli.HandleChat(args)
	case cli.CmdQuery:
		cli.HandleQuery(args)
	case cli.CmdDocs:
		cli.HandleDocs(args)
	case cli.CmdSummary:
		cli.HandleSummary(args)
	case cli.CmdHistory:
		cli.HandleHistory(args)
	case cli.CmdAdmin:
		cli.HandleAdmin(args)
	case cli.CmdConfig:
		cli.HandleConfig(args)
	case cli.CmdVersion:
		cli.PrintVersion()
	case cli.CmdHelp:
		cli.PrintUsage()
	}
}

// runTUI wires the full application and hands control to Bubble Tea.
func runTUI() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not load config: %v\n", err)
		os.Exit(1)
	}

	sessionPath, err := session.DefaultPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	keyPath := strings.TrimSuffix(sessionPath, ".json") + ".key"
	ks, err := session.OpenKeystore(keyPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not open keystore: %v\n", err)
		os.Exit(1)
	}
	sessions, err := session.NewManager(sessionPath, ks)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not load session: %v\n", err)
		os.Exit(1)
	}

	// A TOTP-locked session is unlocked on stdin before the alternate screen
	// takes over; a wrong code just means signing in again inside the TUI.
	if sessions.IsLocked() {
		fmt.Print("Verification code: ")
		var code string
		if _, err := fmt.Scanln(&code); err == nil {
			if err := sessions.Unlock(code); err != nil {
				fmt.Fprintf(os.Stderr, "could not unlock session: %v\n", err)
			}
		}
	}

	client := api.New(cfg.Server.BaseURL, sessions).
		WithTimeout(time.Duration(cfg.Server.TimeoutSecs) * time.Second).
		WithRateLimit(cfg.Server.RatePerSec, int(cfg.Server.RatePerSec)*2)

	// The local cache is best-effort; the TUI runs fine without it.
	var recorder chatmgr.Recorder
	if path, err := storage.DefaultPath(); err == nil {
		if cache, err := storage.Open(path); err == nil {
			defer cache.Close()
			recorder = cache
		}
	}
	manager := chatmgr.NewManager(client, recorder, cfg.Chat.DefaultAgent)

	// Ingestion polling runs for the life of the TUI and keeps document
	// statuses fresh on the knowledge base screen.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	poller := docs.NewPoller(client,
		time.Duration(cfg.KB.PollIntervalSecs)*time.Second,
		time.Duration(cfg.KB.TaskTimeoutMins)*time.Minute,
		nil)
	registry := docs.NewRegistry(client, poller, int64(cfg.KB.MaxUploadMB)<<20)
	poller.Start(ctx)
	defer poller.Stop()

	theme := styles.NewTheme(cfg.UI.Theme)
	app := ui.NewApp(theme, client, sessions, manager, registry, cfg.UI.Typewriter)

	program := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "veta: %v\n", err)
		os.Exit(1)
	}
}
