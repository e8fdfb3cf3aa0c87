// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// helpers.go - Shared wiring and output helpers for the veta CLI.
package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/askveta/veta-tui/internal/api"
	"github.com/askveta/veta-tui/internal/config"
	"github.com/askveta/veta-tui/internal/model"
	"github.com/askveta/veta-tui/internal/session"
	"github.com/askveta/veta-tui/internal/ui/components"
	"github.com/askveta/veta-tui/internal/ui/styles"
)

// =============================================================================
// OUTPUT
// =============================================================================

// colorEnabled is set once from the terminal's capabilities. Plain output
// when piping or on dumb terminals.
var colorEnabled = termenv.ColorProfile() != termenv.Ascii

var (
	successStyle = lipgloss.NewStyle().Foreground(styles.Emerald).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(styles.Rose).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(styles.Cyan)
	labelStyle   = lipgloss.NewStyle().Foreground(styles.TextSecondary)
)

func printSuccess(format string, a ...any) {
	msg := fmt.Sprintf(format, a...)
	if colorEnabled {
		msg = successStyle.Render(msg)
	}
	fmt.Println(msg)
}

func printError(format string, a ...any) {
	msg := fmt.Sprintf(format, a...)
	if colorEnabled {
		msg = errorStyle.Render(msg)
	}
	fmt.Fprintln(os.Stderr, msg)
}

func printInfo(format string, a ...any) {
	msg := fmt.Sprintf(format, a...)
	if colorEnabled {
		msg = infoStyle.Render(msg)
	}
	fmt.Println(msg)
}

func printLabel(label, value string) {
	if colorEnabled {
		label = labelStyle.Render(label)
	}
	fmt.Printf("%s %s\n", label, value)
}

// printMarkdown renders assistant markdown for the terminal. Plain text
// when colors are off.
func printMarkdown(text string) {
	if !colorEnabled {
		fmt.Println(text)
		return
	}
	fmt.Println(components.NewMarkdownRenderer(80).Render(text))
}

// =============================================================================
// PROMPTS
// =============================================================================

// promptLine reads a line from stdin with a visible prompt.
func promptLine(prompt string) (string, error) {
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// promptPassword reads a password without echoing it.
func promptPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	pwd, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}

// =============================================================================
// DISPLAY NAMES
// =============================================================================

var titleCaser = cases.Title(language.English)

// agentDisplayName returns a human name for a persona, falling back to a
// title-cased agent type when the backend supplies none.
func agentDisplayName(agent model.Agent) string {
	if agent.Name != "" {
		return agent.Name
	}
	return titleCaser.String(strings.ReplaceAll(agent.AgentType, "_", " "))
}

// =============================================================================
// RUNTIME WIRING
// =============================================================================

// runtime bundles the pieces every command needs.
type runtime struct {
	cfg      *config.Config
	sessions *session.Manager
	client   *api.Client
}

// newRuntime loads config and the stored session and builds the API client.
// The session manager doubles as the client's token source.
func newRuntime() (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("could not load config: %w", err)
	}

	sessionPath, err := session.DefaultPath()
	if err != nil {
		return nil, err
	}
	keyPath := strings.TrimSuffix(sessionPath, ".json") + ".key"
	ks, err := session.OpenKeystore(keyPath)
	if err != nil {
		return nil, fmt.Errorf("could not open keystore: %w", err)
	}
	sessions, err := session.NewManager(sessionPath, ks)
	if err != nil {
		return nil, fmt.Errorf("could not load session: %w", err)
	}

	client := api.New(cfg.Server.BaseURL, sessions).
		WithTimeout(time.Duration(cfg.Server.TimeoutSecs) * time.Second).
		WithRateLimit(cfg.Server.RatePerSec, int(cfg.Server.RatePerSec)*2)

	return &runtime{cfg: cfg, sessions: sessions, client: client}, nil
}

// requireAuth exits with a hint when no session is stored. A TOTP-locked
// session is unlocked interactively first.
func (rt *runtime) requireAuth() {
	if rt.sessions.IsLocked() {
		code, err := promptLine("Verification code: ")
		if err != nil {
			printError("could not read code: %v", err)
			os.Exit(1)
		}
		if err := rt.sessions.Unlock(code); err != nil {
			printError("could not unlock session: %v", err)
			os.Exit(1)
		}
	}
	if !rt.sessions.IsAuthenticated() {
		printError("not signed in. Run: veta login")
		os.Exit(1)
	}
}
