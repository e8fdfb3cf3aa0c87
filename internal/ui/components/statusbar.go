// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides UI components for the veta TUI.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/askveta/veta-tui/internal/ui/styles"
	"github.com/askveta/veta-tui/internal/util"
)

// =============================================================================
// STATUS BAR
// =============================================================================

// Connection represents the backend connection state shown in the bar.
type Connection int

const (
	ConnectionOK Connection = iota
	ConnectionDegraded
	ConnectionOffline
)

// String returns the display string for the connection state.
func (c Connection) String() string {
	switch c {
	case ConnectionOK:
		return "online"
	case ConnectionDegraded:
		return "degraded"
	case ConnectionOffline:
		return "offline"
	default:
		return "unknown"
	}
}

// StatusBar is the bottom bar: user, agent, conversation, connection state
// and the number of documents still processing.
type StatusBar struct {
	Username   string
	Admin      bool
	Agent      string
	Title      string
	Connection Connection
	Processing int
	Width      int

	theme *styles.Theme
}

// NewStatusBar creates a status bar with sane zero values.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{
		Agent:      "default",
		Title:      "New Conversation",
		Connection: ConnectionOK,
		Width:      80,
		theme:      theme,
	}
}

// SetWidth updates the available width.
func (s *StatusBar) SetWidth(width int) {
	s.Width = width
}

// Render draws the status bar as a single line.
func (s *StatusBar) Render() string {
	var parts []string

	if s.Username != "" {
		user := s.Username
		if s.Admin {
			user += " (admin)"
		}
		parts = append(parts, user)
	}
	parts = append(parts, "agent:"+s.Agent)
	parts = append(parts, util.TruncateWidth(s.Title, 32))

	conn := s.Connection.String()
	switch s.Connection {
	case ConnectionOK:
		conn = s.theme.StatusOK.Render(conn)
	case ConnectionDegraded:
		conn = s.theme.StatusWarn.Render(conn)
	case ConnectionOffline:
		conn = s.theme.StatusError.Render(conn)
	}
	parts = append(parts, conn)

	if s.Processing > 0 {
		parts = append(parts, s.theme.StatusWarn.Render(
			fmt.Sprintf("%d doc(s) processing", s.Processing)))
	}

	line := strings.Join(parts, " | ")
	return s.theme.StatusBar.Width(s.Width).MaxWidth(s.Width).Render(line)
}

// RenderShortcuts draws a help line of key bindings.
func (s *StatusBar) RenderShortcuts(pairs [][2]string) string {
	var parts []string
	for _, p := range pairs {
		parts = append(parts,
			s.theme.ShortcutKey.Render(p[0])+" "+s.theme.ShortcutDesc.Render(p[1]))
	}
	return lipgloss.NewStyle().Padding(0, 1).Render(strings.Join(parts, "  "))
}
