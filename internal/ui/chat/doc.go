// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the conversation screen of the veta TUI: the
// transcript viewport, the input line, the conversation picker overlay and
// the agent selector. Network work happens in tea.Cmd goroutines against the
// chat.Manager; the screen re-renders from the manager's state.
package chat
