// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the conversation screen for the TUI.
//
// This file defines the messages and tea.Cmd constructors for backend work.
// Every network call runs in a command goroutine; the Update loop only ever
// handles the resulting message.
package chat

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	chatmgr "github.com/askveta/veta-tui/internal/chat"
	"github.com/askveta/veta-tui/internal/model"
)

// =============================================================================
// MESSAGES
// =============================================================================

// SendDoneMsg reports a completed send, success or failure. On failure the
// user message stays in the transcript marked failed; there is no retry.
type SendDoneMsg struct {
	Result *chatmgr.SendResult
	Err    error
}

// HistoryLoadedMsg reports a conversation switch.
type HistoryLoadedMsg struct {
	ID  string
	Err error
}

// DirectoryMsg carries a refreshed conversation directory.
type DirectoryMsg struct {
	Metas []model.ConversationMeta
	Err   error
}

// ConversationDeletedMsg reports a backend delete.
type ConversationDeletedMsg struct {
	ID  string
	Err error
}

// ConversationRenamedMsg reports a backend rename.
type ConversationRenamedMsg struct {
	ID    string
	Title string
	Err   error
}

// =============================================================================
// COMMANDS
// =============================================================================

func sendCmd(mgr *chatmgr.Manager, text string) tea.Cmd {
	return func() tea.Msg {
		result, err := mgr.SendMessage(context.Background(), text)
		return SendDoneMsg{Result: result, Err: err}
	}
}

func loadCmd(mgr *chatmgr.Manager, id string) tea.Cmd {
	return func() tea.Msg {
		err := mgr.LoadConversation(context.Background(), id)
		return HistoryLoadedMsg{ID: id, Err: err}
	}
}

func directoryCmd(mgr *chatmgr.Manager) tea.Cmd {
	return func() tea.Msg {
		err := mgr.RefreshDirectory(context.Background())
		return DirectoryMsg{Metas: mgr.Directory(), Err: err}
	}
}

func deleteCmd(mgr *chatmgr.Manager, id string) tea.Cmd {
	return func() tea.Msg {
		err := mgr.DeleteConversation(context.Background(), id)
		return ConversationDeletedMsg{ID: id, Err: err}
	}
}

func renameCmd(mgr *chatmgr.Manager, id, title string) tea.Cmd {
	return func() tea.Msg {
		err := mgr.RenameConversation(context.Background(), id, title)
		return ConversationRenamedMsg{ID: id, Title: title, Err: err}
	}
}
