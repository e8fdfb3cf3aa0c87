// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the conversation screen for the TUI.
package chat

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	chatmgr "github.com/askveta/veta-tui/internal/chat"
	"github.com/askveta/veta-tui/internal/ui/components"
)

// Update handles messages for the conversation screen.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		return m.handleKey(msg)

	case SendDoneMsg:
		return m.handleSendDone(msg)

	case HistoryLoadedMsg:
		if msg.Err != nil {
			m.setStatus("could not load conversation: "+msg.Err.Error(), true)
			return m, nil
		}
		m.typewriter.Stop()
		m.revealID = ""
		m.setStatus("", false)
		m.refreshViewport(true)
		return m, nil

	case DirectoryMsg:
		if msg.Err != nil {
			m.setStatus("could not refresh conversations: "+msg.Err.Error(), true)
			return m, nil
		}
		m.metas = msg.Metas
		if m.pickerIdx >= len(m.metas) {
			m.pickerIdx = 0
		}
		return m, nil

	case ConversationDeletedMsg:
		if msg.Err != nil {
			m.setStatus("delete failed: "+msg.Err.Error(), true)
			return m, nil
		}
		m.metas = m.manager.Directory()
		if m.pickerIdx >= len(m.metas) {
			m.pickerIdx = 0
		}
		m.refreshViewport(true)
		return m, nil

	case ConversationRenamedMsg:
		if msg.Err != nil {
			m.setStatus("rename failed: "+msg.Err.Error(), true)
			return m, nil
		}
		m.metas = m.manager.Directory()
		return m, nil

	case components.TypewriterTickMsg:
		cmd := m.typewriter.Advance(msg)
		if !m.typewriter.Active() {
			m.revealID = ""
		}
		m.refreshViewport(true)
		return m, cmd

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.manager.IsSending() {
			return m, cmd
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.overlay == overlayPicker {
		return m.handlePickerKey(msg)
	}
	if m.overlay == overlayRename {
		return m.handleRenameKey(msg)
	}

	switch {
	case key.Matches(msg, m.keyMap.Submit):
		return m.submit()

	case key.Matches(msg, m.keyMap.NewConv):
		m.manager.NewConversation()
		m.typewriter.Stop()
		m.revealID = ""
		m.setStatus("started a new conversation", false)
		m.refreshViewport(true)
		return m, nil

	case key.Matches(msg, m.keyMap.Conversations):
		m.overlay = overlayPicker
		m.pickerIdx = 0
		m.metas = m.manager.Directory()
		return m, directoryCmd(m.manager)

	case key.Matches(msg, m.keyMap.CycleAgent):
		if len(m.agents) > 0 {
			m.agentIdx = (m.agentIdx + 1) % len(m.agents)
			m.manager.SetAgentType(m.agents[m.agentIdx].AgentType)
			m.setStatus("agent: "+m.agents[m.agentIdx].AgentType, false)
		}
		return m, nil

	case key.Matches(msg, m.keyMap.Up):
		m.viewport.LineUp(1)
		return m, nil

	case key.Matches(msg, m.keyMap.Down):
		m.viewport.LineDown(1)
		return m, nil

	case key.Matches(msg, m.keyMap.PageUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keyMap.PageDown):
		m.viewport.HalfViewDown()
		return m, nil

	case key.Matches(msg, m.keyMap.Cancel):
		// Esc skips an active reveal before anything else.
		if m.typewriter.Active() {
			m.typewriter.Skip()
			m.revealID = ""
			m.refreshViewport(true)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit dispatches the typed message. Whitespace-only input is a no-op
// with zero network activity; the text stays in the input line.
func (m Model) submit() (Model, tea.Cmd) {
	text := m.input.Value()
	if strings.TrimSpace(text) == "" {
		return m, nil
	}
	if m.manager.IsSending() {
		m.setStatus("still waiting for the previous reply", true)
		return m, nil
	}

	m.input.Reset()
	m.typewriter.Skip()
	m.revealID = ""
	m.setStatus("", false)

	// Optimistic echo: the manager appends the pending message before the
	// request goes out, and the spinner tick keeps the view refreshing.
	return m, tea.Batch(sendCmd(m.manager, text), m.spinner.Tick)
}

func (m Model) handleSendDone(msg SendDoneMsg) (Model, tea.Cmd) {
	if msg.Err != nil {
		switch {
		case errors.Is(msg.Err, chatmgr.ErrEmptyMessage):
			// Nothing was sent, nothing to show.
		case errors.Is(msg.Err, chatmgr.ErrSendInFlight):
			m.setStatus("still waiting for the previous reply", true)
		default:
			// The pending bubble is already marked failed. No retry.
			m.setStatus("send failed: "+msg.Err.Error(), true)
		}
		m.refreshViewport(true)
		return m, nil
	}

	m.refreshViewport(true)
	if m.reveal && msg.Result != nil && msg.Result.Reply != nil {
		m.revealID = msg.Result.Reply.ID
		cmd := m.typewriter.Start(msg.Result.Reply.Content)
		m.refreshViewport(true)
		return m, cmd
	}
	return m, nil
}

// =============================================================================
// PICKER OVERLAY
// =============================================================================

func (m Model) handlePickerKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.overlay = overlayNone
		return m, nil
	case "up", "k":
		if m.pickerIdx > 0 {
			m.pickerIdx--
		}
		return m, nil
	case "down", "j":
		if m.pickerIdx < len(m.metas)-1 {
			m.pickerIdx++
		}
		return m, nil
	case "enter":
		if len(m.metas) == 0 {
			m.overlay = overlayNone
			return m, nil
		}
		m.overlay = overlayNone
		return m, loadCmd(m.manager, m.metas[m.pickerIdx].ID)
	case "d":
		if len(m.metas) == 0 {
			return m, nil
		}
		id := m.metas[m.pickerIdx].ID
		m.overlay = overlayNone
		return m, deleteCmd(m.manager, id)
	case "r":
		if len(m.metas) == 0 {
			return m, nil
		}
		m.renameID = m.metas[m.pickerIdx].ID
		m.renameInput.SetValue(m.metas[m.pickerIdx].Title)
		m.renameInput.Focus()
		m.overlay = overlayRename
		return m, nil
	}
	return m, nil
}

func (m Model) handleRenameKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.overlay = overlayNone
		m.renameInput.Blur()
		return m, nil
	case "enter":
		title := strings.TrimSpace(m.renameInput.Value())
		m.overlay = overlayNone
		m.renameInput.Blur()
		if title == "" {
			return m, nil
		}
		return m, renameCmd(m.manager, m.renameID, title)
	}
	var cmd tea.Cmd
	m.renameInput, cmd = m.renameInput.Update(msg)
	return m, cmd
}
