// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/askveta/veta-tui/internal/api"
	chatmgr "github.com/askveta/veta-tui/internal/chat"
	"github.com/askveta/veta-tui/internal/model"
	"github.com/askveta/veta-tui/internal/ui/styles"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	client := api.New("http://127.0.0.1:0", api.StaticToken("tok"))
	mgr := chatmgr.NewManager(client, nil, "default")
	m := New(styles.NewTheme("dark"), mgr, true)
	m.SetSize(100, 30)
	return m
}

func TestSubmitWhitespaceIsNoOp(t *testing.T) {
	m := newTestModel(t)
	m.input.SetValue("   \t  ")

	updated, cmd := m.submit()
	if cmd != nil {
		t.Error("whitespace submit must not dispatch any command")
	}
	// The text stays in the input line.
	if updated.input.Value() != "   \t  " {
		t.Errorf("input was cleared: %q", updated.input.Value())
	}
}

func TestSubmitDispatchesSend(t *testing.T) {
	m := newTestModel(t)
	m.input.SetValue("what is a slice?")

	updated, cmd := m.submit()
	if cmd == nil {
		t.Fatal("submit should dispatch a send command")
	}
	if updated.input.Value() != "" {
		t.Error("input should be cleared after dispatch")
	}
}

func TestSendDoneFailureShowsStatusWithoutRetry(t *testing.T) {
	m := newTestModel(t)
	updated, cmd := m.handleSendDone(SendDoneMsg{Err: errors.New("backend down")})
	if cmd != nil {
		t.Error("a failed send must not schedule anything else")
	}
	if !updated.statusIsErr || !strings.Contains(updated.status, "send failed") {
		t.Errorf("status = %q", updated.status)
	}
}

func TestSendDoneSuccessStartsReveal(t *testing.T) {
	m := newTestModel(t)
	reply := model.NewAssistantMessage("a slice is a view onto an array")
	updated, cmd := m.handleSendDone(SendDoneMsg{Result: &chatmgr.SendResult{Reply: reply}})
	if cmd == nil {
		t.Fatal("success with typewriter enabled should schedule a tick")
	}
	if updated.revealID != reply.ID {
		t.Error("reveal should target the reply message")
	}
}

func TestSendDoneSuccessWithoutReveal(t *testing.T) {
	m := newTestModel(t)
	m.reveal = false
	reply := model.NewAssistantMessage("answer")
	updated, cmd := m.handleSendDone(SendDoneMsg{Result: &chatmgr.SendResult{Reply: reply}})
	if cmd != nil {
		t.Error("typewriter disabled: no tick expected")
	}
	if updated.revealID != "" {
		t.Error("no reveal should be active")
	}
}

func TestPickerNavigation(t *testing.T) {
	m := newTestModel(t)
	m.overlay = overlayPicker
	m.metas = []model.ConversationMeta{
		{ID: "a", Title: "first"},
		{ID: "b", Title: "second"},
	}

	m, _ = m.handlePickerKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	if m.pickerIdx != 1 {
		t.Errorf("pickerIdx = %d, want 1", m.pickerIdx)
	}
	// Does not run past the end.
	m, _ = m.handlePickerKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	if m.pickerIdx != 1 {
		t.Errorf("pickerIdx = %d, want 1", m.pickerIdx)
	}

	m, cmd := m.handlePickerKey(tea.KeyMsg{Type: tea.KeyEnter})
	if m.overlay != overlayNone {
		t.Error("enter should close the picker")
	}
	if cmd == nil {
		t.Error("enter should dispatch a load command")
	}
}

func TestCycleAgent(t *testing.T) {
	m := newTestModel(t)
	m.SetAgents([]model.Agent{
		{AgentType: "default", Name: "Default"},
		{AgentType: "strict", Name: "Strict"},
	})

	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyCtrlA})
	if got := m.manager.AgentType(); got != "strict" {
		t.Errorf("agent = %q, want strict", got)
	}
	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyCtrlA})
	if got := m.manager.AgentType(); got != "default" {
		t.Errorf("agent = %q, want default (wrapped)", got)
	}
}

func TestViewShowsEmptyHint(t *testing.T) {
	m := newTestModel(t)
	m.refreshViewport(false)
	if !strings.Contains(m.viewport.View(), "No messages yet") {
		t.Error("empty conversation should show hint")
	}
}
