// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"testing"
)

func TestNewUserMessageStartsPending(t *testing.T) {
	msg := NewUserMessage("hello")
	if msg.Role != RoleUser {
		t.Errorf("role = %v, want user", msg.Role)
	}
	if msg.Delivery != DeliveryPending {
		t.Errorf("delivery = %v, want pending", msg.Delivery)
	}
	if msg.ID == "" {
		t.Error("expected generated ID")
	}
}

func TestDeliveryTransitions(t *testing.T) {
	msg := NewUserMessage("hi")

	msg.MarkSent()
	if msg.Delivery != DeliverySent {
		t.Errorf("delivery = %v, want sent", msg.Delivery)
	}

	// Terminal states must not transition again.
	msg.MarkFailed()
	if msg.Delivery != DeliverySent {
		t.Errorf("sent message changed to %v on MarkFailed", msg.Delivery)
	}

	failed := NewUserMessage("hi")
	failed.MarkFailed()
	if failed.Delivery != DeliveryFailed {
		t.Errorf("delivery = %v, want failed", failed.Delivery)
	}
	failed.MarkSent()
	if failed.Delivery != DeliveryFailed {
		t.Errorf("failed message changed to %v on MarkSent", failed.Delivery)
	}
}

func TestMessagePreview(t *testing.T) {
	msg := NewUserMessage("short")
	if got := msg.Preview(50); got != "short" {
		t.Errorf("got %q", got)
	}

	long := NewUserMessage("this is a much longer message that needs truncation")
	got := long.Preview(20)
	if len([]rune(got)) != 20 {
		t.Errorf("preview rune length = %d, want 20", len([]rune(got)))
	}

	cjk := NewUserMessage("日本語テキストが長い場合でも安全に切り詰める")
	got = cjk.Preview(10)
	if len([]rune(got)) > 10 {
		t.Errorf("CJK preview too long: %q", got)
	}
}

func TestConversationTitleFromFirstUserMessage(t *testing.T) {
	conv := NewConversation(DefaultAgentType)
	conv.AddUserMessage("What is photosynthesis?")
	conv.AddAssistantMessage("Photosynthesis is...")

	if got := conv.GetTitle(); got != "What is photosynthesis?" {
		t.Errorf("title = %q", got)
	}

	// Title stays once derived.
	conv.AddUserMessage("And respiration?")
	if got := conv.GetTitle(); got != "What is photosynthesis?" {
		t.Errorf("title changed to %q", got)
	}
}

func TestConversationReplaceMessages(t *testing.T) {
	conv := NewConversation(DefaultAgentType)
	conv.AddUserMessage("local only")

	history := []*Message{
		NewUserMessage("from backend"),
		NewAssistantMessage("backend reply"),
	}
	conv.ReplaceMessages(history)

	if conv.MessageCount() != 2 {
		t.Fatalf("count = %d, want 2 (full replace, not merge)", conv.MessageCount())
	}
	if conv.Messages[0].Content != "from backend" {
		t.Errorf("first message = %q", conv.Messages[0].Content)
	}

	conv.ReplaceMessages(nil)
	if conv.Messages == nil || conv.MessageCount() != 0 {
		t.Error("nil replace should leave an empty non-nil slice")
	}
}

func TestConversationClear(t *testing.T) {
	conv := NewConversation("strict")
	conv.ID = "conv-42"
	conv.AddUserMessage("hello")

	conv.Clear()
	if conv.ID != "" {
		t.Errorf("ID = %q, want empty after clear", conv.ID)
	}
	if !conv.IsEmpty() {
		t.Error("expected empty sequence after clear")
	}
	if conv.GetTitle() != "New Conversation" {
		t.Errorf("title = %q", conv.GetTitle())
	}
}

func TestRecentExchanges(t *testing.T) {
	conv := NewConversation(DefaultAgentType)
	for i := 0; i < 15; i++ {
		conv.AddUserMessage("q")
		conv.AddAssistantMessage("a")
	}

	window := conv.RecentExchanges(10)
	if len(window) != 20 {
		t.Fatalf("window length = %d, want 20", len(window))
	}
	// Window must be the tail of the sequence.
	if window[len(window)-1] != conv.GetLastMessage() {
		t.Error("window does not end at the latest message")
	}

	if got := conv.RecentExchanges(0); got != nil {
		t.Error("zero-size window should be nil")
	}
}

func TestDocumentStatusTerminal(t *testing.T) {
	tests := []struct {
		status   DocumentStatus
		terminal bool
	}{
		{DocStatusUploaded, false},
		{DocStatusProcessing, false},
		{DocStatusProcessed, true},
		{DocStatusFailed, true},
	}
	for _, tt := range tests {
		if got := tt.status.IsTerminal(); got != tt.terminal {
			t.Errorf("%s.IsTerminal() = %v, want %v", tt.status, got, tt.terminal)
		}
	}
}

func TestDocumentDisplayName(t *testing.T) {
	d := Document{OriginalFilename: "notes.pdf"}
	if got := d.DisplayName(); got != "notes.pdf" {
		t.Errorf("got %q", got)
	}
	d.CustomFilename = "Week 3 Notes"
	if got := d.DisplayName(); got != "Week 3 Notes" {
		t.Errorf("got %q", got)
	}
}

func TestFallbackAgent(t *testing.T) {
	a := FallbackAgent()
	if a.AgentType != DefaultAgentType {
		t.Errorf("agent_type = %q, want %q", a.AgentType, DefaultAgentType)
	}
}
