// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	case RoleSystem:
		return "System"
	default:
		return string(r)
	}
}

// =============================================================================
// DELIVERY STATE
// =============================================================================

// DeliveryState tracks whether an optimistically rendered user message has
// been accepted by the backend. Only send completion transitions it:
// pending -> sent on success, pending -> failed on error. Failed messages
// stay in the transcript; there is no rollback and no automatic retry.
type DeliveryState string

const (
	DeliveryPending DeliveryState = "pending"
	DeliverySent    DeliveryState = "sent"
	DeliveryFailed  DeliveryState = "failed"
)

// String returns the string representation of the delivery state.
func (d DeliveryState) String() string {
	return string(d)
}

// Indicator returns a short marker rendered next to the message.
func (d DeliveryState) Indicator() string {
	switch d {
	case DeliveryPending:
		return "..."
	case DeliveryFailed:
		return "!"
	default:
		return ""
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single message in a conversation.
type Message struct {
	// Identity. The ID is client-generated; the backend does not return
	// per-message ids in chat history.
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Timestamp time.Time `json:"timestamp"`

	// Content
	Content string `json:"content"`

	// Delivery state for user messages (client-only)
	Delivery DeliveryState `json:"-"`
}

// NewMessage creates a new message with a generated ID.
func NewMessage(role Role, content string) *Message {
	return &Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewUserMessage creates a user message in the pending delivery state,
// ready for optimistic rendering before the send completes.
func NewUserMessage(content string) *Message {
	msg := NewMessage(RoleUser, content)
	msg.Delivery = DeliveryPending
	return msg
}

// NewAssistantMessage creates an assistant message from a backend reply.
func NewAssistantMessage(content string) *Message {
	msg := NewMessage(RoleAssistant, content)
	msg.Delivery = DeliverySent
	return msg
}

// NewSystemMessage creates a new system message.
func NewSystemMessage(content string) *Message {
	msg := NewMessage(RoleSystem, content)
	msg.Delivery = DeliverySent
	return msg
}

// =============================================================================
// MESSAGE METHODS
// =============================================================================

// MarkSent transitions a pending message to sent.
func (m *Message) MarkSent() {
	if m.Delivery == DeliveryPending {
		m.Delivery = DeliverySent
	}
}

// MarkFailed transitions a pending message to failed.
func (m *Message) MarkFailed() {
	if m.Delivery == DeliveryPending {
		m.Delivery = DeliveryFailed
	}
}

// IsPending returns true while the send for this message is in flight.
func (m *Message) IsPending() bool {
	return m.Delivery == DeliveryPending
}

// Preview returns a truncated preview of the message content.
// Uses rune-based truncation to handle Unicode correctly.
func (m *Message) Preview(maxLen int) string {
	runes := []rune(m.Content)
	if len(runes) <= maxLen {
		return m.Content
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// IsEmpty returns true if the message has no meaningful content.
func (m *Message) IsEmpty() bool {
	return strings.TrimSpace(m.Content) == ""
}
