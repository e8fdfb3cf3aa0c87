// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"
)

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation holds an ordered, append-only message sequence plus the
// backend-assigned conversation id. The id is empty for a fresh session and
// is captured from the first successful send; once set it never changes for
// the lifetime of the session.
type Conversation struct {
	// Identity (backend-assigned; empty until the first reply)
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Messages
	Messages []*Message `json:"messages"`

	// Persona used for this conversation
	AgentType string `json:"agent_type"`
}

// NewConversation creates an empty conversation with no backend id.
func NewConversation(agentType string) *Conversation {
	return &Conversation{
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
		Messages:  make([]*Message, 0),
		AgentType: agentType,
	}
}

// =============================================================================
// MESSAGE MANAGEMENT
// =============================================================================

// AddMessage appends a message to the conversation.
func (c *Conversation) AddMessage(msg *Message) {
	c.Messages = append(c.Messages, msg)
	c.UpdatedAt = time.Now()
	c.updateTitle()
}

// AddUserMessage creates and appends a pending user message.
func (c *Conversation) AddUserMessage(content string) *Message {
	msg := NewUserMessage(content)
	c.AddMessage(msg)
	return msg
}

// AddAssistantMessage creates and appends an assistant reply.
func (c *Conversation) AddAssistantMessage(content string) *Message {
	msg := NewAssistantMessage(content)
	c.AddMessage(msg)
	return msg
}

// GetLastMessage returns the most recent message, or nil if empty.
func (c *Conversation) GetLastMessage() *Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return c.Messages[len(c.Messages)-1]
}

// GetLastUserMessage returns the most recent user message.
func (c *Conversation) GetLastUserMessage() *Message {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if c.Messages[i].Role == RoleUser {
			return c.Messages[i]
		}
	}
	return nil
}

// GetMessageByID returns a message by its ID, or nil.
func (c *Conversation) GetMessageByID(id string) *Message {
	for _, msg := range c.Messages {
		if msg.ID == id {
			return msg
		}
	}
	return nil
}

// ReplaceMessages swaps the entire local sequence for the given history.
// Used when loading a conversation from the backend: the fetched history is
// authoritative, local state is discarded, never merged.
func (c *Conversation) ReplaceMessages(msgs []*Message) {
	c.Messages = msgs
	if c.Messages == nil {
		c.Messages = make([]*Message, 0)
	}
	c.UpdatedAt = time.Now()
}

// Clear removes all messages and detaches from the backend conversation.
func (c *Conversation) Clear() {
	c.ID = ""
	c.Title = ""
	c.Messages = make([]*Message, 0)
	c.UpdatedAt = time.Now()
}

// MessageCount returns the number of messages.
func (c *Conversation) MessageCount() int {
	return len(c.Messages)
}

// IsEmpty returns true if there are no messages.
func (c *Conversation) IsEmpty() bool {
	return len(c.Messages) == 0
}

// RecentExchanges returns up to n of the most recent user/assistant pairs,
// oldest first. Used for the history drawer, which shows a rolling window
// rather than the full transcript.
func (c *Conversation) RecentExchanges(n int) []*Message {
	if n <= 0 {
		return nil
	}
	max := n * 2
	if len(c.Messages) <= max {
		return c.Messages
	}
	return c.Messages[len(c.Messages)-max:]
}

// =============================================================================
// TITLE MANAGEMENT
// =============================================================================

// updateTitle derives a title from the first user message if not set.
func (c *Conversation) updateTitle() {
	if c.Title != "" {
		return
	}
	for _, msg := range c.Messages {
		if msg.Role == RoleUser {
			c.Title = msg.Preview(50)
			return
		}
	}
}

// SetTitle manually sets the conversation title.
func (c *Conversation) SetTitle(title string) {
	c.Title = title
	c.UpdatedAt = time.Now()
}

// GetTitle returns the conversation title or a default.
func (c *Conversation) GetTitle() string {
	if c.Title != "" {
		return c.Title
	}
	return "New Conversation"
}

// =============================================================================
// DIRECTORY METADATA
// =============================================================================

// ConversationMeta is the lightweight record returned by the conversation
// directory endpoint.
type ConversationMeta struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	AgentType string    `json:"agent_type,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DisplayTitle returns the title or a placeholder for untitled entries.
func (m ConversationMeta) DisplayTitle() string {
	if m.Title != "" {
		return m.Title
	}
	return "Untitled"
}
