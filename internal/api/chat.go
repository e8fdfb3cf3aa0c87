// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/askveta/veta-tui/internal/model"
)

// =============================================================================
// CHAT
// =============================================================================

// ChatRequest is the send-message payload. ConversationID is omitted on the
// first message of a fresh session; the backend assigns one and returns it.
type ChatRequest struct {
	Message        string `json:"message"`
	AgentType      string `json:"agent_type"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// ChatResponse is the backend's reply to a send.
type ChatResponse struct {
	Reply          string `json:"reply"`
	ConversationID string `json:"conversation_id"`
}

// SendMessage posts one user message and returns the assistant reply.
// Exactly one request per call; failures are returned, never retried.
func (c *Client) SendMessage(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	var resp ChatResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/chat/", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// =============================================================================
// AGENTS
// =============================================================================

// wireAgent is one persona as the backend sends it: the agent type is
// carried under "id", with "agent_type" accepted from older payloads.
type wireAgent struct {
	ID          string `json:"id"`
	AgentType   string `json:"agent_type"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ListAgents returns the assistant personas offered by the backend.
func (c *Client) ListAgents(ctx context.Context) ([]model.Agent, error) {
	var wire struct {
		Agents []wireAgent `json:"agents"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/chat/agents", nil, &wire); err != nil {
		return nil, err
	}

	agents := make([]model.Agent, 0, len(wire.Agents))
	for _, a := range wire.Agents {
		agentType := a.ID
		if agentType == "" {
			agentType = a.AgentType
		}
		agents = append(agents, model.Agent{
			AgentType:   agentType,
			Name:        a.Name,
			Description: a.Description,
		})
	}
	return agents, nil
}

// =============================================================================
// CONVERSATION DIRECTORY
// =============================================================================

// ListConversations returns the user's conversation directory.
func (c *Client) ListConversations(ctx context.Context) ([]model.ConversationMeta, error) {
	var wire struct {
		Conversations []model.ConversationMeta `json:"conversations"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/chat/conversations/", nil, &wire); err != nil {
		return nil, err
	}
	return wire.Conversations, nil
}

// historyEntry is the wire shape of one stored message. The text arrives
// under "message"; "content" is accepted from older payloads.
type historyEntry struct {
	Role      string    `json:"role"`
	Message   string    `json:"message"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

func (e historyEntry) text() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Content
}

// GetHistory fetches the full message history of a conversation. All
// returned messages carry the sent delivery state; only live sends are ever
// pending.
func (c *Client) GetHistory(ctx context.Context, conversationID string) ([]*model.Message, error) {
	var wire struct {
		ConversationID string         `json:"conversation_id"`
		History        []historyEntry `json:"history"`
	}
	path := "/api/chat/history/" + url.PathEscape(conversationID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &wire); err != nil {
		return nil, err
	}

	msgs := make([]*model.Message, 0, len(wire.History))
	for _, e := range wire.History {
		msg := model.NewMessage(model.Role(e.Role), e.text())
		msg.Delivery = model.DeliverySent
		if !e.Timestamp.IsZero() {
			msg.Timestamp = e.Timestamp
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

// DeleteConversation removes a conversation on the backend.
func (c *Client) DeleteConversation(ctx context.Context, conversationID string) error {
	path := "/api/chat/conversations/" + url.PathEscape(conversationID)
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil)
}

// RenameConversation sets a conversation title.
func (c *Client) RenameConversation(ctx context.Context, conversationID, title string) error {
	path := "/api/chat/conversations/" + url.PathEscape(conversationID) + "/title"
	body := map[string]string{"title": title}
	return c.doJSON(ctx, http.MethodPut, path, body, nil)
}
