// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat owns the client-side conversation state: the current
// conversation, the directory of past conversations, and the optimistic
// send flow against the backend.
package chat

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/askveta/veta-tui/internal/api"
	"github.com/askveta/veta-tui/internal/model"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrEmptyMessage is returned for whitespace-only input. The send is a
	// no-op: no state change, no network request.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrSendInFlight is returned when a send is attempted while another is
	// still outstanding. One send at a time keeps replies ordered.
	ErrSendInFlight = errors.New("a message is already being sent")
)

// =============================================================================
// RECORDER
// =============================================================================

// Recorder receives successful exchanges for local caching. Implemented by
// the storage package; nil disables caching.
type Recorder interface {
	RecordExchange(conv *model.Conversation, user, assistant *model.Message) error
	RecordHistory(conv *model.Conversation) error
	ForgetConversation(id string) error
}

// =============================================================================
// MANAGER
// =============================================================================

// Manager tracks the active conversation and directory. All methods are
// safe for concurrent use; the UI calls them from tea.Cmd goroutines.
type Manager struct {
	mu sync.Mutex

	client   *api.Client
	recorder Recorder

	conv      *model.Conversation
	directory []model.ConversationMeta
	agentType string
	sending   bool
}

// NewManager creates a manager with a fresh conversation using agentType.
func NewManager(client *api.Client, recorder Recorder, agentType string) *Manager {
	if agentType == "" {
		agentType = model.DefaultAgentType
	}
	return &Manager{
		client:    client,
		recorder:  recorder,
		conv:      model.NewConversation(agentType),
		agentType: agentType,
	}
}

// =============================================================================
// STATE ACCESS
// =============================================================================

// Conversation returns the active conversation. Callers must treat the
// returned value as read-only; mutation goes through Manager methods.
func (m *Manager) Conversation() *model.Conversation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conv
}

// ConversationID returns the backend id of the active conversation, empty
// for a fresh session.
func (m *Manager) ConversationID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conv.ID
}

// Directory returns the cached conversation directory.
func (m *Manager) Directory() []model.ConversationMeta {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.ConversationMeta, len(m.directory))
	copy(out, m.directory)
	return out
}

// SetDirectory replaces the cached directory (from bootstrap or refresh).
func (m *Manager) SetDirectory(metas []model.ConversationMeta) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.directory = metas
}

// AgentType returns the persona for new messages.
func (m *Manager) AgentType() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.agentType
}

// SetAgentType switches the persona used for subsequent sends.
func (m *Manager) SetAgentType(agentType string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if agentType == "" {
		agentType = model.DefaultAgentType
	}
	m.agentType = agentType
	m.conv.AgentType = agentType
}

// IsSending reports whether a send is outstanding.
func (m *Manager) IsSending() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sending
}

// =============================================================================
// SEND FLOW
// =============================================================================

// SendResult reports a completed send.
type SendResult struct {
	UserMessage *model.Message
	Reply       *model.Message
	// ConversationID is the id after the send; on the first send of a
	// fresh session this is newly captured from the backend.
	ConversationID string
}

// SendMessage performs one optimistic send:
//
//  1. Whitespace-only text is rejected before any state change.
//  2. The user message is appended with delivery state pending.
//  3. Exactly one request goes out. On success the message flips to sent,
//     the assistant reply is appended, and a fresh session captures its
//     conversation id. On failure the message flips to failed and stays in
//     the transcript; nothing is rolled back and nothing is retried.
func (m *Manager) SendMessage(ctx context.Context, text string) (*SendResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyMessage
	}

	m.mu.Lock()
	if m.sending {
		m.mu.Unlock()
		return nil, ErrSendInFlight
	}
	m.sending = true
	userMsg := m.conv.AddUserMessage(text)
	req := api.ChatRequest{
		Message:        text,
		AgentType:      m.agentType,
		ConversationID: m.conv.ID,
	}
	m.mu.Unlock()

	resp, err := m.client.SendMessage(ctx, req)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sending = false

	if err != nil {
		userMsg.MarkFailed()
		return nil, err
	}

	userMsg.MarkSent()
	if m.conv.ID == "" {
		m.conv.ID = resp.ConversationID
	}
	reply := m.conv.AddAssistantMessage(resp.Reply)

	if m.recorder != nil {
		// Cache failures must not fail the send; the backend already has
		// the exchange.
		_ = m.recorder.RecordExchange(m.conv, userMsg, reply)
	}

	return &SendResult{
		UserMessage:    userMsg,
		Reply:          reply,
		ConversationID: m.conv.ID,
	}, nil
}

// =============================================================================
// CONVERSATION LIFECYCLE
// =============================================================================

// LoadConversation fetches a conversation's history and replaces the local
// sequence with it wholesale. Local messages, including failed ones, are
// discarded; the backend history is authoritative.
func (m *Manager) LoadConversation(ctx context.Context, id string) error {
	msgs, err := m.client.GetHistory(ctx, id)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.conv = model.NewConversation(m.agentType)
	m.conv.ID = id
	m.conv.ReplaceMessages(msgs)
	for _, meta := range m.directory {
		if meta.ID == id {
			m.conv.Title = meta.Title
			break
		}
	}

	if m.recorder != nil {
		_ = m.recorder.RecordHistory(m.conv)
	}
	return nil
}

// NewConversation starts a fresh local conversation. No network request;
// the backend learns about it on the first send.
func (m *Manager) NewConversation() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conv = model.NewConversation(m.agentType)
	m.sending = false
}

// DeleteConversation removes a conversation on the backend and from the
// local directory. Deleting the active conversation also clears the local
// sequence, same as NewConversation.
func (m *Manager) DeleteConversation(ctx context.Context, id string) error {
	if err := m.client.DeleteConversation(ctx, id); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for i, meta := range m.directory {
		if meta.ID == id {
			m.directory = append(m.directory[:i], m.directory[i+1:]...)
			break
		}
	}
	if m.conv.ID == id {
		m.conv = model.NewConversation(m.agentType)
	}
	if m.recorder != nil {
		_ = m.recorder.ForgetConversation(id)
	}
	return nil
}

// RenameConversation retitles a conversation on the backend and mirrors the
// change locally.
func (m *Manager) RenameConversation(ctx context.Context, id, title string) error {
	if err := m.client.RenameConversation(ctx, id, title); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.directory {
		if m.directory[i].ID == id {
			m.directory[i].Title = title
			break
		}
	}
	if m.conv.ID == id {
		m.conv.SetTitle(title)
	}
	return nil
}

// RefreshDirectory refetches the conversation directory.
func (m *Manager) RefreshDirectory(ctx context.Context) error {
	metas, err := m.client.ListConversations(ctx)
	if err != nil {
		return err
	}
	m.SetDirectory(metas)
	return nil
}
