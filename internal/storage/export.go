// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/askveta/veta-tui/internal/model"
)

// =============================================================================
// TRANSCRIPT EXPORT
// =============================================================================

// ExportMarkdown renders a conversation as a Markdown transcript.
func ExportMarkdown(conv *model.Conversation) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# %s\n\n", conv.GetTitle()))
	if conv.AgentType != "" {
		sb.WriteString(fmt.Sprintf("Assistant persona: %s\n\n", conv.AgentType))
	}

	for _, msg := range conv.Messages {
		sb.WriteString(fmt.Sprintf("## %s", msg.Role.DisplayName()))
		if !msg.Timestamp.IsZero() {
			sb.WriteString(fmt.Sprintf(" (%s)", msg.Timestamp.Format("2006-01-02 15:04")))
		}
		sb.WriteString("\n\n")
		sb.WriteString(msg.Content)
		sb.WriteString("\n\n")
	}
	return sb.String()
}

// exportedConversation is the JSON export shape.
type exportedConversation struct {
	ID        string             `json:"id"`
	Title     string             `json:"title"`
	AgentType string             `json:"agent_type,omitempty"`
	Messages  []exportedMessage  `json:"messages"`
}

type exportedMessage struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp,omitempty"`
}

// ExportJSON renders a conversation as pretty-printed JSON.
func ExportJSON(conv *model.Conversation) ([]byte, error) {
	out := exportedConversation{
		ID:        conv.ID,
		Title:     conv.GetTitle(),
		AgentType: conv.AgentType,
		Messages:  make([]exportedMessage, 0, len(conv.Messages)),
	}
	for _, msg := range conv.Messages {
		em := exportedMessage{Role: msg.Role.String(), Content: msg.Content}
		if !msg.Timestamp.IsZero() {
			em.Timestamp = msg.Timestamp.UTC().Format("2006-01-02T15:04:05Z")
		}
		out.Messages = append(out.Messages, em)
	}
	return json.MarshalIndent(out, "", "  ")
}
