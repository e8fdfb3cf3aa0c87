// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the conversation screen for the TUI.
package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/askveta/veta-tui/internal/model"
	"github.com/askveta/veta-tui/internal/ui/styles"
)

// View renders the conversation screen.
func (m Model) View() string {
	if m.overlay == overlayPicker {
		return m.viewPicker()
	}
	if m.overlay == overlayRename {
		return m.viewRename()
	}

	var b strings.Builder

	conv := m.manager.Conversation()
	header := m.theme.Header.Render("veta") + " " +
		m.theme.Title.Render(conv.GetTitle()) + " " +
		m.theme.ListMeta.Render("["+m.manager.AgentType()+"]")
	b.WriteString(header)
	b.WriteString("\n")

	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	if m.manager.IsSending() {
		b.WriteString(m.spinner.View() + " " + m.theme.ThinkingText.Render("thinking..."))
		b.WriteString("\n")
	} else if m.status != "" {
		if m.statusIsErr {
			b.WriteString(styles.RenderError(m.status))
		} else {
			b.WriteString(styles.RenderInfo(m.status))
		}
		b.WriteString("\n")
	} else {
		b.WriteString("\n")
	}

	b.WriteString(m.theme.InputContainer.Width(m.width).Render(m.input.View()))
	return b.String()
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

// refreshViewport rebuilds the transcript content. follow scrolls to the
// bottom, used after sends and loads; plain resizes keep the position.
func (m *Model) refreshViewport(follow bool) {
	conv := m.manager.Conversation()

	var blocks []string
	for _, msg := range conv.Messages {
		blocks = append(blocks, m.renderMessage(msg))
	}
	if len(blocks) == 0 {
		blocks = append(blocks, m.theme.ListMeta.Render(
			"No messages yet. Type below to start."))
	}

	m.viewport.SetContent(strings.Join(blocks, "\n"))
	if follow {
		m.viewport.GotoBottom()
	}
}

func (m *Model) renderMessage(msg *model.Message) string {
	content := msg.Content
	if msg.ID == m.revealID && m.typewriter.Active() {
		content = m.typewriter.Visible()
	}

	var bubble lipgloss.Style
	label := msg.Role.DisplayName()
	switch msg.Role {
	case model.RoleUser:
		bubble = m.theme.UserBubble
	case model.RoleAssistant:
		bubble = m.theme.AssistantBubble
		content = m.markdown.Render(content)
	default:
		bubble = m.theme.SystemBubble
	}

	head := m.theme.Title.Render(label)
	if !msg.Timestamp.IsZero() {
		head += " " + m.theme.Timestamp.Render(msg.Timestamp.Format("15:04"))
	}
	switch msg.Delivery {
	case model.DeliveryPending:
		head += " " + m.theme.PendingMark.Render(msg.Delivery.Indicator())
	case model.DeliveryFailed:
		head += " " + m.theme.FailedMark.Render(msg.Delivery.Indicator()+" failed")
	}

	width := m.width - 4
	if width < 20 {
		width = 20
	}
	return head + "\n" + bubble.MaxWidth(width).Render(content)
}

// =============================================================================
// OVERLAYS
// =============================================================================

func (m Model) viewPicker() string {
	var b strings.Builder
	b.WriteString(m.theme.OverlayTitle.Render("Conversations"))
	b.WriteString("\n\n")

	if len(m.metas) == 0 {
		b.WriteString(m.theme.ListMeta.Render("No conversations yet."))
	}
	for i, meta := range m.metas {
		line := meta.DisplayTitle()
		if i == m.pickerIdx {
			b.WriteString(m.theme.ListItemSelected.Render(line))
		} else {
			b.WriteString(m.theme.ListItem.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.theme.ListMeta.Render("enter open | d delete | r rename | esc close"))
	return m.theme.OverlayBox.Render(b.String())
}

func (m Model) viewRename() string {
	var b strings.Builder
	b.WriteString(m.theme.OverlayTitle.Render("Rename conversation"))
	b.WriteString("\n\n")
	b.WriteString(m.renameInput.View())
	b.WriteString("\n\n")
	b.WriteString(m.theme.ListMeta.Render("enter save | esc cancel"))
	return m.theme.OverlayBox.Render(b.String())
}
