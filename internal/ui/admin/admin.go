// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package admin provides the administration screen of the veta TUI. It is
// only reachable for admin sessions: user management, platform stats and
// knowledge base maintenance. Forbidden responses surface as plain errors
// rather than crashing the screen, since admin status can be revoked
// server-side at any time.
package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/askveta/veta-tui/internal/api"
	"github.com/askveta/veta-tui/internal/model"
	"github.com/askveta/veta-tui/internal/ui/styles"
	"github.com/askveta/veta-tui/internal/util"
)

// =============================================================================
// MESSAGES
// =============================================================================

// UsersMsg carries the user list.
type UsersMsg struct {
	Users []model.User
	Err   error
}

// StatsMsg carries dashboard and RAG metrics together.
type StatsMsg struct {
	Dashboard *model.DashboardStats
	Metrics   *model.RAGMetrics
	Err       error
}

// DocsMsg carries the admin-wide document list.
type DocsMsg struct {
	Docs []model.Document
	Err  error
}

// ActionDoneMsg reports a mutation (user delete, doc delete, repair).
type ActionDoneMsg struct {
	Action string
	Err    error
}

// =============================================================================
// MODEL
// =============================================================================

type tab int

const (
	tabUsers tab = iota
	tabStats
	tabDocs
)

// Model is the Bubble Tea model for the administration screen.
type Model struct {
	theme  *styles.Theme
	client *api.Client

	width  int
	height int

	tab       tab
	userTable table.Model
	docTable  table.Model

	users     []model.User
	docs      []model.Document
	dashboard *model.DashboardStats
	metrics   *model.RAGMetrics

	status      string
	statusIsErr bool
}

// New creates the administration screen.
func New(theme *styles.Theme, client *api.Client) Model {
	userTable := table.New(
		table.WithColumns([]table.Column{
			{Title: "ID", Width: 5},
			{Title: "Username", Width: 20},
			{Title: "Email", Width: 28},
			{Title: "Admin", Width: 6},
		}),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	docTable := table.New(
		table.WithColumns([]table.Column{
			{Title: "Document", Width: 34},
			{Title: "Status", Width: 12},
			{Title: "Uploaded by", Width: 16},
		}),
		table.WithHeight(12),
	)

	return Model{
		theme:     theme,
		client:    client,
		userTable: userTable,
		docTable:  docTable,
	}
}

// Init loads the users tab.
func (m Model) Init() tea.Cmd {
	return usersCmd(m.client)
}

// SetSize resizes the screen.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	h := height - 8
	if h < 4 {
		h = 4
	}
	m.userTable.SetHeight(h)
	m.docTable.SetHeight(h)
}

func (m *Model) setStatus(msg string, isErr bool) {
	m.status = msg
	m.statusIsErr = isErr
}

// =============================================================================
// COMMANDS
// =============================================================================

func usersCmd(client *api.Client) tea.Cmd {
	return func() tea.Msg {
		users, err := client.ListUsers(context.Background())
		return UsersMsg{Users: users, Err: err}
	}
}

func statsCmd(client *api.Client) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		dashboard, err := client.DashboardStats(ctx)
		if err != nil {
			return StatsMsg{Err: err}
		}
		// RAG metrics are best-effort; the dashboard alone is still useful.
		metrics, _ := client.Metrics(ctx)
		return StatsMsg{Dashboard: dashboard, Metrics: metrics}
	}
}

func docsCmd(client *api.Client) tea.Cmd {
	return func() tea.Msg {
		docs, err := client.AdminListDocuments(context.Background())
		return DocsMsg{Docs: docs, Err: err}
	}
}

func deleteUserCmd(client *api.Client, id int) tea.Cmd {
	return func() tea.Msg {
		err := client.DeleteUser(context.Background(), id)
		return ActionDoneMsg{Action: "delete user", Err: err}
	}
}

func deleteDocCmd(client *api.Client, id string) tea.Cmd {
	return func() tea.Msg {
		err := client.AdminDeleteDocument(context.Background(), id)
		return ActionDoneMsg{Action: "delete document", Err: err}
	}
}

func repairCmd(client *api.Client) tea.Cmd {
	return func() tea.Msg {
		err := client.RepairVectorDB(context.Background())
		return ActionDoneMsg{Action: "repair vector db", Err: err}
	}
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles messages for the administration screen.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		return m.handleKey(msg)

	case UsersMsg:
		if msg.Err != nil {
			m.setStatus(adminErrorText("load users", msg.Err), true)
			return m, nil
		}
		m.users = msg.Users
		rows := make([]table.Row, 0, len(msg.Users))
		for _, u := range msg.Users {
			admin := ""
			if u.IsAdmin {
				admin = "yes"
			}
			rows = append(rows, table.Row{
				fmt.Sprintf("%d", u.ID), u.Username, u.Email, admin,
			})
		}
		m.userTable.SetRows(rows)
		return m, nil

	case StatsMsg:
		if msg.Err != nil {
			m.setStatus(adminErrorText("load stats", msg.Err), true)
			return m, nil
		}
		m.dashboard = msg.Dashboard
		m.metrics = msg.Metrics
		return m, nil

	case DocsMsg:
		if msg.Err != nil {
			m.setStatus(adminErrorText("load documents", msg.Err), true)
			return m, nil
		}
		m.docs = msg.Docs
		rows := make([]table.Row, 0, len(msg.Docs))
		for _, d := range msg.Docs {
			rows = append(rows, table.Row{
				util.TruncateWidth(d.DisplayName(), 34),
				string(d.Status),
				d.UploadedBy,
			})
		}
		m.docTable.SetRows(rows)
		return m, nil

	case ActionDoneMsg:
		if msg.Err != nil {
			m.setStatus(adminErrorText(msg.Action, msg.Err), true)
			return m, nil
		}
		m.setStatus(msg.Action+" done", false)
		switch m.tab {
		case tabUsers:
			return m, usersCmd(m.client)
		case tabDocs:
			return m, docsCmd(m.client)
		}
		return m, nil
	}

	return m.updateTables(msg)
}

func (m Model) updateTables(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.tab {
	case tabUsers:
		m.userTable, cmd = m.userTable.Update(msg)
	case tabDocs:
		m.docTable, cmd = m.docTable.Update(msg)
	}
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "1":
		m.tab = tabUsers
		return m, usersCmd(m.client)
	case "2":
		m.tab = tabStats
		return m, statsCmd(m.client)
	case "3":
		m.tab = tabDocs
		return m, docsCmd(m.client)
	case "d":
		switch m.tab {
		case tabUsers:
			idx := m.userTable.Cursor()
			if idx >= 0 && idx < len(m.users) {
				return m, deleteUserCmd(m.client, m.users[idx].ID)
			}
		case tabDocs:
			idx := m.docTable.Cursor()
			if idx >= 0 && idx < len(m.docs) {
				return m, deleteDocCmd(m.client, m.docs[idx].ID)
			}
		}
		return m, nil
	case "ctrl+r":
		return m, repairCmd(m.client)
	}
	return m.updateTables(msg)
}

func adminErrorText(action string, err error) string {
	if errors.Is(err, api.ErrForbidden) {
		return action + ": admin privileges required"
	}
	return action + " failed: " + err.Error()
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the administration screen.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.theme.Header.Render("veta") + " " + m.theme.Title.Render("Administration"))
	b.WriteString("  ")
	for i, name := range []string{"1:users", "2:stats", "3:documents"} {
		if tab(i) == m.tab {
			b.WriteString(m.theme.ShortcutKey.Render(name) + " ")
		} else {
			b.WriteString(m.theme.ShortcutDesc.Render(name) + " ")
		}
	}
	b.WriteString("\n\n")

	switch m.tab {
	case tabUsers:
		b.WriteString(m.userTable.View())
		b.WriteString("\n" + m.theme.ListMeta.Render("d delete user"))
	case tabStats:
		b.WriteString(m.viewStats())
	case tabDocs:
		b.WriteString(m.docTable.View())
		b.WriteString("\n" + m.theme.ListMeta.Render("d delete document | C-r repair vector db"))
	}

	if m.status != "" {
		b.WriteString("\n")
		if m.statusIsErr {
			b.WriteString(styles.RenderError(m.status))
		} else {
			b.WriteString(styles.RenderSuccess(m.status))
		}
	}
	return b.String()
}

func (m Model) viewStats() string {
	if m.dashboard == nil {
		return m.theme.ListMeta.Render("loading stats...")
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Users:          %d\n", m.dashboard.TotalUsers))
	b.WriteString(fmt.Sprintf("Conversations:  %d\n", m.dashboard.TotalConversations))
	b.WriteString(fmt.Sprintf("Messages:       %d\n", m.dashboard.TotalMessages))

	if len(m.dashboard.AgentUsage) > 0 {
		b.WriteString("\nAgent usage:\n")
		for _, au := range m.dashboard.AgentUsage {
			b.WriteString(fmt.Sprintf("  %-16s %d\n", au.AgentType, au.MessageCount))
		}
	}

	if m.metrics != nil {
		b.WriteString("\nKnowledge base:\n")
		b.WriteString(fmt.Sprintf("  documents:      %d\n", m.metrics.DocumentCount))
		b.WriteString(fmt.Sprintf("  chunks:         %d\n", m.metrics.DocumentChunkCount))
		b.WriteString(fmt.Sprintf("  vector db size: %d\n", m.metrics.VectorDBSize))
		b.WriteString(fmt.Sprintf("  queries:        %d\n", m.metrics.TotalQueries))
		b.WriteString(fmt.Sprintf("  cache hit rate: %.0f%%\n", m.metrics.CacheHitRate*100))
		b.WriteString(fmt.Sprintf("  error rate:     %.0f%%\n", m.metrics.ErrorRate*100))
	}
	return b.String()
}
