// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package profile provides the account screen of the veta TUI: view the
// signed-in user's profile, edit username/email, and change the password.
package profile

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/askveta/veta-tui/internal/api"
	"github.com/askveta/veta-tui/internal/model"
	"github.com/askveta/veta-tui/internal/session"
	"github.com/askveta/veta-tui/internal/ui/styles"
)

// =============================================================================
// MESSAGES
// =============================================================================

// ProfileMsg carries a fresh profile fetch.
type ProfileMsg struct {
	User *model.User
	Err  error
}

// SavedMsg reports a finished info update.
type SavedMsg struct {
	User *model.User
	Err  error
}

// PasswordChangedMsg reports a finished password change.
type PasswordChangedMsg struct {
	Err error
}

// =============================================================================
// MODEL
// =============================================================================

type mode int

const (
	modeView mode = iota
	modeEdit
	modePassword
)

// Model is the Bubble Tea model for the account screen.
type Model struct {
	theme    *styles.Theme
	client   *api.Client
	sessions *session.Manager

	mode mode
	user *model.User
	busy bool

	username textinput.Model
	email    textinput.Model
	oldPwd   textinput.Model
	newPwd   textinput.Model
	focusIdx int

	status      string
	statusIsErr bool

	width  int
	height int
}

// New creates the account screen.
func New(theme *styles.Theme, client *api.Client, sessions *session.Manager) Model {
	username := textinput.New()
	username.Prompt = "Username: "
	username.CharLimit = 128

	email := textinput.New()
	email.Prompt = "Email:    "
	email.CharLimit = 256

	oldPwd := textinput.New()
	oldPwd.Prompt = "Current password: "
	oldPwd.EchoMode = textinput.EchoPassword
	oldPwd.EchoCharacter = '*'

	newPwd := textinput.New()
	newPwd.Prompt = "New password:     "
	newPwd.EchoMode = textinput.EchoPassword
	newPwd.EchoCharacter = '*'

	return Model{
		theme:    theme,
		client:   client,
		sessions: sessions,
		user:     sessions.User(),
		username: username,
		email:    email,
		oldPwd:   oldPwd,
		newPwd:   newPwd,
	}
}

// Init fetches the current profile.
func (m Model) Init() tea.Cmd {
	return fetchCmd(m.client)
}

// SetSize resizes the screen.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// =============================================================================
// COMMANDS
// =============================================================================

func fetchCmd(client *api.Client) tea.Cmd {
	return func() tea.Msg {
		user, err := client.Me(context.Background())
		return ProfileMsg{User: user, Err: err}
	}
}

func saveCmd(client *api.Client, username, email string) tea.Cmd {
	return func() tea.Msg {
		user, err := client.UpdateMyInfo(context.Background(), api.UpdateInfoRequest{
			Username: username,
			Email:    email,
		})
		return SavedMsg{User: user, Err: err}
	}
}

func passwordCmd(client *api.Client, oldPwd, newPwd string) tea.Cmd {
	return func() tea.Msg {
		err := client.ChangeMyPassword(context.Background(), api.ChangePasswordRequest{
			OldPassword: oldPwd,
			NewPassword: newPwd,
		})
		return PasswordChangedMsg{Err: err}
	}
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles messages for the account screen.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		return m.handleKey(msg)

	case ProfileMsg:
		if msg.Err == nil && msg.User != nil {
			m.user = msg.User
			_ = m.sessions.SetUser(msg.User)
		}
		return m, nil

	case SavedMsg:
		m.busy = false
		if msg.Err != nil {
			m.setStatus("could not save profile: "+msg.Err.Error(), true)
			return m, nil
		}
		if msg.User != nil {
			m.user = msg.User
			_ = m.sessions.SetUser(msg.User)
		}
		m.mode = modeView
		m.setStatus("profile saved", false)
		return m, nil

	case PasswordChangedMsg:
		m.busy = false
		if msg.Err != nil {
			m.oldPwd.Reset()
			m.newPwd.Reset()
			m.setStatus("could not change password: "+msg.Err.Error(), true)
			return m, nil
		}
		m.mode = modeView
		m.setStatus("password changed", false)
		return m, nil
	}

	return m.updateInputs(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}

	switch m.mode {
	case modeView:
		switch msg.String() {
		case "e":
			return m.enterEdit(), nil
		case "p":
			return m.enterPassword(), nil
		case "r":
			return m, fetchCmd(m.client)
		}
		return m, nil

	case modeEdit:
		switch msg.String() {
		case "esc":
			m.mode = modeView
			return m, nil
		case "tab", "shift+tab":
			m.cycleFocus()
			return m, nil
		case "enter":
			return m.submitEdit()
		}

	case modePassword:
		switch msg.String() {
		case "esc":
			m.mode = modeView
			return m, nil
		case "tab", "shift+tab":
			m.cycleFocus()
			return m, nil
		case "enter":
			if m.focusIdx == 0 {
				m.cycleFocus()
				return m, nil
			}
			return m.submitPassword()
		}
	}
	return m.updateInputs(msg)
}

func (m Model) enterEdit() Model {
	m.mode = modeEdit
	m.status = ""
	m.focusIdx = 0
	if m.user != nil {
		m.username.SetValue(m.user.Username)
		m.email.SetValue(m.user.Email)
	}
	m.username.Focus()
	m.email.Blur()
	return m
}

func (m Model) enterPassword() Model {
	m.mode = modePassword
	m.status = ""
	m.focusIdx = 0
	m.oldPwd.Reset()
	m.newPwd.Reset()
	m.oldPwd.Focus()
	m.newPwd.Blur()
	return m
}

func (m *Model) cycleFocus() {
	m.focusIdx = 1 - m.focusIdx
	switch m.mode {
	case modeEdit:
		if m.focusIdx == 0 {
			m.username.Focus()
			m.email.Blur()
		} else {
			m.username.Blur()
			m.email.Focus()
		}
	case modePassword:
		if m.focusIdx == 0 {
			m.oldPwd.Focus()
			m.newPwd.Blur()
		} else {
			m.oldPwd.Blur()
			m.newPwd.Focus()
		}
	}
}

func (m Model) submitEdit() (Model, tea.Cmd) {
	username := strings.TrimSpace(m.username.Value())
	email := strings.TrimSpace(m.email.Value())
	if username == "" || email == "" {
		m.setStatus("username and email are required", true)
		return m, nil
	}
	m.busy = true
	return m, saveCmd(m.client, username, email)
}

func (m Model) submitPassword() (Model, tea.Cmd) {
	oldPwd := m.oldPwd.Value()
	newPwd := m.newPwd.Value()
	if oldPwd == "" || newPwd == "" {
		m.setStatus("both passwords are required", true)
		return m, nil
	}
	m.busy = true
	return m, passwordCmd(m.client, oldPwd, newPwd)
}

func (m Model) updateInputs(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.mode {
	case modeEdit:
		if m.focusIdx == 0 {
			m.username, cmd = m.username.Update(msg)
		} else {
			m.email, cmd = m.email.Update(msg)
		}
	case modePassword:
		if m.focusIdx == 0 {
			m.oldPwd, cmd = m.oldPwd.Update(msg)
		} else {
			m.newPwd, cmd = m.newPwd.Update(msg)
		}
	}
	return m, cmd
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusIsErr = isErr
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the account screen.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.theme.Header.Render("veta") + " " + m.theme.Title.Render("Account"))
	b.WriteString("\n\n")

	switch m.mode {
	case modeEdit:
		b.WriteString(m.username.View() + "\n")
		b.WriteString(m.email.View() + "\n\n")
		b.WriteString(m.theme.ListMeta.Render("tab to switch fields, enter to save, esc to cancel"))
	case modePassword:
		b.WriteString(m.oldPwd.View() + "\n")
		b.WriteString(m.newPwd.View() + "\n\n")
		b.WriteString(m.theme.ListMeta.Render("enter to change, esc to cancel"))
	default:
		if m.user != nil {
			b.WriteString(fmt.Sprintf("Username: %s\n", m.user.Username))
			b.WriteString(fmt.Sprintf("Email:    %s\n", m.user.Email))
			if m.user.IsAdmin {
				b.WriteString("Role:     admin\n")
			} else {
				b.WriteString("Role:     user\n")
			}
		} else {
			b.WriteString(m.theme.ListMeta.Render("profile not loaded") + "\n")
		}
		b.WriteString("\n")
		b.WriteString(m.theme.ListMeta.Render("e edit  p change password  r refresh"))
	}

	b.WriteString("\n\n")
	if m.busy {
		b.WriteString(m.theme.ThinkingText.Render("saving..."))
	} else if m.status != "" {
		if m.statusIsErr {
			b.WriteString(styles.RenderError(m.status))
		} else {
			b.WriteString(styles.RenderSuccess(m.status))
		}
	}
	return m.theme.OverlayBox.Render(b.String())
}
