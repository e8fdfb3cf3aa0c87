// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package login provides the sign-in screen of the veta TUI. On success it
// stores the bearer token in the session manager and fetches the user's
// profile; admin mode is granted only when the backend says so.
package login

import (
	"context"
	"errors"
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

// DoneMsg reports a finished login attempt.
type DoneMsg struct {
	User *model.User
	Err  error
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the Bubble Tea model for the sign-in screen.
type Model struct {
	theme    *styles.Theme
	client   *api.Client
	sessions *session.Manager

	username textinput.Model
	password textinput.Model
	focusPwd bool
	busy     bool

	errText string
	width   int
	height  int
}

// New creates the sign-in screen.
func New(theme *styles.Theme, client *api.Client, sessions *session.Manager) Model {
	user := textinput.New()
	user.Prompt = "Username: "
	user.CharLimit = 128
	user.Focus()

	pwd := textinput.New()
	pwd.Prompt = "Password: "
	pwd.CharLimit = 256
	pwd.EchoMode = textinput.EchoPassword
	pwd.EchoCharacter = '*'

	return Model{
		theme:    theme,
		client:   client,
		sessions: sessions,
		username: user,
		password: pwd,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// SetSize resizes the screen.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// =============================================================================
// COMMANDS
// =============================================================================

func loginCmd(client *api.Client, sessions *session.Manager, username, password string) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()

		tok, err := client.Login(ctx, username, password)
		if err != nil {
			return DoneMsg{Err: err}
		}
		if err := sessions.Login(tok.AccessToken, nil, session.ModeUser); err != nil {
			return DoneMsg{Err: err}
		}

		user, err := client.Me(ctx)
		if err != nil {
			// Token works even when the profile fetch does not; sign in
			// with a bare session rather than failing the whole login.
			return DoneMsg{User: nil}
		}
		mode := session.ModeUser
		if user.IsAdmin {
			mode = session.ModeAdmin
		}
		if err := sessions.Login(tok.AccessToken, user, mode); err != nil {
			return DoneMsg{Err: err}
		}
		return DoneMsg{User: user}
	}
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles messages for the sign-in screen.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
		switch msg.String() {
		case "tab", "shift+tab":
			m.toggleFocus()
			return m, nil
		case "enter":
			if !m.focusPwd {
				m.toggleFocus()
				return m, nil
			}
			return m.submit()
		}

	case DoneMsg:
		m.busy = false
		if msg.Err != nil {
			m.errText = loginErrorText(msg.Err)
			m.password.Reset()
			return m, nil
		}
		m.errText = ""
		return m, nil
	}

	var cmd tea.Cmd
	if m.focusPwd {
		m.password, cmd = m.password.Update(msg)
	} else {
		m.username, cmd = m.username.Update(msg)
	}
	return m, cmd
}

func (m *Model) toggleFocus() {
	m.focusPwd = !m.focusPwd
	if m.focusPwd {
		m.username.Blur()
		m.password.Focus()
	} else {
		m.password.Blur()
		m.username.Focus()
	}
}

func (m Model) submit() (Model, tea.Cmd) {
	username := strings.TrimSpace(m.username.Value())
	password := m.password.Value()
	if username == "" || password == "" {
		m.errText = "username and password are required"
		return m, nil
	}
	m.busy = true
	m.errText = ""
	return m, loginCmd(m.client, m.sessions, username, password)
}

func loginErrorText(err error) string {
	if errors.Is(err, api.ErrAuthFailed) {
		return "invalid username or password"
	}
	return "login failed: " + err.Error()
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the sign-in screen.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.theme.Header.Render("veta") + " " + m.theme.Title.Render("Sign in"))
	b.WriteString("\n\n")
	b.WriteString(m.username.View())
	b.WriteString("\n")
	b.WriteString(m.password.View())
	b.WriteString("\n\n")

	if m.busy {
		b.WriteString(m.theme.ThinkingText.Render("signing in..."))
	} else if m.errText != "" {
		b.WriteString(styles.RenderError(m.errText))
	} else {
		b.WriteString(m.theme.ListMeta.Render("tab to switch fields, enter to sign in"))
	}
	return m.theme.OverlayBox.Render(b.String())
}
