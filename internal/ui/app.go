// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui provides the root Bubble Tea model of the veta TUI. It routes
// between the login, chat, knowledge base, account and admin screens, runs bootstrap
// after sign-in, and handles expired sessions: a 401 from any screen clears
// the stored session and returns to login.
package ui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/askveta/veta-tui/internal/api"
	chatmgr "github.com/askveta/veta-tui/internal/chat"
	"github.com/askveta/veta-tui/internal/docs"
	"github.com/askveta/veta-tui/internal/session"
	"github.com/askveta/veta-tui/internal/ui/admin"
	chatui "github.com/askveta/veta-tui/internal/ui/chat"
	"github.com/askveta/veta-tui/internal/ui/components"
	"github.com/askveta/veta-tui/internal/ui/kb"
	"github.com/askveta/veta-tui/internal/ui/login"
	"github.com/askveta/veta-tui/internal/ui/profile"
	"github.com/askveta/veta-tui/internal/ui/styles"
)

// =============================================================================
// SCREENS
// =============================================================================

// Screen identifies the active top-level screen.
type Screen int

const (
	ScreenLogin Screen = iota
	ScreenChat
	ScreenKB
	ScreenProfile
	ScreenAdmin
)

// =============================================================================
// MESSAGES
// =============================================================================

// BootstrapMsg carries the post-login bootstrap result.
type BootstrapMsg struct {
	Data *chatmgr.BootstrapData
}

// =============================================================================
// APP MODEL
// =============================================================================

// App is the root model of the TUI.
type App struct {
	theme    *styles.Theme
	client   *api.Client
	sessions *session.Manager
	manager  *chatmgr.Manager
	registry *docs.Registry

	screen  Screen
	login   login.Model
	chat    chatui.Model
	kb      kb.Model
	profile profile.Model
	admin   admin.Model

	toasts    *components.ToastManager
	statusBar *components.StatusBar

	width  int
	height int
}

// NewApp wires the root model. reveal enables the typewriter effect.
func NewApp(theme *styles.Theme, client *api.Client, sessions *session.Manager,
	manager *chatmgr.Manager, registry *docs.Registry, reveal bool) App {

	app := App{
		theme:     theme,
		client:    client,
		sessions:  sessions,
		manager:   manager,
		registry:  registry,
		login:     login.New(theme, client, sessions),
		chat:      chatui.New(theme, manager, reveal),
		kb:        kb.New(theme, registry),
		profile:   profile.New(theme, client, sessions),
		admin:     admin.New(theme, client),
		toasts:    components.NewToastManager(),
		statusBar: components.NewStatusBar(theme),
	}

	if sessions.IsAuthenticated() {
		app.screen = ScreenChat
	} else {
		app.screen = ScreenLogin
	}
	return app
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{components.ToastTick()}
	if a.screen == ScreenLogin {
		cmds = append(cmds, a.login.Init())
	} else {
		cmds = append(cmds, a.chat.Init(), bootstrapCmd(a.client))
	}
	return tea.Batch(cmds...)
}

func bootstrapCmd(client *api.Client) tea.Cmd {
	return func() tea.Msg {
		return BootstrapMsg{Data: chatmgr.Bootstrap(context.Background(), client)}
	}
}

// =============================================================================
// UPDATE
// =============================================================================

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		body := msg.Height - 2 // status bar rows
		a.login.SetSize(msg.Width, body)
		a.chat.SetSize(msg.Width, body)
		a.kb.SetSize(msg.Width, body)
		a.profile.SetSize(msg.Width, body)
		a.admin.SetSize(msg.Width, body)
		a.statusBar.SetWidth(msg.Width)
		return a, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return a, tea.Quit
		case "f1":
			if a.screen != ScreenLogin {
				return a.switchScreen(ScreenChat)
			}
		case "f2":
			if a.screen != ScreenLogin {
				return a.switchScreen(ScreenKB)
			}
		case "f3":
			if a.screen != ScreenLogin {
				return a.switchScreen(ScreenProfile)
			}
		case "f4":
			if a.screen != ScreenLogin && a.sessions.IsAdmin() {
				return a.switchScreen(ScreenAdmin)
			}
		}

	case components.ToastTickMsg:
		a.toasts.Expire()
		return a, components.ToastTick()

	case login.DoneMsg:
		var cmd tea.Cmd
		a.login, cmd = a.login.Update(msg)
		if msg.Err == nil {
			a.screen = ScreenChat
			a.updateStatusBar()
			return a, tea.Batch(cmd, a.chat.Init(), bootstrapCmd(a.client))
		}
		return a, cmd

	case BootstrapMsg:
		return a.handleBootstrap(msg)
	}

	// SECURITY: an expired or revoked token surfaces as 401 from whatever
	// call happened to run first. Clear the session and return to login.
	if err := msgError(msg); err != nil && errors.Is(err, api.ErrAuthFailed) {
		_ = a.sessions.Logout()
		a.screen = ScreenLogin
		a.chat.Unmount()
		a.toasts.Push(components.ToastWarning, "session expired, please sign in again")
		return a, a.login.Init()
	}

	return a.dispatch(msg)
}

func (a App) switchScreen(next Screen) (tea.Model, tea.Cmd) {
	if a.screen == next {
		return a, nil
	}
	if a.screen == ScreenChat {
		a.chat.Unmount()
	}
	a.screen = next
	a.updateStatusBar()

	switch next {
	case ScreenKB:
		return a, a.kb.Init()
	case ScreenProfile:
		return a, a.profile.Init()
	case ScreenAdmin:
		return a, a.admin.Init()
	}
	return a, nil
}

func (a App) handleBootstrap(msg BootstrapMsg) (tea.Model, tea.Cmd) {
	data := msg.Data
	a.chat.SetAgents(data.Agents)
	a.manager.SetDirectory(data.Conversations)
	if data.User != nil {
		_ = a.sessions.SetUser(data.User)
	}

	if data.Degraded {
		a.statusBar.Connection = components.ConnectionDegraded
		a.toasts.Push(components.ToastWarning,
			"some startup data could not be loaded; running with defaults")
	} else {
		a.statusBar.Connection = components.ConnectionOK
	}
	a.updateStatusBar()
	return a, nil
}

func (a App) dispatch(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.screen {
	case ScreenLogin:
		a.login, cmd = a.login.Update(msg)
	case ScreenChat:
		a.chat, cmd = a.chat.Update(msg)
	case ScreenKB:
		a.kb, cmd = a.kb.Update(msg)
	case ScreenProfile:
		a.profile, cmd = a.profile.Update(msg)
	case ScreenAdmin:
		a.admin, cmd = a.admin.Update(msg)
	}
	a.updateStatusBar()
	return a, cmd
}

func (a *App) updateStatusBar() {
	if user := a.sessions.User(); user != nil {
		a.statusBar.Username = user.Username
		a.statusBar.Admin = user.IsAdmin
	}
	a.statusBar.Agent = a.manager.AgentType()
	a.statusBar.Title = a.manager.Conversation().GetTitle()
	a.statusBar.Processing = a.kb.Processing()
}

// msgError extracts the error carried by a screen message, if any.
func msgError(msg tea.Msg) error {
	switch m := msg.(type) {
	case chatui.SendDoneMsg:
		return m.Err
	case chatui.HistoryLoadedMsg:
		return m.Err
	case chatui.DirectoryMsg:
		return m.Err
	case chatui.ConversationDeletedMsg:
		return m.Err
	case chatui.ConversationRenamedMsg:
		return m.Err
	case kb.DocumentsMsg:
		return m.Err
	case kb.UploadDoneMsg:
		return m.Err
	case kb.MutationDoneMsg:
		return m.Err
	case profile.ProfileMsg:
		return m.Err
	case profile.SavedMsg:
		return m.Err
	case profile.PasswordChangedMsg:
		return m.Err
	case admin.UsersMsg:
		return m.Err
	case admin.StatsMsg:
		return m.Err
	case admin.DocsMsg:
		return m.Err
	case admin.ActionDoneMsg:
		return m.Err
	}
	return nil
}

// =============================================================================
// VIEW
// =============================================================================

// View implements tea.Model.
func (a App) View() string {
	var body string
	switch a.screen {
	case ScreenLogin:
		body = a.login.View()
	case ScreenChat:
		body = a.chat.View()
	case ScreenKB:
		body = a.kb.View()
	case ScreenProfile:
		body = a.profile.View()
	case ScreenAdmin:
		body = a.admin.View()
	}

	out := body + "\n" + a.statusBar.Render()
	if toasts := a.toasts.Render(); toasts != "" {
		out += "\n" + toasts
	}
	return out
}
