// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the conversation screen for the TUI.
package chat

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	chatmgr "github.com/askveta/veta-tui/internal/chat"
	"github.com/askveta/veta-tui/internal/model"
	"github.com/askveta/veta-tui/internal/ui/components"
	"github.com/askveta/veta-tui/internal/ui/styles"
)

// =============================================================================
// OVERLAY STATE
// =============================================================================

type overlay int

const (
	overlayNone overlay = iota
	overlayPicker
	overlayRename
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the conversation screen.
type Model struct {
	theme   *styles.Theme
	manager *chatmgr.Manager

	width  int
	height int

	// Agent selection. The list comes from bootstrap; cycling changes the
	// persona for the next conversation.
	agents   []model.Agent
	agentIdx int

	// Components
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	keyMap   KeyMap

	markdown   *components.MarkdownRenderer
	typewriter *components.Typewriter
	reveal     bool   // typewriter enabled in config
	revealID   string // message currently being revealed

	// Conversation picker / rename overlay
	overlay     overlay
	metas       []model.ConversationMeta
	pickerIdx   int
	renameInput textinput.Model
	renameID    string

	status      string
	statusIsErr bool
}

// New creates the conversation screen around an existing manager.
func New(theme *styles.Theme, manager *chatmgr.Manager, reveal bool) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask your teaching assistant..."
	ti.CharLimit = 4096
	ti.Focus()

	vp := viewport.New(80, 20)

	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 10,
	}
	sp.Style = theme.Spinner

	ri := textinput.New()
	ri.Prompt = "Title: "
	ri.CharLimit = 120

	return Model{
		theme:       theme,
		manager:     manager,
		viewport:    vp,
		input:       ti,
		spinner:     sp,
		keyMap:      DefaultKeyMap(),
		markdown:    components.NewMarkdownRenderer(76),
		typewriter:  components.NewTypewriter(),
		reveal:      reveal,
		renameInput: ri,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// SetAgents installs the agent list from bootstrap and aligns the cursor
// with the manager's current agent.
func (m *Model) SetAgents(agents []model.Agent) {
	if len(agents) == 0 {
		agents = []model.Agent{model.FallbackAgent()}
	}
	m.agents = agents
	m.agentIdx = 0
	for i, a := range agents {
		if a.AgentType == m.manager.AgentType() {
			m.agentIdx = i
			break
		}
	}
}

// SetSize resizes the screen. The input line and status rows are carved out
// of the height; the viewport gets the rest.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height

	chrome := 5 // header, input border, status rows
	vpHeight := height - chrome
	if vpHeight < 3 {
		vpHeight = 3
	}
	m.viewport.Width = width
	m.viewport.Height = vpHeight
	m.input.Width = width - 6

	wrap := width - 8
	if wrap > 100 {
		wrap = 100
	}
	if m.markdown.Width() != wrap {
		m.markdown = components.NewMarkdownRenderer(wrap)
	}
	m.refreshViewport(false)
}

// Manager exposes the underlying conversation manager.
func (m *Model) Manager() *chatmgr.Manager {
	return m.manager
}

// CurrentAgent returns the selected agent.
func (m *Model) CurrentAgent() model.Agent {
	if len(m.agents) == 0 {
		return model.FallbackAgent()
	}
	return m.agents[m.agentIdx]
}

// Unmount tears down timers when the app switches screens. The typewriter
// reveal snaps to full text so nothing is lost.
func (m *Model) Unmount() {
	m.typewriter.Stop()
	m.revealID = ""
	m.refreshViewport(false)
}

func (m *Model) setStatus(msg string, isErr bool) {
	m.status = msg
	m.statusIsErr = isErr
}
