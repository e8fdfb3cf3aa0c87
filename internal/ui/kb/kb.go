// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package kb provides the knowledge base screen of the veta TUI: the
// document table, uploads, renames and deletes. While any document is still
// processing the screen refreshes itself on the ingestion poll cadence and
// refuses mutations, mirroring the registry's own guard.
package kb

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/askveta/veta-tui/internal/docs"
	"github.com/askveta/veta-tui/internal/model"
	"github.com/askveta/veta-tui/internal/ui/styles"
	"github.com/askveta/veta-tui/internal/util"
)

// =============================================================================
// MESSAGES
// =============================================================================

// DocumentsMsg carries a refreshed document list.
type DocumentsMsg struct {
	Docs []model.Document
	Err  error
}

// UploadDoneMsg reports an upload attempt. Name is the local file name; the
// upload response does not echo one back.
type UploadDoneMsg struct {
	Name   string
	Result *model.UploadResult
	Err    error
}

// MutationDoneMsg reports a delete or rename.
type MutationDoneMsg struct {
	Action string
	Err    error
}

// refreshTickMsg drives the processing refresh loop.
type refreshTickMsg struct{}

// =============================================================================
// MODEL
// =============================================================================

type mode int

const (
	modeList mode = iota
	modeUpload
	modeRename
)

// Model is the Bubble Tea model for the knowledge base screen.
type Model struct {
	theme    *styles.Theme
	registry *docs.Registry

	width  int
	height int

	table     table.Model
	pathInput textinput.Model
	nameInput textinput.Model
	mode      mode
	renameID  string

	status      string
	statusIsErr bool
}

// New creates the knowledge base screen around an existing registry.
func New(theme *styles.Theme, registry *docs.Registry) Model {
	columns := []table.Column{
		{Title: "Document", Width: 34},
		{Title: "Status", Width: 12},
		{Title: "Chunks", Width: 7},
		{Title: "Size", Width: 9},
		{Title: "Uploaded by", Width: 14},
	}
	tbl := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	pi := textinput.New()
	pi.Prompt = "Path: "
	pi.Placeholder = "/path/to/notes.pdf"
	pi.CharLimit = 512

	ni := textinput.New()
	ni.Prompt = "Name: "
	ni.CharLimit = 120

	return Model{
		theme:     theme,
		registry:  registry,
		table:     tbl,
		pathInput: pi,
		nameInput: ni,
	}
}

// Init loads the document list and starts the refresh loop.
func (m Model) Init() tea.Cmd {
	return tea.Batch(refreshCmd(m.registry), refreshTick())
}

// SetSize resizes the screen.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	h := height - 8
	if h < 4 {
		h = 4
	}
	m.table.SetHeight(h)
}

// Processing returns how many documents are not yet in a terminal state.
func (m *Model) Processing() int {
	n := 0
	for _, d := range m.registry.Documents() {
		if !d.Status.IsTerminal() {
			n++
		}
	}
	return n
}

func (m *Model) setStatus(msg string, isErr bool) {
	m.status = msg
	m.statusIsErr = isErr
}

// =============================================================================
// COMMANDS
// =============================================================================

func refreshCmd(registry *docs.Registry) tea.Cmd {
	return func() tea.Msg {
		err := registry.Refresh(context.Background())
		return DocumentsMsg{Docs: registry.Documents(), Err: err}
	}
}

func uploadCmd(registry *docs.Registry, path string) tea.Cmd {
	return func() tea.Msg {
		result, err := registry.Upload(context.Background(), path)
		return UploadDoneMsg{Name: filepath.Base(path), Result: result, Err: err}
	}
}

func deleteCmd(registry *docs.Registry, id string) tea.Cmd {
	return func() tea.Msg {
		err := registry.Delete(context.Background(), id)
		return MutationDoneMsg{Action: "delete", Err: err}
	}
}

func renameCmd(registry *docs.Registry, id, name string) tea.Cmd {
	return func() tea.Msg {
		err := registry.Rename(context.Background(), id, name)
		return MutationDoneMsg{Action: "rename", Err: err}
	}
}

func refreshTick() tea.Cmd {
	return tea.Tick(docs.DefaultPollInterval, func(time.Time) tea.Msg {
		return refreshTickMsg{}
	})
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles messages for the knowledge base screen.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		return m.handleKey(msg)

	case DocumentsMsg:
		if msg.Err != nil {
			m.setStatus("could not refresh documents: "+msg.Err.Error(), true)
			return m, nil
		}
		m.fillTable(msg.Docs)
		return m, nil

	case UploadDoneMsg:
		if msg.Err != nil {
			m.setStatus(uploadErrorText(msg.Err), true)
			return m, nil
		}
		m.setStatus(fmt.Sprintf("uploaded %s (%s)", msg.Name, msg.Result.Status), false)
		return m, refreshCmd(m.registry)

	case MutationDoneMsg:
		if msg.Err != nil {
			if errors.Is(msg.Err, docs.ErrDocumentProcessing) {
				m.setStatus("document is still processing; try again once ingestion finishes", true)
			} else {
				m.setStatus(msg.Action+" failed: "+msg.Err.Error(), true)
			}
			return m, nil
		}
		m.setStatus(msg.Action+" done", false)
		return m, refreshCmd(m.registry)

	case refreshTickMsg:
		// Keep ticking; only hit the backend while something is in flight.
		if m.Processing() > 0 {
			return m, tea.Batch(refreshCmd(m.registry), refreshTick())
		}
		return m, refreshTick()
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.mode == modeUpload {
		return m.handleUploadKey(msg)
	}
	if m.mode == modeRename {
		return m.handleRenameKey(msg)
	}

	switch msg.String() {
	case "u":
		m.mode = modeUpload
		m.pathInput.Reset()
		m.pathInput.Focus()
		return m, textinput.Blink
	case "d":
		if doc, ok := m.selected(); ok {
			return m, deleteCmd(m.registry, doc.ID)
		}
		return m, nil
	case "r":
		if doc, ok := m.selected(); ok {
			m.renameID = doc.ID
			m.nameInput.SetValue(doc.DisplayName())
			m.nameInput.Focus()
			m.mode = modeRename
		}
		return m, nil
	case "R":
		return m, refreshCmd(m.registry)
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) handleUploadKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeList
		m.pathInput.Blur()
		return m, nil
	case "enter":
		path := strings.TrimSpace(m.pathInput.Value())
		m.mode = modeList
		m.pathInput.Blur()
		if path == "" {
			return m, nil
		}
		m.setStatus("uploading "+path+"...", false)
		return m, uploadCmd(m.registry, path)
	}
	var cmd tea.Cmd
	m.pathInput, cmd = m.pathInput.Update(msg)
	return m, cmd
}

func (m Model) handleRenameKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeList
		m.nameInput.Blur()
		return m, nil
	case "enter":
		name := strings.TrimSpace(m.nameInput.Value())
		m.mode = modeList
		m.nameInput.Blur()
		if name == "" {
			return m, nil
		}
		return m, renameCmd(m.registry, m.renameID, name)
	}
	var cmd tea.Cmd
	m.nameInput, cmd = m.nameInput.Update(msg)
	return m, cmd
}

func (m *Model) selected() (model.Document, bool) {
	docList := m.registry.Documents()
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(docList) {
		return model.Document{}, false
	}
	return docList[idx], true
}

func (m *Model) fillTable(docList []model.Document) {
	rows := make([]table.Row, 0, len(docList))
	for _, d := range docList {
		rows = append(rows, table.Row{
			util.TruncateWidth(d.DisplayName(), 34),
			string(d.Status),
			fmt.Sprintf("%d", d.ChunkCount),
			formatSize(d.SizeBytes),
			d.UploadedBy,
		})
	}
	m.table.SetRows(rows)
}

// uploadErrorText maps validation failures to actionable text. Both checks
// fire before any network request.
func uploadErrorText(err error) string {
	switch {
	case errors.Is(err, docs.ErrUnsupportedType):
		return "unsupported file type: only .txt, .pdf, .docx and .md are accepted"
	case errors.Is(err, docs.ErrFileTooLarge):
		return "file too large: the limit is 10MB"
	default:
		return "upload failed: " + err.Error()
	}
}

func formatSize(bytes int64) string {
	switch {
	case bytes >= 1<<20:
		return fmt.Sprintf("%.1fMB", float64(bytes)/(1<<20))
	case bytes >= 1<<10:
		return fmt.Sprintf("%.1fKB", float64(bytes)/(1<<10))
	default:
		return fmt.Sprintf("%dB", bytes)
	}
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the knowledge base screen.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.theme.Header.Render("veta") + " " + m.theme.Title.Render("Knowledge Base"))
	if n := m.Processing(); n > 0 {
		b.WriteString(" " + m.theme.StatusWarn.Render(fmt.Sprintf("(%d processing)", n)))
	}
	b.WriteString("\n\n")

	b.WriteString(m.table.View())
	b.WriteString("\n")

	switch m.mode {
	case modeUpload:
		b.WriteString(m.pathInput.View())
		b.WriteString("\n")
	case modeRename:
		b.WriteString(m.nameInput.View())
		b.WriteString("\n")
	default:
		if m.status != "" {
			if m.statusIsErr {
				b.WriteString(styles.RenderError(m.status))
			} else {
				b.WriteString(styles.RenderSuccess(m.status))
			}
			b.WriteString("\n")
		}
		b.WriteString(m.theme.ListMeta.Render("u upload | r rename | d delete | R refresh"))
	}
	return b.String()
}
