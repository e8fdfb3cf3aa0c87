// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package kb

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/askveta/veta-tui/internal/api"
	"github.com/askveta/veta-tui/internal/docs"
	"github.com/askveta/veta-tui/internal/model"
	"github.com/askveta/veta-tui/internal/ui/styles"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	client := api.New("http://127.0.0.1:0", api.StaticToken("tok"))
	reg := docs.NewRegistry(client, nil, 0)
	m := New(styles.NewTheme("dark"), reg)
	m.SetSize(100, 30)
	return m
}

func TestDocumentsMsgFillsTable(t *testing.T) {
	m := newTestModel(t)
	m, _ = m.Update(DocumentsMsg{Docs: []model.Document{
		{ID: "d1", OriginalFilename: "notes.pdf", Status: model.DocStatusProcessed, ChunkCount: 12, SizeBytes: 2048},
	}})
	if !strings.Contains(m.table.View(), "notes.pdf") {
		t.Error("table should list the document")
	}
}

func TestUploadValidationErrorIsActionable(t *testing.T) {
	m := newTestModel(t)
	m, _ = m.Update(UploadDoneMsg{Err: docs.ErrUnsupportedType})
	if !strings.Contains(m.status, ".txt, .pdf, .docx and .md") {
		t.Errorf("status = %q", m.status)
	}

	m, _ = m.Update(UploadDoneMsg{Err: docs.ErrFileTooLarge})
	if !strings.Contains(m.status, "10MB") {
		t.Errorf("status = %q", m.status)
	}
}

func TestMutationRefusedWhileProcessing(t *testing.T) {
	m := newTestModel(t)
	m, _ = m.Update(MutationDoneMsg{Action: "delete", Err: docs.ErrDocumentProcessing})
	if !strings.Contains(m.status, "still processing") {
		t.Errorf("status = %q", m.status)
	}
	if !m.statusIsErr {
		t.Error("refusal should render as an error")
	}
}

func TestUploadModeSubmitDispatches(t *testing.T) {
	m := newTestModel(t)
	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("u")})
	if m.mode != modeUpload {
		t.Fatal("u should enter upload mode")
	}
	m.pathInput.SetValue("/tmp/notes.md")
	m, cmd := m.handleUploadKey(tea.KeyMsg{Type: tea.KeyEnter})
	if m.mode != modeList {
		t.Error("enter should leave upload mode")
	}
	if cmd == nil {
		t.Error("enter with a path should dispatch an upload")
	}
}

func TestRefreshTickKeepsTicking(t *testing.T) {
	m := newTestModel(t)
	_, cmd := m.Update(refreshTickMsg{})
	if cmd == nil {
		t.Error("tick should reschedule itself")
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{512, "512B"},
		{2048, "2.0KB"},
		{3 << 20, "3.0MB"},
	}
	for _, tt := range tests {
		if got := formatSize(tt.bytes); got != tt.want {
			t.Errorf("formatSize(%d) = %q, want %q", tt.bytes, got, tt.want)
		}
	}
}
