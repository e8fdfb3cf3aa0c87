// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package profile

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/askveta/veta-tui/internal/api"
	"github.com/askveta/veta-tui/internal/model"
	"github.com/askveta/veta-tui/internal/session"
	"github.com/askveta/veta-tui/internal/ui/styles"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	dir := t.TempDir()
	ks, err := session.OpenKeystore(filepath.Join(dir, "session.key"))
	if err != nil {
		t.Fatal(err)
	}
	mgr, err := session.NewManager(filepath.Join(dir, "session.json"), ks)
	if err != nil {
		t.Fatal(err)
	}
	client := api.New("http://127.0.0.1:0", nil)
	return New(styles.NewTheme("dark"), client, mgr)
}

func TestEditPrefillsCurrentProfile(t *testing.T) {
	m := newTestModel(t)
	m.user = &model.User{Username: "alice", Email: "alice@example.edu"}

	m = m.enterEdit()
	if m.username.Value() != "alice" || m.email.Value() != "alice@example.edu" {
		t.Errorf("prefill = %q / %q", m.username.Value(), m.email.Value())
	}
	if m.mode != modeEdit {
		t.Error("expected edit mode")
	}
}

func TestSubmitEditRequiresBothFields(t *testing.T) {
	m := newTestModel(t).enterEdit()
	m.username.SetValue("alice")
	m.email.SetValue("")

	updated, cmd := m.submitEdit()
	if cmd != nil {
		t.Error("missing email must not dispatch a save")
	}
	if !updated.statusIsErr {
		t.Error("expected a validation message")
	}
}

func TestSubmitEditDispatchesSave(t *testing.T) {
	m := newTestModel(t).enterEdit()
	m.username.SetValue("alice")
	m.email.SetValue("alice@example.edu")

	updated, cmd := m.submitEdit()
	if cmd == nil {
		t.Fatal("expected a save command")
	}
	if !updated.busy {
		t.Error("screen should be busy while the save runs")
	}
}

func TestSavedMsgUpdatesSession(t *testing.T) {
	m := newTestModel(t)
	m.mode = modeEdit
	m.busy = true

	user := &model.User{ID: 1, Username: "alice2", Email: "a2@example.edu"}
	updated, _ := m.Update(SavedMsg{User: user})
	if updated.busy {
		t.Error("busy flag should clear")
	}
	if updated.mode != modeView {
		t.Error("should return to view mode after a save")
	}
	if got := updated.sessions.User(); got == nil || got.Username != "alice2" {
		t.Errorf("session user = %+v", got)
	}
}

func TestPasswordFailureClearsFields(t *testing.T) {
	m := newTestModel(t).enterPassword()
	m.oldPwd.SetValue("old")
	m.newPwd.SetValue("new")
	m.busy = true

	updated, _ := m.Update(PasswordChangedMsg{Err: errors.New("wrong password")})
	if updated.oldPwd.Value() != "" || updated.newPwd.Value() != "" {
		t.Error("password fields should be cleared after a failure")
	}
	if !strings.Contains(updated.status, "could not change password") {
		t.Errorf("status = %q", updated.status)
	}
}

func TestViewShowsProfile(t *testing.T) {
	m := newTestModel(t)
	m.user = &model.User{Username: "alice", Email: "alice@example.edu", IsAdmin: true}

	view := m.View()
	for _, want := range []string{"alice", "alice@example.edu", "admin"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}
