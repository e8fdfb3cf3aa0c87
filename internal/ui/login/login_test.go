// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package login

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/askveta/veta-tui/internal/api"
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

func TestSubmitRequiresBothFields(t *testing.T) {
	m := newTestModel(t)
	m.username.SetValue("alice")
	m.focusPwd = true

	updated, cmd := m.submit()
	if cmd != nil {
		t.Error("missing password must not dispatch a login")
	}
	if updated.errText == "" {
		t.Error("expected a validation message")
	}
}

func TestSubmitDispatchesLogin(t *testing.T) {
	m := newTestModel(t)
	m.username.SetValue("alice")
	m.password.SetValue("s3cret")
	m.focusPwd = true

	updated, cmd := m.submit()
	if cmd == nil {
		t.Fatal("submit should dispatch the login command")
	}
	if !updated.busy {
		t.Error("screen should be busy while the login runs")
	}
}

func TestDoneMsgAuthFailure(t *testing.T) {
	m := newTestModel(t)
	m.password.SetValue("wrong")
	m.busy = true

	updated, _ := m.Update(DoneMsg{Err: api.ErrAuthFailed})
	if updated.busy {
		t.Error("busy flag should clear")
	}
	if !strings.Contains(updated.errText, "invalid username or password") {
		t.Errorf("errText = %q", updated.errText)
	}
	if updated.password.Value() != "" {
		t.Error("password field should be cleared after a failure")
	}
}
