// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"path/filepath"
	"testing"

	chatmgr "github.com/askveta/veta-tui/internal/chat"
	"github.com/askveta/veta-tui/internal/docs"
	"github.com/askveta/veta-tui/internal/model"
	"github.com/askveta/veta-tui/internal/session"
	"github.com/askveta/veta-tui/internal/api"
	chatui "github.com/askveta/veta-tui/internal/ui/chat"
	"github.com/askveta/veta-tui/internal/ui/components"
	"github.com/askveta/veta-tui/internal/ui/styles"
)

func newTestApp(t *testing.T) App {
	t.Helper()
	dir := t.TempDir()
	ks, err := session.OpenKeystore(filepath.Join(dir, "session.key"))
	if err != nil {
		t.Fatal(err)
	}
	sessions, err := session.NewManager(filepath.Join(dir, "session.json"), ks)
	if err != nil {
		t.Fatal(err)
	}
	if err := sessions.Login("tok", &model.User{ID: 1, Username: "alice"}, session.ModeUser); err != nil {
		t.Fatal(err)
	}

	client := api.New("http://127.0.0.1:0", api.StaticToken("tok"))
	manager := chatmgr.NewManager(client, nil, "default")
	registry := docs.NewRegistry(client, nil, 0)
	return NewApp(styles.NewTheme("dark"), client, sessions, manager, registry, false)
}

func TestAuthenticatedStartsOnChat(t *testing.T) {
	a := newTestApp(t)
	if a.screen != ScreenChat {
		t.Errorf("screen = %v, want chat", a.screen)
	}
}

func TestAuthFailureReturnsToLogin(t *testing.T) {
	a := newTestApp(t)

	updated, _ := a.Update(chatui.DirectoryMsg{Err: &api.APIError{Status: 401, Detail: "expired"}})
	app := updated.(App)
	if app.screen != ScreenLogin {
		t.Errorf("screen = %v, want login", app.screen)
	}
	if app.sessions.IsAuthenticated() {
		t.Error("session should be cleared after a 401")
	}
}

func TestBootstrapDegradedWarns(t *testing.T) {
	a := newTestApp(t)
	updated, _ := a.Update(BootstrapMsg{Data: &chatmgr.BootstrapData{
		Agents:   []model.Agent{model.FallbackAgent()},
		Degraded: true,
	}})
	app := updated.(App)
	if app.statusBar.Connection != components.ConnectionDegraded {
		t.Errorf("connection = %v, want degraded", app.statusBar.Connection)
	}
	if len(app.toasts.Active()) == 0 {
		t.Error("degraded bootstrap should push a warning toast")
	}
}

func TestMsgErrorExtraction(t *testing.T) {
	err := &api.APIError{Status: 401}
	if msgError(chatui.SendDoneMsg{Err: err}) == nil {
		t.Error("SendDoneMsg error should be extracted")
	}
	if msgError(struct{}{}) != nil {
		t.Error("unknown messages carry no error")
	}
}
