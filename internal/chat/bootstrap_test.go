// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/askveta/veta-tui/internal/api"
	"github.com/askveta/veta-tui/internal/model"
)

func TestBootstrapAllFetchesSucceed(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/chat/agents", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"agents":[
			{"id":"default","name":"Default"},
			{"id":"strict","name":"Strict"},
			{"id":"friendly","name":"Friendly"}
		]}`)
	})
	mux.HandleFunc("/api/chat/conversations/", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"conversations":[{"id":"c1","title":"T"}]}`)
	})
	mux.HandleFunc("/api/auth/users/me/", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"username":"alice","email":"a@x","is_admin":false}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := api.New(srv.URL, api.StaticToken("tok")).WithRateLimit(1000, 1000)
	data := Bootstrap(context.Background(), client)

	if data.Degraded {
		t.Error("unexpected degraded flag")
	}
	if len(data.Agents) != 3 {
		t.Errorf("agents = %+v", data.Agents)
	}
	if data.Agents[1].AgentType != "strict" {
		t.Errorf("agent type = %q, want the wire id", data.Agents[1].AgentType)
	}
	if len(data.Conversations) != 1 {
		t.Errorf("conversations = %+v", data.Conversations)
	}
	if data.User == nil || data.User.Username != "alice" {
		t.Errorf("user = %+v", data.User)
	}
}

func TestBootstrapAgentFailureFallsBack(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/chat/agents", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("/api/chat/conversations/", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"conversations":[{"id":"c1","title":"Still here"}]}`)
	})
	mux.HandleFunc("/api/auth/users/me/", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"username":"alice"}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := api.New(srv.URL, api.StaticToken("tok")).WithRateLimit(1000, 1000)
	data := Bootstrap(context.Background(), client)

	if !data.Degraded {
		t.Error("expected degraded flag")
	}
	// Agent list degrades to the fallback persona alone.
	if len(data.Agents) != 1 || data.Agents[0].AgentType != model.DefaultAgentType {
		t.Errorf("agents = %+v", data.Agents)
	}
	// Other fetches degrade independently: the directory still loads.
	if len(data.Conversations) != 1 {
		t.Errorf("conversations = %+v, want the successful fetch kept", data.Conversations)
	}
}

func TestBootstrapTotalFailureStillUsable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := api.New(srv.URL, api.StaticToken("tok")).WithRateLimit(1000, 1000)
	data := Bootstrap(context.Background(), client)

	if !data.Degraded {
		t.Error("expected degraded flag")
	}
	if len(data.Agents) != 1 {
		t.Fatalf("agents = %+v, want fallback persona", data.Agents)
	}
	if data.Conversations != nil && len(data.Conversations) != 0 {
		t.Errorf("conversations = %+v, want empty", data.Conversations)
	}
}

func TestPickAgent(t *testing.T) {
	agents := []model.Agent{
		{AgentType: "default"},
		{AgentType: "strict"},
	}
	if got := PickAgent(agents, "strict"); got != "strict" {
		t.Errorf("got %q", got)
	}
	if got := PickAgent(agents, "friendly"); got != model.DefaultAgentType {
		t.Errorf("got %q, want fallback", got)
	}
	if got := PickAgent(nil, "anything"); got != model.DefaultAgentType {
		t.Errorf("got %q, want fallback", got)
	}
}
