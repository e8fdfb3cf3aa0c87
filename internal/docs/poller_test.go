// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package docs

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/askveta/veta-tui/internal/api"
)

func newTestAPIClient(baseURL string) *api.Client {
	return api.New(baseURL, api.StaticToken("tok")).WithRateLimit(1000, 1000)
}

// taskServer serves /api/rag/tasks/:id/status with per-id canned behavior.
type taskServer struct {
	mu       sync.Mutex
	statuses map[string]string // id -> status; "error" means HTTP 500
	hits     map[string]int
}

func newTaskServer() *taskServer {
	return &taskServer{statuses: make(map[string]string), hits: make(map[string]int)}
}

func (ts *taskServer) handler(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	// api/rag/tasks/<id>/status
	id := parts[len(parts)-2]

	ts.mu.Lock()
	ts.hits[id]++
	status := ts.statuses[id]
	ts.mu.Unlock()

	if status == "error" {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	io.WriteString(w, fmt.Sprintf(`{"task_id":%q,"document_id":"d-%s","filename":"f","status":%q}`, id, id, status))
}

func (ts *taskServer) hitCount(id string) int {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.hits[id]
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func newPollerFixture(t *testing.T, ts *taskServer, interval, maxAge time.Duration, onTerminal func(string)) *Poller {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(ts.handler))
	t.Cleanup(srv.Close)
	client := newTestAPIClient(srv.URL)
	return NewPoller(client, interval, maxAge, onTerminal)
}

func TestPollerRemovesTerminalKeepsFailing(t *testing.T) {
	ts := newTaskServer()
	ts.statuses["done"] = "processed"
	ts.statuses["flaky"] = "error"

	var mu sync.Mutex
	var completed []string
	p := newPollerFixture(t, ts, 10*time.Millisecond, time.Minute, func(id string) {
		mu.Lock()
		completed = append(completed, id)
		mu.Unlock()
	})
	p.Track("done")
	p.Track("flaky")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)
	defer p.Stop()

	// The terminal task leaves the set and fires the callback. The failing
	// one stays tracked and keeps being polled: per-id isolation.
	waitFor(t, 2*time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(completed) == 1 && completed[0] == "done"
	})
	waitFor(t, 2*time.Second, func() bool { return ts.hitCount("flaky") >= 2 })

	tracked := p.Tracked()
	if len(tracked) != 1 || tracked[0] != "flaky" {
		t.Errorf("tracked = %v, want [flaky]", tracked)
	}
}

func TestPollerMaxAgeBoundsPolling(t *testing.T) {
	ts := newTaskServer()
	ts.statuses["stuck"] = "processing"

	p := newPollerFixture(t, ts, 10*time.Millisecond, 30*time.Millisecond, nil)
	p.Track("stuck")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)
	defer p.Stop()

	// Eventually the age bound drops the task even though it never
	// reached a terminal status.
	waitFor(t, 2*time.Second, func() bool { return len(p.Tracked()) == 0 })
}

func TestPollerStopEndsLoop(t *testing.T) {
	ts := newTaskServer()
	ts.statuses["t"] = "processing"

	p := newPollerFixture(t, ts, 10*time.Millisecond, time.Minute, nil)
	p.Track("t")

	p.Start(context.Background())
	waitFor(t, 2*time.Second, func() bool { return ts.hitCount("t") >= 1 })

	p.Stop()
	after := ts.hitCount("t")
	time.Sleep(50 * time.Millisecond)
	if ts.hitCount("t") != after {
		t.Error("poller kept polling after Stop")
	}

	// Stop is idempotent.
	p.Stop()
}

func TestPollerContextCancelEndsLoop(t *testing.T) {
	ts := newTaskServer()
	ts.statuses["t"] = "processing"

	p := newPollerFixture(t, ts, 10*time.Millisecond, time.Minute, nil)
	p.Track("t")

	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)
	waitFor(t, 2*time.Second, func() bool { return ts.hitCount("t") >= 1 })

	cancel()
	time.Sleep(30 * time.Millisecond)
	after := ts.hitCount("t")
	time.Sleep(50 * time.Millisecond)
	if ts.hitCount("t") != after {
		t.Error("poller kept polling after context cancellation")
	}
}

func TestTrackKeepsOriginalStartTime(t *testing.T) {
	ts := newTaskServer()
	p := newPollerFixture(t, ts, time.Hour, time.Minute, nil)

	p.Track("t")
	p.mu.Lock()
	first := p.tracked["t"]
	p.mu.Unlock()

	time.Sleep(5 * time.Millisecond)
	p.Track("t")
	p.mu.Lock()
	second := p.tracked["t"]
	p.mu.Unlock()

	if !first.Equal(second) {
		t.Error("re-tracking reset the age bound")
	}
}
