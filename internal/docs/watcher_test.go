// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package docs

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestWatcherUploadsDroppedFiles(t *testing.T) {
	var mu sync.Mutex
	var uploaded []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile: %v", err)
			return
		}
		mu.Lock()
		uploaded = append(uploaded, header.Filename)
		mu.Unlock()
		io.WriteString(w, `{"document_id":"d","status":"processed","message":"ok"}`)
	}))
	defer srv.Close()

	dir := t.TempDir()
	reg := NewRegistry(newTestAPIClient(srv.URL), nil, 0)

	w, err := NewWatcher(reg, dir)
	if err != nil {
		t.Fatal(err)
	}
	w.debounce = 20 * time.Millisecond
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	// A valid file is uploaded, an invalid one is skipped silently.
	if err := os.WriteFile(filepath.Join(dir, "dropped.md"), []byte("# notes"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "skipped.exe"), []byte("nope"), 0644); err != nil {
		t.Fatal(err)
	}

	waitFor(t, 3*time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(uploaded) == 1
	})

	mu.Lock()
	defer mu.Unlock()
	if uploaded[0] != "dropped.md" {
		t.Errorf("uploaded = %v", uploaded)
	}
}

func TestWatcherCloseStopsUploads(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"status":"processed"}`)
	}))
	defer srv.Close()

	dir := t.TempDir()
	reg := NewRegistry(newTestAPIClient(srv.URL), nil, 0)

	w, err := NewWatcher(reg, dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
