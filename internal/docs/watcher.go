// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package docs

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// =============================================================================
// WATCH-DIRECTORY AUTO-UPLOAD
// =============================================================================

// watchDebounce is how long a file must sit quiet before upload. Editors
// and downloads write in bursts; uploading on the first event would ship a
// partial file.
const watchDebounce = 2 * time.Second

// Watcher uploads files dropped into a directory. Files failing validation
// are skipped with a log line; there is no retry, matching manual uploads.
type Watcher struct {
	registry *Registry
	dir      string
	debounce time.Duration

	fsw *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]time.Time

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWatcher creates a watcher over dir feeding the given registry.
func NewWatcher(registry *Registry, dir string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		registry: registry,
		dir:      dir,
		debounce: watchDebounce,
		fsw:      fsw,
		pending:  make(map[string]time.Time),
	}, nil
}

// Start begins watching. Close tears everything down.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.fsw.Add(w.dir); err != nil {
		return err
	}

	ctx, w.cancel = context.WithCancel(ctx)

	w.wg.Add(2)
	go w.processEvents(ctx)
	go w.processPending(ctx)
	return nil
}

// Close stops watching and waits for in-flight uploads to finish.
func (w *Watcher) Close() error {
	if w.cancel != nil {
		w.cancel()
	}
	err := w.fsw.Close()
	w.wg.Wait()
	return err
}

// processEvents records write/create events into the pending set.
func (w *Watcher) processEvents(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				w.mu.Lock()
				w.pending[event.Name] = time.Now()
				w.mu.Unlock()
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Printf("watch error: %v", err)
		}
	}
}

// processPending uploads files once their debounce window has passed.
func (w *Watcher) processPending(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.uploadQuiet(ctx)
		}
	}
}

// uploadQuiet uploads every pending file that has been quiet long enough.
func (w *Watcher) uploadQuiet(ctx context.Context) {
	w.mu.Lock()
	var ready []string
	for path, last := range w.pending {
		if time.Since(last) >= w.debounce {
			ready = append(ready, path)
			delete(w.pending, path)
		}
	}
	w.mu.Unlock()

	for _, path := range ready {
		if _, err := w.registry.Upload(ctx, path); err != nil {
			log.Printf("auto-upload %s skipped: %v", path, err)
			continue
		}
		log.Printf("auto-uploaded %s", path)
	}
}
