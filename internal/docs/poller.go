// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package docs

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/askveta/veta-tui/internal/api"
)

// =============================================================================
// INGESTION TASK POLLER
// =============================================================================

const (
	// DefaultPollInterval is the fixed reconciliation interval.
	DefaultPollInterval = 5 * time.Second

	// DefaultTaskMaxAge bounds how long one task is polled. A task older
	// than this is dropped from the set so nothing polls forever.
	DefaultTaskMaxAge = 10 * time.Minute
)

// Poller reconciles the set of in-flight ingestion tasks against the
// backend on a fixed interval.
//
// Failure isolation: a transient status-check error keeps that task in the
// set and never affects the other tasks in the same tick. Polling errors
// are logged, not surfaced; the user sees state changes, not poll noise.
type Poller struct {
	mu sync.Mutex

	client   *api.Client
	interval time.Duration
	maxAge   time.Duration

	// tracked maps task id to when tracking began.
	tracked map[string]time.Time

	// onTerminal fires outside the lock when a task reaches a terminal
	// status; the UI uses it to refresh the document list.
	onTerminal func(taskID string)

	stop    chan struct{}
	stopped sync.Once
	wg      sync.WaitGroup
	running bool
}

// NewPoller creates a poller. onTerminal may be nil.
func NewPoller(client *api.Client, interval, maxAge time.Duration, onTerminal func(taskID string)) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if maxAge <= 0 {
		maxAge = DefaultTaskMaxAge
	}
	return &Poller{
		client:     client,
		interval:   interval,
		maxAge:     maxAge,
		tracked:    make(map[string]time.Time),
		onTerminal: onTerminal,
		stop:       make(chan struct{}),
	}
}

// Track adds a task id to the polling set. Duplicate adds keep the original
// start time so the age bound cannot be reset.
func (p *Poller) Track(taskID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.tracked[taskID]; !ok {
		p.tracked[taskID] = time.Now()
	}
}

// Tracked returns the ids currently in the polling set.
func (p *Poller) Tracked() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	ids := make([]string, 0, len(p.tracked))
	for id := range p.tracked {
		ids = append(ids, id)
	}
	return ids
}

// Start launches the poll loop. Cancel ctx or call Stop to tear it down;
// both paths end the goroutine and its ticker.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	p.mu.Unlock()

	p.wg.Add(1)
	go p.loop(ctx)
}

// Stop tears the poller down and waits for the loop to exit.
func (p *Poller) Stop() {
	p.stopped.Do(func() { close(p.stop) })
	p.wg.Wait()
}

// loop runs the fixed-interval reconciliation.
func (p *Poller) loop(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stop:
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

// tick checks every tracked task once. Terminal or expired tasks leave the
// set; transient failures keep theirs.
func (p *Poller) tick(ctx context.Context) {
	p.mu.Lock()
	snapshot := make(map[string]time.Time, len(p.tracked))
	for id, since := range p.tracked {
		snapshot[id] = since
	}
	p.mu.Unlock()

	for id, since := range snapshot {
		if time.Since(since) > p.maxAge {
			log.Printf("ingestion task %s exceeded max poll age, dropping", id)
			p.remove(id)
			continue
		}

		status, err := p.client.TaskStatus(ctx, id)
		if err != nil {
			// Transient failure: task stays tracked, other tasks in this
			// tick are unaffected, nothing is surfaced to the user.
			log.Printf("task %s status check failed: %v", id, err)
			continue
		}

		if status.Status.IsTerminal() {
			p.remove(id)
			if p.onTerminal != nil {
				p.onTerminal(id)
			}
		}
	}
}

func (p *Poller) remove(taskID string) {
	p.mu.Lock()
	delete(p.tracked, taskID)
	p.mu.Unlock()
}
