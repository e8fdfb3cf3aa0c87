// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides UI components for the veta TUI.
//
// This file implements the typewriter reveal for assistant replies. Replies
// arrive whole from the backend; the reveal is purely visual, ticking a few
// runes at a time until the full text is shown. Switching screens or sending
// the next message stops the ticker and snaps to the full text.
package components

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// typewriterInterval is the delay between reveal steps.
const typewriterInterval = 15 * time.Millisecond

// typewriterStep is how many runes each tick reveals.
const typewriterStep = 3

// TypewriterTickMsg advances an active reveal. Seq guards against stale
// ticks from a reveal that was since replaced.
type TypewriterTickMsg struct {
	Seq int
}

// Typewriter reveals a fixed text incrementally.
type Typewriter struct {
	runes   []rune
	visible int
	seq     int
	active  bool
}

// NewTypewriter creates an idle typewriter.
func NewTypewriter() *Typewriter {
	return &Typewriter{}
}

// Start begins revealing text and returns the first tick command.
func (t *Typewriter) Start(text string) tea.Cmd {
	t.seq++
	t.runes = []rune(text)
	t.visible = 0
	t.active = len(t.runes) > 0
	if !t.active {
		return nil
	}
	return t.tick()
}

// Advance processes a tick. It returns the next tick command, or nil when
// the reveal has finished or the tick belongs to a previous reveal.
func (t *Typewriter) Advance(msg TypewriterTickMsg) tea.Cmd {
	if !t.active || msg.Seq != t.seq {
		return nil
	}
	t.visible += typewriterStep
	if t.visible >= len(t.runes) {
		t.visible = len(t.runes)
		t.active = false
		return nil
	}
	return t.tick()
}

// Skip ends the reveal immediately, showing the full text.
func (t *Typewriter) Skip() {
	t.visible = len(t.runes)
	t.active = false
}

// Stop abandons the reveal entirely. Used on screen change.
func (t *Typewriter) Stop() {
	t.seq++
	t.runes = nil
	t.visible = 0
	t.active = false
}

// Active reports whether a reveal is in progress.
func (t *Typewriter) Active() bool {
	return t.active
}

// Visible returns the currently revealed prefix.
func (t *Typewriter) Visible() string {
	return string(t.runes[:t.visible])
}

func (t *Typewriter) tick() tea.Cmd {
	seq := t.seq
	return tea.Tick(typewriterInterval, func(time.Time) tea.Msg {
		return TypewriterTickMsg{Seq: seq}
	})
}
