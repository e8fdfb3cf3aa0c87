// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"
	"time"

	"github.com/askveta/veta-tui/internal/ui/styles"
)

// =============================================================================
// TOASTS
// =============================================================================

func TestToastPushAndExpire(t *testing.T) {
	m := NewToastManager()
	id := m.Push(ToastError, "send failed")
	if len(m.Active()) != 1 {
		t.Fatalf("active = %d, want 1", len(m.Active()))
	}

	// Not expired yet.
	if !m.Expire() {
		t.Error("Expire should report remaining toasts")
	}

	m.Dismiss(id)
	if len(m.Active()) != 0 {
		t.Error("toast should be dismissed")
	}
}

func TestToastExpiryDropsOldToasts(t *testing.T) {
	m := NewToastManager()
	m.Push(ToastInfo, "stale")
	// Backdate past its duration.
	m.toasts[0].CreatedAt = time.Now().Add(-InfoToastDuration - time.Second)

	if m.Expire() {
		t.Error("Expire should report no remaining toasts")
	}
	if len(m.Active()) != 0 {
		t.Error("expired toast should be dropped")
	}
}

func TestToastCapsVisibleCount(t *testing.T) {
	m := NewToastManager()
	for i := 0; i < 10; i++ {
		m.Push(ToastInfo, "msg")
	}
	if got := len(m.Active()); got != 5 {
		t.Errorf("active = %d, want 5", got)
	}
}

func TestToastRenderIncludesIndicator(t *testing.T) {
	m := NewToastManager()
	m.Push(ToastError, "upload rejected")
	out := m.Render()
	if !strings.Contains(out, "upload rejected") {
		t.Errorf("render missing message: %q", out)
	}
	if !strings.Contains(out, styles.StatusIndicators.Error) {
		t.Errorf("render missing error indicator: %q", out)
	}
}

// =============================================================================
// TYPEWRITER
// =============================================================================

func TestTypewriterRevealsIncrementally(t *testing.T) {
	tw := NewTypewriter()
	cmd := tw.Start("hello world")
	if cmd == nil {
		t.Fatal("Start should schedule a tick")
	}
	if !tw.Active() {
		t.Fatal("typewriter should be active")
	}
	if tw.Visible() != "" {
		t.Errorf("nothing should be visible yet, got %q", tw.Visible())
	}

	tw.Advance(TypewriterTickMsg{Seq: 1})
	if tw.Visible() == "" {
		t.Error("tick should reveal some runes")
	}
	if tw.Visible() == "hello world" {
		t.Error("single tick should not reveal everything")
	}
}

func TestTypewriterIgnoresStaleTicks(t *testing.T) {
	tw := NewTypewriter()
	tw.Start("first")
	tw.Start("second")

	// Tick from the first reveal must not advance the second.
	if cmd := tw.Advance(TypewriterTickMsg{Seq: 1}); cmd != nil {
		t.Error("stale tick should return nil")
	}
	if tw.Visible() != "" {
		t.Errorf("stale tick advanced reveal: %q", tw.Visible())
	}
}

func TestTypewriterSkipShowsFullText(t *testing.T) {
	tw := NewTypewriter()
	tw.Start("full text here")
	tw.Skip()
	if tw.Active() {
		t.Error("skip should end the reveal")
	}
	if tw.Visible() != "full text here" {
		t.Errorf("Visible = %q", tw.Visible())
	}
}

func TestTypewriterStopClears(t *testing.T) {
	tw := NewTypewriter()
	tw.Start("abandoned")
	tw.Stop()
	if tw.Active() || tw.Visible() != "" {
		t.Error("stop should clear the reveal")
	}
}

func TestTypewriterEmptyText(t *testing.T) {
	tw := NewTypewriter()
	if cmd := tw.Start(""); cmd != nil {
		t.Error("empty text should not schedule ticks")
	}
	if tw.Active() {
		t.Error("empty text should not activate")
	}
}

// =============================================================================
// MARKDOWN
// =============================================================================

func TestMarkdownRendererNeverSwallowsText(t *testing.T) {
	r := NewMarkdownRenderer(60)
	out := r.Render("plain sentence with no markup")
	if !strings.Contains(out, "plain sentence") {
		t.Errorf("render lost content: %q", out)
	}
}

func TestHighlightCodeUnknownLanguagePassesThrough(t *testing.T) {
	code := "?? definitely not code ??"
	if out := HighlightCode(code, "nosuchlang-xyz"); !strings.Contains(out, "definitely not code") {
		t.Errorf("highlight lost content: %q", out)
	}
}

// =============================================================================
// STATUS BAR
// =============================================================================

func TestStatusBarRender(t *testing.T) {
	bar := NewStatusBar(styles.NewTheme("dark"))
	bar.Username = "alice"
	bar.Admin = true
	bar.Agent = "strict"
	bar.Title = "Pointers and slices"
	bar.Processing = 2

	out := bar.Render()
	for _, want := range []string{"alice", "admin", "strict", "2 doc(s) processing"} {
		if !strings.Contains(out, want) {
			t.Errorf("status bar missing %q in %q", want, out)
		}
	}
}
