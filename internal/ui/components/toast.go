// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides UI components for the veta TUI.
//
// This file implements non-blocking toasts. Unlike modal error dialogs,
// toasts sit in the corner and auto-dismiss, so a failed send or a slow
// document task never blocks the input line.
package components

import (
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/askveta/veta-tui/internal/ui/styles"
)

// =============================================================================
// TOAST TYPES
// =============================================================================

// ToastKind represents the type of toast notification.
type ToastKind int

const (
	// ToastInfo is an informational toast (cyan)
	ToastInfo ToastKind = iota
	// ToastError is an error toast (rose)
	ToastError
	// ToastWarning is a warning toast (amber)
	ToastWarning
	// ToastSuccess is a success toast (emerald)
	ToastSuccess
)

// InfoToastDuration is the auto-dismiss duration for info/success toasts.
const InfoToastDuration = 4 * time.Second

// ErrorToastDuration is longer so the user has time to read the failure.
const ErrorToastDuration = 8 * time.Second

// Toast is a single non-blocking notification.
type Toast struct {
	ID        int
	Message   string
	Kind      ToastKind
	CreatedAt time.Time
	Duration  time.Duration
}

// IsExpired returns true once the toast should be dismissed.
func (t *Toast) IsExpired() bool {
	return time.Since(t.CreatedAt) >= t.Duration
}

// =============================================================================
// TOAST MANAGER
// =============================================================================

// ToastManager holds the active toasts. Safe for use from tea.Cmd goroutines.
type ToastManager struct {
	mu        sync.Mutex
	toasts    []Toast
	nextID    int
	maxToasts int
}

// NewToastManager creates an empty manager showing at most five toasts.
func NewToastManager() *ToastManager {
	return &ToastManager{nextID: 1, maxToasts: 5}
}

// Push adds a toast of the given kind and returns its id.
func (m *ToastManager) Push(kind ToastKind, message string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	duration := InfoToastDuration
	if kind == ToastError || kind == ToastWarning {
		duration = ErrorToastDuration
	}

	toast := Toast{
		ID:        m.nextID,
		Message:   message,
		Kind:      kind,
		CreatedAt: time.Now(),
		Duration:  duration,
	}
	m.nextID++

	m.toasts = append(m.toasts, toast)
	if len(m.toasts) > m.maxToasts {
		m.toasts = m.toasts[len(m.toasts)-m.maxToasts:]
	}
	return toast.ID
}

// Dismiss removes a toast by id.
func (m *ToastManager) Dismiss(id int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, t := range m.toasts {
		if t.ID == id {
			m.toasts = append(m.toasts[:i], m.toasts[i+1:]...)
			return
		}
	}
}

// DismissAll clears every active toast.
func (m *ToastManager) DismissAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.toasts = nil
}

// Expire drops expired toasts and reports whether any remain.
func (m *ToastManager) Expire() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.toasts[:0]
	for _, t := range m.toasts {
		if !t.IsExpired() {
			kept = append(kept, t)
		}
	}
	m.toasts = kept
	return len(m.toasts) > 0
}

// Active returns a copy of the active toasts, oldest first.
func (m *ToastManager) Active() []Toast {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Toast, len(m.toasts))
	copy(out, m.toasts)
	return out
}

// =============================================================================
// TICKING
// =============================================================================

// ToastTickMsg asks the root model to expire and re-render toasts.
type ToastTickMsg struct{}

// ToastTick schedules the next expiry check.
func ToastTick() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(time.Time) tea.Msg {
		return ToastTickMsg{}
	})
}

// =============================================================================
// RENDERING
// =============================================================================

func toastStyle(kind ToastKind) lipgloss.Style {
	base := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1).
		MaxWidth(60)

	switch kind {
	case ToastError:
		return base.BorderForeground(styles.Rose).Foreground(styles.Rose)
	case ToastWarning:
		return base.BorderForeground(styles.Amber).Foreground(styles.Amber)
	case ToastSuccess:
		return base.BorderForeground(styles.Emerald).Foreground(styles.Emerald)
	default:
		return base.BorderForeground(styles.Cyan).Foreground(styles.Cyan)
	}
}

func toastIndicator(kind ToastKind) string {
	switch kind {
	case ToastError:
		return styles.StatusIndicators.Error
	case ToastWarning:
		return styles.StatusIndicators.Warning
	case ToastSuccess:
		return styles.StatusIndicators.Success
	default:
		return styles.StatusIndicators.Info
	}
}

// Render draws the active toasts stacked vertically, newest last.
func (m *ToastManager) Render() string {
	active := m.Active()
	if len(active) == 0 {
		return ""
	}

	var lines []string
	for _, t := range active {
		lines = append(lines, toastStyle(t.Kind).Render(toastIndicator(t.Kind)+" "+t.Message))
	}
	return strings.Join(lines, "\n")
}
