// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the reusable visual pieces of the veta TUI:
// toasts, the status bar, the markdown renderer and the typewriter reveal.
package components
