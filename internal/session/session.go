// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session holds the authenticated session for the veta client: the
// bearer token, the cached user profile, and the login mode. The session is
// the single source of the current token; every API consumer reads it
// through the Manager rather than carrying its own copy.
//
// The session persists to ~/.veta/session.json across runs. The token is
// never written in the clear; see keystore.go.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/askveta/veta-tui/internal/model"
	"github.com/askveta/veta-tui/internal/util"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNotAuthenticated is returned when no session token is present.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrSessionLocked is returned when the stored session requires a TOTP
	// code before the token can be read.
	ErrSessionLocked = errors.New("session is locked")
)

// =============================================================================
// LOGIN MODE
// =============================================================================

// Mode distinguishes a regular login from an admin login. Admin screens are
// offered only in admin mode; the backend enforces the real authorization.
type Mode string

const (
	ModeUser  Mode = "user"
	ModeAdmin Mode = "admin"
)

// =============================================================================
// SESSION MANAGER
// =============================================================================

// persisted is the on-disk shape of the session file.
type persisted struct {
	// EncToken is the AES-GCM encrypted bearer token, base64-encoded.
	EncToken  string      `json:"enc_token"`
	User      *model.User `json:"user,omitempty"`
	Mode      Mode        `json:"mode"`
	CreatedAt time.Time   `json:"created_at"`
	// LockSecret is the TOTP secret guarding this session, if lock is on.
	LockSecret string `json:"lock_secret,omitempty"`
}

// Manager is the mutex-guarded session holder.
type Manager struct {
	mu sync.Mutex

	path     string
	keystore *Keystore

	token     string
	user      *model.User
	mode      Mode
	createdAt time.Time

	locked     bool
	lockSecret string
}

// DefaultPath returns the session file path under ~/.veta/.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".veta", "session.json"), nil
}

// NewManager creates a session manager backed by the given file and keystore.
// An existing session file is loaded; a missing file leaves the manager in
// the logged-out state.
func NewManager(path string, ks *Keystore) (*Manager, error) {
	m := &Manager{
		path:     path,
		keystore: ks,
		mode:     ModeUser,
	}
	if err := m.load(); err != nil {
		return nil, err
	}
	return m, nil
}

// =============================================================================
// TOKEN ACCESS
// =============================================================================

// Token returns the current bearer token.
func (m *Manager) Token() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locked {
		return "", ErrSessionLocked
	}
	if m.token == "" {
		return "", ErrNotAuthenticated
	}
	return m.token, nil
}

// IsAuthenticated reports whether a token is held and unlocked.
func (m *Manager) IsAuthenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token != "" && !m.locked
}

// IsLocked reports whether the stored session awaits a TOTP code.
func (m *Manager) IsLocked() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.locked
}

// =============================================================================
// LOGIN / LOGOUT
// =============================================================================

// Login stores a fresh token plus profile and persists the session.
// This is the single mutator for establishing a session.
func (m *Manager) Login(token string, user *model.User, mode Mode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.token = token
	m.user = user
	m.mode = mode
	m.createdAt = time.Now()
	m.locked = false

	return m.persistLocked()
}

// Logout clears the session in memory and removes the session file.
// Called both for explicit logout and when the backend rejects the token.
func (m *Manager) Logout() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.token = ""
	m.user = nil
	m.mode = ModeUser
	m.locked = false
	m.lockSecret = ""

	if err := os.Remove(m.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

// =============================================================================
// USER PROFILE
// =============================================================================

// User returns the cached user profile, or nil when logged out.
func (m *Manager) User() *model.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

// SetUser refreshes the cached profile (after a profile edit) and persists.
func (m *Manager) SetUser(user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = user
	if m.token == "" {
		return nil
	}
	return m.persistLocked()
}

// Mode returns the login mode chosen at sign-in.
func (m *Manager) Mode() Mode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mode
}

// IsAdmin reports whether the cached profile has admin rights.
func (m *Manager) IsAdmin() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.user != nil && m.user.IsAdmin
}

// =============================================================================
// PERSISTENCE
// =============================================================================

// persistLocked writes the session file. Caller must hold m.mu.
func (m *Manager) persistLocked() error {
	enc, err := m.keystore.Encrypt([]byte(m.token))
	if err != nil {
		return fmt.Errorf("failed to encrypt session token: %w", err)
	}

	p := persisted{
		EncToken:   enc,
		User:       m.user,
		Mode:       m.mode,
		CreatedAt:  m.createdAt,
		LockSecret: m.lockSecret,
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	// RELIABILITY: Atomic write with fsync prevents data loss on crash
	// SECURITY: 0600 - the file holds the (encrypted) token
	if err := util.AtomicWriteFile(m.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

// load restores the session from disk. Missing file means logged out. A
// corrupt or undecryptable file is treated the same; the user just logs in
// again.
func (m *Manager) load() error {
	data, err := os.ReadFile(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read session file: %w", err)
	}

	var p persisted
	if err := json.Unmarshal(data, &p); err != nil {
		return nil
	}

	token, err := m.keystore.Decrypt(p.EncToken)
	if err != nil {
		return nil
	}

	m.token = string(token)
	m.user = p.User
	m.mode = p.Mode
	if m.mode == "" {
		m.mode = ModeUser
	}
	m.createdAt = p.CreatedAt
	m.lockSecret = p.LockSecret
	m.locked = p.LockSecret != ""
	return nil
}
