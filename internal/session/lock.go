// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"errors"
	"fmt"

	"github.com/pquerna/otp/totp"
)

// Optional local TOTP lock on the stored session. When enabled, the session
// file can be restored only after a valid authenticator code; without a
// code the user falls back to a fresh backend login. This is a local
// convenience guard, not a second backend factor.

var (
	// ErrLockNotEnabled is returned when unlocking a session with no lock.
	ErrLockNotEnabled = errors.New("session lock is not enabled")

	// ErrInvalidCode is returned for a wrong TOTP code.
	ErrInvalidCode = errors.New("invalid verification code")
)

// EnableLock generates a TOTP secret for the session and persists it.
// Returns the otpauth:// provisioning URL for the user's authenticator app.
func (m *Manager) EnableLock(accountName string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.token == "" {
		return "", ErrNotAuthenticated
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "veta",
		AccountName: accountName,
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate TOTP secret: %w", err)
	}

	m.lockSecret = key.Secret()
	if err := m.persistLocked(); err != nil {
		m.lockSecret = ""
		return "", err
	}
	return key.URL(), nil
}

// DisableLock removes the TOTP lock from the session.
func (m *Manager) DisableLock(code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.lockSecret == "" {
		return ErrLockNotEnabled
	}
	if !totp.Validate(code, m.lockSecret) {
		return ErrInvalidCode
	}
	m.lockSecret = ""
	m.locked = false
	return m.persistLocked()
}

// Unlock verifies a TOTP code and makes the restored token available.
func (m *Manager) Unlock(code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.locked {
		return nil
	}
	if m.lockSecret == "" {
		return ErrLockNotEnabled
	}
	if !totp.Validate(code, m.lockSecret) {
		return ErrInvalidCode
	}
	m.locked = false
	return nil
}
