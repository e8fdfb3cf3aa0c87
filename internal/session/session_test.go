// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askveta/veta-tui/internal/model"
)

func newTestManager(t *testing.T) (*Manager, string) {
	t.Helper()
	dir := t.TempDir()
	ks, err := OpenKeystore(filepath.Join(dir, "session.key"))
	require.NoError(t, err)
	path := filepath.Join(dir, "session.json")
	m, err := NewManager(path, ks)
	require.NoError(t, err)
	return m, path
}

func TestKeystoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	keyPath := filepath.Join(dir, "session.key")

	ks, err := OpenKeystore(keyPath)
	require.NoError(t, err)

	enc, err := ks.Encrypt([]byte("bearer-token-value"))
	require.NoError(t, err)
	assert.NotContains(t, enc, "bearer-token-value")

	dec, err := ks.Decrypt(enc)
	require.NoError(t, err)
	assert.Equal(t, "bearer-token-value", string(dec))

	// Keyfile must be 0600.
	info, err := os.Stat(keyPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	// Reopening the keystore must decrypt values sealed earlier.
	ks2, err := OpenKeystore(keyPath)
	require.NoError(t, err)
	dec2, err := ks2.Decrypt(enc)
	require.NoError(t, err)
	assert.Equal(t, "bearer-token-value", string(dec2))
}

func TestKeystoreDecryptCorrupt(t *testing.T) {
	ks, err := OpenKeystore(filepath.Join(t.TempDir(), "k"))
	require.NoError(t, err)

	_, err = ks.Decrypt("!!!not-base64!!!")
	assert.Error(t, err)

	_, err = ks.Decrypt("c2hvcnQ=") // valid base64, shorter than a nonce
	assert.ErrorIs(t, err, ErrCiphertextTooShort)
}

func TestLoginPersistsAndRestores(t *testing.T) {
	dir := t.TempDir()
	ks, err := OpenKeystore(filepath.Join(dir, "session.key"))
	require.NoError(t, err)
	path := filepath.Join(dir, "session.json")

	m, err := NewManager(path, ks)
	require.NoError(t, err)
	assert.False(t, m.IsAuthenticated())

	user := &model.User{ID: 1, Username: "alice", Email: "alice@example.edu", IsAdmin: true}
	require.NoError(t, m.Login("tok-123", user, ModeAdmin))

	tok, err := m.Token()
	require.NoError(t, err)
	assert.Equal(t, "tok-123", tok)
	assert.True(t, m.IsAdmin())
	assert.Equal(t, ModeAdmin, m.Mode())

	// Token must not appear in the clear on disk.
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "tok-123")

	// A new manager over the same files restores the session.
	m2, err := NewManager(path, ks)
	require.NoError(t, err)
	assert.True(t, m2.IsAuthenticated())
	tok2, err := m2.Token()
	require.NoError(t, err)
	assert.Equal(t, "tok-123", tok2)
	require.NotNil(t, m2.User())
	assert.Equal(t, "alice", m2.User().Username)
}

func TestLogoutClearsEverything(t *testing.T) {
	m, path := newTestManager(t)
	require.NoError(t, m.Login("tok", &model.User{Username: "bob"}, ModeUser))

	require.NoError(t, m.Logout())
	assert.False(t, m.IsAuthenticated())
	assert.Nil(t, m.User())

	_, err := m.Token()
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Logout when already logged out is not an error.
	require.NoError(t, m.Logout())
}

func TestCorruptSessionFileMeansLoggedOut(t *testing.T) {
	dir := t.TempDir()
	ks, err := OpenKeystore(filepath.Join(dir, "session.key"))
	require.NoError(t, err)
	path := filepath.Join(dir, "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{garbage"), 0600))

	m, err := NewManager(path, ks)
	require.NoError(t, err)
	assert.False(t, m.IsAuthenticated())
}

func TestDifferentKeystoreCannotRestore(t *testing.T) {
	dir := t.TempDir()
	ks1, err := OpenKeystore(filepath.Join(dir, "key1"))
	require.NoError(t, err)
	path := filepath.Join(dir, "session.json")

	m, err := NewManager(path, ks1)
	require.NoError(t, err)
	require.NoError(t, m.Login("tok", nil, ModeUser))

	ks2, err := OpenKeystore(filepath.Join(dir, "key2"))
	require.NoError(t, err)
	m2, err := NewManager(path, ks2)
	require.NoError(t, err)
	assert.False(t, m2.IsAuthenticated(), "foreign keystore must not restore the token")
}

func TestTOTPLockLifecycle(t *testing.T) {
	m, _ := newTestManager(t)

	// Lock requires an authenticated session.
	_, err := m.EnableLock("alice")
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	require.NoError(t, m.Login("tok", &model.User{Username: "alice"}, ModeUser))
	url, err := m.EnableLock("alice")
	require.NoError(t, err)
	assert.Contains(t, url, "otpauth://")

	// Unlock with a wrong code fails.
	lockedErr := func() error {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.locked = true
		return nil
	}()
	require.NoError(t, lockedErr)
	assert.ErrorIs(t, m.Unlock("000000"), ErrInvalidCode)
	assert.True(t, m.IsLocked())

	_, err = m.Token()
	assert.ErrorIs(t, err, ErrSessionLocked)
}

func TestUnlockWithoutLockIsNoop(t *testing.T) {
	m, _ := newTestManager(t)
	require.NoError(t, m.Login("tok", nil, ModeUser))
	assert.NoError(t, m.Unlock("123456"))

	assert.ErrorIs(t, m.DisableLock("123456"), ErrLockNotEnabled)
}

func TestSetUserPersists(t *testing.T) {
	dir := t.TempDir()
	ks, err := OpenKeystore(filepath.Join(dir, "session.key"))
	require.NoError(t, err)
	path := filepath.Join(dir, "session.json")

	m, err := NewManager(path, ks)
	require.NoError(t, err)
	require.NoError(t, m.Login("tok", &model.User{Username: "old"}, ModeUser))
	require.NoError(t, m.SetUser(&model.User{Username: "new", Email: "new@example.edu"}))

	m2, err := NewManager(path, ks)
	require.NoError(t, err)
	require.NotNil(t, m2.User())
	assert.Equal(t, "new", m2.User().Username)
}

func TestTokenErrors(t *testing.T) {
	m, _ := newTestManager(t)
	_, err := m.Token()
	assert.True(t, errors.Is(err, ErrNotAuthenticated))
}
