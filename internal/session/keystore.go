// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/crypto/pbkdf2"

	"github.com/askveta/veta-tui/internal/util"
)

// SECURITY: The bearer token is encrypted at rest with AES-256-GCM. The
// encryption key is derived with PBKDF2-SHA-256 from random key material
// held in a 0600 keyfile next to the session file. This protects the token
// from casual reads (backups, shared dotfile syncs); an attacker with the
// user's filesystem access can still recover it, which matches the threat
// model of a local CLI credential store.

const (
	keySize          = 32 // AES-256
	saltSize         = 32
	pbkdf2Iterations = 600000 // OWASP 2023 recommendation for SHA-256
)

var (
	// ErrCiphertextTooShort indicates a truncated or corrupt encrypted value.
	ErrCiphertextTooShort = errors.New("ciphertext too short")
)

// Keystore derives and caches the AES-GCM cipher for token encryption.
type Keystore struct {
	gcm cipher.AEAD
}

// DefaultKeyPath returns the keyfile path under ~/.veta/.
func DefaultKeyPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".veta", "session.key"), nil
}

// OpenKeystore loads the keyfile at path, creating fresh key material on
// first use. The keyfile holds salt followed by random key material; the
// actual AES key is PBKDF2-derived from both.
func OpenKeystore(path string) (*Keystore, error) {
	material, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		material, err = createKeyfile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open keystore: %w", err)
	}
	if len(material) != saltSize+keySize {
		return nil, fmt.Errorf("keystore file %s is corrupt (size %d)", path, len(material))
	}

	salt := material[:saltSize]
	secret := material[saltSize:]
	key := pbkdf2.Key(secret, salt, pbkdf2Iterations, keySize, sha256.New)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM cipher: %w", err)
	}
	return &Keystore{gcm: gcm}, nil
}

// createKeyfile generates salt + key material and writes it 0600.
func createKeyfile(path string) ([]byte, error) {
	material := make([]byte, saltSize+keySize)
	if _, err := io.ReadFull(rand.Reader, material); err != nil {
		return nil, fmt.Errorf("failed to generate key material: %w", err)
	}
	// RELIABILITY: Atomic write with fsync prevents data loss on crash
	if err := util.AtomicWriteFile(path, material, 0600); err != nil {
		return nil, fmt.Errorf("failed to write keyfile: %w", err)
	}
	return material, nil
}

// Encrypt seals plaintext and returns base64(nonce || ciphertext).
func (k *Keystore) Encrypt(plaintext []byte) (string, error) {
	nonce := make([]byte, k.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	sealed := k.gcm.Seal(nonce, nonce, plaintext, nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt.
func (k *Keystore) Decrypt(encoded string) ([]byte, error) {
	sealed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ciphertext: %w", err)
	}
	ns := k.gcm.NonceSize()
	if len(sealed) < ns {
		return nil, ErrCiphertextTooShort
	}
	plaintext, err := k.gcm.Open(nil, sealed[:ns], sealed[ns:], nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt: %w", err)
	}
	return plaintext, nil
}
