// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides the local conversation history cache.
//
// The cache is a SQLite database under ~/.veta/ mirroring exchanges as they
// succeed, so transcripts survive offline and can be exported. It is purely
// a cache: the backend remains the source of truth, and any row here can be
// rebuilt from a history fetch.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/askveta/veta-tui/internal/model"
)

// ErrNotCached indicates the conversation has no local rows.
var ErrNotCached = errors.New("conversation not in local cache")

// schema creates the cache tables.
const schema = `
CREATE TABLE IF NOT EXISTS conversations (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL DEFAULT '',
	agent_type TEXT NOT NULL DEFAULT '',
	updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	id              TEXT PRIMARY KEY,
	conversation_id TEXT NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
	seq             INTEGER NOT NULL,
	role            TEXT NOT NULL,
	content         TEXT NOT NULL,
	created_at      TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_messages_conversation
	ON messages(conversation_id, seq);
`

// Cache is the local history store. Implements the chat package's Recorder.
type Cache struct {
	db *sql.DB
}

// DefaultPath returns the cache database path under ~/.veta/.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".veta", "history.db"), nil
}

// Open opens (creating if needed) the cache database at path.
func Open(path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	// SQLite supports one writer at a time; a single connection avoids
	// SQLITE_BUSY under concurrent tea.Cmd goroutines.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize cache schema: %w", err)
	}
	return &Cache{db: db}, nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// =============================================================================
// WRITE-THROUGH (chat.Recorder)
// =============================================================================

// RecordExchange appends a successful user/assistant pair for conv.
func (c *Cache) RecordExchange(conv *model.Conversation, user, assistant *model.Message) error {
	if conv.ID == "" {
		return nil
	}
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := upsertConversation(tx, conv); err != nil {
		return err
	}

	var next int
	if err := tx.QueryRow(
		"SELECT COALESCE(MAX(seq), -1) + 1 FROM messages WHERE conversation_id = ?",
		conv.ID).Scan(&next); err != nil {
		return err
	}
	for i, msg := range []*model.Message{user, assistant} {
		if err := insertMessage(tx, conv.ID, next+i, msg); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// RecordHistory replaces all cached messages for conv with its current
// sequence. Used after a full history load; replace, never merge, matching
// the in-memory semantics.
func (c *Cache) RecordHistory(conv *model.Conversation) error {
	if conv.ID == "" {
		return nil
	}
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := upsertConversation(tx, conv); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM messages WHERE conversation_id = ?", conv.ID); err != nil {
		return err
	}
	for i, msg := range conv.Messages {
		if err := insertMessage(tx, conv.ID, i, msg); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ForgetConversation drops a conversation and its messages from the cache.
func (c *Cache) ForgetConversation(id string) error {
	_, err := c.db.Exec("DELETE FROM conversations WHERE id = ?", id)
	return err
}

func upsertConversation(tx *sql.Tx, conv *model.Conversation) error {
	_, err := tx.Exec(`
		INSERT INTO conversations (id, title, agent_type, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			agent_type = excluded.agent_type,
			updated_at = excluded.updated_at`,
		conv.ID, conv.GetTitle(), conv.AgentType, time.Now().UTC())
	return err
}

func insertMessage(tx *sql.Tx, convID string, seq int, msg *model.Message) error {
	_, err := tx.Exec(`
		INSERT INTO messages (id, conversation_id, seq, role, content, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING`,
		msg.ID, convID, seq, msg.Role.String(), msg.Content, msg.Timestamp.UTC())
	return err
}

// =============================================================================
// READ PATH
// =============================================================================

// List returns cached conversation metadata, most recently updated first.
func (c *Cache) List() ([]model.ConversationMeta, error) {
	rows, err := c.db.Query(`
		SELECT id, title, agent_type, updated_at
		FROM conversations ORDER BY updated_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var metas []model.ConversationMeta
	for rows.Next() {
		var meta model.ConversationMeta
		if err := rows.Scan(&meta.ID, &meta.Title, &meta.AgentType, &meta.UpdatedAt); err != nil {
			return nil, err
		}
		metas = append(metas, meta)
	}
	return metas, rows.Err()
}

// Load rebuilds a cached conversation by id.
func (c *Cache) Load(id string) (*model.Conversation, error) {
	conv := model.NewConversation("")
	conv.ID = id

	err := c.db.QueryRow(
		"SELECT title, agent_type FROM conversations WHERE id = ?", id).
		Scan(&conv.Title, &conv.AgentType)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotCached
	}
	if err != nil {
		return nil, err
	}

	rows, err := c.db.Query(`
		SELECT id, role, content, created_at
		FROM messages WHERE conversation_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []*model.Message
	for rows.Next() {
		var (
			msg  model.Message
			role string
		)
		if err := rows.Scan(&msg.ID, &role, &msg.Content, &msg.Timestamp); err != nil {
			return nil, err
		}
		msg.Role = model.Role(role)
		msg.Delivery = model.DeliverySent
		msgs = append(msgs, &msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	conv.ReplaceMessages(msgs)
	return conv, nil
}

// Search returns conversations whose cached messages contain the query.
func (c *Cache) Search(query string) ([]model.ConversationMeta, error) {
	rows, err := c.db.Query(`
		SELECT DISTINCT c.id, c.title, c.agent_type, c.updated_at
		FROM conversations c
		JOIN messages m ON m.conversation_id = c.id
		WHERE m.content LIKE '%' || ? || '%'
		ORDER BY c.updated_at DESC`, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var metas []model.ConversationMeta
	for rows.Next() {
		var meta model.ConversationMeta
		if err := rows.Scan(&meta.ID, &meta.Title, &meta.AgentType, &meta.UpdatedAt); err != nil {
			return nil, err
		}
		metas = append(metas, meta)
	}
	return metas, rows.Err()
}
