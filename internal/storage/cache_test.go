// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askveta/veta-tui/internal/model"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func recordedConv(t *testing.T, c *Cache) *model.Conversation {
	t.Helper()
	conv := model.NewConversation("default")
	conv.ID = "conv-1"
	user := conv.AddUserMessage("what is recursion?")
	user.MarkSent()
	reply := conv.AddAssistantMessage("Recursion is...")
	require.NoError(t, c.RecordExchange(conv, user, reply))
	return conv
}

func TestRecordExchangeAndLoad(t *testing.T) {
	c := newTestCache(t)
	recordedConv(t, c)

	loaded, err := c.Load("conv-1")
	require.NoError(t, err)
	assert.Equal(t, "conv-1", loaded.ID)
	assert.Equal(t, "default", loaded.AgentType)
	require.Equal(t, 2, loaded.MessageCount())
	assert.Equal(t, model.RoleUser, loaded.Messages[0].Role)
	assert.Equal(t, "what is recursion?", loaded.Messages[0].Content)
	assert.Equal(t, model.RoleAssistant, loaded.Messages[1].Role)
	// Cached messages are always in the sent state.
	assert.Equal(t, model.DeliverySent, loaded.Messages[0].Delivery)
}

func TestRecordExchangePreservesOrderAcrossCalls(t *testing.T) {
	c := newTestCache(t)
	conv := recordedConv(t, c)

	u2 := conv.AddUserMessage("and iteration?")
	u2.MarkSent()
	a2 := conv.AddAssistantMessage("Iteration is...")
	require.NoError(t, c.RecordExchange(conv, u2, a2))

	loaded, err := c.Load("conv-1")
	require.NoError(t, err)
	require.Equal(t, 4, loaded.MessageCount())
	assert.Equal(t, "and iteration?", loaded.Messages[2].Content)
}

func TestRecordExchangeSkipsUnassignedConversation(t *testing.T) {
	c := newTestCache(t)
	conv := model.NewConversation("default")
	user := conv.AddUserMessage("q")
	reply := conv.AddAssistantMessage("a")

	// No backend id yet: nothing to key the cache rows on.
	require.NoError(t, c.RecordExchange(conv, user, reply))
	metas, err := c.List()
	require.NoError(t, err)
	assert.Empty(t, metas)
}

func TestRecordHistoryReplaces(t *testing.T) {
	c := newTestCache(t)
	conv := recordedConv(t, c)

	// Backend history wins wholesale over prior cached rows.
	fresh := model.NewConversation("default")
	fresh.ID = conv.ID
	fresh.ReplaceMessages([]*model.Message{
		model.NewAssistantMessage("only this survives"),
	})
	require.NoError(t, c.RecordHistory(fresh))

	loaded, err := c.Load(conv.ID)
	require.NoError(t, err)
	require.Equal(t, 1, loaded.MessageCount())
	assert.Equal(t, "only this survives", loaded.Messages[0].Content)
}

func TestForgetConversationCascades(t *testing.T) {
	c := newTestCache(t)
	conv := recordedConv(t, c)

	require.NoError(t, c.ForgetConversation(conv.ID))
	_, err := c.Load(conv.ID)
	assert.ErrorIs(t, err, ErrNotCached)

	metas, err := c.List()
	require.NoError(t, err)
	assert.Empty(t, metas)
}

func TestListOrdering(t *testing.T) {
	c := newTestCache(t)
	for _, id := range []string{"conv-a", "conv-b"} {
		conv := model.NewConversation("default")
		conv.ID = id
		u := conv.AddUserMessage("q " + id)
		u.MarkSent()
		a := conv.AddAssistantMessage("a")
		require.NoError(t, c.RecordExchange(conv, u, a))
		time.Sleep(5 * time.Millisecond) // distinct updated_at for ordering
	}

	metas, err := c.List()
	require.NoError(t, err)
	require.Len(t, metas, 2)
	// Most recently updated first.
	assert.Equal(t, "conv-b", metas[0].ID)
}

func TestSearch(t *testing.T) {
	c := newTestCache(t)
	recordedConv(t, c)

	hits, err := c.Search("recursion")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "conv-1", hits[0].ID)

	none, err := c.Search("astrophysics")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestExportMarkdown(t *testing.T) {
	conv := model.NewConversation("strict")
	conv.ID = "conv-1"
	conv.AddUserMessage("What is a monad?")
	conv.AddAssistantMessage("A monad is...")

	md := ExportMarkdown(conv)
	assert.Contains(t, md, "# What is a monad?")
	assert.Contains(t, md, "## You")
	assert.Contains(t, md, "## Assistant")
	assert.Contains(t, md, "A monad is...")
}

func TestExportJSON(t *testing.T) {
	conv := model.NewConversation("default")
	conv.ID = "conv-9"
	conv.AddUserMessage("q")
	conv.AddAssistantMessage("a")

	data, err := ExportJSON(conv)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "conv-9", out["id"])
	msgs := out["messages"].([]any)
	assert.Len(t, msgs, 2)
}
