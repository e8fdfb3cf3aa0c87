// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - One-shot question command handler for the veta CLI.
//
// Command: ask
// Short:   Ask the assistant a single question
//
// Examples:
//   veta ask "what is a goroutine?"
//   veta ask --agent strict "prove this loop terminates"
//   veta ask --conversation abc123 "and what about channels?"
package cli

import (
	"context"
	"os"
	"strings"

	chatmgr "github.com/askveta/veta-tui/internal/chat"
	"github.com/askveta/veta-tui/internal/storage"
)

// HandleAsk sends a single message and prints the reply.
func HandleAsk(args Args) {
	if strings.TrimSpace(args.Query) == "" {
		printError("usage: veta ask \"question\"")
		os.Exit(1)
	}

	rt, err := newRuntime()
	if err != nil {
		printError("%v", err)
		os.Exit(1)
	}
	rt.requireAuth()

	agent := args.Agent
	if agent == "" {
		agent = rt.cfg.Chat.DefaultAgent
	}

	cache := openCache()
	if cache != nil {
		defer cache.Close()
	}
	manager := newChatManager(rt, cache, agent)

	ctx := context.Background()
	if args.Conversation != "" {
		if err := manager.LoadConversation(ctx, args.Conversation); err != nil {
			printError("could not load conversation %s: %v", args.Conversation, err)
			os.Exit(1)
		}
	}

	result, err := manager.SendMessage(ctx, args.Query)
	if err != nil {
		printError("send failed: %v", err)
		os.Exit(1)
	}

	printMarkdown(result.Reply.Content)
	if !args.Quiet && args.Conversation == "" {
		printLabel("conversation:", result.ConversationID)
	}
}

// openCache opens the local history cache, or returns nil when unavailable.
// Caching is best-effort everywhere; a broken cache never blocks a send.
func openCache() *storage.Cache {
	path, err := storage.DefaultPath()
	if err != nil {
		return nil
	}
	cache, err := storage.Open(path)
	if err != nil {
		return nil
	}
	return cache
}

func newChatManager(rt *runtime, cache *storage.Cache, agent string) *chatmgr.Manager {
	if cache == nil {
		return chatmgr.NewManager(rt.client, nil, agent)
	}
	return chatmgr.NewManager(rt.client, cache, agent)
}
