// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive chat command handler for the veta CLI.
//
// USABILITY: Markdown rendering and input history for a pleasant REPL
//
// Command: chat
// Short:   Start an interactive chat session
//
// Examples:
//   veta chat                    Chat with the default persona
//   veta chat --agent strict     Chat with a specific persona
//
// Interactive Commands (during chat):
//   /help, /h           Show available commands
//   /new, /n            Start a new conversation
//   /agents             List available personas
//   /agent NAME         Switch persona (next conversation)
//   /list, /l           List conversations
//   /load ID            Load a conversation
//   /recent             Show the recent exchanges of this conversation
//   /export [md|json]   Export the current transcript to stdout
//   /quit, /q           Exit chat
//   Ctrl+C / Ctrl+D     Exit chat
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	chatmgr "github.com/askveta/veta-tui/internal/chat"
	"github.com/askveta/veta-tui/internal/config"
	"github.com/askveta/veta-tui/internal/model"
	"github.com/askveta/veta-tui/internal/storage"
)

// chatREPL bundles the line editor with its history file.
type chatREPL struct {
	line        *liner.State
	historyFile string
}

func newChatREPL() *chatREPL {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	dir, err := config.Dir()
	if err != nil {
		dir = os.TempDir()
	}
	repl := &chatREPL{
		line:        line,
		historyFile: filepath.Join(dir, "chat_history"),
	}
	if f, err := os.Open(repl.historyFile); err == nil {
		repl.line.ReadHistory(f)
		f.Close()
	}
	return repl
}

func (r *chatREPL) close() {
	if f, err := os.Create(r.historyFile); err == nil {
		r.line.WriteHistory(f)
		f.Close()
	}
	r.line.Close()
}

// HandleChat runs the interactive chat REPL.
func HandleChat(args Args) {
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
	boot := chatmgr.Bootstrap(ctx, rt.client)
	manager.SetDirectory(boot.Conversations)
	manager.SetAgentType(chatmgr.PickAgent(boot.Agents, agent))
	if boot.Degraded && !args.Quiet {
		printInfo("some startup data could not be loaded; using defaults")
	}

	if !args.Quiet {
		printInfo("veta chat - %s persona. /help for commands, /quit to exit.", manager.AgentType())
	}

	repl := newChatREPL()
	defer repl.close()

	for {
		input, err := repl.line.Prompt("> ")
		if err != nil {
			// Ctrl+C or Ctrl+D ends the session.
			if errors.Is(err, liner.ErrPromptAborted) {
				fmt.Println()
			}
			return
		}
		if strings.TrimSpace(input) == "" {
			continue
		}
		repl.line.AppendHistory(input)

		if strings.HasPrefix(input, "/") {
			if quit := runChatCommand(ctx, manager, boot.Agents, rt.cfg.Chat.HistoryWindow, input); quit {
				return
			}
			continue
		}

		result, err := manager.SendMessage(ctx, input)
		if err != nil {
			printError("send failed: %v", err)
			continue
		}
		printMarkdown(result.Reply.Content)
	}
}

// runChatCommand handles a /command line. Returns true to exit the REPL.
func runChatCommand(ctx context.Context, manager *chatmgr.Manager, agents []model.Agent, window int, input string) bool {
	parts := strings.Fields(input)
	cmd := strings.ToLower(strings.TrimPrefix(parts[0], "/"))
	args := parts[1:]

	switch cmd {
	case "quit", "q", "exit":
		return true

	case "help", "h":
		fmt.Println(`Commands:
  /new, /n            Start a new conversation
  /agents             List available personas
  /agent NAME         Switch persona (applies to the next conversation)
  /list, /l           List conversations
  /load ID            Load a conversation
  /recent             Show the recent exchanges of this conversation
  /export [md|json]   Export the current transcript to stdout
  /quit, /q           Exit`)

	case "new", "n":
		manager.NewConversation()
		printInfo("started a new conversation")

	case "agents":
		for _, a := range agents {
			marker := " "
			if a.AgentType == manager.AgentType() {
				marker = "*"
			}
			fmt.Printf("%s %-16s %s\n", marker, a.AgentType, agentDisplayName(a))
		}

	case "agent":
		if len(args) == 0 {
			printLabel("agent:", manager.AgentType())
			break
		}
		manager.SetAgentType(chatmgr.PickAgent(agents, args[0]))
		printInfo("agent: %s", manager.AgentType())

	case "list", "l":
		if err := manager.RefreshDirectory(ctx); err != nil {
			printError("could not list conversations: %v", err)
			break
		}
		for _, meta := range manager.Directory() {
			fmt.Printf("%-36s %s\n", meta.ID, meta.DisplayTitle())
		}

	case "load":
		if len(args) == 0 {
			printError("usage: /load CONVERSATION_ID")
			break
		}
		if err := manager.LoadConversation(ctx, args[0]); err != nil {
			printError("could not load conversation: %v", err)
			break
		}
		conv := manager.Conversation()
		printInfo("loaded %q (%d messages)", conv.GetTitle(), conv.MessageCount())

	case "recent":
		recent := manager.Conversation().RecentExchanges(window)
		if len(recent) == 0 {
			printInfo("no messages yet")
			break
		}
		for _, msg := range recent {
			printLabel(msg.Role.DisplayName()+":", msg.Content)
		}

	case "export":
		format := "md"
		if len(args) > 0 {
			format = strings.ToLower(args[0])
		}
		conv := manager.Conversation()
		switch format {
		case "json":
			data, err := storage.ExportJSON(conv)
			if err != nil {
				printError("export failed: %v", err)
				break
			}
			fmt.Println(string(data))
		default:
			fmt.Print(storage.ExportMarkdown(conv))
		}

	default:
		printError("unknown command %q; /help lists commands", input)
	}
	return false
}
