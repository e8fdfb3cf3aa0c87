// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command routing for veta.
//
// CLI: Comprehensive help and examples for all commands
package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdLogin
	CmdLogout
	CmdRegister
	CmdResetPassword
	CmdLock
	CmdWhoami
	CmdAsk
	CmdChat
	CmdQuery
	CmdDocs
	CmdSummary
	CmdHistory
	CmdAdmin
	CmdConfig
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet   bool
	Verbose bool
	JSON    bool

	// Command-specific
	Agent        string // --agent NAME
	Conversation string // --conversation ID
	TopK         int    // --top-k N (query)
	Query        string
	File         string
	ConfigKey    string
	ConfigVal    string
	Subcommand   string

	// Raw args remaining after flag parsing
	Raw []string
}

const usageText = `veta - terminal client for your virtual teaching assistant

Veta talks to a teaching assistant platform over its REST API:
chat with an assistant persona, manage your knowledge base and
query it directly from the terminal.

Usage:
  veta                        Start TUI (default)
  veta login                  Sign in and store the session
  veta logout                 Sign out and clear the session
  veta register               Create a new account
  veta reset-password         Start (or confirm) a password reset
  veta lock [enable|disable]  TOTP lock on the stored session
  veta whoami                 Show the signed-in user
  veta ask "question"         Ask a single question
  veta chat                   Interactive chat REPL
  veta query "question"       Query the knowledge base directly
  veta docs [subcommand]      Knowledge base documents
  veta summary FILE           Summarize a local file
  veta history [subcommand]   Local conversation history
  veta admin [subcommand]     Administration (admin accounts only)
  veta config [show|set|path] Configuration
  veta version                Show version

Ask / Chat:
  veta ask "what is a goroutine?"
    --agent NAME              Assistant persona (default from config)
    --conversation ID         Continue an existing conversation
  veta chat
    --agent NAME              Assistant persona

Query:
  veta query "binary search invariants"
    --top-k N                 Number of passages to retrieve (default 5)

Docs Commands:
  veta docs list              List your documents
  veta docs upload FILE       Upload a document (.txt .pdf .docx .md, max 10MB)
  veta docs status TASK_ID    Show an ingestion task's status
  veta docs rename ID NAME    Set a display name
  veta docs delete ID         Delete a document
  veta docs watch [DIR]       Auto-upload files dropped into a directory

History Commands (local cache):
  veta history list           List cached conversations
  veta history search TEXT    Search cached transcripts
  veta history export ID      Export a transcript
    --format md|json          Export format (default: md)

Admin Commands:
  veta admin users            List users
  veta admin create-user      Create a user (prompts; --admin for admin role)
  veta admin set-admin ID BOOL Grant or revoke admin
  veta admin delete-user ID   Delete a user
  veta admin stats            Platform statistics
  veta admin docs             List all documents
  veta admin repair           Repair the vector database

Environment:
  VETA_BASE_URL               Backend base URL override
  VETA_DEFAULT_AGENT          Default persona override

Version: %s
`

// PrintUsage prints the usage/help text.
func PrintUsage() {
	fmt.Printf(usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("veta version %s\n", Version)
	fmt.Printf("  Git commit: %s\n", GitCommit)
	fmt.Printf("  Build date: %s\n", BuildDate)
}

// Parse parses os.Args and returns the command and parsed arguments.
func Parse() (Command, Args) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs parses the given arguments. Split out for testing.
func ParseArgs(argv []string) (Command, Args) {
	remaining, args := parseGlobalFlags(argv)

	if len(remaining) == 0 {
		return CmdTUI, args
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	args.Raw = remaining

	switch cmd {
	case "tui":
		return CmdTUI, args

	case "login":
		return CmdLogin, args

	case "logout":
		return CmdLogout, args

	case "register":
		return CmdRegister, args

	case "reset-password":
		if len(remaining) > 0 {
			args.Subcommand = strings.ToLower(remaining[0])
			args.Raw = remaining[1:]
		}
		return CmdResetPassword, args

	case "lock":
		if len(remaining) > 0 {
			args.Subcommand = strings.ToLower(remaining[0])
			args.Raw = remaining[1:]
		}
		return CmdLock, args

	case "whoami":
		return CmdWhoami, args

	case "ask":
		parseQueryArgs(&args, remaining)
		return CmdAsk, args

	case "chat":
		parseQueryArgs(&args, remaining)
		return CmdChat, args

	case "query":
		parseQueryArgs(&args, remaining)
		return CmdQuery, args

	case "docs", "documents", "kb":
		if len(remaining) > 0 {
			args.Subcommand = strings.ToLower(remaining[0])
			args.Raw = remaining[1:]
		}
		return CmdDocs, args

	case "summary", "summarize":
		if len(remaining) > 0 {
			args.File = remaining[0]
		}
		return CmdSummary, args

	case "history", "hist":
		if len(remaining) > 0 {
			args.Subcommand = strings.ToLower(remaining[0])
			args.Raw = remaining[1:]
		}
		parseHistoryFlags(&args, remaining)
		return CmdHistory, args

	case "admin":
		if len(remaining) > 0 {
			args.Subcommand = strings.ToLower(remaining[0])
			args.Raw = remaining[1:]
		}
		return CmdAdmin, args

	case "config", "cfg":
		parseConfigArgs(&args, remaining)
		return CmdConfig, args

	case "version", "ver", "-v", "--version":
		return CmdVersion, args

	case "help", "-h", "--help":
		return CmdHelp, args

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		return CmdHelp, args
	}
}

// parseGlobalFlags strips flags valid for every command.
func parseGlobalFlags(argv []string) ([]string, Args) {
	args := Args{TopK: 5}
	var remaining []string

	for i := 0; i < len(argv); i++ {
		switch argv[i] {
		case "-q", "--quiet":
			args.Quiet = true
		case "-v", "--verbose":
			args.Verbose = true
		case "--json":
			args.JSON = true
		default:
			remaining = append(remaining, argv[i])
		}
	}
	return remaining, args
}

// parseQueryArgs handles ask/chat/query flags; everything that is not a
// flag joins into the query text.
func parseQueryArgs(args *Args, argv []string) {
	var parts []string
	for i := 0; i < len(argv); i++ {
		switch argv[i] {
		case "-a", "--agent":
			if i+1 < len(argv) {
				i++
				args.Agent = argv[i]
			}
		case "-c", "--conversation":
			if i+1 < len(argv) {
				i++
				args.Conversation = argv[i]
			}
		case "-k", "--top-k":
			if i+1 < len(argv) {
				i++
				if n, err := strconv.Atoi(argv[i]); err == nil && n > 0 {
					args.TopK = n
				}
			}
		default:
			parts = append(parts, argv[i])
		}
	}
	args.Query = strings.Join(parts, " ")
}

func parseHistoryFlags(args *Args, argv []string) {
	for i := 0; i < len(argv); i++ {
		if argv[i] == "--format" && i+1 < len(argv) {
			args.ConfigVal = argv[i+1]
			i++
		}
	}
}

func parseConfigArgs(args *Args, argv []string) {
	if len(argv) == 0 {
		args.Subcommand = "show"
		return
	}
	args.Subcommand = strings.ToLower(argv[0])
	if args.Subcommand == "set" {
		if len(argv) > 1 {
			args.ConfigKey = argv[1]
		}
		if len(argv) > 2 {
			args.ConfigVal = argv[2]
		}
	}
}
