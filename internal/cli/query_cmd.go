// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// query_cmd.go - Knowledge base Q&A command handler for the veta CLI.
//
// Command: query
// Short:   Ask a question against the uploaded documents
//
// Examples:
//   veta query "what does chapter 2 say about recursion?"
//   veta query -k 10 "summarize the grading policy"
//   veta query --json "list the exam dates"
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/askveta/veta-tui/internal/api"
)

// HandleQuery runs a retrieval-augmented question against the knowledge base.
func HandleQuery(args Args) {
	if strings.TrimSpace(args.Query) == "" {
		printError("usage: veta query \"question\"")
		os.Exit(1)
	}

	rt, err := newRuntime()
	if err != nil {
		printError("%v", err)
		os.Exit(1)
	}
	rt.requireAuth()

	result, err := rt.client.Query(context.Background(), api.QueryRequest{
		Question:       args.Query,
		TopK:           args.TopK,
		ConversationID: args.Conversation,
	})
	if err != nil {
		printError("query failed: %v", err)
		os.Exit(1)
	}

	if args.JSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			printError("could not encode result: %v", err)
			os.Exit(1)
		}
		fmt.Println(string(data))
		return
	}

	printMarkdown(result.Answer)

	if args.Verbose && len(result.RelevantChunks) > 0 {
		fmt.Println()
		printLabel("sources:", "")
		for _, chunk := range result.RelevantChunks {
			fmt.Printf("  [%.2f] %s\n", chunk.Score, chunk.Source)
		}
	}
}
