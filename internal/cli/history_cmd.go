// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// history_cmd.go - Local history cache commands for the veta CLI.
//
// Command: history
// Short:   Browse the local conversation cache
//
// Examples:
//   veta history list
//   veta history search "binary search"
//   veta history export CONV_ID --format json
//
// The cache is written as a side effect of chatting; these commands never
// touch the network.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/askveta/veta-tui/internal/model"
	"github.com/askveta/veta-tui/internal/storage"
)

// HandleHistory routes history subcommands against the local cache.
func HandleHistory(args Args) {
	path, err := storage.DefaultPath()
	if err != nil {
		printError("could not resolve cache path: %v", err)
		os.Exit(1)
	}
	cache, err := storage.Open(path)
	if err != nil {
		printError("could not open history cache: %v", err)
		os.Exit(1)
	}
	defer cache.Close()

	switch args.Subcommand {
	case "", "list", "ls":
		historyList(cache)
	case "search":
		historySearch(cache, args)
	case "export":
		historyExport(cache, args)
	default:
		printError("unknown history subcommand %q", args.Subcommand)
		os.Exit(1)
	}
}

func historyList(cache *storage.Cache) {
	metas, err := cache.List()
	if err != nil {
		printError("could not list history: %v", err)
		os.Exit(1)
	}
	printMetas(metas)
}

func historySearch(cache *storage.Cache, args Args) {
	query := strings.Join(positionalArgs(args.Raw), " ")
	if strings.TrimSpace(query) == "" {
		printError("usage: veta history search TEXT")
		os.Exit(1)
	}
	metas, err := cache.Search(query)
	if err != nil {
		printError("search failed: %v", err)
		os.Exit(1)
	}
	printMetas(metas)
}

func historyExport(cache *storage.Cache, args Args) {
	positional := positionalArgs(args.Raw)
	if len(positional) == 0 {
		printError("usage: veta history export CONV_ID [--format md|json]")
		os.Exit(1)
	}
	conv, err := cache.Load(positional[0])
	if err != nil {
		printError("could not load conversation: %v", err)
		os.Exit(1)
	}

	switch strings.ToLower(args.ConfigVal) {
	case "json":
		data, err := storage.ExportJSON(conv)
		if err != nil {
			printError("export failed: %v", err)
			os.Exit(1)
		}
		fmt.Println(string(data))
	case "", "md", "markdown":
		fmt.Print(storage.ExportMarkdown(conv))
	default:
		printError("unknown format %q: use md or json", args.ConfigVal)
		os.Exit(1)
	}
}

func printMetas(metas []model.ConversationMeta) {
	if len(metas) == 0 {
		printInfo("no cached conversations yet")
		return
	}
	for _, meta := range metas {
		fmt.Printf("%-36s %-16s %s\n",
			meta.ID, meta.UpdatedAt.Format("2006-01-02 15:04"), meta.DisplayTitle())
	}
}

// positionalArgs strips the --format flag and its value, leaving just the
// positional arguments.
func positionalArgs(raw []string) []string {
	var out []string
	for i := 0; i < len(raw); i++ {
		if raw[i] == "--format" {
			i++
			continue
		}
		out = append(out, raw[i])
	}
	return out
}
