// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// summary_cmd.go - File summary command handler for the veta CLI.
//
// Command: summary
// Short:   Summarize a local file into key points
//
// Examples:
//   veta summary lecture-notes.pdf
//   veta summary --json syllabus.md
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/askveta/veta-tui/internal/docs"
)

// HandleSummary uploads a file for summarization and prints the points.
func HandleSummary(args Args) {
	if args.File == "" {
		printError("usage: veta summary FILE")
		os.Exit(1)
	}

	rt, err := newRuntime()
	if err != nil {
		printError("%v", err)
		os.Exit(1)
	}
	rt.requireAuth()

	// Same gate as uploads: reject bad files before any network traffic.
	maxBytes := int64(rt.cfg.KB.MaxUploadMB) << 20
	if err := docs.ValidateFile(args.File, maxBytes); err != nil {
		printError("%v", err)
		os.Exit(1)
	}

	f, err := os.Open(args.File)
	if err != nil {
		printError("could not open %s: %v", args.File, err)
		os.Exit(1)
	}
	defer f.Close()

	points, err := rt.client.Summarize(context.Background(), filepath.Base(args.File), f)
	if err != nil {
		printError("summary failed: %v", err)
		os.Exit(1)
	}

	if args.JSON {
		data, err := json.MarshalIndent(points, "", "  ")
		if err != nil {
			printError("could not encode summary: %v", err)
			os.Exit(1)
		}
		fmt.Println(string(data))
		return
	}

	if len(points) == 0 {
		printInfo("the backend returned an empty summary")
		return
	}
	for _, p := range points {
		fmt.Printf("  - %s\n", p)
	}
}
