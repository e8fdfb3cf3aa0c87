// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// docs_cmd.go - Knowledge base document commands for the veta CLI.
//
// Command: docs
// Short:   Manage knowledge base documents
//
// Examples:
//   veta docs list
//   veta docs upload lecture-notes.pdf
//   veta docs status TASK_ID
//   veta docs rename DOC_ID "Week 3 notes"
//   veta docs delete DOC_ID
//   veta docs watch ~/veta-inbox
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/askveta/veta-tui/internal/docs"
)

// HandleDocs routes docs subcommands.
func HandleDocs(args Args) {
	rt, err := newRuntime()
	if err != nil {
		printError("%v", err)
		os.Exit(1)
	}
	rt.requireAuth()

	maxBytes := int64(rt.cfg.KB.MaxUploadMB) << 20
	registry := docs.NewRegistry(rt.client, nil, maxBytes)
	ctx := context.Background()

	switch args.Subcommand {
	case "", "list", "ls":
		docsList(ctx, registry)
	case "upload", "add":
		docsUpload(ctx, rt, registry, args)
	case "status":
		docsStatus(ctx, rt, args)
	case "rename":
		docsRename(ctx, registry, args)
	case "delete", "rm":
		docsDelete(ctx, registry, args)
	case "watch":
		docsWatch(rt, registry, args)
	default:
		printError("unknown docs subcommand %q", args.Subcommand)
		os.Exit(1)
	}
}

func docsList(ctx context.Context, registry *docs.Registry) {
	if err := registry.Refresh(ctx); err != nil {
		printError("could not list documents: %v", err)
		os.Exit(1)
	}
	list := registry.Documents()
	if len(list) == 0 {
		printInfo("no documents yet; veta docs upload FILE")
		return
	}
	fmt.Printf("%-36s %-12s %7s  %s\n", "ID", "STATUS", "CHUNKS", "NAME")
	for _, d := range list {
		fmt.Printf("%-36s %-12s %7d  %s\n", d.ID, d.Status, d.ChunkCount, d.DisplayName())
	}
}

func docsUpload(ctx context.Context, rt *runtime, registry *docs.Registry, args Args) {
	if len(args.Raw) == 0 {
		printError("usage: veta docs upload FILE")
		os.Exit(1)
	}
	path := args.Raw[0]

	result, err := registry.Upload(ctx, path)
	if err != nil {
		switch {
		case errors.Is(err, docs.ErrUnsupportedType):
			printError("unsupported file type: only .txt, .pdf, .docx and .md are accepted")
		case errors.Is(err, docs.ErrFileTooLarge):
			printError("file too large: the limit is %dMB", rt.cfg.KB.MaxUploadMB)
		default:
			printError("upload failed: %v", err)
		}
		os.Exit(1)
	}

	printSuccess("uploaded %s (%s)", filepath.Base(path), result.Status)
	if id := result.IngestionID(); id != "" && !result.Status.IsTerminal() {
		followTask(ctx, rt, id)
	}
}

// followTask polls an ingestion task on the configured cadence until it
// reaches a terminal state or the configured age bound expires.
func followTask(ctx context.Context, rt *runtime, taskID string) {
	interval := time.Duration(rt.cfg.KB.PollIntervalSecs) * time.Second
	deadline := time.Now().Add(time.Duration(rt.cfg.KB.TaskTimeoutMins) * time.Minute)

	printInfo("processing (task %s)...", taskID)
	for time.Now().Before(deadline) {
		time.Sleep(interval)

		status, err := rt.client.TaskStatus(ctx, taskID)
		if err != nil {
			// Transient failure; keep polling until the age bound.
			continue
		}
		if status.Status.IsTerminal() {
			if status.Status == "failed" {
				printError("ingestion failed")
			} else {
				printSuccess("processed")
			}
			return
		}
	}
	printInfo("still processing; check later with: veta docs status %s", taskID)
}

func docsStatus(ctx context.Context, rt *runtime, args Args) {
	if len(args.Raw) == 0 {
		printError("usage: veta docs status TASK_ID")
		os.Exit(1)
	}
	status, err := rt.client.TaskStatus(ctx, args.Raw[0])
	if err != nil {
		printError("could not fetch task status: %v", err)
		os.Exit(1)
	}
	printLabel("task:", status.TaskID)
	printLabel("status:", string(status.Status))
}

func docsRename(ctx context.Context, registry *docs.Registry, args Args) {
	if len(args.Raw) < 2 {
		printError("usage: veta docs rename DOC_ID NAME")
		os.Exit(1)
	}
	if err := registry.Refresh(ctx); err != nil {
		printError("could not load documents: %v", err)
		os.Exit(1)
	}
	if err := registry.Rename(ctx, args.Raw[0], args.Raw[1]); err != nil {
		if errors.Is(err, docs.ErrDocumentProcessing) {
			printError("document is still processing; try again once ingestion finishes")
		} else {
			printError("rename failed: %v", err)
		}
		os.Exit(1)
	}
	printSuccess("renamed")
}

func docsDelete(ctx context.Context, registry *docs.Registry, args Args) {
	if len(args.Raw) == 0 {
		printError("usage: veta docs delete DOC_ID")
		os.Exit(1)
	}
	if err := registry.Refresh(ctx); err != nil {
		printError("could not load documents: %v", err)
		os.Exit(1)
	}
	if err := registry.Delete(ctx, args.Raw[0]); err != nil {
		if errors.Is(err, docs.ErrDocumentProcessing) {
			printError("document is still processing; try again once ingestion finishes")
		} else {
			printError("delete failed: %v", err)
		}
		os.Exit(1)
	}
	printSuccess("deleted")
}

// docsWatch auto-uploads files dropped into a directory until interrupted.
func docsWatch(rt *runtime, registry *docs.Registry, args Args) {
	dir := rt.cfg.KB.WatchDir
	if len(args.Raw) > 0 {
		dir = args.Raw[0]
	}
	if dir == "" {
		printError("no directory given and kb.watch_dir is not configured")
		os.Exit(1)
	}

	watcher, err := docs.NewWatcher(registry, dir)
	if err != nil {
		printError("could not watch %s: %v", dir, err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := watcher.Start(ctx); err != nil {
		printError("could not watch %s: %v", dir, err)
		os.Exit(1)
	}
	printInfo("watching %s; drop files to upload them. Ctrl+C to stop.", dir)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	fmt.Println()
	if err := watcher.Close(); err != nil {
		printError("watcher shutdown: %v", err)
	}
}
