// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// admin_cmd.go - Administration command handlers for the veta CLI.
//
// Command: admin
// Short:   Administrative operations (admin accounts only)
//
// Examples:
//   veta admin users
//   veta admin delete-user 42
//   veta admin stats
//   veta admin docs
//   veta admin repair
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/askveta/veta-tui/internal/api"
)

// HandleAdmin routes admin subcommands.
func HandleAdmin(args Args) {
	rt, err := newRuntime()
	if err != nil {
		printError("%v", err)
		os.Exit(1)
	}
	rt.requireAuth()

	ctx := context.Background()
	switch args.Subcommand {
	case "", "users":
		adminUsers(ctx, rt)
	case "create-user":
		adminCreateUser(ctx, rt, args)
	case "set-admin":
		adminSetAdmin(ctx, rt, args)
	case "delete-user":
		adminDeleteUser(ctx, rt, args)
	case "stats":
		adminStats(ctx, rt)
	case "docs", "documents":
		adminDocs(ctx, rt, args)
	case "repair":
		adminRepair(ctx, rt)
	default:
		printError("unknown admin subcommand %q", args.Subcommand)
		os.Exit(1)
	}
}

// adminExit prints a useful explanation for permission failures and exits.
func adminExit(action string, err error) {
	if errors.Is(err, api.ErrForbidden) {
		printError("%s: admin privileges required", action)
	} else {
		printError("%s: %v", action, err)
	}
	os.Exit(1)
}

func adminUsers(ctx context.Context, rt *runtime) {
	users, err := rt.client.ListUsers(ctx)
	if err != nil {
		adminExit("could not list users", err)
	}
	fmt.Printf("%5s  %-20s %-30s %s\n", "ID", "USERNAME", "EMAIL", "ADMIN")
	for _, u := range users {
		admin := ""
		if u.IsAdmin {
			admin = "yes"
		}
		fmt.Printf("%5d  %-20s %-30s %s\n", u.ID, u.Username, u.Email, admin)
	}
}

func adminCreateUser(ctx context.Context, rt *runtime, args Args) {
	isAdmin := false
	for _, a := range args.Raw {
		if a == "--admin" {
			isAdmin = true
		}
	}

	username, err := promptLine("Username: ")
	if err != nil {
		printError("could not read username: %v", err)
		os.Exit(1)
	}
	email, err := promptLine("Email: ")
	if err != nil {
		printError("could not read email: %v", err)
		os.Exit(1)
	}
	password, err := promptPassword("Password: ")
	if err != nil {
		printError("could not read password: %v", err)
		os.Exit(1)
	}
	if username == "" || email == "" || password == "" {
		printError("username, email and password are required")
		os.Exit(1)
	}

	user, err := rt.client.CreateUser(ctx, api.CreateUserRequest{
		Username: username,
		Email:    email,
		Password: password,
		IsAdmin:  isAdmin,
	})
	if err != nil {
		adminExit("could not create user", err)
	}
	printSuccess("created user %s (id %d)", user.Username, user.ID)
}

func adminSetAdmin(ctx context.Context, rt *runtime, args Args) {
	if len(args.Raw) < 2 {
		printError("usage: veta admin set-admin USER_ID true|false")
		os.Exit(1)
	}
	id, err := strconv.Atoi(args.Raw[0])
	if err != nil {
		printError("user id must be a number, got %q", args.Raw[0])
		os.Exit(1)
	}
	isAdmin, err := strconv.ParseBool(args.Raw[1])
	if err != nil {
		printError("expected true or false, got %q", args.Raw[1])
		os.Exit(1)
	}

	user, err := rt.client.UpdateUser(ctx, id, api.UpdateUserRequest{IsAdmin: &isAdmin})
	if err != nil {
		adminExit("could not update user", err)
	}
	printSuccess("user %s admin=%v", user.Username, user.IsAdmin)
}

func adminDeleteUser(ctx context.Context, rt *runtime, args Args) {
	if len(args.Raw) == 0 {
		printError("usage: veta admin delete-user USER_ID")
		os.Exit(1)
	}
	id, err := strconv.Atoi(args.Raw[0])
	if err != nil {
		printError("user id must be a number, got %q", args.Raw[0])
		os.Exit(1)
	}
	if err := rt.client.DeleteUser(ctx, id); err != nil {
		adminExit("could not delete user", err)
	}
	printSuccess("deleted user %d", id)
}

func adminStats(ctx context.Context, rt *runtime) {
	stats, err := rt.client.DashboardStats(ctx)
	if err != nil {
		adminExit("could not fetch dashboard stats", err)
	}

	printLabel("users:", strconv.Itoa(stats.TotalUsers))
	printLabel("conversations:", strconv.Itoa(stats.TotalConversations))
	printLabel("messages:", strconv.Itoa(stats.TotalMessages))
	if len(stats.AgentUsage) > 0 {
		fmt.Println()
		printLabel("usage by persona:", "")
		for _, au := range stats.AgentUsage {
			fmt.Printf("  %-16s %d\n", au.AgentType, au.MessageCount)
		}
	}

	// Knowledge-base metrics are best-effort; the dashboard is still useful
	// without them.
	if metrics, err := rt.client.Metrics(ctx); err == nil {
		fmt.Println()
		printLabel("documents:", strconv.Itoa(metrics.DocumentCount))
		printLabel("chunks:", strconv.Itoa(metrics.DocumentChunkCount))
		printLabel("vector db size:", strconv.Itoa(metrics.VectorDBSize))
		printLabel("queries:", strconv.Itoa(metrics.TotalQueries))
		printLabel("cache hit rate:", fmt.Sprintf("%.0f%%", metrics.CacheHitRate*100))
		printLabel("error rate:", fmt.Sprintf("%.0f%%", metrics.ErrorRate*100))
		printLabel("avg response:", fmt.Sprintf("%.2fs", metrics.AvgResponseTime))
	}
}

func adminDocs(ctx context.Context, rt *runtime, args Args) {
	// "veta admin docs delete DOC_ID" removes any user's document.
	if len(args.Raw) >= 2 && args.Raw[0] == "delete" {
		if err := rt.client.AdminDeleteDocument(ctx, args.Raw[1]); err != nil {
			adminExit("could not delete document", err)
		}
		printSuccess("deleted")
		return
	}

	list, err := rt.client.AdminListDocuments(ctx)
	if err != nil {
		adminExit("could not list documents", err)
	}
	fmt.Printf("%-36s %-12s %-16s %s\n", "ID", "STATUS", "UPLOADED BY", "NAME")
	for _, d := range list {
		fmt.Printf("%-36s %-12s %-16s %s\n", d.ID, d.Status, d.UploadedBy, d.DisplayName())
	}
}

func adminRepair(ctx context.Context, rt *runtime) {
	printInfo("repairing the vector database; this may take a while...")
	if err := rt.client.RepairVectorDB(ctx); err != nil {
		adminExit("repair failed", err)
	}
	printSuccess("vector database repaired")
}
