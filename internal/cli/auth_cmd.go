// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// auth_cmd.go - login/logout/whoami command handlers for the veta CLI.
//
// Command: login
// Short:   Sign in to the backend and store the session
//
// Examples:
//   veta login                   Prompt for username and password
//   veta whoami                  Show the signed-in user
//   veta logout                  Clear the stored session
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/askveta/veta-tui/internal/api"
	"github.com/askveta/veta-tui/internal/config"
	"github.com/askveta/veta-tui/internal/session"
)

// HandleLogin signs in and stores the encrypted session.
func HandleLogin(args Args) {
	rt, err := newRuntime()
	if err != nil {
		printError("%v", err)
		os.Exit(1)
	}

	username, err := promptLine("Username: ")
	if err != nil {
		printError("could not read username: %v", err)
		os.Exit(1)
	}
	password, err := promptPassword("Password: ")
	if err != nil {
		printError("could not read password: %v", err)
		os.Exit(1)
	}
	if username == "" || password == "" {
		printError("username and password are required")
		os.Exit(1)
	}

	ctx := context.Background()
	tok, err := rt.client.Login(ctx, username, password)
	if err != nil {
		if errors.Is(err, api.ErrAuthFailed) {
			printError("invalid username or password")
		} else {
			printError("login failed: %v", err)
		}
		os.Exit(1)
	}

	// Store the token first so the profile fetch is authenticated.
	if err := rt.sessions.Login(tok.AccessToken, nil, session.ModeUser); err != nil {
		printError("could not store session: %v", err)
		os.Exit(1)
	}

	user, err := rt.client.Me(ctx)
	if err == nil {
		mode := session.ModeUser
		if user.IsAdmin {
			mode = session.ModeAdmin
		}
		_ = rt.sessions.Login(tok.AccessToken, user, mode)
		printSuccess("signed in as %s", user.Username)
		return
	}
	printSuccess("signed in")
}

// HandleRegister creates a new account, then signs the user in.
func HandleRegister(args Args) {
	rt, err := newRuntime()
	if err != nil {
		printError("%v", err)
		os.Exit(1)
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

	user, err := rt.client.Register(context.Background(), api.RegisterRequest{
		Username: username,
		Email:    email,
		Password: password,
	})
	if err != nil {
		printError("registration failed: %v", err)
		os.Exit(1)
	}
	printSuccess("account created for %s; run: veta login", user.Username)
}

// HandleResetPassword starts the email reset flow, or completes it when
// invoked as `veta reset-password confirm TOKEN`.
func HandleResetPassword(args Args) {
	rt, err := newRuntime()
	if err != nil {
		printError("%v", err)
		os.Exit(1)
	}
	ctx := context.Background()

	if args.Subcommand == "confirm" {
		if len(args.Raw) == 0 {
			printError("usage: veta reset-password confirm TOKEN")
			os.Exit(1)
		}
		password, err := promptPassword("New password: ")
		if err != nil || password == "" {
			printError("a new password is required")
			os.Exit(1)
		}
		if err := rt.client.ConfirmPasswordReset(ctx, args.Raw[0], password); err != nil {
			printError("reset failed: %v", err)
			os.Exit(1)
		}
		printSuccess("password changed; run: veta login")
		return
	}

	email := ""
	if args.Subcommand != "" {
		email = args.Subcommand
	} else if email, err = promptLine("Account email: "); err != nil {
		printError("could not read email: %v", err)
		os.Exit(1)
	}
	if email == "" {
		printError("an email address is required")
		os.Exit(1)
	}
	if err := rt.client.RequestPasswordReset(ctx, email); err != nil {
		printError("reset request failed: %v", err)
		os.Exit(1)
	}
	printSuccess("reset email sent; finish with: veta reset-password confirm TOKEN")
}

// HandleLock enables or disables the TOTP lock on the stored session.
func HandleLock(args Args) {
	rt, err := newRuntime()
	if err != nil {
		printError("%v", err)
		os.Exit(1)
	}
	rt.requireAuth()

	switch args.Subcommand {
	case "", "enable":
		account := "veta"
		if user := rt.sessions.User(); user != nil {
			account = user.Username
		}
		provisionURL, err := rt.sessions.EnableLock(account)
		if err != nil {
			printError("could not enable lock: %v", err)
			os.Exit(1)
		}
		rt.cfg.Session.LockEnabled = true
		_ = config.Save(rt.cfg)
		printSuccess("session lock enabled")
		printInfo("add this to your authenticator app:")
		fmt.Println(provisionURL)

	case "disable":
		code, err := promptLine("Verification code: ")
		if err != nil {
			printError("could not read code: %v", err)
			os.Exit(1)
		}
		if err := rt.sessions.DisableLock(code); err != nil {
			printError("could not disable lock: %v", err)
			os.Exit(1)
		}
		rt.cfg.Session.LockEnabled = false
		_ = config.Save(rt.cfg)
		printSuccess("session lock disabled")

	default:
		printError("unknown lock subcommand %q", args.Subcommand)
		os.Exit(1)
	}
}

// HandleLogout clears the stored session.
func HandleLogout(args Args) {
	rt, err := newRuntime()
	if err != nil {
		printError("%v", err)
		os.Exit(1)
	}
	if err := rt.sessions.Logout(); err != nil {
		printError("logout failed: %v", err)
		os.Exit(1)
	}
	printSuccess("signed out")
}

// HandleWhoami prints the signed-in user.
func HandleWhoami(args Args) {
	rt, err := newRuntime()
	if err != nil {
		printError("%v", err)
		os.Exit(1)
	}
	rt.requireAuth()

	user, err := rt.client.Me(context.Background())
	if err != nil {
		// Fall back to the cached profile when the backend is unreachable.
		if cached := rt.sessions.User(); cached != nil {
			printLabel("username:", cached.Username+" (cached)")
			return
		}
		printError("could not fetch profile: %v", err)
		os.Exit(1)
	}

	printLabel("username:", user.Username)
	printLabel("email:", user.Email)
	printLabel("admin:", fmt.Sprintf("%v", user.IsAdmin))
}
