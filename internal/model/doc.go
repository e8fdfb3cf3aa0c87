// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures shared across the veta client:
// conversations, messages, knowledge-base documents, assistant personas, and
// the metrics payloads reported by the backend.
//
// Types here mirror the backend's JSON schemas field for field. Client-only
// state (message delivery tracking, local timestamps) is kept out of the
// wire tags or marked json:"-".
package model
