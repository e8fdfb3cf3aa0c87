// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"io"
	"strings"
)

// =============================================================================
// FILE SUMMARY
// =============================================================================

// summaryResponse is the raw summary payload: one string of
// newline-delimited points.
type summaryResponse struct {
	Summary string `json:"summary"`
}

// Summarize uploads a file and returns its summary split into points.
// Blank lines in the backend's text are dropped.
func (c *Client) Summarize(ctx context.Context, filename string, content io.Reader) ([]string, error) {
	var resp summaryResponse
	if err := c.doMultipart(ctx, "/api/summary/", "file", filename, content, &resp); err != nil {
		return nil, err
	}

	var points []string
	for _, line := range strings.Split(resp.Summary, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			points = append(points, line)
		}
	}
	return points, nil
}
