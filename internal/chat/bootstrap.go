// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/askveta/veta-tui/internal/api"
	"github.com/askveta/veta-tui/internal/model"
)

// =============================================================================
// STARTUP BOOTSTRAP
// =============================================================================

// BootstrapData is everything the chat screen needs before first render.
type BootstrapData struct {
	Agents        []model.Agent
	Conversations []model.ConversationMeta
	User          *model.User

	// Degraded is set when any fetch failed and a fallback was used. The
	// UI shows a hint but stays fully usable.
	Degraded bool
}

// Bootstrap fetches agents, the conversation directory, and the user
// profile concurrently. It never fails outright: each fetch degrades
// independently to a well-known fallback, so startup always yields a
// defined agent selection and a usable (possibly empty) directory.
func Bootstrap(ctx context.Context, client *api.Client) *BootstrapData {
	data := &BootstrapData{}

	var (
		agents []model.Agent
		metas  []model.ConversationMeta
		user   *model.User
	)

	// Plain errgroup, no shared cancellation: one failed fetch must not
	// abort the others, each degrades on its own.
	var g errgroup.Group
	g.Go(func() error {
		var err error
		agents, err = client.ListAgents(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		metas, err = client.ListConversations(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		user, err = client.Me(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		data.Degraded = true
	}

	if len(agents) == 0 {
		data.Agents = []model.Agent{model.FallbackAgent()}
		data.Degraded = true
	} else {
		data.Agents = agents
	}
	data.Conversations = metas
	data.User = user
	return data
}

// PickAgent returns agentType if it is offered, otherwise the fallback.
// Guarantees the selected persona is never undefined.
func PickAgent(agents []model.Agent, agentType string) string {
	for _, a := range agents {
		if a.AgentType == agentType {
			return agentType
		}
	}
	return model.DefaultAgentType
}
