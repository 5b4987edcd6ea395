// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package queue

import (
	"context"

	"github.com/pdiddy/corpus-engine/pkg/types"
)

// Generator binds a Client to fixed model settings so callers only supply
// the prompt. It satisfies generate.Backend.
type Generator struct {
	Client *Client
	AI     types.AIConfig
}

// Complete generates text for prompt.
func (g *Generator) Complete(ctx context.Context, prompt string) (string, error) {
	return g.Client.Generate(ctx, Request{
		Model:        g.AI.Model,
		SystemPrompt: g.AI.SystemPrompt,
		Prompt:       prompt,
		Temperature:  g.AI.Temperature,
		MaxTokens:    g.AI.MaxTokens,
	})
}
