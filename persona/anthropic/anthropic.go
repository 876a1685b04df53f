// Package anthropic implements core.PersonaRunner on the Anthropic Messages
// API.
package anthropic

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/brokermesh/assistant/core"
	"github.com/brokermesh/assistant/persona"
)

// Options configure the Anthropic persona runner (model id, temperature,
// max tokens, API key, per-persona prompts).
type Options struct {
	Model       anthropic.Model
	Temperature float64
	MaxTokens   int64
	APIKey      string
	Prompts     map[core.PersonaKey]string
}

// Runner wraps the Anthropic Messages API behind core.PersonaRunner.
type Runner struct {
	client *anthropic.Client
	opts   Options
}

// NewRunner creates a runner using the official client.
func NewRunner(optFns ...func(o *Options)) *Runner {
	opts := Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.7,
		MaxTokens:   4096,
		Prompts:     persona.DefaultPrompts,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	client := anthropic.NewClient(clientOpts...)

	return &Runner{client: &client, opts: opts}
}

// NewRunnerFromClient creates a runner from an existing client.
func NewRunnerFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Runner {
	opts := Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.7,
		MaxTokens:   4096,
		Prompts:     persona.DefaultPrompts,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Runner{client: client, opts: opts}
}

// Run implements core.PersonaRunner with a single blocking Messages call.
func (r *Runner) Run(ctx context.Context, key core.PersonaKey, in core.PersonaInput) (*core.PersonaOutput, error) {
	prompt, ok := r.opts.Prompts[key]
	if !ok {
		return nil, fmt.Errorf("unknown persona %q", key)
	}

	raw, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("encode persona input: %w", err)
	}

	params := anthropic.MessageNewParams{
		Model:       r.opts.Model,
		MaxTokens:   r.opts.MaxTokens,
		Temperature: anthropic.Float(r.opts.Temperature),
		System: []anthropic.TextBlockParam{
			{Text: prompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(string(raw))),
		},
	}

	resp, err := r.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic api error: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.AsText().Text)
		}
	}
	return persona.DecodeOutput(text.String()), nil
}
