// Package openai implements core.PersonaRunner on the OpenAI Chat
// Completions API. Each persona key maps to a system instruction; the
// normalized input envelope is serialized into the user message and the
// completion text is decoded back into an output envelope.
package openai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openai/openai-go"

	"github.com/brokermesh/assistant/core"
	"github.com/brokermesh/assistant/persona"
)

// Options configure the OpenAI persona runner. Fields mirror a minimal
// subset of Chat Completion parameters; extend via functional options
// without breaking callers.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
	Prompts             map[core.PersonaKey]string
}

// Runner wraps the OpenAI Chat Completions API behind core.PersonaRunner.
type Runner struct {
	client *openai.Client
	opts   Options
}

// NewRunner creates a runner using the official client with ambient
// credentials.
func NewRunner(optFns ...func(o *Options)) *Runner {
	client := openai.NewClient()
	return NewRunnerFromClient(&client, optFns...)
}

// NewRunnerFromClient creates a runner from an existing client.
func NewRunnerFromClient(client *openai.Client, optFns ...func(o *Options)) *Runner {
	opts := Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 4096,
		Prompts:             persona.DefaultPrompts,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Runner{client: client, opts: opts}
}

// Run implements core.PersonaRunner with a single blocking completion call.
func (r *Runner) Run(ctx context.Context, key core.PersonaKey, in core.PersonaInput) (*core.PersonaOutput, error) {
	prompt, ok := r.opts.Prompts[key]
	if !ok {
		return nil, fmt.Errorf("unknown persona %q", key)
	}

	userMessage, err := encodeInput(in)
	if err != nil {
		return nil, fmt.Errorf("encode persona input: %w", err)
	}

	params := openai.ChatCompletionNewParams{
		Model:               r.opts.Model,
		Temperature:         openai.Float(r.opts.Temperature),
		MaxCompletionTokens: openai.Int(r.opts.MaxCompletionTokens),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(prompt),
			openai.UserMessage(userMessage),
		},
	}

	resp, err := r.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices returned")
	}
	return persona.DecodeOutput(resp.Choices[0].Message.Content), nil
}

// encodeInput serializes the input envelope for the user message. The
// persona sees the same JSON shape regardless of provider.
func encodeInput(in core.PersonaInput) (string, error) {
	raw, err := json.Marshal(in)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
