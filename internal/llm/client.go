// Package llm wraps the completion provider behind a narrow interface so the
// rest of the system can degrade gracefully when no provider is configured.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/rahul/agentctl/pkg/config"
)

// ErrNotConfigured is returned by every call on an unconfigured client.
// Callers fall back to their local heuristics instead of treating it as fatal.
var ErrNotConfigured = errors.New("llm: no provider configured")

// Completer is the contract the planner and reasoning engine depend on.
type Completer interface {
	Complete(ctx context.Context, prompt, system string) (string, error)
	StreamComplete(ctx context.Context, prompt, system string, fn func(chunk string)) error
}

// Client is a Completer backed by a langchaingo model.
type Client struct {
	model       llms.Model
	temperature float64
	maxTokens   int
}

// New builds a client from config. When no API key is present the client is
// still returned; its calls report ErrNotConfigured.
func New(cfg *config.Config) (*Client, error) {
	c := &Client{
		temperature: cfg.LLM.Temperature,
		maxTokens:   cfg.LLM.MaxTokens,
	}
	if !cfg.LLMConfigured() {
		return c, nil
	}

	switch cfg.LLM.Provider {
	case "openai", "openrouter":
		opts := []openai.Option{
			openai.WithToken(cfg.LLM.APIKey),
			openai.WithModel(cfg.LLM.Model),
		}
		if cfg.LLM.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.LLM.BaseURL))
		}
		if cfg.LLM.Timeout > 0 {
			opts = append(opts, openai.WithHTTPClient(&http.Client{
				Timeout: time.Duration(cfg.LLM.Timeout) * time.Second,
			}))
		}
		model, err := openai.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize %s provider: %w", cfg.LLM.Provider, err)
		}
		c.model = model
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.LLM.Provider)
	}

	return c, nil
}

// Configured reports whether a completion call can succeed.
func (c *Client) Configured() bool {
	return c != nil && c.model != nil
}

func (c *Client) messages(prompt, system string) []llms.MessageContent {
	var msgs []llms.MessageContent
	if system != "" {
		msgs = append(msgs, llms.MessageContent{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(system)},
		})
	}
	msgs = append(msgs, llms.MessageContent{
		Role:  llms.ChatMessageTypeHuman,
		Parts: []llms.ContentPart{llms.TextPart(prompt)},
	})
	return msgs
}

// Complete sends a single prompt and returns the model's text response.
func (c *Client) Complete(ctx context.Context, prompt, system string) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	resp, err := c.model.GenerateContent(ctx, c.messages(prompt, system),
		llms.WithTemperature(c.temperature),
		llms.WithMaxTokens(c.maxTokens),
	)
	if err != nil {
		return "", fmt.Errorf("completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("completion returned no choices")
	}
	return resp.Choices[0].Content, nil
}

// StreamComplete streams the response through fn chunk by chunk. The stream
// is finite and not restartable.
func (c *Client) StreamComplete(ctx context.Context, prompt, system string, fn func(chunk string)) error {
	if !c.Configured() {
		return ErrNotConfigured
	}

	_, err := c.model.GenerateContent(ctx, c.messages(prompt, system),
		llms.WithTemperature(c.temperature),
		llms.WithMaxTokens(c.maxTokens),
		llms.WithStreamingFunc(func(_ context.Context, chunk []byte) error {
			fn(string(chunk))
			return nil
		}),
	)
	if err != nil {
		return fmt.Errorf("streaming completion failed: %w", err)
	}
	return nil
}
