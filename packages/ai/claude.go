package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/vertex"
)

const defaultClaudeMaxTokens = 8192

// Claude talks to Claude models served by Vertex AI.
type Claude struct {
	client    anthropic.Client
	name      string
	maxTokens int64
	temp      float32
}

// NewClaude creates a Claude client authenticated with Google credentials.
func NewClaude(ctx context.Context, opts Options) (*Claude, error) {
	if opts.Project == "" {
		return nil, errors.New("project cannot be empty")
	}
	if opts.Location == "" {
		return nil, errors.New("location cannot be empty")
	}

	maxTokens := int64(opts.MaxOutputTokens)
	if maxTokens <= 0 {
		maxTokens = defaultClaudeMaxTokens
	}

	return &Claude{
		client:    anthropic.NewClient(vertex.WithGoogleAuth(ctx, opts.Location, opts.Project)),
		name:      opts.Model,
		maxTokens: maxTokens,
		temp:      opts.Temperature,
	}, nil
}

func (c *Claude) Model() string { return c.name }

func (c *Claude) Close() error { return nil }

func (c *Claude) Generate(ctx context.Context, prompt string) (*Response, error) {
	slog.Info("Sending request to Claude", "model", c.name, "promptLength", len(prompt))

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.name),
		MaxTokens: c.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if c.temp > 0 {
		params.Temperature = anthropic.Float(float64(c.temp))
	}

	message, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("claude API call failed: %w", err)
	}

	if len(message.Content) == 0 {
		return nil, ErrNoContent
	}

	var sb strings.Builder
	for _, content := range message.Content {
		if content.Type == "text" {
			sb.WriteString(content.Text)
		}
	}

	return &Response{
		Text:             sb.String(),
		PromptTokens:     message.Usage.InputTokens,
		CompletionTokens: message.Usage.OutputTokens,
	}, nil
}
