package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"google.golang.org/genai"
)

// Vertex talks to Gemini models served by Vertex AI using application
// default credentials.
type Vertex struct {
	client *genai.Client
	name   string
	config *genai.GenerateContentConfig
}

// NewVertex creates a Vertex AI client for opts.Model.
func NewVertex(ctx context.Context, opts Options) (*Vertex, error) {
	if opts.Project == "" {
		return nil, errors.New("project cannot be empty")
	}
	if opts.Location == "" {
		return nil, errors.New("location cannot be empty")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  opts.Project,
		Location: opts.Location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating Google AI client: %w", err)
	}

	return &Vertex{client: client, name: opts.Model, config: vertexConfig(opts)}, nil
}

func vertexConfig(opts Options) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		MaxOutputTokens: opts.MaxOutputTokens,
	}
	if opts.Temperature > 0 {
		temperature := opts.Temperature
		cfg.Temperature = &temperature
	}
	if opts.TopK > 0 {
		topK := float32(opts.TopK)
		cfg.TopK = &topK
	}
	if opts.TopP > 0 {
		topP := opts.TopP
		cfg.TopP = &topP
	}
	return cfg
}

func (v *Vertex) Model() string { return v.name }

// Close is a no-op; the genai client has no resources to release.
func (v *Vertex) Close() error { return nil }

func (v *Vertex) Generate(ctx context.Context, prompt string) (*Response, error) {
	slog.Info("Sending request to Vertex AI", "model", v.name, "promptLength", len(prompt))

	result, err := v.client.Models.GenerateContent(ctx, v.name, genai.Text(prompt), v.config)
	if err != nil {
		return nil, fmt.Errorf("vertex API call failed: %w", err)
	}
	if result == nil || len(result.Candidates) == 0 {
		return nil, ErrNoContent
	}

	out := &Response{Text: result.Text()}
	if usage := result.UsageMetadata; usage != nil {
		out.PromptTokens = int64(usage.PromptTokenCount)
		out.CompletionTokens = int64(usage.CandidatesTokenCount)
	}
	return out, nil
}
