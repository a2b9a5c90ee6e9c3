package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Gemini talks to the Gemini API with an API key.
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
	name   string
}

// NewGemini creates a Gemini API client for opts.Model.
func NewGemini(ctx context.Context, opts Options) (*Gemini, error) {
	if opts.APIKey == "" {
		return nil, errors.New("GEMINI_API_KEY not set in environment")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(opts.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(opts.Model)
	if opts.Temperature > 0 {
		model.SetTemperature(opts.Temperature)
	}
	if opts.TopK > 0 {
		model.SetTopK(opts.TopK)
	}
	if opts.TopP > 0 {
		model.SetTopP(opts.TopP)
	}
	if opts.MaxOutputTokens > 0 {
		model.SetMaxOutputTokens(opts.MaxOutputTokens)
	}

	return &Gemini{client: client, model: model, name: opts.Model}, nil
}

func (g *Gemini) Model() string { return g.name }

func (g *Gemini) Close() error { return g.client.Close() }

func (g *Gemini) Generate(ctx context.Context, prompt string) (*Response, error) {
	slog.Info("Sending request to Gemini API", "model", g.name, "promptLength", len(prompt))

	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("gemini API call failed: %w", err)
	}

	text, err := geminiText(resp)
	if err != nil {
		return nil, err
	}

	out := &Response{Text: text}
	if resp.UsageMetadata != nil {
		out.PromptTokens = int64(resp.UsageMetadata.PromptTokenCount)
		out.CompletionTokens = int64(resp.UsageMetadata.CandidatesTokenCount)
	}

	slog.Info("Successfully generated analysis", "contentLength", len(text))
	return out, nil
}

// geminiText joins the text parts of the first candidate.
func geminiText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", ErrNoContent
	}

	// A candidate without text parts is an empty answer, not a failure.
	content := resp.Candidates[0].Content
	if content == nil {
		return "", nil
	}
	var sb strings.Builder
	for _, part := range content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	return sb.String(), nil
}
