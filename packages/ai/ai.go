package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Client sends a single prompt to a language model and waits for the full
// response text.
type Client interface {
	Generate(ctx context.Context, prompt string) (*Response, error)
	Model() string
	Close() error
}

// Response is the model output plus token usage when the provider reports it.
type Response struct {
	Text             string
	PromptTokens     int64
	CompletionTokens int64
}

// Options configures a Client.
type Options struct {
	Provider string
	Model    string

	// APIKey authenticates the Gemini API provider.
	APIKey string
	// Project and Location select the Vertex AI endpoint for the vertex and
	// claude providers.
	Project  string
	Location string

	Temperature     float32
	TopK            int32
	TopP            float32
	MaxOutputTokens int32
}

// ErrNoContent is returned when the model returns no candidate at all. A
// candidate with no text is an empty answer and is not an error.
var ErrNoContent = errors.New("no content generated")

// New returns the client for opts.Provider.
func New(ctx context.Context, opts Options) (Client, error) {
	if opts.Model == "" {
		return nil, errors.New("model cannot be empty")
	}

	switch strings.ToLower(opts.Provider) {
	case "gemini", "":
		return NewGemini(ctx, opts)
	case "vertex":
		return NewVertex(ctx, opts)
	case "claude":
		return NewClaude(ctx, opts)
	default:
		return nil, fmt.Errorf("unknown ai provider %q", opts.Provider)
	}
}
