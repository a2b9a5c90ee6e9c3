package analysis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"repo-analyzer/packages/ai"
	"repo-analyzer/packages/logging"
	"repo-analyzer/packages/storage"
	"repo-analyzer/packages/telemetry"
	"repo-analyzer/types"
)

// Options controls which stored files feed the prompt and where the result
// is written.
type Options struct {
	Extensions     []string
	MaxPromptBytes int
	SkipBinary     bool
	OutputFile     string
	Timeout        time.Duration
}

// Result describes one completed analysis.
type Result struct {
	OutputKey string
	Text      string
	Included  []types.SourceFile
	Skipped   []string
}

// Service runs collect, prompt, generate and store for one repository prefix.
type Service struct {
	storage storage.Provider
	model   ai.Client
	metrics *telemetry.Metrics
	opts    Options
}

// NewService wires a Service. metrics may be nil.
func NewService(provider storage.Provider, model ai.Client, metrics *telemetry.Metrics, opts Options) *Service {
	return &Service{
		storage: provider,
		model:   model,
		metrics: metrics,
		opts:    opts,
	}
}

// Analyze reviews the source stored under repoPath in bucketName and writes
// the model's answer verbatim to repoPath/<OutputFile>, replacing any
// earlier result.
func (s *Service) Analyze(ctx context.Context, bucketName, repoPath string) (*Result, error) {
	log := logging.FromContext(ctx).With("bucket", bucketName, "repoPath", repoPath)
	bucket := s.storage.Bucket(bucketName)

	src, err := Collect(ctx, bucket, repoPath, Filter{
		Extensions: s.opts.Extensions,
		MaxBytes:   s.opts.MaxPromptBytes,
		SkipBinary: s.opts.SkipBinary,
	})
	if err != nil {
		return nil, err
	}
	if len(src.Included) == 0 {
		log.Warn("No matching source files found, sending empty prompt")
	}
	s.metrics.RecordPrompt(ctx, src.Languages(), len(src.Code))

	log.Info("Generating analysis",
		"files", len(src.Included), "skipped", len(src.Skipped), "model", s.model.Model())

	genCtx := ctx
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	resp, err := s.model.Generate(genCtx, ai.BuildAnalysisPrompt(src.Code))
	if err != nil {
		return nil, fmt.Errorf("generating analysis: %w", err)
	}
	s.metrics.RecordTokens(ctx, s.model.Model(), resp.PromptTokens, resp.CompletionTokens)

	key := OutputKey(repoPath, s.opts.OutputFile)
	if err := bucket.Write(ctx, key, []byte(resp.Text)); err != nil {
		return nil, fmt.Errorf("saving analysis to %s: %w", key, err)
	}

	log.Info("Analysis saved", "key", key, "length", len(resp.Text))
	return &Result{
		OutputKey: key,
		Text:      resp.Text,
		Included:  src.Included,
		Skipped:   src.Skipped,
	}, nil
}

// OutputKey joins repoPath and name with a single slash. A trailing "/" on
// repoPath is dropped, so "repo/" and "repo" give the same key rather than
// "repo//name".
func OutputKey(repoPath, name string) string {
	return strings.TrimSuffix(repoPath, "/") + "/" + name
}
