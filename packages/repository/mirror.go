package repository

import (
	"context"
	"fmt"
	"time"

	"repo-analyzer/packages/logging"
	"repo-analyzer/packages/storage"
	"repo-analyzer/packages/telemetry"
	"repo-analyzer/types"
)

// MirrorOptions controls clone and upload behaviour.
type MirrorOptions struct {
	// WorkspaceDir is the parent of per-request workspaces; empty means the
	// system temp dir.
	WorkspaceDir  string
	ExcludeGitDir bool
	Concurrency   int
	Timeout       time.Duration
}

// Mirror clones a repository into a private workspace and uploads every file
// in it to a bucket.
type Mirror struct {
	cloner  Cloner
	storage storage.Provider
	metrics *telemetry.Metrics
	opts    MirrorOptions
}

// NewMirror wires a Mirror. metrics may be nil.
func NewMirror(cloner Cloner, provider storage.Provider, metrics *telemetry.Metrics, opts MirrorOptions) *Mirror {
	return &Mirror{
		cloner:  cloner,
		storage: provider,
		metrics: metrics,
		opts:    opts,
	}
}

// Run clones url and uploads the working tree to bucketName. Object keys are
// paths relative to the clone root. The workspace is removed before Run
// returns, whatever the outcome.
func (m *Mirror) Run(ctx context.Context, url, bucketName string) ([]types.UploadResult, error) {
	log := logging.FromContext(ctx).With("url", url, "bucket", bucketName)

	ws, err := NewWorkspace(m.opts.WorkspaceDir)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := ws.Close(); err != nil {
			log.Warn("Failed to remove workspace", "dir", ws.Dir, "error", err)
		}
	}()

	cloneCtx := ctx
	if m.opts.Timeout > 0 {
		var cancel context.CancelFunc
		cloneCtx, cancel = context.WithTimeout(ctx, m.opts.Timeout)
		defer cancel()
	}
	if err := m.cloner.Clone(cloneCtx, url, ws.Dir); err != nil {
		return nil, err
	}

	var exclude []string
	if m.opts.ExcludeGitDir {
		exclude = append(exclude, ".git")
	}
	files, err := WalkFiles(ws.Dir, exclude...)
	if err != nil {
		return nil, fmt.Errorf("listing cloned files: %w", err)
	}
	log.Info("Repository cloned", "files", len(files))

	bucket := m.storage.Bucket(bucketName)
	results, err := UploadFiles(ctx, bucket, ws.Dir, files, m.opts.Concurrency)

	failed := Failed(results)
	m.metrics.RecordUploads(ctx, bucketName, len(results)-len(failed), len(failed))
	for _, r := range failed {
		log.Error("Upload failed", "key", r.Key, "error", r.Err)
	}
	if err != nil {
		return results, err
	}

	log.Info("Repository uploaded", "files", len(results))
	return results, nil
}
