package repository

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"repo-analyzer/packages/storage"
	"repo-analyzer/types"
)

// UploadFiles uploads every file to bucket under its key relative to root.
// All uploads are started, up to concurrency at a time (0 means no limit),
// and all are joined before returning. The result slice has one entry per
// file, in input order; the error is the first failure observed.
func UploadFiles(ctx context.Context, bucket storage.Bucket, root string, files []string, concurrency int) ([]types.UploadResult, error) {
	results := make([]types.UploadResult, len(files))

	var g errgroup.Group
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}

	for i, file := range files {
		key, err := RelativeKey(root, file)
		if err != nil {
			results[i] = types.UploadResult{Path: file, Err: err}
			continue
		}
		results[i] = types.UploadResult{Path: file, Key: key}

		g.Go(func() error {
			if err := bucket.Upload(ctx, file, key); err != nil {
				results[i].Err = err
				return fmt.Errorf("uploading %s: %w", key, err)
			}
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		for _, r := range results {
			if r.Err != nil {
				err = r.Err
				break
			}
		}
	}
	return results, err
}

// Failed returns the results that carry an error.
func Failed(results []types.UploadResult) []types.UploadResult {
	var out []types.UploadResult
	for _, r := range results {
		if r.Err != nil {
			out = append(out, r)
		}
	}
	return out
}
