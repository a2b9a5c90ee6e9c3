package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// GCS serves buckets from Google Cloud Storage using application default
// credentials.
type GCS struct {
	client *gcs.Client
}

// NewGCS creates a Cloud Storage client.
func NewGCS(ctx context.Context) (*GCS, error) {
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating storage client: %w", err)
	}
	return &GCS{client: client}, nil
}

// Bucket returns a handle for the named bucket. No request is made.
func (g *GCS) Bucket(name string) Bucket {
	return &gcsBucket{name: name, handle: g.client.Bucket(name)}
}

// Close releases the underlying client.
func (g *GCS) Close() error {
	return g.client.Close()
}

type gcsBucket struct {
	name   string
	handle *gcs.BucketHandle
}

func (b *gcsBucket) Name() string { return b.name }

func (b *gcsBucket) Upload(ctx context.Context, path, key string) error {
	// Cancelling the writer's context before Close aborts the upload so a
	// failed copy never leaves a truncated object behind.
	wctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := b.handle.Object(key).NewWriter(wctx)
	if err := copyFile(ctx, path, w); err != nil {
		cancel()
		_ = w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("uploading gs://%s/%s: %w", b.name, key, err)
	}
	return nil
}

func (b *gcsBucket) List(ctx context.Context, prefix string) ([]string, error) {
	it := b.handle.Objects(ctx, &gcs.Query{Prefix: prefix})

	var keys []string
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("listing gs://%s/%s: %w", b.name, prefix, err)
		}
		if attrs.Name == "" {
			continue
		}
		keys = append(keys, attrs.Name)
	}
	return keys, nil
}

func (b *gcsBucket) Read(ctx context.Context, key string) ([]byte, error) {
	r, err := b.handle.Object(key).NewReader(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return nil, fmt.Errorf("reading gs://%s/%s: %w", b.name, key, ErrObjectNotExist)
	}
	if err != nil {
		return nil, fmt.Errorf("reading gs://%s/%s: %w", b.name, key, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading gs://%s/%s: %w", b.name, key, err)
	}
	return data, nil
}

func (b *gcsBucket) Write(ctx context.Context, key string, data []byte) error {
	w := b.handle.Object(key).NewWriter(ctx)
	w.ContentType = "text/plain; charset=utf-8"
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("writing gs://%s/%s: %w", b.name, key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("writing gs://%s/%s: %w", b.name, key, err)
	}
	return nil
}
