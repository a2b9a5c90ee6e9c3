// Package storage abstracts the object store that holds uploaded repository
// files and analysis results. A Provider hands out Bucket handles by name;
// handles are cheap and derived per request.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrObjectNotExist is returned when reading a key that is not stored.
var ErrObjectNotExist = errors.New("storage: object does not exist")

// Bucket is a named container of objects keyed by slash-separated paths.
type Bucket interface {
	// Name returns the bucket name.
	Name() string
	// Upload stores the local file at path under key.
	Upload(ctx context.Context, path, key string) error
	// List returns the keys beginning with prefix in lexical order.
	List(ctx context.Context, prefix string) ([]string, error)
	// Read returns the contents stored under key.
	Read(ctx context.Context, key string) ([]byte, error)
	// Write stores data under key, replacing any existing object.
	Write(ctx context.Context, key string, data []byte) error
}

// Provider resolves bucket names to handles.
type Provider interface {
	Bucket(name string) Bucket
	Close() error
}

// Options selects and configures a Provider.
type Options struct {
	Backend   string
	LocalRoot string
}

// NewProvider builds the provider named by opts.Backend.
func NewProvider(ctx context.Context, opts Options) (Provider, error) {
	switch strings.ToLower(opts.Backend) {
	case "gcs", "":
		return NewGCS(ctx)
	case "local":
		return NewLocal(opts.LocalRoot)
	case "memory":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
}

func copyFile(ctx context.Context, path string, w io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("copying %s: %w", path, err)
	}
	return nil
}
