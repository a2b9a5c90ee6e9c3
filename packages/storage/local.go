package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Local stores each bucket as a directory under a root, for development
// without cloud credentials.
type Local struct {
	root string
}

// NewLocal returns a provider rooted at root, creating it if needed.
func NewLocal(root string) (*Local, error) {
	if root == "" {
		return nil, errors.New("local storage root cannot be empty")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating storage root: %w", err)
	}
	return &Local{root: root}, nil
}

func (l *Local) Bucket(name string) Bucket {
	return &localBucket{name: name, dir: filepath.Join(l.root, name)}
}

func (l *Local) Close() error { return nil }

type localBucket struct {
	name string
	dir  string
}

func (b *localBucket) Name() string { return b.name }

// objectPath maps key into the bucket directory, refusing keys that would
// escape it.
func (b *localBucket) objectPath(key string) (string, error) {
	if key == "" {
		return "", errors.New("object key cannot be empty")
	}
	p := filepath.Join(b.dir, filepath.FromSlash(key))
	rel, err := filepath.Rel(b.dir, p)
	if err != nil || rel == "." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || rel == ".." {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return p, nil
}

func (b *localBucket) Upload(ctx context.Context, path, key string) error {
	dst, err := b.objectPath(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("creating object dir: %w", err)
	}

	f, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("creating object %s: %w", key, err)
	}
	if err := copyFile(ctx, path, f); err != nil {
		f.Close()
		os.Remove(dst)
		return err
	}
	return f.Close()
}

func (b *localBucket) List(_ context.Context, prefix string) ([]string, error) {
	var keys []string
	err := filepath.WalkDir(b.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path == b.dir {
				return fs.SkipAll
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(b.dir, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing %s/%s: %w", b.name, prefix, err)
	}
	sort.Strings(keys)
	return keys, nil
}

func (b *localBucket) Read(_ context.Context, key string) ([]byte, error) {
	p, err := b.objectPath(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("reading %s/%s: %w", b.name, key, ErrObjectNotExist)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s/%s: %w", b.name, key, err)
	}
	return data, nil
}

func (b *localBucket) Write(_ context.Context, key string, data []byte) error {
	p, err := b.objectPath(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("creating object dir: %w", err)
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return fmt.Errorf("writing %s/%s: %w", b.name, key, err)
	}
	return nil
}
