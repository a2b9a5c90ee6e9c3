package storage

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Memory keeps objects in process memory. It backs tests and the "memory"
// backend for local runs.
type Memory struct {
	mu      sync.Mutex
	buckets map[string]map[string][]byte
}

// NewMemory returns an empty in-memory provider.
func NewMemory() *Memory {
	return &Memory{buckets: make(map[string]map[string][]byte)}
}

func (m *Memory) Bucket(name string) Bucket {
	return &memoryBucket{name: name, store: m}
}

func (m *Memory) Close() error { return nil }

// Objects returns a copy of the named bucket's contents.
func (m *Memory) Objects(bucket string) map[string][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string][]byte, len(m.buckets[bucket]))
	for k, v := range m.buckets[bucket] {
		out[k] = bytes.Clone(v)
	}
	return out
}

func (m *Memory) put(bucket, key string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	objs, ok := m.buckets[bucket]
	if !ok {
		objs = make(map[string][]byte)
		m.buckets[bucket] = objs
	}
	objs[key] = data
}

type memoryBucket struct {
	name  string
	store *Memory
}

func (b *memoryBucket) Name() string { return b.name }

func (b *memoryBucket) Upload(ctx context.Context, path, key string) error {
	var buf bytes.Buffer
	if err := copyFile(ctx, path, &buf); err != nil {
		return err
	}
	b.store.put(b.name, key, buf.Bytes())
	return nil
}

func (b *memoryBucket) List(_ context.Context, prefix string) ([]string, error) {
	b.store.mu.Lock()
	defer b.store.mu.Unlock()

	var keys []string
	for k := range b.store.buckets[b.name] {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (b *memoryBucket) Read(_ context.Context, key string) ([]byte, error) {
	b.store.mu.Lock()
	defer b.store.mu.Unlock()

	data, ok := b.store.buckets[b.name][key]
	if !ok {
		return nil, fmt.Errorf("reading %s/%s: %w", b.name, key, ErrObjectNotExist)
	}
	return bytes.Clone(data), nil
}

func (b *memoryBucket) Write(_ context.Context, key string, data []byte) error {
	b.store.put(b.name, key, bytes.Clone(data))
	return nil
}
