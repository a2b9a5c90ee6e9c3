package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repo-analyzer/packages/storage"
)

type stubCloner struct {
	cloneFn func(ctx context.Context, url, dir string) error
	calls   int
}

func (s *stubCloner) Clone(ctx context.Context, url, dir string) error {
	s.calls++
	if s.cloneFn != nil {
		return s.cloneFn(ctx, url, dir)
	}
	return nil
}

func clonerWriting(t *testing.T, files map[string]string) *stubCloner {
	return &stubCloner{cloneFn: func(_ context.Context, _, dir string) error {
		writeTree(t, dir, files)
		return nil
	}}
}

func assertEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "workspace was not removed")
}

func TestMirrorRun(t *testing.T) {
	base := t.TempDir()
	mem := storage.NewMemory()
	cloner := clonerWriting(t, map[string]string{
		"README.md":       "# demo",
		"src/main.py":     "print(1)",
		".git/HEAD":       "ref: refs/heads/main",
		"src/pkg/util.js": "module.exports = {}",
	})

	m := NewMirror(cloner, mem, nil, MirrorOptions{WorkspaceDir: base})
	results, err := m.Run(context.Background(), "https://example.com/demo.git", "bucket")
	require.NoError(t, err)
	assert.Len(t, results, 4)

	objects := mem.Objects("bucket")
	keys := make([]string, 0, len(objects))
	for k := range objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	assert.Equal(t, []string{".git/HEAD", "README.md", "src/main.py", "src/pkg/util.js"}, keys)
	assert.Equal(t, "print(1)", string(objects["src/main.py"]))

	assertEmptyDir(t, base)
}

func TestMirrorRunExcludeGitDir(t *testing.T) {
	mem := storage.NewMemory()
	cloner := clonerWriting(t, map[string]string{
		".git/HEAD": "ref: refs/heads/main",
		"a.js":      "a",
	})

	m := NewMirror(cloner, mem, nil, MirrorOptions{WorkspaceDir: t.TempDir(), ExcludeGitDir: true})
	_, err := m.Run(context.Background(), "https://example.com/demo.git", "bucket")
	require.NoError(t, err)

	objects := mem.Objects("bucket")
	assert.Contains(t, objects, "a.js")
	assert.NotContains(t, objects, ".git/HEAD")
}

func TestMirrorRunCloneFailure(t *testing.T) {
	base := t.TempDir()
	mem := storage.NewMemory()
	cloneErr := &CloneError{URL: "https://example.com/missing.git", Output: "fatal: not found", Err: errors.New("exit status 128")}
	cloner := &stubCloner{cloneFn: func(_ context.Context, _, dir string) error {
		writeTree(t, dir, map[string]string{"partial.txt": "x"})
		return cloneErr
	}}

	m := NewMirror(cloner, mem, nil, MirrorOptions{WorkspaceDir: base})
	_, err := m.Run(context.Background(), "https://example.com/missing.git", "bucket")

	var ce *CloneError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "fatal: not found", ce.Output)
	assert.Empty(t, mem.Objects("bucket"))
	assertEmptyDir(t, base)
}

func TestMirrorRunUploadFailure(t *testing.T) {
	base := t.TempDir()
	mem := storage.NewMemory()
	bucket := &flakyBucket{Bucket: mem.Bucket("bucket"), fail: map[string]bool{"b.js": true}}
	provider := &fixedProvider{bucket: bucket}
	cloner := clonerWriting(t, map[string]string{"a.js": "a", "b.js": "b", "c.js": "c"})

	m := NewMirror(cloner, provider, nil, MirrorOptions{WorkspaceDir: base, Concurrency: 1})
	results, err := m.Run(context.Background(), "https://example.com/demo.git", "bucket")
	require.Error(t, err)

	require.Len(t, results, 3)
	failed := Failed(results)
	require.Len(t, failed, 1)
	assert.Equal(t, "b.js", failed[0].Key)
	assertEmptyDir(t, base)
}

func TestMirrorRunWithGoGit(t *testing.T) {
	src := initTestRepo(t, map[string]string{
		"app.py":     "print('hi')",
		"lib/a.java": "class A {}",
	})
	mem := storage.NewMemory()

	m := NewMirror(&GoGitCloner{}, mem, nil, MirrorOptions{WorkspaceDir: t.TempDir(), ExcludeGitDir: true})
	_, err := m.Run(context.Background(), src, "bucket")
	require.NoError(t, err)

	objects := mem.Objects("bucket")
	assert.Equal(t, "print('hi')", string(objects["app.py"]))
	assert.Equal(t, "class A {}", string(objects["lib/a.java"]))
}

type fixedProvider struct {
	bucket storage.Bucket
}

func (p *fixedProvider) Bucket(string) storage.Bucket { return p.bucket }

func (p *fixedProvider) Close() error { return nil }

func TestMirrorRunDoesNotFollowEscapingSymlink(t *testing.T) {
	src := initTestRepo(t, map[string]string{"main.py": "print('hi')"})

	// The workspace is created directly under base, so "../secret.env" from
	// the clone root resolves to base/secret.env.
	base := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(base, "secret.env"), []byte("GEMINI_API_KEY=super-secret"), 0o600))

	if err := os.Symlink("../secret.env", filepath.Join(src, "leak.py")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	repo, err := git.PlainOpen(src)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("leak.py")
	require.NoError(t, err)
	_, err = wt.Commit("add link", &git.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)

	mem := storage.NewMemory()
	m := NewMirror(&GoGitCloner{}, mem, nil, MirrorOptions{WorkspaceDir: base, ExcludeGitDir: true})
	results, err := m.Run(context.Background(), src, "bucket")
	require.NoError(t, err)
	assert.Len(t, results, 1)

	objects := mem.Objects("bucket")
	assert.Equal(t, "print('hi')", string(objects["main.py"]))
	assert.NotContains(t, objects, "leak.py")
	for key, data := range objects {
		assert.NotContains(t, string(data), "super-secret", "secret leaked via %s", key)
	}
}
