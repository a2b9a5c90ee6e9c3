package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"repo-analyzer/packages/ai"
	"repo-analyzer/packages/analysis"
	"repo-analyzer/packages/handlers"
	"repo-analyzer/packages/repository"
	"repo-analyzer/packages/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const defaultBucket = "default-bucket"

// ─── Stubs ────────────────────────────────────────────────────────────────────

type stubCloner struct {
	cloneFn func(ctx context.Context, url, dir string) error
	calls   int
	dirs    []string
}

func (s *stubCloner) Clone(ctx context.Context, url, dir string) error {
	s.calls++
	s.dirs = append(s.dirs, dir)
	if s.cloneFn != nil {
		return s.cloneFn(ctx, url, dir)
	}
	return nil
}

type stubModel struct {
	generateFn func(ctx context.Context, prompt string) (*ai.Response, error)
	prompts    []string
}

func (s *stubModel) Generate(ctx context.Context, prompt string) (*ai.Response, error) {
	s.prompts = append(s.prompts, prompt)
	if s.generateFn != nil {
		return s.generateFn(ctx, prompt)
	}
	return &ai.Response{Text: "analysis"}, nil
}

func (s *stubModel) Model() string { return "stub-model" }

func (s *stubModel) Close() error { return nil }

// ─── Test server builder ──────────────────────────────────────────────────────

type testServer struct {
	router    *gin.Engine
	store     *storage.Memory
	cloner    *stubCloner
	model     *stubModel
	workspace string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ts := &testServer{
		store:     storage.NewMemory(),
		cloner:    &stubCloner{},
		model:     &stubModel{},
		workspace: t.TempDir(),
	}

	mirror := repository.NewMirror(ts.cloner, ts.store, nil, repository.MirrorOptions{
		WorkspaceDir: ts.workspace,
	})
	analyzer := analysis.NewService(ts.store, ts.model, nil, analysis.Options{
		Extensions: []string{".js", ".py", ".java"},
		OutputFile: "code_analysis.txt",
	})

	r := gin.New()
	handlers.RegisterRoutes(r, mirror, analyzer, defaultBucket)
	ts.router = r
	return ts
}

func (ts *testServer) do(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	return ts.doRaw(method, path, buf.Bytes())
}

func (ts *testServer) doRaw(method, path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

// cloneWrites makes the stub cloner populate the workspace with files.
func (ts *testServer) cloneWrites(files map[string]string) {
	ts.cloner.cloneFn = func(_ context.Context, _, dir string) error {
		for rel, content := range files {
			p := filepath.Join(dir, filepath.FromSlash(rel))
			if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
				return err
			}
			if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
				return err
			}
		}
		return nil
	}
}

func (ts *testServer) seed(t *testing.T, bucket string, objects map[string]string) {
	t.Helper()
	b := ts.store.Bucket(bucket)
	for k, v := range objects {
		require.NoError(t, b.Write(context.Background(), k, []byte(v)))
	}
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}
