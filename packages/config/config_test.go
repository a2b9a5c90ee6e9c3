package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, BackendGCS, cfg.Storage.Backend)
	assert.Equal(t, "cloud-function-alert-workflow-manager-437809", cfg.Storage.DefaultBucket)
	assert.Equal(t, []string{".js", ".py", ".java"}, cfg.Analysis.Extensions)
	assert.Equal(t, "code_analysis.txt", cfg.Analysis.OutputFile)
	assert.False(t, cfg.Analysis.SkipBinary)
	assert.Equal(t, ProviderGemini, cfg.AI.Provider)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
server:
  port: 9090
clone:
  depth: 1
  timeout: 2m
ai:
  model: gemini-2.5-pro
  temperature: 0.2
analysis:
  extensions: [".go"]
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 1, cfg.Clone.Depth)
	assert.Equal(t, 2*time.Minute, cfg.Clone.Timeout)
	assert.Equal(t, "gemini-2.5-pro", cfg.AI.Model)
	assert.InDelta(t, 0.2, cfg.AI.Temperature, 1e-6)
	assert.Equal(t, []string{".go"}, cfg.Analysis.Extensions)

	// Untouched sections keep their defaults.
	assert.Equal(t, BackendGCS, cfg.Storage.Backend)
	assert.Equal(t, "code_analysis.txt", cfg.Analysis.OutputFile)
}

func TestLoadConfigErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "config file not found")
	})

	t.Run("bad yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("server: [oops"), 0o644))
		_, err := LoadConfig(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse config file")
	})
}

func TestEnvApply(t *testing.T) {
	ctx := context.Background()
	env, err := ProcessEnvWith(ctx, envconfig.MapLookuper(map[string]string{
		"PORT":            "3000",
		"BUCKET_NAME":     "my-bucket",
		"GEMINI_API_KEY":  "secret",
		"AI_PROVIDER":     "Vertex",
		"STORAGE_BACKEND": "memory",
		"OTEL_ENABLED":    "true",
	}))
	require.NoError(t, err)

	cfg := Default()
	require.NoError(t, env.Apply(cfg))

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "my-bucket", cfg.Storage.DefaultBucket)
	assert.Equal(t, "secret", cfg.AI.APIKey)
	assert.Equal(t, ProviderVertex, cfg.AI.Provider)
	assert.Equal(t, BackendMemory, cfg.Storage.Backend)
	assert.True(t, cfg.Telemetry.Enabled)

	// Unset variables leave defaults alone.
	assert.Equal(t, "gemini-2.5-flash", cfg.AI.Model)
}

func TestEnvApplyBadBool(t *testing.T) {
	env := &Env{OTelEnabled: "sometimes"}
	require.Error(t, env.Apply(Default()))
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := Default()
		cfg.AI.APIKey = "key"
		return cfg
	}

	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{{
		name:   "missing api key",
		mutate: func(c *Config) { c.AI.APIKey = "" },
		want:   "GEMINI_API_KEY",
	}, {
		name:   "vertex without project",
		mutate: func(c *Config) { c.AI.Provider = ProviderVertex },
		want:   "ai.project is required",
	}, {
		name:   "unknown provider",
		mutate: func(c *Config) { c.AI.Provider = "llama" },
		want:   "unknown ai provider",
	}, {
		name:   "local backend without root",
		mutate: func(c *Config) { c.Storage.Backend = BackendLocal },
		want:   "storage.local_root",
	}, {
		name:   "extension without dot",
		mutate: func(c *Config) { c.Analysis.Extensions = []string{"py"} },
		want:   "must start with a dot",
	}, {
		name:   "negative concurrency",
		mutate: func(c *Config) { c.Upload.Concurrency = -1 },
		want:   "upload concurrency",
	}, {
		name:   "unknown clone method",
		mutate: func(c *Config) { c.Clone.Method = "svn" },
		want:   "unknown clone method",
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDevelopmentConfig(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join("..", "..", "config", "development.yaml"))
	require.NoError(t, err)

	cfg.AI.APIKey = "test-key"
	require.NoError(t, cfg.Validate())
	assert.Equal(t, BackendLocal, cfg.Storage.Backend)
	assert.Equal(t, 1, cfg.Clone.Depth)
	assert.True(t, cfg.Clone.ExcludeGitDir)
	assert.Equal(t, []string{".js", ".py", ".java"}, cfg.Analysis.Extensions)
	assert.True(t, cfg.Analysis.SkipBinary)
}
