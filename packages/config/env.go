package config

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/sethvargo/go-envconfig"
)

// Env holds the process environment overrides. Empty values leave the file
// or default configuration untouched.
type Env struct {
	ConfigPath string `env:"CONFIG_PATH"`

	Port int `env:"PORT"`

	BucketName     string `env:"BUCKET_NAME"`
	StorageBackend string `env:"STORAGE_BACKEND"`
	LocalRoot      string `env:"STORAGE_LOCAL_ROOT"`

	WorkspaceDir string `env:"WORKSPACE_DIR"`
	CloneMethod  string `env:"CLONE_METHOD"`

	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	AIProvider   string `env:"AI_PROVIDER"`
	AIModel      string `env:"AI_MODEL"`
	Project      string `env:"GOOGLE_CLOUD_PROJECT"`
	Location     string `env:"GOOGLE_CLOUD_LOCATION"`

	OTelEnabled string `env:"OTEL_ENABLED"`
	ServiceName string `env:"OTEL_SERVICE_NAME"`
}

// ProcessEnv reads Env from the process environment.
func ProcessEnv(ctx context.Context) (*Env, error) {
	var env Env
	if err := envconfig.Process(ctx, &env); err != nil {
		return nil, fmt.Errorf("processing environment: %w", err)
	}
	return &env, nil
}

// ProcessEnvWith reads Env through the given lookuper.
func ProcessEnvWith(ctx context.Context, l envconfig.Lookuper) (*Env, error) {
	var env Env
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &env,
		Lookuper: l,
	}); err != nil {
		return nil, fmt.Errorf("processing environment: %w", err)
	}
	return &env, nil
}

// Apply overlays every non-empty environment value onto cfg.
func (e *Env) Apply(cfg *Config) error {
	if e.Port != 0 {
		cfg.Server.Port = e.Port
	}
	if e.BucketName != "" {
		cfg.Storage.DefaultBucket = e.BucketName
	}
	if e.StorageBackend != "" {
		cfg.Storage.Backend = strings.ToLower(e.StorageBackend)
	}
	if e.LocalRoot != "" {
		cfg.Storage.LocalRoot = e.LocalRoot
	}
	if e.WorkspaceDir != "" {
		cfg.Clone.WorkspaceDir = e.WorkspaceDir
	}
	if e.CloneMethod != "" {
		cfg.Clone.Method = strings.ToLower(e.CloneMethod)
	}
	if e.GeminiAPIKey != "" {
		cfg.AI.APIKey = e.GeminiAPIKey
	}
	if e.AIProvider != "" {
		cfg.AI.Provider = strings.ToLower(e.AIProvider)
	}
	if e.AIModel != "" {
		cfg.AI.Model = e.AIModel
	}
	if e.Project != "" {
		cfg.AI.Project = e.Project
	}
	if e.Location != "" {
		cfg.AI.Location = e.Location
	}
	if e.OTelEnabled != "" {
		enabled, err := strconv.ParseBool(e.OTelEnabled)
		if err != nil {
			return fmt.Errorf("parsing OTEL_ENABLED %q: %w", e.OTelEnabled, err)
		}
		cfg.Telemetry.Enabled = enabled
	}
	if e.ServiceName != "" {
		cfg.Telemetry.ServiceName = e.ServiceName
	}
	return nil
}
