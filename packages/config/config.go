package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Clone     CloneConfig     `yaml:"clone"`
	Upload    UploadConfig    `yaml:"upload"`
	AI        AIConfig        `yaml:"ai"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains HTTP listener settings
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// StorageConfig selects the object storage backend
type StorageConfig struct {
	Backend       string `yaml:"backend"`
	DefaultBucket string `yaml:"default_bucket"`
	LocalRoot     string `yaml:"local_root"`
}

// CloneConfig contains repository clone settings
type CloneConfig struct {
	Method        string        `yaml:"method"`
	Depth         int           `yaml:"depth"`
	WorkspaceDir  string        `yaml:"workspace_dir"`
	ExcludeGitDir bool          `yaml:"exclude_git_dir"`
	Timeout       time.Duration `yaml:"timeout"`
}

// UploadConfig contains upload fan-out settings
type UploadConfig struct {
	Concurrency int `yaml:"concurrency"`
}

// AIConfig contains AI-related configuration
type AIConfig struct {
	Provider        string        `yaml:"provider"`
	Model           string        `yaml:"model"`
	APIKey          string        `yaml:"-"`
	Project         string        `yaml:"project"`
	Location        string        `yaml:"location"`
	Temperature     float32       `yaml:"temperature"`
	TopK            int32         `yaml:"top_k"`
	TopP            float32       `yaml:"top_p"`
	MaxOutputTokens int32         `yaml:"max_output_tokens"`
	Timeout         time.Duration `yaml:"timeout"`
}

// AnalysisConfig controls which stored files feed the prompt
type AnalysisConfig struct {
	Extensions     []string `yaml:"extensions"`
	MaxPromptBytes int      `yaml:"max_prompt_bytes"`
	SkipBinary     bool     `yaml:"skip_binary"`
	OutputFile     string   `yaml:"output_file"`
}

// TelemetryConfig toggles OpenTelemetry export
type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name"`
}

const (
	ProviderGemini = "gemini"
	ProviderVertex = "vertex"
	ProviderClaude = "claude"

	BackendGCS    = "gcs"
	BackendLocal  = "local"
	BackendMemory = "memory"

	CloneMethodGoGit = "go-git"
	CloneMethodCLI   = "git"
)

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ShutdownTimeout: 10 * time.Second,
		},
		Storage: StorageConfig{
			Backend:       BackendGCS,
			DefaultBucket: "cloud-function-alert-workflow-manager-437809",
		},
		Clone: CloneConfig{
			Method: CloneMethodGoGit,
		},
		AI: AIConfig{
			Provider: ProviderGemini,
			Model:    "gemini-2.5-flash",
			Location: "us-central1",
		},
		Analysis: AnalysisConfig{
			Extensions:     []string{".js", ".py", ".java"},
			MaxPromptBytes: 4 << 20,
			OutputFile:     "code_analysis.txt",
		},
		Telemetry: TelemetryConfig{
			ServiceName: "repo-analyzer",
		},
	}
}

// LoadConfig loads configuration from the specified file on top of the
// defaults. An empty path yields the defaults.
func LoadConfig(configPath string) (*Config, error) {
	cfg := Default()
	if configPath == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config file not found: %s", configPath)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Load reads the optional YAML file named by CONFIG_PATH, applies
// environment overrides and validates the result.
func Load(ctx context.Context) (*Config, error) {
	env, err := ProcessEnv(ctx)
	if err != nil {
		return nil, err
	}

	cfg, err := LoadConfig(env.ConfigPath)
	if err != nil {
		return nil, err
	}

	if err := env.Apply(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the selected backends are known and have the
// settings they need.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server port %d out of range", c.Server.Port))
	}

	switch c.Storage.Backend {
	case BackendGCS, BackendMemory:
	case BackendLocal:
		if c.Storage.LocalRoot == "" {
			errs = append(errs, errors.New("storage.local_root is required for the local backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage backend %q", c.Storage.Backend))
	}

	switch c.Clone.Method {
	case CloneMethodGoGit, CloneMethodCLI:
	default:
		errs = append(errs, fmt.Errorf("unknown clone method %q", c.Clone.Method))
	}
	if c.Clone.Depth < 0 {
		errs = append(errs, fmt.Errorf("clone depth must not be negative, got %d", c.Clone.Depth))
	}
	if c.Upload.Concurrency < 0 {
		errs = append(errs, fmt.Errorf("upload concurrency must not be negative, got %d", c.Upload.Concurrency))
	}

	if c.AI.Model == "" {
		errs = append(errs, errors.New("ai.model is required"))
	}
	switch c.AI.Provider {
	case ProviderGemini:
		if c.AI.APIKey == "" {
			errs = append(errs, errors.New("GEMINI_API_KEY not set in environment"))
		}
	case ProviderVertex, ProviderClaude:
		if c.AI.Project == "" {
			errs = append(errs, fmt.Errorf("ai.project is required for provider %q", c.AI.Provider))
		}
		if c.AI.Location == "" {
			errs = append(errs, fmt.Errorf("ai.location is required for provider %q", c.AI.Provider))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown ai provider %q", c.AI.Provider))
	}

	if len(c.Analysis.Extensions) == 0 {
		errs = append(errs, errors.New("analysis.extensions must not be empty"))
	}
	for _, ext := range c.Analysis.Extensions {
		if !strings.HasPrefix(ext, ".") {
			errs = append(errs, fmt.Errorf("analysis extension %q must start with a dot", ext))
		}
	}
	if c.Analysis.MaxPromptBytes < 0 {
		errs = append(errs, fmt.Errorf("analysis.max_prompt_bytes must not be negative, got %d", c.Analysis.MaxPromptBytes))
	}
	if c.Analysis.OutputFile == "" {
		errs = append(errs, errors.New("analysis.output_file is required"))
	}

	return errors.Join(errs...)
}
