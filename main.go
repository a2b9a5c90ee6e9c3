package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"repo-analyzer/packages/ai"
	"repo-analyzer/packages/analysis"
	"repo-analyzer/packages/config"
	"repo-analyzer/packages/handlers"
	"repo-analyzer/packages/logging"
	"repo-analyzer/packages/repository"
	"repo-analyzer/packages/storage"
	"repo-analyzer/packages/telemetry"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using process environment")
	}

	log := logging.New()
	slog.SetDefault(log)

	if err := run(log); err != nil {
		log.Error("repo-analyzer exited", "error", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// --- Observability ---

	tel, err := telemetry.New(ctx, cfg.Telemetry.Enabled, cfg.Telemetry.ServiceName)
	if err != nil {
		return fmt.Errorf("telemetry init: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			log.Error("telemetry shutdown failed", "error", err)
		}
	}()
	metrics := telemetry.NewMetrics()

	// --- Adapters ---

	store, err := storage.NewProvider(ctx, storage.Options{
		Backend:   cfg.Storage.Backend,
		LocalRoot: cfg.Storage.LocalRoot,
	})
	if err != nil {
		return fmt.Errorf("storage init: %w", err)
	}
	defer store.Close()

	model, err := ai.New(ctx, ai.Options{
		Provider:        cfg.AI.Provider,
		Model:           cfg.AI.Model,
		APIKey:          cfg.AI.APIKey,
		Project:         cfg.AI.Project,
		Location:        cfg.AI.Location,
		Temperature:     cfg.AI.Temperature,
		TopK:            cfg.AI.TopK,
		TopP:            cfg.AI.TopP,
		MaxOutputTokens: cfg.AI.MaxOutputTokens,
	})
	if err != nil {
		return fmt.Errorf("ai client init: %w", err)
	}
	defer model.Close()

	cloner, err := repository.NewCloner(cfg.Clone.Method, cfg.Clone.Depth)
	if err != nil {
		return err
	}

	// --- Services + HTTP ---

	mirror := repository.NewMirror(cloner, store, metrics, repository.MirrorOptions{
		WorkspaceDir:  cfg.Clone.WorkspaceDir,
		ExcludeGitDir: cfg.Clone.ExcludeGitDir,
		Concurrency:   cfg.Upload.Concurrency,
		Timeout:       cfg.Clone.Timeout,
	})
	analyzer := analysis.NewService(store, model, metrics, analysis.Options{
		Extensions:     cfg.Analysis.Extensions,
		MaxPromptBytes: cfg.Analysis.MaxPromptBytes,
		SkipBinary:     cfg.Analysis.SkipBinary,
		OutputFile:     cfg.Analysis.OutputFile,
		Timeout:        cfg.AI.Timeout,
	})

	router := gin.New()
	router.Use(gin.Recovery(), otelgin.Middleware(cfg.Telemetry.ServiceName), logging.Middleware(log))
	handlers.RegisterRoutes(router, mirror, analyzer, cfg.Storage.DefaultBucket)

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting repo-analyzer",
			"port", cfg.Server.Port,
			"storage", cfg.Storage.Backend,
			"provider", cfg.AI.Provider,
			"model", model.Model())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down", "timeout", cfg.Server.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
