package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"corpus-ingestor/internal/app"
	"corpus-ingestor/internal/config"
	"corpus-ingestor/internal/http"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := cfg.NewLogger()
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg)
	stop()
	if err != nil {
		slog.Error("API server stopped", "error", err)
		os.Exit(1)
	}
}

// run serves the API until the server fails or ctx is done. Resources opened
// here are released before it returns.
func run(ctx context.Context, cfg *config.Config) error {
	application, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer func() {
		_ = application.Close()
	}()

	// Check the embedding server. A mismatch is logged rather than fatal so the
	// API can come up before the model server does.
	vectors, err := application.Embedder.EmbedTexts(ctx, []string{"test"})
	switch {
	case err != nil:
		slog.Warn("Embedding server not reachable at startup", "base_url", cfg.EmbeddingBaseURL, "error", err)
	case len(vectors) == 0 || len(vectors[0]) != cfg.QdrantVectorSize:
		slog.Warn("Embedding vector size mismatch", "expected", cfg.QdrantVectorSize)
	default:
		slog.Info("Embedding client validated", "vector_size", cfg.QdrantVectorSize)
	}

	router := http.NewRouter(&http.Deps{
		CorpusService: application.Service,
		Stores:        application.Stores,
		QdrantURL:     cfg.QdrantURL,
		Collection:    cfg.QdrantCollection,
		ReadyEnv:      cfg.ReadyEnv,
	})

	srv := &nethttp.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting API server", "addr", srv.Addr, "collection", cfg.QdrantCollection)
		slog.Debug("Embedding configuration", "base_url", cfg.EmbeddingBaseURL, "model", cfg.EmbeddingModelName)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			return fmt.Errorf("API server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		slog.Info("Shutting down API server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	}
}
