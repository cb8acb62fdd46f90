// Command ingest loads a corpus directory into the vector store.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"corpus-ingestor/internal/app"
	"corpus-ingestor/internal/config"
	"corpus-ingestor/internal/contextutil"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	ctx = contextutil.WithLogger(ctx, logger)

	rootCmd := newRootCmd(application.Service, options{
		qdrantURL: cfg.QdrantURL,
		corpusDir: cfg.CorpusDir,
	})
	err = rootCmd.ExecuteContext(ctx)

	stop()
	_ = application.Close()

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
