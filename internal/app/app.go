// Package app wires configuration into the corpus service shared by the
// HTTP server and the ingest CLI.
package app

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"corpus-ingestor/internal/config"
	"corpus-ingestor/internal/llm"
	"corpus-ingestor/internal/service"
	"corpus-ingestor/internal/storage"
	"corpus-ingestor/internal/vectorstore"
)

// App holds the long-lived collaborators built from a Config.
type App struct {
	Config   *config.Config
	Embedder *llm.EmbeddingsClient
	Stores   service.StoreFactory
	Service  service.CorpusService

	db *sql.DB
}

// New builds the application. The ledger database is opened only when
// DBPath is set. Close releases it.
func New(cfg *config.Config) (*App, error) {
	embedder := llm.NewEmbeddingsClient(
		cfg.EmbeddingBaseURL,
		cfg.EmbeddingAPIKey,
		cfg.EmbeddingModelName,
		cfg.QdrantVectorSize,
		llm.WithRateLimit(cfg.EmbeddingRPS),
		llm.WithHTTPClient(&http.Client{Timeout: cfg.EmbeddingTimeout}),
	)

	a := &App{
		Config:   cfg,
		Embedder: embedder,
		Stores:   QdrantStores,
	}

	var opts []service.CorpusOption
	if cfg.DBPath != "" {
		db, err := storage.New(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		if err := storage.Migrate(db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		slog.Info("Ledger initialized", "path", cfg.DBPath)
		a.db = db
		opts = append(opts, service.WithLedger(storage.NewDocumentRepo(db), storage.NewChunkRepo(db)))
	} else {
		slog.Info("Ledger disabled, every run re-embeds all files")
	}

	a.Service = service.NewCorpusService(embedder, a.Stores, service.CorpusConfig{
		DefaultQdrantURL: cfg.QdrantURL,
		DefaultCorpusDir: cfg.CorpusDir,
		Collection:       cfg.QdrantCollection,
		Distance:         cfg.QdrantDistance,
		Workers:          cfg.IngestWorkers,
		IDScheme:         cfg.ChunkIDScheme,
		Retry:            cfg.RetryPolicy(),
	}, opts...)

	return a, nil
}

// Close releases the ledger database, if one was opened.
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

// QdrantStores opens a Qdrant store for url.
func QdrantStores(url string) (vectorstore.VectorStore, error) {
	return vectorstore.NewQdrantStore(url)
}
