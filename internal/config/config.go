package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"corpus-ingestor/internal/indexer"
	"corpus-ingestor/internal/vectorstore"
)

// Config holds all configuration for the application.
type Config struct {
	QdrantURL            string
	QdrantCollection     string
	QdrantVectorSize     int
	QdrantDistance       vectorstore.Distance
	EmbeddingBaseURL     string
	EmbeddingModelName   string
	EmbeddingAPIKey      string
	EmbeddingRPS         float64
	EmbeddingTimeout     time.Duration
	CorpusDir            string
	DBPath               string
	IngestWorkers        int
	RetryMaxAttempts     int
	RetryInitialInterval time.Duration
	ChunkIDScheme        indexer.IDScheme
	ReadyEnv             string
	APIPort              string
	LogLevel             slog.Level
	LogFormat            string
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates the typed ones.
// If a .env file exists in the current directory or a parent, it will be loaded automatically.
// Environment variables already set take precedence over .env file values.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	wd, err := os.Getwd()
	if err == nil {
		dir := wd
		for i := 0; i < 5; i++ { // Limit search depth
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break // Reached filesystem root
			}
			dir = parent
		}
	}

	cfg := &Config{
		QdrantURL:          getEnv("QDRANT_URL", "http://localhost:6333"),
		QdrantCollection:   getEnv("QDRANT_COLLECTION", "compliance_corpus"),
		EmbeddingBaseURL:   getEnv("EMBEDDING_BASE_URL", "http://localhost:8081"),
		EmbeddingModelName: getEnv("EMBEDDING_MODEL_NAME", "all-MiniLM-L6-v2"),
		EmbeddingAPIKey:    getEnv("EMBEDDING_API_KEY", ""),
		CorpusDir:          getEnv("CORPUS_DIR", "corpus"),
		// An explicitly empty DB_PATH disables the ledger.
		DBPath:    getEnvAllowEmpty("DB_PATH", "./data/ingestor.db"),
		ReadyEnv:  getEnv("READY_ENV", "READY"),
		APIPort:   getEnv("API_PORT", "8000"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}

	// The vector size must match the output size of the embeddings model.
	// Changing it requires recreating the collection.
	if cfg.QdrantVectorSize, err = getPositiveInt("QDRANT_VECTOR_SIZE", 384); err != nil {
		return nil, err
	}
	if cfg.IngestWorkers, err = getPositiveInt("INGEST_WORKERS", indexer.DefaultWorkers); err != nil {
		return nil, err
	}
	if cfg.RetryMaxAttempts, err = getPositiveInt("RETRY_MAX_ATTEMPTS", indexer.DefaultRetryPolicy().MaxAttempts); err != nil {
		return nil, err
	}

	interval := getEnv("RETRY_INITIAL_INTERVAL", indexer.DefaultRetryPolicy().InitialInterval.String())
	cfg.RetryInitialInterval, err = time.ParseDuration(interval)
	if err != nil {
		return nil, fmt.Errorf("RETRY_INITIAL_INTERVAL must be a valid duration: %w", err)
	}
	if cfg.RetryInitialInterval < 0 {
		return nil, fmt.Errorf("RETRY_INITIAL_INTERVAL must not be negative")
	}

	cfg.EmbeddingTimeout, err = time.ParseDuration(getEnv("EMBEDDING_TIMEOUT", "60s"))
	if err != nil {
		return nil, fmt.Errorf("EMBEDDING_TIMEOUT must be a valid duration: %w", err)
	}
	if cfg.EmbeddingTimeout < 0 {
		return nil, fmt.Errorf("EMBEDDING_TIMEOUT must not be negative")
	}

	rps := getEnv("EMBEDDING_RPS", "0")
	cfg.EmbeddingRPS, err = strconv.ParseFloat(rps, 64)
	if err != nil {
		return nil, fmt.Errorf("EMBEDDING_RPS must be a valid number: %w", err)
	}
	if cfg.EmbeddingRPS < 0 {
		return nil, fmt.Errorf("EMBEDDING_RPS must not be negative")
	}

	cfg.QdrantDistance, err = vectorstore.ParseDistance(getEnv("QDRANT_DISTANCE", string(vectorstore.DistanceCosine)))
	if err != nil {
		return nil, fmt.Errorf("QDRANT_DISTANCE: %w", err)
	}

	cfg.ChunkIDScheme, err = indexer.ParseIDScheme(getEnv("CHUNK_ID_SCHEME", string(indexer.IDSchemeDeterministic)))
	if err != nil {
		return nil, fmt.Errorf("CHUNK_ID_SCHEME: %w", err)
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("LOG_FORMAT must be text or json, got %q", cfg.LogFormat)
	}

	if cfg.DBPath != "" {
		dataDir := filepath.Dir(cfg.DBPath)
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	return cfg, nil
}

// RetryPolicy returns the retry settings used for embedding and upsert calls.
func (c *Config) RetryPolicy() indexer.RetryPolicy {
	return indexer.RetryPolicy{
		MaxAttempts:     c.RetryMaxAttempts,
		InitialInterval: c.RetryInitialInterval,
	}
}

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func (c *Config) NewLogger() *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: c.LogLevel,
	}
	var handler slog.Handler
	if c.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAllowEmpty is like getEnv but keeps a variable that is set to "".
func getEnvAllowEmpty(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

func getPositiveInt(key string, defaultValue int) (int, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", key)
	}
	return n, nil
}
