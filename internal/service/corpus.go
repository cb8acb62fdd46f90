package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_embedding_client.go -package=mocks corpus-ingestor/internal/service EmbeddingClient
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_corpus_service.go -package=mocks -mock_names=CorpusService=MockCorpusService corpus-ingestor/internal/service CorpusService

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"corpus-ingestor/internal/contextutil"
	"corpus-ingestor/internal/indexer"
	"corpus-ingestor/internal/storage"
	"corpus-ingestor/internal/vectorstore"
)

const (
	// DefaultSearchK is the number of results returned when k is not set.
	DefaultSearchK = 5
	// MaxSearchK is the largest accepted k.
	MaxSearchK = 100
)

// EmbeddingClient is the embedding collaborator as seen by the service layer.
type EmbeddingClient interface {
	// Embed returns the vector of a single text.
	Embed(ctx context.Context, text string) ([]float32, error)
	// EmbedTexts returns one vector per text, in input order.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
	// Dimension returns the fixed vector size.
	Dimension() int
}

// StoreFactory opens a vector store for the given URL. The caller closes it.
type StoreFactory func(url string) (vectorstore.VectorStore, error)

// CorpusConfig holds the defaults applied to corpus requests.
type CorpusConfig struct {
	DefaultQdrantURL string
	DefaultCorpusDir string
	Collection       string
	Distance         vectorstore.Distance
	Workers          int
	IDScheme         indexer.IDScheme
	Retry            indexer.RetryPolicy
}

// IngestRequest asks for a corpus directory to be ingested. Empty fields
// fall back to the configured defaults.
type IngestRequest struct {
	QdrantURL string
	CorpusDir string
	Workers   int
}

// SearchRequest is a similarity query with optional exact-match filters.
type SearchRequest struct {
	QdrantURL string
	Query     string
	K         int
	Category  string
	Extension string
}

// SearchHit is one chunk returned by a search.
type SearchHit struct {
	ID        string
	Score     float32
	Text      string
	Source    string
	Category  string
	Extension string
	Path      string
}

// CorpusService ingests, cleans and queries corpus collections.
type CorpusService interface {
	// Embed returns one vector per text.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	// Ingest runs the ingestion pipeline. Stats are returned even when the
	// error wraps indexer.ErrPartialFailure.
	Ingest(ctx context.Context, req IngestRequest) (*indexer.Stats, error)
	// Clean drops and recreates the collection at qdrantURL.
	Clean(ctx context.Context, qdrantURL string) error
	// Search embeds the query and returns the k most similar chunks.
	Search(ctx context.Context, req SearchRequest) ([]SearchHit, error)
}

// corpusService implements CorpusService.
type corpusService struct {
	embedder  EmbeddingClient
	stores    StoreFactory
	cfg       CorpusConfig
	documents storage.DocumentStore
	chunks    storage.ChunkStore
}

// CorpusOption configures the corpus service.
type CorpusOption func(*corpusService)

// WithLedger enables change tracking for ingestion runs.
func WithLedger(documents storage.DocumentStore, chunks storage.ChunkStore) CorpusOption {
	return func(s *corpusService) {
		s.documents = documents
		s.chunks = chunks
	}
}

// NewCorpusService creates a new CorpusService. A vector store is opened
// through stores for every request and closed when the request completes.
func NewCorpusService(embedder EmbeddingClient, stores StoreFactory, cfg CorpusConfig, opts ...CorpusOption) CorpusService {
	s := &corpusService{
		embedder: embedder,
		stores:   stores,
		cfg:      cfg,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Embed returns one vector per text.
func (s *corpusService) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if len(texts) == 0 {
		return nil, &ValidationError{Field: "texts", Message: "cannot be empty"}
	}

	vectors, err := s.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		logger.ErrorContext(ctx, "failed to embed texts", "count", len(texts), "error", err)
		return nil, fmt.Errorf("%w: failed to embed texts: %w", ErrExternalService, err)
	}
	return vectors, nil
}

// Ingest runs the ingestion pipeline against the requested store and corpus.
func (s *corpusService) Ingest(ctx context.Context, req IngestRequest) (*indexer.Stats, error) {
	logger := contextutil.LoggerFromContext(ctx)

	corpusDir := req.CorpusDir
	if corpusDir == "" {
		corpusDir = s.cfg.DefaultCorpusDir
	}
	if req.Workers < 0 {
		return nil, &ValidationError{Field: "workers", Message: "must not be negative"}
	}

	store, url, err := s.openStore(req.QdrantURL)
	if err != nil {
		return nil, err
	}
	defer s.closeStore(ctx, store)

	workers := s.cfg.Workers
	if req.Workers > 0 {
		workers = req.Workers
	}

	stats, err := s.pipeline(store, url, indexer.WithWorkers(workers)).Ingest(ctx, corpusDir)
	switch {
	case err == nil, errors.Is(err, indexer.ErrPartialFailure):
		return stats, err
	case errors.Is(err, indexer.ErrCorpusNotFound):
		logger.WarnContext(ctx, "corpus directory not found", "corpus", corpusDir)
		return nil, &ValidationError{Field: "corpus", Message: fmt.Sprintf("directory %q not found", corpusDir)}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return stats, err
	default:
		logger.ErrorContext(ctx, "ingestion failed", "qdrant_url", url, "error", err)
		return stats, fmt.Errorf("%w: %w", ErrExternalService, err)
	}
}

// Clean drops and recreates the collection.
func (s *corpusService) Clean(ctx context.Context, qdrantURL string) error {
	logger := contextutil.LoggerFromContext(ctx)

	store, url, err := s.openStore(qdrantURL)
	if err != nil {
		return err
	}
	defer s.closeStore(ctx, store)

	if err := s.pipeline(store, url).Clean(ctx); err != nil {
		logger.ErrorContext(ctx, "clean failed", "qdrant_url", url, "error", err)
		return WrapError(fmt.Errorf("%w: %w", ErrExternalService, err), "failed to clean collection")
	}
	return nil
}

// Search embeds the query and runs a filtered similarity search.
func (s *corpusService) Search(ctx context.Context, req SearchRequest) ([]SearchHit, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if strings.TrimSpace(req.Query) == "" {
		return nil, &ValidationError{Field: "query", Message: "cannot be empty"}
	}
	k := req.K
	if k == 0 {
		k = DefaultSearchK
	}
	if k < 1 || k > MaxSearchK {
		return nil, &ValidationError{Field: "k", Message: fmt.Sprintf("must be between 1 and %d", MaxSearchK)}
	}

	store, url, err := s.openStore(req.QdrantURL)
	if err != nil {
		return nil, err
	}
	defer s.closeStore(ctx, store)

	exists, err := store.CollectionExists(ctx, s.cfg.Collection)
	if err != nil {
		logger.ErrorContext(ctx, "failed to check collection", "qdrant_url", url, "error", err)
		return nil, fmt.Errorf("%w: failed to check collection: %w", ErrExternalService, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: collection %q", ErrNotFound, s.cfg.Collection)
	}

	vec, err := s.embedder.Embed(ctx, req.Query)
	if err != nil {
		logger.ErrorContext(ctx, "failed to embed query", "error", err)
		return nil, fmt.Errorf("%w: failed to embed query: %w", ErrExternalService, err)
	}

	filters := map[string]any{
		indexer.PayloadCategory:  req.Category,
		indexer.PayloadExtension: normalizeExtension(req.Extension),
	}
	results, err := store.Search(ctx, s.cfg.Collection, vec, k, filters)
	if err != nil {
		logger.ErrorContext(ctx, "search failed", "qdrant_url", url, "error", err)
		return nil, fmt.Errorf("%w: search failed: %w", ErrExternalService, err)
	}

	hits := make([]SearchHit, 0, len(results))
	for _, r := range results {
		hits = append(hits, SearchHit{
			ID:        r.PointID,
			Score:     r.Score,
			Text:      metaString(r.Meta, indexer.PayloadText),
			Source:    metaString(r.Meta, indexer.PayloadSource),
			Category:  metaString(r.Meta, indexer.PayloadCategory),
			Extension: metaString(r.Meta, indexer.PayloadExtension),
			Path:      metaString(r.Meta, indexer.PayloadPath),
		})
	}

	logger.InfoContext(ctx, "search completed", "k", k, "results", len(hits))
	return hits, nil
}

// openStore opens the store for url, falling back to the default URL.
func (s *corpusService) openStore(url string) (vectorstore.VectorStore, string, error) {
	if url == "" {
		url = s.cfg.DefaultQdrantURL
	}
	store, err := s.stores(url)
	if err != nil {
		return nil, url, &ValidationError{Field: "qdrant_url", Message: err.Error()}
	}
	return store, url, nil
}

func (s *corpusService) closeStore(ctx context.Context, store vectorstore.VectorStore) {
	if err := store.Close(); err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "failed to close vector store", "error", err)
	}
}

// pipeline builds an ingestion pipeline bound to store.
func (s *corpusService) pipeline(store vectorstore.VectorStore, url string, extra ...indexer.Option) *indexer.Pipeline {
	opts := []indexer.Option{
		indexer.WithTarget(Target(url, s.cfg.Collection)),
		indexer.WithDistance(s.cfg.Distance),
		indexer.WithWorkers(s.cfg.Workers),
		indexer.WithIDScheme(s.cfg.IDScheme),
		indexer.WithRetryPolicy(s.cfg.Retry),
	}
	if s.documents != nil && s.chunks != nil {
		opts = append(opts, indexer.WithLedger(s.documents, s.chunks))
	}
	opts = append(opts, extra...)
	return indexer.NewPipeline(store, s.embedder, s.cfg.Collection, opts...)
}

// Target identifies a collection on a specific vector store in the ledger.
func Target(url, collection string) string {
	return strings.TrimRight(url, "/") + "/" + collection
}

// normalizeExtension lower-cases ext and adds the leading dot.
func normalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

func metaString(meta map[string]any, key string) string {
	if v, ok := meta[key].(string); ok {
		return v
	}
	return ""
}
