package handlers

import (
	"errors"
	"net/http"

	"corpus-ingestor/internal/contextutil"
	"corpus-ingestor/internal/indexer"
	"corpus-ingestor/internal/service"
)

// IngestRequest represents the HTTP request payload for ingestion.
// Empty fields fall back to the server configuration.
type IngestRequest struct {
	QdrantURL string `json:"qdrant_url,omitempty"`
	Corpus    string `json:"corpus,omitempty"`
}

// IngestResponse reports the outcome of an ingestion run.
// Done is false when some files or chunks failed.
type IngestResponse struct {
	Done  bool           `json:"done"`
	Stats *indexer.Stats `json:"stats,omitempty"`
}

// CleanRequest represents the HTTP request payload for cleaning a collection.
type CleanRequest struct {
	QdrantURL string `json:"qdrant_url,omitempty"`
}

// CleanResponse reports that the collection was recreated.
type CleanResponse struct {
	Done bool `json:"done"`
}

// SearchRequest represents the HTTP request payload for similarity search.
type SearchRequest struct {
	QdrantURL string `json:"qdrant_url,omitempty"`
	Query     string `json:"query"`
	K         int    `json:"k,omitempty"`
	Category  string `json:"category,omitempty"`
	Extension string `json:"extension,omitempty"`
}

// SearchResult is one chunk in a search response.
type SearchResult struct {
	ID        string  `json:"id"`
	Score     float32 `json:"score"`
	Text      string  `json:"text"`
	Source    string  `json:"source"`
	Category  string  `json:"category"`
	Extension string  `json:"extension"`
	Path      string  `json:"path"`
}

// SearchResponse holds search results ordered by score.
type SearchResponse struct {
	Results []SearchResult `json:"results"`
}

// IngestHandler handles HTTP requests that ingest a corpus directory.
type IngestHandler struct {
	corpusService service.CorpusService
}

// NewIngestHandler creates a new IngestHandler.
func NewIngestHandler(corpusService service.CorpusService) *IngestHandler {
	return &IngestHandler{corpusService: corpusService}
}

// ServeHTTP handles POST /corpus/ingest. The run is synchronous.
func (h *IngestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req IngestRequest
	if err := decodeJSON(r, &req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	stats, err := h.corpusService.Ingest(ctx, service.IngestRequest{
		QdrantURL: req.QdrantURL,
		CorpusDir: req.Corpus,
	})
	if err != nil && !errors.Is(err, indexer.ErrPartialFailure) {
		handleServiceError(ctx, w, err, "Failed to ingest corpus")
		return
	}
	if err != nil {
		logger.WarnContext(ctx, "ingestion finished with failures", "error", err)
	}

	writeJSON(w, http.StatusOK, IngestResponse{Done: err == nil, Stats: stats})
}

// CleanHandler handles HTTP requests that drop and recreate the collection.
type CleanHandler struct {
	corpusService service.CorpusService
}

// NewCleanHandler creates a new CleanHandler.
func NewCleanHandler(corpusService service.CorpusService) *CleanHandler {
	return &CleanHandler{corpusService: corpusService}
}

// ServeHTTP handles POST /corpus/clean.
func (h *CleanHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req CleanRequest
	if err := decodeJSON(r, &req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.corpusService.Clean(ctx, req.QdrantURL); err != nil {
		handleServiceError(ctx, w, err, "Failed to clean collection")
		return
	}

	writeJSON(w, http.StatusOK, CleanResponse{Done: true})
}

// SearchHandler handles HTTP similarity search requests.
type SearchHandler struct {
	corpusService service.CorpusService
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(corpusService service.CorpusService) *SearchHandler {
	return &SearchHandler{corpusService: corpusService}
}

// ServeHTTP handles POST /corpus/search.
func (h *SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req SearchRequest
	if err := decodeJSON(r, &req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	hits, err := h.corpusService.Search(ctx, service.SearchRequest{
		QdrantURL: req.QdrantURL,
		Query:     req.Query,
		K:         req.K,
		Category:  req.Category,
		Extension: req.Extension,
	})
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to search corpus")
		return
	}

	results := make([]SearchResult, 0, len(hits))
	for _, hit := range hits {
		results = append(results, SearchResult{
			ID:        hit.ID,
			Score:     hit.Score,
			Text:      hit.Text,
			Source:    hit.Source,
			Category:  hit.Category,
			Extension: hit.Extension,
			Path:      hit.Path,
		})
	}

	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}
