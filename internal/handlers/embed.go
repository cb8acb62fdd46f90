package handlers

import (
	"encoding/json"
	"net/http"

	"corpus-ingestor/internal/contextutil"
	"corpus-ingestor/internal/service"
)

// EmbedHandler handles HTTP requests for raw text embeddings.
type EmbedHandler struct {
	corpusService service.CorpusService
}

// NewEmbedHandler creates a new EmbedHandler.
func NewEmbedHandler(corpusService service.CorpusService) *EmbedHandler {
	return &EmbedHandler{corpusService: corpusService}
}

// EmbedRequest represents the HTTP request payload for embeddings.
type EmbedRequest struct {
	Texts []string `json:"texts"`
}

// EmbedResponse holds one vector per requested text.
type EmbedResponse struct {
	Vectors [][]float32 `json:"vectors"`
}

// ServeHTTP handles POST /embed.
func (h *EmbedHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req EmbedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	vectors, err := h.corpusService.Embed(ctx, req.Texts)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to embed texts")
		return
	}

	writeJSON(w, http.StatusOK, EmbedResponse{Vectors: vectors})
}
