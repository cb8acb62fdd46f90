package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"corpus-ingestor/internal/handlers"
	"corpus-ingestor/internal/service"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	CorpusService service.CorpusService
	Stores        service.StoreFactory // Used by the health check
	QdrantURL     string               // Default vector store checked by /health
	Collection    string
	ReadyEnv      string // Name of the environment flag read by /ready
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(LoggerMiddleware)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(CORS)

	r.Method(http.MethodPost, "/embed", handlers.NewEmbedHandler(deps.CorpusService))

	r.Route("/corpus", func(r chi.Router) {
		r.Method(http.MethodPost, "/ingest", handlers.NewIngestHandler(deps.CorpusService))
		r.Method(http.MethodPost, "/clean", handlers.NewCleanHandler(deps.CorpusService))
		r.Method(http.MethodPost, "/search", handlers.NewSearchHandler(deps.CorpusService))
	})

	r.Method(http.MethodGet, "/ready", handlers.NewReadyHandler(deps.ReadyEnv))
	r.Method(http.MethodGet, "/health", handlers.NewHealthHandler(deps.Stores, deps.QdrantURL, deps.Collection))

	return r
}
