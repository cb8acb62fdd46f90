package indexer

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_embedder.go -package=mocks corpus-ingestor/internal/indexer Embedder

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Embedder turns chunk text into a fixed-dimension vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}

// IDScheme selects how vector point IDs are derived for chunks.
type IDScheme string

const (
	// IDSchemeDeterministic derives the ID from the relative path and chunk
	// index, so re-ingesting a file overwrites its previous points.
	IDSchemeDeterministic IDScheme = "deterministic"
	// IDSchemeRandom assigns a fresh UUID to every chunk on every run.
	IDSchemeRandom IDScheme = "random"
)

// ParseIDScheme validates an ID scheme name. Empty means deterministic.
func ParseIDScheme(s string) (IDScheme, error) {
	switch IDScheme(s) {
	case "", IDSchemeDeterministic:
		return IDSchemeDeterministic, nil
	case IDSchemeRandom:
		return IDSchemeRandom, nil
	default:
		return "", fmt.Errorf("unknown chunk id scheme %q (want deterministic or random)", s)
	}
}

// chunkNamespace scopes name-based chunk UUIDs to this application.
var chunkNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("corpus-ingestor/chunks"))

// ChunkID returns the point ID for chunk index of the file at relPath.
// Deterministic IDs are UUIDv5 over "<relPath>#<index>".
func ChunkID(scheme IDScheme, relPath string, index int) string {
	if scheme == IDSchemeRandom {
		return uuid.NewString()
	}
	return uuid.NewSHA1(chunkNamespace, fmt.Appendf(nil, "%s#%d", relPath, index)).String()
}

// Payload keys stored with every point.
const (
	PayloadText       = "text"
	PayloadSource     = "source"
	PayloadExtension  = "extension"
	PayloadCategory   = "category"
	PayloadPath       = "path"
	PayloadChunkIndex = "chunk_index"
	PayloadTitle      = "title"
)
