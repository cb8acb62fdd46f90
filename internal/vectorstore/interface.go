package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_vector_store.go -package=mocks corpus-ingestor/internal/vectorstore VectorStore

import (
	"context"
	"fmt"
	"strings"
)

// Point represents a vector point with metadata.
type Point struct {
	ID   string
	Vec  []float32
	Meta map[string]any
}

// SearchResult represents a search result from vector search.
type SearchResult struct {
	PointID string
	Score   float32
	Meta    map[string]any
}

// Distance is the similarity metric of a collection.
type Distance string

const (
	DistanceCosine    Distance = "Cosine"
	DistanceEuclid    Distance = "Euclid"
	DistanceDot       Distance = "Dot"
	DistanceManhattan Distance = "Manhattan"
)

// ParseDistance parses a distance name case-insensitively.
func ParseDistance(s string) (Distance, error) {
	for _, d := range []Distance{DistanceCosine, DistanceEuclid, DistanceDot, DistanceManhattan} {
		if strings.EqualFold(s, string(d)) {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown distance %q (want Cosine, Euclid, Dot or Manhattan)", s)
}

// VectorStore defines the interface for vector storage operations.
type VectorStore interface {
	// EnsureCollection creates the collection if it is absent.
	// An existing collection with a matching vector size is accepted as is.
	EnsureCollection(ctx context.Context, collection string, vectorSize int, distance Distance) error

	// CollectionExists reports whether the collection exists.
	CollectionExists(ctx context.Context, collection string) (bool, error)

	// CountPoints returns the exact number of points in the collection.
	CountPoints(ctx context.Context, collection string) (int, error)

	// DeleteCollection drops the collection. Missing collections are not an error.
	DeleteCollection(ctx context.Context, collection string) error

	// Upsert inserts or updates points in the collection and waits for the write to be applied.
	Upsert(ctx context.Context, collection string, points []Point) error

	// Search performs a similarity search with optional exact-match filters.
	Search(ctx context.Context, collection string, query []float32, k int, filters map[string]any) ([]SearchResult, error)

	// Delete removes points by their IDs.
	Delete(ctx context.Context, collection string, ids []string) error

	// Close releases the underlying connection.
	Close() error
}
