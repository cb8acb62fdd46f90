package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_document_store.go -package=mocks corpus-ingestor/internal/storage DocumentStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
)

// DocumentStore defines the interface for document ledger operations.
type DocumentStore interface {
	// GetByTargetAndPath gets a document by target and relative path.
	// Returns nil and ErrNotFound if not found.
	GetByTargetAndPath(ctx context.Context, target, relPath string) (*DocumentRecord, error)
	// Upsert inserts a new document or updates an existing one.
	Upsert(ctx context.Context, doc *DocumentRecord) error
	// DeleteByTarget removes every document (and its chunks) recorded for target.
	DeleteByTarget(ctx context.Context, target string) (int, error)
	// CountByTarget returns the number of documents recorded for target.
	CountByTarget(ctx context.Context, target string) (int, error)
}

// DocumentRepo provides methods for document operations.
// It implements the DocumentStore interface.
type DocumentRepo struct {
	db *sql.DB
}

// NewDocumentRepo creates a new DocumentRepo.
func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

// GetByTargetAndPath gets a document by target and relative path.
// Returns nil and ErrNotFound if not found.
func (r *DocumentRepo) GetByTargetAndPath(ctx context.Context, target, relPath string) (*DocumentRecord, error) {
	var doc DocumentRecord
	var updatedAtStr string

	err := r.db.QueryRowContext(ctx,
		`SELECT id, target, rel_path, category, extension, hash, chunk_count, updated_at
		 FROM documents WHERE target = ? AND rel_path = ?`,
		target, relPath,
	).Scan(&doc.ID, &doc.Target, &doc.RelPath, &doc.Category, &doc.Extension, &doc.Hash, &doc.ChunkCount, &updatedAtStr)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query document: %w", err)
	}

	doc.UpdatedAt, err = parseTimestamp(updatedAtStr)
	if err != nil {
		return nil, err
	}

	return &doc, nil
}

// parseTimestamp parses a SQLite DATETIME column. The driver may hand back
// either the CURRENT_TIMESTAMP layout or RFC 3339.
func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02 15:04:05", s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse updated_at timestamp: %w", err)
	}
	return t, nil
}

// Upsert inserts a new document or updates an existing one.
// New documents get a UUID unless doc.ID is set. Existing documents keep
// their ID, which is written back into doc.
func (r *DocumentRepo) Upsert(ctx context.Context, doc *DocumentRecord) error {
	existing, err := r.GetByTargetAndPath(ctx, doc.Target, doc.RelPath)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("failed to check existing document: %w", err)
	}

	if existing != nil {
		doc.ID = existing.ID
	} else if doc.ID == "" {
		doc.ID = uuid.New().String()
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO documents (id, target, rel_path, category, extension, hash, chunk_count, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (target, rel_path) DO UPDATE SET
		 category = excluded.category, extension = excluded.extension, hash = excluded.hash,
		 chunk_count = excluded.chunk_count, updated_at = CURRENT_TIMESTAMP`,
		doc.ID, doc.Target, doc.RelPath, doc.Category, doc.Extension, doc.Hash, doc.ChunkCount,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert document: %w", err)
	}

	return nil
}

// DeleteByTarget removes every document recorded for target. Chunks are
// removed by the foreign key cascade.
func (r *DocumentRepo) DeleteByTarget(ctx context.Context, target string) (int, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM documents WHERE target = ?", target)
	if err != nil {
		return 0, fmt.Errorf("failed to delete documents by target: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted documents: %w", err)
	}
	return int(n), nil
}

// CountByTarget returns the number of documents recorded for target.
func (r *DocumentRepo) CountByTarget(ctx context.Context, target string) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents WHERE target = ?", target).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return count, nil
}
