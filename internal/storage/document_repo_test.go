package storage

import (
	"context"
	"errors"
	"testing"
)

func TestDocumentRepo_GetByTargetAndPath_NotFound(t *testing.T) {
	repo := NewDocumentRepo(openTestDB(t))

	doc, err := repo.GetByTargetAndPath(context.Background(), "target", "missing.md")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByTargetAndPath() error = %v, want ErrNotFound", err)
	}
	if doc != nil {
		t.Errorf("GetByTargetAndPath() = %v, want nil", doc)
	}
}

func TestDocumentRepo_Upsert(t *testing.T) {
	repo := NewDocumentRepo(openTestDB(t))
	ctx := context.Background()

	doc := &DocumentRecord{
		Target:     "http://localhost:6333/corpus",
		RelPath:    "policies/gdpr.md",
		Category:   "policies",
		Extension:  ".md",
		Hash:       "abc",
		ChunkCount: 3,
	}
	if err := repo.Upsert(ctx, doc); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if doc.ID == "" {
		t.Fatal("Upsert() should assign an ID to new documents")
	}
	firstID := doc.ID

	got, err := repo.GetByTargetAndPath(ctx, doc.Target, doc.RelPath)
	if err != nil {
		t.Fatalf("GetByTargetAndPath() error = %v", err)
	}
	if got.Hash != "abc" || got.ChunkCount != 3 || got.Category != "policies" || got.Extension != ".md" {
		t.Errorf("GetByTargetAndPath() = %+v", got)
	}
	if got.UpdatedAt.IsZero() {
		t.Error("GetByTargetAndPath() UpdatedAt should be set")
	}

	update := &DocumentRecord{
		Target:     doc.Target,
		RelPath:    doc.RelPath,
		Category:   "policies",
		Extension:  ".md",
		Hash:       "def",
		ChunkCount: 1,
	}
	if err := repo.Upsert(ctx, update); err != nil {
		t.Fatalf("Upsert() update error = %v", err)
	}
	if update.ID != firstID {
		t.Errorf("Upsert() should preserve ID: got %v, want %v", update.ID, firstID)
	}

	got, err = repo.GetByTargetAndPath(ctx, doc.Target, doc.RelPath)
	if err != nil {
		t.Fatalf("GetByTargetAndPath() error = %v", err)
	}
	if got.Hash != "def" || got.ChunkCount != 1 {
		t.Errorf("GetByTargetAndPath() after update = %+v", got)
	}
}

func TestDocumentRepo_TargetsAreIsolated(t *testing.T) {
	db := openTestDB(t)
	repo := NewDocumentRepo(db)
	chunks := NewChunkRepo(db)
	ctx := context.Background()

	a := createTestDocument(t, db, "qdrant-a/corpus", "same.md")
	b := createTestDocument(t, db, "qdrant-b/corpus", "same.md")
	if a.ID == b.ID {
		t.Fatal("documents in different targets should have different IDs")
	}
	if err := chunks.ReplaceByDocument(ctx, a.ID, []*ChunkRecord{{ID: "a0", ChunkIndex: 0, Text: "a"}}); err != nil {
		t.Fatalf("ReplaceByDocument() error = %v", err)
	}

	n, err := repo.DeleteByTarget(ctx, "qdrant-a/corpus")
	if err != nil {
		t.Fatalf("DeleteByTarget() error = %v", err)
	}
	if n != 1 {
		t.Errorf("DeleteByTarget() = %d, want 1", n)
	}

	if _, err := repo.GetByTargetAndPath(ctx, "qdrant-a/corpus", "same.md"); !errors.Is(err, ErrNotFound) {
		t.Errorf("document in deleted target should be gone, err = %v", err)
	}
	if _, err := repo.GetByTargetAndPath(ctx, "qdrant-b/corpus", "same.md"); err != nil {
		t.Errorf("document in other target should remain, err = %v", err)
	}

	ids, err := chunks.ListIDsByDocument(ctx, a.ID)
	if err != nil {
		t.Fatalf("ListIDsByDocument() error = %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("chunks should cascade on document delete, got %v", ids)
	}

	count, err := repo.CountByTarget(ctx, "qdrant-b/corpus")
	if err != nil {
		t.Fatalf("CountByTarget() error = %v", err)
	}
	if count != 1 {
		t.Errorf("CountByTarget() = %d, want 1", count)
	}
}
