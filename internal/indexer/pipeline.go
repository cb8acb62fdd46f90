package indexer

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"

	"golang.org/x/sync/errgroup"

	"corpus-ingestor/internal/chunker"
	"corpus-ingestor/internal/contextutil"
	"corpus-ingestor/internal/corpus"
	"corpus-ingestor/internal/storage"
	"corpus-ingestor/internal/vectorstore"
)

var (
	// ErrCorpusNotFound is returned when the corpus root is missing or not a directory.
	ErrCorpusNotFound = errors.New("corpus directory not found")
	// ErrPartialFailure is returned alongside stats when at least one file failed.
	ErrPartialFailure = errors.New("ingestion completed with failures")
)

// DefaultWorkers is the number of files processed concurrently.
const DefaultWorkers = 4

// Pipeline ingests a corpus directory into a vector store collection.
type Pipeline struct {
	store      vectorstore.VectorStore
	embedder   Embedder
	collection string
	distance   vectorstore.Distance
	target     string
	documents  storage.DocumentStore
	chunks     storage.ChunkStore
	scanner    *corpus.Scanner
	category   corpus.CategoryFunc
	workers    int
	idScheme   IDScheme
	retry      RetryPolicy
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLedger enables change tracking. Both stores must be set.
func WithLedger(documents storage.DocumentStore, chunks storage.ChunkStore) Option {
	return func(p *Pipeline) {
		p.documents = documents
		p.chunks = chunks
	}
}

// WithTarget sets the ledger key of the destination. Defaults to the collection name.
func WithTarget(target string) Option {
	return func(p *Pipeline) { p.target = target }
}

// WithWorkers sets how many files are processed concurrently.
func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithIDScheme sets how chunk point IDs are derived.
func WithIDScheme(scheme IDScheme) Option {
	return func(p *Pipeline) { p.idScheme = scheme }
}

// WithCategoryFunc overrides how a category is derived from a relative path.
func WithCategoryFunc(fn corpus.CategoryFunc) Option {
	return func(p *Pipeline) { p.category = fn }
}

// WithRetryPolicy sets the retry policy for embedding and upsert calls.
func WithRetryPolicy(policy RetryPolicy) Option {
	return func(p *Pipeline) { p.retry = policy }
}

// WithDistance sets the metric used when the collection is created.
func WithDistance(d vectorstore.Distance) Option {
	return func(p *Pipeline) { p.distance = d }
}

// NewPipeline creates a new ingestion pipeline writing to collection.
func NewPipeline(store vectorstore.VectorStore, embedder Embedder, collection string, opts ...Option) *Pipeline {
	p := &Pipeline{
		store:      store,
		embedder:   embedder,
		collection: collection,
		distance:   vectorstore.DistanceCosine,
		target:     collection,
		workers:    DefaultWorkers,
		idScheme:   IDSchemeDeterministic,
		retry:      DefaultRetryPolicy(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.scanner = corpus.NewScanner(p.category)
	return p
}

func (p *Pipeline) ledgerEnabled() bool {
	return p.documents != nil && p.chunks != nil
}

// Ingest walks root, chunks every supported file and stores each chunk as
// a point. Per-file and per-chunk failures are counted in the returned stats
// and do not stop the run; ErrPartialFailure is returned when any occurred.
// Chunks stored before cancellation stay stored.
func (p *Pipeline) Ingest(ctx context.Context, root string) (*Stats, error) {
	logger := contextutil.LoggerFromContext(ctx)

	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrCorpusNotFound, root)
	}

	if err := p.store.EnsureCollection(ctx, p.collection, p.embedder.Dimension(), p.distance); err != nil {
		return nil, fmt.Errorf("failed to ensure collection: %w", err)
	}
	if p.ledgerEnabled() {
		if err := p.reconcileLedger(ctx); err != nil {
			return nil, err
		}
	}

	files, err := p.scanner.Scan(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("failed to scan corpus: %w", err)
	}

	logger.InfoContext(ctx, "starting ingestion",
		"root", root,
		"collection", p.collection,
		"total_files", len(files),
		"workers", p.workers)

	collector := newStatsCollector()
	collector.update(func(s *Stats) { s.FilesSeen = len(files) })

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for _, file := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			p.ingestFile(gctx, file, collector)
			return gctx.Err()
		})
	}
	waitErr := g.Wait()

	stats := collector.finish()
	logger.InfoContext(ctx, "ingestion completed",
		"files_seen", stats.FilesSeen,
		"files_ingested", stats.FilesIngested,
		"files_unchanged", stats.FilesUnchanged,
		"files_skipped", stats.FilesSkipped,
		"files_failed", stats.FilesFailed,
		"chunks_stored", stats.ChunksStored,
		"chunks_failed", stats.ChunksFailed,
		"duration", stats.Duration)

	if err := ctx.Err(); err != nil {
		return stats, fmt.Errorf("ingestion cancelled: %w", err)
	}
	if waitErr != nil {
		return stats, waitErr
	}
	if stats.FilesFailed > 0 {
		return stats, fmt.Errorf("%w: %d of %d files failed", ErrPartialFailure, stats.FilesFailed, stats.FilesSeen)
	}
	return stats, nil
}

// reconcileLedger forgets the target's ledger rows when the collection holds
// no points, so a collection recreated outside Clean is fully re-ingested
// instead of every file being skipped as unchanged.
func (p *Pipeline) reconcileLedger(ctx context.Context) error {
	recorded, err := p.documents.CountByTarget(ctx, p.target)
	if err != nil {
		return fmt.Errorf("failed to read ledger: %w", err)
	}
	if recorded == 0 {
		return nil
	}

	points, err := p.store.CountPoints(ctx, p.collection)
	if err != nil {
		return fmt.Errorf("failed to count points: %w", err)
	}
	if points > 0 {
		return nil
	}

	removed, err := p.documents.DeleteByTarget(ctx, p.target)
	if err != nil {
		return fmt.Errorf("failed to reset ledger: %w", err)
	}
	contextutil.LoggerFromContext(ctx).WarnContext(ctx, "collection is empty, ledger reset",
		"collection", p.collection,
		"target", p.target,
		"ledger_documents_removed", removed)
	return nil
}

// ingestFile processes a single file and records its outcome in collector.
func (p *Pipeline) ingestFile(ctx context.Context, file corpus.ScannedFile, collector *statsCollector) {
	logger := contextutil.LoggerFromContext(ctx).With("rel_path", file.RelPath)

	if !chunker.Supported(file.Ext) {
		logger.InfoContext(ctx, "skipping unsupported file", "extension", file.Ext)
		collector.update(func(s *Stats) { s.FilesSkipped++ })
		return
	}

	fail := func(msg string, err error) {
		logger.ErrorContext(ctx, msg, "error", err)
		collector.update(func(s *Stats) { s.FilesFailed++ })
	}

	content, err := os.ReadFile(file.AbsPath)
	if err != nil {
		fail("failed to read file", err)
		return
	}
	hash := fmt.Sprintf("%x", sha256.Sum256(content))

	var existing *storage.DocumentRecord
	if p.ledgerEnabled() {
		existing, err = p.documents.GetByTargetAndPath(ctx, p.target, file.RelPath)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			fail("failed to check ledger", err)
			return
		}
		if existing != nil && existing.Hash == hash {
			logger.DebugContext(ctx, "skipping unchanged file", "hash", hash)
			collector.update(func(s *Stats) { s.FilesUnchanged++ })
			return
		}
	}

	texts, err := chunker.ChunkFile(file.Ext, content)
	if err != nil {
		fail("failed to chunk file", err)
		return
	}
	if len(texts) == 0 {
		logger.WarnContext(ctx, "no chunks generated")
	}

	title := ""
	if file.Ext == chunker.ExtMarkdown {
		title = chunker.ExtractTitle(content, path.Base(file.RelPath))
	}

	records := make([]*storage.ChunkRecord, 0, len(texts))
	failed := 0
	for i, text := range texts {
		if ctx.Err() != nil {
			return
		}
		id := ChunkID(p.idScheme, file.RelPath, i)
		if err := p.storeChunk(ctx, file, id, i, text, title); err != nil {
			failed++
			logger.ErrorContext(ctx, "failed to store chunk", "chunk_index", i, "error", err)
			collector.update(func(s *Stats) { s.ChunksFailed++ })
			continue
		}
		collector.chunkStored(text)
		records = append(records, &storage.ChunkRecord{ID: id, ChunkIndex: i, Text: text})
	}

	if failed > 0 {
		logger.ErrorContext(ctx, "file ingested with failed chunks", "failed", failed, "chunks", len(texts))
		collector.update(func(s *Stats) { s.FilesFailed++ })
		return
	}

	collector.update(func(s *Stats) { s.FilesIngested++ })
	logger.InfoContext(ctx, "ingested file", "chunks", len(texts), "category", file.Category)

	if p.ledgerEnabled() {
		p.record(ctx, logger, file, hash, existing, records)
	}
}

// storeChunk embeds text and upserts it as one point, retrying each call.
func (p *Pipeline) storeChunk(ctx context.Context, file corpus.ScannedFile, id string, index int, text, title string) error {
	logger := contextutil.LoggerFromContext(ctx)

	vec, err := withRetry(ctx, p.retry, logger, "embed", func() ([]float32, error) {
		return p.embedder.Embed(ctx, text)
	})
	if err != nil {
		return fmt.Errorf("failed to embed chunk: %w", err)
	}

	meta := map[string]any{
		PayloadText:       text,
		PayloadSource:     path.Base(file.RelPath),
		PayloadExtension:  file.Ext,
		PayloadCategory:   file.Category,
		PayloadPath:       file.RelPath,
		PayloadChunkIndex: index,
	}
	if title != "" {
		meta[PayloadTitle] = title
	}
	point := vectorstore.Point{ID: id, Vec: vec, Meta: meta}

	_, err = withRetry(ctx, p.retry, logger, "upsert", func() (struct{}, error) {
		return struct{}{}, p.store.Upsert(ctx, p.collection, []vectorstore.Point{point})
	})
	if err != nil {
		return fmt.Errorf("failed to upsert chunk: %w", err)
	}
	return nil
}

// record removes points of the previous version that were not overwritten
// and writes the file to the ledger. A file whose stale points could not be
// removed is left unrecorded so the next run retries the cleanup.
func (p *Pipeline) record(ctx context.Context, logger *slog.Logger, file corpus.ScannedFile, hash string, existing *storage.DocumentRecord, records []*storage.ChunkRecord) {
	if existing != nil {
		oldIDs, err := p.chunks.ListIDsByDocument(ctx, existing.ID)
		if err != nil {
			logger.WarnContext(ctx, "failed to list previous chunk ids", "error", err)
			return
		}

		current := make(map[string]struct{}, len(records))
		for _, r := range records {
			current[r.ID] = struct{}{}
		}
		var stale []string
		for _, id := range oldIDs {
			if _, ok := current[id]; !ok {
				stale = append(stale, id)
			}
		}

		if len(stale) > 0 {
			_, err := withRetry(ctx, p.retry, logger, "delete", func() (struct{}, error) {
				return struct{}{}, p.store.Delete(ctx, p.collection, stale)
			})
			if err != nil {
				logger.WarnContext(ctx, "failed to delete stale chunks", "error", err, "count", len(stale))
				return
			}
			logger.DebugContext(ctx, "deleted stale chunks", "count", len(stale))
		}
	}

	doc := &storage.DocumentRecord{
		Target:     p.target,
		RelPath:    file.RelPath,
		Category:   file.Category,
		Extension:  file.Ext,
		Hash:       hash,
		ChunkCount: len(records),
	}
	if err := p.documents.Upsert(ctx, doc); err != nil {
		logger.WarnContext(ctx, "failed to record document", "error", err)
		return
	}
	if err := p.chunks.ReplaceByDocument(ctx, doc.ID, records); err != nil {
		logger.WarnContext(ctx, "failed to record chunks", "error", err)
	}
}

// Clean drops and recreates the collection and forgets the target's ledger rows.
func (p *Pipeline) Clean(ctx context.Context) error {
	logger := contextutil.LoggerFromContext(ctx)

	if err := p.store.DeleteCollection(ctx, p.collection); err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}
	if err := p.store.EnsureCollection(ctx, p.collection, p.embedder.Dimension(), p.distance); err != nil {
		return fmt.Errorf("failed to recreate collection: %w", err)
	}

	removed := 0
	if p.ledgerEnabled() {
		n, err := p.documents.DeleteByTarget(ctx, p.target)
		if err != nil {
			return fmt.Errorf("failed to clear ledger: %w", err)
		}
		removed = n
	}

	logger.InfoContext(ctx, "collection cleaned", "collection", p.collection, "ledger_documents_removed", removed)
	return nil
}
