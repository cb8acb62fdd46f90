package indexer

import (
	"math"
	"sort"
	"sync"
	"time"
	"unicode/utf8"
)

const (
	// TokensPerRune is an approximation for token counting (4 chars per token).
	TokensPerRune = 4.0
)

// Stats summarizes one ingestion run.
type Stats struct {
	// FilesSeen is the number of regular files found under the corpus root.
	FilesSeen int `json:"files_seen"`
	// FilesIngested is the number of files whose chunks were all stored.
	FilesIngested int `json:"files_ingested"`
	// FilesUnchanged is the number of files skipped because the ledger hash matched.
	FilesUnchanged int `json:"files_unchanged"`
	// FilesSkipped is the number of files with an unsupported extension.
	FilesSkipped int `json:"files_skipped"`
	// FilesFailed is the number of files that could not be read or chunked,
	// or had at least one chunk fail.
	FilesFailed int `json:"files_failed"`
	// ChunksStored is the number of chunks embedded and upserted.
	ChunksStored int `json:"chunks_stored"`
	// ChunksFailed is the number of chunks whose embed or upsert failed after retries.
	ChunksFailed int `json:"chunks_failed"`
	// ChunkTokenStats contains statistics about token counts per stored chunk.
	ChunkTokenStats ChunkTokenStats `json:"chunk_token_stats"`
	// Duration is the wall time of the run.
	Duration time.Duration `json:"-"`
	// DurationMillis mirrors Duration for JSON output.
	DurationMillis int64 `json:"duration_ms"`
}

// ChunkTokenStats contains statistics about token counts in chunks.
type ChunkTokenStats struct {
	// Min is the minimum token count across all chunks.
	Min int `json:"min"`
	// Max is the maximum token count across all chunks.
	Max int `json:"max"`
	// Mean is the mean token count across all chunks.
	Mean float64 `json:"mean"`
	// P95 is the 95th percentile token count.
	P95 int `json:"p95"`
}

// statsCollector accumulates counters from concurrent file workers.
type statsCollector struct {
	mu     sync.Mutex
	stats  Stats
	tokens []int
	start  time.Time
}

func newStatsCollector() *statsCollector {
	return &statsCollector{start: time.Now()}
}

func (c *statsCollector) update(fn func(s *Stats)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(&c.stats)
}

// chunkStored records a stored chunk and its token estimate.
func (c *statsCollector) chunkStored(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats.ChunksStored++
	c.tokens = append(c.tokens, estimateTokens(text))
}

// finish computes derived fields and returns a copy of the stats.
func (c *statsCollector) finish() *Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.ChunkTokenStats = computeTokenStats(c.tokens)
	s.Duration = time.Since(c.start)
	s.DurationMillis = s.Duration.Milliseconds()
	return &s
}

// estimateTokens estimates tokens from rune count, with a minimum of 1.
func estimateTokens(text string) int {
	runeCount := utf8.RuneCountInString(text)
	tokenCount := int(math.Round(float64(runeCount) / TokensPerRune))
	if tokenCount < 1 {
		tokenCount = 1
	}
	return tokenCount
}

// computeTokenStats computes min, max, mean, and p95 from token counts.
func computeTokenStats(tokenCounts []int) ChunkTokenStats {
	if len(tokenCounts) == 0 {
		return ChunkTokenStats{}
	}

	// Sort for percentile calculation
	sorted := make([]int, len(tokenCounts))
	copy(sorted, tokenCounts)
	sort.Ints(sorted)

	sum := 0
	for _, count := range tokenCounts {
		sum += count
	}
	mean := float64(sum) / float64(len(tokenCounts))

	p95Index := int(math.Ceil(float64(len(sorted)) * 0.95))
	if p95Index >= len(sorted) {
		p95Index = len(sorted) - 1
	}

	return ChunkTokenStats{
		Min:  sorted[0],
		Max:  sorted[len(sorted)-1],
		Mean: math.Round(mean*100) / 100, // Round to 2 decimal places
		P95:  sorted[p95Index],
	}
}
