package storage

import "time"

// DocumentRecord is a corpus file that was fully ingested into a target
// collection. Target identifies the destination as "<vector store url>/<collection>".
type DocumentRecord struct {
	ID         string // UUID
	Target     string // Destination the document was ingested into
	RelPath    string // Slash-separated path relative to the corpus root
	Category   string // Category stored in the point payload
	Extension  string // Lower-case extension with leading dot
	Hash       string // SHA256 hex string of file content
	ChunkCount int    // Number of chunks stored for this content
	UpdatedAt  time.Time
}

// ChunkRecord is one stored chunk of a document.
type ChunkRecord struct {
	ID         string // Vector point ID
	DocumentID string // UUID (foreign key to documents.id)
	ChunkIndex int    // Index within document (starts at 0)
	Text       string // Chunk text content
}
