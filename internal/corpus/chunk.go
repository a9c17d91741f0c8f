// Package corpus owns the indexed specification text: chunks, their
// embeddings, and the mutation surface (ingest, remove, clear) exposed to
// management callers. Readers operate on immutable point-in-time snapshots.
package corpus

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Chunk is an immutable unit of specification text plus its embedding.
// Chunks are never mutated in place; replacement is remove + re-ingest.
type Chunk struct {
	ID         string
	Text       string
	SourceFile string
	SectionRef string // optional human-readable locator (page/section)
	Embedding  []float32
}

// ChunkID derives a stable identifier from a chunk's content and origin.
func ChunkID(sourceFile, sectionRef, text string) string {
	h := sha256.Sum256([]byte(sourceFile + "\x00" + sectionRef + "\x00" + text))
	return hex.EncodeToString(h[:8])
}

// Section is a pre-segmented span of a source document handed to ingestion,
// e.g. one PDF page. Ref may be empty for unstructured documents.
type Section struct {
	Ref  string
	Text string
}

// Snapshot is a consistent point-in-time view of the corpus. The embedding
// matrix is the chunk embeddings in slice order; a snapshot can never hold
// a chunk without its embedding.
type Snapshot struct {
	Chunks      []Chunk
	LastUpdated time.Time
}

// Len returns the number of chunks in the snapshot.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Chunks)
}

// Stats is a cheap read-only summary of the corpus.
type Stats struct {
	TotalChunks int       `json:"total_chunks"`
	TotalFiles  int       `json:"total_files"`
	LastUpdated time.Time `json:"last_updated"`
}
