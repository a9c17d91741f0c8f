package corpus

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/poleguard/repeal/internal/chunker"
	"github.com/poleguard/repeal/internal/embeddings"
)

// IngestError reports a failed corpus mutation. Ingestion is all-or-nothing:
// when an IngestError is returned the corpus is exactly as it was before the
// call.
type IngestError struct {
	SourceFile string
	Err        error
}

func (e *IngestError) Error() string {
	return fmt.Sprintf("ingest %s: %v", e.SourceFile, e.Err)
}

func (e *IngestError) Unwrap() error { return e.Err }

// Store holds the spec corpus. Mutations are single-writer and build a new
// snapshot which is swapped in atomically, so concurrent readers always see
// a fully-formed corpus with chunks and embeddings matched 1:1.
type Store struct {
	embedder      embeddings.Embedder
	maxChunkChars int

	mu   sync.Mutex // serializes mutations
	snap atomic.Pointer[Snapshot]
}

// NewStore creates an empty corpus store. maxChunkChars bounds chunk size
// during ingestion; non-positive uses the chunker default.
func NewStore(embedder embeddings.Embedder, maxChunkChars int) *Store {
	s := &Store{
		embedder:      embedder,
		maxChunkChars: maxChunkChars,
	}
	s.snap.Store(&Snapshot{})
	return s
}

// Ingest chunks documentText, embeds every chunk in one batched call, and
// appends the results to the corpus. Re-ingesting an already-present source
// file is strictly additive and duplicates its chunks; callers replace a
// file with RemoveSource followed by Ingest.
func (s *Store) Ingest(ctx context.Context, documentText, sourceFile string) (int, error) {
	return s.IngestSections(ctx, []Section{{Text: documentText}}, sourceFile)
}

// IngestSections ingests pre-segmented document sections (e.g. PDF pages),
// preserving each section's locator on its chunks. All sections of a call
// are committed together or not at all.
func (s *Store) IngestSections(ctx context.Context, sections []Section, sourceFile string) (int, error) {
	var texts []string
	var refs []string
	for _, sec := range sections {
		for _, text := range chunker.Chunk(sec.Text, s.maxChunkChars) {
			texts = append(texts, text)
			refs = append(refs, sec.Ref)
		}
	}
	if len(texts) == 0 {
		return 0, nil
	}

	vectors, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return 0, &IngestError{SourceFile: sourceFile, Err: err}
	}
	if len(vectors) != len(texts) {
		return 0, &IngestError{
			SourceFile: sourceFile,
			Err:        fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(texts)),
		}
	}

	dims := s.embedder.Dimensions()
	added := make([]Chunk, len(texts))
	for i, text := range texts {
		if dims > 0 && len(vectors[i]) != dims {
			return 0, &IngestError{
				SourceFile: sourceFile,
				Err:        fmt.Errorf("chunk %d: embedding has %d dimensions, model expects %d", i, len(vectors[i]), dims),
			}
		}
		added[i] = Chunk{
			ID:         ChunkID(sourceFile, refs[i], text),
			Text:       text,
			SourceFile: sourceFile,
			SectionRef: refs[i],
			Embedding:  vectors[i],
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	old := s.snap.Load()
	next := &Snapshot{
		Chunks:      make([]Chunk, 0, len(old.Chunks)+len(added)),
		LastUpdated: time.Now().UTC(),
	}
	next.Chunks = append(next.Chunks, old.Chunks...)
	next.Chunks = append(next.Chunks, added...)
	s.snap.Store(next)

	return len(added), nil
}

// RemoveSource deletes every chunk whose source file matches. Returns the
// number of chunks removed; zero when nothing matched.
func (s *Store) RemoveSource(sourceFile string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	old := s.snap.Load()
	kept := make([]Chunk, 0, len(old.Chunks))
	for _, c := range old.Chunks {
		if c.SourceFile != sourceFile {
			kept = append(kept, c)
		}
	}

	removed := len(old.Chunks) - len(kept)
	if removed == 0 {
		return 0
	}

	s.snap.Store(&Snapshot{Chunks: kept, LastUpdated: time.Now().UTC()})
	return removed
}

// Clear empties the corpus unconditionally.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Store(&Snapshot{LastUpdated: time.Now().UTC()})
}

// Snapshot returns the current corpus state. The returned snapshot is
// immutable; mutations after the call are not visible through it.
func (s *Store) Snapshot() *Snapshot {
	return s.snap.Load()
}

// Stats returns a summary of the current corpus.
func (s *Store) Stats() Stats {
	snap := s.snap.Load()
	files := make(map[string]struct{}, 8)
	for _, c := range snap.Chunks {
		files[c.SourceFile] = struct{}{}
	}
	return Stats{
		TotalChunks: len(snap.Chunks),
		TotalFiles:  len(files),
		LastUpdated: snap.LastUpdated,
	}
}

// Embedder returns the embedder the store was built with. Retrieval must
// use the same model so query and chunk vectors share a space.
func (s *Store) Embedder() embeddings.Embedder { return s.embedder }
