package corpus

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
)

// mockEmbedder returns deterministic embeddings based on text content.
type mockEmbedder struct {
	dims int
	fail bool
}

func (m *mockEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if m.fail {
		return nil, fmt.Errorf("model unavailable")
	}
	results := make([][]float32, len(texts))
	for i, text := range texts {
		results[i] = deterministicVector(text, m.dims)
	}
	return results, nil
}

func (m *mockEmbedder) Dimensions() int { return m.dims }
func (m *mockEmbedder) Name() string    { return "mock" }

// deterministicVector produces a normalized vector from text. Shared
// characters contribute to the same positions, so similar texts get
// similar vectors.
func deterministicVector(text string, dims int) []float32 {
	vec := make([]float32, dims)
	for i, ch := range text {
		idx := (int(ch) + i) % dims
		vec[idx] += 1.0
	}
	var norm float64
	for _, v := range vec {
		norm += float64(v * v)
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] = float32(float64(vec[i]) / norm)
		}
	}
	return vec
}

const specDoc = `Crossarms require 18-24 inch clearance from pole top per GO 95.

Ground resistance must not exceed 25 ohms.`

func TestStore_IngestAndStats(t *testing.T) {
	ctx := context.Background()
	store := NewStore(&mockEmbedder{dims: 32}, 80)

	added, err := store.Ingest(ctx, specDoc, "go95.pdf")
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if added != 2 {
		t.Errorf("added = %d, want 2", added)
	}

	stats := store.Stats()
	if stats.TotalChunks != 2 || stats.TotalFiles != 1 {
		t.Errorf("stats = %+v, want 2 chunks in 1 file", stats)
	}
	if stats.LastUpdated.IsZero() {
		t.Error("LastUpdated not set after ingest")
	}

	for _, c := range store.Snapshot().Chunks {
		if len(c.Embedding) != 32 {
			t.Errorf("chunk %s has %d-dim embedding, want 32", c.ID, len(c.Embedding))
		}
		if c.SourceFile != "go95.pdf" {
			t.Errorf("chunk %s source = %q", c.ID, c.SourceFile)
		}
	}
}

func TestStore_IngestEmptyDocument(t *testing.T) {
	store := NewStore(&mockEmbedder{dims: 8}, 0)
	added, err := store.Ingest(context.Background(), "   \n\n  ", "blank.txt")
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if added != 0 {
		t.Errorf("added = %d, want 0", added)
	}
}

func TestStore_IngestAtomicOnEmbedderFailure(t *testing.T) {
	ctx := context.Background()
	embedder := &mockEmbedder{dims: 8}
	store := NewStore(embedder, 0)

	if _, err := store.Ingest(ctx, "existing rule text", "base.txt"); err != nil {
		t.Fatalf("seed ingest: %v", err)
	}
	before := store.Stats()

	embedder.fail = true
	_, err := store.Ingest(ctx, "new rule text", "new.txt")
	if err == nil {
		t.Fatal("expected IngestError")
	}
	var ingErr *IngestError
	if !errors.As(err, &ingErr) {
		t.Fatalf("got %T, want *IngestError", err)
	}
	if ingErr.SourceFile != "new.txt" {
		t.Errorf("IngestError.SourceFile = %q", ingErr.SourceFile)
	}

	if after := store.Stats(); after != before {
		t.Errorf("corpus changed on failed ingest: before %+v, after %+v", before, after)
	}
}

func TestStore_IngestRemoveRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewStore(&mockEmbedder{dims: 16}, 200)

	if _, err := store.Ingest(ctx, "base rules about grounding", "base.pdf"); err != nil {
		t.Fatalf("Ingest base: %v", err)
	}
	before := store.Stats().TotalChunks

	added, err := store.Ingest(ctx, specDoc, "f.pdf")
	if err != nil {
		t.Fatalf("Ingest f.pdf: %v", err)
	}
	removed := store.RemoveSource("f.pdf")
	if removed != added {
		t.Errorf("removed %d chunks, want %d", removed, added)
	}
	if got := store.Stats().TotalChunks; got != before {
		t.Errorf("TotalChunks = %d after round trip, want %d", got, before)
	}

	if again := store.RemoveSource("f.pdf"); again != 0 {
		t.Errorf("second remove returned %d, want 0", again)
	}
}

func TestStore_ReIngestDuplicates(t *testing.T) {
	ctx := context.Background()
	store := NewStore(&mockEmbedder{dims: 16}, 0)

	first, _ := store.Ingest(ctx, "one paragraph", "dup.txt")
	second, _ := store.Ingest(ctx, "one paragraph", "dup.txt")
	if first != 1 || second != 1 {
		t.Fatalf("ingests added %d and %d, want 1 each", first, second)
	}
	// Ingest is strictly additive: callers must remove before re-uploading.
	if got := store.Stats().TotalChunks; got != 2 {
		t.Errorf("TotalChunks = %d, want 2 (duplicated)", got)
	}
}

func TestStore_Clear(t *testing.T) {
	ctx := context.Background()
	store := NewStore(&mockEmbedder{dims: 8}, 0)
	_, _ = store.Ingest(ctx, "a rule", "a.txt")
	_, _ = store.Ingest(ctx, "b rule", "b.txt")

	store.Clear()
	stats := store.Stats()
	if stats.TotalChunks != 0 || stats.TotalFiles != 0 {
		t.Errorf("stats after clear = %+v, want empty", stats)
	}
}

func TestStore_SnapshotImmutableUnderMutation(t *testing.T) {
	ctx := context.Background()
	store := NewStore(&mockEmbedder{dims: 8}, 0)
	_, _ = store.Ingest(ctx, "rule one", "one.txt")

	snap := store.Snapshot()
	_, _ = store.Ingest(ctx, "rule two", "two.txt")
	store.RemoveSource("one.txt")

	if snap.Len() != 1 {
		t.Errorf("old snapshot has %d chunks, want 1", snap.Len())
	}
	if snap.Chunks[0].SourceFile != "one.txt" {
		t.Errorf("old snapshot mutated: %+v", snap.Chunks[0])
	}
}

func TestStore_ConcurrentReadersAndWriter(t *testing.T) {
	ctx := context.Background()
	store := NewStore(&mockEmbedder{dims: 8}, 0)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = store.Ingest(ctx, fmt.Sprintf("rule number %d", i), fmt.Sprintf("f%d.txt", i))
		}(i)
	}
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				snap := store.Snapshot()
				for _, c := range snap.Chunks {
					// Every observed chunk must carry its embedding.
					if len(c.Embedding) != 8 {
						t.Errorf("snapshot exposes chunk without full embedding")
						return
					}
				}
			}
		}()
	}
	wg.Wait()

	if got := store.Stats().TotalChunks; got != 8 {
		t.Errorf("TotalChunks = %d, want 8", got)
	}
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewStore(&mockEmbedder{dims: 16}, 200)
	if _, err := store.IngestSections(ctx, []Section{
		{Ref: "page 1", Text: "Crossarms require 18-24 inch clearance from pole top per GO 95."},
		{Ref: "page 2", Text: "Ground resistance must not exceed 25 ohms."},
	}, "go95.pdf"); err != nil {
		t.Fatalf("IngestSections: %v", err)
	}

	path := filepath.Join(t.TempDir(), "corpus.gob.gz")
	if err := store.SaveFile(path); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}

	restored := NewStore(&mockEmbedder{dims: 16}, 200)
	if err := restored.LoadFile(path); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	want := store.Snapshot()
	got := restored.Snapshot()
	if !got.LastUpdated.Equal(want.LastUpdated) {
		t.Errorf("LastUpdated = %v, want %v", got.LastUpdated, want.LastUpdated)
	}
	if !reflect.DeepEqual(got.Chunks, want.Chunks) {
		t.Errorf("restored chunks differ from saved")
	}
	if got.Chunks[0].SectionRef != "page 1" {
		t.Errorf("SectionRef = %q, want %q", got.Chunks[0].SectionRef, "page 1")
	}
}

func TestChunkID_Stable(t *testing.T) {
	a := ChunkID("f.pdf", "page 1", "text")
	b := ChunkID("f.pdf", "page 1", "text")
	c := ChunkID("f.pdf", "page 2", "text")
	if a != b {
		t.Error("same inputs produced different IDs")
	}
	if a == c {
		t.Error("different sections produced the same ID")
	}
}
