package retrieval

import (
	"context"
	"fmt"
	"sort"
	"sync"

	chromem "github.com/philippgille/chromem-go"

	"github.com/poleguard/repeal/internal/corpus"
	"github.com/poleguard/repeal/internal/embeddings"
)

const collectionName = "speccorpus"

// ChromemRetriever serves retrieval from a chromem-go collection instead of
// a full scan. Chunk embeddings are reused as-is, so query and corpus stay
// in the same vector space. The index is rebuilt lazily whenever the corpus
// snapshot changes.
type ChromemRetriever struct {
	embedder embeddings.Embedder
	store    *corpus.Store

	mu         sync.Mutex
	indexed    *corpus.Snapshot
	collection *chromem.Collection
	chunks     map[string]*corpus.Chunk
	order      map[string]int
}

// NewChromemRetriever creates a chromem-backed retriever over the store.
func NewChromemRetriever(embedder embeddings.Embedder, store *corpus.Store) *ChromemRetriever {
	return &ChromemRetriever{embedder: embedder, store: store}
}

func (r *ChromemRetriever) Retrieve(ctx context.Context, infractionText string, minSimilarity float64) ([]Candidate, error) {
	snap := r.store.Snapshot()
	if snap.Len() == 0 {
		return nil, nil
	}

	col, chunks, order, err := r.indexFor(ctx, snap)
	if err != nil {
		return nil, err
	}

	// chromem requires nResults <= collection size; ask for everything and
	// filter by the floor ourselves.
	results, err := col.Query(ctx, infractionText, col.Count(), nil, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	candidates := make([]Candidate, 0, len(results))
	for _, res := range results {
		score := float64(res.Similarity)
		if score < minSimilarity {
			continue
		}
		chunk, ok := chunks[res.ID]
		if !ok {
			continue
		}
		candidates = append(candidates, Candidate{Chunk: chunk, Score: score})
	}

	// chromem does not define an ordering for equal similarities. Re-sort
	// with corpus insertion order as the tie-break so results match the
	// exact scan.
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return order[candidates[i].Chunk.ID] < order[candidates[j].Chunk.ID]
	})

	return candidates, nil
}

// indexFor returns the collection for snap, rebuilding when the corpus has
// moved on since the last build.
func (r *ChromemRetriever) indexFor(ctx context.Context, snap *corpus.Snapshot) (*chromem.Collection, map[string]*corpus.Chunk, map[string]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexed == snap && r.collection != nil {
		return r.collection, r.chunks, r.order, nil
	}

	db := chromem.NewDB()
	col, err := db.GetOrCreateCollection(collectionName, nil, embedFunc(r.embedder))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("create collection: %w", err)
	}

	docs := make([]chromem.Document, snap.Len())
	chunks := make(map[string]*corpus.Chunk, snap.Len())
	order := make(map[string]int, snap.Len())
	for i := range snap.Chunks {
		c := &snap.Chunks[i]
		docs[i] = chromem.Document{
			ID:        c.ID,
			Content:   c.Text,
			Embedding: c.Embedding,
			Metadata: map[string]string{
				"source_file": c.SourceFile,
				"section_ref": c.SectionRef,
			},
		}
		chunks[c.ID] = c
		order[c.ID] = i
	}

	if err := col.AddDocuments(ctx, docs, 1); err != nil {
		return nil, nil, nil, fmt.Errorf("index snapshot: %w", err)
	}

	r.indexed = snap
	r.collection = col
	r.chunks = chunks
	r.order = order
	return col, chunks, order, nil
}

// embedFunc adapts an Embedder to chromem's single-text embedding function.
func embedFunc(e embeddings.Embedder) chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		return embeddings.EmbedOne(ctx, e, text)
	}
}
