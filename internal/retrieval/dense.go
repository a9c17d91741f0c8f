package retrieval

import (
	"context"
	"math"
	"sort"

	"github.com/poleguard/repeal/internal/corpus"
	"github.com/poleguard/repeal/internal/embeddings"
)

// DenseRetriever scans every chunk in the current corpus snapshot with
// exact cosine similarity. O(N·D) per query, which is comfortable at the
// corpus sizes this system sees (thousands of chunks).
type DenseRetriever struct {
	embedder embeddings.Embedder
	store    *corpus.Store
}

// NewDenseRetriever creates a retriever over the given store. The embedder
// must be the same model the store's chunks were embedded with.
func NewDenseRetriever(embedder embeddings.Embedder, store *corpus.Store) *DenseRetriever {
	return &DenseRetriever{embedder: embedder, store: store}
}

func (r *DenseRetriever) Retrieve(ctx context.Context, infractionText string, minSimilarity float64) ([]Candidate, error) {
	snap := r.store.Snapshot()
	if snap.Len() == 0 {
		return nil, nil
	}

	query, err := embeddings.EmbedOne(ctx, r.embedder, infractionText)
	if err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0, snap.Len())
	for i := range snap.Chunks {
		score := CosineSimilarity(query, snap.Chunks[i].Embedding)
		if score >= minSimilarity {
			candidates = append(candidates, Candidate{Chunk: &snap.Chunks[i], Score: score})
		}
	}

	// Stable sort keeps insertion order for equal scores, so retrieval is
	// reproducible across calls.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	return candidates, nil
}

// CosineSimilarity computes the cosine similarity between two vectors.
// Returns a value in [-1, 1], where 1 means identical direction, or 0 for
// mismatched or zero-length input.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	denominator := math.Sqrt(normA) * math.Sqrt(normB)
	if denominator == 0 {
		return 0
	}

	return dot / denominator
}
