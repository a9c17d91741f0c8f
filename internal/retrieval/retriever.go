// Package retrieval finds the spec chunks most similar to an infraction
// statement. The default implementation scans the full corpus with exact
// cosine similarity; the Retriever interface lets an approximate index be
// swapped in without changing callers.
package retrieval

import (
	"context"

	"github.com/poleguard/repeal/internal/corpus"
)

// Candidate pairs a spec chunk with its similarity to the query. Candidates
// are views into a corpus snapshot, created fresh per retrieval call and
// discarded once a verdict is rendered.
type Candidate struct {
	Chunk *corpus.Chunk
	Score float64
}

// Retriever ranks spec chunks against an infraction statement.
//
// Implementations return candidates with score >= minSimilarity in
// descending score order, ties broken by chunk insertion order. An empty
// corpus or an empty result set yields an empty slice, not an error.
type Retriever interface {
	Retrieve(ctx context.Context, infractionText string, minSimilarity float64) ([]Candidate, error)
}
