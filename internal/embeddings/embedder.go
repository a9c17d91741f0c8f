// Package embeddings wraps pretrained sentence-embedding models behind a
// provider-agnostic interface. Spec chunks and infraction text must be
// embedded by the same model instance so their vectors are comparable.
package embeddings

import (
	"context"
	"fmt"
	"log"
	"unicode/utf8"
)

// Embedder defines the interface for generating text embeddings.
//
// Embed is deterministic for a fixed model version: the same text always
// yields the same vector, whether embedded alone or as part of a batch.
// Input longer than the model's window is silently truncated, with a
// warning logged; callers do not need to pre-truncate.
type Embedder interface {
	// Embed generates embeddings for one or more texts.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the number of dimensions in the embedding vectors.
	Dimensions() int

	// Name returns the name/identifier of the embedding model.
	Name() string
}

// EmbeddingError reports a failure of the underlying embedding model.
// A missing embedding corrupts downstream confidence math, so these are
// always propagated, never swallowed.
type EmbeddingError struct {
	Provider string
	Err      error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding failed (%s): %v", e.Provider, e.Err)
}

func (e *EmbeddingError) Unwrap() error { return e.Err }

// EmbedOne embeds a single text. Vectors are identical to the batched form.
func EmbedOne(ctx context.Context, e Embedder, text string) ([]float32, error) {
	results, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(results) != 1 {
		return nil, &EmbeddingError{Provider: e.Name(), Err: fmt.Errorf("got %d embeddings for 1 text", len(results))}
	}
	return results[0], nil
}

// truncate enforces the model's input budget, logging a warning when text
// is cut. Truncation at a character count is deterministic, so truncated
// text still embeds identically on every call. The cut backs up to a rune
// boundary so multi-byte characters are never split.
func truncate(text string, maxChars int, model string) string {
	if maxChars <= 0 || len(text) <= maxChars {
		return text
	}
	cut := maxChars
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	log.Printf("embeddings: truncating %d-char input to %d chars for model %s", len(text), cut, model)
	return text[:cut]
}
