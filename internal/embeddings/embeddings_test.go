package embeddings

import (
	"context"
	"errors"
	"testing"
	"time"
	"unicode/utf8"
)

type countingEmbedder struct {
	dims  int
	calls int
}

func (c *countingEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	c.calls++
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = make([]float32, c.dims)
	}
	return out, nil
}

func (c *countingEmbedder) Dimensions() int { return c.dims }
func (c *countingEmbedder) Name() string    { return "counting" }

func TestEmbedOne(t *testing.T) {
	e := &countingEmbedder{dims: 4}
	vec, err := EmbedOne(context.Background(), e, "crossarm clearance")
	if err != nil {
		t.Fatalf("EmbedOne: %v", err)
	}
	if len(vec) != 4 {
		t.Errorf("got %d dims, want 4", len(vec))
	}
	if e.calls != 1 {
		t.Errorf("got %d calls, want 1", e.calls)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		maxChars int
		wantLen  int
	}{
		{"under limit", "short", 100, 5},
		{"at limit", "exact", 5, 5},
		{"over limit", "this is too long", 7, 7},
		{"no limit", "anything", 0, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.text, tt.maxChars, "test-model")
			if len(got) != tt.wantLen {
				t.Errorf("truncate(%q, %d) = %q (%d chars), want %d chars",
					tt.text, tt.maxChars, got, len(got), tt.wantLen)
			}
		})
	}
}

func TestTruncate_RuneBoundary(t *testing.T) {
	// "§" is two bytes; a limit landing inside it must back up to the
	// rune's start rather than emit a broken byte.
	text := "GO 95 §84.4 clearance"
	for maxChars := 1; maxChars < len(text); maxChars++ {
		got := truncate(text, maxChars, "test-model")
		if !utf8.ValidString(got) {
			t.Errorf("truncate(%q, %d) = %q, not valid UTF-8", text, maxChars, got)
		}
		if len(got) > maxChars {
			t.Errorf("truncate(%q, %d) returned %d bytes", text, maxChars, len(got))
		}
	}
}

func TestTruncate_Deterministic(t *testing.T) {
	long := string(make([]byte, 200))
	if truncate(long, 50, "m") != truncate(long, 50, "m") {
		t.Error("truncation is not deterministic")
	}
}

func TestRateLimited_PassThroughWhenDisabled(t *testing.T) {
	e := &countingEmbedder{dims: 2}
	wrapped := NewRateLimited(e, 0)
	if wrapped != Embedder(e) {
		t.Error("rpm<=0 should return the embedder unwrapped")
	}
}

func TestRateLimited_Embed(t *testing.T) {
	e := &countingEmbedder{dims: 2}
	wrapped := NewRateLimited(e, 600) // generous, test should not block

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	vecs, err := wrapped.Embed(ctx, []string{"a", "b"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vecs) != 2 {
		t.Errorf("got %d vectors, want 2", len(vecs))
	}
	if wrapped.Dimensions() != 2 || wrapped.Name() != "counting" {
		t.Error("wrapper should delegate Dimensions and Name")
	}
}

func TestRateLimited_CancelledContext(t *testing.T) {
	e := &countingEmbedder{dims: 2}
	wrapped := NewRateLimited(e, 1)

	// Drain the initial burst, then a cancelled context must surface an EmbeddingError.
	_, _ = wrapped.Embed(context.Background(), []string{"warmup"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := wrapped.Embed(ctx, []string{"x"})
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
	var embErr *EmbeddingError
	if !errors.As(err, &embErr) {
		t.Errorf("got %T, want *EmbeddingError", err)
	}
}
