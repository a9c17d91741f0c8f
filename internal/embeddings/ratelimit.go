package embeddings

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimitedEmbedder wraps an Embedder with a token-bucket limiter so
// bulk ingestion stays inside provider request quotas. One token is spent
// per Embed call, not per text; a call whose batch exceeds the provider's
// per-request limit may fan out to several upstream requests under that
// single token, so treat rpm as a bound on Embed calls.
type RateLimitedEmbedder struct {
	inner   Embedder
	limiter *rate.Limiter
}

// NewRateLimited wraps the given embedder with a limiter allowing at most
// rpm requests per minute. A non-positive rpm returns the embedder unwrapped.
func NewRateLimited(inner Embedder, rpm int) Embedder {
	if rpm <= 0 {
		return inner
	}
	return &RateLimitedEmbedder{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(float64(rpm)/60.0), rpm),
	}
}

func (r *RateLimitedEmbedder) Name() string { return r.inner.Name() }

func (r *RateLimitedEmbedder) Dimensions() int { return r.inner.Dimensions() }

func (r *RateLimitedEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, &EmbeddingError{Provider: r.inner.Name(), Err: err}
	}
	return r.inner.Embed(ctx, texts)
}
