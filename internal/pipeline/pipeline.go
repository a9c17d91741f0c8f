// Package pipeline runs infraction statements through retrieval and the
// decision engine, one verdict per infraction.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/poleguard/repeal/internal/cache"
	"github.com/poleguard/repeal/internal/corpus"
	"github.com/poleguard/repeal/internal/engine"
	"github.com/poleguard/repeal/internal/retrieval"
)

// Evaluator wires the corpus, retriever, decision thresholds, and the
// optional verdict cache. Evaluations against a fixed corpus snapshot are
// independent, so any number may run in parallel.
type Evaluator struct {
	store      *corpus.Store
	retriever  retrieval.Retriever
	thresholds engine.ThresholdConfig
	cache      *cache.Cache // nil disables memoization
}

// NewEvaluator creates an evaluator. A nil cache disables memoization
// without changing results.
func NewEvaluator(store *corpus.Store, retriever retrieval.Retriever, thresholds engine.ThresholdConfig, verdictCache *cache.Cache) *Evaluator {
	return &Evaluator{
		store:      store,
		retriever:  retriever,
		thresholds: thresholds,
		cache:      verdictCache,
	}
}

// Thresholds returns the evaluator's decision configuration.
func (e *Evaluator) Thresholds() engine.ThresholdConfig { return e.thresholds }

// Evaluate renders the verdict for a single infraction statement.
// "No matching spec rule" is a normal zero-confidence verdict, not an
// error; only infrastructure failures (embedding model down) return one.
func (e *Evaluator) Evaluate(ctx context.Context, infractionText string) (engine.Verdict, error) {
	if strings.TrimSpace(infractionText) == "" {
		return engine.Verdict{}, fmt.Errorf("empty infraction text")
	}

	snap := e.store.Snapshot()

	var key string
	if e.cache != nil {
		key = cache.VerdictKey(infractionText, snap.LastUpdated, e.thresholds)
		if v, ok := e.cache.Get(key); ok {
			return v, nil
		}
	}

	candidates, err := e.retriever.Retrieve(ctx, infractionText, e.thresholds.MinSimilarity)
	if err != nil {
		return engine.Verdict{}, err
	}

	verdict := engine.Decide(candidates, e.thresholds)
	// The retriever reads the corpus on its own; if an ingest landed since
	// the key was derived, storing the verdict would file it under the old
	// corpus version. Skip memoization for that evaluation.
	if e.cache != nil && e.store.Snapshot() == snap {
		e.cache.Set(key, verdict, 0)
	}
	return verdict, nil
}

// Result is one infraction's outcome within a batch. Err is set when that
// entry failed; the rest of the batch is unaffected.
type Result struct {
	Index      int            `json:"index"`
	Infraction string         `json:"infraction"`
	Verdict    engine.Verdict `json:"verdict"`
	Err        error          `json:"-"`
	ErrMessage string         `json:"error,omitempty"`
}

// ProgressFunc is invoked after each infraction completes.
type ProgressFunc func(done, total int, infraction string)

// EvaluateBatch evaluates infractions concurrently with at most concurrency
// workers. Audit documents commonly contain malformed extracted segments,
// so one entry failing to embed never aborts the batch: failures are
// reported per entry and processing continues. Results are returned in
// input order.
func (e *Evaluator) EvaluateBatch(ctx context.Context, infractions []string, concurrency int, onProgress ProgressFunc) []Result {
	total := len(infractions)
	if total == 0 {
		return nil
	}
	if concurrency < 1 {
		concurrency = 1
	}

	results := make([]Result, total)
	sem := make(chan struct{}, concurrency)
	var done int64

	var wg sync.WaitGroup
	for i, text := range infractions {
		select {
		case <-ctx.Done():
			results[i] = Result{Index: i, Infraction: text, Err: ctx.Err(), ErrMessage: ctx.Err().Error()}
			count := atomic.AddInt64(&done, 1)
			if onProgress != nil {
				onProgress(int(count), total, text)
			}
			continue
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(i int, text string) {
			defer wg.Done()
			defer func() { <-sem }()

			verdict, err := e.Evaluate(ctx, text)
			results[i] = Result{Index: i, Infraction: text, Verdict: verdict, Err: err}
			if err != nil {
				results[i].ErrMessage = err.Error()
			}

			count := atomic.AddInt64(&done, 1)
			if onProgress != nil {
				onProgress(int(count), total, text)
			}
		}(i, text)
	}
	wg.Wait()

	return results
}

// Summary aggregates a batch for reporting.
type Summary struct {
	Total                 int       `json:"total"`
	Repealable            int       `json:"repealable"`
	PotentiallyRepealable int       `json:"potentially_repealable"`
	ValidInfractions      int       `json:"valid_infractions"`
	Failed                int       `json:"failed"`
	EvaluatedAt           time.Time `json:"evaluated_at"`
}

// Summarize tallies batch results by status.
func Summarize(results []Result) Summary {
	s := Summary{Total: len(results), EvaluatedAt: time.Now().UTC()}
	for _, r := range results {
		switch {
		case r.Err != nil:
			s.Failed++
		case r.Verdict.Status == engine.StatusRepealable:
			s.Repealable++
		case r.Verdict.Status == engine.StatusPotentiallyRepealable:
			s.PotentiallyRepealable++
		default:
			s.ValidInfractions++
		}
	}
	return s
}
