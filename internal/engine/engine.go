// Package engine renders repeal verdicts from ranked retrieval candidates.
// This is the calibrated heart of the system: the thresholds and the
// two-branch confidence rule were tuned against real audit data and must
// not drift.
package engine

import (
	"sort"

	"github.com/poleguard/repeal/internal/retrieval"
)

// Decide turns ranked candidates into a verdict.
//
// Confidence rule: with at least cfg.MatchMin qualifying candidates, a
// single near-exact spec citation is the strongest evidence, so the best
// score wins outright. With fewer matches the best score alone is not
// trustworthy (one lucky high-similarity hit on short text), so the top
// scores are averaged instead.
//
// Decide never fails: an empty candidate list is the normal "no evidence
// found" outcome and yields a zero-confidence VALID_INFRACTION.
func Decide(candidates []retrieval.Candidate, cfg ThresholdConfig) Verdict {
	// Upstream retrieval already applies the floor; re-filter here so a
	// candidate that slipped through cannot skew the confidence.
	matches := make([]retrieval.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Score >= cfg.MinSimilarity {
			matches = append(matches, c)
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	var confidence float64
	switch {
	case len(matches) == 0:
		confidence = 0.0
	case len(matches) >= cfg.MatchMin:
		confidence = matches[0].Score * cfg.AdjustmentFactor
	default:
		confidence = topAverage(matches, 3) * cfg.AdjustmentFactor
	}

	if confidence < 0 {
		confidence = 0
	} else if confidence > 1 {
		confidence = 1
	}

	verdict := Verdict{
		Confidence: confidence,
		MatchCount: len(matches),
	}

	switch {
	case confidence >= cfg.HighConfidence:
		verdict.Status = StatusRepealable
		verdict.Band = BandHigh
	case confidence >= cfg.MediumConfidence:
		verdict.Status = StatusPotentiallyRepealable
		verdict.Band = BandMedium
	default:
		verdict.Status = StatusValidInfraction
		verdict.Band = BandLow
	}

	if len(matches) > 0 {
		verdict.TopMatch = matches[0].Chunk
		verdict.TopScore = matches[0].Score
	}

	return verdict
}

// topAverage averages the n highest scores, or all of them if fewer exist.
func topAverage(sorted []retrieval.Candidate, n int) float64 {
	if len(sorted) < n {
		n = len(sorted)
	}
	var sum float64
	for _, c := range sorted[:n] {
		sum += c.Score
	}
	return sum / float64(n)
}
