package engine

import (
	"math"
	"testing"

	"github.com/poleguard/repeal/internal/corpus"
	"github.com/poleguard/repeal/internal/retrieval"
)

func candidates(scores ...float64) []retrieval.Candidate {
	out := make([]retrieval.Candidate, len(scores))
	for i, s := range scores {
		out[i] = retrieval.Candidate{
			Chunk: &corpus.Chunk{ID: string(rune('a' + i)), Text: "rule"},
			Score: s,
		}
	}
	return out
}

func TestDecide_EmptyInput(t *testing.T) {
	v := Decide(nil, DefaultThresholds())
	if v.Status != StatusValidInfraction {
		t.Errorf("status = %s, want VALID_INFRACTION", v.Status)
	}
	if v.Confidence != 0.0 {
		t.Errorf("confidence = %v, want 0", v.Confidence)
	}
	if v.Band != BandLow {
		t.Errorf("band = %s, want LOW", v.Band)
	}
	if v.MatchCount != 0 {
		t.Errorf("match_count = %d, want 0", v.MatchCount)
	}
	if v.TopMatch != nil {
		t.Errorf("top_match = %+v, want nil", v.TopMatch)
	}
}

func TestDecide_DefensiveRefilter(t *testing.T) {
	// Candidates below the floor must be rejected even if retrieval let
	// them through.
	v := Decide(candidates(0.9, 0.39, 0.1), DefaultThresholds())
	if v.MatchCount != 1 {
		t.Errorf("match_count = %d, want 1 (two below floor)", v.MatchCount)
	}
}

func TestDecide_BranchSelectionBoundary(t *testing.T) {
	cfg := DefaultThresholds() // MatchMin = 2

	// Exactly MatchMin-1 candidates: the top-3-average branch degenerates
	// to the single value.
	one := Decide(candidates(0.9), cfg)
	if math.Abs(one.Confidence-0.9) > 1e-9 {
		t.Errorf("confidence = %v, want 0.9 via single-value average", one.Confidence)
	}
	if one.MatchCount != 1 {
		t.Errorf("match_count = %d, want 1", one.MatchCount)
	}

	// Exactly MatchMin candidates: best single score wins.
	two := Decide(candidates(0.9, 0.5), cfg)
	if math.Abs(two.Confidence-0.9) > 1e-9 {
		t.Errorf("confidence = %v, want 0.9 via max", two.Confidence)
	}
}

func TestDecide_InsufficientMatchesAveragesTopThree(t *testing.T) {
	cfg := DefaultThresholds()
	cfg.MatchMin = 5 // force the averaging branch with 3 candidates

	v := Decide(candidates(0.9, 0.6, 0.45), cfg)
	want := (0.9 + 0.6 + 0.45) / 3
	if math.Abs(v.Confidence-want) > 1e-9 {
		t.Errorf("confidence = %v, want %v", v.Confidence, want)
	}
}

func TestDecide_AveragingCapsAtTopThree(t *testing.T) {
	cfg := DefaultThresholds()
	cfg.MatchMin = 10

	v := Decide(candidates(0.9, 0.8, 0.7, 0.41, 0.4), cfg)
	want := (0.9 + 0.8 + 0.7) / 3
	if math.Abs(v.Confidence-want) > 1e-9 {
		t.Errorf("confidence = %v, want average of top 3 only (%v)", v.Confidence, want)
	}
}

func TestDecide_StatusThresholds(t *testing.T) {
	cfg := DefaultThresholds()
	tests := []struct {
		name       string
		scores     []float64
		wantStatus Status
		wantBand   Band
	}{
		{"exactly high_confidence", []float64{0.70}, StatusRepealable, BandHigh},
		{"just below high_confidence", []float64{0.70 - 1e-9}, StatusPotentiallyRepealable, BandMedium},
		{"exactly medium_confidence", []float64{0.55}, StatusPotentiallyRepealable, BandMedium},
		{"just below medium_confidence", []float64{0.55 - 1e-9}, StatusValidInfraction, BandLow},
		{"strong pair", []float64{0.85, 0.72}, StatusRepealable, BandHigh},
		{"weak matches", []float64{0.45, 0.42}, StatusValidInfraction, BandLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Decide(candidates(tt.scores...), cfg)
			if v.Status != tt.wantStatus {
				t.Errorf("status = %s, want %s (confidence %v)", v.Status, tt.wantStatus, v.Confidence)
			}
			if v.Band != tt.wantBand {
				t.Errorf("band = %s, want %s", v.Band, tt.wantBand)
			}
		})
	}
}

func TestDecide_StatusConfidenceInvariant(t *testing.T) {
	cfg := DefaultThresholds()
	for _, scores := range [][]float64{
		{}, {0.41}, {0.56}, {0.71}, {0.9, 0.8, 0.7}, {0.55, 0.55}, {0.69, 0.44, 0.41},
	} {
		v := Decide(candidates(scores...), cfg)
		switch v.Status {
		case StatusRepealable, StatusPotentiallyRepealable:
			if v.Confidence < cfg.MediumConfidence {
				t.Errorf("scores %v: status %s with confidence %v < medium threshold", scores, v.Status, v.Confidence)
			}
		case StatusValidInfraction:
			if v.Confidence >= cfg.MediumConfidence && v.MatchCount > 0 {
				t.Errorf("scores %v: VALID_INFRACTION with confidence %v", scores, v.Confidence)
			}
		}
	}
}

func TestDecide_AdjustmentFactor(t *testing.T) {
	cfg := DefaultThresholds()
	cfg.AdjustmentFactor = 1.2

	v := Decide(candidates(0.5, 0.45), cfg)
	if math.Abs(v.Confidence-0.6) > 1e-9 {
		t.Errorf("confidence = %v, want 0.5*1.2 = 0.6", v.Confidence)
	}

	// Boost past 1.0 must clamp.
	v = Decide(candidates(0.95, 0.9), cfg)
	if v.Confidence != 1.0 {
		t.Errorf("confidence = %v, want clamped 1.0", v.Confidence)
	}
}

func TestDecide_TopMatch(t *testing.T) {
	// Hand the engine unsorted input; it must still pick the best.
	input := candidates(0.5, 0.88, 0.62)
	v := Decide(input, DefaultThresholds())
	if v.TopMatch == nil {
		t.Fatal("top_match is nil")
	}
	if v.TopMatch.ID != input[1].Chunk.ID {
		t.Errorf("top_match = %s, want the 0.88 candidate", v.TopMatch.ID)
	}
	if v.TopScore != 0.88 {
		t.Errorf("top_score = %v, want 0.88", v.TopScore)
	}
}

func TestDecide_Monotonicity(t *testing.T) {
	cfg := DefaultThresholds()
	base := []float64{0.6, 0.5, 0.45}

	baseline := Decide(candidates(base...), cfg).Confidence
	for i := range base {
		raised := append([]float64(nil), base...)
		raised[i] += 0.1
		if got := Decide(candidates(raised...), cfg).Confidence; got < baseline {
			t.Errorf("raising score %d decreased confidence: %v -> %v", i, baseline, got)
		}
	}
}

func TestDefaultThresholds(t *testing.T) {
	cfg := DefaultThresholds()
	if cfg.MinSimilarity != 0.40 || cfg.MatchMin != 2 ||
		cfg.MediumConfidence != 0.55 || cfg.HighConfidence != 0.70 ||
		cfg.AdjustmentFactor != 1.0 {
		t.Errorf("defaults drifted from calibration: %+v", cfg)
	}
}
