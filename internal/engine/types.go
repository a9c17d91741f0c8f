package engine

import "github.com/poleguard/repeal/internal/corpus"

// Status is the engine's classification of an infraction.
type Status string

const (
	// StatusValidInfraction means the spec corpus offers no convincing
	// rule that excuses the cited violation.
	StatusValidInfraction Status = "VALID_INFRACTION"
	// StatusPotentiallyRepealable means moderate-confidence evidence was
	// found and a human should review the cited rule.
	StatusPotentiallyRepealable Status = "POTENTIALLY_REPEALABLE"
	// StatusRepealable means a high-confidence spec match excuses the
	// audited condition.
	StatusRepealable Status = "REPEALABLE"
)

// Band is the coarse classification derived from the numeric confidence.
type Band string

const (
	BandLow    Band = "LOW"
	BandMedium Band = "MEDIUM"
	BandHigh   Band = "HIGH"
)

// ThresholdConfig holds the tunable decision parameters. The defaults
// mirror the values calibrated in production; change them only with fresh
// calibration data.
type ThresholdConfig struct {
	// MinSimilarity is the floor below which a candidate is not counted.
	MinSimilarity float64 `json:"min_similarity" yaml:"min_similarity" koanf:"min_similarity"`

	// MatchMin is the minimum number of qualifying candidates needed to
	// trust the best single score; below it the top scores are averaged.
	MatchMin int `json:"match_min" yaml:"match_min" koanf:"match_min"`

	// MediumConfidence is the confidence at or above which the status
	// becomes at least POTENTIALLY_REPEALABLE.
	MediumConfidence float64 `json:"medium_confidence" yaml:"medium_confidence" koanf:"medium_confidence"`

	// HighConfidence is the confidence at or above which the verdict is
	// REPEALABLE with a HIGH band.
	HighConfidence float64 `json:"high_confidence" yaml:"high_confidence" koanf:"high_confidence"`

	// AdjustmentFactor is a multiplicative boost for callers that
	// supplement vector similarity with keyword or regex evidence. 1.0
	// leaves raw confidence untouched.
	AdjustmentFactor float64 `json:"adjustment_factor" yaml:"adjustment_factor" koanf:"adjustment_factor"`
}

// DefaultThresholds returns the production-calibrated configuration.
func DefaultThresholds() ThresholdConfig {
	return ThresholdConfig{
		MinSimilarity:    0.40,
		MatchMin:         2,
		MediumConfidence: 0.55,
		HighConfidence:   0.70,
		AdjustmentFactor: 1.0,
	}
}

// Verdict is the engine's output for one infraction. Verdicts are
// immutable once computed.
type Verdict struct {
	Status     Status  `json:"status"`
	Confidence float64 `json:"confidence"`
	Band       Band    `json:"confidence_band"`
	MatchCount int     `json:"match_count"`

	// TopMatch references the highest-scoring spec chunk for the audit
	// trail; nil when no candidate cleared the floor.
	TopMatch *corpus.Chunk `json:"top_match,omitempty"`
	TopScore float64       `json:"top_score,omitempty"`
}
