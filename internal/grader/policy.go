package grader

import "math"

// Scoring policy constants. These define the grading contract and are kept in
// one place so the arithmetic stays auditable.
const (
	// MaxScore is the ceiling for every score the engine produces.
	MaxScore = 10.0

	// Weights of the two partial scores when reconciling the raw score.
	OutputWeight = 0.8
	CodeWeight   = 0.2

	// NeutralOutputScore is used when no rubric text exists to verify against.
	NeutralOutputScore = 6.5

	// OutputMatchThreshold is the verification score at or above which the
	// submission output counts as matching the rubric.
	OutputMatchThreshold = 6.0

	// UnmatchedRawCap caps the raw score when the output did not match.
	UnmatchedRawCap = 4.5

	// Caps applied when a cheating pattern is suspected.
	CheatingOutputCap = 3.0
	CheatingCodeCap   = 2.5
	CheatingRawCap    = 3.0

	// DefaultLatePenaltyPerDay applies when the problem does not carry a
	// valid per-day rate.
	DefaultLatePenaltyPerDay = 0.5

	// MaxFlagEntries bounds mistake flags and issue lists on the record.
	MaxFlagEntries = 10
)

func clamp(value, min, max float64) float64 {
	return math.Min(max, math.Max(min, value))
}

func clampScore(value float64) float64 {
	return clamp(value, 0, MaxScore)
}

// round1 rounds to one decimal; every published score is a multiple of 0.1.
func round1(value float64) float64 {
	return math.Round(value*10) / 10
}

func isFinite(value float64) bool {
	return !math.IsNaN(value) && !math.IsInf(value, 0)
}
