// Package ranking scores candidate parking spots and orders them best-first.
//
// Every function here is pure: no I/O, no logging, no shared mutable state.
// Absent, zero and unrecognized inputs map to defined fallback scores, so
// ranking never fails and never yields NaN.
//
// Composite score:
//
//	Score = 0.4 × Distance + 0.4 × Availability + 0.2 × Preference
//
// where every component lies in [0, 1].
package ranking

import (
	"fmt"
	"math"
)

// ─── Constants ──────────────────────────────────────────────

const (
	// DistanceCapM is the distance (meters) at and beyond which the distance
	// score bottoms out at 0. Unknown distances are treated as this value.
	DistanceCapM = 5000.0

	// WeightDistance, WeightAvailability and WeightPreference sum to 1.0.
	WeightDistance     = 0.4
	WeightAvailability = 0.4
	WeightPreference   = 0.2

	// TypeSpecificShare and OverallShare blend the two availability ratios.
	TypeSpecificShare = 0.6
	OverallShare      = 0.4

	weightTolerance = 1e-9
)

// Weights defines the relative importance of each scoring factor.
type Weights struct {
	Distance     float64
	Availability float64
	Preference   float64
}

// DefaultWeights returns the 0.4 / 0.4 / 0.2 split.
func DefaultWeights() Weights {
	return Weights{
		Distance:     WeightDistance,
		Availability: WeightAvailability,
		Preference:   WeightPreference,
	}
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	return w.Distance + w.Availability + w.Preference
}

// Validate checks that weights are finite, non-negative and sum to 1.0.
func (w Weights) Validate() error {
	for name, v := range map[string]float64{
		"distance":     w.Distance,
		"availability": w.Availability,
		"preference":   w.Preference,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("ranking: %s weight is not finite", name)
		}
		if v < 0 {
			return fmt.Errorf("ranking: negative %s weight: %f", name, v)
		}
	}
	if math.Abs(w.Sum()-1.0) > weightTolerance {
		return fmt.Errorf("ranking: weights sum to %.4f, must sum to 1.0", w.Sum())
	}
	return nil
}
