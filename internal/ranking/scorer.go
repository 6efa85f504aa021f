package ranking

import (
	"errors"
	"math"

	"github.com/shiva/spotfinder/internal/model"
)

// ErrInvalidCap is returned by NewRanker for a non-positive or non-finite cap.
var ErrInvalidCap = errors.New("ranking: distance cap must be a positive finite number")

// ─── Ranker ─────────────────────────────────────────────────

// Ranker holds the scoring policy. The zero value is not usable; build one
// with Default or NewRanker. A Ranker is immutable and safe for concurrent use.
type Ranker struct {
	weights Weights
	capM    float64
}

var defaultRanker = Default()

// Default returns a Ranker with DefaultWeights and DistanceCapM.
func Default() *Ranker {
	return &Ranker{weights: DefaultWeights(), capM: DistanceCapM}
}

// NewRanker returns a Ranker with custom weights and distance cap.
func NewRanker(w Weights, capM float64) (*Ranker, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	if capM <= 0 || math.IsNaN(capM) || math.IsInf(capM, 0) {
		return nil, ErrInvalidCap
	}
	return &Ranker{weights: w, capM: capM}, nil
}

// Weights returns the weights this ranker scores with.
func (r *Ranker) Weights() Weights { return r.weights }

// DistanceCap returns the distance cap in meters.
func (r *Ranker) DistanceCap() float64 { return r.capM }

// ─── Distance ───────────────────────────────────────────────

// DistanceScore maps a distance in meters to [0, 1]; closer is higher.
//
//	nil or NaN → treated as the cap (score 0)
//	d < 0      → treated as 0 (score 1)
//	d ≥ cap    → 0
func (r *Ranker) DistanceScore(distanceM *float64) float64 {
	d := r.capM
	if distanceM != nil && !math.IsNaN(*distanceM) {
		d = *distanceM
	}
	if d < 0 {
		d = 0
	}
	return 1 - math.Min(d, r.capM)/r.capM
}

// ─── Availability ───────────────────────────────────────────

// AvailabilityScore blends the type-specific and overall availability ratios
// of the spot's street:
//
//	0.6 × count(zone)/total + 0.4 × available/total
//
// An absent aggregate or a street with no spots scores 0.
func (r *Ranker) AvailabilityScore(agg *model.StreetAvailability, zone model.ZoneType) float64 {
	if agg == nil || agg.Total <= 0 {
		return 0
	}
	total := float64(agg.Total)
	typeSpecific := clamp01(float64(agg.CountFor(zone)) / total)
	overall := clamp01(float64(agg.Available) / total)
	return TypeSpecificShare*typeSpecific + OverallShare*overall
}

// ─── Preference ─────────────────────────────────────────────

// PreferenceScore is a fixed lookup: green 1.0, yellow 0.8, red 0.6,
// anything else 0. Matching is case-insensitive.
func (r *Ranker) PreferenceScore(zone model.ZoneType) float64 {
	switch zone.Normalized() {
	case model.ZoneGreen:
		return 1.0
	case model.ZoneYellow:
		return 0.8
	case model.ZoneRed:
		return 0.6
	default:
		return 0
	}
}

// ─── Composite ──────────────────────────────────────────────

// ScoreComponents returns the three factor scores for a spot.
func (r *Ranker) ScoreComponents(spot model.ParkingSpot, agg *model.StreetAvailability) model.ScoreComponents {
	return model.ScoreComponents{
		Distance:     r.DistanceScore(spot.DistanceM),
		Availability: r.AvailabilityScore(agg, spot.Type),
		Preference:   r.PreferenceScore(spot.Type),
	}
}

// Score returns the weighted composite score for a spot.
func (r *Ranker) Score(spot model.ParkingSpot, agg *model.StreetAvailability) float64 {
	return r.combine(r.ScoreComponents(spot, agg))
}

func (r *Ranker) combine(c model.ScoreComponents) float64 {
	return r.weights.Distance*c.Distance +
		r.weights.Availability*c.Availability +
		r.weights.Preference*c.Preference
}

// ─── Package-level helpers (default policy) ─────────────────

// DistanceScore scores a distance with the default policy.
func DistanceScore(distanceM *float64) float64 {
	return defaultRanker.DistanceScore(distanceM)
}

// AvailabilityScore scores street availability with the default policy.
func AvailabilityScore(agg *model.StreetAvailability, zone model.ZoneType) float64 {
	return defaultRanker.AvailabilityScore(agg, zone)
}

// PreferenceScore scores a zone type with the default policy.
func PreferenceScore(zone model.ZoneType) float64 {
	return defaultRanker.PreferenceScore(zone)
}

// Score returns the composite score with the default policy.
func Score(spot model.ParkingSpot, agg *model.StreetAvailability) float64 {
	return defaultRanker.Score(spot, agg)
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
