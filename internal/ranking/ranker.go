package ranking

import (
	"sort"

	"github.com/shiva/spotfinder/internal/model"
)

// RankScored scores every spot against its street aggregate and returns them
// ordered by descending score. Ties keep their input order (stable sort).
//
// Street lookup is an exact, case-sensitive match on ParkingSpot.Street.
// A street missing from aggregates scores 0 availability. The input slice is
// not modified; the result is always a new slice of the same length.
//
// Complexity: O(N log N).
func (r *Ranker) RankScored(spots []model.ParkingSpot, aggregates map[string]model.StreetAvailability) []model.ScoredSpot {
	scored := make([]model.ScoredSpot, len(spots))
	for i, spot := range spots {
		var agg *model.StreetAvailability
		if a, ok := aggregates[spot.Street]; ok {
			agg = &a
		}
		c := r.ScoreComponents(spot, agg)
		scored[i] = model.ScoredSpot{
			Spot:       spot,
			Score:      r.combine(c),
			Components: c,
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

// Rank returns spots reordered best-first. See RankScored.
func (r *Ranker) Rank(spots []model.ParkingSpot, aggregates map[string]model.StreetAvailability) []model.ParkingSpot {
	scored := r.RankScored(spots, aggregates)
	out := make([]model.ParkingSpot, len(scored))
	for i, s := range scored {
		out[i] = s.Spot
	}
	return out
}

// RankScored ranks with the default policy.
func RankScored(spots []model.ParkingSpot, aggregates map[string]model.StreetAvailability) []model.ScoredSpot {
	return defaultRanker.RankScored(spots, aggregates)
}

// Rank ranks with the default policy.
func Rank(spots []model.ParkingSpot, aggregates map[string]model.StreetAvailability) []model.ParkingSpot {
	return defaultRanker.Rank(spots, aggregates)
}
