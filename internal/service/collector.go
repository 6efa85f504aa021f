package service

import (
	"github.com/shiva/spotfinder/internal/model"
	"github.com/shiva/spotfinder/pkg/geo"
)

// collect prepares raw spots for ranking and returns a new slice.
//
// Spots already carrying a store distance keep it. The rest are checked
// against the search cap around origin, dropped when outside radiusM, and
// given their great-circle distance. With onlyAvailable, occupied spots are
// dropped as well.
func collect(spots []model.ParkingSpot, origin model.Location, radiusM float64, onlyAvailable bool) []model.ParkingSpot {
	out := make([]model.ParkingSpot, 0, len(spots))
	for _, s := range spots {
		if onlyAvailable && !s.Available {
			continue
		}
		if s.DistanceM == nil {
			if !geo.Within(origin, s.Location, radiusM) {
				continue
			}
			s.DistanceM = model.Float64(geo.DistanceM(origin, s.Location))
		}
		out = append(out, s)
	}
	return out
}

// withDistanceFrom returns a copy of spots with DistanceM measured from origin.
func withDistanceFrom(spots []model.ParkingSpot, origin model.Location) []model.ParkingSpot {
	out := make([]model.ParkingSpot, len(spots))
	for i, s := range spots {
		s.DistanceM = model.Float64(geo.DistanceM(origin, s.Location))
		out[i] = s
	}
	return out
}

// distinctStreets returns street names in first-seen order, skipping blanks.
func distinctStreets(spots []model.ParkingSpot) []string {
	seen := make(map[string]struct{}, len(spots))
	var streets []string
	for _, s := range spots {
		if s.Street == "" {
			continue
		}
		if _, ok := seen[s.Street]; ok {
			continue
		}
		seen[s.Street] = struct{}{}
		streets = append(streets, s.Street)
	}
	return streets
}
