package service

import (
	"context"
	"fmt"
	"log"

	"github.com/shiva/spotfinder/internal/model"
	"github.com/shiva/spotfinder/pkg/geo"
)

// StreetSummary is a street in an area together with its aggregate.
// Availability is nil when the aggregate could not be loaded.
type StreetSummary struct {
	Street       string                    `json:"street"`
	Availability *model.StreetAvailability `json:"availability,omitempty"`
}

// ListAreas returns every area with its spot count.
func (s *SearchService) ListAreas(ctx context.Context) ([]model.Area, error) {
	areas, err := s.spots.ListAreas(ctx)
	if err != nil {
		return nil, fmt.Errorf("list areas: %w", err)
	}
	if areas == nil {
		areas = []model.Area{}
	}
	return areas, nil
}

// StreetsInArea lists an area's streets with their availability.
// Returns ErrAreaNotFound when the area has no streets.
func (s *SearchService) StreetsInArea(ctx context.Context, area string) ([]StreetSummary, error) {
	streets, err := s.spots.StreetsInArea(ctx, area)
	if err != nil {
		return nil, fmt.Errorf("streets in area: %w", err)
	}
	if len(streets) == 0 {
		return nil, ErrAreaNotFound
	}

	aggs, err := s.avail.GetStreetAvailability(ctx, streets)
	if err != nil {
		log.Printf("[search] WARNING: availability for area %q failed: %v", area, err)
		aggs = nil
	}

	out := make([]StreetSummary, len(streets))
	for i, st := range streets {
		out[i] = StreetSummary{Street: st}
		if agg, ok := aggs[st]; ok {
			out[i].Availability = &agg
		}
	}
	return out, nil
}

// RankStreet ranks every spot on a street. With a nil origin the distance is
// unknown and scores reflect zone and availability only; otherwise each spot
// is scored on its great-circle distance from origin.
func (s *SearchService) RankStreet(ctx context.Context, street string, origin *model.Location) ([]model.ScoredSpot, error) {
	if origin != nil && !geo.ValidLocation(*origin) {
		return nil, fmt.Errorf("%w: origin (%v,%v) is not a valid coordinate",
			ErrInvalidQuery, origin.Lat, origin.Lon)
	}

	spots, err := s.spots.SpotsOnStreet(ctx, street)
	if err != nil {
		return nil, fmt.Errorf("rank street: %w", err)
	}
	if len(spots) == 0 {
		return nil, ErrStreetNotFound
	}
	if origin != nil {
		spots = withDistanceFrom(spots, *origin)
	}

	aggs, err := s.avail.GetStreetAvailability(ctx, []string{street})
	if err != nil {
		log.Printf("[search] WARNING: availability for street %q failed: %v", street, err)
		aggs = map[string]model.StreetAvailability{}
	}
	return s.ranker.RankScored(spots, aggs), nil
}
