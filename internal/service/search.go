// Package service contains the business logic for finding parking.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/shiva/spotfinder/config"
	"github.com/shiva/spotfinder/internal/model"
	"github.com/shiva/spotfinder/internal/ranking"
	"github.com/shiva/spotfinder/pkg/geo"
)

// ─── Errors ─────────────────────────────────────────────────

var (
	ErrInvalidQuery   = errors.New("invalid search query")
	ErrStreetNotFound = errors.New("street not found")
	ErrAreaNotFound   = errors.New("area not found")
)

// ─── Collaborators ──────────────────────────────────────────

// SpotStore answers spot and area queries. Implemented by
// repository.SpotRepository.
type SpotStore interface {
	FindSpotsNearby(ctx context.Context, origin model.Location, radiusMeters, limit int, onlyAvailable bool) ([]model.ParkingSpot, error)
	SpotsOnStreet(ctx context.Context, street string) ([]model.ParkingSpot, error)
	ListAreas(ctx context.Context) ([]model.Area, error)
	StreetsInArea(ctx context.Context, area string) ([]string, error)
}

// AvailabilityStore answers street-aggregate queries. Implemented by
// repository.AvailabilityRepository.
type AvailabilityStore interface {
	GetStreetAvailability(ctx context.Context, streets []string) (map[string]model.StreetAvailability, error)
}

// ─── DTOs ───────────────────────────────────────────────────

// SearchQuery describes a nearby-parking search. Zero RadiusM / Limit pick
// the configured defaults.
type SearchQuery struct {
	Origin        model.Location
	RadiusM       int
	Limit         int
	OnlyAvailable bool
}

// SearchResult is the ranked answer to a SearchQuery.
type SearchResult struct {
	SearchID string             `json:"search_id"`
	Origin   model.Location     `json:"origin"`
	RadiusM  int                `json:"radius_m"`
	Count    int                `json:"count"`
	Degraded bool               `json:"degraded"` // street aggregates unavailable; ranked without them
	Spots    []model.ScoredSpot `json:"spots"`
}

// ─── SearchService ──────────────────────────────────────────

// SearchService collects candidate spots near the user and ranks them.
//
// Flow per search:
//
//  1. FETCH: PostGIS ST_DWithin finds spots inside the radius. The
//     free-spots filter runs in the same query, before LIMIT.
//  2. DISTANCE: each spot gets its straight-line distance to the user.
//  3. AGGREGATE: one lookup for the distinct streets' availability counts.
//  4. RANK: ranking.RankScored orders them best-first.
//
// A failed aggregate lookup does not fail the search: the spots are ranked
// with an empty aggregate map (availability scores 0) and the result is
// flagged Degraded.
//
// Safe for concurrent use; it holds no mutable state.
type SearchService struct {
	spots  SpotStore
	avail  AvailabilityStore
	ranker *ranking.Ranker
	cfg    config.SearchConfig
}

// NewSearchService creates a search service using the default ranking policy.
func NewSearchService(spots SpotStore, avail AvailabilityStore, cfg config.SearchConfig) *SearchService {
	return &SearchService{
		spots:  spots,
		avail:  avail,
		ranker: ranking.Default(),
		cfg:    cfg,
	}
}

// FindParking runs a ranked nearby-parking search.
func (s *SearchService) FindParking(ctx context.Context, q SearchQuery) (*SearchResult, error) {
	q, err := s.normalize(q)
	if err != nil {
		return nil, err
	}

	searchID := uuid.NewString()
	log.Printf("[search] %s: origin=(%.5f,%.5f) radius=%dm limit=%d only_available=%v",
		searchID, q.Origin.Lat, q.Origin.Lon, q.RadiusM, q.Limit, q.OnlyAvailable)

	// ── Step 1: FETCH candidates ────────────────────────
	candidates, err := s.spots.FindSpotsNearby(ctx, q.Origin, q.RadiusM, q.Limit, q.OnlyAvailable)
	if err != nil {
		return nil, fmt.Errorf("search: fetch candidates: %w", err)
	}

	// ── Step 2: DISTANCE ────────────────────────────────
	candidates = collect(candidates, q.Origin, float64(q.RadiusM), q.OnlyAvailable)

	log.Printf("[search] %s: %d candidates within %dm", searchID, len(candidates), q.RadiusM)

	// ── Step 3: AGGREGATE per street ────────────────────
	aggregates, degraded := s.streetAggregates(ctx, searchID, candidates)

	// ── Step 4: RANK ────────────────────────────────────
	ranked := s.ranker.RankScored(candidates, aggregates)

	if len(ranked) > 0 {
		best := ranked[0]
		log.Printf("[search] %s: ✓ best spot #%d on %q score=%.3f",
			searchID, best.Spot.ID, best.Spot.Street, best.Score)
	}

	return &SearchResult{
		SearchID: searchID,
		Origin:   q.Origin,
		RadiusM:  q.RadiusM,
		Count:    len(ranked),
		Degraded: degraded,
		Spots:    ranked,
	}, nil
}

// RankProvided ranks caller-supplied spots and aggregates without touching
// the data store.
func (s *SearchService) RankProvided(
	spots []model.ParkingSpot,
	aggregates map[string]model.StreetAvailability,
) []model.ScoredSpot {
	return s.ranker.RankScored(spots, aggregates)
}

// StreetAvailability returns the aggregate for a single street.
func (s *SearchService) StreetAvailability(ctx context.Context, street string) (*model.StreetAvailability, error) {
	aggs, err := s.avail.GetStreetAvailability(ctx, []string{street})
	if err != nil {
		return nil, fmt.Errorf("street availability: %w", err)
	}
	agg, ok := aggs[street]
	if !ok {
		return nil, ErrStreetNotFound
	}
	return &agg, nil
}

// ─── Private helpers ────────────────────────────────────────

// normalize applies defaults and bounds to a query.
func (s *SearchService) normalize(q SearchQuery) (SearchQuery, error) {
	if !geo.ValidLocation(q.Origin) {
		return q, fmt.Errorf("%w: origin (%v,%v) is not a valid coordinate",
			ErrInvalidQuery, q.Origin.Lat, q.Origin.Lon)
	}
	if q.RadiusM < 0 {
		return q, fmt.Errorf("%w: radius must not be negative", ErrInvalidQuery)
	}
	if q.Limit < 0 {
		return q, fmt.Errorf("%w: limit must not be negative", ErrInvalidQuery)
	}

	if q.RadiusM == 0 {
		q.RadiusM = s.cfg.DefaultRadiusM
	}
	if q.RadiusM > s.cfg.MaxRadiusM {
		q.RadiusM = s.cfg.MaxRadiusM
	}
	if q.Limit == 0 {
		q.Limit = s.cfg.DefaultLimit
	}
	if q.Limit > s.cfg.MaxLimit {
		q.Limit = s.cfg.MaxLimit
	}
	return q, nil
}

// streetAggregates looks up availability for every distinct street among
// spots. On failure it logs and returns an empty map with degraded=true.
func (s *SearchService) streetAggregates(
	ctx context.Context,
	searchID string,
	spots []model.ParkingSpot,
) (map[string]model.StreetAvailability, bool) {
	streets := distinctStreets(spots)
	if len(streets) == 0 {
		return map[string]model.StreetAvailability{}, false
	}

	aggs, err := s.avail.GetStreetAvailability(ctx, streets)
	if err != nil {
		log.Printf("[search] %s: WARNING: street availability failed for %d streets: %v — ranking without it",
			searchID, len(streets), err)
		return map[string]model.StreetAvailability{}, true
	}
	return aggs, false
}
