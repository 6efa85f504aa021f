package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shiva/spotfinder/config"
	"github.com/shiva/spotfinder/internal/model"
	"github.com/shiva/spotfinder/internal/repository"
)

// ─── Fakes ──────────────────────────────────────────────────

type fakeSpots struct {
	nearby  []model.ParkingSpot
	street  map[string][]model.ParkingSpot
	areas   []model.Area
	inArea  map[string][]string
	err     error
	gotRad  int
	gotLim  int
	gotOnly bool
	updated map[int64]bool
}

// FindSpotsNearby filters and truncates like the SQL query: the free-spots
// condition is part of WHERE, so it applies before LIMIT.
func (f *fakeSpots) FindSpotsNearby(_ context.Context, _ model.Location, radius, limit int, onlyAvailable bool) ([]model.ParkingSpot, error) {
	f.gotRad, f.gotLim, f.gotOnly = radius, limit, onlyAvailable
	if f.err != nil {
		return nil, f.err
	}
	var out []model.ParkingSpot
	for _, s := range f.nearby {
		if onlyAvailable && !s.Available {
			continue
		}
		if len(out) == limit {
			break
		}
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeSpots) SpotsOnStreet(_ context.Context, street string) ([]model.ParkingSpot, error) {
	return f.street[street], f.err
}

func (f *fakeSpots) ListAreas(context.Context) ([]model.Area, error) { return f.areas, f.err }

func (f *fakeSpots) StreetsInArea(_ context.Context, area string) ([]string, error) {
	return f.inArea[area], f.err
}

func (f *fakeSpots) SetAvailability(_ context.Context, id int64, available bool) (string, error) {
	for _, s := range f.nearby {
		if s.ID == id {
			if f.updated == nil {
				f.updated = map[int64]bool{}
			}
			f.updated[id] = available
			return s.Street, nil
		}
	}
	return "", repository.ErrSpotNotFound
}

type fakeAvail struct {
	aggs        map[string]model.StreetAvailability
	err         error
	asked       []string
	invalidated []string
}

func (f *fakeAvail) GetStreetAvailability(_ context.Context, streets []string) (map[string]model.StreetAvailability, error) {
	f.asked = append(f.asked, streets...)
	if f.err != nil {
		return nil, f.err
	}
	out := map[string]model.StreetAvailability{}
	for _, s := range streets {
		if a, ok := f.aggs[s]; ok {
			out[s] = a
		}
	}
	return out, nil
}

func (f *fakeAvail) InvalidateStreet(_ context.Context, street string) {
	f.invalidated = append(f.invalidated, street)
}

var origin = model.Location{Lat: 41.3870, Lon: 2.1701}

func newSvc(spots *fakeSpots, avail *fakeAvail) *SearchService {
	return NewSearchService(spots, avail, config.DefaultSearchConfig())
}

func resultIDs(r []model.ScoredSpot) []int64 {
	out := make([]int64, len(r))
	for i, s := range r {
		out[i] = s.Spot.ID
	}
	return out
}

// ─── FindParking ────────────────────────────────────────────

func TestFindParking_RanksCandidates(t *testing.T) {
	spots := &fakeSpots{nearby: []model.ParkingSpot{
		{ID: 2, Available: true, Type: "red", Street: "X", DistanceM: model.Float64(5000)},
		{ID: 1, Available: true, Type: "GREEN", Street: "X", DistanceM: model.Float64(0)},
	}}
	avail := &fakeAvail{aggs: map[string]model.StreetAvailability{
		"X": {Street: "X", Total: 10, Available: 10, Green: 5, Red: 5},
	}}

	res, err := newSvc(spots, avail).FindParking(context.Background(), SearchQuery{Origin: origin})
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 2}, resultIDs(res.Spots))
	assert.InDelta(t, 0.88, res.Spots[0].Score, 1e-9)
	assert.InDelta(t, 0.40, res.Spots[1].Score, 1e-9)
	assert.Equal(t, 2, res.Count)
	assert.False(t, res.Degraded)
	assert.NotEmpty(t, res.SearchID)
	assert.Equal(t, []string{"X"}, avail.asked)
}

func TestFindParking_ComputesMissingDistance(t *testing.T) {
	near := model.Location{Lat: 41.3871, Lon: 2.1701}
	far := model.Location{Lat: 41.3990, Lon: 2.1701}
	spots := &fakeSpots{nearby: []model.ParkingSpot{
		{ID: 1, Type: "green", Street: "A", Location: far},
		{ID: 2, Type: "green", Street: "A", Location: near},
	}}

	res, err := newSvc(spots, &fakeAvail{}).FindParking(context.Background(), SearchQuery{Origin: origin})
	require.NoError(t, err)

	require.Len(t, res.Spots, 2)
	assert.Equal(t, int64(2), res.Spots[0].Spot.ID)
	for _, s := range res.Spots {
		require.NotNil(t, s.Spot.DistanceM)
	}
	assert.InDelta(t, 11, *res.Spots[0].Spot.DistanceM, 2)
	// The store's slice is untouched.
	assert.Nil(t, spots.nearby[0].DistanceM)
}

func TestFindParking_OnlyAvailable(t *testing.T) {
	spots := &fakeSpots{nearby: []model.ParkingSpot{
		{ID: 1, Available: false, Type: "green", Street: "A", DistanceM: model.Float64(10)},
		{ID: 2, Available: true, Type: "red", Street: "A", DistanceM: model.Float64(900)},
	}}

	res, err := newSvc(spots, &fakeAvail{}).FindParking(context.Background(),
		SearchQuery{Origin: origin, OnlyAvailable: true})
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, resultIDs(res.Spots))
}

func TestFindParking_OnlyAvailableAppliesBeforeLimit(t *testing.T) {
	spots := &fakeSpots{nearby: []model.ParkingSpot{
		{ID: 1, Available: false, Type: "green", Street: "A", DistanceM: model.Float64(10)},
		{ID: 2, Available: false, Type: "green", Street: "A", DistanceM: model.Float64(20)},
		{ID: 3, Available: false, Type: "green", Street: "A", DistanceM: model.Float64(30)},
		{ID: 99, Available: true, Type: "red", Street: "B", DistanceM: model.Float64(1500)},
	}}

	res, err := newSvc(spots, &fakeAvail{}).FindParking(context.Background(),
		SearchQuery{Origin: origin, Limit: 3, OnlyAvailable: true})
	require.NoError(t, err)
	assert.True(t, spots.gotOnly)
	assert.Equal(t, []int64{99}, resultIDs(res.Spots))
}

func TestFindParking_AggregateFailureDegrades(t *testing.T) {
	spots := &fakeSpots{nearby: []model.ParkingSpot{
		{ID: 1, Type: "red", Street: "A", DistanceM: model.Float64(100)},
		{ID: 2, Type: "green", Street: "B", DistanceM: model.Float64(100)},
	}}
	avail := &fakeAvail{err: errors.New("redis down")}

	res, err := newSvc(spots, avail).FindParking(context.Background(), SearchQuery{Origin: origin})
	require.NoError(t, err)
	assert.True(t, res.Degraded)
	assert.Equal(t, []int64{2, 1}, resultIDs(res.Spots))
	for _, s := range res.Spots {
		assert.Equal(t, 0.0, s.Components.Availability)
	}
}

func TestFindParking_StoreFailure(t *testing.T) {
	spots := &fakeSpots{err: errors.New("connection refused")}
	_, err := newSvc(spots, &fakeAvail{}).FindParking(context.Background(), SearchQuery{Origin: origin})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidQuery)
}

func TestFindParking_Empty(t *testing.T) {
	avail := &fakeAvail{}
	res, err := newSvc(&fakeSpots{}, avail).FindParking(context.Background(), SearchQuery{Origin: origin})
	require.NoError(t, err)
	assert.NotNil(t, res.Spots)
	assert.Empty(t, res.Spots)
	assert.Empty(t, avail.asked, "no streets, no aggregate lookup")
}

func TestFindParking_QueryBounds(t *testing.T) {
	cfg := config.DefaultSearchConfig()

	tests := []struct {
		name            string
		q               SearchQuery
		wantRad, wantLm int
		wantErr         bool
	}{
		{"defaults", SearchQuery{Origin: origin}, cfg.DefaultRadiusM, cfg.DefaultLimit, false},
		{"clamped", SearchQuery{Origin: origin, RadiusM: 99999, Limit: 5000}, cfg.MaxRadiusM, cfg.MaxLimit, false},
		{"explicit", SearchQuery{Origin: origin, RadiusM: 300, Limit: 7}, 300, 7, false},
		{"negative radius", SearchQuery{Origin: origin, RadiusM: -1}, 0, 0, true},
		{"negative limit", SearchQuery{Origin: origin, Limit: -1}, 0, 0, true},
		{"bad latitude", SearchQuery{Origin: model.Location{Lat: 91, Lon: 0}}, 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spots := &fakeSpots{}
			_, err := newSvc(spots, &fakeAvail{}).FindParking(context.Background(), tt.q)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidQuery)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantRad, spots.gotRad)
			assert.Equal(t, tt.wantLm, spots.gotLim)
		})
	}
}

// ─── Streets / areas ────────────────────────────────────────

func TestStreetAvailability(t *testing.T) {
	avail := &fakeAvail{aggs: map[string]model.StreetAvailability{"A": {Street: "A", Total: 3}}}
	svc := newSvc(&fakeSpots{}, avail)

	agg, err := svc.StreetAvailability(context.Background(), "A")
	require.NoError(t, err)
	assert.Equal(t, 3, agg.Total)

	_, err = svc.StreetAvailability(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrStreetNotFound)
}

func TestStreetsInArea(t *testing.T) {
	spots := &fakeSpots{inArea: map[string][]string{"Gracia": {"A", "B"}}}
	avail := &fakeAvail{aggs: map[string]model.StreetAvailability{"A": {Street: "A", Total: 2}}}
	svc := newSvc(spots, avail)

	got, err := svc.StreetsInArea(context.Background(), "Gracia")
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.NotNil(t, got[0].Availability)
	assert.Equal(t, 2, got[0].Availability.Total)
	assert.Nil(t, got[1].Availability)

	_, err = svc.StreetsInArea(context.Background(), "Nowhere")
	assert.ErrorIs(t, err, ErrAreaNotFound)
}

func TestListAreas_NeverNil(t *testing.T) {
	got, err := newSvc(&fakeSpots{}, &fakeAvail{}).ListAreas(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestRankStreet(t *testing.T) {
	spots := &fakeSpots{street: map[string][]model.ParkingSpot{"A": {
		{ID: 1, Type: "disable", Street: "A"},
		{ID: 2, Type: "yellow", Street: "A"},
		{ID: 3, Type: "green", Street: "A"},
	}}}
	avail := &fakeAvail{aggs: map[string]model.StreetAvailability{
		"A": {Street: "A", Total: 3, Available: 3, Green: 1, Yellow: 1},
	}}
	svc := newSvc(spots, avail)

	got, err := svc.RankStreet(context.Background(), "A", nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 2, 1}, resultIDs(got))
	for _, s := range got {
		assert.Nil(t, s.Spot.DistanceM)
	}

	_, err = svc.RankStreet(context.Background(), "B", nil)
	assert.ErrorIs(t, err, ErrStreetNotFound)
}

func TestRankStreet_WithOrigin(t *testing.T) {
	// ~4 km north of origin.
	far := model.Location{Lat: 41.4230, Lon: 2.1701}
	spots := &fakeSpots{street: map[string][]model.ParkingSpot{"A": {
		{ID: 1, Type: "green", Street: "A", Location: far},
		{ID: 2, Type: "red", Street: "A", Location: origin},
	}}}
	svc := newSvc(spots, &fakeAvail{})

	// Without a location the green spot wins on preference alone.
	got, err := svc.RankStreet(context.Background(), "A", nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, resultIDs(got))

	loc := origin
	got, err = svc.RankStreet(context.Background(), "A", &loc)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 1}, resultIDs(got))
	require.NotNil(t, got[0].Spot.DistanceM)
	require.NotNil(t, got[1].Spot.DistanceM)
	assert.InDelta(t, 0, *got[0].Spot.DistanceM, 1e-6)
	assert.InDelta(t, 4003, *got[1].Spot.DistanceM, 10)
	assert.Nil(t, spots.street["A"][0].DistanceM, "store slice untouched")

	bad := model.Location{Lat: 120, Lon: 0}
	_, err = svc.RankStreet(context.Background(), "A", &bad)
	assert.ErrorIs(t, err, ErrInvalidQuery)
}

func TestRankProvided(t *testing.T) {
	got := newSvc(&fakeSpots{}, &fakeAvail{}).RankProvided(nil, nil)
	assert.Empty(t, got)
}

// ─── Availability updates ───────────────────────────────────

func TestSetSpotAvailability(t *testing.T) {
	spots := &fakeSpots{nearby: []model.ParkingSpot{{ID: 5, Street: "A"}}}
	avail := &fakeAvail{}
	svc := NewAvailabilityService(spots, avail)

	street, err := svc.SetSpotAvailability(context.Background(), 5, false)
	require.NoError(t, err)
	assert.Equal(t, "A", street)
	assert.Equal(t, []string{"A"}, avail.invalidated)
	assert.False(t, spots.updated[5])

	_, err = svc.SetSpotAvailability(context.Background(), 99, true)
	assert.ErrorIs(t, err, ErrSpotNotFound)
	assert.Len(t, avail.invalidated, 1)
}

// ─── Collector helpers ──────────────────────────────────────

func TestDistinctStreets(t *testing.T) {
	in := []model.ParkingSpot{{Street: "B"}, {Street: "A"}, {Street: "B"}, {Street: ""}}
	assert.Equal(t, []string{"B", "A"}, distinctStreets(in))
}

func TestCollect_KeepsStoreDistance(t *testing.T) {
	in := []model.ParkingSpot{{ID: 1, DistanceM: model.Float64(42), Location: model.Location{Lat: 10, Lon: 10}}}
	out := collect(in, origin, 2000, false)
	require.Len(t, out, 1)
	assert.Equal(t, 42.0, *out[0].DistanceM)
}

func TestCollect_DropsComputedOutsideRadius(t *testing.T) {
	in := []model.ParkingSpot{
		{ID: 1, Location: model.Location{Lat: 41.4230, Lon: 2.1701}}, // ~4 km
		{ID: 2, Location: model.Location{Lat: 41.3871, Lon: 2.1701}}, // ~11 m
		{ID: 3, Location: model.Location{Lat: 41.4230, Lon: 2.1701}, DistanceM: model.Float64(1000)},
	}
	out := collect(in, origin, 2000, false)

	ids := make([]int64, len(out))
	for i, s := range out {
		ids[i] = s.ID
	}
	assert.Equal(t, []int64{2, 3}, ids, "store distances are trusted as-is")
}
