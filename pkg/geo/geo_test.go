package geo

import (
	"math"
	"testing"

	"github.com/shiva/spotfinder/internal/model"
)

func TestDistanceM_SamePoint(t *testing.T) {
	loc := model.Location{Lat: 41.3874, Lon: 2.1686}
	got := DistanceM(loc, loc)
	if got != 0 {
		t.Errorf("DistanceM(same point) = %v, want 0", got)
	}
}

func TestDistanceM_KnownDistance(t *testing.T) {
	// Plaça de Catalunya to Sagrada Família (~2.0 km straight line)
	catalunya := model.Location{Lat: 41.3870, Lon: 2.1701}
	sagrada := model.Location{Lat: 41.4036, Lon: 2.1744}
	got := DistanceM(catalunya, sagrada)
	wantMin, wantMax := 1700.0, 2200.0
	if got < wantMin || got > wantMax {
		t.Errorf("DistanceM(Catalunya→Sagrada) = %.0f m, want between %.0f and %.0f", got, wantMin, wantMax)
	}
}

func TestDistanceM_MatchesHaversine(t *testing.T) {
	a := model.Location{Lat: 41.3870, Lon: 2.1701}
	b := model.Location{Lat: 41.3750, Lon: 2.1490}
	s2d := DistanceM(a, b)
	hav := HaversineM(a, b)
	if math.Abs(s2d-hav) > 0.5 {
		t.Errorf("DistanceM = %.3f, HaversineM = %.3f, want within 0.5 m", s2d, hav)
	}
}

func TestDistanceM_Symmetric(t *testing.T) {
	a := model.Location{Lat: 0, Lon: 0}
	b := model.Location{Lat: 0.01, Lon: 0.02}
	if math.Abs(DistanceM(a, b)-DistanceM(b, a)) > 1e-9 {
		t.Errorf("DistanceM not symmetric")
	}
}

func TestValidLocation(t *testing.T) {
	cases := []struct {
		loc  model.Location
		want bool
	}{
		{model.Location{Lat: 0, Lon: 0}, true},
		{model.Location{Lat: 90, Lon: 180}, true},
		{model.Location{Lat: -90.1, Lon: 0}, false},
		{model.Location{Lat: 0, Lon: 181}, false},
		{model.Location{Lat: math.NaN(), Lon: 0}, false},
	}
	for _, c := range cases {
		if got := ValidLocation(c.loc); got != c.want {
			t.Errorf("ValidLocation(%+v) = %v, want %v", c.loc, got, c.want)
		}
	}
}

func TestWithin(t *testing.T) {
	center := model.Location{Lat: 41.3870, Lon: 2.1701}
	near := model.Location{Lat: 41.3880, Lon: 2.1701} // ~111 m north
	far := model.Location{Lat: 41.4036, Lon: 2.1744}

	if !Within(center, near, 500) {
		t.Errorf("Within(near, 500m) = false, want true")
	}
	if Within(center, far, 500) {
		t.Errorf("Within(far, 500m) = true, want false")
	}
}
