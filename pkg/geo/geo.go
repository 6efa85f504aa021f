// Package geo provides geographic helpers for the parking spot finder.
//
// Distances are great-circle distances on a spherical Earth, computed with
// the S2 geometry library. Good enough for the sub-10 km radii we search;
// it is not a walking-route distance.
package geo

import (
	"math"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"

	"github.com/shiva/spotfinder/internal/model"
)

// ─── Constants ──────────────────────────────────────────────

const (
	// EarthRadiusM is the mean radius of Earth in meters.
	EarthRadiusM = 6_371_000.0
)

// ─── Distance ───────────────────────────────────────────────

// LatLng converts a model.Location into an S2 LatLng.
func LatLng(loc model.Location) s2.LatLng {
	return s2.LatLngFromDegrees(loc.Lat, loc.Lon)
}

// DistanceM returns the great-circle distance between two points in meters.
//
// Complexity: O(1)
func DistanceM(a, b model.Location) float64 {
	return LatLng(a).Distance(LatLng(b)).Radians() * EarthRadiusM
}

// HaversineM is the closed-form haversine distance in meters.
// Kept alongside DistanceM as an independent cross-check in tests.
func HaversineM(a, b model.Location) float64 {
	dLat := degToRad(b.Lat - a.Lat)
	dLon := degToRad(b.Lon - a.Lon)

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)

	h := sinLat*sinLat +
		math.Cos(degToRad(a.Lat))*math.Cos(degToRad(b.Lat))*sinLon*sinLon

	return 2 * EarthRadiusM * math.Asin(math.Sqrt(h))
}

// ─── Validation & Search Area ──────────────────────────────

// ValidLocation reports whether loc is a finite WGS-84 coordinate.
func ValidLocation(loc model.Location) bool {
	if math.IsNaN(loc.Lat) || math.IsNaN(loc.Lon) {
		return false
	}
	return loc.Lat >= -90 && loc.Lat <= 90 && loc.Lon >= -180 && loc.Lon <= 180
}

// SearchCap returns the spherical cap of the given radius around center.
func SearchCap(center model.Location, radiusM float64) s2.Cap {
	angle := s1.Angle(radiusM / EarthRadiusM)
	return s2.CapFromCenterAngle(s2.PointFromLatLng(LatLng(center)), angle)
}

// Within reports whether p lies within radiusM of center.
func Within(center, p model.Location, radiusM float64) bool {
	return SearchCap(center, radiusM).ContainsPoint(s2.PointFromLatLng(LatLng(p)))
}

// ─── Helpers ────────────────────────────────────────────────

func degToRad(deg float64) float64 {
	return deg * (math.Pi / 180.0)
}
