// Package model contains domain models for the parking spot finder.
// These structs map to the PostgreSQL schema created by pkg/db.Migrate.
package model

import "strings"

// ─── Enums ──────────────────────────────────────────────────

// ZoneType is the parking regulation color code of a spot.
type ZoneType string

const (
	ZoneGreen   ZoneType = "green"
	ZoneYellow  ZoneType = "yellow"
	ZoneRed     ZoneType = "red"
	ZoneDisable ZoneType = "disable"
)

// ParseZoneType normalizes a raw zone string. Matching is case-insensitive;
// unrecognized values are kept (lowercased) rather than rejected.
func ParseZoneType(s string) ZoneType {
	return ZoneType(strings.ToLower(strings.TrimSpace(s)))
}

// Normalized returns the lowercase form of z.
func (z ZoneType) Normalized() ZoneType {
	return ParseZoneType(string(z))
}

// ─── Location ───────────────────────────────────────────────

// Location represents a WGS-84 geographic point (EPSG:4326).
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// ─── Domain Models ──────────────────────────────────────────

// ParkingSpot maps to the `parking_spots` table.
//
// DistanceM is the straight-line distance from the user in meters.
// nil means the distance is unknown.
type ParkingSpot struct {
	ID        int64    `json:"id"`
	Available bool     `json:"available"`
	Type      ZoneType `json:"type"`
	Location  Location `json:"location"`
	Street    string   `json:"street"`
	Area      string   `json:"area"`
	DistanceM *float64 `json:"distance_m,omitempty"`
}

// StreetAvailability is the per-street aggregate of spot counts.
type StreetAvailability struct {
	Street    string `json:"street"`
	Total     int    `json:"total"`
	Available int    `json:"available"`
	Green     int    `json:"green"`
	Yellow    int    `json:"yellow"`
	Red       int    `json:"red"`
}

// CountFor returns the available count for the given zone type.
// Types without a dedicated counter (including disable) return 0.
func (s StreetAvailability) CountFor(z ZoneType) int {
	switch z.Normalized() {
	case ZoneGreen:
		return s.Green
	case ZoneYellow:
		return s.Yellow
	case ZoneRed:
		return s.Red
	default:
		return 0
	}
}

// Area maps to the `areas` table.
type Area struct {
	Name      string `json:"name"`
	SpotCount int    `json:"spot_count"`
}

// ─── Ranking DTOs ───────────────────────────────────────────

// ScoreComponents is the per-factor breakdown of a composite score.
type ScoreComponents struct {
	Distance     float64 `json:"distance"`
	Availability float64 `json:"availability"`
	Preference   float64 `json:"preference"`
}

// ScoredSpot pairs a spot with its composite score.
type ScoredSpot struct {
	Spot       ParkingSpot     `json:"spot"`
	Score      float64         `json:"score"`
	Components ScoreComponents `json:"components"`
}

// Float64 returns a pointer to v. Handy for building spots with a known distance.
func Float64(v float64) *float64 {
	return &v
}
