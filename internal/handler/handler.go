// Package handler contains HTTP request handlers for the parking finder API.
package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/shiva/spotfinder/internal/model"
	"github.com/shiva/spotfinder/internal/service"
)

// ─── Request/Response DTOs ──────────────────────────────────

// RankRequestBody is the JSON body for POST /api/v1/spots/rank.
type RankRequestBody struct {
	Spots   []model.ParkingSpot                 `json:"spots"`
	Streets map[string]model.StreetAvailability `json:"streets"`
}

// RankResponse wraps a ranked list.
type RankResponse struct {
	Count int                `json:"count"`
	Spots []model.ScoredSpot `json:"spots"`
}

// ─── SearchHandler ──────────────────────────────────────────

// SearchHandler handles spot search, ranking and area browsing.
type SearchHandler struct {
	search *service.SearchService
}

// NewSearchHandler creates a new handler wired to the search service.
func NewSearchHandler(search *service.SearchService) *SearchHandler {
	return &SearchHandler{search: search}
}

// FindNearby handles GET /api/v1/spots/nearby
//
// Query: lat, lon (required); radius (m), limit, available (bool) optional.
// Returns 200 with the ranked spots, best first.
func (h *SearchHandler) FindNearby(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	lat, errLat := strconv.ParseFloat(q.Get("lat"), 64)
	lon, errLon := strconv.ParseFloat(q.Get("lon"), 64)
	if errLat != nil || errLon != nil {
		writeError(w, http.StatusBadRequest, "invalid_query", "lat and lon are required numbers")
		return
	}

	query := service.SearchQuery{Origin: model.Location{Lat: lat, Lon: lon}}

	var err error
	if v := q.Get("radius"); v != "" {
		if query.RadiusM, err = strconv.Atoi(v); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_query", "radius must be an integer (meters)")
			return
		}
	}
	if v := q.Get("limit"); v != "" {
		if query.Limit, err = strconv.Atoi(v); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_query", "limit must be an integer")
			return
		}
	}
	if v := q.Get("available"); v != "" {
		if query.OnlyAvailable, err = strconv.ParseBool(v); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_query", "available must be true or false")
			return
		}
	}

	result, err := h.search.FindParking(r.Context(), query)
	if err != nil {
		h.fail(w, "search", err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// RankSpots handles POST /api/v1/spots/rank
//
// Ranks caller-supplied spots against caller-supplied street aggregates.
//
//	Request body:
//	{
//	  "spots": [{"id": 1, "type": "green", "street": "X", "distance_m": 0}],
//	  "streets": {"X": {"total": 10, "available": 10, "green": 5, "red": 5}}
//	}
func (h *SearchHandler) RankSpots(w http.ResponseWriter, r *http.Request) {
	var body RankRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "invalid JSON body")
		return
	}

	ranked := h.search.RankProvided(body.Spots, body.Streets)
	writeJSON(w, http.StatusOK, RankResponse{Count: len(ranked), Spots: ranked})
}

// StreetAvailability handles GET /api/v1/streets/{street}/availability
func (h *SearchHandler) StreetAvailability(w http.ResponseWriter, r *http.Request) {
	agg, err := h.search.StreetAvailability(r.Context(), mux.Vars(r)["street"])
	if err != nil {
		h.fail(w, "street availability", err)
		return
	}
	writeJSON(w, http.StatusOK, agg)
}

// RankStreet handles GET /api/v1/streets/{street}/spots
//
// Query: lat and lon, optional but only together. Without them the spots are
// ranked with unknown distance.
func (h *SearchHandler) RankStreet(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var origin *model.Location
	if q.Has("lat") || q.Has("lon") {
		lat, errLat := strconv.ParseFloat(q.Get("lat"), 64)
		lon, errLon := strconv.ParseFloat(q.Get("lon"), 64)
		if errLat != nil || errLon != nil {
			writeError(w, http.StatusBadRequest, "invalid_query", "lat and lon must be given together as numbers")
			return
		}
		origin = &model.Location{Lat: lat, Lon: lon}
	}

	ranked, err := h.search.RankStreet(r.Context(), mux.Vars(r)["street"], origin)
	if err != nil {
		h.fail(w, "rank street", err)
		return
	}
	writeJSON(w, http.StatusOK, RankResponse{Count: len(ranked), Spots: ranked})
}

// ListAreas handles GET /api/v1/areas
func (h *SearchHandler) ListAreas(w http.ResponseWriter, r *http.Request) {
	areas, err := h.search.ListAreas(r.Context())
	if err != nil {
		h.fail(w, "list areas", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"areas": areas})
}

// StreetsInArea handles GET /api/v1/areas/{area}/streets
func (h *SearchHandler) StreetsInArea(w http.ResponseWriter, r *http.Request) {
	area := mux.Vars(r)["area"]
	streets, err := h.search.StreetsInArea(r.Context(), area)
	if err != nil {
		h.fail(w, "streets in area", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"area":    area,
		"streets": streets,
	})
}

// fail maps service errors onto HTTP responses.
func (h *SearchHandler) fail(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidQuery):
		writeError(w, http.StatusBadRequest, "invalid_query", err.Error())
	case errors.Is(err, service.ErrStreetNotFound):
		writeError(w, http.StatusNotFound, "not_found", "Street not found.")
	case errors.Is(err, service.ErrAreaNotFound):
		writeError(w, http.StatusNotFound, "not_found", "Area not found.")
	default:
		log.Printf("[handler] %s error: %v", op, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "internal_error",
		})
	}
}

// writeJSON is a helper that writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes the {"error", "message"} envelope.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{
		"error":   code,
		"message": message,
	})
}
