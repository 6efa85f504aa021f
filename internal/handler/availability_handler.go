package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/shiva/spotfinder/internal/service"
)

// SetAvailabilityBody is the JSON body for PUT /api/v1/spots/{id}/availability.
type SetAvailabilityBody struct {
	Available *bool `json:"available"`
}

// AvailabilityHandler handles spot occupy/release updates.
type AvailabilityHandler struct {
	svc *service.AvailabilityService
}

// NewAvailabilityHandler creates a new availability handler.
func NewAvailabilityHandler(svc *service.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{svc: svc}
}

// SetAvailability handles PUT /api/v1/spots/{id}/availability
//
//	Request body: {"available": false}
func (h *AvailabilityHandler) SetAvailability(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "spot id must be an integer")
		return
	}

	var body SetAvailabilityBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Available == nil {
		writeError(w, http.StatusBadRequest, "invalid_body", `body must be {"available": true|false}`)
		return
	}

	street, err := h.svc.SetSpotAvailability(r.Context(), id, *body.Available)
	if err != nil {
		if errors.Is(err, service.ErrSpotNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "Parking spot not found.")
			return
		}
		log.Printf("[handler] set availability error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "internal_error",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":        id,
		"street":    street,
		"available": *body.Available,
	})
}
