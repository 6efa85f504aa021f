package handler

import (
	"net/http"

	"github.com/gorilla/mux"
)

// Routes registers the /api/v1 endpoints on router.
func Routes(router *mux.Router, search *SearchHandler, avail *AvailabilityHandler) {
	api := router.PathPrefix("/api/v1").Subrouter()

	// Spot search and ranking
	api.HandleFunc("/spots/nearby", search.FindNearby).Methods(http.MethodGet)
	api.HandleFunc("/spots/rank", search.RankSpots).Methods(http.MethodPost)
	api.HandleFunc("/spots/{id}/availability", avail.SetAvailability).Methods(http.MethodPut)

	// Streets and areas
	api.HandleFunc("/streets/{street}/availability", search.StreetAvailability).Methods(http.MethodGet)
	api.HandleFunc("/streets/{street}/spots", search.RankStreet).Methods(http.MethodGet)
	api.HandleFunc("/areas", search.ListAreas).Methods(http.MethodGet)
	api.HandleFunc("/areas/{area}/streets", search.StreetsInArea).Methods(http.MethodGet)
}
