package api

import (
	"net/http"

	"github.com/exotic-travel-booking/backend/internal/llmreasoning"
	"github.com/exotic-travel-booking/backend/internal/orchestrator"
)

// discoverRequest is the wire shape of POST /discover.
type discoverRequest struct {
	City        string   `json:"city"`
	Interests   []string `json:"interests"`
	Limit       int      `json:"limit"`
	IncludeFood bool     `json:"include_food"`
}

func (h *handlers) discover(w http.ResponseWriter, r *http.Request) {
	var req discoverRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, validationError("request body is not valid JSON"))
		return
	}
	if req.City == "" {
		writeError(w, validationError("city is required"))
		return
	}

	pois, err := h.orchestrator.Discover(r.Context(), orchestrator.DiscoverRequest{
		City:        req.City,
		Interests:   req.Interests,
		Limit:       req.Limit,
		IncludeFood: req.IncludeFood,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pois)
}

// discoverFoodRequest is the wire shape of POST /discover/food.
type discoverFoodRequest struct {
	City     string `json:"city"`
	Category string `json:"category"`
	Limit    int    `json:"limit"`
}

var validFoodCategories = map[string]llmreasoning.Category{
	"cafes":       llmreasoning.CategoryCafes,
	"restaurants": llmreasoning.CategoryRestaurants,
	"bars":        llmreasoning.CategoryBars,
	"parks":       llmreasoning.CategoryParks,
}

func (h *handlers) discoverFood(w http.ResponseWriter, r *http.Request) {
	var req discoverFoodRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, validationError("request body is not valid JSON"))
		return
	}
	if req.City == "" {
		writeError(w, validationError("city is required"))
		return
	}
	category, ok := validFoodCategories[req.Category]
	if !ok {
		writeError(w, validationError("category must be one of cafes, restaurants, bars, parks"))
		return
	}

	pois, err := h.orchestrator.DiscoverFood(r.Context(), orchestrator.DiscoverFoodRequest{
		City:     req.City,
		Category: category,
		Limit:    req.Limit,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pois)
}

func (h *handlers) getPlaceDetails(w http.ResponseWriter, r *http.Request) {
	placeID := r.PathValue("place_id")
	city := r.URL.Query().Get("city")
	if city == "" {
		writeError(w, validationError("city query parameter is required"))
		return
	}

	poi, err := h.orchestrator.GetPlaceDetails(r.Context(), city, placeID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, poi)
}

// lookupPOIsRequest is the wire shape of POST /pois/lookup.
type lookupPOIsRequest struct {
	City  string   `json:"city"`
	Names []string `json:"names"`
}

func (h *handlers) lookupPOIs(w http.ResponseWriter, r *http.Request) {
	var req lookupPOIsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, validationError("request body is not valid JSON"))
		return
	}
	if req.City == "" || len(req.Names) == 0 {
		writeError(w, validationError("city and names are required"))
		return
	}

	pois, err := h.orchestrator.LookupPOIs(r.Context(), req.City, req.Names)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pois)
}
