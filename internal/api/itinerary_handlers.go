package api

import (
	"net/http"

	"github.com/exotic-travel-booking/backend/internal/models"
	"github.com/exotic-travel-booking/backend/internal/orchestrator"
)

// createItineraryRequest is the wire shape of POST /itinerary.
type createItineraryRequest struct {
	Location            string                `json:"location"`
	TransportMode       models.TransportMode  `json:"transport_mode"`
	Interests           []string              `json:"interests"`
	TimeAvailable       models.TimeConstraint `json:"time_available"`
	StartingLocation    string                `json:"starting_location"`
	StartingCoordinates *models.Coordinate    `json:"starting_coordinates"`
}

func (h *handlers) createItinerary(w http.ResponseWriter, r *http.Request) {
	var req createItineraryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, validationError("request body is not valid JSON"))
		return
	}
	if req.Location == "" {
		writeError(w, validationError("location is required"))
		return
	}

	itinerary, err := h.orchestrator.CreateItinerary(r.Context(), orchestrator.CreateItineraryRequest{
		Location:            req.Location,
		TransportMode:       req.TransportMode,
		Interests:           req.Interests,
		TimeAvailable:       req.TimeAvailable,
		StartingLocation:    req.StartingLocation,
		StartingCoordinates: req.StartingCoordinates,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, itinerary)
}

// createRouteFromSelectionRequest is the wire shape of
// POST /route/from-selection.
type createRouteFromSelectionRequest struct {
	POIs                []models.POI         `json:"pois"`
	TransportMode       models.TransportMode  `json:"transport_mode"`
	NumDays             int                   `json:"num_days"`
	StartingCoordinates *models.Coordinate    `json:"starting_coordinates"`
}

func (h *handlers) createRouteFromSelection(w http.ResponseWriter, r *http.Request) {
	var req createRouteFromSelectionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, validationError("request body is not valid JSON"))
		return
	}
	if len(req.POIs) == 0 {
		writeError(w, validationError("pois must not be empty"))
		return
	}

	itinerary, err := h.orchestrator.CreateRouteFromSelection(r.Context(), orchestrator.CreateRouteFromSelectionRequest{
		POIs:                req.POIs,
		TransportMode:       req.TransportMode,
		NumDays:             req.NumDays,
		StartingCoordinates: req.StartingCoordinates,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, itinerary)
}
