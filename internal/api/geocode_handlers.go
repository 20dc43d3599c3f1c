package api

import (
	"net/http"
)

// geocodeRequest is the wire shape of POST /geocode.
type geocodeRequest struct {
	Query string `json:"query"`
}

func (h *handlers) geocode(w http.ResponseWriter, r *http.Request) {
	var req geocodeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, validationError("request body is not valid JSON"))
		return
	}
	if req.Query == "" {
		writeError(w, validationError("query is required"))
		return
	}

	coord, err := h.orchestrator.Geocode(r.Context(), req.Query)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, coord)
}

// geocodeBatchRequest is the wire shape of POST /geocode/batch.
type geocodeBatchRequest struct {
	Queries []string `json:"queries"`
}

// geocodeBatchItem is one result of a batch geocode; Error is a string so
// it survives JSON encoding without a custom marshaler.
type geocodeBatchItem struct {
	Query       string      `json:"query"`
	Coordinates interface{} `json:"coordinates,omitempty"`
	Error       string      `json:"error,omitempty"`
}

func (h *handlers) geocodeBatch(w http.ResponseWriter, r *http.Request) {
	var req geocodeBatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, validationError("request body is not valid JSON"))
		return
	}
	if len(req.Queries) == 0 {
		writeError(w, validationError("queries is required"))
		return
	}

	results := h.orchestrator.BatchGeocode(r.Context(), req.Queries)
	out := make([]geocodeBatchItem, len(results))
	for i, res := range results {
		item := geocodeBatchItem{Query: res.Query}
		if res.Err != nil {
			item.Error = res.Err.Error()
		} else {
			item.Coordinates = res.Coord
		}
		out[i] = item
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handlers) cityCenter(w http.ResponseWriter, r *http.Request) {
	city := r.URL.Query().Get("city")
	if city == "" {
		writeError(w, validationError("city query parameter is required"))
		return
	}

	info, err := h.orchestrator.CityCenter(r.Context(), city)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}
