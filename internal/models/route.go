package models

import "time"

// DistanceMatrix is an n x n pair of matrices aligned to an ordered POI
// list. Diagonal entries are always zero; the matrix need not be symmetric.
type DistanceMatrix struct {
	POIs      []POI       `json:"-"`
	Distances [][]float64 `json:"distances"` // meters
	Durations [][]float64 `json:"durations"` // seconds
}

// NewDistanceMatrix allocates an n x n matrix with zeroed diagonal.
func NewDistanceMatrix(pois []POI) *DistanceMatrix {
	n := len(pois)
	d := make([][]float64, n)
	t := make([][]float64, n)
	for i := range d {
		d[i] = make([]float64, n)
		t[i] = make([]float64, n)
	}
	return &DistanceMatrix{POIs: pois, Distances: d, Durations: t}
}

func (m *DistanceMatrix) N() int { return len(m.POIs) }

// RouteLeg is one hop of a route.
type RouteLeg struct {
	FromPOI    POI     `json:"from_poi"`
	ToPOI      POI     `json:"to_poi"`
	DistanceM  float64 `json:"distance_m"`
	DurationS  float64 `json:"duration_s"`
	Polyline   string  `json:"polyline"`
}

// Route is an ordered, routed visit of up to 25 POIs.
type Route struct {
	OrderedPOIs      []POI          `json:"ordered_pois"`
	Legs             []RouteLeg     `json:"legs"`
	Polyline         string         `json:"polyline"`
	TotalDistanceM   float64        `json:"total_distance_m"`
	TotalDurationS   float64        `json:"total_duration_s"`
	TransportMode    TransportMode  `json:"transport_mode"`
	StartingPoint    *Coordinate    `json:"starting_point,omitempty"`
	IsRoundTrip      bool           `json:"is_round_trip"`
}

// DayPlan is one day's worth of a multi-day itinerary.
type DayPlan struct {
	DayNumber         int     `json:"day_number"`
	Theme             string  `json:"theme"`
	POIs              []POI   `json:"pois"`
	Route             *Route  `json:"route,omitempty"`
	TotalVisitMinutes int     `json:"total_visit_minutes"`
	TotalKilometers   float64 `json:"total_kilometers"`
}

// Itinerary is the top-level response object.
type Itinerary struct {
	ID                string         `json:"id"`
	City              string         `json:"city"`
	POIs              []POI          `json:"pois"`
	Route             *Route         `json:"route,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
	TransportMode     TransportMode  `json:"transport_mode"`
	TimeConstraint    TimeConstraint `json:"time_constraint"`
	Explanation       string         `json:"explanation"`
	StartingLocation  string         `json:"starting_location,omitempty"`
	GoogleMapsURL     string         `json:"google_maps_url"`
	Days              []DayPlan      `json:"days,omitempty"`
	TotalDays         int            `json:"total_days"`
	Warnings          []string       `json:"warnings,omitempty"`
}
