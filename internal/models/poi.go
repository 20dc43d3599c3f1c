package models

import (
	"strings"
	"time"
)

// Coordinate is a WGS84 point. Zero-valued coordinates (0,0) are never
// valid POI locations; callers must treat the zero value as "unset".
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether c is a finite, in-range coordinate.
func (c Coordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180 &&
		!(c.Lat == 0 && c.Lng == 0)
}

// OpeningPeriod is one open/close window within a week.
type OpeningPeriod struct {
	DayOfWeek int    `json:"day_of_week"` // 0=Sunday
	Open      string `json:"open"`        // HH:MM
	Close     string `json:"close"`       // HH:MM
}

// OpeningHours carries both a display string and structured periods; the
// structured list is frequently empty even when Display is populated,
// because most providers only hand back prose hours.
type OpeningHours struct {
	Display string          `json:"display,omitempty"`
	Periods []OpeningPeriod `json:"periods,omitempty"`
}

// POI is a validated, enriched point of interest. Once constructed by the
// enrichment pipeline it is treated as immutable and passed by value or
// pointer-to-const between packages.
type POI struct {
	PlaceID               string        `json:"place_id"`
	Name                  string        `json:"name"`
	Coordinates           Coordinate    `json:"coordinates"`
	MapsURL               string        `json:"maps_url"`
	OpeningHours          *OpeningHours `json:"opening_hours,omitempty"`
	PriceLevel            *int          `json:"price_level,omitempty"` // 0..4
	Confidence            float64       `json:"confidence"`
	Images                []string      `json:"images,omitempty"`
	Address               string        `json:"address,omitempty"`
	Types                 []string      `json:"types,omitempty"`
	VisitDurationMinutes  *int          `json:"visit_duration_minutes,omitempty"`
	WhyVisit              string        `json:"why_visit,omitempty"`
	Admission             string        `json:"admission,omitempty"`
	AdmissionURL          string        `json:"admission_url,omitempty"`
}

// NameKey returns the case-insensitive dedup key for a POI.
func (p POI) NameKey() string {
	return strings.ToLower(strings.TrimSpace(p.Name))
}

// PrimaryType returns the first category tag, or "" if untyped.
func (p POI) PrimaryType() string {
	if len(p.Types) == 0 {
		return ""
	}
	return p.Types[0]
}

// LandmarkSuggestion is an LLM-produced candidate with no coordinates by
// construction; the LLM is never trusted to invent them. It is consumed by
// the geocoder and either lifted into a POI or discarded.
type LandmarkSuggestion struct {
	Name                   string  `json:"name"`
	Category               string  `json:"category"`
	Rationale              string  `json:"rationale"`
	EstimatedVisitHours    float64 `json:"estimated_visit_hours"`
	Admission              string  `json:"admission,omitempty"`
	AdmissionURL           string  `json:"admission_url,omitempty"`
}

// RankedPOI is the LLM's relevance judgement about one POI.
type RankedPOI struct {
	Index     int     `json:"index"`
	Score     float64 `json:"score"` // 0..1
	Rationale string  `json:"rationale"`
}

// StructuredQuery is the parsed form of a free-text user request.
type StructuredQuery struct {
	City     string   `json:"city"`
	Area     string   `json:"area,omitempty"`
	POITypes []string `json:"poi_types,omitempty"`
	Keywords []string `json:"keywords,omitempty"`
}

// CityInfo is what the geocoder resolves a city name to.
type CityInfo struct {
	Name        string     `json:"name"`
	Center      Coordinate `json:"center"`
	BBoxSouth   float64    `json:"bbox_south"`
	BBoxWest    float64    `json:"bbox_west"`
	BBoxNorth   float64    `json:"bbox_north"`
	BBoxEast    float64    `json:"bbox_east"`
	CountryCode string     `json:"country_code"`
}

// TransportMode is one of the three supported travel modes.
type TransportMode string

const (
	TransportWalking TransportMode = "walking"
	TransportDriving TransportMode = "driving"
	TransportTransit TransportMode = "transit"
)

// TimeConstraint is one of the five supported trip-length buckets.
type TimeConstraint string

const (
	TimeHalfDay  TimeConstraint = "6h"
	TimeOneDay   TimeConstraint = "day"
	TimeTwoDays  TimeConstraint = "2days"
	TimeThreeDays TimeConstraint = "3days"
	TimeFiveDays TimeConstraint = "5days"
)

// DaysFor returns how many calendar days a time constraint spans.
func (t TimeConstraint) DaysFor() int {
	switch t {
	case TimeHalfDay, TimeOneDay:
		return 1
	case TimeTwoDays:
		return 2
	case TimeThreeDays:
		return 3
	case TimeFiveDays:
		return 5
	default:
		return 1
	}
}

// SuggestionCount is the LLM landmark-request size for this time constraint
// (spec 4.3 op 2: 25/30/40/50 for half-day/day/2-day/>=3-day).
func (t TimeConstraint) SuggestionCount() int {
	switch t {
	case TimeHalfDay:
		return 25
	case TimeOneDay:
		return 30
	case TimeTwoDays:
		return 40
	default:
		return 50
	}
}

// TruncateCap is the orchestrator's pre-optimization POI cap
// (spec 4.9: 6/10/20/30/50 for half-day..5-day).
func (t TimeConstraint) TruncateCap() int {
	switch t {
	case TimeHalfDay:
		return 6
	case TimeOneDay:
		return 10
	case TimeTwoDays:
		return 20
	case TimeThreeDays:
		return 30
	default:
		return 50
	}
}

// TravelAllowance is the per-mode travel-time budget used by the time-
// constraint trim (spec 4.7): half-day=6h, day=8h, scaled per day for
// multi-day trips.
func (t TimeConstraint) TravelAllowance() time.Duration {
	switch t {
	case TimeHalfDay:
		return 6 * time.Hour
	case TimeOneDay:
		return 8 * time.Hour
	default:
		return time.Duration(t.DaysFor()) * 8 * time.Hour
	}
}
