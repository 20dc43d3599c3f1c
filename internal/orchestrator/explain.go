package orchestrator

import (
	"fmt"
	"strings"

	"github.com/exotic-travel-booking/backend/internal/models"
)

// explanationTemplates are picked by trip length; each is filled with the
// city name, POI count, and a joined interest list (spec 4.9 "assemble
// explanation string from a small template set").
var explanationTemplates = map[models.TimeConstraint]string{
	models.TimeHalfDay:   "A quick %d-stop tour of %s's %s, sized for a half day on foot.",
	models.TimeOneDay:    "A full day exploring %d of %s's best %s.",
	models.TimeTwoDays:   "A two-day itinerary covering %d highlights of %s's %s.",
	models.TimeThreeDays: "A three-day journey through %d of %s's %s, paced across multiple days.",
	models.TimeFiveDays:  "A five-day deep dive into %d of %s's %s.",
}

func buildExplanation(city string, poiCount int, interests []string, tc models.TimeConstraint) string {
	template, ok := explanationTemplates[tc]
	if !ok {
		template = explanationTemplates[models.TimeOneDay]
	}
	theme := "landmarks"
	if len(interests) > 0 {
		theme = strings.Join(interests, ", ")
	}
	return fmt.Sprintf(template, poiCount, city, theme)
}

// buildGoogleMapsURL assembles a Google Maps directions deep link from the
// ordered POI list. When startingPoint is set, it is used as both origin
// and destination for a round trip (the caller controls IsRoundTrip); when
// not set, origin is the first POI and destination the last.
func buildGoogleMapsURL(pois []models.POI, startingPoint *models.Coordinate, isRoundTrip bool) string {
	if len(pois) == 0 {
		return ""
	}

	var origin, destination string
	var waypoints []string

	if startingPoint != nil {
		origin = coordParam(*startingPoint)
		if isRoundTrip {
			destination = origin
		} else {
			last := pois[len(pois)-1].Coordinates
			destination = coordParam(last)
		}
		for _, p := range pois {
			if !isRoundTrip && p.Coordinates == pois[len(pois)-1].Coordinates {
				continue
			}
			waypoints = append(waypoints, coordParam(p.Coordinates))
		}
	} else {
		origin = coordParam(pois[0].Coordinates)
		destination = coordParam(pois[len(pois)-1].Coordinates)
		for _, p := range pois[1 : len(pois)-1] {
			waypoints = append(waypoints, coordParam(p.Coordinates))
		}
	}

	url := fmt.Sprintf("https://www.google.com/maps/dir/?api=1&origin=%s&destination=%s", origin, destination)
	if len(waypoints) > 0 {
		url += "&waypoints=" + strings.Join(waypoints, "|")
	}
	return url
}

func coordParam(c models.Coordinate) string {
	return fmt.Sprintf("%g,%g", c.Lat, c.Lng)
}
