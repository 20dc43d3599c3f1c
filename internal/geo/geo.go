// Package geo implements the geometry primitives the rest of the pipeline
// shares: great-circle distance, bounding boxes, and the Google polyline
// codec. None of this is provider-specific; it is pure math over
// models.Coordinate.
package geo

import (
	"math"

	"github.com/exotic-travel-booking/backend/internal/models"
)

const earthRadiusM = 6371000.0

// HaversineMeters returns the great-circle distance between a and b.
func HaversineMeters(a, b models.Coordinate) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusM * c
}

// HaversineKm is a convenience wrapper over HaversineMeters.
func HaversineKm(a, b models.Coordinate) float64 {
	return HaversineMeters(a, b) / 1000
}

// BBox is a geographic bounding box.
type BBox struct {
	South, West, North, East float64
}

// Pad grows the box by deg degrees on every side.
func (b BBox) Pad(deg float64) BBox {
	return BBox{
		South: b.South - deg,
		West:  b.West - deg,
		North: b.North + deg,
		East:  b.East + deg,
	}
}

// Contains reports whether c lies within the box.
func (b BBox) Contains(c models.Coordinate) bool {
	return c.Lat >= b.South && c.Lat <= b.North && c.Lng >= b.West && c.Lng <= b.East
}

// Centroid returns the arithmetic mean of a set of coordinates. Callers
// must not pass an empty slice.
func Centroid(coords []models.Coordinate) models.Coordinate {
	var sumLat, sumLng float64
	for _, c := range coords {
		sumLat += c.Lat
		sumLng += c.Lng
	}
	n := float64(len(coords))
	return models.Coordinate{Lat: sumLat / n, Lng: sumLng / n}
}

// Nearest returns the index of the coordinate in coords closest to target.
func Nearest(target models.Coordinate, coords []models.Coordinate) int {
	best := -1
	bestDist := math.MaxFloat64
	for i, c := range coords {
		d := HaversineMeters(target, c)
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

// NominalSpeedKmh is the fallback constant-speed assumption per transport
// mode, used when the routing backend is unavailable (spec 4.7).
func NominalSpeedKmh(mode models.TransportMode) float64 {
	switch mode {
	case models.TransportDriving:
		return 40
	case models.TransportTransit:
		return 20
	default:
		return 5
	}
}

// EstimateDurationSeconds estimates travel time for a distance at the
// mode's nominal speed.
func EstimateDurationSeconds(distanceM float64, mode models.TransportMode) float64 {
	speedMs := NominalSpeedKmh(mode) * 1000 / 3600
	if speedMs <= 0 {
		return 0
	}
	return distanceM / speedMs
}
