package geo

import (
	"strings"

	"github.com/exotic-travel-booking/backend/internal/models"
)

const polylinePrecision = 1e5

// EncodePolyline encodes a sequence of coordinates using the Google encoded
// polyline algorithm: fixed-point at 1e-5 degrees, delta-coded, zig-zag
// signed, base64-ish 5-bit chunks.
func EncodePolyline(coords []models.Coordinate) string {
	var b strings.Builder
	var prevLat, prevLng int64

	for _, c := range coords {
		lat := round(c.Lat * polylinePrecision)
		lng := round(c.Lng * polylinePrecision)

		encodeSignedNumber(&b, lat-prevLat)
		encodeSignedNumber(&b, lng-prevLng)

		prevLat = lat
		prevLng = lng
	}
	return b.String()
}

// DecodePolyline reverses EncodePolyline, within +/-1e-5 degree tolerance.
func DecodePolyline(encoded string) []models.Coordinate {
	var coords []models.Coordinate
	index := 0
	var lat, lng int64

	for index < len(encoded) {
		dlat, next := decodeSignedNumber(encoded, index)
		index = next
		lat += dlat

		dlng, next2 := decodeSignedNumber(encoded, index)
		index = next2
		lng += dlng

		coords = append(coords, models.Coordinate{
			Lat: float64(lat) / polylinePrecision,
			Lng: float64(lng) / polylinePrecision,
		})
	}
	return coords
}

func round(v float64) int64 {
	if v >= 0 {
		return int64(v + 0.5)
	}
	return int64(v - 0.5)
}

func encodeSignedNumber(b *strings.Builder, num int64) {
	shifted := num << 1
	if num < 0 {
		shifted = ^shifted
	}
	encodeUnsignedNumber(b, shifted)
}

func encodeUnsignedNumber(b *strings.Builder, num int64) {
	for num >= 0x20 {
		b.WriteByte(byte((0x20 | (num & 0x1f)) + 63))
		num >>= 5
	}
	b.WriteByte(byte(num + 63))
}

func decodeSignedNumber(encoded string, index int) (int64, int) {
	var result int64
	var shift uint
	for {
		b := int64(encoded[index]) - 63
		index++
		result |= (b & 0x1f) << shift
		shift += 5
		if b < 0x20 {
			break
		}
	}
	if result&1 != 0 {
		result = ^(result >> 1)
	} else {
		result = result >> 1
	}
	return result, index
}

// MergePolylineWindows concatenates decoded windows, dropping the first
// point of every window after the first to avoid duplicating the shared
// overlap POI, then re-encodes the merged path (spec 4.7 polyline
// retrieval for tours >25 waypoints).
func MergePolylineWindows(windows []string) string {
	var merged []models.Coordinate
	for i, w := range windows {
		pts := DecodePolyline(w)
		if i > 0 && len(pts) > 0 {
			pts = pts[1:]
		}
		merged = append(merged, pts...)
	}
	return EncodePolyline(merged)
}

// PathDistanceMeters sums Haversine distance across consecutive points.
func PathDistanceMeters(coords []models.Coordinate) float64 {
	var total float64
	for i := 1; i < len(coords); i++ {
		total += HaversineMeters(coords[i-1], coords[i])
	}
	return total
}
