package geo

import (
	"testing"

	"github.com/exotic-travel-booking/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHaversineMetersKnownDistance(t *testing.T) {
	// Berlin -> Paris is roughly 878km.
	berlin := models.Coordinate{Lat: 52.5200, Lng: 13.4050}
	paris := models.Coordinate{Lat: 48.8566, Lng: 2.3522}

	d := HaversineMeters(berlin, paris)
	assert.InDelta(t, 878000, d, 15000)
}

func TestHaversineZeroForSamePoint(t *testing.T) {
	p := models.Coordinate{Lat: 10, Lng: 10}
	assert.Equal(t, 0.0, HaversineMeters(p, p))
}

func TestBBoxContainsAndPad(t *testing.T) {
	b := BBox{South: 0, West: 0, North: 1, East: 1}
	require.True(t, b.Contains(models.Coordinate{Lat: 0.5, Lng: 0.5}))
	require.False(t, b.Contains(models.Coordinate{Lat: 2, Lng: 2}))

	padded := b.Pad(0.3)
	assert.InDelta(t, -0.3, padded.South, 1e-9)
	assert.InDelta(t, 1.3, padded.North, 1e-9)
}

func TestPolylineRoundTrip(t *testing.T) {
	coords := []models.Coordinate{
		{Lat: 38.5, Lng: -120.2},
		{Lat: 40.7, Lng: -120.95},
		{Lat: 43.252, Lng: -126.453},
	}

	encoded := EncodePolyline(coords)
	decoded := DecodePolyline(encoded)
	reEncoded := EncodePolyline(decoded)

	require.Equal(t, encoded, reEncoded)
	require.Len(t, decoded, len(coords))
	for i, c := range coords {
		assert.InDelta(t, c.Lat, decoded[i].Lat, 1e-5)
		assert.InDelta(t, c.Lng, decoded[i].Lng, 1e-5)
	}
}

func TestMergePolylineWindowsDropsOverlap(t *testing.T) {
	w1 := EncodePolyline([]models.Coordinate{{Lat: 0, Lng: 0}, {Lat: 1, Lng: 1}})
	w2 := EncodePolyline([]models.Coordinate{{Lat: 1, Lng: 1}, {Lat: 2, Lng: 2}})

	merged := DecodePolyline(MergePolylineWindows([]string{w1, w2}))
	require.Len(t, merged, 3)
}

func TestNominalSpeedAndEstimate(t *testing.T) {
	assert.Equal(t, 5.0, NominalSpeedKmh(models.TransportWalking))
	assert.Equal(t, 40.0, NominalSpeedKmh(models.TransportDriving))

	d := EstimateDurationSeconds(5000, models.TransportWalking)
	assert.InDelta(t, 3600, d, 1)
}

func TestCentroidAndNearest(t *testing.T) {
	coords := []models.Coordinate{{Lat: 0, Lng: 0}, {Lat: 2, Lng: 2}}
	c := Centroid(coords)
	assert.InDelta(t, 1, c.Lat, 1e-9)

	idx := Nearest(models.Coordinate{Lat: 1.9, Lng: 1.9}, coords)
	assert.Equal(t, 1, idx)
}
