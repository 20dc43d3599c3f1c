package orchestrator

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/exotic-travel-booking/backend/internal/models"
)

// spatialPlaceIDPrefix marks a POI whose coordinates came from the spatial
// tag query; geoPlaceIDPrefix marks one resolved through the LLM-landmark
// or direct-geocode path (spec.md 3's place_id prefix invariant).
const (
	spatialPlaceIDPrefix = "osm"
	geoPlaceIDPrefix     = "geo"
)

// placeID derives a stable opaque id from a source prefix, name, and
// coordinate, since neither the geocoder nor the LLM hands back a durable
// external identifier.
func placeID(prefix, name string, coord models.Coordinate) string {
	key := fmt.Sprintf("%s|%.5f|%.5f", strings.ToLower(strings.TrimSpace(name)), coord.Lat, coord.Lng)
	sum := sha1.Sum([]byte(key))
	return fmt.Sprintf("%s_%s", prefix, hex.EncodeToString(sum[:])[:16])
}
