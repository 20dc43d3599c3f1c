// Package spatial implements the bounded-box tag query over an OSM-like
// data store (spec.md 4.5): mapping interests to tag filters, querying
// Overpass, scoring results by notability, and deduplicating.
package spatial

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"

	overpass "github.com/MeKo-Christian/go-overpass"

	"github.com/exotic-travel-booking/backend/internal/geo"
)

// Client queries a spatial tag store over a city's bounding box.
type Client struct {
	overpass overpass.Client
}

// Config configures the Overpass backend.
type Config struct {
	Endpoint string
	Workers  int
}

// DefaultConfig matches the public Overpass instance's recommended
// worker count.
func DefaultConfig() Config {
	return Config{
		Endpoint: "https://overpass-api.de/api/interpreter",
		Workers:  2,
	}
}

// New builds a spatial query client with retry behavior matching the
// Overpass backend's own recommended retry/backoff policy.
func New(cfg Config, httpClient *http.Client) *Client {
	if cfg.Endpoint == "" {
		cfg = DefaultConfig()
	}
	retry := overpass.DefaultRetryConfig()
	return &Client{
		overpass: overpass.NewWithRetry(cfg.Endpoint, cfg.Workers, httpClient, retry),
	}
}

// Query runs a bounding-box tag query for the given interests and returns
// up to limit features, deduplicated by lowercase name, sorted by
// notability descending (spec 4.5).
func (c *Client) Query(ctx context.Context, bbox geo.BBox, interests []string, limit int) ([]Feature, error) {
	filters := TagFiltersFor(interests)
	requestLimit := limit * 3
	if requestLimit <= 0 {
		requestLimit = 30
	}

	query := buildQuery(bbox, filters)
	result, err := c.overpass.Query(query)
	if err != nil {
		return nil, fmt.Errorf("spatial query failed: %w", err)
	}

	features := extractFeatures(result)
	deduped := dedupeByName(features)

	sort.SliceStable(deduped, func(i, j int) bool {
		return Notability(deduped[i].Tags) > Notability(deduped[j].Tags)
	})

	if len(deduped) > requestLimit {
		deduped = deduped[:requestLimit]
	}
	if len(deduped) > limit {
		deduped = deduped[:limit]
	}

	return deduped, nil
}

// buildQuery composes an Overpass QL query covering both point (node) and
// polygonal (way) features over the bbox for every tag filter, following
// the per-element-bbox-filter pattern (spec 4.5).
func buildQuery(bbox geo.BBox, filters []string) string {
	coords := fmt.Sprintf("%.6f,%.6f,%.6f,%.6f", bbox.South, bbox.West, bbox.North, bbox.East)

	var b strings.Builder
	b.WriteString("[out:json][timeout:25];\n(\n")
	for _, f := range filters {
		kv := strings.SplitN(f, "=", 2)
		if len(kv) != 2 {
			continue
		}
		fmt.Fprintf(&b, "  node[\"%s\"=\"%s\"](%s);\n", kv[0], kv[1], coords)
		fmt.Fprintf(&b, "  way[\"%s\"=\"%s\"](%s);\n", kv[0], kv[1], coords)
	}
	b.WriteString(");\nout center tags qt;")
	return b.String()
}

// extractFeatures converts the Overpass element list into spatial Features,
// using each element's own coordinates for nodes or its computed center
// for ways (spec 4.5 "extract each feature's center, name, and tags").
func extractFeatures(result overpass.Result) []Feature {
	features := make([]Feature, 0, len(result.Elements))
	for _, el := range result.Elements {
		name := el.Tags["name"]
		if name == "" {
			continue
		}

		lat, lng := el.Lat, el.Lon
		if el.Center != nil {
			lat, lng = el.Center.Lat, el.Center.Lon
		}
		if lat == 0 && lng == 0 {
			continue
		}

		features = append(features, Feature{Name: name, Lat: lat, Lng: lng, Tags: el.Tags})
	}
	return features
}

func dedupeByName(features []Feature) []Feature {
	seen := make(map[string]bool, len(features))
	out := make([]Feature, 0, len(features))
	for _, f := range features {
		key := strings.ToLower(strings.TrimSpace(f.Name))
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, f)
	}
	return out
}
