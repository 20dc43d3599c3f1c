// Package routing talks to a public OSRM-compatible routing backend for
// duration matrices and route geometry, falling back to a haversine/
// nominal-speed estimate when the backend is unavailable (spec.md 4.7).
package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/exotic-travel-booking/backend/internal/geo"
	"github.com/exotic-travel-booking/backend/internal/httpclient"
	"github.com/exotic-travel-booking/backend/internal/models"
)

const (
	clientName = "routing"

	// maxWaypointsPerRequest bounds a single /route request; longer tours
	// are split into overlapping windows (spec 4.7 polyline retrieval).
	maxWaypointsPerRequest = 25
)

// Config points the client at a routing backend base URL.
type Config struct {
	BaseURL string
}

// DefaultConfig targets the public OSRM demo server, matching the
// original's free-tier deployment.
func DefaultConfig() Config {
	return Config{BaseURL: "https://router.project-osrm.org"}
}

// Client is a thin OSRM /table and /route wrapper with a built-in
// straight-line fallback.
type Client struct {
	client  *http.Client
	baseURL string
}

// New builds a Client against the named pool client.
func New(pool *httpclient.Pool, cfg Config) *Client {
	return &Client{client: pool.Client(clientName), baseURL: strings.TrimRight(cfg.BaseURL, "/")}
}

// profile maps a transport mode to the routing engine's profile name.
// Transit has no OSRM profile so it falls back to pedestrian routing,
// matching spec 4.7's "transit -> pedestrian fallback" note.
func profile(mode models.TransportMode) string {
	if mode == models.TransportDriving {
		return "car"
	}
	return "foot"
}

type tableResponse struct {
	Code      string      `json:"code"`
	Durations [][]float64 `json:"durations"`
	Distances [][]float64 `json:"distances"`
}

// BuildDistanceMatrix requests a dense n x n duration/distance table for
// pois in the given mode. On any backend failure it falls back to a
// haversine/nominal-speed estimate (spec 4.7).
func (c *Client) BuildDistanceMatrix(ctx context.Context, pois []models.POI, mode models.TransportMode) *models.DistanceMatrix {
	matrix := models.NewDistanceMatrix(pois)
	n := matrix.N()
	if n <= 1 {
		return matrix
	}

	if err := c.fillFromBackend(ctx, matrix, mode); err != nil {
		fillHaversineFallback(matrix, mode)
	}
	return matrix
}

func (c *Client) fillFromBackend(ctx context.Context, matrix *models.DistanceMatrix, mode models.TransportMode) error {
	coords := make([]string, matrix.N())
	for i, p := range matrix.POIs {
		coords[i] = fmt.Sprintf("%f,%f", p.Coordinates.Lng, p.Coordinates.Lat)
	}
	url := fmt.Sprintf("%s/table/v1/%s/%s?annotations=duration,distance", c.baseURL, profile(mode), strings.Join(coords, ";"))

	var resp tableResponse
	err := httpclient.DoWithRetry(ctx, 500*time.Millisecond, func() (int, error) {
		return c.get(ctx, url, &resp)
	})
	if err != nil {
		return err
	}
	if resp.Code != "Ok" || len(resp.Durations) != matrix.N() || len(resp.Distances) != matrix.N() {
		return fmt.Errorf("routing backend returned code %q", resp.Code)
	}

	matrix.Durations = resp.Durations
	matrix.Distances = resp.Distances
	return nil
}

// fillHaversineFallback estimates every cell from great-circle distance at
// the mode's nominal speed (spec 4.7: walking 5km/h, driving 40km/h,
// transit 20km/h).
func fillHaversineFallback(matrix *models.DistanceMatrix, mode models.TransportMode) {
	for i, a := range matrix.POIs {
		for j, b := range matrix.POIs {
			if i == j {
				continue
			}
			d := geo.HaversineMeters(a.Coordinates, b.Coordinates)
			matrix.Distances[i][j] = d
			matrix.Durations[i][j] = geo.EstimateDurationSeconds(d, mode)
		}
	}
}

type routeResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Distance float64 `json:"distance"`
		Geometry string  `json:"geometry"`
		Legs     []struct {
			Distance float64 `json:"distance"`
		} `json:"legs"`
	} `json:"routes"`
}

// Geometry requests route geometry for an ordered list of coordinates,
// windowing requests >25 waypoints (spec 4.7 polyline retrieval). Returns
// the merged polyline, total distance in meters, and per-leg distances in
// meters aligned to consecutive pairs of coords.
func (c *Client) Geometry(ctx context.Context, coords []models.Coordinate, mode models.TransportMode) (polyline string, totalDistanceM float64, legDistancesM []float64, err error) {
	if len(coords) == 0 {
		return "", 0, nil, fmt.Errorf("routing: no coordinates provided")
	}
	if len(coords) == 1 {
		return "", 0, nil, nil
	}

	if len(coords) <= maxWaypointsPerRequest {
		return c.geometryWindow(ctx, coords, mode)
	}

	var windows []string
	var legs []float64
	var total float64
	i := 0
	for i < len(coords)-1 {
		end := i + maxWaypointsPerRequest
		if end > len(coords) {
			end = len(coords)
		}
		window := coords[i:end]
		poly, dist, windowLegs, werr := c.geometryWindow(ctx, window, mode)
		if werr != nil {
			return "", 0, nil, werr
		}
		windows = append(windows, poly)
		legs = append(legs, windowLegs...)
		total += dist

		if end == len(coords) {
			break
		}
		i = end - 1 // overlap by one waypoint
	}

	merged := geo.MergePolylineWindows(windows)
	return merged, total, legs, nil
}

func (c *Client) geometryWindow(ctx context.Context, coords []models.Coordinate, mode models.TransportMode) (string, float64, []float64, error) {
	parts := make([]string, len(coords))
	for i, co := range coords {
		parts[i] = fmt.Sprintf("%f,%f", co.Lng, co.Lat)
	}
	url := fmt.Sprintf("%s/route/v1/%s/%s?overview=full&geometries=polyline&steps=false", c.baseURL, profile(mode), strings.Join(parts, ";"))

	var resp routeResponse
	err := httpclient.DoWithRetry(ctx, 500*time.Millisecond, func() (int, error) {
		return c.get(ctx, url, &resp)
	})
	if err != nil || resp.Code != "Ok" || len(resp.Routes) == 0 {
		return fallbackGeometry(coords, mode)
	}

	route := resp.Routes[0]
	legDistances := make([]float64, 0, len(route.Legs))
	for _, leg := range route.Legs {
		legDistances = append(legDistances, leg.Distance)
	}
	return route.Geometry, route.Distance, legDistances, nil
}

// fallbackGeometry synthesizes a route when the backend fails: an empty
// polyline with straight-line haversine leg distances and their total. The
// pipeline still succeeds without route geometry (spec 4.9 failure
// semantics).
func fallbackGeometry(coords []models.Coordinate, mode models.TransportMode) (string, float64, []float64, error) {
	var total float64
	legs := make([]float64, 0, len(coords)-1)
	for i := 1; i < len(coords); i++ {
		d := geo.HaversineMeters(coords[i-1], coords[i])
		legs = append(legs, d)
		total += d
	}
	_ = mode
	return "", total, legs, nil
}

func (c *Client) get(ctx context.Context, url string, dest interface{}) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, fmt.Errorf("routing backend returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, err
	}
	return resp.StatusCode, json.Unmarshal(body, dest)
}
