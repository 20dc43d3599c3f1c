// Package geocoder resolves place names to coordinates with strict
// distance and country validation, guarding against LLM hallucination of
// places that do not exist where the model claims (spec.md 4.4).
package geocoder

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/exotic-travel-booking/backend/internal/cache"
	"github.com/exotic-travel-booking/backend/internal/geo"
	"github.com/exotic-travel-booking/backend/internal/httpclient"
	"github.com/exotic-travel-booking/backend/internal/models"
)

const (
	maxCityDistanceKm = 25.0
	viewboxPadDeg     = 0.3
	clientName        = "geocoder"
)

// nominatimResult is the shape returned by Nominatim-compatible free
// geocoders; every backend this package targets (primary and secondary)
// speaks this format.
type nominatimResult struct {
	Lat         string   `json:"lat"`
	Lon         string   `json:"lon"`
	DisplayName string   `json:"display_name"`
	Class       string   `json:"class"`
	Type        string   `json:"type"`
	Address     struct {
		CountryCode string `json:"country_code"`
	} `json:"address"`
	BoundingBox []string `json:"boundingbox"`
}

// Geocoder resolves names to coordinates through a primary free geocoding
// API, with an optional secondary consulted in parallel for unspecialized
// lookups, and caches city resolutions.
type Geocoder struct {
	client       *http.Client
	limiter      *httpclient.Limiter
	primaryURL   string
	secondaryURL string
	cache        *cache.Cache
	userAgent    string
}

// Config configures the geocoder's backend endpoints and rate limiting.
type Config struct {
	PrimaryBaseURL   string
	SecondaryBaseURL string
	UserAgent        string
}

// New builds a Geocoder. The limiter enforces the spec's "semaphore of 3
// plus a ~350ms sleep on release" rate-limit discipline for the free
// geocoder (spec 5).
func New(pool *httpclient.Pool, c *cache.Cache, cfg Config) *Geocoder {
	return &Geocoder{
		client:       pool.Client(clientName),
		limiter:      httpclient.NewLimiter(3, 350*time.Millisecond, 0),
		primaryURL:   strings.TrimSuffix(cfg.PrimaryBaseURL, "/"),
		secondaryURL: strings.TrimSuffix(cfg.SecondaryBaseURL, "/"),
		cache:        c,
		userAgent:    cfg.UserAgent,
	}
}

// ResolveCity looks up a city's center, bounding box, and country code,
// cached by name (spec 4.4 step 1).
func (g *Geocoder) ResolveCity(ctx context.Context, city string) (*models.CityInfo, error) {
	key := "city:" + strings.ToLower(strings.TrimSpace(city))
	var cached models.CityInfo
	if g.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	results, err := g.query(ctx, g.primaryURL, url.Values{
		"q":              {city},
		"format":         {"json"},
		"addressdetails": {"1"},
		"limit":          {"1"},
	})
	if err != nil {
		return nil, fmt.Errorf("resolving city %q: %w", city, err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("city %q not found", city)
	}

	r := results[0]
	info, err := toCityInfo(city, r)
	if err != nil {
		return nil, err
	}

	g.cache.Set(ctx, key, info, cache.DefaultDiscoveryTTL)
	return info, nil
}

// ResolvePOI finds coordinates for (name, city) using the strategy from
// spec 4.4: bounded viewbox search, then distance-and-country checked
// free-text search, then a display-name fallback.
func (g *Geocoder) ResolvePOI(ctx context.Context, name, city string) (*models.Coordinate, error) {
	cityInfo, err := g.ResolveCity(ctx, city)
	if err != nil {
		return nil, err
	}

	if coord, ok := g.viewboxSearch(ctx, name, cityInfo); ok {
		return coord, nil
	}

	if coord, ok := g.distanceAndCountrySearch(ctx, name, city, cityInfo); ok {
		return coord, nil
	}

	if coord, ok := g.displayNameFallback(ctx, name, city); ok {
		return coord, nil
	}

	return nil, fmt.Errorf("could not resolve %q in %q", name, city)
}

func (g *Geocoder) viewboxSearch(ctx context.Context, name string, cityInfo *models.CityInfo) (*models.Coordinate, bool) {
	box := geo.BBox{
		South: cityInfo.BBoxSouth, West: cityInfo.BBoxWest,
		North: cityInfo.BBoxNorth, East: cityInfo.BBoxEast,
	}.Pad(viewboxPadDeg)

	results, err := g.query(ctx, g.primaryURL, url.Values{
		"q":        {name},
		"format":   {"json"},
		"viewbox":  {fmt.Sprintf("%f,%f,%f,%f", box.West, box.North, box.East, box.South)},
		"bounded":  {"1"},
		"limit":    {"1"},
	})
	if err != nil || len(results) == 0 {
		return nil, false
	}
	coord, err := parseCoordinate(results[0])
	if err != nil {
		return nil, false
	}
	return coord, true
}

func (g *Geocoder) distanceAndCountrySearch(ctx context.Context, name, city string, cityInfo *models.CityInfo) (*models.Coordinate, bool) {
	queries := []string{
		fmt.Sprintf("%s, %s", name, city),
	}
	if cityInfo.CountryCode != "" {
		queries = append(queries, fmt.Sprintf("%s, %s, %s", name, city, cityInfo.CountryCode))
	}

	for _, q := range queries {
		results, err := g.query(ctx, g.primaryURL, url.Values{
			"q":              {q},
			"format":         {"json"},
			"addressdetails": {"1"},
			"limit":          {"1"},
		})
		if err != nil || len(results) == 0 {
			continue
		}
		r := results[0]
		coord, err := parseCoordinate(r)
		if err != nil {
			continue
		}
		if geo.HaversineKm(*coord, cityInfo.Center) > maxCityDistanceKm {
			continue
		}
		if cityInfo.CountryCode != "" && r.Address.CountryCode != "" &&
			!strings.EqualFold(r.Address.CountryCode, cityInfo.CountryCode) {
			continue
		}
		return coord, true
	}
	return nil, false
}

func (g *Geocoder) displayNameFallback(ctx context.Context, name, city string) (*models.Coordinate, bool) {
	results, err := g.query(ctx, g.primaryURL, url.Values{
		"q":      {fmt.Sprintf("%s, %s", name, city)},
		"format": {"json"},
		"limit":  {"1"},
	})
	if err != nil || len(results) == 0 {
		return nil, false
	}
	r := results[0]
	if !strings.Contains(strings.ToLower(r.DisplayName), strings.ToLower(city)) {
		return nil, false
	}
	coord, err := parseCoordinate(r)
	if err != nil {
		return nil, false
	}
	return coord, true
}

// Geocode is the public, unspecialized lookup used from the orchestrator's
// /geocode endpoint. When a secondary geocoder is configured, both are
// queried in parallel and the first valid result wins (spec 4.4).
func (g *Geocoder) Geocode(ctx context.Context, query string) (*models.Coordinate, error) {
	type result struct {
		coord *models.Coordinate
		err   error
	}

	urls := []string{g.primaryURL}
	if g.secondaryURL != "" {
		urls = append(urls, g.secondaryURL)
	}

	resultCh := make(chan result, len(urls))
	for _, base := range urls {
		go func(base string) {
			results, err := g.query(ctx, base, url.Values{
				"q": {query}, "format": {"json"}, "limit": {"1"},
			})
			if err != nil {
				resultCh <- result{err: err}
				return
			}
			if len(results) == 0 {
				resultCh <- result{err: fmt.Errorf("no results")}
				return
			}
			coord, err := parseCoordinate(results[0])
			resultCh <- result{coord: coord, err: err}
		}(base)
	}

	var lastErr error
	for range urls {
		r := <-resultCh
		if r.err == nil && r.coord != nil {
			return r.coord, nil
		}
		lastErr = r.err
	}
	return nil, fmt.Errorf("geocoding %q failed: %w", query, lastErr)
}

// BatchResult is one item of a batch geocode, carrying a nil Coordinate on
// per-item failure rather than aborting the whole batch (spec 4.4).
type BatchResult struct {
	Query string
	Coord *models.Coordinate
	Err   error
}

// BatchGeocode resolves every query concurrently with a per-item timeout.
func (g *Geocoder) BatchGeocode(ctx context.Context, queries []string, perItemTimeout time.Duration) []BatchResult {
	out := make([]BatchResult, len(queries))
	done := make(chan int, len(queries))

	for i, q := range queries {
		go func(i int, q string) {
			itemCtx, cancel := context.WithTimeout(ctx, perItemTimeout)
			defer cancel()
			coord, err := g.Geocode(itemCtx, q)
			out[i] = BatchResult{Query: q, Coord: coord, Err: err}
			done <- i
		}(i, q)
	}
	for range queries {
		<-done
	}
	return out
}

func (g *Geocoder) query(ctx context.Context, baseURL string, params url.Values) ([]nominatimResult, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("no geocoder backend configured")
	}
	if err := g.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer g.limiter.Release()

	fullURL := baseURL + "?" + params.Encode()
	var results []nominatimResult
	err := httpclient.DoWithRetry(ctx, 200*time.Millisecond, func() (int, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return 0, err
		}
		if g.userAgent != "" {
			req.Header.Set("User-Agent", g.userAgent)
		}
		resp, err := g.client.Do(req)
		if err != nil {
			return 0, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return resp.StatusCode, fmt.Errorf("geocoder returned status %d", resp.StatusCode)
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return resp.StatusCode, err
		}
		return resp.StatusCode, json.Unmarshal(body, &results)
	})
	return results, err
}

func parseCoordinate(r nominatimResult) (*models.Coordinate, error) {
	var lat, lng float64
	if _, err := fmt.Sscanf(r.Lat, "%f", &lat); err != nil {
		return nil, fmt.Errorf("invalid lat %q: %w", r.Lat, err)
	}
	if _, err := fmt.Sscanf(r.Lon, "%f", &lng); err != nil {
		return nil, fmt.Errorf("invalid lon %q: %w", r.Lon, err)
	}
	c := models.Coordinate{Lat: lat, Lng: lng}
	if !c.Valid() {
		return nil, fmt.Errorf("coordinate out of range: %+v", c)
	}
	return &c, nil
}

func toCityInfo(requestedName string, r nominatimResult) (*models.CityInfo, error) {
	coord, err := parseCoordinate(r)
	if err != nil {
		return nil, err
	}

	info := &models.CityInfo{
		Name:        requestedName,
		Center:      *coord,
		CountryCode: strings.ToUpper(r.Address.CountryCode),
	}
	if len(r.BoundingBox) == 4 {
		fmt.Sscanf(r.BoundingBox[0], "%f", &info.BBoxSouth)
		fmt.Sscanf(r.BoundingBox[1], "%f", &info.BBoxNorth)
		fmt.Sscanf(r.BoundingBox[2], "%f", &info.BBoxWest)
		fmt.Sscanf(r.BoundingBox[3], "%f", &info.BBoxEast)
	} else {
		box := geo.BBox{South: coord.Lat, West: coord.Lng, North: coord.Lat, East: coord.Lng}.Pad(0.1)
		info.BBoxSouth, info.BBoxWest, info.BBoxNorth, info.BBoxEast = box.South, box.West, box.North, box.East
	}
	return info, nil
}
