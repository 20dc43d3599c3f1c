package geocoder

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/exotic-travel-booking/backend/internal/cache"
	"github.com/exotic-travel-booking/backend/internal/httpclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGeocoder(t *testing.T, handler http.HandlerFunc) (*Geocoder, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	pool := httpclient.NewPool()
	pool.Register(clientName, httpclient.DefaultClientConfig())
	c := cache.New(nil)
	g := New(pool, c, Config{PrimaryBaseURL: srv.URL, UserAgent: "test-agent"})
	return g, srv
}

func parisResult() nominatimResult {
	return nominatimResult{
		Lat:         "48.8566",
		Lon:         "2.3522",
		DisplayName: "Paris, Ile-de-France, France",
		BoundingBox: []string{"48.80", "48.91", "2.22", "2.47"},
	}
}

func TestResolveCitySucceedsAndCaches(t *testing.T) {
	calls := 0
	g, srv := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		r.Body.Close()
		result := parisResult()
		result.Address.CountryCode = "fr"
		json.NewEncoder(w).Encode([]nominatimResult{result})
	})
	defer srv.Close()

	info, err := g.ResolveCity(context.Background(), "Paris")
	require.NoError(t, err)
	assert.InDelta(t, 48.8566, info.Center.Lat, 1e-4)
	assert.Equal(t, "FR", info.CountryCode)

	_, err = g.ResolveCity(context.Background(), "Paris")
	require.NoError(t, err)
	assert.Equal(t, 1, calls, "second call should be served from cache")
}

func TestResolvePOIViewboxSearch(t *testing.T) {
	g, srv := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		result := nominatimResult{Lat: "48.8584", Lon: "2.2945"}
		json.NewEncoder(w).Encode([]nominatimResult{result})
	})
	defer srv.Close()

	coord, err := g.ResolvePOI(context.Background(), "Eiffel Tower", "Paris")
	require.NoError(t, err)
	assert.InDelta(t, 48.8584, coord.Lat, 1e-4)
}

func TestDistanceAndCountrySearchRejectsFarAwayResult(t *testing.T) {
	g, srv := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		bounded := r.URL.Query().Get("bounded")
		switch {
		case q == "Paris":
			// city resolution
			json.NewEncoder(w).Encode([]nominatimResult{parisResult()})
		case bounded == "1":
			// viewbox search finds nothing
			json.NewEncoder(w).Encode([]nominatimResult{})
		default:
			// free-text search returns a result far from Paris (e.g. in London)
			json.NewEncoder(w).Encode([]nominatimResult{{Lat: "51.5074", Lon: "-0.1278"}})
		}
	})
	defer srv.Close()

	_, err := g.ResolvePOI(context.Background(), "Some Tower", "Paris")
	assert.Error(t, err)
}

func TestBatchGeocodePartialFailure(t *testing.T) {
	g, srv := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		if strings.Contains(q, "bad") {
			json.NewEncoder(w).Encode([]nominatimResult{})
			return
		}
		json.NewEncoder(w).Encode([]nominatimResult{parisResult()})
	})
	defer srv.Close()

	results := g.BatchGeocode(context.Background(), []string{"good query", "bad query"}, 2*time.Second)
	require.Len(t, results, 2)
	assert.NotNil(t, results[0].Coord)
	assert.Nil(t, results[1].Coord)
	assert.Error(t, results[1].Err)
}

func TestGeocodeNoBackendConfigured(t *testing.T) {
	pool := httpclient.NewPool()
	c := cache.New(nil)
	g := New(pool, c, Config{})
	_, err := g.Geocode(context.Background(), "anywhere")
	assert.Error(t, err)
}
