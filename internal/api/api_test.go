package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exotic-travel-booking/backend/internal/apperr"
	"github.com/exotic-travel-booking/backend/internal/cache"
	"github.com/exotic-travel-booking/backend/internal/days"
	"github.com/exotic-travel-booking/backend/internal/geocoder"
	"github.com/exotic-travel-booking/backend/internal/httpclient"
	"github.com/exotic-travel-booking/backend/internal/images"
	"github.com/exotic-travel-booking/backend/internal/llmreasoning"
	"github.com/exotic-travel-booking/backend/internal/models"
	"github.com/exotic-travel-booking/backend/internal/orchestrator"
	"github.com/exotic-travel-booking/backend/internal/route"
	"github.com/exotic-travel-booking/backend/internal/routing"
)

type fakeProvider struct {
	landmarks []models.LandmarkSuggestion
}

func (f *fakeProvider) InterpretUserInput(ctx context.Context, location, interests string) (*models.StructuredQuery, error) {
	return &models.StructuredQuery{City: location}, nil
}

func (f *fakeProvider) SuggestLandmarks(ctx context.Context, city string, interests []string, mode models.TransportMode, tc models.TimeConstraint) ([]models.LandmarkSuggestion, error) {
	return f.landmarks, nil
}

func (f *fakeProvider) RankPOIs(ctx context.Context, pois []models.POI, interests []string) ([]models.RankedPOI, error) {
	return nil, nil
}

func (f *fakeProvider) SuggestFoodAndDrinks(ctx context.Context, city string, category llmreasoning.Category, limit int) ([]models.LandmarkSuggestion, error) {
	return nil, nil
}

func (f *fakeProvider) Name() string { return "fake" }

func nominatimServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{
			"lat": "48.8584",
			"lon": "2.2945",
			"display_name": "Eiffel Tower, Paris, France",
			"address": {"country_code": "fr"},
			"boundingbox": ["48.80", "48.91", "2.22", "2.47"]
		}]`)
	}))
}

func testRouter(t *testing.T) (http.Handler, *httptest.Server) {
	t.Helper()
	geo := nominatimServer(t)

	pool := httpclient.NewPool()
	pool.Register("geocoder", httpclient.DefaultClientConfig())
	pool.Register("images", httpclient.ClientConfig{Timeout: 20 * time.Millisecond})

	c := cache.New(nil)
	geocoderClient := geocoder.New(pool, c, geocoder.Config{PrimaryBaseURL: geo.URL, UserAgent: "test"})
	imagesClient := images.New(pool)
	routingClient := routing.New(pool, routing.Config{BaseURL: "http://127.0.0.1:1"})

	llm := &fakeProvider{landmarks: []models.LandmarkSuggestion{
		{Name: "Eiffel Tower", Category: "landmark", EstimatedVisitHours: 2},
	}}

	o := orchestrator.New(orchestrator.Deps{
		LLM:         llm,
		Geocoder:    geocoderClient,
		Images:      imagesClient,
		Optimizer:   route.New(routingClient),
		Partitioner: days.New(routingClient),
		Cache:       c,
	})

	return NewRouter(o, Config{RequestTimeout: 5 * time.Second}), geo
}

func TestHealthEndpoint(t *testing.T) {
	handler, srv := testRouter(t)
	defer srv.Close()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
}

func TestCreateItineraryEndToEnd(t *testing.T) {
	handler, srv := testRouter(t)
	defer srv.Close()

	body, _ := json.Marshal(createItineraryRequest{
		Location:      "Paris",
		TransportMode: models.TransportWalking,
		Interests:     []string{"landmarks"},
		TimeAvailable: models.TimeOneDay,
	})

	req := httptest.NewRequest(http.MethodPost, "/api/itinerary", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
}

func TestCreateItineraryRejectsMissingLocation(t *testing.T) {
	handler, srv := testRouter(t)
	defer srv.Close()

	body, _ := json.Marshal(createItineraryRequest{})
	req := httptest.NewRequest(http.MethodPost, "/api/itinerary", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, string(apperr.CodeValidationError), resp.Code)
}

func TestDiscoverFoodRejectsUnknownCategory(t *testing.T) {
	handler, srv := testRouter(t)
	defer srv.Close()

	body, _ := json.Marshal(discoverFoodRequest{City: "Paris", Category: "nonsense"})
	req := httptest.NewRequest(http.MethodPost, "/api/discover/food", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetPlaceDetailsMissingReturnsInvalidInput(t *testing.T) {
	handler, srv := testRouter(t)
	defer srv.Close()

	req := httptest.NewRequest(http.MethodGet, "/api/places/does-not-exist?city=Paris", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
