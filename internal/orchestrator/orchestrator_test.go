package orchestrator

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exotic-travel-booking/backend/internal/cache"
	"github.com/exotic-travel-booking/backend/internal/days"
	"github.com/exotic-travel-booking/backend/internal/geocoder"
	"github.com/exotic-travel-booking/backend/internal/httpclient"
	"github.com/exotic-travel-booking/backend/internal/images"
	"github.com/exotic-travel-booking/backend/internal/llmreasoning"
	"github.com/exotic-travel-booking/backend/internal/models"
	"github.com/exotic-travel-booking/backend/internal/route"
	"github.com/exotic-travel-booking/backend/internal/routing"
)

// fakeProvider is a hand-rolled llmreasoning.Provider for tests; no mocking
// framework is in play here, matching the teacher's plain struct fakes.
type fakeProvider struct {
	landmarks    []models.LandmarkSuggestion
	landmarksErr error
	ranked       []models.RankedPOI
}

func (f *fakeProvider) InterpretUserInput(ctx context.Context, location, interests string) (*models.StructuredQuery, error) {
	return &models.StructuredQuery{City: location}, nil
}

func (f *fakeProvider) SuggestLandmarks(ctx context.Context, city string, interests []string, mode models.TransportMode, tc models.TimeConstraint) ([]models.LandmarkSuggestion, error) {
	return f.landmarks, f.landmarksErr
}

func (f *fakeProvider) RankPOIs(ctx context.Context, pois []models.POI, interests []string) ([]models.RankedPOI, error) {
	return f.ranked, nil
}

func (f *fakeProvider) SuggestFoodAndDrinks(ctx context.Context, city string, category llmreasoning.Category, limit int) ([]models.LandmarkSuggestion, error) {
	return nil, nil
}

func (f *fakeProvider) Name() string { return "fake" }

// nominatimServer answers every Nominatim-shaped query with a single result
// near Paris, which is enough to drive ResolveCity/ResolvePOI/Geocode for a
// pipeline test.
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

func testDeps(t *testing.T, llm *fakeProvider) (*Orchestrator, *httptest.Server) {
	t.Helper()
	geo := nominatimServer(t)

	pool := httpclient.NewPool()
	pool.Register("geocoder", httpclient.DefaultClientConfig())
	pool.Register("images", httpclient.ClientConfig{Timeout: 20 * time.Millisecond}) // forces fast image timeouts

	c := cache.New(nil)
	geocoderClient := geocoder.New(pool, c, geocoder.Config{PrimaryBaseURL: geo.URL, UserAgent: "test"})
	imagesClient := images.New(pool)

	routingClient := routing.New(pool, routing.Config{BaseURL: "http://127.0.0.1:1"})
	optimizer := route.New(routingClient)
	partitioner := days.New(routingClient)

	o := New(Deps{
		LLM:         llm,
		Geocoder:    geocoderClient,
		Images:      imagesClient,
		Optimizer:   optimizer,
		Partitioner: partitioner,
		Cache:       c,
	})
	return o, geo
}

func TestCreateItineraryLLMPathEndToEnd(t *testing.T) {
	llm := &fakeProvider{landmarks: []models.LandmarkSuggestion{
		{Name: "Eiffel Tower", Category: "landmark", EstimatedVisitHours: 2},
		{Name: "Louvre", Category: "museum", EstimatedVisitHours: 3},
	}}
	o, srv := testDeps(t, llm)
	defer srv.Close()

	itinerary, err := o.CreateItinerary(context.Background(), CreateItineraryRequest{
		Location:      "Paris",
		TransportMode: models.TransportWalking,
		Interests:     []string{"landmarks"},
		TimeAvailable: models.TimeOneDay,
	})

	require.NoError(t, err)
	require.NotNil(t, itinerary)
	assert.Len(t, itinerary.POIs, 2)
	assert.NotEmpty(t, itinerary.Explanation)
	assert.NotEmpty(t, itinerary.GoogleMapsURL)
	assert.Equal(t, 1, itinerary.TotalDays)
	assert.NotEmpty(t, itinerary.ID)
}

func TestCreateItineraryAllArmsFailReturnsInvalidInput(t *testing.T) {
	llm := &fakeProvider{landmarksErr: fmt.Errorf("boom")}
	o, srv := testDeps(t, llm)
	defer srv.Close()

	_, err := o.CreateItinerary(context.Background(), CreateItineraryRequest{
		Location:      "Nowhere",
		TransportMode: models.TransportWalking,
		Interests:     []string{"landmarks"},
		TimeAvailable: models.TimeOneDay,
	})

	require.Error(t, err)
}

// TestCreateItineraryLLMPathDropsOutOfCityGeocodeResults drives a Nominatim
// stand-in that resolves one landmark name to a coordinate across the
// English Channel from Paris. A bounded viewbox search doesn't validate the
// coordinate it returns, so without its own locality check the orchestrator
// would happily place a London POI into a Paris itinerary.
func TestCreateItineraryLLMPathDropsOutOfCityGeocodeResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		switch q {
		case "Paris":
			fmt.Fprint(w, `[{
				"lat": "48.8566", "lon": "2.3522",
				"display_name": "Paris, France",
				"address": {"country_code": "fr"},
				"boundingbox": ["48.80", "48.91", "2.22", "2.47"]
			}]`)
		case "Big Ben":
			fmt.Fprint(w, `[{"lat": "51.5007", "lon": "-0.1246", "display_name": "Big Ben, London"}]`)
		default:
			fmt.Fprint(w, `[{"lat": "48.8584", "lon": "2.2945", "display_name": "Eiffel Tower, Paris"}]`)
		}
	}))
	defer srv.Close()

	pool := httpclient.NewPool()
	pool.Register("geocoder", httpclient.DefaultClientConfig())
	pool.Register("images", httpclient.ClientConfig{Timeout: 20 * time.Millisecond})

	c := cache.New(nil)
	geocoderClient := geocoder.New(pool, c, geocoder.Config{PrimaryBaseURL: srv.URL, UserAgent: "test"})
	imagesClient := images.New(pool)
	routingClient := routing.New(pool, routing.Config{BaseURL: "http://127.0.0.1:1"})

	llm := &fakeProvider{landmarks: []models.LandmarkSuggestion{
		{Name: "Eiffel Tower", Category: "landmark", EstimatedVisitHours: 2},
		{Name: "Big Ben", Category: "landmark", EstimatedVisitHours: 2},
	}}
	o := New(Deps{
		LLM:         llm,
		Geocoder:    geocoderClient,
		Images:      imagesClient,
		Optimizer:   route.New(routingClient),
		Partitioner: days.New(routingClient),
		Cache:       c,
	})

	itinerary, err := o.CreateItinerary(context.Background(), CreateItineraryRequest{
		Location:      "Paris",
		TransportMode: models.TransportWalking,
		Interests:     []string{"landmarks"},
		TimeAvailable: models.TimeOneDay,
	})

	require.NoError(t, err)
	require.NotNil(t, itinerary)
	for _, p := range itinerary.POIs {
		assert.NotEqual(t, "Big Ben", p.Name, "out-of-city geocode result must not reach the itinerary")
	}
}

func TestCreateItineraryMultiDayPartitions(t *testing.T) {
	suggestions := make([]models.LandmarkSuggestion, 0, 12)
	for i := 0; i < 12; i++ {
		suggestions = append(suggestions, models.LandmarkSuggestion{Name: fmt.Sprintf("Place %d", i), Category: "landmark", EstimatedVisitHours: 1})
	}
	llm := &fakeProvider{landmarks: suggestions}
	o, srv := testDeps(t, llm)
	defer srv.Close()

	itinerary, err := o.CreateItinerary(context.Background(), CreateItineraryRequest{
		Location:      "Paris",
		TransportMode: models.TransportWalking,
		Interests:     []string{"landmarks"},
		TimeAvailable: models.TimeTwoDays,
	})

	require.NoError(t, err)
	require.NotNil(t, itinerary)
	assert.GreaterOrEqual(t, len(itinerary.Days), 1)
}

func TestDiscoverCachesResult(t *testing.T) {
	llm := &fakeProvider{landmarks: []models.LandmarkSuggestion{
		{Name: "Eiffel Tower", Category: "landmark", EstimatedVisitHours: 2},
	}}
	o, srv := testDeps(t, llm)
	defer srv.Close()

	ctx := context.Background()
	first, err := o.Discover(ctx, DiscoverRequest{City: "Paris", Limit: 10})
	require.NoError(t, err)
	require.NotEmpty(t, first)

	key := cache.DiscoveryKey("Paris", 10, nil)
	var cached []models.POI
	hit := o.cache.Get(ctx, key, &cached)
	assert.True(t, hit)
	assert.Len(t, cached, len(first))
}

func TestCreateRouteFromSelectionSkipsFetchesAndPartitions(t *testing.T) {
	routingClient := routing.New(httpclient.NewPool(), routing.Config{BaseURL: "http://127.0.0.1:1"})
	o := New(Deps{
		Optimizer:   route.New(routingClient),
		Partitioner: days.New(routingClient),
		Cache:       cache.New(nil),
	})

	pois := []models.POI{
		{Name: "A", Coordinates: models.Coordinate{Lat: 48.85, Lng: 2.35}},
		{Name: "B", Coordinates: models.Coordinate{Lat: 48.86, Lng: 2.34}},
		{Name: "C", Coordinates: models.Coordinate{Lat: 48.87, Lng: 2.33}},
		{Name: "D", Coordinates: models.Coordinate{Lat: 48.84, Lng: 2.36}},
		{Name: "E", Coordinates: models.Coordinate{Lat: 48.83, Lng: 2.37}},
		{Name: "F", Coordinates: models.Coordinate{Lat: 48.82, Lng: 2.38}},
	}

	itinerary, err := o.CreateRouteFromSelection(context.Background(), CreateRouteFromSelectionRequest{
		POIs:          pois,
		TransportMode: models.TransportWalking,
		NumDays:       2,
	})

	require.NoError(t, err)
	require.NotNil(t, itinerary)
	assert.Len(t, itinerary.Days, 2)
	total := 0
	for _, d := range itinerary.Days {
		total += len(d.POIs)
	}
	assert.Equal(t, len(pois), total)
}

func TestGetPlaceDetailsCacheHitAndMiss(t *testing.T) {
	o, srv := testDeps(t, &fakeProvider{})
	defer srv.Close()
	ctx := context.Background()

	_, err := o.GetPlaceDetails(ctx, "Paris", "missing")
	assert.Error(t, err)

	poi := models.POI{PlaceID: "abc", Name: "Eiffel Tower"}
	o.cache.Set(ctx, cache.PlaceKey("Paris", "abc"), poi, o.placeTTL)

	got, err := o.GetPlaceDetails(ctx, "Paris", "abc")
	require.NoError(t, err)
	assert.Equal(t, "Eiffel Tower", got.Name)
}
