package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/exotic-travel-booking/backend/internal/apperr"
	"github.com/exotic-travel-booking/backend/internal/cache"
	"github.com/exotic-travel-booking/backend/internal/llmreasoning"
	"github.com/exotic-travel-booking/backend/internal/models"
	"github.com/exotic-travel-booking/backend/internal/route"
)

const (
	defaultDiscoverLimit = 20
	perPOIImageTimeout   = 10 * time.Second
)

// DiscoverRequest is the input to Discover (spec 4.9).
type DiscoverRequest struct {
	City         string
	Interests    []string
	Limit        int
	IncludeFood  bool
}

// Discover returns up to Limit enriched POIs for a city without routing,
// cache-first (spec 4.9). It never fails on a cache miss; it falls through
// to the LLM landmark path and geocodes with a viewbox + 30 km radius
// filter.
func (o *Orchestrator) Discover(ctx context.Context, req DiscoverRequest) ([]models.POI, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultDiscoverLimit
	}

	key := cache.DiscoveryKey(req.City, limit, req.Interests)
	var cached []models.POI
	if o.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	cityInfo, err := o.geocoder.ResolveCity(ctx, req.City)
	if err != nil {
		return nil, apperr.InvalidInput(fmt.Sprintf("could not resolve location %q: %v", req.City, err))
	}

	suggestions, err := o.llm.SuggestLandmarks(llmreasoning.WithCityCenter(ctx, cityInfo.Center), cityInfo.Name, req.Interests, models.TransportWalking, models.TimeOneDay)
	if err != nil {
		return nil, apperr.InvalidInput(fmt.Sprintf("no points of interest could be found for %q", req.City))
	}

	type result struct {
		poi models.POI
		ok  bool
	}
	results := make([]result, len(suggestions))
	var wg sync.WaitGroup
	for i, s := range suggestions {
		wg.Add(1)
		go func(i int, s models.LandmarkSuggestion) {
			defer wg.Done()
			coord, err := o.geocoder.ResolvePOI(ctx, s.Name, cityInfo.Name)
			if err != nil || coord == nil || !withinCity(cityInfo, *coord) {
				return
			}
			results[i] = result{poi: landmarkToPOI(s, *coord), ok: true}
		}(i, s)
	}
	wg.Wait()

	pois := make([]models.POI, 0, len(results))
	for _, r := range results {
		if r.ok {
			pois = append(pois, r.poi)
		}
	}
	pois = dedupeByName(pois)
	if len(pois) > limit {
		pois = pois[:limit]
	}
	if len(pois) == 0 {
		return nil, apperr.InvalidInput(fmt.Sprintf("no points of interest could be found for %q", req.City))
	}

	var wg2 sync.WaitGroup
	for i := range pois {
		if !req.IncludeFood && isFoodCategory(pois[i].PrimaryType()) {
			continue
		}
		wg2.Add(1)
		go func(i int) {
			defer wg2.Done()
			imgCtx, cancel := context.WithTimeout(ctx, perPOIImageTimeout)
			defer cancel()
			pois[i].Images = o.images.ImagesFor(imgCtx, pois[i].Name, cityInfo.Name, imagesPerPOI)
		}(i)
	}
	wg2.Wait()

	o.cache.Set(ctx, key, pois, o.discoveryTTL)
	o.cacheIndividually(ctx, cityInfo.Name, pois)
	return pois, nil
}

// cacheIndividually stores each POI under its own place-lookup key so a
// later get_place_details call can find it without re-running discovery.
func (o *Orchestrator) cacheIndividually(ctx context.Context, city string, pois []models.POI) {
	for _, p := range pois {
		if p.PlaceID == "" {
			continue
		}
		o.cache.Set(ctx, cache.PlaceKey(city, p.PlaceID), p, o.placeTTL)
	}
}

// CreateRouteFromSelectionRequest is the input to CreateRouteFromSelection.
type CreateRouteFromSelectionRequest struct {
	POIs                []models.POI
	TransportMode       models.TransportMode
	NumDays             int
	StartingCoordinates *models.Coordinate
}

// CreateRouteFromSelection builds an itinerary from a caller-supplied POI
// set, skipping the LLM and spatial fetches but still tour-optimizing,
// partitioning, and retrieving polylines (spec 4.9).
func (o *Orchestrator) CreateRouteFromSelection(ctx context.Context, req CreateRouteFromSelectionRequest) (*models.Itinerary, error) {
	if len(req.POIs) == 0 {
		return nil, apperr.InvalidInput("no points of interest were provided")
	}

	mode := req.TransportMode
	if mode == "" {
		mode = models.TransportWalking
	}
	numDays := req.NumDays
	if numDays <= 0 {
		numDays = 1
	}

	isRoundTrip := req.StartingCoordinates != nil && req.StartingCoordinates.Valid()

	routeResult, err := o.optimizer.CreateOptimizedRoute(ctx, req.POIs, route.Options{
		Mode:          mode,
		StartingPoint: req.StartingCoordinates,
		IsRoundTrip:   isRoundTrip,
	})
	var warnings []string
	if err != nil {
		warnings = append(warnings, "routing backend unavailable; route distances are estimated")
		routeResult = &models.Route{OrderedPOIs: req.POIs, TransportMode: mode}
	}

	itinerary := &models.Itinerary{
		ID:            uuid.NewString(),
		City:          "",
		POIs:          routeResult.OrderedPOIs,
		Route:         routeResult,
		CreatedAt:     time.Now(),
		TransportMode: mode,
		GoogleMapsURL: buildGoogleMapsURL(routeResult.OrderedPOIs, req.StartingCoordinates, isRoundTrip),
		TotalDays:     numDays,
		Warnings:      warnings,
	}

	if numDays > 1 {
		itinerary.Days = o.partitioner.Partition(ctx, routeResult.OrderedPOIs, numDays, true, mode)
		itinerary.TotalDays = len(itinerary.Days)
	}

	return itinerary, nil
}

// GetPlaceDetails returns a cached, previously-discovered POI by place ID,
// keyed poi:{city}:{place_id} (spec 4.9).
func (o *Orchestrator) GetPlaceDetails(ctx context.Context, city, placeID string) (*models.POI, error) {
	key := cache.PlaceKey(city, placeID)
	var poi models.POI
	if o.cache.Get(ctx, key, &poi) {
		return &poi, nil
	}
	return nil, apperr.InvalidInput(fmt.Sprintf("no cached details for place %q in %q", placeID, city))
}
