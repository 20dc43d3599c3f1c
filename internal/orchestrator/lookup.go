package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/exotic-travel-booking/backend/internal/apperr"
	"github.com/exotic-travel-booking/backend/internal/cache"
	"github.com/exotic-travel-booking/backend/internal/geocoder"
	"github.com/exotic-travel-booking/backend/internal/llmreasoning"
	"github.com/exotic-travel-booking/backend/internal/models"
)

// These methods are not part of the four spec.md 4.9 operations; they back
// the lighter HTTP endpoints (geocode, geocode/batch, pois/lookup,
// discover/food, city/center) that sit directly on top of a single
// collaborator rather than the full fan-out pipeline.

const batchGeocodeTimeout = 8 * time.Second

// DiscoverFoodRequest is the input to DiscoverFood.
type DiscoverFoodRequest struct {
	City     string
	Category llmreasoning.Category
	Limit    int
}

// DiscoverFood mirrors Discover but targets a single food-and-drink
// category, cached under the food-discovery key family (spec 3).
func (o *Orchestrator) DiscoverFood(ctx context.Context, req DiscoverFoodRequest) ([]models.POI, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultDiscoverLimit
	}

	key := cache.FoodDiscoveryKey(req.City, string(req.Category), limit)
	var cached []models.POI
	if o.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	cityInfo, err := o.geocoder.ResolveCity(ctx, req.City)
	if err != nil {
		return nil, apperr.InvalidInput(fmt.Sprintf("could not resolve location %q: %v", req.City, err))
	}

	suggestions, err := o.llm.SuggestFoodAndDrinks(llmreasoning.WithCityCenter(ctx, cityInfo.Center), cityInfo.Name, req.Category, limit)
	if err != nil {
		return nil, apperr.InvalidInput(fmt.Sprintf("no %s could be found for %q", req.Category, req.City))
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
		return nil, apperr.InvalidInput(fmt.Sprintf("no %s could be found for %q", req.Category, req.City))
	}

	var wg2 sync.WaitGroup
	for i := range pois {
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

// Geocode resolves a single free-text query to a coordinate.
func (o *Orchestrator) Geocode(ctx context.Context, query string) (*models.Coordinate, error) {
	coord, err := o.geocoder.Geocode(ctx, query)
	if err != nil {
		return nil, apperr.InvalidInput(fmt.Sprintf("could not geocode %q: %v", query, err))
	}
	return coord, nil
}

// BatchGeocode resolves many free-text queries concurrently; a per-item
// failure is carried in that item's result rather than failing the batch.
func (o *Orchestrator) BatchGeocode(ctx context.Context, queries []string) []geocoder.BatchResult {
	return o.geocoder.BatchGeocode(ctx, queries, batchGeocodeTimeout)
}

// CityCenter resolves a city name to its center coordinate and bounding
// box.
func (o *Orchestrator) CityCenter(ctx context.Context, city string) (*models.CityInfo, error) {
	info, err := o.geocoder.ResolveCity(ctx, city)
	if err != nil {
		return nil, apperr.InvalidInput(fmt.Sprintf("could not resolve location %q: %v", city, err))
	}
	return info, nil
}

// LookupPOIs lifts a bare name list into enriched, geocoded, cached POIs
// for a city (spec 6 "/pois/lookup"). Names that fail to geocode are
// dropped rather than failing the whole request.
func (o *Orchestrator) LookupPOIs(ctx context.Context, city string, names []string) ([]models.POI, error) {
	cityInfo, err := o.geocoder.ResolveCity(ctx, city)
	if err != nil {
		return nil, apperr.InvalidInput(fmt.Sprintf("could not resolve location %q: %v", city, err))
	}

	type result struct {
		poi models.POI
		ok  bool
	}
	results := make([]result, len(names))
	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			coord, err := o.geocoder.ResolvePOI(ctx, name, cityInfo.Name)
			if err != nil || coord == nil || !withinCity(cityInfo, *coord) {
				return
			}
			results[i] = result{poi: models.POI{
				PlaceID:     placeID(geoPlaceIDPrefix, name, *coord),
				Name:        name,
				Coordinates: *coord,
				Confidence:  0.6,
			}, ok: true}
		}(i, name)
	}
	wg.Wait()

	pois := make([]models.POI, 0, len(results))
	for _, r := range results {
		if r.ok {
			pois = append(pois, r.poi)
		}
	}
	if len(pois) == 0 {
		return nil, apperr.InvalidInput("none of the requested names could be resolved")
	}

	o.enrichImages(ctx, pois)
	o.cacheIndividually(ctx, cityInfo.Name, pois)
	return pois, nil
}
