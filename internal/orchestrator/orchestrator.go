// Package orchestrator assembles the full itinerary pipeline described in
// spec.md 4.9 on top of every other service package: LLM reasoning,
// geocoding, spatial tag queries, image enrichment, route optimization,
// and day partitioning.
package orchestrator

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/exotic-travel-booking/backend/internal/apperr"
	"github.com/exotic-travel-booking/backend/internal/cache"
	"github.com/exotic-travel-booking/backend/internal/days"
	"github.com/exotic-travel-booking/backend/internal/geo"
	"github.com/exotic-travel-booking/backend/internal/geocoder"
	"github.com/exotic-travel-booking/backend/internal/images"
	"github.com/exotic-travel-booking/backend/internal/llmreasoning"
	"github.com/exotic-travel-booking/backend/internal/models"
	"github.com/exotic-travel-booking/backend/internal/route"
	"github.com/exotic-travel-booking/backend/internal/spatial"
)

const (
	maxCityRadiusKm  = 30.0
	imagesPerPOI     = 3
	spatialQueryMult = 2 // request roughly 2x the truncate cap from the spatial arm
)

// Orchestrator wires every service singleton together into the four
// operations spec.md 4.9 exposes.
type Orchestrator struct {
	llm          llmreasoning.Provider
	geocoder     *geocoder.Geocoder
	spatial      *spatial.Client
	images       *images.Enricher
	optimizer    *route.Optimizer
	partitioner  *days.Partitioner
	cache        *cache.Cache
	discoveryTTL time.Duration
	placeTTL     time.Duration
}

// Deps bundles every collaborator the orchestrator needs.
type Deps struct {
	LLM          llmreasoning.Provider
	Geocoder     *geocoder.Geocoder
	Spatial      *spatial.Client
	Images       *images.Enricher
	Optimizer    *route.Optimizer
	Partitioner  *days.Partitioner
	Cache        *cache.Cache
	DiscoveryTTL time.Duration
	PlaceTTL     time.Duration
}

// New builds an Orchestrator.
func New(d Deps) *Orchestrator {
	if d.DiscoveryTTL == 0 {
		d.DiscoveryTTL = cache.DefaultDiscoveryTTL
	}
	if d.PlaceTTL == 0 {
		d.PlaceTTL = cache.DefaultDiscoveryTTL
	}
	return &Orchestrator{
		llm:          d.LLM,
		geocoder:     d.Geocoder,
		spatial:      d.Spatial,
		images:       d.Images,
		optimizer:    d.Optimizer,
		partitioner:  d.Partitioner,
		cache:        d.Cache,
		discoveryTTL: d.DiscoveryTTL,
		placeTTL:     d.PlaceTTL,
	}
}

// CreateItineraryRequest is the input to CreateItinerary (spec 4.9).
type CreateItineraryRequest struct {
	Location            string
	TransportMode       models.TransportMode
	Interests           []string
	TimeAvailable       models.TimeConstraint
	StartingLocation    string
	StartingCoordinates *models.Coordinate
}

// CreateItinerary runs the full pipeline: interpret input, resolve a
// starting point, fan out to the LLM and/or spatial paths, merge and rank
// candidates, enrich with images, optimize the tour, and (for multi-day
// trips) partition into days.
func (o *Orchestrator) CreateItinerary(ctx context.Context, req CreateItineraryRequest) (*models.Itinerary, error) {
	mode := req.TransportMode
	if mode == "" {
		mode = models.TransportWalking
	}
	tc := req.TimeAvailable
	if tc == "" {
		tc = models.TimeOneDay
	}

	city := sanitizeLocation(req.Location)
	if structured, err := o.llm.InterpretUserInput(ctx, req.Location, strings.Join(req.Interests, ",")); err == nil && structured.City != "" {
		city = structured.City
	}

	cityInfo, err := o.geocoder.ResolveCity(ctx, city)
	if err != nil {
		return nil, apperr.InvalidInput(fmt.Sprintf("could not resolve location %q: %v", req.Location, err))
	}

	var warnings []string

	startingPoint, isRoundTrip, startWarning := o.resolveStartingPoint(ctx, req, cityInfo)
	if startWarning != "" {
		warnings = append(warnings, startWarning)
	}

	llmPreferred, spatialPreferred := classifyInterests(req.Interests)

	pois, armWarnings := o.fanOut(ctx, cityInfo, req.Interests, mode, tc, llmPreferred, spatialPreferred)
	warnings = append(warnings, armWarnings...)

	if len(pois) == 0 {
		return nil, apperr.InvalidInput("no points of interest could be found for this request")
	}

	pois = dedupeByName(pois)
	pois = o.truncateAndRank(ctx, pois, req.Interests, tc)

	o.enrichImages(ctx, pois)

	routeResult, err := o.optimizer.CreateOptimizedRoute(ctx, pois, route.Options{
		Mode:           mode,
		TimeConstraint: &tc,
		StartingPoint:  startingPoint,
		IsRoundTrip:    isRoundTrip,
	})
	if err != nil {
		warnings = append(warnings, "routing backend unavailable; route distances are estimated")
		routeResult = &models.Route{OrderedPOIs: pois, TransportMode: mode}
	}

	itinerary := &models.Itinerary{
		ID:               uuid.NewString(),
		City:             cityInfo.Name,
		POIs:             routeResult.OrderedPOIs,
		Route:            routeResult,
		CreatedAt:        time.Now(),
		TransportMode:    mode,
		TimeConstraint:   tc,
		Explanation:      buildExplanation(cityInfo.Name, len(routeResult.OrderedPOIs), req.Interests, tc),
		StartingLocation: req.StartingLocation,
		GoogleMapsURL:    buildGoogleMapsURL(routeResult.OrderedPOIs, startingPoint, isRoundTrip),
		TotalDays:        tc.DaysFor(),
		Warnings:         warnings,
	}

	if itinerary.TotalDays > 1 {
		itinerary.Days = o.partitioner.Partition(ctx, routeResult.OrderedPOIs, itinerary.TotalDays, true, mode)
		itinerary.TotalDays = len(itinerary.Days)
	}

	return itinerary, nil
}

func sanitizeLocation(location string) string {
	return strings.TrimSpace(location)
}

// resolveStartingPoint honors explicit coordinates first, then a starting
// address, then falls back to no starting point (spec 4.9). Explicit
// coordinates imply the traveler returns to where they started; a named
// starting address implies a one-way walk from that point (resolved open
// question: the spec leaves the round-trip trigger implicit).
func (o *Orchestrator) resolveStartingPoint(ctx context.Context, req CreateItineraryRequest, cityInfo *models.CityInfo) (*models.Coordinate, bool, string) {
	if req.StartingCoordinates != nil && req.StartingCoordinates.Valid() {
		return req.StartingCoordinates, true, ""
	}
	if req.StartingLocation != "" {
		coord, err := o.geocoder.Geocode(ctx, req.StartingLocation+" "+cityInfo.Name)
		if err != nil || coord == nil {
			return nil, false, fmt.Sprintf("could not resolve starting location %q; proceeding without one", req.StartingLocation)
		}
		return coord, false, ""
	}
	return nil, false, ""
}

// fanOut runs the LLM and/or spatial discovery arms concurrently and
// returns every POI either arm produced, LLM-path results first. A single
// failed arm only contributes a warning; the pipeline proceeds on whichever
// arm(s) succeeded (spec 4.9 failure semantics).
func (o *Orchestrator) fanOut(ctx context.Context, cityInfo *models.CityInfo, interests []string, mode models.TransportMode, tc models.TimeConstraint, llmPreferred, spatialPreferred bool) ([]models.POI, []string) {
	var wg sync.WaitGroup
	var mu sync.Mutex
	var llmResults, spatialResults []models.POI
	var warnings []string

	addWarning := func(msg string) {
		mu.Lock()
		warnings = append(warnings, msg)
		mu.Unlock()
	}

	if llmPreferred {
		wg.Add(1)
		go func() {
			defer wg.Done()
			llmPOIs, err := o.llmPath(ctx, cityInfo, interests, mode, tc)
			if err != nil {
				addWarning("landmark suggestions unavailable; continuing with spatial results only")
				return
			}
			mu.Lock()
			llmResults = llmPOIs
			mu.Unlock()
		}()
	}

	if spatialPreferred {
		wg.Add(1)
		go func() {
			defer wg.Done()
			spatialPOIs, err := o.spatialPath(ctx, cityInfo, interests, tc)
			if err != nil {
				addWarning("spatial venue search unavailable; continuing with landmark results only")
				return
			}
			mu.Lock()
			spatialResults = spatialPOIs
			mu.Unlock()
		}()
	}

	wg.Wait()
	return append(llmResults, spatialResults...), warnings
}

func (o *Orchestrator) llmPath(ctx context.Context, cityInfo *models.CityInfo, interests []string, mode models.TransportMode, tc models.TimeConstraint) ([]models.POI, error) {
	ctx = llmreasoning.WithCityCenter(ctx, cityInfo.Center)

	suggestions, err := o.llm.SuggestLandmarks(ctx, cityInfo.Name, interests, mode, tc)
	if err != nil {
		return nil, err
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
	return pois, nil
}

func (o *Orchestrator) spatialPath(ctx context.Context, cityInfo *models.CityInfo, interests []string, tc models.TimeConstraint) ([]models.POI, error) {
	bbox := geo.BBox{South: cityInfo.BBoxSouth, West: cityInfo.BBoxWest, North: cityInfo.BBoxNorth, East: cityInfo.BBoxEast}
	features, err := o.spatial.Query(ctx, bbox, interests, tc.TruncateCap()*spatialQueryMult)
	if err != nil {
		return nil, err
	}

	pois := make([]models.POI, 0, len(features))
	for _, f := range features {
		coord := models.Coordinate{Lat: f.Lat, Lng: f.Lng}
		if !coord.Valid() {
			continue
		}
		pois = append(pois, models.POI{
			PlaceID:     placeID(spatialPlaceIDPrefix, f.Name, coord),
			Name:        f.Name,
			Coordinates: coord,
			Confidence:  spatial.Notability(f.Tags),
			Types:       []string{primaryOSMType(f.Tags)},
		})
	}
	return pois, nil
}

func landmarkToPOI(s models.LandmarkSuggestion, coord models.Coordinate) models.POI {
	var visitMinutes *int
	if s.EstimatedVisitHours > 0 {
		m := int(s.EstimatedVisitHours * 60)
		visitMinutes = &m
	}
	return models.POI{
		PlaceID:              placeID(geoPlaceIDPrefix, s.Name, coord),
		Name:                 s.Name,
		Coordinates:          coord,
		Confidence:           0.8,
		Types:                []string{s.Category},
		VisitDurationMinutes: visitMinutes,
		WhyVisit:             s.Rationale,
		Admission:            s.Admission,
		AdmissionURL:         s.AdmissionURL,
	}
}

// withinCity reports whether coord lies inside the city's bounding box
// (padded 0.05 degrees) and within maxCityRadiusKm of its center. Every
// geocoded POI (LLM-suggested or name-looked-up) must pass this before
// being accepted, or a hallucinated or misresolved name could smuggle in
// coordinates nowhere near the requested city (spec 4.9's locality guard).
func withinCity(cityInfo *models.CityInfo, coord models.Coordinate) bool {
	bbox := geo.BBox{South: cityInfo.BBoxSouth, West: cityInfo.BBoxWest, North: cityInfo.BBoxNorth, East: cityInfo.BBoxEast}.Pad(0.05)
	if !bbox.Contains(coord) {
		return false
	}
	return geo.HaversineKm(cityInfo.Center, coord) <= maxCityRadiusKm
}

func primaryOSMType(tags map[string]string) string {
	for _, key := range []string{"amenity", "tourism", "historic", "leisure", "building", "man_made", "shop"} {
		if v, ok := tags[key]; ok && v != "" {
			return v
		}
	}
	return "attraction"
}

// dedupeByName drops POIs sharing a case-insensitive name, keeping the
// first occurrence (LLM-path results precede spatial-path results per the
// caller's append order, matching spec 5's ordering guarantee).
func dedupeByName(pois []models.POI) []models.POI {
	seen := make(map[string]bool, len(pois))
	out := make([]models.POI, 0, len(pois))
	for _, p := range pois {
		key := p.NameKey()
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, p)
	}
	return out
}

// truncateAndRank cuts the candidate set to the time constraint's cap. If
// the set had to be cut, it asks the LLM to rank by relevance first so the
// truncation keeps the most relevant POIs rather than an arbitrary prefix
// (spec 4.9: "if still over, rank by relevance and truncate").
func (o *Orchestrator) truncateAndRank(ctx context.Context, pois []models.POI, interests []string, tc models.TimeConstraint) []models.POI {
	truncateCap := tc.TruncateCap()
	if len(pois) <= truncateCap {
		return pois
	}

	ranked, err := o.llm.RankPOIs(ctx, pois, interests)
	if err != nil || len(ranked) == 0 {
		return pois[:truncateCap]
	}

	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })
	out := make([]models.POI, 0, truncateCap)
	for _, r := range ranked {
		if r.Index < 0 || r.Index >= len(pois) {
			continue
		}
		out = append(out, pois[r.Index])
		if len(out) >= truncateCap {
			break
		}
	}
	if len(out) == 0 {
		return pois[:truncateCap]
	}
	return out
}

// enrichImages fetches images for every non-food POI concurrently,
// best-effort (spec 4.9/4.6).
func (o *Orchestrator) enrichImages(ctx context.Context, pois []models.POI) {
	var wg sync.WaitGroup
	for i := range pois {
		if isFoodCategory(pois[i].PrimaryType()) {
			continue
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			pois[i].Images = o.images.ImagesFor(ctx, pois[i].Name, "", imagesPerPOI)
		}(i)
	}
	wg.Wait()
}
