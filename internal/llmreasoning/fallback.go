package llmreasoning

import (
	"context"
	"fmt"

	"github.com/exotic-travel-booking/backend/internal/geo"
	"github.com/exotic-travel-booking/backend/internal/models"
)

// region is one of the coarse geographic buckets the deterministic
// fallback classifies a city into, by latitude/longitude bounding box,
// when no LLM credentials are configured (spec 4.3.1).
type region struct {
	name    string
	bbox    geo.BBox
	themes  []string
	generic []string
}

// regions are checked in order; the first bbox containing the city center
// wins. The final entry has no bbox and matches anything left over.
var regions = []region{
	{
		name:    "western_europe",
		bbox:    geo.BBox{South: 36, West: -10, North: 60, East: 20},
		themes:  []string{"Old Town", "Cathedral", "Central Square", "Museum Quarter", "Riverside Promenade"},
		generic: []string{"History Museum", "Art Gallery", "Botanical Garden", "City Hall", "Central Market"},
	},
	{
		name:    "north_america",
		bbox:    geo.BBox{South: 14, West: -170, North: 72, East: -50},
		themes:  []string{"Downtown", "Waterfront Park", "Historic District", "Arts District", "Botanical Garden"},
		generic: []string{"City Museum", "Public Library", "Central Park", "Convention Center", "Farmers Market"},
	},
	{
		name:    "east_asia",
		bbox:    geo.BBox{South: 18, West: 100, North: 54, East: 150},
		themes:  []string{"Old Town", "Night Market", "Central Temple", "Riverside District", "Shopping Street"},
		generic: []string{"City Temple", "National Museum", "Central Park", "Old Quarter", "Night Market"},
	},
	{
		name:    "south_asia",
		bbox:    geo.BBox{South: 5, West: 60, North: 38, East: 100},
		themes:  []string{"Old City", "Fort", "Central Bazaar", "Riverside Ghats", "Temple District"},
		generic: []string{"City Fort", "National Museum", "Central Bazaar", "Botanical Garden", "Old City Gate"},
	},
	{
		name:    "south_america",
		bbox:    geo.BBox{South: -56, West: -82, North: 13, East: -34},
		themes:  []string{"Historic Center", "Central Plaza", "Waterfront", "Cultural District", "Hillside Viewpoint"},
		generic: []string{"City Cathedral", "Central Market", "National Museum", "City Park", "Old Quarter"},
	},
	{
		name:    "generic",
		themes:  []string{"Old Town", "Central Square", "City Museum", "Riverside Park", "Historic Quarter"},
		generic: []string{"City Museum", "Central Market", "Old Town Hall", "Central Park", "Main Cathedral"},
	},
}

func classifyRegion(center models.Coordinate) region {
	for _, r := range regions[:len(regions)-1] {
		if r.bbox.Contains(center) {
			return r
		}
	}
	return regions[len(regions)-1]
}

// FallbackProvider is a deterministic, template-based stand-in for an LLM,
// used when no reasoning credentials are configured. It never calls out to
// the network and always returns the same suggestions for the same city,
// region-templated so results at least plausibly fit the part of the world
// the city is in (spec 4.3.1).
type FallbackProvider struct{}

// NewFallbackProvider builds the deterministic fallback.
func NewFallbackProvider() *FallbackProvider {
	return &FallbackProvider{}
}

func (f *FallbackProvider) Name() string { return "deterministic-fallback" }

func (f *FallbackProvider) InterpretUserInput(ctx context.Context, location, interests string) (*models.StructuredQuery, error) {
	location = Sanitize(location, maxLocationLength)
	if location == "" {
		return nil, fmt.Errorf("cannot interpret empty location without an LLM")
	}
	return &models.StructuredQuery{
		City:     location,
		Keywords: SanitizeList([]string{interests}, maxInterestsLength),
	}, nil
}

// SuggestLandmarks requires a resolved city center, since the whole point
// of the fallback is to avoid inventing coordinates; callers of the
// fallback path must geocode the city first and pass its center through
// ctx via WithCityCenter.
func (f *FallbackProvider) SuggestLandmarks(ctx context.Context, city string, interests []string, mode models.TransportMode, timeConstraint models.TimeConstraint) ([]models.LandmarkSuggestion, error) {
	center, ok := cityCenterFromContext(ctx)
	if !ok {
		return nil, fmt.Errorf("fallback landmark generation requires a resolved city center in context")
	}
	r := classifyRegion(center)
	count := timeConstraint.SuggestionCount()

	names := append(append([]string{}, r.themes...), r.generic...)
	out := make([]models.LandmarkSuggestion, 0, count)
	for i := 0; i < count; i++ {
		name := names[i%len(names)]
		if i >= len(names) {
			name = fmt.Sprintf("%s %d", name, i/len(names)+1)
		}
		out = append(out, models.LandmarkSuggestion{
			Name:                NormalizeName(fmt.Sprintf("%s of %s", name, city)),
			Category:            "landmark",
			Rationale:           "A well-known point of interest in this part of the city.",
			EstimatedVisitHours: 1.0,
		})
	}
	return out, nil
}

// RankPOIs without an LLM falls back to a neutral score for every POI: the
// caller's downstream dedup/truncate logic still operates on distance and
// order, just without a relevance signal.
func (f *FallbackProvider) RankPOIs(ctx context.Context, pois []models.POI, interests []string) ([]models.RankedPOI, error) {
	out := make([]models.RankedPOI, len(pois))
	for i := range pois {
		out[i] = models.RankedPOI{Index: i, Score: 0.5, Rationale: "no reasoning backend configured"}
	}
	return out, nil
}

func (f *FallbackProvider) SuggestFoodAndDrinks(ctx context.Context, city string, category Category, limit int) ([]models.LandmarkSuggestion, error) {
	center, ok := cityCenterFromContext(ctx)
	if !ok {
		return nil, fmt.Errorf("fallback food suggestion requires a resolved city center in context")
	}
	r := classifyRegion(center)
	out := make([]models.LandmarkSuggestion, 0, limit)
	for i := 0; i < limit; i++ {
		out = append(out, models.LandmarkSuggestion{
			Name:                NormalizeName(fmt.Sprintf("%s %s %d", r.name, category, i+1)),
			Category:            string(category),
			Rationale:           "A popular local spot in this category.",
			EstimatedVisitHours: 1.0,
		})
	}
	return out, nil
}

type cityCenterKey struct{}

// WithCityCenter attaches a resolved city center to ctx for the fallback
// provider's region classification.
func WithCityCenter(ctx context.Context, center models.Coordinate) context.Context {
	return context.WithValue(ctx, cityCenterKey{}, center)
}

func cityCenterFromContext(ctx context.Context) (models.Coordinate, bool) {
	c, ok := ctx.Value(cityCenterKey{}).(models.Coordinate)
	return c, ok
}
