// Package llmreasoning implements the provider-agnostic reasoning contract
// from spec.md 4.3: interpreting free-text input, suggesting landmarks,
// ranking POIs, and suggesting food venues, on top of the low-level chat
// completion layer in internal/llm/providers.
package llmreasoning

import (
	"context"

	"github.com/exotic-travel-booking/backend/internal/models"
)

// Category is one of the four food-and-drink categories spec 4.3 op 4
// supports.
type Category string

const (
	CategoryCafes       Category = "cafes"
	CategoryRestaurants Category = "restaurants"
	CategoryBars        Category = "bars"
	CategoryParks       Category = "parks"
)

// Provider is the narrow contract every LLM backend implements. Prompt
// construction and JSON parsing live in this package, not in
// provider-specific code (spec 9 "dynamic dispatch").
type Provider interface {
	InterpretUserInput(ctx context.Context, location, interests string) (*models.StructuredQuery, error)
	SuggestLandmarks(ctx context.Context, city string, interests []string, mode models.TransportMode, timeConstraint models.TimeConstraint) ([]models.LandmarkSuggestion, error)
	RankPOIs(ctx context.Context, pois []models.POI, interests []string) ([]models.RankedPOI, error)
	SuggestFoodAndDrinks(ctx context.Context, city string, category Category, limit int) ([]models.LandmarkSuggestion, error)
	Name() string
}
