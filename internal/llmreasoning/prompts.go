package llmreasoning

import (
	"fmt"
	"strings"

	"github.com/exotic-travel-booking/backend/internal/models"
)

// interpretPrompt builds the strict-JSON intent-extraction prompt (spec 4.3
// op 1). The model is explicitly forbidden from inventing coordinates.
func interpretPrompt(location, interests string) string {
	return fmt.Sprintf(`You turn a free-text travel request into strict JSON.

Request: %q
Stated interests: %q

Return ONLY a JSON object with this exact shape, no markdown fences, no commentary:
{"city": "<city name>", "area": "<neighborhood or empty string>", "poi_types": ["..."], "keywords": ["..."]}

Never include coordinates, latitude, or longitude in your response.`, location, interests)
}

// suggestLandmarksPrompt builds the landmark-suggestion prompt (spec 4.3
// op 2). Request size scales with the time constraint.
func suggestLandmarksPrompt(city string, interests []string, mode models.TransportMode, tc models.TimeConstraint) string {
	count := tc.SuggestionCount()
	interestClause := "general sightseeing"
	if len(interests) > 0 {
		interestClause = strings.Join(interests, ", ")
	}

	return fmt.Sprintf(`You are a local travel expert for %s.

Suggest exactly %d landmarks and points of interest for a visitor interested in: %s.
The visitor will travel by %s.

Rules, in priority order:
1. List famous, must-see attractions first, then hidden gems. Aim for roughly a 70/30 split of famous to lesser-known.
2. Names must be short and searchable: no leading articles like "The", no parenthetical qualifiers.
3. Every suggestion must be strictly inside %s's city limits, within 30 km of the city center.
4. NEVER include coordinates, street addresses, or opening hours — you do not have reliable access to them.

Return ONLY a JSON array, no markdown fences, no commentary, with this exact shape:
[{"name": "...", "category": "...", "rationale": "one sentence", "estimated_visit_hours": 1.5, "admission": "", "admission_url": ""}]`,
		city, count, interestClause, mode, city)
}

// rankPOIsPrompt builds the relevance-ranking prompt (spec 4.3 op 3).
func rankPOIsPrompt(pois []models.POI, interests []string) string {
	var b strings.Builder
	b.WriteString("Rank the relevance of these points of interest for a visitor interested in: ")
	if len(interests) > 0 {
		b.WriteString(strings.Join(interests, ", "))
	} else {
		b.WriteString("general sightseeing")
	}
	b.WriteString(".\n\n")
	for i, p := range pois {
		fmt.Fprintf(&b, "%d. %s (%s)\n", i, p.Name, strings.Join(p.Types, ","))
	}
	b.WriteString(`
Return ONLY a JSON array, no markdown fences, no commentary, with this exact shape:
[{"index": 0, "score": 0.9, "rationale": "one short sentence"}]
Every index must match the numbered list above. Omit indices you cannot judge.`)
	return b.String()
}

// suggestFoodPrompt builds the food-and-drink suggestion prompt (spec 4.3
// op 4). Only famous, named venues are requested — no invented ones.
func suggestFoodPrompt(city string, category Category, limit int) string {
	return fmt.Sprintf(`List exactly %d well-known, real, named %s in %s that a visitor would recognize or easily search for.

Return ONLY a JSON array, no markdown fences, no commentary, with this exact shape:
[{"name": "...", "category": "%s", "rationale": "one sentence", "estimated_visit_hours": 1.0}]`,
		limit, category, city, category)
}

const systemPromptReasoning = "You are a precise, factual travel-planning assistant. You always respond with strict JSON and nothing else. You never invent geographic coordinates."
