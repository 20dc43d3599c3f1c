package llmreasoning

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/exotic-travel-booking/backend/internal/apperr"
	"github.com/exotic-travel-booking/backend/internal/llm/providers"
	"github.com/exotic-travel-booking/backend/internal/models"
)

// ChatProvider implements Provider on top of any providers.LLMProvider chat
// backend by constructing prompts and parsing strict-JSON responses.
type ChatProvider struct {
	backend providers.LLMProvider
	model   string
}

// NewChatProvider wraps a low-level chat provider.
func NewChatProvider(backend providers.LLMProvider, model string) *ChatProvider {
	return &ChatProvider{backend: backend, model: model}
}

func (c *ChatProvider) Name() string {
	return c.backend.GetName()
}

func (c *ChatProvider) complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.backend.GenerateResponse(ctx, &providers.GenerateRequest{
		Model:        c.model,
		SystemPrompt: systemPromptReasoning,
		Temperature:  0.2,
		MaxTokens:    2048,
		Messages: []providers.Message{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", apperr.Wrap(apperr.CodeAPIError, err, "llm generation failed",
			"The reasoning service is unavailable right now.", "retry")
	}
	if len(resp.Choices) == 0 {
		return "", apperr.New(apperr.CodeAPIError, "llm returned no choices",
			"The reasoning service returned an empty response.", "retry")
	}
	return extractJSON(resp.Choices[0].Message.Content), nil
}

// extractJSON strips markdown code fences a model might add despite being
// told not to.
func extractJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func (c *ChatProvider) InterpretUserInput(ctx context.Context, location, interests string) (*models.StructuredQuery, error) {
	location = Sanitize(location, maxLocationLength)
	interests = Sanitize(interests, maxInterestsLength)

	raw, err := c.complete(ctx, interpretPrompt(location, interests))
	if err != nil {
		return nil, err
	}

	var q models.StructuredQuery
	if err := json.Unmarshal([]byte(raw), &q); err != nil {
		return nil, apperr.Wrap(apperr.CodeAPIError, err, "could not parse structured query",
			"We couldn't understand that request.", "retry_with_different_input")
	}
	q.City = Sanitize(q.City, maxCityLength)
	q.Area = Sanitize(q.Area, maxCityLength)
	q.Keywords = SanitizeList(q.Keywords, maxNameLength)
	q.POITypes = SanitizeList(q.POITypes, maxNameLength)
	if q.City == "" {
		return nil, apperr.InvalidInput("could not determine a city from your request")
	}
	return &q, nil
}

func (c *ChatProvider) SuggestLandmarks(ctx context.Context, city string, interests []string, mode models.TransportMode, timeConstraint models.TimeConstraint) ([]models.LandmarkSuggestion, error) {
	city = Sanitize(city, maxCityLength)
	interests = SanitizeList(interests, maxNameLength)

	raw, err := c.complete(ctx, suggestLandmarksPrompt(city, interests, mode, timeConstraint))
	if err != nil {
		return nil, err
	}

	var suggestions []models.LandmarkSuggestion
	if err := json.Unmarshal([]byte(raw), &suggestions); err != nil {
		return nil, apperr.Wrap(apperr.CodeAPIError, err, "could not parse landmark suggestions",
			"We couldn't generate suggestions for that city.", "retry")
	}
	return normalizeSuggestions(suggestions), nil
}

func (c *ChatProvider) RankPOIs(ctx context.Context, pois []models.POI, interests []string) ([]models.RankedPOI, error) {
	if len(pois) == 0 {
		return nil, nil
	}
	interests = SanitizeList(interests, maxNameLength)

	raw, err := c.complete(ctx, rankPOIsPrompt(pois, interests))
	if err != nil {
		return nil, err
	}

	var ranked []models.RankedPOI
	if err := json.Unmarshal([]byte(raw), &ranked); err != nil {
		return nil, apperr.Wrap(apperr.CodeAPIError, err, "could not parse ranked pois",
			"We couldn't rank those places.", "retry")
	}

	seen := make([]bool, len(pois))
	out := make([]models.RankedPOI, 0, len(pois))
	for _, r := range ranked {
		if r.Index < 0 || r.Index >= len(pois) || seen[r.Index] {
			continue
		}
		if r.Score < 0 {
			r.Score = 0
		}
		if r.Score > 1 {
			r.Score = 1
		}
		seen[r.Index] = true
		out = append(out, r)
	}
	// Any POI the LLM's response omitted still needs a ranking entry so it
	// isn't silently dropped from the result; it defaults to a neutral score.
	for i, ok := range seen {
		if !ok {
			out = append(out, models.RankedPOI{Index: i, Score: 0.5, Rationale: "not scored by the reasoning backend"})
		}
	}
	return out, nil
}

func (c *ChatProvider) SuggestFoodAndDrinks(ctx context.Context, city string, category Category, limit int) ([]models.LandmarkSuggestion, error) {
	city = Sanitize(city, maxCityLength)
	if limit <= 0 {
		return nil, apperr.InvalidInput("limit must be positive")
	}

	raw, err := c.complete(ctx, suggestFoodPrompt(city, category, limit))
	if err != nil {
		return nil, err
	}

	var suggestions []models.LandmarkSuggestion
	if err := json.Unmarshal([]byte(raw), &suggestions); err != nil {
		return nil, apperr.Wrap(apperr.CodeAPIError, err, "could not parse food suggestions",
			"We couldn't generate suggestions for that city.", "retry")
	}
	return normalizeSuggestions(suggestions), nil
}

func normalizeSuggestions(in []models.LandmarkSuggestion) []models.LandmarkSuggestion {
	out := make([]models.LandmarkSuggestion, 0, len(in))
	for _, s := range in {
		s.Name = NormalizeName(Sanitize(s.Name, maxNameLength))
		if s.Name == "" {
			continue
		}
		s.Category = Sanitize(s.Category, maxNameLength)
		s.Rationale = Sanitize(s.Rationale, maxInterestsLength)
		out = append(out, s)
	}
	return out
}
