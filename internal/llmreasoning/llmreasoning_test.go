package llmreasoning

import (
	"context"
	"testing"

	"github.com/exotic-travel-booking/backend/internal/llm/providers"
	"github.com/exotic-travel-booking/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubChatBackend returns a fixed JSON payload as the assistant's message
// content, letting tests drive ChatProvider without a real LLM backend.
type stubChatBackend struct {
	content string
}

func (s *stubChatBackend) GenerateResponse(ctx context.Context, req *providers.GenerateRequest) (*providers.GenerateResponse, error) {
	return &providers.GenerateResponse{
		Choices: []providers.Choice{{Message: providers.Message{Role: "assistant", Content: s.content}}},
	}, nil
}

func (s *stubChatBackend) StreamResponse(ctx context.Context, req *providers.GenerateRequest) (<-chan *providers.StreamChunk, error) {
	return nil, nil
}

func (s *stubChatBackend) GetModels(ctx context.Context) ([]string, error) { return nil, nil }

func (s *stubChatBackend) GetName() string { return "stub" }

func TestNormalizeNameStripsArticleParenthesesAndCamelCase(t *testing.T) {
	assert.Equal(t, "Eiffel Tower", NormalizeName("The Eiffel Tower"))
	assert.Equal(t, "Louvre Museum", NormalizeName("Louvre Museum (main entrance)"))
	assert.Equal(t, "Eiffel Tower", NormalizeName("EiffelTower"))
	assert.Equal(t, "Notre Dame", NormalizeName("  The   Notre Dame  "))
}

func TestSanitizeStripsControlCharsAndTruncates(t *testing.T) {
	in := "hello\x00\x01 world" + string(make([]byte, 0))
	out := Sanitize(in, 100)
	assert.Equal(t, "hello world", out)

	long := ""
	for i := 0; i < 50; i++ {
		long += "ab"
	}
	out2 := Sanitize(long, 10)
	assert.Len(t, out2, 10)
}

func TestSanitizeListDropsEmptyEntries(t *testing.T) {
	out := SanitizeList([]string{"  ", "museums", "\x00\x00", "food"}, 100)
	assert.Equal(t, []string{"museums", "food"}, out)
}

func TestClassifyRegionWesternEurope(t *testing.T) {
	r := classifyRegion(models.Coordinate{Lat: 48.8566, Lng: 2.3522}) // Paris
	assert.Equal(t, "western_europe", r.name)
}

func TestClassifyRegionFallsBackToGeneric(t *testing.T) {
	r := classifyRegion(models.Coordinate{Lat: -80, Lng: 170})
	assert.Equal(t, "generic", r.name)
}

func TestFallbackProviderSuggestLandmarksRequiresCityCenter(t *testing.T) {
	f := NewFallbackProvider()
	_, err := f.SuggestLandmarks(context.Background(), "Nowhere", nil, models.TransportWalking, models.TimeOneDay)
	require.Error(t, err)
}

func TestFallbackProviderSuggestLandmarksUsesRegionTemplate(t *testing.T) {
	f := NewFallbackProvider()
	ctx := WithCityCenter(context.Background(), models.Coordinate{Lat: 48.8566, Lng: 2.3522})
	out, err := f.SuggestLandmarks(ctx, "Paris", []string{"history"}, models.TransportWalking, models.TimeOneDay)
	require.NoError(t, err)
	assert.Len(t, out, models.TimeOneDay.SuggestionCount())
	for _, s := range out {
		assert.NotEmpty(t, s.Name)
	}
}

func TestFallbackProviderRankPOIsNeutralScores(t *testing.T) {
	f := NewFallbackProvider()
	pois := []models.POI{{Name: "A"}, {Name: "B"}}
	ranked, err := f.RankPOIs(context.Background(), pois, nil)
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	for _, r := range ranked {
		assert.Equal(t, 0.5, r.Score)
	}
}

func TestFallbackProviderIsDeterministic(t *testing.T) {
	f := NewFallbackProvider()
	ctx := WithCityCenter(context.Background(), models.Coordinate{Lat: 48.8566, Lng: 2.3522})
	a, err := f.SuggestLandmarks(ctx, "Paris", nil, models.TransportWalking, models.TimeOneDay)
	require.NoError(t, err)
	b, err := f.SuggestLandmarks(ctx, "Paris", nil, models.TransportWalking, models.TimeOneDay)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestChatProviderRankPOIsDefaultsOmittedIndicesToNeutralScore(t *testing.T) {
	backend := &stubChatBackend{content: `[{"index":1,"score":0.9,"rationale":"great view"}]`}
	c := NewChatProvider(backend, "test-model")

	pois := []models.POI{{Name: "A"}, {Name: "B"}, {Name: "C"}}
	ranked, err := c.RankPOIs(context.Background(), pois, nil)
	require.NoError(t, err)
	require.Len(t, ranked, 3)

	byIndex := make(map[int]models.RankedPOI, len(ranked))
	for _, r := range ranked {
		byIndex[r.Index] = r
	}

	assert.Equal(t, 0.9, byIndex[1].Score)
	assert.Equal(t, 0.5, byIndex[0].Score)
	assert.Equal(t, 0.5, byIndex[2].Score)
}

func TestChatProviderRankPOIsClampsAndDropsDuplicateOrOutOfRangeIndices(t *testing.T) {
	backend := &stubChatBackend{content: `[{"index":0,"score":1.5},{"index":0,"score":0.1},{"index":99,"score":0.3},{"index":1,"score":-0.2}]`}
	c := NewChatProvider(backend, "test-model")

	pois := []models.POI{{Name: "A"}, {Name: "B"}}
	ranked, err := c.RankPOIs(context.Background(), pois, nil)
	require.NoError(t, err)
	require.Len(t, ranked, 2)

	byIndex := make(map[int]models.RankedPOI, len(ranked))
	for _, r := range ranked {
		byIndex[r.Index] = r
	}
	assert.Equal(t, 1.0, byIndex[0].Score)
	assert.Equal(t, 0.0, byIndex[1].Score)
}

func TestExtractJSONStripsCodeFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, extractJSON("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `[1,2,3]`, extractJSON("```\n[1,2,3]\n```"))
	assert.Equal(t, `{"a":1}`, extractJSON(`{"a":1}`))
}
