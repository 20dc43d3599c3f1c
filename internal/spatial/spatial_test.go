package spatial

import (
	"testing"

	"github.com/exotic-travel-booking/backend/internal/geo"
	"github.com/stretchr/testify/assert"
)

func testBBox() geo.BBox {
	return geo.BBox{South: 48.80, West: 2.22, North: 48.91, East: 2.47}
}

func TestTagFiltersForKnownInterest(t *testing.T) {
	filters := TagFiltersFor([]string{"museums"})
	assert.Contains(t, filters, "tourism=museum")
}

func TestTagFiltersForUnknownInterestFallsBackToDefault(t *testing.T) {
	filters := TagFiltersFor([]string{"skydiving"})
	assert.Equal(t, defaultTagFilters, filters)
}

func TestTagFiltersForDedupesAcrossInterests(t *testing.T) {
	filters := TagFiltersFor([]string{"museums", "culture"})
	count := 0
	for _, f := range filters {
		if f == "tourism=museum" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestNotabilityWikiReferencedCathedral(t *testing.T) {
	score := Notability(map[string]string{"building": "cathedral", "wikipedia": "en:Notre-Dame"})
	assert.InDelta(t, 0.9, score, 1e-9)
}

func TestNotabilityCapsAtOne(t *testing.T) {
	score := Notability(map[string]string{
		"building": "cathedral", "wikipedia": "x", "tourism": "attraction",
		"historic": "castle", "man_made": "tower", "website": "https://x",
	})
	assert.Equal(t, 1.0, score)
}

func TestNotabilityMemorialWithoutWikiIsLow(t *testing.T) {
	score := Notability(map[string]string{"historic": "memorial"})
	assert.InDelta(t, 0.02, score, 1e-9)
}

func TestNotabilityNoSignalsIsZero(t *testing.T) {
	assert.Equal(t, 0.0, Notability(map[string]string{}))
}

func TestNameMatchScoreExactMatch(t *testing.T) {
	score := NameMatchScore("Eiffel Tower", "Eiffel Tower", nil)
	assert.Equal(t, 1.0, score)
}

func TestNameMatchScoreSubstring(t *testing.T) {
	score := NameMatchScore("The Eiffel Tower Paris", "Eiffel Tower", nil)
	assert.InDelta(t, 0.7, score, 1e-9)
}

func TestNameMatchScoreNoMatch(t *testing.T) {
	score := NameMatchScore("Louvre Museum", "Colosseum", nil)
	assert.Equal(t, 0.0, score)
}

func TestBuildQueryIncludesBboxAndFilters(t *testing.T) {
	q := buildQuery(testBBox(), []string{"tourism=museum"})
	assert.Contains(t, q, `node["tourism"="museum"]`)
	assert.Contains(t, q, `way["tourism"="museum"]`)
}
