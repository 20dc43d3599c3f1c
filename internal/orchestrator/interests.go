package orchestrator

import "strings"

// llmPreferredInterests is the vocabulary the LLM landmark path is good
// at: named, famous, historically-notable places (spec 4.9).
var llmPreferredInterests = map[string]bool{
	"landmarks":  true,
	"museums":    true,
	"history":    true,
	"churches":   true,
	"culture":    true,
	"viewpoints": true,
	"parks":      true,
}

// spatialPreferredInterests is the vocabulary the OSM tag query covers
// better than an LLM: dense, ungoogleable venues (spec 4.9).
var spatialPreferredInterests = map[string]bool{
	"cafes":       true,
	"restaurants": true,
	"bars":        true,
	"nightlife":   true,
	"markets":     true,
}

// classifyInterests partitions interests against the two fixed
// vocabularies. Both booleans may be true; an empty or fully-unrecognized
// interest set defaults to LLM-preferred (spec 4.9).
func classifyInterests(interests []string) (llmPreferred, spatialPreferred bool) {
	for _, raw := range interests {
		key := strings.ToLower(strings.TrimSpace(raw))
		if llmPreferredInterests[key] {
			llmPreferred = true
		}
		if spatialPreferredInterests[key] {
			spatialPreferred = true
		}
	}
	if !llmPreferred && !spatialPreferred {
		llmPreferred = true
	}
	return llmPreferred, spatialPreferred
}

// isFoodCategory reports whether a POI's primary type marks it as a food
// or drink venue, exempt from image enrichment (spec 4.9: "skipping food
// categories").
func isFoodCategory(primaryType string) bool {
	switch strings.ToLower(primaryType) {
	case "cafe", "restaurant", "bar", "pub", "nightclub", "marketplace":
		return true
	default:
		return false
	}
}
