package spatial

// Feature is a raw spatial result before scoring: a candidate POI location
// plus whatever OSM-style tags described it.
type Feature struct {
	Name string
	Lat  float64
	Lng  float64
	Tags map[string]string
}

func hasWikiRef(tags map[string]string) bool {
	_, hasWikipedia := tags["wikipedia"]
	_, hasWikidata := tags["wikidata"]
	return hasWikipedia || hasWikidata
}

// Notability scores a feature by the signal table in spec 4.5, capped at
// 1.0.
func Notability(tags map[string]string) float64 {
	var score float64
	wiki := hasWikiRef(tags)

	if wiki {
		score += 0.5
	}

	switch tags["building"] {
	case "cathedral":
		score += 0.4
	case "church", "chapel":
		score += 0.15
	case "castle", "palace":
		score += 0.35
	}

	switch tags["tourism"] {
	case "attraction":
		score += 0.25
	case "museum", "viewpoint":
		score += 0.2
	}

	switch tags["historic"] {
	case "castle", "palace", "fort":
		score += 0.3
	case "monument", "memorial":
		if wiki {
			score += 0.15
		} else {
			score += 0.02
		}
	}

	if tags["man_made"] == "tower" {
		if wiki {
			score += 0.35
		} else {
			score += 0.05
		}
	}

	if _, hasWebsite := tags["website"]; hasWebsite {
		score += 0.05
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}

// NameMatchScore rates how well a candidate name matches an LLM-supplied
// name, for LLM-name validation (spec 4.5): exact match scores highest,
// then substring, then a looser word-overlap match. Bonuses are added for
// wiki-reference and opening-hours tags.
func NameMatchScore(candidateName, llmName string, tags map[string]string) float64 {
	c := normalizeInterest(candidateName)
	l := normalizeInterest(llmName)

	var score float64
	switch {
	case c == l:
		score = 1.0
	case containsFold(c, l) || containsFold(l, c):
		score = 0.7
	case wordOverlap(candidateName, llmName):
		score = 0.4
	default:
		return 0
	}

	if hasWikiRef(tags) {
		score += 0.1
	}
	if _, hasHours := tags["opening_hours"]; hasHours {
		score += 0.05
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}

func containsFold(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	for i := 0; i+len(b) <= len(a); i++ {
		if a[i:i+len(b)] == b {
			return true
		}
	}
	return false
}

func wordOverlap(a, b string) bool {
	wordsA := splitWords(a)
	wordsB := make(map[string]bool)
	for _, w := range splitWords(b) {
		wordsB[w] = true
	}
	for _, w := range wordsA {
		if len(w) > 2 && wordsB[w] {
			return true
		}
	}
	return false
}

func splitWords(s string) []string {
	var words []string
	var cur []byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == ' ' || c == ',' || c == '-' {
			if len(cur) > 0 {
				words = append(words, normalizeInterest(string(cur)))
				cur = nil
			}
			continue
		}
		cur = append(cur, c)
	}
	if len(cur) > 0 {
		words = append(words, normalizeInterest(string(cur)))
	}
	return words
}
