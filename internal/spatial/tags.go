package spatial

// interestTagFilters maps each interest keyword to a set of OSM-style key=value tag
// expressions used to build the Overpass query for that interest (spec 4.5).
var interestTagFilters = map[string][]string{
	"landmarks": {
		`tourism=attraction`, `historic=monument`, `man_made=tower`, `historic=castle`,
	},
	"history": {
		`historic=castle`, `historic=monument`, `historic=memorial`, `historic=fort`,
	},
	"museums": {
		`tourism=museum`, `tourism=gallery`,
	},
	"churches": {
		`building=cathedral`, `building=church`, `building=chapel`, `amenity=place_of_worship`,
	},
	"culture": {
		`tourism=gallery`, `tourism=museum`, `amenity=theatre`, `amenity=arts_centre`,
	},
	"parks": {
		`leisure=park`, `leisure=garden`, `natural=wood`,
	},
	"viewpoints": {
		`tourism=viewpoint`, `man_made=tower`,
	},
	"cafes": {
		`amenity=cafe`,
	},
	"restaurants": {
		`amenity=restaurant`,
	},
	"bars": {
		`amenity=bar`, `amenity=pub`,
	},
	"nightlife": {
		`amenity=bar`, `amenity=pub`, `amenity=nightclub`,
	},
	"markets": {
		`shop=supermarket`, `amenity=marketplace`,
	},
}

// defaultTagFilters is used when no recognized interest maps to a filter,
// biasing toward generic sightseeing (spec 4.5 implicit default).
var defaultTagFilters = []string{
	`tourism=attraction`, `historic=monument`, `tourism=museum`, `man_made=tower`,
}

// TagFiltersFor resolves a list of interests into the union of their tag
// filter expressions, falling back to the default set when nothing matched.
func TagFiltersFor(interests []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, interest := range interests {
		filters, ok := interestTagFilters[normalizeInterest(interest)]
		if !ok {
			continue
		}
		for _, f := range filters {
			if !seen[f] {
				seen[f] = true
				out = append(out, f)
			}
		}
	}
	if len(out) == 0 {
		return defaultTagFilters
	}
	return out
}

func normalizeInterest(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		if c == ' ' {
			continue
		}
		out = append(out, c)
	}
	return string(out)
}
