// Package days partitions an ordered POI list into a multi-day itinerary:
// geographic-proximity ordering, target-per-day sizing, round-robin
// overflow, and theme derivation (spec.md 4.8).
package days

import (
	"context"

	"github.com/exotic-travel-booking/backend/internal/geo"
	"github.com/exotic-travel-booking/backend/internal/models"
	"github.com/exotic-travel-booking/backend/internal/route"
	"github.com/exotic-travel-booking/backend/internal/routing"
)

const (
	minPerDay     = 3
	maxPerDay     = 10
	singleDayCap  = 10
)

// Partitioner builds DayPlans, optionally re-routing each multi-POI day
// through a routing.Client for its polyline.
type Partitioner struct {
	optimizer *route.Optimizer
}

// New builds a Partitioner. routingClient may be nil if callers never need
// per-day polylines (e.g. in tests); no optimizer is built then.
func New(routingClient *routing.Client) *Partitioner {
	var opt *route.Optimizer
	if routingClient != nil {
		opt = route.New(routingClient)
	}
	return &Partitioner{optimizer: opt}
}

// Partition splits pois into numDays DayPlans (spec 4.8). If
// preserveOrder is false, pois are first reordered by geographic
// proximity. Each day with >= 2 POIs is re-routed for its polyline only
// (no reoptimization of order).
func (p *Partitioner) Partition(ctx context.Context, pois []models.POI, numDays int, preserveOrder bool, mode models.TransportMode) []models.DayPlan {
	if numDays < 1 {
		numDays = 1
	}
	if len(pois) == 0 {
		return nil
	}

	if numDays == 1 {
		capped := pois
		if len(capped) > singleDayCap {
			capped = capped[:singleDayCap]
		}
		day := models.DayPlan{DayNumber: 1, POIs: capped, Theme: deriveTheme(capped)}
		p.attachRoute(ctx, &day, mode)
		return []models.DayPlan{day}
	}

	ordered := pois
	if !preserveOrder {
		ordered = orderByProximity(pois)
	}

	buckets := allocate(ordered, numDays)

	plans := make([]models.DayPlan, 0, len(buckets))
	for i, bucket := range buckets {
		day := models.DayPlan{DayNumber: i + 1, POIs: bucket, Theme: deriveTheme(bucket)}
		p.attachRoute(ctx, &day, mode)
		plans = append(plans, day)
	}
	return plans
}

func (p *Partitioner) attachRoute(ctx context.Context, day *models.DayPlan, mode models.TransportMode) {
	if p.optimizer == nil || len(day.POIs) < 2 {
		return
	}
	r, err := p.optimizer.CreateOptimizedRoute(ctx, day.POIs, route.Options{
		Mode:             mode,
		SkipOptimization: true,
	})
	if err != nil {
		return
	}
	day.Route = r
	day.TotalKilometers = r.TotalDistanceM / 1000
}

// orderByProximity sorts pois by starting from the one nearest the
// centroid, then greedily chaining to the nearest unvisited POI (spec 4.8
// step 2).
func orderByProximity(pois []models.POI) []models.POI {
	n := len(pois)
	coords := make([]models.Coordinate, n)
	for i, p := range pois {
		coords[i] = p.Coordinates
	}
	centroid := geo.Centroid(coords)

	visited := make([]bool, n)
	start := geo.Nearest(centroid, coords)
	visited[start] = true

	order := make([]int, 0, n)
	order = append(order, start)
	current := start

	for len(order) < n {
		next := -1
		bestDist := -1.0
		for j := 0; j < n; j++ {
			if visited[j] {
				continue
			}
			d := geo.HaversineMeters(coords[current], coords[j])
			if next == -1 || d < bestDist {
				next = j
				bestDist = d
			}
		}
		visited[next] = true
		order = append(order, next)
		current = next
	}

	result := make([]models.POI, n)
	for i, idx := range order {
		result[i] = pois[idx]
	}
	return result
}

// clamp bounds v to [lo, hi].
func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return a
	}
	return (a + b - 1) / b
}

// allocate distributes ordered POIs across numDays buckets following spec
// 4.8 steps 3-6: a target-per-day size, per-day proportional allocation,
// and round-robin overflow onto the least-full day (opening new days up to
// numDays, then force-assigning past that).
func allocate(ordered []models.POI, numDays int) [][]models.POI {
	total := len(ordered)
	buckets := make([][]models.POI, 0, numDays)
	pos := 0
	remainingDays := numDays

	for day := 0; day < numDays && pos < total; day++ {
		remaining := total - pos
		take := clamp(ceilDiv(remaining, remainingDays), minPerDay, maxPerDay)
		if take > remaining {
			take = remaining
		}
		buckets = append(buckets, append([]models.POI(nil), ordered[pos:pos+take]...))
		pos += take
		remainingDays--
	}

	// Round-robin any remaining POIs onto the smallest day, opening new
	// days up to numDays, then force-assigning past that (spec 4.8 step 5).
	for pos < total {
		smallest := smallestBucket(buckets)
		if smallest == -1 || len(buckets[smallest]) >= maxPerDay {
			if len(buckets) < numDays {
				buckets = append(buckets, nil)
				smallest = len(buckets) - 1
			} else {
				smallest = forceSmallestBucket(buckets)
			}
		}
		buckets[smallest] = append(buckets[smallest], ordered[pos])
		pos++
	}

	return buckets
}

func smallestBucket(buckets [][]models.POI) int {
	best := -1
	for i, b := range buckets {
		if len(b) >= maxPerDay {
			continue
		}
		if best == -1 || len(b) < len(buckets[best]) {
			best = i
		}
	}
	return best
}

// forceSmallestBucket picks the smallest day regardless of the 10-POI cap
// (spec 4.8 step 5's explicit "past that, force-assign" carve-out).
func forceSmallestBucket(buckets [][]models.POI) int {
	best := 0
	for i, b := range buckets {
		if len(b) < len(buckets[best]) {
			best = i
		}
	}
	return best
}

var themeByType = map[string]string{
	"museum":      "Art & Museums",
	"gallery":     "Art & Museums",
	"church":      "Historic Churches",
	"cathedral":   "Historic Churches",
	"monument":    "Monuments & Memorials",
	"memorial":    "Monuments & Memorials",
	"castle":      "Castles & Palaces",
	"palace":      "Castles & Palaces",
	"park":        "Parks & Nature",
	"viewpoint":   "Scenic Viewpoints",
	"market":      "Markets & Shopping",
	"cafe":        "Cafes & Food",
	"restaurant":  "Cafes & Food",
	"bar":         "Nightlife",
	"nightclub":   "Nightlife",
	"attraction":  "Landmarks",
}

const defaultTheme = "City Exploration"

// deriveTheme picks the majority-vote theme over each POI's primary type,
// mapped through themeByType (spec 4.8). Ties are broken by first
// appearance in pois, keeping the result deterministic for a given input
// order rather than depending on Go's randomized map iteration.
func deriveTheme(pois []models.POI) string {
	counts := make(map[string]int)
	order := make([]string, 0, len(themeByType))
	for _, p := range pois {
		t := p.PrimaryType()
		theme, ok := themeByType[t]
		if !ok {
			continue
		}
		if counts[theme] == 0 {
			order = append(order, theme)
		}
		counts[theme]++
	}

	best := defaultTheme
	bestCount := 0
	for _, theme := range order {
		if counts[theme] > bestCount {
			best = theme
			bestCount = counts[theme]
		}
	}
	return best
}
