// Package route implements the tour-ordering algorithm from spec.md 4.7:
// nearest-neighbor construction improved by 2-opt local search, plus the
// time-constraint trim and starting-point handling the orchestrator needs
// around it. Every function here is pure over a models.DistanceMatrix; no
// I/O happens in this package.
package route

import (
	"time"

	"github.com/exotic-travel-booking/backend/internal/geo"
	"github.com/exotic-travel-booking/backend/internal/models"
)

const (
	maxTwoOptIterations = 100
	twoOptGainThreshold = -0.1
)

// OptimizeOrder returns the best visiting order of matrix's POIs. If
// startIndex is non-nil, the tour is seeded from that index only (the
// starting-point case — spec 4.7 says "do not re-randomize"). Otherwise
// every possible start is tried and the shortest resulting tour wins.
func OptimizeOrder(matrix *models.DistanceMatrix, startIndex *int) []int {
	n := matrix.N()
	if n <= 1 {
		return identity(n)
	}
	if n == 2 {
		if startIndex != nil && *startIndex == 1 {
			return []int{1, 0}
		}
		return []int{0, 1}
	}

	if startIndex != nil {
		tour := nearestNeighborTour(matrix, *startIndex)
		return twoOptImprove(tour, matrix)
	}

	var best []int
	bestDist := -1.0
	for start := 0; start < n; start++ {
		tour := twoOptImprove(nearestNeighborTour(matrix, start), matrix)
		dist := tourDistance(tour, matrix)
		if best == nil || dist < bestDist {
			best = tour
			bestDist = dist
		}
	}
	return best
}

func identity(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// nearestNeighborTour greedily visits the closest unvisited node from the
// current one, starting at start.
func nearestNeighborTour(matrix *models.DistanceMatrix, start int) []int {
	n := matrix.N()
	visited := make([]bool, n)
	tour := make([]int, 0, n)

	current := start
	visited[start] = true
	tour = append(tour, start)

	for len(tour) < n {
		next := -1
		bestDist := -1.0
		for j := 0; j < n; j++ {
			if visited[j] {
				continue
			}
			d := matrix.Distances[current][j]
			if d <= 0 && current != j {
				continue
			}
			if next == -1 || d < bestDist {
				next = j
				bestDist = d
			}
		}
		if next == -1 {
			// No reachable neighbor (e.g. all-zero distances); append
			// whatever remains in index order.
			for j := 0; j < n; j++ {
				if !visited[j] {
					visited[j] = true
					tour = append(tour, j)
				}
			}
			break
		}
		visited[next] = true
		tour = append(tour, next)
		current = next
	}
	return tour
}

// twoOptImprove repeatedly reverses tour segments that shorten total
// duration, until no improving swap exists or the iteration cap is hit
// (spec 4.7: 100 outer iterations, restart-from-beginning on each accepted
// swap).
func twoOptImprove(tour []int, matrix *models.DistanceMatrix) []int {
	n := len(tour)
	best := append([]int(nil), tour...)

	for iteration := 0; iteration < maxTwoOptIterations; iteration++ {
		improved := false
		for i := 1; i < n-1; i++ {
			for j := i + 1; j < n; j++ {
				if twoOptGain(best, matrix, i, j) < twoOptGainThreshold {
					reverse(best, i, j)
					improved = true
					break
				}
			}
			if improved {
				break
			}
		}
		if !improved {
			break
		}
	}
	return best
}

// twoOptGain computes the change in total duration from reversing the
// segment [i, j]: d(a,c)+d(b,d) - d(a,b)-d(c,d). A negative value means the
// swap shortens the tour.
func twoOptGain(tour []int, matrix *models.DistanceMatrix, i, j int) float64 {
	n := len(tour)
	a, b := tour[i-1], tour[i]
	c, d := tour[j], tour[(j+1)%n]

	current := matrix.Durations[a][b] + matrix.Durations[c][d]
	next := matrix.Durations[a][c] + matrix.Durations[b][d]
	return next - current
}

func reverse(tour []int, i, j int) {
	for i < j {
		tour[i], tour[j] = tour[j], tour[i]
		i++
		j--
	}
}

func tourDistance(tour []int, matrix *models.DistanceMatrix) float64 {
	var total float64
	for i := 0; i < len(tour)-1; i++ {
		total += matrix.Distances[tour[i]][tour[i+1]]
	}
	return total
}

func tourDuration(tour []int, matrix *models.DistanceMatrix) float64 {
	var total float64
	for i := 0; i < len(tour)-1; i++ {
		total += matrix.Durations[tour[i]][tour[i+1]]
	}
	return total
}

// NearestToStart returns the index of the POI in pois closest (great
// circle) to start — used to seed the tour when a starting point is
// supplied (spec 4.7).
func NearestToStart(start models.Coordinate, pois []models.POI) int {
	coords := make([]models.Coordinate, len(pois))
	for i, p := range pois {
		coords[i] = p.Coordinates
	}
	return geo.Nearest(start, coords)
}

// TrimToTimeLimit walks order's cumulative travel duration and drops every
// POI past the point where the running total would exceed limit (spec 4.7
// time-constraint trim). The first POI is always kept.
func TrimToTimeLimit(tour []int, matrix *models.DistanceMatrix, limit time.Duration) []int {
	if len(tour) <= 1 {
		return tour
	}
	limitS := limit.Seconds()

	result := []int{tour[0]}
	var elapsed float64
	for i := 1; i < len(tour); i++ {
		travel := matrix.Durations[tour[i-1]][tour[i]]
		if elapsed+travel > limitS {
			break
		}
		elapsed += travel
		result = append(result, tour[i])
	}
	return result
}
