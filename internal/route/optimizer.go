package route

import (
	"context"

	"github.com/exotic-travel-booking/backend/internal/geo"
	"github.com/exotic-travel-booking/backend/internal/models"
	"github.com/exotic-travel-booking/backend/internal/routing"
)

// Optimizer assembles a models.Route: it builds the distance matrix, orders
// the tour, trims to a time constraint, and retrieves route geometry,
// wiring the pure algorithm in route.go to the routing.Client's outbound
// calls (spec 4.7's create_optimized_route pipeline).
type Optimizer struct {
	routing *routing.Client
}

// New builds an Optimizer over a routing.Client.
func New(routingClient *routing.Client) *Optimizer {
	return &Optimizer{routing: routingClient}
}

// Options controls one CreateOptimizedRoute call.
type Options struct {
	Mode             models.TransportMode
	TimeConstraint   *models.TimeConstraint
	StartingPoint    *models.Coordinate
	IsRoundTrip      bool
	SkipOptimization bool // pois are already in the desired order
}

// CreateOptimizedRoute builds the optimal route over pois. When
// opts.StartingPoint is set, the tour is seeded from the POI nearest to it
// and the returned route is prefixed (and, if IsRoundTrip, suffixed) with
// that coordinate (spec 4.7 round trips).
func (o *Optimizer) CreateOptimizedRoute(ctx context.Context, pois []models.POI, opts Options) (*models.Route, error) {
	matrix := o.routing.BuildDistanceMatrix(ctx, pois, opts.Mode)

	var ordered []models.POI
	var order []int

	if opts.SkipOptimization {
		ordered = pois
	} else {
		var startIdx *int
		if opts.StartingPoint != nil && len(pois) > 0 {
			idx := NearestToStart(*opts.StartingPoint, pois)
			startIdx = &idx
		}
		order = OptimizeOrder(matrix, startIdx)

		if opts.TimeConstraint != nil {
			order = TrimToTimeLimit(order, matrix, opts.TimeConstraint.TravelAllowance())
		}
		ordered = make([]models.POI, len(order))
		for i, idx := range order {
			ordered[i] = pois[idx]
		}
	}

	coords := make([]models.Coordinate, 0, len(ordered)+2)
	if opts.StartingPoint != nil {
		coords = append(coords, *opts.StartingPoint)
	}
	for _, p := range ordered {
		coords = append(coords, p.Coordinates)
	}
	if opts.StartingPoint != nil && opts.IsRoundTrip {
		coords = append(coords, *opts.StartingPoint)
	}

	polyline, totalDistanceM, legDistancesM, err := o.routing.Geometry(ctx, coords, opts.Mode)
	if err != nil {
		return nil, err
	}

	legs := buildLegs(ordered, legDistancesM, opts.Mode, opts.StartingPoint)

	r := &models.Route{
		OrderedPOIs:    ordered,
		Legs:           legs,
		Polyline:       polyline,
		TotalDistanceM: totalDistanceM,
		TotalDurationS: sumLegDurations(legs),
		TransportMode:  opts.Mode,
		IsRoundTrip:    opts.IsRoundTrip,
	}
	if opts.StartingPoint != nil {
		c := *opts.StartingPoint
		r.StartingPoint = &c
	}
	return r, nil
}

// buildLegs re-derives per-leg duration from leg distance at the mode's
// nominal speed (spec 4.7: "to normalize the routing backend's sometimes
// unrealistic pedestrian speed"). When a starting point is present, the
// first leg runs start -> ordered[0].
func buildLegs(ordered []models.POI, legDistancesM []float64, mode models.TransportMode, startingPoint *models.Coordinate) []models.RouteLeg {
	var fromPOIs []models.POI
	if startingPoint != nil {
		fromPOIs = append(fromPOIs, models.POI{Name: "start", Coordinates: *startingPoint})
	}
	fromPOIs = append(fromPOIs, ordered...)

	legs := make([]models.RouteLeg, 0, len(legDistancesM))
	for i := 0; i < len(legDistancesM) && i < len(fromPOIs)-1; i++ {
		legs = append(legs, models.RouteLeg{
			FromPOI:   fromPOIs[i],
			ToPOI:     fromPOIs[i+1],
			DistanceM: legDistancesM[i],
			DurationS: geo.EstimateDurationSeconds(legDistancesM[i], mode),
		})
	}
	return legs
}

func sumLegDurations(legs []models.RouteLeg) float64 {
	var total float64
	for _, l := range legs {
		total += l.DurationS
	}
	return total
}
