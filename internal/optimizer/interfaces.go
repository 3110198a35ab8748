package optimizer

import (
	"context"

	"github.com/inflationfighter/price-service/internal/catalog"
)

// RouteProvider returns driving directions for an ordered list of points.
// Implementations make a single attempt and honour ctx cancellation.
type RouteProvider interface {
	Directions(ctx context.Context, points []catalog.Location) (Directions, error)
}

// StopSequencer orders the stores of a trip. NearestNeighbor is the default;
// an exact solver can be swapped in without touching the decision engine.
type StopSequencer interface {
	OrderStops(start catalog.Location, stops []catalog.Store) []catalog.Store
}

// TravelCostEstimator prices a closed trip start -> stops -> start.
type TravelCostEstimator interface {
	Estimate(ctx context.Context, start catalog.Location, stops []catalog.Location, settings RouteSettings) (TravelCost, string)
}

// Planner is the interface the HTTP handlers and the CLI depend on.
type Planner interface {
	// Decide recommends a single store or a multi-store trip for a basket.
	Decide(ctx context.Context, snap *catalog.Snapshot, req *RouteRequest) (*Recommendation, error)

	// Analyze compares single-store and multi-store totals without travel.
	Analyze(ctx context.Context, snap *catalog.Snapshot, basket []BasketItem) (*BasketAnalysis, error)
}
