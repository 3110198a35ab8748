package optimizer

import "github.com/inflationfighter/price-service/internal/catalog"

// NearestNeighbor orders stops greedily: from the current position it always
// moves to the closest remaining store by planar distance. Ties keep input
// order. The tour is not optimal; it is cheap and deterministic.
type NearestNeighbor struct{}

// OrderStops implements StopSequencer. Stores without a location are
// appended at the end in input order.
func (NearestNeighbor) OrderStops(start catalog.Location, stops []catalog.Store) []catalog.Store {
	return OrderStops(start, stops)
}

// OrderStops returns a permutation of stops visiting the nearest remaining
// store first. Zero or one stop is returned unchanged.
func OrderStops(start catalog.Location, stops []catalog.Store) []catalog.Store {
	ordered := make([]catalog.Store, 0, len(stops))
	var remaining, unlocated []catalog.Store
	for _, s := range stops {
		if s.HasLocation() {
			remaining = append(remaining, s)
		} else {
			unlocated = append(unlocated, s)
		}
	}

	current := start
	for len(remaining) > 0 {
		next := 0
		nextDist := PlanarDistance(current, *remaining[0].Location)
		for i := 1; i < len(remaining); i++ {
			if d := PlanarDistance(current, *remaining[i].Location); d < nextDist {
				next, nextDist = i, d
			}
		}
		chosen := remaining[next]
		ordered = append(ordered, chosen)
		current = *chosen.Location
		remaining = append(remaining[:next:next], remaining[next+1:]...)
	}

	return append(ordered, unlocated...)
}
