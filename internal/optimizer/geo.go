package optimizer

import (
	"math"

	"github.com/inflationfighter/price-service/internal/catalog"
)

// PlanarDistance returns the straight-line distance between two points in
// degrees, treating latitude and longitude as a flat plane. It is only used
// for ordering stops and for the fallback estimate.
func PlanarDistance(a, b catalog.Location) float64 {
	dLat := a.Latitude - b.Latitude
	dLng := a.Longitude - b.Longitude
	return math.Sqrt(dLat*dLat + dLng*dLng)
}

// PathDistance sums PlanarDistance along consecutive points.
func PathDistance(points []catalog.Location) float64 {
	var total float64
	for i := 1; i < len(points); i++ {
		total += PlanarDistance(points[i-1], points[i])
	}
	return total
}

// roundTo rounds v to the given number of decimal places, half away from zero.
func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
