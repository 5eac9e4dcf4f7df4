// Package matching implements the donor scoring and ranking engine.
package matching

import (
	"math"

	"donor-matching-engine/internal/models"
)

const earthRadiusKm = 6371.0

// DistanceKm returns the great-circle distance in kilometres between two
// coordinates using the haversine formula. Symmetric, total for any finite
// latitude/longitude pair.
func DistanceKm(a, b models.Coordinate) float64 {
	dLat := degreesToRadians(b.Latitude - a.Latitude)
	dLng := degreesToRadians(b.Longitude - a.Longitude)

	rLat1 := degreesToRadians(a.Latitude)
	rLat2 := degreesToRadians(b.Latitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
