package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"donor-matching-engine/internal/models"
)

func TestDistanceKmZeroForSamePoint(t *testing.T) {
	p := models.Coordinate{Latitude: 12.9716, Longitude: 77.5946}
	assert.InDelta(t, 0, DistanceKm(p, p), 1e-9)
}

func TestDistanceKmSymmetry(t *testing.T) {
	a := models.Coordinate{Latitude: 12.9716, Longitude: 77.5946}
	b := models.Coordinate{Latitude: 13.0827, Longitude: 80.2707}

	assert.InDelta(t, DistanceKm(a, b), DistanceKm(b, a), 1e-6)
}

func TestDistanceKmOneDegreeLatitude(t *testing.T) {
	// One degree of latitude is ~111.19 km on a 6371 km sphere.
	a := models.Coordinate{Latitude: 10, Longitude: 77}
	b := models.Coordinate{Latitude: 11, Longitude: 77}

	assert.InDelta(t, 111.195, DistanceKm(a, b), 0.01)
}

func TestDistanceKmKnownCityPair(t *testing.T) {
	bangalore := models.Coordinate{Latitude: 12.9716, Longitude: 77.5946}
	chennai := models.Coordinate{Latitude: 13.0827, Longitude: 80.2707}

	assert.InDelta(t, 290, DistanceKm(bangalore, chennai), 3)
}
