package services

import (
	"math"
	"math/rand"

	"hhc-instance-service/internal/domain"
)

// Approximate length of one degree of latitude in kilometers.
const kmPerDegree = 111.0

// DefaultRadiusKm is the dispersion radius used when a configuration does
// not override it. It approximates the operating radius of an urban team.
const DefaultRadiusKm = 10.0

// SpatialPlacer draws patient coordinates as independent 2-D Gaussian
// offsets around a reference center. The longitude sigma carries a cosine
// correction for the shrinking length of a longitude degree away from the
// equator.
type SpatialPlacer struct {
	rng *rand.Rand
}

func NewSpatialPlacer(rng *rand.Rand) *SpatialPlacer {
	return &SpatialPlacer{rng: rng}
}

// Place returns n coordinates dispersed around center, rounded to the
// 6-decimal precision the export formats guarantee. Draw order per patient
// is latitude offset then longitude offset.
func (p *SpatialPlacer) Place(center domain.Coordinates, radiusKm float64, n int) []domain.Coordinates {
	sigmaLat := radiusKm / kmPerDegree
	sigmaLon := radiusKm / (kmPerDegree * math.Cos(center.Lat*math.Pi/180))

	out := make([]domain.Coordinates, 0, n)
	for i := 0; i < n; i++ {
		c := domain.Coordinates{
			Lat: center.Lat + p.rng.NormFloat64()*sigmaLat,
			Lon: center.Lon + p.rng.NormFloat64()*sigmaLon,
		}
		out = append(out, c.Round6())
	}
	return out
}
