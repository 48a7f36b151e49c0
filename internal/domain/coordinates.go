package domain

import "math"

// Mean Earth radius used by the haversine formula.
const EarthRadiusKm = 6371.0

// Immutable geographic coordinates (latitude, longitude) in decimal degrees.
type Coordinates struct {
	Lat float64
	Lon float64
}

// HaversineKm returns the great-circle distance to other in kilometers.
func (c Coordinates) HaversineKm(other Coordinates) float64 {
	lat1 := c.Lat * math.Pi / 180
	lon1 := c.Lon * math.Pi / 180
	lat2 := other.Lat * math.Pi / 180
	lon2 := other.Lon * math.Pi / 180

	dLat := lat2 - lat1
	dLon := lon2 - lon1

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	arc := 2 * math.Asin(math.Sqrt(a))

	return arc * EarthRadiusKm
}

// Round6 rounds both components to 6 decimal places, the precision the
// export formats guarantee.
func (c Coordinates) Round6() Coordinates {
	return Coordinates{
		Lat: math.Round(c.Lat*1e6) / 1e6,
		Lon: math.Round(c.Lon*1e6) / 1e6,
	}
}
