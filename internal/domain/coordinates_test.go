package domain

import (
	"math"
	"testing"
)

func TestHaversineKm(t *testing.T) {
	a := Coordinates{Lat: -23.5505, Lon: -46.6333}

	if d := a.HaversineKm(a); d != 0 {
		t.Fatalf("distance to self = %v, want 0", d)
	}

	// One degree of latitude along a meridian is R*pi/180 km.
	b := Coordinates{Lat: a.Lat + 1, Lon: a.Lon}
	want := EarthRadiusKm * math.Pi / 180
	if d := a.HaversineKm(b); math.Abs(d-want) > 1e-6 {
		t.Fatalf("meridian degree = %v km, want %v", d, want)
	}

	// Symmetric by definition.
	c := Coordinates{Lat: -22.9068, Lon: -43.1729}
	if d1, d2 := a.HaversineKm(c), c.HaversineKm(a); d1 != d2 {
		t.Fatalf("haversine not symmetric: %v vs %v", d1, d2)
	}
}

func TestRound6(t *testing.T) {
	c := Coordinates{Lat: -23.55051234999, Lon: -46.63331999499}
	r := c.Round6()

	if r.Lat != -23.550512 {
		t.Errorf("Lat = %v, want -23.550512", r.Lat)
	}
	if r.Lon != -46.63332 {
		t.Errorf("Lon = %v, want -46.63332", r.Lon)
	}

	// Rounding is idempotent.
	if r2 := r.Round6(); r2 != r {
		t.Errorf("Round6 not idempotent: %v vs %v", r2, r)
	}
}
