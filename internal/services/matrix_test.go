package services

import (
	"math"
	"math/rand"
	"testing"

	"hhc-instance-service/internal/domain"
)

func randomCoords(seed int64, n int) []domain.Coordinates {
	rng := rand.New(rand.NewSource(seed))
	placer := NewSpatialPlacer(rng)
	return placer.Place(domain.Coordinates{Lat: -23.5505, Lon: -46.6333}, 10, n)
}

func TestMatrixSymmetryAndDiagonal(t *testing.T) {
	depot := domain.Coordinates{Lat: -23.5505, Lon: -46.6333}
	matrix := BuildTravelTimeMatrix(depot, randomCoords(42, 30))

	if got := matrix.Size(); got != 31 {
		t.Fatalf("size = %d, want 31", got)
	}
	if err := matrix.Validate(); err != nil {
		t.Fatalf("matrix invariants violated: %v", err)
	}

	for i := 0; i < matrix.Size(); i++ {
		if matrix[i][i] != 0 {
			t.Fatalf("diagonal [%d][%d] = %v, want 0", i, i, matrix[i][i])
		}
		for j := 0; j < matrix.Size(); j++ {
			if matrix[i][j] != matrix[j][i] {
				t.Fatalf("[%d][%d] = %v but [%d][%d] = %v", i, j, matrix[i][j], j, i, matrix[j][i])
			}
		}
	}
}

func TestMatrixTriangleInequality(t *testing.T) {
	const eps = 1e-9
	depot := domain.Coordinates{Lat: -23.5505, Lon: -46.6333}
	matrix := BuildTravelTimeMatrix(depot, randomCoords(7, 15))

	n := matrix.Size()
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			for k := 0; k < n; k++ {
				if matrix[i][j] > matrix[i][k]+matrix[k][j]+eps {
					t.Fatalf(
						"triangle inequality violated: [%d][%d]=%v > [%d][%d]+[%d][%d]=%v",
						i, j, matrix[i][j], i, k, k, j, matrix[i][k]+matrix[k][j],
					)
				}
			}
		}
	}
}

func TestMatrixTravelTimeAtAverageSpeed(t *testing.T) {
	// A patient exactly 25 km north of the depot along a meridian must be
	// 60 minutes away at 25 km/h.
	depot := domain.Coordinates{Lat: 0, Lon: 0}
	patient := domain.Coordinates{Lat: 25.0 / domain.EarthRadiusKm * 180 / math.Pi, Lon: 0}

	matrix := BuildTravelTimeMatrix(depot, []domain.Coordinates{patient})

	if got := matrix[0][1]; math.Abs(got-60.0) > 1e-6 {
		t.Fatalf("matrix[0][1] = %v minutes, want 60.0", got)
	}
	if matrix[0][1] != matrix[1][0] {
		t.Fatalf("mirrored cells differ: %v vs %v", matrix[0][1], matrix[1][0])
	}
}

func TestMatrixMatchesSequentialComputation(t *testing.T) {
	depot := domain.Coordinates{Lat: -23.5505, Lon: -46.6333}
	coords := randomCoords(99, 40)

	matrix := BuildTravelTimeMatrix(depot, coords)

	nodes := append([]domain.Coordinates{depot}, coords...)
	for i := range nodes {
		for j := i + 1; j < len(nodes); j++ {
			want := travelMinutes(nodes[i], nodes[j])
			if matrix[i][j] != want {
				t.Fatalf("[%d][%d] = %v, want sequential %v", i, j, matrix[i][j], want)
			}
		}
	}
}
