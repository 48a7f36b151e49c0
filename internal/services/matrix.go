package services

import (
	"sync"

	"hhc-instance-service/internal/domain"
)

// Assumed average urban travel speed for converting distance to time.
const averageSpeedKmh = 25.0

// travelMinutes converts the great-circle distance between two nodes into
// travel time at the fixed average speed.
func travelMinutes(a, b domain.Coordinates) float64 {
	return a.HaversineKm(b) / averageSpeedKmh * 60
}

// BuildTravelTimeMatrix computes the (n+1)x(n+1) pairwise travel-time
// matrix in minutes for the depot (index 0) and the patients (indices 1..n,
// in the order given). The matrix is exactly symmetric with a zero diagonal
// by construction: each unordered pair is computed once and mirrored.
//
// Rows are computed concurrently. Each goroutine owns the pairs (i, j) with
// j > i, so every cell is written exactly once and the result is
// bit-identical to the sequential computation.
func BuildTravelTimeMatrix(depot domain.Coordinates, patients []domain.Coordinates) domain.TravelTimeMatrix {
	n := len(patients)

	nodes := make([]domain.Coordinates, 0, n+1)
	nodes = append(nodes, depot)
	nodes = append(nodes, patients...)

	matrix := make(domain.TravelTimeMatrix, n+1)
	for i := range matrix {
		matrix[i] = make([]float64, n+1)
	}

	sem := make(chan struct{}, 8)
	var wg sync.WaitGroup

	for i := 0; i <= n; i++ {
		wg.Add(1)
		go func(i int) {
			sem <- struct{}{}
			defer wg.Done()
			defer func() { <-sem }()

			for j := i + 1; j <= n; j++ {
				t := travelMinutes(nodes[i], nodes[j])
				matrix[i][j] = t
				matrix[j][i] = t
			}
		}(i)
	}

	wg.Wait()
	return matrix
}
