package domain

import (
	"fmt"
	"math"
)

// TravelTimeMatrix holds pairwise travel times in minutes for the depot and
// patients. Index 0 is the depot; indices 1..n are patients in generation
// order. Row/column position is the only link between cells and patient
// identity.
type TravelTimeMatrix [][]float64

// Size returns the number of nodes (depot + patients).
func (m TravelTimeMatrix) Size() int { return len(m) }

// Validate checks the structural invariants: square shape, exact symmetry
// and a zero diagonal.
func (m TravelTimeMatrix) Validate() error {
	n := len(m)
	for i, row := range m {
		if len(row) != n {
			return fmt.Errorf("travel time matrix: row %d has %d columns, want %d", i, len(row), n)
		}
	}
	for i := 0; i < n; i++ {
		if m[i][i] != 0 {
			return fmt.Errorf("travel time matrix: diagonal [%d][%d] = %v, want 0", i, i, m[i][i])
		}
		for j := i + 1; j < n; j++ {
			if m[i][j] != m[j][i] {
				return fmt.Errorf("travel time matrix: [%d][%d] = %v but [%d][%d] = %v", i, j, m[i][j], j, i, m[j][i])
			}
			if math.IsNaN(m[i][j]) || m[i][j] < 0 {
				return fmt.Errorf("travel time matrix: [%d][%d] = %v is not a valid travel time", i, j, m[i][j])
			}
		}
	}
	return nil
}
