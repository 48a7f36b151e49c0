package ports

import "context"

// TeamRecord is one joined facility+roster row: a care-team anchor as it
// comes out of the registry, before instance-level IDs and capacities are
// assigned.
type TeamRecord struct {
	UnitID   string
	TeamCode string
	KindCode int
	Lat      float64
	Lon      float64
}

// RegistryResult carries the loaded anchors together with explicit
// kept/dropped accounting, so coordinate losses are surfaced to the caller
// instead of being swallowed during load.
type RegistryResult struct {
	Teams   []TeamRecord
	Kept    int
	Dropped int
}

// Port: a boundary for loading care-team anchor records from a registry
// snapshot. Record order must be stable across calls for the same snapshot.
type TeamRegistry interface {
	LoadTeams(ctx context.Context) (RegistryResult, error)
}
