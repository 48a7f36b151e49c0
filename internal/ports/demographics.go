package ports

import "context"

// CensusSector is the elderly population of one census sector.
type CensusSector struct {
	Code              string
	ElderlyPopulation int
}

// Port: a boundary for loading per-sector demographic demand weights.
// The loader is optional input; a missing source is recoverable.
type DemographicsLoader interface {
	LoadSectors(ctx context.Context) ([]CensusSector, error)
}
