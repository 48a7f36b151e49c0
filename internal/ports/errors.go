package ports

import "errors"

var (
	// ErrRegistrySourceMissing marks a registry snapshot file or table that
	// does not exist. Fatal for the configuration being generated.
	ErrRegistrySourceMissing = errors.New("registry source missing")

	// ErrDemographicsMissing marks an absent demographic source. Recoverable:
	// generation falls back to unweighted placement.
	ErrDemographicsMissing = errors.New("demographics source missing")
)
