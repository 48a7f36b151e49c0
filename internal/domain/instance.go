package domain

import "time"

// InstanceMetadata is attached verbatim at assembly time, never recomputed.
type InstanceMetadata struct {
	Name              string
	Seed              int64
	GeneratedAt       time.Time
	NPatients         int
	NTeams            int
	SourceAttribution []string
}

// Instance is the aggregate root of one generated problem: teams, patients
// and the full travel-time matrix. It is either fully assembled or not
// produced at all, and is never mutated after assembly.
type Instance struct {
	Metadata InstanceMetadata
	Teams    []CareTeam
	Patients []Patient
	Matrix   TravelTimeMatrix
}
