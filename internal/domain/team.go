package domain

// TeamKind classifies a home-care team by its registry type code.
//
// EMAD I/II are the multiprofessional home-care teams that own patient
// caseloads; EMAP and EMAP-R are support teams attached to them. Codes that
// are not part of this closed set parse to TeamKindUnrecognized instead of
// being silently dropped.
type TeamKind int

const (
	TeamKindUnrecognized TeamKind = iota
	TeamKindEMADI                 // registry code 22
	TeamKindEMADII                // registry code 46
	TeamKindEMAP                  // registry code 23
	TeamKindEMAPRural             // registry code 77
)

const (
	codeEMADI     = 22
	codeEMADII    = 46
	codeEMAP      = 23
	codeEMAPRural = 77
)

// ParseTeamKindCode maps a registry type code onto the closed TeamKind set.
func ParseTeamKindCode(code int) TeamKind {
	switch code {
	case codeEMADI:
		return TeamKindEMADI
	case codeEMADII:
		return TeamKindEMADII
	case codeEMAP:
		return TeamKindEMAP
	case codeEMAPRural:
		return TeamKindEMAPRural
	default:
		return TeamKindUnrecognized
	}
}

// ParseTeamKind is the inverse of String, for reading serialized instances.
func ParseTeamKind(s string) TeamKind {
	switch s {
	case "EMAD I":
		return TeamKindEMADI
	case "EMAD II":
		return TeamKindEMADII
	case "EMAP":
		return TeamKindEMAP
	case "EMAP-R":
		return TeamKindEMAPRural
	default:
		return TeamKindUnrecognized
	}
}

// Code returns the registry type code, or 0 for unrecognized kinds.
func (k TeamKind) Code() int {
	switch k {
	case TeamKindEMADI:
		return codeEMADI
	case TeamKindEMADII:
		return codeEMADII
	case TeamKindEMAP:
		return codeEMAP
	case TeamKindEMAPRural:
		return codeEMAPRural
	default:
		return 0
	}
}

func (k TeamKind) String() string {
	switch k {
	case TeamKindEMADI:
		return "EMAD I"
	case TeamKindEMADII:
		return "EMAD II"
	case TeamKindEMAP:
		return "EMAP"
	case TeamKindEMAPRural:
		return "EMAP-R"
	default:
		return "UNRECOGNIZED"
	}
}

// CareTeam is a care team anchored at its facility of record.
// Created once per instance from a registry sample; immutable thereafter.
type CareTeam struct {
	ID                   int
	UnitID               string
	TeamCode             string
	Kind                 TeamKind
	Anchor               Coordinates
	DailyCapacityMinutes int
}
