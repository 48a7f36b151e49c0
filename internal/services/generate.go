package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"hhc-instance-service/internal/domain"
	"hhc-instance-service/internal/platform/obs"
	"hhc-instance-service/internal/ports"
)

// GenerateRequest parameterizes one instance generation.
type GenerateRequest struct {
	Name     string
	Patients int
	Teams    int
	Seed     int64

	// RadiusKm is the placement dispersion radius; zero means DefaultRadiusKm.
	RadiusKm float64

	// GeneratedAt overrides the metadata timestamp; the zero value means the
	// current UTC time. Everything except this timestamp is fully determined
	// by the seed and the registry snapshot.
	GeneratedAt time.Time

	// SourceAttribution is attached to metadata verbatim.
	SourceAttribution []string
}

func (r GenerateRequest) validate() error {
	if r.Name == "" {
		return errors.New("name must be non-empty")
	}
	if r.Patients < 1 {
		return fmt.Errorf("patients must be >= 1, got %d", r.Patients)
	}
	if r.Teams < 1 {
		return fmt.Errorf("teams must be >= 1, got %d", r.Teams)
	}
	return nil
}

// GenerateInstance runs the linear pipeline for one configuration:
// load registry -> sample attributes -> place coordinates -> build matrix ->
// assemble. The random stream is seeded exactly once, upstream of all
// sub-components, so a fixed seed plus a fixed registry snapshot yields
// byte-identical output (timestamp aside).
func GenerateInstance(
	ctx context.Context,
	req GenerateRequest,
	registry ports.TeamRegistry,
	demographics ports.DemographicsLoader,
) (_ *domain.Instance, err error) {
	defer obs.Time(ctx, "generate."+req.Name)(&err)

	if err := req.validate(); err != nil {
		return nil, fmt.Errorf("generate instance %q: %w", req.Name, err)
	}

	reg, err := registry.LoadTeams(ctx)
	if err != nil {
		return nil, fmt.Errorf("generate instance %q: load teams: %w", req.Name, err)
	}
	if reg.Dropped > 0 {
		log.Printf("instance=%s registry_kept=%d registry_dropped=%d", req.Name, reg.Kept, reg.Dropped)
	}
	if len(reg.Teams) == 0 {
		return nil, fmt.Errorf("generate instance %q: registry has no usable teams", req.Name)
	}

	// Requesting more teams than the registry holds degrades the instance
	// size rather than failing the run.
	nTeams := req.Teams
	if nTeams > len(reg.Teams) {
		log.Printf("instance=%s warn=insufficient_teams requested=%d available=%d", req.Name, req.Teams, len(reg.Teams))
		nTeams = len(reg.Teams)
	}

	teams := make([]domain.CareTeam, 0, nTeams)
	for i, rec := range reg.Teams[:nTeams] {
		teams = append(teams, domain.CareTeam{
			ID:       i + 1,
			UnitID:   rec.UnitID,
			TeamCode: rec.TeamCode,
			Kind:     domain.ParseTeamKindCode(rec.KindCode),
			Anchor:   domain.Coordinates{Lat: rec.Lat, Lon: rec.Lon},
		})
	}

	// TODO(placement): sectors are loaded and counted but not used as
	// placement weights; the accompanying methodology describes
	// population-weighted placement while the observed behaviour is an
	// unweighted Gaussian around the team centroid. Pending confirmation
	// with the data owners before changing either the docs or the sampler.
	if demographics != nil {
		sectors, derr := demographics.LoadSectors(ctx)
		switch {
		case errors.Is(derr, ports.ErrDemographicsMissing):
			log.Printf("instance=%s warn=demographics_missing placement=unweighted", req.Name)
		case derr != nil:
			return nil, fmt.Errorf("generate instance %q: load sectors: %w", req.Name, derr)
		default:
			log.Printf("instance=%s census_sectors=%d placement=unweighted", req.Name, len(sectors))
		}
	}

	rng := rand.New(rand.NewSource(req.Seed))
	sampler := NewAttributeSampler(rng)
	placer := NewSpatialPlacer(rng)

	attrs := sampler.Sample(req.Patients)

	radius := req.RadiusKm
	if radius == 0 {
		radius = DefaultRadiusKm
	}
	coords := placer.Place(teamCentroid(teams), radius, req.Patients)

	patients := make([]domain.Patient, 0, req.Patients)
	for i := 0; i < req.Patients; i++ {
		patients = append(patients, domain.Patient{
			ID:             i + 1,
			Location:       coords[i],
			Modality:       attrs[i].Modality,
			Window:         attrs[i].Window,
			Frequency:      attrs[i].Frequency,
			FrequencyUnit:  domain.FrequencyUnitWeekly,
			ServiceMinutes: attrs[i].ServiceMinutes,
			Priority:       attrs[i].Modality.Priority(),
		})
	}

	// Depot is the first selected team's anchor.
	matrix := BuildTravelTimeMatrix(teams[0].Anchor, coords)
	if err := matrix.Validate(); err != nil {
		return nil, fmt.Errorf("generate instance %q: %w", req.Name, err)
	}

	// Capacities are drawn last, after the matrix, to keep the draw order
	// stable for reproducibility.
	for i := range teams {
		teams[i].DailyCapacityMinutes = sampler.DrawDailyCapacity()
	}

	generatedAt := req.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now().UTC()
	}

	return &domain.Instance{
		Metadata: domain.InstanceMetadata{
			Name:              req.Name,
			Seed:              req.Seed,
			GeneratedAt:       generatedAt,
			NPatients:         len(patients),
			NTeams:            len(teams),
			SourceAttribution: req.SourceAttribution,
		},
		Teams:    teams,
		Patients: patients,
		Matrix:   matrix,
	}, nil
}

// teamCentroid is the mean anchor of the selected teams, the reference
// center for patient placement.
func teamCentroid(teams []domain.CareTeam) domain.Coordinates {
	var lat, lon float64
	for _, t := range teams {
		lat += t.Anchor.Lat
		lon += t.Anchor.Lon
	}
	n := float64(len(teams))
	return domain.Coordinates{Lat: lat / n, Lon: lon / n}
}
