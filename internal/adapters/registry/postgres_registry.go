package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"hhc-instance-service/internal/platform/obs"
	"hhc-instance-service/internal/ports"
)

// PostgresRegistry loads care-team anchors from the care_teams/facilities
// tables populated by cmd/registrytool.
type PostgresRegistry struct{ DB *sql.DB }

func NewPostgresRegistry(db *sql.DB) *PostgresRegistry {
	return &PostgresRegistry{DB: db}
}

// LoadTeams returns active home-care teams in a stable order. Teams whose
// facility has no usable coordinates count as dropped, mirroring the CSV
// adapter.
func (p *PostgresRegistry) LoadTeams(ctx context.Context) (_ ports.RegistryResult, err error) {
	defer obs.Time(ctx, "registry.postgres.LoadTeams")(&err)

	if p.DB == nil {
		return ports.RegistryResult{}, errors.New("postgres registry: DB is nil")
	}

	query := `
	SELECT
		t.unit_id,
		t.team_code,
		t.kind_code,
		f.latitude,
		f.longitude
	FROM care_teams t
	LEFT JOIN facilities f ON f.unit_id = t.unit_id
	WHERE t.deactivated = FALSE
	ORDER BY t.unit_id, t.team_code;
	`
	rows, err := p.DB.QueryContext(ctx, query)
	if err != nil {
		return ports.RegistryResult{}, fmt.Errorf("postgres registry: query care_teams: %w", err)
	}
	defer rows.Close()

	var result ports.RegistryResult
	for rows.Next() {
		var (
			unitID, teamCode string
			kindCode         int
			lat, lon         sql.NullFloat64
		)
		if err := rows.Scan(&unitID, &teamCode, &kindCode, &lat, &lon); err != nil {
			return ports.RegistryResult{}, fmt.Errorf("postgres registry: scan row: %w", err)
		}

		if !lat.Valid || !lon.Valid || lat.Float64 == 0 || lon.Float64 == 0 {
			result.Dropped++
			continue
		}

		result.Teams = append(result.Teams, ports.TeamRecord{
			UnitID:   unitID,
			TeamCode: teamCode,
			KindCode: kindCode,
			Lat:      lat.Float64,
			Lon:      lon.Float64,
		})
	}
	if err := rows.Err(); err != nil {
		return ports.RegistryResult{}, fmt.Errorf("postgres registry: row iteration: %w", err)
	}
	result.Kept = len(result.Teams)

	return result, nil
}
