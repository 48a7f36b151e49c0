package registry

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"hhc-instance-service/internal/ports"
)

// InitSchema creates the registry tables used by PostgresRegistry.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createFacilitiesQuery := `
	CREATE TABLE IF NOT EXISTS facilities (
		unit_id TEXT PRIMARY KEY,
		latitude DOUBLE PRECISION,
		longitude DOUBLE PRECISION
	);
	`

	createCareTeamsQuery := `
	CREATE TABLE IF NOT EXISTS care_teams (
		unit_id TEXT NOT NULL,
		team_code TEXT NOT NULL,
		kind_code INTEGER NOT NULL,
		deactivated BOOLEAN NOT NULL DEFAULT FALSE,
		PRIMARY KEY (unit_id, team_code)
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_care_teams_kind_code
	ON care_teams(kind_code);
	`

	statements := []string{
		createFacilitiesQuery,
		createCareTeamsQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

// SeedFromCSV loads the registry exports into Postgres. Facilities with
// unparseable or zero coordinates are stored with NULLs so PostgresRegistry
// reproduces the CSV adapter's kept/dropped accounting.
func SeedFromCSV(db *sql.DB, rosterPath, facilityPath string) error {
	csvReg := NewCSVRegistry(rosterPath, facilityPath)

	roster, err := csvReg.readRoster()
	if err != nil {
		return fmt.Errorf("seed registry: %w", err)
	}
	if len(roster) == 0 {
		return errors.New("seed registry: roster contains no active home-care teams")
	}

	needed := make(map[string]struct{}, len(roster))
	for _, row := range roster {
		needed[row.unitID] = struct{}{}
	}

	facilities, err := readFacilityRows(facilityPath, needed)
	if err != nil {
		return fmt.Errorf("seed registry: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed registry: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	facStmt, err := tx.Prepare(`
	INSERT INTO facilities (unit_id, latitude, longitude)
	VALUES ($1, $2, $3)
	ON CONFLICT (unit_id) DO UPDATE
	SET latitude = EXCLUDED.latitude, longitude = EXCLUDED.longitude;
	`)
	if err != nil {
		return fmt.Errorf("seed registry: prepare facility insert: %w", err)
	}
	defer facStmt.Close()

	for unitID, row := range facilities {
		if _, err := facStmt.Exec(unitID, row.lat, row.lon); err != nil {
			return fmt.Errorf("seed registry: insert facility unit_id=%s: %w", unitID, err)
		}
	}

	teamStmt, err := tx.Prepare(`
	INSERT INTO care_teams (unit_id, team_code, kind_code, deactivated)
	VALUES ($1, $2, $3, FALSE)
	ON CONFLICT (unit_id, team_code) DO UPDATE
	SET kind_code = EXCLUDED.kind_code, deactivated = FALSE;
	`)
	if err != nil {
		return fmt.Errorf("seed registry: prepare team insert: %w", err)
	}
	defer teamStmt.Close()

	for _, row := range roster {
		if _, err := teamStmt.Exec(row.unitID, row.teamCode, row.kindCode); err != nil {
			return fmt.Errorf("seed registry: insert team unit_id=%s team_code=%s: %w", row.unitID, row.teamCode, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed registry: commit tx: %w", err)
	}

	return nil
}

type facilityRow struct {
	lat sql.NullFloat64
	lon sql.NullFloat64
}

// readFacilityRows keeps every requested facility, with NULL coordinates
// when parsing fails or the value is zero.
func readFacilityRows(path string, needed map[string]struct{}) (map[string]facilityRow, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("open facilities %q: %w", path, ports.ErrRegistrySourceMissing)
		}
		return nil, fmt.Errorf("open facilities %q: %w", path, err)
	}
	defer f.Close()

	reader := newRegistryCSVReader(f)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read facility header: %w", err)
	}

	cols, err := columnIndex(header, "CO_UNIDADE", "NU_LATITUDE", "NU_LONGITUDE")
	if err != nil {
		return nil, fmt.Errorf("facilities %q: %w", path, err)
	}

	out := make(map[string]facilityRow, len(needed))
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read facility row: %w", err)
		}
		if len(record) <= maxIndex(cols) {
			continue
		}

		unitID := strings.TrimSpace(record[cols["CO_UNIDADE"]])
		if _, ok := needed[unitID]; !ok {
			continue
		}

		var row facilityRow
		lat, latErr := parseCoordinate(record[cols["NU_LATITUDE"]])
		lon, lonErr := parseCoordinate(record[cols["NU_LONGITUDE"]])
		if latErr == nil && lonErr == nil && lat != 0 && lon != 0 {
			row.lat = sql.NullFloat64{Float64: lat, Valid: true}
			row.lon = sql.NullFloat64{Float64: lon, Valid: true}
		}

		out[unitID] = row
	}

	return out, nil
}
