package registry

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"hhc-instance-service/internal/platform/obs"
	"hhc-instance-service/internal/ports"
)

// Registry type codes for home-care teams in the roster export.
var homeCareKindCodes = map[int]struct{}{
	22: {}, // EMAD I
	46: {}, // EMAD II
	23: {}, // EMAP
	77: {}, // EMAP-R
}

// CSVRegistry loads care-team anchors by joining the team-roster export
// with the facility export on the unit code. Both files are
// semicolon-separated registry dumps; facility coordinates use decimal
// commas.
type CSVRegistry struct {
	RosterPath   string
	FacilityPath string
}

func NewCSVRegistry(rosterPath, facilityPath string) *CSVRegistry {
	return &CSVRegistry{RosterPath: rosterPath, FacilityPath: facilityPath}
}

type rosterRow struct {
	unitID   string
	teamCode string
	kindCode int
}

// LoadTeams joins the two exports and reports kept/dropped counts. A roster
// row is dropped when its facility has missing, zero or unparseable
// coordinates; the caller decides what to do with the count.
func (r *CSVRegistry) LoadTeams(ctx context.Context) (_ ports.RegistryResult, err error) {
	defer obs.Time(ctx, "registry.csv.LoadTeams")(&err)

	roster, err := r.readRoster()
	if err != nil {
		return ports.RegistryResult{}, fmt.Errorf("load teams: %w", err)
	}

	needed := make(map[string]struct{}, len(roster))
	for _, row := range roster {
		needed[row.unitID] = struct{}{}
	}

	coords, err := r.readFacilityCoords(needed)
	if err != nil {
		return ports.RegistryResult{}, fmt.Errorf("load teams: %w", err)
	}

	result := ports.RegistryResult{Teams: make([]ports.TeamRecord, 0, len(roster))}
	for _, row := range roster {
		c, ok := coords[row.unitID]
		if !ok {
			result.Dropped++
			continue
		}
		result.Teams = append(result.Teams, ports.TeamRecord{
			UnitID:   row.unitID,
			TeamCode: row.teamCode,
			KindCode: row.kindCode,
			Lat:      c.lat,
			Lon:      c.lon,
		})
	}
	result.Kept = len(result.Teams)

	return result, nil
}

// readRoster returns active home-care teams in file order.
func (r *CSVRegistry) readRoster() ([]rosterRow, error) {
	f, err := os.Open(r.RosterPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("open roster %q: %w", r.RosterPath, ports.ErrRegistrySourceMissing)
		}
		return nil, fmt.Errorf("open roster %q: %w", r.RosterPath, err)
	}
	defer f.Close()

	reader := newRegistryCSVReader(f)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read roster header: %w", err)
	}

	cols, err := columnIndex(header, "CO_UNIDADE", "CO_EQUIPE", "TP_EQUIPE", "DT_DESATIVACAO")
	if err != nil {
		return nil, fmt.Errorf("roster %q: %w", r.RosterPath, err)
	}

	var rows []rosterRow
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read roster row: %w", err)
		}
		if len(record) <= maxIndex(cols) {
			continue
		}

		// Deactivated teams carry a deactivation date; skip them.
		if strings.TrimSpace(record[cols["DT_DESATIVACAO"]]) != "" {
			continue
		}

		kindCode, err := strconv.Atoi(strings.TrimSpace(record[cols["TP_EQUIPE"]]))
		if err != nil {
			continue
		}
		if _, ok := homeCareKindCodes[kindCode]; !ok {
			continue
		}

		rows = append(rows, rosterRow{
			unitID:   strings.TrimSpace(record[cols["CO_UNIDADE"]]),
			teamCode: strings.TrimSpace(record[cols["CO_EQUIPE"]]),
			kindCode: kindCode,
		})
	}

	return rows, nil
}

type facilityCoord struct {
	lat float64
	lon float64
}

// readFacilityCoords streams the (large) facility export and keeps valid
// coordinates for the requested units only.
func (r *CSVRegistry) readFacilityCoords(needed map[string]struct{}) (map[string]facilityCoord, error) {
	f, err := os.Open(r.FacilityPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("open facilities %q: %w", r.FacilityPath, ports.ErrRegistrySourceMissing)
		}
		return nil, fmt.Errorf("open facilities %q: %w", r.FacilityPath, err)
	}
	defer f.Close()

	reader := newRegistryCSVReader(f)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read facility header: %w", err)
	}

	cols, err := columnIndex(header, "CO_UNIDADE", "NU_LATITUDE", "NU_LONGITUDE")
	if err != nil {
		return nil, fmt.Errorf("facilities %q: %w", r.FacilityPath, err)
	}

	out := make(map[string]facilityCoord, len(needed))
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

		lat, latErr := parseCoordinate(record[cols["NU_LATITUDE"]])
		lon, lonErr := parseCoordinate(record[cols["NU_LONGITUDE"]])
		if latErr != nil || lonErr != nil {
			continue
		}
		if lat == 0 || lon == 0 {
			continue
		}

		out[unitID] = facilityCoord{lat: lat, lon: lon}
	}

	return out, nil
}

// newRegistryCSVReader configures a reader for the registry export dialect:
// semicolon separator, quoting not guaranteed, ragged rows tolerated.
func newRegistryCSVReader(f io.Reader) *csv.Reader {
	reader := csv.NewReader(f)
	reader.Comma = ';'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	return reader
}

// columnIndex maps the wanted header names to their positions.
func columnIndex(header []string, wanted ...string) (map[string]int, error) {
	idx := make(map[string]int, len(wanted))
	for i, name := range header {
		idx[strings.TrimSpace(name)] = i
	}

	out := make(map[string]int, len(wanted))
	for _, name := range wanted {
		i, ok := idx[name]
		if !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
		out[name] = i
	}
	return out, nil
}

// maxIndex returns the highest column position in use, to guard against
// ragged rows.
func maxIndex(cols map[string]int) int {
	max := 0
	for _, i := range cols {
		if i > max {
			max = i
		}
	}
	return max
}

// parseCoordinate parses a registry coordinate, which may use a decimal
// comma.
func parseCoordinate(s string) (float64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return 0, errors.New("empty coordinate")
	}
	return strconv.ParseFloat(s, 64)
}
