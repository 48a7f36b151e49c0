package store

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"hhc-instance-service/internal/domain"
)

// ReadInstance parses the JSON document form back into a domain Instance.
func ReadInstance(path string) (*domain.Instance, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read instance: read %q: %w", path, err)
	}

	var doc instanceDoc
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, fmt.Errorf("read instance: parse %q: %w", path, err)
	}

	teams, err := teamsFromDocs(doc.Teams)
	if err != nil {
		return nil, fmt.Errorf("read instance %q: %w", path, err)
	}

	patients, err := patientsFromDocs(doc.Patients)
	if err != nil {
		return nil, fmt.Errorf("read instance %q: %w", path, err)
	}

	matrix := domain.TravelTimeMatrix(doc.DistanceMatrix)
	if err := matrix.Validate(); err != nil {
		return nil, fmt.Errorf("read instance %q: %w", path, err)
	}

	return &domain.Instance{
		Metadata: domain.InstanceMetadata{
			Name:              doc.Metadata.Name,
			Seed:              doc.Metadata.Seed,
			GeneratedAt:       doc.Metadata.GeneratedAt,
			NPatients:         doc.Metadata.NPatients,
			NTeams:            doc.Metadata.NTeams,
			SourceAttribution: doc.Metadata.SourceAttribution,
		},
		Teams:    teams,
		Patients: patients,
		Matrix:   matrix,
	}, nil
}

func teamsFromDocs(docs []teamDoc) ([]domain.CareTeam, error) {
	teams := make([]domain.CareTeam, 0, len(docs))
	for _, t := range docs {
		teams = append(teams, domain.CareTeam{
			ID:                   t.ID,
			UnitID:               t.UnitID,
			TeamCode:             t.TeamCode,
			Kind:                 domain.ParseTeamKind(t.Kind),
			Anchor:               domain.Coordinates{Lat: t.Lat, Lon: t.Lon},
			DailyCapacityMinutes: t.DailyCapacityMinutes,
		})
	}
	return teams, nil
}

func patientsFromDocs(docs []patientDoc) ([]domain.Patient, error) {
	patients := make([]domain.Patient, 0, len(docs))
	for _, p := range docs {
		modality, err := domain.ParseModality(p.Modality)
		if err != nil {
			return nil, fmt.Errorf("patient %d: %w", p.ID, err)
		}
		window, err := domain.WindowFromBounds(p.WindowStart, p.WindowEnd)
		if err != nil {
			return nil, fmt.Errorf("patient %d: %w", p.ID, err)
		}
		patients = append(patients, domain.Patient{
			ID:             p.ID,
			Location:       domain.Coordinates{Lat: p.Lat, Lon: p.Lon},
			Modality:       modality,
			Window:         window,
			Frequency:      p.Frequency,
			FrequencyUnit:  p.FrequencyUnit,
			ServiceMinutes: p.ServiceMinutes,
			Priority:       p.Priority,
		})
	}
	return patients, nil
}

// ReadTeamsCSV parses the tabular team form.
func ReadTeamsCSV(path string) ([]domain.CareTeam, error) {
	rows, err := readCSVFile(path)
	if err != nil {
		return nil, fmt.Errorf("read teams csv: %w", err)
	}
	if len(rows) < 1 {
		return nil, fmt.Errorf("read teams csv: %q has no header", path)
	}

	teams := make([]domain.CareTeam, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if len(row) != 7 {
			return nil, fmt.Errorf("read teams csv: row %d has %d fields, want 7", i+1, len(row))
		}

		id, err := strconv.Atoi(row[0])
		if err != nil {
			return nil, fmt.Errorf("read teams csv: row %d id: %w", i+1, err)
		}
		lat, err := strconv.ParseFloat(row[4], 64)
		if err != nil {
			return nil, fmt.Errorf("read teams csv: row %d lat: %w", i+1, err)
		}
		lon, err := strconv.ParseFloat(row[5], 64)
		if err != nil {
			return nil, fmt.Errorf("read teams csv: row %d lon: %w", i+1, err)
		}
		capacity, err := strconv.Atoi(row[6])
		if err != nil {
			return nil, fmt.Errorf("read teams csv: row %d capacity: %w", i+1, err)
		}

		teams = append(teams, domain.CareTeam{
			ID:                   id,
			UnitID:               row[1],
			TeamCode:             row[2],
			Kind:                 domain.ParseTeamKind(row[3]),
			Anchor:               domain.Coordinates{Lat: lat, Lon: lon},
			DailyCapacityMinutes: capacity,
		})
	}

	return teams, nil
}

// ReadPatientsCSV parses the tabular patient form.
func ReadPatientsCSV(path string) ([]domain.Patient, error) {
	rows, err := readCSVFile(path)
	if err != nil {
		return nil, fmt.Errorf("read patients csv: %w", err)
	}
	if len(rows) < 1 {
		return nil, fmt.Errorf("read patients csv: %q has no header", path)
	}

	patients := make([]domain.Patient, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if len(row) != 10 {
			return nil, fmt.Errorf("read patients csv: row %d has %d fields, want 10", i+1, len(row))
		}

		var (
			doc patientDoc
			err error
		)
		if doc.ID, err = strconv.Atoi(row[0]); err != nil {
			return nil, fmt.Errorf("read patients csv: row %d id: %w", i+1, err)
		}
		if doc.Lat, err = strconv.ParseFloat(row[1], 64); err != nil {
			return nil, fmt.Errorf("read patients csv: row %d lat: %w", i+1, err)
		}
		if doc.Lon, err = strconv.ParseFloat(row[2], 64); err != nil {
			return nil, fmt.Errorf("read patients csv: row %d lon: %w", i+1, err)
		}
		doc.Modality = row[3]
		if doc.WindowStart, err = strconv.Atoi(row[4]); err != nil {
			return nil, fmt.Errorf("read patients csv: row %d window_start: %w", i+1, err)
		}
		if doc.WindowEnd, err = strconv.Atoi(row[5]); err != nil {
			return nil, fmt.Errorf("read patients csv: row %d window_end: %w", i+1, err)
		}
		if doc.Frequency, err = strconv.Atoi(row[6]); err != nil {
			return nil, fmt.Errorf("read patients csv: row %d frequency: %w", i+1, err)
		}
		doc.FrequencyUnit = row[7]
		if doc.ServiceMinutes, err = strconv.Atoi(row[8]); err != nil {
			return nil, fmt.Errorf("read patients csv: row %d service_minutes: %w", i+1, err)
		}
		if doc.Priority, err = strconv.Atoi(row[9]); err != nil {
			return nil, fmt.Errorf("read patients csv: row %d priority: %w", i+1, err)
		}

		parsed, err := patientsFromDocs([]patientDoc{doc})
		if err != nil {
			return nil, fmt.Errorf("read patients csv: %w", err)
		}
		patients = append(patients, parsed[0])
	}

	return patients, nil
}

// ReadMatrixCSV parses the square numeric grid form.
func ReadMatrixCSV(path string) (domain.TravelTimeMatrix, error) {
	rows, err := readCSVFile(path)
	if err != nil {
		return nil, fmt.Errorf("read matrix csv: %w", err)
	}

	matrix := make(domain.TravelTimeMatrix, 0, len(rows))
	for i, row := range rows {
		cells := make([]float64, 0, len(row))
		for j, cell := range row {
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("read matrix csv: cell [%d][%d]: %w", i, j, err)
			}
			cells = append(cells, v)
		}
		matrix = append(matrix, cells)
	}

	if err := matrix.Validate(); err != nil {
		return nil, fmt.Errorf("read matrix csv %q: %w", path, err)
	}

	return matrix, nil
}

func readCSVFile(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", path, err)
	}
	return rows, nil
}
