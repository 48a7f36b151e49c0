package store

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"hhc-instance-service/internal/domain"
	"hhc-instance-service/internal/platform/obs"
	"hhc-instance-service/internal/services"
)

// FileStore persists instances under one output directory in both the JSON
// document form and the flat tabular form. Numeric values are written with
// the shortest representation that parses back to the same float64, so both
// forms round-trip exactly.
type FileStore struct {
	Dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{Dir: dir}
}

// Serialized forms. These stay separate from the domain types so the wire
// shape can hold stable field names independent of internal naming.

type metadataDoc struct {
	Name              string    `json:"name"`
	GeneratedAt       time.Time `json:"generated_at"`
	Seed              int64     `json:"seed"`
	NPatients         int       `json:"n_patients"`
	NTeams            int       `json:"n_teams"`
	SourceAttribution []string  `json:"source_attribution"`
}

type teamDoc struct {
	ID                   int     `json:"id"`
	UnitID               string  `json:"unit_id"`
	TeamCode             string  `json:"team_code"`
	Kind                 string  `json:"kind"`
	Lat                  float64 `json:"lat"`
	Lon                  float64 `json:"lon"`
	DailyCapacityMinutes int     `json:"daily_capacity_minutes"`
}

type patientDoc struct {
	ID             int     `json:"id"`
	Lat            float64 `json:"lat"`
	Lon            float64 `json:"lon"`
	Modality       string  `json:"modality"`
	WindowStart    int     `json:"window_start"`
	WindowEnd      int     `json:"window_end"`
	Frequency      int     `json:"frequency"`
	FrequencyUnit  string  `json:"frequency_unit"`
	ServiceMinutes int     `json:"service_minutes"`
	Priority       int     `json:"priority"`
}

type instanceDoc struct {
	Metadata       metadataDoc  `json:"metadata"`
	Teams          []teamDoc    `json:"teams"`
	Patients       []patientDoc `json:"patients"`
	DistanceMatrix [][]float64  `json:"distance_matrix"`
}

func toDoc(inst *domain.Instance) instanceDoc {
	doc := instanceDoc{
		Metadata: metadataDoc{
			Name:              inst.Metadata.Name,
			GeneratedAt:       inst.Metadata.GeneratedAt,
			Seed:              inst.Metadata.Seed,
			NPatients:         inst.Metadata.NPatients,
			NTeams:            inst.Metadata.NTeams,
			SourceAttribution: inst.Metadata.SourceAttribution,
		},
		Teams:          make([]teamDoc, 0, len(inst.Teams)),
		Patients:       make([]patientDoc, 0, len(inst.Patients)),
		DistanceMatrix: inst.Matrix,
	}

	for _, t := range inst.Teams {
		doc.Teams = append(doc.Teams, teamDoc{
			ID:                   t.ID,
			UnitID:               t.UnitID,
			TeamCode:             t.TeamCode,
			Kind:                 t.Kind.String(),
			Lat:                  t.Anchor.Lat,
			Lon:                  t.Anchor.Lon,
			DailyCapacityMinutes: t.DailyCapacityMinutes,
		})
	}

	for _, p := range inst.Patients {
		start, end := p.Window.Bounds()
		doc.Patients = append(doc.Patients, patientDoc{
			ID:             p.ID,
			Lat:            p.Location.Lat,
			Lon:            p.Location.Lon,
			Modality:       p.Modality.String(),
			WindowStart:    start,
			WindowEnd:      end,
			Frequency:      p.Frequency,
			FrequencyUnit:  p.FrequencyUnit,
			ServiceMinutes: p.ServiceMinutes,
			Priority:       p.Priority,
		})
	}

	return doc
}

// Save writes <name>.json plus the three tabular files and returns every
// path written. The instance is written whole or not at all: all files go
// through temp-file renames within the target directory.
func (s *FileStore) Save(ctx context.Context, inst *domain.Instance) (_ []string, err error) {
	defer obs.Time(ctx, "store.Save."+inst.Metadata.Name)(&err)

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("save instance %q: create output dir: %w", inst.Metadata.Name, err)
	}

	name := inst.Metadata.Name
	doc := toDoc(inst)

	jsonPath := filepath.Join(s.Dir, name+".json")
	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("save instance %q: marshal json: %w", name, err)
	}
	if err := writeFileAtomic(jsonPath, append(payload, '\n')); err != nil {
		return nil, fmt.Errorf("save instance %q: %w", name, err)
	}

	teamsPath := filepath.Join(s.Dir, name+"_teams.csv")
	if err := writeTeamsCSV(teamsPath, doc.Teams); err != nil {
		return nil, fmt.Errorf("save instance %q: %w", name, err)
	}

	patientsPath := filepath.Join(s.Dir, name+"_patients.csv")
	if err := writePatientsCSV(patientsPath, doc.Patients); err != nil {
		return nil, fmt.Errorf("save instance %q: %w", name, err)
	}

	matrixPath := filepath.Join(s.Dir, name+"_matrix.csv")
	if err := writeMatrixCSV(matrixPath, inst.Matrix); err != nil {
		return nil, fmt.Errorf("save instance %q: %w", name, err)
	}

	return []string{jsonPath, teamsPath, patientsPath, matrixPath}, nil
}

// WriteReport writes the batch report next to the instances.
func (s *FileStore) WriteReport(report services.BatchReport) (string, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("write report: create output dir: %w", err)
	}

	payload, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("write report: marshal json: %w", err)
	}

	path := filepath.Join(s.Dir, "report.json")
	if err := writeFileAtomic(path, append(payload, '\n')); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}

	return path, nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %q: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename %q: %w", path, err)
	}
	return nil
}

func writeTeamsCSV(path string, teams []teamDoc) error {
	rows := make([][]string, 0, 1+len(teams))
	rows = append(rows, []string{"id", "unit_id", "team_code", "kind", "lat", "lon", "daily_capacity_minutes"})
	for _, t := range teams {
		rows = append(rows, []string{
			strconv.Itoa(t.ID),
			t.UnitID,
			t.TeamCode,
			t.Kind,
			formatFloat(t.Lat),
			formatFloat(t.Lon),
			strconv.Itoa(t.DailyCapacityMinutes),
		})
	}
	return writeCSVFile(path, rows)
}

func writePatientsCSV(path string, patients []patientDoc) error {
	rows := make([][]string, 0, 1+len(patients))
	rows = append(rows, []string{
		"id", "lat", "lon", "modality", "window_start", "window_end",
		"frequency", "frequency_unit", "service_minutes", "priority",
	})
	for _, p := range patients {
		rows = append(rows, []string{
			strconv.Itoa(p.ID),
			formatFloat(p.Lat),
			formatFloat(p.Lon),
			p.Modality,
			strconv.Itoa(p.WindowStart),
			strconv.Itoa(p.WindowEnd),
			strconv.Itoa(p.Frequency),
			p.FrequencyUnit,
			strconv.Itoa(p.ServiceMinutes),
			strconv.Itoa(p.Priority),
		})
	}
	return writeCSVFile(path, rows)
}

// The matrix file is a bare square numeric grid; row/column index is
// implicit (0 = depot, 1..n = patients in generation order).
func writeMatrixCSV(path string, matrix domain.TravelTimeMatrix) error {
	rows := make([][]string, 0, len(matrix))
	for _, row := range matrix {
		cells := make([]string, 0, len(row))
		for _, v := range row {
			cells = append(cells, formatFloat(v))
		}
		rows = append(rows, cells)
	}
	return writeCSVFile(path, rows)
}

func writeCSVFile(path string, rows [][]string) error {
	f, err := os.Create(path + ".tmp")
	if err != nil {
		return fmt.Errorf("create %q: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return fmt.Errorf("write %q: %w", path, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flush %q: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %q: %w", path, err)
	}
	if err := os.Rename(path+".tmp", path); err != nil {
		return fmt.Errorf("rename %q: %w", path, err)
	}

	return nil
}

// formatFloat emits the shortest decimal string that parses back to the
// identical float64.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
