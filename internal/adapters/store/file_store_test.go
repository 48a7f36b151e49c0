package store

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"hhc-instance-service/internal/domain"
	"hhc-instance-service/internal/ports"
	"hhc-instance-service/internal/services"
)

func fixtureInstance() *domain.Instance {
	return &domain.Instance{
		Metadata: domain.InstanceMetadata{
			Name:              "small_2",
			Seed:              42,
			GeneratedAt:       time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
			NPatients:         2,
			NTeams:            1,
			SourceAttribution: []string{"test registry snapshot"},
		},
		Teams: []domain.CareTeam{
			{
				ID:                   1,
				UnitID:               "2077485",
				TeamCode:             "0001",
				Kind:                 domain.TeamKindEMADI,
				Anchor:               domain.Coordinates{Lat: -23.5505, Lon: -46.6333},
				DailyCapacityMinutes: 420,
			},
		},
		Patients: []domain.Patient{
			{
				ID:             1,
				Location:       domain.Coordinates{Lat: -23.551234, Lon: -46.640987},
				Modality:       domain.ModalityStandard,
				Window:         domain.WindowMorning,
				Frequency:      2,
				FrequencyUnit:  domain.FrequencyUnitWeekly,
				ServiceMinutes: 45,
				Priority:       2,
			},
			{
				ID:             2,
				Location:       domain.Coordinates{Lat: -23.549871, Lon: -46.629456},
				Modality:       domain.ModalityIntensive,
				Window:         domain.WindowFullDay,
				Frequency:      6,
				FrequencyUnit:  domain.FrequencyUnitWeekly,
				ServiceMinutes: 75,
				Priority:       3,
			},
		},
		Matrix: domain.TravelTimeMatrix{
			{0, 1.8342909871234, 0.9921345678901},
			{1.8342909871234, 0, 2.7310987612345},
			{0.9921345678901, 2.7310987612345, 0},
		},
	}
}

func TestFileStoreSaveAndReadInstance(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir)
	inst := fixtureInstance()

	paths, err := s.Save(context.Background(), inst)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if len(paths) != 4 {
		t.Fatalf("paths = %v, want 4 files", paths)
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("missing output file %q: %v", p, err)
		}
	}

	back, err := ReadInstance(filepath.Join(dir, "small_2.json"))
	if err != nil {
		t.Fatalf("read instance: %v", err)
	}
	if !reflect.DeepEqual(inst, back) {
		t.Fatalf("round trip mismatch:\nwrote %+v\nread  %+v", inst, back)
	}
}

func TestFileStoreCSVRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir)
	inst := fixtureInstance()

	if _, err := s.Save(context.Background(), inst); err != nil {
		t.Fatalf("save: %v", err)
	}

	teams, err := ReadTeamsCSV(filepath.Join(dir, "small_2_teams.csv"))
	if err != nil {
		t.Fatalf("read teams: %v", err)
	}
	if !reflect.DeepEqual(inst.Teams, teams) {
		t.Fatalf("teams mismatch:\nwrote %+v\nread  %+v", inst.Teams, teams)
	}

	patients, err := ReadPatientsCSV(filepath.Join(dir, "small_2_patients.csv"))
	if err != nil {
		t.Fatalf("read patients: %v", err)
	}
	if !reflect.DeepEqual(inst.Patients, patients) {
		t.Fatalf("patients mismatch:\nwrote %+v\nread  %+v", inst.Patients, patients)
	}

	matrix, err := ReadMatrixCSV(filepath.Join(dir, "small_2_matrix.csv"))
	if err != nil {
		t.Fatalf("read matrix: %v", err)
	}
	if !reflect.DeepEqual(inst.Matrix, matrix) {
		t.Fatalf("matrix mismatch:\nwrote %+v\nread  %+v", inst.Matrix, matrix)
	}
}

type fixedRegistry struct{}

func (fixedRegistry) LoadTeams(ctx context.Context) (ports.RegistryResult, error) {
	return ports.RegistryResult{
		Teams: []ports.TeamRecord{
			{UnitID: "2077485", TeamCode: "0001", KindCode: 22, Lat: -23.5505, Lon: -46.6333},
		},
		Kept: 1,
	}, nil
}

func TestFileStoreBytesIdenticalAcrossRuns(t *testing.T) {
	ctx := context.Background()
	req := services.GenerateRequest{
		Name:        "small_10",
		Patients:    10,
		Teams:       1,
		Seed:        42,
		GeneratedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}

	dirA, dirB := t.TempDir(), t.TempDir()
	for _, dir := range []string{dirA, dirB} {
		inst, err := services.GenerateInstance(ctx, req, fixedRegistry{}, nil)
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if _, err := NewFileStore(dir).Save(ctx, inst); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	// Same seed, same pinned timestamp: every output file must match byte
	// for byte across independent runs.
	for _, name := range []string{
		"small_10.json", "small_10_teams.csv", "small_10_patients.csv", "small_10_matrix.csv",
	} {
		a, err := os.ReadFile(filepath.Join(dirA, name))
		if err != nil {
			t.Fatal(err)
		}
		b, err := os.ReadFile(filepath.Join(dirB, name))
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(a, b) {
			t.Fatalf("%s differs between runs", name)
		}
	}
}

func TestFileStoreLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	if _, err := NewFileStore(dir).Save(context.Background(), fixtureInstance()); err != nil {
		t.Fatalf("save: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".tmp" {
			t.Fatalf("temp file left behind: %s", e.Name())
		}
	}
}

func TestWriteReport(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir)

	report := services.BatchReport{
		RunID:      "test-run",
		StartedAt:  time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		FinishedAt: time.Date(2026, 8, 1, 12, 0, 5, 0, time.UTC),
		Results: []services.ConfigResult{
			{Name: "small_10", OK: true, NPatients: 10, NTeams: 1},
		},
	}

	path, err := s.WriteReport(report)
	if err != nil {
		t.Fatalf("write report: %v", err)
	}
	payload, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(payload, []byte(`"test-run"`)) || !bytes.Contains(payload, []byte(`"small_10"`)) {
		t.Fatalf("report payload missing expected fields:\n%s", payload)
	}
}
