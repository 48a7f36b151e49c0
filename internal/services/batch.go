package services

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"hhc-instance-service/internal/platform/obs"
	"hhc-instance-service/internal/ports"
)

// InstanceConfig names one entry of the batch: a size class with a pinned
// seed so every run of the set regenerates identical instances.
type InstanceConfig struct {
	Name     string
	Patients int
	Teams    int
	Seed     int64
}

// DefaultInstanceSet returns the fixed configuration list processed per
// run. Small instances are for debugging, medium for tests, large for
// experiments.
func DefaultInstanceSet() []InstanceConfig {
	return []InstanceConfig{
		{Name: "small_10", Patients: 10, Teams: 1, Seed: 42},
		{Name: "small_20", Patients: 20, Teams: 2, Seed: 123},
		{Name: "medium_50", Patients: 50, Teams: 3, Seed: 456},
		{Name: "medium_100", Patients: 100, Teams: 5, Seed: 789},
		{Name: "large_200", Patients: 200, Teams: 8, Seed: 1000},
		{Name: "large_500", Patients: 500, Teams: 15, Seed: 2000},
	}
}

// ConfigResult records the outcome of one configuration. Error is a string
// so the report serializes cleanly.
type ConfigResult struct {
	Name           string    `json:"name"`
	OK             bool      `json:"ok"`
	Error          string    `json:"error,omitempty"`
	NPatients      int       `json:"n_patients,omitempty"`
	NTeams         int       `json:"n_teams,omitempty"`
	Files          []string  `json:"files,omitempty"`
	DurationMillis int64     `json:"duration_ms"`
	FinishedAt     time.Time `json:"finished_at"`
}

// BatchReport summarizes one run over the configuration set.
type BatchReport struct {
	RunID      string         `json:"run_id"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Results    []ConfigResult `json:"results"`
}

// Failed returns the number of configurations that did not produce an
// instance.
func (r BatchReport) Failed() int {
	n := 0
	for _, res := range r.Results {
		if !res.OK {
			n++
		}
	}
	return n
}

// GenerateSet runs the pipeline once per configuration and persists each
// result. A failing configuration is recorded in the report and the run
// continues: one bad configuration must not discard the others.
func GenerateSet(
	ctx context.Context,
	configs []InstanceConfig,
	registry ports.TeamRegistry,
	demographics ports.DemographicsLoader,
	store ports.InstanceStore,
	attribution []string,
) BatchReport {
	report := BatchReport{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}
	ctx = context.WithValue(ctx, obs.RunIDKey, report.RunID)

	for _, cfg := range configs {
		start := time.Now()
		res := ConfigResult{Name: cfg.Name}

		req := GenerateRequest{
			Name:              cfg.Name,
			Patients:          cfg.Patients,
			Teams:             cfg.Teams,
			Seed:              cfg.Seed,
			SourceAttribution: attribution,
		}

		inst, err := GenerateInstance(ctx, req, registry, demographics)
		if err == nil {
			res.NPatients = inst.Metadata.NPatients
			res.NTeams = inst.Metadata.NTeams
			res.Files, err = store.Save(ctx, inst)
		}

		if err != nil {
			res.Error = err.Error()
			log.Printf("run_id=%s instance=%s status=failed err=%v", report.RunID, cfg.Name, err)
		} else {
			res.OK = true
			log.Printf("run_id=%s instance=%s status=ok patients=%d teams=%d", report.RunID, cfg.Name, res.NPatients, res.NTeams)
		}

		res.DurationMillis = time.Since(start).Milliseconds()
		res.FinishedAt = time.Now().UTC()
		report.Results = append(report.Results, res)
	}

	report.FinishedAt = time.Now().UTC()
	return report
}
