package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"

	"hhc-instance-service/internal/adapters/cache"
	"hhc-instance-service/internal/adapters/demographics"
	"hhc-instance-service/internal/adapters/registry"
	"hhc-instance-service/internal/adapters/store"
	"hhc-instance-service/internal/config"
	"hhc-instance-service/internal/platform/db"
	"hhc-instance-service/internal/ports"
	"hhc-instance-service/internal/services"
)

// main is the application composition root.
// It wires a registry source (Postgres when DATABASE_URL is set, CSV
// otherwise), an optional SQLite snapshot cache, and the file store, then
// runs the fixed instance set once.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	rosterPath := config.Get("REGISTRY_ROSTER_PATH", "data/registry/care_teams.csv")
	facilityPath := config.Get("REGISTRY_FACILITY_PATH", "data/registry/facilities.csv")
	demographicsPath := config.Get("DEMOGRAPHICS_PATH", "data/demographics/elderly_by_sector.csv")
	outDir := config.Get("INSTANCE_OUT_DIR", "data/instances")
	cachePath := config.Get("REGISTRY_CACHE_PATH", "data/registry_cache.db")
	snapshot := config.Get("REGISTRY_SNAPSHOT", "202508")

	var source ports.TeamRegistry
	if databaseURL := os.Getenv("DATABASE_URL"); strings.TrimSpace(databaseURL) != "" {
		pg, err := db.Open(databaseURL)
		if err != nil {
			log.Fatal(err)
		}
		defer pg.Close()
		source = registry.NewPostgresRegistry(pg)
		log.Printf("registry_source=postgres snapshot=%s", snapshot)
	} else {
		source = registry.NewCSVRegistry(rosterPath, facilityPath)
		log.Printf("registry_source=csv roster=%s facilities=%s", rosterPath, facilityPath)
	}

	// The snapshot cache makes repeated runs skip the large facility scan.
	teamSource := source
	if cachePath != "" {
		sqliteDB, err := openSqlite(cachePath)
		if err != nil {
			log.Fatal(err)
		}
		defer sqliteDB.Close()

		regCache := cache.NewSqliteRegistryCache(sqliteDB, snapshot, source)
		if err := regCache.InitSchema(); err != nil {
			log.Fatal(err)
		}
		teamSource = regCache
	}

	demo := demographics.NewCSVDemographics(demographicsPath)
	fileStore := store.NewFileStore(outDir)

	attribution := []string{
		"CNES/DATASUS team registry snapshot " + snapshot,
		"IBGE Census 2022 elderly population by sector",
	}

	report := services.GenerateSet(
		context.Background(),
		services.DefaultInstanceSet(),
		teamSource,
		demo,
		fileStore,
		attribution,
	)

	reportPath, err := fileStore.WriteReport(report)
	if err != nil {
		log.Fatal(err)
	}

	log.Printf(
		"run_id=%s configs=%d failed=%d report=%s",
		report.RunID, len(report.Results), report.Failed(), reportPath,
	)
	if report.Failed() > 0 {
		os.Exit(1)
	}
}

func openSqlite(path string) (*sql.DB, error) {
	sqliteDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite cache %q: %w", path, err)
	}
	if err := sqliteDB.Ping(); err != nil {
		return nil, fmt.Errorf("verify sqlite cache %q: %w", path, err)
	}
	return sqliteDB, nil
}
