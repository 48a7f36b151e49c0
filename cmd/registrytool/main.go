package main

import (
	"log"
	"os"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"hhc-instance-service/internal/adapters/registry"
	"hhc-instance-service/internal/config"
	"hhc-instance-service/internal/platform/db"
)

// registrytool initializes the Postgres registry schema and seeds it from
// the CSV exports, so instancegen can run against DATABASE_URL without
// rescanning the large facility file.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if strings.TrimSpace(databaseURL) == "" {
		log.Fatal("DATABASE_URL is required")
	}

	pg, err := db.Open(databaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer pg.Close()

	rosterPath := config.Get("REGISTRY_ROSTER_PATH", "data/registry/care_teams.csv")
	facilityPath := config.Get("REGISTRY_FACILITY_PATH", "data/registry/facilities.csv")

	log.Println("Initializing registry schema...")
	if err := registry.InitSchema(pg); err != nil {
		log.Fatalf("schema initialization failed: %v", err)
	}
	log.Println("Schema ready.")

	log.Println("Seeding registry from CSV exports...")
	if err := registry.SeedFromCSV(pg, rosterPath, facilityPath); err != nil {
		log.Fatalf("seeding failed: %v", err)
	}
	log.Println("Seeding complete.")
}
