package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"hhc-instance-service/internal/ports"
)

// SQLite-backed cache for joined registry snapshots. The roster/facility
// join scans a very large facility export; caching the joined result keyed
// by snapshot label makes repeated batch runs cheap. Record order (and the
// kept/dropped counts) are preserved exactly, so cached and uncached runs
// produce identical instances.
type SqliteRegistryCache struct {
	DB       *sql.DB
	Snapshot string
	Source   ports.TeamRegistry
}

func NewSqliteRegistryCache(db *sql.DB, snapshot string, source ports.TeamRegistry) *SqliteRegistryCache {
	return &SqliteRegistryCache{DB: db, Snapshot: snapshot, Source: source}
}

// InitSchema creates the cache tables.
func (c *SqliteRegistryCache) InitSchema() error {
	if c.DB == nil {
		return errors.New("registry cache: DB is nil")
	}

	createSnapshotsQuery := `
	CREATE TABLE IF NOT EXISTS registry_snapshots (
		snapshot TEXT PRIMARY KEY,
		kept INTEGER NOT NULL,
		dropped INTEGER NOT NULL
	);
	`

	createTeamsQuery := `
	CREATE TABLE IF NOT EXISTS registry_teams (
		snapshot TEXT NOT NULL,
		pos INTEGER NOT NULL,
		unit_id TEXT NOT NULL,
		team_code TEXT NOT NULL,
		kind_code INTEGER NOT NULL,
		lat REAL NOT NULL,
		lon REAL NOT NULL,
		PRIMARY KEY (snapshot, pos)
	);
	`

	for i, stmt := range []string{createSnapshotsQuery, createTeamsQuery} {
		if _, err := c.DB.Exec(stmt); err != nil {
			return fmt.Errorf("registry cache: init schema statement #%d: %w", i+1, err)
		}
	}

	return nil
}

// LoadTeams serves the snapshot from the cache when present, otherwise
// delegates to the source and stores the result. A failed cache write is
// logged, not fatal: the freshly loaded result is still returned.
func (c *SqliteRegistryCache) LoadTeams(ctx context.Context) (ports.RegistryResult, error) {
	if c.DB == nil {
		return ports.RegistryResult{}, errors.New("registry cache: DB is nil")
	}
	if c.Snapshot == "" {
		return ports.RegistryResult{}, errors.New("registry cache: snapshot label must be non-empty")
	}

	cached, ok, err := c.get(ctx)
	if err != nil {
		return ports.RegistryResult{}, fmt.Errorf("registry cache: read snapshot %q: %w", c.Snapshot, err)
	}
	if ok {
		return cached, nil
	}

	result, err := c.Source.LoadTeams(ctx)
	if err != nil {
		return ports.RegistryResult{}, err
	}

	if err := c.put(ctx, result); err != nil {
		log.Printf("registry cache write failed: snapshot=%s err=%v", c.Snapshot, err)
	}

	return result, nil
}

func (c *SqliteRegistryCache) get(ctx context.Context) (ports.RegistryResult, bool, error) {
	var result ports.RegistryResult

	row := c.DB.QueryRowContext(ctx,
		`SELECT kept, dropped FROM registry_snapshots WHERE snapshot = ?;`, c.Snapshot)
	if err := row.Scan(&result.Kept, &result.Dropped); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ports.RegistryResult{}, false, nil
		}
		return ports.RegistryResult{}, false, fmt.Errorf("scan snapshot row: %w", err)
	}

	rows, err := c.DB.QueryContext(ctx, `
	SELECT unit_id, team_code, kind_code, lat, lon
	FROM registry_teams
	WHERE snapshot = ?
	ORDER BY pos;
	`, c.Snapshot)
	if err != nil {
		return ports.RegistryResult{}, false, fmt.Errorf("query registry_teams: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rec ports.TeamRecord
		if err := rows.Scan(&rec.UnitID, &rec.TeamCode, &rec.KindCode, &rec.Lat, &rec.Lon); err != nil {
			return ports.RegistryResult{}, false, fmt.Errorf("scan team row: %w", err)
		}
		result.Teams = append(result.Teams, rec)
	}
	if err := rows.Err(); err != nil {
		return ports.RegistryResult{}, false, fmt.Errorf("row iteration: %w", err)
	}

	return result, true, nil
}

func (c *SqliteRegistryCache) put(ctx context.Context, result ports.RegistryResult) error {
	tx, err := c.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO registry_snapshots (snapshot, kept, dropped) VALUES (?, ?, ?);`,
		c.Snapshot, result.Kept, result.Dropped,
	); err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT OR REPLACE INTO registry_teams (snapshot, pos, unit_id, team_code, kind_code, lat, lon)
	VALUES (?, ?, ?, ?, ?, ?, ?);
	`)
	if err != nil {
		return fmt.Errorf("prepare team insert: %w", err)
	}
	defer stmt.Close()

	for pos, rec := range result.Teams {
		if _, err := stmt.ExecContext(ctx, c.Snapshot, pos, rec.UnitID, rec.TeamCode, rec.KindCode, rec.Lat, rec.Lon); err != nil {
			return fmt.Errorf("insert team pos=%d: %w", pos, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}
