package cache

import (
	"context"
	"database/sql"
	"errors"
	"reflect"
	"testing"

	_ "modernc.org/sqlite"

	"hhc-instance-service/internal/ports"
)

// countingRegistry serves a fixed result and counts loads.
type countingRegistry struct {
	result ports.RegistryResult
	err    error
	calls  int
}

func (s *countingRegistry) LoadTeams(ctx context.Context) (ports.RegistryResult, error) {
	s.calls++
	if s.err != nil {
		return ports.RegistryResult{}, s.err
	}
	return s.result, nil
}

func testResult() ports.RegistryResult {
	return ports.RegistryResult{
		Teams: []ports.TeamRecord{
			{UnitID: "2077485", TeamCode: "0001", KindCode: 22, Lat: -23.5505, Lon: -46.6333},
			{UnitID: "2077486", TeamCode: "0002", KindCode: 46, Lat: -23.5610, Lon: -46.6560},
			{UnitID: "2077488", TeamCode: "0004", KindCode: 77, Lat: -23.5400, Lon: -46.6200},
		},
		Kept:    3,
		Dropped: 2,
	}
}

func openTestCache(t *testing.T, source ports.TeamRegistry) *SqliteRegistryCache {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// Every pooled connection would open its own in-memory database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	c := NewSqliteRegistryCache(db, "2026-08", source)
	if err := c.InitSchema(); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	return c
}

func TestCacheMissDelegatesAndStores(t *testing.T) {
	source := &countingRegistry{result: testResult()}
	c := openTestCache(t, source)
	ctx := context.Background()

	first, err := c.LoadTeams(ctx)
	if err != nil {
		t.Fatalf("first load: %v", err)
	}
	if source.calls != 1 {
		t.Fatalf("source calls = %d, want 1", source.calls)
	}
	if !reflect.DeepEqual(first, testResult()) {
		t.Fatalf("first load = %+v", first)
	}

	// Second load must come from the cache, untouched.
	second, err := c.LoadTeams(ctx)
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if source.calls != 1 {
		t.Fatalf("source calls = %d after hit, want 1", source.calls)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("cached result differs:\nmiss %+v\nhit  %+v", first, second)
	}
}

func TestCachePreservesOrderAndCounts(t *testing.T) {
	source := &countingRegistry{result: testResult()}
	c := openTestCache(t, source)
	ctx := context.Background()

	if _, err := c.LoadTeams(ctx); err != nil {
		t.Fatal(err)
	}
	cached, err := c.LoadTeams(ctx)
	if err != nil {
		t.Fatal(err)
	}

	if cached.Kept != 3 || cached.Dropped != 2 {
		t.Fatalf("counts = %d/%d, want 3/2", cached.Kept, cached.Dropped)
	}
	want := testResult().Teams
	for i := range want {
		if cached.Teams[i] != want[i] {
			t.Fatalf("record %d out of order: got %+v, want %+v", i, cached.Teams[i], want[i])
		}
	}
}

func TestCacheSnapshotsAreIsolated(t *testing.T) {
	source := &countingRegistry{result: testResult()}
	c := openTestCache(t, source)
	ctx := context.Background()

	if _, err := c.LoadTeams(ctx); err != nil {
		t.Fatal(err)
	}

	// A different snapshot label misses and delegates again.
	other := NewSqliteRegistryCache(c.DB, "2026-09", source)
	if _, err := other.LoadTeams(ctx); err != nil {
		t.Fatal(err)
	}
	if source.calls != 2 {
		t.Fatalf("source calls = %d, want 2", source.calls)
	}
}

func TestCachePropagatesSourceError(t *testing.T) {
	source := &countingRegistry{err: ports.ErrRegistrySourceMissing}
	c := openTestCache(t, source)

	_, err := c.LoadTeams(context.Background())
	if !errors.Is(err, ports.ErrRegistrySourceMissing) {
		t.Fatalf("err = %v, want ErrRegistrySourceMissing", err)
	}
}

func TestCacheRequiresSnapshotLabel(t *testing.T) {
	c := openTestCache(t, &countingRegistry{result: testResult()})
	c.Snapshot = ""

	if _, err := c.LoadTeams(context.Background()); err == nil {
		t.Fatal("expected error for empty snapshot label")
	}
}
