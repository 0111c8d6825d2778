package repositories

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"visit-route-service/internal/domain"

	_ "modernc.org/sqlite"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "app.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := InitSchema(db); err != nil {
		t.Fatalf("init schema: %v", err)
	}

	return db
}

func TestReplaceAndListLocations(t *testing.T) {
	repo := NewSqliteLocationRepository(newTestDB(t))
	ctx := context.Background()

	locs := []*domain.Location{
		{
			ID:           "L2",
			Name:         "Market South",
			RouteID:      "R1",
			Coord:        domain.Coordinates{Lat: 52.48, Lon: 13.36},
			Weekday:      "2",
			Frequency:    "2,1",
			VisitMinutes: 30,
			Ranks:        map[string]int{"1": 2, "3": 1},
		},
		{
			ID:        "L1",
			Name:      "Market North",
			RouteID:   "R1",
			Coord:     domain.Coordinates{Lat: 52.55, Lon: 13.41},
			Weekday:   "1",
			Frequency: "4",
		},
	}

	if err := repo.ReplaceLocations(ctx, locs); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := repo.ListLocations(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("locations = %d, want 2", len(got))
	}

	// Ordered by id.
	if got[0].ID != "L1" || got[1].ID != "L2" {
		t.Fatalf("order = %s, %s, want L1, L2", got[0].ID, got[1].ID)
	}

	l2 := got[1]
	if l2.Ranks["1"] != 2 || l2.Ranks["3"] != 1 {
		t.Fatalf("ranks not preserved: %v", l2.Ranks)
	}
	if l2.VisitMinutes != 30 {
		t.Fatalf("visit minutes = %d, want 30", l2.VisitMinutes)
	}
	if got[0].Ranks != nil {
		t.Fatalf("expected no ranks for L1, got %v", got[0].Ranks)
	}
}

func TestReplaceLocationsReplacesEverything(t *testing.T) {
	repo := NewSqliteLocationRepository(newTestDB(t))
	ctx := context.Background()

	first := []*domain.Location{{ID: "L1", Name: "A", RouteID: "R1", Weekday: "1"}}
	if err := repo.ReplaceLocations(ctx, first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second := []*domain.Location{{ID: "L2", Name: "B", RouteID: "R1", Weekday: "2"}}
	if err := repo.ReplaceLocations(ctx, second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := repo.ListLocations(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID != "L2" {
		t.Fatalf("expected only L2 to remain, got %d rows", len(got))
	}
}

func TestGetStartPoint(t *testing.T) {
	db := newTestDB(t)
	repo := NewSqliteLocationRepository(db)
	ctx := context.Background()

	sp, err := repo.GetStartPoint(ctx, "R1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sp != nil {
		t.Fatalf("expected nil start point, got %+v", sp)
	}

	seed := `{
		"locations": [
			{"location_id": "L1", "name": "Market North", "route_id": "R1",
			 "lat": 52.55, "lon": 13.41, "weekday": "1", "frequency": "4",
			 "visit_minutes": 20, "ranks": {"2": 1}}
		],
		"start_points": [
			{"route_id": "R1", "address": "Depot Berlin", "lat": 52.5, "lon": 13.4}
		]
	}`

	seedPath := filepath.Join(t.TempDir(), "seed.json")
	if err := os.WriteFile(seedPath, []byte(seed), 0o600); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	if err := SeedFromJSON(db, seedPath); err != nil {
		t.Fatalf("seed: %v", err)
	}

	sp, err = repo.GetStartPoint(ctx, "R1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sp == nil {
		t.Fatal("expected start point after seeding")
	}
	if sp.Address != "Depot Berlin" || sp.Coord.Lat != 52.5 {
		t.Fatalf("start point = %+v", sp)
	}

	locs, err := repo.ListLocations(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(locs) != 1 || locs[0].Ranks["2"] != 1 {
		t.Fatalf("seeded location not round-tripped: %+v", locs)
	}
}
