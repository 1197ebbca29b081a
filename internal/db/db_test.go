package db

import (
	"path/filepath"
	"testing"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	database, err := NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func sampleRecord(runID string) RunRecord {
	return RunRecord{
		RunID:           runID,
		InputPoints:     200,
		SmoothedPoints:  190,
		DroppedPoints:   10,
		Polygons:        120,
		DroppedPolygons: 2,
		Triangles:       118,
		SearchRadius:    0.03,
		Polynomial:      true,
		FanPolygons:     false,
		SmoothMillis:    12.5,
		ReconstructMS:   3.25,
	}
}

func TestRecordAndRecentRuns(t *testing.T) {
	database := newTestDB(t)

	if err := database.RecordRun(sampleRecord("run-a")); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}
	if err := database.RecordRun(sampleRecord("run-b")); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}

	records, err := database.RecentRuns(10)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	// Equal timestamps fall back to run_id descending.
	if records[0].RunID != "run-b" || records[1].RunID != "run-a" {
		t.Errorf("unexpected order: %s, %s", records[0].RunID, records[1].RunID)
	}

	got := records[0]
	if got.InputPoints != 200 || got.SmoothedPoints != 190 || got.Triangles != 118 {
		t.Errorf("counters not round-tripped: %+v", got)
	}
	if got.SearchRadius != 0.03 || !got.Polynomial || got.FanPolygons {
		t.Errorf("parameters not round-tripped: %+v", got)
	}
	if got.Timestamp.IsZero() {
		t.Error("timestamp not populated by the database")
	}
}

func TestRecordRun_DuplicateRunID(t *testing.T) {
	database := newTestDB(t)

	if err := database.RecordRun(sampleRecord("run-a")); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}
	if err := database.RecordRun(sampleRecord("run-a")); err == nil {
		t.Fatal("expected primary key violation for duplicate run_id")
	}
}

func TestRecentRuns_LimitAndDefault(t *testing.T) {
	database := newTestDB(t)

	for _, id := range []string{"run-a", "run-b", "run-c"} {
		if err := database.RecordRun(sampleRecord(id)); err != nil {
			t.Fatalf("RecordRun(%s): %v", id, err)
		}
	}

	records, err := database.RecentRuns(2)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("limit 2 returned %d records", len(records))
	}

	records, err = database.RecentRuns(0)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(records) != 3 {
		t.Errorf("default limit returned %d records, want all 3", len(records))
	}
}

func TestSummary(t *testing.T) {
	database := newTestDB(t)

	// Empty database summarises to zeros, not an error.
	summary, err := database.Summary()
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if summary.Runs != 0 || summary.AvgInputPoints != 0 {
		t.Errorf("empty summary = %+v, want zeros", summary)
	}

	first := sampleRecord("run-a")
	second := sampleRecord("run-b")
	second.InputPoints = 400
	second.DroppedPolygons = 4
	for _, rec := range []RunRecord{first, second} {
		if err := database.RecordRun(rec); err != nil {
			t.Fatalf("RecordRun: %v", err)
		}
	}

	summary, err = database.Summary()
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if summary.Runs != 2 {
		t.Errorf("Runs = %d, want 2", summary.Runs)
	}
	if summary.AvgInputPoints != 300 {
		t.Errorf("AvgInputPoints = %v, want 300", summary.AvgInputPoints)
	}
	if summary.TotalDroppedPolys != 6 {
		t.Errorf("TotalDroppedPolys = %d, want 6", summary.TotalDroppedPolys)
	}
}

func TestMigrations(t *testing.T) {
	database := newTestDB(t)

	const migrationsDir = "../../migrations"
	if err := database.MigrateUp(migrationsDir); err != nil {
		t.Fatalf("MigrateUp: %v", err)
	}

	version, dirty, err := database.MigrateVersion(migrationsDir)
	if err != nil {
		t.Fatalf("MigrateVersion: %v", err)
	}
	if dirty {
		t.Error("migration state is dirty after a clean up")
	}
	if version != 2 {
		t.Errorf("version = %d, want 2", version)
	}

	// Migrated schema still accepts writes.
	if err := database.RecordRun(sampleRecord("run-a")); err != nil {
		t.Errorf("RecordRun after migration: %v", err)
	}

	if err := database.MigrateDown(migrationsDir); err != nil {
		t.Fatalf("MigrateDown: %v", err)
	}
	version, _, err = database.MigrateVersion(migrationsDir)
	if err != nil {
		t.Fatalf("MigrateVersion after down: %v", err)
	}
	if version != 1 {
		t.Errorf("version after down = %d, want 1", version)
	}
}
