// Package db persists reconstruction run records in sqlite.
package db

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// DB wraps the sqlite handle used for run persistence.
type DB struct {
	*sql.DB
}

// NewDB opens (creating if needed) the sqlite database at path and ensures
// the base schema exists. Schema evolution beyond the base table goes
// through the migration machinery in migrate.go.
func NewDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			run_id             TEXT PRIMARY KEY,
			input_points       BIGINT,
			smoothed_points    BIGINT,
			dropped_points     BIGINT,
			polygons           BIGINT,
			dropped_polygons   BIGINT,
			triangles          BIGINT,
			search_radius      DOUBLE,
			polynomial         BOOLEAN,
			fan_polygons       BOOLEAN,
			smooth_ms          DOUBLE,
			reconstruct_ms     DOUBLE,
			timestamp          TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &DB{db}, nil
}

// RunRecord is one persisted reconstruction run.
type RunRecord struct {
	RunID           string    `json:"run_id"`
	InputPoints     int       `json:"input_points"`
	SmoothedPoints  int       `json:"smoothed_points"`
	DroppedPoints   int       `json:"dropped_points"`
	Polygons        int       `json:"polygons"`
	DroppedPolygons int       `json:"dropped_polygons"`
	Triangles       int       `json:"triangles"`
	SearchRadius    float64   `json:"search_radius"`
	Polynomial      bool      `json:"polynomial"`
	FanPolygons     bool      `json:"fan_polygons"`
	SmoothMillis    float64   `json:"smooth_ms"`
	ReconstructMS   float64   `json:"reconstruct_ms"`
	Timestamp       time.Time `json:"timestamp"`
}

// RecordRun inserts one run record.
func (db *DB) RecordRun(rec RunRecord) error {
	_, err := db.Exec(`
		INSERT INTO runs (
			run_id, input_points, smoothed_points, dropped_points,
			polygons, dropped_polygons, triangles,
			search_radius, polynomial, fan_polygons,
			smooth_ms, reconstruct_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.InputPoints, rec.SmoothedPoints, rec.DroppedPoints,
		rec.Polygons, rec.DroppedPolygons, rec.Triangles,
		rec.SearchRadius, rec.Polynomial, rec.FanPolygons,
		rec.SmoothMillis, rec.ReconstructMS,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run record: %w", err)
	}
	return nil
}

// RecentRuns returns the most recent run records, newest first.
func (db *DB) RecentRuns(limit int) ([]RunRecord, error) {
	if limit < 1 {
		limit = 50
	}
	rows, err := db.Query(`
		SELECT run_id, input_points, smoothed_points, dropped_points,
		       polygons, dropped_polygons, triangles,
		       search_radius, polynomial, fan_polygons,
		       smooth_ms, reconstruct_ms, timestamp
		FROM runs ORDER BY timestamp DESC, run_id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var rec RunRecord
		if err := rows.Scan(
			&rec.RunID, &rec.InputPoints, &rec.SmoothedPoints, &rec.DroppedPoints,
			&rec.Polygons, &rec.DroppedPolygons, &rec.Triangles,
			&rec.SearchRadius, &rec.Polynomial, &rec.FanPolygons,
			&rec.SmoothMillis, &rec.ReconstructMS, &rec.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// RunSummary aggregates run statistics for reporting.
type RunSummary struct {
	Runs               int     `json:"runs"`
	AvgInputPoints     float64 `json:"avg_input_points"`
	AvgDroppedPoints   float64 `json:"avg_dropped_points"`
	AvgTriangles       float64 `json:"avg_triangles"`
	TotalDroppedPolys  int     `json:"total_dropped_polygons"`
	AvgSmoothMillis    float64 `json:"avg_smooth_ms"`
	AvgReconstructMS   float64 `json:"avg_reconstruct_ms"`
}

// Summary returns aggregate statistics over all recorded runs.
func (db *DB) Summary() (RunSummary, error) {
	var s RunSummary
	err := db.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(AVG(input_points), 0),
		       COALESCE(AVG(dropped_points), 0),
		       COALESCE(AVG(triangles), 0),
		       COALESCE(SUM(dropped_polygons), 0),
		       COALESCE(AVG(smooth_ms), 0),
		       COALESCE(AVG(reconstruct_ms), 0)
		FROM runs`).Scan(
		&s.Runs, &s.AvgInputPoints, &s.AvgDroppedPoints, &s.AvgTriangles,
		&s.TotalDroppedPolys, &s.AvgSmoothMillis, &s.AvgReconstructMS,
	)
	if err != nil {
		return RunSummary{}, fmt.Errorf("failed to summarise runs: %w", err)
	}
	return s, nil
}
