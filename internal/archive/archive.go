// Package archive persists finished runs into a sqlite database so
// fleets can be compared across simulation runs.
package archive

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/emissions.report/internal/sustain"
)

// DB wraps the run-archive database.
type DB struct {
	*sql.DB
}

// NewDB opens (creating if needed) the archive at path and bootstraps
// the base schema. Use ":memory:" for an ephemeral archive.
func NewDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			run_id            TEXT PRIMARY KEY,
			log_dir           TEXT,
			vehicle_count     BIGINT,
			total_co2_g       DOUBLE,
			created_at        TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS vehicle_results (
			run_id            TEXT,
			vehicle_id        TEXT,
			energy_wh         DOUBLE,
			regen_wh          DOUBLE,
			co2_g             DOUBLE,
			distance_m        DOUBLE,
			harsh_accel       BIGINT,
			harsh_brake       BIGINT,
			idle_time_s       DOUBLE,
			eco_score         DOUBLE,
			PRIMARY KEY (run_id, vehicle_id),
			FOREIGN KEY(run_id) REFERENCES runs(run_id)
		);
		CREATE TABLE IF NOT EXISTS grid_cells (
			run_id            TEXT,
			i                 BIGINT,
			j                 BIGINT,
			co2_g             DOUBLE,
			PRIMARY KEY (run_id, i, j),
			FOREIGN KEY(run_id) REFERENCES runs(run_id)
		);
	`)
	if err != nil {
		return nil, err
	}

	return &DB{db}, nil
}

// Run is one archived simulation run.
type Run struct {
	RunID        string  `json:"run_id"`
	LogDir       string  `json:"log_dir"`
	VehicleCount int     `json:"vehicle_count"`
	TotalCO2G    float64 `json:"total_co2_g"`
	CreatedAt    string  `json:"created_at"`
}

// RecordRun stores a finished run's summary under a fresh run id and
// returns that id. The whole summary is written in one transaction.
func (db *DB) RecordRun(summary *sustain.Summary, logDir string) (string, error) {
	if summary == nil {
		return "", fmt.Errorf("nil summary")
	}
	runID := uuid.New().String()

	tx, err := db.Begin()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	totalCO2 := 0.0
	for _, v := range summary.Vehicles {
		totalCO2 += v.CO2Grams
	}

	if _, err := tx.Exec(
		"INSERT INTO runs (run_id, log_dir, vehicle_count, total_co2_g) VALUES (?, ?, ?, ?)",
		runID, logDir, len(summary.Vehicles), totalCO2,
	); err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	for _, v := range summary.Vehicles {
		if _, err := tx.Exec(`
			INSERT INTO vehicle_results (
				run_id, vehicle_id, energy_wh, regen_wh, co2_g, distance_m,
				harsh_accel, harsh_brake, idle_time_s, eco_score
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, v.VehicleID, v.EnergyWh, v.RegenWh, v.CO2Grams, v.DistanceM,
			v.HarshAccel, v.HarshBrake, v.IdleTimeS, v.EcoScore,
		); err != nil {
			return "", fmt.Errorf("insert vehicle %s: %w", v.VehicleID, err)
		}
	}

	for _, c := range summary.Grid {
		if _, err := tx.Exec(
			"INSERT INTO grid_cells (run_id, i, j, co2_g) VALUES (?, ?, ?, ?)",
			runID, c.I, c.J, c.CO2Grams,
		); err != nil {
			return "", fmt.Errorf("insert grid cell (%d,%d): %w", c.I, c.J, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return runID, nil
}

// ListRuns returns the most recent runs, newest first.
func (db *DB) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Query(
		"SELECT run_id, log_dir, vehicle_count, total_co2_g, created_at FROM runs ORDER BY created_at DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.RunID, &r.LogDir, &r.VehicleCount, &r.TotalCO2G, &r.CreatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// VehicleResults returns the per-vehicle results of one archived run.
func (db *DB) VehicleResults(runID string) ([]sustain.Results, error) {
	rows, err := db.Query(`
		SELECT vehicle_id, energy_wh, regen_wh, co2_g, distance_m,
		       harsh_accel, harsh_brake, idle_time_s, eco_score
		FROM vehicle_results WHERE run_id = ? ORDER BY vehicle_id`,
		runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []sustain.Results
	for rows.Next() {
		var r sustain.Results
		if err := rows.Scan(
			&r.VehicleID, &r.EnergyWh, &r.RegenWh, &r.CO2Grams, &r.DistanceM,
			&r.HarshAccel, &r.HarshBrake, &r.IdleTimeS, &r.EcoScore,
		); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// GridCells returns the grid of one archived run, ordered by (i, j).
func (db *DB) GridCells(runID string) ([]sustain.GridCellCO2, error) {
	rows, err := db.Query(
		"SELECT i, j, co2_g FROM grid_cells WHERE run_id = ? ORDER BY i, j",
		runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cells []sustain.GridCellCO2
	for rows.Next() {
		var c sustain.GridCellCO2
		if err := rows.Scan(&c.I, &c.J, &c.CO2Grams); err != nil {
			return nil, err
		}
		cells = append(cells, c)
	}
	return cells, rows.Err()
}
