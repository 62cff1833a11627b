/*
Package store persists report runs to a SQLite database.

TABLES:

	runs                 One row per report run (run_id, source, load counters, summary)
	projects             The cleaned records the run was computed from
	region_efficiency    Report 1 rows
	contractor_ranking   Report 2 rows
	annual_trends        Report 3 rows

Every table except runs carries run_id, so several runs can share one file.
Saving a run_id that already exists replaces that run. Report values are
stored exactly as the reports rendered them (fixed two-decimal text).

The driver is modernc.org/sqlite, registered as "sqlite", which needs no cgo.
*/
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ginjaninja78/flood-control-pipeline/internal/dataset"
	"github.com/ginjaninja78/flood-control-pipeline/internal/reports"
)

// SQLite writes report runs to a SQLite file.
type SQLite struct {
	db *sql.DB
}

// RunInfo is the stored header of one run.
type RunInfo struct {
	RunID         string
	Source        string
	TotalRows     int
	FilteredRows  int
	TotalProjects int
	TotalSavings  string
	CreatedAt     time.Time
}

// Open opens (creating if needed) the database at path and migrates the schema.
func Open(path string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("sqlite: create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	// A single connection keeps writes serialized.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: migrate: %w", err)
	}
	return s, nil
}

func (s *SQLite) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			run_id          TEXT PRIMARY KEY,
			source          TEXT    NOT NULL,
			total_rows      INTEGER NOT NULL,
			filtered_rows   INTEGER NOT NULL,
			parse_errors    INTEGER NOT NULL,
			imputed_coords  INTEGER NOT NULL,
			total_projects  INTEGER NOT NULL,
			total_contractors INTEGER NOT NULL,
			total_provinces INTEGER NOT NULL,
			global_avg_delay_days TEXT NOT NULL,
			total_savings   TEXT    NOT NULL,
			created_at      TEXT    NOT NULL
		);

		CREATE TABLE IF NOT EXISTS projects (
			run_id          TEXT    NOT NULL,
			funding_year    INTEGER NOT NULL,
			region          TEXT    NOT NULL,
			main_island     TEXT    NOT NULL,
			province        TEXT    NOT NULL,
			type_of_work    TEXT    NOT NULL,
			contractor      TEXT    NOT NULL,
			approved_budget REAL    NOT NULL,
			contract_cost   REAL    NOT NULL,
			cost_savings    REAL    NOT NULL,
			delay_days      REAL    NOT NULL,
			latitude        REAL,
			longitude       REAL
		);

		CREATE TABLE IF NOT EXISTS region_efficiency (
			run_id           TEXT NOT NULL,
			region           TEXT NOT NULL,
			main_island      TEXT NOT NULL,
			total_budget     TEXT NOT NULL,
			median_savings   TEXT NOT NULL,
			avg_delay        TEXT NOT NULL,
			high_delay_pct   TEXT NOT NULL,
			efficiency_score TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS contractor_ranking (
			run_id            TEXT    NOT NULL,
			rank              INTEGER NOT NULL,
			contractor        TEXT    NOT NULL,
			total_cost        TEXT    NOT NULL,
			num_projects      INTEGER NOT NULL,
			avg_delay         TEXT    NOT NULL,
			total_savings     TEXT    NOT NULL,
			reliability_index TEXT    NOT NULL,
			risk_flag         TEXT    NOT NULL
		);

		CREATE TABLE IF NOT EXISTS annual_trends (
			run_id         TEXT    NOT NULL,
			funding_year   INTEGER NOT NULL,
			type_of_work   TEXT    NOT NULL,
			total_projects INTEGER NOT NULL,
			avg_savings    TEXT    NOT NULL,
			overrun_rate   TEXT    NOT NULL,
			yoy_change     TEXT    NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_projects_run    ON projects(run_id);
		CREATE INDEX IF NOT EXISTS idx_region_run      ON region_efficiency(run_id);
		CREATE INDEX IF NOT EXISTS idx_contractor_run  ON contractor_ranking(run_id);
		CREATE INDEX IF NOT EXISTS idx_trends_run      ON annual_trends(run_id);
	`)
	return err
}

// SaveRun stores snap and its reports in a single transaction. An existing
// run with the same run_id is replaced.
func (s *SQLite) SaveRun(snap *dataset.Snapshot, b *reports.Bundle) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("sqlite: begin: %w", err)
	}
	defer tx.Rollback()

	if err := clearRun(tx, snap.RunID); err != nil {
		return err
	}
	if err := insertRun(tx, snap, b); err != nil {
		return err
	}
	if err := insertProjects(tx, snap); err != nil {
		return err
	}
	if err := insertReports(tx, snap.RunID, b); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}
	return nil
}

func clearRun(tx *sql.Tx, runID string) error {
	for _, table := range []string{"runs", "projects", "region_efficiency", "contractor_ranking", "annual_trends"} {
		if _, err := tx.Exec("DELETE FROM "+table+" WHERE run_id = ?", runID); err != nil {
			return fmt.Errorf("sqlite: clear %s: %w", table, err)
		}
	}
	return nil
}

func insertRun(tx *sql.Tx, snap *dataset.Snapshot, b *reports.Bundle) error {
	_, err := tx.Exec(`
		INSERT INTO runs (run_id, source, total_rows, filtered_rows, parse_errors, imputed_coords,
			total_projects, total_contractors, total_provinces, global_avg_delay_days, total_savings, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		snap.RunID, snap.Source, snap.Report.TotalRows, snap.Report.FilteredRows,
		snap.Report.ParseErrors, snap.Report.ImputedCoords,
		b.Summary.TotalProjects, b.Summary.TotalContractors, b.Summary.TotalProvinces,
		b.Summary.GlobalAvgDelayDays, b.Summary.TotalSavings,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("sqlite: insert run: %w", err)
	}
	return nil
}

func insertProjects(tx *sql.Tx, snap *dataset.Snapshot) error {
	stmt, err := tx.Prepare(`
		INSERT INTO projects (run_id, funding_year, region, main_island, province, type_of_work,
			contractor, approved_budget, contract_cost, cost_savings, delay_days, latitude, longitude)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("sqlite: prepare projects: %w", err)
	}
	defer stmt.Close()

	for i, r := range snap.Records {
		if _, err := stmt.Exec(
			snap.RunID, r.FundingYear, r.Region, r.MainIsland, r.Province, r.TypeOfWork,
			r.Contractor, r.ApprovedBudget, r.ContractCost, r.CostSavings, r.CompletionDelayDays,
			nullFloat(r.Lat), nullFloat(r.Lon),
		); err != nil {
			return fmt.Errorf("sqlite: insert project %d: %w", i, err)
		}
	}
	return nil
}

func insertReports(tx *sql.Tx, runID string, b *reports.Bundle) error {
	for _, r := range b.Regional {
		if _, err := tx.Exec(`
			INSERT INTO region_efficiency (run_id, region, main_island, total_budget, median_savings,
				avg_delay, high_delay_pct, efficiency_score)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, r.Region, r.MainIsland, r.TotalBudget, r.MedianSavings,
			r.AvgDelay, r.HighDelayPct, r.EfficiencyScore,
		); err != nil {
			return fmt.Errorf("sqlite: insert region row: %w", err)
		}
	}

	for _, r := range b.Contractors {
		if _, err := tx.Exec(`
			INSERT INTO contractor_ranking (run_id, rank, contractor, total_cost, num_projects,
				avg_delay, total_savings, reliability_index, risk_flag)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, r.Rank, r.Contractor, r.TotalCost, r.NumProjects,
			r.AvgDelay, r.TotalSavings, r.ReliabilityIndex, r.RiskFlag,
		); err != nil {
			return fmt.Errorf("sqlite: insert contractor row: %w", err)
		}
	}

	for _, r := range b.Trends {
		if _, err := tx.Exec(`
			INSERT INTO annual_trends (run_id, funding_year, type_of_work, total_projects,
				avg_savings, overrun_rate, yoy_change)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			runID, r.FundingYear, r.TypeOfWork, r.TotalProjects,
			r.AvgSavings, r.OverrunRate, r.YoYChange,
		); err != nil {
			return fmt.Errorf("sqlite: insert trend row: %w", err)
		}
	}
	return nil
}

// Runs lists stored runs, oldest first.
func (s *SQLite) Runs() ([]RunInfo, error) {
	rows, err := s.db.Query(`
		SELECT run_id, source, total_rows, filtered_rows, total_projects, total_savings, created_at
		FROM runs
		ORDER BY created_at, run_id
	`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: fetch runs: %w", err)
	}
	defer rows.Close()

	var runs []RunInfo
	for rows.Next() {
		var (
			info    RunInfo
			created string
		)
		if err := rows.Scan(&info.RunID, &info.Source, &info.TotalRows, &info.FilteredRows,
			&info.TotalProjects, &info.TotalSavings, &created); err != nil {
			return nil, fmt.Errorf("sqlite: scan run: %w", err)
		}
		info.CreatedAt, _ = time.Parse(time.RFC3339, created)
		runs = append(runs, info)
	}
	return runs, rows.Err()
}

// CountRows returns the number of rows table holds for runID.
func (s *SQLite) CountRows(table, runID string) (int, error) {
	switch table {
	case "projects", "region_efficiency", "contractor_ranking", "annual_trends":
	default:
		return 0, fmt.Errorf("sqlite: unknown table '%s'", table)
	}

	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM "+table+" WHERE run_id = ?", runID).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: count %s: %w", table, err)
	}
	return n, nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
