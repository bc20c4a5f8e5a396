package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/urbanmetrics/walkability-cli/internal/equity"
	"github.com/urbanmetrics/walkability-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS analysis_runs (
	id         TEXT PRIMARY KEY,
	city       TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'running',
	area_count INTEGER NOT NULL DEFAULT 0,
	categories TEXT NOT NULL,
	summary    TEXT,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS underserved_areas (
	id           TEXT PRIMARY KEY,
	run_id       TEXT NOT NULL REFERENCES analysis_runs(id),
	amenity_type TEXT NOT NULL,
	area_id      TEXT NOT NULL,
	area_name    TEXT,
	population   INTEGER NOT NULL,
	median_income REAL,
	distance_m   REAL,
	count_1km    INTEGER NOT NULL DEFAULT 0,
	gap_score    REAL NOT NULL,
	need_score   REAL NOT NULL,
	access_score REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS recommended_locations (
	id                TEXT PRIMARY KEY,
	run_id            TEXT NOT NULL REFERENCES analysis_runs(id),
	amenity_type      TEXT NOT NULL,
	area_name         TEXT,
	latitude          REAL NOT NULL,
	longitude         REAL NOT NULL,
	population_served INTEGER NOT NULL,
	gap_score         REAL NOT NULL,
	justification     TEXT
);

CREATE INDEX IF NOT EXISTS idx_runs_status ON analysis_runs(status);
CREATE INDEX IF NOT EXISTS idx_underserved_run ON underserved_areas(run_id);
CREATE INDEX IF NOT EXISTS idx_recommended_run ON recommended_locations(run_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateRun(ctx context.Context, city string, categories []string) (*model.AnalysisRun, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO analysis_runs (id, city, status, categories, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, city, string(model.RunStatusRunning), strings.Join(categories, ","), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}

	return &model.AnalysisRun{
		ID:         id,
		City:       city,
		Status:     model.RunStatusRunning,
		Categories: categories,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

func (s *SQLiteStore) CompleteRun(ctx context.Context, runID string, areaCount int, summary *model.RunSummary) error {
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal summary")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE analysis_runs SET status = ?, area_count = ?, summary = ?, updated_at = ? WHERE id = ?`,
		string(model.RunStatusComplete), areaCount, string(summaryJSON), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: complete run %s", runID)
	}
	return checkRowsAffected(res, runID)
}

func (s *SQLiteStore) FailRun(ctx context.Context, runID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE analysis_runs SET status = ?, updated_at = ? WHERE id = ?`,
		string(model.RunStatusFailed), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: fail run %s", runID)
	}
	return checkRowsAffected(res, runID)
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.AnalysisRun, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, city, status, area_count, categories, summary, created_at, updated_at
		 FROM analysis_runs WHERE id = ?`, runID)

	run, err := scanRun(row)
	if err != nil {
		if eris.Is(err, sql.ErrNoRows) {
			return nil, eris.Errorf("sqlite: run %s not found", runID)
		}
		return nil, eris.Wrapf(err, "sqlite: get run %s", runID)
	}
	return run, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]model.AnalysisRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, city, status, area_count, categories, summary, created_at, updated_at
		 FROM analysis_runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close() //nolint:errcheck

	var runs []model.AnalysisRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		runs = append(runs, *run)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: iterate runs")
}

func (s *SQLiteStore) SaveUnderserved(ctx context.Context, runID string, rows []equity.UnderservedArea) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	for _, r := range rows {
		var dist interface{}
		if r.DistanceM != nil {
			dist = *r.DistanceM
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO underserved_areas
			 (id, run_id, amenity_type, area_id, area_name, population, median_income, distance_m, count_1km, gap_score, need_score, access_score)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			uuid.New().String(), runID, r.Category, r.AreaID, r.AreaName,
			r.Population, r.MedianIncome, dist, r.CountWithin1km,
			r.GapScore, r.NeedScore, r.AccessScore,
		)
		if err != nil {
			return eris.Wrap(err, "sqlite: insert underserved area")
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit underserved areas")
}

func (s *SQLiteStore) SaveRecommendations(ctx context.Context, runID string, recs []equity.Recommendation) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	for _, r := range recs {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO recommended_locations
			 (id, run_id, amenity_type, area_name, latitude, longitude, population_served, gap_score, justification)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			uuid.New().String(), runID, r.Category, r.AreaName,
			r.Latitude, r.Longitude, r.PopulationServed, r.GapScore, r.Justification,
		)
		if err != nil {
			return eris.Wrap(err, "sqlite: insert recommendation")
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit recommendations")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*model.AnalysisRun, error) {
	var run model.AnalysisRun
	var status, categories string
	var summary sql.NullString

	if err := row.Scan(&run.ID, &run.City, &status, &run.AreaCount, &categories, &summary, &run.CreatedAt, &run.UpdatedAt); err != nil {
		return nil, err
	}
	run.Status = model.RunStatus(status)
	if categories != "" {
		run.Categories = strings.Split(categories, ",")
	}
	if summary.Valid && summary.String != "" {
		var s model.RunSummary
		if err := json.Unmarshal([]byte(summary.String), &s); err != nil {
			return nil, eris.Wrap(err, "unmarshal summary")
		}
		run.Summary = &s
	}
	return &run, nil
}

func checkRowsAffected(res sql.Result, runID string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Errorf("sqlite: run %s not found", runID)
	}
	return nil
}
