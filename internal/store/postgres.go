package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkb"

	"github.com/urbanmetrics/walkability-cli/internal/equity"
	"github.com/urbanmetrics/walkability-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. Tests substitute a
// pgxmock pool through this interface.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

// PostgresStore implements Store on a pgx connection pool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres connects to the given database URL and verifies the
// connection before returning.
func NewPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse database url")
	}
	cfg.MaxConns = 4
	cfg.MaxConnLifetime = time.Hour

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresWithPool wraps an existing pool, used by tests.
func NewPostgresWithPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS analysis_runs (
	id         UUID PRIMARY KEY,
	city       TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'running',
	area_count INTEGER NOT NULL DEFAULT 0,
	categories TEXT[] NOT NULL,
	summary    JSONB,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS underserved_areas (
	id           UUID PRIMARY KEY,
	run_id       UUID NOT NULL REFERENCES analysis_runs(id),
	amenity_type TEXT NOT NULL,
	area_id      TEXT NOT NULL,
	area_name    TEXT,
	population   INTEGER NOT NULL,
	median_income DOUBLE PRECISION,
	distance_m   DOUBLE PRECISION,
	count_1km    INTEGER NOT NULL DEFAULT 0,
	gap_score    DOUBLE PRECISION NOT NULL,
	need_score   DOUBLE PRECISION NOT NULL,
	access_score DOUBLE PRECISION NOT NULL
);

CREATE TABLE IF NOT EXISTS recommended_locations (
	id                UUID PRIMARY KEY,
	run_id            UUID NOT NULL REFERENCES analysis_runs(id),
	amenity_type      TEXT NOT NULL,
	area_name         TEXT,
	location          BYTEA NOT NULL,
	population_served INTEGER NOT NULL,
	gap_score         DOUBLE PRECISION NOT NULL,
	justification     TEXT
);

CREATE INDEX IF NOT EXISTS idx_runs_status ON analysis_runs(status);
CREATE INDEX IF NOT EXISTS idx_underserved_run ON underserved_areas(run_id);
CREATE INDEX IF NOT EXISTS idx_recommended_run ON recommended_locations(run_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) CreateRun(ctx context.Context, city string, categories []string) (*model.AnalysisRun, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO analysis_runs (id, city, status, categories, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		id, city, string(model.RunStatusRunning), categories, now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert run")
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

func (s *PostgresStore) CompleteRun(ctx context.Context, runID string, areaCount int, summary *model.RunSummary) error {
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal summary")
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE analysis_runs SET status = $1, area_count = $2, summary = $3, updated_at = $4 WHERE id = $5`,
		string(model.RunStatusComplete), areaCount, summaryJSON, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: complete run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("postgres: run %s not found", runID)
	}
	return nil
}

func (s *PostgresStore) FailRun(ctx context.Context, runID string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE analysis_runs SET status = $1, updated_at = $2 WHERE id = $3`,
		string(model.RunStatusFailed), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: fail run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("postgres: run %s not found", runID)
	}
	return nil
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.AnalysisRun, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, city, status, area_count, categories, summary, created_at, updated_at
		 FROM analysis_runs WHERE id = $1`, runID)

	run, err := scanPgRun(row)
	if err != nil {
		if eris.Is(err, pgx.ErrNoRows) {
			return nil, eris.Errorf("postgres: run %s not found", runID)
		}
		return nil, eris.Wrapf(err, "postgres: get run %s", runID)
	}
	return run, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, limit int) ([]model.AnalysisRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, city, status, area_count, categories, summary, created_at, updated_at
		 FROM analysis_runs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.AnalysisRun
	for rows.Next() {
		run, err := scanPgRun(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		runs = append(runs, *run)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: iterate runs")
}

func (s *PostgresStore) SaveUnderserved(ctx context.Context, runID string, rows []equity.UnderservedArea) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin tx")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for _, r := range rows {
		_, err := tx.Exec(ctx,
			`INSERT INTO underserved_areas
			 (id, run_id, amenity_type, area_id, area_name, population, median_income, distance_m, count_1km, gap_score, need_score, access_score)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			uuid.New().String(), runID, r.Category, r.AreaID, r.AreaName,
			r.Population, r.MedianIncome, r.DistanceM, r.CountWithin1km,
			r.GapScore, r.NeedScore, r.AccessScore,
		)
		if err != nil {
			return eris.Wrap(err, "postgres: insert underserved area")
		}
	}
	return eris.Wrap(tx.Commit(ctx), "postgres: commit underserved areas")
}

func (s *PostgresStore) SaveRecommendations(ctx context.Context, runID string, recs []equity.Recommendation) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin tx")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for _, r := range recs {
		point := geom.NewPointFlat(geom.XY, []float64{r.Longitude, r.Latitude}).SetSRID(4326)
		location, err := ewkb.Marshal(point, ewkb.NDR)
		if err != nil {
			return eris.Wrap(err, "postgres: encode location")
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO recommended_locations
			 (id, run_id, amenity_type, area_name, location, population_served, gap_score, justification)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			uuid.New().String(), runID, r.Category, r.AreaName,
			location, r.PopulationServed, r.GapScore, r.Justification,
		)
		if err != nil {
			return eris.Wrap(err, "postgres: insert recommendation")
		}
	}
	return eris.Wrap(tx.Commit(ctx), "postgres: commit recommendations")
}

func scanPgRun(row pgx.Row) (*model.AnalysisRun, error) {
	var run model.AnalysisRun
	var status string
	var summary []byte

	if err := row.Scan(&run.ID, &run.City, &status, &run.AreaCount, &run.Categories, &summary, &run.CreatedAt, &run.UpdatedAt); err != nil {
		return nil, err
	}
	run.Status = model.RunStatus(status)
	if len(summary) > 0 {
		var s model.RunSummary
		if err := json.Unmarshal(summary, &s); err != nil {
			return nil, eris.Wrap(err, "unmarshal summary")
		}
		run.Summary = &s
	}
	return &run, nil
}
