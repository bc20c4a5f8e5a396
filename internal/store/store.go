// Package store persists analysis runs and their ranked results so past
// runs can be listed and exported without re-running the pipeline.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/urbanmetrics/walkability-cli/internal/config"
	"github.com/urbanmetrics/walkability-cli/internal/equity"
	"github.com/urbanmetrics/walkability-cli/internal/model"
)

// Store defines the persistence interface for analysis history.
type Store interface {
	CreateRun(ctx context.Context, city string, categories []string) (*model.AnalysisRun, error)
	CompleteRun(ctx context.Context, runID string, areaCount int, summary *model.RunSummary) error
	FailRun(ctx context.Context, runID string) error
	GetRun(ctx context.Context, runID string) (*model.AnalysisRun, error)
	ListRuns(ctx context.Context, limit int) ([]model.AnalysisRun, error)

	SaveUnderserved(ctx context.Context, runID string, rows []equity.UnderservedArea) error
	SaveRecommendations(ctx context.Context, runID string, recs []equity.Recommendation) error

	Migrate(ctx context.Context) error
	Close() error
}

// Open constructs the configured backend.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "sqlite", "":
		return NewSQLite(cfg.DatabaseURL)
	case "postgres":
		return NewPostgres(ctx, cfg.DatabaseURL)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}
