package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "data/raw", cfg.Data.RawDir)
	assert.Equal(t, "data/processed", cfg.Data.ProcessedDir)
	assert.Equal(t, "outputs", cfg.Data.OutputsDir)

	assert.Equal(t, "06", cfg.Collect.StateFIPS)
	assert.Equal(t, "037", cfg.Collect.CountyFIPS)
	assert.Equal(t, 2022, cfg.Collect.TigerYear)

	assert.Equal(t, 1000, cfg.Analysis.MinPopulation)
	assert.Equal(t, 10, cfg.Analysis.TopN)
	assert.Equal(t, 0.5, cfg.Analysis.HighGapThreshold)
	assert.Equal(t, 10, cfg.Analysis.CandidateLimit)
	assert.Equal(t, 1000.0, cfg.Analysis.CountRadiusM)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	yaml := `
collect:
  city: Portland
  state_fips: "41"
  county_fips: "051"
analysis:
  min_population: 500
  top_n: 5
store:
  driver: postgres
  database_url: postgres://localhost/walkability
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "Portland", cfg.Collect.City)
	assert.Equal(t, "41", cfg.Collect.StateFIPS)
	assert.Equal(t, 500, cfg.Analysis.MinPopulation)
	assert.Equal(t, 5, cfg.Analysis.TopN)
	assert.Equal(t, "postgres", cfg.Store.Driver)

	// Values not present in the file keep their defaults.
	assert.Equal(t, 0.5, cfg.Analysis.HighGapThreshold)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("WALKABILITY_ANALYSIS_TOP_N", "3")
	t.Setenv("WALKABILITY_STORE_DRIVER", "postgres")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Analysis.TopN)
	assert.Equal(t, "postgres", cfg.Store.Driver)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	require.NoError(t, InitLogger(LogConfig{Level: "warn", Format: "json"}))

	err := InitLogger(LogConfig{Level: "loud", Format: "json"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse log level")
}
