// Package config loads application configuration from file and environment
// and initializes the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Data     DataConfig     `yaml:"data" mapstructure:"data"`
	Collect  CollectConfig  `yaml:"collect" mapstructure:"collect"`
	Analysis AnalysisConfig `yaml:"analysis" mapstructure:"analysis"`
	Scoring  ScoringConfig  `yaml:"scoring" mapstructure:"scoring"`
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// DataConfig fixes the on-disk layout of pipeline snapshots and outputs.
type DataConfig struct {
	RawDir       string `yaml:"raw_dir" mapstructure:"raw_dir"`
	ProcessedDir string `yaml:"processed_dir" mapstructure:"processed_dir"`
	OutputsDir   string `yaml:"outputs_dir" mapstructure:"outputs_dir"`
}

// CollectConfig configures the data collection phase.
type CollectConfig struct {
	City         string  `yaml:"city" mapstructure:"city"`
	StateFIPS    string  `yaml:"state_fips" mapstructure:"state_fips"`
	CountyFIPS   string  `yaml:"county_fips" mapstructure:"county_fips"`
	TigerYear    int     `yaml:"tiger_year" mapstructure:"tiger_year"`
	CensusAPIKey string  `yaml:"census_api_key" mapstructure:"census_api_key"`
	OverpassURL  string  `yaml:"overpass_url" mapstructure:"overpass_url"`
	ACSBaseURL   string  `yaml:"acs_base_url" mapstructure:"acs_base_url"`
	RatePerSec   float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
}

// AnalysisConfig holds the knobs of the equity gap analysis. The defaults
// mirror the documented policy constants.
type AnalysisConfig struct {
	MinPopulation    int     `yaml:"min_population" mapstructure:"min_population"`
	TopN             int     `yaml:"top_n" mapstructure:"top_n"`
	HighGapThreshold float64 `yaml:"high_gap_threshold" mapstructure:"high_gap_threshold"`
	CandidateLimit   int     `yaml:"candidate_limit" mapstructure:"candidate_limit"`
	CountRadiusM     float64 `yaml:"count_radius_m" mapstructure:"count_radius_m"`
}

// ScoringConfig points at an optional YAML scoring profile that overrides
// the built-in tier thresholds and composite weights.
type ScoringConfig struct {
	ProfilePath string `yaml:"profile_path" mapstructure:"profile_path"`
}

// StoreConfig configures the run-history database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ServerConfig configures the local results server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("WALKABILITY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("data.raw_dir", "data/raw")
	v.SetDefault("data.processed_dir", "data/processed")
	v.SetDefault("data.outputs_dir", "outputs")
	v.SetDefault("collect.city", "Los Angeles")
	v.SetDefault("collect.state_fips", "06")
	v.SetDefault("collect.county_fips", "037")
	v.SetDefault("collect.tiger_year", 2022)
	v.SetDefault("collect.overpass_url", "https://overpass-api.de/api/interpreter")
	v.SetDefault("collect.acs_base_url", "https://api.census.gov/data/2021/acs/acs5")
	v.SetDefault("collect.rate_per_sec", 1)
	v.SetDefault("analysis.min_population", 1000)
	v.SetDefault("analysis.top_n", 10)
	v.SetDefault("analysis.high_gap_threshold", 0.5)
	v.SetDefault("analysis.candidate_limit", 10)
	v.SetDefault("analysis.count_radius_m", 1000)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "walkability.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
