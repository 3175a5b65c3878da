package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/alvmarrod/domain-weaver/internal/export"
	"github.com/sirupsen/logrus"
)

// Config holds all runtime configuration parameters
type Config struct {
	DBPath         string   `json:"db_path"`
	TerritoryIDs   []int64  `json:"territory_ids"`
	OutputDir      string   `json:"output_dir"`
	ExportFormats  []string `json:"export_formats"`
	MetricsPath    string   `json:"metrics_path"`
	LogLevel       string   `json:"log_level"`
	ConcurrentRuns int      `json:"concurrent_runs"`
	KeepRuns       int      `json:"keep_runs"`
}

// LoadConfig reads and validates configuration from a JSON file
func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	var cfg Config
	decoder := json.NewDecoder(file)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	// Apply defaults for missing values
	applyDefaults(&cfg)

	// Validate configuration
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Default returns the configuration used when no file is given
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)
	return &cfg
}

// applyDefaults sets default values for unspecified fields
func applyDefaults(cfg *Config) {
	if cfg.DBPath == "" {
		cfg.DBPath = "weaver.db"
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "out"
	}
	if len(cfg.ExportFormats) == 0 {
		cfg.ExportFormats = []string{"json"}
	}
	if cfg.MetricsPath == "" {
		cfg.MetricsPath = "metrics.json"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.ConcurrentRuns == 0 {
		cfg.ConcurrentRuns = 2
	}
	if cfg.KeepRuns == 0 {
		cfg.KeepRuns = 5
	}
}

// validate checks that values are sensible
func validate(cfg *Config) error {
	if cfg.ConcurrentRuns < 1 {
		return fmt.Errorf("concurrent_runs must be >= 1")
	}
	if cfg.KeepRuns < 1 {
		return fmt.Errorf("keep_runs must be >= 1")
	}
	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	for _, format := range cfg.ExportFormats {
		if _, err := export.ForFormat(format); err != nil {
			return fmt.Errorf("export_formats: %w", err)
		}
	}
	return validateTerritoryIDs(cfg.TerritoryIDs)
}

// SetTerritoryIDs overrides the configured territories after validating them
func (c *Config) SetTerritoryIDs(ids []int64) error {
	if err := validateTerritoryIDs(ids); err != nil {
		return err
	}
	c.TerritoryIDs = ids
	return nil
}

func validateTerritoryIDs(ids []int64) error {
	for _, id := range ids {
		if id < 1 {
			return fmt.Errorf("territory_ids must be >= 1, got %d", id)
		}
	}
	return nil
}
