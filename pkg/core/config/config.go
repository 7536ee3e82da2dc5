// Package config loads the application configuration from YAML with
// environment fallbacks for deployment-specific values.
package config

import (
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v2"
)

// Config is the top-level application configuration.
type Config struct {
	Ingest    IngestConf    `yaml:"ingest"`
	Analytics AnalyticsConf `yaml:"analytics"`
	LogFile   string        `yaml:"log_file,omitempty"`
}

// IngestConf controls batch ingestion.
type IngestConf struct {
	WatchDir         string `yaml:"watch_dir"`
	DataSource       string `yaml:"data_source"`
	PatternOverrides string `yaml:"pattern_overrides,omitempty"` // Hjson file
}

// AnalyticsConf controls the risk-model defaults.
type AnalyticsConf struct {
	MonteCarloRuns int   `yaml:"monte_carlo_runs"`
	Seed           int64 `yaml:"seed"`
}

// Load reads a YAML configuration file and applies defaults. A missing
// file is not an error when path is empty; defaults apply.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Ingest: IngestConf{
			DataSource: "manual_upload",
		},
		Analytics: AnalyticsConf{
			MonteCarloRuns: 10000,
			Seed:           42,
		},
	}

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("cannot parse YAML config: %w", err)
	}
	return cfg, nil
}
