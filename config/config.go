// Package config loads the service configuration from a YAML or JSON file
// with optional environment overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/martinmn/defsched/core/metrics"
	"github.com/martinmn/defsched/core/schedule"
	"github.com/martinmn/defsched/infra/mqtt"
)

type Config struct {
	Inputs   InputsConfig    `json:"inputs"`
	Outputs  OutputsConfig   `json:"outputs"`
	Schedule schedule.Config `json:"schedule"`
	Metrics  metrics.Config  `json:"metrics"`
	MQTT     mqtt.Config     `json:"mqtt"`
	Logging  LoggingConfig   `json:"logging"`
}

// InputsConfig locates the cleaned input files.
type InputsConfig struct {
	// Availability is the examiner availability matrix CSV.
	Availability string `json:"availability"`
	// Requests is the defense request list CSV.
	Requests string `json:"requests"`
}

// Validate checks mandatory fields.
func (c InputsConfig) Validate() error {
	if c.Availability == "" {
		return fmt.Errorf("inputs.availability is required")
	}
	if c.Requests == "" {
		return fmt.Errorf("inputs.requests is required")
	}
	return nil
}

// OutputsConfig names the files written at the end of a run, all relative
// to Dir.
type OutputsConfig struct {
	Dir          string `json:"dir"`
	ResultsCSV   string `json:"results_csv"`
	ResultsJSON  string `json:"results_json"`
	OccupancyCSV string `json:"occupancy_csv"`
	ExaminersCSV string `json:"examiners_csv"`
	SummaryJSON  string `json:"summary_json"`
}

// SetDefaults applies the standard file names.
func (c *OutputsConfig) SetDefaults() {
	if c.Dir == "" {
		c.Dir = "output"
	}
	if c.ResultsCSV == "" {
		c.ResultsCSV = "results.csv"
	}
	if c.ResultsJSON == "" {
		c.ResultsJSON = "results.json"
	}
	if c.OccupancyCSV == "" {
		c.OccupancyCSV = "occupancy.csv"
	}
	if c.ExaminersCSV == "" {
		c.ExaminersCSV = "examiners.csv"
	}
	if c.SummaryJSON == "" {
		c.SummaryJSON = "summary.json"
	}
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("K_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Schedule.SetDefaults()
	cfg.Outputs.SetDefaults()
	cfg.Logging.SetDefaults()
	if err := cfg.Inputs.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Schedule.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Logging.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
