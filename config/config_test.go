package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `inputs:
  availability: "data/input/availability.csv"
  requests: "data/input/requests.csv"
outputs:
  dir: "data/output"
schedule:
  required_examiners: 2
  parallel_limit: 3
  group_slots:
    "2": 3
    "3": 4
metrics:
  sinks:
    - type: "nop"
mqtt:
  enabled: true
  broker: "tcp://localhost:1883"
  topic: "defense/schedule"
logging:
  level: "debug"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"availability", cfg.Inputs.Availability, "data/input/availability.csv"},
		{"requests", cfg.Inputs.Requests, "data/input/requests.csv"},
		{"outputs.dir", cfg.Outputs.Dir, "data/output"},
		{"results_csv default", cfg.Outputs.ResultsCSV, "results.csv"},
		{"parallel_limit", cfg.Schedule.ParallelLimit, 3},
		{"group_slots", cfg.Schedule.GroupSlots["3"], 4},
		{"tier2 default", cfg.Schedule.Tier2MaxCandidates, 16},
		{"slot_minutes default", cfg.Schedule.SlotMinutes, 30},
		{"metrics_sink", len(cfg.Metrics.Sinks) == 1 && cfg.Metrics.Sinks[0].Type == "nop", true},
		{"mqtt.enabled", cfg.MQTT.Enabled, true},
		{"mqtt.topic", cfg.MQTT.Topic, "defense/schedule"},
		{"logging.level", cfg.Logging.Level, "debug"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s mismatch: %v", c.name, c.got)
		}
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `inputs:
  availability: "a.csv"
  requests: "r.csv"
schedule:
  parallel_limit: 1
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("K_INPUTS__REQUESTS", "override.csv")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Inputs.Requests != "override.csv" {
		t.Errorf("requests = %s, env override not applied", cfg.Inputs.Requests)
	}
}

func TestLoadRejectsMissingInputs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("schedule:\n  parallel_limit: 1\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for missing inputs")
	}
}

func TestLoadRejectsUnknownFormat(t *testing.T) {
	if _, err := Load("config.toml"); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
