package scheduler

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDecodeConfigYAML(t *testing.T) {
	data := `learning_rate: 0.3
exploration_prob: 0.9
exploration_decay: 0.99
episodes: 200
retries: 4
horizon_seconds: 10
rewards:
  soft_schedule: 1
  soft_delay: 0.5
  soft_miss: -1
  firm_schedule: 2
  firm_miss: -3
  dvfs_up: -0.2
  dvfs_down: 0.2
  finish: 100
`
	cfg, err := DecodeConfig(bytes.NewBufferString(data), "yaml")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cfg.LearningRate != 0.3 || cfg.Episodes != 200 || cfg.Retries != 4 || cfg.HorizonSeconds != 10 {
		t.Fatalf("bad cfg %#v", cfg)
	}
	if cfg.Rewards.FirmMiss != -3 || cfg.Rewards.Finish != 100 || cfg.Rewards.DVFSDown != 0.2 {
		t.Fatalf("bad rewards %#v", cfg.Rewards)
	}
	if cfg.MappingAlgorithm != WorstFitAlgorithm {
		t.Fatalf("expected default mapping algorithm, got %q", cfg.MappingAlgorithm)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.json")
	if err := os.WriteFile(path, []byte(`{"mapping_algorithm":"worst-fit","learning_rate":0.1,"episodes":5,"horizon_seconds":2}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LearningRate != 0.1 || cfg.Episodes != 5 || cfg.Retries != 1 || cfg.ExplorationDecay != 1 {
		t.Fatalf("bad cfg %#v", cfg)
	}

	txt := filepath.Join(dir, "cfg.txt")
	if err := os.WriteFile(txt, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadConfig(txt); err == nil {
		t.Fatalf("expected unsupported format error")
	}
	if _, err := LoadConfig(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("expected missing file error")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"learning rate", func(c *Config) { c.LearningRate = 1.5 }},
		{"exploration", func(c *Config) { c.ExplorationProb = -0.1 }},
		{"decay", func(c *Config) { c.ExplorationDecay = 2 }},
		{"episodes", func(c *Config) { c.Episodes = -1 }},
		{"retries", func(c *Config) { c.Retries = 0 }},
		{"horizon", func(c *Config) { c.HorizonSeconds = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}
