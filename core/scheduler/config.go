package scheduler

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/qsched/core/model"
)

// Rewards holds the shaping rewards and penalties of the decision process.
// Hard jobs are never rewarded for being scheduled.
type Rewards struct {
	SoftSchedule float64 `json:"soft_schedule" yaml:"soft_schedule"`
	SoftDelay    float64 `json:"soft_delay" yaml:"soft_delay"`
	SoftMiss     float64 `json:"soft_miss" yaml:"soft_miss"`
	FirmSchedule float64 `json:"firm_schedule" yaml:"firm_schedule"`
	FirmMiss     float64 `json:"firm_miss" yaml:"firm_miss"`
	DVFSUp       float64 `json:"dvfs_up" yaml:"dvfs_up"`
	DVFSDown     float64 `json:"dvfs_down" yaml:"dvfs_down"`
	Finish       float64 `json:"finish" yaml:"finish"`
}

func (r Rewards) schedule(p model.Priority) float64 {
	switch p {
	case model.PrioritySoft:
		return r.SoftSchedule
	case model.PriorityFirm:
		return r.FirmSchedule
	default:
		return 0
	}
}

func (r Rewards) miss(p model.Priority) float64 {
	if p == model.PrioritySoft {
		return r.SoftMiss
	}
	return r.FirmMiss
}

func (r Rewards) values() []float64 {
	return []float64{r.SoftSchedule, r.SoftDelay, r.SoftMiss, r.FirmSchedule, r.FirmMiss, r.DVFSUp, r.DVFSDown, r.Finish}
}

// Config defines the learning and mapping parameters of a Scheduler.
type Config struct {
	MappingAlgorithm string  `json:"mapping_algorithm" yaml:"mapping_algorithm"`
	LearningRate     float64 `json:"learning_rate" yaml:"learning_rate"`
	ExplorationProb  float64 `json:"exploration_prob" yaml:"exploration_prob"`
	ExplorationDecay float64 `json:"exploration_decay" yaml:"exploration_decay"`
	Episodes         int     `json:"episodes" yaml:"episodes"`
	Rewards          Rewards `json:"rewards" yaml:"rewards"`
	Retries          int     `json:"retries" yaml:"retries"`
	HorizonSeconds   float64 `json:"horizon_seconds" yaml:"horizon_seconds"`
}

// SetDefaults fills optional fields.
func (c *Config) SetDefaults() {
	if c.MappingAlgorithm == "" {
		c.MappingAlgorithm = WorstFitAlgorithm
	}
	if c.ExplorationDecay == 0 {
		c.ExplorationDecay = 1
	}
	if c.Retries == 0 {
		c.Retries = 1
	}
}

// Validate checks parameter ranges. Every error wraps ErrInvalidConfig.
func (c Config) Validate() error {
	switch {
	case c.LearningRate <= 0 || c.LearningRate > 1:
		return fmt.Errorf("%w: learning_rate must be in (0, 1]", ErrInvalidConfig)
	case c.ExplorationProb < 0 || c.ExplorationProb > 1:
		return fmt.Errorf("%w: exploration_prob must be in [0, 1]", ErrInvalidConfig)
	case c.ExplorationDecay < 0 || c.ExplorationDecay > 1:
		return fmt.Errorf("%w: exploration_decay must be in [0, 1]", ErrInvalidConfig)
	case c.Episodes < 0:
		return fmt.Errorf("%w: episodes must not be negative", ErrInvalidConfig)
	case c.Retries < 1:
		return fmt.Errorf("%w: retries must be at least 1", ErrInvalidConfig)
	case c.HorizonSeconds <= 0 || math.IsInf(c.HorizonSeconds, 0) || math.IsNaN(c.HorizonSeconds):
		return fmt.Errorf("%w: horizon_seconds must be positive", ErrInvalidConfig)
	}
	for _, v := range c.Rewards.values() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: rewards must be finite", ErrInvalidConfig)
		}
	}
	return nil
}

// LoadConfig loads a Config from a JSON or YAML file.
func LoadConfig(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	return DecodeConfig(f, ext)
}

// DecodeConfig reads from r to decode a Config and applies defaults.
func DecodeConfig(r io.Reader, format string) (Config, error) {
	var cfg Config
	switch strings.ToLower(format) {
	case "yaml", "yml":
		if err := yaml.NewDecoder(r).Decode(&cfg); err != nil {
			return cfg, err
		}
	case "json":
		if err := json.NewDecoder(r).Decode(&cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config format: %s", format)
	}
	cfg.SetDefaults()
	return cfg, nil
}
