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

	"github.com/kilianp07/qsched/core/metrics"
	"github.com/kilianp07/qsched/core/scheduler"
	"github.com/kilianp07/qsched/infra/mqtt"
)

// EnvPrefix prefixes environment overrides, e.g. QS_SCHEDULER__EPISODES=500.
const EnvPrefix = "QS_"

type Config struct {
	Simulation SimulationConfig      `json:"simulation"`
	Cores      map[string]CoreConfig `json:"cores"`
	Scheduler  scheduler.Config      `json:"scheduler"`
	Metrics    metrics.Config        `json:"metrics"`
	Logging    LoggingConfig         `json:"logging"`
	Output     OutputConfig          `json:"output"`
	MQTT       mqtt.Config           `json:"mqtt"`
	Sentry     SentryConfig          `json:"sentry"`
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
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults applies the defaults of every section. The scheduler horizon
// follows the simulation duration unless set explicitly.
func (c *Config) SetDefaults() {
	c.Simulation.SetDefaults()
	if c.Scheduler.HorizonSeconds == 0 {
		c.Scheduler.HorizonSeconds = c.Simulation.DurationSeconds
	}
	c.Scheduler.SetDefaults()
	c.Logging.SetDefaults()
	c.Output.SetDefaults()
	if c.MQTT.Broker != "" {
		c.MQTT.SetDefaults()
	}
	c.Sentry.SetDefaults()
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Simulation.Validate(); err != nil {
		return fmt.Errorf("simulation: %w", err)
	}
	if len(c.Cores) == 0 {
		return fmt.Errorf("cores: at least one core type is required")
	}
	for name := range c.Simulation.Cores {
		if _, ok := c.Cores[name]; !ok {
			return fmt.Errorf("simulation: core type %s is not defined in cores", name)
		}
	}
	if _, err := c.ResourceSpecs(); err != nil {
		return fmt.Errorf("cores: %w", err)
	}
	if err := c.Scheduler.Validate(); err != nil {
		return fmt.Errorf("scheduler: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if err := c.Output.Validate(); err != nil {
		return fmt.Errorf("output: %w", err)
	}
	if err := c.Sentry.Validate(); err != nil {
		return fmt.Errorf("sentry: %w", err)
	}
	return nil
}
