package config

import (
	"fmt"
	"sort"

	"github.com/kilianp07/qsched/core/generator"
	"github.com/kilianp07/qsched/core/resource"
)

// SimulationConfig describes the workload and the resources of a run.
type SimulationConfig struct {
	DurationSeconds float64 `json:"duration_seconds"`
	TicksPerSecond  int64   `json:"ticks_per_second"`
	TaskSetSize     int     `json:"task_set_size"`
	// Utilization is the share of the combined default capacity of all
	// resources requested by the generated job set.
	Utilization    float64                   `json:"utilization"`
	PeriodSegments []generator.PeriodSegment `json:"period_segments"`
	Seed           int64                     `json:"seed"`
	// Cores maps a core type of the catalog to the number of instances.
	Cores map[string]int `json:"cores"`
	// Workload is an optional YAML job set used instead of generation.
	Workload string `json:"workload"`
}

// SetDefaults applies fallback values for optional fields.
func (c *SimulationConfig) SetDefaults() {
	if c.DurationSeconds == 0 {
		c.DurationSeconds = 10
	}
	if c.TicksPerSecond == 0 {
		c.TicksPerSecond = 1000
	}
	if c.TaskSetSize == 0 {
		c.TaskSetSize = 10
	}
	if c.Utilization == 0 {
		c.Utilization = 0.5
	}
	if len(c.PeriodSegments) == 0 {
		c.PeriodSegments = []generator.PeriodSegment{
			{Name: "short", MinSeconds: 0.1, MaxSeconds: 0.5},
			{Name: "long", MinSeconds: 0.5, MaxSeconds: 2},
		}
	}
}

// Validate checks mandatory fields.
func (c SimulationConfig) Validate() error {
	if c.DurationSeconds <= 0 {
		return fmt.Errorf("duration_seconds must be positive")
	}
	if c.TicksPerSecond <= 0 {
		return fmt.Errorf("ticks_per_second must be positive")
	}
	if len(c.Cores) == 0 {
		return fmt.Errorf("at least one core instance is required")
	}
	for name, n := range c.Cores {
		if n <= 0 {
			return fmt.Errorf("core count for %s must be positive", name)
		}
	}
	if c.Workload == "" {
		if err := c.Generator().Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Generator returns the job generator parameters.
func (c SimulationConfig) Generator() generator.Config {
	return generator.Config{
		TaskSetSize:    c.TaskSetSize,
		Utilization:    c.Utilization,
		Segments:       c.PeriodSegments,
		TicksPerSecond: c.TicksPerSecond,
		Seed:           c.Seed,
	}
}

// CoreConfig describes a core type of the catalog.
type CoreConfig struct {
	CPI             float64   `json:"cpi"`
	PowerAt1GHz     float64   `json:"power_at_1ghz"`
	Levels          []float64 `json:"levels"`
	DefaultLevel    int       `json:"default_level"`
	LockoutSeconds  float64   `json:"lockout_seconds"`
	AllowedAvgPower float64   `json:"allowed_avg_power"`
}

// ResourceSpecs expands simulation.cores into one validated spec per
// instance. Types are visited by name and ids are assigned from 1.
func (c Config) ResourceSpecs() ([]resource.Spec, error) {
	names := make([]string, 0, len(c.Simulation.Cores))
	for name := range c.Simulation.Cores {
		names = append(names, name)
	}
	sort.Strings(names)
	var out []resource.Spec
	id := 1
	for _, name := range names {
		core, ok := c.Cores[name]
		if !ok {
			return nil, fmt.Errorf("unknown core type %s", name)
		}
		for i := 0; i < c.Simulation.Cores[name]; i++ {
			spec := resource.Spec{
				Name:            name,
				ID:              id,
				CPI:             core.CPI,
				PowerAt1GHz:     core.PowerAt1GHz,
				Levels:          core.Levels,
				DefaultLevel:    core.DefaultLevel,
				LockoutSeconds:  core.LockoutSeconds,
				AllowedAvgPower: core.AllowedAvgPower,
				TicksPerSecond:  c.Simulation.TicksPerSecond,
			}
			if err := spec.Validate(); err != nil {
				return nil, fmt.Errorf("%s: %w", spec.FullName(), err)
			}
			out = append(out, spec)
			id++
		}
	}
	return out, nil
}
