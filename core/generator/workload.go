package generator

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/qsched/core/model"
)

// Workload is the on-disk form of a periodic job set.
type Workload struct {
	TicksPerSecond int64               `yaml:"ticks_per_second,omitempty"`
	Jobs           []model.PeriodicJob `yaml:"jobs"`
}

// LoadWorkload reads a YAML workload file. Periods are in ticks.
func LoadWorkload(path string) ([]model.PeriodicJob, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var w Workload
	if err := yaml.Unmarshal(b, &w); err != nil {
		return nil, fmt.Errorf("decode workload %s: %w", path, err)
	}
	if err := validateJobs(w.Jobs); err != nil {
		return nil, fmt.Errorf("workload %s: %w", path, err)
	}
	return w.Jobs, nil
}

// SaveWorkload writes jobs to path in the format read by LoadWorkload.
func SaveWorkload(path string, ticksPerSecond int64, jobs []model.PeriodicJob) error {
	b, err := yaml.Marshal(Workload{TicksPerSecond: ticksPerSecond, Jobs: jobs})
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

func validateJobs(jobs []model.PeriodicJob) error {
	seen := make(map[int]struct{}, len(jobs))
	for _, j := range jobs {
		if _, ok := seen[j.ID]; ok {
			return fmt.Errorf("duplicate periodic job id %d", j.ID)
		}
		seen[j.ID] = struct{}{}
		if j.Period <= 0 {
			return fmt.Errorf("periodic job %d: period must be positive", j.ID)
		}
		if j.InstructionCount < 0 {
			return fmt.Errorf("periodic job %d: negative instruction count", j.ID)
		}
	}
	return nil
}
