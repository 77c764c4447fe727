package resource

import (
	"errors"
	"fmt"
	"math"
)

// Spec holds the static parameters of one processing resource.
// Units:
//   - PowerAt1GHz, AllowedAvgPower: mW
//   - Levels: GHz, ascending
//   - LockoutSeconds: minimum dwell time between two level changes
//   - TicksPerSecond: simulation granularity
type Spec struct {
	Name            string    `json:"name"`
	ID              int       `json:"id"`
	CPI             float64   `json:"cpi"`
	PowerAt1GHz     float64   `json:"power_at_1ghz"`
	Levels          []float64 `json:"levels"`
	DefaultLevel    int       `json:"default_level"`
	LockoutSeconds  float64   `json:"lockout_seconds"`
	AllowedAvgPower float64   `json:"allowed_avg_power"`
	TicksPerSecond  int64     `json:"ticks_per_second"`
}

// Validate checks that the parameters describe a usable resource.
func (s Spec) Validate() error {
	if s.CPI <= 0 {
		return errors.New("cpi must be positive")
	}
	if s.PowerAt1GHz < 0 {
		return errors.New("power_at_1ghz must not be negative")
	}
	if len(s.Levels) == 0 {
		return errors.New("at least one dvfs level is required")
	}
	for i, l := range s.Levels {
		if l <= 0 || math.IsNaN(l) || math.IsInf(l, 0) {
			return fmt.Errorf("dvfs level %d must be a positive frequency", i)
		}
		if i > 0 && l <= s.Levels[i-1] {
			return fmt.Errorf("dvfs levels must be strictly ascending (level %d)", i)
		}
	}
	if s.DefaultLevel < 0 || s.DefaultLevel >= len(s.Levels) {
		return fmt.Errorf("default_level %d out of range", s.DefaultLevel)
	}
	if s.TicksPerSecond <= 0 {
		return errors.New("ticks_per_second must be positive")
	}
	if s.AllowedAvgPower < 0 {
		return errors.New("allowed_avg_power must not be negative")
	}
	if s.LockoutTicks() < 1 {
		return errors.New("lockout_seconds must cover at least one tick")
	}
	return nil
}

// LockoutTicks converts the lockout duration to simulation ticks.
func (s Spec) LockoutTicks() int64 {
	return int64(math.Round(s.LockoutSeconds * float64(s.TicksPerSecond)))
}

// FullName identifies a resource among several of the same model.
func (s Spec) FullName() string {
	return fmt.Sprintf("%s / %d", s.Name, s.ID)
}
