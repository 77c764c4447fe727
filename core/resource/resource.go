package resource

import (
	"fmt"
	"math"

	"github.com/kilianp07/qsched/core/model"
)

// Sample is one point of a time series. Time is in simulated seconds.
type Sample struct {
	Time  float64 `json:"time"`
	Value float64 `json:"value"`
}

// Switch records a DVFS level change at a given tick.
type Switch struct {
	Time  int64 `json:"time"`
	Level int   `json:"level"`
}

// Resource models one DVFS capable processing unit. It keeps the schedule
// committed so far together with its energy and frequency histories.
type Resource struct {
	spec    Spec
	lockout int64

	level     int
	lockFrom  int64
	available float64
	periodic  []model.PeriodicJob

	committed     []*model.Job
	missed        []*model.Job
	freqHistory   []Sample
	energyHistory []Sample
	switches      []Switch
}

// New validates spec and returns a resource at its maximal level with the full
// default capacity available.
func New(spec Spec) (*Resource, error) {
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("resource %s: %w", spec.Name, err)
	}
	r := &Resource{
		spec:    spec,
		lockout: spec.LockoutTicks(),
	}
	r.available = r.DefaultInstructionRate()
	r.Reset()
	return r, nil
}

// Spec returns the static parameters.
func (r *Resource) Spec() Spec { return r.spec }

// Name returns the resource full name.
func (r *Resource) Name() string { return r.spec.FullName() }

// Lockout returns the dwell time between level changes in ticks.
func (r *Resource) Lockout() int64 { return r.lockout }

// Level returns the current DVFS level index.
func (r *Resource) Level() int { return r.level }

// MaxLevel returns the index of the highest DVFS level.
func (r *Resource) MaxLevel() int { return len(r.spec.Levels) - 1 }

// Frequency returns the current clock rate in GHz.
func (r *Resource) Frequency() float64 { return r.spec.Levels[r.level] }

// LockFrom returns the tick of the last level change.
func (r *Resource) LockFrom() int64 { return r.lockFrom }

// Available returns the residual capacity in instructions per tick.
func (r *Resource) Available() float64 { return r.available }

// Periodic returns the periodic jobs assigned to the resource.
func (r *Resource) Periodic() []model.PeriodicJob { return r.periodic }

// Committed returns the jobs committed so far in commit order.
func (r *Resource) Committed() []*model.Job { return r.committed }

// Missed returns the jobs given up so far.
func (r *Resource) Missed() []*model.Job { return r.missed }

// FrequencyHistory returns the (seconds, GHz) samples.
func (r *Resource) FrequencyHistory() []Sample { return r.freqHistory }

// EnergyHistory returns the (seconds, cumulative energy) samples.
func (r *Resource) EnergyHistory() []Sample { return r.energyHistory }

// Switches returns the DVFS level changes applied since the last reset.
func (r *Resource) Switches() []Switch { return r.switches }

// InstructionRate returns the instructions executed per tick at the current level.
func (r *Resource) InstructionRate() float64 {
	return r.rateAt(r.level)
}

// DefaultInstructionRate returns the instructions per tick at the default level.
func (r *Resource) DefaultInstructionRate() float64 {
	return r.rateAt(r.spec.DefaultLevel)
}

func (r *Resource) rateAt(level int) float64 {
	return r.spec.Levels[level] * (1e9 / float64(r.spec.TicksPerSecond)) / r.spec.CPI
}

// Assign adds a periodic job and consumes its required rate from the residual capacity.
func (r *Resource) Assign(p model.PeriodicJob) {
	r.periodic = append(r.periodic, p)
	r.available -= p.RequiredRate()
}

// LastFinish returns the finish tick of the last committed job, 0 when none.
func (r *Resource) LastFinish() int64 {
	if len(r.committed) == 0 {
		return 0
	}
	return r.committed[len(r.committed)-1].Finish
}

// ExecutionTime returns the ticks needed to run job at the current level.
func (r *Resource) ExecutionTime(job *model.Job) int64 {
	return int64(math.Floor(float64(job.InstructionCount) / r.InstructionRate()))
}

// IsSchedulable reports whether job can be appended to the committed schedule
// without exceeding its effective deadline.
func (r *Resource) IsSchedulable(job *model.Job) bool {
	start := max(job.Arrival, r.LastFinish())
	return start+r.ExecutionTime(job) <= job.EffectiveDeadline()
}

// Commit appends job to the schedule and returns the energy consumed since
// the previous commit.
func (r *Resource) Commit(job *model.Job) int64 {
	last := r.LastFinish()
	job.Start = max(job.Arrival, last)
	job.Finish = job.Start + r.ExecutionTime(job)
	r.committed = append(r.committed, job)

	energy := r.Energy(job.Finish - last)
	at := r.seconds(job.Finish)
	r.energyHistory = append(r.energyHistory, Sample{Time: at, Value: r.lastEnergy() + float64(energy)})
	r.freqHistory = append(r.freqHistory, Sample{Time: at, Value: r.Frequency()})
	return energy
}

// Stall advances the histories by interval ticks without running any job and
// returns the energy consumed while waiting.
func (r *Resource) Stall(interval int64) int64 {
	energy := r.Energy(interval)
	lastE := r.energyHistory[len(r.energyHistory)-1]
	lastF := r.freqHistory[len(r.freqHistory)-1]
	r.energyHistory = append(r.energyHistory, Sample{Time: lastE.Time + r.seconds(interval), Value: lastE.Value + float64(energy)})
	r.freqHistory = append(r.freqHistory, Sample{Time: lastF.Time + r.seconds(interval), Value: r.Frequency()})
	return energy
}

// Energy returns the energy consumed over interval ticks at the current level.
func (r *Resource) Energy(interval int64) int64 {
	f := r.Frequency()
	return int64(math.Floor(r.seconds(interval) * f * f * f * r.spec.PowerAt1GHz))
}

// EnergyBudget returns the energy allowed over a horizon of the given seconds.
func (r *Resource) EnergyBudget(horizonSeconds float64) float64 {
	return r.spec.AllowedAvgPower * horizonSeconds
}

// Miss records job as given up.
func (r *Resource) Miss(job *model.Job) {
	r.missed = append(r.missed, job)
}

// LevelUp raises the DVFS level. The caller checks bounds and lockout.
func (r *Resource) LevelUp(at int64) {
	r.level++
	r.lockFrom = at
	r.switches = append(r.switches, Switch{Time: at, Level: r.level})
}

// LevelDown lowers the DVFS level. The caller checks bounds and lockout.
func (r *Resource) LevelDown(at int64) {
	r.level--
	r.lockFrom = at
	r.switches = append(r.switches, Switch{Time: at, Level: r.level})
}

// Reset clears the per-episode state and restores the maximal level.
func (r *Resource) Reset() {
	r.level = r.MaxLevel()
	r.lockFrom = 0
	r.committed = nil
	r.missed = nil
	r.switches = nil
	r.freqHistory = []Sample{{Time: 0, Value: r.Frequency()}}
	r.energyHistory = []Sample{{Time: 0, Value: 0}}
}

func (r *Resource) lastEnergy() float64 {
	return r.energyHistory[len(r.energyHistory)-1].Value
}

func (r *Resource) seconds(ticks int64) float64 {
	return float64(ticks) / float64(r.spec.TicksPerSecond)
}
