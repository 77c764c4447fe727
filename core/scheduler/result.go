package scheduler

import (
	"github.com/kilianp07/qsched/core/model"
	"github.com/kilianp07/qsched/core/resource"
)

// Schedule is the committed outcome of Scheduler.Schedule for one resource.
// Jobs are copies and stay valid after further scheduling calls.
type Schedule struct {
	Resource         string            `json:"resource"`
	Horizon          int64             `json:"horizon"`
	Committed        []model.Job       `json:"committed"`
	Missed           []model.Job       `json:"missed"`
	FrequencyHistory []resource.Sample `json:"frequency_history"`
	EnergyHistory    []resource.Sample `json:"energy_history"`
	Switches         []resource.Switch `json:"switches"`
	Energy           int64             `json:"energy"`
	Budget           float64           `json:"budget"`
	Attempts         int               `json:"attempts"`
	Episodes         int               `json:"episodes"`
	TableSize        int               `json:"table_size"`
}

// Delayed counts committed jobs that were deferred before running.
func (s *Schedule) Delayed() int {
	n := 0
	for _, j := range s.Committed {
		if j.Delayed {
			n++
		}
	}
	return n
}

func newSchedule(res *resource.Resource, horizon int64, final DecisionState, budget float64) *Schedule {
	return &Schedule{
		Resource:         res.Name(),
		Horizon:          horizon,
		Committed:        copyJobs(res.Committed()),
		Missed:           copyJobs(res.Missed()),
		FrequencyHistory: append([]resource.Sample(nil), res.FrequencyHistory()...),
		EnergyHistory:    append([]resource.Sample(nil), res.EnergyHistory()...),
		Switches:         append([]resource.Switch(nil), res.Switches()...),
		Energy:           final.Energy,
		Budget:           budget,
	}
}

func copyJobs(jobs []*model.Job) []model.Job {
	out := make([]model.Job, len(jobs))
	for i, j := range jobs {
		out[i] = *j
	}
	return out
}
