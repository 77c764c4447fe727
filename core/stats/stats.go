// Package stats aggregates committed and missed job instances into
// per-periodic-job statistics.
package stats

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/qsched/core/model"
)

// Outcome is the schedule of one resource as consumed by the aggregators.
type Outcome struct {
	Resource       string
	TicksPerSecond int64
	Periodic       []model.PeriodicJob
	Committed      []model.Job
	Missed         []model.Job
}

// JobStat summarises the instances of one periodic job. Times are in
// seconds. Averages are zero when no instance was committed.
type JobStat struct {
	ID               int            `json:"id"`
	InstructionCount int64          `json:"instruction_count"`
	PeriodSeconds    float64        `json:"period_seconds"`
	Priority         model.Priority `json:"priority"`
	Instances        int            `json:"instances"`
	Missed           int            `json:"missed"`
	Delayed          int            `json:"delayed"`
	AvgExecution     float64        `json:"avg_execution"`
	AvgWaiting       float64        `json:"avg_waiting"`
	AvgSlack         float64        `json:"avg_slack"`
	AvgResponse      float64        `json:"avg_response"`
	P95Response      float64        `json:"p95_response"`
	Resource         string         `json:"resource"`
}

// Scheduled returns the number of committed instances.
func (s JobStat) Scheduled() int { return s.Instances - s.Missed }

type samples struct {
	execution, waiting, slack, response []float64
}

// PerJob returns one JobStat per periodic job, ordered by id.
func PerJob(outcomes []Outcome) []JobStat {
	var out []JobStat
	for _, o := range outcomes {
		byID := make(map[int]*samples, len(o.Periodic))
		index := make(map[int]int, len(o.Periodic))
		for _, p := range o.Periodic {
			index[p.ID] = len(out)
			byID[p.ID] = &samples{}
			out = append(out, JobStat{
				ID:               p.ID,
				InstructionCount: p.InstructionCount,
				PeriodSeconds:    seconds(p.Period, o.TicksPerSecond),
				Priority:         p.Priority,
				Resource:         o.Resource,
			})
		}
		for _, j := range o.Committed {
			i, ok := index[j.PeriodicID]
			if !ok {
				continue
			}
			st := &out[i]
			st.Instances++
			if j.Delayed {
				st.Delayed++
			}
			s := byID[j.PeriodicID]
			s.execution = append(s.execution, seconds(j.Finish-j.Start, o.TicksPerSecond))
			s.waiting = append(s.waiting, seconds(j.Start-j.Arrival, o.TicksPerSecond))
			s.slack = append(s.slack, seconds(j.Deadline-j.Finish, o.TicksPerSecond))
			s.response = append(s.response, seconds(j.Finish-j.Arrival, o.TicksPerSecond))
		}
		for _, j := range o.Missed {
			if i, ok := index[j.PeriodicID]; ok {
				out[i].Instances++
				out[i].Missed++
			}
		}
		for id, s := range byID {
			if len(s.response) == 0 {
				continue
			}
			st := &out[index[id]]
			st.AvgExecution = stat.Mean(s.execution, nil)
			st.AvgWaiting = stat.Mean(s.waiting, nil)
			st.AvgSlack = stat.Mean(s.slack, nil)
			st.AvgResponse = stat.Mean(s.response, nil)
			sort.Float64s(s.response)
			st.P95Response = stat.Quantile(0.95, stat.Empirical, s.response, nil)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Summary aggregates all resources of a run.
type Summary struct {
	Resources int     `json:"resources"`
	Instances int     `json:"instances"`
	Committed int     `json:"committed"`
	Missed    int     `json:"missed"`
	Delayed   int     `json:"delayed"`
	MissRatio float64 `json:"miss_ratio"`
	// MeanSlack is the average slack of committed instances in seconds.
	MeanSlack float64 `json:"mean_slack"`
}

// Summarize folds per-job statistics into run totals.
func Summarize(resources int, jobs []JobStat) Summary {
	s := Summary{Resources: resources}
	var slack, weights []float64
	for _, j := range jobs {
		s.Instances += j.Instances
		s.Missed += j.Missed
		s.Delayed += j.Delayed
		if n := j.Scheduled(); n > 0 {
			slack = append(slack, j.AvgSlack)
			weights = append(weights, float64(n))
		}
	}
	s.Committed = s.Instances - s.Missed
	if s.Instances > 0 {
		s.MissRatio = float64(s.Missed) / float64(s.Instances)
	}
	if floats.Sum(weights) > 0 {
		s.MeanSlack = stat.Mean(slack, weights)
	}
	return s
}

func seconds(ticks, tps int64) float64 {
	if tps <= 0 {
		return float64(ticks)
	}
	return float64(ticks) / float64(tps)
}
