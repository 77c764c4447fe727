package scheduler

import (
	"sort"

	"github.com/kilianp07/qsched/core/model"
)

// ExpandJobs builds the job instances released by periodic within a horizon
// of horizonTicks. An instance is released at every multiple of the period
// whose deadline falls strictly before the horizon. Instances are returned
// sorted by deadline; equal deadlines keep the input order.
func ExpandJobs(periodic []model.PeriodicJob, horizonTicks int64) []*model.Job {
	var jobs []*model.Job
	for _, p := range periodic {
		if p.Period <= 0 {
			continue
		}
		for t := int64(0); t+p.Period < horizonTicks; t += p.Period {
			jobs = append(jobs, model.NewJob(p.ID, p.InstructionCount, t, t+p.Period, p.Priority))
		}
	}
	sort.SliceStable(jobs, func(i, j int) bool { return jobs[i].Deadline < jobs[j].Deadline })
	return jobs
}
