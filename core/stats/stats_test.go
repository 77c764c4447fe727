package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/qsched/core/model"
)

func committed(id int, arrival, deadline, start, finish int64, delayed bool) model.Job {
	return model.Job{PeriodicID: id, Arrival: arrival, Deadline: deadline, Start: start, Finish: finish, Delayed: delayed}
}

func TestPerJob(t *testing.T) {
	outcomes := []Outcome{
		{
			Resource:       "big / 1",
			TicksPerSecond: 100,
			Periodic: []model.PeriodicJob{
				{ID: 2, InstructionCount: 10, Period: 50, Priority: model.PrioritySoft},
			},
			Committed: []model.Job{
				committed(2, 0, 50, 10, 20, false),
				committed(2, 50, 100, 60, 90, true),
			},
			Missed: []model.Job{{PeriodicID: 2, Arrival: 100, Deadline: 150}},
		},
		{
			Resource:       "little / 0",
			TicksPerSecond: 100,
			Periodic: []model.PeriodicJob{
				{ID: 1, InstructionCount: 5, Period: 100, Priority: model.PriorityFirm},
			},
			Missed: []model.Job{{PeriodicID: 1}},
		},
	}
	got := PerJob(outcomes)
	require.Len(t, got, 2)

	first := got[0]
	assert.Equal(t, 1, first.ID)
	assert.Equal(t, "little / 0", first.Resource)
	assert.Equal(t, 1, first.Instances)
	assert.Equal(t, 1, first.Missed)
	assert.Equal(t, 0, first.Scheduled())
	assert.Zero(t, first.AvgResponse)

	second := got[1]
	assert.Equal(t, "big / 1", second.Resource)
	assert.InDelta(t, 0.5, second.PeriodSeconds, 1e-12)
	assert.Equal(t, 3, second.Instances)
	assert.Equal(t, 1, second.Missed)
	assert.Equal(t, 1, second.Delayed)
	assert.InDelta(t, 0.2, second.AvgExecution, 1e-12) // (10 + 30) / 2 ticks
	assert.InDelta(t, 0.1, second.AvgWaiting, 1e-12)   // (10 + 10) / 2
	assert.InDelta(t, 0.2, second.AvgSlack, 1e-12)     // (30 + 10) / 2
	assert.InDelta(t, 0.3, second.AvgResponse, 1e-12)  // (20 + 40) / 2
	assert.InDelta(t, 0.4, second.P95Response, 1e-12)
}

func TestSummarize(t *testing.T) {
	jobs := []JobStat{
		{Instances: 4, Missed: 1, Delayed: 2, AvgSlack: 1},
		{Instances: 2, Missed: 0, AvgSlack: 4},
		{Instances: 1, Missed: 1},
	}
	s := Summarize(2, jobs)
	assert.Equal(t, 7, s.Instances)
	assert.Equal(t, 5, s.Committed)
	assert.Equal(t, 2, s.Missed)
	assert.Equal(t, 2, s.Delayed)
	assert.InDelta(t, 2.0/7, s.MissRatio, 1e-12)
	assert.InDelta(t, (3*1+2*4)/5.0, s.MeanSlack, 1e-12)

	assert.Equal(t, Summary{Resources: 0}, Summarize(0, nil))
}
