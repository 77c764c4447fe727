package model

import "fmt"

// Unset marks a start or finish time that has not been committed yet.
const Unset int64 = -1

// PeriodicJob is a recurring real-time task definition. Period is expressed
// in simulation ticks.
type PeriodicJob struct {
	ID               int      `json:"id" yaml:"id"`
	InstructionCount int64    `json:"instruction_count" yaml:"instruction_count"`
	Period           int64    `json:"period" yaml:"period"`
	Priority         Priority `json:"priority" yaml:"priority"`
}

// RequiredRate returns the instructions per tick needed to keep up with the job.
func (p PeriodicJob) RequiredRate() float64 {
	if p.Period <= 0 {
		return 0
	}
	return float64(p.InstructionCount) / float64(p.Period)
}

func (p PeriodicJob) String() string {
	return fmt.Sprintf("periodic job %d: instructions=%d period=%d priority=%s",
		p.ID, p.InstructionCount, p.Period, p.Priority)
}

// Job is one concrete instance of a periodic job. Arrival, Deadline, Start and
// Finish are simulation ticks.
type Job struct {
	PeriodicID       int      `json:"periodic_id"`
	InstructionCount int64    `json:"instruction_count"`
	Arrival          int64    `json:"arrival"`
	Deadline         int64    `json:"deadline"`
	Priority         Priority `json:"priority"`

	Start   int64 `json:"start"`
	Finish  int64 `json:"finish"`
	Delayed bool  `json:"delayed"`
}

// NewJob returns an uncommitted job instance.
func NewJob(periodicID int, instructions, arrival, deadline int64, priority Priority) *Job {
	return &Job{
		PeriodicID:       periodicID,
		InstructionCount: instructions,
		Arrival:          arrival,
		Deadline:         deadline,
		Priority:         priority,
		Start:            Unset,
		Finish:           Unset,
	}
}

// Committed reports whether the job has been given an execution window.
func (j *Job) Committed() bool {
	return j.Start != Unset && j.Finish != Unset
}

// Delay marks the job as deferred, which extends its effective deadline.
func (j *Job) Delay() {
	j.Delayed = true
}

// EffectiveDeadline is the deadline extended by one relative deadline when the
// job has been deferred.
func (j *Job) EffectiveDeadline() int64 {
	if j.Delayed {
		return j.Deadline + (j.Deadline - j.Arrival)
	}
	return j.Deadline
}

// Reset clears every outcome field.
func (j *Job) Reset() {
	j.Start = Unset
	j.Finish = Unset
	j.Delayed = false
}

func (j *Job) String() string {
	return fmt.Sprintf("job of %d: instructions=%d arrival=%d deadline=%d priority=%s start=%d finish=%d",
		j.PeriodicID, j.InstructionCount, j.Arrival, j.Deadline, j.Priority, j.Start, j.Finish)
}

// ResetJobs restores every job to its uncommitted state.
func ResetJobs(jobs []*Job) {
	for _, j := range jobs {
		j.Reset()
	}
}
