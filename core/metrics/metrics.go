package metrics

import (
	"time"

	"github.com/kilianp07/qsched/core/resource"
	"github.com/kilianp07/qsched/core/stats"
)

// ScheduleResult is the committed schedule of one resource.
type ScheduleResult struct {
	RunID            string
	Resource         string
	Committed        int
	Missed           int
	Delayed          int
	Energy           int64
	Budget           float64
	Attempts         int
	Episodes         int
	TableSize        int
	Duration         time.Duration
	FrequencyHistory []resource.Sample
	EnergyHistory    []resource.Sample
	Time             time.Time
}

// MetricsSink records schedule results for observability purposes.
type MetricsSink interface {
	RecordSchedule(res ScheduleResult) error
}

// AttemptEvent captures the outcome of one train-and-replay attempt.
type AttemptEvent struct {
	Resource  string
	Attempt   int
	Finished  bool
	TableSize int
	Time      time.Time
}

// AttemptRecorder records scheduling attempts.
type AttemptRecorder interface {
	RecordAttempt(ev AttemptEvent) error
}

// MappingEvent describes the periodic jobs assigned to a resource.
type MappingEvent struct {
	Resource string
	Jobs     int
	Residual float64
	Time     time.Time
}

// MappingRecorder records job-to-resource mapping results.
type MappingRecorder interface {
	RecordMapping(ev MappingEvent) error
}

// JobStatsRecorder records per-periodic-job statistics of a run.
type JobStatsRecorder interface {
	RecordJobStats(runID string, st []stats.JobStat) error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordSchedule(ScheduleResult) error { return nil }

func (NopSink) RecordAttempt(AttemptEvent) error             { return nil }
func (NopSink) RecordMapping(MappingEvent) error             { return nil }
func (NopSink) RecordJobStats(string, []stats.JobStat) error { return nil }

// Flusher is implemented by sinks that buffer data until the run ends.
type Flusher interface {
	Flush() error
}
