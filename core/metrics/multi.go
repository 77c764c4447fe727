package metrics

import "github.com/kilianp07/qsched/core/stats"

// MultiSink fans records out to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordSchedule forwards the record to all sinks, returning the first error encountered.
func (m *MultiSink) RecordSchedule(res ScheduleResult) error {
	for _, s := range m.Sinks {
		if err := s.RecordSchedule(res); err != nil {
			return err
		}
	}
	return nil
}

// RecordAttempt forwards attempt events.
func (m *MultiSink) RecordAttempt(ev AttemptEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(AttemptRecorder); ok {
			if err := rec.RecordAttempt(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordMapping forwards mapping events.
func (m *MultiSink) RecordMapping(ev MappingEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(MappingRecorder); ok {
			if err := rec.RecordMapping(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordJobStats forwards per-job statistics when supported by the sink.
func (m *MultiSink) RecordJobStats(runID string, st []stats.JobStat) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(JobStatsRecorder); ok {
			if err := rec.RecordJobStats(runID, st); err != nil {
				return err
			}
		}
	}
	return nil
}

// Flush flushes every buffering sink and returns the first error.
func (m *MultiSink) Flush() error {
	var first error
	for _, s := range m.Sinks {
		if f, ok := s.(Flusher); ok {
			if err := f.Flush(); err != nil && first == nil {
				first = err
			}
		}
	}
	return first
}
