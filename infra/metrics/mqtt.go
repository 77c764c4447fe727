package metrics

import (
	coremetrics "github.com/kilianp07/qsched/core/metrics"
	coremqtt "github.com/kilianp07/qsched/core/mqtt"
)

// MQTTSink publishes a summary of each committed schedule.
type MQTTSink struct {
	pub coremqtt.Publisher
}

// NewMQTTSink wraps the given publisher.
func NewMQTTSink(pub coremqtt.Publisher) *MQTTSink {
	return &MQTTSink{pub: pub}
}

// RecordSchedule publishes res as a summary message.
func (s *MQTTSink) RecordSchedule(res coremetrics.ScheduleResult) error {
	_, err := s.pub.PublishSummary(coremqtt.Summary{
		RunID:     res.RunID,
		Resource:  res.Resource,
		Committed: res.Committed,
		Missed:    res.Missed,
		Delayed:   res.Delayed,
		Energy:    res.Energy,
		Budget:    res.Budget,
		Attempts:  res.Attempts,
		Timestamp: res.Time.UnixMilli(),
	})
	return err
}
