package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/kilianp07/qsched/core/metrics"
	"github.com/kilianp07/qsched/infra/mqtt"
)

func TestMQTTSink_RecordSchedule(t *testing.T) {
	pub := mqtt.NewMockPublisher()
	sink := NewMQTTSink(pub)
	now := time.UnixMilli(1700000000000)
	err := sink.RecordSchedule(coremetrics.ScheduleResult{
		RunID:     "run1",
		Resource:  "big / 2",
		Committed: 5,
		Missed:    1,
		Energy:    90,
		Budget:    100,
		Attempts:  2,
		Time:      now,
	})
	require.NoError(t, err)
	msg, ok := pub.Messages["big / 2"]
	require.True(t, ok)
	assert.Equal(t, "run1", msg.RunID)
	assert.Equal(t, 5, msg.Committed)
	assert.Equal(t, int64(90), msg.Energy)
	assert.Equal(t, 2, msg.Attempts)
	assert.Equal(t, now.UnixMilli(), msg.Timestamp)

	pub.FailNames["big / 2"] = true
	assert.Error(t, sink.RecordSchedule(coremetrics.ScheduleResult{Resource: "big / 2"}))
}
