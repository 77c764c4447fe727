package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/kilianp07/qsched/core/metrics"
)

func TestPromSink_RecordSchedule(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry("", reg, reg)
	require.NoError(t, err)

	res := coremetrics.ScheduleResult{
		Resource:  "little / 1",
		Committed: 12,
		Missed:    2,
		Delayed:   1,
		Energy:    340,
		Budget:    1000,
		Duration:  20 * time.Millisecond,
	}
	require.NoError(t, sink.RecordSchedule(res))
	require.NoError(t, sink.RecordSchedule(res))

	assert.Equal(t, 2.0, testutil.ToFloat64(sink.schedules.WithLabelValues("little / 1")))
	assert.Equal(t, 24.0, testutil.ToFloat64(sink.jobs.WithLabelValues("little / 1", "committed")))
	assert.Equal(t, 4.0, testutil.ToFloat64(sink.jobs.WithLabelValues("little / 1", "missed")))
	assert.Equal(t, 340.0, testutil.ToFloat64(sink.energy.WithLabelValues("little / 1")))
	assert.Equal(t, 1000.0, testutil.ToFloat64(sink.budget.WithLabelValues("little / 1")))
	assert.Equal(t, 1, testutil.CollectAndCount(sink.duration))
}

func TestPromSink_AttemptsAndMapping(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry("", reg, reg)
	require.NoError(t, err)

	require.NoError(t, sink.RecordAttempt(coremetrics.AttemptEvent{Resource: "r", Finished: false}))
	require.NoError(t, sink.RecordAttempt(coremetrics.AttemptEvent{Resource: "r", Finished: true}))
	require.NoError(t, sink.RecordMapping(coremetrics.MappingEvent{Resource: "r", Residual: 0.5}))

	assert.Equal(t, 1.0, testutil.ToFloat64(sink.attempts.WithLabelValues("r", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.attempts.WithLabelValues("r", "true")))
	assert.Equal(t, 0.5, testutil.ToFloat64(sink.residual.WithLabelValues("r")))
}

func TestPromSink_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewPromSinkWithRegistry("", reg, reg)
	require.NoError(t, err)
	second, err := NewPromSinkWithRegistry("", reg, reg)
	require.NoError(t, err)

	require.NoError(t, first.RecordSchedule(coremetrics.ScheduleResult{Resource: "r"}))
	require.NoError(t, second.RecordSchedule(coremetrics.ScheduleResult{Resource: "r"}))
	assert.Equal(t, 2.0, testutil.ToFloat64(first.schedules.WithLabelValues("r")))
}

func TestPromSink_FlushTextfile(t *testing.T) {
	reg := prometheus.NewRegistry()
	path := filepath.Join(t.TempDir(), "qsched.prom")
	sink, err := NewPromSinkWithRegistry(path, reg, reg)
	require.NoError(t, err)
	require.NoError(t, sink.RecordSchedule(coremetrics.ScheduleResult{Resource: "r", Energy: 7}))
	require.NoError(t, sink.Flush())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	if !strings.Contains(string(data), `qsched_schedule_energy_mj{resource="r"} 7`) {
		t.Fatalf("energy gauge missing from textfile:\n%s", data)
	}

	nop, err := NewPromSinkWithRegistry("", prometheus.NewRegistry(), nil)
	require.NoError(t, err)
	assert.NoError(t, nop.Flush())
}
