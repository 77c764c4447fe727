package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/qsched/core/metrics"
	"github.com/kilianp07/qsched/core/model"
	"github.com/kilianp07/qsched/core/resource"
	"github.com/kilianp07/qsched/core/stats"
)

type lineRecorder struct {
	mu    sync.Mutex
	lines []string
}

func (r *lineRecorder) server(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		data, _ := io.ReadAll(req.Body)
		r.mu.Lock()
		r.lines = append(r.lines, strings.Split(strings.TrimSpace(string(data)), "\n")...)
		r.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func lineOf(p *write.Point) string {
	return strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))
}

func TestInfluxSink_RecordSchedule(t *testing.T) {
	rec := &lineRecorder{}
	srv := rec.server(t)
	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	defer sink.Close()

	now := time.Unix(1700000000, 0)
	res := coremetrics.ScheduleResult{
		RunID:            "run1",
		Resource:         "little / 1",
		Committed:        4,
		Missed:           1,
		Energy:           120,
		Budget:           500,
		Attempts:         1,
		TableSize:        42,
		Duration:         2 * time.Millisecond,
		EnergyHistory:    []resource.Sample{{Time: 0.5, Value: 120}},
		FrequencyHistory: []resource.Sample{{Time: 0, Value: 2}},
		Time:             now,
	}
	if err := sink.RecordSchedule(res); err != nil {
		t.Fatalf("record error: %v", err)
	}

	summary := write.NewPointWithMeasurement("schedule").
		AddTag("resource", "little / 1").
		AddTag("run_id", "run1").
		AddField("committed", 4).
		AddField("missed", 1).
		AddField("delayed", 0).
		AddField("energy_mj", int64(120)).
		AddField("budget_mj", 500.0).
		AddField("attempts", 1).
		AddField("table_size", 42).
		AddField("duration_ms", 2.0).
		SetTime(now)
	energy := write.NewPointWithMeasurement("energy").
		AddTag("resource", "little / 1").
		AddTag("run_id", "run1").
		AddField("energy_mj", 120.0).
		SetTime(now.Add(500 * time.Millisecond))
	freq := write.NewPointWithMeasurement("frequency").
		AddTag("resource", "little / 1").
		AddTag("run_id", "run1").
		AddField("ghz", 2.0).
		SetTime(now)
	want := []string{lineOf(summary), lineOf(energy), lineOf(freq)}
	if len(rec.lines) != len(want) {
		t.Fatalf("expected %d lines, got %#v", len(want), rec.lines)
	}
	for i := range want {
		if rec.lines[i] != want[i] {
			t.Errorf("line %d: got %s want %s", i, rec.lines[i], want[i])
		}
	}
}

func TestInfluxSink_RecordAttemptAndMapping(t *testing.T) {
	rec := &lineRecorder{}
	srv := rec.server(t)
	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	defer sink.Close()

	now := time.Unix(1700000000, 0)
	if err := sink.RecordAttempt(coremetrics.AttemptEvent{Resource: "r", Attempt: 2, Finished: false, TableSize: 7, Time: now}); err != nil {
		t.Fatalf("attempt: %v", err)
	}
	if err := sink.RecordMapping(coremetrics.MappingEvent{Resource: "r", Jobs: 3, Residual: 0.25, Time: now}); err != nil {
		t.Fatalf("mapping: %v", err)
	}
	attempt := write.NewPointWithMeasurement("schedule_attempt").
		AddTag("finished", "false").
		AddTag("resource", "r").
		AddField("attempt", 2).
		AddField("table_size", 7).
		SetTime(now)
	mapping := write.NewPointWithMeasurement("mapping").
		AddTag("resource", "r").
		AddField("jobs", 3).
		AddField("residual_rate", 0.25).
		SetTime(now)
	if len(rec.lines) != 2 || rec.lines[0] != lineOf(attempt) || rec.lines[1] != lineOf(mapping) {
		t.Errorf("unexpected lines: %#v", rec.lines)
	}
}

func TestInfluxSink_RecordJobStats(t *testing.T) {
	rec := &lineRecorder{}
	srv := rec.server(t)
	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	defer sink.Close()

	if err := sink.RecordJobStats("run1", nil); err != nil {
		t.Fatalf("empty stats: %v", err)
	}
	if len(rec.lines) != 0 {
		t.Fatalf("empty stats must not write")
	}
	st := []stats.JobStat{
		{ID: 1, Priority: model.PriorityHard, Instances: 10, Resource: "a"},
		{ID: 2, Priority: model.PrioritySoft, Instances: 5, Missed: 1, Resource: "b"},
	}
	if err := sink.RecordJobStats("run1", st); err != nil {
		t.Fatalf("record: %v", err)
	}
	if len(rec.lines) != 2 {
		t.Fatalf("expected 2 lines, got %#v", rec.lines)
	}
	if !strings.HasPrefix(rec.lines[1], "job_stats,job_id=2,priority=soft,resource=b,run_id=run1 ") {
		t.Errorf("unexpected line %s", rec.lines[1])
	}
}

func TestNewInfluxSinkWithFallback(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			called = true
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}))
	defer srv.Close()

	sink := NewInfluxSinkWithFallback(srv.URL+"/api/v2/write", "tok", "org", "bucket")
	if _, ok := sink.(*InfluxSink); ok {
		t.Fatalf("expected NopSink on failing health check")
	}
	if !called {
		t.Fatalf("health endpoint not called")
	}
}
