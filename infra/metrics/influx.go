package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/qsched/core/metrics"
	"github.com/kilianp07/qsched/core/resource"
	"github.com/kilianp07/qsched/core/stats"
	"github.com/kilianp07/qsched/infra/logger"
)

// InfluxSink writes schedule results to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordSchedule writes a summary point followed by the energy and
// frequency histories, each sample offset from the run time.
func (s *InfluxSink) RecordSchedule(res coremetrics.ScheduleResult) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("schedule").
		AddTag("resource", res.Resource).
		AddTag("run_id", res.RunID).
		AddField("committed", res.Committed).
		AddField("missed", res.Missed).
		AddField("delayed", res.Delayed).
		AddField("energy_mj", res.Energy).
		AddField("budget_mj", round3(res.Budget)).
		AddField("attempts", res.Attempts).
		AddField("table_size", res.TableSize).
		AddField("duration_ms", round3(res.Duration.Seconds()*1000)).
		SetTime(res.Time)
	points := []*write.Point{p}
	points = append(points, historyPoints("energy", "energy_mj", res, res.EnergyHistory)...)
	points = append(points, historyPoints("frequency", "ghz", res, res.FrequencyHistory)...)
	return s.writeAPI.WritePoint(ctx, points...)
}

func historyPoints(measurement, field string, res coremetrics.ScheduleResult, samples []resource.Sample) []*write.Point {
	out := make([]*write.Point, 0, len(samples))
	for _, smp := range samples {
		at := res.Time.Add(time.Duration(smp.Time * float64(time.Second)))
		out = append(out, write.NewPointWithMeasurement(measurement).
			AddTag("resource", res.Resource).
			AddTag("run_id", res.RunID).
			AddField(field, round3(smp.Value)).
			SetTime(at))
	}
	return out
}

// RecordAttempt writes the outcome of one train-and-replay attempt.
func (s *InfluxSink) RecordAttempt(ev coremetrics.AttemptEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("schedule_attempt").
		AddTag("finished", strconv.FormatBool(ev.Finished)).
		AddTag("resource", ev.Resource).
		AddField("attempt", ev.Attempt).
		AddField("table_size", ev.TableSize).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordMapping writes the mapping result of one resource.
func (s *InfluxSink) RecordMapping(ev coremetrics.MappingEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("mapping").
		AddTag("resource", ev.Resource).
		AddField("jobs", ev.Jobs).
		AddField("residual_rate", round3(ev.Residual)).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordJobStats writes one point per periodic job.
func (s *InfluxSink) RecordJobStats(runID string, st []stats.JobStat) error {
	if len(st) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	now := time.Now()
	points := make([]*write.Point, 0, len(st))
	for _, j := range st {
		points = append(points, write.NewPointWithMeasurement("job_stats").
			AddTag("job_id", strconv.Itoa(j.ID)).
			AddTag("priority", j.Priority.String()).
			AddTag("resource", j.Resource).
			AddTag("run_id", runID).
			AddField("instances", j.Instances).
			AddField("missed", j.Missed).
			AddField("delayed", j.Delayed).
			AddField("avg_response_s", round3(j.AvgResponse)).
			AddField("avg_slack_s", round3(j.AvgSlack)).
			SetTime(now))
	}
	return s.writeAPI.WritePoint(ctx, points...)
}

// Close releases the underlying HTTP client.
func (s *InfluxSink) Close() { s.client.Close() }

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
