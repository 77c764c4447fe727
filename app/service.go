package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/qsched/config"
	"github.com/kilianp07/qsched/core/events"
	"github.com/kilianp07/qsched/core/generator"
	coremetrics "github.com/kilianp07/qsched/core/metrics"
	"github.com/kilianp07/qsched/core/model"
	coremon "github.com/kilianp07/qsched/core/monitoring"
	"github.com/kilianp07/qsched/core/resource"
	"github.com/kilianp07/qsched/core/runlog"
	"github.com/kilianp07/qsched/core/scheduler"
	"github.com/kilianp07/qsched/core/stats"
	"github.com/kilianp07/qsched/infra/chart"
	"github.com/kilianp07/qsched/infra/logger"
	"github.com/kilianp07/qsched/infra/metrics"
	"github.com/kilianp07/qsched/infra/mqtt"
	"github.com/kilianp07/qsched/internal/eventbus"
	"github.com/kilianp07/qsched/pkg/export"
)

// Report is the outcome of one Run.
type Report struct {
	RunID     string
	Periodic  []model.PeriodicJob
	Schedules []*scheduler.Schedule
	// Failures maps a resource name to its scheduling error.
	Failures map[string]error
	Stats    []stats.JobStat
	Summary  stats.Summary
	Files    []string
}

// Option customises a Service.
type Option func(*Service)

// WithSink replaces the sinks built from the metrics configuration.
func WithSink(s coremetrics.MetricsSink) Option { return func(svc *Service) { svc.sink = s } }

// WithStore replaces the run log store built from the logging configuration.
func WithStore(s runlog.Store) Option { return func(svc *Service) { svc.store = s } }

// WithLogger sets the service logger.
func WithLogger(l logger.Logger) Option { return func(svc *Service) { svc.log = l } }

// Service wires job generation, mapping, scheduling and reporting for one
// simulation run.
type Service struct {
	cfg   *config.Config
	log   logger.Logger
	sink  coremetrics.MetricsSink
	store runlog.Store
	mqtt  *mqtt.PahoClient
}

// New creates a Service from the configuration.
func New(cfg *config.Config, opts ...Option) (*Service, error) {
	svc := &Service{cfg: cfg}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.log == nil {
		svc.log = logger.New("service")
	}
	if svc.sink == nil {
		sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
		if err != nil {
			return nil, fmt.Errorf("metrics sinks: %w", err)
		}
		if cfg.MQTT.Broker != "" {
			client, err := mqtt.NewPahoClient(cfg.MQTT)
			if err != nil {
				return nil, fmt.Errorf("mqtt client: %w", err)
			}
			svc.mqtt = client
			sink = coremetrics.NewMultiSink(sink, metrics.NewMQTTSink(client))
		}
		svc.sink = sink
	}
	if svc.store == nil {
		store, err := runlog.Open(runlog.Options{
			Backend:    cfg.Logging.Backend,
			Path:       cfg.Logging.Path,
			MaxSizeMB:  cfg.Logging.MaxSizeMB,
			MaxBackups: cfg.Logging.MaxBackups,
			MaxAgeDays: cfg.Logging.MaxAgeDays,
		})
		if err != nil {
			return nil, fmt.Errorf("run log: %w", err)
		}
		svc.store = store
	}
	return svc, nil
}

// Run generates or loads the workload, maps it onto the configured resources
// and schedules every resource in turn. Infeasible resources do not stop the
// run: the report is returned together with an error listing them.
func (s *Service) Run(ctx context.Context) (*Report, error) {
	rep := &Report{RunID: uuid.NewString(), Failures: map[string]error{}}
	s.log.Infof("starting run %s", rep.RunID)

	resources, err := s.resources()
	if err != nil {
		return nil, err
	}
	rep.Periodic, err = s.workload(resources)
	if err != nil {
		return nil, err
	}

	bus := eventbus.New(eventbus.WithBuffer(len(resources)*(s.cfg.Scheduler.Retries+2) + eventbus.DefaultBuffer))
	collectorCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	collected := metrics.StartEventCollector(collectorCtx, bus, s.sink)

	if err := s.mapJobs(bus, resources, rep.Periodic); err != nil {
		bus.Close()
		<-collected
		return nil, err
	}

	sched, err := scheduler.New(s.cfg.Scheduler, rand.New(rand.NewSource(s.cfg.Simulation.Seed)),
		scheduler.WithLogger(logger.New("scheduler")),
		scheduler.WithEventBus(bus),
	)
	if err != nil {
		bus.Close()
		<-collected
		return nil, err
	}

	var outcomes []stats.Outcome
	var failures []error
	for _, res := range resources {
		if err := ctx.Err(); err != nil {
			bus.Close()
			<-collected
			return rep, err
		}
		out, err := s.scheduleOne(ctx, sched, rep.RunID, res)
		if err != nil {
			rep.Failures[res.Name()] = err
			failures = append(failures, err)
			continue
		}
		rep.Schedules = append(rep.Schedules, out)
		outcomes = append(outcomes, stats.Outcome{
			Resource:       out.Resource,
			TicksPerSecond: res.Spec().TicksPerSecond,
			Periodic:       res.Periodic(),
			Committed:      out.Committed,
			Missed:         out.Missed,
		})
	}
	bus.Close()
	<-collected
	if n := bus.Dropped(); n > 0 {
		s.log.Warnf("%d run events dropped before reaching the metrics sinks", n)
	}

	rep.Stats = stats.PerJob(outcomes)
	rep.Summary = stats.Summarize(len(resources), rep.Stats)
	if r, ok := s.sink.(coremetrics.JobStatsRecorder); ok {
		if err := r.RecordJobStats(rep.RunID, rep.Stats); err != nil {
			s.log.Warnf("record job stats: %v", err)
		}
	}
	if f, ok := s.sink.(coremetrics.Flusher); ok {
		if err := f.Flush(); err != nil {
			s.log.Warnf("flush metrics: %v", err)
		}
	}
	if rep.Files, err = s.write(rep); err != nil {
		return rep, err
	}
	s.log.Infof("run %s: %d/%d resources scheduled, %d committed, %d missed, miss ratio %.3f",
		rep.RunID, len(rep.Schedules), len(resources), rep.Summary.Committed, rep.Summary.Missed, rep.Summary.MissRatio)

	if len(failures) > 0 {
		return rep, fmt.Errorf("%d of %d resources infeasible: %w", len(failures), len(resources), errors.Join(failures...))
	}
	return rep, nil
}

func (s *Service) resources() ([]*resource.Resource, error) {
	specs, err := s.cfg.ResourceSpecs()
	if err != nil {
		return nil, err
	}
	out := make([]*resource.Resource, 0, len(specs))
	for _, spec := range specs {
		r, err := resource.New(spec)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *Service) workload(resources []*resource.Resource) ([]model.PeriodicJob, error) {
	if path := s.cfg.Simulation.Workload; path != "" {
		jobs, err := generator.LoadWorkload(path)
		if err != nil {
			return nil, fmt.Errorf("load workload: %w", err)
		}
		s.log.Infof("loaded %d periodic jobs from %s", len(jobs), path)
		return jobs, nil
	}
	capacity := 0.0
	for _, r := range resources {
		capacity += r.DefaultInstructionRate()
	}
	jobs, err := generator.New(s.cfg.Simulation.Generator(), logger.New("generator")).Generate(capacity)
	if err != nil {
		return nil, fmt.Errorf("generate jobs: %w", err)
	}
	return jobs, nil
}

func (s *Service) mapJobs(bus *eventbus.Bus, resources []*resource.Resource, jobs []model.PeriodicJob) error {
	mapper, err := scheduler.NewMapper(s.cfg.Scheduler.MappingAlgorithm)
	if err != nil {
		return err
	}
	if err := mapper.Map(resources, jobs); err != nil {
		coremon.CaptureException(err, coremon.Tags("module", "mapping"))
		return fmt.Errorf("map jobs: %w", err)
	}
	for _, r := range resources {
		ids := make([]int, 0, len(r.Periodic()))
		for _, p := range r.Periodic() {
			ids = append(ids, p.ID)
		}
		s.log.Infof("%s: periodic jobs %v, residual rate %.2f", r.Name(), ids, r.Available())
		bus.Publish(events.MappingEvent{Resource: r.Name(), PeriodicIDs: ids, Residual: r.Available()})
	}
	return nil
}

func (s *Service) scheduleOne(ctx context.Context, sched *scheduler.Scheduler, runID string, res *resource.Resource) (*scheduler.Schedule, error) {
	start := time.Now()
	out, err := sched.Schedule(res)
	rec := runlog.Record{
		RunID:     runID,
		Timestamp: time.Now(),
		Resource:  res.Name(),
		Jobs:      len(scheduler.ExpandJobs(res.Periodic(), sched.HorizonTicks(res))),
		Budget:    res.EnergyBudget(s.cfg.Scheduler.HorizonSeconds),
	}
	if err != nil {
		rec.Status = runlog.StatusInfeasible
		rec.Error = err.Error()
		var inf *scheduler.InfeasibleError
		if errors.As(err, &inf) {
			rec.Attempts = inf.Attempts
		}
		s.log.Errorf("%s: %v", res.Name(), err)
		coremon.CaptureException(err, coremon.Tags("module", "scheduler", "resource", res.Name(), "run_id", runID))
		s.appendRecord(ctx, rec)
		return nil, err
	}
	rec.Status = runlog.StatusScheduled
	rec.Committed = len(out.Committed)
	rec.Missed = len(out.Missed)
	rec.Delayed = out.Delayed()
	rec.Energy = out.Energy
	rec.Attempts = out.Attempts
	rec.TableSize = out.TableSize
	s.appendRecord(ctx, rec)

	if err := s.sink.RecordSchedule(coremetrics.ScheduleResult{
		RunID:            runID,
		Resource:         out.Resource,
		Committed:        rec.Committed,
		Missed:           rec.Missed,
		Delayed:          rec.Delayed,
		Energy:           out.Energy,
		Budget:           out.Budget,
		Attempts:         out.Attempts,
		Episodes:         out.Episodes,
		TableSize:        out.TableSize,
		Duration:         time.Since(start),
		FrequencyHistory: out.FrequencyHistory,
		EnergyHistory:    out.EnergyHistory,
		Time:             start,
	}); err != nil {
		s.log.Warnf("record schedule of %s: %v", out.Resource, err)
	}
	return out, nil
}

func (s *Service) appendRecord(ctx context.Context, rec runlog.Record) {
	if err := s.store.Append(ctx, rec); err != nil {
		s.log.Warnf("run log append: %v", err)
	}
}

func (s *Service) write(rep *Report) ([]string, error) {
	out := s.cfg.Output
	if err := os.MkdirAll(out.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("output dir: %w", err)
	}
	var files []string
	writeFile := func(name string, fn func(f *os.File) error) error {
		path := filepath.Join(out.Dir, name)
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := fn(f); err != nil {
			_ = f.Close()
			return fmt.Errorf("write %s: %w", path, err)
		}
		files = append(files, path)
		return f.Close()
	}
	if out.Has("json") {
		if err := writeFile("schedules.json", func(f *os.File) error { return export.WriteJSON(f, rep.Schedules) }); err != nil {
			return files, err
		}
		if err := writeFile("stats.json", func(f *os.File) error {
			return export.WriteJSON(f, struct {
				RunID   string          `json:"run_id"`
				Summary stats.Summary   `json:"summary"`
				Jobs    []stats.JobStat `json:"jobs"`
			}{rep.RunID, rep.Summary, rep.Stats})
		}); err != nil {
			return files, err
		}
	}
	if out.Has("csv") {
		if err := writeFile("schedules.csv", func(f *os.File) error { return export.WriteScheduleCSV(f, rep.Schedules) }); err != nil {
			return files, err
		}
		if err := writeFile("stats.csv", func(f *os.File) error { return export.WriteStatsCSV(f, rep.Stats) }); err != nil {
			return files, err
		}
	}
	if out.ChartEnabled() && len(rep.Schedules) > 0 {
		path := filepath.Join(out.Dir, out.Chart)
		if err := chart.WriteFile(path, "qsched run "+rep.RunID, rep.Schedules, s.cfg.Simulation.TicksPerSecond); err != nil {
			return files, err
		}
		files = append(files, path)
	}
	return files, nil
}

// Close releases the run log store and the MQTT connection.
func (s *Service) Close() error {
	if s.mqtt != nil {
		s.mqtt.Disconnect()
	}
	return s.store.Close()
}
