package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/qsched/core/metrics"
)

// PromSink records schedule results in Prometheus metrics.
type PromSink struct {
	gatherer prometheus.Gatherer
	textfile string

	schedules *prometheus.CounterVec
	jobs      *prometheus.CounterVec
	attempts  *prometheus.CounterVec
	energy    *prometheus.GaugeVec
	budget    *prometheus.GaugeVec
	residual  *prometheus.GaugeVec
	duration  *prometheus.HistogramVec
}

// NewPromSink registers scheduling metrics on the default Prometheus registry.
// When textfile is set, Flush writes the registry in the text exposition format.
func NewPromSink(textfile string) (*PromSink, error) {
	return NewPromSinkWithRegistry(textfile, prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(textfile string, reg prometheus.Registerer, gatherer prometheus.Gatherer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	s := &PromSink{gatherer: gatherer, textfile: textfile}
	var err error
	if s.schedules, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "qsched_schedules_total",
		Help: "Number of committed resource schedules",
	}, []string{"resource"})); err != nil {
		return nil, err
	}
	if s.jobs, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "qsched_jobs_total",
		Help: "Job instances by scheduling outcome",
	}, []string{"resource", "outcome"})); err != nil {
		return nil, err
	}
	if s.attempts, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "qsched_attempts_total",
		Help: "Train and replay attempts by outcome",
	}, []string{"resource", "finished"})); err != nil {
		return nil, err
	}
	if s.energy, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "qsched_schedule_energy_mj",
		Help: "Energy consumed by the committed schedule",
	}, []string{"resource"})); err != nil {
		return nil, err
	}
	if s.budget, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "qsched_schedule_budget_mj",
		Help: "Energy budget over the horizon",
	}, []string{"resource"})); err != nil {
		return nil, err
	}
	if s.residual, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "qsched_mapping_residual_rate",
		Help: "Instruction rate left on a resource after mapping",
	}, []string{"resource"})); err != nil {
		return nil, err
	}
	if s.duration, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "qsched_schedule_duration_seconds",
		Help:    "Wall time spent training and replaying one resource",
		Buckets: prometheus.DefBuckets,
	}, []string{"resource"})); err != nil {
		return nil, err
	}
	return s, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordSchedule updates the counters and gauges of one resource.
func (s *PromSink) RecordSchedule(res coremetrics.ScheduleResult) error {
	s.schedules.WithLabelValues(res.Resource).Inc()
	s.jobs.WithLabelValues(res.Resource, "committed").Add(float64(res.Committed))
	s.jobs.WithLabelValues(res.Resource, "missed").Add(float64(res.Missed))
	s.jobs.WithLabelValues(res.Resource, "delayed").Add(float64(res.Delayed))
	s.energy.WithLabelValues(res.Resource).Set(float64(res.Energy))
	s.budget.WithLabelValues(res.Resource).Set(res.Budget)
	s.duration.WithLabelValues(res.Resource).Observe(res.Duration.Seconds())
	return nil
}

// RecordAttempt counts an attempt by outcome.
func (s *PromSink) RecordAttempt(ev coremetrics.AttemptEvent) error {
	s.attempts.WithLabelValues(ev.Resource, strconv.FormatBool(ev.Finished)).Inc()
	return nil
}

// RecordMapping sets the residual capacity gauge.
func (s *PromSink) RecordMapping(ev coremetrics.MappingEvent) error {
	s.residual.WithLabelValues(ev.Resource).Set(ev.Residual)
	return nil
}

// Flush writes the gathered metrics to the configured textfile, if any.
func (s *PromSink) Flush() error {
	if s.textfile == "" {
		return nil
	}
	return prometheus.WriteToTextfile(s.textfile, s.gatherer)
}
