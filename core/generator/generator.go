package generator

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/prometheus/client_golang/prometheus"
	"gonum.org/v1/gonum/floats"

	"github.com/kilianp07/qsched/core/logger"
	"github.com/kilianp07/qsched/core/model"
)

// maxDiscards bounds the UUniFast-discard loop.
const maxDiscards = 10000

// ErrUtilization is returned when no utilization vector could be drawn.
var ErrUtilization = errors.New("no valid utilization vector")

// PeriodSegment is a range of periods in seconds.
type PeriodSegment struct {
	Name       string  `json:"name" yaml:"name"`
	MinSeconds float64 `json:"min_seconds" yaml:"min_seconds"`
	MaxSeconds float64 `json:"max_seconds" yaml:"max_seconds"`
}

// Config parametrises periodic job generation.
type Config struct {
	TaskSetSize    int             `json:"task_set_size"`
	Utilization    float64         `json:"utilization"`
	Segments       []PeriodSegment `json:"period_segments"`
	TicksPerSecond int64           `json:"ticks_per_second"`
	Seed           int64           `json:"seed"`
}

// Validate checks the generation parameters.
func (c Config) Validate() error {
	if c.TaskSetSize <= 0 {
		return fmt.Errorf("task_set_size must be positive")
	}
	if c.Utilization <= 0 || c.Utilization > float64(c.TaskSetSize) {
		return fmt.Errorf("utilization must be in (0, task_set_size]")
	}
	if c.TicksPerSecond <= 0 {
		return fmt.Errorf("ticks_per_second must be positive")
	}
	if len(c.Segments) == 0 {
		return fmt.Errorf("at least one period segment is required")
	}
	for _, s := range c.Segments {
		if s.MinSeconds > s.MaxSeconds {
			return fmt.Errorf("segment %s: min_seconds > max_seconds", s.Name)
		}
		if s.MinSeconds*float64(c.TicksPerSecond) < 1 {
			return fmt.Errorf("segment %s: periods must span at least one tick", s.Name)
		}
	}
	return nil
}

var (
	jobsGenerated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "generator_periodic_jobs_total",
		Help: "Total periodic jobs generated",
	}, []string{"priority"})
	vectorsDiscarded = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "generator_discarded_vectors_total",
		Help: "Utilization vectors discarded because one task exceeded 1",
	})
)

func init() {
	prometheus.MustRegister(jobsGenerated, vectorsDiscarded)
}

// Generator draws periodic job sets from a seeded source.
type Generator struct {
	cfg  Config
	log  logger.Logger
	rand *rand.Rand
}

// New creates a Generator. A nil logger disables logging.
func New(cfg Config, log logger.Logger) *Generator {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Generator{
		cfg:  cfg,
		log:  log,
		rand: rand.New(rand.NewSource(cfg.Seed)),
	}
}

// Generate returns TaskSetSize periodic jobs whose utilizations sum to the
// configured target. totalCapacity is the combined default instruction rate
// of all resources, in instructions per tick. Ids start at 1.
func (g *Generator) Generate(totalCapacity float64) ([]model.PeriodicJob, error) {
	if err := g.cfg.Validate(); err != nil {
		return nil, err
	}
	utils, err := g.uunifastDiscard(g.cfg.TaskSetSize, g.cfg.Utilization)
	if err != nil {
		return nil, err
	}
	jobs := make([]model.PeriodicJob, 0, len(utils))
	for i, u := range utils {
		seg := g.cfg.Segments[g.rand.Intn(len(g.cfg.Segments))]
		period := int64(math.Floor(g.uniform(seg.MinSeconds, seg.MaxSeconds) * float64(g.cfg.TicksPerSecond)))
		prio := model.Priorities[g.rand.Intn(len(model.Priorities))]
		jobs = append(jobs, model.PeriodicJob{
			ID:               i + 1,
			InstructionCount: int64(math.Floor(u * totalCapacity * float64(period))),
			Period:           period,
			Priority:         prio,
		})
		jobsGenerated.WithLabelValues(prio.String()).Inc()
	}
	g.log.Infof("generated %d periodic jobs (utilization %.2f)", len(jobs), floats.Sum(utils))
	return jobs, nil
}

// uunifastDiscard draws n utilizations summing to total, redrawing any
// vector in which a single value exceeds 1.
func (g *Generator) uunifastDiscard(n int, total float64) ([]float64, error) {
	for i := 0; i < maxDiscards; i++ {
		v := g.uunifast(n, total)
		if floats.Max(v) <= 1 {
			return v, nil
		}
		vectorsDiscarded.Inc()
	}
	return nil, fmt.Errorf("%w after %d draws", ErrUtilization, maxDiscards)
}

func (g *Generator) uunifast(n int, total float64) []float64 {
	v := make([]float64, n)
	sum := total
	for i := 0; i < n-1; i++ {
		next := sum * math.Pow(g.rand.Float64(), 1/float64(n-i-1))
		v[i] = sum - next
		sum = next
	}
	v[n-1] = sum
	return v
}

func (g *Generator) uniform(min, max float64) float64 {
	if max <= min {
		return min
	}
	return min + g.rand.Float64()*(max-min)
}
