package scheduler

import (
	"fmt"
	"math"

	"github.com/kilianp07/qsched/core/events"
	"github.com/kilianp07/qsched/core/logger"
	"github.com/kilianp07/qsched/core/model"
	"github.com/kilianp07/qsched/core/resource"
	"github.com/kilianp07/qsched/internal/eventbus"
)

// RandomSource is the subset of *math/rand.Rand used for exploration.
type RandomSource interface {
	Float64() float64
	Intn(n int) int
}

// Option customises a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the logger used for attempt and training progress.
func WithLogger(l logger.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithEventBus publishes attempt and schedule events on bus.
func WithEventBus(bus eventbus.EventBus) Option {
	return func(s *Scheduler) { s.bus = bus }
}

// Scheduler trains and replays a Q-table for one resource at a time.
// It is not safe for concurrent use since it shares its random source.
type Scheduler struct {
	cfg    Config
	rng    RandomSource
	logger logger.Logger
	bus    eventbus.EventBus
}

// New validates cfg and returns a Scheduler drawing exploration decisions from rng.
func New(cfg Config, rng RandomSource, opts ...Option) (*Scheduler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, fmt.Errorf("%w: random source is required", ErrInvalidConfig)
	}
	s := &Scheduler{cfg: cfg, rng: rng, logger: logger.NopLogger{}}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Config returns the scheduler parameters.
func (s *Scheduler) Config() Config { return s.cfg }

// HorizonTicks converts the configured horizon to ticks of res.
func (s *Scheduler) HorizonTicks(res *resource.Resource) int64 {
	return int64(math.Round(s.cfg.HorizonSeconds * float64(res.Spec().TicksPerSecond)))
}

// Schedule expands the periodic jobs assigned to res, then trains and
// replays a fresh table until a replay finishes or the retries run out.
// On success the committed schedule is left on res and a copy is returned.
func (s *Scheduler) Schedule(res *resource.Resource) (*Schedule, error) {
	horizon := s.HorizonTicks(res)
	jobs := ExpandJobs(res.Periodic(), horizon)
	budget := res.EnergyBudget(s.cfg.HorizonSeconds)
	s.logger.Infof("scheduling %d jobs on %s (horizon %d ticks, budget %.0f)", len(jobs), res.Name(), horizon, budget)

	var final DecisionState
	for attempt := 1; attempt <= s.cfg.Retries; attempt++ {
		run := s.newRunner(res, jobs)
		run.train()
		var finished bool
		final, finished = run.replay()
		s.publishAttempt(res, attempt, run, finished)
		if finished {
			out := newSchedule(res, horizon, final, budget)
			out.Attempts = attempt
			out.Episodes = s.cfg.Episodes
			out.TableSize = len(run.table)
			s.logger.Infof("%s scheduled on attempt %d: %d committed, %d missed, energy %d/%.0f",
				res.Name(), attempt, len(out.Committed), len(out.Missed), out.Energy, budget)
			s.publish(events.ScheduleEvent{
				Resource:  out.Resource,
				Committed: len(out.Committed),
				Missed:    len(out.Missed),
				Delayed:   out.Delayed(),
				Energy:    out.Energy,
				Budget:    budget,
				Attempts:  attempt,
			})
			return out, nil
		}
		s.logger.Warnf("%s attempt %d/%d failed at %s", res.Name(), attempt, s.cfg.Retries, final)
	}
	return nil, &InfeasibleError{Resource: res.Name(), Attempts: s.cfg.Retries, Terminal: final}
}

func (s *Scheduler) publishAttempt(res *resource.Resource, attempt int, run *episodeRunner, finished bool) {
	ev := events.AttemptEvent{
		Resource:  res.Name(),
		Attempt:   attempt,
		Episodes:  s.cfg.Episodes,
		TableSize: len(run.table),
		Outcome:   ActionFinished.String(),
	}
	if !finished {
		ev.Outcome = ActionFailure.String()
		ev.Err = ErrSchedulingFailed
	}
	s.publish(ev)
}

func (s *Scheduler) publish(e eventbus.Event) {
	if s.bus != nil {
		s.bus.Publish(e)
	}
}

// episodeRunner holds the state of one train-and-replay attempt.
type episodeRunner struct {
	cfg     Config
	rng     RandomSource
	log     logger.Logger
	res     *resource.Resource
	jobs    []*model.Job
	horizon int64
	budget  float64
	table   qTable
	epsilon float64
}

// newRunner returns a runner with an empty table and the initial
// exploration probability.
func (s *Scheduler) newRunner(res *resource.Resource, jobs []*model.Job) *episodeRunner {
	return &episodeRunner{
		cfg:     s.cfg,
		rng:     s.rng,
		log:     s.logger,
		res:     res,
		jobs:    jobs,
		horizon: s.HorizonTicks(res),
		budget:  res.EnergyBudget(s.cfg.HorizonSeconds),
		table:   make(qTable),
		epsilon: s.cfg.ExplorationProb,
	}
}

func (r *episodeRunner) reset() DecisionState {
	model.ResetJobs(r.jobs)
	r.res.Reset()
	return NewDecisionState(0, 0, r.res.Level(), 0, 0)
}

func (r *episodeRunner) train() {
	stride := max(1, r.cfg.Episodes/10)
	for ep := 1; ep <= r.cfg.Episodes; ep++ {
		st := r.reset()
		for done := false; !done; {
			st, done = r.learningStep(st)
		}
		r.epsilon *= r.cfg.ExplorationDecay
		if ep%stride == 0 || ep == r.cfg.Episodes {
			r.log.Debugw("training progress", map[string]any{
				"resource": r.res.Name(),
				"episode":  ep,
				"epsilon":  r.epsilon,
				"states":   len(r.table),
				"terminal": r.table[st][0].Action.String(),
			})
		}
	}
}

// replay follows the greedy policy from the initial state. The table is
// still extended when an unseen state is reached.
func (r *episodeRunner) replay() (DecisionState, bool) {
	st := r.reset()
	for {
		set := r.actions(st)
		if a, ok := set.terminal(); ok {
			return st, a == ActionFinished
		}
		st = r.apply(st, set[set.greedy()].Action)
	}
}

func (r *episodeRunner) learningStep(st DecisionState) (DecisionState, bool) {
	set := r.actions(st)
	if _, ok := set.terminal(); ok {
		return st, true
	}
	i := set.greedy()
	if r.rng.Float64() < r.epsilon {
		i = r.rng.Intn(len(set))
	}
	next := r.apply(st, set[i].Action)
	set.update(i, r.cfg.LearningRate, r.actions(next).best())
	return next, false
}

// actions returns the memoized action set of st, building it on first visit.
func (r *episodeRunner) actions(st DecisionState) actionSet {
	if set, ok := r.table[st]; ok {
		return set
	}
	set := r.enumerate(st)
	r.table[st] = set
	return set
}

// enumerate builds the action set of st against the current resource state.
func (r *episodeRunner) enumerate(st DecisionState) actionSet {
	rw := r.cfg.Rewards
	if float64(st.Energy) > r.budget {
		return failureSet()
	}

	var set actionSet
	if st.NextJob == len(r.jobs) && st.DeferredLen() == 0 {
		if st.Time >= r.horizon {
			return finishedSet(rw.Finish)
		}
		set = append(set, ActionValue{Action: ActionStallToFinish})
		if rem := r.remainingLock(st); rem > 0 && st.Time+rem < r.horizon {
			set = append(set, ActionValue{Action: ActionStallToLock})
		}
	}

	if st.NextJob < len(r.jobs) {
		job := r.jobs[st.NextJob]
		if r.res.IsSchedulable(job) {
			set = append(set, ActionValue{Action: ActionSchedule, Reward: rw.schedule(job.Priority)})
		} else if job.Priority == model.PriorityHard {
			return failureSet()
		}
		if job.Priority != model.PriorityHard {
			set = append(set, ActionValue{Action: ActionMiss, Reward: rw.miss(job.Priority)})
		}
		if job.Priority == model.PrioritySoft {
			set = append(set, ActionValue{Action: ActionDelay, Reward: rw.SoftDelay})
		}
	}

	if head, ok := st.Head(); ok {
		if !r.res.IsSchedulable(r.jobs[head]) {
			return failureSet()
		}
		set = append(set, ActionValue{Action: ActionScheduleDelayed})
	}

	if r.remainingLock(st) <= 0 {
		if st.Level < r.res.MaxLevel() {
			set = append(set, ActionValue{Action: ActionDVFSUp, Reward: rw.DVFSUp})
		}
		if st.Level > 0 {
			set = append(set, ActionValue{Action: ActionDVFSDown, Reward: rw.DVFSDown})
		}
	}
	return set
}

func (r *episodeRunner) remainingLock(st DecisionState) int64 {
	return st.LastFreqChange + r.res.Lockout() - st.Time
}

// apply performs action on the resource and returns the successor of st.
func (r *episodeRunner) apply(st DecisionState, action Action) DecisionState {
	next := st
	switch action {
	case ActionSchedule:
		job := r.jobs[st.NextJob]
		next.Energy += r.res.Commit(job)
		next.Time = job.Finish
		next.NextJob++
	case ActionScheduleDelayed:
		head, _ := st.Head()
		job := r.jobs[head]
		next = st.popDeferred()
		next.Energy += r.res.Commit(job)
		next.Time = job.Finish
	case ActionMiss:
		r.res.Miss(r.jobs[st.NextJob])
		next.NextJob++
	case ActionDelay:
		r.jobs[st.NextJob].Delay()
		next = st.withDeferred(st.NextJob)
		next.NextJob++
	case ActionDVFSUp:
		r.res.LevelUp(st.Time)
		next.Level++
		next.LastFreqChange = st.Time
	case ActionDVFSDown:
		r.res.LevelDown(st.Time)
		next.Level--
		next.LastFreqChange = st.Time
	case ActionStallToFinish:
		next.Energy += r.res.Stall(r.horizon - st.Time)
		next.Time = r.horizon
	case ActionStallToLock:
		rem := r.remainingLock(st)
		next.Energy += r.res.Stall(rem)
		next.Time += rem
	}
	return next
}
