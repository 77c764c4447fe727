// Package scheduler computes energy-bounded DVFS schedules for periodic
// real-time jobs on a single resource.
//
// Scheduling is modelled as a finite-horizon decision process over
// DecisionState values. A Scheduler trains a tabular Q-learning policy with
// epsilon-greedy episodes and replays it greedily to commit the final
// schedule onto the resource. Failed replays are retried with a fresh table
// up to the configured retry count.
//
// Periodic jobs are first assigned to resources by a Mapper (worst-fit by
// default) and expanded into job instances with ExpandJobs.
package scheduler
