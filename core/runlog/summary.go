package runlog

import (
	"sort"
	"time"
)

// RunSummary folds the per-resource records of one run.
type RunSummary struct {
	RunID      string    `json:"run_id"`
	Started    time.Time `json:"started"`
	Resources  int       `json:"resources"`
	Infeasible int       `json:"infeasible"`
	Jobs       int       `json:"jobs"`
	Committed  int       `json:"committed"`
	Missed     int       `json:"missed"`
	Delayed    int       `json:"delayed"`
	Energy     int64     `json:"energy_mj"`
	Budget     float64   `json:"budget_mj"`
}

// Runs groups records by run id, ordered by the time of the first record.
func Runs(records []Record) []RunSummary {
	byID := map[string]*RunSummary{}
	var order []*RunSummary
	for _, r := range records {
		s, ok := byID[r.RunID]
		if !ok {
			s = &RunSummary{RunID: r.RunID, Started: r.Timestamp}
			byID[r.RunID] = s
			order = append(order, s)
		}
		if r.Timestamp.Before(s.Started) {
			s.Started = r.Timestamp
		}
		s.Resources++
		s.Jobs += r.Jobs
		s.Budget += r.Budget
		if r.Status == StatusInfeasible {
			s.Infeasible++
			continue
		}
		s.Committed += r.Committed
		s.Missed += r.Missed
		s.Delayed += r.Delayed
		s.Energy += r.Energy
	}
	out := make([]RunSummary, len(order))
	for i, s := range order {
		out[i] = *s
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Started.Before(out[j].Started) })
	return out
}
