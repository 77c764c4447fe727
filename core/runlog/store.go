// Package runlog persists one record per scheduled resource so that runs can
// be compared after the fact.
package runlog

import (
	"context"
	"fmt"
	"time"
)

// Record outcome values.
const (
	StatusScheduled  = "scheduled"
	StatusInfeasible = "infeasible"
)

// Record captures the outcome of scheduling one resource during a run.
type Record struct {
	RunID     string    `json:"run_id"`
	Timestamp time.Time `json:"timestamp"`
	Resource  string    `json:"resource"`
	Status    string    `json:"status"`
	Jobs      int       `json:"jobs"`
	Committed int       `json:"committed"`
	Missed    int       `json:"missed"`
	Delayed   int       `json:"delayed"`
	Energy    int64     `json:"energy_mj"`
	Budget    float64   `json:"budget_mj"`
	Attempts  int       `json:"attempts"`
	TableSize int       `json:"table_size"`
	Error     string    `json:"error,omitempty"`
}

// Query defines filters for retrieving records. Zero values match everything.
type Query struct {
	RunID    string
	Resource string
	Status   string
	Start    time.Time
	End      time.Time
}

func (q Query) match(r Record) bool {
	if q.RunID != "" && r.RunID != q.RunID {
		return false
	}
	if q.Resource != "" && r.Resource != q.Resource {
		return false
	}
	if q.Status != "" && r.Status != q.Status {
		return false
	}
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	return true
}

// Store persists Records and supports querying.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}

// Options configures the store returned by Open.
type Options struct {
	Backend    string
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Open returns the store selected by opts.Backend ("jsonl" or "sqlite").
func Open(opts Options) (Store, error) {
	switch opts.Backend {
	case "jsonl", "":
		return NewRotatingJSONLStore(opts.Path, opts.MaxSizeMB, opts.MaxBackups, opts.MaxAgeDays)
	case "sqlite":
		return NewSQLiteStore(opts.Path)
	default:
		return nil, fmt.Errorf("unknown run log backend %s", opts.Backend)
	}
}
