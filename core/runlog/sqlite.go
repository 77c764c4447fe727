package runlog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS schedule_runs (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	ts         INTEGER NOT NULL,
	run_id     TEXT NOT NULL,
	resource   TEXT NOT NULL,
	status     TEXT NOT NULL,
	jobs       INTEGER NOT NULL,
	committed  INTEGER NOT NULL,
	missed     INTEGER NOT NULL,
	delayed    INTEGER NOT NULL,
	energy_mj  INTEGER NOT NULL,
	budget_mj  REAL NOT NULL,
	attempts   INTEGER NOT NULL,
	table_size INTEGER NOT NULL,
	error      TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS schedule_runs_run_id ON schedule_runs (run_id);
CREATE INDEX IF NOT EXISTS schedule_runs_ts ON schedule_runs (ts);`

const sqliteColumns = `ts, run_id, resource, status, jobs, committed, missed, delayed, energy_mj, budget_mj, attempts, table_size, error`

// SQLiteStore persists records to a SQLite database, one row per resource.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at path and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Append inserts the record.
func (s *SQLiteStore) Append(ctx context.Context, rec Record) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO schedule_runs (`+sqliteColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Timestamp.UnixNano(), rec.RunID, rec.Resource, rec.Status, rec.Jobs, rec.Committed,
		rec.Missed, rec.Delayed, rec.Energy, rec.Budget, rec.Attempts, rec.TableSize, rec.Error)
	return err
}

// Query returns records matching q ordered by timestamp.
func (s *SQLiteStore) Query(ctx context.Context, q Query) ([]Record, error) {
	var where []string
	var args []any
	add := func(clause string, v any) {
		where = append(where, clause)
		args = append(args, v)
	}
	if q.RunID != "" {
		add("run_id = ?", q.RunID)
	}
	if q.Resource != "" {
		add("resource = ?", q.Resource)
	}
	if q.Status != "" {
		add("status = ?", q.Status)
	}
	if !q.Start.IsZero() {
		add("ts >= ?", q.Start.UnixNano())
	}
	if !q.End.IsZero() {
		add("ts <= ?", q.End.UnixNano())
	}
	query := `SELECT ` + sqliteColumns + ` FROM schedule_runs`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY ts, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []Record
	for rows.Next() {
		var r Record
		var ts int64
		if err := rows.Scan(&ts, &r.RunID, &r.Resource, &r.Status, &r.Jobs, &r.Committed, &r.Missed,
			&r.Delayed, &r.Energy, &r.Budget, &r.Attempts, &r.TableSize, &r.Error); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		r.Timestamp = time.Unix(0, ts)
		res = append(res, r)
	}
	return res, rows.Err()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }
