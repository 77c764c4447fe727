package runlog

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecords(now time.Time) []Record {
	return []Record{
		{RunID: "r1", Timestamp: now, Resource: "little / 1", Status: StatusScheduled, Committed: 10, Energy: 40, Budget: 100},
		{RunID: "r1", Timestamp: now.Add(time.Second), Resource: "big / 2", Status: StatusInfeasible, Attempts: 3, Error: "scheduling failed"},
		{RunID: "r2", Timestamp: now.Add(time.Hour), Resource: "little / 1", Status: StatusScheduled, Committed: 8},
	}
}

func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()
	now := time.Unix(1700000000, 0).UTC()
	for _, rec := range sampleRecords(now) {
		require.NoError(t, store.Append(ctx, rec))
	}

	all, err := store.Query(ctx, Query{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "r1", all[0].RunID)
	assert.Equal(t, int64(40), all[0].Energy)

	run, err := store.Query(ctx, Query{RunID: "r1"})
	require.NoError(t, err)
	assert.Len(t, run, 2)

	failed, err := store.Query(ctx, Query{Status: StatusInfeasible})
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, "big / 2", failed[0].Resource)
	assert.Equal(t, "scheduling failed", failed[0].Error)

	little, err := store.Query(ctx, Query{Resource: "little / 1", End: now.Add(time.Minute)})
	require.NoError(t, err)
	require.Len(t, little, 1)
	assert.Equal(t, 10, little[0].Committed)

	later, err := store.Query(ctx, Query{Start: now.Add(time.Minute)})
	require.NoError(t, err)
	require.Len(t, later, 1)
	assert.Equal(t, "r2", later[0].RunID)
}

func TestSQLiteStore(t *testing.T) {
	store, err := NewSQLiteStore("file:runlog_test.db?mode=memory&cache=shared")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	exerciseStore(t, store)
}

func TestRotatingJSONLStore(t *testing.T) {
	store, err := NewRotatingJSONLStore(filepath.Join(t.TempDir(), "runs.jsonl"), 1, 2, 1)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	exerciseStore(t, store)
}

func TestRotatingJSONLStore_Rotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "runs.jsonl")
	store, err := NewRotatingJSONLStore(path, 1, 5, 1)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	rec := Record{RunID: "rot", Timestamp: time.Now(), Error: strings.Repeat("x", 4096)}
	// each line is a little over 4 KiB, so 300 lines exceed the 1 MB limit
	for i := 0; i < 300; i++ {
		require.NoError(t, store.Append(context.Background(), rec))
	}
	files, _ := filepath.Glob(filepath.Join(filepath.Dir(path), "runs*.jsonl"))
	if len(files) < 2 {
		t.Fatalf("expected rotated files, got %v", files)
	}
	out, err := store.Query(context.Background(), Query{RunID: "rot"})
	require.NoError(t, err)
	assert.Len(t, out, 300)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(Options{Backend: "jsonl", Path: filepath.Join(dir, "runs.jsonl")})
	require.NoError(t, err)
	assert.IsType(t, &RotatingJSONLStore{}, s)
	require.NoError(t, s.Close())

	s, err = Open(Options{Backend: "sqlite", Path: filepath.Join(dir, "runs.db")})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())

	_, err = Open(Options{Backend: "csv"})
	assert.Error(t, err)
}

func TestRuns(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()
	recs := sampleRecords(now)
	recs[1].Jobs = 4
	recs[1].Budget = 50
	// r2 is listed first but started later
	runs := Runs(append([]Record{recs[2]}, recs[:2]...))
	require.Len(t, runs, 2)

	assert.Equal(t, "r1", runs[0].RunID)
	assert.Equal(t, now, runs[0].Started)
	assert.Equal(t, 2, runs[0].Resources)
	assert.Equal(t, 1, runs[0].Infeasible)
	assert.Equal(t, 10, runs[0].Committed)
	assert.Equal(t, 4, runs[0].Jobs)
	assert.Equal(t, int64(40), runs[0].Energy)
	assert.InDelta(t, 150.0, runs[0].Budget, 1e-9)

	assert.Equal(t, "r2", runs[1].RunID)
	assert.Equal(t, 8, runs[1].Committed)
}
