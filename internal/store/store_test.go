package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err, "open test store")
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if !assert.NoError(t, err, "PRAGMA %s", tt.pragma) {
			continue
		}
		assert.Equal(t, tt.want, got, "PRAGMA %s", tt.pragma)
	}
}

func TestReopenKeepsEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Journal().Append(ctx, RequestEvent{Operation: "health", Success: true}))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	events, err := s.Journal().Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "health", events[0].Operation)
}

func TestJournalAppendAndRecent(t *testing.T) {
	j := openTestStore(t).Journal()
	ctx := context.Background()

	events, err := j.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, events)

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, j.Append(ctx, RequestEvent{
		RecordedAt: at,
		RequestID:  "req-1",
		Operation:  "start-session",
		Method:     "POST",
		Path:       "/api/session/start",
		StatusCode: 200,
		LatencyMs:  12,
		Success:    true,
	}))
	require.NoError(t, j.Append(ctx, RequestEvent{
		RequestID:    "req-2",
		Operation:    "next-question",
		Method:       "GET",
		Path:         "/api/session/next",
		StatusCode:   500,
		LatencyMs:    30,
		ErrorMessage: "boom",
	}))

	events, err = j.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)

	// Newest first.
	assert.Equal(t, "req-2", events[0].RequestID)
	assert.False(t, events[0].Success)
	assert.Equal(t, "boom", events[0].ErrorMessage)
	assert.Equal(t, 500, events[0].StatusCode)
	assert.False(t, events[0].RecordedAt.IsZero())

	assert.Equal(t, "req-1", events[1].RequestID)
	assert.True(t, events[1].Success)
	assert.Equal(t, at, events[1].RecordedAt)
	assert.Equal(t, int64(12), events[1].LatencyMs)
	assert.Less(t, events[1].Sequence, events[0].Sequence)

	limited, err := j.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "req-2", limited[0].RequestID)
}

func TestSequenceMonotonic(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var prev int64
	for i := 0; i < 5; i++ {
		seq, err := s.seq.Next(ctx)
		require.NoError(t, err)
		assert.Greater(t, seq, prev)
		prev = seq
	}
}

func TestUsageByOperation(t *testing.T) {
	j := openTestStore(t).Journal()
	ctx := context.Background()

	for _, ev := range []RequestEvent{
		{Operation: "submit-answer", LatencyMs: 10, Success: true},
		{Operation: "submit-answer", LatencyMs: 30, Success: false},
		{Operation: "knowledge-graph", LatencyMs: 5, Success: true},
	} {
		require.NoError(t, j.Append(ctx, ev))
	}

	usage, err := j.UsageByOperation(ctx)
	require.NoError(t, err)
	require.Len(t, usage, 2)

	assert.Equal(t, OperationUsage{Operation: "knowledge-graph", Calls: 1, Failures: 0, AvgLatencyMs: 5}, usage[0])
	assert.Equal(t, OperationUsage{Operation: "submit-answer", Calls: 2, Failures: 1, AvgLatencyMs: 20}, usage[1])
}

func TestDefaultDBPathFromEnv(t *testing.T) {
	want := filepath.Join(t.TempDir(), "nested", "journal.db")
	t.Setenv("SMARTPRACTICE_DB", want)

	got, err := DefaultDBPath()
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.DirExists(t, filepath.Dir(want))
}

func TestDefaultDBPathXDG(t *testing.T) {
	dataHome := t.TempDir()
	t.Setenv("SMARTPRACTICE_DB", "")
	t.Setenv("XDG_DATA_HOME", dataHome)

	got, err := DefaultDBPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dataHome, "smartpractice", "journal.db"), got)
}
