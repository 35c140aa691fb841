package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// RequestEvent is one recorded call to the practice service.
type RequestEvent struct {
	ID           int
	Sequence     int64
	RecordedAt   time.Time
	RequestID    string
	Operation    string
	Method       string
	Path         string
	StatusCode   int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
}

// OperationUsage aggregates journal rows for one operation.
type OperationUsage struct {
	Operation    string
	Calls        int
	Failures     int
	AvgLatencyMs float64
}

// Journal provides append and query access to recorded service calls.
type Journal interface {
	// Append records one call. Sequence and RecordedAt are assigned here
	// when left zero.
	Append(ctx context.Context, ev RequestEvent) error

	// Recent returns up to limit events, newest first. A limit of zero
	// returns every event.
	Recent(ctx context.Context, limit int) ([]RequestEvent, error)

	// UsageByOperation returns per-operation aggregates ordered by name.
	UsageByOperation(ctx context.Context) ([]OperationUsage, error)
}

var requestEventColumns = []string{
	"id", "sequence", "recorded_at", "request_id", "operation",
	"method", "path", "status_code", "latency_ms", "success", "error_message",
}

// journal implements Journal with ent's SQL builder over database/sql.
type journal struct {
	db  *sql.DB
	seq *sequenceCounter
}

func (j *journal) Append(ctx context.Context, ev RequestEvent) error {
	if ev.Sequence == 0 {
		seqNum, err := j.seq.Next(ctx)
		if err != nil {
			return fmt.Errorf("next sequence: %w", err)
		}
		ev.Sequence = seqNum
	}
	if ev.RecordedAt.IsZero() {
		ev.RecordedAt = time.Now()
	}

	query, args := entsql.Dialect(dialect.SQLite).
		Insert(RequestEventsTable.Name).
		Columns(requestEventColumns[1:]...).
		Values(
			ev.Sequence,
			ev.RecordedAt.UTC().UnixMilli(),
			ev.RequestID,
			ev.Operation,
			ev.Method,
			ev.Path,
			ev.StatusCode,
			ev.LatencyMs,
			ev.Success,
			ev.ErrorMessage,
		).
		Query()
	if _, err := j.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save request event: %w", err)
	}
	return nil
}

func (j *journal) Recent(ctx context.Context, limit int) ([]RequestEvent, error) {
	sel := entsql.Dialect(dialect.SQLite).
		Select(requestEventColumns...).
		From(entsql.Table(RequestEventsTable.Name)).
		OrderBy(entsql.Desc("sequence"))
	if limit > 0 {
		sel = sel.Limit(limit)
	}

	query, args := sel.Query()
	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query request events: %w", err)
	}
	defer rows.Close()

	var events []RequestEvent
	for rows.Next() {
		var (
			ev         RequestEvent
			recordedAt int64
		)
		if err := rows.Scan(
			&ev.ID,
			&ev.Sequence,
			&recordedAt,
			&ev.RequestID,
			&ev.Operation,
			&ev.Method,
			&ev.Path,
			&ev.StatusCode,
			&ev.LatencyMs,
			&ev.Success,
			&ev.ErrorMessage,
		); err != nil {
			return nil, fmt.Errorf("scan request event: %w", err)
		}
		ev.RecordedAt = time.UnixMilli(recordedAt).UTC()
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate request events: %w", err)
	}
	return events, nil
}

func (j *journal) UsageByOperation(ctx context.Context) ([]OperationUsage, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select(
			"operation",
			entsql.As(entsql.Count("*"), "calls"),
			"SUM(CASE WHEN success THEN 0 ELSE 1 END) AS failures",
			entsql.As(entsql.Avg("latency_ms"), "avg_latency"),
		).
		From(entsql.Table(RequestEventsTable.Name)).
		GroupBy("operation").
		OrderBy("operation").
		Query()

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query usage: %w", err)
	}
	defer rows.Close()

	var usage []OperationUsage
	for rows.Next() {
		var (
			u   OperationUsage
			avg sql.NullFloat64
		)
		if err := rows.Scan(&u.Operation, &u.Calls, &u.Failures, &avg); err != nil {
			return nil, fmt.Errorf("scan usage: %w", err)
		}
		u.AvgLatencyMs = avg.Float64
		usage = append(usage, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate usage: %w", err)
	}
	return usage, nil
}
