package client

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/AMANN-N/smart-practice/internal/store"
)

// journalTimeout bounds a single journal write.
const journalTimeout = 2 * time.Second

// Recorder writes every completed HTTP exchange to a request journal.
// Register it with WithObserver(rec.Observe).
type Recorder struct {
	journal store.Journal
	log     *zap.Logger
}

// NewRecorder creates a Recorder. A nil logger disables warning output.
func NewRecorder(j store.Journal, log *zap.Logger) *Recorder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Recorder{journal: j, log: log}
}

// Observe appends info to the journal. Journal failures never fail the
// call being observed.
func (r *Recorder) Observe(info CallInfo) {
	ev := store.RequestEvent{
		RequestID:  info.RequestID,
		Operation:  info.Op,
		Method:     info.Method,
		Path:       info.Path,
		StatusCode: info.StatusCode,
		LatencyMs:  info.Latency.Milliseconds(),
		Success:    info.Err == nil,
	}
	if info.Err != nil {
		ev.ErrorMessage = info.Err.Error()
	}

	ctx, cancel := context.WithTimeout(context.Background(), journalTimeout)
	defer cancel()
	if err := r.journal.Append(ctx, ev); err != nil {
		r.log.Warn("failed to journal request",
			zap.String("op", info.Op),
			zap.String("request_id", info.RequestID),
			zap.Error(err),
		)
	}
}
