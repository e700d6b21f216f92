package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/brightmark-io/brightmark/internal/jobs"
)

// SessionSweeper removes expired session records and reports the count.
type SessionSweeper interface {
	DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error)
}

// NewSessionSweepHandler builds the handler that prunes expired session
// rows. Redis entries expire on their own; this keeps the audit table from
// growing without bound.
func NewSessionSweepHandler(sweeper SessionSweeper, logger *slog.Logger, metrics *jobmetrics.Metrics) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload ScheduledPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		tracker := metrics.Track("session_sweep")
		swept, err := sweeper.DeleteExpiredSessions(ctx, time.Now())
		if err != nil {
			logger.Error("session sweep", slog.Any("error", err))
			return tracker.End(err)
		}
		logger.Info("sessions swept", slog.Int64("removed", swept))
		return tracker.End(nil)
	}
}
