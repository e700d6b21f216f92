package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	jobmetrics "github.com/brightmark-io/brightmark/internal/jobs"
)

// NewDemoUsageReconcileHandler builds the handler that recounts stored
// report usage for demo accounts. Authorization reads the live count, so
// this only repairs the cached column used by dashboards.
func NewDemoUsageReconcileHandler(pool *pgxpool.Pool, logger *slog.Logger, metrics *jobmetrics.Metrics) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload ScheduledPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		tracker := metrics.Track("demo_usage_reconcile")
		tag, err := pool.Exec(ctx, `
			UPDATE users u SET current_report_count = COALESCE(sub.cnt, 0)
			FROM (SELECT owner_id, COUNT(*) AS cnt FROM reports GROUP BY owner_id) sub
			WHERE u.role = 'demo' AND u.id = sub.owner_id AND u.current_report_count IS DISTINCT FROM sub.cnt`)
		if err != nil {
			logger.Error("demo usage reconcile", slog.Any("error", err))
			return tracker.End(err)
		}
		if _, err := pool.Exec(ctx, `
			UPDATE users SET current_report_count = 0
			WHERE role = 'demo' AND current_report_count <> 0
			AND id NOT IN (SELECT DISTINCT owner_id FROM reports)`); err != nil {
			logger.Error("demo usage reconcile zero pass", slog.Any("error", err))
			return tracker.End(err)
		}
		logger.Info("demo usage reconciled", slog.Int64("updated", tag.RowsAffected()))
		return tracker.End(nil)
	}
}
