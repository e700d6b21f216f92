package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskDemoUsageReconcile recounts stored report usage for demo accounts.
	TaskDemoUsageReconcile = "demo:usage_reconcile"
	// TaskSessionSweep removes expired session records.
	TaskSessionSweep = "sessions:sweep"
)

// ScheduledPayload carries scheduling metadata shared by cron tasks.
type ScheduledPayload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewDemoUsageReconcileTask constructs the nightly reconciliation task.
func NewDemoUsageReconcileTask(at time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(ScheduledPayload{ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDemoUsageReconcile, body, asynq.Queue(QueueDefault)), nil
}

// NewSessionSweepTask constructs the expired-session sweep task.
func NewSessionSweepTask(at time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(ScheduledPayload{ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSessionSweep, body, asynq.Queue(QueueDefault)), nil
}
