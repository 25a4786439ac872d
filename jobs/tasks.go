package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskReceivablesRefresh recomputes and re-warms the receivables
	// snapshot cache.
	TaskReceivablesRefresh = "receivables:refresh"
	// TaskBillReminder nudges the operator about a bill whose payment
	// window is closing.
	TaskBillReminder = "billing:reminder"
	// TaskIdempotencyCleanup prunes processed request keys past their
	// retention.
	TaskIdempotencyCleanup = "maintenance:idempotency-cleanup"
)

// ReceivablesRefreshPayload carries scheduling metadata.
type ReceivablesRefreshPayload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewReceivablesRefreshTask constructs an Asynq task for the snapshot
// refresh.
func NewReceivablesRefreshTask(at time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(ReceivablesRefreshPayload{ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReceivablesRefresh, body, asynq.Queue(QueueDefault)), nil
}

// BillReminderPayload identifies the bill a reminder is for.
type BillReminderPayload struct {
	BillID int64     `json:"bill_id"`
	Due    time.Time `json:"due"`
}

// NewBillReminderTask constructs an Asynq task for a payment reminder.
func NewBillReminderTask(billID int64, due time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(BillReminderPayload{BillID: billID, Due: due})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskBillReminder, body, asynq.Queue(QueueDefault)), nil
}

// IdempotencyCleanupPayload sets the retention horizon for key pruning.
type IdempotencyCleanupPayload struct {
	Retention time.Duration `json:"retention"`
}

// NewIdempotencyCleanupTask constructs an Asynq task for key pruning.
func NewIdempotencyCleanupTask(retention time.Duration) (*asynq.Task, error) {
	body, err := json.Marshal(IdempotencyCleanupPayload{Retention: retention})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskIdempotencyCleanup, body, asynq.Queue(QueueDefault)), nil
}
