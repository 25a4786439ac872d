package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/Keshvi-8/fleet-ledger/internal/billing"
	"github.com/Keshvi-8/fleet-ledger/internal/payments"
	"github.com/Keshvi-8/fleet-ledger/internal/receivables"
	"github.com/Keshvi-8/fleet-ledger/internal/shared"
)

// NewReceivablesRefreshHandler recomputes the receivables snapshot and
// warms the cache so the first dashboard hit after a quiet night is
// served hot.
func NewReceivablesRefreshHandler(svc *receivables.Service, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload ReceivablesRefreshPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		snap, err := svc.Refresh(ctx)
		if err != nil {
			logger.Error("receivables refresh job", slog.Any("error", err))
			return err
		}
		logger.Info("receivables snapshot refreshed",
			slog.Int("unpaid_bills", snap.UnpaidBills),
			slog.Float64("total_outstanding", snap.TotalOutstanding))
		return nil
	}
}

// NewBillReminderHandler surfaces bills still unpaid when their payment
// window closes. Bills settled or deleted in the meantime drop the task
// without retrying.
func NewBillReminderHandler(billingSvc *billing.Service, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload BillReminderPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		bill, err := billingSvc.GetBill(ctx, payload.BillID)
		if err != nil {
			if errors.Is(err, billing.ErrBillNotFound) {
				return asynq.SkipRetry
			}
			return err
		}
		summary := payments.Summarize(*bill)
		if summary.IsPaidInFull {
			return nil
		}
		logger.Warn("bill payment overdue",
			slog.Int64("bill_id", bill.ID),
			slog.String("bill_number", bill.BillNumber),
			slog.String("client", bill.ClientName),
			slog.String("balance", shared.FormatINR(summary.Balance)),
			slog.Time("due", payload.Due))
		return nil
	}
}

// NewIdempotencyCleanupHandler prunes request keys older than the
// payload's retention so the table does not grow without bound.
func NewIdempotencyCleanupHandler(store *shared.IdempotencyStore, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload IdempotencyCleanupPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		retention := payload.Retention
		if retention <= 0 {
			retention = 48 * time.Hour
		}
		if err := store.Cleanup(ctx, retention); err != nil {
			logger.Error("idempotency cleanup job", slog.Any("error", err))
			return err
		}
		return nil
	}
}

// Enqueuer submits billing reminders through the jobs client with a
// delayed delivery at the due time.
type Enqueuer struct {
	client *Client
}

// NewEnqueuer wraps a jobs client for use by the billing service.
func NewEnqueuer(client *Client) *Enqueuer {
	return &Enqueuer{client: client}
}

// EnqueueBillReminder schedules a reminder to fire at the due time.
func (e *Enqueuer) EnqueueBillReminder(ctx context.Context, billID int64, due time.Time) error {
	task, err := NewBillReminderTask(billID, due)
	if err != nil {
		return err
	}
	_, err = e.client.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault), asynq.ProcessAt(due))
	return err
}

// EnqueueReceivablesRefresh submits an immediate snapshot rebuild.
func (e *Enqueuer) EnqueueReceivablesRefresh(ctx context.Context) error {
	_, err := e.client.EnqueueReceivablesRefresh(ctx)
	return err
}
