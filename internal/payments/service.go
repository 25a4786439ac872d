package payments

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Keshvi-8/fleet-ledger/internal/billing"
	"github.com/Keshvi-8/fleet-ledger/internal/shared"
)

var (
	// ErrInvalidAmount rejects zero or negative payment amounts.
	ErrInvalidAmount = errors.New("payments: amount must be positive")
	// ErrFutureDate rejects payment dates after today.
	ErrFutureDate = errors.New("payments: payment date in the future")
	// ErrInvalidMode rejects unknown settlement channels.
	ErrInvalidMode = errors.New("payments: invalid payment mode")
)

// Repository defines ledger persistence over the billing store.
type Repository interface {
	GetBill(ctx context.Context, id int64) (*billing.Bill, error)
	AddPayment(ctx context.Context, payment billing.Payment) (*billing.Payment, error)
	SetStatus(ctx context.Context, id int64, status billing.BillStatus, at time.Time) error
}

// RecordPaymentRequest appends a ledger entry to a bill.
type RecordPaymentRequest struct {
	Amount    float64   `json:"amount" validate:"required"`
	Date      time.Time `json:"date" validate:"required"`
	Mode      string    `json:"mode" validate:"required"`
	Reference string    `json:"reference" validate:"max=200"`
	Notes     string    `json:"notes" validate:"max=500"`
}

// Summary is the settlement view of a bill. Balance is clamped to zero:
// overpayment shows as paid in full with a zero balance, never negative.
type Summary struct {
	BillID       int64             `json:"bill_id"`
	BillNumber   string            `json:"bill_number"`
	NetPayable   float64           `json:"net_payable"`
	AmountPaid   float64           `json:"amount_paid"`
	Balance      float64           `json:"balance"`
	IsPaidInFull bool              `json:"is_paid_in_full"`
	Payments     []billing.Payment `json:"payments"`
}

// Summarize derives the settlement view from a bill and its payments.
// Pure function; safe on any bill snapshot.
func Summarize(bill billing.Bill) Summary {
	paid := shared.Round2(bill.AmountPaid())
	remaining := shared.Round2(bill.NetPayable - paid)
	balance := remaining
	if balance < 0 {
		balance = 0
	}
	return Summary{
		BillID:       bill.ID,
		BillNumber:   bill.BillNumber,
		NetPayable:   bill.NetPayable,
		AmountPaid:   paid,
		Balance:      balance,
		IsPaidInFull: remaining <= 0,
		Payments:     bill.Payments,
	}
}

// RefreshEnqueuer requests a receivables snapshot rebuild after a bill
// settles. May be nil when no worker is attached.
type RefreshEnqueuer interface {
	EnqueueReceivablesRefresh(ctx context.Context) error
}

// Service owns the append-only payment ledger.
type Service struct {
	logger    *slog.Logger
	repo      Repository
	refresher RefreshEnqueuer
	now       func() time.Time

	mu    sync.Mutex
	bills map[int64]*sync.Mutex
}

// NewService builds a Service instance. refresher may be nil.
func NewService(logger *slog.Logger, repo Repository, refresher RefreshEnqueuer) *Service {
	return &Service{
		logger:    logger,
		repo:      repo,
		refresher: refresher,
		now:       time.Now,
		bills:     make(map[int64]*sync.Mutex),
	}
}

// Record appends a payment to a bill's ledger. Concurrent records
// against the same bill are serialized so the settled check never runs
// on a stale total. Once the ledger covers the net payable the bill is
// marked paid.
func (s *Service) Record(ctx context.Context, billID int64, req RecordPaymentRequest) (*Summary, error) {
	if req.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	mode := billing.PaymentMode(req.Mode)
	if !mode.Valid() {
		return nil, ErrInvalidMode
	}
	now := s.now()
	if req.Date.After(endOfDay(now)) {
		return nil, ErrFutureDate
	}

	lock := s.billLock(billID)
	lock.Lock()
	defer lock.Unlock()

	bill, err := s.repo.GetBill(ctx, billID)
	if err != nil {
		return nil, err
	}

	reference := req.Reference
	if reference == "" {
		// Cash and UPI entries often arrive without a bank reference;
		// stamp a receipt ID so every ledger row stays traceable.
		reference = "RCPT-" + uuid.NewString()
	}

	payment, err := s.repo.AddPayment(ctx, billing.Payment{
		BillID:     bill.ID,
		Amount:     shared.Round2(req.Amount),
		Date:       req.Date,
		Mode:       mode,
		Reference:  reference,
		Notes:      req.Notes,
		RecordedAt: now,
	})
	if err != nil {
		return nil, err
	}
	bill.Payments = append(bill.Payments, *payment)

	summary := Summarize(*bill)
	if summary.IsPaidInFull && bill.Status != billing.BillStatusPaid {
		if err := s.repo.SetStatus(ctx, bill.ID, billing.BillStatusPaid, now); err != nil {
			return nil, err
		}
		s.logger.Info("bill settled",
			slog.Int64("bill_id", bill.ID),
			slog.String("bill_number", bill.BillNumber))
		if s.refresher != nil {
			// Settled bills drop out of the aging buckets; rebuild the
			// cached snapshot instead of waiting for the nightly cron.
			if err := s.refresher.EnqueueReceivablesRefresh(ctx); err != nil {
				s.logger.Error("enqueue receivables refresh", slog.Any("error", err))
			}
		}
	}
	return &summary, nil
}

// Summary returns the settlement view of a bill.
func (s *Service) Summary(ctx context.Context, billID int64) (*Summary, error) {
	bill, err := s.repo.GetBill(ctx, billID)
	if err != nil {
		return nil, err
	}
	summary := Summarize(*bill)
	return &summary, nil
}

func (s *Service) billLock(id int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.bills[id]
	if !ok {
		lock = &sync.Mutex{}
		s.bills[id] = lock
	}
	return lock
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}
