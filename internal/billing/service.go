package billing

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/Keshvi-8/fleet-ledger/internal/fleet"
)

var (
	// ErrBillNotFound indicates the bill does not exist.
	ErrBillNotFound = errors.New("billing: bill not found")
	// ErrPeriodUnknown indicates the period key is outside the lookback
	// window.
	ErrPeriodUnknown = errors.New("billing: unknown billing period")
	// ErrBillAlreadyPaid rejects lifecycle changes on settled bills.
	ErrBillAlreadyPaid = errors.New("billing: bill already paid")
)

// TripSource supplies trips for aggregation. Satisfied by the fleet
// service.
type TripSource interface {
	ListTrips(ctx context.Context, req fleet.ListTripsRequest) ([]fleet.Trip, error)
	ListClients(ctx context.Context) ([]fleet.Client, error)
}

// Repository defines bill persistence.
type Repository interface {
	CountBillsForPeriod(ctx context.Context, start, end time.Time) (int, error)
	SaveBills(ctx context.Context, bills []Bill) ([]Bill, error)
	GetBill(ctx context.Context, id int64) (*Bill, error)
	ListBills(ctx context.Context, req ListBillsRequest) ([]Bill, error)
	SetStatus(ctx context.Context, id int64, status BillStatus, at time.Time) error
}

// ReminderEnqueuer schedules payment reminders for sent bills. Nil-safe
// at the service level so the web binary can run without a worker.
type ReminderEnqueuer interface {
	EnqueueBillReminder(ctx context.Context, billID int64, due time.Time) error
}

// GenerateRequest selects a period for bill generation.
type GenerateRequest struct {
	PeriodKey  string `json:"period_key" validate:"required"`
	InterState bool   `json:"inter_state"`
}

// ListBillsRequest filters bill listings.
type ListBillsRequest struct {
	ClientID    int64
	Status      BillStatus
	PeriodStart time.Time
	PeriodEnd   time.Time
	Limit       int
	Offset      int
}

// Service owns invoice generation and lifecycle.
type Service struct {
	logger    *slog.Logger
	repo      Repository
	trips     TripSource
	reminders ReminderEnqueuer
	lookback  int
	now       func() time.Time

	mu      sync.Mutex
	periods map[string]*sync.Mutex
}

// NewService builds a Service instance. reminders may be nil.
func NewService(logger *slog.Logger, repo Repository, trips TripSource, reminders ReminderEnqueuer, lookbackMonths int) *Service {
	return &Service{
		logger:    logger,
		repo:      repo,
		trips:     trips,
		reminders: reminders,
		lookback:  lookbackMonths,
		now:       time.Now,
		periods:   make(map[string]*sync.Mutex),
	}
}

// Periods lists the selectable billing periods, most recent first.
func (s *Service) Periods() []Period {
	return AvailablePeriods(s.now(), s.lookback)
}

// ResolvePeriod maps a period key to its window, using the service
// clock and lookback.
func (s *Service) ResolvePeriod(key string) (Period, bool) {
	return FindPeriod(key, s.now(), s.lookback)
}

// Generate produces and persists the bills of one period. Runs for the
// same period are serialized so invoice numbers never collide; numbering
// continues after any bills already stored for the period.
func (s *Service) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	period, ok := FindPeriod(req.PeriodKey, s.now(), s.lookback)
	if !ok {
		return nil, ErrPeriodUnknown
	}

	lock := s.periodLock(period.Key())
	lock.Lock()
	defer lock.Unlock()

	existing, err := s.repo.CountBillsForPeriod(ctx, period.Start, period.End)
	if err != nil {
		return nil, err
	}
	trips, err := s.trips.ListTrips(ctx, fleet.ListTripsRequest{})
	if err != nil {
		return nil, err
	}
	clients, err := s.trips.ListClients(ctx)
	if err != nil {
		return nil, err
	}

	result, err := GenerateBills(trips, clients, period, GenerateOptions{
		InterState:    req.InterState,
		StartSequence: existing + 1,
		Now:           s.now,
	})
	if err != nil {
		return nil, err
	}
	if result.SkippedJourneys > 0 {
		s.logger.Warn("journeys skipped during generation",
			slog.String("period", period.Key()),
			slog.Int("skipped", result.SkippedJourneys))
	}
	if len(result.Bills) == 0 {
		return &result, nil
	}

	saved, err := s.repo.SaveBills(ctx, result.Bills)
	if err != nil {
		return nil, err
	}
	result.Bills = saved
	s.logger.Info("bills generated",
		slog.String("period", period.Key()),
		slog.Int("count", len(saved)))
	return &result, nil
}

// GetBill returns a bill with line items and payments.
func (s *Service) GetBill(ctx context.Context, id int64) (*Bill, error) {
	return s.repo.GetBill(ctx, id)
}

// ListBills returns bills matching the filter.
func (s *Service) ListBills(ctx context.Context, req ListBillsRequest) ([]Bill, error) {
	return s.repo.ListBills(ctx, req)
}

// MarkSent transitions a generated bill to sent and schedules a payment
// reminder at the period's payment window close. Idempotent for bills
// already sent.
func (s *Service) MarkSent(ctx context.Context, id int64) (*Bill, error) {
	bill, err := s.repo.GetBill(ctx, id)
	if err != nil {
		return nil, err
	}
	switch bill.Status {
	case BillStatusSent:
		return bill, nil
	case BillStatusPaid:
		return nil, ErrBillAlreadyPaid
	}

	now := s.now()
	if err := s.repo.SetStatus(ctx, id, BillStatusSent, now); err != nil {
		return nil, err
	}
	bill.Status = BillStatusSent
	bill.SentAt = &now

	if s.reminders != nil {
		due := s.paymentDue(*bill)
		if err := s.reminders.EnqueueBillReminder(ctx, bill.ID, due); err != nil {
			s.logger.Error("enqueue bill reminder",
				slog.Int64("bill_id", bill.ID), slog.Any("error", err))
		}
	}
	return bill, nil
}

// paymentDue resolves the payment window close for a bill's period.
func (s *Service) paymentDue(bill Bill) time.Time {
	pair := PeriodsForMonth(bill.PeriodStart)
	for _, p := range pair {
		if p.Start.Equal(bill.PeriodStart) {
			return p.PaymentWindowEnd
		}
	}
	return bill.PeriodEnd.AddDate(0, 0, 10)
}

func (s *Service) periodLock(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.periods[key]
	if !ok {
		lock = &sync.Mutex{}
		s.periods[key] = lock
	}
	return lock
}
