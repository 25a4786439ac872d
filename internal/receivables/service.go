package receivables

import (
	"context"
	"log/slog"
	"time"

	"github.com/Keshvi-8/fleet-ledger/internal/billing"
)

// BillSource supplies bills for aggregation. Satisfied by the billing
// repository.
type BillSource interface {
	ListBills(ctx context.Context, req billing.ListBillsRequest) ([]billing.Bill, error)
}

// Service computes and caches the receivables position.
type Service struct {
	logger *slog.Logger
	bills  BillSource
	cache  *Cache
	now    func() time.Time
}

// NewService builds a Service instance. cache may be nil, in which case
// every snapshot is computed fresh.
func NewService(logger *slog.Logger, bills BillSource, cache *Cache) *Service {
	return &Service{logger: logger, bills: bills, cache: cache, now: time.Now}
}

// Snapshot returns the receivables position, served from cache when a
// fresh copy exists. The cache key carries the calendar date so aging
// never crosses midnight on a stale entry.
func (s *Service) Snapshot(ctx context.Context) (*Snapshot, error) {
	now := s.now()
	key, err := s.cache.BuildKey(ctx, keySnapshot(now))
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	err = s.cache.FetchJSON(ctx, key, &snap, func(ctx context.Context) (interface{}, error) {
		return s.compute(ctx, now)
	})
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// Refresh invalidates the cached position and computes a fresh one.
// Used by the background refresh job and the manual refresh endpoint.
func (s *Service) Refresh(ctx context.Context) (*Snapshot, error) {
	if err := s.cache.Bump(ctx); err != nil {
		s.logger.Error("bump receivables cache", slog.Any("error", err))
	}
	return s.Snapshot(ctx)
}

func (s *Service) compute(ctx context.Context, now time.Time) (Snapshot, error) {
	bills, err := s.bills.ListBills(ctx, billing.ListBillsRequest{})
	if err != nil {
		return Snapshot{}, err
	}
	snap := BuildSnapshot(bills, now)
	s.logger.Debug("receivables snapshot computed",
		slog.Int("unpaid_bills", snap.UnpaidBills),
		slog.Float64("total_outstanding", snap.TotalOutstanding))
	return snap, nil
}
