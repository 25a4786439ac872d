package reports

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Keshvi-8/fleet-ledger/internal/fleet"
)

// ErrUnknownGroupBy rejects grouping values outside the enum.
var ErrUnknownGroupBy = errors.New("reports: unknown group_by")

// GroupBy selects the expense report shape.
type GroupBy string

const (
	GroupByTruck   GroupBy = "truck"
	GroupByMonth   GroupBy = "month"
	GroupByOverall GroupBy = "overall"
)

// TripSource supplies trips for aggregation. Satisfied by the fleet
// service.
type TripSource interface {
	ListTrips(ctx context.Context, req fleet.ListTripsRequest) ([]fleet.Trip, error)
}

// ReportRequest selects a reporting window.
type ReportRequest struct {
	Timeframe Timeframe
	From      time.Time
	To        time.Time
}

// ExpenseReport is the grouped expense view; exactly one of Overall,
// Trucks or Months is populated, per the requested grouping. Shares
// accompanies the overall view.
type ExpenseReport struct {
	Range   DateRange      `json:"range"`
	GroupBy GroupBy        `json:"group_by"`
	Overall *PLSummary     `json:"overall,omitempty"`
	Shares  *ExpenseShares `json:"shares,omitempty"`
	Trucks  []TruckExpense `json:"trucks,omitempty"`
	Months  []MonthExpense `json:"months,omitempty"`
}

// Service computes P/L and expense reports. Identical concurrent
// requests share one trip load and one computation via singleflight.
type Service struct {
	logger *slog.Logger
	trips  TripSource
	now    func() time.Time
	group  singleflight.Group
}

// NewService builds a Service instance.
func NewService(logger *slog.Logger, trips TripSource) *Service {
	return &Service{logger: logger, trips: trips, now: time.Now}
}

// ProfitLoss reports income, expenses and margin over the window, with
// the equivalent-length prior window for comparison.
func (s *Service) ProfitLoss(ctx context.Context, req ReportRequest) (*Comparison, error) {
	r, err := Resolve(req.Timeframe, s.now(), req.From, req.To)
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("pl:%s:%s:%s", req.Timeframe, r.From.Format("2006-01-02"), r.To.Format("2006-01-02"))
	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		trips, err := s.trips.ListTrips(ctx, fleet.ListTripsRequest{})
		if err != nil {
			return nil, err
		}
		cmp := Compare(trips, r, req.Timeframe)
		return &cmp, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Comparison), nil
}

// Expenses reports spend over the window, grouped per the request.
func (s *Service) Expenses(ctx context.Context, req ReportRequest, groupBy GroupBy) (*ExpenseReport, error) {
	switch groupBy {
	case GroupByTruck, GroupByMonth, GroupByOverall:
	default:
		return nil, ErrUnknownGroupBy
	}
	r, err := Resolve(req.Timeframe, s.now(), req.From, req.To)
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("exp:%s:%s:%s:%s", groupBy, req.Timeframe, r.From.Format("2006-01-02"), r.To.Format("2006-01-02"))
	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		trips, err := s.trips.ListTrips(ctx, fleet.ListTripsRequest{})
		if err != nil {
			return nil, err
		}
		report := &ExpenseReport{Range: r, GroupBy: groupBy}
		switch groupBy {
		case GroupByTruck:
			report.Trucks = ExpensesByTruck(trips, r)
		case GroupByMonth:
			report.Months = ExpensesByMonth(trips, r)
		default:
			summary := ProfitLoss(trips, r)
			shares := Shares(summary)
			report.Overall = &summary
			report.Shares = &shares
		}
		return report, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*ExpenseReport), nil
}
