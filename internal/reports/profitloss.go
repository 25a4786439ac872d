package reports

import (
	"math"

	"github.com/Keshvi-8/fleet-ledger/internal/fleet"
	"github.com/Keshvi-8/fleet-ledger/internal/shared"
)

// ExpenseBreakdown splits expenses by category. Diesel, toll and other
// come only from completed or locked trips; a running trip's expense
// fields are not final. Driver advances are paid upfront and count for
// every trip regardless of status.
type ExpenseBreakdown struct {
	Diesel        float64 `json:"diesel"`
	Toll          float64 `json:"toll"`
	Other         float64 `json:"other"`
	DriverAdvance float64 `json:"driver_advance"`
}

// Total sums the categories.
func (b ExpenseBreakdown) Total() float64 {
	return shared.Round2(b.Diesel + b.Toll + b.Other + b.DriverAdvance)
}

// PLSummary is the profit and loss position over a window.
type PLSummary struct {
	Range       DateRange        `json:"range"`
	TripCount   int              `json:"trip_count"`
	Income      float64          `json:"income"`
	Expenses    float64          `json:"expenses"`
	Breakdown   ExpenseBreakdown `json:"breakdown"`
	GrossProfit float64          `json:"gross_profit"`
	Margin      float64          `json:"margin"`
}

// ProfitLoss aggregates trips whose effective date falls in the window.
// Income includes running trips.
func ProfitLoss(trips []fleet.Trip, r DateRange) PLSummary {
	summary := PLSummary{Range: r}
	for _, trip := range trips {
		if !r.Contains(trip.EffectiveDate()) {
			continue
		}
		summary.TripCount++
		summary.Income += trip.TotalIncome
		summary.Breakdown.DriverAdvance += trip.DriverAdvance
		if trip.Status.Billable() {
			summary.Breakdown.Diesel += trip.DieselAmount
			summary.Breakdown.Toll += trip.TollExpense
			summary.Breakdown.Other += trip.OtherExpense
		}
	}
	summary.Income = shared.Round2(summary.Income)
	summary.Breakdown.Diesel = shared.Round2(summary.Breakdown.Diesel)
	summary.Breakdown.Toll = shared.Round2(summary.Breakdown.Toll)
	summary.Breakdown.Other = shared.Round2(summary.Breakdown.Other)
	summary.Breakdown.DriverAdvance = shared.Round2(summary.Breakdown.DriverAdvance)
	summary.Expenses = summary.Breakdown.Total()
	summary.GrossProfit = shared.Round2(summary.Income - summary.Expenses)
	if summary.Income != 0 {
		summary.Margin = shared.Round2(summary.GrossProfit / summary.Income * 100)
	}
	return summary
}

// ChangePct is the period-over-period percentage change per category.
type ChangePct struct {
	Income      float64 `json:"income"`
	Expenses    float64 `json:"expenses"`
	GrossProfit float64 `json:"gross_profit"`
}

// Comparison pairs a window with its equivalent-length predecessor.
type Comparison struct {
	Current  PLSummary `json:"current"`
	Previous PLSummary `json:"previous"`
	Change   ChangePct `json:"change"`
}

// Compare builds the period-over-period view.
func Compare(trips []fleet.Trip, r DateRange, tf Timeframe) Comparison {
	current := ProfitLoss(trips, r)
	previous := ProfitLoss(trips, Previous(r, tf))
	return Comparison{
		Current:  current,
		Previous: previous,
		Change: ChangePct{
			Income:      PercentChange(current.Income, previous.Income),
			Expenses:    PercentChange(current.Expenses, previous.Expenses),
			GrossProfit: PercentChange(current.GrossProfit, previous.GrossProfit),
		},
	}
}

// PercentChange follows the fixed edge-case policy: zero against zero
// is 0%, anything against zero is 100% in the direction of the change.
func PercentChange(current, previous float64) float64 {
	if previous == 0 {
		if current == 0 {
			return 0
		}
		if current > 0 {
			return 100
		}
		return -100
	}
	return shared.Round2((current - previous) / math.Abs(previous) * 100)
}

// TrendThreshold is the band, in percent, inside which a change counts
// as stable.
const TrendThreshold = 5.0

// Trend classifies a period-over-period change.
func Trend(current, previous float64) string {
	change := PercentChange(current, previous)
	switch {
	case change > TrendThreshold:
		return "rising"
	case change < -TrendThreshold:
		return "falling"
	default:
		return "stable"
	}
}
