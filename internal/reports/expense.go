package reports

import (
	"sort"
	"time"

	"github.com/Keshvi-8/fleet-ledger/internal/fleet"
	"github.com/Keshvi-8/fleet-ledger/internal/shared"
)

// TruckExpense aggregates cost figures for one truck. Only completed or
// locked trips contribute: a running trip has no final odometer or fuel
// figures, so it is excluded entirely here even though its income and
// driver advance already show in the P/L totals.
type TruckExpense struct {
	TruckID        int64   `json:"truck_id"`
	TruckNumber    string  `json:"truck_number"`
	TripCount      int     `json:"trip_count"`
	TotalKm        float64 `json:"total_km"`
	DieselQuantity float64 `json:"diesel_quantity"`
	DieselAmount   float64 `json:"diesel_amount"`
	TollExpense    float64 `json:"toll_expense"`
	OtherExpense   float64 `json:"other_expense"`
	DriverAdvance  float64 `json:"driver_advance"`
	Total          float64 `json:"total"`
	CostPerKm      float64 `json:"cost_per_km"` // 0 when no km recorded
	Mileage        float64 `json:"mileage"`     // km/l, 0 when no diesel recorded
}

// ExpensesByTruck aggregates finished trips in the window per truck,
// ordered by total spend, largest first.
func ExpensesByTruck(trips []fleet.Trip, r DateRange) []TruckExpense {
	index := make(map[int64]int)
	var out []TruckExpense
	for _, trip := range trips {
		if !trip.Status.Billable() || !r.Contains(trip.EffectiveDate()) {
			continue
		}
		i, ok := index[trip.TruckID]
		if !ok {
			i = len(out)
			index[trip.TruckID] = i
			out = append(out, TruckExpense{TruckID: trip.TruckID, TruckNumber: trip.TruckNumber})
		}
		te := &out[i]
		te.TripCount++
		te.TotalKm += trip.TotalKm
		te.DieselQuantity += trip.DieselQuantity
		te.DieselAmount += trip.DieselAmount
		te.TollExpense += trip.TollExpense
		te.OtherExpense += trip.OtherExpense
		te.DriverAdvance += trip.DriverAdvance
	}
	for i := range out {
		te := &out[i]
		te.DieselAmount = shared.Round2(te.DieselAmount)
		te.TollExpense = shared.Round2(te.TollExpense)
		te.OtherExpense = shared.Round2(te.OtherExpense)
		te.DriverAdvance = shared.Round2(te.DriverAdvance)
		te.Total = shared.Round2(te.DieselAmount + te.TollExpense + te.OtherExpense + te.DriverAdvance)
		if te.TotalKm != 0 {
			te.CostPerKm = shared.Round2(te.Total / te.TotalKm)
		}
		if te.DieselQuantity != 0 {
			te.Mileage = shared.Round2(te.TotalKm / te.DieselQuantity)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].TruckID < out[j].TruckID
	})
	return out
}

// ExpenseShares expresses each category as a percentage of total spend,
// plus the average spend per trip. All zeros when nothing was spent.
type ExpenseShares struct {
	DieselPct        float64 `json:"diesel_pct"`
	TollPct          float64 `json:"toll_pct"`
	OtherPct         float64 `json:"other_pct"`
	DriverAdvancePct float64 `json:"driver_advance_pct"`
	AvgPerTrip       float64 `json:"avg_per_trip"`
}

// Shares derives the category percentages from a P/L summary.
func Shares(s PLSummary) ExpenseShares {
	var out ExpenseShares
	if s.Expenses != 0 {
		out.DieselPct = shared.Round2(s.Breakdown.Diesel / s.Expenses * 100)
		out.TollPct = shared.Round2(s.Breakdown.Toll / s.Expenses * 100)
		out.OtherPct = shared.Round2(s.Breakdown.Other / s.Expenses * 100)
		out.DriverAdvancePct = shared.Round2(s.Breakdown.DriverAdvance / s.Expenses * 100)
	}
	if s.TripCount != 0 {
		out.AvgPerTrip = shared.Round2(s.Expenses / float64(s.TripCount))
	}
	return out
}

// MonthExpense is one calendar month's P/L slice, with the trend
// against the preceding month.
type MonthExpense struct {
	Year        int     `json:"year"`
	Month       int     `json:"month"`
	TripCount   int     `json:"trip_count"`
	Income      float64 `json:"income"`
	Expenses    float64 `json:"expenses"`
	GrossProfit float64 `json:"gross_profit"`
	Trend       string  `json:"trend"`
}

// ExpensesByMonth slices the window into calendar months, oldest first.
// Empty months inside the window are emitted with zero figures so trend
// lines have no gaps.
func ExpensesByMonth(trips []fleet.Trip, r DateRange) []MonthExpense {
	var out []MonthExpense
	cursor := time.Date(r.From.Year(), r.From.Month(), 1, 0, 0, 0, 0, r.From.Location())
	for !cursor.After(r.To) {
		monthEnd := time.Date(cursor.Year(), cursor.Month()+1, 0, 0, 0, 0, 0, cursor.Location())
		slice := DateRange{From: maxDate(cursor, r.From), To: minDate(monthEnd, r.To)}
		summary := ProfitLoss(trips, slice)
		out = append(out, MonthExpense{
			Year:        cursor.Year(),
			Month:       int(cursor.Month()),
			TripCount:   summary.TripCount,
			Income:      summary.Income,
			Expenses:    summary.Expenses,
			GrossProfit: summary.GrossProfit,
		})
		cursor = cursor.AddDate(0, 1, 0)
	}
	for i := range out {
		if i == 0 {
			out[i].Trend = "stable"
			continue
		}
		out[i].Trend = Trend(out[i].Expenses, out[i-1].Expenses)
	}
	return out
}

func maxDate(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minDate(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
