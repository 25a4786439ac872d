package reports

import (
	"errors"
	"time"
)

// Timeframe selects a reporting window relative to today.
type Timeframe string

const (
	TimeframeThisMonth   Timeframe = "this_month"
	TimeframeLastMonth   Timeframe = "last_month"
	TimeframeThisQuarter Timeframe = "this_quarter"
	TimeframeThisYear    Timeframe = "this_year"
	TimeframeCustom      Timeframe = "custom"
)

var (
	// ErrUnknownTimeframe rejects timeframe values outside the enum.
	ErrUnknownTimeframe = errors.New("reports: unknown timeframe")
	// ErrCustomRange rejects custom timeframes without a valid from/to.
	ErrCustomRange = errors.New("reports: custom timeframe needs from <= to")
)

// DateRange is an inclusive calendar-date window.
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Contains reports whether a timestamp's calendar date falls in range.
func (r DateRange) Contains(t time.Time) bool {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, r.From.Location())
	return !day.Before(r.From) && !day.After(r.To)
}

// Days is the window length in calendar days.
func (r DateRange) Days() int {
	return int(r.To.Sub(r.From).Hours()/24) + 1
}

// Resolve turns a timeframe into a concrete window. from/to are only
// consulted for the custom timeframe.
func Resolve(tf Timeframe, now, from, to time.Time) (DateRange, error) {
	year, month, _ := now.Date()
	loc := now.Location()

	switch tf {
	case TimeframeThisMonth:
		return DateRange{
			From: time.Date(year, month, 1, 0, 0, 0, 0, loc),
			To:   time.Date(year, month+1, 0, 0, 0, 0, 0, loc),
		}, nil
	case TimeframeLastMonth:
		return DateRange{
			From: time.Date(year, month-1, 1, 0, 0, 0, 0, loc),
			To:   time.Date(year, month, 0, 0, 0, 0, 0, loc),
		}, nil
	case TimeframeThisQuarter:
		start := time.Month((int(month)-1)/3*3 + 1)
		return DateRange{
			From: time.Date(year, start, 1, 0, 0, 0, 0, loc),
			To:   time.Date(year, start+3, 0, 0, 0, 0, 0, loc),
		}, nil
	case TimeframeThisYear:
		return DateRange{
			From: time.Date(year, time.January, 1, 0, 0, 0, 0, loc),
			To:   time.Date(year, time.December, 31, 0, 0, 0, 0, loc),
		}, nil
	case TimeframeCustom:
		if from.IsZero() || to.IsZero() || from.After(to) {
			return DateRange{}, ErrCustomRange
		}
		return DateRange{
			From: time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location()),
			To:   time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, to.Location()),
		}, nil
	default:
		return DateRange{}, ErrUnknownTimeframe
	}
}

// Previous computes the equivalent-length window immediately before the
// current one: month to the previous month, quarter to the previous
// quarter, year to the previous year, and custom to the same number of
// days ending the day before From.
func Previous(r DateRange, tf Timeframe) DateRange {
	loc := r.From.Location()
	switch tf {
	case TimeframeThisMonth, TimeframeLastMonth:
		return DateRange{
			From: time.Date(r.From.Year(), r.From.Month()-1, 1, 0, 0, 0, 0, loc),
			To:   time.Date(r.From.Year(), r.From.Month(), 0, 0, 0, 0, 0, loc),
		}
	case TimeframeThisQuarter:
		return DateRange{
			From: time.Date(r.From.Year(), r.From.Month()-3, 1, 0, 0, 0, 0, loc),
			To:   time.Date(r.From.Year(), r.From.Month(), 0, 0, 0, 0, 0, loc),
		}
	case TimeframeThisYear:
		return DateRange{
			From: time.Date(r.From.Year()-1, time.January, 1, 0, 0, 0, 0, loc),
			To:   time.Date(r.From.Year()-1, time.December, 31, 0, 0, 0, 0, loc),
		}
	default:
		days := r.Days()
		to := r.From.AddDate(0, 0, -1)
		return DateRange{From: to.AddDate(0, 0, -(days - 1)), To: to}
	}
}
