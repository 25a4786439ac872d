package billing

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// Period is a half-month billing window. Two periods cover each
// calendar month: days 1-15 and 16-lastDay. Journeys belong to exactly
// one period, by creation date, inclusive on both ends.
type Period struct {
	Start              time.Time `json:"start"`
	End                time.Time `json:"end"`
	Label              string    `json:"label"`
	GenerationDate     time.Time `json:"generation_date"`
	PaymentWindowStart time.Time `json:"payment_window_start"`
	PaymentWindowEnd   time.Time `json:"payment_window_end"`
}

// ErrInvalidPeriod indicates a window whose start is after its end.
// This is a programming error and surfaces at construction.
var ErrInvalidPeriod = errors.New("billing: period start after end")

// NewPeriod builds a custom period, failing loudly on inverted bounds.
func NewPeriod(start, end time.Time, label string) (Period, error) {
	if start.After(end) {
		return Period{}, ErrInvalidPeriod
	}
	return Period{Start: start, End: end, Label: label, GenerationDate: end}, nil
}

// PeriodsForMonth derives the two billing periods of the reference
// date's month. Pure function of year and month.
//
// First half: 1st-15th, bill generated on the 15th, payment window
// 20th-25th. Second half: 16th-lastDay, bill generated on the last
// day, payment window 1st-5th of the next month.
func PeriodsForMonth(reference time.Time) [2]Period {
	year, month := reference.Year(), reference.Month()
	loc := reference.Location()

	lastDay := time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()

	first := Period{
		Start:              time.Date(year, month, 1, 0, 0, 0, 0, loc),
		End:                time.Date(year, month, 15, 0, 0, 0, 0, loc),
		Label:              fmt.Sprintf("1st - 15th %s %d", month.String()[:3], year),
		GenerationDate:     time.Date(year, month, 15, 0, 0, 0, 0, loc),
		PaymentWindowStart: time.Date(year, month, 20, 0, 0, 0, 0, loc),
		PaymentWindowEnd:   time.Date(year, month, 25, 0, 0, 0, 0, loc),
	}
	second := Period{
		Start:              time.Date(year, month, 16, 0, 0, 0, 0, loc),
		End:                time.Date(year, month, lastDay, 0, 0, 0, 0, loc),
		Label:              fmt.Sprintf("16th - %d%s %s %d", lastDay, ordinalSuffix(lastDay), month.String()[:3], year),
		GenerationDate:     time.Date(year, month, lastDay, 0, 0, 0, 0, loc),
		PaymentWindowStart: time.Date(year, month+1, 1, 0, 0, 0, 0, loc),
		PaymentWindowEnd:   time.Date(year, month+1, 5, 0, 0, 0, 0, loc),
	}
	return [2]Period{first, second}
}

// AvailablePeriods enumerates the periods of the current month plus
// lookbackMonths prior months, most recent first. Idempotent for a
// fixed today.
func AvailablePeriods(today time.Time, lookbackMonths int) []Period {
	periods := make([]Period, 0, 2*(lookbackMonths+1))
	for i := 0; i <= lookbackMonths; i++ {
		ref := time.Date(today.Year(), today.Month()-time.Month(i), 1, 0, 0, 0, 0, today.Location())
		pair := PeriodsForMonth(ref)
		periods = append(periods, pair[0], pair[1])
	}
	sort.Slice(periods, func(i, j int) bool {
		return periods[i].End.After(periods[j].End)
	})
	return periods
}

// Contains reports whether a timestamp's calendar date falls inside the
// period, inclusive on both ends.
func (p Period) Contains(t time.Time) bool {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, p.Start.Location())
	return !day.Before(p.Start) && !day.After(p.End)
}

// Key identifies the period for sequence scoping and caching:
// YYYYMM-H1 for the first half, YYYYMM-H2 for the second.
func (p Period) Key() string {
	half := "H1"
	if p.Start.Day() >= 16 {
		half = "H2"
	}
	return fmt.Sprintf("%04d%02d-%s", p.Start.Year(), int(p.Start.Month()), half)
}

// FindPeriod resolves a period key against the lookback window.
func FindPeriod(key string, today time.Time, lookbackMonths int) (Period, bool) {
	for _, p := range AvailablePeriods(today, lookbackMonths) {
		if p.Key() == key {
			return p, true
		}
	}
	return Period{}, false
}

func ordinalSuffix(day int) string {
	if day > 3 && day < 21 {
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}
