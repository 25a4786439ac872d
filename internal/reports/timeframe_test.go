package reports

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	now := date(2025, time.May, 14)

	t.Run("this month", func(t *testing.T) {
		r, err := Resolve(TimeframeThisMonth, now, time.Time{}, time.Time{})
		require.NoError(t, err)
		require.Equal(t, date(2025, time.May, 1), r.From)
		require.Equal(t, date(2025, time.May, 31), r.To)
	})

	t.Run("last month", func(t *testing.T) {
		r, err := Resolve(TimeframeLastMonth, now, time.Time{}, time.Time{})
		require.NoError(t, err)
		require.Equal(t, date(2025, time.April, 1), r.From)
		require.Equal(t, date(2025, time.April, 30), r.To)
	})

	t.Run("this quarter", func(t *testing.T) {
		r, err := Resolve(TimeframeThisQuarter, now, time.Time{}, time.Time{})
		require.NoError(t, err)
		require.Equal(t, date(2025, time.April, 1), r.From)
		require.Equal(t, date(2025, time.June, 30), r.To)
	})

	t.Run("this year", func(t *testing.T) {
		r, err := Resolve(TimeframeThisYear, now, time.Time{}, time.Time{})
		require.NoError(t, err)
		require.Equal(t, date(2025, time.January, 1), r.From)
		require.Equal(t, date(2025, time.December, 31), r.To)
	})

	t.Run("custom", func(t *testing.T) {
		r, err := Resolve(TimeframeCustom, now, date(2025, time.March, 5), date(2025, time.March, 14))
		require.NoError(t, err)
		require.Equal(t, 10, r.Days())

		_, err = Resolve(TimeframeCustom, now, date(2025, time.March, 14), date(2025, time.March, 5))
		require.ErrorIs(t, err, ErrCustomRange)

		_, err = Resolve(TimeframeCustom, now, time.Time{}, time.Time{})
		require.ErrorIs(t, err, ErrCustomRange)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := Resolve("fortnight", now, time.Time{}, time.Time{})
		require.ErrorIs(t, err, ErrUnknownTimeframe)
	})
}

func TestPrevious(t *testing.T) {
	t.Run("month", func(t *testing.T) {
		r := DateRange{From: date(2025, time.March, 1), To: date(2025, time.March, 31)}
		prev := Previous(r, TimeframeThisMonth)
		require.Equal(t, date(2025, time.February, 1), prev.From)
		require.Equal(t, date(2025, time.February, 28), prev.To)
	})

	t.Run("january rolls to december", func(t *testing.T) {
		r := DateRange{From: date(2025, time.January, 1), To: date(2025, time.January, 31)}
		prev := Previous(r, TimeframeThisMonth)
		require.Equal(t, date(2024, time.December, 1), prev.From)
		require.Equal(t, date(2024, time.December, 31), prev.To)
	})

	t.Run("quarter", func(t *testing.T) {
		r := DateRange{From: date(2025, time.April, 1), To: date(2025, time.June, 30)}
		prev := Previous(r, TimeframeThisQuarter)
		require.Equal(t, date(2025, time.January, 1), prev.From)
		require.Equal(t, date(2025, time.March, 31), prev.To)
	})

	t.Run("year", func(t *testing.T) {
		r := DateRange{From: date(2025, time.January, 1), To: date(2025, time.December, 31)}
		prev := Previous(r, TimeframeThisYear)
		require.Equal(t, date(2024, time.January, 1), prev.From)
		require.Equal(t, date(2024, time.December, 31), prev.To)
	})

	t.Run("custom uses same length immediately preceding", func(t *testing.T) {
		r := DateRange{From: date(2025, time.March, 11), To: date(2025, time.March, 20)}
		prev := Previous(r, TimeframeCustom)
		require.Equal(t, date(2025, time.March, 1), prev.From)
		require.Equal(t, date(2025, time.March, 10), prev.To)
		require.Equal(t, r.Days(), prev.Days())
	})
}

func TestDateRangeContains(t *testing.T) {
	r := DateRange{From: date(2025, time.March, 1), To: date(2025, time.March, 31)}
	require.True(t, r.Contains(date(2025, time.March, 1)))
	require.True(t, r.Contains(date(2025, time.March, 31)))
	require.True(t, r.Contains(time.Date(2025, time.March, 31, 18, 30, 0, 0, time.UTC)))
	require.False(t, r.Contains(date(2025, time.April, 1)))
	require.False(t, r.Contains(date(2025, time.February, 28)))
}
