package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestPeriodsForMonth(t *testing.T) {
	t.Run("january", func(t *testing.T) {
		pair := PeriodsForMonth(date(2025, time.January, 10))

		require.Equal(t, date(2025, time.January, 1), pair[0].Start)
		require.Equal(t, date(2025, time.January, 15), pair[0].End)
		require.Equal(t, "1st - 15th Jan 2025", pair[0].Label)
		require.Equal(t, date(2025, time.January, 15), pair[0].GenerationDate)
		require.Equal(t, date(2025, time.January, 20), pair[0].PaymentWindowStart)
		require.Equal(t, date(2025, time.January, 25), pair[0].PaymentWindowEnd)

		require.Equal(t, date(2025, time.January, 16), pair[1].Start)
		require.Equal(t, date(2025, time.January, 31), pair[1].End)
		require.Equal(t, "16th - 31st Jan 2025", pair[1].Label)
		require.Equal(t, date(2025, time.February, 1), pair[1].PaymentWindowStart)
		require.Equal(t, date(2025, time.February, 5), pair[1].PaymentWindowEnd)
	})

	t.Run("february non leap", func(t *testing.T) {
		pair := PeriodsForMonth(date(2025, time.February, 1))
		require.Equal(t, date(2025, time.February, 28), pair[1].End)
		require.Equal(t, "16th - 28th Feb 2025", pair[1].Label)
	})

	t.Run("february leap", func(t *testing.T) {
		pair := PeriodsForMonth(date(2024, time.February, 20))
		require.Equal(t, date(2024, time.February, 29), pair[1].End)
		require.Equal(t, "16th - 29th Feb 2024", pair[1].Label)
	})

	t.Run("thirty day month", func(t *testing.T) {
		pair := PeriodsForMonth(date(2025, time.April, 2))
		require.Equal(t, date(2025, time.April, 30), pair[1].End)
		require.Equal(t, "16th - 30th Apr 2025", pair[1].Label)
	})

	t.Run("december payment window rolls into january", func(t *testing.T) {
		pair := PeriodsForMonth(date(2025, time.December, 31))
		require.Equal(t, date(2026, time.January, 1), pair[1].PaymentWindowStart)
		require.Equal(t, date(2026, time.January, 5), pair[1].PaymentWindowEnd)
	})
}

func TestAvailablePeriods(t *testing.T) {
	today := date(2025, time.March, 10)

	periods := AvailablePeriods(today, 3)
	require.Len(t, periods, 8)

	// Most recent first.
	require.Equal(t, date(2025, time.March, 16), periods[0].Start)
	require.Equal(t, date(2025, time.March, 1), periods[1].Start)
	require.Equal(t, date(2024, time.December, 1), periods[7].Start)
	for i := 1; i < len(periods); i++ {
		require.True(t, periods[i].End.Before(periods[i-1].End))
	}

	// Same today, same answer.
	require.Equal(t, periods, AvailablePeriods(today, 3))

	// January lookback crosses the year boundary.
	janPeriods := AvailablePeriods(date(2025, time.January, 5), 2)
	require.Equal(t, date(2024, time.November, 1), janPeriods[len(janPeriods)-1].Start)
}

func TestPeriodContains(t *testing.T) {
	pair := PeriodsForMonth(date(2025, time.January, 1))
	first, second := pair[0], pair[1]

	require.True(t, first.Contains(date(2025, time.January, 1)))
	require.True(t, first.Contains(date(2025, time.January, 15)))
	require.False(t, first.Contains(date(2025, time.January, 16)))
	require.False(t, first.Contains(date(2024, time.December, 31)))

	// Time of day does not push a journey out of its period.
	require.True(t, first.Contains(time.Date(2025, time.January, 15, 23, 45, 0, 0, time.UTC)))

	require.True(t, second.Contains(date(2025, time.January, 16)))
	require.True(t, second.Contains(date(2025, time.January, 31)))
	require.False(t, second.Contains(date(2025, time.February, 1)))

	// Every day of the month belongs to exactly one period.
	for day := 1; day <= 31; day++ {
		d := date(2025, time.January, day)
		require.True(t, first.Contains(d) != second.Contains(d), "day %d", day)
	}
}

func TestPeriodKey(t *testing.T) {
	pair := PeriodsForMonth(date(2025, time.January, 1))
	require.Equal(t, "202501-H1", pair[0].Key())
	require.Equal(t, "202501-H2", pair[1].Key())

	found, ok := FindPeriod("202501-H2", date(2025, time.March, 1), 3)
	require.True(t, ok)
	require.Equal(t, pair[1].Start, found.Start)

	_, ok = FindPeriod("202301-H1", date(2025, time.March, 1), 3)
	require.False(t, ok)
}

func TestNewPeriodRejectsInvertedBounds(t *testing.T) {
	_, err := NewPeriod(date(2025, time.January, 15), date(2025, time.January, 1), "bad")
	require.ErrorIs(t, err, ErrInvalidPeriod)
}
