package recurring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDaysInMonth(t *testing.T) {
	require.Equal(t, 31, daysInMonth(2024, time.January))
	require.Equal(t, 29, daysInMonth(2024, time.February))
	require.Equal(t, 28, daysInMonth(2023, time.February))
	require.Equal(t, 28, daysInMonth(1900, time.February))
	require.Equal(t, 29, daysInMonth(2000, time.February))
	require.Equal(t, 30, daysInMonth(2024, time.April))
	require.Equal(t, 31, daysInMonth(2024, time.December))
}

func TestClampDayOfMonth(t *testing.T) {
	feb := time.Date(2024, time.February, 1, 8, 30, 0, 0, time.UTC)

	clamped := clampDayOfMonth(feb, 31)
	require.Equal(t, time.Date(2024, time.February, 29, 8, 30, 0, 0, time.UTC), clamped)

	within := clampDayOfMonth(feb, 15)
	require.Equal(t, 15, within.Day())
	require.Equal(t, time.February, within.Month())
}

func TestClampDayOfMonthDeterministic(t *testing.T) {
	date := time.Date(2023, time.February, 10, 0, 0, 0, 0, time.UTC)
	first := clampDayOfMonth(date, 31)
	for i := 0; i < 10; i++ {
		require.True(t, first.Equal(clampDayOfMonth(date, 31)))
	}
	require.Equal(t, 28, first.Day())
}
