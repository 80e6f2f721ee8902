package recurring

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"transportplane/pkg/errutil"
)

func intPtr(v int) *int { return &v }

func requireValidationFailed(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	var be errutil.BaseError
	require.True(t, errors.As(err, &be))
	require.Equal(t, errutil.StatusValidationFailed, be.Status())
}

func TestRuleValidate(t *testing.T) {
	require.NoError(t, Rule{Frequency: FrequencyDaily}.Validate())
	require.NoError(t, Rule{Frequency: FrequencyWeekly, DayOfWeek: intPtr(1)}.Validate())
	require.NoError(t, Rule{Frequency: FrequencyBiweekly, DayOfWeek: intPtr(5)}.Validate())
	require.NoError(t, Rule{Frequency: FrequencyMonthly, DayOfMonth: intPtr(31)}.Validate())

	requireValidationFailed(t, Rule{Frequency: FrequencyWeekly}.Validate())
	requireValidationFailed(t, Rule{Frequency: FrequencyBiweekly}.Validate())
	requireValidationFailed(t, Rule{Frequency: FrequencyMonthly}.Validate())
	requireValidationFailed(t, Rule{Frequency: FrequencyDaily, DayOfWeek: intPtr(1)}.Validate())
	requireValidationFailed(t, Rule{Frequency: FrequencyWeekly, DayOfWeek: intPtr(7)}.Validate())
	requireValidationFailed(t, Rule{Frequency: FrequencyWeekly, DayOfWeek: intPtr(1), DayOfMonth: intPtr(10)}.Validate())
	requireValidationFailed(t, Rule{Frequency: FrequencyMonthly, DayOfMonth: intPtr(0)}.Validate())
	requireValidationFailed(t, Rule{Frequency: FrequencyMonthly, DayOfMonth: intPtr(32)}.Validate())
	requireValidationFailed(t, Rule{Frequency: Frequency("HOURLY")}.Validate())
}

func TestNextDaily(t *testing.T) {
	rule := Rule{Frequency: FrequencyDaily}
	ref := time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)
	require.Equal(t, time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC), rule.Next(ref))
}

func TestNextWeeklyLandsOnAnchor(t *testing.T) {
	monday := intPtr(1)
	rule := Rule{Frequency: FrequencyWeekly, DayOfWeek: monday}

	// Reference already on the anchor weekday: exactly one week forward.
	ref := time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)
	require.Equal(t, time.Monday, ref.Weekday())
	require.Equal(t, time.Date(2024, time.March, 11, 0, 0, 0, 0, time.UTC), rule.Next(ref))

	// Reference off the anchor: forward-only correction onto the next Monday.
	wednesday := time.Date(2024, time.March, 6, 0, 0, 0, 0, time.UTC)
	next := rule.Next(wednesday)
	require.Equal(t, time.Monday, next.Weekday())
	require.True(t, next.After(wednesday.AddDate(0, 0, 7).Add(-time.Nanosecond)))
	require.Equal(t, time.Date(2024, time.March, 18, 0, 0, 0, 0, time.UTC), next)
}

func TestNextWeeklyMonotonic(t *testing.T) {
	for dow := 0; dow <= 6; dow++ {
		rule := Rule{Frequency: FrequencyWeekly, DayOfWeek: intPtr(dow)}
		ref := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
		for i := 0; i < 30; i++ {
			next := rule.Next(ref)
			require.True(t, next.After(ref))
			require.Equal(t, time.Weekday(dow), next.Weekday())
			ref = next
		}
	}
}

func TestNextBiweekly(t *testing.T) {
	friday := intPtr(5)
	rule := Rule{Frequency: FrequencyBiweekly, DayOfWeek: friday}

	ref := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	require.Equal(t, time.Friday, ref.Weekday())

	next := rule.Next(ref)
	require.Equal(t, time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC), next)
	require.Equal(t, time.Friday, next.Weekday())
}

func TestNextMonthlyClampsFebruary(t *testing.T) {
	rule := Rule{Frequency: FrequencyMonthly, DayOfMonth: intPtr(31)}

	// Leap year: Jan 31 -> Feb 29.
	jan := time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC)
	require.Equal(t, time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC), rule.Next(jan))

	// Non-leap year: Jan 31 -> Feb 28.
	jan23 := time.Date(2023, time.January, 31, 0, 0, 0, 0, time.UTC)
	require.Equal(t, time.Date(2023, time.February, 28, 0, 0, 0, 0, time.UTC), rule.Next(jan23))

	// April reference: May has 31 days, no clamping needed.
	apr := time.Date(2024, time.April, 30, 0, 0, 0, 0, time.UTC)
	require.Equal(t, time.Date(2024, time.May, 31, 0, 0, 0, 0, time.UTC), rule.Next(apr))
}

func TestNextMonthlyRecoversAfterShortMonth(t *testing.T) {
	rule := Rule{Frequency: FrequencyMonthly, DayOfMonth: intPtr(31)}

	ref := time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC)
	feb := rule.Next(ref)
	mar := rule.Next(feb)
	apr := rule.Next(mar)

	require.Equal(t, 29, feb.Day())
	require.Equal(t, 31, mar.Day())
	require.Equal(t, 30, apr.Day())
	require.Equal(t, time.April, apr.Month())
}

func TestNextAfterSeeksPastNow(t *testing.T) {
	rule := Rule{Frequency: FrequencyDaily}
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)

	next := rule.NextAfter(start, now)
	require.Equal(t, time.Date(2024, time.March, 16, 0, 0, 0, 0, time.UTC), next)
}

func TestNextAfterKeepsFutureStart(t *testing.T) {
	rule := Rule{Frequency: FrequencyWeekly, DayOfWeek: intPtr(1)}
	start := time.Date(2030, time.January, 7, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)

	// The start date is an inclusive anchor; a future start is kept as-is.
	require.True(t, start.Equal(rule.NextAfter(start, now)))
}
