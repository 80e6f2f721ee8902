package recurring

import (
	"time"

	"transportplane/pkg/errutil"
)

type Frequency string

var (
	FrequencyDaily    Frequency = "DAILY"
	FrequencyWeekly   Frequency = "WEEKLY"
	FrequencyBiweekly Frequency = "BIWEEKLY"
	FrequencyMonthly  Frequency = "MONTHLY"
)

func (f Frequency) String() string {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly:
		return string(f)
	default:
		return ""
	}
}

// Rule is a template's cadence. DayOfWeek (0=Sunday..6) anchors WEEKLY and
// BIWEEKLY rules; DayOfMonth (1..31) anchors MONTHLY rules. Validate runs at
// template create and update time; Next assumes an already valid rule.
type Rule struct {
	Frequency  Frequency
	DayOfWeek  *int
	DayOfMonth *int
}

func (r Rule) Validate() error {
	switch r.Frequency {
	case FrequencyDaily:
		if r.DayOfWeek != nil || r.DayOfMonth != nil {
			return errutil.ValidationFailed("DAILY frequency takes no day anchor", nil)
		}
	case FrequencyWeekly, FrequencyBiweekly:
		if r.DayOfWeek == nil {
			return errutil.ValidationFailed("dayOfWeek is required for "+string(r.Frequency)+" frequency", nil)
		}
		if *r.DayOfWeek < 0 || *r.DayOfWeek > 6 {
			return errutil.ValidationFailed("dayOfWeek must be between 0 and 6", nil)
		}
		if r.DayOfMonth != nil {
			return errutil.ValidationFailed(string(r.Frequency)+" frequency takes no dayOfMonth", nil)
		}
	case FrequencyMonthly:
		if r.DayOfMonth == nil {
			return errutil.ValidationFailed("dayOfMonth is required for MONTHLY frequency", nil)
		}
		if *r.DayOfMonth < 1 || *r.DayOfMonth > 31 {
			return errutil.ValidationFailed("dayOfMonth must be between 1 and 31", nil)
		}
		if r.DayOfWeek != nil {
			return errutil.ValidationFailed("MONTHLY frequency takes no dayOfWeek", nil)
		}
	default:
		return errutil.ValidationFailed("frequency must be one of DAILY, WEEKLY, BIWEEKLY, MONTHLY", nil)
	}
	return nil
}

// Next computes the occurrence after ref. The base step is applied first
// (1d, 7d, 14d or one calendar month), then the anchor as a forward-only
// correction, so the result is never earlier than ref plus the base step.
func (r Rule) Next(ref time.Time) time.Time {
	switch r.Frequency {
	case FrequencyWeekly:
		return alignWeekday(ref.AddDate(0, 0, 7), r.DayOfWeek)
	case FrequencyBiweekly:
		return alignWeekday(ref.AddDate(0, 0, 14), r.DayOfWeek)
	case FrequencyMonthly:
		return r.nextMonth(ref)
	default:
		return ref.AddDate(0, 0, 1)
	}
}

// NextAfter returns the first occurrence at or after start that is strictly
// later than now. A future-dated start is returned unchanged: the start date
// is an inclusive anchor.
func (r Rule) NextAfter(start, now time.Time) time.Time {
	next := start
	for !next.After(now) {
		next = r.Next(next)
	}
	return next
}

func alignWeekday(base time.Time, dayOfWeek *int) time.Time {
	if dayOfWeek == nil {
		return base
	}
	offset := (*dayOfWeek - int(base.Weekday()) + 7) % 7
	return base.AddDate(0, 0, offset)
}

func (r Rule) nextMonth(ref time.Time) time.Time {
	// AddDate normalizes day overflow into the following month (Jan 31 + one
	// month = Mar 2/3), so the target month is constructed explicitly and the
	// day clamped inside it.
	first := time.Date(ref.Year(), ref.Month()+1, 1,
		ref.Hour(), ref.Minute(), ref.Second(), ref.Nanosecond(), ref.Location())

	desired := ref.Day()
	if r.DayOfMonth != nil {
		desired = *r.DayOfMonth
	}
	return clampDayOfMonth(first, desired)
}
