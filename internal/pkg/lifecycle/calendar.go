package lifecycle

import (
	"errors"
	"fmt"
	"time"

	"github.com/Beki78/fetan-pay/app/models"
)

// ErrUnknownBillingCycle is returned for cycles outside DAILY/WEEKLY/MONTHLY/YEARLY.
var ErrUnknownBillingCycle = errors.New("unknown billing cycle")

// AddCalendarMonths moves t forward n calendar months, clamping the day to the
// last day of the target month: Jan 31 + 1 month is Feb 29 in a leap year and
// Feb 28 otherwise. Clock time and location are kept.
func AddCalendarMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	hh, mm, ss := t.Clock()
	loc := t.Location()

	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, loc)
	if last := daysIn(first.Year(), first.Month(), loc); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, hh, mm, ss, t.Nanosecond(), loc)
}

// AddCalendarYears is AddCalendarMonths for whole years, so Feb 29 clamps to Feb 28.
func AddCalendarYears(t time.Time, n int) time.Time {
	return AddCalendarMonths(t, 12*n)
}

// AdvanceCycle moves t forward one unit of cycle.
func AdvanceCycle(t time.Time, cycle models.BillingCycle) (time.Time, error) {
	switch normalizeCycle(cycle) {
	case models.BillingCycleDaily:
		return t.AddDate(0, 0, 1), nil
	case models.BillingCycleWeekly:
		return t.AddDate(0, 0, 7), nil
	case models.BillingCycleMonthly:
		return AddCalendarMonths(t, 1), nil
	case models.BillingCycleYearly:
		return AddCalendarYears(t, 1), nil
	default:
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnknownBillingCycle, cycle)
	}
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}
