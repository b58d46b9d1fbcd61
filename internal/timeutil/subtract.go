package timeutil

import (
	"time"
)

// SubtractUnits subtracts n of the named calendar unit from t. Units
// are minute, hour, day, week, month, and year. Month and year
// subtraction is calendar-aware with the day-of-month clamped to the
// target month's length, so one year before 2024-02-29 is 2023-02-28
// rather than a normalized March date. Reports false for an unknown
// unit.
func SubtractUnits(t time.Time, n int, unit string) (time.Time, bool) {
	switch unit {
	case "minute":
		return t.Add(-time.Duration(n) * time.Minute), true
	case "hour":
		return t.Add(-time.Duration(n) * time.Hour), true
	case "day":
		return t.AddDate(0, 0, -n), true
	case "week":
		return t.AddDate(0, 0, -n*7), true
	case "month":
		return addMonthsClamped(t, -n), true
	case "year":
		return addMonthsClamped(t, -n*12), true
	default:
		return time.Time{}, false
	}
}

func addMonthsClamped(t time.Time, months int) time.Time {
	y, m, d := t.Date()

	mi := int(m) - 1 + months
	y += mi / 12
	mi %= 12
	if mi < 0 {
		mi += 12
		y--
	}

	month := time.Month(mi + 1)

	if max := daysInMonth(y, month); d > max {
		d = max
	}

	return time.Date(y, month, d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysInMonth(year int, month time.Month) int {
	// day 0 of the next month is the last day of this one
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
