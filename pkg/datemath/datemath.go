// Package datemath provides calendar arithmetic for due-date scheduling.
// All functions operate at day granularity; time-of-day and location are
// normalized to midnight UTC so that date comparisons never depend on the
// caller's timezone.
package datemath

import "time"

// Day normalizes t to midnight UTC, keeping only the calendar date.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// AddDays returns the date n calendar days after t.
func AddDays(t time.Time, n int) time.Time {
	return Day(t).AddDate(0, 0, n)
}

// AddMonths shifts t by n months, rolling the year over as needed and
// clamping the day-of-month to the last valid day of the target month.
// Jan 31 + 1 month is Feb 28 (or Feb 29 in a leap year), not Mar 3.
func AddMonths(t time.Time, n int) time.Time {
	t = Day(t)

	// Compute the target year/month without Go's AddDate overflow behavior.
	month := int(t.Month()) - 1 + n
	year := t.Year() + month/12
	month = month % 12
	if month < 0 {
		month += 12
		year--
	}

	targetMonth := time.Month(month + 1)
	day := t.Day()
	if last := LastDayOfMonth(year, targetMonth); day > last {
		day = last
	}

	return time.Date(year, targetMonth, day, 0, 0, 0, 0, time.UTC)
}

// AddYears shifts t by n years, keeping month and day. Feb 29 clamps to
// Feb 28 when the target year is not a leap year.
func AddYears(t time.Time, n int) time.Time {
	t = Day(t)

	year := t.Year() + n
	day := t.Day()
	if last := LastDayOfMonth(year, t.Month()); day > last {
		day = last
	}

	return time.Date(year, t.Month(), day, 0, 0, 0, 0, time.UTC)
}

// NextWeekday returns the next date strictly after t whose weekday equals
// target. When t already falls on target, the result is 7 days later.
func NextWeekday(t time.Time, target time.Weekday) time.Time {
	t = Day(t)

	delta := (int(target) - int(t.Weekday()) + 7) % 7
	if delta == 0 {
		delta = 7
	}
	return t.AddDate(0, 0, delta)
}

// LastDayOfMonth returns the number of days in the given month.
func LastDayOfMonth(year int, month time.Month) int {
	// Day zero of the next month is the last day of this month.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ClampToMonth returns the date in (year, month) at the requested day,
// clamped to the month's last day when day exceeds it.
func ClampToMonth(year int, month time.Month, day int) time.Time {
	if last := LastDayOfMonth(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether a and b fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	return Day(a).Equal(Day(b))
}
