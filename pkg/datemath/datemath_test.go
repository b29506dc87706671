package datemath_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kislikjeka/duetrack/pkg/datemath"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAddMonths(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		n    int
		want time.Time
	}{
		{"simple shift", date(2024, time.March, 15), 1, date(2024, time.April, 15)},
		{"year rollover", date(2024, time.November, 10), 3, date(2025, time.February, 10)},
		{"clamp jan 31 to feb 29 leap", date(2024, time.January, 31), 1, date(2024, time.February, 29)},
		{"clamp jan 31 to feb 28 non-leap", date(2025, time.January, 31), 1, date(2025, time.February, 28)},
		{"clamp to 30-day month", date(2025, time.March, 31), 1, date(2025, time.April, 30)},
		{"negative shift", date(2025, time.January, 15), -2, date(2024, time.November, 15)},
		{"negative shift with clamp", date(2025, time.March, 31), -1, date(2025, time.February, 28)},
		{"zero shift", date(2025, time.June, 1), 0, date(2025, time.June, 1)},
		{"many months", date(2024, time.January, 31), 13, date(2025, time.February, 28)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, datemath.AddMonths(tt.in, tt.n))
		})
	}
}

func TestAddYears(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		n    int
		want time.Time
	}{
		{"simple shift", date(2024, time.May, 20), 1, date(2025, time.May, 20)},
		{"feb 29 clamps in non-leap year", date(2024, time.February, 29), 1, date(2025, time.February, 28)},
		{"feb 29 kept across leap years", date(2024, time.February, 29), 4, date(2028, time.February, 29)},
		{"negative shift", date(2025, time.July, 4), -5, date(2020, time.July, 4)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, datemath.AddYears(tt.in, tt.n))
		})
	}
}

func TestAddDays(t *testing.T) {
	assert.Equal(t, date(2025, time.March, 1), datemath.AddDays(date(2025, time.February, 28), 1))
	assert.Equal(t, date(2024, time.February, 29), datemath.AddDays(date(2024, time.February, 28), 1))
	assert.Equal(t, date(2025, time.January, 1), datemath.AddDays(date(2024, time.December, 31), 1))
	assert.Equal(t, date(2025, time.January, 15), datemath.AddDays(date(2025, time.January, 1), 14))
}

func TestNextWeekday(t *testing.T) {
	// 2025-09-03 is a Wednesday.
	wed := date(2025, time.September, 3)

	t.Run("target later in the week", func(t *testing.T) {
		got := datemath.NextWeekday(wed, time.Friday)
		assert.Equal(t, date(2025, time.September, 5), got)
	})

	t.Run("target earlier in the week wraps", func(t *testing.T) {
		got := datemath.NextWeekday(wed, time.Monday)
		assert.Equal(t, date(2025, time.September, 8), got)
	})

	t.Run("same weekday is never the same day", func(t *testing.T) {
		got := datemath.NextWeekday(wed, time.Wednesday)
		assert.Equal(t, date(2025, time.September, 10), got)
	})
}

func TestDayStripsTimeAndZone(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	in := time.Date(2025, time.April, 10, 23, 45, 12, 0, loc)

	got := datemath.Day(in)
	assert.Equal(t, date(2025, time.April, 10), got)
	assert.Equal(t, time.UTC, got.Location())
}

func TestLastDayOfMonth(t *testing.T) {
	assert.Equal(t, 29, datemath.LastDayOfMonth(2024, time.February))
	assert.Equal(t, 28, datemath.LastDayOfMonth(2025, time.February))
	assert.Equal(t, 31, datemath.LastDayOfMonth(2025, time.December))
	assert.Equal(t, 30, datemath.LastDayOfMonth(2025, time.September))
}

func TestClampToMonth(t *testing.T) {
	assert.Equal(t, date(2025, time.February, 28), datemath.ClampToMonth(2025, time.February, 31))
	assert.Equal(t, date(2025, time.October, 15), datemath.ClampToMonth(2025, time.October, 15))
}
