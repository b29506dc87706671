package card

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestStatementDueDate(t *testing.T) {
	tests := []struct {
		name       string
		payment    time.Time
		closingDay int
		dueDay     int
		want       time.Time
	}{
		{
			name:       "payment after closing rolls to next cycle",
			payment:    date(2025, time.September, 29),
			closingDay: 10,
			dueDay:     15,
			want:       date(2025, time.October, 15),
		},
		{
			name:       "payment before closing stays in current cycle",
			payment:    date(2025, time.September, 8),
			closingDay: 10,
			dueDay:     15,
			want:       date(2025, time.September, 15),
		},
		{
			name:       "payment on closing day stays in current cycle",
			payment:    date(2025, time.September, 10),
			closingDay: 10,
			dueDay:     15,
			want:       date(2025, time.September, 15),
		},
		{
			name:       "due day before closing day pays next month",
			payment:    date(2025, time.September, 10),
			closingDay: 20,
			dueDay:     5,
			want:       date(2025, time.October, 5),
		},
		{
			name:       "both shifts compound across year boundary",
			payment:    date(2025, time.December, 28),
			closingDay: 20,
			dueDay:     5,
			want:       date(2026, time.February, 5),
		},
		{
			name:       "due day clamped to short month",
			payment:    date(2025, time.April, 2),
			closingDay: 5,
			dueDay:     31,
			want:       date(2025, time.April, 30),
		},
		{
			name:       "due day clamped in february",
			payment:    date(2025, time.January, 28),
			closingDay: 25,
			dueDay:     30,
			want:       date(2025, time.February, 28),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StatementDueDate(tt.payment, tt.closingDay, tt.dueDay)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStatementDueDate_IgnoresTimeOfDay(t *testing.T) {
	payment := time.Date(2025, time.September, 29, 21, 17, 0, 0, time.UTC)
	got := StatementDueDate(payment, 10, 15)
	assert.Equal(t, date(2025, time.October, 15), got)
}

func TestNextStatementDueDate(t *testing.T) {
	c := &Card{ClosingDay: 10, DueDay: 15}
	got := c.NextStatementDueDate(date(2025, time.September, 29))
	assert.Equal(t, date(2025, time.October, 15), got)
}

func TestCardValidate(t *testing.T) {
	valid := func() *Card {
		return &Card{
			ID:         uuid.New(),
			UserID:     uuid.New(),
			Name:       "Visa",
			ClosingDay: 10,
			DueDay:     15,
		}
	}

	assert.NoError(t, valid().Validate())

	tests := []struct {
		name    string
		mutate  func(*Card)
		wantErr error
	}{
		{"nil user", func(c *Card) { c.UserID = uuid.Nil }, ErrInvalidUserID},
		{"empty name", func(c *Card) { c.Name = "" }, ErrEmptyName},
		{"closing day zero", func(c *Card) { c.ClosingDay = 0 }, ErrInvalidClosingDay},
		{"closing day too large", func(c *Card) { c.ClosingDay = 32 }, ErrInvalidClosingDay},
		{"due day zero", func(c *Card) { c.DueDay = 0 }, ErrInvalidDueDay},
		{"due day too large", func(c *Card) { c.DueDay = 32 }, ErrInvalidDueDay},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			assert.ErrorIs(t, c.Validate(), tt.wantErr)
		})
	}
}
