package transaction

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	today := date(2025, time.September, 15)

	tests := []struct {
		name    string
		isPaid  bool
		dueDate time.Time
		want    Status
	}{
		{"paid wins over overdue", true, date(2025, time.September, 1), StatusPaid},
		{"paid wins over upcoming", true, date(2025, time.October, 1), StatusPaid},
		{"due before today", false, date(2025, time.September, 14), StatusOverdue},
		{"due today", false, date(2025, time.September, 15), StatusDueToday},
		{"due after today", false, date(2025, time.September, 16), StatusUpcoming},
		{"long overdue", false, date(2024, time.January, 1), StatusOverdue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.isPaid, tt.dueDate, today))
		})
	}
}

// Comparison is day-granular: a due date later the same day is still due
// today, not upcoming.
func TestClassify_IgnoresTimeOfDay(t *testing.T) {
	today := time.Date(2025, time.September, 15, 8, 0, 0, 0, time.UTC)
	due := time.Date(2025, time.September, 15, 23, 59, 0, 0, time.UTC)

	assert.Equal(t, StatusDueToday, Classify(false, due, today))
}

func TestClassify_SameInputSameResult(t *testing.T) {
	// Status is derived, never stored; the same reference date must always
	// classify the same way while a different one may not.
	due := date(2025, time.September, 15)

	assert.Equal(t, StatusUpcoming, Classify(false, due, date(2025, time.September, 14)))
	assert.Equal(t, StatusDueToday, Classify(false, due, date(2025, time.September, 15)))
	assert.Equal(t, StatusOverdue, Classify(false, due, date(2025, time.September, 16)))
}

func TestClassifyTransaction(t *testing.T) {
	tx := &Transaction{IsPaid: false, DueDate: date(2025, time.September, 10)}
	assert.Equal(t, StatusOverdue, ClassifyTransaction(tx, date(2025, time.September, 15)))

	tx.IsPaid = true
	assert.Equal(t, StatusPaid, ClassifyTransaction(tx, date(2025, time.September, 15)))
}
