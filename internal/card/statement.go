package card

import (
	"time"

	"github.com/kislikjeka/duetrack/pkg/datemath"
)

// StatementDueDate computes the due date of the statement a credit-card
// settlement lands on.
//
// A payment made after the card's closing day misses the cycle that already
// closed this month, so the charge rolls into next month's cycle. A due day
// numerically earlier than the closing day means the statement is payable in
// the month after it closes, not the same month. The resulting day is
// clamped to the target month's length (due day 31 in April resolves to
// April 30).
func StatementDueDate(paymentDate time.Time, closingDay, dueDay int) time.Time {
	paymentDate = datemath.Day(paymentDate)

	closing := paymentDate
	if paymentDate.Day() > closingDay {
		closing = datemath.AddMonths(paymentDate, 1)
	}

	dueYear, dueMonth := closing.Year(), closing.Month()
	if dueDay < closingDay {
		next := datemath.AddMonths(closing, 1)
		dueYear, dueMonth = next.Year(), next.Month()
	}

	return datemath.ClampToMonth(dueYear, dueMonth, dueDay)
}

// NextStatementDueDate resolves the statement due date for a settlement on
// this card.
func (c *Card) NextStatementDueDate(paymentDate time.Time) time.Time {
	return StatementDueDate(paymentDate, c.ClosingDay, c.DueDay)
}
