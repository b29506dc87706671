package transaction

import (
	"time"

	"github.com/kislikjeka/duetrack/pkg/datemath"
)

// Classify maps a transaction's settlement state and due date to its display
// status relative to today. Paid wins unconditionally; unpaid transactions
// bucket by day-granularity comparison of the due date against today.
//
// The reference date is always an explicit parameter so the function stays
// pure; callers pass the request's notion of "today", never the ambient
// clock from inside here. The result is computed fresh on every read and is
// never stored on the transaction.
func Classify(isPaid bool, dueDate, today time.Time) Status {
	if isPaid {
		return StatusPaid
	}

	due := datemath.Day(dueDate)
	ref := datemath.Day(today)

	switch {
	case due.Before(ref):
		return StatusOverdue
	case due.Equal(ref):
		return StatusDueToday
	default:
		return StatusUpcoming
	}
}

// ClassifyTransaction is a convenience wrapper over Classify
func ClassifyTransaction(t *Transaction, today time.Time) Status {
	return Classify(t.IsPaid, t.DueDate, today)
}
