package transaction

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kislikjeka/duetrack/pkg/datemath"
)

// Entry is a user-entered obligation before expansion. An entry is expanded
// exactly once, at creation time, into one or more Transaction rows; later
// edits to a row never re-trigger expansion.
type Entry struct {
	UserID        uuid.UUID
	Description   string
	Kind          Kind
	Amount        decimal.Decimal
	DueDate       time.Time
	Schedule      ExpansionMode
	CategoryID    *uuid.UUID
	SubcategoryID *uuid.UUID
	ContactID     *uuid.UUID
	CostCenterID  *uuid.UUID
}

// ExpansionMode is the schedule attached to an entry. Exactly one of the
// three implementations applies; the zero value of an entry uses ScheduleOnce.
type ExpansionMode interface {
	isExpansionMode()
}

// ScheduleOnce produces a single transaction at the entry's due date
type ScheduleOnce struct{}

// ScheduleRecurring expands the entry into Rule.Count occurrences
type ScheduleRecurring struct {
	Rule RecurrenceRule
}

// ScheduleInstallments splits the entry into Count monthly installments
type ScheduleInstallments struct {
	Count int
}

func (ScheduleOnce) isExpansionMode()         {}
func (ScheduleRecurring) isExpansionMode()    {}
func (ScheduleInstallments) isExpansionMode() {}

// RecurrenceRule holds the parameters of a recurring schedule. IntervalDays
// applies only to RecurrenceCustom, Weekday only to RecurrenceWeekly.
type RecurrenceRule struct {
	Type         RecurrenceType
	Count        int
	IntervalDays int
	Weekday      time.Weekday
}

// Validate checks the rule's parameters
func (r RecurrenceRule) Validate() error {
	if !r.Type.Valid() {
		return ErrInvalidRecurrenceType
	}
	if r.Count < 1 {
		return ErrInvalidRecurrence
	}
	if r.Type == RecurrenceCustom && r.IntervalDays < 1 {
		return ErrInvalidInterval
	}
	return nil
}

// ExpandRecurrence produces the ordered occurrence dates for an anchor date
// and a recurrence rule. The result always has exactly rule.Count elements
// and element 0 is always the anchor date itself.
//
// Weekly is deliberately asymmetric: the first occurrence keeps the raw
// anchor date regardless of its weekday, the second snaps to the next
// configured weekday after the anchor, and later occurrences step 7 days
// from the second. Keep this behavior in this one function; see DESIGN.md.
func ExpandRecurrence(anchor time.Time, rule RecurrenceRule) ([]time.Time, error) {
	if err := rule.Validate(); err != nil {
		return nil, err
	}

	anchor = datemath.Day(anchor)

	count := rule.Count
	if rule.Type == RecurrenceOnce {
		count = 1
	}

	dates := make([]time.Time, count)
	dates[0] = anchor

	switch rule.Type {
	case RecurrenceOnce:
		// Single occurrence, nothing more to produce.

	case RecurrenceMonthly:
		for i := 1; i < count; i++ {
			dates[i] = datemath.AddMonths(anchor, i)
		}

	case RecurrenceYearly:
		for i := 1; i < count; i++ {
			dates[i] = datemath.AddYears(anchor, i)
		}

	case RecurrenceCustom:
		for i := 1; i < count; i++ {
			dates[i] = datemath.AddDays(anchor, i*rule.IntervalDays)
		}

	case RecurrenceWeekly:
		if count > 1 {
			second := datemath.NextWeekday(anchor, rule.Weekday)
			dates[1] = second
			for i := 2; i < count; i++ {
				dates[i] = datemath.AddDays(second, (i-1)*7)
			}
		}
	}

	return dates, nil
}

// ExpandInstallments produces one occurrence date per calendar month for the
// given anchor and count, with day-of-month clamping on short months.
func ExpandInstallments(anchor time.Time, count int) ([]time.Time, error) {
	if count < 1 {
		return nil, ErrInvalidInstallments
	}

	anchor = datemath.Day(anchor)

	dates := make([]time.Time, count)
	for i := 0; i < count; i++ {
		dates[i] = datemath.AddMonths(anchor, i)
	}

	return dates, nil
}

// Materialize expands an entry into its transaction rows. The entry's
// schedule is consumed here, once; the produced rows share everything except
// due date and the installment/occurrence ordinal.
func Materialize(entry Entry) ([]*Transaction, error) {
	if entry.Description == "" {
		return nil, ErrEmptyDescription
	}
	if entry.UserID == uuid.Nil {
		return nil, ErrInvalidUserID
	}
	if !entry.Kind.Valid() {
		return nil, ErrInvalidKind
	}
	if entry.Amount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	if entry.DueDate.IsZero() {
		return nil, ErrInvalidDueDate
	}

	schedule := entry.Schedule
	if schedule == nil {
		schedule = ScheduleOnce{}
	}

	now := time.Now().UTC()

	base := func(dueDate time.Time) *Transaction {
		return &Transaction{
			ID:            uuid.New(),
			UserID:        entry.UserID,
			Description:   entry.Description,
			Kind:          entry.Kind,
			Amount:        entry.Amount,
			DueDate:       dueDate,
			CategoryID:    entry.CategoryID,
			SubcategoryID: entry.SubcategoryID,
			ContactID:     entry.ContactID,
			CostCenterID:  entry.CostCenterID,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
	}

	switch mode := schedule.(type) {
	case ScheduleOnce:
		return []*Transaction{base(datemath.Day(entry.DueDate))}, nil

	case ScheduleRecurring:
		dates, err := ExpandRecurrence(entry.DueDate, mode.Rule)
		if err != nil {
			return nil, err
		}

		txs := make([]*Transaction, len(dates))
		for i, d := range dates {
			tx := base(d)
			tx.IsRecurring = true
			tx.RecurrenceType = mode.Rule.Type
			tx.RecurrenceCount = len(dates)
			tx.RecurrenceIntervalDays = mode.Rule.IntervalDays
			tx.RecurrenceWeekday = mode.Rule.Weekday
			txs[i] = tx
		}
		return txs, nil

	case ScheduleInstallments:
		dates, err := ExpandInstallments(entry.DueDate, mode.Count)
		if err != nil {
			return nil, err
		}

		txs := make([]*Transaction, len(dates))
		for i, d := range dates {
			tx := base(d)
			tx.Description = fmt.Sprintf("%s (%d/%d)", entry.Description, i+1, mode.Count)
			tx.IsInstallment = true
			tx.InstallmentNumber = i + 1
			tx.TotalInstallments = mode.Count
			txs[i] = tx
		}
		return txs, nil

	default:
		return nil, fmt.Errorf("unknown expansion mode %T", schedule)
	}
}
