package transaction

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kind classifies what a transaction represents
type Kind string

const (
	KindExpense    Kind = "expense"
	KindIncome     Kind = "income"
	KindInvestment Kind = "investment"
)

// Valid reports whether the kind is one of the known values
func (k Kind) Valid() bool {
	switch k {
	case KindExpense, KindIncome, KindInvestment:
		return true
	}
	return false
}

// RecurrenceType describes how a recurring entry repeats
type RecurrenceType string

const (
	RecurrenceOnce    RecurrenceType = "once"
	RecurrenceWeekly  RecurrenceType = "weekly"
	RecurrenceMonthly RecurrenceType = "monthly"
	RecurrenceYearly  RecurrenceType = "yearly"
	RecurrenceCustom  RecurrenceType = "custom"
)

// Valid reports whether the recurrence type is one of the known values
func (r RecurrenceType) Valid() bool {
	switch r {
	case RecurrenceOnce, RecurrenceWeekly, RecurrenceMonthly, RecurrenceYearly, RecurrenceCustom:
		return true
	}
	return false
}

// PaymentType describes the instrument a transaction was settled with
type PaymentType string

const (
	PaymentBankAccount PaymentType = "bank_account"
	PaymentCreditCard  PaymentType = "credit_card"
	PaymentOther       PaymentType = "other"
)

// Valid reports whether the payment type is one of the known values
func (p PaymentType) Valid() bool {
	switch p {
	case PaymentBankAccount, PaymentCreditCard, PaymentOther:
		return true
	}
	return false
}

// Status is the display status of a transaction relative to a reference date.
// It is derived on every read and never persisted.
type Status string

const (
	StatusPaid     Status = "paid"
	StatusOverdue  Status = "overdue"
	StatusDueToday Status = "due_today"
	StatusUpcoming Status = "upcoming"
)

// Transaction is one materialized financial obligation. Recurring and
// installment entries are expanded into independent rows at creation time;
// each row then moves through the settlement lifecycle on its own.
type Transaction struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Description string
	Kind        Kind
	Amount      decimal.Decimal
	DueDate     time.Time

	// Expansion bookkeeping, recorded once at creation and never re-applied
	IsRecurring            bool
	RecurrenceType         RecurrenceType
	RecurrenceCount        int
	RecurrenceIntervalDays int
	RecurrenceWeekday      time.Weekday
	IsInstallment          bool
	InstallmentNumber      int
	TotalInstallments      int

	// Settlement fields, populated by MarkAsPaid and cleared by ReversePayment
	IsPaid        bool
	PaymentDate   *time.Time
	PaidAmount    decimal.Decimal
	PaymentType   PaymentType
	BankAccountID *uuid.UUID
	CardID        *uuid.UUID

	// Dimension references owned by external lookup collaborators
	CategoryID    *uuid.UUID
	SubcategoryID *uuid.UUID
	ContactID     *uuid.UUID
	CostCenterID  *uuid.UUID

	// Set only on statement charges: the transaction whose credit-card
	// settlement spawned this row
	OriginTransactionID *uuid.UUID

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks the invariants every persisted transaction must hold
func (t *Transaction) Validate() error {
	if t.UserID == uuid.Nil {
		return ErrInvalidUserID
	}

	if !t.Kind.Valid() {
		return ErrInvalidKind
	}

	if t.Amount.Sign() <= 0 {
		return ErrInvalidAmount
	}

	if t.DueDate.IsZero() {
		return ErrInvalidDueDate
	}

	// Recurring and installment are mutually exclusive expansion modes
	if t.IsRecurring && t.IsInstallment {
		return ErrConflictingSchedule
	}

	if t.IsRecurring && !t.RecurrenceType.Valid() {
		return ErrInvalidRecurrenceType
	}

	if t.IsInstallment {
		if t.TotalInstallments < 1 {
			return ErrInvalidInstallments
		}
		if t.InstallmentNumber < 1 || t.InstallmentNumber > t.TotalInstallments {
			return ErrInvalidInstallments
		}
	}

	return nil
}

// IsStatementCharge reports whether this transaction was derived from a
// credit-card settlement of another transaction
func (t *Transaction) IsStatementCharge() bool {
	return t.OriginTransactionID != nil
}
