package account

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BankAccount holds the stored state of a bank account. Only the initial
// balance is persisted; the current balance and total movements are derived
// from the settled transaction set at read time and never stored as
// mutable counters.
type BankAccount struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	Name           string
	InitialBalance decimal.Decimal
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Validate checks the account's stored fields
func (a *BankAccount) Validate() error {
	if a.UserID == uuid.Nil {
		return ErrInvalidUserID
	}
	if a.Name == "" {
		return ErrEmptyName
	}
	return nil
}

// Balance is the derived view of an account at a point in time
type Balance struct {
	AccountID      uuid.UUID
	InitialBalance decimal.Decimal
	Current        decimal.Decimal
	TotalMovements decimal.Decimal
}
