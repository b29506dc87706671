package account

import (
	"context"

	"github.com/google/uuid"

	"github.com/kislikjeka/duetrack/internal/transaction"
)

// Repository defines the persistence operations for bank accounts
type Repository interface {
	Create(ctx context.Context, a *BankAccount) error
	GetByID(ctx context.Context, id uuid.UUID) (*BankAccount, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*BankAccount, error)
	Update(ctx context.Context, a *BankAccount) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// SettledReader supplies the transactions that qualify for an account's
// derived balance: settled via this bank account, paid, and not settled via
// credit card.
type SettledReader interface {
	ListSettledByAccount(ctx context.Context, accountID uuid.UUID) ([]*transaction.Transaction, error)
}
