package account

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kislikjeka/duetrack/internal/transaction"
	"github.com/kislikjeka/duetrack/pkg/logger"
)

// Service exposes bank account CRUD and the derived balance calculation
type Service struct {
	repo    Repository
	settled SettledReader
	log     *logger.Logger
}

// NewService creates a new bank account service
func NewService(repo Repository, settled SettledReader, log *logger.Logger) *Service {
	return &Service{
		repo:    repo,
		settled: settled,
		log:     log.WithField("component", "account"),
	}
}

// Create persists a new bank account
func (s *Service) Create(ctx context.Context, userID uuid.UUID, name string, initialBalance decimal.Decimal) (*BankAccount, error) {
	now := time.Now().UTC()
	a := &BankAccount{
		ID:             uuid.New(),
		UserID:         userID,
		Name:           name,
		InitialBalance: initialBalance,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := a.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to create bank account: %w", err)
	}

	return a, nil
}

// Get retrieves a bank account by ID
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*BankAccount, error) {
	return s.repo.GetByID(ctx, id)
}

// ListByUser retrieves a user's bank accounts
func (s *Service) ListByUser(ctx context.Context, userID uuid.UUID) ([]*BankAccount, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Balance derives the account's current balance and total movements from
// the settled transaction set. It is a read-time aggregation, recomputed on
// every call: flipping a transaction back to unpaid removes its
// contribution with no bookkeeping here, which is what makes payment
// reversal drift-free.
//
// Only transactions settled via this bank account qualify. Credit-card
// settlements never touch a bank balance, even when a stale account
// reference is still present on the row; the repository query and the guard
// below both enforce it.
func (s *Service) Balance(ctx context.Context, accountID uuid.UUID) (*Balance, error) {
	a, err := s.repo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	settled, err := s.settled.ListSettledByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to load settled transactions: %w", err)
	}

	movements := decimal.Zero
	for _, t := range settled {
		if !t.IsPaid || t.PaymentType != transaction.PaymentBankAccount {
			continue
		}
		movements = movements.Add(signedAmount(t))
	}

	return &Balance{
		AccountID:      a.ID,
		InitialBalance: a.InitialBalance,
		Current:        a.InitialBalance.Add(movements),
		TotalMovements: movements,
	}, nil
}

// signedAmount maps a settled transaction to its balance contribution:
// expenses subtract, income and investments add.
func signedAmount(t *transaction.Transaction) decimal.Decimal {
	if t.Kind == transaction.KindExpense {
		return t.PaidAmount.Neg()
	}
	return t.PaidAmount
}
