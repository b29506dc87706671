package transaction

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kislikjeka/duetrack/pkg/datemath"
	"github.com/kislikjeka/duetrack/pkg/logger"
)

// statementChargeLabel prefixes the description of every derived
// statement-charge row.
const statementChargeLabel = "Card charge"

// lockStripes is the size of the per-id lock table. Settlement of the same
// transaction id must be serialized so preconditions are checked against a
// consistent snapshot; distinct ids may proceed in parallel.
const lockStripes = 64

// Service orchestrates the settlement lifecycle of transactions:
// entry expansion, mark-as-paid, reverse-payment, and the statement-charge
// side effects of credit-card settlements.
type Service struct {
	repo     Repository
	cards    CardStore
	contacts ContactLookup
	log      *logger.Logger
	locks    [lockStripes]sync.Mutex
}

// NewService creates a new settlement service
func NewService(repo Repository, cards CardStore, contacts ContactLookup, log *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		cards:    cards,
		contacts: contacts,
		log:      log.WithField("component", "settlement"),
	}
}

// lockFor returns the stripe serializing operations on the given id
func (s *Service) lockFor(id uuid.UUID) *sync.Mutex {
	return &s.locks[int(id[0])%lockStripes]
}

// CreateFromEntry expands a user-entered obligation into its transaction
// rows and persists them in one batch. Expansion happens exactly once, here.
func (s *Service) CreateFromEntry(ctx context.Context, entry Entry) ([]*Transaction, error) {
	txs, err := Materialize(entry)
	if err != nil {
		return nil, err
	}

	if err := s.repo.CreateBatch(ctx, txs); err != nil {
		return nil, fmt.Errorf("failed to persist expanded entry: %w", err)
	}

	s.log.Info("entry expanded",
		"user_id", entry.UserID,
		"occurrences", len(txs),
		"kind", entry.Kind,
	)

	return txs, nil
}

// Get retrieves a transaction by ID
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	return s.repo.GetByID(ctx, id)
}

// List retrieves a user's transactions
func (s *Service) List(ctx context.Context, userID uuid.UUID, filters Filters) ([]*Transaction, error) {
	return s.repo.List(ctx, userID, filters)
}

// PaymentInput carries the settlement details for MarkAsPaid. Exactly one
// of BankAccountID/CardID must be set, matching the payment type; both are
// absent for PaymentOther.
type PaymentInput struct {
	PaymentDate   time.Time
	PaidAmount    decimal.Decimal
	PaymentType   PaymentType
	BankAccountID *uuid.UUID
	CardID        *uuid.UUID
}

// Validate rejects inputs that would require a partial mutation to undo
func (in PaymentInput) Validate() error {
	if in.PaidAmount.Sign() <= 0 {
		return ErrInvalidPaidAmount
	}
	if in.PaymentDate.IsZero() {
		return ErrInvalidDueDate
	}

	switch in.PaymentType {
	case PaymentBankAccount:
		if in.BankAccountID == nil {
			return ErrMissingTargetReference
		}
	case PaymentCreditCard:
		if in.CardID == nil {
			return ErrMissingTargetReference
		}
	case PaymentOther:
		// No instrument reference.
	default:
		return ErrMissingTargetReference
	}

	return nil
}

// MarkAsPaid transitions an unpaid transaction to paid.
//
// For credit-card settlements it additionally spawns exactly one statement
// charge: an unpaid expense due on the card's computed statement date,
// carrying the paid amount and a back-reference to this transaction. The
// field update and the spawn commit atomically. Bank-account settlements
// update fields only; the balance effect is realized lazily by the account
// balance calculator, never by an incremental counter here.
func (s *Service) MarkAsPaid(ctx context.Context, id uuid.UUID, in PaymentInput) (*Transaction, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	mu := s.lockFor(id)
	mu.Lock()
	defer mu.Unlock()

	tx, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if tx.IsPaid {
		return nil, ErrAlreadyPaid
	}

	paymentDate := datemath.Day(in.PaymentDate)

	tx.IsPaid = true
	tx.PaymentDate = &paymentDate
	tx.PaidAmount = in.PaidAmount
	tx.PaymentType = in.PaymentType
	tx.UpdatedAt = time.Now().UTC()

	// Record the instrument used and drop any stale reference to the other.
	switch in.PaymentType {
	case PaymentBankAccount:
		tx.BankAccountID = in.BankAccountID
		tx.CardID = nil
	case PaymentCreditCard:
		tx.CardID = in.CardID
		tx.BankAccountID = nil
	case PaymentOther:
		tx.BankAccountID = nil
		tx.CardID = nil
	}

	var charge *Transaction
	if in.PaymentType == PaymentCreditCard {
		charge, err = s.buildStatementCharge(ctx, tx, paymentDate)
		if err != nil {
			return nil, err
		}
	}

	if err := s.commitSettlement(ctx, tx, charge, nil); err != nil {
		return nil, err
	}

	s.log.Info("transaction settled",
		"transaction_id", tx.ID,
		"payment_type", tx.PaymentType,
		"paid_amount", tx.PaidAmount,
		"statement_charge", charge != nil,
	)

	return tx, nil
}

// ReversePayment transitions a paid transaction back to unpaid, restoring
// every settlement field to its pre-payment zero value. If the settlement
// had spawned a statement charge, the charge is cancelled in the same
// commit; a missing charge is a benign prior state, not an error. Because
// balances are derived from the settled set at read time, reversal needs no
// balance bookkeeping of its own.
func (s *Service) ReversePayment(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	mu := s.lockFor(id)
	mu.Lock()
	defer mu.Unlock()

	tx, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !tx.IsPaid {
		return nil, ErrNotPaid
	}

	charge, err := s.repo.FindByOrigin(ctx, tx.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up statement charge: %w", err)
	}

	tx.IsPaid = false
	tx.PaymentDate = nil
	tx.PaidAmount = decimal.Zero
	tx.PaymentType = ""
	tx.BankAccountID = nil
	tx.CardID = nil
	tx.UpdatedAt = time.Now().UTC()

	if err := s.commitSettlement(ctx, tx, nil, charge); err != nil {
		return nil, err
	}

	s.log.Info("payment reversed",
		"transaction_id", tx.ID,
		"statement_charge_cancelled", charge != nil,
	)

	return tx, nil
}

// buildStatementCharge derives the companion row a credit-card settlement
// creates: unpaid, expense-kind, due on the card's statement date, amount
// equal to what was actually paid, dimension references copied from the
// origin, and the description composed from the origin and its contact.
func (s *Service) buildStatementCharge(ctx context.Context, origin *Transaction, paymentDate time.Time) (*Transaction, error) {
	c, err := s.cards.GetByID(ctx, *origin.CardID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCardNotFound, err)
	}

	description := fmt.Sprintf("%s: %s", statementChargeLabel, origin.Description)
	if origin.ContactID != nil && s.contacts != nil {
		// Name lookup failures degrade to the bare description.
		if name, err := s.contacts.ContactName(ctx, *origin.ContactID); err == nil && name != "" {
			description = fmt.Sprintf("%s (%s)", description, name)
		}
	}

	now := time.Now().UTC()
	originID := origin.ID
	cardID := *origin.CardID

	return &Transaction{
		ID:                  uuid.New(),
		UserID:              origin.UserID,
		Description:         description,
		Kind:                KindExpense,
		Amount:              origin.PaidAmount,
		DueDate:             c.NextStatementDueDate(paymentDate),
		CategoryID:          origin.CategoryID,
		SubcategoryID:       origin.SubcategoryID,
		ContactID:           origin.ContactID,
		CostCenterID:        origin.CostCenterID,
		CardID:              &cardID,
		OriginTransactionID: &originID,
		CreatedAt:           now,
		UpdatedAt:           now,
	}, nil
}

// commitSettlement applies a settlement transition atomically: the updated
// transaction, an optional spawned charge, and an optional cancelled charge
// all land in one repository transaction.
func (s *Service) commitSettlement(ctx context.Context, tx *Transaction, spawn, cancel *Transaction) error {
	txCtx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = s.repo.RollbackTx(txCtx)
		}
	}()

	if err := s.repo.Update(txCtx, tx); err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}

	if spawn != nil {
		if err := s.repo.Create(txCtx, spawn); err != nil {
			return fmt.Errorf("failed to create statement charge: %w", err)
		}
	}

	if cancel != nil {
		if err := s.repo.Delete(txCtx, cancel.ID); err != nil {
			return fmt.Errorf("failed to cancel statement charge: %w", err)
		}
	}

	if err := s.repo.CommitTx(txCtx); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	committed = true
	return nil
}

// BatchResult is the per-id outcome of a batch settlement operation
type BatchResult struct {
	ID  uuid.UUID
	Err error
}

// MarkAsPaidBatch applies MarkAsPaid independently to each id. One item's
// failure never aborts its siblings; the caller receives one result per id
// in input order.
func (s *Service) MarkAsPaidBatch(ctx context.Context, ids []uuid.UUID, in PaymentInput) []BatchResult {
	results := make([]BatchResult, len(ids))
	for i, id := range ids {
		_, err := s.MarkAsPaid(ctx, id, in)
		results[i] = BatchResult{ID: id, Err: err}
	}
	return results
}

// ReversePaymentBatch applies ReversePayment independently to each id,
// aggregating per-id outcomes instead of rolling back on first failure.
func (s *Service) ReversePaymentBatch(ctx context.Context, ids []uuid.UUID) []BatchResult {
	results := make([]BatchResult, len(ids))
	for i, id := range ids {
		_, err := s.ReversePayment(ctx, id)
		results[i] = BatchResult{ID: id, Err: err}
	}
	return results
}
