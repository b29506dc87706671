package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/kislikjeka/duetrack/internal/transaction"
)

const transactionColumns = `
	id, user_id, description, kind, amount, due_date,
	is_recurring, recurrence_type, recurrence_count, recurrence_interval_days, recurrence_weekday,
	is_installment, installment_number, total_installments,
	is_paid, payment_date, paid_amount, payment_type, bank_account_id, card_id,
	category_id, subcategory_id, contact_id, cost_center_id,
	origin_transaction_id, created_at, updated_at`

// TransactionRepository implements transaction.Repository using PostgreSQL
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new PostgreSQL transaction repository
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

// Create persists a single transaction row
func (r *TransactionRepository) Create(ctx context.Context, tx *transaction.Transaction) error {
	if err := tx.Validate(); err != nil {
		return fmt.Errorf("invalid transaction: %w", err)
	}

	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		        $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27)
	`

	q := r.getQueryer(ctx)
	_, err := q.Exec(ctx, query, r.insertArgs(tx)...)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	return nil
}

// CreateBatch persists expanded rows using pgx's batch support
func (r *TransactionRepository) CreateBatch(ctx context.Context, txs []*transaction.Transaction) error {
	if len(txs) == 0 {
		return nil
	}

	for _, tx := range txs {
		if err := tx.Validate(); err != nil {
			return fmt.Errorf("invalid transaction: %w", err)
		}
	}

	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		        $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27)
	`

	batch := &pgx.Batch{}
	for _, tx := range txs {
		batch.Queue(query, r.insertArgs(tx)...)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range txs {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("failed to create transaction batch: %w", err)
		}
	}

	return nil
}

// GetByID retrieves a transaction by ID
func (r *TransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`

	q := r.getQueryer(ctx)
	row := q.QueryRow(ctx, query, id)

	tx, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, transaction.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return tx, nil
}

// Update persists the mutable fields of a transaction
func (r *TransactionRepository) Update(ctx context.Context, tx *transaction.Transaction) error {
	query := `
		UPDATE transactions
		SET description = $2, amount = $3, due_date = $4,
		    is_paid = $5, payment_date = $6, paid_amount = $7, payment_type = $8,
		    bank_account_id = $9, card_id = $10,
		    category_id = $11, subcategory_id = $12, contact_id = $13, cost_center_id = $14,
		    updated_at = $15
		WHERE id = $1
	`

	q := r.getQueryer(ctx)
	tag, err := q.Exec(ctx, query,
		tx.ID,
		tx.Description,
		tx.Amount,
		tx.DueDate,
		tx.IsPaid,
		tx.PaymentDate,
		nullDecimal(tx.PaidAmount),
		nullPaymentType(tx.PaymentType),
		tx.BankAccountID,
		tx.CardID,
		tx.CategoryID,
		tx.SubcategoryID,
		tx.ContactID,
		tx.CostCenterID,
		tx.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return transaction.ErrTransactionNotFound
	}

	return nil
}

// Delete removes a transaction row
func (r *TransactionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	q := r.getQueryer(ctx)
	tag, err := q.Exec(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return transaction.ErrTransactionNotFound
	}

	return nil
}

// List retrieves a user's transactions ordered by due date
func (r *TransactionRepository) List(ctx context.Context, userID uuid.UUID, filters transaction.Filters) ([]*transaction.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE user_id = $1`
	args := []any{userID}
	argPos := 2

	if filters.Kind != nil {
		query += fmt.Sprintf(" AND kind = $%d", argPos)
		args = append(args, string(*filters.Kind))
		argPos++
	}
	if filters.PaymentType != nil {
		query += fmt.Sprintf(" AND payment_type = $%d", argPos)
		args = append(args, string(*filters.PaymentType))
		argPos++
	}
	if filters.IsPaid != nil {
		query += fmt.Sprintf(" AND is_paid = $%d", argPos)
		args = append(args, *filters.IsPaid)
		argPos++
	}
	if filters.DueFrom != nil {
		query += fmt.Sprintf(" AND due_date >= $%d", argPos)
		args = append(args, *filters.DueFrom)
		argPos++
	}
	if filters.DueTo != nil {
		query += fmt.Sprintf(" AND due_date <= $%d", argPos)
		args = append(args, *filters.DueTo)
		argPos++
	}

	query += " ORDER BY due_date, created_at"

	if filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argPos)
		args = append(args, filters.Limit)
		argPos++
	}
	if filters.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argPos)
		args = append(args, filters.Offset)
	}

	q := r.getQueryer(ctx)
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	return collectTransactions(rows)
}

// FindByOrigin retrieves the live statement charge for an originating
// transaction, or nil when none exists
func (r *TransactionRepository) FindByOrigin(ctx context.Context, originID uuid.UUID) (*transaction.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE origin_transaction_id = $1`

	q := r.getQueryer(ctx)
	row := q.QueryRow(ctx, query, originID)

	tx, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find statement charge: %w", err)
	}

	return tx, nil
}

// ListSettledByAccount retrieves the transactions that qualify for an
// account's derived balance. The payment_type predicate keeps credit-card
// settlements out even when a stale bank_account_id is present on the row.
func (r *TransactionRepository) ListSettledByAccount(ctx context.Context, accountID uuid.UUID) ([]*transaction.Transaction, error) {
	query := `SELECT ` + transactionColumns + `
		FROM transactions
		WHERE bank_account_id = $1
		  AND is_paid = TRUE
		  AND payment_type = $2
		ORDER BY payment_date, created_at`

	q := r.getQueryer(ctx)
	rows, err := q.Query(ctx, query, accountID, string(transaction.PaymentBankAccount))
	if err != nil {
		return nil, fmt.Errorf("failed to list settled transactions: %w", err)
	}
	defer rows.Close()

	return collectTransactions(rows)
}

// insertArgs builds the positional arguments matching transactionColumns
func (r *TransactionRepository) insertArgs(tx *transaction.Transaction) []any {
	return []any{
		tx.ID,
		tx.UserID,
		tx.Description,
		string(tx.Kind),
		tx.Amount,
		tx.DueDate,
		tx.IsRecurring,
		nullString(string(tx.RecurrenceType)),
		tx.RecurrenceCount,
		tx.RecurrenceIntervalDays,
		int(tx.RecurrenceWeekday),
		tx.IsInstallment,
		tx.InstallmentNumber,
		tx.TotalInstallments,
		tx.IsPaid,
		tx.PaymentDate,
		nullDecimal(tx.PaidAmount),
		nullPaymentType(tx.PaymentType),
		tx.BankAccountID,
		tx.CardID,
		tx.CategoryID,
		tx.SubcategoryID,
		tx.ContactID,
		tx.CostCenterID,
		tx.OriginTransactionID,
		tx.CreatedAt,
		tx.UpdatedAt,
	}
}

// rowScanner is satisfied by both pgx.Row and pgx.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*transaction.Transaction, error) {
	var tx transaction.Transaction
	var kind string
	var recurrenceType *string
	var recurrenceWeekday int
	var paidAmount *decimal.Decimal
	var paymentType *string

	err := row.Scan(
		&tx.ID,
		&tx.UserID,
		&tx.Description,
		&kind,
		&tx.Amount,
		&tx.DueDate,
		&tx.IsRecurring,
		&recurrenceType,
		&tx.RecurrenceCount,
		&tx.RecurrenceIntervalDays,
		&recurrenceWeekday,
		&tx.IsInstallment,
		&tx.InstallmentNumber,
		&tx.TotalInstallments,
		&tx.IsPaid,
		&tx.PaymentDate,
		&paidAmount,
		&paymentType,
		&tx.BankAccountID,
		&tx.CardID,
		&tx.CategoryID,
		&tx.SubcategoryID,
		&tx.ContactID,
		&tx.CostCenterID,
		&tx.OriginTransactionID,
		&tx.CreatedAt,
		&tx.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	tx.Kind = transaction.Kind(kind)
	tx.RecurrenceWeekday = time.Weekday(recurrenceWeekday)
	if recurrenceType != nil {
		tx.RecurrenceType = transaction.RecurrenceType(*recurrenceType)
	}
	if paidAmount != nil {
		tx.PaidAmount = *paidAmount
	}
	if paymentType != nil {
		tx.PaymentType = transaction.PaymentType(*paymentType)
	}

	return &tx, nil
}

func collectTransactions(rows pgx.Rows) ([]*transaction.Transaction, error) {
	var txs []*transaction.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txs = append(txs, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	return txs, nil
}

// nullString maps an empty string to NULL
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// nullPaymentType maps an unset payment type to NULL
func nullPaymentType(p transaction.PaymentType) *string {
	return nullString(string(p))
}

// nullDecimal maps a zero paid amount to NULL so unsettled rows carry no
// amount at all
func nullDecimal(d decimal.Decimal) *decimal.Decimal {
	if d.IsZero() {
		return nil
	}
	return &d
}

// Database transactions are carried through the context so that service
// code can group multiple repository calls into one atomic commit.

type ctxKey string

const txContextKey ctxKey = "duetrack_tx"

// BeginTx starts a new database transaction and stores it in the context
func (r *TransactionRepository) BeginTx(ctx context.Context) (context.Context, error) {
	if tx := r.getTxFromContext(ctx); tx != nil {
		return ctx, fmt.Errorf("transaction already in progress")
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return ctx, fmt.Errorf("failed to begin transaction: %w", err)
	}

	return context.WithValue(ctx, txContextKey, tx), nil
}

// CommitTx commits the database transaction from the context
func (r *TransactionRepository) CommitTx(ctx context.Context) error {
	tx := r.getTxFromContext(ctx)
	if tx == nil {
		return fmt.Errorf("no transaction in context")
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// RollbackTx rolls back the database transaction from the context
func (r *TransactionRepository) RollbackTx(ctx context.Context) error {
	tx := r.getTxFromContext(ctx)
	if tx == nil {
		return fmt.Errorf("no transaction in context")
	}

	if err := tx.Rollback(ctx); err != nil {
		if err == pgx.ErrTxClosed {
			return nil
		}
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	return nil
}

func (r *TransactionRepository) getTxFromContext(ctx context.Context) pgx.Tx {
	if tx, ok := ctx.Value(txContextKey).(pgx.Tx); ok {
		return tx
	}
	return nil
}

// getQueryer returns the context's open transaction when present, otherwise
// the pool, so repository methods work both inside and outside transactions
func (r *TransactionRepository) getQueryer(ctx context.Context) interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
} {
	if tx := r.getTxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}
