package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kislikjeka/duetrack/internal/account"
)

// AccountRepository implements account.Repository using PostgreSQL
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new PostgreSQL bank account repository
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

// Create persists a new bank account
func (r *AccountRepository) Create(ctx context.Context, a *account.BankAccount) error {
	if err := a.Validate(); err != nil {
		return fmt.Errorf("invalid bank account: %w", err)
	}

	query := `
		INSERT INTO bank_accounts (id, user_id, name, initial_balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query,
		a.ID, a.UserID, a.Name, a.InitialBalance, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create bank account: %w", err)
	}

	return nil
}

// GetByID retrieves a bank account by ID
func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*account.BankAccount, error) {
	query := `
		SELECT id, user_id, name, initial_balance, created_at, updated_at
		FROM bank_accounts
		WHERE id = $1
	`

	var a account.BankAccount
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&a.ID, &a.UserID, &a.Name, &a.InitialBalance, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, account.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get bank account: %w", err)
	}

	return &a, nil
}

// ListByUser retrieves a user's bank accounts
func (r *AccountRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*account.BankAccount, error) {
	query := `
		SELECT id, user_id, name, initial_balance, created_at, updated_at
		FROM bank_accounts
		WHERE user_id = $1
		ORDER BY created_at
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bank accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*account.BankAccount
	for rows.Next() {
		var a account.BankAccount
		if err := rows.Scan(&a.ID, &a.UserID, &a.Name, &a.InitialBalance, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan bank account: %w", err)
		}
		accounts = append(accounts, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bank accounts: %w", err)
	}

	return accounts, nil
}

// Update persists the mutable fields of a bank account
func (r *AccountRepository) Update(ctx context.Context, a *account.BankAccount) error {
	query := `
		UPDATE bank_accounts
		SET name = $2, initial_balance = $3, updated_at = $4
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, a.ID, a.Name, a.InitialBalance, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update bank account: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return account.ErrAccountNotFound
	}

	return nil
}

// Delete removes a bank account
func (r *AccountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM bank_accounts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete bank account: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return account.ErrAccountNotFound
	}

	return nil
}
