package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kislikjeka/duetrack/internal/card"
)

// CardRepository implements card.Repository using PostgreSQL
type CardRepository struct {
	pool *pgxpool.Pool
}

// NewCardRepository creates a new PostgreSQL card repository
func NewCardRepository(pool *pgxpool.Pool) *CardRepository {
	return &CardRepository{pool: pool}
}

// Create persists a new card
func (r *CardRepository) Create(ctx context.Context, c *card.Card) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid card: %w", err)
	}

	query := `
		INSERT INTO cards (id, user_id, name, closing_day, due_day, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		c.ID, c.UserID, c.Name, c.ClosingDay, c.DueDay, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create card: %w", err)
	}

	return nil
}

// GetByID retrieves a card by ID
func (r *CardRepository) GetByID(ctx context.Context, id uuid.UUID) (*card.Card, error) {
	query := `
		SELECT id, user_id, name, closing_day, due_day, created_at, updated_at
		FROM cards
		WHERE id = $1
	`

	var c card.Card
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.UserID, &c.Name, &c.ClosingDay, &c.DueDay, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, card.ErrCardNotFound
		}
		return nil, fmt.Errorf("failed to get card: %w", err)
	}

	return &c, nil
}

// ListByUser retrieves a user's cards
func (r *CardRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*card.Card, error) {
	query := `
		SELECT id, user_id, name, closing_day, due_day, created_at, updated_at
		FROM cards
		WHERE user_id = $1
		ORDER BY created_at
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	defer rows.Close()

	var cards []*card.Card
	for rows.Next() {
		var c card.Card
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.ClosingDay, &c.DueDay, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		cards = append(cards, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cards: %w", err)
	}

	return cards, nil
}

// Update persists the mutable fields of a card
func (r *CardRepository) Update(ctx context.Context, c *card.Card) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid card: %w", err)
	}

	query := `
		UPDATE cards
		SET name = $2, closing_day = $3, due_day = $4, updated_at = $5
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, c.ID, c.Name, c.ClosingDay, c.DueDay, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update card: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return card.ErrCardNotFound
	}

	return nil
}

// Delete removes a card
func (r *CardRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM cards WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete card: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return card.ErrCardNotFound
	}

	return nil
}
