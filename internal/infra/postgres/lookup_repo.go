package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kislikjeka/duetrack/internal/lookup"
)

// LookupRepository implements lookup.Provider against the reference tables
// owned by the external CRUD collaborators
type LookupRepository struct {
	pool *pgxpool.Pool
}

// NewLookupRepository creates a new PostgreSQL lookup repository
func NewLookupRepository(pool *pgxpool.Pool) *LookupRepository {
	return &LookupRepository{pool: pool}
}

// CategoryName resolves a category ID to its display name
func (r *LookupRepository) CategoryName(ctx context.Context, id uuid.UUID) (string, error) {
	return r.nameFrom(ctx, "categories", id)
}

// ContactName resolves a contact ID to its display name
func (r *LookupRepository) ContactName(ctx context.Context, id uuid.UUID) (string, error) {
	return r.nameFrom(ctx, "contacts", id)
}

// CostCenterName resolves a cost center ID to its display name
func (r *LookupRepository) CostCenterName(ctx context.Context, id uuid.UUID) (string, error) {
	return r.nameFrom(ctx, "cost_centers", id)
}

func (r *LookupRepository) nameFrom(ctx context.Context, table string, id uuid.UUID) (string, error) {
	// table is always one of the three fixed reference tables above
	query := fmt.Sprintf(`SELECT name FROM %s WHERE id = $1`, table)

	var name string
	err := r.pool.QueryRow(ctx, query, id).Scan(&name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", lookup.ErrNameNotFound
		}
		return "", fmt.Errorf("failed to resolve name from %s: %w", table, err)
	}

	return name, nil
}
