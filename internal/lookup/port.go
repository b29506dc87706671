// Package lookup defines the read-only name-resolution ports for the
// reference dimensions owned by external collaborators: categories,
// contacts, and cost centers. The settlement core only ever needs their
// display names (to compose statement-charge descriptions); the full CRUD
// for these tables lives outside this service.
package lookup

import (
	"context"

	"github.com/google/uuid"
)

// Provider resolves dimension IDs to display names. Implementations return
// ErrNameNotFound for unknown ids; callers composing descriptions treat a
// missing name as an empty string.
type Provider interface {
	CategoryName(ctx context.Context, id uuid.UUID) (string, error)
	ContactName(ctx context.Context, id uuid.UUID) (string, error)
	CostCenterName(ctx context.Context, id uuid.UUID) (string, error)
}
