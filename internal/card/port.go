package card

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence operations for cards
type Repository interface {
	Create(ctx context.Context, c *Card) error
	GetByID(ctx context.Context, id uuid.UUID) (*Card, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Card, error)
	Update(ctx context.Context, c *Card) error
	Delete(ctx context.Context, id uuid.UUID) error
}
