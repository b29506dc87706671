package transaction

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/kislikjeka/duetrack/internal/card"
)

// Repository defines the persistence operations the settlement core consumes
type Repository interface {
	// Create persists a single transaction row
	Create(ctx context.Context, tx *Transaction) error

	// CreateBatch persists a set of expanded rows in one round trip
	CreateBatch(ctx context.Context, txs []*Transaction) error

	// GetByID retrieves a transaction by ID
	GetByID(ctx context.Context, id uuid.UUID) (*Transaction, error)

	// Update persists the mutable settlement fields of a transaction
	Update(ctx context.Context, tx *Transaction) error

	// Delete removes a transaction row
	Delete(ctx context.Context, id uuid.UUID) error

	// List retrieves a user's transactions ordered by due date
	List(ctx context.Context, userID uuid.UUID, filters Filters) ([]*Transaction, error)

	// FindByOrigin retrieves the live statement charge spawned by the given
	// originating transaction, or nil when none exists
	FindByOrigin(ctx context.Context, originID uuid.UUID) (*Transaction, error)

	// Transaction management; the returned context carries the open Tx and
	// must be passed to subsequent repository calls
	BeginTx(ctx context.Context) (context.Context, error)
	CommitTx(ctx context.Context) error
	RollbackTx(ctx context.Context) error
}

// Filters narrows a transaction listing
type Filters struct {
	Kind        *Kind
	PaymentType *PaymentType
	IsPaid      *bool
	DueFrom     *time.Time
	DueTo       *time.Time
	Limit       int
	Offset      int
}

// CardStore is the card collaborator consumed when resolving a credit-card
// settlement's statement due date
type CardStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*card.Card, error)
}

// ContactLookup resolves a contact ID to its display name. Used only to
// compose statement-charge descriptions; a missing name degrades to an
// empty string, never to an error surfaced to the caller.
type ContactLookup interface {
	ContactName(ctx context.Context, id uuid.UUID) (string, error)
}
