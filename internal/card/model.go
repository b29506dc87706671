package card

import (
	"time"

	"github.com/google/uuid"
)

// Card holds a credit card's billing-cycle anchor days. ClosingDay is the
// day of month the statement closes; DueDay is the day of month the closed
// statement becomes payable.
type Card struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	Name       string
	ClosingDay int
	DueDay     int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Validate checks the card's cycle parameters
func (c *Card) Validate() error {
	if c.UserID == uuid.Nil {
		return ErrInvalidUserID
	}
	if c.Name == "" {
		return ErrEmptyName
	}
	if c.ClosingDay < 1 || c.ClosingDay > 31 {
		return ErrInvalidClosingDay
	}
	if c.DueDay < 1 || c.DueDay > 31 {
		return ErrInvalidDueDay
	}
	return nil
}
