package card

import "errors"

var (
	ErrInvalidUserID     = errors.New("invalid user ID")
	ErrEmptyName         = errors.New("card name is required")
	ErrInvalidClosingDay = errors.New("closing day must be between 1 and 31")
	ErrInvalidDueDay     = errors.New("due day must be between 1 and 31")
	ErrCardNotFound      = errors.New("card not found")
)
