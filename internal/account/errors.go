package account

import "errors"

var (
	ErrInvalidUserID   = errors.New("invalid user ID")
	ErrEmptyName       = errors.New("account name is required")
	ErrAccountNotFound = errors.New("bank account not found")
)
