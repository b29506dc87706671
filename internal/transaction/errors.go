package transaction

import "errors"

// Entry and model validation errors
var (
	ErrInvalidUserID         = errors.New("invalid user ID")
	ErrInvalidKind           = errors.New("invalid transaction kind")
	ErrInvalidAmount         = errors.New("amount must be positive")
	ErrInvalidDueDate        = errors.New("due date is required")
	ErrInvalidRecurrenceType = errors.New("invalid recurrence type")
	ErrInvalidRecurrence     = errors.New("recurrence count must be at least 1")
	ErrInvalidInterval       = errors.New("custom recurrence interval must be at least 1 day")
	ErrInvalidInstallments   = errors.New("installment count must be at least 1")
	ErrConflictingSchedule   = errors.New("recurring and installment schedules are mutually exclusive")
	ErrEmptyDescription      = errors.New("description is required")
)

// Settlement state errors
var (
	ErrAlreadyPaid             = errors.New("transaction is already paid")
	ErrNotPaid                 = errors.New("transaction is not paid")
	ErrMissingTargetReference  = errors.New("payment type requires a target reference")
	ErrInvalidPaidAmount       = errors.New("paid amount must be positive")
	ErrConflictingTargetRef    = errors.New("payment must reference exactly one settlement target")
	ErrTransactionNotFound     = errors.New("transaction not found")
	ErrCardNotFound            = errors.New("card not found")
	ErrBankAccountNotFound     = errors.New("bank account not found")
	ErrUnauthorized            = errors.New("transaction does not belong to user")
)
