package services

import "errors"

// Sentinel errors surfaced by the lending services. Handlers translate these
// into response codes with errors.Is.
var (
	// ErrNotFound indicates the referenced record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateRequest indicates the user already has an open request
	// for the same book.
	ErrDuplicateRequest = errors.New("duplicate request for this book")

	// ErrInvalidTransition indicates the record is not in a status that
	// permits the attempted operation.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrOutOfStock indicates no copies are available to issue.
	ErrOutOfStock = errors.New("no copies available")

	// ErrInvariantViolation indicates the inventory ledger and the issue
	// records have diverged. It signals a defect, not a user error.
	ErrInvariantViolation = errors.New("inventory invariant violation")

	// ErrAlreadyResolved indicates the fine has already been paid or waived.
	ErrAlreadyResolved = errors.New("fine already resolved")

	// ErrForbidden indicates the caller does not own the record or lacks
	// the role the operation requires.
	ErrForbidden = errors.New("operation not permitted for this user")

	// ErrValidation indicates the input failed a domain rule that binding
	// tags cannot express, such as a too-short waiver reason.
	ErrValidation = errors.New("validation failed")

	// ErrAlreadyExists indicates a unique field, such as a book code,
	// is already taken.
	ErrAlreadyExists = errors.New("record already exists")
)
