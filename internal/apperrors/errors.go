package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrForbidden indicates the caller is not allowed to perform the action.
var ErrForbidden = errors.New("forbidden")

// ErrInternal is a generic error returned when details must not leak to the caller.
var ErrInternal = errors.New("internal error")

// Ledger posting taxonomy.
var (
	// ErrImbalancedEntry means a draft's debits and credits differ. Always a mapping bug.
	ErrImbalancedEntry = errors.New("journal entry does not balance")

	// ErrDuplicateSource means a journal entry already exists for the (source_type, source_id) pair.
	ErrDuplicateSource = errors.New("journal entry already exists for source")

	// ErrUnmappablePosting means the payload or chart of accounts cannot produce an entry.
	ErrUnmappablePosting = errors.New("posting cannot be mapped to the chart of accounts")

	// ErrOriginalNotPosted means an adjusting event (a refund) arrived before the event it adjusts
	// was posted. It is transient: the queue retries until the original lands.
	ErrOriginalNotPosted = errors.New("original source has not been posted yet")

	// ErrClaimLost means an outbox item was reclaimed by another worker before this one finished.
	ErrClaimLost = errors.New("outbox item claim lost")
)

// AppError carries an HTTP-ish status code alongside a wrapped cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError creates an AppError wrapping ErrNotFound.
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: http.StatusNotFound, Message: message, Err: ErrNotFound}
}

// NewValidationError creates an AppError wrapping ErrValidation.
func NewValidationError(message string) *AppError {
	return &AppError{Code: http.StatusBadRequest, Message: message, Err: ErrValidation}
}

// IsPermanentPostingError reports whether retrying a posting can never succeed
// without an operator fixing the payload or the chart of accounts.
func IsPermanentPostingError(err error) bool {
	return errors.Is(err, ErrUnmappablePosting) ||
		errors.Is(err, ErrImbalancedEntry) ||
		errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrNotFound)
}
