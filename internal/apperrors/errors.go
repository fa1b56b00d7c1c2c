package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates the operation conflicts with the current state of the resource.
var ErrConflict = errors.New("resource state conflict")

// ErrInternal indicates an unexpected internal failure.
var ErrInternal = errors.New("internal error")

// Posting engine error taxonomy. Every error here is terminal for the
// triggering business event; retry policy belongs to the caller.
var (
	// ErrNoMatchingRule is returned when no active posting rule matches an
	// event's (sourceType, triggerEvent) selector. An unposted financial
	// event is a correctness defect, so this propagates as a hard error
	// rather than a best-effort skip.
	ErrNoMatchingRule = errors.New("no matching posting rule for event")

	// ErrUnknownAccountCode is returned when a rule line resolves to an
	// account code that does not exist in the tenant's chart of accounts.
	ErrUnknownAccountCode = errors.New("unknown account code")

	// ErrMissingRequiredField is returned when a rule references an event
	// payload field that is absent.
	ErrMissingRequiredField = errors.New("missing required event field")

	// ErrAmountEvaluation is returned when a line's amount expression cannot
	// be evaluated (division by zero, missing operand, type mismatch).
	ErrAmountEvaluation = errors.New("amount evaluation failed")

	// ErrUnbalancedEntry indicates an entry whose debit total does not equal
	// its credit total. Never auto-corrected; surfaced as an integrity alarm.
	ErrUnbalancedEntry = errors.New("journal entry debits do not equal credits")

	// ErrInvalidAccountReference indicates an entry line referencing an
	// account that is missing, inactive, or belongs to another tenant.
	ErrInvalidAccountReference = errors.New("invalid account reference")

	// ErrCorrectionChainCycle indicates a cycle in a correction chain. It
	// points at a rule-authoring bug or a concurrency defect and is surfaced
	// loudly, never swallowed.
	ErrCorrectionChainCycle = errors.New("correction chain contains a cycle")
)

// AppError wraps an underlying error with a status code and a message
// suitable for logging and API responses.
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

// Unwrap allows errors.Is/errors.As to see through AppError.
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError wrapping err.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}
