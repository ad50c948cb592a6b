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

// ErrExtraction indicates that text could not be pulled out of a statement file
// (unreadable PDF, converter or OCR tool failure, timeout).
var ErrExtraction = errors.New("text extraction failed")

// ErrEmptyDocument indicates that a statement yielded only whitespace after every extraction strategy.
var ErrEmptyDocument = errors.New("statement document is empty")

// ErrNoTransactionsFound indicates that a statement had text but no recognizable transactions.
var ErrNoTransactionsFound = errors.New("no transactions found in statement")

// ErrUnknownParser indicates that no parser is registered for the declared statement type.
var ErrUnknownParser = errors.New("unknown statement parser")

// ErrMalformedStatement indicates that a statement row could not be parsed. The whole file is rejected.
var ErrMalformedStatement = errors.New("malformed statement")

// ErrInvalidStateTransition indicates an attempt to move an import batch out of a terminal state.
var ErrInvalidStateTransition = errors.New("invalid state transition")

// AppError carries an HTTP-ish status code alongside the underlying cause.
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

// NewAppError wraps err with a status code and message.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError returns an AppError matching ErrNotFound.
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: 404, Message: message, Err: ErrNotFound}
}

// NewValidationError returns an AppError matching ErrValidation.
func NewValidationError(message string) *AppError {
	return &AppError{Code: 400, Message: message, Err: ErrValidation}
}
