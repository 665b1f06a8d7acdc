package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a worklog error code.
type ErrorCode string

const (
	ErrInvalidRequest   ErrorCode = "INVALID_REQUEST"   // 400
	ErrInvalidTimestamp ErrorCode = "INVALID_TIMESTAMP" // 400
	ErrNotFound         ErrorCode = "NOT_FOUND"         // 404
	ErrFileNotFound     ErrorCode = "FILE_NOT_FOUND"    // 404
	ErrInProgress       ErrorCode = "IN_PROGRESS"       // 409
	ErrNotInProgress    ErrorCode = "NOT_IN_PROGRESS"   // 409
	ErrLastRecord       ErrorCode = "LAST_RECORD"       // 409
	ErrCancelled        ErrorCode = "CANCELLED"         // 499
	ErrInternal         ErrorCode = "INTERNAL"          // 500
)

// WorklogError represents a structured error with code, status, and details.
type WorklogError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *WorklogError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *WorklogError {
	return &WorklogError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewInvalidTimestamp creates a 400 error for an unparsable time-of-day edit.
func NewInvalidTimestamp(value string) *WorklogError {
	return &WorklogError{
		Code:    ErrInvalidTimestamp,
		Status:  400,
		Message: fmt.Sprintf("invalid time of day %q (expected HH:MM)", value),
		Details: map[string]any{"value": value},
	}
}

// NewNotFound creates a 404 error for when a record cannot be found.
func NewNotFound(id string) *WorklogError {
	return &WorklogError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("record not found: %s", id),
		Details: map[string]any{"id": id},
	}
}

// NewFileNotFound creates a 404 error for missing backup files.
func NewFileNotFound(path string) *WorklogError {
	return &WorklogError{
		Code:    ErrFileNotFound,
		Status:  404,
		Message: fmt.Sprintf("file not found: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewInProgress creates a 409 error for operations that require an idle store.
func NewInProgress(op string) *WorklogError {
	return &WorklogError{
		Code:    ErrInProgress,
		Status:  409,
		Message: fmt.Sprintf("%s: a record is already in progress", op),
		Details: map[string]any{"operation": op},
	}
}

// NewNotInProgress creates a 409 error for operations that require a running record.
func NewNotInProgress(op string) *WorklogError {
	return &WorklogError{
		Code:    ErrNotInProgress,
		Status:  409,
		Message: fmt.Sprintf("%s: no record is in progress", op),
		Details: map[string]any{"operation": op},
	}
}

// NewLastRecord creates a 409 error when removing the only remaining record.
func NewLastRecord(id string) *WorklogError {
	return &WorklogError{
		Code:    ErrLastRecord,
		Status:  409,
		Message: "cannot remove the last remaining record",
		Details: map[string]any{"id": id},
	}
}

// NewCancelled creates a 499 error when an operation is cancelled via context.
func NewCancelled(op string) *WorklogError {
	return &WorklogError{
		Code:    ErrCancelled,
		Status:  499,
		Message: fmt.Sprintf("%s cancelled", op),
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
// The message stays generic; the cause is kept in Details for logging.
func NewInternal(err error) *WorklogError {
	details := map[string]any{}
	if err != nil {
		details["internal_error"] = err.Error()
	}
	return &WorklogError{
		Code:    ErrInternal,
		Status:  500,
		Message: "an internal error occurred",
		Details: details,
	}
}

// Is checks if an error (or anything it wraps) is a WorklogError with the given code.
func Is(err error, code ErrorCode) bool {
	var wErr *WorklogError
	if stderrors.As(err, &wErr) {
		return wErr.Code == code
	}
	return false
}
