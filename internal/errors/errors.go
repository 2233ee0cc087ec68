package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents an Armina error code.
type ErrorCode string

const (
	ErrInvalidRequest  ErrorCode = "INVALID_REQUEST"   // 400
	ErrNoSelection     ErrorCode = "NO_SELECTION"      // 400
	ErrNotFound        ErrorCode = "NOT_FOUND"         // 404
	ErrFileNotFound    ErrorCode = "FILE_NOT_FOUND"    // 404
	ErrSessionFinished ErrorCode = "SESSION_FINISHED"  // 409
	ErrEmptyCapsule    ErrorCode = "EMPTY_CAPSULE"     // 412
	ErrQuizParseFailed ErrorCode = "QUIZ_PARSE_FAILED" // 422
	ErrInvalidExport   ErrorCode = "INVALID_EXPORT"    // 422
	ErrCancelled       ErrorCode = "CANCELLED"         // 499
	ErrInternal        ErrorCode = "INTERNAL"          // 500
)

// ArminaError represents a structured error with code, status, and details.
type ArminaError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *ArminaError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *ArminaError {
	return &ArminaError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNoSelection creates a 400 error for a quiz submission without a chosen option.
func NewNoSelection() *ArminaError {
	return &ArminaError{
		Code:    ErrNoSelection,
		Status:  400,
		Message: "select an answer first",
	}
}

// NewNotFound creates a 404 error for when a capsule cannot be found.
func NewNotFound(identifier string) *ArminaError {
	return &ArminaError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("capsule not found: %s", identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewSessionNotFound creates a 404 error for an unknown or expired learn session.
func NewSessionNotFound(id string) *ArminaError {
	return &ArminaError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("learn session not found: %s", id),
		Details: map[string]any{"session_id": id},
	}
}

// NewFileNotFound creates a 404 error for a missing import file.
func NewFileNotFound(path string) *ArminaError {
	return &ArminaError{
		Code:    ErrFileNotFound,
		Status:  404,
		Message: fmt.Sprintf("file not found: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewSessionFinished creates a 409 error for submissions after the quiz has ended.
func NewSessionFinished(score, total int) *ArminaError {
	return &ArminaError{
		Code:    ErrSessionFinished,
		Status:  409,
		Message: fmt.Sprintf("quiz already finished with score %d/%d; start a new session to play again", score, total),
		Details: map[string]any{"score": score, "total": total},
	}
}

// NewEmptyCapsule creates a 412 error asking the caller to confirm saving a capsule with no content.
func NewEmptyCapsule() *ArminaError {
	return &ArminaError{
		Code:    ErrEmptyCapsule,
		Status:  412,
		Message: "no content provided; confirm to save an empty capsule",
	}
}

// NewQuizParseFailed creates a 422 error for malformed quiz JSON.
func NewQuizParseFailed(err error) *ArminaError {
	e := &ArminaError{
		Code:    ErrQuizParseFailed,
		Status:  422,
		Message: "quiz JSON is invalid; please follow the example format",
	}
	if err != nil {
		e.Details = map[string]any{"reason": err.Error()}
	}
	return e
}

// NewInvalidExport creates a 422 error for an import document that is not a valid export.
func NewInvalidExport(msg string) *ArminaError {
	return &ArminaError{
		Code:    ErrInvalidExport,
		Status:  422,
		Message: msg,
	}
}

// NewCancelled creates a 499 error when an operation is interrupted by its context.
func NewCancelled(op string) *ArminaError {
	return &ArminaError{
		Code:    ErrCancelled,
		Status:  499,
		Message: fmt.Sprintf("%s cancelled", op),
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *ArminaError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &ArminaError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is (or wraps) an ArminaError with the given code.
func Is(err error, code ErrorCode) bool {
	var aErr *ArminaError
	if stderrors.As(err, &aErr) {
		return aErr.Code == code
	}
	return false
}
