package service

import "fmt"

// Code classifies a service failure independently of the transport. The
// HTTP layer maps codes to statuses; other callers switch on them directly.
type Code string

const (
	CodeValidation         Code = "VALIDATION"
	CodeNotFound           Code = "NOT_FOUND"
	CodeForbidden          Code = "FORBIDDEN"
	CodeConflict           Code = "CONFLICT"
	CodeDuplicate          Code = "DUPLICATE"
	CodePreconditionFailed Code = "PRECONDITION_FAILED"
	CodeAmountMismatch     Code = "AMOUNT_MISMATCH"
	CodeInternal           Code = "INTERNAL"
)

type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

func newError(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

func wrapError(code Code, msg string, cause error) *Error {
	return &Error{Code: code, Message: msg, cause: cause}
}

func validationf(format string, args ...any) *Error {
	return newError(CodeValidation, fmt.Sprintf(format, args...))
}

// ConflictError reports an interval collision on a slot. BlockingBookingID
// identifies the booking already holding the window. For extensions,
// MaxAdditionalHours tells the caller how far the current booking could
// still grow; -1 means unbounded.
type ConflictError struct {
	BlockingBookingID  int64
	MaxAdditionalHours int
	Message            string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: %s (blocking booking %d)", CodeConflict, e.Message, e.BlockingBookingID)
}
