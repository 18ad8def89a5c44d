package realtime

import "errors"

// Failure taxonomy for relay operations. Handlers map these onto *_error
// events sent to the originating connection only.
type ErrorCode string

const (
	CodeUnauthorized ErrorCode = "unauthorized"
	CodeNotFound     ErrorCode = "not_found"
	CodePersistence  ErrorCode = "persistence"
	CodeValidation   ErrorCode = "validation"
)

type Error struct {
	Code    ErrorCode
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

func Unauthorized(msg string) *Error {
	return &Error{Code: CodeUnauthorized, Message: msg}
}

func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

func Persistence(cause error) *Error {
	return &Error{Code: CodePersistence, Message: "persistence failure", cause: cause}
}

func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// CodeOf extracts the taxonomy code, defaulting to persistence for
// unclassified errors.
func CodeOf(err error) ErrorCode {
	var re *Error
	if errors.As(err, &re) {
		return re.Code
	}
	return CodePersistence
}
