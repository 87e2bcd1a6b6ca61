package scoring

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	ErrorInvalidScore     ErrorCode = "INVALID_SCORE"
	ErrorUnauthorized     ErrorCode = "UNAUTHORIZED"
	ErrorMalformedPayload ErrorCode = "MALFORMED_PAYLOAD"
	ErrorSinkUnavailable  ErrorCode = "SINK_UNAVAILABLE"
)

// Error is returned by Service operations. Reason and Err are for server
// logs only; callers facing a client must expose no more than Code.
type Error struct {
	Code   ErrorCode
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("scoring: %s (%s)", e.Code, e.Reason)
	}
	return fmt.Sprintf("scoring: %s (%s): %v", e.Code, e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newError(code ErrorCode, reason string, err error) *Error {
	return &Error{Code: code, Reason: reason, Err: err}
}

// CodeOf extracts the code of a scoring error; "" for anything else.
func CodeOf(err error) ErrorCode {
	var se *Error
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}
