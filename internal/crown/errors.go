package crown

import "errors"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an error that did not originate in this package.
	CodeUnknown Code = "UNKNOWN"

	// Read path
	CodeQueryFailed Code = "QUERY_FAILED"

	// Claim path
	CodeNotAuthenticated   Code = "NOT_AUTHENTICATED"
	CodeInvalidInput       Code = "INVALID_INPUT"
	CodeSubmissionRejected Code = "SUBMISSION_REJECTED"
	CodeClaimInFlight      Code = "CLAIM_IN_FLIGHT"
	CodeStateUnknown       Code = "STATE_UNKNOWN"
)

// Error is the domain error type. Two errors match under errors.Is when
// their codes are equal, so callers test against the Err* sentinels.
type Error struct {
	Code      Code   // Machine-readable error code
	Message   string // Human-readable summary
	Cancelled bool   // SUBMISSION_REJECTED only: the user declined to sign
	Cause     error  // Wrapped underlying error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a domain error with a code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap creates a domain error that wraps an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// Sentinels for errors.Is checks.
var (
	ErrQuery              = New(CodeQueryFailed, "crown state query failed")
	ErrNotAuthenticated   = New(CodeNotAuthenticated, "not signed in")
	ErrInvalidInput       = New(CodeInvalidInput, "invalid claim message")
	ErrSubmissionRejected = New(CodeSubmissionRejected, "claim submission rejected")
	ErrClaimInFlight      = New(CodeClaimInFlight, "a claim is already being submitted")
	ErrStateUnknown       = New(CodeStateUnknown, "crown state not loaded yet")
)

// CodeOf returns the code carried by err, or CodeUnknown.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}

// IsCancelled reports whether err is a submission the user declined to sign.
func IsCancelled(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == CodeSubmissionRejected && e.Cancelled
}
