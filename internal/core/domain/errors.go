package domain

import (
	"errors"
	"fmt"
)

// Error represents a gateway error with a structured error code.
// The numeric suffix of the code mirrors the HTTP status class the
// error is surfaced as (4010 -> 401, 4030 -> 403, 5000 -> 500, ...).
type Error struct {
	Code    string // Error code (e.g. "AG-AUTH-4011")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches errors by code so sentinel comparisons survive WithDetails
// and WithCause copies.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewError creates a new Error with the given code and message.
func NewError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithDetails returns a copy of the error with additional details.
func (e *Error) WithDetails(details string) *Error {
	return &Error{Code: e.Code, Message: e.Message, Details: details, Cause: e.Cause}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *Error) WithCause(cause error) *Error {
	return &Error{Code: e.Code, Message: e.Message, Details: e.Details, Cause: cause}
}

// ErrorCode extracts the code from an error if it is a domain Error.
// Returns an empty string otherwise.
func ErrorCode(err error) string {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Code
	}
	return ""
}

// Sentinel errors for the gateway failure classes.
var (
	// Client authentication and authorization.
	ErrMissingKey       = NewError("AG-AUTH-4010", "missing API key")
	ErrInvalidKey       = NewError("AG-AUTH-4011", "invalid API key")
	ErrKeyDisabled      = NewError("AG-AUTH-4012", "API key disabled")
	ErrInvalidAdminKey  = NewError("AG-AUTH-4013", "invalid admin key")
	ErrServiceForbidden = NewError("AG-AUTH-4030", "service not allowed for this key")

	// Registry lookups.
	ErrUnknownService = NewError("AG-SVC-4040", "unknown service alias")
	ErrUnknownClient  = NewError("AG-CLI-4040", "unknown client key")

	// Operator-side misconfiguration. Never a client fault.
	ErrServiceMisconfigured = NewError("AG-SVC-5000", "service misconfigured")
	ErrGatewayMisconfigured = NewError("AG-CFG-5000", "gateway misconfigured")

	// Upstream failures.
	ErrUpstreamAuth        = NewError("AG-UPS-5001", "upstream authentication failed")
	ErrUpstreamUnavailable = NewError("AG-UPS-5002", "upstream unavailable")
	ErrUpstreamRejected    = NewError("AG-UPS-4000", "upstream rejected request")

	// Request validation.
	ErrInvalidArgument = NewError("AG-ARG-4001", "invalid argument")
)
