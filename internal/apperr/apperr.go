// Package apperr defines the error taxonomy carried across the pipeline
// and out through the HTTP envelope described in spec.md section 6/7.
package apperr

import "fmt"

// Code is one of the four error codes the API surface ever returns.
type Code string

const (
	CodeInvalidInput      Code = "INVALID_INPUT"
	CodeNoTransitRoute    Code = "NO_TRANSIT_ROUTE"
	CodeValidationError   Code = "VALIDATION_ERROR"
	CodeAPIError          Code = "API_ERROR"
)

// Error is the typed error the orchestrator and handlers exchange. It
// carries both an internal message (for logs) and a user-facing one (for
// the HTTP response), plus optional recovery suggestions.
type Error struct {
	Code            Code
	Message         string
	UserMessage     string
	RecoveryOptions []string
	cause           error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New builds an Error with no wrapped cause.
func New(code Code, message, userMessage string, recovery ...string) *Error {
	return &Error{Code: code, Message: message, UserMessage: userMessage, RecoveryOptions: recovery}
}

// Wrap builds an Error around an underlying cause.
func Wrap(code Code, cause error, message, userMessage string, recovery ...string) *Error {
	return &Error{Code: code, Message: message, UserMessage: userMessage, RecoveryOptions: recovery, cause: cause}
}

// InvalidInput is the canonical "could not interpret input / zero POIs"
// failure (spec 4.9 failure semantics, spec 7).
func InvalidInput(message string) *Error {
	return New(CodeInvalidInput, message,
		"We couldn't build an itinerary from that request. Try a different city or fewer constraints.",
		"retry_with_different_input")
}

// NoTransitRoute surfaces a routing-backend "no feasible route" result.
func NoTransitRoute(message string) *Error {
	return New(CodeNoTransitRoute, message,
		"No transit route is available for this trip.",
		"switch_transport_mode")
}

// Internal wraps any unexpected failure as a generic, retryable API error.
func Internal(cause error) *Error {
	return Wrap(CodeAPIError, cause, "internal error",
		"Something went wrong on our end. Please try again.",
		"retry")
}

// HTTPStatus maps a Code to the HTTP status the API layer should return.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeInvalidInput, CodeValidationError:
		return 400
	case CodeNoTransitRoute:
		return 422
	default:
		return 500
	}
}
