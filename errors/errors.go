// Package errors provides the error handling used across the relay.
//
// Every failure the relay reports to a client has the same wire shape as a
// successful reply:
//
//	{"response": "<user-facing message>"}
//
// The error type, request ID and any wrapped cause are kept on the RelayError
// value so they can be logged, but they are never serialized to the client.
//
// Basic usage:
//
//	errors.WriteError(w, errors.NewValidationError(requestID, nil))
//	errors.WriteError(w, errors.NewUpstreamError(requestID, err))
package errors

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// DefaultLogger is the package-wide zap logger. It can be overridden using SetLogger.
var DefaultLogger *zap.Logger

func init() {
	var err error
	DefaultLogger, err = zap.NewProduction()
	if err != nil {
		DefaultLogger = zap.NewNop()
	}
}

// SetLogger replaces DefaultLogger. A nil logger is ignored.
func SetLogger(logger *zap.Logger) {
	if logger != nil {
		DefaultLogger = logger
	}
}

// ErrorType categorizes a RelayError for logging and matching.
type ErrorType string

const (
	// ValidationError is a client input problem, such as a missing message.
	ValidationError ErrorType = "validation_error"

	// UpstreamError is any failure calling or decoding the generative API.
	UpstreamError ErrorType = "upstream_error"

	// InternalError is an unexpected failure inside the relay itself.
	InternalError ErrorType = "internal_error"
)

// User-facing messages. These are part of the HTTP contract.
const (
	MsgNoMessage = "No message provided."
	MsgGeneric   = "Something went wrong. Check API key or network."
)

// RelayError is the error type returned by relay handlers.
type RelayError struct {
	Type      ErrorType
	Message   string
	Code      int
	RequestID string

	err error
}

// Error implements the error interface.
func (e *RelayError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying cause.
func (e *RelayError) Unwrap() error {
	return e.err
}

// Is matches on Type only, so errors.Is(err, &RelayError{Type: UpstreamError}) works.
func (e *RelayError) Is(target error) bool {
	t, ok := target.(*RelayError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// Response is the JSON body written for both successes and failures.
type Response struct {
	Response string `json:"response"`
}

// WriteJSON writes v as JSON with the given status code.
func WriteJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		DefaultLogger.Error("failed to encode response", zap.Error(err))
	}
}

// WriteError writes err to w as {"response": err.Message}.
func WriteError(w http.ResponseWriter, err *RelayError) {
	WriteJSON(w, err.Code, Response{Response: err.Message})
}
