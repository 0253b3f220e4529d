package errors

import (
	"net/http"
)

// NewError creates a RelayError with full control over its fields.
func NewError(errType ErrorType, message string, code int, requestID string, err error) *RelayError {
	return &RelayError{
		Type:      errType,
		Message:   message,
		Code:      code,
		RequestID: requestID,
		err:       err,
	}
}

// NewValidationError reports a missing or empty inbound message.
//
// Example:
//
//	err := NewValidationError("req_123", decodeErr)
func NewValidationError(requestID string, err error) *RelayError {
	return &RelayError{
		Type:      ValidationError,
		Message:   MsgNoMessage,
		Code:      http.StatusBadRequest,
		RequestID: requestID,
		err:       err,
	}
}

// NewUpstreamError reports a failed call to the generative API. The cause is
// kept for logging only; the client sees MsgGeneric.
func NewUpstreamError(requestID string, err error) *RelayError {
	return &RelayError{
		Type:      UpstreamError,
		Message:   MsgGeneric,
		Code:      http.StatusInternalServerError,
		RequestID: requestID,
		err:       err,
	}
}

// NewInternalError reports an unexpected failure such as a recovered panic.
func NewInternalError(requestID string, err error) *RelayError {
	return &RelayError{
		Type:      InternalError,
		Message:   MsgGeneric,
		Code:      http.StatusInternalServerError,
		RequestID: requestID,
		err:       err,
	}
}
