package errors

import (
	"errors"
	"net/http"
	"testing"
)

func TestNewValidationError(t *testing.T) {
	requestID := "test-456"
	err := NewValidationError(requestID, nil)

	if err.Type != ValidationError {
		t.Errorf("Expected error type %v, got %v", ValidationError, err.Type)
	}
	if err.Message != "No message provided." {
		t.Errorf("Expected message %q, got %q", "No message provided.", err.Message)
	}
	if err.Code != http.StatusBadRequest {
		t.Errorf("Expected code %v, got %v", http.StatusBadRequest, err.Code)
	}
	if err.RequestID != requestID {
		t.Errorf("Expected requestID %v, got %v", requestID, err.RequestID)
	}
}

func TestNewUpstreamError(t *testing.T) {
	innerErr := errors.New("status 403: API key not valid")
	err := NewUpstreamError("test-789", innerErr)

	if err.Type != UpstreamError {
		t.Errorf("Expected error type %v, got %v", UpstreamError, err.Type)
	}
	if err.Code != http.StatusInternalServerError {
		t.Errorf("Expected code %v, got %v", http.StatusInternalServerError, err.Code)
	}
	if err.Message != "Something went wrong. Check API key or network." {
		t.Errorf("Unexpected message %q", err.Message)
	}
	if err.Unwrap() != innerErr {
		t.Errorf("Expected inner error %v, got %v", innerErr, err.Unwrap())
	}
}

func TestNewInternalError(t *testing.T) {
	err := NewInternalError("test-123", nil)

	if err.Type != InternalError {
		t.Errorf("Expected error type %v, got %v", InternalError, err.Type)
	}
	if err.Code != http.StatusInternalServerError {
		t.Errorf("Expected code %v, got %v", http.StatusInternalServerError, err.Code)
	}
	if err.Message != MsgGeneric {
		t.Errorf("Expected message %q, got %q", MsgGeneric, err.Message)
	}
}
