package errors

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestErrorHandler(t *testing.T) {
	logger := zap.NewNop()

	tests := []struct {
		name         string
		handler      http.Handler
		expectedCode int
	}{
		{
			name: "normal handler",
			handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}),
			expectedCode: http.StatusOK,
		},
		{
			name: "panicking handler",
			handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				panic("test panic")
			}),
			expectedCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/gemini", nil)
			rr := httptest.NewRecorder()
			rr.Header().Set(RequestIDHeader, "test-request-id")

			ErrorHandler(logger)(tt.handler).ServeHTTP(rr, req)

			if rr.Code != tt.expectedCode {
				t.Errorf("handler returned wrong status code: got %v want %v",
					rr.Code, tt.expectedCode)
			}
			if tt.expectedCode == http.StatusInternalServerError &&
				!strings.Contains(rr.Body.String(), MsgGeneric) {
				t.Errorf("expected generic message, got %s", rr.Body.String())
			}
		})
	}
}

func TestLogError(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	logger := zap.New(core)
	requestID := "test-request-id"

	LogError(logger, NewUpstreamError(requestID, http.ErrHandlerTimeout), requestID)
	LogError(logger, http.ErrBodyNotAllowed, requestID)

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 log entries, got %d", len(entries))
	}
	if entries[0].Message != "request error" {
		t.Errorf("unexpected message %q", entries[0].Message)
	}
	if got := entries[0].ContextMap()["error_type"]; got != string(UpstreamError) {
		t.Errorf("error_type = %v, want %v", got, UpstreamError)
	}
	if entries[1].Message != "unexpected error" {
		t.Errorf("unexpected message %q", entries[1].Message)
	}
}
