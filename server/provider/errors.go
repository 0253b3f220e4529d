package provider

import (
	"errors"
	"fmt"
)

var (
	// ErrBreakerOpen is returned without calling upstream while the circuit breaker is open.
	ErrBreakerOpen = errors.New("upstream circuit breaker is open")

	// ErrMalformedResponse wraps decode failures of a 2xx response body.
	ErrMalformedResponse = errors.New("malformed upstream response")
)

// StatusError is returned when upstream answers with a non-2xx status.
// Body holds the (truncated) upstream error payload for server-side logs.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream status %d: %s", e.StatusCode, e.Body)
}
