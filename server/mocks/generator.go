package mocks

import (
	"context"
	"sync"
)

// MockGenerator implements handlers.Generator for tests.
// It records every message it receives and delegates to GenerateFunc.
//
// Example usage:
//
//	gen := NewMockGenerator(func(ctx context.Context, msg string) (string, error) {
//	    return "mocked response", nil
//	})
type MockGenerator struct {
	GenerateFunc func(ctx context.Context, message string) (string, error)

	mu    sync.Mutex
	calls []string
}

// NewMockGenerator creates a MockGenerator. A nil generateFunc returns "" with no error.
func NewMockGenerator(generateFunc func(ctx context.Context, message string) (string, error)) *MockGenerator {
	return &MockGenerator{GenerateFunc: generateFunc}
}

// Generate records message and calls GenerateFunc.
func (m *MockGenerator) Generate(ctx context.Context, message string) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, message)
	m.mu.Unlock()

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, message)
	}
	return "", nil
}

// Calls returns a copy of the messages received so far.
func (m *MockGenerator) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}
