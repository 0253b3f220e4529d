// Package handlers provides HTTP handlers for the relay.
//
// RelayHandler accepts {"message": "..."}, forwards it to the generative API
// through a Generator, and answers {"response": "..."}. Every reply, including
// errors, has that one-field shape.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/teilomillet/relay/errors"
	"github.com/teilomillet/relay/server/middleware"
	"go.uber.org/zap"
)

// FallbackResponse is returned when upstream succeeds without any text.
const FallbackResponse = "No response from Gemini."

// maxBodyBytes bounds the inbound JSON body.
const maxBodyBytes = 1 << 20

// Generator produces a text reply for a single user message.
type Generator interface {
	Generate(ctx context.Context, message string) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, message string) (string, error)

// Generate calls f(ctx, message).
func (f GeneratorFunc) Generate(ctx context.Context, message string) (string, error) {
	return f(ctx, message)
}

// RelayRequest is the inbound request body.
type RelayRequest struct {
	Message string `json:"message" validate:"required"`
}

// RelayResponse is the reply body for success and failure alike.
type RelayResponse = errors.Response

// RelayHandler serves POST /gemini.
type RelayHandler struct {
	generator Generator
	validate  *validator.Validate
	logger    *zap.Logger
}

// NewRelayHandler creates a handler that forwards messages to generator.
func NewRelayHandler(generator Generator, logger *zap.Logger) *RelayHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RelayHandler{
		generator: generator,
		validate:  validator.New(),
		logger:    logger,
	}
}

// ServeHTTP implements http.Handler.
//
// A missing, empty or undecodable message is answered with 400 before any
// upstream call. Upstream failures are logged with full detail and answered
// with a fixed 500 message.
func (h *RelayHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	logger := h.logger.With(zap.String("request_id", requestID))

	var req RelayRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		logger.Debug("Undecodable request body", zap.Error(err))
		errors.WriteError(w, errors.NewValidationError(requestID, err))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		errors.WriteError(w, errors.NewValidationError(requestID, err))
		return
	}

	// The upstream call runs to completion even if the client goes away.
	ctx := context.WithoutCancel(r.Context())

	text, err := h.generator.Generate(ctx, req.Message)
	if err != nil {
		relayErr := errors.NewUpstreamError(requestID, err)
		errors.LogError(logger, relayErr, requestID)
		errors.WriteError(w, relayErr)
		return
	}

	if text == "" {
		text = FallbackResponse
	}

	errors.WriteJSON(w, http.StatusOK, RelayResponse{Response: text})
}
