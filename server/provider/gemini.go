// Package provider implements the outbound call to the Gemini generateContent API.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"github.com/teilomillet/relay/config"
	"github.com/teilomillet/relay/server/metrics"
	"go.uber.org/zap"
)

// maxErrorBody caps how much of a failed upstream response is kept for logging.
const maxErrorBody = 64 << 10

// Client sends a single generateContent request per Generate call.
// It holds no per-request state and is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	url        string
	model      string
	logger     *zap.Logger
	metrics    *metrics.Metrics
	breaker    *gobreaker.CircuitBreaker
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithMetrics records upstream call counts and latency on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithCircuitBreaker guards upstream calls with a breaker built from cfg.
// It is a no-op when cfg.Enabled is false.
func WithCircuitBreaker(cfg config.CircuitBreakerConfig) Option {
	return func(c *Client) {
		if cfg.Enabled {
			c.breaker = newBreaker(cfg, c)
		}
	}
}

// NewClient builds a Client for the endpoint and model in cfg.
// The API key is sent as the "key" query parameter on every call.
func NewClient(cfg config.GeminiConfig, logger *zap.Logger, opts ...Option) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, config.ErrMissingAPIKey
	}

	u, err := url.Parse(fmt.Sprintf("%s/models/%s:generateContent",
		strings.TrimRight(cfg.Endpoint, "/"), url.PathEscape(cfg.Model)))
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	q := u.Query()
	q.Set("key", cfg.APIKey)
	u.RawQuery = q.Encode()

	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		url:        u.String(),
		model:      cfg.Model,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Generate sends message to the model and returns the first candidate's first
// text part. An absent text field yields "" with a nil error.
func (c *Client) Generate(ctx context.Context, message string) (string, error) {
	if c.breaker == nil {
		return c.generate(ctx, message)
	}

	v, err := c.breaker.Execute(func() (interface{}, error) {
		return c.generate(ctx, message)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			c.observe("breaker_open", 0)
			return "", fmt.Errorf("%w: %v", ErrBreakerOpen, err)
		}
		return "", err
	}
	return v.(string), nil
}

func (c *Client) generate(ctx context.Context, message string) (string, error) {
	body, err := json.Marshal(NewGenerateRequest(message))
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe("error", time.Since(start))
		// url.Error embeds the full URL, including the key.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			return "", fmt.Errorf("call %s: %w", c.model, uerr.Err)
		}
		return "", fmt.Errorf("call %s: %w", c.model, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.observe(statusClass(resp.StatusCode), time.Since(start))
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	var out GenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		c.observe("malformed", time.Since(start))
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	c.observe(statusClass(resp.StatusCode), time.Since(start))

	c.logger.Debug("Upstream call completed",
		zap.String("model", c.model),
		zap.Int("candidates", len(out.Candidates)),
		zap.Duration("duration", time.Since(start)),
	)

	return out.FirstText(), nil
}

func (c *Client) observe(result string, d time.Duration) {
	if c.metrics == nil {
		return
	}
	c.metrics.ObserveUpstream(result, d)
}

func statusClass(code int) string {
	return fmt.Sprintf("%dxx", code/100)
}
