package provider

import (
	"github.com/sony/gobreaker"
	"github.com/teilomillet/relay/config"
	"go.uber.org/zap"
)

func newBreaker(cfg config.CircuitBreakerConfig, c *Client) *gobreaker.CircuitBreaker {
	threshold := cfg.FailureThreshold
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "gemini",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn("Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			if c.metrics != nil {
				c.metrics.BreakerState.Set(float64(to))
			}
		},
	})
}
