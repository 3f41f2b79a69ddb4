// Package breaker builds circuit breakers for outbound API clients.
package breaker

import (
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/osa030/stairway/internal/infra/metrics"
)

// Settings configures when a breaker opens and how long it stays open.
type Settings struct {
	MaxRequests     uint32        // Requests allowed through in half-open state
	Interval        time.Duration // Closed-state window after which counts reset
	Timeout         time.Duration // Open-state duration before probing again
	FailureRatio    float64       // Failure ratio that opens the breaker
	MinimumRequests uint32        // Requests needed before the ratio is considered
}

// New creates a circuit breaker that reports state changes to logs and metrics.
// isSuccessful decides which errors count as failures; nil counts every error.
func New[T any](name string, s Settings, isSuccessful func(err error) bool) *gobreaker.CircuitBreaker[T] {
	if s.FailureRatio <= 0 {
		s.FailureRatio = 0.6
	}
	if s.MinimumRequests == 0 {
		s.MinimumRequests = 10
	}
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	return gobreaker.NewCircuitBreaker[T](gobreaker.Settings{
		Name:        name,
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < s.MinimumRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= s.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			zlog.Warn().Msgf("circuit breaker state change: name=%s from=%s to=%s", name, from, to)
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
		IsSuccessful: isSuccessful,
	})
}

// IsRejection reports whether err came from an open or saturated breaker.
func IsRejection(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

func stateValue(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
