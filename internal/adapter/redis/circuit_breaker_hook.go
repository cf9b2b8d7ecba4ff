package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/failsafe-go/failsafe-go/circuitbreaker"
	goredis "github.com/redis/go-redis/v9"
)

// BreakerRecorder receives circuit breaker transitions.
type BreakerRecorder interface {
	BreakerStateChanged(state string, value float64)
}

// CircuitBreakerHook fails Redis commands fast while Redis is unhealthy. A
// cache miss (goredis.Nil) counts as success. Callers treat the returned
// error like any other Redis failure and fall back to their own source.
type CircuitBreakerHook struct {
	cb circuitbreaker.CircuitBreaker[any]
}

var _ goredis.Hook = (*CircuitBreakerHook)(nil)

// NewCircuitBreakerHook opens at a 60% failure rate over at least 5 requests
// in a 10s window, probes again after 30s and closes after one success.
// recorder may be nil.
func NewCircuitBreakerHook(recorder BreakerRecorder) *CircuitBreakerHook {
	cb := circuitbreaker.NewBuilder[any]().
		WithFailureRateThreshold(0.6, 5, 10*time.Second).
		WithDelay(30 * time.Second).
		WithSuccessThreshold(1).
		OnStateChanged(func(e circuitbreaker.StateChangedEvent) {
			slog.Warn("Circuit breaker state changed",
				"component", "redis",
				"from", e.OldState.String(),
				"to", e.NewState.String(),
			)
			if recorder != nil {
				recorder.BreakerStateChanged(e.NewState.String(), stateToFloat(e.NewState))
			}
		}).
		Build()

	return &CircuitBreakerHook{cb: cb}
}

func stateToFloat(state circuitbreaker.State) float64 {
	switch state {
	case circuitbreaker.ClosedState:
		return 0
	case circuitbreaker.HalfOpenState:
		return 1
	case circuitbreaker.OpenState:
		return 2
	default:
		return -1
	}
}

func (h *CircuitBreakerHook) DialHook(next goredis.DialHook) goredis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		if !h.cb.TryAcquirePermit() {
			return nil, fmt.Errorf("redis circuit breaker open: %w", circuitbreaker.ErrOpen)
		}
		conn, err := next(ctx, network, addr)
		if err != nil {
			h.cb.RecordError(err)
			return nil, fmt.Errorf("circuit breaker dial failed: %w", err)
		}
		h.cb.RecordSuccess()
		return conn, nil
	}
}

func (h *CircuitBreakerHook) ProcessHook(next goredis.ProcessHook) goredis.ProcessHook {
	return func(ctx context.Context, cmd goredis.Cmder) error {
		if !h.cb.TryAcquirePermit() {
			return fmt.Errorf("redis circuit breaker open for %s: %w", cmd.Name(), circuitbreaker.ErrOpen)
		}

		err := next(ctx, cmd)
		if err != nil && !errors.Is(err, goredis.Nil) {
			h.cb.RecordError(err)
			return err
		}
		h.cb.RecordSuccess()
		return err
	}
}

func (h *CircuitBreakerHook) ProcessPipelineHook(next goredis.ProcessPipelineHook) goredis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []goredis.Cmder) error {
		if !h.cb.TryAcquirePermit() {
			return fmt.Errorf("redis circuit breaker open: %w", circuitbreaker.ErrOpen)
		}

		err := next(ctx, cmds)
		if err != nil && !errors.Is(err, goredis.Nil) {
			h.cb.RecordError(err)
			return fmt.Errorf("circuit breaker pipeline failed: %w", err)
		}
		h.cb.RecordSuccess()
		return err
	}
}

// State returns the current state of the circuit breaker.
func (h *CircuitBreakerHook) State() circuitbreaker.State {
	return h.cb.State()
}
