// Package retry runs an operation with exponential backoff, letting the
// caller classify each failure as permanent, transient or rate-limited.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
)

type Action int

const (
	Stop  Action = iota // permanent error, abort immediately
	Retry               // transient error, use normal backoff
	After               // rate-limited, use longer backoff
)

type Policy struct {
	MaxAttempts      int
	InitialBackoff   time.Duration
	RateLimitBackoff time.Duration
	// MaxBackoff caps the doubled backoff. Zero means no cap.
	MaxBackoff time.Duration
	OnRetry    func(attempt int, err error, backoff time.Duration)
	// Clock defaults to the real clock.
	Clock clockwork.Clock
}

// RetryAfterError is implemented by errors that carry a server-provided
// wait, such as an HTTP Retry-After header. It only applies to After.
type RetryAfterError interface {
	error
	RetryAfter() time.Duration
}

type Classify func(err error) Action
type Operation[T any] func(ctx context.Context) (T, error)
type VoidOperation func(ctx context.Context) error

var ErrNoAttempts = errors.New("retry: MaxAttempts must be at least 1")

func Do[T any](ctx context.Context, p Policy, classify Classify, op Operation[T]) (T, error) {
	var zero T
	if p.MaxAttempts < 1 {
		return zero, ErrNoAttempts
	}
	clock := p.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	backoff := p.InitialBackoff
	for attempt := 1; ; attempt++ {
		val, err := op(ctx)
		if err == nil {
			return val, nil
		}

		action := classify(err)
		if action == Stop {
			return zero, &PermanentError{Err: err}
		}
		if attempt == p.MaxAttempts {
			return zero, fmt.Errorf("failed after %d attempts: %w", p.MaxAttempts, err)
		}

		wait := backoff
		if action == After {
			wait = p.RateLimitBackoff
			var hinted RetryAfterError
			if errors.As(err, &hinted) && hinted.RetryAfter() > 0 {
				wait = hinted.RetryAfter()
			}
		}
		if p.MaxBackoff > 0 && wait > p.MaxBackoff {
			wait = p.MaxBackoff
		}

		if p.OnRetry != nil {
			p.OnRetry(attempt, err, wait)
		}

		select {
		case <-clock.After(wait):
			backoff *= 2
		case <-ctx.Done():
			return zero, fmt.Errorf("context cancelled during retry: %w", ctx.Err())
		}
	}
}

func DoVoid(ctx context.Context, p Policy, classify Classify, op VoidOperation) error {
	_, err := Do(ctx, p, classify, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }
