// Package retry runs an operation repeatedly until it succeeds, fails with a
// non-retriable error, or exhausts its retry budget.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ivknv/yadisk-go/apierr"
	"github.com/ivknv/yadisk-go/logger"
)

// Strategy decides how the engine waits between attempts
type Strategy int

const (
	// Blocking sleeps the calling goroutine and ignores cancellation while sleeping
	Blocking Strategy = iota
	// Suspending waits on a timer and returns early when the context is done
	Suspending
)

func (s Strategy) String() string {
	if s == Suspending {
		return "suspending"
	}
	return "blocking"
}

// Sleep waits for d using the strategy. A non-positive d returns immediately.
func (s Strategy) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	if s == Blocking {
		time.Sleep(d)
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Predicate reports whether an error should trigger a retry in addition to
// the default retriable set
type Predicate func(error) bool

// Policy is a retry budget. MaxRetries of 0 means exactly one attempt.
type Policy struct {
	MaxRetries int
	Interval   time.Duration
	RetryOn    []Predicate
	Strategy   Strategy
	Logger     logger.Logger
}

// RetryOnKinds retries on errors of the given kinds (or their descendants)
func RetryOnKinds(kinds ...apierr.Kind) Predicate {
	return func(err error) bool {
		for _, k := range kinds {
			if apierr.IsKind(err, k) {
				return true
			}
		}
		return false
	}
}

// RetryOnErrors retries on errors matching any target with errors.Is
func RetryOnErrors(targets ...error) Predicate {
	return func(err error) bool {
		for _, target := range targets {
			if errors.Is(err, target) {
				return true
			}
		}
		return false
	}
}

// ExhaustedError wraps the final error once at least one retry was made.
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%v (got the error after %d retry attempts)", e.Err, e.Attempts)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// Op is an operation run by the engine
type Op[T any] func(ctx context.Context) (T, error)

// Sync adapts a plain callable that ignores the context
func Sync[T any](fn func() (T, error)) Op[T] {
	return func(context.Context) (T, error) {
		return fn()
	}
}

// Do runs op under the policy.
//
// An error is retried when it is a retriable apierr.Error or matches one of
// p.RetryOn, and it does not carry DisableRetry. Any other error is returned
// as is after a single attempt. A cancelled context stops the Suspending
// strategy between attempts.
func Do[T any](ctx context.Context, p Policy, op Op[T]) (T, error) {
	log := p.Logger
	if log == nil {
		log = logger.Nop()
	}
	maxRetries := max(p.MaxRetries, 0)

	for i := 0; ; i++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		if !p.shouldRetry(err) {
			return result, err
		}

		if i == maxRetries || retryDisabled(err) {
			log.Info().
				Err(err).
				Int("attempt", i+1).
				Int("max_retries", maxRetries).
				Msgf("not triggering an automatic retry: (%d out of %d)", i+1, maxRetries)
			if i > 0 {
				return result, &ExhaustedError{Attempts: i, Err: err}
			}
			return result, err
		}

		log.Info().
			Err(err).
			Int("attempt", i+1).
			Int("max_retries", maxRetries).
			Msgf("automatic retry triggered: (%d out of %d)", i+1, maxRetries)

		if err := p.Strategy.Sleep(ctx, p.Interval); err != nil {
			var zero T
			return zero, err
		}
	}
}

// Run is Do for operations without a result
func Run(ctx context.Context, p Policy, op func(ctx context.Context) error) error {
	_, err := Do(ctx, p, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

func (p Policy) shouldRetry(err error) bool {
	var apiErr *apierr.Error
	if errors.As(err, &apiErr) && apiErr.Kind.Retriable() {
		return true
	}
	for _, pred := range p.RetryOn {
		if pred != nil && pred(err) {
			return true
		}
	}
	return false
}

// retryDisabled reports whether err explicitly opted out of retries
func retryDisabled(err error) bool {
	var apiErr *apierr.Error
	return errors.As(err, &apiErr) && apiErr.DisableRetry
}
