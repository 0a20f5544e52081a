// Package operation polls asynchronous server-side operations until they
// finish, fail or run out of time.
package operation

import (
	"context"
	"errors"
	"time"

	"github.com/ivknv/yadisk-go/apierr"
	"github.com/ivknv/yadisk-go/logger"
	"github.com/ivknv/yadisk-go/model"
	"github.com/ivknv/yadisk-go/retry"
	"github.com/ivknv/yadisk-go/validation"
)

const (
	msgPollingTimeout = "Asynchronous operation did not complete in specified time"
	msgFailed         = "Asynchronous operation failed"
)

var errPollTimeout = errors.New("poll timeout")

// StatusFunc queries the current status of one operation
type StatusFunc func(ctx context.Context) (string, error)

// WaitFunc waits for the operation behind link
type WaitFunc func(ctx context.Context, link *model.OperationLink) error

// Options control polling
type Options struct {
	PollInterval time.Duration
	// PollTimeout of zero means no limit
	PollTimeout time.Duration
	Strategy    retry.Strategy
}

// Wait polls status until the operation leaves the in-progress state.
//
// A failed operation yields a retriable AsyncOperationFailed error, so that a
// retry around the call that started it repeats the whole action. Running out
// of PollTimeout yields a PollingTimeout error, which is never retried.
func Wait(ctx context.Context, status StatusFunc, opts Options) error {
	if opts.Strategy == retry.Suspending {
		return waitSuspending(ctx, status, opts)
	}
	return waitBlocking(ctx, status, opts)
}

func waitBlocking(ctx context.Context, status StatusFunc, opts Options) error {
	start := time.Now()
	for {
		s, err := status(ctx)
		if err != nil {
			return err
		}
		if s != validation.StatusInProgress {
			return finalStatus(s)
		}
		if opts.PollTimeout > 0 && time.Since(start) >= opts.PollTimeout {
			return apierr.NewPollingTimeoutError(msgPollingTimeout)
		}
		if err := retry.Blocking.Sleep(ctx, opts.PollInterval); err != nil {
			return err
		}
	}
}

// waitSuspending runs the whole poll inside one deadline
func waitSuspending(ctx context.Context, status StatusFunc, opts Options) error {
	pollCtx := ctx
	if opts.PollTimeout > 0 {
		var cancel context.CancelFunc
		pollCtx, cancel = context.WithTimeoutCause(ctx, opts.PollTimeout, errPollTimeout)
		defer cancel()
	}

	err := func() error {
		for {
			s, err := status(pollCtx)
			if err != nil {
				return err
			}
			if s != validation.StatusInProgress {
				return finalStatus(s)
			}
			if err := retry.Suspending.Sleep(pollCtx, opts.PollInterval); err != nil {
				return err
			}
		}
	}()

	if err != nil && ctx.Err() == nil && errors.Is(context.Cause(pollCtx), errPollTimeout) {
		return apierr.NewPollingTimeoutError(msgPollingTimeout)
	}
	return err
}

func finalStatus(s string) error {
	if s == validation.StatusSuccess {
		return nil
	}
	return apierr.NewAsyncOperationFailedError(msgFailed)
}

// Carrier is implemented by results that may hold a pending operation
type Carrier interface {
	PendingOperation() *model.OperationLink
}

// Then waits for the operation carried by result, if there is one, and
// returns result unchanged.
//
// Errors other than a failed operation get DisableRetry: the call that
// started the operation succeeded and must not be repeated because the
// wait itself broke down.
func Then[T any](ctx context.Context, result T, log logger.Logger, wait WaitFunc) (T, error) {
	c, ok := any(result).(Carrier)
	if !ok {
		return result, nil
	}
	link := c.PendingOperation()
	if link == nil {
		return result, nil
	}

	if err := wait(ctx, link); err != nil {
		if !apierr.IsKind(err, apierr.KindAsyncOperationFailed) {
			return result, apierr.WithDisableRetry(err)
		}
		if log != nil {
			log.Info().
				Str("operation_id", link.ID()).
				Msg("asynchronous operation failed, attempting to restart it")
		}
		return result, err
	}
	return result, nil
}

// ID returns the operation ID of an operation href, or idOrHref if it already is one
func ID(idOrHref string) string {
	return model.OperationID(idOrHref)
}
