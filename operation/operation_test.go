package operation

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivknv/yadisk-go/apierr"
	"github.com/ivknv/yadisk-go/logger"
	"github.com/ivknv/yadisk-go/model"
	"github.com/ivknv/yadisk-go/retry"
)

var strategies = []retry.Strategy{retry.Blocking, retry.Suspending}

// sequence returns the given statuses in order, repeating the last one
func sequence(calls *int32, statuses ...string) StatusFunc {
	return func(context.Context) (string, error) {
		i := int(atomic.AddInt32(calls, 1)) - 1
		return statuses[min(i, len(statuses)-1)], nil
	}
}

func TestWaitSuccess(t *testing.T) {
	for _, s := range strategies {
		t.Run(s.String(), func(t *testing.T) {
			var calls int32
			err := Wait(context.Background(), sequence(&calls, "in-progress", "in-progress", "success"),
				Options{PollInterval: time.Millisecond, Strategy: s})
			require.NoError(t, err)
			assert.Equal(t, int32(3), calls)
		})
	}
}

func TestWaitFailed(t *testing.T) {
	for _, s := range strategies {
		t.Run(s.String(), func(t *testing.T) {
			var calls int32
			err := Wait(context.Background(), sequence(&calls, "in-progress", "failed"),
				Options{PollInterval: time.Millisecond, Strategy: s})
			require.Error(t, err)
			assert.ErrorIs(t, err, apierr.ErrAsyncOperationFailed)
			assert.True(t, apierr.Retriable(err))
			assert.Equal(t, "Asynchronous operation failed", err.Error())
		})
	}
}

func TestWaitPollingTimeout(t *testing.T) {
	for _, s := range strategies {
		t.Run(s.String(), func(t *testing.T) {
			var calls int32
			start := time.Now()
			err := Wait(context.Background(), sequence(&calls, "in-progress"),
				Options{PollInterval: 5 * time.Millisecond, PollTimeout: 30 * time.Millisecond, Strategy: s})
			require.Error(t, err)
			assert.ErrorIs(t, err, apierr.ErrPollingTimeout)
			assert.False(t, apierr.Retriable(err))
			assert.Equal(t, "Asynchronous operation did not complete in specified time", err.Error())
			assert.Less(t, time.Since(start), 2*time.Second)
			assert.Greater(t, atomic.LoadInt32(&calls), int32(1))
		})
	}
}

func TestWaitSuspendingTimeoutInsideStatusCall(t *testing.T) {
	status := func(ctx context.Context) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}
	err := Wait(context.Background(), status, Options{PollTimeout: 20 * time.Millisecond, Strategy: retry.Suspending})
	assert.ErrorIs(t, err, apierr.ErrPollingTimeout)
}

func TestWaitSuspendingCallerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls int32
	status := func(context.Context) (string, error) {
		if atomic.AddInt32(&calls, 1) == 2 {
			cancel()
		}
		return "in-progress", nil
	}
	err := Wait(ctx, status, Options{PollInterval: time.Millisecond, PollTimeout: time.Minute, Strategy: retry.Suspending})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, apierr.IsKind(err, apierr.KindPollingTimeout))
}

func TestWaitStatusError(t *testing.T) {
	notFound := apierr.Classify(404, &apierr.Payload{Error: "DiskOperationNotFoundError"})
	for _, s := range strategies {
		err := Wait(context.Background(), func(context.Context) (string, error) { return "", notFound },
			Options{Strategy: s})
		assert.ErrorIs(t, err, apierr.ErrOperationNotFound)
	}
}

type carrier struct {
	link *model.OperationLink
}

func (c carrier) PendingOperation() *model.OperationLink { return c.link }

func TestThen(t *testing.T) {
	link := &model.OperationLink{Link: model.Link{Href: "https://cloud-api.yandex.net/v1/disk/operations/abc"}}
	ctx := context.Background()

	t.Run("non carrier passes through", func(t *testing.T) {
		called := false
		got, err := Then(ctx, "plain", logger.Nop(), func(context.Context, *model.OperationLink) error {
			called = true
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, "plain", got)
		assert.False(t, called)
	})

	t.Run("no pending operation", func(t *testing.T) {
		_, err := Then(ctx, carrier{}, logger.Nop(), func(context.Context, *model.OperationLink) error {
			return errors.New("must not be called")
		})
		assert.NoError(t, err)
	})

	t.Run("waits for operation", func(t *testing.T) {
		var waited *model.OperationLink
		got, err := Then(ctx, carrier{link: link}, logger.Nop(), func(_ context.Context, l *model.OperationLink) error {
			waited = l
			return nil
		})
		require.NoError(t, err)
		assert.Same(t, link, waited)
		assert.Same(t, link, got.link)
	})

	t.Run("failed operation stays retriable", func(t *testing.T) {
		_, err := Then(ctx, carrier{link: link}, logger.Nop(), func(context.Context, *model.OperationLink) error {
			return apierr.NewAsyncOperationFailedError("Asynchronous operation failed")
		})
		require.Error(t, err)
		assert.True(t, apierr.Retriable(err))
	})

	t.Run("other errors disable retry", func(t *testing.T) {
		_, err := Then(ctx, carrier{link: link}, nil, func(context.Context, *model.OperationLink) error {
			return apierr.NewConnectionError("connection failed", nil)
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, apierr.ErrConnection)
		assert.False(t, apierr.Retriable(err))
	})

	t.Run("polling timeout", func(t *testing.T) {
		_, err := Then(ctx, carrier{link: link}, nil, func(context.Context, *model.OperationLink) error {
			return apierr.NewPollingTimeoutError("timeout")
		})
		assert.ErrorIs(t, err, apierr.ErrPollingTimeout)
		assert.False(t, apierr.Retriable(err))
	})
}

func TestThenInsideRetryRestartsWholeCall(t *testing.T) {
	link := &model.OperationLink{Link: model.Link{Href: "https://cloud-api.yandex.net/v1/disk/operations/abc"}}
	var triggers, waits int32

	_, err := retry.Do(context.Background(), retry.Policy{MaxRetries: 2}, func(ctx context.Context) (carrier, error) {
		atomic.AddInt32(&triggers, 1)
		return Then(ctx, carrier{link: link}, nil, func(ctx context.Context, _ *model.OperationLink) error {
			var calls int32
			atomic.AddInt32(&waits, 1)
			return Wait(ctx, sequence(&calls, "failed"), Options{})
		})
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apierr.ErrAsyncOperationFailed)
	assert.Equal(t, int32(3), triggers)
	assert.Equal(t, int32(3), waits)
}

func TestID(t *testing.T) {
	assert.Equal(t, "abc", ID("https://cloud-api.yandex.net/v1/disk/operations/abc"))
	assert.Equal(t, "abc", ID("abc"))
}
