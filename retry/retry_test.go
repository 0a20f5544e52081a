package retry

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivknv/yadisk-go/apierr"
	"github.com/ivknv/yadisk-go/logger"
)

var errCustom = errors.New("custom failure")

func failing(calls *int, err error) Op[string] {
	return func(context.Context) (string, error) {
		*calls++
		return "", err
	}
}

func TestDoRetriableErrorUsesWholeBudget(t *testing.T) {
	for _, n := range []int{0, 1, 2, 5} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			calls := 0
			_, err := Do(context.Background(), Policy{MaxRetries: n}, failing(&calls, apierr.NewConnectionError("refused", nil)))

			require.Error(t, err)
			assert.Equal(t, n+1, calls)
			assert.ErrorIs(t, err, apierr.ErrConnection)

			var exhausted *ExhaustedError
			if n > 0 {
				require.ErrorAs(t, err, &exhausted)
				assert.Equal(t, n, exhausted.Attempts)
				assert.Contains(t, err.Error(), fmt.Sprintf("got the error after %d retry attempts", n))
			} else {
				assert.False(t, errors.As(err, &exhausted))
			}
		})
	}
}

func TestDoNonRetriableStopsImmediately(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"not found", apierr.Classify(404, nil)},
		{"plain error", errCustom},
		{"retriable but disabled", apierr.WithDisableRetry(apierr.Classify(503, nil))},
		{"invalid response", apierr.NewInvalidResponseError("bad json", nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			_, err := Do(context.Background(), Policy{MaxRetries: 5}, failing(&calls, tt.err))
			assert.Equal(t, 1, calls)
			assert.Equal(t, tt.err, err)
		})
	}
}

func TestDoDisabledRetryMidway(t *testing.T) {
	calls := 0
	op := func(context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, apierr.Classify(500, nil)
		}
		return 0, apierr.WithDisableRetry(apierr.Classify(500, nil))
	}

	_, err := Do(context.Background(), Policy{MaxRetries: 10}, op)
	assert.Equal(t, 3, calls)

	var exhausted *ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 2, exhausted.Attempts)
}

func TestDoSucceedsAfterKFailures(t *testing.T) {
	for k := 0; k <= 3; k++ {
		t.Run(fmt.Sprintf("k=%d", k), func(t *testing.T) {
			calls := 0
			op := func(context.Context) (string, error) {
				calls++
				if calls <= k {
					return "", apierr.Classify(502, nil)
				}
				return "ok", nil
			}

			got, err := Do(context.Background(), Policy{MaxRetries: 3}, op)
			require.NoError(t, err)
			assert.Equal(t, "ok", got)
			assert.Equal(t, k+1, calls)
		})
	}
}

func TestDoRetryOn(t *testing.T) {
	t.Run("errors.Is predicate", func(t *testing.T) {
		calls := 0
		_, err := Do(context.Background(), Policy{MaxRetries: 2, RetryOn: []Predicate{RetryOnErrors(errCustom)}},
			failing(&calls, fmt.Errorf("wrapped: %w", errCustom)))
		assert.Equal(t, 3, calls)
		assert.ErrorIs(t, err, errCustom)
	})

	t.Run("kind predicate", func(t *testing.T) {
		calls := 0
		_, err := Do(context.Background(), Policy{MaxRetries: 1, RetryOn: []Predicate{RetryOnKinds(apierr.KindTooManyRequests)}},
			failing(&calls, apierr.Classify(429, &apierr.Payload{Error: "DiskResourceDownloadLimitExceededError"})))
		assert.Equal(t, 2, calls)
		assert.ErrorIs(t, err, apierr.ErrTooManyRequests)
	})

	t.Run("extra kind still honours disable flag", func(t *testing.T) {
		calls := 0
		_, err := Do(context.Background(), Policy{MaxRetries: 3, RetryOn: []Predicate{RetryOnKinds(apierr.KindNotFound)}},
			failing(&calls, apierr.WithDisableRetry(apierr.Classify(404, nil))))
		assert.Equal(t, 1, calls)
		assert.Error(t, err)
	})
}

func TestDoSleepsOnlyWithInterval(t *testing.T) {
	calls := 0
	start := time.Now()
	_, _ = Do(context.Background(), Policy{MaxRetries: 2, Interval: 20 * time.Millisecond}, failing(&calls, apierr.Classify(500, nil)))
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)

	calls = 0
	start = time.Now()
	_, _ = Do(context.Background(), Policy{MaxRetries: 50}, failing(&calls, apierr.Classify(500, nil)))
	assert.Equal(t, 51, calls)
	assert.Less(t, time.Since(start), time.Second)
}

func TestSuspendingStrategyHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	op := func(context.Context) (int, error) {
		calls++
		cancel()
		return 0, apierr.Classify(503, nil)
	}

	_, err := Do(ctx, Policy{MaxRetries: 5, Interval: time.Hour, Strategy: Suspending}, op)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestStrategiesShareControlFlow(t *testing.T) {
	for _, s := range []Strategy{Blocking, Suspending} {
		t.Run(s.String(), func(t *testing.T) {
			calls := 0
			op := func(context.Context) (int, error) {
				calls++
				if calls < 3 {
					return 0, apierr.NewTimeoutError("read timeout", nil)
				}
				return 7, nil
			}
			got, err := Do(context.Background(), Policy{MaxRetries: 3, Interval: time.Millisecond, Strategy: s}, op)
			require.NoError(t, err)
			assert.Equal(t, 7, got)
			assert.Equal(t, 3, calls)
		})
	}
}

func TestSyncAdapter(t *testing.T) {
	calls := 0
	got, err := Do(context.Background(), Policy{MaxRetries: 1}, Sync(func() (string, error) {
		calls++
		if calls == 1 {
			return "", apierr.Classify(504, nil)
		}
		return "done", nil
	}))
	require.NoError(t, err)
	assert.Equal(t, "done", got)
}

func TestRun(t *testing.T) {
	calls := 0
	err := Run(context.Background(), Policy{MaxRetries: 1}, func(context.Context) error {
		calls++
		return apierr.Classify(500, nil)
	})
	assert.ErrorIs(t, err, apierr.ErrInternal)
	assert.Equal(t, 2, calls)
}

func TestDoLogsRetries(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, "info", false)

	calls := 0
	_, _ = Do(context.Background(), Policy{MaxRetries: 1, Logger: log}, failing(&calls, apierr.Classify(500, nil)))

	out := buf.String()
	assert.Contains(t, out, "automatic retry triggered: (1 out of 1)")
	assert.Contains(t, out, "not triggering an automatic retry: (2 out of 1)")
}

func TestNegativeBudgetMeansOneAttempt(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), Policy{MaxRetries: -3}, failing(&calls, apierr.Classify(500, nil)))
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}
