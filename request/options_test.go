package request

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	yhttp "github.com/ivknv/yadisk-go/http"
	"github.com/ivknv/yadisk-go/retry"
)

func TestResolveDefaults(t *testing.T) {
	d := Defaults{
		Timeout:       yhttp.Timeout{Connect: 10 * time.Second, Read: 15 * time.Second},
		NRetries:      3,
		RetryInterval: time.Second,
		Strategy:      retry.Suspending,
		Wait:          true,
		PollInterval:  time.Second,
	}

	r := Apply().Resolve(d)
	assert.Equal(t, d.Timeout, r.Timeout)
	assert.Equal(t, 3, r.NRetries)
	assert.Equal(t, time.Second, r.RetryInterval)
	assert.Equal(t, retry.Suspending, r.Strategy)
	assert.Equal(t, time.Second, r.PollInterval)
	assert.Zero(t, r.PollTimeout)
	assert.True(t, r.Wait)
}

func TestResolveOverrides(t *testing.T) {
	r := Apply(
		WithTimeout(0, 0),
		WithRetries(0),
		WithRetryInterval(0),
		WithStrategy(retry.Blocking),
		WithWait(false),
		WithPollInterval(time.Millisecond),
		WithPollTimeout(time.Minute),
	).Resolve(Defaults{NRetries: 3, RetryInterval: time.Second, Strategy: retry.Suspending, Wait: true, Timeout: yhttp.Timeout{Read: time.Second}})

	assert.Equal(t, yhttp.Timeout{}, r.Timeout)
	assert.Equal(t, 0, r.NRetries)
	assert.Zero(t, r.RetryInterval)
	assert.Equal(t, retry.Blocking, r.Strategy)
	assert.False(t, r.Wait)
	assert.Equal(t, time.Millisecond, r.PollInterval)
	assert.Equal(t, time.Minute, r.PollTimeout)
}

func TestWithDoesNotAlias(t *testing.T) {
	base := Apply(WithHeader("X-A", "1"), WithParam("fields", "name"))
	derived := base.With(WithHeader("X-A", "2"), WithParam("fields", "path"), WithRetries(1))

	assert.Equal(t, "1", base.Headers.Get("X-A"))
	assert.Equal(t, "name", base.Params.Get("fields"))
	assert.Nil(t, base.NRetries)
	assert.Equal(t, "2", derived.Headers.Get("X-A"))
	assert.Equal(t, "path", derived.Params.Get("fields"))
	assert.Equal(t, 1, *derived.NRetries)
}

func TestPolicy(t *testing.T) {
	pred := retry.RetryOnErrors()
	r := Apply(WithRetries(2), WithRetryInterval(time.Millisecond), WithRetryOn(pred), WithStrategy(retry.Suspending)).Resolve(Defaults{})
	p := r.Policy(nil)
	assert.Equal(t, 2, p.MaxRetries)
	assert.Equal(t, time.Millisecond, p.Interval)
	assert.Len(t, p.RetryOn, 1)
	assert.Equal(t, retry.Suspending, p.Strategy)
}
