package bus

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agenthub/core"
)

func TestSendAndAwaitUnknownReceiverNeverTimesOut(t *testing.T) {
	b := New(WithDefaultTimeout(30 * time.Second))

	start := time.Now()
	_, err := b.SendAndAwait(context.Background(), core.NewRequest("t", "ghost", "hi"))
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrAgentUnavailable))
	assert.Less(t, elapsed, 100*time.Millisecond)
}

func TestSendAndAwaitBackoffTiming(t *testing.T) {
	// Timeout 100ms, 2 attempts, multiplier 1.5: base timeout on the first
	// attempt, then x1.5 on the retry, so the caller waits about
	// 100ms + 150ms before the final timeout surfaces.
	never := newStubAgent("never")
	block := make(chan struct{})
	defer close(block)
	never.processFn = func(context.Context, string, map[string]any) (core.Response, error) {
		<-block
		return core.Response{}, nil
	}

	b := New(
		WithDefaultTimeout(100*time.Millisecond),
		WithRetryPolicy(RetryPolicy{Attempts: 2, BackoffMultiplier: 1.5}),
	)
	b.Register(never)

	start := time.Now()
	_, err := b.SendAndAwait(context.Background(), core.NewRequest("t", "never", "hi"))
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrTimeout))
	assert.GreaterOrEqual(t, elapsed, 240*time.Millisecond)
	assert.Less(t, elapsed, 600*time.Millisecond)
}

func TestSendAndAwaitRetriesTimeoutThenSucceeds(t *testing.T) {
	var calls int32
	agent := newStubAgent("eventually")
	agent.processFn = func(_ context.Context, q string, _ map[string]any) (core.Response, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			time.Sleep(200 * time.Millisecond)
		}
		return core.Response{Content: q}, nil
	}

	b := New(
		WithDefaultTimeout(50*time.Millisecond),
		WithRetryPolicy(RetryPolicy{Attempts: 2, BackoffMultiplier: 10}),
	)
	b.Register(agent)

	resp, err := b.SendAndAwait(context.Background(), core.NewRequest("t", "eventually", "done"))

	require.NoError(t, err)
	assert.Equal(t, "done", resp.Content)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestSendAndAwaitNeverRetriesApplicationErrors(t *testing.T) {
	var calls int32
	agent := newStubAgent("strict")
	agent.processFn = func(context.Context, string, map[string]any) (core.Response, error) {
		atomic.AddInt32(&calls, 1)
		return core.Response{}, errors.New("bad input")
	}

	b := New(WithRetryPolicy(RetryPolicy{Attempts: 3, BackoffMultiplier: 1.5}))
	b.Register(agent)

	_, err := b.SendAndAwait(context.Background(), core.NewRequest("t", "strict", "x"))

	require.Error(t, err)
	var appErr *core.ApplicationError
	assert.True(t, errors.As(err, &appErr))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "application errors must not be retried")
}

func TestSendAndAwaitPerAgentTimeoutOverride(t *testing.T) {
	slow := newStubAgent("code")
	slow.processFn = func(_ context.Context, q string, _ map[string]any) (core.Response, error) {
		time.Sleep(60 * time.Millisecond)
		return core.Response{Content: q}, nil
	}

	b := New(
		WithDefaultTimeout(20*time.Millisecond),
		WithAgentTimeouts(map[string]time.Duration{"code": 500 * time.Millisecond}),
		WithRetryPolicy(RetryPolicy{Attempts: 1, BackoffMultiplier: 1}),
	)
	b.Register(slow)

	resp, err := b.SendAndAwait(context.Background(), core.NewRequest("t", "code", "compile"))

	require.NoError(t, err)
	assert.Equal(t, "compile", resp.Content)
}

func TestFutureCorrelationMismatchRejected(t *testing.T) {
	fut := newFuture("req-1", "echo")

	assert.False(t, fut.resolve("req-2", core.Response{Content: "stale"}))
	assert.True(t, fut.resolve("req-1", core.Response{Content: "fresh"}))
	assert.False(t, fut.resolve("req-1", core.Response{Content: "dup"}), "a resolved future must reject further results")

	resp, err := fut.Result(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh", resp.Content)
}
