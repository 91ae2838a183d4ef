package bus

import (
	"context"
	"sync"
	"time"

	"github.com/hupe1980/agenthub/core"
)

// Future is the pending result of a single Send. It resolves exactly once:
// either with the receiver's response, or with an error (unavailable
// receiver, timeout). Late results arriving after resolution are rejected
// by correlation-id check and discarded by the caller.
type Future struct {
	correlationID string
	agentID       string
	createdAt     time.Time

	once sync.Once
	done chan struct{}
	resp core.Response
	err  error
}

func newFuture(correlationID, agentID string) *Future {
	return &Future{
		correlationID: correlationID,
		agentID:       agentID,
		createdAt:     time.Now(),
		done:          make(chan struct{}),
	}
}

// CorrelationID returns the request message id this future is bound to.
func (f *Future) CorrelationID() string { return f.correlationID }

// AgentID returns the receiver this future is waiting on.
func (f *Future) AgentID() string { return f.agentID }

// Result blocks until the future resolves or ctx is cancelled.
func (f *Future) Result(ctx context.Context) (core.Response, error) {
	select {
	case <-f.done:
		return f.resp, f.err
	case <-ctx.Done():
		return core.Response{}, ctx.Err()
	}
}

// Done returns a channel closed once the future has resolved.
func (f *Future) Done() <-chan struct{} { return f.done }

// resolve completes the future with a response. The correlation id must
// match the originating request; a mismatched or repeated resolution is
// reported as false so the caller can discard the late result.
func (f *Future) resolve(correlationID string, resp core.Response) bool {
	if correlationID != f.correlationID {
		return false
	}
	resolved := false
	f.once.Do(func() {
		f.resp = resp
		close(f.done)
		resolved = true
	})
	return resolved
}

// fail completes the future with an error unless it already resolved.
func (f *Future) fail(err error) bool {
	failed := false
	f.once.Do(func() {
		f.err = err
		close(f.done)
		failed = true
	})
	return failed
}

// resolvedFuture returns a future that has already failed; used for
// immediate errors such as unknown receivers.
func resolvedFuture(correlationID, agentID string, err error) *Future {
	f := newFuture(correlationID, agentID)
	f.fail(err)
	return f
}
