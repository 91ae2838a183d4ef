package bus

import (
	"context"
	"time"

	"github.com/hupe1980/agenthub/core"
)

// RetryPolicy governs SendAndAwait. Each retry scales the per-attempt
// timeout by BackoffMultiplier, so with a 1s base timeout, two attempts and
// multiplier 1.5 the caller waits about 1s + 1.5s before the final timeout
// error surfaces.
type RetryPolicy struct {
	// Attempts is the total number of delivery attempts (not extra retries).
	Attempts int

	// BackoffMultiplier scales the timeout between consecutive attempts.
	BackoffMultiplier float64
}

// DefaultRetryPolicy matches the documented defaults: 2 attempts, backoff
// multiplier 1.5.
var DefaultRetryPolicy = RetryPolicy{
	Attempts:          2,
	BackoffMultiplier: 1.5,
}

// normalize guards against zero values from partially filled configs.
func (p RetryPolicy) normalize() RetryPolicy {
	if p.Attempts < 1 {
		p.Attempts = 1
	}
	if p.BackoffMultiplier <= 0 {
		p.BackoffMultiplier = 1
	}
	return p
}

// SendAndAwait sends a request and waits for the correlated response,
// retrying under the bus's policy. Only timeouts and unavailable receivers
// are retried; an application error returned by the agent itself is passed
// through verbatim on the first occurrence. Each attempt uses a fresh
// message id so a late reply to an abandoned attempt cannot satisfy a newer
// one.
func (b *Bus) SendAndAwait(ctx context.Context, msg core.Message) (core.Response, error) {
	policy := b.retryPolicy.normalize()
	timeout := b.timeoutFor(msg)

	var lastErr error
	for attempt := 1; attempt <= policy.Attempts; attempt++ {
		m := msg
		if attempt > 1 {
			m.ID = core.NewID()
		}
		m.Timeout = timeout

		resp, err := b.Send(ctx, m).Result(ctx)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !core.IsRetryable(err) || ctx.Err() != nil {
			return core.Response{}, err
		}

		if attempt < policy.Attempts {
			timeout = time.Duration(float64(timeout) * policy.BackoffMultiplier)
			b.logger.Debug("retrying request", "agent_id", msg.ReceiverID, "attempt", attempt+1, "timeout", timeout)
		}
	}

	return core.Response{}, lastErr
}
