package generation

import (
	"context"
	"time"

	"github.com/adocshq/adocs/internal/llm"
)

// RetryPolicy bounds transport retries against the LLM provider. Only
// retryable transport failures are retried; malformed model output is
// handled separately by the repair pass.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultRetryPolicy matches the service's default of three attempts.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    8 * time.Second,
	}
}

func (p RetryPolicy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

func (p RetryPolicy) delay(attempt int) time.Duration {
	d := p.BaseDelay
	if d <= 0 {
		d = 500 * time.Millisecond
	}
	for i := 0; i < attempt; i++ {
		d *= 2
		if p.MaxDelay > 0 && d >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	return d
}

// complete calls the client, retrying retryable transport errors with
// exponential backoff. Context cancellation aborts the wait.
func (p RetryPolicy) complete(ctx context.Context, client llm.Client, req llm.Request) (*llm.Response, error) {
	var lastErr error
	for attempt := 0; attempt < p.attempts(); attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(p.delay(attempt - 1)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		resp, err := client.Complete(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !llm.IsRetryable(err) {
			break
		}
	}
	return nil, lastErr
}
