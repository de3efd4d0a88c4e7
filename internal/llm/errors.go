package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// TransportError wraps a network-level or provider-availability failure.
// These are the only errors safe to retry automatically.
type TransportError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsRetryable reports whether an error from Complete is a transient
// transport failure: timeouts, connection errors, rate limits and 5xx
// responses. Content-level errors (bad request, auth) are not retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var te *TransportError
	if errors.As(err, &te) {
		if te.StatusCode == 0 {
			return true
		}
		return te.StatusCode == 429 || te.StatusCode >= 500
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return true
	}
	return false
}
