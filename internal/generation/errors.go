package generation

import (
	"errors"
	"fmt"
)

// Kind classifies generation failures so callers can map them to
// responses without string matching.
type Kind string

const (
	// KindUnavailable means the provider could not be reached or kept
	// failing after retries.
	KindUnavailable Kind = "UNAVAILABLE"
	// KindMalformedOutput means the model replied but the reply never
	// became a valid documentation structure.
	KindMalformedOutput Kind = "MALFORMED_OUTPUT"
)

// Error wraps a generation failure with its classification.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("generation failed (%s): %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// ErrKind extracts the Kind from an error chain, or "" if the error is
// not a generation error.
func ErrKind(err error) Kind {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return ""
}
